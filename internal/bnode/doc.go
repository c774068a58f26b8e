/*
Package bnode defines the read-only attribute tree the rebuild engine consumes,
together with an in-memory implementation of it.

A bank is a list of object records. Each record is a tree of named elements:
sub-records, lists and leaf fields. Leaf fields carry a type tag ("sid" for the
record's own short id, "tid" for a reference to another record), a numeric value
and formatted attributes such as "valuefmt" ("0x00 [Volume]").

Lookups follow a single rule: search the descendants depth-first in document
order. Absent results are a nil Node, never an error.

The Index maps (bank id, short id) keys to records across every loaded bank and
is the only way the rebuild engine reaches records in other banks.
*/
package bnode
