// Package rebuild turns raw bank object records into typed, configured
// objects and walks them to emit playback scripts.
//
// A Builder owns one generation session. Objects are built lazily the first
// time something references them, at most once per key, and are then shared
// by every later reference. Each object kind resolves its own configuration
// (properties, state volumes, parameter curves, transitions, stingers) in
// Build and describes its playback structure in Render.
//
// References are followed through Base.processNext, which applies the bank
// rules for cross-bank ids, skips unresolved ids silently, honors the
// session filter and renders the target's entry. Re-entering an object that
// is still being built or rendered is a cycle fault, never a stack overflow.
//
// A Builder is not safe for concurrent use; callers that generate in
// parallel create one Builder per goroutine.
package rebuild
