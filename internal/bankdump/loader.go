package bankdump

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/klauspost/compress/zstd"

	"github.com/specialistvlad/bnkrebuild/internal/bnode"
	"github.com/specialistvlad/bnkrebuild/internal/ctxlog"
	"github.com/specialistvlad/bnkrebuild/internal/fsutil"
)

// Extensions are the dump file suffixes Load picks up.
var Extensions = []string{".hcl", ".hcl.zst"}

// Load finds every dump under paths and parses the banks they hold, in file
// order.
func Load(ctx context.Context, paths ...string) ([]*bnode.Bank, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFiles(paths, Extensions...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered bank dumps.", "count", len(files))

	parser := hclparse.NewParser()
	var banks []*bnode.Bank
	for _, file := range files {
		loaded, err := loadFile(parser, file)
		if err != nil {
			return nil, err
		}
		for _, b := range loaded {
			logger.Debug("Bank loaded.", "file", file, "bank_id", b.ID(), "objects", len(b.Objects()))
		}
		banks = append(banks, loaded...)
	}
	return banks, nil
}

func loadFile(parser *hclparse.Parser, file string) ([]*bnode.Bank, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read bank dump %s: %w", file, err)
	}
	if strings.HasSuffix(file, ".zst") {
		if src, err = Decompress(src); err != nil {
			return nil, fmt.Errorf("failed to decompress bank dump %s: %w", file, err)
		}
	}
	return parse(parser, src, file)
}

// Parse reads the banks of one dump. filename is used in diagnostics.
func Parse(src []byte, filename string) ([]*bnode.Bank, error) {
	return parse(hclparse.NewParser(), src, filename)
}

func parse(parser *hclparse.Parser, src []byte, filename string) ([]*bnode.Bank, error) {
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse bank dump %s: %w", filename, diags)
	}
	body, ok := f.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("bank dump %s is not native HCL syntax", filename)
	}

	banks, diags := decodeFile(body)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode bank dump %s: %w", filename, diags)
	}
	return banks, nil
}

// Decompress inflates a zstd frame.
func Decompress(src []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(src, nil)
}

// Compress deflates data into a zstd frame.
func Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func diag(rng hcl.Range, summary, detail string) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  rng.Ptr(),
	}
}
