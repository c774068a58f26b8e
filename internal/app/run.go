package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/bnkrebuild/internal/bankdump"
	"github.com/specialistvlad/bnkrebuild/internal/bnode"
	"github.com/specialistvlad/bnkrebuild/internal/ctxlog"
	"github.com/specialistvlad/bnkrebuild/internal/publish"
	"github.com/specialistvlad/bnkrebuild/internal/rebuild"
	"github.com/specialistvlad/bnkrebuild/internal/script"
)

// RootClass is the class generated when no explicit roots are configured.
const RootClass = "CAkEvent"

// Run generates the script of every root, one after another, through a
// single Builder. A failed root is logged and the run moves on; Run reports
// an error when at least one root failed.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := a.logger
	logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx)
		defer a.closeHealthcheckServer(ctx)
	}

	if err := a.openSink(ctx); err != nil {
		return err
	}
	if a.sink != nil {
		defer func() {
			if err := a.sink.Close(); err != nil {
				logger.Warn("Failed to close publisher.", "error", err)
			}
		}()
	}

	roots, err := a.roots()
	if err != nil {
		return err
	}
	if len(roots) == 0 {
		logger.Warn("No roots found, nothing to generate.")
		return nil
	}
	a.progress.total.Store(int64(len(roots)))
	logger.Info("Starting generation.", "roots", len(roots), "abort_mode", a.config.AbortMode)

	opts := rebuild.Options{AbortMode: rebuild.AbortMode(a.config.AbortMode)}
	if a.filter != nil {
		opts.Filter = a.filter
	}
	b := rebuild.New(a.index, opts)

	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("generation interrupted: %w", err)
		}
		if err := a.generate(ctx, b, root); err != nil {
			a.progress.failed.Add(1)
			logger.Error("Root generation failed.", "root", root.String(), "error", err)
			continue
		}
		a.progress.generated.Add(1)
	}

	for _, key := range b.UnknownProps() {
		logger.Warn("Unknown property seen.", "key", key)
	}

	st := a.Status()
	logger.Info("Generation finished.",
		"roots", st.Roots,
		"failed", st.Failed,
		"objects", b.Built(),
		"dropped", b.Dropped(),
		"transition_objects", b.TransitionObjects(),
	)
	logger.Debug("App.Run method finished.")

	if st.Failed > 0 {
		return fmt.Errorf("%d of %d roots failed", st.Failed, st.Roots)
	}
	return nil
}

func (a *App) openSink(ctx context.Context) error {
	if a.sink != nil || a.config.PublishURL == "" {
		return nil
	}
	p, err := publish.Connect(ctx, publish.Options{
		URL:                a.config.PublishURL,
		Namespace:          a.config.PublishNamespace,
		Event:              a.config.PublishEvent,
		InsecureSkipVerify: a.config.PublishInsecure,
	})
	if err != nil {
		return fmt.Errorf("failed to connect publisher: %w", err)
	}
	a.sink = p
	return nil
}

// roots resolves the configured root ids in every bank holding them, or
// falls back to every event of every bank.
func (a *App) roots() ([]bnode.Key, error) {
	if len(a.config.Roots) == 0 {
		var keys []bnode.Key
		for _, n := range a.index.ObjectsOf(RootClass) {
			_, sid := bnode.ShortID(n)
			keys = append(keys, bnode.Key{Bank: n.Root().ID(), ID: sid})
		}
		return keys, nil
	}

	var keys []bnode.Key
	for _, id := range a.config.Roots {
		found := false
		for _, bank := range a.index.Banks() {
			k := bnode.Key{Bank: bank.ID(), ID: id}
			if _, ok := a.index.Lookup(k); ok {
				keys = append(keys, k)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("root object %d not found in any bank", id)
		}
	}
	return keys, nil
}

func (a *App) generate(ctx context.Context, b *rebuild.Builder, root bnode.Key) error {
	var buf bytes.Buffer
	out := script.NewOutline(&buf)
	if err := b.Generate(ctx, root, out); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	node, _ := a.index.Lookup(root)
	s := publish.Script{Bank: root.Bank, ID: root.ID, Class: node.Name(), Text: buf.String()}
	if err := a.writeScript(s); err != nil {
		return err
	}
	if a.sink != nil {
		if err := a.sink.Publish(ctx, s); err != nil {
			ctxlog.FromContext(ctx).Error("Failed to publish script.", "root", root.String(), "error", err)
		}
	}
	return nil
}

// ScriptPath is where a script is written under dir.
func ScriptPath(dir string, s publish.Script, compress bool) string {
	name := fmt.Sprintf("%d-%d.txt", s.Bank, s.ID)
	if compress {
		name += ".zst"
	}
	return filepath.Join(dir, name)
}

func (a *App) writeScript(s publish.Script) error {
	if a.config.OutputDir == "" {
		_, err := fmt.Fprint(a.scriptW, s.Text)
		return err
	}

	data := []byte(s.Text)
	if a.config.Compress {
		var err error
		if data, err = bankdump.Compress(data); err != nil {
			return fmt.Errorf("failed to compress script: %w", err)
		}
	}
	if err := os.MkdirAll(a.config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := ScriptPath(a.config.OutputDir, s, a.config.Compress)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write script %s: %w", path, err)
	}
	a.logger.Debug("Script written.", "path", path)
	return nil
}
