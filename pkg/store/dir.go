package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"meshconf/pkg/model"
)

const (
	DefaultExt       = ".wg"
	DefaultSeparator = ":"
	confExt          = ".conf"
)

// DirSource reads one definition per file ending in Ext from Dir. The node
// name is the file name without Ext.
type DirSource struct {
	Dir string
	Ext string
}

func (s DirSource) Definitions(ctx context.Context) ([]Definition, error) {
	ext := s.Ext
	if ext == "" {
		ext = DefaultExt
	}
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("read nodes dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	var defs []Definition
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		b, err := os.ReadFile(filepath.Join(s.Dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read definition %s: %w", e.Name(), err)
		}
		defs = append(defs, Definition{Name: strings.TrimSuffix(e.Name(), ext), Text: string(b)})
	}
	return defs, nil
}

// DirSink writes each output to Dir/<name>.conf, where split outputs are
// named node, Sep, peer. Every file is staged under a temporary name first
// and only renamed into place once the whole batch was written.
type DirSink struct {
	Dir string
	Sep string
}

func (s DirSink) Write(ctx context.Context, outputs []model.Output) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir output: %w", err)
	}
	staged := make([]string, 0, len(outputs))
	defer func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}()
	for _, o := range outputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		tmp, err := stage(s.Path(o), o.Text)
		if err != nil {
			return err
		}
		staged = append(staged, tmp)
	}
	for i, o := range outputs {
		path := s.Path(o)
		if err := os.Rename(staged[i], path); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	staged = staged[:0]
	return nil
}

// stage writes text next to path under a temporary name. CreateTemp uses
// mode 0600, which suits configs that may hold private keys.
func stage(path, text string) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return f.Name(), nil
}

// Path returns where the sink writes o.
func (s DirSink) Path(o model.Output) string {
	sep := s.Sep
	if sep == "" {
		sep = DefaultSeparator
	}
	return filepath.Join(s.Dir, o.Name(sep)+confExt)
}
