package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Source lists and reads the files of one data export. Implementations
// cover a local directory and an S3 bucket prefix; uploaded files bypass
// this interface entirely and go straight to ProcessFile.
type Source interface {
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, name string) ([]byte, error)
}

// DirSource reads an unpacked export from a local directory. Only the top
// level is listed; LinkedIn exports are flat.
type DirSource struct {
	Root string
}

func (d *DirSource) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(d.Root)
	if err != nil {
		return nil, fmt.Errorf("list export dir %s: %w", d.Root, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (d *DirSource) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(d.Root, filepath.Base(name)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrExportNotFound, name)
		}
		return nil, fmt.Errorf("read export file %s: %w", name, err)
	}
	return data, nil
}
