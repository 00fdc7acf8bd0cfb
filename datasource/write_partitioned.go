package datasource

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/go-drift/drift"
	"github.com/go-drift/drift/errors"
	"github.com/go-drift/drift/partition"
	uuid "github.com/gofrs/uuid"
	"golang.org/x/sync/errgroup"
)

func formatExtension(format Format) string {
	switch format {
	case FormatCSV:
		return "csv"
	case FormatJSONL:
		return "jsonl"
	default:
		return "drc"
	}
}

// WritePartitioned persists a Partition under dir, splitting rows by the value
// combinations of the PartitionBy columns. Each key combination produces one
// hive-style "col=value" directory chain containing a single output file, and
// files for distinct keys are written in parallel. The returned paths identify
// every written file, in sorted order.
func WritePartitioned(dir string, part drift.Partition, format Format, opts *WriteOptions) ([]string, error) {
	switch format {
	case FormatCSV, FormatJSONL, FormatColumnar:
	default:
		return nil, errors.UnsupportedFormatError{Format: string(format)}
	}
	if opts == nil || len(opts.PartitionBy) == 0 {
		return nil, fmt.Errorf("WritePartitioned requires at least one PartitionBy column")
	}

	keyCols := make([]drift.Column, len(opts.PartitionBy))
	for i, name := range opts.PartitionBy {
		col, err := part.GetColumn(name)
		if err != nil {
			return nil, err
		}
		keyCols[i] = col
	}

	// group row indices by their key-column value combination
	groups := make(map[string][]int)
	for row := 0; row < part.GetNumRows(); row++ {
		parts := make([]string, len(opts.PartitionBy))
		for i, name := range opts.PartitionBy {
			parts[i] = fmt.Sprintf("%s=%s", name, formatValue(keyCols[i].Value(row)))
		}
		key := filepath.Join(parts...)
		groups[key] = append(groups[key], row)
	}

	var mu sync.Mutex
	var paths []string
	var g errgroup.Group
	for key, indices := range groups {
		key, indices := key, indices
		g.Go(func() error {
			split, err := partition.Take(part, indices)
			if err != nil {
				return err
			}
			outDir := filepath.Join(dir, key)
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			id, err := uuid.NewV4()
			if err != nil {
				log.Fatalf("failed to generate UUID for output file: %v", err)
			}
			outPath := filepath.Join(outDir, fmt.Sprintf("part-%s.%s", id.String(), formatExtension(format)))
			if err := WriteFile(outPath, split, format, &WriteOptions{
				Delimiter:   opts.Delimiter,
				WriteHeader: opts.WriteHeader,
				Compression: opts.Compression,
			}); err != nil {
				return err
			}
			mu.Lock()
			paths = append(paths, outPath)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
