package lister

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalObjects lists directories on the local filesystem. Used for
// development and tests; production tables live on object storage.
type LocalObjects struct{}

// NewLocalObjects creates a local filesystem object lister.
func NewLocalObjects() *LocalObjects {
	return &LocalObjects{}
}

// ListDir implements ObjectLister.
func (l *LocalObjects) ListDir(ctx context.Context, location string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := strings.TrimPrefix(location, "file://")
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", de.Name(), err)
		}
		entries = append(entries, Entry{
			Path: filepath.Join(dir, de.Name()),
			Size: info.Size(),
		})
	}
	return entries, nil
}
