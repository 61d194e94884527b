// Package lister implements per-format directory listing for hive
// partitions. Format resolution is a pure mapping from the table's
// input-format string to a format tag (types.ParseInputFormat); the
// listers themselves only ever see the resolved tag.
package lister

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/arkilian/hiveconnect/internal/hive"
	"github.com/arkilian/hiveconnect/pkg/types"
)

// Entry is one object reported by a storage backend.
type Entry struct {
	Path string
	Size int64
}

// ObjectLister abstracts enumerating the objects under a storage
// location. Implementations exist for the local filesystem and S3.
type ObjectLister interface {
	ListDir(ctx context.Context, location string) ([]Entry, error)
}

// DirectoryLister lists the data files of one partition.
type DirectoryLister interface {
	List(ctx context.Context, partition *hive.Partition) ([]*hive.File, error)
}

// New returns the directory lister for a resolved file format.
func New(format types.FileFormat, objects ObjectLister) (DirectoryLister, error) {
	switch format {
	case types.FormatParquet, types.FormatORC:
		return &fileLister{objects: objects, format: format}, nil
	case types.FormatHudiCOW:
		return &hudiCowLister{objects: objects}, nil
	default:
		return nil, fmt.Errorf("lister: no directory lister for format %s", format)
	}
}

// fileLister lists plain parquet/ORC partition directories.
type fileLister struct {
	objects ObjectLister
	format  types.FileFormat
}

func (l *fileLister) List(ctx context.Context, partition *hive.Partition) ([]*hive.File, error) {
	entries, err := l.objects.ListDir(ctx, partition.Location)
	if err != nil {
		return nil, fmt.Errorf("lister: list %s: %w", partition.Location, err)
	}

	files := make([]*hive.File, 0, len(entries))
	for _, entry := range entries {
		if isHidden(entry.Path) {
			continue
		}
		files = append(files, hive.NewFile(entry.Path, entry.Size, l.format, partition))
	}
	return files, nil
}

// isHidden reports whether the object is a Hive hidden/marker file,
// such as _SUCCESS or .hive-staging output.
func isHidden(p string) bool {
	base := path.Base(p)
	return strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_")
}
