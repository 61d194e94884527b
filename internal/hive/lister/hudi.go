package lister

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/arkilian/hiveconnect/internal/hive"
	"github.com/arkilian/hiveconnect/pkg/types"
)

// hudiCowLister lists Hudi copy-on-write partition directories. A COW
// partition holds one base parquet file per file group and commit; only
// the newest commit of each file group is part of the current snapshot.
// Base files are named <fileID>_<writeToken>_<instantTime>.parquet.
type hudiCowLister struct {
	objects ObjectLister
}

func (l *hudiCowLister) List(ctx context.Context, partition *hive.Partition) ([]*hive.File, error) {
	entries, err := l.objects.ListDir(ctx, partition.Location)
	if err != nil {
		return nil, fmt.Errorf("lister: list hudi partition %s: %w", partition.Location, err)
	}

	type candidate struct {
		entry   Entry
		instant string
	}
	latest := make(map[string]candidate)

	for _, entry := range entries {
		if isHidden(entry.Path) {
			continue
		}
		fileID, instant, ok := parseHudiBaseFile(entry.Path)
		if !ok {
			continue
		}
		if current, exists := latest[fileID]; !exists || instant > current.instant {
			latest[fileID] = candidate{entry: entry, instant: instant}
		}
	}

	files := make([]*hive.File, 0, len(latest))
	for _, c := range latest {
		files = append(files, hive.NewFile(c.entry.Path, c.entry.Size, types.FormatHudiCOW, partition))
	}
	return files, nil
}

// parseHudiBaseFile splits a Hudi base file name into its file group ID
// and instant time. Non-parquet objects and names without the three
// underscore-separated fields are not base files.
func parseHudiBaseFile(p string) (fileID, instant string, ok bool) {
	base := path.Base(p)
	if !strings.HasSuffix(base, ".parquet") {
		return "", "", false
	}
	base = strings.TrimSuffix(base, ".parquet")
	parts := strings.Split(base, "_")
	if len(parts) < 3 {
		return "", "", false
	}
	// Instant times are sortable timestamp strings; write tokens in the
	// middle may themselves contain underscores.
	return parts[0], parts[len(parts)-1], true
}
