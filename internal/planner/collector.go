package planner

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/arkilian/hiveconnect/internal/errors"
	"github.com/arkilian/hiveconnect/internal/hive"
	"github.com/arkilian/hiveconnect/internal/hive/lister"
)

// collectFiles lists every selected partition through dl. With streams
// above one and more than one partition the listings fan out across
// min(streams, len(partitions)) workers; the result is the concatenation
// of per-partition listings in unspecified order. On failure the first
// error wins, but all scheduled listings are waited for before it is
// returned.
func collectFiles(ctx context.Context, partitions []*hive.Partition, dl lister.DirectoryLister, streams int) ([]*hive.File, error) {
	if len(partitions) == 0 {
		return nil, nil
	}
	if streams <= 1 || len(partitions) == 1 {
		var files []*hive.File
		for _, partition := range partitions {
			listed, err := dl.List(ctx, partition)
			if err != nil {
				return nil, errors.NewListingError("list partition "+partition.ID, err)
			}
			files = append(files, listed...)
		}
		return files, nil
	}

	workers := int64(streams)
	if n := int64(len(partitions)); n < workers {
		workers = n
	}
	sem := semaphore.NewWeighted(workers)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		files    []*hive.File
		firstErr error
	)
	for _, partition := range partitions {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			break
		}
		wg.Add(1)
		go func(partition *hive.Partition) {
			defer wg.Done()
			defer sem.Release(1)
			listed, err := dl.List(ctx, partition)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = errors.NewListingError("list partition "+partition.ID, err)
				}
				return
			}
			files = append(files, listed...)
		}(partition)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return files, nil
}
