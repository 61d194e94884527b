package planner

import (
	"context"
	"fmt"

	"github.com/arkilian/hiveconnect/internal/errors"
	"github.com/arkilian/hiveconnect/internal/expr"
	"github.com/arkilian/hiveconnect/internal/hive"
)

// selectPartitions resolves the partitions a query must read. For
// unpartitioned tables it synthesizes the single whole-table partition.
// Otherwise it fetches partitions through the advisory metastore filter,
// applies the local pruner, and enforces the partition-count ceiling.
// Returns the selected partitions and the pre-pruning total.
func (p *Planner) selectPartitions(ctx context.Context, query QueryInfo, split *FilterSplit) ([]*hive.Partition, int, error) {
	if !p.table.HasPartitionKey() {
		return []*hive.Partition{hive.WholeTablePartition(p.table.SD)}, 1, nil
	}

	filter := ""
	if p.settings.UseMetastoreFilter {
		filter = expr.MetastoreFilter(split.PartitionFilter)
	}
	raw, err := p.client.GetPartitionsByFilter(ctx, p.table.Database, p.table.Name, filter)
	if err != nil {
		return nil, 0, errors.NewMetastoreError(errors.CodeMetastoreUnavailable,
			"fetch partitions for "+p.table.Database+"."+p.table.Name, err)
	}

	// The metastore filter is advisory, so the local pruner works from
	// the full query filter, not the (possibly already applied) pushed
	// part.
	var pruner *partitionPruner
	if p.settings.UsePartitionFilter {
		pruner = newPartitionPruner(p.table.Partition, query.Filter, p.table.IsPartitionColumn)
	}

	selected := make([]*hive.Partition, 0, len(raw))
	for _, rp := range raw {
		partition, err := hive.NewPartition(rp, p.table.Partition)
		if err != nil {
			return nil, 0, err
		}
		if pruner != nil && pruner.CanBePruned(partition) {
			continue
		}
		selected = append(selected, partition)
	}

	if limit := p.settings.MaxPartitionsToRead; limit > 0 && len(selected) > limit {
		return nil, 0, errors.NewPlanningError(errors.CodeTooManyPartitions,
			fmt.Sprintf("too many partitions to read. Current %d, max %d", len(selected), limit)).
			WithDetails(map[string]interface{}{
				"current": len(selected),
				"max":     limit,
			})
	}
	return selected, len(raw), nil
}
