package planner

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arkilian/hiveconnect/internal/config"
	"github.com/arkilian/hiveconnect/internal/errors"
	"github.com/arkilian/hiveconnect/internal/expr"
	"github.com/arkilian/hiveconnect/internal/hive"
	"github.com/arkilian/hiveconnect/internal/hive/lister"
	"github.com/arkilian/hiveconnect/internal/metastore"
	"github.com/arkilian/hiveconnect/internal/observability"
	"github.com/arkilian/hiveconnect/pkg/types"
)

// ReadPlan is the outcome of one planning call: the files a read must
// scan, the partitions they came from, the split predicate, and the
// worker-local table name when a resource context was registered.
type ReadPlan struct {
	Files      []*hive.File
	Partitions []*hive.Partition
	Split      *FilterSplit

	// LocalTableName is the per-transaction worker table alias, empty
	// when planning ran without a resource context.
	LocalTableName string
}

// Options assembles a Planner. Table, Client and Objects are required;
// the rest are optional collaborators.
type Options struct {
	Table    *hive.TableMeta
	Client   metastore.Client
	Settings config.PlannerConfig

	// Objects lists storage directories; required for planning.
	Objects lister.ObjectLister

	// Resources receives the packaged plan; nil skips registration.
	Resources ResourceContext

	// Selector drives the COLUMN_SIZE prewhere policy; nil falls back to
	// CheapestConjunctSelector.
	Selector ColumnSelector

	// Stats records planning counters when non-nil.
	Stats *observability.PlanStats

	// SupportsPrewhere marks engine variants that evaluate prewhere.
	SupportsPrewhere bool

	// PromoteIfFinal allows prewhere promotion on FINAL reads.
	PromoteIfFinal bool
}

// Planner prepares read plans for a single hive table.
type Planner struct {
	table     *hive.TableMeta
	client    metastore.Client
	settings  config.PlannerConfig
	objects   lister.ObjectLister
	resources ResourceContext
	selector  ColumnSelector
	stats     *observability.PlanStats

	supportsPrewhere bool
	promoteIfFinal   bool
}

// New validates the options and builds a Planner.
func New(opts Options) (*Planner, error) {
	if opts.Table == nil {
		return nil, errors.NewValidationError(errors.CodeInvalidArgument, "planner requires a table")
	}
	if opts.Client == nil {
		return nil, errors.NewValidationError(errors.CodeInvalidArgument, "planner requires a metastore client")
	}
	if opts.Objects == nil {
		return nil, errors.NewValidationError(errors.CodeInvalidArgument, "planner requires an object lister")
	}
	selector := opts.Selector
	if selector == nil {
		selector = CheapestConjunctSelector{}
	}
	return &Planner{
		table:            opts.Table,
		client:           opts.Client,
		settings:         opts.Settings,
		objects:          opts.Objects,
		resources:        opts.Resources,
		selector:         selector,
		stats:            opts.Stats,
		supportsPrewhere: opts.SupportsPrewhere,
		promoteIfFinal:   opts.PromoteIfFinal,
	}, nil
}

// PrepareReadContext runs the full planning pipeline: column check,
// predicate split, partition selection, file listing, bucket pruning,
// and resource packaging. txnID scopes the worker-local table alias and
// is generated when empty; streams bounds listing concurrency.
func (p *Planner) PrepareReadContext(ctx context.Context, columns []string, query QueryInfo, txnID string, streams int) (*ReadPlan, error) {
	if err := p.table.CheckColumns(columns); err != nil {
		return nil, err
	}
	if txnID == "" {
		txnID = uuid.NewString()
	}

	split, err := p.splitFilter(ctx, query)
	if err != nil {
		return nil, err
	}

	partitions, totalPartitions, err := p.selectPartitions(ctx, query, split)
	if err != nil {
		return nil, err
	}

	// Resolve the format before any listing so an unknown input format
	// fails without touching storage.
	format, err := types.ParseInputFormat(p.table.SD.InputFormat)
	if err != nil {
		return nil, errors.NewPlanningError(errors.CodeUnknownFormat,
			"unknown input format "+p.table.SD.InputFormat+" for "+p.table.Database+"."+p.table.Name)
	}
	dl, err := lister.New(format, p.objects)
	if err != nil {
		return nil, errors.NewPlanningError(errors.CodeUnknownFormat, err.Error())
	}

	if streams <= 0 {
		streams = p.settings.MaxStreams
	}
	files, err := collectFiles(ctx, partitions, dl, streams)
	if err != nil {
		return nil, err
	}
	listed := len(files)

	if p.table.IsBucketTable() && p.settings.UseClusterKeyFilter {
		if bucket, ok := p.table.ClusterBy.ResolveBucket(expr.CombineConjuncts(split.ClusterKeyConds)); ok {
			files = hive.PruneByBucket(files, bucket)
		}
	}

	plan := &ReadPlan{
		Files:      files,
		Partitions: partitions,
		Split:      split,
	}
	if p.resources != nil {
		if err := p.collectResource(ctx, plan, txnID); err != nil {
			return nil, err
		}
	}

	if p.stats != nil {
		p.stats.RecordPlan(p.table.Database+"."+p.table.Name,
			totalPartitions, len(partitions), listed, len(files))
	}
	return plan, nil
}

// splitFilter fetches column sizes when the COLUMN_SIZE policy needs
// them and classifies the query filter. A statistics failure degrades to
// no promotion rather than failing the plan.
func (p *Planner) splitFilter(ctx context.Context, query QueryInfo) (*FilterSplit, error) {
	opts := SplitOptions{
		PartitionPushdown: p.settings.UseMetastoreFilter || p.settings.UsePartitionFilter,
		SupportsPrewhere:  p.supportsPrewhere,
		PromoteIfFinal:    p.promoteIfFinal,
		Method:            p.settings.MoveToPrewhereMethod,
	}
	var sizes map[string]uint64
	if opts.SupportsPrewhere && opts.Method == config.PrewhereColumnSize && query.Filter != nil {
		stats, err := p.client.GetTableStats(ctx, p.table.Database, p.table.Name,
			expr.ReferencedColumns(query.Filter), p.settings.MergePartitionStats)
		if err == nil && stats != nil {
			sizes = stats.ColumnSizes
		}
	}
	return SplitFilter(p.table, query, opts, sizes, p.selector)
}

// TableStats fetches table statistics for the given columns, or nil when
// the metastore has none.
func (p *Planner) TableStats(ctx context.Context, columns []string) (*types.TableStatistics, error) {
	return p.client.GetTableStats(ctx, p.table.Database, p.table.Name, columns, p.settings.MergePartitionStats)
}

// PartitionLastModificationTime returns the most recent partition
// modification time across the whole table, zero when the metastore
// records none.
func (p *Planner) PartitionLastModificationTime(ctx context.Context) (time.Time, error) {
	raw, err := p.client.GetPartitionsByFilter(ctx, p.table.Database, p.table.Name, "")
	if err != nil {
		return time.Time{}, errors.NewMetastoreError(errors.CodeMetastoreUnavailable,
			"fetch partitions for "+p.table.Database+"."+p.table.Name, err)
	}
	var latest time.Time
	for _, rp := range raw {
		if rp.LastAccessTime > 0 {
			t := time.Unix(rp.LastAccessTime, 0)
			if t.After(latest) {
				latest = t
			}
		}
	}
	return latest, nil
}

// RewriteTableReference replaces references to db.table (and, failing
// that, the bare table name) in a query text with the worker-local
// alias. Used when shipping the original query to workers that only know
// the per-transaction table.
func RewriteTableReference(query, db, table, alias string) string {
	qualified := db + "." + table
	if strings.Contains(query, qualified) {
		return strings.ReplaceAll(query, qualified, alias)
	}
	return strings.ReplaceAll(query, table, alias)
}
