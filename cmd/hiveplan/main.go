// Package main implements the hiveplan command line tool.
// It plans a read against a hive table and prints the resulting file set.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arkilian/hiveconnect/internal/config"
	"github.com/arkilian/hiveconnect/internal/expr"
	"github.com/arkilian/hiveconnect/internal/hive"
	"github.com/arkilian/hiveconnect/internal/hive/lister"
	"github.com/arkilian/hiveconnect/internal/metastore"
	"github.com/arkilian/hiveconnect/internal/observability"
	"github.com/arkilian/hiveconnect/internal/planner"
)

// Flags holds the command line options.
type Flags struct {
	ConfigPath string
	Database   string
	Table      string
	Filter     string
	Columns    string
	Streams    int
	ClusterBy  string
	Buckets    int
	HashFunc   string
	Timeout    time.Duration
}

func main() {
	flags := parseFlags()

	cfg := config.DefaultConfig()
	if flags.ConfigPath != "" {
		loaded, err := config.LoadFromFile(flags.ConfigPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	config.LoadFromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	opts := hive.TableOptions{
		MetastoreURL: cfg.Metastore.URL,
		Database:     flags.Database,
		Table:        flags.Table,
	}
	if err := opts.Validate(); err != nil {
		log.Fatalf("Invalid table options: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), flags.Timeout)
	defer cancel()

	log.Printf("Planning read of %s.%s via %s", flags.Database, flags.Table, cfg.Metastore.URL)

	registry := metastore.NewRegistry(func(url string) (metastore.Client, error) {
		path := strings.TrimPrefix(url, "sqlite://")
		return metastore.NewEmbedded(path)
	})
	client, err := registry.GetOrCreate(cfg.Metastore.URL)
	if err != nil {
		log.Fatalf("Failed to open metastore: %v", err)
	}

	tableDef, err := client.GetTable(ctx, flags.Database, flags.Table)
	if err != nil {
		log.Fatalf("Failed to fetch table: %v", err)
	}

	var clusterBy *hive.ClusterKey
	if flags.ClusterBy != "" {
		clusterBy, err = hive.NewClusterKey(strings.Split(flags.ClusterBy, ","), uint64(flags.Buckets), flags.HashFunc)
		if err != nil {
			log.Fatalf("Invalid cluster key: %v", err)
		}
	}
	table := hive.NewTableMeta(tableDef, clusterBy, flags.Database+"."+flags.Table)

	objects := &lister.Router{Local: lister.NewLocalObjects()}
	if cfg.S3.Region != "" || cfg.S3.Endpoint != "" {
		s3Objects, err := lister.NewS3Objects(ctx, lister.S3Config{
			Region:       cfg.S3.Region,
			Endpoint:     cfg.S3.Endpoint,
			UsePathStyle: cfg.S3.UsePathStyle,
		})
		if err != nil {
			log.Fatalf("Failed to initialize S3 client: %v", err)
		}
		objects.S3 = s3Objects
	}

	stats := observability.NewPlanStats()
	p, err := planner.New(planner.Options{
		Table:    table,
		Client:   client,
		Settings: cfg.Planner,
		Objects:  objects,
		Stats:    stats,
	})
	if err != nil {
		log.Fatalf("Failed to build planner: %v", err)
	}

	filter, err := parseFilter(flags.Filter)
	if err != nil {
		log.Fatalf("Invalid filter: %v", err)
	}
	var columns []string
	if flags.Columns != "" {
		columns = strings.Split(flags.Columns, ",")
	}

	txnID := uuid.NewString()
	plan, err := p.PrepareReadContext(ctx, columns, planner.QueryInfo{Filter: filter}, txnID, flags.Streams)
	if err != nil {
		log.Fatalf("Planning failed: %v", err)
	}

	printPlan(plan, stats, table)
}

func parseFlags() Flags {
	var flags Flags
	flag.StringVar(&flags.ConfigPath, "config", "", "Path to config file (yaml or json)")
	flag.StringVar(&flags.Database, "db", "", "Database name")
	flag.StringVar(&flags.Table, "table", "", "Table name")
	flag.StringVar(&flags.Filter, "filter", "", "Filter as col=value[,col=value...]")
	flag.StringVar(&flags.Columns, "columns", "", "Comma separated columns to read")
	flag.IntVar(&flags.Streams, "streams", 0, "Listing concurrency (0 uses config)")
	flag.StringVar(&flags.ClusterBy, "cluster-by", "", "Comma separated cluster-by columns")
	flag.IntVar(&flags.Buckets, "buckets", 0, "Bucket count for cluster-by tables")
	flag.StringVar(&flags.HashFunc, "hash", hive.FuncJavaHash, "Cluster-by hash function")
	flag.DurationVar(&flags.Timeout, "timeout", 30*time.Second, "Planning timeout")
	flag.Parse()

	if flags.Database == "" || flags.Table == "" {
		fmt.Fprintln(os.Stderr, "hiveplan: -db and -table are required")
		flag.Usage()
		os.Exit(2)
	}
	if flags.ClusterBy != "" && flags.Buckets <= 0 {
		fmt.Fprintln(os.Stderr, "hiveplan: -cluster-by requires -buckets")
		os.Exit(2)
	}
	return flags
}

// parseFilter turns "col=value,col=value" into a conjunction of
// equalities. Integer-looking values become integer literals.
func parseFilter(s string) (expr.Expression, error) {
	if s == "" {
		return nil, nil
	}
	var conjuncts []expr.Expression
	for _, part := range strings.Split(s, ",") {
		col, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("malformed term %q, want col=value", part)
		}
		col = strings.TrimSpace(col)
		value = strings.TrimSpace(value)
		if col == "" {
			return nil, fmt.Errorf("malformed term %q, empty column", part)
		}
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			conjuncts = append(conjuncts, expr.Equals(col, n))
		} else {
			conjuncts = append(conjuncts, expr.Equals(col, value))
		}
	}
	return expr.CombineConjuncts(conjuncts), nil
}

func printPlan(plan *planner.ReadPlan, stats *observability.PlanStats, table *hive.TableMeta) {
	log.Printf("Selected %d partitions, %d files", len(plan.Partitions), len(plan.Files))
	if recorded, ok := stats.Table(table.Database + "." + table.Name); ok {
		log.Printf("Partitions before pruning: %d, files before bucket pruning: %d",
			recorded.PartitionsTotal, recorded.FilesListed)
	}
	var total int64
	for _, f := range plan.Files {
		fmt.Printf("%s\t%d\t%s\t%s\n", f.Path, f.Size, f.Format, f.Partition.ID)
		total += f.Size
	}
	log.Printf("Total bytes: %d", total)
}
