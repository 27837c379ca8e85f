package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"

	"retail-sales-lab/internal/analysis"
	"retail-sales-lab/internal/config"
	"retail-sales-lab/internal/data"
	"retail-sales-lab/internal/db"
	"retail-sales-lab/internal/logging"
	"retail-sales-lab/internal/metrics"
	"retail-sales-lab/internal/report"
)

const (
	workbookName = "sales_dashboard.xlsx"
	summaryName  = "summary.yaml"
	headRows     = 5
)

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, closer, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}
	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	if err := run(context.Background(), cfg, runID, logger, os.Stdout); err != nil {
		logger.Error("run failed", "error", err)
		_ = closer.Close()
		os.Exit(1)
	}
	_ = closer.Close()
}

// loadConfig reads file and env settings, applies the command-line flags on
// top and validates the result once.
func loadConfig(args []string) (*config.Config, error) {
	fs := flag.NewFlagSet("salesreport", flag.ContinueOnError)
	var (
		configPath  = fs.String("config", "", "optional YAML config file")
		orderCount  = fs.Int("orders", data.DefaultOrders, "number of synthetic orders to generate")
		seed        = fs.Int64("seed", data.DefaultSeed, "random seed")
		outDir      = fs.String("out", "reports", "directory for the dashboard workbook and summary")
		persist     = fs.Bool("persist", false, "store orders in the database and cross-check aggregates in SQL")
		skipCharts  = fs.Bool("skip-charts", false, "skip writing the XLSX dashboard")
		metricsFile = fs.String("metrics-file", "", "write run metrics in Prometheus text format to this file")
		showExplain = fs.Bool("explain", false, "log the query plan of each SQL cross-check")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Read(*configPath)
	if err != nil {
		return nil, err
	}

	// Flags only override what was explicitly passed on the command line.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "orders":
			cfg.Orders = *orderCount
		case "seed":
			cfg.Seed = *seed
		case "out":
			cfg.OutputDir = *outDir
		case "persist":
			cfg.Store.Enabled = *persist
		case "skip-charts":
			cfg.Charts = !*skipCharts
		case "metrics-file":
			cfg.MetricsFile = *metricsFile
		case "explain":
			cfg.Explain = *showExplain
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, runID string, logger *slog.Logger, out io.Writer) error {
	dims := make([]analysis.Dimension, 0, len(cfg.GroupBy))
	for _, name := range cfg.GroupBy {
		dim, err := analysis.ParseDimension(name)
		if err != nil {
			return err
		}
		dims = append(dims, dim)
	}

	m := metrics.NewRunMetrics(runID)
	stage := func(name string, start time.Time) {
		d := time.Since(start)
		m.ObserveStage(name, d)
		logger.Debug("stage finished", "stage", name, "duration", d)
	}
	now := time.Now()

	start := time.Now()
	orders, err := data.Generate(cfg.Orders, data.NewRand(cfg.Seed), now)
	if err != nil {
		return err
	}
	ds := data.Assemble(orders)
	stage("generate", start)
	logger.Info("dataset ready", "orders", ds.Len(), "seed", cfg.Seed)

	p := report.NewPrinter(out)

	start = time.Now()
	p.Section(1, "Data exploration")
	if err := p.DatasetInfo(ds, analysis.MissingValues(ds.Rows)); err != nil {
		return err
	}
	if err := p.Head(ds, ds.Head(headRows)); err != nil {
		return err
	}
	summaries, err := analysis.Describe(ds.Rows)
	if err != nil {
		return err
	}
	if err := p.Describe(summaries); err != nil {
		return err
	}

	p.Section(2, "Data cleaning")
	outliers, err := analysis.DetectOutliers(ds.Rows, data.ColumnNetAmount)
	if err != nil {
		return err
	}
	if err := p.Outliers(outliers); err != nil {
		return err
	}
	stage("describe", start)

	start = time.Now()
	p.Section(3, "Sales analysis")
	groups := make(map[analysis.Dimension][]analysis.Group)
	for _, dim := range dims {
		g, err := analysis.SumBy(ds.Rows, dim)
		if err != nil {
			return err
		}
		groups[dim] = g
		m.ObserveGroups(dim, g)

		sorted := append([]analysis.Group(nil), g...)
		analysis.SortGroups(sorted, "value_desc")
		p.Line("")
		if err := p.Groups(string(dim), "Net Sales", sorted); err != nil {
			return err
		}
	}
	channels, err := analysis.ValueCounts(ds.Rows, analysis.DimChannel)
	if err != nil {
		return err
	}
	p.Line("")
	if err := p.ValueCounts(string(analysis.DimChannel), channels); err != nil {
		return err
	}
	trend, err := analysis.MonthlyTrend(ds.Rows)
	if err != nil {
		return err
	}
	ins, err := analysis.BuildInsights(ds)
	if err != nil {
		return err
	}
	m.ObserveInsights(ins)
	stage("aggregate", start)

	start = time.Now()
	p.Section(4, "Visualization")
	charts, err := analysis.BuildCharts(ds)
	if err != nil {
		return err
	}
	if err := p.Charts(charts); err != nil {
		return err
	}
	if cfg.Charts {
		path := filepath.Join(cfg.OutputDir, workbookName)
		if err := (report.Workbook{IncludeOrders: true}).Write(path, ds, charts, ins); err != nil {
			return err
		}
		p.Line("Dashboard saved to %s", path)
		logger.Info("dashboard written", "path", path, "charts", len(charts))
	} else {
		logger.Info("skip-charts enabled; dashboard not written")
	}
	stage("render", start)

	p.Section(5, "Insights")
	p.Insights(ins)

	p.Section(6, "Recommendations")
	p.Recommendations()

	from, to, err := ds.DateRange()
	if err != nil {
		return err
	}
	var summaryGroups [4][]analysis.Group
	for i, dim := range []analysis.Dimension{analysis.DimCategory, analysis.DimSegment, analysis.DimCity, analysis.DimChannel} {
		g, ok := groups[dim]
		if !ok {
			if g, err = analysis.SumBy(ds.Rows, dim); err != nil {
				return err
			}
		}
		summaryGroups[i] = g
	}
	summaryPath := filepath.Join(cfg.OutputDir, summaryName)
	err = report.WriteSummary(summaryPath, report.Summary{
		RunID:        runID,
		GeneratedAt:  now,
		Seed:         cfg.Seed,
		Orders:       ds.Len(),
		DateFrom:     from.Format(data.DateLayout),
		DateTo:       to.Format(data.DateLayout),
		Insights:     ins,
		Describe:     summaries,
		Categories:   summaryGroups[0],
		Segments:     summaryGroups[1],
		Cities:       summaryGroups[2],
		Channels:     summaryGroups[3],
		MonthlyTrend: trend,
	})
	if err != nil {
		return err
	}
	logger.Info("summary written", "path", summaryPath)

	if cfg.Store.Enabled {
		start = time.Now()
		if err := persistAndCheck(ctx, cfg, ds, logger, out); err != nil {
			return err
		}
		stage("persist", start)
	}

	if cfg.MetricsFile != "" {
		m.MarkFinished(time.Now())
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			return err
		}
		logger.Info("metrics written", "path", cfg.MetricsFile)
	}
	return nil
}

func persistAndCheck(ctx context.Context, cfg *config.Config, ds data.Dataset, logger *slog.Logger, out io.Writer) error {
	gdb, err := db.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logger.Warn("failed to close database", "error", err)
		}
	}()

	if err := db.EnsureSchema(gdb); err != nil {
		return err
	}
	if err := db.SaveOrders(ctx, gdb, ds.Orders(), cfg.Store.BatchSize); err != nil {
		return err
	}
	stored, err := db.CountOrders(ctx, gdb)
	if err != nil {
		return err
	}
	logger.Info("orders stored", "driver", cfg.Store.Driver, "orders", stored, "batch", cfg.Store.BatchSize)

	results := db.RunScenarios(ctx, gdb, ds, cfg.Explain)
	if cfg.Explain {
		for _, res := range results {
			if res.Err != nil {
				logger.Warn("skipped explain", "scenario", res.Name, "error", res.Err)
				continue
			}
			logger.Info("query plan", "scenario", res.Name, "description", res.Description)
			for _, line := range res.Explain {
				logger.Info("  " + line)
			}
		}
	}

	fmt.Fprintln(out)
	if err := printResultsTable(out, results); err != nil {
		return err
	}
	for _, res := range results {
		if res.Err == nil && !res.Matched {
			logger.Warn("sql aggregate disagrees with in-memory result", "scenario", res.Name, "max_diff", res.MaxDiff)
		}
	}
	return nil
}

func printResultsTable(w io.Writer, results []db.ScenarioResult) error {
	table := tablewriter.NewWriter(w)
	table.Header("Type", "#", "Scenario", "Description", "Duration", "Rows", "Status")
	rows := make([][]string, 0, len(results))
	currentType := ""
	typeCounter := 0
	for _, res := range results {
		if res.Type != currentType {
			currentType = res.Type
			typeCounter = 0
		}
		typeCounter++
		status := "OK"
		switch {
		case res.Err != nil:
			status = "ERR: " + res.Err.Error()
		case !res.Matched:
			status = fmt.Sprintf("MISMATCH (%.2f)", res.MaxDiff)
		}
		rows = append(rows, []string{
			res.Type,
			fmt.Sprintf("%d", typeCounter),
			res.Name,
			truncateText(res.Description, 40),
			res.Duration.Round(time.Microsecond).String(),
			fmt.Sprintf("%d", res.RowCount),
			status,
		})
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func truncateText(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "…"
}
