// Command rfidplace searches for a good placement of RFID antennas on a floor
// plan and writes coverage reports.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Ksonar262/RFID/config"
	"github.com/Ksonar262/RFID/metrics"
	"github.com/Ksonar262/RFID/pop"
	"github.com/Ksonar262/RFID/report"
	"github.com/Ksonar262/RFID/swarm"
	"github.com/prometheus/client_golang/prometheus"
	_ "modernc.org/sqlite"
)

type flags struct {
	config    string
	out       string
	seed      int64
	iters     int
	particles int
	ants      int
	workers   int
	rule      string
	verbose   bool
	logFormat string
}

func parseFlags(args []string) (*flags, map[string]bool, error) {
	f := &flags{}
	fs := flag.NewFlagSet("rfidplace", flag.ContinueOnError)
	fs.StringVar(&f.config, "config", "", "Config YAML file (empty = use defaults)")
	fs.StringVar(&f.out, "out", "", "Output directory (overrides output.dir)")
	fs.Int64Var(&f.seed, "seed", 0, "Random seed (0 = time based)")
	fs.IntVar(&f.iters, "iters", 0, "Number of swarm iterations")
	fs.IntVar(&f.particles, "particles", 0, "Number of particles")
	fs.IntVar(&f.ants, "ants", 0, "Number of antennas to place")
	fs.IntVar(&f.workers, "workers", 0, "Concurrent objective evaluations (1 = serial)")
	fs.StringVar(&f.rule, "rule", "", "Velocity update rule: shared-global or canonical")
	fs.BoolVar(&f.verbose, "v", false, "Debug logging")
	fs.StringVar(&f.logFormat, "log-format", "json", "Log format: json or text")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return f, set, nil
}

func newLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// applyFlags overrides cfg with the flags given on the command line.
func applyFlags(cfg *config.Config, f *flags, set map[string]bool) {
	if set["out"] {
		cfg.Output.Dir = f.out
	}
	if set["seed"] {
		cfg.Swarm.Seed = f.seed
	}
	if set["iters"] {
		cfg.Swarm.NumIters = f.iters
	}
	if set["particles"] {
		cfg.Swarm.NumParticles = f.particles
	}
	if set["ants"] {
		cfg.Swarm.NumAnts = f.ants
	}
	if set["workers"] {
		cfg.Swarm.Workers = f.workers
	}
	if set["rule"] {
		cfg.Swarm.Rule = f.rule
	}
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "rfidplace:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	f, set, err := parseFlags(args)
	if err != nil {
		return err
	}
	logger, err := newLogger(stderr, f.logFormat, f.verbose)
	if err != nil {
		return err
	}

	cfg, err := config.Load(f.config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyFlags(cfg, f, set)
	if err := cfg.Validate(); err != nil {
		return err
	}

	g, err := cfg.Grid()
	if err != nil {
		return err
	}
	settings, err := cfg.Settings()
	if err != nil {
		return err
	}

	out, err := report.NewWriter(cfg.Output.Dir)
	if err != nil {
		return err
	}

	opts := []swarm.Option{swarm.Logger(logger)}

	var reg *prometheus.Registry
	if cfg.Output.Metrics {
		reg = prometheus.NewRegistry()
		opts = append(opts, swarm.Metrics(metrics.NewPrometheus(reg, "")))
	}

	if cfg.Output.Trace != "" {
		path := out.Path(cfg.Output.Trace)
		db, err := sql.Open("sqlite", path)
		if err != nil {
			return fmt.Errorf("opening trace database: %w", err)
		}
		defer db.Close()
		opts = append(opts, swarm.DB(db))
		logger.Info("tracing iterations", "path", path)
	}

	if cfg.Output.Elite > 0 {
		opts = append(opts, swarm.Elite(pop.NewArchive(cfg.Output.Elite)))
	}

	res, err := swarm.Optimize(g, settings, opts...)
	if err != nil {
		return err
	}

	if err := out.WriteConfig(cfg); err != nil {
		return err
	}
	written, err := out.WriteResult(res, report.Formats{
		CSV:  cfg.Output.CSV,
		PNG:  cfg.Output.PNG,
		HTML: cfg.Output.HTML,
	})
	for _, p := range written {
		logger.Info("wrote report", "path", p)
	}
	if err != nil {
		return err
	}

	if reg != nil && out != nil {
		path := out.Path("metrics.prom")
		if err := metrics.WriteTextfile(path, reg); err != nil {
			return err
		}
		logger.Info("wrote metrics", "path", path)
	}

	fmt.Fprintf(stdout, "best fitness: %.6f (coverage %.6f, repulsion %.6f)\n", res.Fitness, res.CoverageScore, res.Repulsion)
	for i, c := range res.Best {
		fmt.Fprintf(stdout, "antenna %d: %v\n", i, c)
	}
	return nil
}
