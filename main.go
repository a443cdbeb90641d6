package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"readiness/internal/config"
	"readiness/internal/ingest"
	"readiness/internal/logging"
	"readiness/internal/report"
	"readiness/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	configPath := flag.String("config", "", "config file (default ~/.recovery/config.json)")
	nowFlag := flag.String("now", "", "evaluate as of this RFC 3339 time instead of the current time")
	brief := flag.Bool("brief", false, "print a single status line")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <export.json|export.yaml|workout.fit>...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return errors.New("no input files")
	}

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	now := time.Now()
	if *nowFlag != "" {
		if now, err = time.Parse(time.RFC3339, *nowFlag); err != nil {
			return fmt.Errorf("parsing -now: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logging.ContextWithLogger(ctx, logger)

	ds, err := loadInputs(flag.Args())
	if err != nil {
		return err
	}
	logger.Debug("inputs loaded", "files", flag.NArg(), "workouts", len(ds.Workouts), "days", len(ds.Metrics))

	params, err := cfg.AnalysisParams()
	if err != nil {
		return fmt.Errorf("building model parameters: %w", err)
	}

	// Create services
	svc, err := service.NewRecoveryService(params, cfg.Profile(), logger)
	if err != nil {
		return fmt.Errorf("creating recovery service: %w", err)
	}

	r, err := svc.BuildReport(ctx, ds, now)
	if err != nil {
		return fmt.Errorf("building report: %w", err)
	}

	if *brief {
		fmt.Println(report.Brief(r, now))
		return nil
	}
	fmt.Print(report.Render(r, now))
	return nil
}

// loadConfig reads the config at path, or the default location. On first run
// an example config is written and the defaults are used.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFrom(path)
	} else {
		cfg, err = config.Load()
	}

	if errors.Is(err, config.ErrNoConfig) {
		if path != "" {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := config.CreateExample(); err != nil {
			return nil, fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Fprintf(os.Stderr, "No config file found. Wrote defaults to %s/config.json\n\n", configDir)

		defaults := config.DefaultConfig()
		if err := defaults.ApplyEnv(os.Getenv); err != nil {
			return nil, err
		}
		return &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// loadInputs reads every input file into one dataset
func loadInputs(paths []string) (*ingest.Dataset, error) {
	var ds *ingest.Dataset
	for _, path := range paths {
		var (
			next *ingest.Dataset
			err  error
		)
		if strings.EqualFold(filepath.Ext(path), ".fit") {
			next, err = ingest.LoadFIT(path)
		} else {
			next, err = ingest.LoadExport(path)
		}
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}

		if ds == nil {
			ds = next
			continue
		}
		ds.Merge(next)
	}
	return ds, nil
}
