package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/liebenlito/pairdist/cache"
	"github.com/liebenlito/pairdist/config"
	"github.com/liebenlito/pairdist/conversion"
	"github.com/liebenlito/pairdist/diskstore"
	"github.com/liebenlito/pairdist/distance"
	"github.com/liebenlito/pairdist/internal/loadhdf5"
	"github.com/liebenlito/pairdist/pairwise"
	"github.com/liebenlito/pairdist/utils"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

// ---------------------------

func setupLogging(cfg config.ConfigMap) {
	// UNIX Time is faster and smaller than most timestamps
	// zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.PrettyLogOutput {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	// ---------------------------
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Debug().Interface("config", cfg).Msg("Environment config")
	}
}

// ---------------------------

type runArgs struct {
	XPath    string
	YPath    string
	Dataset  string
	Strategy string
	OutPath  string
	Clusters int
}

func parseArgs(args []string) (runArgs, error) {
	var ra runArgs
	fs := flag.NewFlagSet("pairdist", flag.ContinueOnError)
	fs.StringVar(&ra.XPath, "x", "", "input matrix X (.mpk, .yaml, .yml or .hdf5)")
	fs.StringVar(&ra.YPath, "y", "", "input matrix Y, defaults to X")
	fs.StringVar(&ra.Dataset, "dataset", "train", "dataset name inside hdf5 inputs")
	fs.StringVar(&ra.Strategy, "strategy", "", "direct or expansion, overrides the config")
	fs.StringVar(&ra.OutPath, "out", "", "write the distance matrix to this .mpk file")
	fs.IntVar(&ra.Clusters, "clusters", 0, "also run KMeans with this many clusters on X")
	if err := fs.Parse(args); err != nil {
		return ra, err
	}
	if ra.XPath == "" {
		return ra, errors.New("-x is required")
	}
	return ra, nil
}

func loadMatrix(path, dataset string) (*pairwise.Matrix, error) {
	if strings.ToLower(filepath.Ext(path)) == ".hdf5" {
		return loadhdf5.Load(path, dataset)
	}
	return conversion.ReadMatrixFile(path)
}

func run(ctx context.Context, cfg config.ConfigMap, ra runArgs) error {
	logger := log.With().Str("runId", uuid.New().String()).Logger()
	// ---------------------------
	strategyName := cfg.Strategy
	if ra.Strategy != "" {
		strategyName = ra.Strategy
	}
	strategy, err := pairwise.ParseStrategy(strategyName)
	if err != nil {
		return err
	}
	// ---------------------------
	x, err := loadMatrix(ra.XPath, ra.Dataset)
	if err != nil {
		return fmt.Errorf("could not load x: %w", err)
	}
	y := x
	if ra.YPath != "" {
		if y, err = loadMatrix(ra.YPath, ra.Dataset); err != nil {
			return fmt.Errorf("could not load y: %w", err)
		}
	}
	logger.Info().Int("xRows", x.Rows()).Int("yRows", y.Rows()).Int("dim", x.Cols()).Str("strategy", strategy.String()).Str("kernel", distance.Implementation()).Msg("Inputs loaded")
	// ---------------------------
	opts := pairwise.Options{
		Strategy:    strategy,
		Workers:     cfg.Workers,
		TileRows:    cfg.TileRows,
		MaxElements: cfg.MaxElements,
	}
	if cfg.Progress {
		bar := progressbar.Default(int64(x.Rows()), "computing")
		defer bar.Close()
		opts.OnTile = func(rows int) {
			bar.Add(rows)
		}
	}
	// ---------------------------
	startTime := time.Now()
	var result *pairwise.Matrix
	if cfg.CacheFile != "" {
		ds, err := diskstore.Open(cfg.CacheFile)
		if err != nil {
			return err
		}
		defer ds.Close()
		resultCache, err := cache.NewResultCache(ds)
		if err != nil {
			return err
		}
		var hit bool
		if result, hit, err = resultCache.GetOrCompute(ctx, x, y, opts); err != nil {
			return err
		}
		logger.Info().Bool("hit", hit).Str("path", ds.Path()).Msg("Result cache")
	} else if result, err = pairwise.ComputeContext(ctx, x, y, opts); err != nil {
		return err
	}
	logger.Info().Int("rows", result.Rows()).Int("cols", result.Cols()).Str("checksum", fmt.Sprintf("%016x", conversion.Checksum(result))).Dur("duration", time.Since(startTime)).Msg("Distances computed")
	// ---------------------------
	if ra.OutPath != "" {
		if err := conversion.WriteMatrixFile(ra.OutPath, result); err != nil {
			return err
		}
		logger.Info().Str("path", ra.OutPath).Msg("Result written")
	}
	// ---------------------------
	if ra.Clusters > 0 {
		kmeans := utils.KMeans{K: ra.Clusters}
		if err := kmeans.Fit(x); err != nil {
			return err
		}
		logger.Info().Int("k", ra.Clusters).Int("iterations", kmeans.Iterations).Ints("labels", kmeans.Labels).Msg("KMeans fitted")
	}
	return nil
}

func main() {
	cfg, err := config.LoadConfig()
	setupLogging(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	ra, err := parseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal().Err(err).Msg("Invalid arguments")
	}
	// ---------------------------
	// kill (no param) default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg, ra); err != nil {
		stop()
		log.Fatal().Err(err).Msg("pairdist failed")
	}
}
