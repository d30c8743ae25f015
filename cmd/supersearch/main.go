// SuperSearch indexes news-article JSON files into balanced term indexes
// and answers ranked frequency queries from a CLI, an interactive menu,
// and a REST API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ATKuehn/supersearch/api"
	"github.com/ATKuehn/supersearch/config"
	"github.com/ATKuehn/supersearch/internal/engine"
	"github.com/ATKuehn/supersearch/internal/logging"
	"github.com/ATKuehn/supersearch/internal/metrics"
	"github.com/ATKuehn/supersearch/services"
)

const version = "1.0.0"

func main() {
	var (
		configPath  = flag.String("config", "", "Path to a YAML config file")
		dataDir     = flag.String("data-dir", "", "Override the configured data directory")
		help        = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Usage = printUsage
	flag.Parse()

	if *help {
		printUsage()
		return
	}
	if *showVersion {
		fmt.Printf("SuperSearch v%s\n", version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	command, rest := args[0], args[1:]
	if err := run(command, rest, cfg); err != nil {
		slog.Error("command failed", "command", command, "error", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("SuperSearch - a news-article search engine\n\n")
	fmt.Printf("Usage: %s [options] <command> [arguments]\n\n", os.Args[0])
	fmt.Printf("Commands:\n")
	fmt.Printf("  index <dir>     Index every .json article under dir and save snapshots\n")
	fmt.Printf("  query <terms>   Load saved snapshots and print ranked matches\n")
	fmt.Printf("  serve           Run the REST API server\n")
	fmt.Printf("  ui              Run the interactive menu\n\n")
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  %s index ./articles\n", os.Args[0])
	fmt.Printf("  %s query \"solar -coal ORG:Reuters\"\n", os.Args[0])
	fmt.Printf("  %s --config supersearch.yml serve\n", os.Args[0])
}

func run(command string, args []string, cfg *config.Config) error {
	switch command {
	case "index":
		return runIndex(args, cfg)
	case "query":
		return runQuery(args, cfg)
	case "serve":
		return runServe(cfg)
	case "ui":
		return runUI(cfg)
	default:
		return fmt.Errorf("unknown command %q, run with --help for usage", command)
	}
}

// runIndex walks the given directory into fresh indexes and writes the
// snapshots so later query runs can load them.
func runIndex(args []string, cfg *config.Config) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: index <dir>")
	}

	eng, err := engine.New(cfg, nil)
	if err != nil {
		return err
	}
	defer closeEngine(eng)

	// Extend any previously saved state instead of starting over.
	if err := eng.LoadIndexes(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	stats, err := eng.IndexDirectory(context.Background(), args[0])
	if err != nil {
		return err
	}
	if err := eng.SaveIndexes(); err != nil {
		return err
	}

	fmt.Printf("Indexed %d files (%d failed) in %d ms\n",
		stats.FilesIndexed, stats.FilesFailed, stats.Took)
	printStatsTo(os.Stdout, eng.Stats())
	return nil
}

// runQuery loads the saved snapshots and prints the first page of ranked
// matches for the query string.
func runQuery(args []string, cfg *config.Config) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: query <terms>")
	}

	eng, err := engine.New(cfg, nil)
	if err != nil {
		return err
	}
	defer closeEngine(eng)

	if err := eng.LoadIndexes(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no saved indexes in %s, run 'index <dir>' first", cfg.Data.Dir)
		}
		return err
	}

	result, err := eng.Search(services.SearchQuery{QueryString: strings.Join(args, " ")})
	if err != nil {
		return err
	}
	if result.Total == 0 {
		fmt.Println("No documents match the search criteria.")
		return nil
	}

	fmt.Printf("%d matching documents (%d ms)\n", result.Total, result.Took)
	printHits(os.Stdout, result.Hits, 1)
	if result.Total > len(result.Hits) {
		fmt.Printf("... and %d more, use the ui command to page through them\n",
			result.Total-len(result.Hits))
	}
	return nil
}

// runServe runs the REST API with graceful shutdown on SIGINT/SIGTERM.
func runServe(cfg *config.Config) error {
	m := metrics.New()
	eng, err := engine.New(cfg, m)
	if err != nil {
		return err
	}
	defer closeEngine(eng)

	// Saved snapshots are the warm-start state; starting empty is fine.
	if err := eng.LoadIndexes(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, eng, cfg, m)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func closeEngine(eng *engine.Engine) {
	if err := eng.Close(); err != nil {
		slog.Warn("closing engine", "error", err)
	}
}
