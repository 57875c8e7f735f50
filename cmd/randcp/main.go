package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/randcp/internal/config"
	"github.com/bamsammich/randcp/internal/engine"
	"github.com/bamsammich/randcp/internal/event"
	"github.com/bamsammich/randcp/internal/filter"
	"github.com/bamsammich/randcp/internal/report"
	"github.com/bamsammich/randcp/internal/stats"
	"github.com/bamsammich/randcp/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// filterFlag is a custom pflag.Value that preserves CLI ordering of
// --exclude and --include rules by appending to a shared filter.Chain.
type filterFlag struct {
	chain   *filter.Chain
	include bool
}

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "pattern" }

func (f *filterFlag) Set(val string) error {
	if f.include {
		return f.chain.AddInclude(val)
	}
	return f.chain.AddExclude(val)
}

// sizeFlag parses human-readable sizes such as 100K or 1.5G.
type sizeFlag struct {
	n   int64
	raw string
}

func (s *sizeFlag) String() string { return s.raw }
func (*sizeFlag) Type() string     { return "size" }

func (s *sizeFlag) Set(val string) error {
	n, err := filter.ParseSize(val)
	if err != nil {
		return err
	}
	s.n, s.raw = n, val
	return nil
}

// options holds the parsed command line.
type options struct {
	count          int
	stallTimeout   time.Duration
	seed           uint64
	verify         bool
	bwLimit        sizeFlag
	minSize        sizeFlag
	maxSize        sizeFlag
	filterFile     string
	followSymlinks bool
	history        bool
	resetHistory   bool
	verbose        bool
	quiet          bool
	noProgress     bool
	logFile        string
	showVersion    bool
}

//nolint:gocyclo,revive // cyclomatic,cognitive-complexity: main CLI entry point wires every flag
func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	chain := filter.NewChain()

	rootCmd := &cobra.Command{
		Use:   "randcp [flags] <root> <destination>",
		Short: "Copy a number of randomly chosen files out of a directory tree",
		Long: `randcp walks <root> at random and copies the files it lands on into the
flat <destination> folder until it has copied --count files, the tree is
exhausted, or no file has been copied for --stall-timeout.

Each run is logged to "!<destination name>_log.txt" inside <destination>,
newest run first.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				return nil
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				fmt.Fprintf(stdout, "randcp %s\n", version)
				return nil
			}

			// Configure logging.
			logLevel := slog.LevelWarn
			if opts.verbose {
				logLevel = slog.LevelDebug
			} else if !opts.quiet {
				logLevel = slog.LevelInfo
			}
			textHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel})
			var logHandler slog.Handler = textHandler
			if opts.logFile != "" {
				lf, err := os.Create(opts.logFile)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer lf.Close()
				jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{Level: slog.LevelDebug})
				logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
			}
			slog.SetDefault(slog.New(logHandler))

			// Load optional config file.
			cfg, err := config.Load()
			if err != nil {
				slog.Warn("failed to load config", "path", config.Path(), "error", err)
			}
			if err := applyConfigDefaults(cmd, cfg.Defaults, &opts, chain); err != nil {
				return err
			}

			if opts.filterFile != "" {
				if err := chain.LoadFile(opts.filterFile); err != nil {
					return fmt.Errorf("load filter file: %w", err)
				}
			}
			chain.SetMinSize(opts.minSize.n)
			chain.SetMaxSize(opts.maxSize.n)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			collector := stats.NewCollector()
			events := make(chan event.Event, 256)

			// With --log, every event is also written as a structured record.
			presenterEvents := (<-chan event.Event)(events)
			if opts.logFile != "" {
				presenterEvents = teeEvents(events)
			}

			isTTY := false
			width := 0
			if f, ok := stderr.(*os.File); ok {
				isTTY = ui.IsTTY(f.Fd())
				width = ui.TermWidth(f.Fd(), 80)
			}
			presenter := ui.NewPresenter(ui.Config{
				Writer:     stdout,
				ErrWriter:  stderr,
				Stats:      collector,
				Width:      width,
				IsTTY:      isTTY,
				Quiet:      opts.quiet,
				Verbose:    opts.verbose,
				NoProgress: opts.noProgress,
			})

			engineCfg := engine.Config{
				Root:           args[0],
				Dst:            args[1],
				Count:          opts.count,
				StallTimeout:   opts.stallTimeout,
				Seed:           opts.seed,
				Verify:         opts.verify,
				BWLimit:        opts.bwLimit.n,
				FollowSymlinks: opts.followSymlinks,
				History:        opts.history || opts.resetHistory,
				ResetHistory:   opts.resetHistory,
				Events:         events,
				Stats:          collector,
			}
			if !chain.Empty() {
				engineCfg.Filter = chain
			}

			slog.Debug("starting run",
				"root", engineCfg.Root,
				"dst", engineCfg.Dst,
				"count", engineCfg.Count,
				"stall_timeout", engineCfg.StallTimeout,
				"verify", engineCfg.Verify,
			)

			var presenterErr error
			var presenterWg sync.WaitGroup
			presenterWg.Add(1)
			go func() {
				defer presenterWg.Done()
				presenterErr = presenter.Run(presenterEvents)
			}()

			result := engine.Run(ctx, engineCfg)
			stop()
			close(events)
			presenterWg.Wait()
			if presenterErr != nil {
				fmt.Fprintf(stderr, "presenter: %v\n", presenterErr)
			}

			if result.Err != nil && result.Report.Status == 0 {
				return result.Err
			}

			if !opts.quiet {
				if summary := presenter.Summary(); summary != "" {
					fmt.Fprintln(stderr, summary)
				}
			}

			if result.Err != nil {
				slog.Error("run failed", "error", result.Err)
			}
			return exitFor(result)
		},
	}

	flags := rootCmd.Flags()
	flags.BoolVar(&opts.showVersion, "version", false, "print version and exit")
	flags.IntVarP(&opts.count, "count", "n", 1, "number of files to copy")
	flags.DurationVar(&opts.stallTimeout, "stall-timeout", engine.DefaultStallTimeout,
		"give up when no file has been copied for this long")
	flags.Uint64Var(&opts.seed, "seed", 0, "random seed for a reproducible walk (0 picks one)")
	flags.BoolVar(&opts.verify, "verify", false, "verify each copy with a BLAKE3 checksum before keeping it")
	flags.Var(&opts.bwLimit, "bwlimit", "bandwidth limit per second (e.g. 10M, 1G)")
	flags.Var(&filterFlag{chain: chain, include: false}, "exclude", "never pick paths matching PATTERN (repeatable)")
	flags.Var(&filterFlag{chain: chain, include: true}, "include", "keep paths matching PATTERN even if a later rule excludes them (repeatable)")
	flags.StringVar(&opts.filterFile, "filter", "", "read filter rules from FILE")
	flags.Var(&opts.minSize, "min-size", "skip files smaller than SIZE (e.g. 1M, 100K)")
	flags.Var(&opts.maxSize, "max-size", "skip files larger than SIZE (e.g. 1G, 500M)")
	flags.BoolVar(&opts.followSymlinks, "follow-symlinks", false, "descend into symlinked directories")
	flags.BoolVar(&opts.history, "history", false, "skip files copied into <destination> by earlier runs")
	flags.BoolVar(&opts.resetHistory, "reset-history", false, "forget earlier runs, then record this one (implies --history)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress all output except errors")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "disable the progress display")
	flags.StringVar(&opts.logFile, "log", "", "write structured JSON log to FILE")

	rootCmd.AddCommand(newDocsCmd())
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name == "exclude" || f.Name == "include" {
			f.NoOptDefVal = ""
		}
	})

	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

// teeEvents logs each event as a randcp.event record and forwards it.
func teeEvents(events <-chan event.Event) <-chan event.Event {
	teed := make(chan event.Event, 256)
	go func() {
		for ev := range events {
			attrs := []slog.Attr{slog.String("type", ev.Type.String())}
			if ev.Path != "" {
				attrs = append(attrs, slog.String("path", ev.Path))
			}
			if ev.Size > 0 {
				attrs = append(attrs, slog.Int64("size", ev.Size))
			}
			if ev.Count > 0 {
				attrs = append(attrs, slog.Int("count", ev.Count))
			}
			if ev.Result != nil {
				attrs = append(attrs, slog.String("status", ev.Result.Status.String()))
			}
			if ev.Error != nil {
				attrs = append(attrs, slog.String("error", ev.Error.Error()))
			}
			slog.LogAttrs(context.Background(), slog.LevelInfo, "randcp.event", attrs...)
			teed <- ev
		}
		close(teed)
	}()
	return teed
}

// applyConfigDefaults applies config file defaults for flags not explicitly
// set on the CLI. Config excludes are appended after CLI rules so that CLI
// rules match first.
func applyConfigDefaults(cmd *cobra.Command, d config.DefaultsConfig, opts *options, chain *filter.Chain) error {
	flags := cmd.Flags()
	if !flags.Changed("count") && d.Count != nil {
		opts.count = *d.Count
	}
	if !flags.Changed("stall-timeout") && d.StallTimeout != nil {
		opts.stallTimeout = d.StallTimeout.Duration
	}
	if !flags.Changed("verify") && d.Verify != nil {
		opts.verify = *d.Verify
	}
	if !flags.Changed("follow-symlinks") && d.FollowSymlinks != nil {
		opts.followSymlinks = *d.FollowSymlinks
	}
	if !flags.Changed("history") && d.History != nil {
		opts.history = *d.History
	}
	if !flags.Changed("seed") && d.Seed != nil {
		opts.seed = *d.Seed
	}
	if !flags.Changed("bwlimit") && d.BWLimit != nil {
		if err := opts.bwLimit.Set(*d.BWLimit); err != nil {
			return fmt.Errorf("invalid bwlimit in config: %w", err)
		}
	}
	for _, pattern := range d.Exclude {
		if err := chain.AddExclude(pattern); err != nil {
			return fmt.Errorf("invalid exclude in config: %w", err)
		}
	}
	return nil
}

// exitFor maps a finished run to the process exit code: 0 when every
// requested file was copied, 1 when some were, 2 when none were.
func exitFor(result engine.Result) error {
	switch {
	case result.Err == nil && result.Report.Status == report.Success:
		return nil
	case result.Report.Copied > 0:
		return &exitError{code: 1}
	default:
		return &exitError{code: 2}
	}
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
