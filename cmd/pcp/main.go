package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pcp-io/pcp/internal/config"
	"github.com/pcp-io/pcp/internal/engine"
	"github.com/pcp-io/pcp/internal/event"
	"github.com/pcp-io/pcp/internal/stats"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		threads     int
		recursive   bool
		verifyFlag  bool
		quiet       bool
		verbose     bool
		showVersion bool
		bwLimitStr  string
		logFile     string
	)

	rootCmd := &cobra.Command{
		Use:   "pcp [flags] <source> <destination>",
		Short: "Copy files by splitting them into slices and copying the slices in parallel",
		Long: `pcp copies a file (or, with -r, a directory tree) by partitioning each
file into disjoint byte ranges and copying the ranges concurrently with
positional I/O.

pcp is fail-fast: the first error aborts the run, and an interrupted copy
leaves the destination at the correct size with incomplete content. It never
rolls back, never retries, and never pre-checks free disk space.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				return nil
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "pcp %s\n", version)
				return nil
			}

			src, dst := args[0], args[1]

			if verifyFlag && recursive {
				return fmt.Errorf("--verify applies to single-file copies only")
			}

			// Configure logging.
			logLevel := slog.LevelWarn
			if verbose {
				logLevel = slog.LevelDebug
			} else if !quiet {
				logLevel = slog.LevelInfo
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			}))
			slog.SetDefault(logger)

			// Load optional config file and apply defaults for flags not
			// explicitly set on the CLI.
			cfg, err := config.Load()
			if err != nil {
				slog.Warn("failed to load config", "error", err)
			}
			applyConfigDefaults(cmd, cfg.Defaults, &threads, &verifyFlag, &bwLimitStr)

			var bwLimit int64
			if bwLimitStr != "" {
				bwLimit, err = config.ParseSize(bwLimitStr)
				if err != nil {
					return fmt.Errorf("invalid --bwlimit: %w", err)
				}
			}

			// Event log: debug-level text by default, JSON file with --log.
			eventLog := logger
			eventLevel := slog.LevelDebug
			if logFile != "" {
				lf, lfErr := os.Create(logFile)
				if lfErr != nil {
					return fmt.Errorf("open log file: %w", lfErr)
				}
				defer lf.Close()
				eventLog = slog.New(slog.NewJSONHandler(lf, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				}))
				eventLevel = slog.LevelInfo
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			collector := stats.NewCollector()
			events := make(chan event.Event, 256)

			var drainWg sync.WaitGroup
			drainWg.Add(1)
			go func() {
				defer drainWg.Done()
				drainEvents(eventLog, eventLevel, events)
			}()

			slog.Debug("starting copy",
				"src", src,
				"dst", dst,
				"threads", threads,
				"recursive", recursive,
				"verify", verifyFlag,
				"bwlimit", bwLimit,
			)

			result := engine.Run(ctx, engine.Config{
				Src:       src,
				Dst:       dst,
				Threads:   threads,
				Recursive: recursive,
				Verify:    verifyFlag,
				BWLimit:   bwLimit,
				Events:    events,
				Stats:     collector,
			})
			stop()
			close(events)
			drainWg.Wait()

			if !quiet {
				printSummary(result)
			}

			if result.Err != nil {
				slog.Error("copy failed", "error", result.Err)
				if result.Stats.FilesCopied > 0 {
					return &exitError{code: 1} // partial failure
				}
				return &exitError{code: 2} // total failure
			}
			return nil
		},
	}

	rootCmd.Flags().IntVarP(&threads, "threads", "t", engine.DefaultThreads, "thread count per file")
	rootCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "treat <source> as a directory; copy tree")
	rootCmd.Flags().BoolVarP(&verifyFlag, "verify", "v", false, "single-file mode only: re-check equality after copy")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "V", false, "print version and exit")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "verbose output")
	rootCmd.Flags().StringVar(&bwLimitStr, "bwlimit", "", "bandwidth limit (e.g. 100M, 1G)")
	rootCmd.Flags().StringVar(&logFile, "log", "", "write structured JSON event log to FILE")

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitError); ok {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

// applyConfigDefaults applies config file defaults for flags not explicitly
// set on the CLI.
func applyConfigDefaults(
	cmd *cobra.Command,
	defaults config.DefaultsConfig,
	threads *int,
	verify *bool,
	bwLimit *string,
) {
	if !cmd.Flags().Changed("threads") && defaults.Threads != nil {
		*threads = *defaults.Threads
	}
	if !cmd.Flags().Changed("verify") && defaults.Verify != nil {
		*verify = *defaults.Verify
	}
	if !cmd.Flags().Changed("bwlimit") && defaults.BWLimit != nil {
		*bwLimit = *defaults.BWLimit
	}
}

// drainEvents logs every engine event as a structured record until the
// channel closes.
func drainEvents(logger *slog.Logger, level slog.Level, events <-chan event.Event) {
	for ev := range events {
		attrs := []slog.Attr{
			slog.String("type", ev.Type.String()),
			slog.String("path", ev.Path),
			slog.Int64("size", ev.Size),
		}
		if ev.Type == event.SliceCompleted {
			attrs = append(attrs, slog.Int64("offset", ev.Offset))
		}
		if ev.Error != nil {
			attrs = append(attrs, slog.String("error", ev.Error.Error()))
		}
		logger.LogAttrs(context.Background(), level, "pcp.event", attrs...)
	}
}

func printSummary(result engine.Result) {
	s := result.Stats
	fmt.Fprintf(os.Stderr, "%s written in %.1fs = %.3f Gbit/s\n",
		stats.FormatBytes(s.BytesCopied),
		s.Elapsed.Seconds(),
		s.Throughput()/1e9,
	)
	if result.Verify != nil {
		if result.Verify.Identical {
			fmt.Fprintln(os.Stderr, "verified: source and destination are identical")
		} else {
			fmt.Fprintf(os.Stderr, "verification FAILED: clean up the invalid copy at %s\n",
				result.Verify.DstPath)
		}
	}
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
