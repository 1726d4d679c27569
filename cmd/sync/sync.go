package sync

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sidkik/foldersync/cmd/util"
	"github.com/sidkik/foldersync/pkg/changelog"
	"github.com/sidkik/foldersync/pkg/config"
	"github.com/sidkik/foldersync/pkg/errors"
	"github.com/sidkik/foldersync/pkg/fswatch"
	"github.com/sidkik/foldersync/pkg/mirror"
	"github.com/sidkik/foldersync/pkg/scheduler"
)

// Mocked for unit testing.
var stdout io.Writer = os.Stdout

type flags struct {
	optionsPath string
	watch       bool
	verbose     bool
	once        bool
}

// New creates the command that mirrors a source folder into a replica folder.
func New() *cobra.Command {
	var f flags
	cobraCmd := &cobra.Command{
		Use:   "foldersync <source> <replica> <interval> <log_file>",
		Short: "Periodically mirror a folder into a replica",
		Long: `Mirror the source folder into the replica folder every <interval> seconds.

Files and folders that are missing from the replica are copied over, and
anything in the replica that's not in the source is removed. Files that
already exist in the replica are never overwritten.

Every change is printed and appended to <log_file>. The sync keeps running
until it's interrupted.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != config.NumArgs {
				return errors.NewFriendlyError("Usage: %s", cmd.UseLine())
			}
			return nil
		},
		Run: func(_ *cobra.Command, args []string) {
			if err := run(args, f); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cobraCmd.Flags().StringVar(&f.optionsPath, "config", "",
		"Path to the options file. Defaults to "+config.DefaultOptionsPath)
	cobraCmd.Flags().BoolVar(&f.watch, "watch", false,
		"Also sync as soon as the source changes, rather than only every interval.")
	cobraCmd.Flags().BoolVar(&f.verbose, "verbose", false,
		"Log a summary of every pass.")
	cobraCmd.Flags().BoolVar(&f.once, "once", false,
		"Run a single pass and exit.")
	return cobraCmd
}

func run(args []string, f flags) error {
	cfg, err := config.ParseArgs(args)
	if err != nil {
		return errors.WithContext(err, "parse arguments")
	}

	opts, err := config.ParseOptions(f.optionsPath)
	if err != nil {
		return errors.WithContext(err, "parse options")
	}

	logger, err := changelog.New(cfg.LogPath, stdout, changelog.Options{
		Verbose: f.verbose || opts.Verbose || os.Getenv(util.VerboseLogKey) == "true",
		Color:   opts.Color,
	})
	if err != nil {
		return errors.WithContext(err, "create change log")
	}
	changelog.RedirectStandard(logger)

	s := scheduler.Scheduler{
		Synchronizer: mirror.New(afero.NewOsFs(), logger),
		Source:       cfg.Source,
		Replica:      cfg.Replica,
		Interval:     cfg.Interval,
		Clock:        clockwork.NewRealClock(),
		Log:          logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if f.once {
		if err := s.Once(ctx); err != nil {
			// The cause was already logged by RunOnce.
			return errors.NewFriendlyError("Synchronization failed. See %s for details.", cfg.LogPath)
		}
		return nil
	}

	if f.watch || opts.Watch {
		watcher, err := fswatch.Watch(cfg.Source, logger)
		if err != nil {
			logger.WithError(err).Warnf("Failed to watch the source folder for changes. "+
				"Falling back to syncing every %s.", cfg.Interval)
		} else {
			defer watcher.Close()
			s.Trigger = watcher.Changes
		}
	}

	logger.WithField("interval", cfg.Interval).Debugf(
		"Mirroring %s into %s", cfg.Source, cfg.Replica)
	s.Run(ctx)
	return nil
}
