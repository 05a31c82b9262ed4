// Package cmd provides the functionality necessary for CLI commands in archstrap.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/archstrap/archstrap/internal/build"
	"github.com/archstrap/archstrap/internal/config"
	"github.com/archstrap/archstrap/internal/i18n"
	"github.com/archstrap/archstrap/internal/telemetry"
)

const shortLicenseText = "Source and issues: " + build.GitHubLink

// globalOptions holds the persistent flags and what is set up from them before a subcommand runs.
type globalOptions struct {
	verbose    bool
	configPath string

	cfg       *config.Config
	logFile   *os.File
	logOutput io.Writer
	shutdown  telemetry.ShutdownFunc
}

// MainCommand provides the main program entrypoint that dispatches to utility subcommands.
func MainCommand() *cobra.Command {
	cmd, _ := mainCommand()
	return cmd
}

// Execute runs the main command and afterwards flushes the traces and closes the log file, also when the
// command failed.
func Execute(ctx context.Context) error {
	cmd, opts := mainCommand()
	return execute(ctx, cmd, opts)
}

func execute(ctx context.Context, cmd *cobra.Command, opts *globalOptions) error {
	err := cmd.ExecuteContext(ctx)
	if closeErr := opts.close(ctx); closeErr != nil {
		logrus.WithError(closeErr).Warn("Unable to flush traces or close log file")
		if err == nil {
			err = closeErr
		}
	}

	return err
}

func mainCommand() (*cobra.Command, *globalOptions) {
	opts := &globalOptions{}
	cmd := rootCommand(opts)

	cmds := []*cobra.Command{
		installCommand(opts),
		checkCommand(opts),
		layoutCommand(opts),
		configCommand(opts),
	}
	for i := range cmds {
		cmd.AddCommand(cmds[i])
	}

	return cmd, opts
}

// rootCommand builds a root command object for program run.
func rootCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archstrap",
		Short: "interactive Arch Linux installer",
		Long: strings.TrimSpace(`
This command installs Arch Linux onto a disk: it partitions the disk, creates an EFI and a btrfs root filesystem
with subvolumes, bootstraps the base system and configures it.

Tasks are reached through subcommands, each with help text and usages that accompany them.
`),
		Version:      build.Version,
		SilenceUsage: true,
	}

	versionTemplate := "{{.Name}} {{.Version}} [%s]\n\n%s\n"
	cmd.SetVersionTemplate(fmt.Sprintf(versionTemplate, build.CommitDate, shortLicenseText))

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging output")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Configuration file (default archstrap.yml, then /etc/archstrap/config.yml)")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := logrus.InfoLevel
		if opts.verbose {
			level = logrus.DebugLevel
		}
		setupLogging(level)

		return opts.setup()
	}

	return cmd
}

// setup loads the configuration and brings up the log file, translations and tracing it configures.
func (opts *globalOptions) setup() error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	opts.cfg = cfg

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("cannot open log file: %w", err)
		}
		opts.logFile = f
		opts.logOutput = logrus.StandardLogger().Out
		logrus.SetOutput(io.MultiWriter(opts.logOutput, f))
		logrus.WithField("path", cfg.LogFile).Debug("Logging to file")
	}

	i18n.Init(afero.NewOsFs(), cfg.LocalesPath)

	shutdown, err := telemetry.Setup(cfg.JaegerEndpoint)
	if err != nil {
		return err
	}
	opts.shutdown = shutdown

	return nil
}

// close flushes the traces and closes the log file. Calling it again does nothing.
func (opts *globalOptions) close(ctx context.Context) error {
	var err error
	if opts.shutdown != nil {
		err = opts.shutdown(ctx)
		opts.shutdown = nil
	}
	if opts.logFile != nil {
		logrus.SetOutput(opts.logOutput)
		if closeErr := opts.logFile.Close(); err == nil {
			err = closeErr
		}
		opts.logFile = nil
	}

	return err
}

// setupLogging configures logrus to use the desired timestamp format and log level.
func setupLogging(level logrus.Level) {
	Formatter := &logrus.TextFormatter{}

	// Configure the formatter
	Formatter.TimestampFormat = time.RFC822
	Formatter.FullTimestamp = true

	// Set the desired log level
	logrus.SetLevel(level)

	logrus.SetFormatter(Formatter)
}

func hasRootPrivileges() bool {
	return os.Geteuid() == 0
}

// assertRootPrivileges checks if the command is running with root permissions.
// If the command doesn't have root permissions, a help message is logged with
// an example and an error is returned.
func assertRootPrivileges(cmd *cobra.Command, args []string) error {
	logrus.Debug("Checking user permissions...")
	ok := hasRootPrivileges()
	if !ok {
		logrus.Warn("Root privileges required, e.g. sudo archstrap install")
		return errors.New("root privileges required, re-run command with sudo")
	}

	return nil
}
