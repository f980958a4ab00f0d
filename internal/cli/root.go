package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/andyrewlee/g3console/data"
	"github.com/andyrewlee/g3console/internal/config"
	"github.com/andyrewlee/g3console/internal/logging"
	"github.com/spf13/cobra"
)

// Exit codes
const (
	ExitOK    = 0
	ExitError = 1
)

// GlobalOptions holds options shared across all commands
type GlobalOptions struct {
	ConfigPath string
	Server     string
	LogLevel   string
	LogFile    string
	JSON       bool
}

// app is the state a command runs against, built before each command.
type app struct {
	cfg    *config.Config
	client *data.Client
	log    *slog.Logger
	closer io.Closer
}

// NewRootCmd builds the g3console command tree.
func NewRootCmd() *cobra.Command {
	opts := &GlobalOptions{}
	a := &app{}

	root := &cobra.Command{
		Use:   "g3console [PATH]",
		Short: "Terminal console for g3 agent instances",
		Long: `g3console shows the live state of running g3 instances.

Without a subcommand it opens the interactive console at PATH
("/" for the instance list, "/instance/<id>" for one instance).
Subcommands talk to the same API for scripting.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runConsole(cmd, a, path)
		},
	}

	// Global flags
	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Path to config file (default ~/.config/g3console/config.yaml)")
	root.PersistentFlags().StringVar(&opts.Server, "server", "", "API server URL (or set G3CONSOLE_SERVER)")
	root.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Log level (error|warn|info|debug)")
	root.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "Log file path, empty to disable")
	root.PersistentFlags().BoolVar(&opts.JSON, "json", false, "Output in JSON format")
	root.Flags().Bool("no-restore", false, "Do not restore the last visited path")

	// Add subcommands
	root.AddCommand(newLsCmd(a, opts))
	root.AddCommand(newShowCmd(a, opts))
	root.AddCommand(newLogsCmd(a, opts))
	root.AddCommand(newLaunchCmd(a, opts))
	root.AddCommand(newKillCmd(a, opts))
	root.AddCommand(newRestartCmd(a, opts))
	root.AddCommand(newStateCmd(a))

	return root
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(ExitError)
	}
}

// setup loads configuration, applies flags over it and sets up logging and the client.
// Precedence: flags > env > config file > defaults.
func (a *app) setup(cmd *cobra.Command, opts *GlobalOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.Server = opts.Server
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.LogLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = opts.LogFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closer, err := logging.Setup(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	client := data.NewClient(cfg.Server, cfg.RequestTimeout)
	client.Logger = logger

	a.cfg = cfg
	a.client = client
	a.log = logger
	a.closer = closer
	logger.Debug("command started", "command", cmd.CommandPath(), "server", cfg.Server)
	return nil
}

func (a *app) close() {
	if a.closer != nil {
		_ = a.closer.Close()
		a.closer = nil
	}
}
