// Package cli builds the remote-storage command tree.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nimburion/remotestore/pkg/config"
	"github.com/nimburion/remotestore/pkg/observability/logger"
)

// Options configures the root command.
type Options struct {
	Name        string
	Description string
	// EnvPrefix defaults to APP.
	EnvPrefix string
}

type rootFlags struct {
	configFile string
	envPrefix  string
}

// NewRootCommand creates the CLI with serve, get, set, delete, version and
// config subcommands. Running the root command alone starts the server.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Name == "" {
		opts.Name = "remote-storage"
	}
	if opts.EnvPrefix == "" {
		opts.EnvPrefix = "APP"
	}

	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:           opts.Name,
		Short:         opts.Description,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configFile, "config-file", "c", "", "config file path")
	pf.StringVar(&flags.envPrefix, "env-prefix", opts.EnvPrefix, "prefix for environment variables")
	pf.String("data-store", "", "data store backend (sqlite, redis, memory)")
	pf.String("database-path", "", "sqlite database file")
	pf.String("redis-url", "", "redis connection URL")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format (json, text)")

	serveCmd := newServeCommand(opts.Name, flags)
	rootCmd.AddCommand(
		serveCmd,
		newGetCommand(flags),
		newSetCommand(flags),
		newDeleteCommand(flags),
		newVersionCommand(opts.Name),
		newConfigCommand(flags),
	)
	rootCmd.RunE = serveCmd.RunE
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	return rootCmd
}

// LoadConfigAndLogger loads configuration with flags > env > file > defaults
// precedence and builds the zap logger it describes. Log output goes to out.
func LoadConfigAndLogger(cfgPath, envPrefix string, flags *pflag.FlagSet, out io.Writer) (*config.Config, logger.Logger, error) {
	loader := config.NewViperLoader(cfgPath, resolveEnvPrefix(envPrefix)).WithFlags(flags)
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.NewZapLogger(logger.Config{
		Level:  logger.LogLevel(cfg.Observability.LogLevel),
		Format: logger.LogFormat(cfg.Observability.LogFormat),
		Output: out,

		Service:     cfg.Service.Name,
		Environment: cfg.Service.Environment,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	if cfg.Observability.LogLevel == string(logger.DebugLevel) {
		log.Debug("effective configuration", "config", fmt.Sprintf("%+v", cfg.Redacted()))
	}
	return cfg, log, nil
}

func (f *rootFlags) load(cmd *cobra.Command) (*config.Config, logger.Logger, error) {
	return LoadConfigAndLogger(f.configFile, f.envPrefix, cmd.Flags(), cmd.ErrOrStderr())
}

// Execute runs the command and exits with appropriate code.
func Execute(cmd *cobra.Command) {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolveEnvPrefix(prefix string) string {
	trimmed := strings.TrimSpace(prefix)
	if trimmed == "" {
		return "APP"
	}
	return strings.ToUpper(trimmed)
}
