// Package cli implements echoctl, a command line client for an ECHO app.
//
// Connection settings come from flags, an optional config file and ECHO_
// environment variables, in that order of precedence.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	echo "github.com/echopf/echo.go"
	"github.com/echopf/echo.go/pkg/logger"
)

const envPrefix = "ECHO"

var configKeys = []string{"domain", "scheme", "app_id", "app_key", "access_token", "timeout"}

type options struct {
	v          *viper.Viper
	configFile string
	logLevel   string
}

// NewRootCommand builds the echoctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{v: viper.New()}

	root := &cobra.Command{
		Use:           "echoctl",
		Short:         "Inspect the contents of an ECHO app",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Path to a config file (yaml, json or toml)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level written to stderr")
	flags.String("domain", "", "Host serving the app")
	flags.String("scheme", "", "URL scheme, https by default")
	flags.String("app-id", "", "Application id")
	flags.String("app-key", "", "Application key")
	flags.String("access-token", "", "Member access token")
	flags.Duration("timeout", 0, "Per-request timeout")

	for _, key := range configKeys {
		_ = opts.v.BindPFlag(key, flags.Lookup(flagName(key)))
	}

	root.AddCommand(
		newGetCommand(opts),
		newFindCommand(opts),
		newTreeCommand(opts),
		newListenCommand(opts),
	)
	return root
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

func (o *options) config() (echo.Config, error) {
	o.v.SetEnvPrefix(envPrefix)
	for _, key := range configKeys {
		_ = o.v.BindEnv(key)
	}
	o.v.SetDefault("scheme", "https")

	if o.configFile != "" {
		o.v.SetConfigFile(o.configFile)
		if err := o.v.ReadInConfig(); err != nil {
			return echo.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg echo.Config
	if err := o.v.Unmarshal(&cfg); err != nil {
		return echo.Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (o *options) newLogger() (logger.Logger, error) {
	log, err := logger.New().Level(o.logLevel).Make()
	if err != nil {
		return nil, err
	}
	return log, nil
}

func (o *options) client() (*echo.Client, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	if cfg.Logger, err = o.newLogger(); err != nil {
		return nil, err
	}
	return echo.New(cfg)
}

// Execute runs echoctl and exits with a non-zero status on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
