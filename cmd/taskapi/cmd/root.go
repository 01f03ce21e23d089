package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/terraconstructs/taskapi/cmd/taskapi/cmd/users"
	"github.com/terraconstructs/taskapi/internal/config"
	"github.com/terraconstructs/taskapi/internal/logging"
)

var (
	cfg     *config.Config
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "taskapi",
	Short: "Task tracking API server",
	Long: `taskapi serves a multi-tenant task tracking REST API. Requests authenticate
with local Basic credentials or identity provider bearer tokens.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
			}
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Path to a YAML config file")
	pf.String("db-url", "", "Database connection URL (env: TASKAPI_DATABASE_URL)")
	pf.String("server-addr", "", "Server bind address (env: TASKAPI_SERVER_ADDR)")
	pf.Bool("debug", false, "Enable debug logging (env: TASKAPI_DEBUG)")
	pf.String("log-format", "", "Log format: json or console (env: TASKAPI_LOG_FORMAT)")

	bindFlag("database_url", "db-url")
	bindFlag("server_addr", "server-addr")
	bindFlag("debug", "debug")
	bindFlag("log.format", "log-format")

	rootCmd.AddCommand(users.UsersCmd)
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
