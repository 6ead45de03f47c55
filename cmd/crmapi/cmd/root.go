package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/hearthstone-labs/crm/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "crmapi",
	Short: "Real-estate CRM API server",
	Long: `crmapi serves the CRM REST API for clients and transactions and manages
its database schema.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd); err != nil {
			return err
		}
		if err := readConfigFile(cmd); err != nil {
			return err
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./crmapi.yaml if present)")
	rootCmd.PersistentFlags().String("db-url", "", "Database connection URL (env: CRM_DATABASE_URL)")
	rootCmd.PersistentFlags().String("server-addr", "", "Server bind address (env: CRM_SERVER_ADDR)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (env: CRM_DEBUG)")
}

// bindFlags lets explicitly set flags override file and environment values.
func bindFlags(cmd *cobra.Command) error {
	for key, flag := range map[string]string{
		"database_url": "db-url",
		"server_addr":  "server-addr",
		"debug":        "debug",
	} {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag --%s: %w", flag, err)
		}
	}
	return nil
}

func readConfigFile(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("crmapi")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
