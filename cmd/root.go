package cmd

import (
	"fmt"
	"os"

	"chemstore/internal/config"
	"chemstore/internal/database"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "chemstore",
	Short: "Chemical supplies storefront",
	Long: `ChemStore serves the storefront API: catalog, carts, checkout with
proof of permission, order tracking and the admin back office.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.chemstore.yaml)")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".chemstore")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// openDatabase connects to the configured database and brings its schema up
// to date.
func openDatabase(cfg config.Config) (*gorm.DB, error) {
	db, err := database.Open(database.Config{
		Driver:  cfg.DatabaseDriver,
		DSN:     cfg.DatabaseDSN,
		Verbose: cfg.DatabaseDebug,
	})
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		database.Close(db)
		return nil, err
	}
	return db, nil
}
