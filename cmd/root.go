package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adaptik3d/adaptik/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `	           _             _   _ _
	  __ _  __| | __ _ _ __ | |_(_) | __
	 / _' |/ _' |/ _' | '_ \| __| | |/ /
	| (_| | (_| | (_| | |_) | |_| |   <
	 \__,_|\__,_|\__,_| .__/ \__|_|_|\_\
	                  |_|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "adaptik",
	Short: "Adaptive 3D asset selection for bandwidth- and GPU-constrained devices.",
	Long: LOGO + `adaptik probes what a device can actually handle (network, memory, GPU,
display, battery), scores a catalog of interchangeable 3D model variants
against it, and fetches the winner with progress and retry.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.adaptik.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".adaptik")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.adaptik.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default values for all keys
	viper.SetDefault("probe.urls", []string{
		"https://speed.cloudflare.com/__down?bytes=131072",
		"https://httpbin.org/bytes/65536",
	})
	viper.SetDefault("probe.timeout", "8s")
	viper.SetDefault("probe.useragent", "")
	viper.SetDefault("catalog.db", "adaptik.sqlite")
	viper.SetDefault("preferences.quality", "")
	viper.SetDefault("preferences.prioritize_quality", false)
	viper.SetDefault("preferences.prioritize_performance", false)
	viper.SetDefault("preferences.datasaver", false)
	viper.SetDefault("preferences.max_load_time", 0.0)
	viper.SetDefault("preferences.excluded", []string{})
	viper.SetDefault("preferences.auto_apply", false)
	viper.SetDefault("weights.network", 0.0)
	viper.SetDefault("weights.memory", 0.0)
	viper.SetDefault("weights.graphics", 0.0)
	viper.SetDefault("weights.battery", 0.0)
	viper.SetDefault("weights.datasaver", 0.0)
	viper.SetDefault("weights.preference", 0.0)

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}
