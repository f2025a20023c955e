// Package cli implements the depaym command tree.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var Version = "0.1.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "depaym",
	Short: "DePaym mining reward engine",
	Long: `DePaym runs the mining-session reward engine: timed mining sessions,
action-triggered booster windows, referral bonuses, and interaction rewards,
exposed over a JSON HTTP API.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to config.toml")
	rootCmd.AddCommand(versionCmd)
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".depaym", "config.toml")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the depaym version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("depaym", Version)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
