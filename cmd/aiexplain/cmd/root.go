package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/turnforge/heroesai/internal/logctx"
)

var (
	cfgFile   string
	snapshot  string
	jsonOut   bool
	verbose   bool
)

// rootCmd mirrors turnforge-weewar/cmd/cli/cmd.rootCmd's shape: persistent
// flags bound through viper, a cobra.OnInitialize config loader.
var rootCmd = &cobra.Command{
	Use:          "aiexplain",
	Short:        "Explain the decision core's kingdom/battle commands for a snapshot",
	SilenceUsage: true,
	Long: `aiexplain loads a JSON snapshot of kingdom or battle state and prints the
commands the Adventure Planner or Battle Planner would emit for it.

Examples:
  aiexplain kingdom-turn --snapshot kingdom.json
  aiexplain unit-turn --snapshot battle.json --json`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.aiexplain.yaml)")
	rootCmd.PersistentFlags().StringVar(&snapshot, "snapshot", "", "path to a JSON state snapshot (env: AIEXPLAIN_SNAPSHOT)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output commands as JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	viper.BindPFlag("snapshot", rootCmd.PersistentFlags().Lookup("snapshot"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".aiexplain")
		}
	}

	viper.SetEnvPrefix("AIEXPLAIN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && isVerbose() {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	level := slog.LevelInfo
	if isVerbose() {
		level = slog.LevelDebug
	}
	slog.SetDefault(logctx.Default(os.Stderr, level))
}

func getSnapshotPath() (string, error) {
	if rootCmd.PersistentFlags().Changed("snapshot") {
		return snapshot, nil
	}
	if p := viper.GetString("snapshot"); p != "" {
		return p, nil
	}
	return "", fmt.Errorf("snapshot path is required (set --snapshot or AIEXPLAIN_SNAPSHOT)")
}

func isJSONOutput() bool { return viper.GetBool("json") }
func isVerbose() bool    { return viper.GetBool("verbose") }
