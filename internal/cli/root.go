package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/tavla/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tavla",
	Short: "Tavla - Ground-truth verification for generated backgammon content",
	Long: `Tavla verifies AI-generated backgammon teaching content against an
authoritative move-analysis engine.

It extracts every checkable move recommendation from an artifact (drills,
lesson prose), asks the engine for ground truth, and rolls the verdicts up
into a single verification status. Content that fails can be repaired in
place: only the wrong claims are rewritten, grounded on the engine's answer,
and the whole artifact is re-verified afterward.

Tavla never decides what good backgammon is. The engine does.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Tavla.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("tavla v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.tavla/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.tavla")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match TAVLA_*
	viper.SetEnvPrefix("TAVLA")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig merges the config file and environment into the defaults.
// CLI flags are applied on top by the individual commands.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetString("engine.url"); v != "" {
		cfg.Engine.URL = v
	}
	if v := viper.GetDuration("engine.timeout"); v > 0 {
		cfg.Engine.Timeout = v
	}
	if v := viper.GetInt("engine.max_retries"); v > 0 {
		cfg.Engine.MaxRetries = v
	}
	if v := viper.GetDuration("engine.backoff_base"); v > 0 {
		cfg.Engine.BackoffBase = v
	}
	if v := viper.GetDuration("engine.backoff_cap"); v > 0 {
		cfg.Engine.BackoffCap = v
	}
	if v := viper.GetInt("engine.max_moves"); v > 0 {
		cfg.Engine.MaxMoves = v
	}
	if viper.IsSet("engine.cubeful") {
		cfg.Engine.Cubeful = viper.GetBool("engine.cubeful")
	}
	if v := viper.GetFloat64("engine.rate_limit"); v > 0 {
		cfg.Engine.RateLimit = v
	}
	if v := viper.GetString("engine.http_proxy"); v != "" {
		cfg.Engine.HTTPProxy = v
	}
	if v := viper.GetString("engine.https_proxy"); v != "" {
		cfg.Engine.HTTPSProxy = v
	}
	if v := viper.GetString("engine.no_proxy"); v != "" {
		cfg.Engine.NoProxy = v
	}
	if viper.IsSet("verify.equity_tolerance") {
		cfg.Verify.EquityTolerance = viper.GetFloat64("verify.equity_tolerance")
	}
	if v := viper.GetInt("verify.workers"); v > 0 {
		cfg.Verify.Workers = v
	}
	if v := viper.GetString("llm.provider"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.LLM.Model = v
	}
	if v := viper.GetString("llm.base_url"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := viper.GetInt("llm.timeout"); v > 0 {
		cfg.LLM.Timeout = v
	}
	if v := viper.GetInt("llm.max_tokens"); v > 0 {
		cfg.LLM.MaxTokens = v
	}
	if v := viper.GetString("llm.http_proxy"); v != "" {
		cfg.LLM.HTTPProxy = v
	}
	if v := viper.GetString("llm.https_proxy"); v != "" {
		cfg.LLM.HTTPSProxy = v
	}
	if v := viper.GetString("llm.no_proxy"); v != "" {
		cfg.LLM.NoProxy = v
	}
	if v := viper.GetInt("regen.max_attempts"); v > 0 {
		cfg.Regen.MaxAttempts = v
	}

	// API keys come from the standard environment variables
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		default:
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	cfg.Output.Verbose = verbose || viper.GetBool("verbose")
	return cfg
}

// defaultRunTimeout bounds one whole verify/fix run
const defaultRunTimeout = 10 * time.Minute
