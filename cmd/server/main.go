/*
main.go - Application entry point

PURPOSE:
  Command-line entry for the vesting engine. `serve` runs the HTTP API;
  `project`, `historical` and `price` run the calculators directly and
  print tables.

CONFIGURATION:
  Settings come from a TOML file (default: $XDG_CONFIG_HOME/vesting-engine/config.toml),
  then environment (PORT, VESTING_DB_PATH, VESTING_PRICE_API_URL), then
  flags.

EXAMPLES:
  # Run the API with a file database
  ./server serve --db=./data/vesting.db

  # Run with an in-memory database and no network
  ./server serve --db=":memory:" --offline

  # Project the Builder scheme at 30% yearly growth
  ./server project slow-burn --growth 30

  # Replay the Pioneer scheme from 2020 at the yearly low
  ./server historical accelerator --start 2020 --method low

SEE ALSO:
  - serve.go: Server startup and shutdown
  - calc.go: Calculator commands
  - config/config.go: Configuration file
*/
package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/vesting-engine/config"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Bitcoin benefit vesting calculator",
	Long:  "Project and replay bitcoin compensation schemes, over HTTP or in the terminal.",
	// No subcommand runs the server.
	RunE:         runServe,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file (default "+config.Path()+")")
	bindServeFlags(rootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies explicitly set serve flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port = flagPort
	}
	if flags.Changed("db") {
		cfg.Server.DBPath = flagDBPath
	}
	if flags.Changed("offline") {
		cfg.Price.Offline = flagOffline
	}
	return cfg, nil
}
