package main

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"goDBDriver/internal/config"
	"goDBDriver/internal/logger"
	"goDBDriver/internal/server"
)

var errInvalidArgs = errors.New("Invalid number of arguments")

type cmdGlobal struct {
	flagConfig   string
	flagLogLevel string
	flagHelp     bool
	flagVersion  bool
}

func main() {
	app := &cobra.Command{}
	app.Use = "godb-server"
	app.Short = "GoDB server and query client"
	app.Long = `Description:
  GoDB server and query client

  "serve" exposes an in-memory GoDB engine over HTTP. "query" runs
  statements through the driver, either against a server or against an
  embedded engine.
`
	app.SilenceUsage = true
	app.CompletionOptions = cobra.CompletionOptions{DisableDefaultCmd: true}

	// Global flags.
	globalCmd := cmdGlobal{}
	app.PersistentFlags().StringVarP(&globalCmd.flagConfig, "config", "c", "", "Path to the YAML configuration file")
	app.PersistentFlags().StringVar(&globalCmd.flagLogLevel, "log-level", "", "Log level (overrides the configuration file)")
	app.PersistentFlags().BoolVar(&globalCmd.flagVersion, "version", false, "Print version number")
	app.PersistentFlags().BoolVarP(&globalCmd.flagHelp, "help", "h", false, "Print help")

	// Help handling.
	app.SetHelpCommand(&cobra.Command{
		Use:    "no-help",
		Hidden: true,
	})

	// Version handling.
	app.SetVersionTemplate("{{.Version}}\n")
	app.Version = server.ProductVersion

	// serve sub-command.
	serveCmd := cmdServe{global: &globalCmd}
	app.AddCommand(serveCmd.Command())

	// query sub-command.
	queryCmd := cmdQuery{global: &globalCmd}
	app.AddCommand(queryCmd.Command())

	// Run the main command and handle errors.
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// CheckArgs validates the number of arguments passed to the function and shows the help if incorrect.
func (c *cmdGlobal) CheckArgs(cmd *cobra.Command, args []string, minArgs int, maxArgs int) (bool, error) {
	if len(args) < minArgs || (maxArgs != -1 && len(args) > maxArgs) {
		_ = cmd.Help()

		if len(args) == 0 {
			return true, nil
		}

		return true, errInvalidArgs
	}

	return false, nil
}

// loadConfig reads the configuration file and applies flag overrides.
func (c *cmdGlobal) loadConfig() (*config.Config, logger.Logger, error) {
	conf, err := config.Load(c.flagConfig)
	if err != nil {
		return nil, nil, err
	}

	if c.flagLogLevel != "" {
		conf.LogLevel = c.flagLogLevel
		err = conf.Validate()
		if err != nil {
			return nil, nil, err
		}
	}

	log, err := logger.New(conf.LogLevel, os.Stderr)
	if err != nil {
		return nil, nil, err
	}

	return conf, log, nil
}
