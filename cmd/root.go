package cmd

import (
	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/worksdev/portal/internal/app"
	logger "github.com/worksdev/portal/internal/logging"
	"github.com/worksdev/portal/internal/ui"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	// newApp builds the application context for a command. Tests replace it.
	newApp = func() (*app.App, error) {
		return app.New(&Logger)
	}

	RootCmd = &cobra.Command{
		Use:   "portal",
		Short: "Portal - end-to-end encrypted secrets and order pricing for the Works portal",
		Long: `Portal is the command-line client of the Works client portal.

Secrets and contract data are encrypted on this device before they reach
the API; only the holder of the recipient's private key can read them.

Features:
  - Register this device's key pair and share secrets with the team
  - Save the encrypted contract complement
  - Compute the payment breakdown of an order and apply discounts
  - Chat in support threads

Run 'portal help <command>' for more details on a specific command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing %s with verbose=%t, debug=%t", cmd.CommandPath(), verbose, debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Println(ui.Info.Sprint(banner()))
			return cmd.Help()
		},
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	RootCmd.AddCommand(KeysCmd)
	RootCmd.AddCommand(SecretsCmd)
	RootCmd.AddCommand(ComplementCmd)
	RootCmd.AddCommand(OrdersCmd)
	RootCmd.AddCommand(ThreadsCmd)
	RootCmd.AddCommand(SessionCmd)
	RootCmd.AddCommand(ConfigCmd)
	RootCmd.AddCommand(logCmd)
}

func banner() string {
	return figure.NewFigure("portal", "small", true).String()
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	Logger = logger.Logger{}
	resetSecretsState()
	resetKeysState()
	resetOrdersState()
	resetSessionState()
	resetLogState()
	resetComplementState()
	resetConfigState()
	resetFlagState(RootCmd)
}

// resetFlagState clears the Changed mark of every flag to prevent test pollution.
func resetFlagState(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
	})
	for _, child := range cmd.Commands() {
		resetFlagState(child)
	}
}
