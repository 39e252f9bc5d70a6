package cmd

import (
	"github.com/spf13/cobra"
	"github.com/worksdev/portal/internal/ui"
	"github.com/worksdev/portal/internal/workflows"
)

var (
	complementOpts workflows.SaveComplementOptions

	ComplementCmd = &cobra.Command{
		Use:   "complement",
		Short: "Manage the encrypted contract complement",
		Long: `The contract complement holds the legal signer data of your contracts.
Every field is encrypted for the admin before it is sent.`,
	}
)

func init() {
	flags := complementSaveCmd.Flags()
	flags.StringVar(&complementOpts.LegalName, "legal-name", "", "legal name of the company")
	flags.StringVar(&complementOpts.RFC, "rfc", "", "tax id (RFC), 12 or 13 characters")
	flags.StringVar(&complementOpts.Fullname, "fullname", "", "full name of the signer")
	flags.StringVar(&complementOpts.Address, "address", "", "fiscal address")
	flags.StringVar(&complementOpts.Role, "role", "", "role of the signer in the company")

	ComplementCmd.AddCommand(complementSaveCmd)
	ComplementCmd.AddCommand(complementDropCmd)
}

func resetComplementState() {
	complementOpts = workflows.SaveComplementOptions{}
}

var complementSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Encrypt and store the contract complement",
	RunE: func(cmd *cobra.Command, args []string) error {
		spinner, cleanup := startSpinner("Encrypting contract complement...", cmd.OutOrStdout())
		defer cleanup()

		a, err := newApp()
		if err != nil {
			return finish(spinner, err)
		}

		ctx, cancel := commandContext()
		defer cancel()

		if err := workflows.SaveComplement(ctx, a, complementOpts); err != nil {
			return finish(spinner, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Contract complement saved"
		return nil
	},
}

var complementDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the stored contract complement",
	RunE: func(cmd *cobra.Command, args []string) error {
		spinner, cleanup := startSpinner("Deleting contract complement...", cmd.OutOrStdout())
		defer cleanup()

		a, err := newApp()
		if err != nil {
			return finish(spinner, err)
		}

		ctx, cancel := commandContext()
		defer cancel()

		if err := workflows.DropComplement(ctx, a); err != nil {
			return finish(spinner, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Contract complement deleted"
		return nil
	},
}
