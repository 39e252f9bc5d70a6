package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/worksdev/portal/internal/secrets"
	"github.com/worksdev/portal/internal/ui"
	"github.com/worksdev/portal/internal/workflows"
)

var (
	keysForce     bool
	keysLocalOnly bool
	keysPEM       bool

	KeysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Manage this device's key pair",
		Long: `Creates, inspects and removes the RSA key pair of this device.

The private key never leaves the device. The public key is registered with
the API so others can encrypt secrets for you.`,
	}
)

func init() {
	keysInitCmd.Flags().BoolVarP(&keysForce, "force", "f", false, "replace an existing key pair")
	keysForgetCmd.Flags().BoolVar(&keysLocalOnly, "local-only", false, "keep the public key registered with the API")
	keysPublicCmd.Flags().BoolVar(&keysPEM, "pem", false, "print the key with PEM armor")

	KeysCmd.AddCommand(keysInitCmd)
	KeysCmd.AddCommand(keysStatusCmd)
	KeysCmd.AddCommand(keysPublicCmd)
	KeysCmd.AddCommand(keysForgetCmd)
}

func resetKeysState() {
	keysForce = false
	keysLocalOnly = false
	keysPEM = false
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a key pair for this device and register the public key",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys init command")
		spinner, cleanup := startSpinner("Generating device keys...", cmd.OutOrStdout())
		defer cleanup()

		a, err := newApp()
		if err != nil {
			return finish(spinner, err)
		}

		ctx, cancel := commandContext()
		defer cancel()

		result, err := workflows.RegisterDevice(ctx, a, workflows.RegisterDeviceOptions{Force: keysForce})
		if err != nil {
			return finish(spinner, err)
		}

		msg := ui.Success.Sprint("✓") + " Device " + ui.Highlight.Sprint(a.Config.Device.Name) + " registered"
		if result.Replaced {
			msg += "\n" + ui.Warning.Sprint("!") + " The previous key pair was replaced; secrets encrypted for it can no longer be read"
		}
		spinner.FinalMSG = msg
		return nil
	},
}

var keysStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the device identity, key and session state",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		status, err := workflows.DeviceStatus(ctx, a)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Device:     %s %s\n", ui.Highlight.Sprint(status.DeviceName), ui.Muted.Sprint(status.DeviceUUID))
		if status.Registered {
			fmt.Fprintf(out, "Key pair:   %s\n", ui.Success.Sprint("registered"))
		} else {
			fmt.Fprintf(out, "Key pair:   %s, run %s\n", ui.Warning.Sprint("missing"), ui.Command.Sprint("portal keys init"))
		}
		if status.LoggedIn {
			fmt.Fprintf(out, "Session:    %s as %s (%s)\n", ui.Success.Sprint("active"), ui.Highlight.Sprint(status.User.Email), status.User.Role)
		} else {
			fmt.Fprintf(out, "Session:    %s\n", ui.Warning.Sprint("logged out"))
		}
		return nil
	},
}

var keysPublicCmd = &cobra.Command{
	Use:   "public",
	Short: "Print this device's public key",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		publicKey, err := a.Keyring.PublicKey()
		if err != nil {
			return reportError(cmd, err)
		}

		if keysPEM {
			armored, err := secrets.EncodePublicKeyPEM(publicKey)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), armored)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), publicKey)
		return nil
	},
}

var keysForgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Remove this device's key pair",
	Long: `Removes the private key from this device and, unless --local-only is
given, the public key from the API. Secrets encrypted for this key can no
longer be read.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		spinner, cleanup := startSpinner("Removing device keys...", cmd.OutOrStdout())
		defer cleanup()

		a, err := newApp()
		if err != nil {
			return finish(spinner, err)
		}

		ctx, cancel := commandContext()
		defer cancel()

		if err := workflows.ForgetDevice(ctx, a, workflows.ForgetDeviceOptions{LocalOnly: keysLocalOnly}); err != nil {
			return finish(spinner, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Device keys removed"
		return nil
	},
}
