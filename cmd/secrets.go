package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/worksdev/portal/internal/ui"
	"github.com/worksdev/portal/internal/utils"
	"github.com/worksdev/portal/internal/workflows"
)

var (
	secretText     string
	secretFile     string
	secretKey      string
	secretLabel    string
	secretReceiver string
	secretMask     bool

	SecretsCmd = &cobra.Command{
		Use:   "secrets",
		Short: "Share end-to-end encrypted secrets",
		Long: `Encrypts secrets on this device before they are sent to the API and
decrypts them with this device's private key.

Examples:
  # Store a secret for the admin
  echo -n 'usuario: deploy' | portal secrets add --label "Servidor de staging"

  # Reveal every secret addressed to you
  portal secrets reveal

  # Encrypt offline for a known public key
  portal secrets encrypt --key "$(cat admin.pub)" --text 'hola'`,
	}
)

func init() {
	secretsEncryptCmd.Flags().StringVarP(&secretText, "text", "t", "", "plaintext to encrypt (default: stdin)")
	secretsEncryptCmd.Flags().StringVarP(&secretKey, "key", "k", "", "recipient public key, base64 SPKI or PEM (default: the admin key)")

	secretsDecryptCmd.Flags().StringVarP(&secretFile, "file", "f", "", "file holding the encrypted payload JSON (default: stdin)")

	secretsAddCmd.Flags().StringVarP(&secretLabel, "label", "l", "", "label shown in listings")
	secretsAddCmd.Flags().StringVarP(&secretText, "content", "c", "", "secret content (default: stdin)")
	secretsAddCmd.Flags().StringVar(&secretReceiver, "receiver", "", "id of the user the secret is for")
	secretsAddCmd.Flags().StringVarP(&secretKey, "key", "k", "", "recipient public key (default: the admin key)")
	_ = secretsAddCmd.MarkFlagRequired("label")

	secretsRevealCmd.Flags().BoolVarP(&secretMask, "mask", "m", false, "hide all but the first characters")

	SecretsCmd.AddCommand(secretsEncryptCmd)
	SecretsCmd.AddCommand(secretsDecryptCmd)
	SecretsCmd.AddCommand(secretsAddCmd)
	SecretsCmd.AddCommand(secretsListCmd)
	SecretsCmd.AddCommand(secretsRevealCmd)
	SecretsCmd.AddCommand(secretsRemoveCmd)
}

func resetSecretsState() {
	secretText = ""
	secretFile = ""
	secretKey = ""
	secretLabel = ""
	secretReceiver = ""
	secretMask = false
}

var secretsEncryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt text and print the payload JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		plaintext, err := utils.ReadInput(secretText, "")
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		key := secretKey
		if key == "" {
			a, err := newApp()
			if err != nil {
				return err
			}
			if key, err = a.API.AdminKey(ctx); err != nil {
				return reportError(cmd, err)
			}
		}

		payload, err := workflows.EncryptText(ctx, workflows.EncryptTextOptions{PublicKey: key, Plaintext: string(plaintext)})
		if err != nil {
			return reportError(cmd, err)
		}

		data, err := payload.JSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var secretsDecryptCmd = &cobra.Command{
	Use:   "decrypt [payload-json]",
	Short: "Decrypt a payload with this device's private key",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inline := ""
		if len(args) == 1 {
			inline = args[0]
		}
		data, err := utils.ReadInput(inline, secretFile)
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		plaintext, err := workflows.DecryptText(ctx, a, data)
		if err != nil {
			return reportError(cmd, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), plaintext)
		return nil
	},
}

var secretsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Encrypt and store a secret",
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := utils.ReadInput(secretText, "")
		if err != nil {
			return err
		}

		spinner, cleanup := startSpinner("Encrypting secret...", cmd.OutOrStdout())
		defer cleanup()

		a, err := newApp()
		if err != nil {
			return finish(spinner, err)
		}

		ctx, cancel := commandContext()
		defer cancel()

		result, err := workflows.AddSecret(ctx, a, workflows.AddSecretOptions{
			Label:        secretLabel,
			Content:      string(content),
			ReceiverID:   secretReceiver,
			RecipientKey: secretKey,
		})
		if err != nil {
			return finish(spinner, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Secret " + ui.Highlight.Sprint(result.Label) +
			" stored " + ui.Muted.Sprintf("id %d", result.ID)
		return nil
	},
}

var secretsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your secrets without decrypting them",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		list, err := workflows.ListSecrets(ctx, a)
		if err != nil {
			return reportError(cmd, err)
		}

		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintln(out, "No secrets found.")
			return nil
		}
		for _, s := range list {
			fmt.Fprintf(out, "%5d  %-40s %s\n", s.ID, s.Label, ui.Muted.Sprint(s.UpdatedAt))
		}
		return nil
	},
}

var secretsRevealCmd = &cobra.Command{
	Use:   "reveal [id]",
	Short: "Decrypt and print your secrets",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int64
		if len(args) == 1 {
			parsed, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid secret id %q", args[0])
			}
			id = parsed
		}

		spinner, cleanup := startSpinner("Decrypting secrets...", cmd.OutOrStdout())
		defer cleanup()

		a, err := newApp()
		if err != nil {
			return finish(spinner, err)
		}

		ctx, cancel := commandContext()
		defer cancel()

		result, err := workflows.RevealSecrets(ctx, a, workflows.RevealSecretsOptions{ID: id})
		if err != nil {
			return finish(spinner, err)
		}
		if len(result.Secrets) == 0 {
			spinner.FinalMSG = "No secrets found."
			return nil
		}

		var b strings.Builder
		for _, s := range result.Secrets {
			b.WriteString(ui.Highlight.Sprint(s.Label) + " " + ui.Muted.Sprintf("id %d", s.ID) + "\n")
			if s.Err != nil {
				b.WriteString("  " + ui.Error.Sprint("✗") + " " + s.Err.Error() + "\n")
				continue
			}
			plaintext := s.Plaintext
			if secretMask {
				plaintext = ui.Mask(plaintext)
			}
			b.WriteString("  " + plaintext + "\n")
		}
		if result.Failed > 0 {
			b.WriteString(ui.Warning.Sprintf("%d of %d secrets could not be decrypted with this device's key", result.Failed, len(result.Secrets)))
		}
		spinner.FinalMSG = b.String()
		return nil
	},
}

var secretsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Delete a secret",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid secret id %q", args[0])
		}

		a, err := newApp()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		if err := workflows.RemoveSecret(ctx, a, id); err != nil {
			return reportError(cmd, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success.Sprint("✓")+" Secret removed")
		return nil
	},
}

// reportError prints an expected error to stderr and returns nil, or
// returns an unexpected one.
func reportError(cmd *cobra.Command, err error) error {
	if msg, ok := formatError(err); ok {
		Logger.Debugf("%v", err)
		cmd.PrintErrln(msg)
		return nil
	}
	return err
}
