package cli

import (
	"fmt"
	"os"
	"time"

	"filippo.io/age"
	"github.com/predixlabs/predix-deploy/internal/constants"
	"github.com/predixlabs/predix-deploy/internal/envfile"
	"github.com/predixlabs/predix-deploy/internal/ui"
	"github.com/spf13/cobra"
)

func SecretsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage encrypted secrets",
		Long:  "Manage the encrypted secret store. The env file secrets ENV_PRD and ENV_DEV hold the complete env file written before the container starts.",
	}
	cmd.AddCommand(
		SecretsInitCmd(),
		SecretsSetCmd(),
		SecretsSetEnvCmd(),
		SecretsListCmd(),
		SecretsDeleteCmd(),
	)
	return cmd
}

// SecretsInitCmd generates a new age identity for the secret store.
func SecretsInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate an age identity for encrypting secrets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := age.GenerateX25519Identity()
			if err != nil {
				return fmt.Errorf("failed to generate age identity: %w", err)
			}
			ui.Success("Generated age identity\n")
			ui.Info("Public key: %s\n", identity.Recipient().String())
			ui.Info("Export it before using the secret store:\n")
			ui.Info("  export %s=%s\n", constants.EnvVarAgeIdentity, identity.String())
			return nil
		},
	}
	return cmd
}

func SecretsSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "set <name> <value>",
		Short:   "Encrypt a value and store it under <name>",
		Example: "  predix-deploy secrets set GHCR_TOKEN ghp_xxxx",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.SetSecret(args[0], args[1]); err != nil {
				return err
			}
			ui.Success("Secret %q saved\n", args[0])
			return nil
		},
	}
	return cmd
}

// SecretsSetEnvCmd stores an env file body under a secret name. The file
// content is stored byte for byte; it is validated as env syntax first so a
// broken file is caught at set time instead of at deploy time.
func SecretsSetEnvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "set-env <name> <file>",
		Short:   "Store an env file as a secret, verbatim",
		Example: "  predix-deploy secrets set-env ENV_PRD ./prod.env",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read env file '%s': %w", args[1], err)
			}
			vars, err := envfile.Parse(string(content))
			if err != nil {
				return fmt.Errorf("'%s' is not a valid env file: %w", args[1], err)
			}

			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.SetSecret(args[0], string(content)); err != nil {
				return err
			}
			ui.Success("Secret %q saved (%d variables)\n", args[0], len(vars))
			return nil
		},
	}
	return cmd
}

func SecretsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List secret names and value fingerprints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			secrets, err := st.ListSecrets()
			if err != nil {
				return err
			}
			if len(secrets) == 0 {
				ui.Info("No secrets stored\n")
				return nil
			}
			for _, secret := range secrets {
				ui.Info("%-30s  %s  updated %s\n", secret.Name, secret.Digest(), secret.UpdatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
	return cmd
}

func SecretsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.DeleteSecret(args[0]); err != nil {
				return err
			}
			ui.Success("Secret %q deleted\n", args[0])
			return nil
		},
	}
	return cmd
}
