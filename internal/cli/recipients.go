package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRecipientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipients",
		Short: "NPC recipient roster commands",
	}

	cmd.AddCommand(newRecipientsListCmd())
	cmd.AddCommand(newRecipientsAddCmd())
	cmd.AddCommand(newRecipientsRemoveCmd())

	return cmd
}

func newRecipientsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the NPC recipients",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := cfg.openStore(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(RecipientList{Recipients: st.Recipients()})
			return nil
		},
	}
}

func newRecipientsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add an NPC recipient",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			st, _, err := cfg.openStore(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := st.AddRecipient(cmd.Context(), name); err != nil {
				return fmt.Errorf("add %q: %w", name, err)
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage(fmt.Sprintf("Recipient '%s' added.", name))
			return nil
		},
	}
}

func newRecipientsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove an NPC recipient",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			st, _, err := cfg.openStore(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := st.RemoveRecipient(cmd.Context(), name); err != nil {
				return fmt.Errorf("remove %q: %w", name, err)
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage(fmt.Sprintf("Recipient '%s' removed.", name))
			return nil
		},
	}
}
