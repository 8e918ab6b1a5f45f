package cli

import (
	"github.com/spf13/cobra"
)

func newPlayersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "players",
		Short: "Player commands",
	}

	cmd.AddCommand(newPlayersListCmd())

	return cmd
}

func newPlayersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every registered player",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := cfg.openStore(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			rows := []PlayerRow{}
			for _, p := range st.Players() {
				row := PlayerRow{
					ID:      int64(p.ID),
					Name:    p.CharacterName,
					Role:    p.CharacterRole,
					Active:  p.IsActive,
					Status:  string(p.GameStatus()),
					Mission: p.CurrentMissionID,
				}
				if sm, ok := st.SecretMission(p.SecretMissionID); ok {
					row.SecretMission = sm.Title
				}
				rows = append(rows, row)
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(rows)
			return nil
		},
	}
}
