package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

// errDataProblems makes the command exit non-zero after the report is printed
var errDataProblems = errors.New("data files have problems")

func newDataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Data file commands",
	}

	cmd.AddCommand(newDataCheckCmd())

	return cmd
}

func newDataCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load every data file and report what was found",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, files, loadErr := cfg.openStore(cmd.Context(), cmd.ErrOrStderr())
			if st == nil {
				return loadErr
			}

			stats := st.Stats()
			report := DataReport{
				Files: map[string]string{
					"lore":            files.LorePath,
					"players":         files.PlayersPath,
					"missions":        files.MissionsPath,
					"secret_missions": files.SecretMissionsPath,
					"recipients":      files.RecipientsPath,
				},
				Players:        stats.Players,
				ActivePlayers:  stats.ActivePlayers,
				Missions:       stats.Missions,
				SecretMissions: stats.SecretMissions,
				Recipients:     stats.Recipients,
				LoreSections:   stats.LoreSections,
				LoreAvailable:  stats.LoreAvailable,
				Problems:       []string{},
			}
			if loadErr != nil {
				report.Problems = strings.Split(loadErr.Error(), "\n")
			}
			for _, p := range st.Players() {
				if p.CurrentMissionID != "" {
					if _, ok := st.Mission(p.CurrentMissionID); !ok {
						report.Problems = append(report.Problems,
							"player "+p.ID.String()+": unknown mission "+p.CurrentMissionID)
					}
				}
				if p.SecretMissionID != "" {
					if _, ok := st.SecretMission(p.SecretMissionID); !ok {
						report.Problems = append(report.Problems,
							"player "+p.ID.String()+": unknown secret mission "+p.SecretMissionID)
					}
				}
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(report)
			if len(report.Problems) > 0 {
				return errDataProblems
			}
			return nil
		},
	}
}
