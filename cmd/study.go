package cmd

import (
	"github.com/codepet/codepet/internal/backend"
	"github.com/spf13/cobra"
)

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Record study time",
}

var studyLogCmd = &cobra.Command{
	Use:   "log <stack|id>",
	Short: "Log a study session; every minute is 10 EXP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, _ := cmd.Flags().GetInt("minutes")
		notes, _ := cmd.Flags().GetString("notes")
		return withBackend(cmd, func(b backend.Backend) error {
			chars, err := b.Characters(cmd.Context())
			if err != nil {
				return err
			}
			c, err := findCharacter(chars, args[0])
			if err != nil {
				return err
			}
			p, err := b.LogStudy(cmd.Context(), c.ID, minutes, notes)
			if err != nil {
				return err
			}
			printProgress(cmd.OutOrStdout(), p)
			return nil
		})
	},
}

func init() {
	studyLogCmd.Flags().IntP("minutes", "m", 0, "Minutes studied")
	studyLogCmd.Flags().StringP("notes", "n", "", "What you studied")
	studyLogCmd.MarkFlagRequired("minutes")

	studyCmd.AddCommand(studyLogCmd)
}
