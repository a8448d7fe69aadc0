package cmd

import (
	"fmt"

	"github.com/codepet/codepet/internal/sheet"
	"github.com/codepet/codepet/internal/store"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Export your pets and study log, or the question bank, to a spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLocal(cmd); err != nil {
			return err
		}
		questions, _ := cmd.Flags().GetBool("questions")
		stack, _ := cmd.Flags().GetString("stack")
		ctx := cmd.Context()

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if questions {
			qs, err := e.store.Questions.List(ctx, store.QuestionFilter{TechStackID: stack})
			if err != nil {
				return err
			}
			if err := sheet.ExportQuestions(args[0], qs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d question(s) to %s.\n", len(qs), args[0])
			return nil
		}

		u, err := e.accounts.Current(ctx)
		if err != nil {
			return err
		}
		chars, err := e.tracker.Characters(ctx, u.ID)
		if err != nil {
			return err
		}
		var sessions []store.StudySession
		for _, c := range chars {
			s, err := e.tracker.Sessions(ctx, c.ID, 0)
			if err != nil {
				return err
			}
			sessions = append(sessions, s...)
		}
		if err := sheet.ExportProgress(args[0], e.catalog, chars, sessions); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d pet(s) and %d session(s) to %s.\n", len(chars), len(sessions), args[0])
		return nil
	},
}

func init() {
	exportCmd.Flags().Bool("questions", false, "Export the question bank instead of your progress")
	exportCmd.Flags().String("stack", "", "With --questions, only this stack")
}
