package cmd

import (
	"fmt"
	"strings"

	"github.com/codepet/codepet/internal/backend"
	"github.com/spf13/cobra"
)

var notesCmd = &cobra.Command{
	Use:     "notes",
	Aliases: []string{"notebook"},
	Short:   "Your wrong-answer notebook",
}

var notesListCmd = &cobra.Command{
	Use:   "list [stack]",
	Short: "List questions you answered wrong",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stack := ""
		if len(args) == 1 {
			stack = args[0]
		}
		return withBackend(cmd, func(b backend.Backend) error {
			entries, err := b.WrongAnswers(cmd.Context(), stack)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(w, "Your notebook is empty.")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(w, "#%d [%s] %s  (%s)\n", e.QuestionID, e.SkillID, e.Title, e.Difficulty)
				for i, o := range e.Options {
					mark := " "
					switch i + 1 {
					case e.CorrectAnswer:
						mark = "✓"
					case e.MyAnswer:
						mark = "✗"
					}
					fmt.Fprintf(w, "   %s %d) %s\n", mark, i+1, o)
				}
				fmt.Fprintln(w, strings.Repeat(rule, 40))
			}
			fmt.Fprintf(w, "%d entr%s\n", len(entries), plural(len(entries), "y", "ies"))
			return nil
		})
	},
}

var notesRemoveCmd = &cobra.Command{
	Use:   "remove <question-id>",
	Short: "Remove one entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withBackend(cmd, func(b backend.Backend) error {
			if err := b.RemoveWrongAnswer(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed question %d from your notebook.\n", id)
			return nil
		})
	},
}

var notesClearCmd = &cobra.Command{
	Use:   "clear [stack]",
	Short: "Remove every entry, optionally for one stack",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stack := ""
		if len(args) == 1 {
			stack = args[0]
		}
		return withBackend(cmd, func(b backend.Backend) error {
			n, err := b.ClearWrongAnswers(cmd.Context(), stack)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entr%s.\n", n, plural(int(n), "y", "ies"))
			return nil
		})
	},
}

func init() {
	notesCmd.AddCommand(notesListCmd)
	notesCmd.AddCommand(notesRemoveCmd)
	notesCmd.AddCommand(notesClearCmd)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
