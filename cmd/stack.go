package cmd

import (
	"fmt"
	"strings"

	"github.com/codepet/codepet/internal/backend"
	"github.com/spf13/cobra"
)

var stackCmd = &cobra.Command{
	Use:   "stack",
	Short: "Tech stacks a pet can be attached to",
}

var stackListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tech stacks and animals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(b backend.Backend) error {
			stacks, err := b.TechStacks(cmd.Context())
			if err != nil {
				return err
			}
			animals, err := b.Animals(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-12s  %-4s  %s\n", "ID", "", "Name")
			fmt.Fprintln(w, strings.Repeat(rule, 40))
			for _, s := range stacks {
				fmt.Fprintf(w, "%-12s  %-4s  %s\n", s.ID, s.Icon, s.Name)
			}

			fmt.Fprintln(w)
			fmt.Fprint(w, "Animals:")
			for _, a := range animals {
				fmt.Fprintf(w, "  %s %s", a.Emoji, a.ID)
			}
			fmt.Fprintln(w)
			return nil
		})
	},
}

func init() {
	stackCmd.AddCommand(stackListCmd)
}
