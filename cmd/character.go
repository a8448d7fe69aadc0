package cmd

import (
	"fmt"
	"strings"

	"github.com/codepet/codepet/internal/backend"
	"github.com/spf13/cobra"
)

var characterCmd = &cobra.Command{
	Use:     "character",
	Aliases: []string{"pet"},
	Short:   "Manage your study pets",
}

var characterAttachCmd = &cobra.Command{
	Use:   "attach",
	Short: "Adopt a pet for a tech stack",
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, _ := cmd.Flags().GetString("stack")
		animal, _ := cmd.Flags().GetString("animal")
		return withBackend(cmd, func(b backend.Backend) error {
			c, err := b.AttachCharacter(cmd.Context(), stack, animal)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s A new %s hatched for %s! (id %s)\n", c.Emoji, c.Animal, c.SkillName, c.ID)
			return nil
		})
	},
}

var characterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your pets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(b backend.Backend) error {
			chars, err := b.Characters(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(chars) == 0 {
				fmt.Fprintln(w, "No pets yet. Adopt one with 'codepet character attach --stack go --animal cat'.")
				return nil
			}
			fmt.Fprintf(w, "%-12s  %-8s  %-3s  %5s  %11s  %6s  %s\n",
				"Stack", "Animal", "", "Level", "EXP", "Streak", "Mood")
			fmt.Fprintln(w, strings.Repeat(rule, 64))
			for _, c := range chars {
				fmt.Fprintf(w, "%-12s  %-8s  %-3s  %5d  %11s  %6d  %s %s\n",
					c.SkillID, c.Animal, c.Emoji, c.Level,
					fmt.Sprintf("%d/%d", c.Experience, c.ExperienceToNextLevel),
					c.Streak, c.EmotionEmoji, c.Emotion)
			}
			return nil
		})
	},
}

var characterShowCmd = &cobra.Command{
	Use:   "show <stack|id>",
	Short: "Show one pet in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(b backend.Backend) error {
			chars, err := b.Characters(cmd.Context())
			if err != nil {
				return err
			}
			c, err := findCharacter(chars, args[0])
			if err != nil {
				return err
			}
			printCharacter(cmd.OutOrStdout(), c)
			return nil
		})
	},
}

func init() {
	characterAttachCmd.Flags().String("stack", "", "Tech stack id (see 'codepet stack list')")
	characterAttachCmd.Flags().String("animal", "", "Animal id")
	characterAttachCmd.MarkFlagRequired("stack")
	characterAttachCmd.MarkFlagRequired("animal")

	characterCmd.AddCommand(characterAttachCmd)
	characterCmd.AddCommand(characterListCmd)
	characterCmd.AddCommand(characterShowCmd)
}
