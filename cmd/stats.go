package cmd

import (
	"fmt"
	"strings"

	"github.com/codepet/codepet/internal/backend"
	"github.com/codepet/codepet/internal/progression"
	"github.com/spf13/cobra"
)

var rankingCmd = &cobra.Command{
	Use:   "ranking",
	Short: "Show the leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return withBackend(cmd, func(b backend.Backend) error {
			res, err := b.Ranking(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(res.Entries) == 0 {
				fmt.Fprintln(w, "Nobody on the board yet.")
				return nil
			}
			fmt.Fprintf(w, "%4s  %-20s  %5s  %8s  %6s  %7s\n", "Rank", "Name", "Level", "EXP", "Stacks", "Minutes")
			fmt.Fprintln(w, strings.Repeat(rule, 60))
			shown := false
			for i, e := range res.Entries {
				if limit > 0 && i >= limit {
					break
				}
				me := " "
				if res.Me != nil && res.Me.UserID == e.UserID {
					me = "▸"
					shown = true
				}
				fmt.Fprintf(w, "%s%3d  %-20s  %5d  %8d  %6d  %7d\n",
					me, e.Rank, truncate(e.Name, 20), e.Level, e.Score, e.Skills, e.TotalMinutes)
			}
			if res.Me != nil && !shown {
				e := res.Me
				fmt.Fprintln(w, "   ⋮")
				fmt.Fprintf(w, "▸%3d  %-20s  %5d  %8d  %6d  %7d\n",
					e.Rank, truncate(e.Name, 20), e.Level, e.Score, e.Skills, e.TotalMinutes)
			}
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show your learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(b backend.Backend) error {
			p, err := b.Profile(cmd.Context())
			if err != nil {
				return err
			}
			s := p.Profile
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s  %s  %s\n", s.Trainer.Emoji, p.User.Name, s.Trainer.Title)
			fmt.Fprintln(w, strings.Repeat(rule, 40))
			if s.Rank > 0 {
				fmt.Fprintf(w, "Rank:            #%d\n", s.Rank)
			}
			fmt.Fprintf(w, "Level:           %d\n", s.Level)
			fmt.Fprintf(w, "Lifetime EXP:    %d\n", s.TotalExperience)
			fmt.Fprintf(w, "Pets:            %d (highest Lv %d)\n", s.Skills, s.HighestLevel)
			fmt.Fprintf(w, "Study time:      %d min\n", s.TotalMinutes)
			fmt.Fprintf(w, "Best streak:     %d day(s), longest %d\n", s.BestStreak, s.LongestStreak)
			fmt.Fprintf(w, "Solved:          %d question(s)\n", s.SolvedProblems)
			fmt.Fprintf(w, "Badges:          %d\n", s.Badges)
			if s.Trainer.NextLevel > 0 {
				fmt.Fprintf(w, "\n%d more level(s) to the next title.\n", s.Trainer.LevelsUntilNext)
			}
			return nil
		})
	},
}

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "Show every badge and which ones you have",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(b backend.Backend) error {
			all, err := b.Badges(cmd.Context())
			if err != nil {
				return err
			}
			chars, err := b.Characters(cmd.Context())
			if err != nil {
				return err
			}
			earned := map[string]bool{}
			for _, c := range chars {
				for _, id := range c.Badges {
					earned[id] = true
				}
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%d / %d earned\n", len(earned), len(all))
			var tier progression.Tier
			for _, bd := range all {
				if bd.Tier != tier {
					tier = bd.Tier
					fmt.Fprintf(w, "\n%s\n", strings.ToUpper(string(tier)))
				}
				mark := "·"
				if earned[bd.ID] {
					mark = "✓"
				}
				fmt.Fprintf(w, " %s %s %-18s %-10s %s\n", mark, bd.Icon, bd.Name, bd.Type.DisplayName(), bd.Description)
			}
			return nil
		})
	},
}

func init() {
	rankingCmd.Flags().Int("limit", 10, "Rows to show (0 for all)")
}
