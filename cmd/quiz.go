package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/codepet/codepet/internal/account"
	"github.com/codepet/codepet/internal/backend"
	"github.com/codepet/codepet/internal/llm"
	"github.com/codepet/codepet/internal/questiongen"
	"github.com/codepet/codepet/internal/quiz"
	"github.com/codepet/codepet/internal/sheet"
	"github.com/codepet/codepet/internal/store"
	"github.com/spf13/cobra"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Answer multiple-choice questions for bonus EXP",
}

var quizListCmd = &cobra.Command{
	Use:   "list <stack>",
	Short: "List questions for a tech stack",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		difficulty, _ := cmd.Flags().GetString("difficulty")
		solved, _ := cmd.Flags().GetString("solved")
		return withBackend(cmd, func(b backend.Backend) error {
			list, err := b.Questions(cmd.Context(), args[0], backend.QuestionFilter{
				Difficulty: difficulty,
				Solved:     solved,
			})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(list.Questions) == 0 {
				fmt.Fprintln(w, "No questions found.")
				return nil
			}
			fmt.Fprintf(w, "%-5s  %-40s  %-6s  %6s  %s\n", "ID", "Title", "Level", "Reward", "Solved")
			fmt.Fprintln(w, strings.Repeat(rule, 72))
			for _, q := range list.Questions {
				mark := ""
				if q.Solved {
					mark = "✓"
				}
				fmt.Fprintf(w, "%-5d  %-40s  %-6s  %6d  %s\n",
					q.ID, truncate(q.Title, 40), q.Difficulty, q.RewardExp, mark)
			}
			fmt.Fprintln(w, strings.Repeat(rule, 72))
			fmt.Fprintf(w, "%d solved of %d\n", list.Solved, list.Total)
			return nil
		})
	},
}

var quizShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a question and its options",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withBackend(cmd, func(b backend.Backend) error {
			q, err := b.Question(cmd.Context(), id)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "#%d %s  [%s, %d EXP]\n\n", q.ID, q.Title, q.Difficulty, q.RewardExp)
			fmt.Fprintln(w, q.Content)
			fmt.Fprintln(w)
			for i, o := range q.Options {
				fmt.Fprintf(w, "  %d) %s\n", i+1, o)
			}
			fmt.Fprintf(w, "\nAnswer with 'codepet quiz answer %d <n>'.\n", q.ID)
			return nil
		})
	},
}

var quizAnswerCmd = &cobra.Command{
	Use:   "answer <id> <n>",
	Short: "Submit the 1-based option number for a question",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		answer, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid answer %q: %w", args[1], err)
		}
		return withBackend(cmd, func(b backend.Backend) error {
			res, err := b.Submit(cmd.Context(), id, answer)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if res.Correct {
				fmt.Fprintln(w, "✓ Correct!")
			} else {
				fmt.Fprintf(w, "✗ Not quite. The answer was %d. Saved to your notebook.\n", res.CorrectAnswer)
			}
			if res.Explanation != "" {
				fmt.Fprintln(w, res.Explanation)
			}
			switch {
			case res.Correct && !res.FirstSolve:
				fmt.Fprintln(w, "Already solved, no EXP this time.")
			case res.Progress != nil:
				fmt.Fprintln(w)
				printProgress(w, *res.Progress)
			}
			return nil
		})
	},
}

var quizAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a question to the local bank",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLocal(cmd); err != nil {
			return err
		}
		f := cmd.Flags()
		q := &store.Question{Source: store.SourceManual}
		q.TechStackID, _ = f.GetString("stack")
		q.Title, _ = f.GetString("title")
		q.Content, _ = f.GetString("content")
		q.Difficulty, _ = f.GetString("difficulty")
		q.Options, _ = f.GetStringArray("option")
		q.Answer, _ = f.GetInt("answer")
		q.RewardExp, _ = f.GetInt("reward")
		q.Explanation, _ = f.GetString("explanation")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.quiz.Create(cmd.Context(), q); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added question %d (%s, %d EXP).\n", q.ID, q.Difficulty, q.RewardExp)
		return nil
	},
}

var quizDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a question from the local bank",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLocal(cmd); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.quiz.Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted question %d.\n", id)
		return nil
	},
}

var quizImportCmd = &cobra.Command{
	Use:   "import <file.xlsx|file.csv>",
	Short: "Import questions from a spreadsheet",
	Long: "Import questions from an .xlsx or .csv file. Columns: " +
		strings.Join(sheet.QuestionColumns, ", ") + ".\nRows whose title already exists are skipped.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLocal(cmd); err != nil {
			return err
		}
		icfg := sheet.DefaultImportConfig()
		icfg.SheetName, _ = cmd.Flags().GetString("sheet")
		icfg.DefaultStack, _ = cmd.Flags().GetString("stack")
		if noHeader, _ := cmd.Flags().GetBool("no-header"); noHeader {
			icfg.StartRow = 1
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := sheet.ImportQuestions(cmd.Context(), args[0], icfg, e.quiz)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Rows: %d  created: %d  skipped: %d  errors: %d\n",
			res.Processed, res.Created, res.Skipped, len(res.Errors))
		for _, re := range res.Errors {
			fmt.Fprintf(w, "  %v\n", re)
		}
		return nil
	},
}

var quizGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Draft new questions with the configured LLM",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLocal(cmd); err != nil {
			return err
		}
		stackID, _ := cmd.Flags().GetString("stack")
		topic, _ := cmd.Flags().GetString("topic")
		count, _ := cmd.Flags().GetInt("count")
		d, _ := cmd.Flags().GetString("difficulty")
		difficulty, err := quiz.ParseDifficulty(d)
		if err != nil {
			return err
		}
		if difficulty == "" {
			difficulty = quiz.DifficultyEasy
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		stack, ok := e.catalog.TechStack(stackID)
		if !ok {
			return fmt.Errorf("unknown tech stack %q", stackID)
		}

		llmCfg := cfg.LLM
		llmCfg.Discover()
		provider, err := llm.NewProvider(cmd.Context(), llmCfg, e.store.LLMRequests)
		if errors.Is(err, llm.ErrNotConfigured) {
			return fmt.Errorf("%w: set llm.provider in config.yaml or an API key such as GEMINI_API_KEY", err)
		}
		if err != nil {
			return err
		}

		// Mistakes of the signed-in user steer the prompt; anonymous use is fine.
		var userID int64
		if u, err := e.accounts.Current(cmd.Context()); err == nil {
			userID = u.ID
		} else if !errors.Is(err, account.ErrNotSignedIn) {
			return err
		}

		gen := questiongen.New(provider, questiongen.DefaultConfig())
		made, err := gen.Fill(cmd.Context(), e.quiz, questiongen.FillRequest{
			UserID:     userID,
			Stack:      stack,
			Difficulty: difficulty,
			Topic:      topic,
			Count:      count,
		})
		w := cmd.OutOrStdout()
		for _, q := range made {
			fmt.Fprintf(w, "+ #%d %s\n", q.ID, q.Title)
		}
		fmt.Fprintf(w, "Generated %d of %d question(s) for %s.\n", len(made), count, stack.Name)
		return err
	},
}

func init() {
	quizListCmd.Flags().String("difficulty", "", "EASY, MEDIUM or HARD")
	quizListCmd.Flags().String("solved", "", "SOLVED or UNSOLVED")

	af := quizAddCmd.Flags()
	af.String("stack", "", "Tech stack id")
	af.String("title", "", "Question title")
	af.String("content", "", "Question text")
	af.String("difficulty", string(quiz.DifficultyEasy), "EASY, MEDIUM or HARD")
	af.StringArray("option", nil, "An answer option; repeat for each option")
	af.Int("answer", 0, "1-based number of the correct option")
	af.Int("reward", 0, "EXP reward (default by difficulty)")
	af.String("explanation", "", "Shown after answering")
	for _, name := range []string{"stack", "title", "content", "option", "answer"} {
		quizAddCmd.MarkFlagRequired(name)
	}

	quizImportCmd.Flags().String("sheet", "", "Sheet name (default first sheet)")
	quizImportCmd.Flags().String("stack", "", "Stack for rows with an empty stack column")
	quizImportCmd.Flags().Bool("no-header", false, "The first row is data")

	gf := quizGenerateCmd.Flags()
	gf.String("stack", "", "Tech stack id")
	gf.String("difficulty", string(quiz.DifficultyEasy), "EASY, MEDIUM or HARD")
	gf.String("topic", "", "Narrow the questions to a topic, e.g. goroutines")
	gf.IntP("count", "n", 3, "How many questions to add")
	quizGenerateCmd.MarkFlagRequired("stack")

	quizCmd.AddCommand(quizListCmd)
	quizCmd.AddCommand(quizShowCmd)
	quizCmd.AddCommand(quizAnswerCmd)
	quizCmd.AddCommand(quizAddCmd)
	quizCmd.AddCommand(quizDeleteCmd)
	quizCmd.AddCommand(quizImportCmd)
	quizCmd.AddCommand(quizGenerateCmd)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
