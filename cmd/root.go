package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/codepet/codepet/internal/config"
	"github.com/codepet/codepet/internal/logger"
	"github.com/codepet/codepet/internal/store"
	"github.com/spf13/cobra"
)

// cfg is loaded once per invocation by the root pre-run hook.
var cfg *config.Config

var logFile *os.File

var rootCmd = &cobra.Command{
	Use:   "codepet",
	Short: "Grow a study pet for every tech stack you learn",
	Long: "codepet tracks daily study sessions per tech stack. Each stack gets an animal\n" +
		"that levels up, evolves, keeps a streak and earns badges as you study.",
	SilenceUsage: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Set here rather than in the literal: setup refers back to rootCmd.
	rootCmd.PersistentPreRunE = setup

	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides CODEPET_DB and storage.db_path)")
	pf.String("config", "", "Path to config.yaml")
	pf.String("remote", "", "Base URL of a codepet API server to use instead of the local database")

	rootCmd.AddCommand(stackCmd)
	rootCmd.AddCommand(characterCmd)
	rootCmd.AddCommand(studyCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(rankingCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(badgesCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(llmCmd)
}

// setup loads .env and the config file, then configures logging. The TUI
// owns the terminal, so its logs go to a file; serve logs JSON.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnv(".env"); err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("config")
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg = c

	opts := logger.Options{Level: cfg.App.LogLevel, Format: logger.Format(cfg.App.LogFormat)}
	switch cmd {
	case rootCmd:
		f, err := openLogFile()
		if err != nil {
			return err
		}
		logFile = f
		opts.Out = f
		opts.Format = logger.FormatJSON
	case serveCmd:
		opts.Format = logger.FormatJSON
	default:
		// One-shot commands print results on stdout; keep stderr for warnings.
		if cfg.App.LogLevel == "info" {
			opts.Level = "warn"
		}
	}
	logger.Init(opts)
	return nil
}

func openLogFile() (*os.File, error) {
	dir, err := store.DataDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "codepet.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then storage.db_path from config, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.Storage.DBPath != "" {
		return cfg.Storage.DBPath, store.EnsureDir(cfg.Storage.DBPath)
	}
	return store.DefaultDBPath()
}

// remoteURL is --remote, falling back to remote.url.
func remoteURL(cmd *cobra.Command) string {
	if u, _ := cmd.Flags().GetString("remote"); u != "" {
		return u
	}
	if cfg != nil {
		return cfg.Remote.URL
	}
	return ""
}
