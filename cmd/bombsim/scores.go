package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bombsim/internal/storage"
)

var (
	flagScoresLimit   int
	flagScoresSession string
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show high scores",
	Long: `Display the best finished sessions, or every result of one session.

Examples:
  bombsim scores
  bombsim scores --limit 20
  bombsim scores --session 6f1c...`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of scores to show")
	scoresCmd.Flags().StringVar(&flagScoresSession, "session", "", "Show every result of one session instead")
}

func runScores(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("打开成绩库失败: %w", err)
	}
	defer store.Close()

	var entries []storage.Entry
	if flagScoresSession != "" {
		entries, err = store.SessionResults(flagScoresSession)
		fmt.Printf("Session %s\n\n", flagScoresSession)
	} else {
		entries, err = store.TopScores(flagScoresLimit)
		fmt.Printf("High Scores\n\n")
	}
	if err != nil {
		return fmt.Errorf("读取成绩失败: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Run 'bombsim run' to set the first high score!")
		return nil
	}

	fmt.Printf("  %-4s  %-8s  %-5s  %-14s  %-5s  %s\n", "Rank", "Score", "Level", "Outcome", "Stars", "Date")
	fmt.Printf("  %-4s  %-8s  %-5s  %-14s  %-5s  %s\n", "----", "-----", "-----", "-------", "-----", "----")
	for i, e := range entries {
		fmt.Printf("  %-4d  %-8d  %-5d  %-14s  %-5d  %s\n",
			i+1, e.Score, e.Level, e.Outcome, e.Stars, e.CreatedAt.Format("2006-01-02 15:04"))
	}

	if flagScoresSession == "" {
		if best, err := store.HighScore(); err == nil {
			fmt.Println()
			fmt.Printf("Best: %d\n", best)
		}
	}
	return nil
}
