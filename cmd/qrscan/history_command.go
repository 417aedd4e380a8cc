package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/qrscan/internal/config"
	"github.com/five82/qrscan/internal/history"
)

func newHistoryCommand(loadConfig func() (config.Config, error)) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded scan sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			path := cfg.HistoryPath()
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				if jsonOutput || !isTerminal(cmd.OutOrStdout()) {
					return writeJSON(cmd, []history.Session{})
				}
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions recorded.")
				if !cfg.History.Enabled {
					fmt.Fprintln(cmd.OutOrStdout(), "Set [history] enabled = true in the config to record sessions.")
				}
				return nil
			}

			store, err := history.Open(path)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			sessions, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if sessions == nil {
				sessions = []history.Session{}
			}

			if jsonOutput || !isTerminal(cmd.OutOrStdout()) {
				return writeJSON(cmd, sessions)
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions recorded.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderHistoryTable(sessions))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum sessions to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit sessions as JSON")
	return cmd
}

func renderHistoryTable(sessions []history.Session) string {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		first := ""
		if len(s.Codes) > 0 {
			first = truncatePayload(s.Codes[0], 48)
		}
		rows = append(rows, []string{
			shortID(s.ID),
			s.StartedAt.Local().Format("2006-01-02 15:04:05"),
			s.Duration().Round(time.Second).String(),
			strconv.Itoa(len(s.Codes)),
			first,
		})
	}
	return renderTable(
		[]string{"Session", "Started", "Duration", "Codes", "First code"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncatePayload(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
