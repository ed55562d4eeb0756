// Package report renders the exportable per-clue performance table.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/quizforge/triviaboard/internal/trivia"
)

const notPlayed = "Not Played"

// Write emits the performance report as CSV: metadata rows (title, date,
// start/end time, team count), a blank line, then one row per clue across
// both rounds with each team's outcome, plus a synthetic Final row when a
// Final clue exists.
func Write(w io.Writer, s *trivia.Session) error {
	cw := csv.NewWriter(w)

	title := s.Rounds.Title
	if title == "" {
		title = "Trivia Board"
	}
	meta := [][]string{{"Game Title", title}}
	if !s.StartedAt.IsZero() {
		meta = append(meta,
			[]string{"Date", s.StartedAt.Format("2006-01-02")},
			[]string{"Game Started", s.StartedAt.Format("15:04:05")})
	}
	if !s.EndedAt.IsZero() {
		meta = append(meta, []string{"Game Ended", s.EndedAt.Format("15:04:05")})
	}
	meta = append(meta, []string{"Number of Teams", strconv.Itoa(len(s.Teams))})

	for _, row := range meta {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing metadata: %w", err)
		}
	}
	if err := cw.Write([]string{""}); err != nil {
		return fmt.Errorf("writing separator: %w", err)
	}

	header := []string{"Category", "Value", "Clue"}
	for i, t := range s.Teams {
		header = append(header, t.DisplayName(i))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	clues := make([]trivia.Clue, 0, s.Rounds.BoardClueCount())
	clues = append(clues, s.Rounds.Round1...)
	clues = append(clues, s.Rounds.Round2...)
	for _, clue := range clues {
		row := []string{clue.Category, strconv.Itoa(clue.Value), clue.Prompt}
		for i := range s.Teams {
			if o := s.Ledger.Get(clue.OriginalIndex, i); o != "" {
				row = append(row, string(o))
			} else {
				row = append(row, notPlayed)
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing clue row: %w", err)
		}
	}

	if s.Rounds.Final != nil {
		row := []string{"FINAL JEOPARDY", "N/A", s.Rounds.Final.Prompt}
		final := s.Final()
		for i := range s.Teams {
			if final != nil && final.Scored[i] {
				row = append(row, string(final.Outcomes[i]))
			} else {
				row = append(row, notPlayed)
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing final row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
