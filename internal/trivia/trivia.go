// Package trivia defines the core game model and rules for a hosted
// trivia board: clues, rounds, teams, scoring, wagers and the session
// aggregate. It has zero external dependencies — everything here is pure Go.
package trivia

import (
	"fmt"
	"strings"
)

type RoundTag string

const (
	RoundOne   RoundTag = "1"
	RoundTwo   RoundTag = "2"
	RoundFinal RoundTag = "Final"
)

type MediaKind string

const (
	MediaText  MediaKind = "text"
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaHTML  MediaKind = "html"
)

// Clue is one question/answer unit. Board clues carry a positive dollar
// Value; the single Final clue instead carries FinalCategory, the label
// that was written in its Value column.
type Clue struct {
	Category      string    `json:"category"`
	Value         int       `json:"value"`
	FinalCategory string    `json:"finalCategory,omitempty"`
	Prompt        string    `json:"prompt"`
	Answer        string    `json:"answer"`
	Explanation   string    `json:"explanation,omitempty"`
	Media         MediaKind `json:"media"`
	MediaURL      string    `json:"mediaUrl,omitempty"`
	DailyDouble   bool      `json:"dailyDouble"`
	Round         RoundTag  `json:"round"`

	// OriginalIndex is the dense, zero-based position assigned at
	// ingestion across both board rounds. It is the stable key into
	// BoardState and the performance ledger. The Final clue is not
	// part of this indexing.
	OriginalIndex int `json:"originalIndex"`
}

// RoundSet is the repository output: validated clues partitioned by round,
// plus the source-level metadata lines that preceded the header row.
type RoundSet struct {
	Title     string `json:"title"`
	JudgeCode string `json:"judgeCode,omitempty"`
	Round1    []Clue `json:"round1"`
	Round2    []Clue `json:"round2"`
	Final     *Clue  `json:"final,omitempty"`
}

// BoardClueCount is the number of clues across both board rounds,
// which is also the length of a session's BoardState.
func (rs *RoundSet) BoardClueCount() int {
	return len(rs.Round1) + len(rs.Round2)
}

// RoundClues returns the clues of a board round. The Final clue is not a
// board round.
func (rs *RoundSet) RoundClues(tag RoundTag) []Clue {
	switch tag {
	case RoundOne:
		return rs.Round1
	case RoundTwo:
		return rs.Round2
	}
	return nil
}

// StartingRound is round 1 when it has clues, otherwise round 2.
func (rs *RoundSet) StartingRound() RoundTag {
	if len(rs.Round1) > 0 {
		return RoundOne
	}
	return RoundTwo
}

// Categories returns the distinct category names of a round in first-seen
// order, which is the board's column order.
func (rs *RoundSet) Categories(tag RoundTag) []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range rs.RoundClues(tag) {
		if !seen[c.Category] {
			seen[c.Category] = true
			out = append(out, c.Category)
		}
	}
	return out
}

func (rs *RoundSet) clueByIndex(idx int) *Clue {
	for i := range rs.Round1 {
		if rs.Round1[i].OriginalIndex == idx {
			return &rs.Round1[i]
		}
	}
	for i := range rs.Round2 {
		if rs.Round2[i].OriginalIndex == idx {
			return &rs.Round2[i]
		}
	}
	return nil
}

// Team is one participating unit. Score may go negative.
type Team struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// DisplayName falls back to "Team N" when the stored name is blank.
func (t Team) DisplayName(index int) string {
	if s := strings.TrimSpace(t.Name); s != "" {
		return s
	}
	return fmt.Sprintf("Team %d", index+1)
}

// MaxWager is the upper wager bound: a team at or below zero may only
// wager zero.
func (t Team) MaxWager() int {
	return max(0, t.Score)
}

const (
	MinTeams = 2
	MaxTeams = 10
)

// Outcome is a per-team result for one clue, as it appears in the
// performance report.
type Outcome string

const (
	OutcomeCorrect   Outcome = "Correct"
	OutcomeIncorrect Outcome = "Incorrect"
	OutcomeNoGuess   Outcome = "Did not guess"
)

// Ledger records per-clue, per-team outcomes, keyed by clue OriginalIndex
// and team index. Append-only during a session.
type Ledger map[int]map[int]Outcome

// Set overwrites the outcome for a team on a clue.
func (l Ledger) Set(clueIndex, teamIndex int, o Outcome) {
	if l[clueIndex] == nil {
		l[clueIndex] = make(map[int]Outcome)
	}
	l[clueIndex][teamIndex] = o
}

// Fill records an outcome only when the team has none yet for the clue.
func (l Ledger) Fill(clueIndex, teamIndex int, o Outcome) {
	if _, ok := l[clueIndex][teamIndex]; ok {
		return
	}
	l.Set(clueIndex, teamIndex, o)
}

// Has reports whether any team has an outcome recorded for the clue.
func (l Ledger) Has(clueIndex int) bool {
	return len(l[clueIndex]) > 0
}

// Get returns the recorded outcome, or "" when none exists.
func (l Ledger) Get(clueIndex, teamIndex int) Outcome {
	return l[clueIndex][teamIndex]
}

// Decision is the host's per-team call when confirming a standard clue.
type Decision string

const (
	DecisionNone     Decision = "none"
	DecisionAdd      Decision = "add"
	DecisionSubtract Decision = "subtract"
)

// Standing is one row of the final standings.
type Standing struct {
	Rank      int    `json:"rank"`
	TeamIndex int    `json:"teamIndex"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
}
