// Package snapshot encodes a live game session to a portable save code
// and back. The transport is base64-wrapped JSON; decoding is a
// discriminated union over schema versions, with one decoder per version.
package snapshot

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/quizforge/triviaboard/internal/trivia"
)

// ErrCorrupt marks an unreadable or structurally invalid snapshot. A
// failed decode never touches any live session; the caller falls back to
// a clean setup state.
var ErrCorrupt = errors.New("corrupt save code")

const version = 1

type snapshotV1 struct {
	Version      int              `json:"v"`
	Rounds       *trivia.RoundSet `json:"rounds"`
	Current      trivia.RoundTag  `json:"current"`
	Board        []bool           `json:"board"`
	Teams        []trivia.Team    `json:"teams"`
	Ledger       trivia.Ledger    `json:"ledger"`
	Theme        string           `json:"theme,omitempty"`
	TimerSeconds int              `json:"timerSeconds,omitempty"`
	StartedAt    time.Time        `json:"startedAt"`
	EndedAt      time.Time        `json:"endedAt"`
}

// Encode serializes the session as a current-version save code.
func Encode(s *trivia.Session) (string, error) {
	st := s.State()
	doc := snapshotV1{
		Version:      version,
		Rounds:       st.Rounds,
		Current:      st.Current,
		Board:        st.Board,
		Teams:        st.Teams,
		Ledger:       st.Ledger,
		Theme:        st.Theme,
		TimerSeconds: st.TimerSeconds,
		StartedAt:    st.StartedAt,
		EndedAt:      st.EndedAt,
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decode rebuilds a session from a save code. Legacy (unversioned) codes
// still decode into a single-round session with an empty ledger and no
// judge code. Decoding is all-or-nothing.
func Decode(code string) (*trivia.Session, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("%w: not valid base64", ErrCorrupt)
	}

	var probe struct {
		Version int `json:"v"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: not valid JSON", ErrCorrupt)
	}

	switch probe.Version {
	case 0:
		return decodeLegacy(raw)
	case version:
		return decodeV1(raw)
	default:
		return nil, fmt.Errorf("%w: unsupported snapshot version %d", ErrCorrupt, probe.Version)
	}
}

func decodeV1(raw []byte) (*trivia.Session, error) {
	var doc snapshotV1
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if doc.Rounds == nil {
		return nil, fmt.Errorf("%w: missing rounds", ErrCorrupt)
	}
	if len(doc.Teams) == 0 {
		return nil, fmt.Errorf("%w: missing teams", ErrCorrupt)
	}

	s, err := trivia.FromState(trivia.State{
		Rounds:       doc.Rounds,
		Current:      doc.Current,
		Board:        doc.Board,
		Teams:        doc.Teams,
		Ledger:       doc.Ledger,
		Theme:        doc.Theme,
		TimerSeconds: doc.TimerSeconds,
		StartedAt:    doc.StartedAt,
		EndedAt:      doc.EndedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return s, nil
}

// Legacy shape: {c: categories, d: clues, s: scores, t: teamCount,
// p: boardState, title}. Clue field names are capitalized in this
// format.

type legacyClue struct {
	Category      string      `json:"Category"`
	Value         intOrString `json:"Value"`
	Clue          string      `json:"Clue"`
	Answer        string      `json:"Answer"`
	MediaType     string      `json:"MediaType"`
	MediaURL      string      `json:"MediaURL"`
	DailyDouble   string      `json:"DailyDouble"`
	OriginalIndex int         `json:"originalIndex"`
}

type legacySnapshot struct {
	Categories []string     `json:"c"`
	Clues      []legacyClue `json:"d"`
	Scores     []int        `json:"s"`
	TeamCount  int          `json:"t"`
	Board      []bool       `json:"p"`
	Title      string       `json:"title"`
}

func decodeLegacy(raw []byte) (*trivia.Session, error) {
	var doc legacySnapshot
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	switch {
	case len(doc.Clues) == 0:
		return nil, fmt.Errorf("%w: legacy code has no clues", ErrCorrupt)
	case doc.TeamCount == 0 || len(doc.Scores) == 0:
		return nil, fmt.Errorf("%w: legacy code has no team list", ErrCorrupt)
	case doc.Title == "":
		return nil, fmt.Errorf("%w: legacy code has no title", ErrCorrupt)
	}

	rs := &trivia.RoundSet{Title: doc.Title}
	for i, lc := range doc.Clues {
		rs.Round1 = append(rs.Round1, trivia.Clue{
			Category:      lc.Category,
			Value:         int(lc.Value),
			Prompt:        lc.Clue,
			Answer:        lc.Answer,
			Media:         legacyMedia(lc.MediaType),
			MediaURL:      lc.MediaURL,
			DailyDouble:   strings.EqualFold(lc.DailyDouble, "yes"),
			Round:         trivia.RoundOne,
			OriginalIndex: i,
		})
	}

	teams := make([]trivia.Team, doc.TeamCount)
	for i := range teams {
		if i < len(doc.Scores) {
			teams[i].Score = doc.Scores[i]
		}
	}

	s, err := trivia.FromState(trivia.State{
		Rounds:  rs,
		Current: trivia.RoundOne,
		Board:   doc.Board,
		Teams:   teams,
		Ledger:  make(trivia.Ledger),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return s, nil
}

func legacyMedia(s string) trivia.MediaKind {
	switch strings.ToLower(s) {
	case "image":
		return trivia.MediaImage
	case "video":
		return trivia.MediaVideo
	case "html":
		return trivia.MediaHTML
	}
	return trivia.MediaText
}

// intOrString tolerates the legacy habit of storing numbers as strings
// with currency punctuation.
type intOrString int

func (v *intOrString) UnmarshalJSON(raw []byte) error {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		*v = intOrString(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	s = strings.Map(func(r rune) rune {
		if r == '$' || r == ',' || r == ' ' {
			return -1
		}
		return r
	}, s)
	n, err := strconv.Atoi(s)
	if err != nil {
		// The Final clue stored its category label here; it carries no
		// numeric value.
		*v = 0
		return nil
	}
	*v = intOrString(n)
	return nil
}
