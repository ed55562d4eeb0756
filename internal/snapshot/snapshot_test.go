package snapshot

import (
	"encoding/base64"
	"errors"
	"fmt"
	"testing"

	"github.com/quizforge/triviaboard/internal/trivia"
)

func testRoundSet() *trivia.RoundSet {
	rs := &trivia.RoundSet{
		Title:     "Roundtrip Night",
		JudgeCode: "424242",
		Final:     &trivia.Clue{Round: trivia.RoundFinal, FinalCategory: "SPACE", Prompt: "fp", Answer: "fa", OriginalIndex: -1},
	}
	idx := 0
	for cat := 0; cat < 2; cat++ {
		for i := 0; i < 2; i++ {
			rs.Round1 = append(rs.Round1, trivia.Clue{
				Category:      fmt.Sprintf("Cat %d", cat+1),
				Value:         (i + 1) * 100,
				Prompt:        fmt.Sprintf("p%d", idx),
				Answer:        "a",
				Media:         trivia.MediaText,
				Round:         trivia.RoundOne,
				OriginalIndex: idx,
			})
			idx++
		}
	}
	for cat := 0; cat < 2; cat++ {
		for i := 0; i < 2; i++ {
			rs.Round2 = append(rs.Round2, trivia.Clue{
				Category:      fmt.Sprintf("DCat %d", cat+1),
				Value:         (i + 1) * 200,
				Prompt:        fmt.Sprintf("p%d", idx),
				Answer:        "a",
				Media:         trivia.MediaText,
				Round:         trivia.RoundTwo,
				OriginalIndex: idx,
			})
			idx++
		}
	}
	return rs
}

func liveSession(t *testing.T) *trivia.Session {
	t.Helper()
	s, err := trivia.NewSession(testRoundSet(), trivia.Config{
		Teams:        3,
		Names:        []string{"Reds", "", "Blues"},
		TimerSeconds: 30,
		Theme:        "classic",
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	// Play one clue so the snapshot carries non-trivial state.
	if _, err := s.Open(0); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.RecordCorrect(0, 2); err != nil {
		t.Fatalf("score: %v", err)
	}
	return s
}

func TestRoundTrip(t *testing.T) {
	s := liveSession(t)

	code, err := Encode(s)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(code)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.Rounds.Title != "Roundtrip Night" {
		t.Errorf("title = %q", got.Rounds.Title)
	}
	if got.Rounds.JudgeCode != "424242" {
		t.Errorf("judge code = %q", got.Rounds.JudgeCode)
	}
	if got.Theme != "classic" || got.TimerSeconds != 30 {
		t.Errorf("theme/timer = %q/%d", got.Theme, got.TimerSeconds)
	}
	if len(got.Rounds.Round1) != 4 || len(got.Rounds.Round2) != 4 {
		t.Fatalf("rounds = %d,%d", len(got.Rounds.Round1), len(got.Rounds.Round2))
	}
	if got.Rounds.Final == nil || got.Rounds.Final.FinalCategory != "SPACE" {
		t.Error("final clue lost")
	}
	if got.Current != s.Current {
		t.Errorf("current = %s, want %s", got.Current, s.Current)
	}
	if len(got.Teams) != 3 || got.Teams[0].Name != "Reds" || got.Teams[2].Score != 100 {
		t.Errorf("teams = %+v", got.Teams)
	}
	if !got.Board[0] || got.Board[1] {
		t.Errorf("board = %v", got.Board)
	}
	if got.Ledger.Get(0, 2) != trivia.OutcomeCorrect || got.Ledger.Get(0, 0) != trivia.OutcomeNoGuess {
		t.Error("ledger lost outcomes")
	}
	if !got.StartedAt.Equal(s.StartedAt) {
		t.Errorf("startedAt = %v, want %v", got.StartedAt, s.StartedAt)
	}
}

func TestDecodeLegacyShape(t *testing.T) {
	legacy := `{
		"c": ["Cat 1", "Cat 2"],
		"d": [
			{"Category":"Cat 1","Value":100,"Clue":"p0","Answer":"a","MediaType":"text","MediaURL":"","DailyDouble":"No","Round":"1","originalIndex":0},
			{"Category":"Cat 1","Value":"$200","Clue":"p1","Answer":"a","MediaType":"text","MediaURL":"","DailyDouble":"Yes","Round":"1","originalIndex":1},
			{"Category":"Cat 2","Value":100,"Clue":"p2","Answer":"a","MediaType":"image","MediaURL":"u","DailyDouble":"No","Round":"1","originalIndex":2},
			{"Category":"Cat 2","Value":200,"Clue":"p3","Answer":"a","MediaType":"text","MediaURL":"","DailyDouble":"No","Round":"1","originalIndex":3}
		],
		"s": [300, -100],
		"t": 2,
		"p": [true, false, false, true],
		"title": "Legacy Night"
	}`
	code := base64.StdEncoding.EncodeToString([]byte(legacy))

	s, err := Decode(code)
	if err != nil {
		t.Fatalf("decode legacy: %v", err)
	}
	if s.Rounds.Title != "Legacy Night" {
		t.Errorf("title = %q", s.Rounds.Title)
	}
	if len(s.Rounds.Round1) != 4 || len(s.Rounds.Round2) != 0 {
		t.Fatalf("legacy must become a single-round session, got %d,%d", len(s.Rounds.Round1), len(s.Rounds.Round2))
	}
	if s.Rounds.Round1[1].Value != 200 || !s.Rounds.Round1[1].DailyDouble {
		t.Errorf("clue 1 = %+v", s.Rounds.Round1[1])
	}
	if s.Rounds.Round1[2].Media != trivia.MediaImage {
		t.Errorf("clue 2 media = %q", s.Rounds.Round1[2].Media)
	}
	if len(s.Teams) != 2 || s.Teams[0].Score != 300 || s.Teams[1].Score != -100 {
		t.Errorf("teams = %+v", s.Teams)
	}
	if !s.Board[0] || s.Board[1] || !s.Board[3] {
		t.Errorf("board = %v", s.Board)
	}
	if len(s.Ledger) != 0 {
		t.Error("legacy session must start with an empty ledger")
	}
	if s.Rounds.JudgeCode != "" {
		t.Error("legacy session must have no judge code")
	}
}

func TestDecodeLegacyBoardRepair(t *testing.T) {
	legacy := `{
		"c": ["Cat 1"],
		"d": [
			{"Category":"Cat 1","Value":100,"Clue":"p0","Answer":"a","originalIndex":0},
			{"Category":"Cat 1","Value":200,"Clue":"p1","Answer":"a","originalIndex":1}
		],
		"s": [0, 0],
		"t": 2,
		"p": [true],
		"title": "Short Board"
	}`
	s, err := Decode(base64.StdEncoding.EncodeToString([]byte(legacy)))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(s.Board) != 2 {
		t.Errorf("board length = %d, want padded to 2", len(s.Board))
	}
	if !s.Board[0] || s.Board[1] {
		t.Errorf("board = %v", s.Board)
	}
}

func TestDecodeCorruption(t *testing.T) {
	cases := map[string]string{
		"not base64":  "!!! definitely not base64 !!!",
		"not json":    base64.StdEncoding.EncodeToString([]byte("hello")),
		"no teams":    base64.StdEncoding.EncodeToString([]byte(`{"c":["x"],"d":[{"Category":"x","Value":100,"Clue":"p"}],"p":[],"title":"x"}`)),
		"no title":    base64.StdEncoding.EncodeToString([]byte(`{"c":["x"],"d":[{"Category":"x","Value":100,"Clue":"p"}],"s":[0,0],"t":2,"p":[]}`)),
		"bad version": base64.StdEncoding.EncodeToString([]byte(`{"v":99}`)),
	}
	for name, code := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(code); !errors.Is(err, ErrCorrupt) {
				t.Errorf("got %v, want ErrCorrupt", err)
			}
		})
	}
}

func TestVersionTagPresent(t *testing.T) {
	code, err := Encode(liveSession(t))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(code)
	if err != nil {
		t.Fatalf("decode base64: %v", err)
	}
	if want := []byte(`"v":1`); !containsBytes(raw, want) {
		t.Errorf("snapshot is missing its version tag: %s", raw[:min(len(raw), 80)])
	}
}

func containsBytes(haystack, needle []byte) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func TestEndedAtSurvives(t *testing.T) {
	s := liveSession(t)
	if _, err := s.Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	code, _ := Encode(s)
	got, err := Decode(code)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.EndedAt.IsZero() {
		t.Error("end timestamp lost")
	}
	if !got.EndedAt.Equal(s.EndedAt) {
		t.Errorf("endedAt = %v, want %v", got.EndedAt, s.EndedAt)
	}
}
