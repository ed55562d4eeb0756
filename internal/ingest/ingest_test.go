package ingest

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/quizforge/triviaboard/internal/trivia"
)

// boardCSV builds a classic-shaped round with the given category sizes.
func boardCSV(round int, sizes ...int) string {
	var b strings.Builder
	for cat, n := range sizes {
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "R%d Cat %d,%d,prompt %d-%d,answer,,,,No,%d\n", round, cat+1, (i+1)*100, cat, i, round)
		}
	}
	return b.String()
}

const header = "Category,Value,Clue,Answer,Explanation,MediaType,MediaURL,DailyDouble,Round\n"

func parseAndBuild(t *testing.T, src string) (*trivia.RoundSet, *Report, error) {
	t.Helper()
	parsed, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return Build(parsed)
}

func TestParsePreambleAndComments(t *testing.T) {
	src := "# a comment line\n" +
		"GameTitle,Marketing Night\n" +
		"JudgeCode,123456\n" +
		header +
		"# another comment\n" +
		boardCSV(1, 2, 2)

	parsed, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Title != "Marketing Night" {
		t.Errorf("title = %q", parsed.Title)
	}
	if parsed.JudgeCode != "123456" {
		t.Errorf("judge code = %q", parsed.JudgeCode)
	}
	if len(parsed.Rows) != 4 {
		t.Errorf("rows = %d, want 4", len(parsed.Rows))
	}
}

func TestDelimiterSniffing(t *testing.T) {
	for name, delim := range map[string]string{
		"tab":       "\t",
		"semicolon": ";",
		"pipe":      "|",
	} {
		t.Run(name, func(t *testing.T) {
			src := strings.ReplaceAll(header+boardCSV(1, 2, 2), ",", delim)
			rs, _, err := parseAndBuild(t, src)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if len(rs.Round1) != 4 {
				t.Errorf("round 1 clues = %d, want 4", len(rs.Round1))
			}
		})
	}
}

func TestClassicShapeNoConfirmation(t *testing.T) {
	rs, rep, err := parseAndBuild(t, header+boardCSV(1, 5, 5, 5, 5, 5)+boardCSV(2, 5, 5, 5, 5, 5))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if rep.NeedsConfirmation {
		t.Error("classic 5x5 must not require confirmation")
	}
	if len(rs.Round1) != 25 || len(rs.Round2) != 25 {
		t.Errorf("rounds = %d,%d, want 25,25", len(rs.Round1), len(rs.Round2))
	}
}

func TestNonStandardUniformShapeRequiresConfirmation(t *testing.T) {
	_, rep, err := parseAndBuild(t, header+boardCSV(1, 3, 3, 3))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !rep.NeedsConfirmation {
		t.Error("3x3 layout must surface the confirmation requirement")
	}
}

// Scenario C: uneven counts (4,5,5,5,5) must hard-fail, not merely warn.
func TestUnevenCategoriesHardFail(t *testing.T) {
	_, _, err := parseAndBuild(t, header+boardCSV(1, 4, 5, 5, 5, 5))
	var shapeErr *ShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("got %v, want ShapeError", err)
	}
	if shapeErr.Round != trivia.RoundOne {
		t.Errorf("error round = %s, want 1", shapeErr.Round)
	}
	if !strings.Contains(shapeErr.Reason, "same count") {
		t.Errorf("reason %q does not explain the uniform-count requirement", shapeErr.Reason)
	}
}

func TestShapeBounds(t *testing.T) {
	// Six categories.
	if _, _, err := parseAndBuild(t, header+boardCSV(1, 3, 3, 3, 3, 3, 3)); err == nil {
		t.Error("6 categories must be rejected")
	}
	// One clue per category.
	if _, _, err := parseAndBuild(t, header+boardCSV(1, 1, 1)); err == nil {
		t.Error("1 clue per category must be rejected")
	}
	// Bounds themselves are fine: 1 category of 2.
	if _, _, err := parseAndBuild(t, header+boardCSV(1, 2)); err != nil {
		t.Errorf("1x2 layout rejected: %v", err)
	}
}

func TestBothRoundsEmptyDistinctError(t *testing.T) {
	src := header + "Cat,,no value at all,a,,,,No,1\n"
	_, rep, err := parseAndBuild(t, src)
	if !errors.Is(err, ErrNoRounds) {
		t.Fatalf("got %v, want ErrNoRounds", err)
	}
	if len(rep.RowIssues) != 1 {
		t.Errorf("row issues = %d, want 1", len(rep.RowIssues))
	}
}

func TestInvalidRowsExcludedWithDiagnostics(t *testing.T) {
	src := header +
		boardCSV(1, 2, 2) +
		",400,orphan with no category,a,,,,No,1\n" +
		"Cat X,$1x0,bad value,a,,,,No,1\n" +
		"Cat X,300,,missing prompt,,,,No,1\n" +
		"Cat X,300,weird round,a,,,,No,9\n"
	_, rep, err := parseAndBuild(t, src)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(rep.RowIssues) != 4 {
		t.Fatalf("row issues = %d, want 4: %+v", len(rep.RowIssues), rep.RowIssues)
	}
	for _, issue := range rep.RowIssues {
		if issue.Line == 0 || issue.Reason == "" {
			t.Errorf("issue missing line or reason: %+v", issue)
		}
	}
}

func TestCurrencyPunctuationStripped(t *testing.T) {
	src := header +
		"Cat A,\"$1,000\",p1,a,,,,No,1\n" +
		"Cat A,$2000,p2,a,,,,No,1\n"
	rs, _, err := parseAndBuild(t, src)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if rs.Round1[0].Value != 1000 || rs.Round1[1].Value != 2000 {
		t.Errorf("values = %d,%d, want 1000,2000", rs.Round1[0].Value, rs.Round1[1].Value)
	}
}

func TestFinalClueExtraction(t *testing.T) {
	src := header +
		boardCSV(1, 2, 2) +
		"Final,WORLD CAPITALS,final prompt,final answer,,,,No,FJ\n" +
		"Final,IGNORED,second final,x,,,,No,FJ\n"
	rs, rep, err := parseAndBuild(t, src)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if rs.Final == nil {
		t.Fatal("final clue not extracted")
	}
	if rs.Final.FinalCategory != "WORLD CAPITALS" {
		t.Errorf("final category = %q; the Value column must carry it", rs.Final.FinalCategory)
	}
	if rs.Final.OriginalIndex != -1 {
		t.Errorf("final clue must be excluded from board indexing, got %d", rs.Final.OriginalIndex)
	}
	if !rep.HasFinal {
		t.Error("report does not flag the final clue")
	}
	// The duplicate is a diagnostic, not an error.
	if len(rep.RowIssues) != 1 {
		t.Errorf("row issues = %d, want 1 for duplicate final", len(rep.RowIssues))
	}
}

func TestDenseReindexAcrossRounds(t *testing.T) {
	rs, _, err := parseAndBuild(t, header+boardCSV(1, 2, 2)+boardCSV(2, 2, 2))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := 0
	for _, c := range append(rs.Round1, rs.Round2...) {
		if c.OriginalIndex != want {
			t.Errorf("clue %q index = %d, want %d", c.Prompt, c.OriginalIndex, want)
		}
		want++
	}
	if rs.BoardClueCount() != 8 {
		t.Errorf("board clue count = %d, want 8", rs.BoardClueCount())
	}
}

func TestDailyDoubleAndMediaNormalization(t *testing.T) {
	src := header +
		"Cat A,100,p1,a,,Image,https://example.com/x.png,Yes,1\n" +
		"Cat A,200,p2,a,,bogus,,true,1\n"
	rs, _, err := parseAndBuild(t, src)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !rs.Round1[0].DailyDouble || rs.Round1[0].Media != trivia.MediaImage {
		t.Errorf("clue 0 = %+v", rs.Round1[0])
	}
	if !rs.Round1[1].DailyDouble || rs.Round1[1].Media != trivia.MediaText {
		t.Errorf("clue 1: bogus media must fall back to text: %+v", rs.Round1[1])
	}
}

func TestMissingHeader(t *testing.T) {
	if _, err := Parse(strings.NewReader("a,b,c\n1,2,3\n")); !errors.Is(err, ErrNoHeader) {
		t.Errorf("got %v, want ErrNoHeader", err)
	}
	if _, err := Parse(strings.NewReader("   \n")); err == nil {
		t.Error("empty source must fail")
	}
}
