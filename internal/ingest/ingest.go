// Package ingest turns delimited clue sources into validated round sets.
// It is the only component that sees raw rows; everything downstream works
// with typed trivia.Clue records.
package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/quizforge/triviaboard/internal/trivia"
)

var (
	// ErrNoRounds means neither round 1 nor round 2 produced a single
	// valid clue. Distinct from shape violations.
	ErrNoRounds = errors.New("no valid clues for round 1 or round 2")
	// ErrNoHeader means no header row carrying the required Category and
	// Clue columns was found.
	ErrNoHeader = errors.New("missing header row with Category and Clue columns")
)

// ShapeError is a hard round-layout violation: uneven category sizes or
// counts outside the allowed ranges.
type ShapeError struct {
	Round  trivia.RoundTag
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("round %s: %s", e.Round, e.Reason)
}

// Row is one raw data row keyed by header name, with its 1-based source
// line for diagnostics.
type Row struct {
	Line   int
	Fields map[string]string
}

// Source is the parsed but not yet validated clue file.
type Source struct {
	Title     string
	JudgeCode string
	Rows      []Row
}

// RowIssue explains why a row was excluded from play.
type RowIssue struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Report collects per-row diagnostics and the confirmation requirement
// for non-classic layouts.
type Report struct {
	RowIssues []RowIssue `json:"rowIssues"`
	Round1    int        `json:"round1Clues"`
	Round2    int        `json:"round2Clues"`
	HasFinal  bool       `json:"hasFinal"`

	// NeedsConfirmation is set when a round deviates from the classic
	// 5x5 layout while still satisfying the uniform-shape invariant.
	// The caller must obtain explicit host confirmation before using
	// the round set.
	NeedsConfirmation bool `json:"needsConfirmation"`
}

func (r *Report) issue(line int, format string, args ...any) {
	r.RowIssues = append(r.RowIssues, RowIssue{Line: line, Reason: fmt.Sprintf(format, args...)})
}

// Parse reads a delimited clue source. The delimiter is auto-detected
// among comma, tab, semicolon and pipe; lines starting with '#' are
// comments. An optional "GameTitle,<title>" line and an optional
// "JudgeCode,<code>" line may precede the header row.
func Parse(r io.Reader) (*Source, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, errors.New("source is empty")
	}

	delim := sniffDelimiter(string(raw))

	cr := csv.NewReader(strings.NewReader(string(raw)))
	cr.Comma = delim
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	type record struct {
		line   int
		fields []string
	}
	var records []record
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing source: %w", err)
		}
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		line, _ := cr.FieldPos(0)
		records = append(records, record{line: line, fields: fields})
	}
	if len(records) == 0 {
		return nil, errors.New("source has no data rows")
	}

	src := &Source{}
	next := 0

	if first(records[next].fields) == "GameTitle" && len(records[next].fields) > 1 {
		src.Title = strings.TrimSpace(records[next].fields[1])
		next++
	}
	if next < len(records) && first(records[next].fields) == "JudgeCode" && len(records[next].fields) > 1 {
		src.JudgeCode = strings.TrimSpace(records[next].fields[1])
		next++
	}

	// Find the header row; tolerate stray preamble lines before it.
	headerIdx := -1
	for i := next; i < len(records); i++ {
		if first(records[i].fields) == "Category" {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return nil, ErrNoHeader
	}

	header := make([]string, len(records[headerIdx].fields))
	hasClue := false
	for i, h := range records[headerIdx].fields {
		header[i] = strings.TrimSpace(h)
		if header[i] == "Clue" {
			hasClue = true
		}
	}
	if !hasClue {
		return nil, ErrNoHeader
	}

	for _, rec := range records[headerIdx+1:] {
		fields := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec.fields) {
				fields[h] = rec.fields[i]
			}
		}
		src.Rows = append(src.Rows, Row{Line: rec.line, Fields: fields})
	}
	return src, nil
}

// sniffDelimiter picks the candidate that appears most often across the
// first non-comment lines.
func sniffDelimiter(raw string) rune {
	counts := map[rune]int{',': 0, '\t': 0, ';': 0, '|': 0}

	sc := bufio.NewScanner(strings.NewReader(raw))
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)
	lines := 0
	for sc.Scan() && lines < 10 {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for d := range counts {
			counts[d] += strings.Count(line, string(d))
		}
		lines++
	}

	best, bestCount := ',', 0
	for _, d := range []rune{',', '\t', ';', '|'} {
		if counts[d] > bestCount {
			best, bestCount = d, counts[d]
		}
	}
	return best
}

func first(fields []string) string {
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimSpace(fields[0])
}

// Build normalizes the parsed rows into a validated RoundSet. Rows with
// missing required fields are excluded and reported; round shapes are
// validated independently; a uniform non-classic shape succeeds but sets
// Report.NeedsConfirmation. On hard errors the returned Report still
// carries the collected diagnostics.
func Build(src *Source) (*trivia.RoundSet, *Report, error) {
	report := &Report{}
	rs := &trivia.RoundSet{Title: src.Title, JudgeCode: src.JudgeCode}

	for _, row := range src.Rows {
		clue, reason := normalizeRow(row)
		if reason != "" {
			report.issue(row.Line, "%s", reason)
			continue
		}
		switch clue.Round {
		case trivia.RoundOne:
			rs.Round1 = append(rs.Round1, clue)
		case trivia.RoundTwo:
			rs.Round2 = append(rs.Round2, clue)
		case trivia.RoundFinal:
			if rs.Final != nil {
				report.issue(row.Line, "extra Final clue ignored; the Final round holds exactly one")
				continue
			}
			final := clue
			rs.Final = &final
		}
	}

	if len(rs.Round1) == 0 && len(rs.Round2) == 0 {
		return nil, report, ErrNoRounds
	}

	for _, round := range []struct {
		tag   trivia.RoundTag
		clues []trivia.Clue
	}{{trivia.RoundOne, rs.Round1}, {trivia.RoundTwo, rs.Round2}} {
		classic, err := validateShape(round.tag, round.clues)
		if err != nil {
			return nil, report, err
		}
		if len(round.clues) > 0 && !classic {
			report.NeedsConfirmation = true
		}
	}

	// Dense zero-based reindex across both board rounds; the Final clue
	// is excluded and keys nothing.
	idx := 0
	for i := range rs.Round1 {
		rs.Round1[i].OriginalIndex = idx
		idx++
	}
	for i := range rs.Round2 {
		rs.Round2[i].OriginalIndex = idx
		idx++
	}
	if rs.Final != nil {
		rs.Final.OriginalIndex = -1
	}

	report.Round1 = len(rs.Round1)
	report.Round2 = len(rs.Round2)
	report.HasFinal = rs.Final != nil
	return rs, report, nil
}

// normalizeRow coerces one raw row into a typed clue, or explains why it
// cannot play.
func normalizeRow(row Row) (trivia.Clue, string) {
	get := func(key string) string { return strings.TrimSpace(row.Fields[key]) }

	clue := trivia.Clue{
		Category:    get("Category"),
		Prompt:      strings.TrimSpace(row.Fields["Clue"]),
		Answer:      strings.TrimSpace(row.Fields["Answer"]),
		Explanation: strings.TrimSpace(row.Fields["Explanation"]),
		MediaURL:    strings.TrimSpace(row.Fields["MediaURL"]),
	}

	switch strings.ToUpper(get("Round")) {
	case "", "1":
		clue.Round = trivia.RoundOne
	case "2":
		clue.Round = trivia.RoundTwo
	case "FJ", "FINAL":
		clue.Round = trivia.RoundFinal
	default:
		return clue, fmt.Sprintf("unrecognized Round %q (want 1, 2 or FJ)", get("Round"))
	}

	if clue.Prompt == "" {
		return clue, "missing Clue text"
	}

	if clue.Round == trivia.RoundFinal {
		// The Value column holds the Final category name.
		clue.FinalCategory = get("Value")
	} else {
		if clue.Category == "" {
			return clue, "missing Category"
		}
		v, err := strconv.Atoi(cleanValue(get("Value")))
		if err != nil || v <= 0 {
			return clue, fmt.Sprintf("Value %q is not a positive number", get("Value"))
		}
		clue.Value = v
	}

	switch strings.ToLower(get("MediaType")) {
	case "", "text":
		clue.Media = trivia.MediaText
	case "image":
		clue.Media = trivia.MediaImage
	case "video":
		clue.Media = trivia.MediaVideo
	case "html":
		clue.Media = trivia.MediaHTML
	default:
		// Not a required field; fall back to text.
		clue.Media = trivia.MediaText
	}

	switch strings.ToLower(get("DailyDouble")) {
	case "yes", "true", "1":
		clue.DailyDouble = true
	}
	return clue, ""
}

// cleanValue strips currency punctuation before integer parsing.
func cleanValue(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '$' || r == ',' || r == ' ' {
			return -1
		}
		return r
	}, s)
}

// validateShape enforces the round invariant: 1-5 categories, each with
// the same clue count in 2-5. It reports whether the shape is the classic
// 5 categories x 5 clues layout; an empty round is absent and valid.
func validateShape(tag trivia.RoundTag, clues []trivia.Clue) (classic bool, err error) {
	if len(clues) == 0 {
		return true, nil
	}

	var order []string
	counts := make(map[string]int)
	for _, c := range clues {
		if counts[c.Category] == 0 {
			order = append(order, c.Category)
		}
		counts[c.Category]++
	}

	if len(order) > 5 {
		return false, &ShapeError{Round: tag, Reason: fmt.Sprintf(
			"found %d categories, at most 5 are allowed: %s", len(order), strings.Join(order, ", "))}
	}

	per := counts[order[0]]
	for _, cat := range order {
		if counts[cat] != per {
			return false, &ShapeError{Round: tag, Reason: fmt.Sprintf(
				"category %q has %d clues while %q has %d; every category must hold the same count",
				cat, counts[cat], order[0], per)}
		}
	}
	if per < 2 || per > 5 {
		return false, &ShapeError{Round: tag, Reason: fmt.Sprintf(
			"%d clues per category; between 2 and 5 are allowed", per)}
	}

	return len(order) == 5 && per == 5, nil
}
