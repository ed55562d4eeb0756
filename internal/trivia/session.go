package trivia

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	ErrGameOver      = errors.New("game is over")
	ErrNoSuchClue    = errors.New("no such clue")
	ErrNoSuchTeam    = errors.New("no such team")
	ErrCluePlayed    = errors.New("clue already played")
	ErrClueOpen      = errors.New("another clue is already open")
	ErrClueNotOpen   = errors.New("no clue is open")
	ErrBadValue      = errors.New("clue value is not a positive number")
	ErrNoWager       = errors.New("no wager in progress")
	ErrWagerPending  = errors.New("wager has not been placed yet")
	ErrWagerPlaced   = errors.New("wager already placed")
	ErrFinalActive   = errors.New("final round in progress")
	ErrNoFinal       = errors.New("no final clue in this game")
	ErrFinalStage    = errors.New("action not valid in this final stage")
	ErrAlreadyScored = errors.New("team already scored in the final round")
	ErrTeamCount     = errors.New("team count out of range")
)

// WagerError reports an out-of-bounds wager. The capture state is left
// unchanged so the host can re-prompt.
type WagerError struct {
	TeamIndex int
	Amount    int
	Max       int
}

func (e *WagerError) Error() string {
	return fmt.Sprintf("invalid wager %d for team %d: must be between 0 and %d",
		e.Amount, e.TeamIndex, e.Max)
}

// Config carries the host's game-start choices.
type Config struct {
	Teams        int
	Names        []string
	TimerSeconds int
	Theme        string
}

// Session is the aggregate root of one live game. It is not safe for
// concurrent use; the owning controller serializes access.
type Session struct {
	Rounds  *RoundSet
	Current RoundTag
	Board   []bool
	Teams   []Team
	Ledger  Ledger

	Theme        string
	TimerSeconds int
	StartedAt    time.Time
	EndedAt      time.Time

	open      int // OriginalIndex of the open clue, -1 when none
	penalized map[int]bool
	wager     *dailyDouble
	final     *FinalRound
	over      bool
}

type dailyDouble struct {
	TeamIndex int
	Amount    int
	Placed    bool
}

// NewSession starts a fresh game over an accepted round set.
func NewSession(rs *RoundSet, cfg Config) (*Session, error) {
	if cfg.Teams < MinTeams || cfg.Teams > MaxTeams {
		return nil, fmt.Errorf("%w: %d (want %d-%d)", ErrTeamCount, cfg.Teams, MinTeams, MaxTeams)
	}
	teams := make([]Team, cfg.Teams)
	for i := range teams {
		if i < len(cfg.Names) {
			teams[i].Name = cfg.Names[i]
		}
	}
	return &Session{
		Rounds:       rs,
		Current:      rs.StartingRound(),
		Board:        make([]bool, rs.BoardClueCount()),
		Teams:        teams,
		Ledger:       make(Ledger),
		Theme:        cfg.Theme,
		TimerSeconds: cfg.TimerSeconds,
		StartedAt:    time.Now(),
		open:         -1,
		penalized:    make(map[int]bool),
	}, nil
}

// State is the persistable projection of a Session: everything a snapshot
// must carry, nothing transient.
type State struct {
	Rounds       *RoundSet
	Current      RoundTag
	Board        []bool
	Teams        []Team
	Ledger       Ledger
	Theme        string
	TimerSeconds int
	StartedAt    time.Time
	EndedAt      time.Time
}

// State captures the session for serialization.
func (s *Session) State() State {
	return State{
		Rounds:       s.Rounds,
		Current:      s.Current,
		Board:        s.Board,
		Teams:        s.Teams,
		Ledger:       s.Ledger,
		Theme:        s.Theme,
		TimerSeconds: s.TimerSeconds,
		StartedAt:    s.StartedAt,
		EndedAt:      s.EndedAt,
	}
}

// FromState rebuilds a session from a decoded snapshot, repairing the
// recoverable inconsistencies a snapshot may carry: a board-state slice of
// the wrong length is truncated or padded with false, and a round pointer
// at an empty round is redirected to the non-empty one.
func FromState(st State) (*Session, error) {
	if st.Rounds == nil || st.Rounds.BoardClueCount() == 0 {
		return nil, errors.New("snapshot has no clues")
	}
	if len(st.Teams) == 0 {
		return nil, errors.New("snapshot has no teams")
	}

	board := st.Board
	if want := st.Rounds.BoardClueCount(); len(board) != want {
		fixed := make([]bool, want)
		copy(fixed, board)
		board = fixed
	}

	current := st.Current
	if len(st.Rounds.RoundClues(current)) == 0 {
		current = st.Rounds.StartingRound()
	}

	ledger := st.Ledger
	if ledger == nil {
		ledger = make(Ledger)
	}

	return &Session{
		Rounds:       st.Rounds,
		Current:      current,
		Board:        board,
		Teams:        st.Teams,
		Ledger:       ledger,
		Theme:        st.Theme,
		TimerSeconds: st.TimerSeconds,
		StartedAt:    st.StartedAt,
		EndedAt:      st.EndedAt,
		open:         -1,
		penalized:    make(map[int]bool),
	}, nil
}

// Over reports whether the game has reached its terminal state.
func (s *Session) Over() bool { return s.over }

// OpenClue returns the OriginalIndex of the currently open clue.
func (s *Session) OpenClueIndex() (int, bool) {
	return s.open, s.open >= 0
}

// PenalizedTeams lists teams already deducted during the open clue's
// lifetime, in ascending order.
func (s *Session) PenalizedTeams() []int {
	var out []int
	for i := range s.penalized {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// DailyDoubleWager returns the captured wager while one is in play.
func (s *Session) DailyDoubleWager() (teamIndex, amount int, placed bool) {
	if s.wager == nil {
		return 0, 0, false
	}
	return s.wager.TeamIndex, s.wager.Amount, s.wager.Placed
}

// WagerInProgress reports whether the open clue is a Daily Double that has
// not yet been finalized.
func (s *Session) WagerInProgress() bool { return s.wager != nil }

// Final returns the Final-round sub-state, nil until StartFinal.
func (s *Session) Final() *FinalRound { return s.final }

// ActiveClues is the clue slice of the current round.
func (s *Session) ActiveClues() []Clue {
	return s.Rounds.RoundClues(s.Current)
}

// Open makes a clue the live one and resets penalty tracking for its
// lifetime. A Daily Double opens into wager capture instead of reveal.
func (s *Session) Open(clueIndex int) ([]Event, error) {
	if s.over {
		return nil, ErrGameOver
	}
	if s.final != nil {
		return nil, ErrFinalActive
	}
	if s.open >= 0 {
		return nil, ErrClueOpen
	}
	clue := s.boardClue(clueIndex)
	if clue == nil {
		return nil, fmt.Errorf("%w: index %d", ErrNoSuchClue, clueIndex)
	}
	if s.Board[clueIndex] {
		return nil, fmt.Errorf("%w: index %d", ErrCluePlayed, clueIndex)
	}

	s.open = clueIndex
	s.penalized = make(map[int]bool)

	events := []Event{clueEvent(EventClueOpened, clueIndex)}
	if clue.DailyDouble {
		s.wager = &dailyDouble{}
		events = append(events, clueEvent(EventWagerCapture, clueIndex))
	}
	return events, nil
}

// Abort closes the open clue without finalizing it. Applied penalties and
// their ledger entries stand; the clue may be opened again later.
func (s *Session) Abort() ([]Event, error) {
	if s.open < 0 {
		return nil, ErrClueNotOpen
	}
	idx := s.open
	s.open = -1
	s.penalized = make(map[int]bool)
	s.wager = nil
	return []Event{clueEvent(EventClueAborted, idx)}, nil
}

// RecordStandardOutcome applies the host's confirmed per-team decisions to
// the open clue: add and subtract move scores by the clue value, none
// leaves the team untouched. Every team receives a ledger entry and the
// clue is finalized.
func (s *Session) RecordStandardOutcome(clueIndex int, decisions map[int]Decision) ([]Event, error) {
	clue, err := s.openBoardClue(clueIndex)
	if err != nil {
		return nil, err
	}
	for i := range decisions {
		if i < 0 || i >= len(s.Teams) {
			return nil, fmt.Errorf("%w: index %d", ErrNoSuchTeam, i)
		}
	}

	for i := range s.Teams {
		switch decisions[i] {
		case DecisionAdd:
			s.Teams[i].Score += clue.Value
			s.Ledger.Set(clueIndex, i, OutcomeCorrect)
		case DecisionSubtract:
			s.Teams[i].Score -= clue.Value
			s.Ledger.Set(clueIndex, i, OutcomeIncorrect)
		default:
			s.Ledger.Fill(clueIndex, i, OutcomeNoGuess)
		}
	}
	return s.finalize(clueIndex), nil
}

// RecordCorrect awards the clue value to one team and finalizes the clue.
// Teams penalized during this clue's lifetime keep their Incorrect
// entries; everyone else is recorded as not guessing.
func (s *Session) RecordCorrect(clueIndex, teamIndex int) ([]Event, error) {
	clue, err := s.openBoardClue(clueIndex)
	if err != nil {
		return nil, err
	}
	if teamIndex < 0 || teamIndex >= len(s.Teams) {
		return nil, fmt.Errorf("%w: index %d", ErrNoSuchTeam, teamIndex)
	}

	s.Teams[teamIndex].Score += clue.Value
	s.Ledger.Set(clueIndex, teamIndex, OutcomeCorrect)
	for i := range s.Teams {
		s.Ledger.Fill(clueIndex, i, OutcomeNoGuess)
	}
	return s.finalize(clueIndex), nil
}

// RecordIncorrectPenalty deducts the clue value from a team, at most once
// per open-clue lifetime. The clue stays open for further attempts; a
// repeat call for an already-penalized team is a no-op.
func (s *Session) RecordIncorrectPenalty(clueIndex, teamIndex int) ([]Event, error) {
	clue, err := s.openBoardClue(clueIndex)
	if err != nil {
		return nil, err
	}
	if teamIndex < 0 || teamIndex >= len(s.Teams) {
		return nil, fmt.Errorf("%w: index %d", ErrNoSuchTeam, teamIndex)
	}
	if s.penalized[teamIndex] {
		return nil, nil
	}

	s.Teams[teamIndex].Score -= clue.Value
	s.penalized[teamIndex] = true
	s.Ledger.Set(clueIndex, teamIndex, OutcomeIncorrect)
	return []Event{
		teamEvent(EventTeamPenalized, clueIndex, teamIndex),
		clueEvent(EventScoresChanged, -1),
	}, nil
}

// Pass finalizes the open clue without awarding anyone. Teams without a
// prior ledger entry for the clue are recorded as not guessing; existing
// entries are never overwritten.
func (s *Session) Pass(clueIndex int) ([]Event, error) {
	if _, err := s.openBoardClue(clueIndex); err != nil {
		return nil, err
	}
	for i := range s.Teams {
		s.Ledger.Fill(clueIndex, i, OutcomeNoGuess)
	}
	return s.finalize(clueIndex), nil
}

// PlaceWager captures a Daily Double wager for one team. The bound is
// 0 <= wager <= max(0, score); an invalid wager leaves the capture state
// unchanged. A valid wager overrides the clue's displayed value.
func (s *Session) PlaceWager(teamIndex, amount int) ([]Event, error) {
	if s.wager == nil {
		return nil, ErrNoWager
	}
	if s.wager.Placed {
		return nil, ErrWagerPlaced
	}
	if teamIndex < 0 || teamIndex >= len(s.Teams) {
		return nil, fmt.Errorf("%w: index %d", ErrNoSuchTeam, teamIndex)
	}
	maxWager := s.Teams[teamIndex].MaxWager()
	if amount < 0 || amount > maxWager {
		return nil, &WagerError{TeamIndex: teamIndex, Amount: amount, Max: maxWager}
	}

	s.wager.TeamIndex = teamIndex
	s.wager.Amount = amount
	s.wager.Placed = true
	return []Event{teamEvent(EventWagerPlaced, s.open, teamIndex)}, nil
}

// ScoreWager resolves the Daily Double: the wagering team moves by the
// wager amount and the clue closes exactly as any other finalized clue.
func (s *Session) ScoreWager(correct bool) ([]Event, error) {
	if s.wager == nil {
		return nil, ErrNoWager
	}
	if !s.wager.Placed {
		return nil, ErrWagerPending
	}

	idx := s.open
	team := s.wager.TeamIndex
	if correct {
		s.Teams[team].Score += s.wager.Amount
		s.Ledger.Set(idx, team, OutcomeCorrect)
	} else {
		s.Teams[team].Score -= s.wager.Amount
		s.Ledger.Set(idx, team, OutcomeIncorrect)
	}
	for i := range s.Teams {
		s.Ledger.Fill(idx, i, OutcomeNoGuess)
	}
	return s.finalize(idx), nil
}

// TeamEdit is one row of the host's team rename/score adjustment.
type TeamEdit struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// EditTeams replaces team names and scores wholesale.
func (s *Session) EditTeams(edits []TeamEdit) ([]Event, error) {
	if len(edits) != len(s.Teams) {
		return nil, fmt.Errorf("%w: got %d edits for %d teams", ErrTeamCount, len(edits), len(s.Teams))
	}
	for i, e := range edits {
		name := e.Name
		if len(name) > 32 {
			name = name[:32]
		}
		s.Teams[i].Name = name
		s.Teams[i].Score = e.Score
	}
	return []Event{clueEvent(EventScoresChanged, -1)}, nil
}

// Finish ends the game early at the host's request.
func (s *Session) Finish() ([]Event, error) {
	if s.over {
		return nil, ErrGameOver
	}
	if s.open >= 0 {
		if _, err := s.Abort(); err != nil {
			return nil, err
		}
	}
	return s.endGame(), nil
}

// Standings sorts teams by score descending; ties keep original team
// order.
func (s *Session) Standings() []Standing {
	out := make([]Standing, len(s.Teams))
	for i, t := range s.Teams {
		out[i] = Standing{TeamIndex: i, Name: t.DisplayName(i), Score: t.Score}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// boardClue resolves an OriginalIndex to its clue, nil when out of range.
func (s *Session) boardClue(idx int) *Clue {
	if idx < 0 || idx >= len(s.Board) {
		return nil
	}
	return s.Rounds.clueByIndex(idx)
}

// openBoardClue guards the scoring preconditions shared by every standard
// outcome: the clue must be the open one, must not be mid-wager, and must
// carry a positive value.
func (s *Session) openBoardClue(clueIndex int) (*Clue, error) {
	if s.over {
		return nil, ErrGameOver
	}
	if s.open < 0 {
		return nil, ErrClueNotOpen
	}
	if s.open != clueIndex {
		return nil, fmt.Errorf("%w: clue %d is open, not %d", ErrClueOpen, s.open, clueIndex)
	}
	if s.wager != nil {
		// Wagered clues resolve only through ScoreWager.
		return nil, ErrWagerPending
	}
	clue := s.boardClue(clueIndex)
	if clue == nil {
		return nil, fmt.Errorf("%w: index %d", ErrNoSuchClue, clueIndex)
	}
	if clue.Value <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrBadValue, clue.Category)
	}
	return clue, nil
}

// finalize marks the clue played, clears the open-clue state and runs the
// round-completion check. The played flag and its ledger entries are
// written within the same mutation, so no caller can observe one without
// the other.
func (s *Session) finalize(idx int) []Event {
	s.Board[idx] = true
	s.open = -1
	s.penalized = make(map[int]bool)
	s.wager = nil

	events := []Event{
		clueEvent(EventClueScored, idx),
		clueEvent(EventScoresChanged, -1),
	}
	return append(events, s.checkRoundCompletion()...)
}

// checkRoundCompletion advances to the second round when the first is
// fully played and the second still has unplayed clues; otherwise the
// game ends. Exactly one of the two happens, never both.
func (s *Session) checkRoundCompletion() []Event {
	for _, c := range s.ActiveClues() {
		if !s.Board[c.OriginalIndex] {
			return nil
		}
	}
	if s.Current == RoundOne && len(s.Rounds.Round2) > 0 && !s.roundPlayed(RoundTwo) {
		s.Current = RoundTwo
		return []Event{{Type: EventRoundAdvanced, ClueIndex: -1, TeamIndex: -1, Round: RoundTwo}}
	}
	return s.endGame()
}

func (s *Session) roundPlayed(tag RoundTag) bool {
	for _, c := range s.Rounds.RoundClues(tag) {
		if !s.Board[c.OriginalIndex] {
			return false
		}
	}
	return true
}

func (s *Session) endGame() []Event {
	if s.over {
		return nil
	}
	s.over = true
	s.EndedAt = time.Now()
	return []Event{clueEvent(EventGameEnded, -1)}
}
