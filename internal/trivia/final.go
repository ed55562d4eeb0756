package trivia

import (
	"errors"
	"fmt"
)

// FinalStage is the position of the Final-round sub-machine.
type FinalStage string

const (
	// FinalStageCategory shows only the Final category name.
	FinalStageCategory FinalStage = "category"
	// FinalStageWager captures every team's wager simultaneously.
	FinalStageWager FinalStage = "wager"
	// FinalStageClue shows the clue with wagers locked.
	FinalStageClue FinalStage = "clue"
	// FinalStageScoring shows the answer and scores each team once.
	FinalStageScoring FinalStage = "scoring"
)

// FinalRound is the Final sub-state, created by StartFinal and discarded
// with the session at game end. Wagers are -1 until locked.
type FinalRound struct {
	Stage    FinalStage `json:"stage"`
	Wagers   []int      `json:"wagers"`
	Scored   []bool     `json:"scored"`
	Outcomes []Outcome  `json:"outcomes"`
}

// AllScored reports whether every team has received its Final result.
func (f *FinalRound) AllScored() bool {
	for _, done := range f.Scored {
		if !done {
			return false
		}
	}
	return true
}

func finalStageEvent(stage FinalStage) Event {
	return Event{Type: EventFinalStage, ClueIndex: -1, TeamIndex: -1, Stage: string(stage)}
}

// StartFinal enters the Final round at the category reveal. It is an
// explicit host action, allowed whether or not the main board is fully
// played; the board is hidden for the rest of the game.
func (s *Session) StartFinal() ([]Event, error) {
	if s.over {
		return nil, ErrGameOver
	}
	if s.Rounds.Final == nil {
		return nil, ErrNoFinal
	}
	if s.final != nil {
		return nil, ErrFinalActive
	}
	if s.open >= 0 {
		return nil, ErrClueOpen
	}

	n := len(s.Teams)
	wagers := make([]int, n)
	for i := range wagers {
		wagers[i] = -1
	}
	s.final = &FinalRound{
		Stage:    FinalStageCategory,
		Wagers:   wagers,
		Scored:   make([]bool, n),
		Outcomes: make([]Outcome, n),
	}
	return []Event{finalStageEvent(FinalStageCategory)}, nil
}

// AdvanceToFinalWagers moves from the category reveal to wager capture.
func (s *Session) AdvanceToFinalWagers() ([]Event, error) {
	if err := s.requireFinalStage(FinalStageCategory); err != nil {
		return nil, err
	}
	s.final.Stage = FinalStageWager
	return []Event{finalStageEvent(FinalStageWager)}, nil
}

// PlaceFinalWagers validates and locks every team's wager at once. A
// single invalid wager blocks the whole cohort: nothing is locked and the
// stage does not advance. On success the clue is revealed.
func (s *Session) PlaceFinalWagers(wagers []int) ([]Event, error) {
	if err := s.requireFinalStage(FinalStageWager); err != nil {
		return nil, err
	}
	if len(wagers) != len(s.Teams) {
		return nil, fmt.Errorf("got %d wagers for %d teams", len(wagers), len(s.Teams))
	}

	var invalid []error
	for i, w := range wagers {
		if maxWager := s.Teams[i].MaxWager(); w < 0 || w > maxWager {
			invalid = append(invalid, &WagerError{TeamIndex: i, Amount: w, Max: maxWager})
		}
	}
	if len(invalid) > 0 {
		return nil, errors.Join(invalid...)
	}

	copy(s.final.Wagers, wagers)
	s.final.Stage = FinalStageClue
	return []Event{finalStageEvent(FinalStageClue)}, nil
}

// RevealFinalAnswer moves from the clue to the answer and per-team
// scoring.
func (s *Session) RevealFinalAnswer() ([]Event, error) {
	if err := s.requireFinalStage(FinalStageClue); err != nil {
		return nil, err
	}
	s.final.Stage = FinalStageScoring
	return []Event{finalStageEvent(FinalStageScoring)}, nil
}

// ScoreFinal applies one team's Final result: the locked wager is added or
// subtracted exactly once per team.
func (s *Session) ScoreFinal(teamIndex int, correct bool) ([]Event, error) {
	if err := s.requireFinalStage(FinalStageScoring); err != nil {
		return nil, err
	}
	if teamIndex < 0 || teamIndex >= len(s.Teams) {
		return nil, fmt.Errorf("%w: index %d", ErrNoSuchTeam, teamIndex)
	}
	if s.final.Scored[teamIndex] {
		return nil, ErrAlreadyScored
	}

	wager := s.final.Wagers[teamIndex]
	if correct {
		s.Teams[teamIndex].Score += wager
		s.final.Outcomes[teamIndex] = OutcomeCorrect
	} else {
		s.Teams[teamIndex].Score -= wager
		s.final.Outcomes[teamIndex] = OutcomeIncorrect
	}
	s.final.Scored[teamIndex] = true

	return []Event{
		teamEvent(EventClueScored, -1, teamIndex),
		clueEvent(EventScoresChanged, -1),
	}, nil
}

// FinishFinal ends the game once every team has been scored.
func (s *Session) FinishFinal() ([]Event, error) {
	if err := s.requireFinalStage(FinalStageScoring); err != nil {
		return nil, err
	}
	if !s.final.AllScored() {
		return nil, fmt.Errorf("%w: not every team has been scored", ErrFinalStage)
	}
	return s.endGame(), nil
}

func (s *Session) requireFinalStage(stage FinalStage) error {
	if s.over {
		return ErrGameOver
	}
	if s.final == nil {
		return ErrNoFinal
	}
	if s.final.Stage != stage {
		return fmt.Errorf("%w: in %q, want %q", ErrFinalStage, s.final.Stage, stage)
	}
	return nil
}
