package server

import (
	"errors"
	"net/http"

	"github.com/quizforge/triviaboard/internal/trivia"
)

type TeamView struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	MaxWager int    `json:"maxWager"`
}

type BoardClueView struct {
	Index    int    `json:"index"`
	Category string `json:"category"`
	Value    int    `json:"value"`
	Played   bool   `json:"played"`
}

// OpenClueView is the currently revealed clue. The answer is never
// included; judges get it through their own endpoint.
type OpenClueView struct {
	Index        int              `json:"index"`
	Category     string           `json:"category"`
	Value        int              `json:"value"`
	Prompt       string           `json:"prompt"`
	Media        trivia.MediaKind `json:"media"`
	MediaURL     string           `json:"mediaUrl,omitempty"`
	DailyDouble  bool             `json:"dailyDouble"`
	WagerPending bool             `json:"wagerPending"`
	WagerTeam    int              `json:"wagerTeam"`
	WagerAmount  int              `json:"wagerAmount"`
	Penalized    []int            `json:"penalized"`
}

type FinalView struct {
	Stage    trivia.FinalStage `json:"stage"`
	Category string            `json:"category"`
	Prompt   string            `json:"prompt,omitempty"`
	Wagers   []int             `json:"wagers"`
	Scored   []bool            `json:"scored"`
	Outcomes []trivia.Outcome  `json:"outcomes"`
}

type GameStateResponse struct {
	Started      bool              `json:"started"`
	Over         bool              `json:"over"`
	Title        string            `json:"title,omitempty"`
	Theme        string            `json:"theme,omitempty"`
	TimerSeconds int               `json:"timerSeconds,omitempty"`
	Round        trivia.RoundTag   `json:"round,omitempty"`
	Categories   []string          `json:"categories,omitempty"`
	Board        []BoardClueView   `json:"board,omitempty"`
	Teams        []TeamView        `json:"teams,omitempty"`
	OpenClue     *OpenClueView     `json:"openClue,omitempty"`
	Final        *FinalView        `json:"final,omitempty"`
	Standings    []trivia.Standing `json:"standings,omitempty"`
}

func stateResponse(s *trivia.Session) GameStateResponse {
	resp := GameStateResponse{
		Started:      true,
		Over:         s.Over(),
		Title:        s.Rounds.Title,
		Theme:        s.Theme,
		TimerSeconds: s.TimerSeconds,
		Round:        s.Current,
		Categories:   s.Rounds.Categories(s.Current),
	}

	for _, clue := range s.ActiveClues() {
		resp.Board = append(resp.Board, BoardClueView{
			Index:    clue.OriginalIndex,
			Category: clue.Category,
			Value:    clue.Value,
			Played:   s.Board[clue.OriginalIndex],
		})
	}

	for i, t := range s.Teams {
		resp.Teams = append(resp.Teams, TeamView{
			Name:     t.DisplayName(i),
			Score:    t.Score,
			MaxWager: t.MaxWager(),
		})
	}

	if idx, ok := s.OpenClueIndex(); ok {
		clues := s.Rounds.RoundClues(s.Current)
		var open *trivia.Clue
		for i := range clues {
			if clues[i].OriginalIndex == idx {
				open = &clues[i]
				break
			}
		}
		if open != nil {
			team, amount, placed := s.DailyDoubleWager()
			resp.OpenClue = &OpenClueView{
				Index:        open.OriginalIndex,
				Category:     open.Category,
				Value:        open.Value,
				Prompt:       open.Prompt,
				Media:        open.Media,
				MediaURL:     open.MediaURL,
				DailyDouble:  open.DailyDouble,
				WagerPending: s.WagerInProgress() && !placed,
				WagerTeam:    team,
				WagerAmount:  amount,
				Penalized:    s.PenalizedTeams(),
			}
		}
	}

	if f := s.Final(); f != nil {
		view := &FinalView{
			Stage:    f.Stage,
			Category: s.Rounds.Final.FinalCategory,
			Wagers:   f.Wagers,
			Scored:   f.Scored,
			Outcomes: f.Outcomes,
		}
		// The prompt stays hidden until the host reveals the clue.
		if f.Stage == trivia.FinalStageClue || f.Stage == trivia.FinalStageScoring {
			view.Prompt = s.Rounds.Final.Prompt
		}
		resp.Final = view
	}

	if s.Over() {
		resp.Standings = s.Standings()
	}
	return resp
}

func handleGameState(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var resp GameStateResponse
		err := ctrl.read(func(s *trivia.Session) error {
			resp = stateResponse(s)
			return nil
		})
		if errors.Is(err, ErrNoGame) {
			writeJSON(w, http.StatusOK, GameStateResponse{})
			return
		}
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleStandings(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var standings []trivia.Standing
		err := ctrl.read(func(s *trivia.Session) error {
			standings = s.Standings()
			return nil
		})
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, standings)
	}
}
