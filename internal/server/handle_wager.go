package server

import (
	"net/http"

	"github.com/quizforge/triviaboard/internal/trivia"
)

type WagerRequest struct {
	TeamIndex int `json:"teamIndex"`
	Amount    int `json:"amount"`
}

type ScoreWagerRequest struct {
	Correct bool `json:"correct"`
}

func handleWager(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req WagerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		mutateAndRespond(w, r, ctrl, func(s *trivia.Session) ([]trivia.Event, error) {
			return s.PlaceWager(req.TeamIndex, req.Amount)
		})
	}
}

func handleWagerScore(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScoreWagerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		mutateAndRespond(w, r, ctrl, func(s *trivia.Session) ([]trivia.Event, error) {
			return s.ScoreWager(req.Correct)
		})
	}
}
