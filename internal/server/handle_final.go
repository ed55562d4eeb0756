package server

import (
	"net/http"

	"github.com/quizforge/triviaboard/internal/trivia"
)

type FinalWagersRequest struct {
	Wagers []int `json:"wagers"`
}

type ScoreFinalRequest struct {
	TeamIndex int  `json:"teamIndex"`
	Correct   bool `json:"correct"`
}

func handleFinalStart(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutateAndRespond(w, r, ctrl, func(s *trivia.Session) ([]trivia.Event, error) {
			return s.StartFinal()
		})
	}
}

func handleFinalWagerStage(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutateAndRespond(w, r, ctrl, func(s *trivia.Session) ([]trivia.Event, error) {
			return s.AdvanceToFinalWagers()
		})
	}
}

func handleFinalWagers(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req FinalWagersRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		mutateAndRespond(w, r, ctrl, func(s *trivia.Session) ([]trivia.Event, error) {
			return s.PlaceFinalWagers(req.Wagers)
		})
	}
}

func handleFinalReveal(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutateAndRespond(w, r, ctrl, func(s *trivia.Session) ([]trivia.Event, error) {
			return s.RevealFinalAnswer()
		})
	}
}

func handleFinalScore(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScoreFinalRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		mutateAndRespond(w, r, ctrl, func(s *trivia.Session) ([]trivia.Event, error) {
			return s.ScoreFinal(req.TeamIndex, req.Correct)
		})
	}
}

func handleFinalFinish(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutateAndRespond(w, r, ctrl, func(s *trivia.Session) ([]trivia.Event, error) {
			return s.FinishFinal()
		})
	}
}
