package server

import (
	"net/http"

	"github.com/quizforge/triviaboard/internal/trivia"
)

type OpenClueRequest struct {
	ClueIndex int `json:"clueIndex"`
}

type ScoreClueRequest struct {
	Decisions map[int]trivia.Decision `json:"decisions"`
}

type TeamIndexRequest struct {
	TeamIndex int `json:"teamIndex"`
}

func handleClueOpen(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req OpenClueRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		mutateAndRespond(w, r, ctrl, func(s *trivia.Session) ([]trivia.Event, error) {
			return s.Open(req.ClueIndex)
		})
	}
}

func handleClueScore(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScoreClueRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		mutateAndRespond(w, r, ctrl, func(s *trivia.Session) ([]trivia.Event, error) {
			idx, ok := s.OpenClueIndex()
			if !ok {
				return nil, trivia.ErrClueNotOpen
			}
			return s.RecordStandardOutcome(idx, req.Decisions)
		})
	}
}

func handleClueCorrect(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TeamIndexRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		mutateAndRespond(w, r, ctrl, func(s *trivia.Session) ([]trivia.Event, error) {
			idx, ok := s.OpenClueIndex()
			if !ok {
				return nil, trivia.ErrClueNotOpen
			}
			return s.RecordCorrect(idx, req.TeamIndex)
		})
	}
}

func handleCluePenalty(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TeamIndexRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		mutateAndRespond(w, r, ctrl, func(s *trivia.Session) ([]trivia.Event, error) {
			idx, ok := s.OpenClueIndex()
			if !ok {
				return nil, trivia.ErrClueNotOpen
			}
			return s.RecordIncorrectPenalty(idx, req.TeamIndex)
		})
	}
}

func handleCluePass(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutateAndRespond(w, r, ctrl, func(s *trivia.Session) ([]trivia.Event, error) {
			idx, ok := s.OpenClueIndex()
			if !ok {
				return nil, trivia.ErrClueNotOpen
			}
			return s.Pass(idx)
		})
	}
}

func handleClueAbort(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutateAndRespond(w, r, ctrl, func(s *trivia.Session) ([]trivia.Event, error) {
			return s.Abort()
		})
	}
}

// mutateAndRespond applies one session mutation and answers with the
// refreshed game state.
func mutateAndRespond(w http.ResponseWriter, r *http.Request, ctrl *Controller, fn func(*trivia.Session) ([]trivia.Event, error)) {
	if err := ctrl.mutate(r.Context(), fn); err != nil {
		writeGameError(w, err)
		return
	}
	var resp GameStateResponse
	ctrl.read(func(s *trivia.Session) error {
		resp = stateResponse(s)
		return nil
	})
	writeJSON(w, http.StatusOK, resp)
}
