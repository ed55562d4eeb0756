package server

import (
	"net/http"
	"strings"

	"github.com/quizforge/triviaboard/internal/trivia"
)

type SaveResponse struct {
	Code string `json:"code"`
}

type RestoreRequest struct {
	Code string `json:"code"`
}

func handleSave(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := ctrl.Save()
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, SaveResponse{Code: code})
	}
}

func handleRestore(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RestoreRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Code = strings.TrimSpace(req.Code)
		if req.Code == "" {
			writeError(w, http.StatusBadRequest, "code is required")
			return
		}
		if err := ctrl.Restore(r.Context(), req.Code); err != nil {
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
}

func handleFinish(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutateAndRespond(w, r, ctrl, func(s *trivia.Session) ([]trivia.Event, error) {
			return s.Finish()
		})
	}
}

func handleNewGame(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ctrl.Reset(r.Context()); err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, GameStateResponse{})
	}
}
