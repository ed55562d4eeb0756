package server

import (
	"net/http"

	"github.com/quizforge/triviaboard/internal/trivia"
)

type StartRequest struct {
	Teams        int      `json:"teams"`
	Names        []string `json:"names,omitempty"`
	TimerSeconds int      `json:"timerSeconds,omitempty"`
	Theme        string   `json:"theme,omitempty"`
}

func handleStart(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		err := ctrl.Start(r.Context(), trivia.Config{
			Teams:        req.Teams,
			Names:        req.Names,
			TimerSeconds: req.TimerSeconds,
			Theme:        req.Theme,
		})
		if err != nil {
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
