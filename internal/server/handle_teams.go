package server

import (
	"net/http"

	"github.com/quizforge/triviaboard/internal/trivia"
)

type EditTeamsRequest struct {
	Teams []trivia.TeamEdit `json:"teams"`
}

func handleTeamsEdit(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EditTeamsRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(req.Teams) == 0 {
			writeError(w, http.StatusBadRequest, "teams are required")
			return
		}
		mutateAndRespond(w, r, ctrl, func(s *trivia.Session) ([]trivia.Event, error) {
			return s.EditTeams(req.Teams)
		})
	}
}
