package server

import (
	"errors"
	"net/http"

	"github.com/quizforge/triviaboard/internal/ingest"
)

// LoadResponse reports the outcome of parsing a clue source. When the
// layout is uniform but not classic 5x5, Accepted is false and the host
// must retry with confirm=true.
type LoadResponse struct {
	Accepted bool           `json:"accepted"`
	Report   *ingest.Report `json:"report"`
}

func handleLoad(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		confirm := r.URL.Query().Get("confirm") == "true"

		report, err := ctrl.Load(r.Body, confirm)
		if errors.Is(err, ErrConfirmRequired) {
			writeJSON(w, http.StatusConflict, LoadResponse{Accepted: false, Report: report})
			return
		}
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, LoadResponse{Accepted: true, Report: report})
	}
}
