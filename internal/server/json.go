package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quizforge/triviaboard/internal/ingest"
	"github.com/quizforge/triviaboard/internal/snapshot"
	"github.com/quizforge/triviaboard/internal/trivia"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeGameError maps engine errors to HTTP statuses: bad input 400,
// out-of-bounds wagers 422, missing things 404, state conflicts 409.
func writeGameError(w http.ResponseWriter, err error) {
	var wagerErr *trivia.WagerError
	var shapeErr *ingest.ShapeError

	switch {
	case errors.As(err, &wagerErr):
		writeError(w, http.StatusUnprocessableEntity, wagerErr.Error())
	case errors.As(err, &shapeErr):
		writeError(w, http.StatusBadRequest, shapeErr.Error())
	case errors.Is(err, trivia.ErrBadValue),
		errors.Is(err, trivia.ErrTeamCount),
		errors.Is(err, ingest.ErrNoHeader),
		errors.Is(err, ingest.ErrNoRounds),
		errors.Is(err, snapshot.ErrCorrupt):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, trivia.ErrNoSuchClue),
		errors.Is(err, trivia.ErrNoSuchTeam),
		errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, trivia.ErrGameOver),
		errors.Is(err, trivia.ErrCluePlayed),
		errors.Is(err, trivia.ErrClueOpen),
		errors.Is(err, trivia.ErrClueNotOpen),
		errors.Is(err, trivia.ErrNoWager),
		errors.Is(err, trivia.ErrWagerPending),
		errors.Is(err, trivia.ErrWagerPlaced),
		errors.Is(err, trivia.ErrFinalActive),
		errors.Is(err, trivia.ErrNoFinal),
		errors.Is(err, trivia.ErrFinalStage),
		errors.Is(err, trivia.ErrAlreadyScored),
		errors.Is(err, ErrNoBoard),
		errors.Is(err, ErrNoGame):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
