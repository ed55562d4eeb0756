package server

import (
	"net/http"
	"strings"

	"github.com/quizforge/triviaboard/internal/trivia"
)

type JudgeUnlockRequest struct {
	Code string `json:"code"`
}

type JudgeUnlockResponse struct {
	Token string `json:"token"`
}

// JudgeClueView includes the answer and explanation. Served only to
// unlocked judges; it carries no scoring controls.
type JudgeClueView struct {
	Index       int    `json:"index"`
	Category    string `json:"category"`
	Value       int    `json:"value"`
	Prompt      string `json:"prompt"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation,omitempty"`
	Played      bool   `json:"played"`
}

type JudgeBoardResponse struct {
	Title       string          `json:"title"`
	Round       trivia.RoundTag `json:"round"`
	Clues       []JudgeClueView `json:"clues"`
	FinalPrompt string          `json:"finalPrompt,omitempty"`
	FinalAnswer string          `json:"finalAnswer,omitempty"`
}

func handleJudgeUnlock(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JudgeUnlockRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Code = strings.TrimSpace(req.Code)
		if req.Code == "" {
			writeError(w, http.StatusBadRequest, "code is required")
			return
		}

		token, err := ctrl.JudgeUnlock(r.Context(), req.Code)
		if err == ErrNotFound {
			writeError(w, http.StatusUnauthorized, "invalid judge code")
			return
		}
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, JudgeUnlockResponse{Token: token})
	}
}

func handleJudgeBoard(ctrl *Controller, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			writeError(w, http.StatusUnauthorized, "token query parameter required")
			return
		}
		role, err := store.SessionRole(r.Context(), token)
		if err != nil || role != roleJudge {
			writeError(w, http.StatusUnauthorized, "invalid judge token")
			return
		}

		var resp JudgeBoardResponse
		err = ctrl.read(func(s *trivia.Session) error {
			resp.Title = s.Rounds.Title
			resp.Round = s.Current
			for _, clue := range s.ActiveClues() {
				resp.Clues = append(resp.Clues, JudgeClueView{
					Index:       clue.OriginalIndex,
					Category:    clue.Category,
					Value:       clue.Value,
					Prompt:      clue.Prompt,
					Answer:      clue.Answer,
					Explanation: clue.Explanation,
					Played:      s.Board[clue.OriginalIndex],
				})
			}
			if f := s.Rounds.Final; f != nil {
				resp.FinalPrompt = f.Prompt
				resp.FinalAnswer = f.Answer
			}
			return nil
		})
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
