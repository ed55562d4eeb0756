package server

import (
	"bytes"
	"net/http"

	"github.com/quizforge/triviaboard/internal/report"
	"github.com/quizforge/triviaboard/internal/trivia"
)

func handleReport(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		err := ctrl.read(func(s *trivia.Session) error {
			return report.Write(&buf, s)
		})
		if err != nil {
			writeGameError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="performance-report.csv"`)
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}
}
