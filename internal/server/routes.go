package server

import (
	"database/sql"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, ctrl *Controller, store Store, broker *Broker, auth *hostAuth, db *sql.DB, opts Options) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Trivia Board API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db))

	// Read surface and event feeds. Open: nothing here carries answers.
	r.Get("/api/game/state", handleGameState(ctrl))
	r.Get("/api/game/standings", handleStandings(ctrl))
	r.Get("/api/game/events", handleEvents(broker))
	r.Get("/ws/events", handleWSEvents(logger, broker))
	r.Get("/api/game/qr", handleQR(opts.PublicURL))

	r.Post("/api/host/login", handleHostLogin(auth))
	r.Post("/api/host/logout", handleHostLogout(auth))
	r.Post("/api/judge/unlock", handleJudgeUnlock(ctrl))
	r.Get("/api/judge/board", handleJudgeBoard(ctrl, store))

	// Host controls. Guarded by the host cookie when a password is set.
	r.Group(func(r chi.Router) {
		r.Use(auth.middleware)

		r.Post("/api/game/load", handleLoad(ctrl))
		r.Post("/api/game/start", handleStart(ctrl))
		r.Post("/api/game/clue/open", handleClueOpen(ctrl))
		r.Post("/api/game/clue/score", handleClueScore(ctrl))
		r.Post("/api/game/clue/correct", handleClueCorrect(ctrl))
		r.Post("/api/game/clue/penalty", handleCluePenalty(ctrl))
		r.Post("/api/game/clue/pass", handleCluePass(ctrl))
		r.Post("/api/game/clue/abort", handleClueAbort(ctrl))
		r.Post("/api/game/wager", handleWager(ctrl))
		r.Post("/api/game/wager/score", handleWagerScore(ctrl))

		r.Post("/api/final/start", handleFinalStart(ctrl))
		r.Post("/api/final/wager-stage", handleFinalWagerStage(ctrl))
		r.Post("/api/final/wagers", handleFinalWagers(ctrl))
		r.Post("/api/final/reveal", handleFinalReveal(ctrl))
		r.Post("/api/final/score", handleFinalScore(ctrl))
		r.Post("/api/final/finish", handleFinalFinish(ctrl))

		r.Post("/api/game/finish", handleFinish(ctrl))
		r.Post("/api/game/new", handleNewGame(ctrl))
		r.Get("/api/game/save", handleSave(ctrl))
		r.Post("/api/game/restore", handleRestore(ctrl))
		r.Post("/api/teams/edit", handleTeamsEdit(ctrl))
		r.Get("/api/game/report", handleReport(ctrl))
	})

	if opts.SPADir != "" {
		if info, err := os.Stat(opts.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", opts.SPADir)
			r.NotFound(handleSPA(opts.SPADir))
		}
	}
}
