package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/quizforge/triviaboard/internal/trivia"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Trivia Board API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Host-side API for running a trivia board game night.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/game/load
	postLoad, _ := r.NewOperationContext(http.MethodPost, "/api/game/load")
	postLoad.SetSummary("Load clue source")
	postLoad.SetDescription("Parses a delimited clue file. Pass confirm=true to accept a uniform non-classic layout.")
	postLoad.AddRespStructure(LoadResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLoad.AddRespStructure(LoadResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postLoad.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postLoad)

	// POST /api/game/start
	postStart, _ := r.NewOperationContext(http.MethodPost, "/api/game/start")
	postStart.SetSummary("Start a game")
	postStart.SetDescription("Creates a fresh session from the loaded board with 2 to 10 teams.")
	postStart.AddReqStructure(StartRequest{})
	postStart.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postStart)

	// GET /api/game/state
	getState, _ := r.NewOperationContext(http.MethodGet, "/api/game/state")
	getState.SetSummary("Get game state")
	getState.SetDescription("Returns the full host view: board, scores, open clue, final stage.")
	getState.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getState)

	// POST /api/game/clue/open
	postOpen, _ := r.NewOperationContext(http.MethodPost, "/api/game/clue/open")
	postOpen.SetSummary("Open a clue")
	postOpen.SetDescription("Reveals a board clue. A Daily Double opens into wager capture instead.")
	postOpen.AddReqStructure(OpenClueRequest{})
	postOpen.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postOpen.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postOpen.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postOpen)

	// POST /api/game/clue/score
	postScore, _ := r.NewOperationContext(http.MethodPost, "/api/game/clue/score")
	postScore.SetSummary("Score the open clue")
	postScore.SetDescription("Applies add/subtract/none per team and closes the clue.")
	postScore.AddReqStructure(ScoreClueRequest{})
	postScore.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postScore.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postScore)

	// POST /api/game/clue/correct
	postCorrect, _ := r.NewOperationContext(http.MethodPost, "/api/game/clue/correct")
	postCorrect.SetSummary("Mark a team correct")
	postCorrect.SetDescription("Awards the clue value to one team and closes the clue.")
	postCorrect.AddReqStructure(TeamIndexRequest{})
	postCorrect.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postCorrect.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postCorrect)

	// POST /api/game/clue/penalty
	postPenalty, _ := r.NewOperationContext(http.MethodPost, "/api/game/clue/penalty")
	postPenalty.SetSummary("Penalize a wrong guess")
	postPenalty.SetDescription("Deducts the clue value once per team while the clue stays open.")
	postPenalty.AddReqStructure(TeamIndexRequest{})
	postPenalty.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postPenalty.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postPenalty)

	// POST /api/game/clue/pass
	postPass, _ := r.NewOperationContext(http.MethodPost, "/api/game/clue/pass")
	postPass.SetSummary("Pass the open clue")
	postPass.SetDescription("Closes the clue with no score change; prior penalties stand.")
	postPass.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postPass.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postPass)

	// POST /api/game/clue/abort
	postAbort, _ := r.NewOperationContext(http.MethodPost, "/api/game/clue/abort")
	postAbort.SetSummary("Abort the open clue")
	postAbort.SetDescription("Closes the clue without finalizing it so it can be reopened later.")
	postAbort.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAbort.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postAbort)

	// POST /api/game/wager
	postWager, _ := r.NewOperationContext(http.MethodPost, "/api/game/wager")
	postWager.SetSummary("Place a Daily Double wager")
	postWager.SetDescription("Captures the wager for the open Daily Double; bound by max(0, score).")
	postWager.AddReqStructure(WagerRequest{})
	postWager.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postWager.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	postWager.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postWager)

	// POST /api/game/wager/score
	postWagerScore, _ := r.NewOperationContext(http.MethodPost, "/api/game/wager/score")
	postWagerScore.SetSummary("Score a Daily Double")
	postWagerScore.SetDescription("Applies the placed wager as plus or minus and closes the clue.")
	postWagerScore.AddReqStructure(ScoreWagerRequest{})
	postWagerScore.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postWagerScore.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postWagerScore)

	// POST /api/final/start
	postFinalStart, _ := r.NewOperationContext(http.MethodPost, "/api/final/start")
	postFinalStart.SetSummary("Start the final round")
	postFinalStart.SetDescription("Enters the final round at the category stage.")
	postFinalStart.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postFinalStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postFinalStart)

	// POST /api/final/wager-stage
	postFinalWagerStage, _ := r.NewOperationContext(http.MethodPost, "/api/final/wager-stage")
	postFinalWagerStage.SetSummary("Advance to final wagers")
	postFinalWagerStage.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postFinalWagerStage.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postFinalWagerStage)

	// POST /api/final/wagers
	postFinalWagers, _ := r.NewOperationContext(http.MethodPost, "/api/final/wagers")
	postFinalWagers.SetSummary("Place final wagers")
	postFinalWagers.SetDescription("All teams wager at once; one invalid wager rejects the whole set.")
	postFinalWagers.AddReqStructure(FinalWagersRequest{})
	postFinalWagers.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postFinalWagers.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	postFinalWagers.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postFinalWagers)

	// POST /api/final/reveal
	postFinalReveal, _ := r.NewOperationContext(http.MethodPost, "/api/final/reveal")
	postFinalReveal.SetSummary("Reveal the final answer")
	postFinalReveal.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postFinalReveal.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postFinalReveal)

	// POST /api/final/score
	postFinalScore, _ := r.NewOperationContext(http.MethodPost, "/api/final/score")
	postFinalScore.SetSummary("Score one team's final answer")
	postFinalScore.SetDescription("Applies the team's wager as plus or minus, once per team.")
	postFinalScore.AddReqStructure(ScoreFinalRequest{})
	postFinalScore.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postFinalScore.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postFinalScore)

	// POST /api/final/finish
	postFinalFinish, _ := r.NewOperationContext(http.MethodPost, "/api/final/finish")
	postFinalFinish.SetSummary("Finish the final round")
	postFinalFinish.SetDescription("Ends the game once every team has been scored.")
	postFinalFinish.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postFinalFinish.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postFinalFinish)

	// POST /api/game/finish
	postFinish, _ := r.NewOperationContext(http.MethodPost, "/api/game/finish")
	postFinish.SetSummary("End the game early")
	postFinish.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postFinish.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postFinish)

	// GET /api/game/standings
	getStandings, _ := r.NewOperationContext(http.MethodGet, "/api/game/standings")
	getStandings.SetSummary("Current standings")
	getStandings.SetDescription("Teams sorted by score descending; ties keep team order.")
	getStandings.AddRespStructure([]trivia.Standing{}, openapi.WithHTTPStatus(http.StatusOK))
	getStandings.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(getStandings)

	// GET /api/game/save
	getSave, _ := r.NewOperationContext(http.MethodGet, "/api/game/save")
	getSave.SetSummary("Export a save code")
	getSave.AddRespStructure(SaveResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getSave.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(getSave)

	// POST /api/game/restore
	postRestore, _ := r.NewOperationContext(http.MethodPost, "/api/game/restore")
	postRestore.SetSummary("Restore from a save code")
	postRestore.SetDescription("Replaces the live session. Legacy save codes are accepted.")
	postRestore.AddReqStructure(RestoreRequest{})
	postRestore.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postRestore.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postRestore)

	// POST /api/game/new
	postNew, _ := r.NewOperationContext(http.MethodPost, "/api/game/new")
	postNew.SetSummary("Reset everything")
	postNew.SetDescription("Drops the session, the loaded board, and all persisted state.")
	postNew.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postNew)

	// POST /api/teams/edit
	postTeams, _ := r.NewOperationContext(http.MethodPost, "/api/teams/edit")
	postTeams.SetSummary("Edit teams")
	postTeams.SetDescription("Renames teams and adjusts scores wholesale.")
	postTeams.AddReqStructure(EditTeamsRequest{})
	postTeams.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postTeams.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postTeams)

	// POST /api/judge/unlock
	postJudge, _ := r.NewOperationContext(http.MethodPost, "/api/judge/unlock")
	postJudge.SetSummary("Unlock judge mode")
	postJudge.SetDescription("Exact judge-code match mints a judge token.")
	postJudge.AddReqStructure(JudgeUnlockRequest{})
	postJudge.AddRespStructure(JudgeUnlockResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postJudge.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postJudge)

	// GET /api/judge/board
	getJudgeBoard, _ := r.NewOperationContext(http.MethodGet, "/api/judge/board")
	getJudgeBoard.SetSummary("Judge board view")
	getJudgeBoard.SetDescription("The current round with answers included. Pass token as query parameter.")
	getJudgeBoard.AddRespStructure(JudgeBoardResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getJudgeBoard.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getJudgeBoard)

	// GET /api/game/report
	getReport, _ := r.NewOperationContext(http.MethodGet, "/api/game/report")
	getReport.SetSummary("Performance report")
	getReport.SetDescription("Per-clue outcome table for every team as a CSV download.")
	getReport.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/csv"))
	getReport.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(getReport)

	// GET /api/game/qr
	getQR, _ := r.NewOperationContext(http.MethodGet, "/api/game/qr")
	getQR.SetSummary("Board URL QR code")
	getQR.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("image/png"))
	_ = r.AddOperation(getQR)

	// GET /api/game/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/game/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of game events for presentation layers.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /ws/events
	getWSEvents, _ := r.NewOperationContext(http.MethodGet, "/ws/events")
	getWSEvents.SetSummary("Websocket event stream")
	getWSEvents.SetDescription("Upgrades to a websocket carrying the same feed as the SSE endpoint.")
	getWSEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWSEvents)

	// POST /api/host/login
	postHostLogin, _ := r.NewOperationContext(http.MethodPost, "/api/host/login")
	postHostLogin.SetSummary("Host login")
	postHostLogin.SetDescription("Authenticate with the host password. Sets host_session cookie.")
	postHostLogin.AddReqStructure(HostLoginRequest{})
	postHostLogin.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	postHostLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postHostLogin)

	// POST /api/host/logout
	postHostLogout, _ := r.NewOperationContext(http.MethodPost, "/api/host/logout")
	postHostLogout.SetSummary("Host logout")
	postHostLogout.SetDescription("Clears the host session and cookie.")
	postHostLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postHostLogout)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
