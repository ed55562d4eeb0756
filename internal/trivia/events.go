package trivia

// EventType identifies a domain event emitted by session mutations. The
// presentation layer subscribes to these and renders; state transition
// code never renders anything itself.
type EventType string

const (
	EventClueOpened    EventType = "clue_opened"
	EventWagerCapture  EventType = "wager_capture"
	EventWagerPlaced   EventType = "wager_placed"
	EventClueScored    EventType = "clue_scored"
	EventTeamPenalized EventType = "team_penalized"
	EventClueAborted   EventType = "clue_aborted"
	EventScoresChanged EventType = "scores_changed"
	EventRoundAdvanced EventType = "round_advanced"
	EventFinalStage    EventType = "final_stage"
	EventGameEnded     EventType = "game_ended"
	EventTimerTick     EventType = "timer_tick"
	EventTimerExpired  EventType = "timer_expired"
)

// Event is the payload published to presentation subscribers. ClueIndex
// and TeamIndex are -1 when not applicable.
type Event struct {
	Type      EventType `json:"type"`
	ClueIndex int       `json:"clueIndex"`
	TeamIndex int       `json:"teamIndex"`
	Round     RoundTag  `json:"round,omitempty"`
	Stage     string    `json:"stage,omitempty"`
	Seconds   int       `json:"seconds,omitempty"`
}

func clueEvent(t EventType, clueIndex int) Event {
	return Event{Type: t, ClueIndex: clueIndex, TeamIndex: -1}
}

func teamEvent(t EventType, clueIndex, teamIndex int) Event {
	return Event{Type: t, ClueIndex: clueIndex, TeamIndex: teamIndex}
}
