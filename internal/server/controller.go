package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/quizforge/triviaboard/internal/ingest"
	"github.com/quizforge/triviaboard/internal/snapshot"
	"github.com/quizforge/triviaboard/internal/trivia"
)

var (
	// ErrNoBoard means no clue source has been loaded yet.
	ErrNoBoard = errors.New("no board loaded")
	// ErrNoGame means no game has been started.
	ErrNoGame = errors.New("no game in progress")
	// ErrConfirmRequired means the loaded board is uniform but not the
	// classic 5x5 layout and the host has not confirmed it.
	ErrConfirmRequired = errors.New("board layout requires confirmation")
)

// Controller owns the single live session. All access to the session
// goes through its lock; every successful mutation is snapshotted to
// the store and its events published to the broker.
type Controller struct {
	logger *slog.Logger
	store  Store
	broker *Broker

	mu     sync.Mutex
	rounds *trivia.RoundSet
	report *ingest.Report
	sess   *trivia.Session

	timerCancel context.CancelFunc
}

func NewController(logger *slog.Logger, store Store, broker *Broker) *Controller {
	return &Controller{
		logger: logger,
		store:  store,
		broker: broker,
	}
}

// RestoreFromStore adopts the persisted snapshot, if any. Called once
// at boot; a corrupt stored snapshot is logged and discarded rather
// than blocking startup.
func (c *Controller) RestoreFromStore(ctx context.Context) {
	code, err := c.store.LoadGame(ctx)
	if errors.Is(err, ErrNotFound) {
		return
	}
	if err != nil {
		c.logger.Error("loading persisted game", "error", err)
		return
	}
	sess, err := snapshot.Decode(code)
	if err != nil {
		c.logger.Error("persisted game is unreadable, discarding", "error", err)
		c.store.ClearGame(ctx)
		return
	}
	c.mu.Lock()
	c.sess = sess
	c.rounds = sess.Rounds
	c.mu.Unlock()
	c.logger.Info("restored persisted game", "title", sess.Rounds.Title)
}

// Load parses and validates a clue source. The accepted round set is
// staged for the next Start; a running game is untouched either way.
func (c *Controller) Load(r io.Reader, confirm bool) (*ingest.Report, error) {
	src, err := ingest.Parse(r)
	if err != nil {
		return nil, err
	}
	rounds, report, err := ingest.Build(src)
	if err != nil {
		return report, err
	}
	if report.NeedsConfirmation && !confirm {
		return report, ErrConfirmRequired
	}

	c.mu.Lock()
	c.rounds = rounds
	c.report = report
	c.mu.Unlock()

	c.logger.Info("board loaded",
		"title", rounds.Title,
		"round1", report.Round1,
		"round2", report.Round2,
		"final", report.HasFinal,
		"issues", len(report.RowIssues),
	)
	return report, nil
}

// Start creates a fresh session from the staged round set, replacing
// any existing game.
func (c *Controller) Start(ctx context.Context, cfg trivia.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rounds == nil {
		return ErrNoBoard
	}
	sess, err := trivia.NewSession(c.rounds, cfg)
	if err != nil {
		return err
	}
	c.stopTimer()
	c.sess = sess
	if err := c.persist(ctx); err != nil {
		return err
	}
	c.logger.Info("game started", "teams", len(sess.Teams), "round", sess.Current)
	return nil
}

// Restore replaces the live session with one decoded from a save code.
func (c *Controller) Restore(ctx context.Context, code string) error {
	sess, err := snapshot.Decode(code)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimer()
	c.sess = sess
	c.rounds = sess.Rounds
	if err := c.persist(ctx); err != nil {
		return err
	}
	c.logger.Info("game restored from save code", "title", sess.Rounds.Title)
	return nil
}

// Save returns the current session's save code.
func (c *Controller) Save() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return "", ErrNoGame
	}
	return snapshot.Encode(c.sess)
}

// Reset tears down the session, the staged board, and all persisted
// state, including judge unlocks.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimer()
	c.sess = nil
	c.rounds = nil
	c.report = nil
	if err := c.store.ClearGame(ctx); err != nil {
		return fmt.Errorf("clearing persisted game: %w", err)
	}
	if err := c.store.DeleteSessionsByRole(ctx, roleJudge); err != nil {
		return fmt.Errorf("clearing judge sessions: %w", err)
	}
	c.logger.Info("game reset")
	return nil
}

// JudgeUnlock checks the board's judge code and mints a judge session.
// The comparison is an exact string match.
func (c *Controller) JudgeUnlock(ctx context.Context, code string) (string, error) {
	c.mu.Lock()
	if c.sess == nil {
		c.mu.Unlock()
		return "", ErrNoGame
	}
	want := c.sess.Rounds.JudgeCode
	c.mu.Unlock()

	if want == "" || code != want {
		return "", ErrNotFound
	}
	return c.store.CreateSession(ctx, roleJudge)
}

// read runs fn with the live session under the lock.
func (c *Controller) read(fn func(*trivia.Session) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return ErrNoGame
	}
	return fn(c.sess)
}

// mutate runs fn under the lock, then persists the session and
// publishes the returned events. The timer follows the clue lifecycle:
// started on open, torn down on every close path.
func (c *Controller) mutate(ctx context.Context, fn func(*trivia.Session) ([]trivia.Event, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess == nil {
		return ErrNoGame
	}
	events, err := fn(c.sess)
	if err != nil {
		return err
	}

	for _, ev := range events {
		switch ev.Type {
		case trivia.EventClueOpened:
			if c.sess.TimerSeconds > 0 {
				c.startTimer(ev.ClueIndex, c.sess.TimerSeconds)
			}
		case trivia.EventClueScored, trivia.EventClueAborted, trivia.EventGameEnded:
			c.stopTimer()
		}
	}

	if err := c.persist(ctx); err != nil {
		return err
	}
	for _, ev := range events {
		c.broker.Publish(ev)
	}
	return nil
}

// persist writes the snapshot, or clears it once the game is over.
// Caller holds the lock.
func (c *Controller) persist(ctx context.Context) error {
	if c.sess.Over() {
		if err := c.store.ClearGame(ctx); err != nil {
			return fmt.Errorf("clearing persisted game: %w", err)
		}
		return nil
	}
	code, err := snapshot.Encode(c.sess)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := c.store.SaveGame(ctx, code); err != nil {
		return fmt.Errorf("persisting snapshot: %w", err)
	}
	return nil
}

// startTimer launches the per-clue countdown. Caller holds the lock.
func (c *Controller) startTimer(clueIndex, seconds int) {
	c.stopTimer()
	ctx, cancel := context.WithCancel(context.Background())
	c.timerCancel = cancel

	go func() {
		remaining := seconds
		tick := time.NewTicker(time.Second)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				remaining--
				if remaining <= 0 {
					// Expiry signals the host; it never finalizes the clue.
					c.broker.Publish(trivia.Event{
						Type:      trivia.EventTimerExpired,
						ClueIndex: clueIndex,
						TeamIndex: -1,
					})
					return
				}
				c.broker.Publish(trivia.Event{
					Type:      trivia.EventTimerTick,
					ClueIndex: clueIndex,
					TeamIndex: -1,
					Seconds:   remaining,
				})
			}
		}
	}()
}

// stopTimer cancels any running countdown. Caller holds the lock.
func (c *Controller) stopTimer() {
	if c.timerCancel != nil {
		c.timerCancel()
		c.timerCancel = nil
	}
}
