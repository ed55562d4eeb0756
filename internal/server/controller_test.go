package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/quizforge/triviaboard/internal/database"
	"github.com/quizforge/triviaboard/internal/trivia"
)

func newTestController(t *testing.T) (*Controller, *Broker, Store) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store, err := NewSQLiteStore(ctx, db)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}

	broker := NewBroker()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewController(logger, store, broker), broker, store
}

func startedController(t *testing.T) (*Controller, *Broker, Store) {
	t.Helper()
	ctrl, broker, store := newTestController(t)
	if _, err := ctrl.Load(strings.NewReader(boardSource), true); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := ctrl.Start(context.Background(), trivia.Config{Teams: 2}); err != nil {
		t.Fatalf("start: %v", err)
	}
	return ctrl, broker, store
}

func waitEvent(t *testing.T, ch chan []byte) trivia.Event {
	t.Helper()
	select {
	case data := <-ch:
		var ev trivia.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event published")
		return trivia.Event{}
	}
}

func TestMutationsPublishEvents(t *testing.T) {
	ctrl, broker, _ := startedController(t)

	ch := broker.Subscribe()
	defer broker.Unsubscribe(ch)

	err := ctrl.mutate(context.Background(), func(s *trivia.Session) ([]trivia.Event, error) {
		return s.Open(0)
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	ev := waitEvent(t, ch)
	if ev.Type != trivia.EventClueOpened || ev.ClueIndex != 0 {
		t.Errorf("event = %+v", ev)
	}
}

func TestFailedMutationPublishesNothing(t *testing.T) {
	ctrl, broker, _ := startedController(t)

	ch := broker.Subscribe()
	defer broker.Unsubscribe(ch)

	err := ctrl.mutate(context.Background(), func(s *trivia.Session) ([]trivia.Event, error) {
		return s.Open(99)
	})
	if !errors.Is(err, trivia.ErrNoSuchClue) {
		t.Fatalf("got %v, want ErrNoSuchClue", err)
	}

	select {
	case data := <-ch:
		t.Errorf("unexpected event: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRestoreFromStoreAtBoot(t *testing.T) {
	ctrl, _, store := startedController(t)

	err := ctrl.mutate(context.Background(), func(s *trivia.Session) ([]trivia.Event, error) {
		if _, err := s.Open(0); err != nil {
			return nil, err
		}
		return s.RecordCorrect(0, 0)
	})
	if err != nil {
		t.Fatalf("play clue: %v", err)
	}

	// A second controller over the same store picks the game back up.
	broker := NewBroker()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	revived := NewController(logger, store, broker)
	revived.RestoreFromStore(context.Background())

	err = revived.read(func(s *trivia.Session) error {
		if s.Teams[0].Score != 100 {
			t.Errorf("restored score = %d, want 100", s.Teams[0].Score)
		}
		if !s.Board[0] {
			t.Error("restored board lost the played flag")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
}

func TestTimerEmitsTicksAndStopsOnClose(t *testing.T) {
	ctrl, broker, _ := newTestController(t)
	if _, err := ctrl.Load(strings.NewReader(boardSource), true); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := ctrl.Start(context.Background(), trivia.Config{Teams: 2, TimerSeconds: 30}); err != nil {
		t.Fatalf("start: %v", err)
	}

	ch := broker.Subscribe()
	defer broker.Unsubscribe(ch)

	err := ctrl.mutate(context.Background(), func(s *trivia.Session) ([]trivia.Event, error) {
		return s.Open(0)
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if ev := waitEvent(t, ch); ev.Type != trivia.EventClueOpened {
		t.Fatalf("event = %+v", ev)
	}

	// First tick lands after one second with the countdown decremented.
	deadline := time.After(3 * time.Second)
waitTick:
	for {
		select {
		case data := <-ch:
			var ev trivia.Event
			json.Unmarshal(data, &ev)
			if ev.Type == trivia.EventTimerTick {
				if ev.Seconds != 29 {
					t.Errorf("first tick seconds = %d, want 29", ev.Seconds)
				}
				break waitTick
			}
		case <-deadline:
			t.Fatal("no timer tick")
		}
	}

	err = ctrl.mutate(context.Background(), func(s *trivia.Session) ([]trivia.Event, error) {
		return s.Pass(0)
	})
	if err != nil {
		t.Fatalf("pass: %v", err)
	}

	// Drain the close events, then confirm the ticking stopped.
	drained := time.After(1500 * time.Millisecond)
	for {
		select {
		case data := <-ch:
			var ev trivia.Event
			json.Unmarshal(data, &ev)
			if ev.Type == trivia.EventTimerTick {
				t.Fatal("timer kept ticking after the clue closed")
			}
		case <-drained:
			return
		}
	}
}

func TestBrokerDropsSlowSubscribers(t *testing.T) {
	broker := NewBroker()
	ch := broker.Subscribe()
	defer broker.Unsubscribe(ch)

	// Fill the buffer and keep publishing; Publish must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			broker.Publish(trivia.Event{Type: trivia.EventScoresChanged, ClueIndex: -1, TeamIndex: -1})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
