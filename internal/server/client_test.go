package server

import (
	"sync"
	"testing"
	"time"

	"github.com/nworb999/night-salon/internal/cognitive"
	"github.com/nworb999/night-salon/internal/domain"
	"github.com/nworb999/night-salon/internal/engine"
	"github.com/nworb999/night-salon/internal/environment"
	"github.com/nworb999/night-salon/internal/network"
)

func newTestClient(delayMin, delayMax time.Duration) *Client {
	env := environment.New()
	memories := cognitive.NewRegistry()
	coordinator := engine.NewService(engine.Config{Seed: 1}, env, memories)
	return NewClient(coordinator, network.NewBroadcaster(), nil, delayMin, delayMax)
}

func TestPickDelays_WithinWindow(t *testing.T) {
	c := newTestClient(5*time.Millisecond, 10*time.Millisecond)

	delays := c.pickDelays(50)
	if len(delays) != 50 {
		t.Fatalf("Expected 50 delays, got %d", len(delays))
	}
	for i, d := range delays {
		if d < 5*time.Millisecond || d >= 10*time.Millisecond {
			t.Errorf("Delay %d out of window: %v", i, d)
		}
	}
}

func TestPickDelays_ZeroWindow(t *testing.T) {
	c := newTestClient(0, 0)

	for _, d := range c.pickDelays(3) {
		if d != 0 {
			t.Errorf("Expected zero delay, got %v", d)
		}
	}
}

// Несколько рассылок могут быть в полете одновременно (клиент шлет
// события быстрее, чем истекают паузы). Паузы выбраны заранее в
// readPump, поэтому sendDelayed не трогает общий rng и безопасна
// для параллельного запуска.
func TestSendDelayed_ConcurrentBatches(t *testing.T) {
	c := newTestClient(0, 0)
	inbox := c.Hub.Register("listener")

	const batches = 8
	var wg sync.WaitGroup
	for i := 0; i < batches; i++ {
		commands := []domain.MoveCommand{domain.NewMoveCommand("alice", "desk_1")}
		delays := c.pickDelays(len(commands))
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.sendDelayed(commands, delays)
		}()
	}
	wg.Wait()

	for i := 0; i < batches; i++ {
		select {
		case <-inbox:
		default:
			t.Fatalf("Expected %d broadcasts, got %d", batches, i)
		}
	}
}
