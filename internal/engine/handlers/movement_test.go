package handlers

import (
	"math/rand"
	"os"
	"testing"

	"github.com/nworb999/night-salon/internal/cognitive"
	"github.com/nworb999/night-salon/internal/domain"
	"github.com/nworb999/night-salon/internal/environment"
	"github.com/nworb999/night-salon/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.InitSilent()
	os.Exit(m.Run())
}

func newTestContext(seed int64) Context {
	return Context{
		Env:      environment.New(),
		Memories: cognitive.NewRegistry(),
		Rng:      rand.New(rand.NewSource(seed)),
	}
}

func TestGenerateRandomMove_ReservesTarget(t *testing.T) {
	ctx := newTestContext(7)
	ctx.Env.AddArea("Cubicles", domain.AreaCubicles)
	ctx.Env.AddLocation(domain.AreaCubicles, "desk_1", "Desk 1", domain.LocationTypeDesk, nil)
	ctx.Env.AddAgent(domain.NewAgent("alice"))

	cmd := GenerateRandomMove(ctx, "alice")
	if cmd == nil {
		t.Fatal("Expected a command, got nil")
	}
	if cmd.LocationName != "desk_1" {
		t.Errorf("Expected desk_1, got %s", cmd.LocationName)
	}
	if ctx.Env.PlannedBy(domain.AreaCubicles, "desk_1") != "alice" {
		t.Error("Target must be reserved for alice")
	}

	a, _ := ctx.Env.Agent("alice")
	if a.Destination != "desk_1" {
		t.Errorf("Destination should be set, got %q", a.Destination)
	}
}

func TestGenerateRandomMove_SkipsCurrentSpot(t *testing.T) {
	ctx := newTestContext(7)
	ctx.Env.AddArea("Cubicles", domain.AreaCubicles)
	ctx.Env.AddLocation(domain.AreaCubicles, "desk_1", "Desk 1", domain.LocationTypeDesk, nil)
	ctx.Env.AddAgent(domain.NewAgent("alice"))
	ctx.Env.UpdateAgentLocation("alice", domain.AreaCubicles, "desk_1")

	// Единственная точка зоны - та, где агент уже стоит
	if cmd := GenerateRandomMove(ctx, "alice"); cmd != nil {
		t.Errorf("Agent must not be sent to its current spot, got %s", cmd.LocationName)
	}
}

func TestGenerateRandomMove_EmptyPool(t *testing.T) {
	ctx := newTestContext(7)
	ctx.Env.AddArea("Cubicles", domain.AreaCubicles)
	ctx.Env.AddLocation(domain.AreaCubicles, "desk_1", "Desk 1", domain.LocationTypeDesk, nil)
	ctx.Env.AddAgent(domain.NewAgent("alice"))
	ctx.Env.AddAgent(domain.NewAgent("bob"))
	ctx.Env.UpdateAgentLocation("bob", domain.AreaCubicles, "desk_1")

	// Офис заполнен: команд нет, это не ошибка
	if cmd := GenerateRandomMove(ctx, "alice"); cmd != nil {
		t.Errorf("Expected nil on full office, got %s", cmd.LocationName)
	}
}

func TestGenerateRandomMove_UnknownAgent(t *testing.T) {
	ctx := newTestContext(7)
	ctx.Env.AddArea("Cubicles", domain.AreaCubicles)
	ctx.Env.AddLocation(domain.AreaCubicles, "desk_1", "Desk 1", domain.LocationTypeDesk, nil)

	if cmd := GenerateRandomMove(ctx, "ghost"); cmd != nil {
		t.Error("Unknown agent must not produce a command")
	}
}

func TestGenerateRandomMove_OnlyValidAreas(t *testing.T) {
	ctx := newTestContext(7)
	// Зона с точками, но НЕ объявленная клиентом (Valid=false),
	// в пул не попадает
	ctx.Env.AddLocation(domain.AreaBathroom, "stall_1", "Stall 1", domain.LocationTypeStall, nil)
	ctx.Env.AddAgent(domain.NewAgent("alice"))

	if cmd := GenerateRandomMove(ctx, "alice"); cmd != nil {
		t.Errorf("Locations of undeclared areas must be excluded, got %s", cmd.LocationName)
	}
}

func TestGenerateRandomMove_TwoAgentsNeverCollide(t *testing.T) {
	ctx := newTestContext(99)
	ctx.Env.AddArea("Cubicles", domain.AreaCubicles)
	ctx.Env.AddLocation(domain.AreaCubicles, "desk_1", "Desk 1", domain.LocationTypeDesk, nil)
	ctx.Env.AddLocation(domain.AreaCubicles, "desk_2", "Desk 2", domain.LocationTypeDesk, nil)
	ctx.Env.AddAgent(domain.NewAgent("alice"))
	ctx.Env.AddAgent(domain.NewAgent("bob"))

	first := GenerateRandomMove(ctx, "alice")
	second := GenerateRandomMove(ctx, "bob")

	if first == nil || second == nil {
		t.Fatal("Both agents should receive commands")
	}
	if first.LocationName == second.LocationName {
		t.Errorf("Both agents were sent to %s", first.LocationName)
	}
}
