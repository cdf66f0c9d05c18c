package environment

import (
	"os"
	"testing"

	"github.com/nworb999/night-salon/internal/domain"
	"github.com/nworb999/night-salon/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.InitSilent()
	os.Exit(m.Run())
}

// Helper: контроллер с одной валидной зоной cubicles и двумя точками
func newTestController() *Controller {
	c := New()
	c.AddArea("Cubicles", domain.AreaCubicles)
	c.AddLocation(domain.AreaCubicles, "desk_1", "Desk 1", domain.LocationTypeDesk, nil)
	c.AddLocation(domain.AreaCubicles, "desk_2", "Desk 2", domain.LocationTypeDesk, nil)
	return c
}

func TestAddArea_Idempotent(t *testing.T) {
	c := newTestController()

	// Повторное объявление не должно сбрасывать точки
	c.AddArea("Cubicles", domain.AreaCubicles)

	if got := len(c.AvailableLocations(domain.AreaCubicles)); got != 2 {
		t.Errorf("Expected 2 locations after re-declaration, got %d", got)
	}
	if len(c.ValidAreas()) != 1 {
		t.Errorf("Expected exactly one valid area, got %v", c.ValidAreas())
	}
}

func TestUpdateAgentLocation_Occupancy(t *testing.T) {
	c := newTestController()
	c.AddAgent(domain.NewAgent("alice"))

	c.UpdateAgentLocation("alice", domain.AreaCubicles, "desk_1")

	a, _ := c.Agent("alice")
	if a.Location != "desk_1" {
		t.Errorf("Expected alice at desk_1, got %q", a.Location)
	}
	if a.Area != domain.AreaCubicles {
		t.Errorf("Expected alice in cubicles, got %s", a.Area)
	}
	if c.IsLocationAvailable(domain.AreaCubicles, "desk_1") {
		t.Error("desk_1 should be occupied")
	}
}

func TestUpdateAgentLocation_MutualExclusion(t *testing.T) {
	c := newTestController()
	c.AddAgent(domain.NewAgent("alice"))
	c.AddAgent(domain.NewAgent("bob"))

	c.UpdateAgentLocation("alice", domain.AreaCubicles, "desk_1")
	// Боб приходит на ту же точку: деградация до "в зоне без точки"
	c.UpdateAgentLocation("bob", domain.AreaCubicles, "desk_1")

	a, _ := c.Agent("alice")
	b, _ := c.Agent("bob")
	if a.Location != "desk_1" {
		t.Error("Alice should keep her desk")
	}
	if b.Location != "" {
		t.Errorf("Bob should be without a location, got %q", b.Location)
	}
	if b.Area != domain.AreaCubicles {
		t.Error("Bob should still be a member of the area")
	}
}

func TestUpdateAgentLocation_ReleasesOldSpot(t *testing.T) {
	c := newTestController()
	c.AddAgent(domain.NewAgent("alice"))

	c.UpdateAgentLocation("alice", domain.AreaCubicles, "desk_1")
	c.UpdateAgentLocation("alice", domain.AreaCubicles, "desk_2")

	if !c.IsLocationAvailable(domain.AreaCubicles, "desk_1") {
		t.Error("desk_1 should be free after alice moved on")
	}
	a, _ := c.Agent("alice")
	if a.Location != "desk_2" {
		t.Errorf("Expected desk_2, got %q", a.Location)
	}
}

func TestUpdateAgentLocation_ArrivalConsumesReservation(t *testing.T) {
	c := newTestController()
	c.AddAgent(domain.NewAgent("alice"))

	if !c.PrepareAgentMove("alice", domain.AreaCubicles, "desk_1") {
		t.Fatal("Reservation should succeed")
	}
	if c.PlannedBy(domain.AreaCubicles, "desk_1") != "alice" {
		t.Fatal("desk_1 should be reserved by alice")
	}

	c.UpdateAgentLocation("alice", domain.AreaCubicles, "desk_1")

	// Прибытие исполняет бронь: точка занята, резерв погашен
	if c.PlannedBy(domain.AreaCubicles, "desk_1") != "" {
		t.Error("Reservation should be consumed on arrival")
	}
	a, _ := c.Agent("alice")
	if a.Location != "desk_1" {
		t.Error("Alice should occupy desk_1")
	}
	if a.Destination != "" {
		t.Errorf("Destination should be cleared on arrival, got %q", a.Destination)
	}
}

func TestUpdateAgentLocation_ReservedByOther(t *testing.T) {
	c := newTestController()
	c.AddAgent(domain.NewAgent("alice"))
	c.AddAgent(domain.NewAgent("bob"))

	c.PrepareAgentMove("alice", domain.AreaCubicles, "desk_1")
	// Боб физически дошел до чужой брони
	c.UpdateAgentLocation("bob", domain.AreaCubicles, "desk_1")

	b, _ := c.Agent("bob")
	if b.Location != "" {
		t.Error("Bob must not occupy a location reserved by alice")
	}
	if c.PlannedBy(domain.AreaCubicles, "desk_1") != "alice" {
		t.Error("Alice's reservation must survive")
	}
}

func TestUpdateAgentLocation_UnknownLocation(t *testing.T) {
	c := newTestController()
	c.AddAgent(domain.NewAgent("alice"))
	c.UpdateAgentLocation("alice", domain.AreaCubicles, "desk_1")

	// Клиент прислал точку, которой нет в реестре
	c.UpdateAgentLocation("alice", domain.AreaCubicles, "ghost_desk")

	a, _ := c.Agent("alice")
	if a.Location != "" {
		t.Errorf("Unknown location should degrade to no-location, got %q", a.Location)
	}
	if !c.IsLocationAvailable(domain.AreaCubicles, "desk_1") {
		t.Error("Old spot should be released")
	}
}

func TestUpdateAgentLocation_EmptyClearsSpot(t *testing.T) {
	c := newTestController()
	c.AddAgent(domain.NewAgent("alice"))
	c.UpdateAgentLocation("alice", domain.AreaCubicles, "desk_1")

	c.UpdateAgentLocation("alice", domain.AreaHallway, "")

	a, _ := c.Agent("alice")
	if a.Area != domain.AreaHallway || a.Location != "" {
		t.Errorf("Expected hallway without location, got %s/%q", a.Area, a.Location)
	}
	if !c.IsLocationAvailable(domain.AreaCubicles, "desk_1") {
		t.Error("desk_1 should be free")
	}
}

func TestRemoveAgent_CleansEverything(t *testing.T) {
	c := newTestController()
	c.AddAgent(domain.NewAgent("alice"))
	c.UpdateAgentLocation("alice", domain.AreaCubicles, "desk_1")
	c.PrepareAgentMove("alice", domain.AreaCubicles, "desk_2")

	if !c.RemoveAgent("alice") {
		t.Fatal("RemoveAgent should report success")
	}

	if c.HasAgent("alice") {
		t.Error("Agent must be gone")
	}
	if !c.IsLocationAvailable(domain.AreaCubicles, "desk_1") {
		t.Error("Occupied spot must be released synchronously")
	}
	if !c.IsLocationAvailable(domain.AreaCubicles, "desk_2") {
		t.Error("Reservation must be released synchronously")
	}
	if c.RemoveAgent("alice") {
		t.Error("Second removal should report false")
	}
}

func TestAvailableLocations_Sorted(t *testing.T) {
	c := newTestController()
	c.AddLocation(domain.AreaCubicles, "desk_0", "Desk 0", domain.LocationTypeDesk, nil)

	got := c.AvailableLocations(domain.AreaCubicles)
	want := []domain.LocationID{"desk_0", "desk_1", "desk_2"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d locations, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestAvailableLocations_ExcludesOccupiedAndReserved(t *testing.T) {
	c := newTestController()
	c.AddAgent(domain.NewAgent("alice"))
	c.AddAgent(domain.NewAgent("bob"))

	c.UpdateAgentLocation("alice", domain.AreaCubicles, "desk_1")
	c.PrepareAgentMove("bob", domain.AreaCubicles, "desk_2")

	got := c.AvailableLocations(domain.AreaCubicles)
	if len(got) != 0 {
		t.Errorf("Expected no available locations, got %v", got)
	}
}

func TestPrepareAgentMove_Conflicts(t *testing.T) {
	c := newTestController()
	c.AddAgent(domain.NewAgent("alice"))
	c.AddAgent(domain.NewAgent("bob"))

	if !c.PrepareAgentMove("alice", domain.AreaCubicles, "desk_1") {
		t.Fatal("First reservation should succeed")
	}
	if c.PrepareAgentMove("bob", domain.AreaCubicles, "desk_1") {
		t.Error("Second reservation of the same spot must fail")
	}
	if c.PrepareAgentMove("ghost", domain.AreaCubicles, "desk_2") {
		t.Error("Unknown agent must not reserve anything")
	}
	if c.PrepareAgentMove("bob", domain.AreaBathroom, "stall_1") {
		t.Error("Reservation in an area without the location must fail")
	}
}

func TestPlanLocation_ReplacesPreviousReservation(t *testing.T) {
	c := newTestController()
	c.AddAgent(domain.NewAgent("alice"))

	if !c.PrepareAgentMove("alice", domain.AreaCubicles, "desk_1") {
		t.Fatal("First reservation should succeed")
	}
	// Новая цель гасит прежнюю бронь: desk_1 снова свободен
	if !c.PrepareAgentMove("alice", domain.AreaCubicles, "desk_2") {
		t.Fatal("Replanning to another spot should succeed")
	}
	if !c.IsLocationAvailable(domain.AreaCubicles, "desk_1") {
		t.Error("Previous reservation must be released on replan")
	}
	if owner := c.PlannedBy(domain.AreaCubicles, "desk_2"); owner != "alice" {
		t.Errorf("desk_2 must be reserved by alice, got %q", owner)
	}
	agent, _ := c.Agent("alice")
	if agent.Destination != "desk_2" {
		t.Errorf("Expected destination desk_2, got %q", agent.Destination)
	}

	// Повторная бронь своей же точки - no-op, а не отказ
	if !c.PrepareAgentMove("alice", domain.AreaCubicles, "desk_2") {
		t.Error("Replanning the same spot should succeed")
	}
	if owner := c.PlannedBy(domain.AreaCubicles, "desk_2"); owner != "alice" {
		t.Errorf("desk_2 must stay reserved by alice, got %q", owner)
	}
}

func TestLocationArea(t *testing.T) {
	c := newTestController()

	area, ok := c.LocationArea("desk_1")
	if !ok || area != domain.AreaCubicles {
		t.Errorf("Expected cubicles, got %s (ok=%v)", area, ok)
	}
	if _, ok := c.LocationArea("nowhere"); ok {
		t.Error("Unknown location must not resolve")
	}
}

func TestSnapshot_IncludesOccupancy(t *testing.T) {
	c := newTestController()
	c.AddAgent(domain.NewAgent("alice"))
	c.UpdateAgentLocation("alice", domain.AreaCubicles, "desk_1")

	view := c.Snapshot()

	av, ok := view.Areas["CUBICLES"]
	if !ok {
		t.Fatal("Snapshot missing cubicles area")
	}
	if av.Locations["desk_1"].OccupiedBy != "alice" {
		t.Error("Snapshot should show alice at desk_1")
	}
	if view.Agents["alice"].Location != "desk_1" {
		t.Error("Agent view should show desk_1")
	}
}
