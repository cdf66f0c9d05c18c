package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/nworb999/night-salon/internal/cognitive"
	"github.com/nworb999/night-salon/internal/config"
	"github.com/nworb999/night-salon/internal/engine"
	"github.com/nworb999/night-salon/internal/environment"
	"github.com/nworb999/night-salon/internal/network"
	"github.com/nworb999/night-salon/pkg/api"
	"github.com/nworb999/night-salon/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.InitSilent()
	os.Exit(m.Run())
}

// Helper: сервер с проинициализированным окружением (setup уже прошел)
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	env := environment.New()
	memories := cognitive.NewRegistry()
	coordinator := engine.NewService(engine.Config{Seed: 42}, env, memories)
	hub := network.NewBroadcaster()

	ack, _ := coordinator.ProcessEvent([]byte(`{
		"messageType": "setup",
		"agent_ids": ["alice", "bob"],
		"areas": [
			{"area_name": "Cubicles", "locations": [
				{"location_name": "desk_1"},
				{"location_name": "desk_2"},
				{"location_name": "desk_3"}
			]}
		]
	}`))
	if ack.Status != "success" {
		t.Fatalf("Setup failed: %s", ack.Message)
	}

	srv := httptest.NewServer(New(coordinator, hub, config.Default()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestListAgents(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/agents")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var views []api.AgentStatusView
	if err := json.NewDecoder(resp.Body).Decode(&views); err != nil {
		t.Fatal(err)
	}
	if len(views) != 2 {
		t.Fatalf("Expected 2 agents, got %d", len(views))
	}
	// AgentIDs отсортированы
	if views[0].AgentID != "alice" || views[1].AgentID != "bob" {
		t.Errorf("Unexpected order: %s, %s", views[0].AgentID, views[1].AgentID)
	}
}

func TestGetAgentStatus(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/agents/alice")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var view api.AgentStatusView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatal(err)
	}
	if view.AgentID != "alice" {
		t.Errorf("Expected alice, got %s", view.AgentID)
	}
	if view.Action == "" || view.Objective == "" {
		t.Error("Status view should carry default action and objective")
	}
}

func TestGetAgentStatus_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/agents/ghost")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateAgent(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/agents", "application/json",
		strings.NewReader(`{"agent_id": "carol"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}

	var view api.AgentStatusView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatal(err)
	}
	if view.AgentID != "carol" {
		t.Errorf("Expected carol, got %s", view.AgentID)
	}

	// Дубликат отклоняется
	resp2, err := http.Post(srv.URL+"/agents", "application/json",
		strings.NewReader(`{"agent_id": "carol"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate, got %d", resp2.StatusCode)
	}
}

func TestCreateAgent_ByPath(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/agents/dave", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}

	var view api.AgentStatusView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatal(err)
	}
	if view.AgentID != "dave" {
		t.Errorf("Expected dave, got %s", view.AgentID)
	}
}

func TestCreateAgent_BadRequest(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/agents", "application/json",
		strings.NewReader(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
}

func TestDeleteAgent(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/agents/alice", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", resp.StatusCode)
	}

	// Повторное удаление - 404
	resp2, err := http.DefaultClient.Do(req.Clone(req.Context()))
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp2.StatusCode)
	}
}

func TestAgents_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/agents", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", resp.StatusCode)
	}
}

func TestDebugEnvironment(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/debug/environment")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var view api.EnvironmentView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatal(err)
	}
	if _, ok := view.Areas["CUBICLES"]; !ok {
		t.Error("Environment dump should contain the declared area")
	}
	if len(view.Agents) != 2 {
		t.Errorf("Expected 2 agents in dump, got %d", len(view.Agents))
	}
}

func TestDebugReservations(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/debug/reservations")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var planned map[string]map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&planned); err != nil {
		t.Fatal(err)
	}
	// Setup разослал двух агентов: обе цели должны числиться в бронях
	total := 0
	for _, locs := range planned {
		total += len(locs)
	}
	if total != 2 {
		t.Errorf("Expected 2 active reservations after setup, got %d", total)
	}
}
