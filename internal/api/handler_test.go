package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/kartoza/premium-estimator/internal/config"
	"github.com/kartoza/premium-estimator/internal/estimator"
	"github.com/kartoza/premium-estimator/internal/model"
	"github.com/kartoza/premium-estimator/internal/premium"
)

func newTestRouter(handle *model.Handle) *mux.Router {
	cfg := config.Config{
		Port:      8080,
		ModelPath: "insurance_model.gob",
		Version:   "test",
	}
	var est *estimator.Estimator
	if handle != nil {
		est = estimator.New(handle, 0, nil)
	}
	r := mux.NewRouter()
	NewHandler(handle, est, cfg).RegisterRoutes(r)
	return r
}

func getJSON(t *testing.T, r *mux.Router, path string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return w.Code, response
}

func TestHealthEndpoint(t *testing.T) {
	code, response := getJSON(t, newTestRouter(nil), "/health")

	if code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", code)
	}
	if response["status"] != "ok" {
		t.Errorf("Expected status 'ok', got '%v'", response["status"])
	}
}

func TestInfoEndpointWithoutModel(t *testing.T) {
	code, response := getJSON(t, newTestRouter(nil), "/info")

	if code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", code)
	}
	if response["version"] != "test" {
		t.Errorf("Expected version 'test', got '%v'", response["version"])
	}
	if response["model_loaded"] != false {
		t.Errorf("Expected model_loaded false, got %v", response["model_loaded"])
	}
}

func TestInfoEndpointLoadedModel(t *testing.T) {
	a, err := model.BaselineArtifact(premium.StrategyLabeled)
	if err != nil {
		t.Fatalf("BaselineArtifact failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "model.gob")
	if err := model.Save(path, a); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, response := getJSON(t, newTestRouter(model.NewHandle(path)), "/info")

	if response["model_loaded"] != true {
		t.Errorf("Expected model_loaded true, got %v", response["model_loaded"])
	}
	if response["strategy"] != "labeled" {
		t.Errorf("Expected strategy 'labeled', got '%v'", response["strategy"])
	}
	stats, ok := response["estimates"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected estimates object, got %T", response["estimates"])
	}
	if stats["served"] != float64(0) {
		t.Errorf("Expected 0 served, got %v", stats["served"])
	}
}

func TestInfoEndpointMissingModel(t *testing.T) {
	handle := model.NewHandle(filepath.Join(t.TempDir(), "absent.gob"))
	_, response := getJSON(t, newTestRouter(handle), "/info")

	if response["model_loaded"] != false {
		t.Errorf("Expected model_loaded false, got %v", response["model_loaded"])
	}
	if _, ok := response["model_error"]; !ok {
		t.Error("Expected model_error in response")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	r := newTestRouter(nil)
	req := httptest.NewRequest("POST", "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}
