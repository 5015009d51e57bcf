package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lyrics-resolver-go/circuitbreaker"
	"lyrics-resolver-go/lyrics"
	"lyrics-resolver-go/publish"
	"lyrics-resolver-go/resolver"
	"lyrics-resolver-go/services/lrclib"

	"github.com/gorilla/mux"
)

// setupTestServer wires the package globals against a fake upstream and
// returns the routed handler.
func setupTestServer(t *testing.T) *mux.Router {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/search" {
			json.NewEncoder(w).Encode([]lrclib.Candidate{})
			return
		}
		json.NewEncoder(w).Encode(lrclib.Candidate{
			ID:           1,
			TrackName:    "Africa",
			ArtistName:   "Toto",
			AlbumName:    "Toto IV",
			Duration:     295,
			SyncedLyrics: "[00:32.10] line",
		})
	}))
	t.Cleanup(upstream.Close)

	hub = publish.NewHub()
	breaker = circuitbreaker.New(circuitbreaker.Config{Name: "test", Threshold: 5, Cooldown: time.Minute})
	store = lyrics.NewStore(time.Hour, time.Minute)
	device = &lyrics.DeviceState{}

	conf.Configuration.LyricsEnabled = true
	conf.Configuration.LyricsSources = "tidal"
	engine = lyrics.NewEngine(store, resolver.New(lrclib.NewClient(upstream.URL, "test", breaker)), hub, conf)

	router := mux.NewRouter()
	setupRoutes(router)
	return router
}

func postJSON(t *testing.T, router *mux.Router, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestNowPlayingEndpoint(t *testing.T) {
	router := setupTestServer(t)

	body := `{"metadata":{"title":"Africa","artist":"Toto","album":"Toto IV","duration":295,"source":"tidal"}}`
	rec := postJSON(t, router, "/nowplaying", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}

	var payload lyrics.Payload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if payload.Status != lyrics.StatusOK {
		t.Errorf("Payload status = %q, want ok", payload.Status)
	}
	if payload.Diagnostics == nil {
		t.Error("Expected diagnostics on the response")
	}
}

func TestNowPlayingBadBody(t *testing.T) {
	router := setupTestServer(t)

	rec := postJSON(t, router, "/nowplaying", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
}

func TestNowPlayingUnsupportedSource(t *testing.T) {
	router := setupTestServer(t)

	body := `{"metadata":{"title":"Africa","artist":"Toto","album":"Toto IV","duration":295,"source":"spotify"}}`
	rec := postJSON(t, router, "/nowplaying", body)

	var payload lyrics.Payload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if payload.Status != lyrics.StatusNotSupportedSource {
		t.Errorf("Payload status = %q, want not-supported-source", payload.Status)
	}
}

func TestPrefetchEndpointAccepts(t *testing.T) {
	router := setupTestServer(t)

	body := `{"metadata":{"title":"Rosanna","artist":"Toto","album":"Toto IV","duration":328,"source":"tidal"}}`
	rec := postJSON(t, router, "/prefetch", body)

	if rec.Code != http.StatusAccepted {
		t.Errorf("Status = %d, want 202", rec.Code)
	}
}

func TestLyricsEndpointEmptyState(t *testing.T) {
	router := setupTestServer(t)

	req := httptest.NewRequest("GET", "/lyrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("Status = %d, want 204", rec.Code)
	}
}

func TestLyricsEndpointAfterUpdate(t *testing.T) {
	router := setupTestServer(t)

	body := `{"metadata":{"title":"Africa","artist":"Toto","album":"Toto IV","duration":295,"source":"tidal"}}`
	postJSON(t, router, "/nowplaying", body)

	req := httptest.NewRequest("GET", "/lyrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}

	var payload lyrics.Payload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if payload.Status != lyrics.StatusOK {
		t.Errorf("Payload status = %q, want ok", payload.Status)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := setupTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}

	var health map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if health["status"] != "ok" {
		t.Errorf("Health status = %v, want ok", health["status"])
	}
	if health["circuit_breaker"] != "CLOSED" {
		t.Errorf("Circuit breaker = %v, want CLOSED", health["circuit_breaker"])
	}
}

func TestManagementEndpointsRequireToken(t *testing.T) {
	router := setupTestServer(t)
	conf.Configuration.CacheAccessToken = "secret"
	t.Cleanup(func() { conf.Configuration.CacheAccessToken = "" })

	paths := []struct {
		method string
		path   string
	}{
		{"GET", "/cache"},
		{"DELETE", "/cache"},
		{"GET", "/stats"},
		{"POST", "/circuit-breaker/reset"},
	}

	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token = %d, want 401", p.method, p.path, rec.Code)
		}

		req = httptest.NewRequest(p.method, p.path, nil)
		req.Header.Set("Authorization", "secret")
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s %s with token = %d, want 200", p.method, p.path, rec.Code)
		}
	}
}

func TestManagementLockedWithoutConfiguredToken(t *testing.T) {
	router := setupTestServer(t)
	conf.Configuration.CacheAccessToken = ""

	req := httptest.NewRequest("GET", "/stats", nil)
	req.Header.Set("Authorization", "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401 when no token is configured", rec.Code)
	}
}

func TestHelpEndpoint(t *testing.T) {
	router := setupTestServer(t)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if _, ok := body["help"]; !ok {
		t.Error("Help response missing help text")
	}
}

func TestMsTime(t *testing.T) {
	if !msTime(0).IsZero() {
		t.Error("msTime(0) should be zero")
	}
	if !msTime(-5).IsZero() {
		t.Error("msTime(-5) should be zero")
	}

	ts := time.Now().UnixMilli()
	if got := msTime(ts).UnixMilli(); got != ts {
		t.Errorf("msTime roundtrip = %d, want %d", got, ts)
	}
}
