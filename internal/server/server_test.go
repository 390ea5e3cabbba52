package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lineage/pkg/cache"
	"github.com/matzehuels/lineage/pkg/pipeline"
)

const family = `{
	"people": {
		"gp": {"id": "gp", "firstName": "Ada", "birthDate": "1900-01-01", "children": ["p"]},
		"p":  {"id": "p", "firstName": "Ben", "birthDate": "1930-05-02", "parents": ["gp"]}
	},
	"focusId": "gp",
	"requestId": 7
}`

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(cache.NewMemoryCache(0), nil, logger)
	ts := httptest.NewServer(New(runner, cfg, logger).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Config{})
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestLayout(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp := post(t, ts.URL+"/v1/layout", family)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Cache"); got != "miss" {
		t.Errorf("X-Cache = %q, want miss", got)
	}
	var out pipeline.LayoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.RequestID != 7 {
		t.Errorf("requestId = %d, want 7", out.RequestID)
	}
	if out.Failed() {
		t.Errorf("unexpected error %q", out.Error)
	}
	if len(out.Nodes) != 2 {
		t.Errorf("nodes = %d, want 2", len(out.Nodes))
	}

	again := post(t, ts.URL+"/v1/layout", family)
	if got := again.Header.Get("X-Cache"); got != "hit" {
		t.Errorf("second X-Cache = %q, want hit", got)
	}
}

func TestLayoutErrors(t *testing.T) {
	ts := newTestServer(t, Config{})

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"bad json", `{"people":`, http.StatusBadRequest},
		{"bad chart", `{"people":{},"settings":{"chartType":"spiral"}}`, http.StatusBadRequest},
		{"bad collapsed", `{"people":{},"collapsedIds":[""]}`, http.StatusBadRequest},
		{"empty people", `{"people":{}}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/v1/layout", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			var out pipeline.LayoutResponse
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				t.Fatal(err)
			}
			if failed := tt.status != http.StatusOK; out.Failed() != failed {
				t.Errorf("Failed() = %v, want %v (error %q)", out.Failed(), failed, out.Error)
			}
			if out.Nodes == nil {
				t.Error("nodes should be present even on error")
			}
		})
	}
}

func TestCheck(t *testing.T) {
	ts := newTestServer(t, Config{})

	body := `{"people": {
		"a": {"id": "a", "birthDate": "1950", "deathDate": "1940"}
	}}`
	resp := post(t, ts.URL+"/v1/check", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var out pipeline.CheckResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Type != pipeline.CheckSuccess {
		t.Errorf("type = %q, want success", out.Type)
	}
	if len(out.Errors["a"]) == 0 {
		t.Errorf("errors = %v, want an issue for a", out.Errors)
	}
}

func TestRender(t *testing.T) {
	ts := newTestServer(t, Config{})

	tests := []struct {
		query       string
		contentType string
		contains    string
	}{
		{"", "image/svg+xml", "<svg"},
		{"?format=dot", "text/vnd.graphviz", "graph G"},
		{"?format=json", "application/json", `"nodes"`},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := post(t, ts.URL+"/v1/render"+tt.query, family)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			data, _ := io.ReadAll(resp.Body)
			if !strings.Contains(string(data), tt.contains) {
				t.Errorf("body missing %q", tt.contains)
			}
		})
	}
}

func TestRenderInvalidFormat(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp := post(t, ts.URL+"/v1/render?format=gif", family)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out["code"] != "INVALID_FORMAT" {
		t.Errorf("code = %q, want INVALID_FORMAT", out["code"])
	}
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, Config{Rate: 0.001, Burst: 1})

	if resp := post(t, ts.URL+"/v1/layout", family); resp.StatusCode != http.StatusOK {
		t.Fatalf("first status = %d, want 200", resp.StatusCode)
	}
	resp := post(t, ts.URL+"/v1/layout", family)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") != "1" {
		t.Errorf("Retry-After = %q, want 1", resp.Header.Get("Retry-After"))
	}

	// Health checks are not limited.
	health, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", health.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{pipeline.ValidateFormat("gif"), http.StatusBadRequest},
		{pipeline.ValidateCollapsedIDs([]string{""}), http.StatusBadRequest},
		{io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
