package main

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// mockTransport records the last request and returns a configurable status.
type mockTransport struct {
	mu         sync.Mutex
	status     int
	lastURL    string
	lastMethod string
	reqCount   int
}

func (m *mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	m.lastURL = req.URL.String()
	m.lastMethod = req.Method
	m.reqCount++
	m.mu.Unlock()
	return &http.Response{
		StatusCode: m.status,
		Body:       http.NoBody,
		Header:     make(http.Header),
	}, nil
}

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validConfig = `
seeds:
  - kind: search
    query: civil war
    max_pages: 2
  - kind: collection
    collection: civil war maps
    filters: [subject:maps, location:virginia]
    repeat: 2
  - kind: format
    media: maps
    sort: date_desc
`

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
		seeds   int
	}{
		{"valid", writeConfig(t, "valid.yaml", validConfig), false, 3},
		{"missing", filepath.Join(t.TempDir(), "missing.yaml"), true, 0},
		{"empty seeds", writeConfig(t, "empty.yaml", "seeds: []\n"), true, 0},
		{"invalid yaml", writeConfig(t, "bad.yaml", "seeds: [\n"), true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("loadConfig() err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(cfg.Seeds) != tt.seeds {
				t.Errorf("len(Seeds) = %d, want %d", len(cfg.Seeds), tt.seeds)
			}
			if tt.name == "empty seeds" && err != errNoSeeds {
				t.Errorf("empty seeds: err = %v, want errNoSeeds", err)
			}
		})
	}
}

func TestSeedValues(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, "valid.yaml", validConfig))
	if err != nil {
		t.Fatal(err)
	}
	got := cfg.Seeds[1].values()
	want := url.Values{
		"kind":       {"collection"},
		"collection": {"civil war maps"},
		"fa":         {"subject:maps|location:virginia"},
	}
	if got.Encode() != want.Encode() {
		t.Fatalf("values = %s, want %s", got.Encode(), want.Encode())
	}
	if v := cfg.Seeds[0].values(); v.Get("max_pages") != "2" || v.Get("q") != "civil war" {
		t.Fatalf("unexpected search values: %v", v)
	}
}

func TestSubmitSeed(t *testing.T) {
	transport := &mockTransport{status: http.StatusAccepted}
	client := &http.Client{Transport: transport}
	baseURL, _ := url.Parse("http://api.test")

	seed := Seed{Kind: "format", Media: "maps", Query: "ohio"}
	if !submitSeed(client, baseURL, 0, seed) {
		t.Fatal("expected seed to be accepted")
	}

	transport.mu.Lock()
	defer transport.mu.Unlock()
	if transport.lastMethod != http.MethodPost {
		t.Errorf("method = %s, want POST", transport.lastMethod)
	}
	parsed, _ := url.Parse(transport.lastURL)
	if parsed.Path != "/harvest" || parsed.RawQuery != seed.values().Encode() {
		t.Errorf("url = %s, want path=/harvest query=%q", transport.lastURL, seed.values().Encode())
	}
}

func TestSubmitSeed_nonAccepted(t *testing.T) {
	transport := &mockTransport{status: http.StatusBadRequest}
	client := &http.Client{Transport: transport}
	baseURL, _ := url.Parse("http://api.test")
	if submitSeed(client, baseURL, 0, Seed{}) {
		t.Fatal("expected rejection")
	}
}

func TestRun(t *testing.T) {
	transport := &mockTransport{status: http.StatusAccepted}
	client := &http.Client{Transport: transport}

	if err := run(writeConfig(t, "seeds.yaml", validConfig), "http://api.test", client); err != nil {
		t.Fatalf("run() err = %v", err)
	}

	transport.mu.Lock()
	defer transport.mu.Unlock()
	if transport.reqCount != 4 {
		t.Errorf("request count = %d, want 4", transport.reqCount)
	}
}

func TestRun_badConfigPath(t *testing.T) {
	if err := run("/nonexistent/config.yaml", "http://localhost:8080", nil); err == nil {
		t.Fatal("run() expected error for missing config")
	}
}

func TestRun_emptySeeds(t *testing.T) {
	if err := run(writeConfig(t, "empty.yaml", "seeds: []\n"), "http://localhost:8080", nil); err != errNoSeeds {
		t.Fatalf("run() err = %v, want errNoSeeds", err)
	}
}

func TestRun_invalidAPIBase(t *testing.T) {
	if err := run(writeConfig(t, "seeds.yaml", validConfig), "://invalid", nil); err == nil {
		t.Fatal("run() expected error for invalid api base")
	}
}
