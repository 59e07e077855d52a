package vgptest

import "testing"

func TestRunManifestScenarios(t *testing.T) {
	r, err := NewRunner(t.TempDir(), "https://example.org")
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer r.Close()

	if err := r.RunManifest("testdata/scenarios.json"); err != nil {
		t.Fatalf("RunManifest: %v", err)
	}

	stats := r.GetStats()
	if stats.Failed != 0 {
		for _, e := range stats.Errors {
			t.Errorf("scenario %s failed: %s", e.Name, e.Error)
		}
	}
	if stats.Total != 4 {
		t.Fatalf("expected 4 scenarios, got %d", stats.Total)
	}
}

func TestParseTerm(t *testing.T) {
	if parseTerm("") != nil {
		t.Error("expected nil for empty term")
	}
	if got := parseTerm("_:b1"); got == nil {
		t.Error("expected a blank node")
	}
	if got := parseTerm("https://example.org/x"); got == nil {
		t.Error("expected a named node")
	}
}
