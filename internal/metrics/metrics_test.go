package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func textfile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mars.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestWriteTextfile(t *testing.T) {
	ObserveFetch(Fetched, time.Second)
	ObserveFetch(NotModified, 20*time.Millisecond)
	ObserveStored()
	ObserveAggregation(42)

	out := textfile(t)
	for _, want := range []string{
		`mars_fetch_total{outcome="fetched"}`,
		`mars_fetch_total{outcome="not_modified"}`,
		"mars_fetch_duration_seconds_bucket",
		"mars_feeds_stored_total",
		"mars_aggregated_entries 42",
		"mars_last_run_timestamp_seconds",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expect %q in:\n%s", want, out)
		}
	}
}

func TestWriteTextfileError(t *testing.T) {
	if err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "mars.prom")); err == nil {
		t.Fatalf("expect error for missing dir")
	}
}
