package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	r := New()
	r.Trip(ResultSuccess, 3)
	r.Trip(ResultSuccess, 2)
	r.Trip(ResultSkipped, 1)
	r.Encode("basic", 90*time.Second)
	r.Photos(4, 1)

	if got := testutil.ToFloat64(r.trips.WithLabelValues(ResultSuccess)); got != 2 {
		t.Errorf("trips{success} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.trips.WithLabelValues(ResultSkipped)); got != 1 {
		t.Errorf("trips{skipped} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.clips); got != 6 {
		t.Errorf("clips = %v, want 6", got)
	}
	if got := testutil.ToFloat64(r.photos.WithLabelValues("failed")); got != 1 {
		t.Errorf("photos{failed} = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(r.encodeSeconds); n != 1 {
		t.Errorf("encode histogram series = %d, want 1", n)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.Trip(ResultEncodeError, 2)
	r.Finish(time.Unix(1560447662, 0))

	path := filepath.Join(t.TempDir(), "tripmaster.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{
		`tripmaster_trips_total{result="encode_failed"} 1`,
		"tripmaster_clips_total 2",
		"tripmaster_last_run_timestamp_seconds 1.560447662e+09",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("textfile missing %q:\n%s", want, text)
		}
	}
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.Trip(ResultSuccess, 1)
	r.Encode("complex", time.Second)
	r.Photos(1, 0)
	r.Finish(time.Now())
	if err := r.WriteTextfile("/nonexistent/dir/x.prom"); err != nil {
		t.Errorf("nil recorder WriteTextfile: %v", err)
	}
}
