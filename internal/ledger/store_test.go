package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	s := openTemp(t)
	run := uuid.New()
	want := Record{
		RunID:           run,
		OutputPath:      "/archive/2019_0613_174102_174102_trip.mp4",
		Inputs:          []string{"/card/Movie/a.MP4", "/card/Movie/b.MP4"},
		ExitCode:        0,
		IntegrityPassed: true,
		Finished:        time.Date(2019, 6, 13, 18, 0, 0, 0, time.UTC),
	}
	if err := s.Put(want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(want.OutputPath)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil")
	}
	if got.RunID != run || got.OutputPath != want.OutputPath || len(got.Inputs) != 2 {
		t.Errorf("got %+v", got)
	}
	if !got.Finished.Equal(want.Finished) || !got.IntegrityPassed {
		t.Errorf("got %+v", got)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := openTemp(t)
	got, err := s.Get("/archive/none.mp4")
	if err != nil || got != nil {
		t.Errorf("Get missing = (%v, %v), want (nil, nil)", got, err)
	}
}

func TestStore_PutRequiresPath(t *testing.T) {
	if err := openTemp(t).Put(Record{}); err == nil {
		t.Error("expected error for empty output path")
	}
}

func TestStore_FailuresAndReplace(t *testing.T) {
	s := openTemp(t)
	recs := []Record{
		{OutputPath: "/archive/a_trip.mp4", IntegrityPassed: true},
		{OutputPath: "/archive/b_trip.mp4", ExitCode: 1},
		{OutputPath: "/archive/c_trip.mp4", Skipped: true, ExitCode: -1},
		{OutputPath: "/archive/d_trip.mp4", Error: "configuration error"},
		{OutputPath: "/archive/e_trip.mp4", ExitCode: 0, IntegrityPassed: false},
	}
	for _, r := range recs {
		if err := s.Put(r); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.List()
	if err != nil || len(all) != 5 {
		t.Fatalf("List = %d records, err %v", len(all), err)
	}

	failed, err := s.Failures()
	if err != nil {
		t.Fatal(err)
	}
	var paths []string
	for _, r := range failed {
		paths = append(paths, r.OutputPath)
	}
	want := []string{"/archive/b_trip.mp4", "/archive/d_trip.mp4", "/archive/e_trip.mp4"}
	if len(paths) != len(want) {
		t.Fatalf("Failures = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("Failures[%d] = %q, want %q", i, paths[i], want[i])
		}
	}

	// A successful re-run replaces the failed record.
	if err := s.Put(Record{OutputPath: "/archive/b_trip.mp4", IntegrityPassed: true}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("/archive/d_trip.mp4"); err != nil {
		t.Fatal(err)
	}
	failed, _ = s.Failures()
	if len(failed) != 1 || failed[0].OutputPath != "/archive/e_trip.mp4" {
		t.Errorf("after replace/delete: %+v", failed)
	}
}

func TestStore_Reopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ledger")
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(Record{OutputPath: "/archive/x.mp4", ExitCode: 2}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	failed, err := s.Failures()
	if err != nil || len(failed) != 1 {
		t.Errorf("after reopen: %v, %v", failed, err)
	}
}

func TestStore_NilClose(t *testing.T) {
	var s *Store
	if err := s.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}
