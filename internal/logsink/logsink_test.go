package logsink

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/script"
)

func sampleCollection() *script.Collection {
	return &script.Collection{Messages: []*script.Message{
		{Direction: script.Outbound, Subcomponents: []*script.Subcomponent{
			script.NewSubcomponent([]byte("hello"), false),
		}},
		{Direction: script.Inbound, Subcomponents: []*script.Subcomponent{
			script.NewSubcomponent([]byte(""), false),
		}},
	}}
}

func TestFileSinkCreatesDatedLogDirectory(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	tmp := t.TempDir()
	if err := os.Chdir(tmp); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	start := time.Date(2026, 7, 31, 10, 30, 0, 0, time.UTC)
	sink, err := New(filepath.Join(tmp, "script.json"), start)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := sink.EmitTranscript(3, sampleCollection(), "crash"); err != nil {
		t.Fatalf("EmitTranscript() error = %v", err)
	}

	wantDir := filepath.Join("script_logs", "2026-07-31,103000")
	if _, err := os.Stat(wantDir); err != nil {
		t.Fatalf("expected log directory %s to exist: %v", wantDir, err)
	}
	if _, err := os.Stat(filepath.Join(wantDir, "3-crash.log")); err != nil {
		t.Fatalf("expected transcript file: %v", err)
	}
}

func TestFileSinkDisambiguatesNameCollision(t *testing.T) {
	tmp := t.TempDir()
	sink, err := New(filepath.Join(tmp, "x.json"), time.Now())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := sink.EmitTranscript(1, sampleCollection(), "crash"); err != nil {
		t.Fatalf("first EmitTranscript() error = %v", err)
	}
	if err := sink.EmitTranscript(1, sampleCollection(), "crash"); err != nil {
		t.Fatalf("second EmitTranscript() error = %v", err)
	}

	entries, err := os.ReadDir(sink.dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d transcript files, want 2 (collision must be disambiguated)", len(entries))
	}
}

func TestNoopSinkNeverCreatesFiles(t *testing.T) {
	wd, _ := os.Getwd()
	tmp := t.TempDir()
	_ = os.Chdir(tmp)
	defer os.Chdir(wd)

	var s Noop
	s.StartNewRun()
	s.RecordInboundData(0, []byte("x"))
	if err := s.EmitTranscript(0, sampleCollection(), "crash"); err != nil {
		t.Fatalf("EmitTranscript() error = %v", err)
	}

	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("quiet mode created %d entries, want 0", len(entries))
	}
}
