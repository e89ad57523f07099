package g2p

import (
	"bytes"
	"testing"
)

func TestAggregator_FlushesOnSentenceChange(t *testing.T) {
	var out bytes.Buffer
	a := newAggregator(&out, " # ", discardLogger())

	steps := []struct{ id, word, phon string }{
		{"1:a b", "a", "ey"},
		{"1:a b", "b", "b iy"},
		{"2:c", "c", "s iy"},
	}
	for _, s := range steps {
		if err := a.begin(s.id); err != nil {
			t.Fatalf("begin(%q): %v", s.id, err)
		}
		if out.Len() == 0 && s.id == "2:c" {
			t.Fatal("previous sentence not flushed when the next began")
		}
		a.add(s.id, s.word, s.phon)
	}
	if err := a.finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}

	if want := "a b\tey # b iy\nc\ts iy\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
	if a.flushed != 2 {
		t.Errorf("flushed = %d, want 2", a.flushed)
	}
	if len(a.open) != 0 {
		t.Errorf("%d records left open", len(a.open))
	}
}

func TestAggregator_RevisitedSentenceNotFlushedTwice(t *testing.T) {
	var out bytes.Buffer
	a := newAggregator(&out, " # ", discardLogger())

	for _, id := range []string{"1:x", "2:y", "1:x", "3:z"} {
		if err := a.begin(id); err != nil {
			t.Fatalf("begin(%q): %v", id, err)
		}
		a.add(id, "w", "p")
	}
	if err := a.finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}

	if want := "x\tp\ny\tp\nz\tp\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
	if a.flushed != 3 {
		t.Errorf("flushed = %d, want 3", a.flushed)
	}
}

func TestAggregator_EmptySentenceStillFlushed(t *testing.T) {
	var out bytes.Buffer
	a := newAggregator(&out, " # ", discardLogger())

	if err := a.begin("4:all failed"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := a.finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if want := "all failed\t\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestAggregator_FinishIdle(t *testing.T) {
	var out bytes.Buffer
	a := newAggregator(&out, " # ", discardLogger())

	if err := a.finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if err := a.finish(); err != nil {
		t.Fatalf("second finish: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("idle aggregator wrote %q", out.String())
	}
}
