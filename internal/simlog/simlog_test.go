package simlog

import (
	"strings"
	"testing"
)

func TestLog_FilterAndCount(t *testing.T) {
	l := New(false)
	l.Add(1, "sub", "sub", "power", "shutdown", "engine-1", 30)
	l.Add(2, "F1", "fish", "plan", "change", "wait → attack", 0)
	l.Add(3, "sub", "sub", "power", "shutdown", "sonar", 12)

	if n := l.CountCategory("power", "shutdown"); n != 2 {
		t.Fatalf("expected 2 shutdowns, got %d", n)
	}
	if s := l.SumCategory("power", "shutdown"); s != 42 {
		t.Fatalf("expected summed draw 42, got %.1f", s)
	}
	last, ok := l.LastOf("power", "shutdown")
	if !ok || last.Value != "sonar" {
		t.Fatalf("LastOf should return the newest match, got %+v", last)
	}
	if !l.HasEntry("plan", "", "attack") {
		t.Fatal("HasEntry should match on value substring")
	}
	if len(l.FilterSubject("F1")) != 1 {
		t.Fatal("FilterSubject should select by label")
	}
	if len(l.FilterTickRange(2, 3)) != 2 {
		t.Fatal("FilterTickRange should be inclusive")
	}
}

func TestLog_VerboseGate(t *testing.T) {
	quiet := New(false)
	quiet.AddVerbose(1, "sub", "sub", "telemetry", "speed", "", 4)
	if quiet.Len() != 0 {
		t.Fatal("verbose entries should be dropped when verbose is off")
	}
	loud := New(true)
	loud.AddVerbose(1, "sub", "sub", "telemetry", "speed", "", 4)
	if loud.Len() != 1 {
		t.Fatal("verbose entries should be kept when verbose is on")
	}
}

func TestLog_NilIsSafe(t *testing.T) {
	var l *Log
	l.Add(1, "sub", "sub", "power", "x", "", 0)
	l.Addf(1, "sub", "sub", "power", "x", 0, "%d", 3)
	if l.Len() != 0 || l.Format() != "" {
		t.Fatal("nil log should discard entries")
	}
}

func TestLog_MirrorAndFormat(t *testing.T) {
	r := NewRing(2)
	l := New(false)
	l.Mirror(r)
	l.Addf(7, "sub", "sub", "damage", "hull", 5, "impact %.0f", 5.0)
	l.Add(8, "F2", "fish", "attack", "bite", "sub", 3)
	l.Add(9, "F2", "fish", "plan", "change", "back-off", 0)
	if r.Len() != 2 {
		t.Fatalf("ring should cap at 2, got %d", r.Len())
	}
	if got := r.Recent()[0].Tick; got != 8 {
		t.Fatalf("oldest kept entry should be tick 8, got %d", got)
	}
	out := l.Format()
	if !strings.Contains(out, "[T=007]") || strings.Count(out, "\n") != 3 {
		t.Fatalf("unexpected format output:\n%s", out)
	}
}

func TestRing_Last(t *testing.T) {
	r := NewRing(5)
	for i := 0; i < 8; i++ {
		r.Push(Entry{Tick: i})
	}
	last := r.Last(2)
	if len(last) != 2 || last[0].Tick != 6 || last[1].Tick != 7 {
		t.Fatalf("Last(2) should return ticks 6,7, got %+v", last)
	}
	if len(r.Last(10)) != 5 {
		t.Fatal("Last should cap at the stored count")
	}
}
