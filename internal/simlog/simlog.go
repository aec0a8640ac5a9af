// Package simlog records structured simulation events. Log is unbounded and
// machine-readable for tests and the headless report; Ring keeps the most
// recent lines for the on-screen event panel.
package simlog

import (
	"fmt"
	"strings"
)

// Entry is one recorded event.
type Entry struct {
	Tick     int
	Subject  string  // label e.g. "sub", "F3", "reactor", or "--" for global events
	Group    string  // "sub", "fish", "world", or "--"
	Category string  // power, action, damage, collision, plan, attack, sonar, mapgen
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] sub      power     shutdown         engine-1 (draw 30.0)
func (e Entry) String() string {
	return fmt.Sprintf("[T=%03d] %-8s %-9s %-16s %s",
		e.Tick, e.Subject, e.Category, e.Key, e.Value)
}

// Log collects structured events. A nil *Log discards everything, so callers
// never need to guard.
type Log struct {
	entries []Entry
	verbose bool
	ring    *Ring
}

// New creates a Log. If verbose is true, per-tick telemetry entries are also
// recorded.
func New(verbose bool) *Log {
	return &Log{verbose: verbose}
}

// Mirror copies every future entry into r as well.
func (l *Log) Mirror(r *Ring) {
	if l == nil {
		return
	}
	l.ring = r
}

// Verbose reports whether telemetry entries are kept.
func (l *Log) Verbose() bool { return l != nil && l.verbose }

// Add records a new entry.
func (l *Log) Add(tick int, subject, group, category, key, value string, numVal float64) {
	if l == nil {
		return
	}
	e := Entry{
		Tick:     tick,
		Subject:  subject,
		Group:    group,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	}
	l.entries = append(l.entries, e)
	if l.ring != nil {
		l.ring.Push(e)
	}
}

// Addf records an entry with a formatted value.
func (l *Log) Addf(tick int, subject, group, category, key string, numVal float64, format string, args ...any) {
	if l == nil {
		return
	}
	l.Add(tick, subject, group, category, key, fmt.Sprintf(format, args...), numVal)
}

// AddVerbose records an entry only when verbose mode is on.
func (l *Log) AddVerbose(tick int, subject, group, category, key, value string, numVal float64) {
	if !l.Verbose() {
		return
	}
	l.Add(tick, subject, group, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (l *Log) Entries() []Entry {
	if l == nil {
		return nil
	}
	return l.entries
}

// Len returns the number of recorded entries.
func (l *Log) Len() int { return len(l.Entries()) }

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (l *Log) Filter(category, key string) []Entry {
	var out []Entry
	for _, e := range l.Entries() {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterSubject returns entries for a specific subject label.
func (l *Log) FilterSubject(label string) []Entry {
	var out []Entry
	for _, e := range l.Entries() {
		if e.Subject == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (l *Log) FilterTickRange(fromTick, toTick int) []Entry {
	var out []Entry
	for _, e := range l.Entries() {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (l *Log) CountCategory(category, key string) int {
	return len(l.Filter(category, key))
}

// SumCategory adds up NumVal over entries matching category and key.
func (l *Log) SumCategory(category, key string) float64 {
	s := 0.0
	for _, e := range l.Filter(category, key) {
		s += e.NumVal
	}
	return s
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (l *Log) LastOf(category, key string) (Entry, bool) {
	entries := l.Filter(category, key)
	if len(entries) == 0 {
		return Entry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (l *Log) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range l.Entries() {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (l *Log) Format() string {
	return format(l.Entries())
}

// FormatRange returns a log string filtered to a tick range.
func (l *Log) FormatRange(fromTick, toTick int) string {
	return format(l.FilterTickRange(fromTick, toTick))
}

func format(entries []Entry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
