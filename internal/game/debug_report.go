package game

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Garsondee/Sub-Sense/internal/model"
)

// reportEvents is how many log entries the copied report carries.
const reportEvents = 40

// debugReport summarises a running model as plain text for pasting into a
// bug report: a header, the subsystem states, the last lastEvents log lines
// and the full view state as JSON.
func debugReport(m *model.Model, lastEvents int) (string, error) {
	if lastEvents <= 0 {
		lastEvents = reportEvents
	}
	s := m.Sub()

	var b strings.Builder
	fmt.Fprintf(&b, "--- SubSense debug report ---\n")
	fmt.Fprintf(&b, "seed=%d tick=%d now=%.0fms fish=%d kills=%d\n", m.Config().Seed, m.Tick(), m.Now(), len(m.Fish()), m.Kills())
	p := s.Position()
	fmt.Fprintf(&b, "sub pos=(%.0f,%.0f) speed=%.1f hull=%.0f/%.0f flood=%.1f leaks=%d shutdowns=%d impacts=%d\n",
		p.X, p.Y, s.Body().Speed(), s.Health(), s.Hull().Health, s.Flood(), s.Leaks(), s.Shutdowns(), s.Impacts())
	fmt.Fprintf(&b, "power gen=%.1f use=%.1f balance=%+.1f crew=%q\n\n",
		s.PowerGeneration(), s.PowerConsumption(), s.PowerBalance(), s.Operator().Task())

	b.WriteString("== subsystems ==\n")
	for _, ss := range s.Subsystems() {
		v := ss.View()
		fmt.Fprintf(&b, "%-10s on=%-5v draw=%.1f/%.1f gen=%.1f %s\n", v.Name, v.On, v.Consumption, v.Nominal, v.Generation, statLine(v))
		for _, d := range v.Damage {
			fmt.Fprintf(&b, "  damage %s (%s, %.2f) from %s\n", d.Name, d.Impairs, d.Severity, d.Source)
		}
		for _, a := range v.Actions {
			if a.Engaged || len(a.Reasons) > 0 {
				b.WriteString("  " + actionLine(a) + "\n")
			}
		}
	}

	entries := m.Log().Entries()
	if len(entries) > lastEvents {
		entries = entries[len(entries)-lastEvents:]
	}
	fmt.Fprintf(&b, "\n== last %d events ==\n", len(entries))
	for _, e := range entries {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}

	raw, err := json.MarshalIndent(m.ToViewState(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal view: %w", err)
	}
	b.WriteString("\n== view ==\n")
	b.Write(raw)
	b.WriteByte('\n')
	return b.String(), nil
}
