// Package effect tracks time-limited status flags attached to entities and
// subsystems.
package effect

// Kind identifies what an effect does to its owner.
type Kind int

const (
	Startled Kind = iota // fish: recently hit a wall or was shot at
	Stunned              // fish: cannot steer
	Cooldown             // fish: attack recharge
	Damage               // subsystem: degraded until repaired
	Leak                 // hull: lets water in until repaired
	Overheat             // reactor: output capped
	Echo                 // sonar: fresh ping result on screen
)

func (k Kind) String() string {
	switch k {
	case Startled:
		return "startled"
	case Stunned:
		return "stunned"
	case Cooldown:
		return "cooldown"
	case Damage:
		return "damage"
	case Leak:
		return "leak"
	case Overheat:
		return "overheat"
	case Echo:
		return "echo"
	default:
		return "unknown"
	}
}

// Effect is one status flag. A negative Remaining means it lasts until removed.
type Effect struct {
	Kind      Kind
	Remaining float64 // ms
	Duration  float64 // ms
	Magnitude float64
	Source    string
}

// Timed returns an effect that expires after ms milliseconds.
func Timed(k Kind, ms, magnitude float64, source string) Effect {
	return Effect{Kind: k, Remaining: ms, Duration: ms, Magnitude: magnitude, Source: source}
}

// Lasting returns an effect that stays until removed.
func Lasting(k Kind, magnitude float64, source string) Effect {
	return Effect{Kind: k, Remaining: -1, Duration: -1, Magnitude: magnitude, Source: source}
}

// Permanent reports whether the effect never expires on its own.
func (e Effect) Permanent() bool { return e.Remaining < 0 }

// Progress is the elapsed share of a timed effect, 0 for permanent ones.
func (e Effect) Progress() float64 {
	if e.Permanent() || e.Duration <= 0 {
		return 0
	}
	return 1 - e.Remaining/e.Duration
}

// View is the plain snapshot of an effect.
type View struct {
	Kind      string  `json:"kind"`
	Source    string  `json:"source,omitempty"`
	Magnitude float64 `json:"magnitude"`
	Remaining float64 `json:"remaining"`
	Progress  float64 `json:"progress"`
}

// View returns the plain snapshot of e.
func (e Effect) View() View {
	return View{
		Kind:      e.Kind.String(),
		Source:    e.Source,
		Magnitude: e.Magnitude,
		Remaining: e.Remaining,
		Progress:  e.Progress(),
	}
}
