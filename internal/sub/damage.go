package sub

import (
	"math/rand"
	"sort"
)

// Impairment is what a piece of damage degrades.
type Impairment int

const (
	// ImpairOutput scales the subsystem's useful output down by Severity.
	ImpairOutput Impairment = iota
	// ImpairDraw raises the subsystem's power draw by Severity.
	ImpairDraw
	// ImpairDisable keeps the subsystem switched off until repaired.
	ImpairDisable
)

func (i Impairment) String() string {
	switch i {
	case ImpairOutput:
		return "output"
	case ImpairDraw:
		return "draw"
	case ImpairDisable:
		return "disable"
	default:
		return "unknown"
	}
}

// MarshalText renders the impairment by name in view snapshots.
func (i Impairment) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

// Damage is one fault on a subsystem.
type Damage struct {
	Name     string     `json:"name"`
	Impairs  Impairment `json:"impairs"`
	Severity float64    `json:"severity"`
	Source   string     `json:"source"`
}

// DamageSpec is one row of a family's damage table.
type DamageSpec struct {
	Name     string
	Impairs  Impairment
	Severity float64
	Weight   float64
}

// DamageTable is the damage taxonomy of one subsystem family.
type DamageTable []DamageSpec

// Roll picks a row weighted by Weight.
func (t DamageTable) Roll(rng *rand.Rand) (DamageSpec, bool) {
	total := 0.0
	for _, d := range t {
		total += d.Weight
	}
	if total <= 0 {
		return DamageSpec{}, false
	}
	r := rng.Float64() * total
	for _, d := range t {
		if r < d.Weight {
			return d, true
		}
		r -= d.Weight
	}
	return t[len(t)-1], true
}

// DefaultDamageTables returns the stock per-family damage tables.
func DefaultDamageTables() map[Kind]DamageTable {
	return map[Kind]DamageTable{
		KindReactor: {
			{Name: "coolant leak", Impairs: ImpairOutput, Severity: 0.3, Weight: 3},
			{Name: "control rod jam", Impairs: ImpairDisable, Severity: 1, Weight: 1},
		},
		KindBattery: {
			{Name: "cell short", Impairs: ImpairOutput, Severity: 0.5, Weight: 2},
			{Name: "terminal corrosion", Impairs: ImpairDraw, Severity: 0.2, Weight: 2},
		},
		KindEngine: {
			{Name: "bent propeller", Impairs: ImpairOutput, Severity: 0.4, Weight: 3},
			{Name: "bearing wear", Impairs: ImpairDraw, Severity: 0.3, Weight: 2},
			{Name: "seized shaft", Impairs: ImpairDisable, Severity: 1, Weight: 1},
		},
		KindSteering: {
			{Name: "rudder jam", Impairs: ImpairOutput, Severity: 0.5, Weight: 1},
		},
		KindWeapon: {
			{Name: "sight misaligned", Impairs: ImpairOutput, Severity: 0.5, Weight: 2},
			{Name: "tube flooded", Impairs: ImpairDisable, Severity: 1, Weight: 1},
		},
		KindSonar: {
			{Name: "transducer crack", Impairs: ImpairOutput, Severity: 0.5, Weight: 1},
		},
		KindPump: {
			{Name: "clogged intake", Impairs: ImpairOutput, Severity: 0.5, Weight: 2},
			{Name: "motor burnout", Impairs: ImpairDisable, Severity: 1, Weight: 1},
		},
		KindStorage: {
			{Name: "arm servo fault", Impairs: ImpairDraw, Severity: 0.5, Weight: 1},
		},
	}
}

// sortDamage orders faults most severe first.
func sortDamage(ds []Damage) {
	sort.SliceStable(ds, func(i, j int) bool { return ds[i].Severity > ds[j].Severity })
}
