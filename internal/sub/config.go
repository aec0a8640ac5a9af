package sub

import (
	"errors"
	"fmt"
)

// ErrInvalidLoadout is returned for loadouts that cannot be assembled.
var ErrInvalidLoadout = errors.New("invalid loadout")

// Cell is a position or footprint on the equipment grid.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Common is the part of every subsystem config.
type Common struct {
	Name    string
	Cell    Cell
	Size    Cell    // footprint; zero means 1x1
	Nominal float64 // power draw when fully on
	On      bool    // starting power state
}

type ReactorConfig struct {
	Common
	MaxOutput      float64 // power units
	InitialControl float64 // 0..1
	RampUp         float64 // power units per second
	RampDown       float64
	FuelCapacity   float64
	FuelPerRod     float64
	BurnRate       float64 // fuel per power unit per second
	HeatRate       float64 // heat per surplus power unit per second
	CoolRate       float64 // share of the gap to the cooling target closed per second
	MaxHeat        float64
	RefuelMs       float64
}

type BatteryConfig struct {
	Common
	Capacity      float64 // power units times seconds
	InitialCharge float64
	ChargeRate    float64 // power drawn while charging
	DischargeRate float64 // power supplied while discharging
}

type EngineConfig struct {
	Common
	MaxThrust float64
	MaxTorque float64
}

type SteeringConfig struct {
	Common
	AutoCenterThreshold float64 // rad/s
}

type WeaponConfig struct {
	Common
	Ammo        int
	MaxAmmo     int
	AimMs       float64
	ReloadMs    float64
	Crosshair   float64 // window width as a share of the aim bar
	TargetWidth float64
	MaxTargets  int
	Range       float64
	Damage      float64
}

type SonarConfig struct {
	Common
	PassiveRange float64
	PingRange    float64
	PingMs       float64
	PingDraw     float64 // extra draw while a ping charges
	Rays         int
}

type PumpConfig struct {
	Common
	Rate float64 // flood volume per second
}

type StorageConfig struct {
	Common
	Capacity     int
	Inventory    map[string]int
	CollectRange float64
	CollectMs    float64
}

// Loadout lists the subsystems a submarine is built with. They tick in
// field order, each slice in index order.
type Loadout struct {
	GridWidth  int
	GridHeight int
	Reactors   []ReactorConfig
	Batteries  []BatteryConfig
	Steering   []SteeringConfig
	Engines    []EngineConfig
	Weapons    []WeaponConfig
	Sonars     []SonarConfig
	Pumps      []PumpConfig
	Storages   []StorageConfig
	Damage     map[Kind]DamageTable
	RepairMs   float64
}

// Materials understood by the stock actions.
const (
	SpareParts = "spare_parts"
	FuelRod    = "fuel_rod"
	Torpedo    = "torpedo"
	Sample     = "sample"
)

// DefaultLoadout is the stock submarine.
func DefaultLoadout() Loadout {
	return Loadout{
		GridWidth:  6,
		GridHeight: 3,
		Reactors: []ReactorConfig{{
			Common:         Common{Name: "reactor", Cell: Cell{0, 0}, Size: Cell{2, 2}, On: true},
			MaxOutput:      100,
			InitialControl: 0.8,
			RampUp:         8,
			RampDown:       20,
			FuelCapacity:   1000,
			FuelPerRod:     400,
			BurnRate:       0.01,
			HeatRate:       0.08,
			CoolRate:       0.2,
			MaxHeat:        100,
			RefuelMs:       6000,
		}},
		Batteries: []BatteryConfig{{
			Common:        Common{Name: "battery", Cell: Cell{0, 2}, Size: Cell{2, 1}, On: true},
			Capacity:      600,
			InitialCharge: 600,
			ChargeRate:    15,
			DischargeRate: 30,
		}},
		Steering: []SteeringConfig{{
			Common:              Common{Name: "steering", Cell: Cell{2, 0}, Nominal: 5, On: true},
			AutoCenterThreshold: 0.05,
		}},
		Engines: []EngineConfig{
			{Common: Common{Name: "engine-1", Cell: Cell{5, 0}, Nominal: 25, On: true}, MaxThrust: 6000, MaxTorque: 20000},
			{Common: Common{Name: "engine-2", Cell: Cell{5, 2}, Nominal: 25, On: true}, MaxThrust: 6000, MaxTorque: 20000},
		},
		Weapons: []WeaponConfig{{
			Common:      Common{Name: "weapon", Cell: Cell{3, 0}, Nominal: 10, On: true},
			Ammo:        2,
			MaxAmmo:     4,
			AimMs:       3000,
			ReloadMs:    4000,
			Crosshair:   0.08,
			TargetWidth: 0.1,
			MaxTargets:  3,
			Range:       600,
			Damage:      20,
		}},
		Sonars: []SonarConfig{{
			Common:       Common{Name: "sonar", Cell: Cell{2, 1}, Nominal: 8, On: true},
			PassiveRange: 300,
			PingRange:    900,
			PingMs:       1500,
			PingDraw:     10,
			Rays:         48,
		}},
		Pumps: []PumpConfig{{
			Common: Common{Name: "pump", Cell: Cell{3, 2}, Nominal: 12, On: true},
			Rate:   4,
		}},
		Storages: []StorageConfig{{
			Common:   Common{Name: "storage", Cell: Cell{4, 1}, Size: Cell{1, 2}, Nominal: 2, On: true},
			Capacity: 30,
			Inventory: map[string]int{
				SpareParts: 3,
				FuelRod:    2,
				Torpedo:    4,
			},
			CollectRange: 60,
			CollectMs:    2500,
		}},
		Damage:   DefaultDamageTables(),
		RepairMs: 5000,
	}
}

// Validate reports the first structural problem with l.
func (l Loadout) Validate() error {
	if l.GridWidth <= 0 || l.GridHeight <= 0 {
		return fmt.Errorf("%w: grid %dx%d", ErrInvalidLoadout, l.GridWidth, l.GridHeight)
	}
	if len(l.Engines) == 0 {
		return fmt.Errorf("%w: no engines", ErrInvalidLoadout)
	}
	if len(l.Steering) > 1 {
		return fmt.Errorf("%w: %d steering units", ErrInvalidLoadout, len(l.Steering))
	}
	return nil
}

// HullConfig describes the pressure hull.
type HullConfig struct {
	Length float64
	Beam   float64
	Mass   float64
	Drag   float64

	Health                float64
	ImpactThreshold       float64 // impact force below which the hull takes no damage
	ImpactDamageScale     float64
	LeakChance            float64 // per damaging impact or attack
	LeakRate              float64 // flood volume per second per leak
	FloodCapacity         float64
	SubsystemDamageChance float64
	PatchMs               float64
}

// DefaultHull is the stock hull.
func DefaultHull() HullConfig {
	return HullConfig{
		Length:                80,
		Beam:                  24,
		Mass:                  400,
		Drag:                  0.35,
		Health:                100,
		ImpactThreshold:       4000,
		ImpactDamageScale:     0.002,
		LeakChance:            0.3,
		LeakRate:              1.5,
		FloodCapacity:         100,
		SubsystemDamageChance: 0.4,
		PatchMs:               4000,
	}
}
