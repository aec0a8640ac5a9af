package main

import (
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/Garsondee/Sub-Sense/internal/model"
	"github.com/Garsondee/Sub-Sense/internal/simlog"
	"github.com/Garsondee/Sub-Sense/internal/sub"
)

type runStats struct {
	runIndex int
	seed     int64
	ticks    int

	firstPingTick     int
	firstAttackTick   int
	firstShutdownTick int
	firstLeakTick     int
	destroyedTick     int

	attacks    int
	shutdowns  int
	leaks      int
	breakdowns int
	pings      int
	shots      int
	hits       int
	kills      int
	patches    int
	refuels    int
	samples    int
	impacts    int
	blocked    int

	hull    float64
	maxHull float64
	flood   float64
	killed  map[string]int // species name -> kills
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var fish int
	var verbose bool

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 5400, "ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.IntVar(&fish, "fish", 24, "fish spawned per run")
	flag.BoolVar(&verbose, "verbose", false, "record per-tick telemetry")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}

	fmt.Printf("=== Headless Patrol Report ===\n")
	fmt.Printf("runs=%d ticks=%d seed_base=%d seed_step=%d fish=%d\n\n", runs, ticks, seedBase, seedStep, fish)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats, err := runPatrol(i+1, seed, ticks, fish, verbose)
		if err != nil {
			fmt.Printf("error: run %d (seed=%d): %v\n", i+1, seed, err)
			continue
		}
		all = append(all, stats)
		printRun(stats)
	}

	printAggregate(all)
}

// runPatrol lets the scripted pilot drive one run until the tick limit or the
// hull gives out.
func runPatrol(runIndex int, seed int64, ticks, fish int, verbose bool) (runStats, error) {
	cfg := model.DefaultConfig()
	cfg.Verbose = verbose
	m, err := model.New(cfg, model.WithSeed(seed), model.WithFish(fish))
	if err != nil {
		return runStats{}, err
	}
	p := newPilot()
	for i := 0; i < ticks && !m.Sub().Destroyed(); i++ {
		m.UpdateState(cfg.TickMs, p.decide(m))
		p.ctl.Reset()
	}
	return collectStats(runIndex, seed, m), nil
}

func collectStats(runIndex int, seed int64, m *model.Model) runStats {
	log := m.Log()
	entries := log.Entries()
	s := m.Sub()

	rs := runStats{
		runIndex:          runIndex,
		seed:              seed,
		ticks:             m.Tick(),
		firstPingTick:     firstTick(entries, "sonar", "ping", ""),
		firstAttackTick:   firstTick(entries, "attack", "hit", ""),
		firstShutdownTick: firstTick(entries, "power", "shutdown", ""),
		firstLeakTick:     firstTick(entries, "damage", "leak", ""),
		destroyedTick:     firstTick(entries, "damage", "destroyed", ""),
		attacks:           log.CountCategory("attack", "hit"),
		shutdowns:         s.Shutdowns(),
		leaks:             log.CountCategory("damage", "leak"),
		breakdowns:        log.CountCategory("damage", "subsystem"),
		pings:             log.CountCategory("sonar", "ping"),
		kills:             m.Kills(),
		patches:           log.CountCategory("action", "patch"),
		refuels:           log.CountCategory("action", "refuel"),
		samples:           s.Count(sub.Sample),
		impacts:           s.Impacts(),
		blocked:           log.CountCategory("action", "blocked"),
		hull:              s.Health(),
		maxHull:           s.Hull().Health,
		flood:             s.Flood(),
		killed:            map[string]int{},
	}
	for _, w := range s.Weapons() {
		rs.shots += w.Shots()
		rs.hits += w.Hits()
	}
	for _, e := range log.Filter("fish", "death") {
		rs.killed[e.Value]++
	}
	return rs
}

func firstTick(entries []simlog.Entry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("phase_markers: first_ping=%d first_attack=%d first_shutdown=%d first_leak=%d destroyed=%d ticks_run=%d\n",
		rs.firstPingTick, rs.firstAttackTick, rs.firstShutdownTick, rs.firstLeakTick, rs.destroyedTick, rs.ticks)
	fmt.Printf("hull: %.0f/%.0f flood=%.1f impacts=%d attacks=%d leaks=%d breakdowns=%d\n",
		rs.hull, rs.maxHull, rs.flood, rs.impacts, rs.attacks, rs.leaks, rs.breakdowns)
	fmt.Printf("power: shutdowns=%d refuels=%d\n", rs.shutdowns, rs.refuels)
	fmt.Printf("crew: pings=%d shots=%d hits=%d accuracy=%s patches=%d blocked_requests=%d samples=%d\n",
		rs.pings, rs.shots, rs.hits, percent(rs.hits, rs.shots), rs.patches, rs.blocked, rs.samples)
	fmt.Printf("kills=%d [%s]\n\n", rs.kills, joinCounts(rs.killed))
}

func printAggregate(all []runStats) {
	if len(all) == 0 {
		fmt.Println("no completed runs")
		return
	}
	totalAttacks := 0
	totalShutdowns := 0
	totalLeaks := 0
	totalPings := 0
	totalShots := 0
	totalHits := 0
	totalKills := 0
	totalImpacts := 0
	lost := 0
	hullSum := 0.0

	attackTicks := make([]int, 0, len(all))
	shutdownTicks := make([]int, 0, len(all))
	killed := map[string]int{}

	for _, rs := range all {
		totalAttacks += rs.attacks
		totalShutdowns += rs.shutdowns
		totalLeaks += rs.leaks
		totalPings += rs.pings
		totalShots += rs.shots
		totalHits += rs.hits
		totalKills += rs.kills
		totalImpacts += rs.impacts
		if rs.maxHull > 0 {
			hullSum += rs.hull / rs.maxHull
		}
		if rs.destroyedTick >= 0 {
			lost++
		}
		if rs.firstAttackTick >= 0 {
			attackTicks = append(attackTicks, rs.firstAttackTick)
		}
		if rs.firstShutdownTick >= 0 {
			shutdownTicks = append(shutdownTicks, rs.firstShutdownTick)
		}
		for k, v := range rs.killed {
			killed[k] += v
		}
	}

	n := len(all)
	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d lost=%d avg_hull_left=%.0f%%\n", n, lost, 100*hullSum/float64(n))
	fmt.Printf("avg_events_per_run: attacks=%.1f shutdowns=%.1f leaks=%.1f pings=%.1f impacts=%.1f\n",
		avg(totalAttacks, n), avg(totalShutdowns, n), avg(totalLeaks, n), avg(totalPings, n), avg(totalImpacts, n))
	fmt.Printf("weapons: shots=%d hits=%d accuracy=%s kills_per_run=%.1f [%s]\n",
		totalShots, totalHits, percent(totalHits, totalShots), avg(totalKills, n), joinCounts(killed))
	fmt.Printf("phase_marker_avg_ticks: first_attack=%s first_shutdown=%s\n",
		avgTickString(attackTicks), avgTickString(shutdownTicks))
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func percent(part, whole int) string {
	if whole <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.0f%%", 100*float64(part)/float64(whole))
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func joinCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, ",")
}
