package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Sub-Sense/internal/game"
	"github.com/Garsondee/Sub-Sense/internal/model"
)

func main() {
	seed := flag.Int64("seed", 1, "RNG seed for the map and fish")
	fish := flag.Int("fish", 24, "number of fish")
	verbose := flag.Bool("verbose", false, "record per-tick telemetry in the event log")
	flag.Parse()

	g, err := game.New(model.DefaultConfig(),
		model.WithSeed(*seed),
		model.WithFish(*fish),
		model.WithVerbose(*verbose),
	)
	if err != nil {
		log.Fatal(err)
	}
	ebiten.SetWindowTitle("Sub Sense")
	ebiten.SetWindowSize(g.Layout(0, 0))
	ebiten.SetTPS(30)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
