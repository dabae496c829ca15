//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"

	"flood-ca/internal/app"
	"flood-ca/internal/core"
	_ "flood-ca/internal/sims/flood"
	_ "flood-ca/internal/sims/life"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	factory, ok := core.Sims()[cfg.Sim]
	if !ok {
		log.Fatalf("unknown sim %q (have %v)", cfg.Sim, core.Names())
	}

	sim, err := factory(cfg.SimOptions())
	if err != nil {
		log.Fatal(err)
	}
	defer sim.Close()
	if err := sim.Reset(cfg.Seed); err != nil {
		log.Fatal(err)
	}

	game := app.New(sim, cfg.Scale, cfg.TPS, cfg.Seed)
	ebiten.SetWindowTitle("flood-ca: " + sim.Name())
	ebiten.SetWindowSize(game.Layout(0, 0))

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Print(err)
	}
}
