package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"time"

	"flood-ca/internal/core"
	"flood-ca/internal/monitor"
	"flood-ca/internal/sims/flood"
	"flood-ca/pkg/ca"
)

func main() {
	steps := flag.Int("steps", 1000, "steps to simulate")
	every := flag.Int("every", 100, "print gauge readings every N steps")
	backend := flag.String("backend", ca.DefaultBackend, "execution backend (serial, threaded, gl)")
	workers := flag.Int("workers", runtime.NumCPU(), "threaded backend workers")
	width := flag.Int("w", 192, "lattice columns")
	height := flag.Int("h", 144, "lattice rows")
	topology := flag.String("topology", "square", "cell topology (square, hex)")
	seed := flag.Int64("seed", 1337, "terrain seed")
	listen := flag.String("listen", "", "serve the gauge stream at ws://ADDR/ws")
	tps := flag.Int("tps", 0, "steps per second (0 runs unpaced)")
	flag.Parse()

	world, err := flood.New(flood.FromMap(map[string]string{
		"w":           strconv.Itoa(*width),
		"h":           strconv.Itoa(*height),
		"topology":    *topology,
		"seed":        strconv.FormatInt(*seed, 10),
		ca.OptBackend: *backend,
		ca.OptWorkers: strconv.Itoa(*workers),
	}), log.Default())
	if err != nil {
		log.Fatal(err)
	}
	defer world.Close()
	if err := world.Reset(*seed); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var hub *monitor.Hub
	if *listen != "" {
		hub = monitor.NewHub(log.Default())
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		srv := &http.Server{Addr: *listen, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err)
			}
		}()
		defer srv.Shutdown(context.Background())
		fmt.Printf("Streaming gauges on ws://%s/ws\n", *listen)
	}

	fmt.Printf("Running %d steps on %dx%d %s lattice (%s backend, %d boxes)\n",
		*steps, *width, *height, world.Grid().Topology(), world.Backend(), world.Boxes().Len())

	pacer := core.NewFixedStep(*tps)
	start := time.Now()
	done := 0
	for done < *steps && ctx.Err() == nil {
		if *tps > 0 {
			if err := pacer.Wait(ctx); err != nil {
				break
			}
		}
		if hub != nil && hub.Paused() {
			select {
			case <-ctx.Done():
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		if err := world.Step(); err != nil {
			log.Fatal(err)
		}
		done++
		if done%max(*every, 1) == 0 || done == *steps {
			if err := report(world, hub); err != nil {
				log.Fatal(err)
			}
		}
	}

	elapsed := time.Since(start)
	fmt.Printf("\n%d steps in %s (%.1f steps/s)\n", done, elapsed.Round(time.Millisecond), float64(done)/elapsed.Seconds())
}

func report(world *flood.World, hub *monitor.Hub) error {
	st, err := world.Stats()
	if err != nil {
		return err
	}
	readings, err := world.Gauges()
	if err != nil {
		return err
	}

	var sb strings.Builder
	gauges := make([]monitor.Gauge, len(readings))
	for i, r := range readings {
		fmt.Fprintf(&sb, " %v=%.3f/%.3f", r.Point, r.Depth, r.Outflow)
		gauges[i] = monitor.Gauge{X: r.Point.X, Y: r.Point.Y, Depth: r.Depth, Outflow: r.Outflow}
	}
	edge := ""
	if st.Spilling {
		edge = " edge"
	}
	fmt.Printf("step %6d volume %12.2f added %12.2f max %7.3f%s gauges%s\n",
		st.Step, st.Volume, st.Added, st.MaxDepth, edge, sb.String())

	if hub != nil {
		hub.Broadcast(monitor.Sample{
			Sim:      world.Name(),
			Step:     st.Step,
			Volume:   st.Volume,
			Added:    st.Added,
			MaxDepth: st.MaxDepth,
			Wet:      st.Wet,
			Spilling: st.Spilling,
			Gauges:   gauges,
		})
	}
	return nil
}
