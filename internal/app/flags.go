package app

import (
	"flag"
	"strconv"

	"flood-ca/pkg/ca"
)

// Config represents the command-line parameters for the viewer.
type Config struct {
	Sim       string
	Scale     int
	TPS       int
	Seed      int64
	Backend   string
	Workers   int
	Workgroup string
	Topology  string
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{Sim: "flood", Scale: 4, TPS: 30, Seed: 42, Backend: ca.DefaultBackend}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "simulation to run")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "simulation steps per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for simulation reset")
	fs.StringVar(&c.Backend, "backend", c.Backend, "execution backend (serial, threaded, gl)")
	fs.IntVar(&c.Workers, "workers", c.Workers, "threaded backend workers (0 = one per CPU)")
	fs.StringVar(&c.Workgroup, "workgroup", c.Workgroup, "gl backend local size, N or NxM")
	fs.StringVar(&c.Topology, "topology", c.Topology, "cell topology (square, hex)")
}

// SimOptions returns the configuration map handed to the sim factory.
func (c *Config) SimOptions() map[string]string {
	out := map[string]string{ca.OptBackend: c.Backend}
	if c.Workers > 0 {
		out[ca.OptWorkers] = strconv.Itoa(c.Workers)
	}
	if c.Workgroup != "" {
		out[ca.OptWorkgroup] = c.Workgroup
	}
	if c.Topology != "" {
		out["topology"] = c.Topology
	}
	return out
}
