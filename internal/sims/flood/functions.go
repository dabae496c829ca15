package flood

import (
	"github.com/chewxy/math32"

	"flood-ca/pkg/ca"
	"flood-ca/pkg/mask"
)

const (
	alarmWet = iota
	alarmSpill
	alarmCount
)

// outflow sends water from each wet cell towards lower neighbouring water
// surfaces. Each cell writes only its own edges: the share of its depth
// leaving through that edge this step.
func (w *World) outflow() *ca.Func {
	return &ca.Func{
		Name: "outflow",
		Update: func(c ca.Cell) {
			k := c.Neighbors()
			m := w.valid.Get(c)
			h := w.depth.Get(c)
			var drops [6]ca.Real
			var sum ca.Real
			for e := 0; e < k; e++ {
				if mask.HasData(m) && h > w.cfg.Params.Tolerance && mask.NeighborHasData(m, e) {
					d := w.elev.Get(c) + h - w.elev.Neighbor(c, e) - w.depth.Neighbor(c, e)
					if d > 0 {
						drops[e] = d
						sum += d
					}
				}
			}
			var moved ca.Real
			if sum > 0 {
				moved = math32.Min(h, w.cfg.Params.Relax*sum/ca.Real(k))
			}
			for e := 0; e < k; e++ {
				if sum > 0 {
					w.flux.Set(c, e, moved*drops[e]/sum)
					continue
				}
				w.flux.Set(c, e, 0)
			}
		},
		Kernel: `
	uint m = valid[idx];
	float h = depth[idx];
	float drops[6] = float[6](0.0, 0.0, 0.0, 0.0, 0.0, 0.0);
	float sum = 0.0;
	for (int e = 0; e < CA_NEIGHBORS; e++) {
		if ((m & 1u) != 0u && h > tol && ((m >> uint(e + 1)) & 1u) != 0u) {
			int n = caIndex(caNeighbor(p, e));
			float d = elev[idx] + h - elev[n] - depth[n];
			if (d > 0.0) {
				drops[e] = d;
				sum += d;
			}
		}
	}
	float moved = 0.0;
	if (sum > 0.0) {
		moved = min(h, relax * sum / float(CA_NEIGHBORS));
	}
	for (int e = 0; e < CA_NEIGHBORS; e++) {
		flux[idx * CA_NEIGHBORS + e] = sum > 0.0 ? moved * drops[e] / sum : 0.0;
	}`,
	}
}

// settle applies the fluxes of the last outflow and this step's rain to
// every data cell, raising alarmWet for any wet cell and alarmSpill for a
// wet cell on the catchment edge.
func (w *World) settle() *ca.Func {
	return &ca.Func{
		Name: "settle",
		Update: func(c ca.Cell) {
			m := w.valid.Get(c)
			if !mask.HasData(m) {
				return
			}
			k := c.Neighbors()
			h := w.depth.Get(c)
			for e := 0; e < k; e++ {
				h -= w.flux.Get(c, e)
				h += w.flux.Neighbor(c, e)
			}
			h = math32.Max(h+w.rain.At(w.rainIdx), 0)
			w.depth.Set(c, h)
			if h > w.cfg.Params.Tolerance {
				w.alarms.Activate(c, alarmWet)
				if mask.IsInnerBoundary(m, k) {
					w.alarms.Activate(c, alarmSpill)
				}
			}
		},
		Kernel: `
	uint m = valid[idx];
	if ((m & 1u) == 0u) {
		return;
	}
	float h = depth[idx];
	for (int e = 0; e < CA_NEIGHBORS; e++) {
		h -= flux[idx * CA_NEIGHBORS + e];
		h += flux[caIndex(caNeighbor(p, e)) * CA_NEIGHBORS + caOpposite(e)];
	}
	h = max(h + rain[rainIdx], 0.0);
	depth[idx] = h;
	if (h > tol) {
		alarms[0] = 1u;
		if (((m >> uint(CA_NEIGHBORS + 1)) & 1u) != 0u) {
			alarms[1] = 1u;
		}
	}`,
	}
}

func (w *World) outflowBindings() []ca.Binding {
	return []ca.Binding{
		w.elev, w.depth, w.valid, w.flux,
		ca.Uniform("relax", w.cfg.Params.Relax),
		ca.Uniform("tol", w.cfg.Params.Tolerance),
	}
}

func (w *World) settleBindings() []ca.Binding {
	return []ca.Binding{
		w.depth, w.valid, w.flux, w.rain, w.alarms,
		ca.Uniform("rainIdx", ca.State(w.rainIdx)),
		ca.Uniform("tol", w.cfg.Params.Tolerance),
	}
}
