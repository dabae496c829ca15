package ca

import (
	"fmt"
	"sync/atomic"
)

// Alarms is a set of flags CA functions raise to tell the host something
// happened during a dispatch.
//
// Flags are raised only from inside a dispatch with Activate and cleared only
// by the host. After a dispatch the host calls Get before reading flags;
// after clearing flags it calls Set before the next dispatch. Both are no-ops
// on the CPU backends and move the flags between host and device on gl.
type Alarms struct {
	name  string
	id    uint64
	ctx   *Context
	flags []uint32
}

// NewAlarms allocates n deactivated alarms.
func NewAlarms(ctx *Context, name string, n int) (*Alarms, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: alarms %s size %d", ErrOption, name, n)
	}
	return &Alarms{name: name, id: ctx.id(), ctx: ctx, flags: make([]uint32, n)}, nil
}

// Name returns the binding name.
func (a *Alarms) Name() string { return a.name }

// Len returns the number of alarms.
func (a *Alarms) Len() int { return len(a.flags) }

// Activate raises alarm n. It may only be called from Func.Update with the
// cell being processed.
func (a *Alarms) Activate(c Cell, n int) {
	if !c.dispatched() {
		panic("ca: Alarms.Activate outside a dispatch")
	}
	atomic.StoreUint32(&a.flags[n], 1)
}

// Deactivate clears alarm n.
func (a *Alarms) Deactivate(n int) { atomic.StoreUint32(&a.flags[n], 0) }

// DeactivateAll clears every alarm.
func (a *Alarms) DeactivateAll() {
	for i := range a.flags {
		atomic.StoreUint32(&a.flags[i], 0)
	}
}

// IsActivated reports alarm n.
func (a *Alarms) IsActivated(n int) bool { return atomic.LoadUint32(&a.flags[n]) != 0 }

// IsAnyActivated reports whether at least one alarm is raised.
func (a *Alarms) IsAnyActivated() bool {
	for i := range a.flags {
		if atomic.LoadUint32(&a.flags[i]) != 0 {
			return true
		}
	}
	return false
}

// AreAllActivated reports whether every alarm is raised.
func (a *Alarms) AreAllActivated() bool {
	for i := range a.flags {
		if atomic.LoadUint32(&a.flags[i]) == 0 {
			return false
		}
	}
	return true
}

// Get makes flags raised by the last dispatch visible to the host.
func (a *Alarms) Get() error {
	if a.ctx.isClosed() {
		return ErrClosed
	}
	return a.ctx.be.pullAlarms(a)
}

// Set makes host-side deactivation visible to the next dispatch.
func (a *Alarms) Set() error {
	if a.ctx.isClosed() {
		return ErrClosed
	}
	return a.ctx.be.pushAlarms(a)
}

func (a *Alarms) kind() bindingKind    { return kindAlarms }
func (a *Alarms) owner() *Context      { return a.ctx }
func (a *Alarms) ident() uint64        { return a.id }
func (a *Alarms) elemType() string     { return "uint" }
func (a *Alarms) hostData() (any, int) { return a.flags, 4 * len(a.flags) }
