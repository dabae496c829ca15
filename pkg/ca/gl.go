//go:build gl

package ca

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"strings"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"flood-ca/pkg/lattice"
)

// ErrGLUnavailable reports a machine where no GL 4.3 context could be made.
var ErrGLUnavailable = errors.New("ca: no OpenGL 4.3 context")

type glProgram struct {
	id       uint32
	box      int32
	uniforms []int32
}

// glBackend runs kernels as OpenGL compute shaders. Every GL call happens on
// one goroutine locked to its OS thread, which owns a hidden glfw window as
// the context.
//
// Cell and edge buffers are uploaded before each dispatch and read back after
// it. Tables are uploaded when they change. Alarms move only through
// Alarms.Get and Alarms.Set.
type glBackend struct {
	lx, ly int
	logger *log.Logger

	calls chan func()
	done  chan struct{}

	window   *glfw.Window
	renderer string
	programs map[string]*glProgram
	ssbos    map[uint64]uint32
	tables   map[uint64]uint64
}

func newGL(_ *lattice.Grid, opts Options, logger *log.Logger) (backend, error) {
	lx, ly, err := parseWorkgroup(opts[OptWorkgroup])
	if err != nil {
		return nil, err
	}
	b := &glBackend{
		lx:       lx,
		ly:       ly,
		logger:   logger,
		calls:    make(chan func()),
		done:     make(chan struct{}),
		programs: map[string]*glProgram{},
		ssbos:    map[uint64]uint32{},
		tables:   map[uint64]uint64{},
	}
	ready := make(chan error, 1)
	go b.loop(ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	logger.Printf("ca: gl backend on %s, workgroup %dx%d", b.renderer, lx, ly)
	return b, nil
}

func (b *glBackend) loop(ready chan<- error) {
	runtime.LockOSThread()
	defer close(b.done)

	if err := glfw.Init(); err != nil {
		ready <- fmt.Errorf("%w: %v", ErrGLUnavailable, err)
		return
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	win, err := glfw.CreateWindow(1, 1, "flood-ca", nil, nil)
	if err != nil {
		ready <- fmt.Errorf("%w: %v", ErrGLUnavailable, err)
		return
	}
	defer win.Destroy()
	win.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		ready <- fmt.Errorf("%w: %v", ErrGLUnavailable, err)
		return
	}
	b.window = win
	b.renderer = gl.GoStr(gl.GetString(gl.RENDERER))
	ready <- nil

	for f := range b.calls {
		f()
	}

	for _, p := range b.programs {
		gl.DeleteProgram(p.id)
	}
	for _, id := range b.ssbos {
		gl.DeleteBuffers(1, &id)
	}
}

// do runs f on the GL thread and waits for it.
func (b *glBackend) do(f func() error) error {
	errc := make(chan error, 1)
	b.calls <- func() { errc <- f() }
	return <-errc
}

func (b *glBackend) name() string { return "gl" }

func (b *glBackend) close() error {
	close(b.calls)
	<-b.done
	return nil
}

func (b *glBackend) dispatch(g *lattice.Grid, boxes lattice.BoxList, fn *Func, bindings []Binding) error {
	if strings.TrimSpace(fn.Kernel) == "" {
		return fmt.Errorf("%w: %s", ErrNoKernel, fn.Name)
	}
	return b.do(func() error {
		prog, err := b.program(g, fn, bindings)
		if err != nil {
			return err
		}
		gl.UseProgram(prog.id)

		slot := slots(bindings)
		for i, bd := range bindings {
			switch bd.kind() {
			case kindUniform:
				setUniform(prog.uniforms[i], bd)
			case kindAlarms:
				b.bind(bd, uint32(slot[i]), false)
			case kindTable:
				b.bind(bd, uint32(slot[i]), b.tables[bd.ident()] != tableVersion(bd))
				b.tables[bd.ident()] = tableVersion(bd)
			default:
				b.bind(bd, uint32(slot[i]), true)
			}
		}

		for _, box := range boxes {
			tl, br := box.TopLeft(), box.BottomRight()
			gl.Uniform4i(prog.box, int32(tl.X), int32(tl.Y), int32(br.X), int32(br.Y))
			gx := (box.Width() + b.lx - 1) / b.lx
			gy := (box.Height() + b.ly - 1) / b.ly
			gl.DispatchCompute(uint32(gx), uint32(gy), 1)
			gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT)
		}
		gl.Finish()
		if e := gl.GetError(); e != gl.NO_ERROR {
			return fmt.Errorf("ca: gl dispatch %s: error 0x%x", fn.Name, e)
		}

		for _, bd := range bindings {
			if k := bd.kind(); k == kindCell || k == kindEdge {
				b.read(bd)
			}
		}
		return nil
	})
}

// bind attaches the storage buffer of bd to slot, creating it on first use.
// A new buffer always receives the host contents; an existing one only when
// upload is set.
func (b *glBackend) bind(bd Binding, slot uint32, upload bool) {
	data, size := bd.hostData()
	id, ok := b.ssbos[bd.ident()]
	if !ok {
		gl.GenBuffers(1, &id)
		gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, id)
		gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, gl.Ptr(data), gl.DYNAMIC_COPY)
		b.ssbos[bd.ident()] = id
	} else if upload {
		gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, id)
		gl.BufferSubData(gl.SHADER_STORAGE_BUFFER, 0, size, gl.Ptr(data))
	}
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, slot, id)
}

func (b *glBackend) read(bd Binding) {
	id, ok := b.ssbos[bd.ident()]
	if !ok {
		return
	}
	data, size := bd.hostData()
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, id)
	gl.GetBufferSubData(gl.SHADER_STORAGE_BUFFER, 0, size, gl.Ptr(data))
}

func (b *glBackend) pullAlarms(a *Alarms) error {
	return b.do(func() error {
		b.read(a)
		return nil
	})
}

func (b *glBackend) pushAlarms(a *Alarms) error {
	return b.do(func() error {
		id, ok := b.ssbos[a.ident()]
		if !ok {
			// Not on the device yet; the first dispatch uploads host state.
			return nil
		}
		data, size := a.hostData()
		gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, id)
		gl.BufferSubData(gl.SHADER_STORAGE_BUFFER, 0, size, gl.Ptr(data))
		return nil
	})
}

func (b *glBackend) program(g *lattice.Grid, fn *Func, bindings []Binding) (*glProgram, error) {
	key := kernelKey(fn, bindings)
	if p, ok := b.programs[key]; ok {
		return p, nil
	}
	src, err := kernelSource(fn, g, bindings, b.lx, b.ly)
	if err != nil {
		return nil, err
	}
	id, err := compileComputeShader(src)
	if err != nil {
		return nil, fmt.Errorf("ca: kernel %s: %w", fn.Name, err)
	}
	p := &glProgram{
		id:       id,
		box:      gl.GetUniformLocation(id, gl.Str("caBox\x00")),
		uniforms: make([]int32, len(bindings)),
	}
	for i, bd := range bindings {
		p.uniforms[i] = -1
		if bd.kind() == kindUniform {
			p.uniforms[i] = gl.GetUniformLocation(id, gl.Str(bd.Name()+"\x00"))
		}
	}
	b.programs[key] = p
	b.logger.Printf("ca: compiled kernel %s", fn.Name)
	return p, nil
}

func compileComputeShader(source string) (uint32, error) {
	shader := gl.CreateShader(gl.COMPUTE_SHADER)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &n)
		msg := strings.Repeat("\x00", int(n+1))
		gl.GetShaderInfoLog(shader, n, nil, gl.Str(msg))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %s", strings.TrimRight(msg, "\x00"))
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, shader)
	gl.LinkProgram(program)
	gl.DeleteShader(shader)

	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &n)
		msg := strings.Repeat("\x00", int(n+1))
		gl.GetProgramInfoLog(program, n, nil, gl.Str(msg))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link failed: %s", strings.TrimRight(msg, "\x00"))
	}
	return program, nil
}

func setUniform(loc int32, bd Binding) {
	v, _ := bd.hostData()
	switch x := v.(type) {
	case float32:
		gl.Uniform1f(loc, x)
	case uint32:
		gl.Uniform1ui(loc, x)
	}
}

func tableVersion(bd Binding) uint64 {
	if v, ok := bd.(interface{ tableVersion() uint64 }); ok {
		return v.tableVersion()
	}
	return 0
}

func init() {
	registerBackend("gl", newGL)
}
