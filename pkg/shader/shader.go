// Package shader compiles two-section shader sources into the engine's
// program stream: portable GLSL text, optional SPIR-V bytecode, and for
// vertex programs an input layout derived from reflection.
package shader

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/Faultbox/midgard-assets/pkg/binio"
)

// Stream errors.
var (
	ErrUnknownStage = errors.New("unknown shader stage")
	ErrTruncated    = errors.New("truncated shader program")
)

// Stage identifies the pipeline stage of a program.
type Stage uint8

// Shader stages.
const (
	StageVertex Stage = iota
	StageFragment
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	}
	return fmt.Sprintf("Stage(%d)", uint8(s))
}

// Source extensions per stage.
const (
	VertexExt   = ".vsh"
	FragmentExt = ".fsh"
)

// StageForPath derives the stage from the file extension.
func StageForPath(p string) (Stage, error) {
	switch strings.ToLower(path.Ext(p)) {
	case VertexExt:
		return StageVertex, nil
	case FragmentExt, ".psh":
		return StageFragment, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownStage, p)
}

// Program is one compiled shader.
type Program struct {
	Stage    Stage
	Portable string // prologue included
	Native   []byte // nil when no native backend ran
	Layout   []VertexElement
	Stride   uint16
}

// HasNative reports whether native bytecode is present.
func (p *Program) HasNative() bool { return p.Native != nil }

// Compiler compiles shader sources. A nil native backend produces
// portable-only programs. Native compilation is serialized.
type Compiler struct {
	native NativeCompiler
	mu     sync.Mutex
}

// NewCompiler creates a Compiler. native may be nil.
func NewCompiler(native NativeCompiler) *Compiler {
	return &Compiler{native: native}
}

// Native reports whether a native backend is configured.
func (c *Compiler) Native() bool { return c.native != nil }

// Compile splits data and compiles it for stage.
func (c *Compiler) Compile(data []byte, stage Stage) (*Program, error) {
	src := Split(data)
	prog := &Program{
		Stage:    stage,
		Portable: Prologue + src.Portable,
	}
	if c.native == nil || !src.HasNative() {
		return prog, nil
	}

	c.mu.Lock()
	native, err := c.native.CompileNative(src.Native, stage)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	prog.Native = native.Bytecode
	if prog.Native == nil {
		prog.Native = []byte{}
	}
	if stage == StageVertex {
		prog.Layout, prog.Stride, err = SynthesizeLayout(native.Inputs)
		if err != nil {
			return nil, err
		}
	}
	return prog, nil
}

// Encode writes the program stream.
func (p *Program) Encode(w io.Writer) error {
	out := binio.NewWriter(len(p.Portable) + len(p.Native) + 16 + len(p.Layout)*6)
	out.Uint8(uint8(p.Stage))
	out.String(p.Portable)
	if !p.HasNative() {
		out.Uint8(0)
	} else {
		out.Uint8(1)
		out.Blob(p.Native)
		if p.Stage == StageVertex {
			out.Uint16(uint16(len(p.Layout)))
			for _, e := range p.Layout {
				out.Uint8(uint8(e.Slot))
				out.Uint8(e.SemanticIndex)
				out.Uint8(uint8(e.Format))
				out.Uint8(0)
				out.Uint16(e.Offset)
			}
			out.Uint16(p.Stride)
		}
	}
	_, err := out.WriteTo(w)
	return err
}

// Decode reads a program stream. Native bytecode aliases data.
func Decode(data []byte) (*Program, error) {
	r := binio.NewReader(data)
	stage, err := r.Uint8()
	if err != nil {
		return nil, fmt.Errorf("%w: stage", ErrTruncated)
	}
	p := &Program{Stage: Stage(stage)}
	if p.Stage > StageFragment {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStage, stage)
	}
	if p.Portable, err = r.String(); err != nil {
		return nil, fmt.Errorf("%w: portable source", ErrTruncated)
	}
	hasNative, err := r.Uint8()
	if err != nil {
		return nil, fmt.Errorf("%w: native flag", ErrTruncated)
	}
	if hasNative == 0 {
		return p, nil
	}
	if p.Native, err = r.Blob(); err != nil {
		return nil, fmt.Errorf("%w: bytecode", ErrTruncated)
	}
	if p.Stage != StageVertex {
		return p, nil
	}

	count, err := r.Uint16()
	if err != nil || r.Len() < int(count)*6+2 {
		return nil, fmt.Errorf("%w: input layout", ErrTruncated)
	}
	p.Layout = make([]VertexElement, count)
	for i := range p.Layout {
		e := &p.Layout[i]
		slot, _ := r.Uint8()
		e.Slot = Slot(slot)
		e.SemanticIndex, _ = r.Uint8()
		format, _ := r.Uint8()
		e.Format = VertexFormat(format)
		_ = r.Skip(1)
		e.Offset, _ = r.Uint16()
	}
	p.Stride, _ = r.Uint16()
	return p, nil
}
