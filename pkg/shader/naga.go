package shader

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"
)

// Native compile errors.
var (
	ErrNativeCompile = errors.New("native shader compile failed")
	ErrNoEntryPoint  = errors.New("no entry point for shader stage")
	ErrInputType     = errors.New("unsupported vertex input type")
)

// Native is the output of a native backend.
type Native struct {
	Bytecode []byte
	Inputs   []InputParameter // vertex stage only
}

// NativeCompiler turns a native section into bytecode plus reflection data.
type NativeCompiler interface {
	CompileNative(source string, stage Stage) (*Native, error)
}

// NagaCompiler compiles WGSL to SPIR-V in-process.
type NagaCompiler struct {
	Version  spirv.Version
	Debug    bool
	Validate bool // run IR validation before emitting
}

// NewNagaCompiler returns a validating compiler targeting SPIR-V 1.3.
func NewNagaCompiler() *NagaCompiler {
	return &NagaCompiler{Version: spirv.Version1_3, Validate: true}
}

// CompileNative parses and lowers source, emits SPIR-V, then reflects
// the vertex inputs of the entry point for stage.
func (c *NagaCompiler) CompileNative(source string, stage Stage) (*Native, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNativeCompile, err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNativeCompile, err)
	}

	if c.Validate {
		verrs, err := naga.Validate(module)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNativeCompile, err)
		}
		if len(verrs) > 0 {
			return nil, fmt.Errorf("%w: %v", ErrNativeCompile, verrs[0])
		}
	}

	ep, err := entryPoint(module, stage)
	if err != nil {
		return nil, err
	}

	code, err := naga.GenerateSPIRV(module, spirv.Options{Version: c.Version, Debug: c.Debug})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNativeCompile, err)
	}

	out := &Native{Bytecode: code}
	if stage == StageVertex {
		if out.Inputs, err = reflectInputs(module, ep); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func entryPoint(module *ir.Module, stage Stage) (*ir.EntryPoint, error) {
	want := ir.StageVertex
	if stage == StageFragment {
		want = ir.StageFragment
	}
	for i := range module.EntryPoints {
		if module.EntryPoints[i].Stage == want {
			return &module.EntryPoints[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrNoEntryPoint, stage)
}

type locatedInput struct {
	location uint32
	param    InputParameter
}

// reflectInputs collects every @location argument of the entry point,
// looking through struct arguments, ordered by location.
func reflectInputs(module *ir.Module, ep *ir.EntryPoint) ([]InputParameter, error) {
	if int(ep.Function) >= len(module.Functions) {
		return nil, fmt.Errorf("%w: entry point %q has no function", ErrNativeCompile, ep.Name)
	}
	fn := &module.Functions[ep.Function]

	var found []locatedInput
	add := func(name string, th ir.TypeHandle, binding *ir.Binding) error {
		if binding == nil {
			return nil
		}
		loc, ok := (*binding).(ir.LocationBinding)
		if !ok {
			return nil
		}
		p, err := inputParameter(module, name, th)
		if err != nil {
			return err
		}
		found = append(found, locatedInput{location: loc.Location, param: p})
		return nil
	}

	for _, arg := range fn.Arguments {
		if arg.Binding != nil {
			if err := add(arg.Name, arg.Type, arg.Binding); err != nil {
				return nil, err
			}
			continue
		}
		if int(arg.Type) >= len(module.Types) {
			continue
		}
		st, ok := module.Types[arg.Type].Inner.(ir.StructType)
		if !ok {
			continue
		}
		for _, m := range st.Members {
			if err := add(m.Name, m.Type, m.Binding); err != nil {
				return nil, err
			}
		}
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].location < found[j].location })
	inputs := make([]InputParameter, len(found))
	for i, f := range found {
		inputs[i] = f.param
	}
	return inputs, nil
}

func inputParameter(module *ir.Module, name string, th ir.TypeHandle) (InputParameter, error) {
	if int(th) >= len(module.Types) {
		return InputParameter{}, fmt.Errorf("%w: %s has invalid type handle", ErrInputType, name)
	}

	var scalar ir.ScalarType
	components := 1
	switch inner := module.Types[th].Inner.(type) {
	case ir.ScalarType:
		scalar = inner
	case ir.VectorType:
		scalar = inner.Scalar
		components = int(inner.Size)
	default:
		return InputParameter{}, fmt.Errorf("%w: %s is %T", ErrInputType, name, inner)
	}

	var ct ComponentType
	switch scalar.Kind {
	case ir.ScalarUint:
		ct = ComponentUint
	case ir.ScalarSint:
		ct = ComponentInt
	case ir.ScalarFloat:
		ct = ComponentFloat
	default:
		return InputParameter{}, fmt.Errorf("%w: %s has scalar kind %d", ErrInputType, name, scalar.Kind)
	}

	semantic, index := ParseSemantic(name)
	return InputParameter{
		SemanticName:  semantic,
		SemanticIndex: index,
		Mask:          uint8(1<<components - 1),
		Type:          ct,
	}, nil
}
