package shader

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

// Layout errors.
var (
	ErrUnknownSemantic = errors.New("unknown vertex input semantic")
	ErrInputFormat     = errors.New("unsupported vertex input format")
)

// ComponentType is the scalar type of a reflected vertex input.
type ComponentType uint8

// Component types reported by reflection.
const (
	ComponentUint ComponentType = iota
	ComponentInt
	ComponentFloat
)

func (c ComponentType) String() string {
	switch c {
	case ComponentUint:
		return "uint"
	case ComponentInt:
		return "int"
	case ComponentFloat:
		return "float"
	}
	return fmt.Sprintf("ComponentType(%d)", uint8(c))
}

// InputParameter is one vertex shader input as seen by reflection.
type InputParameter struct {
	SemanticName  string // upper case, without index
	SemanticIndex uint8
	Mask          uint8 // bit i set when component i is used
	Type          ComponentType
}

// Slot is the engine's fixed vertex stream slot for a semantic.
type Slot uint8

// Vertex slots.
const (
	SlotPosition Slot = iota
	SlotNormal
	SlotTangent
	SlotBinormal
	SlotColor
	SlotTexCoord
	SlotBlendIndices
	SlotBlendWeight
)

var semanticSlots = map[string]Slot{
	"POSITION":     SlotPosition,
	"NORMAL":       SlotNormal,
	"TANGENT":      SlotTangent,
	"BINORMAL":     SlotBinormal,
	"COLOR":        SlotColor,
	"TEXCOORD":     SlotTexCoord,
	"BLENDINDICES": SlotBlendIndices,
	"BLENDWEIGHT":  SlotBlendWeight,
}

var slotNames = [...]string{"POSITION", "NORMAL", "TANGENT", "BINORMAL", "COLOR", "TEXCOORD", "BLENDINDICES", "BLENDWEIGHT"}

func (s Slot) String() string {
	if int(s) < len(slotNames) {
		return slotNames[s]
	}
	return fmt.Sprintf("Slot(%d)", int(s))
}

// VertexFormat is the storage format of one vertex element.
type VertexFormat uint8

// Vertex element formats. Color is four normalized bytes.
const (
	FormatUint1 VertexFormat = iota
	FormatUint2
	FormatUint3
	FormatUint4
	FormatInt1
	FormatInt2
	FormatInt3
	FormatInt4
	FormatFloat1
	FormatFloat2
	FormatFloat3
	FormatFloat4
	FormatColor
)

var vertexFormatNames = [...]string{
	"uint", "uint2", "uint3", "uint4",
	"int", "int2", "int3", "int4",
	"float", "float2", "float3", "float4",
	"color",
}

func (f VertexFormat) String() string {
	if int(f) < len(vertexFormatNames) {
		return vertexFormatNames[f]
	}
	return fmt.Sprintf("VertexFormat(%d)", uint8(f))
}

// Size returns the byte size of one element.
func (f VertexFormat) Size() int {
	if f == FormatColor {
		return 4
	}
	return (int(f)%4 + 1) * 4
}

// VertexElement is one entry of the synthesized input layout.
type VertexElement struct {
	Slot          Slot
	SemanticIndex uint8
	Format        VertexFormat
	Offset        uint16
}

// InputFormat infers the element format from the component mask and type.
// Four float components under the COLOR semantic pack into FormatColor.
func InputFormat(p InputParameter) (VertexFormat, error) {
	n := bits.Len8(p.Mask)
	if n < 1 || n > 4 {
		return 0, fmt.Errorf("%w: %s%d has mask %#x", ErrInputFormat, p.SemanticName, p.SemanticIndex, p.Mask)
	}

	var base VertexFormat
	switch p.Type {
	case ComponentUint:
		base = FormatUint1
	case ComponentInt:
		base = FormatInt1
	case ComponentFloat:
		if n == 4 && p.SemanticName == "COLOR" {
			return FormatColor, nil
		}
		base = FormatFloat1
	default:
		return 0, fmt.Errorf("%w: %s%d has component type %v", ErrInputFormat, p.SemanticName, p.SemanticIndex, p.Type)
	}
	return base + VertexFormat(n-1), nil
}

// SynthesizeLayout maps reflected inputs to engine slots and formats,
// packing elements in declaration order. It returns the elements and the
// vertex stride.
func SynthesizeLayout(inputs []InputParameter) ([]VertexElement, uint16, error) {
	elements := make([]VertexElement, 0, len(inputs))
	offset := 0
	for _, in := range inputs {
		slot, ok := semanticSlots[strings.ToUpper(in.SemanticName)]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %q", ErrUnknownSemantic, in.SemanticName)
		}
		format, err := InputFormat(in)
		if err != nil {
			return nil, 0, err
		}
		elements = append(elements, VertexElement{
			Slot:          slot,
			SemanticIndex: in.SemanticIndex,
			Format:        format,
			Offset:        uint16(offset),
		})
		offset += format.Size()
	}
	return elements, uint16(offset), nil
}

// ParseSemantic splits an identifier such as "texcoord1" into the upper
// case semantic name and its trailing index.
func ParseSemantic(ident string) (string, uint8) {
	end := len(ident)
	for end > 0 && ident[end-1] >= '0' && ident[end-1] <= '9' {
		end--
	}
	var index int
	for _, c := range ident[end:] {
		index = index*10 + int(c-'0')
		if index > 255 {
			index = 255
		}
	}
	name := strings.TrimSuffix(strings.ToUpper(ident[:end]), "_")
	return name, uint8(index)
}
