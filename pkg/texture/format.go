package texture

import (
	"fmt"
	"math"
	"strings"
)

// Format is a GPU pixel format. Values follow the DXGI numbering so that
// decoded DDS files and the engine stream share one code space.
type Format int32

// Pixel formats understood by the codec.
const (
	FormatUnknown              Format = 0
	FormatR32G32B32A32Typeless Format = 1
	FormatR32G32B32A32Float    Format = 2
	FormatR32G32B32A32Uint     Format = 3
	FormatR32G32B32A32Sint     Format = 4
	FormatR32G32B32Typeless    Format = 5
	FormatR32G32B32Float       Format = 6
	FormatR32G32B32Uint        Format = 7
	FormatR32G32B32Sint        Format = 8
	FormatR16G16B16A16Typeless Format = 9
	FormatR16G16B16A16Float    Format = 10
	FormatR16G16B16A16Unorm    Format = 11
	FormatR16G16B16A16Uint     Format = 12
	FormatR16G16B16A16Snorm    Format = 13
	FormatR16G16B16A16Sint     Format = 14
	FormatR32G32Typeless       Format = 15
	FormatR32G32Float          Format = 16
	FormatR32G32Uint           Format = 17
	FormatR32G32Sint           Format = 18
	FormatR10G10B10A2Typeless  Format = 23
	FormatR10G10B10A2Unorm     Format = 24
	FormatR10G10B10A2Uint      Format = 25
	FormatR11G11B10Float       Format = 26
	FormatR8G8B8A8Typeless     Format = 27
	FormatR8G8B8A8Unorm        Format = 28
	FormatR8G8B8A8UnormSRGB    Format = 29
	FormatR8G8B8A8Uint         Format = 30
	FormatR8G8B8A8Snorm        Format = 31
	FormatR8G8B8A8Sint         Format = 32
	FormatR16G16Typeless       Format = 33
	FormatR16G16Float          Format = 34
	FormatR16G16Unorm          Format = 35
	FormatR16G16Uint           Format = 36
	FormatR16G16Snorm          Format = 37
	FormatR16G16Sint           Format = 38
	FormatR32Typeless          Format = 39
	FormatD32Float             Format = 40
	FormatR32Float             Format = 41
	FormatR32Uint              Format = 42
	FormatR32Sint              Format = 43
	FormatR8G8Typeless         Format = 48
	FormatR8G8Unorm            Format = 49
	FormatR8G8Uint             Format = 50
	FormatR8G8Snorm            Format = 51
	FormatR8G8Sint             Format = 52
	FormatR16Typeless          Format = 53
	FormatR16Float             Format = 54
	FormatD16Unorm             Format = 55
	FormatR16Unorm             Format = 56
	FormatR16Uint              Format = 57
	FormatR16Snorm             Format = 58
	FormatR16Sint              Format = 59
	FormatR8Typeless           Format = 60
	FormatR8Unorm              Format = 61
	FormatR8Uint               Format = 62
	FormatR8Snorm              Format = 63
	FormatR8Sint               Format = 64
	FormatA8Unorm              Format = 65
	FormatR1Unorm              Format = 66
	FormatR9G9B9E5SharedExp    Format = 67
	FormatR8G8B8G8Unorm        Format = 68
	FormatG8R8G8B8Unorm        Format = 69
	FormatBC1Typeless          Format = 70
	FormatBC1Unorm             Format = 71
	FormatBC1UnormSRGB         Format = 72
	FormatBC2Typeless          Format = 73
	FormatBC2Unorm             Format = 74
	FormatBC2UnormSRGB         Format = 75
	FormatBC3Typeless          Format = 76
	FormatBC3Unorm             Format = 77
	FormatBC3UnormSRGB         Format = 78
	FormatBC4Typeless          Format = 79
	FormatBC4Unorm             Format = 80
	FormatBC4Snorm             Format = 81
	FormatBC5Typeless          Format = 82
	FormatBC5Unorm             Format = 83
	FormatBC5Snorm             Format = 84
	FormatB5G6R5Unorm          Format = 85
	FormatB5G5R5A1Unorm        Format = 86
	FormatB8G8R8A8Unorm        Format = 87
	FormatB8G8R8X8Unorm        Format = 88
	FormatB8G8R8A8Typeless     Format = 90
	FormatB8G8R8A8UnormSRGB    Format = 91
	FormatB8G8R8X8Typeless     Format = 92
	FormatB8G8R8X8UnormSRGB    Format = 93
	FormatBC6HTypeless         Format = 94
	FormatBC6HUF16             Format = 95
	FormatBC6HSF16             Format = 96
	FormatBC7Typeless          Format = 97
	FormatBC7Unorm             Format = 98
	FormatBC7UnormSRGB         Format = 99
	FormatYUY2                 Format = 107
	FormatB4G4R4A4Unorm        Format = 115
)

type formatInfo struct {
	name string
	bpp  int // bits per pixel for uncompressed formats
}

var formatTable = map[Format]formatInfo{
	FormatR32G32B32A32Typeless: {"R32G32B32A32_TYPELESS", 128},
	FormatR32G32B32A32Float:    {"R32G32B32A32_FLOAT", 128},
	FormatR32G32B32A32Uint:     {"R32G32B32A32_UINT", 128},
	FormatR32G32B32A32Sint:     {"R32G32B32A32_SINT", 128},
	FormatR32G32B32Typeless:    {"R32G32B32_TYPELESS", 96},
	FormatR32G32B32Float:       {"R32G32B32_FLOAT", 96},
	FormatR32G32B32Uint:        {"R32G32B32_UINT", 96},
	FormatR32G32B32Sint:        {"R32G32B32_SINT", 96},
	FormatR16G16B16A16Typeless: {"R16G16B16A16_TYPELESS", 64},
	FormatR16G16B16A16Float:    {"R16G16B16A16_FLOAT", 64},
	FormatR16G16B16A16Unorm:    {"R16G16B16A16_UNORM", 64},
	FormatR16G16B16A16Uint:     {"R16G16B16A16_UINT", 64},
	FormatR16G16B16A16Snorm:    {"R16G16B16A16_SNORM", 64},
	FormatR16G16B16A16Sint:     {"R16G16B16A16_SINT", 64},
	FormatR32G32Typeless:       {"R32G32_TYPELESS", 64},
	FormatR32G32Float:          {"R32G32_FLOAT", 64},
	FormatR32G32Uint:           {"R32G32_UINT", 64},
	FormatR32G32Sint:           {"R32G32_SINT", 64},
	FormatR10G10B10A2Typeless:  {"R10G10B10A2_TYPELESS", 32},
	FormatR10G10B10A2Unorm:     {"R10G10B10A2_UNORM", 32},
	FormatR10G10B10A2Uint:      {"R10G10B10A2_UINT", 32},
	FormatR11G11B10Float:       {"R11G11B10_FLOAT", 32},
	FormatR8G8B8A8Typeless:     {"R8G8B8A8_TYPELESS", 32},
	FormatR8G8B8A8Unorm:        {"R8G8B8A8_UNORM", 32},
	FormatR8G8B8A8UnormSRGB:    {"R8G8B8A8_UNORM_SRGB", 32},
	FormatR8G8B8A8Uint:         {"R8G8B8A8_UINT", 32},
	FormatR8G8B8A8Snorm:        {"R8G8B8A8_SNORM", 32},
	FormatR8G8B8A8Sint:         {"R8G8B8A8_SINT", 32},
	FormatR16G16Typeless:       {"R16G16_TYPELESS", 32},
	FormatR16G16Float:          {"R16G16_FLOAT", 32},
	FormatR16G16Unorm:          {"R16G16_UNORM", 32},
	FormatR16G16Uint:           {"R16G16_UINT", 32},
	FormatR16G16Snorm:          {"R16G16_SNORM", 32},
	FormatR16G16Sint:           {"R16G16_SINT", 32},
	FormatR32Typeless:          {"R32_TYPELESS", 32},
	FormatD32Float:             {"D32_FLOAT", 32},
	FormatR32Float:             {"R32_FLOAT", 32},
	FormatR32Uint:              {"R32_UINT", 32},
	FormatR32Sint:              {"R32_SINT", 32},
	FormatR8G8Typeless:         {"R8G8_TYPELESS", 16},
	FormatR8G8Unorm:            {"R8G8_UNORM", 16},
	FormatR8G8Uint:             {"R8G8_UINT", 16},
	FormatR8G8Snorm:            {"R8G8_SNORM", 16},
	FormatR8G8Sint:             {"R8G8_SINT", 16},
	FormatR16Typeless:          {"R16_TYPELESS", 16},
	FormatR16Float:             {"R16_FLOAT", 16},
	FormatD16Unorm:             {"D16_UNORM", 16},
	FormatR16Unorm:             {"R16_UNORM", 16},
	FormatR16Uint:              {"R16_UINT", 16},
	FormatR16Snorm:             {"R16_SNORM", 16},
	FormatR16Sint:              {"R16_SINT", 16},
	FormatR8Typeless:           {"R8_TYPELESS", 8},
	FormatR8Unorm:              {"R8_UNORM", 8},
	FormatR8Uint:               {"R8_UINT", 8},
	FormatR8Snorm:              {"R8_SNORM", 8},
	FormatR8Sint:               {"R8_SINT", 8},
	FormatA8Unorm:              {"A8_UNORM", 8},
	FormatR1Unorm:              {"R1_UNORM", 1},
	FormatR9G9B9E5SharedExp:    {"R9G9B9E5_SHAREDEXP", 32},
	FormatR8G8B8G8Unorm:        {"R8G8_B8G8_UNORM", 16},
	FormatG8R8G8B8Unorm:        {"G8R8_G8B8_UNORM", 16},
	FormatBC1Typeless:          {"BC1_TYPELESS", 4},
	FormatBC1Unorm:             {"BC1_UNORM", 4},
	FormatBC1UnormSRGB:         {"BC1_UNORM_SRGB", 4},
	FormatBC2Typeless:          {"BC2_TYPELESS", 8},
	FormatBC2Unorm:             {"BC2_UNORM", 8},
	FormatBC2UnormSRGB:         {"BC2_UNORM_SRGB", 8},
	FormatBC3Typeless:          {"BC3_TYPELESS", 8},
	FormatBC3Unorm:             {"BC3_UNORM", 8},
	FormatBC3UnormSRGB:         {"BC3_UNORM_SRGB", 8},
	FormatBC4Typeless:          {"BC4_TYPELESS", 4},
	FormatBC4Unorm:             {"BC4_UNORM", 4},
	FormatBC4Snorm:             {"BC4_SNORM", 4},
	FormatBC5Typeless:          {"BC5_TYPELESS", 8},
	FormatBC5Unorm:             {"BC5_UNORM", 8},
	FormatBC5Snorm:             {"BC5_SNORM", 8},
	FormatB5G6R5Unorm:          {"B5G6R5_UNORM", 16},
	FormatB5G5R5A1Unorm:        {"B5G5R5A1_UNORM", 16},
	FormatB8G8R8A8Unorm:        {"B8G8R8A8_UNORM", 32},
	FormatB8G8R8X8Unorm:        {"B8G8R8X8_UNORM", 32},
	FormatB8G8R8A8Typeless:     {"B8G8R8A8_TYPELESS", 32},
	FormatB8G8R8A8UnormSRGB:    {"B8G8R8A8_UNORM_SRGB", 32},
	FormatB8G8R8X8Typeless:     {"B8G8R8X8_TYPELESS", 32},
	FormatB8G8R8X8UnormSRGB:    {"B8G8R8X8_UNORM_SRGB", 32},
	FormatBC6HTypeless:         {"BC6H_TYPELESS", 8},
	FormatBC6HUF16:             {"BC6H_UF16", 8},
	FormatBC6HSF16:             {"BC6H_SF16", 8},
	FormatBC7Typeless:          {"BC7_TYPELESS", 8},
	FormatBC7Unorm:             {"BC7_UNORM", 8},
	FormatBC7UnormSRGB:         {"BC7_UNORM_SRGB", 8},
	FormatYUY2:                 {"YUY2", 16},
	FormatB4G4R4A4Unorm:        {"B4G4R4A4_UNORM", 16},
}

// String returns the DXGI name without the DXGI_FORMAT_ prefix.
func (f Format) String() string {
	if info, ok := formatTable[f]; ok {
		return info.name
	}
	return fmt.Sprintf("Format(%d)", int32(f))
}

// ParseFormat resolves a format name such as "BC3_UNORM" or
// "DXGI_FORMAT_BC3_UNORM". Matching is case-insensitive.
func ParseFormat(name string) (Format, error) {
	name = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(name)), "DXGI_FORMAT_")
	for f, info := range formatTable {
		if info.name == name {
			return f, nil
		}
	}
	return FormatUnknown, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// BitsPerPixel returns the storage bits per pixel, or 0 for unknown formats.
func (f Format) BitsPerPixel() int {
	return formatTable[f].bpp
}

// IsBlockCompressed reports whether f is one of the BC1-BC7 formats.
func (f Format) IsBlockCompressed() bool {
	return f >= FormatBC1Typeless && f <= FormatBC5Snorm ||
		f >= FormatBC6HTypeless && f <= FormatBC7UnormSRGB
}

// IsPacked reports whether f stores two pixels per 32-bit word.
func (f Format) IsPacked() bool {
	switch f {
	case FormatR8G8B8G8Unorm, FormatG8R8G8B8Unorm, FormatYUY2:
		return true
	}
	return false
}

// blockBytes returns the byte size of one 4x4 block.
func (f Format) blockBytes() int {
	switch {
	case f >= FormatBC1Typeless && f <= FormatBC1UnormSRGB,
		f >= FormatBC4Typeless && f <= FormatBC4Snorm:
		return 8
	default:
		return 16
	}
}

// SurfaceSize computes the row stride and total byte size of a single
// depth slice of a width x height surface. Sizes that do not fit in 32 bits
// fail with ErrInvalidExtent.
func SurfaceSize(f Format, width, height uint32) (size, stride uint32, err error) {
	var s, st uint64
	w, h := uint64(width), uint64(height)
	switch {
	case f.IsBlockCompressed():
		blocksWide := max(1, (w+3)/4)
		blocksHigh := max(1, (h+3)/4)
		st = blocksWide * uint64(f.blockBytes())
		s = st * blocksHigh
	case f.IsPacked():
		st = ((w + 1) >> 1) * 4
		s = st * h
	default:
		bpp := f.BitsPerPixel()
		if bpp == 0 {
			return 0, 0, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
		}
		st = (w*uint64(bpp) + 7) / 8
		s = st * h
	}
	if s > math.MaxUint32 {
		return 0, 0, fmt.Errorf("%w: %dx%d %s surface is %d bytes", ErrInvalidExtent, width, height, f, s)
	}
	return uint32(s), uint32(st), nil
}

// Family is the block-compression family a compile target belongs to.
type Family int

// Compression families.
const (
	FamilyRaw Family = iota
	FamilyBC1
	FamilyBC2
	FamilyBC3
	FamilyBC4
	FamilyBC5
)

var familyNames = [...]string{"raw", "BC1", "BC2", "BC3", "BC4", "BC5"}

func (c Family) String() string {
	if int(c) < len(familyNames) {
		return familyNames[c]
	}
	return fmt.Sprintf("Family(%d)", int(c))
}

// CompressionFamily maps a target pixel format to the family the external
// compressor is asked to produce. Raw targets are written without running
// the compressor.
func CompressionFamily(f Format) (Family, error) {
	switch f {
	case FormatR8G8B8A8Unorm, FormatR8G8B8A8UnormSRGB:
		return FamilyRaw, nil
	case FormatBC1Unorm, FormatBC1UnormSRGB:
		return FamilyBC1, nil
	case FormatBC2Unorm, FormatBC2UnormSRGB:
		return FamilyBC2, nil
	case FormatBC3Unorm, FormatBC3UnormSRGB:
		return FamilyBC3, nil
	case FormatBC4Unorm, FormatBC4Snorm:
		return FamilyBC4, nil
	case FormatBC5Unorm, FormatBC5Snorm:
		return FamilyBC5, nil
	}
	return FamilyRaw, fmt.Errorf("%w: %s has no compression family", ErrUnsupportedTarget, f)
}
