package texture

import (
	"errors"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"BC3_UNORM", FormatBC3Unorm},
		{"bc1_unorm_srgb", FormatBC1UnormSRGB},
		{"DXGI_FORMAT_R8G8B8A8_UNORM", FormatR8G8B8A8Unorm},
		{" r8g8b8a8_unorm ", FormatR8G8B8A8Unorm},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseFormat("BC9_MAGIC"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestFormatString(t *testing.T) {
	if s := FormatBC7UnormSRGB.String(); s != "BC7_UNORM_SRGB" {
		t.Errorf("String() = %q", s)
	}
	if s := Format(1000).String(); s != "Format(1000)" {
		t.Errorf("String() for unknown = %q", s)
	}
}

func TestCompressionFamily(t *testing.T) {
	tests := []struct {
		format Format
		want   Family
	}{
		{FormatR8G8B8A8Unorm, FamilyRaw},
		{FormatR8G8B8A8UnormSRGB, FamilyRaw},
		{FormatBC1Unorm, FamilyBC1},
		{FormatBC2UnormSRGB, FamilyBC2},
		{FormatBC3Unorm, FamilyBC3},
		{FormatBC4Snorm, FamilyBC4},
		{FormatBC5Unorm, FamilyBC5},
	}
	for _, tt := range tests {
		got, err := CompressionFamily(tt.format)
		if err != nil {
			t.Errorf("%v: %v", tt.format, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%v: family %v, want %v", tt.format, got, tt.want)
		}
	}

	for _, f := range []Format{FormatBC7Unorm, FormatR32Float, FormatUnknown} {
		if _, err := CompressionFamily(f); !errors.Is(err, ErrUnsupportedTarget) {
			t.Errorf("%v: expected ErrUnsupportedTarget, got %v", f, err)
		}
	}
}

func TestSurfaceSize_BlockMinimum(t *testing.T) {
	// Sub-block surfaces still occupy one whole block.
	size, stride, err := SurfaceSize(FormatBC3Unorm, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if size != 16 || stride != 16 {
		t.Errorf("BC3 1x1 size/stride = %d/%d, want 16/16", size, stride)
	}
	size, stride, _ = SurfaceSize(FormatBC7Unorm, 5, 9)
	if size != 2*3*16 || stride != 2*16 {
		t.Errorf("BC7 5x9 size/stride = %d/%d, want %d/%d", size, stride, 2*3*16, 2*16)
	}
}

func TestSurfaceSize_Overflow(t *testing.T) {
	for _, tt := range []struct {
		format        Format
		width, height uint32
	}{
		{FormatR32G32B32A32Float, 0xFFFFFFFF, 1},
		{FormatR8G8B8A8Unorm, 0x10000, 0x10000},
		{FormatBC3Unorm, 0xFFFFFFFF, 0xFFFFFFFF},
		{FormatYUY2, 0xFFFFFFFF, 4},
	} {
		if _, _, err := SurfaceSize(tt.format, tt.width, tt.height); !errors.Is(err, ErrInvalidExtent) {
			t.Errorf("%s %dx%d: expected ErrInvalidExtent, got %v", tt.format, tt.width, tt.height, err)
		}
	}
}
