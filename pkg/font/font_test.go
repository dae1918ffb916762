package font

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/charmap"

	"github.com/Faultbox/midgard-assets/pkg/binio"
)

const sampleXML = `<?xml version="1.0"?>
<font>
  <info face="Arial" size="32" />
  <common lineHeight="36" base="29" scaleW="256" scaleH="128" pages="1" packed="0" />
  <pages>
    <page id="0" file="textures\arial_0.png" />
  </pages>
  <chars count="3">
    <char id="65" x="10" y="20" width="18" height="22" xoffset="-1" yoffset="7" xadvance="17" page="0" chnl="15" />
    <char id="46" x="30" y="40" width="4" height="4" xoffset="1" yoffset="25" xadvance="6" page="0" chnl="15" />
    <char id="86" x="50" y="60" width="19" height="22" xoffset="0" yoffset="7" xadvance="18" page="0" chnl="15" />
  </chars>
  <kernings count="4">
    <kerning first="86" second="65" amount="-2" />
    <kerning first="65" second="86" amount="-3" />
    <kerning first="86" second="46" amount="-4" />
    <kerning first="65" second="46" amount="-1" />
  </kernings>
</font>`

func mustCompile(t *testing.T, xmlText, fontPath string) *Font {
	t.Helper()
	d, err := ParseDescriptor([]byte(xmlText))
	if err != nil {
		t.Fatalf("ParseDescriptor: %v", err)
	}
	f, err := Compile(d, fontPath)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return f
}

func TestCompile(t *testing.T) {
	f := mustCompile(t, sampleXML, "fonts/arial.fnt")

	if f.ScaleW != 256 || f.ScaleH != 128 || f.LineHeight != 36 {
		t.Errorf("metrics = %d/%d/%d", f.ScaleW, f.ScaleH, f.LineHeight)
	}
	if f.MinID != 46 || f.MaxID != 86 {
		t.Errorf("id range = %d..%d, want 46..86", f.MinID, f.MaxID)
	}
	if f.Texture != "fonts/arial_0" {
		t.Errorf("texture = %q, want fonts/arial_0", f.Texture)
	}

	wantGlyph := Glyph{ID: 65, X: 10, Y: 20, Width: 18, Height: 22, XOffset: -1, YOffset: 7, XAdvance: 17,
		KerningStart: 0, KerningCount: 2}
	if diff := cmp.Diff(wantGlyph, f.Glyphs[0]); diff != "" {
		t.Errorf("glyph 0 mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_KerningStableByFirst(t *testing.T) {
	f := mustCompile(t, sampleXML, "arial.fnt")

	want := []KerningPair{
		{First: 65, Second: 86, Amount: -3},
		{First: 65, Second: 46, Amount: -1},
		{First: 86, Second: 65, Amount: -2},
		{First: 86, Second: 46, Amount: -4},
	}
	if diff := cmp.Diff(want, f.Kernings); diff != "" {
		t.Errorf("kernings mismatch (-want +got):\n%s", diff)
	}
	for i := 1; i < len(f.Kernings); i++ {
		if f.Kernings[i].First < f.Kernings[i-1].First {
			t.Errorf("kerning %d breaks first-id ordering", i)
		}
	}

	v := f.Glyphs[2]
	if v.ID != 86 || v.KerningStart != 2 || v.KerningCount != 2 {
		t.Errorf("glyph V kerning run = %d+%d", v.KerningStart, v.KerningCount)
	}
	if dot := f.Glyphs[1]; dot.KerningCount != 0 {
		t.Errorf("'.' should have no kerning run, got %d", dot.KerningCount)
	}
}

func TestTextureName(t *testing.T) {
	tests := []struct {
		page, font, want string
	}{
		{"arial_0.png", "fonts/arial.fnt", "fonts/arial_0"},
		{"sub/dir/arial_0.tga", "fonts/ui/arial.fnt", "fonts/ui/arial_0"},
		{`c:\art\arial_0.png`, "arial.fnt", "arial_0"},
		{"arial_0.png", `fonts\arial.fnt`, "fonts/arial_0"},
	}
	for _, tt := range tests {
		if got := textureName(tt.page, tt.font); got != tt.want {
			t.Errorf("textureName(%q, %q) = %q, want %q", tt.page, tt.font, got, tt.want)
		}
	}
}

func TestCompile_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(string) string
		want   error
	}{
		{
			name: "two pages",
			mutate: func(s string) string {
				return strings.Replace(s, `<page id="0" file="textures\arial_0.png" />`,
					`<page id="0" file="a.png" /><page id="1" file="b.png" />`, 1)
			},
			want: ErrPageCount,
		},
		{
			name:   "no pages",
			mutate: func(s string) string { return strings.Replace(s, `<page id="0" file="textures\arial_0.png" />`, "", 1) },
			want:   ErrPageCount,
		},
		{
			name:   "missing dot",
			mutate: func(s string) string { return strings.Replace(s, `<char id="46"`, `<char id="47"`, 1) },
			want:   ErrMissingFallback,
		},
		{
			name:   "id too large",
			mutate: func(s string) string { return strings.Replace(s, `<char id="65"`, `<char id="65536"`, 1) },
			want:   ErrGlyphRange,
		},
		{
			name:   "negative id",
			mutate: func(s string) string { return strings.Replace(s, `<char id="65"`, `<char id="-1"`, 1) },
			want:   ErrGlyphRange,
		},
		{
			// 65582 would wrap to 46, the '.' glyph.
			name:   "kerning first id too large",
			mutate: func(s string) string { return strings.Replace(s, `first="86" second="65"`, `first="65582" second="65"`, 1) },
			want:   ErrGlyphRange,
		},
		{
			name:   "kerning second id negative",
			mutate: func(s string) string { return strings.Replace(s, `first="65" second="86"`, `first="65" second="-86"`, 1) },
			want:   ErrGlyphRange,
		},
		{
			name:   "kerning amount too large",
			mutate: func(s string) string { return strings.Replace(s, `amount="-4"`, `amount="40000"`, 1) },
			want:   ErrMetricRange,
		},
		{
			name:   "scale width too large",
			mutate: func(s string) string { return strings.Replace(s, `scaleW="256"`, `scaleW="65536"`, 1) },
			want:   ErrMetricRange,
		},
		{
			name:   "scale height negative",
			mutate: func(s string) string { return strings.Replace(s, `scaleH="128"`, `scaleH="-1"`, 1) },
			want:   ErrMetricRange,
		},
		{
			name:   "line height too large",
			mutate: func(s string) string { return strings.Replace(s, `lineHeight="36"`, `lineHeight="70000"`, 1) },
			want:   ErrMetricRange,
		},
		{
			name:   "glyph x too large",
			mutate: func(s string) string { return strings.Replace(s, `x="10"`, `x="65536"`, 1) },
			want:   ErrMetricRange,
		},
		{
			name:   "glyph y negative",
			mutate: func(s string) string { return strings.Replace(s, `y="20"`, `y="-20"`, 1) },
			want:   ErrMetricRange,
		},
		{
			name:   "glyph width too large",
			mutate: func(s string) string { return strings.Replace(s, `width="18"`, `width="70000"`, 1) },
			want:   ErrMetricRange,
		},
		{
			name:   "glyph height negative",
			mutate: func(s string) string { return strings.Replace(s, `height="22"`, `height="-1"`, 1) },
			want:   ErrMetricRange,
		},
		{
			name:   "xoffset below int16",
			mutate: func(s string) string { return strings.Replace(s, `xoffset="-1"`, `xoffset="-40000"`, 1) },
			want:   ErrMetricRange,
		},
		{
			name:   "yoffset above int16",
			mutate: func(s string) string { return strings.Replace(s, `yoffset="25"`, `yoffset="32768"`, 1) },
			want:   ErrMetricRange,
		},
		{
			name:   "xadvance above int16",
			mutate: func(s string) string { return strings.Replace(s, `xadvance="17"`, `xadvance="40000"`, 1) },
			want:   ErrMetricRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDescriptor([]byte(tt.mutate(sampleXML)))
			if err != nil {
				t.Fatalf("ParseDescriptor: %v", err)
			}
			if _, err := Compile(d, "arial.fnt"); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCompile_KerningOverflow(t *testing.T) {
	d, err := ParseDescriptor([]byte(sampleXML))
	if err != nil {
		t.Fatal(err)
	}
	d.Kernings = make([]Kerning, 65536)
	if _, err := Compile(d, "arial.fnt"); !errors.Is(err, ErrTooManyKernings) {
		t.Errorf("expected ErrTooManyKernings, got %v", err)
	}
}

func TestEncode_Layout(t *testing.T) {
	f := mustCompile(t, sampleXML, "fonts/arial.fnt")
	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	r := binio.NewReader(buf.Bytes())
	header := make([]uint16, 6)
	for i := range header {
		header[i], _ = r.Uint16()
	}
	if diff := cmp.Diff([]uint16{256, 128, 36, 3, 46, 86}, header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	// First glyph record: id, w, h, xoff, yoff, xadvance, x, y.
	id, _ := r.Uint16()
	w, _ := r.Uint16()
	h, _ := r.Uint16()
	xoff, _ := r.Int16()
	yoff, _ := r.Int16()
	adv, _ := r.Int16()
	x, _ := r.Uint16()
	y, _ := r.Uint16()
	got := fmt.Sprint(id, w, h, xoff, yoff, adv, x, y)
	if got != "65 18 22 -1 7 17 10 20" {
		t.Errorf("glyph record = %s", got)
	}

	if err := r.Skip(2 * 16); err != nil {
		t.Fatal(err)
	}
	kcount, _ := r.Uint16()
	if kcount != 4 {
		t.Errorf("kerning count = %d, want 4", kcount)
	}
	_ = r.Skip(int(kcount) * 6)
	name, err := r.String()
	if err != nil || name != "fonts/arial_0" {
		t.Errorf("texture name = %q, %v", name, err)
	}
	if r.Len() != 0 {
		t.Errorf("%d trailing bytes", r.Len())
	}

	decoded, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(f, decoded); diff != "" {
		t.Errorf("decoded font mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDescriptor_Charset(t *testing.T) {
	// Face name with a Latin-1 character, declared as ISO-8859-1.
	doc := strings.Replace(sampleXML, `<?xml version="1.0"?>`, `<?xml version="1.0" encoding="ISO-8859-1"?>`, 1)
	doc = strings.Replace(doc, `face="Arial"`, `face="Caf√©"`, 1)
	encoded, err := charmap.ISO8859_1.NewEncoder().String(doc)
	if err != nil {
		t.Fatal(err)
	}

	d, err := ParseDescriptor([]byte(encoded))
	if err != nil {
		t.Fatalf("ParseDescriptor: %v", err)
	}
	if d.Info.Face != "Caf√©" {
		t.Errorf("face = %q, want Caf√©", d.Info.Face)
	}
}

func TestParseDescriptor_UnknownCharset(t *testing.T) {
	doc := strings.Replace(sampleXML, `<?xml version="1.0"?>`, `<?xml version="1.0" encoding="x-made-up"?>`, 1)
	if _, err := ParseDescriptor([]byte(doc)); err == nil {
		t.Error("expected error for unknown encoding")
	}
}
