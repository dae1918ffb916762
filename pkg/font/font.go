package font

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"sort"
	"strings"

	"github.com/Faultbox/midgard-assets/pkg/binio"
)

// FallbackGlyph is rendered in place of characters missing from the font.
const FallbackGlyph = '.'

// Font compile errors.
var (
	ErrPageCount       = errors.New("font must have exactly one texture page")
	ErrGlyphRange      = errors.New("glyph id does not fit in 16 bits")
	ErrMissingFallback = errors.New("font has no '.' glyph")
	ErrTooManyGlyphs   = errors.New("glyph count does not fit in 16 bits")
	ErrTooManyKernings = errors.New("kerning pair count does not fit in 16 bits")
	ErrMetricRange     = errors.New("font metric does not fit in 16 bits")
	ErrTruncated       = errors.New("truncated font data")
)

// Glyph is one compiled character record.
type Glyph struct {
	ID       uint16
	X, Y     uint16 // texture box origin
	Width    uint16
	Height   uint16
	XOffset  int16 // screen box offset
	YOffset  int16
	XAdvance int16

	// KerningStart and KerningCount locate this glyph's run in Font.Kernings.
	KerningStart int
	KerningCount int
}

// KerningPair adjusts the advance from First to Second by Amount.
type KerningPair struct {
	First  uint16
	Second uint16
	Amount int16
}

// Font is the compiled representation of one descriptor.
type Font struct {
	ScaleW     uint16
	ScaleH     uint16
	LineHeight uint16
	MinID      uint16
	MaxID      uint16
	Glyphs     []Glyph
	Kernings   []KerningPair
	Texture    string // page texture, slash separated, no extension
}

// Compile validates d and converts it to a Font. fontPath is the
// slash-separated path of the descriptor; its directory prefixes the page
// texture name.
func Compile(d *Descriptor, fontPath string) (*Font, error) {
	if len(d.Pages) != 1 || (d.Common.Pages != 0 && d.Common.Pages != 1) {
		return nil, fmt.Errorf("%w: got %d", ErrPageCount, max(len(d.Pages), d.Common.Pages))
	}
	if len(d.Chars) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d", ErrTooManyGlyphs, len(d.Chars))
	}
	if len(d.Kernings) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d", ErrTooManyKernings, len(d.Kernings))
	}

	var m metrics
	f := &Font{
		ScaleW:     m.u16("common scaleW", d.Common.ScaleW),
		ScaleH:     m.u16("common scaleH", d.Common.ScaleH),
		LineHeight: m.u16("common lineHeight", d.Common.LineHeight),
		Glyphs:     make([]Glyph, 0, len(d.Chars)),
		Texture:    textureName(d.Pages[0].File, fontPath),
	}

	hasFallback := false
	for i, c := range d.Chars {
		if c.ID < 0 || c.ID > math.MaxUint16 {
			return nil, fmt.Errorf("%w: char %d has id %d", ErrGlyphRange, i, c.ID)
		}
		id := uint16(c.ID)
		if id == FallbackGlyph {
			hasFallback = true
		}
		if i == 0 || id < f.MinID {
			f.MinID = id
		}
		if i == 0 || id > f.MaxID {
			f.MaxID = id
		}
		where := fmt.Sprintf("char %d ", c.ID)
		f.Glyphs = append(f.Glyphs, Glyph{
			ID:       id,
			X:        m.u16(where+"x", c.X),
			Y:        m.u16(where+"y", c.Y),
			Width:    m.u16(where+"width", c.Width),
			Height:   m.u16(where+"height", c.Height),
			XOffset:  m.i16(where+"xoffset", c.XOffset),
			YOffset:  m.i16(where+"yoffset", c.YOffset),
			XAdvance: m.i16(where+"xadvance", c.XAdvance),
		})
	}
	if m.err != nil {
		return nil, m.err
	}
	if !hasFallback {
		return nil, ErrMissingFallback
	}

	f.Kernings = make([]KerningPair, len(d.Kernings))
	for i, k := range d.Kernings {
		for _, id := range [2]int{k.First, k.Second} {
			if id < 0 || id > math.MaxUint16 {
				return nil, fmt.Errorf("%w: kerning %d refers to id %d", ErrGlyphRange, i, id)
			}
		}
		amount := m.i16(fmt.Sprintf("kerning %d amount", i), k.Amount)
		f.Kernings[i] = KerningPair{First: uint16(k.First), Second: uint16(k.Second), Amount: amount}
	}
	if m.err != nil {
		return nil, m.err
	}
	// Only the first id orders the table; pairs sharing it keep source order.
	sort.SliceStable(f.Kernings, func(i, j int) bool {
		return f.Kernings[i].First < f.Kernings[j].First
	})
	f.indexKerning()

	return f, nil
}

// metrics converts descriptor values to their stream widths, keeping the
// first value that does not fit.
type metrics struct {
	err error
}

func (m *metrics) u16(name string, v int) uint16 {
	if (v < 0 || v > math.MaxUint16) && m.err == nil {
		m.err = fmt.Errorf("%w: %s is %d", ErrMetricRange, name, v)
	}
	return uint16(v)
}

func (m *metrics) i16(name string, v int) int16 {
	if (v < math.MinInt16 || v > math.MaxInt16) && m.err == nil {
		m.err = fmt.Errorf("%w: %s is %d", ErrMetricRange, name, v)
	}
	return int16(v)
}

// indexKerning fills each glyph's run into the sorted kerning table.
func (f *Font) indexKerning() {
	runs := make(map[uint16][2]int)
	for i := 0; i < len(f.Kernings); {
		j := i
		for j < len(f.Kernings) && f.Kernings[j].First == f.Kernings[i].First {
			j++
		}
		runs[f.Kernings[i].First] = [2]int{i, j - i}
		i = j
	}
	for i := range f.Glyphs {
		if r, ok := runs[f.Glyphs[i].ID]; ok {
			f.Glyphs[i].KerningStart, f.Glyphs[i].KerningCount = r[0], r[1]
		}
	}
}

// textureName strips directory and extension from the page file and
// re-prefixes it with the descriptor's directory.
func textureName(pageFile, fontPath string) string {
	base := path.Base(strings.ReplaceAll(pageFile, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	dir := path.Dir(strings.ReplaceAll(fontPath, "\\", "/"))
	if dir == "." || dir == "/" {
		return base
	}
	return dir + "/" + base
}

// Encode writes the packed font stream.
func (f *Font) Encode(w io.Writer) error {
	out := binio.NewWriter(12 + len(f.Glyphs)*16 + 2 + len(f.Kernings)*6 + len(f.Texture) + 2)
	out.Uint16(f.ScaleW)
	out.Uint16(f.ScaleH)
	out.Uint16(f.LineHeight)
	out.Uint16(uint16(len(f.Glyphs)))
	out.Uint16(f.MinID)
	out.Uint16(f.MaxID)
	for _, g := range f.Glyphs {
		out.Uint16(g.ID)
		out.Uint16(g.Width)
		out.Uint16(g.Height)
		out.Int16(g.XOffset)
		out.Int16(g.YOffset)
		out.Int16(g.XAdvance)
		out.Uint16(g.X)
		out.Uint16(g.Y)
	}
	out.Uint16(uint16(len(f.Kernings)))
	for _, k := range f.Kernings {
		out.Uint16(k.First)
		out.Uint16(k.Second)
		out.Int16(k.Amount)
	}
	out.String(f.Texture)

	_, err := out.WriteTo(w)
	return err
}

// Decode reads a packed font stream.
func Decode(data []byte) (*Font, error) {
	r := binio.NewReader(data)
	var f Font
	var count uint16
	for _, dst := range []*uint16{&f.ScaleW, &f.ScaleH, &f.LineHeight, &count, &f.MinID, &f.MaxID} {
		v, err := r.Uint16()
		if err != nil {
			return nil, fmt.Errorf("%w: header", ErrTruncated)
		}
		*dst = v
	}

	if r.Len() < int(count)*16 {
		return nil, fmt.Errorf("%w: %d glyphs", ErrTruncated, count)
	}
	f.Glyphs = make([]Glyph, count)
	for i := range f.Glyphs {
		g := &f.Glyphs[i]
		g.ID, _ = r.Uint16()
		g.Width, _ = r.Uint16()
		g.Height, _ = r.Uint16()
		g.XOffset, _ = r.Int16()
		g.YOffset, _ = r.Int16()
		g.XAdvance, _ = r.Int16()
		g.X, _ = r.Uint16()
		g.Y, _ = r.Uint16()
	}

	kcount, err := r.Uint16()
	if err != nil || r.Len() < int(kcount)*6 {
		return nil, fmt.Errorf("%w: kerning table", ErrTruncated)
	}
	f.Kernings = make([]KerningPair, kcount)
	for i := range f.Kernings {
		k := &f.Kernings[i]
		k.First, _ = r.Uint16()
		k.Second, _ = r.Uint16()
		k.Amount, _ = r.Int16()
	}

	if f.Texture, err = r.String(); err != nil {
		return nil, fmt.Errorf("%w: texture name", ErrTruncated)
	}
	f.indexKerning()
	return &f, nil
}
