// Package font compiles BMFont XML descriptors into the engine's packed
// bitmap-font format.
package font

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Descriptor is the XML form written by BMFont-compatible generators.
type Descriptor struct {
	XMLName  xml.Name  `xml:"font"`
	Info     Info      `xml:"info"`
	Common   Common    `xml:"common"`
	Pages    []Page    `xml:"pages>page"`
	Chars    []Char    `xml:"chars>char"`
	Kernings []Kerning `xml:"kernings>kerning"`
}

// Info holds the generator settings block.
type Info struct {
	Face string `xml:"face,attr"`
	Size int    `xml:"size,attr"`
}

// Common holds metrics shared by every glyph.
type Common struct {
	LineHeight int `xml:"lineHeight,attr"`
	Base       int `xml:"base,attr"`
	ScaleW     int `xml:"scaleW,attr"`
	ScaleH     int `xml:"scaleH,attr"`
	Pages      int `xml:"pages,attr"`
}

// Page is one texture page.
type Page struct {
	ID   int    `xml:"id,attr"`
	File string `xml:"file,attr"`
}

// Char is one glyph entry.
type Char struct {
	ID       int `xml:"id,attr"`
	X        int `xml:"x,attr"`
	Y        int `xml:"y,attr"`
	Width    int `xml:"width,attr"`
	Height   int `xml:"height,attr"`
	XOffset  int `xml:"xoffset,attr"`
	YOffset  int `xml:"yoffset,attr"`
	XAdvance int `xml:"xadvance,attr"`
	Page     int `xml:"page,attr"`
	Channel  int `xml:"chnl,attr"`
}

// Kerning adjusts the advance between two glyphs.
type Kerning struct {
	First  int `xml:"first,attr"`
	Second int `xml:"second,attr"`
	Amount int `xml:"amount,attr"`
}

// ParseDescriptor parses BMFont XML. Documents declaring a non UTF-8
// encoding (for example EUC-KR or windows-1252) are transcoded first.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charsetReader

	var d Descriptor
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("parsing font descriptor: %w", err)
	}
	return &d, nil
}

// ParseDescriptorFile parses a BMFont XML file from disk.
func ParseDescriptorFile(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading font descriptor: %w", err)
	}
	return ParseDescriptor(data)
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(strings.TrimSpace(label))
	if err != nil {
		return nil, fmt.Errorf("unsupported font descriptor encoding %q: %w", label, err)
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}
