package shader

import (
	"bufio"
	"bytes"
	"strings"
)

// Delimiter separates the portable section from the native section. It must
// appear alone on its line; surrounding whitespace is ignored.
const Delimiter = "#native"

// Prologue is prepended to the portable section.
const Prologue = "#version 330 core\n"

// Source is a shader file split into its two sections.
type Source struct {
	Portable string
	Native   string // empty when the file has no native section
}

// HasNative reports whether the file carried a non-blank native section.
func (s Source) HasNative() bool {
	return strings.TrimSpace(s.Native) != ""
}

// Split divides data at the first delimiter line. Without a delimiter the
// whole file is portable.
func Split(data []byte) Source {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	sc.Split(scanLinesKeepEOL)

	offset := 0
	for sc.Scan() {
		line := sc.Bytes()
		if string(bytes.TrimSpace(line)) == Delimiter {
			return Source{
				Portable: string(data[:offset]),
				Native:   string(data[offset+len(line):]),
			}
		}
		offset += len(line)
	}
	return Source{Portable: string(data)}
}

// scanLinesKeepEOL is bufio.ScanLines without stripping the terminator, so
// token lengths add up to byte offsets.
func scanLinesKeepEOL(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i+1], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
