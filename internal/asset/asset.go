// Package asset derives the on-disk locations of one build asset and keeps
// its content-hash record.
package asset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// HashExt is appended to the temp path to form the hash record path.
const HashExt = ".hash"

// Scratch file suffixes under TempPath. Each holds exactly one '~' right
// after the leading dot, so the scratch names of two different stems never
// coincide.
const (
	StagingSuffix    = ".~staging.dds"
	CompressedSuffix = ".~bc.dds"
	CubeSuffix       = ".~cube.dds"
)

// CubeFaces is the number of face images a cubemap build writes.
const CubeFaces = 6

// FaceSuffix is the scratch suffix of cube face image i.
func FaceSuffix(i int) string {
	return ".~face" + strconv.Itoa(i) + ".png"
}

func scratchSuffixes() []string {
	s := []string{StagingSuffix, CompressedSuffix, CubeSuffix}
	for i := 0; i < CubeFaces; i++ {
		s = append(s, FaceSuffix(i))
	}
	return append(s, HashExt)
}

// Roots are the three directories every asset path is resolved against.
type Roots struct {
	Source string
	Temp   string
	Target string
}

// Asset is one manifest entry with its derived paths. Rel is the unique key.
type Asset struct {
	Rel        string // slash separated, relative to the source root
	SourcePath string
	TempPath   string // scratch prefix, no extension
	TargetPath string
	HashPath   string
}

// New resolves rel against roots. engineExt replaces the source extension
// on the target.
func New(roots Roots, rel, engineExt string) Asset {
	rel = path.Clean(strings.ReplaceAll(rel, "\\", "/"))
	stem := strings.TrimSuffix(rel, path.Ext(rel))
	temp := filepath.Join(roots.Temp, filepath.FromSlash(stem))
	return Asset{
		Rel:        rel,
		SourcePath: filepath.Join(roots.Source, filepath.FromSlash(rel)),
		TempPath:   temp,
		TargetPath: filepath.Join(roots.Target, filepath.FromSlash(stem)) + engineExt,
		HashPath:   temp + HashExt,
	}
}

// TempFile returns a scratch file path sharing the asset's temp prefix.
func (a Asset) TempFile(suffix string) string {
	return a.TempPath + suffix
}

func (a Asset) String() string { return a.Rel }

// WriteTarget writes the compiled stream, creating parent directories.
func (a Asset) WriteTarget(data []byte) error {
	return writeFile(a.TargetPath, data)
}

// Clean removes the target, the scratch files and the hash record. Only the
// known suffixes are touched, so an asset whose stem extends this one
// ("a.b.png" next to "a.png") keeps its files. Missing files are not
// errors. It returns the removed paths.
func (a Asset) Clean() ([]string, error) {
	var removed []string
	var errs []error

	remove := func(p string) {
		err := os.Remove(p)
		switch {
		case err == nil:
			removed = append(removed, p)
		case !errors.Is(err, fs.ErrNotExist):
			errs = append(errs, err)
		}
	}

	remove(a.TargetPath)
	for _, suffix := range scratchSuffixes() {
		remove(a.TempFile(suffix))
	}

	if len(errs) > 0 {
		return removed, fmt.Errorf("cleaning %s: %w", a.Rel, errors.Join(errs...))
	}
	return removed, nil
}

func writeFile(p string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0644)
}
