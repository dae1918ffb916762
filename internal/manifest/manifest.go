// Package manifest reads the MSBuild-style project file that lists the
// assets of a build.
//
//	<Project>
//	  <ItemGroup>
//	    <Content Include="textures\rock.png" />
//	    <None Include="shaders\basic.vsh;shaders\basic.fsh" />
//	  </ItemGroup>
//	</Project>
package manifest

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/Faultbox/midgard-assets/internal/config"
)

// Errors returned by Parse.
var (
	ErrNotProject  = errors.New("manifest root element is not <Project>")
	ErrInvalidPath = errors.New("asset path escapes the source directory")
	ErrWildcard    = errors.New("wildcard includes are not supported")
)

// ItemTypes are the item elements that name assets. Other items
// (Compile, Reference, ...) are ignored.
var ItemTypes = []string{"Content", "None", "Asset"}

type project struct {
	XMLName    xml.Name    `xml:"Project"`
	ItemGroups []itemGroup `xml:"ItemGroup"`
}

type itemGroup struct {
	Items []item `xml:",any"`
}

type item struct {
	XMLName xml.Name
	Include string `xml:"Include,attr"`
}

// Manifest is the ordered asset list of one project file.
type Manifest struct {
	Path   string
	Assets []string // slash separated, relative to the source directory
}

// Load reads and parses a project file.
func Load(p string) (*Manifest, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()

	assets, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return &Manifest{Path: p, Assets: assets}, nil
}

// Parse returns the included asset paths in document order. Include
// attributes may hold several paths separated by ';'. Paths are normalised
// to forward slashes; duplicates are kept for the caller to report.
func Parse(r io.Reader) ([]string, error) {
	// BOMOverride turns UTF-16 documents into UTF-8 and drops a UTF-8 BOM.
	dec := xml.NewDecoder(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	dec.CharsetReader = charsetReader

	var proj project
	if err := dec.Decode(&proj); err != nil {
		var unexpected xml.UnmarshalError
		if errors.As(err, &unexpected) {
			return nil, fmt.Errorf("%w: %v", ErrNotProject, err)
		}
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	var assets []string
	for _, group := range proj.ItemGroups {
		for _, it := range group.Items {
			if !isAssetItem(it.XMLName.Local) {
				continue
			}
			for _, inc := range strings.Split(it.Include, ";") {
				inc = strings.TrimSpace(inc)
				if inc == "" {
					continue
				}
				rel, err := normalize(inc)
				if err != nil {
					return nil, err
				}
				assets = append(assets, rel)
			}
		}
	}
	return assets, nil
}

func isAssetItem(name string) bool {
	for _, t := range ItemTypes {
		if name == t {
			return true
		}
	}
	return false
}

func normalize(inc string) (string, error) {
	if strings.ContainsAny(inc, "*?") {
		return "", fmt.Errorf("%w: %q", ErrWildcard, inc)
	}
	rel := config.NormalizeAsset(inc)
	if path.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, "../") || (len(rel) > 1 && rel[1] == ':') {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, inc)
	}
	return rel, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	label = strings.ToLower(strings.TrimSpace(label))
	if strings.HasPrefix(label, "utf-16") {
		return input, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported manifest encoding %q: %w", label, err)
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}
