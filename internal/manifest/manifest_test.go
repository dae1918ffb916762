package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleProject = `<?xml version="1.0" encoding="utf-8"?>
<Project ToolsVersion="4.0" xmlns="http://schemas.microsoft.com/developer/msbuild/2003">
  <PropertyGroup>
    <OutputPath>bin\assets</OutputPath>
  </PropertyGroup>
  <ItemGroup>
    <Content Include="textures\rock.png" />
    <Compile Include="Program.cs" />
    <None Include="shaders\basic.vsh; shaders\basic.fsh" />
  </ItemGroup>
  <ItemGroup>
    <Asset Include="fonts/arial.fnt" />
    <Content Include=".\sky\day.cube.png" />
    <Content Include="textures\rock.png" />
  </ItemGroup>
</Project>`

func TestParse(t *testing.T) {
	got, err := Parse(strings.NewReader(sampleProject))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{
		"textures/rock.png",
		"shaders/basic.vsh",
		"shaders/basic.fsh",
		"fonts/arial.fnt",
		"sky/day.cube.png",
		"textures/rock.png",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("assets mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_ByteOrderMark(t *testing.T) {
	data := "\xef\xbb\xbf<Project><ItemGroup><Content Include=\"a.png\"/></ItemGroup></Project>"
	got, err := Parse(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff([]string{"a.png"}, got); diff != "" {
		t.Errorf("assets mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Latin1(t *testing.T) {
	data := "<?xml version=\"1.0\" encoding=\"windows-1252\"?>" +
		"<Project><ItemGroup><Content Include=\"caf\xe9.png\"/></ItemGroup></Project>"
	got, err := Parse(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff([]string{"café.png"}, got); diff != "" {
		t.Errorf("assets mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Empty(t *testing.T) {
	got, err := Parse(strings.NewReader("<Project></Project>"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no assets, got %v", got)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"wrong root", "<Package><ItemGroup/></Package>", ErrNotProject},
		{"escapes source", `<Project><ItemGroup><Content Include="..\secret.png"/></ItemGroup></Project>`, ErrInvalidPath},
		{"absolute", `<Project><ItemGroup><Content Include="/etc/a.png"/></ItemGroup></Project>`, ErrInvalidPath},
		{"drive letter", `<Project><ItemGroup><Content Include="C:\a.png"/></ItemGroup></Project>`, ErrInvalidPath},
		{"wildcard", `<Project><ItemGroup><Content Include="textures\*.png"/></ItemGroup></Project>`, ErrWildcard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.data)); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := Parse(strings.NewReader("<Project><ItemGroup>")); err == nil {
		t.Error("expected error for truncated XML")
	}
}

func TestLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "assets.proj")
	if err := os.WriteFile(p, []byte(sampleProject), 0644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Path != p || len(m.Assets) != 6 {
		t.Errorf("manifest = %+v", m)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.proj")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
