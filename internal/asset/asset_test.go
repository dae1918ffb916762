package asset

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testRoots(t *testing.T) Roots {
	t.Helper()
	dir := t.TempDir()
	return Roots{
		Source: filepath.Join(dir, "src"),
		Temp:   filepath.Join(dir, "obj"),
		Target: filepath.Join(dir, "bin"),
	}
}

func writeSource(t *testing.T, a Asset, data string) {
	t.Helper()
	if err := writeFile(a.SourcePath, []byte(data)); err != nil {
		t.Fatal(err)
	}
}

func TestNew(t *testing.T) {
	roots := Roots{Source: "src", Temp: "obj", Target: "bin"}
	a := New(roots, `ui\icons\sword.cube.png`, ".tex")

	want := Asset{
		Rel:        "ui/icons/sword.cube.png",
		SourcePath: filepath.Join("src", "ui", "icons", "sword.cube.png"),
		TempPath:   filepath.Join("obj", "ui", "icons", "sword.cube"),
		TargetPath: filepath.Join("bin", "ui", "icons", "sword.cube.tex"),
		HashPath:   filepath.Join("obj", "ui", "icons", "sword.cube.hash"),
	}
	if diff := cmp.Diff(want, a); diff != "" {
		t.Errorf("New mismatch (-want +got):\n%s", diff)
	}
	if got := a.TempFile(FaceSuffix(0)); got != filepath.Join("obj", "ui", "icons", "sword.cube.~face0.png") {
		t.Errorf("TempFile = %s", got)
	}
}

func TestDigest(t *testing.T) {
	a, b := Digest([]byte("hello")), Digest([]byte("hello"))
	if a != b {
		t.Error("digest is not deterministic")
	}
	if a == Digest([]byte("hellp")) {
		t.Error("different inputs share a digest")
	}
	if len(a.String()) != 64 {
		t.Errorf("hex form = %q", a.String())
	}

	p := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(p, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := DigestFile(p)
	if err != nil || got != a {
		t.Errorf("DigestFile = %v, %v; want %v", got, err, a)
	}
}

func TestCheck(t *testing.T) {
	a := New(testRoots(t), "tex/rock.png", ".tex")
	writeSource(t, a, "pixels")

	state, digest, err := a.Check()
	if err != nil || state != TargetMissing {
		t.Fatalf("fresh asset: %v, %v", state, err)
	}

	if err := a.WriteTarget([]byte("compiled")); err != nil {
		t.Fatal(err)
	}
	if state, _, _ = a.Check(); state != HashMissing {
		t.Errorf("no hash record: got %v", state)
	}

	if err := a.WriteHash(digest); err != nil {
		t.Fatal(err)
	}
	if state, _, _ = a.Check(); state != UpToDate {
		t.Errorf("after hash write: got %v", state)
	}
	raw, _ := os.ReadFile(a.HashPath)
	if len(raw) != 32 {
		t.Errorf("hash record is %d bytes, want 32", len(raw))
	}

	writeSource(t, a, "pixels!")
	if state, _, _ = a.Check(); state != HashMismatch {
		t.Errorf("after source edit: got %v", state)
	}
}

func TestCheck_MissingSource(t *testing.T) {
	a := New(testRoots(t), "gone.png", ".tex")
	if _, _, err := a.Check(); err == nil {
		t.Error("expected error for missing source")
	}
}

func TestCheck_NoWrites(t *testing.T) {
	roots := testRoots(t)
	a := New(roots, "a.png", ".tex")
	writeSource(t, a, "x")
	if _, _, err := a.Check(); err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{roots.Temp, roots.Target} {
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Errorf("Check created %s", dir)
		}
	}
}

func TestClean(t *testing.T) {
	a := New(testRoots(t), "sky/day.cube.png", ".tex")
	keep := filepath.Join(filepath.Dir(a.TempPath), "day.cubefoo.png")
	stray := a.TempFile(".notes.txt")
	files := []string{
		a.TargetPath,
		a.HashPath,
		a.TempFile(FaceSuffix(0)),
		a.TempFile(FaceSuffix(5)),
		a.TempFile(CubeSuffix),
		a.TempFile(CompressedSuffix),
		keep,
		stray,
	}
	for _, f := range files {
		if err := writeFile(f, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := a.Clean()
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	sort.Strings(removed)
	want := []string{
		a.TargetPath, a.HashPath,
		a.TempFile(FaceSuffix(0)), a.TempFile(FaceSuffix(5)),
		a.TempFile(CubeSuffix), a.TempFile(CompressedSuffix),
	}
	sort.Strings(want)
	if diff := cmp.Diff(want, removed); diff != "" {
		t.Errorf("removed mismatch (-want +got):\n%s", diff)
	}
	for _, p := range []string{keep, stray} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("unrelated file removed: %v", err)
		}
	}
	if _, err := os.Stat(a.SourcePath); !os.IsNotExist(err) {
		t.Error("source should never be touched")
	}

	// Second clean has nothing left and is not an error.
	removed, err = a.Clean()
	if err != nil || len(removed) != 0 {
		t.Errorf("second Clean = %v, %v", removed, err)
	}
}

func TestClean_KeepsLongerStems(t *testing.T) {
	roots := testRoots(t)
	a := New(roots, "ui/a.png", ".tex")
	ab := New(roots, "ui/a.b.png", ".tex")
	abc := New(roots, "ui/a.bc.png", ".tex")

	var theirs []string
	for _, other := range []Asset{ab, abc} {
		theirs = append(theirs,
			other.TargetPath,
			other.HashPath,
			other.TempFile(StagingSuffix),
			other.TempFile(FaceSuffix(0)),
		)
	}
	for _, f := range append([]string{a.TargetPath, a.HashPath, a.TempFile(StagingSuffix)}, theirs...) {
		if err := writeFile(f, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := a.Clean()
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	sort.Strings(removed)
	want := []string{a.TargetPath, a.HashPath, a.TempFile(StagingSuffix)}
	sort.Strings(want)
	if diff := cmp.Diff(want, removed); diff != "" {
		t.Errorf("removed mismatch (-want +got):\n%s", diff)
	}
	for _, f := range theirs {
		if _, err := os.Stat(f); err != nil {
			t.Errorf("%s removed while cleaning %s: %v", f, a.Rel, err)
		}
	}
}
