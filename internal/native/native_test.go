package native

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/goplus/nativebuild/internal/depres"
	"github.com/goplus/nativebuild/internal/env"
	"github.com/goplus/nativebuild/internal/toolchain"
)

func defaultDependency() Dependency {
	return Dependency{
		Package: "pyvex",
		Vars: []PathVar{
			{Name: "PYVEX_INCLUDE_PATH", Kind: depres.IncludeDir, Path: "include"},
			{Name: "PYVEX_LIB_PATH", Kind: depres.LibDir, Path: "lib"},
			{Name: "PYVEX_LIB_FILE", Kind: depres.LibFile, Path: `lib\pyvex.lib`},
		},
	}
}

// project is a host package checkout laid out in a temp dir.
type project struct {
	site   string
	native string
	dest   string
}

func newProject(t *testing.T) *project {
	t.Helper()
	root := t.TempDir()
	p := &project{
		site:   filepath.Join(root, "site"),
		native: filepath.Join(root, "native"),
		dest:   filepath.Join(root, "angr", "lib"),
	}
	for _, dir := range []string{
		filepath.Join(p.site, "pyvex", "include"),
		filepath.Join(p.site, "pyvex", "lib"),
		p.native,
		p.dest,
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}
	return p
}

func (p *project) orchestrator(program string) *Orchestrator {
	return &Orchestrator{
		Resolver:     &depres.Resolver{SearchPath: []string{p.site}},
		Dependency:   defaultDependency(),
		NativeDir:    p.native,
		DestDir:      p.dest,
		ArtifactBase: "angr_native",
		Program:      program,
		Runner:       &ExecRunner{Stdout: io.Discard, Stderr: io.Discard},
	}
}

// stubTool writes an executable shell script and returns its path.
func stubTool(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub toolchain is a shell script")
	}
	path := filepath.Join(t.TempDir(), "fake-make")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLibraryExt(t *testing.T) {
	for goos, want := range map[string]string{
		"windows": ".dll",
		"darwin":  ".dylib",
		"linux":   ".so",
		"freebsd": ".so",
	} {
		if got := LibraryExt(goos); got != want {
			t.Errorf("LibraryExt(%q) = %q, want %q", goos, got, want)
		}
	}
	if a := NewArtifact("angr_native", "darwin", "native", "angr/lib"); a.Name != "angr_native.dylib" {
		t.Errorf("NewArtifact().Name = %q", a.Name)
	}
}

func TestBuildReplacesDestination(t *testing.T) {
	p := newProject(t)
	artifact := "angr_native" + LibraryExt(runtime.GOOS)
	tool := stubTool(t, `printf '%s' "$PYVEX_INCLUDE_PATH" > `+artifact+"\n")

	writeFile(t, filepath.Join(p.dest, "stale.txt"), "old")
	writeFile(t, filepath.Join(p.dest, "old_native.so"), "old")

	res, err := p.orchestrator(tool).Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if got := dirNames(t, p.dest); len(got) != 1 || got[0] != artifact {
		t.Errorf("destination = %q, want only %q", got, artifact)
	}
	if res.Installed != filepath.Join(p.dest, artifact) {
		t.Errorf("Installed = %q", res.Installed)
	}
	data, err := os.ReadFile(res.Installed)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(p.site, "pyvex", "include"); string(data) != want {
		t.Errorf("toolchain saw PYVEX_INCLUDE_PATH=%q, want %q", data, want)
	}
	if res.Overlay["PYVEX_LIB_FILE"] != filepath.Join(p.site, "pyvex", "lib", "pyvex.lib") {
		t.Errorf("Overlay = %v", res.Overlay)
	}
}

func TestBuildCreatesMissingDestination(t *testing.T) {
	p := newProject(t)
	if err := os.RemoveAll(p.dest); err != nil {
		t.Fatal(err)
	}
	artifact := "angr_native" + LibraryExt(runtime.GOOS)
	tool := stubTool(t, "touch "+artifact+"\n")

	if _, err := p.orchestrator(tool).Build(context.Background()); err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if got := dirNames(t, p.dest); len(got) != 1 || got[0] != artifact {
		t.Errorf("destination = %q, want only %q", got, artifact)
	}
}

func TestBuildFailedLeavesDestination(t *testing.T) {
	p := newProject(t)
	artifact := "angr_native" + LibraryExt(runtime.GOOS)
	tool := stubTool(t, "touch "+artifact+"\necho 'boom: missing header' >&2\nexit 2\n")

	writeFile(t, filepath.Join(p.dest, "keep.txt"), "prior")
	before := dirNames(t, p.dest)

	_, err := p.orchestrator(tool).Build(context.Background())
	var failed *BuildFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("Build() error = %v, want *BuildFailedError", err)
	}
	if !strings.Contains(failed.Diagnostic, "boom: missing header") {
		t.Errorf("Diagnostic = %q, want tool stderr", failed.Diagnostic)
	}

	if got := dirNames(t, p.dest); strings.Join(got, ",") != strings.Join(before, ",") {
		t.Errorf("destination = %q, want %q", got, before)
	}
	if data, _ := os.ReadFile(filepath.Join(p.dest, "keep.txt")); string(data) != "prior" {
		t.Errorf("keep.txt = %q", data)
	}
	if _, err := os.Stat(filepath.Join(p.native, artifact)); err != nil {
		t.Errorf("partial artifact removed from native tree: %v", err)
	}
}

func TestBuildMissingArtifact(t *testing.T) {
	p := newProject(t)
	tool := stubTool(t, "exit 0\n")
	writeFile(t, filepath.Join(p.dest, "keep.txt"), "prior")

	_, err := p.orchestrator(tool).Build(context.Background())
	var failed *BuildFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("Build() error = %v, want *BuildFailedError", err)
	}
	if got := dirNames(t, p.dest); len(got) != 1 || got[0] != "keep.txt" {
		t.Errorf("destination = %q, want untouched", got)
	}
}

func TestBuildToolMissing(t *testing.T) {
	p := newProject(t)
	const program = "nativebuild-no-such-make"

	_, err := p.orchestrator(program).Build(context.Background())
	var missing *BuildToolMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("Build() error = %v, want *BuildToolMissingError", err)
	}
	if missing.Program != program {
		t.Errorf("Program = %q, want %q", missing.Program, program)
	}
	if !strings.Contains(err.Error(), program) {
		t.Errorf("error %q does not name the program", err)
	}
}

// recordingRunner writes the artifact into an afero filesystem instead of
// running a process.
type recordingRunner struct {
	fs       afero.Fs
	artifact string
	called   int
	inv      toolchain.Invocation
	environ  []string
}

func (r *recordingRunner) Run(ctx context.Context, inv toolchain.Invocation, environ []string) error {
	r.called++
	r.inv = inv
	r.environ = environ
	return afero.WriteFile(r.fs, filepath.Join(inv.Dir(), r.artifact), []byte("lib"), 0644)
}

func TestBuildWithInjectedEnvironment(t *testing.T) {
	p := newProject(t)
	mem := afero.NewMemMapFs()
	if err := mem.MkdirAll(p.native, 0755); err != nil {
		t.Fatal(err)
	}
	runner := &recordingRunner{fs: mem, artifact: "angr_native.so"}

	o := p.orchestrator("")
	o.GOOS = "linux"
	o.LookPath = func(string) (string, error) { return "", errors.New("no gmake") }
	o.Runner = runner
	o.Fs = mem
	o.Environ = func() []string { return []string{"PATH=/bin", "PYVEX_LIB_PATH=stale"} }

	if _, err := o.Build(context.Background()); err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if runner.inv.String() != "make" || runner.inv.Dir() != p.native {
		t.Errorf("invocation = %q in %q", runner.inv, runner.inv.Dir())
	}
	if v, _ := env.Lookup(runner.environ, "PATH"); v != "/bin" {
		t.Errorf("PATH = %q, want ambient value", v)
	}
	if v, _ := env.Lookup(runner.environ, "PYVEX_LIB_PATH"); v != filepath.Join(p.site, "pyvex", "lib") {
		t.Errorf("PYVEX_LIB_PATH = %q", v)
	}
	if ok, _ := afero.Exists(mem, filepath.Join(p.dest, "angr_native.so")); !ok {
		t.Error("artifact not installed")
	}
}

func TestBuildDependencyUnavailable(t *testing.T) {
	p := newProject(t)
	runner := &recordingRunner{fs: afero.NewMemMapFs()}
	o := p.orchestrator("")
	o.Resolver = &depres.Resolver{SearchPath: []string{t.TempDir()}}
	o.Runner = runner

	_, err := o.Build(context.Background())
	if !errors.Is(err, depres.ErrDependencyUnavailable) {
		t.Fatalf("Build() error = %v, want ErrDependencyUnavailable", err)
	}
	if runner.called != 0 {
		t.Errorf("toolchain ran %d times", runner.called)
	}
}

func TestBuildMissingNativeTree(t *testing.T) {
	p := newProject(t)
	runner := &recordingRunner{fs: afero.NewMemMapFs()}
	o := p.orchestrator("")
	o.NativeDir = filepath.Join(p.native, "absent")
	o.Runner = runner

	_, err := o.Build(context.Background())
	var failed *BuildFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("Build() error = %v, want *BuildFailedError", err)
	}
	if runner.called != 0 {
		t.Errorf("toolchain ran %d times", runner.called)
	}
}

func TestTailBuffer(t *testing.T) {
	var tb tailBuffer
	tb.Write([]byte(strings.Repeat("a", diagnosticTail)))
	tb.Write([]byte("end"))
	s := tb.String()
	if len(s) != diagnosticTail || !strings.HasSuffix(s, "end") {
		t.Errorf("tail len = %d, suffix %q", len(s), s[len(s)-3:])
	}
}
