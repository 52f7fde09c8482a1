package config

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/goplus/nativebuild/internal/depres"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), FileName), false)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	def := Default()
	if c.NativeDir != def.NativeDir || c.DestDir != def.DestDir || c.ArtifactBase != def.ArtifactBase {
		t.Errorf("Load() = %+v, want defaults %+v", c, def)
	}
	if c.Dependency.Package != "pyvex" || c.Dependency.LibFilePath != `lib\pyvex.lib` || c.Dependency.RequireExist {
		t.Errorf("Dependency = %+v", c.Dependency)
	}
	if len(c.Dependency.SearchPath) != 0 || len(c.Frontend.Command) != 0 || c.Toolchain.Program != "" {
		t.Errorf("Load() = %+v, want empty lists", c)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), FileName), true); err == nil {
		t.Error("Load() of missing required file succeeded")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	data := `
native_dir = "csrc"
artifact = "mylib_native"

[dependency]
package = "mydep"
search_path = ["site-packages"]
lib_file_path = "lib/mydep.a"

[toolchain]
program = "bmake"

[frontend]
command = ["python3", "-m", "backend"]
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.NativeDir != "csrc" || c.ArtifactBase != "mylib_native" {
		t.Errorf("top-level keys = %+v", c)
	}
	if c.DestDir != Default().DestDir {
		t.Errorf("DestDir = %q, want default", c.DestDir)
	}
	if c.Dependency.Package != "mydep" || c.Dependency.LibFilePath != "lib/mydep.a" || c.Dependency.IncludeVar != "PYVEX_INCLUDE_PATH" {
		t.Errorf("Dependency = %+v", c.Dependency)
	}
	if !reflect.DeepEqual(c.Dependency.SearchPath, []string{"site-packages"}) {
		t.Errorf("SearchPath = %q", c.Dependency.SearchPath)
	}
	if c.Toolchain.Program != "bmake" {
		t.Errorf("Toolchain = %+v", c.Toolchain)
	}
	if !reflect.DeepEqual(c.Frontend.Command, []string{"python3", "-m", "backend"}) {
		t.Errorf("Frontend = %+v", c.Frontend)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("NATIVEBUILD_NATIVE_DIR", "other")
	t.Setenv("NATIVEBUILD_DEPENDENCY_PACKAGE", "otherdep")
	c, err := Load("", false)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.NativeDir != "other" || c.Dependency.Package != "otherdep" {
		t.Errorf("env overrides not applied: %+v", c)
	}
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("artifact = \"\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path, true)
	if err == nil || !strings.Contains(err.Error(), "artifact") {
		t.Errorf("Load() error = %v, want missing artifact", err)
	}

	if err := os.WriteFile(path, []byte("native_dir = [\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, true); err == nil {
		t.Error("Load() accepted malformed TOML")
	}
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	if err := Default().Encode(&buf); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`native_dir = "native"`, `artifact = "angr_native"`, "[dependency]", `package = "pyvex"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Encode() output missing %q:\n%s", want, out)
		}
	}
}

func TestOrchestrator(t *testing.T) {
	root := t.TempDir()
	site := filepath.Join(root, "site")
	extra := t.TempDir()

	c := Default()
	c.Dependency.SearchPath = []string{"site"}
	environ := []string{SearchPathEnv + "=" + extra, "PATH=/bin"}

	o := c.Orchestrator(root, environ)
	if o.NativeDir != filepath.Join(root, "native") {
		t.Errorf("NativeDir = %q", o.NativeDir)
	}
	if o.DestDir != filepath.Join(root, "angr", "lib") {
		t.Errorf("DestDir = %q", o.DestDir)
	}
	if want := []string{site, extra}; !reflect.DeepEqual(o.Resolver.SearchPath, want) {
		t.Errorf("SearchPath = %q, want %q", o.Resolver.SearchPath, want)
	}
	if len(o.Dependency.Vars) != 3 || o.Dependency.Vars[2].Kind != depres.LibFile || o.Dependency.Vars[2].Name != "PYVEX_LIB_FILE" {
		t.Errorf("Vars = %+v", o.Dependency.Vars)
	}
	if got := o.Environ(); !reflect.DeepEqual(got, environ) {
		t.Errorf("Environ() = %q", got)
	}
}
