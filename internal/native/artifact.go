package native

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// LibraryExt returns the shared library suffix used on goos.
func LibraryExt(goos string) string {
	switch goos {
	case "windows":
		return ".dll"
	case "darwin", "ios":
		return ".dylib"
	default:
		return ".so"
	}
}

// Artifact is the compiled library produced in SourceDir and installed
// into DestDir.
type Artifact struct {
	Name      string // file name, including the platform suffix
	SourceDir string
	DestDir   string
}

// NewArtifact returns the artifact named base plus the suffix for goos.
func NewArtifact(base, goos, sourceDir, destDir string) Artifact {
	return Artifact{
		Name:      base + LibraryExt(goos),
		SourceDir: sourceDir,
		DestDir:   destDir,
	}
}

// Source returns the path of the built file in the native source tree.
func (a Artifact) Source() string {
	return filepath.Join(a.SourceDir, a.Name)
}

// Dest returns the path the file is installed to.
func (a Artifact) Dest() string {
	return filepath.Join(a.DestDir, a.Name)
}

// Install replaces the contents of DestDir with a copy of the artifact.
// DestDir is left untouched if the artifact is missing.
func (a Artifact) Install(fsys afero.Fs) (string, error) {
	src := a.Source()
	fi, err := fsys.Stat(src)
	if err != nil {
		return "", &BuildFailedError{Diagnostic: fmt.Sprintf("artifact %s not produced", src), Err: err}
	}
	if !fi.Mode().IsRegular() {
		return "", &BuildFailedError{Diagnostic: fmt.Sprintf("artifact %s is not a regular file", src)}
	}

	if err := fsys.RemoveAll(a.DestDir); err != nil {
		return "", fmt.Errorf("remove %s: %w", a.DestDir, err)
	}
	if err := fsys.MkdirAll(a.DestDir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", a.DestDir, err)
	}
	dest := a.Dest()
	if err := copyFile(fsys, src, dest, fi.Mode().Perm()); err != nil {
		return "", fmt.Errorf("install %s: %w", a.Name, err)
	}
	return dest, nil
}

func copyFile(fsys afero.Fs, srcPath, destPath string, perm os.FileMode) error {
	in, err := fsys.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fsys.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
