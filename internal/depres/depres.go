// Package depres resolves paths inside the installed resource tree of a
// native-code dependency.
package depres

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/module"
)

// ErrDependencyUnavailable is returned when a dependency package cannot be
// located on the search path.
var ErrDependencyUnavailable = errors.New("dependency unavailable")

// Kind identifies what a Request resolves to.
type Kind int

const (
	IncludeDir Kind = iota
	LibDir
	LibFile
)

func (k Kind) String() string {
	switch k {
	case IncludeDir:
		return "include-dir"
	case LibDir:
		return "lib-dir"
	case LibFile:
		return "lib-file"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Request asks for a path inside a dependency's resource tree.
// Path is a sequence of components separated by '/' or '\'.
type Request struct {
	Kind    Kind
	Package string
	Path    string
}

// ResolutionError reports a request that cannot be mapped to a path inside
// the dependency's resource tree.
type ResolutionError struct {
	Request Request
	Reason  string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s %q in %s: %s", e.Request.Kind, e.Request.Path, e.Request.Package, e.Reason)
}

// Availability is the result of probing for a dependency.
type Availability struct {
	Name      string
	Root      string // absolute resource root, set when Available
	Available bool
	Reason    string // why the dependency is unavailable
}

// Err returns nil if the dependency is available, otherwise an error
// wrapping ErrDependencyUnavailable.
func (a Availability) Err() error {
	if a.Available {
		return nil
	}
	return fmt.Errorf("%w: %s: %s", ErrDependencyUnavailable, a.Name, a.Reason)
}

// Resolver locates dependencies as directories named after the package in
// one of the SearchPath directories. The first match wins.
type Resolver struct {
	SearchPath []string

	// RequireExist makes Resolve fail when the resolved path is missing.
	RequireExist bool
}

// Probe looks up the resource root of the named dependency.
func (r *Resolver) Probe(name string) Availability {
	a := Availability{Name: name}
	if err := module.CheckImportPath(name); err != nil {
		a.Reason = err.Error()
		return a
	}
	for _, dir := range r.SearchPath {
		root, err := filepath.Abs(filepath.Join(dir, filepath.FromSlash(name)))
		if err != nil {
			continue
		}
		if fi, err := os.Stat(root); err == nil && fi.IsDir() {
			a.Root = root
			a.Available = true
			return a
		}
	}
	if len(r.SearchPath) == 0 {
		a.Reason = "empty search path"
	} else {
		a.Reason = "not found in " + strings.Join(r.SearchPath, string(filepath.ListSeparator))
	}
	return a
}

// Resolve returns the absolute path for req.
func (r *Resolver) Resolve(req Request) (string, error) {
	a := r.Probe(req.Package)
	if err := a.Err(); err != nil {
		return "", err
	}
	return r.ResolveIn(a, req)
}

// ResolveIn resolves req against an already probed dependency.
func (r *Resolver) ResolveIn(a Availability, req Request) (string, error) {
	if err := a.Err(); err != nil {
		return "", err
	}
	parts, err := components(req.Path)
	if err != nil {
		return "", &ResolutionError{Request: req, Reason: err.Error()}
	}
	p := filepath.Join(append([]string{a.Root}, parts...)...)
	if r.RequireExist {
		fi, err := os.Stat(p)
		if err != nil {
			return "", &ResolutionError{Request: req, Reason: "path does not exist"}
		}
		if wantDir := req.Kind != LibFile; wantDir != fi.IsDir() {
			return "", &ResolutionError{Request: req, Reason: "unexpected file type"}
		}
	}
	return p, nil
}

func components(path string) ([]string, error) {
	if path == "" {
		return nil, errors.New("empty path")
	}
	if strings.HasPrefix(path, "/") || strings.HasPrefix(path, `\`) || filepath.IsAbs(path) {
		return nil, errors.New("absolute path")
	}
	var parts []string
	for _, p := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		switch p {
		case ".":
			continue
		case "..":
			return nil, errors.New("path escapes resource root")
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return nil, errors.New("empty path")
	}
	return parts, nil
}
