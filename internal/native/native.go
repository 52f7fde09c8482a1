// Package native builds the native library with the platform toolchain and
// installs it into the host package tree.
package native

import (
	"context"
	"fmt"
	"runtime"

	"github.com/qiniu/x/log"
	"github.com/spf13/afero"

	"github.com/goplus/nativebuild/internal/depres"
	"github.com/goplus/nativebuild/internal/env"
	"github.com/goplus/nativebuild/internal/toolchain"
)

// PathVar binds an environment variable to a path inside the dependency.
type PathVar struct {
	Name string
	Kind depres.Kind
	Path string
}

// Dependency is the upstream native dependency whose headers and libraries
// the toolchain compiles against.
type Dependency struct {
	Package string
	Vars    []PathVar
}

// Result describes a successful build.
type Result struct {
	Invocation toolchain.Invocation
	Overlay    env.Overlay
	Installed  string // path of the installed artifact
}

// Orchestrator runs the native build. Zero fields fall back to the host
// GOOS, exec.LookPath, an ExecRunner, the process environment and the OS
// filesystem.
type Orchestrator struct {
	Resolver   *depres.Resolver
	Dependency Dependency

	NativeDir    string // native source tree
	DestDir      string // artifact destination inside the host package
	ArtifactBase string // artifact file name without suffix

	GOOS     string
	Program  string // overrides the selected build program when set
	LookPath toolchain.LookPathFunc
	Runner   Runner
	Environ  func() []string
	Fs       afero.Fs
}

// Overlay resolves the dependency paths into environment variables.
func (o *Orchestrator) Overlay() (env.Overlay, error) {
	if o.Resolver == nil {
		return nil, fmt.Errorf("%w: %s: no resolver", depres.ErrDependencyUnavailable, o.Dependency.Package)
	}
	avail := o.Resolver.Probe(o.Dependency.Package)
	if !avail.Available {
		return nil, avail.Err()
	}
	overlay := make(env.Overlay, len(o.Dependency.Vars))
	for _, v := range o.Dependency.Vars {
		p, err := o.Resolver.ResolveIn(avail, depres.Request{Kind: v.Kind, Package: o.Dependency.Package, Path: v.Path})
		if err != nil {
			return nil, err
		}
		overlay[v.Name] = p
		log.Debugf("%s=%s", v.Name, p)
	}
	if err := overlay.Validate(); err != nil {
		return nil, err
	}
	return overlay, nil
}

// Invocation returns the toolchain command line for this build.
func (o *Orchestrator) Invocation() toolchain.Invocation {
	return toolchain.Override(o.Program, o.goos(), o.LookPath, o.NativeDir)
}

// Artifact returns the artifact this build installs.
func (o *Orchestrator) Artifact() Artifact {
	return NewArtifact(o.ArtifactBase, o.goos(), o.NativeDir, o.DestDir)
}

// Build compiles the native source tree and installs the artifact. The
// destination directory is only modified after the toolchain succeeded.
func (o *Orchestrator) Build(ctx context.Context) (*Result, error) {
	overlay, err := o.Overlay()
	if err != nil {
		return nil, err
	}

	fsys := o.fs()
	if ok, _ := afero.DirExists(fsys, o.NativeDir); !ok {
		return nil, &BuildFailedError{Diagnostic: fmt.Sprintf("native source tree %s not found", o.NativeDir)}
	}

	inv := o.Invocation()
	log.Infof("running %s in %s", inv, inv.Dir())
	if err := o.runner().Run(ctx, inv, env.Merge(o.environ(), overlay)); err != nil {
		return nil, err
	}

	installed, err := o.Artifact().Install(fsys)
	if err != nil {
		return nil, err
	}
	log.Infof("installed %s", installed)
	return &Result{Invocation: inv, Overlay: overlay, Installed: installed}, nil
}

// Clean removes build byproducts from the native source tree.
func (o *Orchestrator) Clean() ([]string, error) {
	c := &Cleaner{Fs: o.fs(), Dir: o.NativeDir}
	return c.Clean()
}

func (o *Orchestrator) goos() string {
	if o.GOOS != "" {
		return o.GOOS
	}
	return runtime.GOOS
}

func (o *Orchestrator) runner() Runner {
	if o.Runner != nil {
		return o.Runner
	}
	return &ExecRunner{}
}

func (o *Orchestrator) environ() []string {
	if o.Environ != nil {
		return o.Environ()
	}
	return env.Ambient()
}

func (o *Orchestrator) fs() afero.Fs {
	if o.Fs != nil {
		return o.Fs
	}
	return afero.NewOsFs()
}
