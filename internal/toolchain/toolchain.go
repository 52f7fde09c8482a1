// Package toolchain picks the external make-family command line used to
// compile the native source tree.
package toolchain

import (
	"os/exec"
	"strings"
)

const (
	platformWindows = "windows"

	makeProgram  = "make"
	gmakeProgram = "gmake"
	nmakeProgram = "nmake"

	// WindowsMakefile is the makefile nmake is pointed at on windows.
	WindowsMakefile = "Makefile-win"
)

// LookPathFunc reports the location of an executable, like exec.LookPath.
type LookPathFunc func(file string) (string, error)

// Invocation is a selected program, its arguments and working directory.
// The zero value is not useful; use Select or New.
type Invocation struct {
	argv []string
	dir  string
}

// New returns an Invocation running argv in dir. New panics on empty argv.
func New(dir string, argv ...string) Invocation {
	if len(argv) == 0 {
		panic("toolchain: empty argv")
	}
	return Invocation{argv: append([]string(nil), argv...), dir: dir}
}

// Program returns the program name.
func (inv Invocation) Program() string {
	if len(inv.argv) == 0 {
		return ""
	}
	return inv.argv[0]
}

// Args returns a copy of the arguments after the program name.
func (inv Invocation) Args() []string {
	if len(inv.argv) < 2 {
		return nil
	}
	return append([]string(nil), inv.argv[1:]...)
}

// Argv returns a copy of the full command line.
func (inv Invocation) Argv() []string {
	return append([]string(nil), inv.argv...)
}

// Dir returns the working directory.
func (inv Invocation) Dir() string {
	return inv.dir
}

func (inv Invocation) String() string {
	return strings.Join(inv.argv, " ")
}

// Select returns the invocation for goos. On windows it is nmake against
// the windows makefile; elsewhere gmake is preferred when lookPath finds it,
// falling back to make. A nil lookPath uses exec.LookPath.
func Select(goos string, lookPath LookPathFunc, dir string) Invocation {
	if goos == platformWindows {
		return New(dir, nmakeProgram, "/f", WindowsMakefile)
	}
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if _, err := lookPath(gmakeProgram); err == nil {
		return New(dir, gmakeProgram)
	}
	return New(dir, makeProgram)
}

// Override returns an invocation of program in dir, with the arguments
// Select would have used for goos. An empty program returns Select's choice.
func Override(program, goos string, lookPath LookPathFunc, dir string) Invocation {
	inv := Select(goos, lookPath, dir)
	if program == "" {
		return inv
	}
	return New(dir, append([]string{program}, inv.Args()...)...)
}
