package native

import "fmt"

// BuildToolMissingError is returned when the selected build program cannot
// be found on PATH.
type BuildToolMissingError struct {
	Program string
	Err     error
}

func (e *BuildToolMissingError) Error() string {
	return fmt.Sprintf("couldn't find %s in PATH", e.Program)
}

func (e *BuildToolMissingError) Unwrap() error { return e.Err }

// BuildFailedError is returned when the build program ran but did not
// produce the artifact. Diagnostic carries the tool's own output.
type BuildFailedError struct {
	Diagnostic string
	Err        error
}

func (e *BuildFailedError) Error() string {
	return "native build failed: " + e.Diagnostic
}

func (e *BuildFailedError) Unwrap() error { return e.Err }
