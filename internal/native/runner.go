package native

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"

	"github.com/goplus/nativebuild/internal/toolchain"
)

// diagnosticTail is how much trailing stderr output a BuildFailedError keeps.
const diagnosticTail = 4 << 10

// Runner runs a toolchain invocation to completion.
type Runner interface {
	Run(ctx context.Context, inv toolchain.Invocation, environ []string) error
}

// ExecRunner runs invocations as subprocesses. Output is streamed to Stdout
// and Stderr (os.Stdout and os.Stderr when nil).
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run starts inv with the given environment and waits for it. A program
// missing from PATH yields *BuildToolMissingError; any other failure yields
// *BuildFailedError.
func (r *ExecRunner) Run(ctx context.Context, inv toolchain.Invocation, environ []string) error {
	cmd := exec.CommandContext(ctx, inv.Program(), inv.Args()...)
	cmd.Dir = inv.Dir()
	cmd.Env = environ

	var tail tailBuffer
	cmd.Stdout = orDefault(r.Stdout, os.Stdout)
	cmd.Stderr = io.MultiWriter(orDefault(r.Stderr, os.Stderr), &tail)

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, exec.ErrDot) {
		return &BuildToolMissingError{Program: inv.Program(), Err: err}
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) && pathErr.Op != "chdir" && errors.Is(err, fs.ErrNotExist) {
		return &BuildToolMissingError{Program: inv.Program(), Err: err}
	}

	msg := fmt.Sprintf("%s: %v", inv, err)
	if out := strings.TrimSpace(tail.String()); out != "" {
		msg += "\n" + out
	}
	return &BuildFailedError{Diagnostic: msg, Err: err}
}

func orDefault(w, def io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return def
}

// tailBuffer keeps the last diagnosticTail bytes written to it.
type tailBuffer struct {
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - diagnosticTail; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}
