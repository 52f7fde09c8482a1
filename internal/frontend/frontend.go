// Package frontend hands packaging commands to the standard packaging entry
// point once the native pre-steps are done.
package frontend

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/qiniu/x/log"
)

// Frontend runs the standard behaviour of a packaging command.
type Frontend interface {
	Run(ctx context.Context, command string, args []string) error
}

// Exec runs "<Argv...> <command> <args...>" in Dir.
// With an empty Argv every command is skipped with a warning.
type Exec struct {
	Argv   []string
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

func (e *Exec) Run(ctx context.Context, command string, args []string) error {
	if len(e.Argv) == 0 {
		log.Warnf("no packaging frontend configured, skipping standard %s", command)
		return nil
	}
	argv := append(append(append([]string(nil), e.Argv[1:]...), command), args...)
	log.Debugf("frontend: %s %s", e.Argv[0], strings.Join(argv, " "))

	cmd := exec.CommandContext(ctx, e.Argv[0], argv...)
	cmd.Dir = e.Dir
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("standard %s: %w", command, err)
	}
	return nil
}

// Func adapts a function to Frontend.
type Func func(ctx context.Context, command string, args []string) error

func (f Func) Run(ctx context.Context, command string, args []string) error {
	return f(ctx, command, args)
}
