// Package pipeline composes packaging commands from named steps: the native
// pre-steps provided by this module followed by the standard behaviour of
// the packaging frontend.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/qiniu/x/log"

	"github.com/goplus/nativebuild/internal/frontend"
	"github.com/goplus/nativebuild/internal/native"
)

// ErrBuildTool is the host-level error category every native failure is
// reported under. The original cause stays reachable with errors.Is/As.
var ErrBuildTool = errors.New("build tool error")

// Packaging commands.
const (
	Build         = "build"
	Develop       = "develop"
	EditableWheel = "editable_wheel"
	CleanNative   = "clean_native"
	BdistWheel    = "bdist_wheel"
)

// Commands lists the commands a Session knows, in help order.
var Commands = []string{Build, Develop, EditableWheel, BdistWheel, CleanNative}

// State tracks the native build within a session.
type State int

const (
	NotStarted State = iota
	NativeBuildAttempted
	NativeBuildSucceeded
	NativeBuildFailed
	StandardCommandRun
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case NativeBuildAttempted:
		return "native-build-attempted"
	case NativeBuildSucceeded:
		return "native-build-succeeded"
	case NativeBuildFailed:
		return "native-build-failed"
	case StandardCommandRun:
		return "standard-command-run"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Step is one unit of a command.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Run executes steps in order and stops at the first error.
func Run(ctx context.Context, steps []Step) error {
	for _, step := range steps {
		log.Debugf("step %s", step.Name)
		if err := step.Run(ctx); err != nil {
			return err
		}
	}
	return nil
}

// NativeBuilder is the native side of a session.
type NativeBuilder interface {
	Build(ctx context.Context) (*native.Result, error)
	Clean() ([]string, error)
}

// Session runs the commands of one packaging invocation. Each command runs
// at most once, so a command triggered as a sub-step of another one is not
// repeated.
type Session struct {
	Native   NativeBuilder
	Frontend frontend.Frontend

	state State
	done  map[string]bool
	ran   []string
}

// State returns the native build state of the session.
func (s *Session) State() State {
	return s.state
}

// Ran returns the names of the steps executed so far.
func (s *Session) Ran() []string {
	return append([]string(nil), s.ran...)
}

// Run executes command with args for the standard part.
func (s *Session) Run(ctx context.Context, command string, args []string) error {
	if s.done[command] {
		log.Debugf("%s already ran", command)
		return nil
	}
	steps, err := s.Steps(command, args)
	if err != nil {
		return err
	}
	if err := Run(ctx, steps); err != nil {
		return err
	}
	if s.done == nil {
		s.done = make(map[string]bool)
	}
	s.done[command] = true
	return nil
}

// Steps returns the ordered steps of command.
func (s *Session) Steps(command string, args []string) ([]Step, error) {
	switch command {
	case Build:
		return []Step{s.nativeBuild(), s.standard(Build, args)}, nil
	case Develop, EditableWheel, BdistWheel:
		return []Step{s.runCommand(Build), s.standard(command, args)}, nil
	case CleanNative:
		return []Step{s.cleanNative()}, nil
	}
	return nil, fmt.Errorf("unknown command %q", command)
}

func (s *Session) record(name string) {
	s.ran = append(s.ran, name)
}

func (s *Session) nativeBuild() Step {
	const name = "native-build"
	return Step{Name: name, Run: func(ctx context.Context) error {
		s.record(name)
		s.state = NativeBuildAttempted
		log.Info("building native library")
		if _, err := s.Native.Build(ctx); err != nil {
			s.state = NativeBuildFailed
			log.Errorf("building native library: %v", err)
			return fmt.Errorf("%w: building native library: %w", ErrBuildTool, err)
		}
		s.state = NativeBuildSucceeded
		return nil
	}}
}

func (s *Session) cleanNative() Step {
	const name = "clean-native"
	return Step{Name: name, Run: func(ctx context.Context) error {
		s.record(name)
		log.Info("cleaning native library")
		removed, err := s.Native.Clean()
		if err != nil {
			log.Errorf("cleaning native library: %v", err)
			return fmt.Errorf("%w: cleaning native library: %w", ErrBuildTool, err)
		}
		log.Infof("removed %d file(s)", len(removed))
		return nil
	}}
}

// runCommand runs another command of the session as a sub-step.
func (s *Session) runCommand(command string) Step {
	name := "run:" + command
	return Step{Name: name, Run: func(ctx context.Context) error {
		s.record(name)
		return s.Run(ctx, command, nil)
	}}
}

func (s *Session) standard(command string, args []string) Step {
	name := "standard:" + command
	return Step{Name: name, Run: func(ctx context.Context) error {
		s.record(name)
		if s.Frontend != nil {
			if err := s.Frontend.Run(ctx, command, args); err != nil {
				return err
			}
		}
		s.state = StandardCommandRun
		return nil
	}}
}
