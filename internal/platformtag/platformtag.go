// Package platformtag adds a platform tag to wheel build invocations that
// do not carry one.
package platformtag

import "strings"

const (
	// WheelCommand is the action that builds a distributable wheel.
	WheelCommand = "bdist_wheel"
	// Flag is the wheel build option carrying the platform tag.
	Flag = "--plat-name"

	manylinuxPrefix = "manylinux2014_"
)

// Host identifies the platform a wheel is built for.
type Host struct {
	Platform string // e.g. "linux-x86_64", "macosx-11.0-arm64", "win-amd64"
	Machine  string // e.g. "x86_64", "arm64"
}

// Tag returns the platform tag for h.
func (h Host) Tag() string {
	if strings.Contains(h.Platform, "linux") {
		return manylinuxPrefix + h.Machine
	}
	return strings.NewReplacer(".", "_", "-", "_").Replace(h.Platform)
}

// Apply returns argv with Flag and the host tag appended when argv requests
// a wheel build without an explicit tag. Otherwise argv is returned as is.
// argv is never modified in place.
func Apply(argv []string, h Host) []string {
	if !Needed(argv) {
		return argv
	}
	out := make([]string, 0, len(argv)+2)
	out = append(out, argv...)
	return append(out, Flag, h.Tag())
}

// Needed reports whether argv is a wheel build lacking a platform tag.
func Needed(argv []string) bool {
	wheel := false
	for _, arg := range argv {
		if arg == WheelCommand {
			wheel = true
		}
		if arg == Flag || strings.HasPrefix(arg, Flag+"=") {
			return false
		}
	}
	return wheel
}
