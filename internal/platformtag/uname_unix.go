//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package platformtag

import "golang.org/x/sys/unix"

func unameMachine() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ""
	}
	return unix.ByteSliceToString(uts.Machine[:])
}
