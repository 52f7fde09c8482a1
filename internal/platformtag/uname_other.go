//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package platformtag

func unameMachine() string { return "" }
