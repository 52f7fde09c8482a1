//go:build !darwin

package platformtag

func macOSVersion() string { return "" }
