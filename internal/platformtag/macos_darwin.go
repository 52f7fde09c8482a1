package platformtag

import "golang.org/x/sys/unix"

func macOSVersion() string {
	ver, err := unix.Sysctl("kern.osproductversion")
	if err != nil {
		return ""
	}
	return ver
}
