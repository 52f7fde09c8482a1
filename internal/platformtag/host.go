package platformtag

import (
	"os"
	"runtime"
	"strings"
)

// HostPlatformEnv overrides the detected platform identifier, as it does
// for the wheel builder itself.
const HostPlatformEnv = "_PYTHON_HOST_PLATFORM"

// probe holds the host queries DetectHost needs.
type probe struct {
	goos       string
	goarch     string
	getenv     func(string) string
	machine    func() string // uname machine, "" when unknown
	macVersion func() string // macOS product version, "" when unknown
}

// DetectHost returns the platform identifier and machine of the running host.
func DetectHost() Host {
	return probe{
		goos:       runtime.GOOS,
		goarch:     runtime.GOARCH,
		getenv:     os.Getenv,
		machine:    unameMachine,
		macVersion: macOSVersion,
	}.host()
}

func (p probe) host() Host {
	m := p.machine()
	if m == "" {
		m = goarchMachine(p.goos, p.goarch)
	}
	h := Host{Machine: m}
	if plat := p.getenv(HostPlatformEnv); plat != "" {
		h.Platform = plat
		return h
	}

	switch p.goos {
	case "linux":
		h.Platform = "linux-" + m
	case "darwin":
		ver := p.getenv("MACOSX_DEPLOYMENT_TARGET")
		if ver == "" {
			ver = p.macVersion()
		}
		h.Platform = "macosx-" + majorMinor(ver) + "-" + m
	case "windows":
		switch p.goarch {
		case "amd64":
			h.Platform = "win-amd64"
		case "arm64":
			h.Platform = "win-arm64"
		default:
			h.Platform = "win32"
		}
	default:
		h.Platform = p.goos + "-" + m
	}
	return h
}

// majorMinor trims a version to "major.minor", padding a bare major with ".0".
func majorMinor(ver string) string {
	parts := strings.SplitN(ver, ".", 3)
	switch {
	case ver == "":
		return "10.9"
	case len(parts) == 1:
		return parts[0] + ".0"
	default:
		return parts[0] + "." + parts[1]
	}
}

// goarchMachine maps GOARCH to the name uname reports on goos.
func goarchMachine(goos, goarch string) string {
	if goos == "windows" {
		switch goarch {
		case "amd64":
			return "AMD64"
		case "arm64":
			return "ARM64"
		case "386":
			return "x86"
		}
		return strings.ToUpper(goarch)
	}
	switch goarch {
	case "amd64":
		return "x86_64"
	case "386":
		return "i686"
	case "arm64":
		if goos == "darwin" {
			return "arm64"
		}
		return "aarch64"
	case "ppc64le", "ppc64", "s390x", "riscv64":
		return goarch
	case "arm":
		return "armv7l"
	}
	return goarch
}
