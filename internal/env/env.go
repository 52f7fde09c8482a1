package env

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Overlay maps environment variable names to resolved absolute paths that
// are layered on top of the ambient environment of the toolchain process.
type Overlay map[string]string

// Validate reports an error if any value in o is not an absolute path.
func (o Overlay) Validate() error {
	for _, k := range o.keys() {
		if k == "" {
			return fmt.Errorf("env: empty variable name")
		}
		if !filepath.IsAbs(o[k]) {
			return fmt.Errorf("env: %s=%q is not an absolute path", k, o[k])
		}
	}
	return nil
}

func (o Overlay) keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge returns a new KEY=VALUE list holding base with overlay applied.
// Overlay entries replace base entries with the same key. The result is
// sorted by key; neither argument is modified.
func Merge(base []string, overlay Overlay) []string {
	envMap := make(map[string]string, len(base)+len(overlay))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range overlay {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}

// SplitList splits a PATH-style list using the OS list separator and drops
// empty elements.
func SplitList(list string) []string {
	var out []string
	for _, p := range filepath.SplitList(list) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Lookup returns the value of key in a KEY=VALUE list.
func Lookup(environ []string, key string) (string, bool) {
	for i := len(environ) - 1; i >= 0; i-- {
		if k, v, ok := strings.Cut(environ[i], "="); ok && k == key {
			return v, true
		}
	}
	return "", false
}

// Ambient returns a copy of the current process environment.
func Ambient() []string {
	return os.Environ()
}
