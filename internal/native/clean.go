package native

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qiniu/x/log"
	"github.com/spf13/afero"
)

// ByproductExts are the suffixes of files Cleaner removes.
var ByproductExts = []string{".o", ".obj", ".so", ".dll", ".dylib"}

// Cleaner removes build byproducts from the top level of the native source
// tree. Subdirectories are not visited.
type Cleaner struct {
	Fs  afero.Fs // defaults to the OS filesystem
	Dir string
}

// Clean removes matching files and returns their names.
func (c *Cleaner) Clean() ([]string, error) {
	fsys := c.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if ok, err := afero.DirExists(fsys, c.Dir); err != nil || !ok {
		return nil, err
	}
	entries, err := afero.ReadDir(fsys, c.Dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.Dir, err)
	}

	var removed []string
	for _, fi := range entries {
		if fi.IsDir() || !isByproduct(fi.Name()) {
			continue
		}
		if err := fsys.Remove(filepath.Join(c.Dir, fi.Name())); err != nil {
			return removed, fmt.Errorf("remove %s: %w", fi.Name(), err)
		}
		log.Debugf("removed %s", filepath.Join(c.Dir, fi.Name()))
		removed = append(removed, fi.Name())
	}
	return removed, nil
}

// isByproduct matches like the shell glob "*<ext>": hidden files are skipped.
func isByproduct(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	for _, ext := range ByproductExts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
