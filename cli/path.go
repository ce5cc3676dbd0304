package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ardnew/abuild/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config"

// defaultDirMode is the permission mode of created runtime directories.
var defaultDirMode os.FileMode = 0o700

// exeRewrite maps executable base names to the prefix used for runtime
// directories.
var exeRewrite = []struct {
	rex *regexp.Regexp
	rep string
}{
	{regexp.MustCompile(`^__debug_bin\d*$`), pkg.Name}, // dlv
	{regexp.MustCompile(`\.test$`), pkg.Name},          // go test
	{regexp.MustCompile(`^\.+`), ""},
}

// basePrefix returns the name of the per-user runtime directories, derived
// from the executable name.
var basePrefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		id = filepath.Base(id)
		id = strings.TrimSuffix(id, filepath.Ext(id))

		for _, r := range exeRewrite {
			id = r.rex.ReplaceAllString(id, r.rep)
		}

		if id == "" {
			id = pkg.Name
		}

		return id
	},
)

// userDir joins basePrefix to the first usable base directory: the result
// of sys, then fallback under the home directory, then the working
// directory.
func userDir(sys func() (string, error), fallback string) string {
	dir, err := sys()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, fallback)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, basePrefix())
}

// configDir returns the configuration directory path.
var configDir = sync.OnceValue(func() string { return userDir(os.UserConfigDir, ".config") })

// cacheDir returns the cache directory path used for transient files.
var cacheDir = sync.OnceValue(func() string { return userDir(os.UserCacheDir, ".cache") })

// configPath joins the configuration directory with elem.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
