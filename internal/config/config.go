package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/goplus/nativebuild/internal/depres"
	"github.com/goplus/nativebuild/internal/env"
	"github.com/goplus/nativebuild/internal/native"
)

const (
	// FileName is the config file looked up in the project root.
	FileName = "nativebuild.toml"
	// EnvPrefix prefixes environment overrides, e.g. NATIVEBUILD_NATIVE_DIR.
	EnvPrefix = "NATIVEBUILD"
	// SearchPathEnv extends dependency.search_path.
	SearchPathEnv = "NATIVEBUILD_PATH"
)

type Config struct {
	NativeDir    string           `mapstructure:"native_dir" toml:"native_dir"`
	DestDir      string           `mapstructure:"dest_dir" toml:"dest_dir"`
	ArtifactBase string           `mapstructure:"artifact" toml:"artifact"`
	Dependency   DependencyConfig `mapstructure:"dependency" toml:"dependency"`
	Toolchain    ToolchainConfig  `mapstructure:"toolchain" toml:"toolchain"`
	Frontend     FrontendConfig   `mapstructure:"frontend" toml:"frontend"`
}

type DependencyConfig struct {
	Package      string   `mapstructure:"package" toml:"package"`
	SearchPath   []string `mapstructure:"search_path" toml:"search_path"`
	RequireExist bool     `mapstructure:"require_exist" toml:"require_exist"`
	IncludeVar   string   `mapstructure:"include_var" toml:"include_var"`
	IncludePath  string   `mapstructure:"include_path" toml:"include_path"`
	LibVar       string   `mapstructure:"lib_var" toml:"lib_var"`
	LibPath      string   `mapstructure:"lib_path" toml:"lib_path"`
	LibFileVar   string   `mapstructure:"lib_file_var" toml:"lib_file_var"`
	LibFilePath  string   `mapstructure:"lib_file_path" toml:"lib_file_path"`
}

type ToolchainConfig struct {
	// Program replaces the selected make program when set.
	Program string `mapstructure:"program" toml:"program"`
}

type FrontendConfig struct {
	// Command is the standard packaging entry point, e.g. ["python3", "-m", "build_backend"].
	Command []string `mapstructure:"command" toml:"command"`
}

// Default returns the built-in layout of the host package.
func Default() *Config {
	return &Config{
		NativeDir:    "native",
		DestDir:      filepath.Join("angr", "lib"),
		ArtifactBase: "angr_native",
		Dependency: DependencyConfig{
			Package:     "pyvex",
			IncludeVar:  "PYVEX_INCLUDE_PATH",
			IncludePath: "include",
			LibVar:      "PYVEX_LIB_PATH",
			LibPath:     "lib",
			LibFileVar:  "PYVEX_LIB_FILE",
			LibFilePath: `lib\pyvex.lib`,
		},
	}
}

func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("native_dir", c.NativeDir)
	v.SetDefault("dest_dir", c.DestDir)
	v.SetDefault("artifact", c.ArtifactBase)
	v.SetDefault("dependency.package", c.Dependency.Package)
	v.SetDefault("dependency.search_path", orEmpty(c.Dependency.SearchPath))
	v.SetDefault("dependency.require_exist", c.Dependency.RequireExist)
	v.SetDefault("dependency.include_var", c.Dependency.IncludeVar)
	v.SetDefault("dependency.include_path", c.Dependency.IncludePath)
	v.SetDefault("dependency.lib_var", c.Dependency.LibVar)
	v.SetDefault("dependency.lib_path", c.Dependency.LibPath)
	v.SetDefault("dependency.lib_file_var", c.Dependency.LibFileVar)
	v.SetDefault("dependency.lib_file_path", c.Dependency.LibFilePath)
	v.SetDefault("toolchain.program", c.Toolchain.Program)
	v.SetDefault("frontend.command", orEmpty(c.Frontend.Command))
}

// orEmpty keeps list keys known to viper so environment overrides reach them.
func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Load reads path on top of the defaults, then applies NATIVEBUILD_*
// environment overrides. A missing file is only an error when required.
func Load(path string, required bool) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			v.SetConfigFile(path)
			v.SetConfigType("toml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		case required || !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports missing required keys.
func (c *Config) Validate() error {
	var missing []string
	check := func(key, val string) {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, key)
		}
	}
	check("native_dir", c.NativeDir)
	check("dest_dir", c.DestDir)
	check("artifact", c.ArtifactBase)
	check("dependency.package", c.Dependency.Package)
	check("dependency.include_var", c.Dependency.IncludeVar)
	check("dependency.include_path", c.Dependency.IncludePath)
	check("dependency.lib_var", c.Dependency.LibVar)
	check("dependency.lib_path", c.Dependency.LibPath)
	check("dependency.lib_file_var", c.Dependency.LibFileVar)
	check("dependency.lib_file_path", c.Dependency.LibFilePath)
	if len(missing) > 0 {
		return fmt.Errorf("config: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// SearchPath returns the configured search path, relative entries taken
// from root, followed by the entries of NATIVEBUILD_PATH in environ.
func (c *Config) SearchPath(root string, environ []string) []string {
	var out []string
	for _, dir := range c.Dependency.SearchPath {
		out = append(out, abs(root, dir))
	}
	if list, ok := env.Lookup(environ, SearchPathEnv); ok {
		out = append(out, env.SplitList(list)...)
	}
	return out
}

// Orchestrator builds the native orchestrator for the project in root.
func (c *Config) Orchestrator(root string, environ []string) *native.Orchestrator {
	d := c.Dependency
	return &native.Orchestrator{
		Resolver: &depres.Resolver{
			SearchPath:   c.SearchPath(root, environ),
			RequireExist: d.RequireExist,
		},
		Dependency: native.Dependency{
			Package: d.Package,
			Vars: []native.PathVar{
				{Name: d.IncludeVar, Kind: depres.IncludeDir, Path: d.IncludePath},
				{Name: d.LibVar, Kind: depres.LibDir, Path: d.LibPath},
				{Name: d.LibFileVar, Kind: depres.LibFile, Path: d.LibFilePath},
			},
		},
		NativeDir:    abs(root, c.NativeDir),
		DestDir:      abs(root, c.DestDir),
		ArtifactBase: c.ArtifactBase,
		Program:      c.Toolchain.Program,
		Environ:      func() []string { return environ },
	}
}

func abs(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}
