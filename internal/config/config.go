// SPDX-License-Identifier: Unlicense OR MIT

// Package config loads the glbind TOML configuration.
package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "glbind.toml"

type Config struct {
	// OutDir receives one directory per registry package.
	OutDir string `toml:"out_dir"`
	// WrapWidth is the column parameter documentation is wrapped at.
	WrapWidth int        `toml:"wrap_width"`
	Docs      Docs       `toml:"docs"`
	Registry  []Registry `toml:"registry"`
	// Types overrides or extends the C to Go type table.
	Types map[string]string `toml:"types"`

	// dir is the directory relative paths resolve against.
	dir string
}

// Docs locates the reference pages and the DTD cache.
type Docs struct {
	GL4Dir    string   `toml:"gl4_dir"`
	GL2Dir    string   `toml:"gl2_dir"`
	DTDDir    string   `toml:"dtd_dir"`
	Offline   bool     `toml:"offline"`
	Retries   int      `toml:"retries"`
	Timeout   Duration `toml:"timeout"`
	CacheSize int      `toml:"cache_size"`
}

// Registry describes one Khronos registry and the package generated from it.
type Registry struct {
	// Name is the generated package name.
	Name string `toml:"name"`
	Path string `toml:"path"`
	// Prefix is stripped from command names, e.g. "gl" or "glX".
	Prefix string `toml:"prefix"`
	// APIs selects the feature and extension APIs to emit.
	APIs []string `toml:"apis"`
	// ProcAddress names the loader entry point used for symbols
	// the library does not export.
	ProcAddress string `toml:"proc_address"`
	// Libraries lists the shared libraries to try, per GOOS.
	Libraries map[string][]string `toml:"libraries"`
}

// Duration is a time.Duration written as a string such as "1s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration for the four Khronos registries
// laid out in the current directory.
func Default() *Config {
	return &Config{
		OutDir:    "out",
		WrapWidth: 120,
		Docs: Docs{
			GL4Dir:    "GLMan_GL4",
			GL2Dir:    "GLMan_GL2",
			DTDDir:    "GLMan_DTD",
			Retries:   3,
			Timeout:   Duration{time.Second},
			CacheSize: 512,
		},
		Registry: []Registry{
			{
				Name:        "gl",
				Path:        "gl.xml",
				Prefix:      "gl",
				APIs:        []string{"gl", "glcore"},
				ProcAddress: "glXGetProcAddressARB",
				Libraries: map[string][]string{
					"linux":   {"libGL.so.1", "libGL.so"},
					"freebsd": {"libGL.so.1", "libGL.so"},
					"darwin":  {"/System/Library/Frameworks/OpenGL.framework/OpenGL"},
					"windows": {"opengl32.dll"},
				},
			},
			{
				Name:        "egl",
				Path:        "egl.xml",
				Prefix:      "egl",
				APIs:        []string{"egl"},
				ProcAddress: "eglGetProcAddress",
				Libraries: map[string][]string{
					"linux":   {"libEGL.so.1", "libEGL.so"},
					"freebsd": {"libEGL.so.1", "libEGL.so"},
					"android": {"libEGL.so"},
					"windows": {"libEGL.dll"},
				},
			},
			{
				Name:        "glx",
				Path:        "glx.xml",
				Prefix:      "glX",
				APIs:        []string{"glx"},
				ProcAddress: "glXGetProcAddressARB",
				Libraries: map[string][]string{
					"linux":   {"libGL.so.1", "libGL.so"},
					"freebsd": {"libGL.so.1", "libGL.so"},
				},
			},
			{
				Name:        "wgl",
				Path:        "wgl.xml",
				Prefix:      "wgl",
				APIs:        []string{"wgl"},
				ProcAddress: "wglGetProcAddress",
				Libraries: map[string][]string{
					"windows": {"opengl32.dll"},
				},
			},
		},
	}
}

// Load decodes the configuration at path on top of Default. Relative
// paths in the file resolve against the file's directory.
func Load(path string) (*Config, error) {
	c := Default()
	c.Registry = nil
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, errors.Wrapf(err, "config: %s", path)
	}
	if !md.IsDefined("registry") {
		c.Registry = Default().Registry
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, errors.Errorf("config: %s: unknown key %s", path, undec[0])
	}
	c.dir = filepath.Dir(path)
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config: %s", path)
	}
	return c, nil
}

// LoadOrDefault is Load, except that a missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		c := Default()
		c.dir = filepath.Dir(path)
		return c, nil
	}
	return Load(path)
}

func (c *Config) Validate() error {
	if c.WrapWidth <= 0 {
		return errors.Errorf("wrap_width must be positive, got %d", c.WrapWidth)
	}
	if c.Docs.Retries < 1 {
		return errors.Errorf("docs.retries must be at least 1, got %d", c.Docs.Retries)
	}
	if c.Docs.CacheSize < 1 {
		return errors.Errorf("docs.cache_size must be at least 1, got %d", c.Docs.CacheSize)
	}
	seen := make(map[string]bool)
	for i, r := range c.Registry {
		switch {
		case r.Name == "":
			return errors.Errorf("registry %d: missing name", i)
		case r.Path == "":
			return errors.Errorf("registry %s: missing path", r.Name)
		case len(r.APIs) == 0:
			return errors.Errorf("registry %s: no apis selected", r.Name)
		case seen[r.Name]:
			return errors.Errorf("registry %s: defined twice", r.Name)
		}
		seen[r.Name] = true
	}
	return nil
}

// Resolve returns path made absolute against the configuration directory.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.dir, path)
}

// Lookup returns the registry named name.
func (c *Config) Lookup(name string) (Registry, bool) {
	for _, r := range c.Registry {
		if r.Name == name {
			return r, true
		}
	}
	return Registry{}, false
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
