// SPDX-License-Identifier: Unlicense OR MIT

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "glbind.toml", `
out_dir = "gen"
wrap_width = 80

[docs]
gl4_dir = "man4"
offline = true
timeout = "250ms"

[[registry]]
name = "gl"
path = "xml/gl.xml"
prefix = "gl"
apis = ["gles2"]
[registry.libraries]
linux = ["libGLESv2.so.2"]

[types]
GLhandleARB = "uint32"
`)
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.OutDir != "gen" || c.WrapWidth != 80 {
		t.Errorf("unexpected top-level values: %q %d", c.OutDir, c.WrapWidth)
	}
	if c.Docs.GL4Dir != "man4" || !c.Docs.Offline || c.Docs.Timeout.Duration != 250*time.Millisecond {
		t.Errorf("unexpected docs: %+v", c.Docs)
	}
	// Unset keys keep their defaults.
	if c.Docs.GL2Dir != "GLMan_GL2" || c.Docs.Retries != 3 {
		t.Errorf("defaults lost: %+v", c.Docs)
	}
	want := []Registry{{
		Name:      "gl",
		Path:      "xml/gl.xml",
		Prefix:    "gl",
		APIs:      []string{"gles2"},
		Libraries: map[string][]string{"linux": {"libGLESv2.so.2"}},
	}}
	if diff := cmp.Diff(want, c.Registry); diff != "" {
		t.Errorf("registry mismatch (-want +got):\n%s", diff)
	}
	if got, exp := c.Resolve("xml/gl.xml"), filepath.Join(filepath.Dir(path), "xml/gl.xml"); got != exp {
		t.Errorf("expected %q got %q", exp, got)
	}
	if c.Types["GLhandleARB"] != "uint32" {
		t.Errorf("type override missing: %v", c.Types)
	}
}

func TestLoadDefaultRegistries(t *testing.T) {
	c, err := Load(writeFile(t, "glbind.toml", "out_dir = \"x\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Registry) != 4 {
		t.Fatalf("expected the 4 default registries, got %d", len(c.Registry))
	}
	if _, ok := c.Lookup("wgl"); !ok {
		t.Error("wgl registry missing")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name, content, msg string
	}{
		{"unknown key", "bogus = 1\n", "unknown key"},
		{"wrap", "wrap_width = 0\n", "wrap_width"},
		{"duplicate", `
[[registry]]
name = "gl"
path = "a.xml"
apis = ["gl"]
[[registry]]
name = "gl"
path = "b.xml"
apis = ["gl"]
`, "defined twice"},
		{"apis", `
[[registry]]
name = "gl"
path = "a.xml"
`, "no apis"},
		{"timeout", "[docs]\ntimeout = \"soon\"\n", "config"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "c.toml", test.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), test.msg) {
				t.Errorf("expected %q in %q", test.msg, err)
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	c, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default().Registry, c.Registry); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Default().Encode(&buf); err != nil {
		t.Fatal(err)
	}
	c, err := Load(writeFile(t, "glbind.toml", buf.String()))
	if err != nil {
		t.Fatalf("%v\n%s", err, buf.String())
	}
	if c.Docs.Timeout.Duration != time.Second {
		t.Errorf("expected 1s timeout, got %v", c.Docs.Timeout)
	}
}
