// SPDX-License-Identifier: Unlicense OR MIT

package registry

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func loadTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := Load("testdata/gl.xml")
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func names(cmds []*Command) []string {
	var n []string
	for _, c := range cmds {
		n = append(n, c.Name())
	}
	return n
}

func TestDecode(t *testing.T) {
	r := loadTestRegistry(t)
	if got, exp := len(r.Commands), 12; got != exp {
		t.Errorf("expected %d commands got %d", exp, got)
	}
	c := r.Command("glClear")
	if c == nil {
		t.Fatal("glClear missing")
	}
	if diff := cmp.Diff([]GlxProto{{Type: "render", Opcode: "127"}}, c.Glx); diff != "" {
		t.Errorf("glx (-want +got):\n%s", diff)
	}
	if v := r.Command("glVertex2f").VecEquiv.Name; v != "glVertex2fv" {
		t.Errorf("expected vecequiv glVertex2fv got %q", v)
	}
	if r.Command("glMissing") != nil {
		t.Error("unexpected command")
	}
	if e := r.Enum("GL_TIMEOUT_IGNORED"); e == nil || e.Type != "ull" {
		t.Errorf("unexpected enum %+v", e)
	}
	var exts []string
	for _, e := range r.Extensions {
		exts = append(exts, e.Name)
	}
	expExts := []string{"GL_ARB_geometry_shader4", "GL_EXT_geometry_shader4", "GL_NV_geometry_program4", "GL_OES_texture_3D"}
	if diff := cmp.Diff(expExts, exts); diff != "" {
		t.Errorf("extensions (-want +got):\n%s", diff)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []string{
		"<registry><commands><command><proto>void</proto></command></commands></registry>",
		"<registry><commands>",
	}
	for _, src := range tests {
		if _, err := Decode(strings.NewReader(src)); err == nil {
			t.Errorf("expected error for %q", src)
		}
	}
}

func TestCType(t *testing.T) {
	r := loadTestRegistry(t)
	tests := []struct {
		decl ProtoOrParam
		exp  string
	}{
		{r.Command("glGenTextures").Params[1], "GLuint *"},
		{r.Command("glShaderSource").Params[2], "const GLchar *const*"},
		{r.Command("glGetString").Proto, "const GLubyte *"},
		{r.Command("glClear").Proto, "void"},
		{r.Command("glBufferData").Params[2], "const void *"},
	}
	for _, test := range tests {
		if got := test.decl.CType(); got != test.exp {
			t.Errorf("%s: expected %q got %q", test.decl.Name, test.exp, got)
		}
	}
}

func TestAliases(t *testing.T) {
	r := loadTestRegistry(t)
	tests := []struct {
		cmd string
		exp []string
	}{
		{"glFramebufferTextureFaceARB", []string{"glFramebufferTextureFaceEXT"}},
		{"glFramebufferTextureFaceEXT", []string{"glFramebufferTextureFaceARB"}},
		{"glClear", nil},
	}
	for _, test := range tests {
		got := names(r.Aliases(r.Command(test.cmd)))
		if diff := cmp.Diff(test.exp, got); diff != "" {
			t.Errorf("%s (-want +got):\n%s", test.cmd, diff)
		}
	}
}

func TestRequiredBy(t *testing.T) {
	r := loadTestRegistry(t)
	gl := []string{"gl", "glcore"}
	tests := []struct {
		name string
		apis []string
		exp  []Requirement
	}{
		{"glFramebufferTextureFaceARB", gl, []Requirement{
			{Name: "GL_ARB_geometry_shader4", API: "gl|glcore", Extension: true},
			{Name: "GL_NV_geometry_program4", API: "gl", Extension: true},
		}},
		{"glBindTexture", gl, []Requirement{{Name: "GL_VERSION_1_1", API: "gl"}}},
		{"glBindTexture", []string{"gles2"}, []Requirement{
			{Name: "GL_OES_texture_3D", API: "gles1|gles2", Extension: true},
		}},
		{"GL_FRAMEBUFFER_INCOMPLETE_LAYER_COUNT_ARB", gl, []Requirement{
			{Name: "GL_ARB_geometry_shader4", API: "gl|glcore", Extension: true},
			{Name: "GL_EXT_geometry_shader4", API: "gl", Extension: true},
		}},
		{"glClear", []string{"gles2"}, []Requirement{{Name: "GL_ES_VERSION_2_0", API: "gles2"}}},
		{"glUnknown", gl, nil},
	}
	for _, test := range tests {
		got := r.RequiredBy(test.name, test.apis)
		if diff := cmp.Diff(test.exp, got); diff != "" {
			t.Errorf("%s %v (-want +got):\n%s", test.name, test.apis, diff)
		}
	}
	removed := r.RemovedBy("glVertex2f", gl)
	exp := []Requirement{{Name: "GL_VERSION_3_2", API: "gl", Profile: "core"}}
	if diff := cmp.Diff(exp, removed); diff != "" {
		t.Errorf("removed (-want +got):\n%s", diff)
	}
}

func TestGroups(t *testing.T) {
	r := loadTestRegistry(t)
	for _, g := range []string{"TextureTarget", "AttribMask", "ClearBufferMask", "Boolean", "StringName"} {
		if !r.HasGroup(g) {
			t.Errorf("expected group %s", g)
		}
	}
	if r.HasGroup("BufferSize") {
		t.Error("BufferSize has no enumerants and is not a group")
	}
}

func TestEnumFor(t *testing.T) {
	r := loadTestRegistry(t)
	if e := r.Enum("GL_FRAGMENT_SHADER"); e.API != "gles2" {
		t.Errorf("expected first declaration, got %+v", e)
	}
	if e := r.EnumFor("GL_FRAGMENT_SHADER", []string{"gl"}); e == nil || e.API != "" {
		t.Errorf("expected untagged declaration, got %+v", e)
	}
	if e := r.EnumFor("GL_NOPE", []string{"gl"}); e != nil {
		t.Errorf("unexpected %+v", e)
	}
}

func TestExtensionPostfix(t *testing.T) {
	r := loadTestRegistry(t)
	if diff := cmp.Diff([]string{"ARB", "EXT", "NV", "OES"}, r.ExtensionVendors()); diff != "" {
		t.Errorf("vendors (-want +got):\n%s", diff)
	}
	tests := map[string]string{
		"glFramebufferTextureFaceARB": "ARB",
		"glFramebufferTextureFaceEXT": "EXT",
		"glClear":                     "",
		"NV":                          "",
	}
	for name, exp := range tests {
		if got := r.ExtensionPostfix(name); got != exp {
			t.Errorf("%s: expected %q got %q", name, exp, got)
		}
	}
}
