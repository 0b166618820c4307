// SPDX-License-Identifier: Unlicense OR MIT

package gen

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	// EGL_CAST(EGLint,-1)
	eglCastRe = regexp.MustCompile(`^EGL_CAST\(\s*[\w ]+\*?\s*,\s*(.+?)\s*\)$`)
	// ((EGLint)-1)
	cCastRe = regexp.MustCompile(`^\(\s*\(\s*[\w ]+\*?\s*\)\s*(.+?)\s*\)$`)
)

// enumValue returns the Go literal of a registry enumerant value.
func enumValue(value string) (string, error) {
	v := strings.TrimSpace(value)
	if m := eglCastRe.FindStringSubmatch(v); m != nil {
		v = m[1]
	} else if m := cCastRe.FindStringSubmatch(v); m != nil {
		v = m[1]
	}
	v = strings.TrimRight(v, "uUlL")
	if v == "" {
		return "", errors.Errorf("invalid value %q", value)
	}
	if _, err := strconv.ParseInt(v, 0, 64); err == nil {
		return v, nil
	}
	if _, err := strconv.ParseUint(v, 0, 64); err == nil {
		return v, nil
	}
	return "", errors.Errorf("invalid value %q", value)
}
