// SPDX-License-Identifier: Unlicense OR MIT

package main

const mainUsage = `The glbind command generates Go bindings for the Khronos OpenGL, EGL, GLX and
WGL API registries.

Every configured registry becomes a Go package with one file per feature or
extension. A file declares the enumerants and, for every command, a function
variable resolved at run time, a typed wrapper calling it and, for commands
taking untyped data, a wrapper pinning Go values for the duration of the call.
The package procs.go loads the native library with Init, or resolves the
commands with a caller supplied loader through InitWith.

Wrappers are documented from the OpenGL reference pages: the GL4 pages are
tried first, then the GL2 pages, whose entities are resolved through a local
cache of their DTDs. Commands without a page get a generic comment.

The configuration is read from the --config file, glbind.toml by default.
Relative paths in it resolve against the directory of the file. When the file
does not exist, the defaults expect gl.xml, egl.xml, glx.xml and wgl.xml and the
GLMan_GL4, GLMan_GL2 and GLMan_DTD directories in the current directory. Use
"glbind config --init" to write the defaults for editing.

The generate command writes the packages. Its --out and --wrap flags override
out_dir and wrap_width, --only restricts the run to the named registries and
--offline disables DTD downloads.

The doc command prints the documentation and signature generated for a
command, for example "glbind doc glBindTexture".

The dtd fetch command downloads the well-known DocBook DTDs into the cache;
dtd list prints its contents.

The --log-level flag selects the logrus level of glbind. Programs using the
generated packages trace every native call after binding.SetLogLevel("trace").`
