// SPDX-License-Identifier: Unlicense OR MIT

// Command glbind generates Go bindings for the Khronos OpenGL, EGL, GLX and
// WGL API registries.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"gioui.org/glbind/internal/config"
	"gioui.org/glbind/internal/dtd"
	"gioui.org/glbind/internal/gen"
	"gioui.org/glbind/internal/logging"
	"gioui.org/glbind/internal/manpage"
	"gioui.org/glbind/registry"
)

var log = logging.DefaultLogger.WithField(logging.LogSubsys, "glbind")

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "glbind: %v\n", err)
		os.Exit(1)
	}
}

// options are the settings shared by the subcommands.
type options struct {
	configPath string
	logLevel   string
	offline    bool

	cfg *config.Config
}

func newRootCommand() *cobra.Command {
	o := new(options)
	root := &cobra.Command{
		Use:           "glbind",
		Short:         "Generate Go bindings from the Khronos API registries",
		Long:          mainUsage,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return o.load()
		},
	}
	fs := root.PersistentFlags()
	fs.StringVar(&o.configPath, "config", config.DefaultPath, "configuration `file`, defaults apply when it is missing")
	fs.StringVar(&o.logLevel, "log-level", "info", "log `level`: trace, debug, info, warn or error")
	root.AddCommand(
		newGenerateCommand(o),
		newDocCommand(o),
		newDTDCommand(o),
		newConfigCommand(o),
	)
	return root
}

func (o *options) load() error {
	if err := logging.SetLevel(o.logLevel); err != nil {
		return err
	}
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}

// docsFlags returns the flags of the subcommands reading reference pages.
func (o *options) docsFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("docs", pflag.ContinueOnError)
	fs.BoolVar(&o.offline, "offline", false, "never download DTDs, use the cached copies only")
	return fs
}

func (o *options) dtdCache() (*dtd.Cache, error) {
	d := o.cfg.Docs
	return dtd.New(o.cfg.Resolve(d.DTDDir),
		dtd.WithRetries(d.Retries),
		dtd.WithTimeout(d.Timeout.Duration),
		dtd.WithOffline(d.Offline || o.offline),
	)
}

// docs returns the reference page resolver factory of the generator.
func (o *options) docs(cache *dtd.Cache) gen.DocsFunc {
	return func(reg *registry.Registry) (gen.DocSource, error) {
		r, err := manpage.NewResolver(manpage.Options{
			GL4Dir:    o.cfg.Resolve(o.cfg.Docs.GL4Dir),
			GL2Dir:    o.cfg.Resolve(o.cfg.Docs.GL2Dir),
			DTD:       cache,
			WrapWidth: o.cfg.WrapWidth,
			Namer:     gen.Namer{},
			Postfix:   reg.ExtensionPostfix,
			CacheSize: o.cfg.Docs.CacheSize,
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}
