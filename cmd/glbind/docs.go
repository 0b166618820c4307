// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"gioui.org/glbind/internal/gen"
	"gioui.org/glbind/registry"
)

func newDocCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doc <command>",
		Short: "Print the generated documentation of a command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := o.dtdCache()
			if err != nil {
				return err
			}
			g := gen.New(o.cfg, o.docs(cache), nil)
			symbol := args[0]
			for _, spec := range o.cfg.Registry {
				reg, err := registry.Load(o.cfg.Resolve(spec.Path))
				if os.IsNotExist(errors.Cause(err)) {
					log.WithField("registry", spec.Name).Debug("Registry file missing, skipping")
					continue
				}
				if err != nil {
					return err
				}
				if reg.Command(symbol) == nil {
					continue
				}
				text, err := g.Document(spec, reg, symbol)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), text)
				return nil
			}
			return errors.Errorf("unknown command %s", symbol)
		},
	}
	cmd.Flags().AddFlagSet(o.docsFlags())
	return cmd
}
