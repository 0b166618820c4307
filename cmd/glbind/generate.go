// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"gioui.org/glbind/internal/gen"
	"gioui.org/glbind/internal/manpage"
)

func newGenerateCommand(o *options) *cobra.Command {
	var (
		out  string
		only []string
		wrap int
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the binding packages of the configured registries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out != "" {
				abs, err := filepath.Abs(out)
				if err != nil {
					return err
				}
				o.cfg.OutDir = abs
			}
			if cmd.Flags().Changed("wrap") {
				o.cfg.WrapWidth = wrap
			}
			if err := o.cfg.Validate(); err != nil {
				return err
			}
			cache, err := o.dtdCache()
			if err != nil {
				return err
			}
			st, err := gen.New(o.cfg, o.docs(cache), nil).Run(only)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d commands, %d enumerants in %d files; documented by GL4 %d, GL2 %d, stub %d\n",
				st.Commands, st.Enums, st.Files, st.Docs[manpage.GL4], st.Docs[manpage.GL2], st.Docs[manpage.Stub])
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&out, "out", "o", "", "output `directory`, overriding out_dir")
	fs.StringSliceVar(&only, "only", nil, "generate the named registries only, e.g. gl,egl")
	fs.IntVar(&wrap, "wrap", 120, "documentation wrap `width`, overriding wrap_width")
	fs.AddFlagSet(o.docsFlags())
	return cmd
}
