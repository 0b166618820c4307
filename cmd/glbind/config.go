// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newConfigCommand(o *options) *cobra.Command {
	var initFile bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !initFile {
				return o.cfg.Encode(cmd.OutOrStdout())
			}
			f, err := os.OpenFile(o.configPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
			if err != nil {
				return errors.Wrap(err, "config")
			}
			if err := o.cfg.Encode(f); err != nil {
				f.Close()
				return errors.Wrap(err, "config")
			}
			if err := f.Close(); err != nil {
				return errors.Wrap(err, "config")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", o.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&initFile, "init", false, "write the configuration to the --config file instead; it must not exist")
	return cmd
}
