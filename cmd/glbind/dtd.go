// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDTDCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dtd",
		Short: "Manage the DTD cache of the reference pages",
	}
	fetch := &cobra.Command{
		Use:   "fetch",
		Short: "Download the known DTDs into the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache, err := o.dtdCache()
			if err != nil {
				return err
			}
			if err := cache.Prefetch(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d documents in %s\n", len(cache.List()), cache.Dir())
			return nil
		},
	}
	fetch.Flags().AddFlagSet(o.docsFlags())
	list := &cobra.Command{
		Use:   "list",
		Short: "List the cached documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o.offline = true
			cache, err := o.dtdCache()
			if err != nil {
				return err
			}
			for _, name := range cache.List() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.AddCommand(fetch, list)
	return cmd
}
