package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shelfkeeper/shelfkeeper-server/internal/seed"
)

func newSeedCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo catalog into an empty store",
		Args:  cobra.NoArgs,
		RunE: g.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			out := cmd.OutOrStdout()
			res, err := seed.New(a.catalog, a.library, a.logger.Component("seed")).Run(cmd.Context())
			if err != nil {
				return err
			}

			if !res.Seeded {
				fmt.Fprintln(out, "Catalog already has books, nothing to do.")
				return nil
			}
			fmt.Fprintf(out, "Seeded %d books and %d library entries for %s.\n", res.Books, res.Entries, seed.DemoUsername)
			return nil
		}),
	}
}
