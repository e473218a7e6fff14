package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newLibraryCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Inspect reader libraries",
	}
	cmd.AddCommand(newLibraryShowCmd(g))
	return cmd
}

func newLibraryShowCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <username>",
		Short: "Show a user's library with book details",
		Args:  cobra.ExactArgs(1),
		RunE: g.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			username := args[0]
			out := cmd.OutOrStdout()

			items, err := a.query.LibraryWithDetails(cmd.Context(), username)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintf(out, "%s has no books.\n", username)
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "BOOK\tTITLE\tREAD\tRATING\tADDED")
			for _, it := range items {
				rating := "-"
				if it.Rating != nil {
					rating = strconv.Itoa(*it.Rating)
				}
				fmt.Fprintf(tw, "%d\t%s\t%t\t%s\t%s\n",
					it.BookID, it.Book.Title, it.IsRead, rating, it.AddedAt.Format("2006-01-02"))
			}
			return tw.Flush()
		}),
	}
}
