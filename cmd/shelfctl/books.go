package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shelfkeeper/shelfkeeper-server/internal/domain"
	"github.com/shelfkeeper/shelfkeeper-server/internal/store"
)

func newBooksCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Inspect the catalog",
	}
	cmd.AddCommand(newBooksListCmd(g), newBooksSearchCmd(g))
	return cmd
}

func newBooksListCmd(g *globalFlags) *cobra.Command {
	var skip, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog books in id order",
		Args:  cobra.NoArgs,
		RunE: g.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			ctx := cmd.Context()
			books, err := a.catalog.List(ctx, skip, limit)
			if err != nil {
				return err
			}
			total, err := a.catalog.Count(ctx)
			if err != nil {
				return err
			}

			if err := printBooks(cmd.OutOrStdout(), books); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d books\n", len(books), total)
			return nil
		}),
	}

	cmd.Flags().IntVar(&skip, "skip", 0, "Books to skip")
	cmd.Flags().IntVar(&limit, "limit", store.DefaultPageLimit, "Maximum books to show")
	return cmd
}

func newBooksSearchCmd(g *globalFlags) *cobra.Command {
	var filter domain.BookFilter

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Case-insensitive substring search on title, author and genre",
		Args:  cobra.NoArgs,
		RunE: g.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			books, err := a.catalog.Search(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(books) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching books.")
				return nil
			}
			return printBooks(cmd.OutOrStdout(), books)
		}),
	}

	cmd.Flags().StringVar(&filter.Title, "title", "", "Title contains")
	cmd.Flags().StringVar(&filter.Author, "author", "", "Author contains")
	cmd.Flags().StringVar(&filter.Genre, "genre", "", "Genre contains")
	return cmd
}

func printBooks(w io.Writer, books []*domain.Book) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tYEAR\tGENRE\tAVAILABLE")
	for _, b := range books {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%t\n", b.ID, b.Title, b.Author, b.Year, b.Genre, b.IsAvailable)
	}
	return tw.Flush()
}
