package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"library/internal/models"
	"library/internal/services"

	"github.com/spf13/cobra"
)

type titleAdder interface {
	AddTitle(ctx context.Context, actorID string, req services.NewTitleRequest) (models.Title, error)
}

var sampleCatalog = []services.NewTitleRequest{
	{Name: "Nineteen Eighty-Four", Author: "George Orwell", ISBN: "9780451524935", Publisher: "Signet Classic", Price: 999, CostPerDay: 50, Copies: 3},
	{Name: "Animal Farm", Author: "George Orwell", ISBN: "9780451526342", Publisher: "Signet Classic", Price: 799, CostPerDay: 40, Copies: 2},
	{Name: "The Art of War", Author: "Sun Tzu", ISBN: "9781590302255", Publisher: "Shambhala", Price: 1299, CostPerDay: 60, Copies: 1},
	{Name: "The Fellowship of the Ring", Author: "J.R.R. Tolkien", ISBN: "9780547928210", Publisher: "Mariner Books", Price: 1599, CostPerDay: 100, Copies: 4},
	{Name: "The Two Towers", Author: "J.R.R. Tolkien", ISBN: "9780547928203", Publisher: "Mariner Books", Price: 1599, CostPerDay: 100, Copies: 3},
	{Name: "The Return of the King", Author: "J.R.R. Tolkien", ISBN: "9780547928197", Publisher: "Mariner Books", Price: 1599, CostPerDay: 100, Copies: 3},
	{Name: "Romeo and Juliet", Author: "William Shakespeare", ISBN: "9780743477116", Publisher: "Simon & Schuster", Price: 699, CostPerDay: 30, Copies: 2},
	{Name: "The Three Musketeers", Author: "Alexandre Dumas", ISBN: "9780140449266", Publisher: "Penguin Classics", Price: 1850, CostPerDay: 80, Copies: 1},
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load a sample catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			added, err := seedCatalog(cmd.Context(), a.catalog, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d titles\n", added)
			return nil
		},
	}
}

// seedCatalog adds sampleCatalog. Titles whose ISBN already exists are
// skipped so the command can be rerun.
func seedCatalog(ctx context.Context, catalog titleAdder, out io.Writer) (int, error) {
	added := 0
	for _, req := range sampleCatalog {
		title, err := catalog.AddTitle(ctx, "", req)
		if errors.Is(err, services.ErrDuplicate) {
			fmt.Fprintf(out, "skip %s: already in catalog\n", req.Name)
			continue
		}
		if err != nil {
			return added, fmt.Errorf("seed %s: %w", req.Name, err)
		}
		fmt.Fprintf(out, "added %s (%d copies)\n", title.Name, req.Copies)
		added++
	}
	return added, nil
}
