package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fdg312/calorie-diary/internal/diary"
	"github.com/fdg312/calorie-diary/internal/entries"
	"github.com/fdg312/calorie-diary/internal/lookup"
)

func newLookupCmd(a *app) *cobra.Command {
	var grams float64
	var add bool
	var date string

	cmd := &cobra.Command{
		Use:   "lookup <barcode>",
		Short: "Look up a barcode on Open Food Facts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.lookup.Lookup(cmd.Context(), args[0], grams)
			switch {
			case errors.Is(err, lookup.ErrGramsRequired):
				return fmt.Errorf("%s lists %.0f kcal per 100g; pass --grams", c.Name, *c.KcalPer100g)
			case errors.Is(err, lookup.ErrNotFound):
				return fmt.Errorf("product %s not found", lookup.DigitsOnly(args[0]))
			case errors.Is(err, lookup.ErrMissingNutritionData):
				return fmt.Errorf("%s has no calorie data", c.Name)
			case err != nil:
				return err
			}

			basis := "per serving"
			if c.Basis == "100g" {
				basis = fmt.Sprintf("for %.0fg", c.Grams)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d kcal %s (P %dg | C %dg | F %dg)\n",
				c.Name, c.Calories, basis, c.Protein, c.Carbs, c.Fat)

			if !add {
				return nil
			}
			draft := diary.EntryDraft{Name: c.Name, Calories: c.Calories, Protein: c.Protein, Carbs: c.Carbs, Fat: c.Fat}
			entry, err := entries.NewService(a.registry).AddEntry(cmd.Context(), owner, date, draft)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%d kcal) [%s]\n", entry.Name, entry.Calories, shortID(entry.ID))
			return nil
		},
	}
	cmd.Flags().Float64Var(&grams, "grams", 0, "Portion in grams (for per-100g products)")
	cmd.Flags().BoolVar(&add, "add", false, "Log the product as an entry")
	cmd.Flags().StringVar(&date, "date", "today", "Date YYYY-MM-DD used with --add")
	return cmd
}
