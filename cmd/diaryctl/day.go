package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fdg312/calorie-diary/internal/diary"
	"github.com/fdg312/calorie-diary/internal/entries"
)

func newDayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "day [YYYY-MM-DD]",
		Short: "Show a day's entries and goal progress (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := entries.NewService(a.registry).Day(cmd.Context(), owner, optionalArg(args, "today"))
			if err != nil {
				return describe(err)
			}
			printDay(cmd.OutOrStdout(), view, a.registry.Policy())
			return nil
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	var date string
	var protein, carbs, fat int

	cmd := &cobra.Command{
		Use:   "add <name> <calories>",
		Short: "Log a food entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cals, err := parseCalories(args[1])
			if err != nil {
				return err
			}
			draft := diary.EntryDraft{Name: args[0], Calories: cals, Protein: protein, Carbs: carbs, Fat: fat}
			entry, err := entries.NewService(a.registry).AddEntry(cmd.Context(), owner, date, draft)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%d kcal) [%s]\n", entry.Name, entry.Calories, shortID(entry.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "today", "Date YYYY-MM-DD")
	cmd.Flags().IntVar(&protein, "protein", 0, "Protein grams")
	cmd.Flags().IntVar(&carbs, "carbs", 0, "Carbs grams")
	cmd.Flags().IntVar(&fat, "fat", 0, "Fat grams")
	return cmd
}

func newRmCmd(a *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "rm <entry-id>",
		Short: "Delete an entry (an id prefix is enough)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := entries.NewService(a.registry)
			view, err := svc.Day(cmd.Context(), owner, date)
			if err != nil {
				return describe(err)
			}
			id, err := matchEntryID(view.Entries, args[0])
			if err != nil {
				return err
			}
			if err := svc.DeleteEntry(cmd.Context(), owner, view.Date, id); err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", shortID(id))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "today", "Date YYYY-MM-DD")
	return cmd
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear [YYYY-MM-DD]",
		Short: "Remove every entry of a day (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := entries.NewService(a.registry).ClearDay(cmd.Context(), owner, optionalArg(args, "today"))
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", view.Date)
			return nil
		},
	}
}

func printDay(w io.Writer, view entries.DayView, policy diary.Policy) {
	fmt.Fprintf(w, "%s (%s)\n", view.Label, view.Date)
	if len(view.Entries) == 0 {
		fmt.Fprintln(w, "  no entries")
	}
	for _, e := range view.Entries {
		fmt.Fprintf(w, "  %-8s  %-30s %5d kcal\n", shortID(e.ID), e.Name, e.Calories)
	}
	fmt.Fprintf(w, "Total: %d / %d kcal\n", view.Totals.Calories, view.Goal.Calories)
	if policy.AllowZeroCalories {
		fmt.Fprintf(w, "Macros: P %dg / %dg | C %dg / %dg | F %dg / %dg\n",
			view.Totals.Protein, view.Goal.Protein,
			view.Totals.Carbs, view.Goal.Carbs,
			view.Totals.Fat, view.Goal.Fat)
	}
	if view.OverGoal {
		fmt.Fprintf(w, "Over goal by %d kcal\n", view.Totals.Calories-view.Goal.Calories)
	} else {
		fmt.Fprintf(w, "Remaining: %d kcal\n", view.Remaining)
	}
}

func matchEntryID(list []diary.Entry, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	var found []string
	for _, e := range list {
		if strings.HasPrefix(e.ID, prefix) {
			found = append(found, e.ID)
		}
	}
	switch {
	case prefix == "" || len(found) == 0:
		return "", fmt.Errorf("no entry matches %q", prefix)
	case len(found) > 1:
		return "", fmt.Errorf("id prefix %q is ambiguous", prefix)
	}
	return found[0], nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
