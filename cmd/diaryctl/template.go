package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fdg312/calorie-diary/internal/diary"
	"github.com/fdg312/calorie-diary/internal/templates"
)

func newTemplateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"tpl"},
		Short:   "Manage saved food templates",
	}
	cmd.AddCommand(
		newTemplateListCmd(a),
		newTemplateAddCmd(a),
		newTemplateApplyCmd(a),
		newTemplateRmCmd(a),
	)
	return cmd
}

func newTemplateListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [query]",
		Short: "List templates, optionally filtered by name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := templates.NewService(a.registry).List(cmd.Context(), owner, optionalArg(args, ""))
			if err != nil {
				return describe(err)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No templates")
				return nil
			}
			for _, t := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s  %-30s %5d kcal\n", shortID(t.ID), t.Name, t.Calories)
			}
			return nil
		},
	}
}

func newTemplateAddCmd(a *app) *cobra.Command {
	var protein, carbs, fat int

	cmd := &cobra.Command{
		Use:   "add <name> <calories>",
		Short: "Save a template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cals, err := parseCalories(args[1])
			if err != nil {
				return err
			}
			req := templates.TemplateRequest{Name: args[0], Calories: cals, Protein: protein, Carbs: carbs, Fat: fat}
			t, err := templates.NewService(a.registry).Create(cmd.Context(), owner, req)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved template %s (%d kcal) [%s]\n", t.Name, t.Calories, shortID(t.ID))
			return nil
		},
	}
	cmd.Flags().IntVar(&protein, "protein", 0, "Protein grams")
	cmd.Flags().IntVar(&carbs, "carbs", 0, "Carbs grams")
	cmd.Flags().IntVar(&fat, "fat", 0, "Fat grams")
	return cmd
}

func newTemplateApplyCmd(a *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "apply <template-id|name>",
		Short: "Log a template as an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := templates.NewService(a.registry)
			id, err := resolveTemplate(cmd, svc, args[0])
			if err != nil {
				return err
			}
			resp, err := svc.Apply(cmd.Context(), owner, id, date)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%d kcal) on %s\n", resp.Entry.Name, resp.Entry.Calories, resp.Date)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Date YYYY-MM-DD (default today)")
	return cmd
}

func newTemplateRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <template-id|name>",
		Short: "Delete a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := templates.NewService(a.registry)
			id, err := resolveTemplate(cmd, svc, args[0])
			if err != nil {
				return err
			}
			if err := svc.Delete(cmd.Context(), owner, id); err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted template %s\n", shortID(id))
			return nil
		},
	}
}

// resolveTemplate accepts an id prefix or an exact (case-insensitive) name.
func resolveTemplate(cmd *cobra.Command, svc *templates.Service, ref string) (string, error) {
	list, err := svc.List(cmd.Context(), owner, "")
	if err != nil {
		return "", describe(err)
	}
	ref = strings.TrimSpace(ref)
	var byID []diary.Template
	for _, t := range list {
		if strings.EqualFold(t.Name, ref) {
			return t.ID, nil
		}
		if ref != "" && strings.HasPrefix(t.ID, ref) {
			byID = append(byID, t)
		}
	}
	switch len(byID) {
	case 0:
		return "", fmt.Errorf("no template matches %q", ref)
	case 1:
		return byID[0].ID, nil
	default:
		return "", fmt.Errorf("template %q is ambiguous", ref)
	}
}
