package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fdg312/calorie-diary/internal/goals"
)

func newGoalCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Show the daily goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := goals.NewService(a.registry).Get(cmd.Context(), owner)
			if err != nil {
				return describe(err)
			}
			printGoal(cmd.OutOrStdout(), resp)
			return nil
		},
	}
	cmd.AddCommand(newGoalSetCmd(a), newGoalResetCmd(a))
	return cmd
}

func newGoalSetCmd(a *app) *cobra.Command {
	var protein, carbs, fat int

	cmd := &cobra.Command{
		Use:   "set <calories>",
		Short: "Set the daily calorie goal (and optionally macro goals)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cals, err := parseCalories(args[0])
			if err != nil {
				return err
			}
			req := goals.UpdateGoalRequest{Calories: &cals}
			if cmd.Flags().Changed("protein") {
				req.Protein = &protein
			}
			if cmd.Flags().Changed("carbs") {
				req.Carbs = &carbs
			}
			if cmd.Flags().Changed("fat") {
				req.Fat = &fat
			}
			resp, err := goals.NewService(a.registry).Update(cmd.Context(), owner, req)
			if err != nil {
				return describe(err)
			}
			printGoal(cmd.OutOrStdout(), resp)
			return nil
		},
	}
	cmd.Flags().IntVar(&protein, "protein", 0, "Protein goal grams")
	cmd.Flags().IntVar(&carbs, "carbs", 0, "Carbs goal grams")
	cmd.Flags().IntVar(&fat, "fat", 0, "Fat goal grams")
	return cmd
}

func newGoalResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := goals.NewService(a.registry).Reset(cmd.Context(), owner)
			if err != nil {
				return describe(err)
			}
			printGoal(cmd.OutOrStdout(), resp)
			return nil
		},
	}
}

func printGoal(w io.Writer, resp goals.GoalResponse) {
	fmt.Fprintf(w, "Goal: %d kcal\n", resp.Goal.Calories)
	if resp.Limits.TracksMacros {
		fmt.Fprintf(w, "Macros: P %dg | C %dg | F %dg\n", resp.Goal.Protein, resp.Goal.Carbs, resp.Goal.Fat)
	}
}
