package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fdg312/calorie-diary/internal/calendar"
	"github.com/fdg312/calorie-diary/internal/diary"
)

func newCalendarCmd(a *app) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show a month grid (* logged, ! over goal)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cursor, err := parseMonth(month)
			if err != nil {
				return err
			}
			resp, err := calendar.NewService(a.registry).Month(cmd.Context(), owner, cursor, "")
			if err != nil {
				return describe(err)
			}
			printCalendar(cmd.OutOrStdout(), resp)
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "Month YYYY-MM (default current)")
	return cmd
}

func newStreakCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "streak",
		Short: "Show consecutive logged days ending today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := calendar.NewService(a.registry).Streak(cmd.Context(), owner)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Streak: %d day(s)\n", resp.Streak)
			return nil
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show daily totals for recent days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := calendar.NewService(a.registry).History(cmd.Context(), owner, days)
			if err != nil {
				return describe(err)
			}
			for _, d := range resp.Days {
				mark := ""
				if d.OverGoal {
					mark = " over"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %5d kcal  %d item(s)%s\n", d.Date, d.Totals.Calories, d.Totals.Count, mark)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "Number of days (1-90)")
	return cmd
}

func parseMonth(raw string) (diary.MonthCursor, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return diary.MonthCursor{}, nil
	}
	year, month, ok := strings.Cut(raw, "-")
	if !ok {
		return diary.MonthCursor{}, fmt.Errorf("invalid --month %q (expected YYYY-MM)", raw)
	}
	y, yerr := strconv.Atoi(year)
	m, merr := strconv.Atoi(month)
	if yerr != nil || merr != nil {
		return diary.MonthCursor{}, fmt.Errorf("invalid --month %q (expected YYYY-MM)", raw)
	}
	return diary.MonthCursor{Year: y, Month: time.Month(m)}, nil
}

func printCalendar(w io.Writer, resp calendar.CalendarResponse) {
	fmt.Fprintln(w, resp.Label)
	fmt.Fprintln(w, " Su  Mo  Tu  We  Th  Fr  Sa")
	for i, c := range resp.Cells {
		if c.Blank {
			fmt.Fprint(w, "    ")
		} else {
			mark := " "
			switch {
			case c.OverGoal != nil && *c.OverGoal:
				mark = "!"
			case c.Count > 0:
				mark = "*"
			}
			fmt.Fprintf(w, " %2s%s", strings.TrimLeft(c.Date[8:], "0"), mark)
		}
		if i%7 == 6 {
			fmt.Fprintln(w)
		}
	}
	if len(resp.Cells)%7 != 0 {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Logged %d day(s), %d over goal, avg %d kcal\n",
		resp.Summary.DaysLogged, resp.Summary.DaysOverGoal, resp.Summary.AvgCalories)
}
