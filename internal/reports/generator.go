package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/fdg312/calorie-diary/internal/diary"
	"github.com/jung-kurt/gofpdf"
)

// ReportData is the diary slice a report is rendered from.
type ReportData struct {
	From    string
	To      string
	Goal    diary.Goal
	Streak  int
	Summary diary.RangeSummary
}

// Generator renders PDF/CSV reports
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders data in the requested format
func (g *Generator) Generate(format string, data ReportData) ([]byte, error) {
	switch format {
	case FormatPDF:
		return g.generatePDF(data)
	case FormatCSV:
		return g.generateCSV(data)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

var csvHeader = []string{"date", "cals", "protein_g", "carbs_g", "fat_g", "entries", "goal_cals", "over_goal"}

// generateCSV writes one row per day of the range, empty days included.
func (g *Generator) generateCSV(data ReportData) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, day := range data.Summary.Days {
		row := []string{
			day.Date,
			strconv.Itoa(day.Totals.Calories),
			strconv.Itoa(day.Totals.Protein),
			strconv.Itoa(day.Totals.Carbs),
			strconv.Itoa(day.Totals.Fat),
			strconv.Itoa(day.Totals.Count),
			strconv.Itoa(data.Goal.Calories),
			strconv.FormatBool(day.OverGoal),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// generatePDF uses the core Helvetica font, so all text stays in Latin-1.
func (g *Generator) generatePDF(data ReportData) ([]byte, error) {
	const fontName = "Arial"

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Calorie Report", false)
	pdf.AddPage()

	pdf.SetFont(fontName, "B", 16)
	pdf.Cell(0, 10, "Calorie Report")
	pdf.Ln(8)

	pdf.SetFont(fontName, "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s - %s", data.From, data.To))
	pdf.Ln(12)

	sum := data.Summary
	pdf.SetFont(fontName, "B", 14)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	pdf.SetFont(fontName, "", 10)
	lines := []string{
		fmt.Sprintf("Daily goal: %d kcal", data.Goal.Calories),
		fmt.Sprintf("Days logged: %d of %d", sum.DaysLogged, len(sum.Days)),
		fmt.Sprintf("Average per logged day: %s", formatAverage(sum)),
		fmt.Sprintf("Days over goal: %d", sum.DaysOverGoal),
		fmt.Sprintf("Total: %d kcal, P %dg, C %dg, F %dg", sum.Total.Calories, sum.Total.Protein, sum.Total.Carbs, sum.Total.Fat),
		fmt.Sprintf("Current streak: %d days", data.Streak),
	}
	for _, line := range lines {
		pdf.Cell(0, 6, line)
		pdf.Ln(5)
	}
	pdf.Ln(7)

	pdf.SetFont(fontName, "B", 14)
	pdf.Cell(0, 8, "Days")
	pdf.Ln(8)

	g.drawDaysTable(pdf, data)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return buf.Bytes(), nil
}

// drawDaysTable lists logged days only; empty days would only pad the table.
func (g *Generator) drawDaysTable(pdf *gofpdf.Fpdf, data ReportData) {
	pdf.SetFont("Arial", "B", 8)
	headers := []struct {
		title string
		width float64
	}{
		{"Date", 28}, {"Kcal", 22}, {"Protein", 22}, {"Carbs", 22}, {"Fat", 22}, {"Entries", 20}, {"Over goal", 22},
	}
	for i, h := range headers {
		ln := 0
		if i == len(headers)-1 {
			ln = 1
		}
		pdf.CellFormat(h.width, 6, h.title, "1", ln, "C", false, 0, "")
	}

	pdf.SetFont("Arial", "", 8)
	for _, day := range data.Summary.Days {
		if day.Totals.Count == 0 {
			continue
		}
		over := ""
		if day.OverGoal {
			over = "yes"
		}
		cells := []string{
			day.Date,
			strconv.Itoa(day.Totals.Calories),
			strconv.Itoa(day.Totals.Protein),
			strconv.Itoa(day.Totals.Carbs),
			strconv.Itoa(day.Totals.Fat),
			strconv.Itoa(day.Totals.Count),
			over,
		}
		for i, c := range cells {
			ln := 0
			if i == len(cells)-1 {
				ln = 1
			}
			pdf.CellFormat(headers[i].width, 6, c, "1", ln, "C", false, 0, "")
		}
	}
}

func formatAverage(sum diary.RangeSummary) string {
	if sum.DaysLogged == 0 {
		return "No data"
	}
	return fmt.Sprintf("%d kcal", sum.AvgCalories)
}
