package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

// Generator renders plan documents as PDF or CSV.
type Generator struct{}

// NewGenerator creates a new report generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders doc in the requested format.
func (g *Generator) Generate(doc PlanDocument, format string) ([]byte, error) {
	switch format {
	case FormatPDF:
		return g.generatePDF(doc)
	case FormatCSV:
		return g.generateCSV(doc)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, format)
	}
}

// generateCSV writes one row per group followed by the salad and total rows.
func (g *Generator) generateCSV(doc PlanDocument) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"group", "label", "allocated_kcal", "computed_portions", "checked_portions", "checked_kcal"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, gc := range doc.Check.Groups {
		computed := ""
		if n, ok := doc.Plan[gc.Group]; ok {
			computed = strconv.Itoa(n)
		}
		row := []string{
			strconv.Itoa(int(gc.Group)),
			gc.Group.Label(),
			formatKcal(doc.Allocation.Groups[gc.Group]),
			computed,
			formatPortions(gc.Portions),
			formatKcal(gc.Kcal),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	footer := [][]string{
		{"", "groups", "", "", "", formatKcal(doc.Check.GroupsKcal)},
		{"", "salad", "", "", "", formatKcal(doc.Check.SaladKcal)},
		{"", "total", "", "", "", strconv.Itoa(doc.Check.Total)},
	}
	if err := w.WriteAll(footer); err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// generatePDF renders a single A4 page with the inputs, the portion table
// and the checked totals.
func (g *Generator) generatePDF(doc PlanDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	fontName := "Arial"

	pdf.SetTitle(doc.Title, false)
	pdf.AddPage()

	pdf.SetFont(fontName, "B", 16)
	pdf.Cell(0, 10, doc.Title)
	pdf.Ln(10)

	pdf.SetFont(fontName, "", 9)
	pdf.Cell(0, 5, fmt.Sprintf("Plan %s, generated %s", doc.PlanID, doc.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC")))
	pdf.Ln(10)

	// Inputs
	in := doc.Allocation.Input
	pdf.SetFont(fontName, "B", 12)
	pdf.Cell(0, 8, "Inputs")
	pdf.Ln(8)
	pdf.SetFont(fontName, "", 10)
	lines := []string{
		fmt.Sprintf("Energy target: %s kcal", formatKcal(in.CaloriesKcal)),
		fmt.Sprintf("Body weight: %s kg", strconv.FormatFloat(in.WeightKg, 'f', -1, 64)),
		fmt.Sprintf("Carbs vs fats: %.2f   Group 5 vs 12: %.2f   Group 11 vs 13: %.2f", in.CarbVsFat, in.CarbSplit, in.FatSplit),
		fmt.Sprintf("Protein portions: %.2f (%s kcal)", doc.Allocation.ProteinPortions, formatKcal(doc.Allocation.ProteinKcal)),
		fmt.Sprintf("Remaining after protein and salad: %s kcal", formatKcal(doc.Allocation.RemainingKcal)),
	}
	for _, l := range lines {
		pdf.Cell(0, 6, l)
		pdf.Ln(5)
	}
	pdf.Ln(6)

	// Portions table
	pdf.SetFont(fontName, "B", 12)
	pdf.Cell(0, 8, "Portions")
	pdf.Ln(8)
	g.drawPortionsTable(pdf, doc, fontName)
	pdf.Ln(6)

	// Totals
	pdf.SetFont(fontName, "B", 12)
	pdf.Cell(0, 8, "Calorie check")
	pdf.Ln(8)
	pdf.SetFont(fontName, "", 10)
	pdf.CellFormat(50, 6, "Group calories", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, formatKcal(doc.Check.GroupsKcal), "1", 1, "R", false, 0, "")
	pdf.CellFormat(50, 6, "+ Salad", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, formatKcal(doc.Check.SaladKcal), "1", 1, "R", false, 0, "")
	pdf.SetFont(fontName, "B", 10)
	pdf.CellFormat(50, 6, "= Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, strconv.Itoa(doc.Check.Total), "1", 1, "R", false, 0, "")

	if doc.Edited != nil {
		pdf.Ln(4)
		pdf.SetFont(fontName, "I", 9)
		pdf.Cell(0, 5, "Totals reflect the edited portions.")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return buf.Bytes(), nil
}

// drawPortionsTable draws one row per group in ascending order.
func (g *Generator) drawPortionsTable(pdf *gofpdf.Fpdf, doc PlanDocument, fontName string) {
	pdf.SetFont(fontName, "B", 9)
	pdf.CellFormat(20, 6, "Group", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Label", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Allocated kcal", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Portions", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Checked", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Checked kcal", "1", 1, "C", false, 0, "")

	pdf.SetFont(fontName, "", 9)
	for _, gc := range doc.Check.Groups {
		computed := "-"
		if n, ok := doc.Plan[gc.Group]; ok {
			computed = strconv.Itoa(n)
		}
		pdf.CellFormat(20, 6, strconv.Itoa(int(gc.Group)), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, gc.Group.Label(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, formatKcal(doc.Allocation.Groups[gc.Group]), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, computed, "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, formatPortions(gc.Portions), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, formatKcal(gc.Kcal), "1", 1, "R", false, 0, "")
	}
}

// Helper functions
func formatKcal(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatPortions(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
