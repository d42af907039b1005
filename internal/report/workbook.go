package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/blackwell-systems/ratingscope/internal/analyzer"
)

// Workbook sheet names, one per derived table.
const (
	SheetSummary        = "Summary"
	SheetYearly         = "Yearly"
	SheetBrands         = "Brands"
	SheetChains         = "Chains"
	SheetRatings        = "Ratings"
	SheetRatingsByYear  = "Ratings by Year"
	SheetRatingsByChain = "Ratings by Chain"
	SheetTrend          = "Trend"
)

// sheet is one worksheet: a header row followed by data rows.
type sheet struct {
	name   string
	header []interface{}
	rows   [][]interface{}
}

// WriteWorkbook writes every table of r to an .xlsx file at path.
func WriteWorkbook(path string, r *analyzer.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []sheet{
		summarySheet(r),
		yearlySheet(r.Yearly),
		groupSheet(SheetBrands, r.Brands),
		groupSheet(SheetChains, r.Chains),
		distributionSheet(SheetRatings, r.Ratings),
		distributionSheet(SheetRatingsByYear, r.RatingsByYear),
		distributionSheet(SheetRatingsByChain, r.RatingsByChain),
		trendSheet(r.Trend),
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", s.name, err)
		}

		if err := writeSheet(f, s); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	return nil
}

func writeSheet(f *excelize.File, s sheet) error {
	all := append([][]interface{}{s.header}, s.rows...)

	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", s.name, i+1, err)
		}
	}

	if len(s.header) > 0 {
		last, err := excelize.ColumnNumberToName(len(s.header))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.name, "A", last, 18); err != nil {
			return fmt.Errorf("failed to size %s columns: %w", s.name, err)
		}
	}

	return nil
}

func summarySheet(r *analyzer.Report) sheet {
	window := "all years"
	if !r.Window.IsZero() {
		window = fmt.Sprintf("%s-%s", yearOrOpen(r.Window.From), yearOrOpen(r.Window.To))
	}
	state := r.State
	if state == "" {
		state = "all"
	}

	return sheet{
		name:   SheetSummary,
		header: []interface{}{"Setting", "Value"},
		rows: [][]interface{}{
			{"Generated", r.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Brand", r.Brand},
			{"Competitors", strings.Join(r.Competitors, ", ")},
			{"National threshold", r.NationalThreshold},
			{"State", state},
			{"Distribution window", window},
			{"Reviews", r.ReviewCount},
			{"Restaurants", r.RestaurantCount},
		},
	}
}

func yearlySheet(rows []analyzer.YearSummary) sheet {
	s := sheet{
		name:   SheetYearly,
		header: []interface{}{"Year", "Avg Stars", "Reviews"},
	}
	for _, y := range rows {
		s.rows = append(s.rows, []interface{}{y.Year, y.AvgRating, y.NumRatings})
	}
	return s
}

func groupSheet(name string, stats []analyzer.GroupStats) sheet {
	s := sheet{
		name:   name,
		header: []interface{}{"Group", "Reviews", "Mean", "Std", "Min", "Max"},
	}
	for _, g := range stats {
		s.rows = append(s.rows, []interface{}{g.Group, g.Count, number(g.Mean), number(g.Std), g.Min, g.Max})
	}
	return s
}

func distributionSheet(name string, d *analyzer.Distribution) sheet {
	s := sheet{name: name, header: []interface{}{"Group"}}
	for i := 0; i < analyzer.NumStars; i++ {
		s.header = append(s.header, strconv.Itoa(i+1)+" stars")
	}
	for i := 0; i < analyzer.NumStars; i++ {
		s.header = append(s.header, strconv.Itoa(i+1)+" stars %")
	}
	s.header = append(s.header, "Reviews")

	if d == nil {
		return s
	}

	for _, row := range d.Rows {
		out := []interface{}{row.Group}
		for _, c := range row.Counts {
			out = append(out, c)
		}
		for _, p := range row.Percent {
			out = append(out, p)
		}
		out = append(out, row.Total)
		s.rows = append(s.rows, out)
	}
	return s
}

func trendSheet(t *analyzer.Trend) sheet {
	s := sheet{name: SheetTrend, header: []interface{}{"Year"}}
	if t == nil {
		return s
	}

	for _, label := range t.Labels {
		s.header = append(s.header, label, label+" reviews")
	}

	for _, row := range t.Rows {
		out := []interface{}{row.Year}
		for _, label := range t.Labels {
			mean, ok := row.Means[label]
			if !ok {
				out = append(out, nil, nil)
				continue
			}
			out = append(out, mean, row.Counts[label])
		}
		s.rows = append(s.rows, out)
	}
	return s
}

// number leaves NaN cells empty.
func number(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func yearOrOpen(y int) string {
	if y == 0 {
		return "*"
	}
	return strconv.Itoa(y)
}
