package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/blackwell-systems/ratingscope/internal/analyzer"
	"github.com/blackwell-systems/ratingscope/internal/store"
)

// Load reads a saved report back by its ledger ID.
func (m *Manager) Load(id int64) (*analyzer.Report, error) {
	rec, err := m.store.GetReport(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	r, err := loadReportFile(rec.ReportPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load report file: %w", err)
	}

	return r, nil
}

// List returns the saved reports, newest first.
func (m *Manager) List() ([]*store.Report, error) {
	reports, err := m.store.ListReports()
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

func loadReportFile(path string) (*analyzer.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var r analyzer.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &r, nil
}
