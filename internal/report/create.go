package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/ratingscope/internal/analyzer"
	"github.com/blackwell-systems/ratingscope/internal/store"
)

// Create writes r to the report directory as YYYY-MM-DD-HHMMSS.json (plus
// a workbook when requested) and records it in the store.
func (m *Manager) Create(ctx context.Context, r *analyzer.Report, opts Options) (*store.Report, error) {
	if r == nil {
		return nil, fmt.Errorf("report is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(m.reportDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	base, err := m.uniqueBase(r)
	if err != nil {
		return nil, err
	}
	reportPath := base + ".json"

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(reportPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write report file: %w", err)
	}

	var workbookPath string
	if opts.Workbook {
		if err := ctx.Err(); err != nil {
			os.Remove(reportPath)
			return nil, err
		}
		workbookPath = base + ".xlsx"
		if err := WriteWorkbook(workbookPath, r); err != nil {
			os.Remove(reportPath)
			return nil, err
		}
	}

	id, err := m.store.InsertReport(reportPath, workbookPath, r.ReviewCount)
	if err != nil {
		// Don't leave files behind that the ledger doesn't know about.
		os.Remove(reportPath)
		if workbookPath != "" {
			os.Remove(workbookPath)
		}
		return nil, fmt.Errorf("failed to record report: %w", err)
	}

	return m.store.GetReport(id)
}

// uniqueBase returns a path without extension, named after the report time,
// that no existing report uses.
func (m *Manager) uniqueBase(r *analyzer.Report) (string, error) {
	stamp := r.GeneratedAt.Format("2006-01-02-150405")
	base := filepath.Join(m.reportDir, stamp)

	for i := 1; i < 1000; i++ {
		if _, err := os.Stat(base + ".json"); os.IsNotExist(err) {
			return base, nil
		}
		base = filepath.Join(m.reportDir, fmt.Sprintf("%s-%d", stamp, i))
	}

	return "", fmt.Errorf("too many reports named %s", stamp)
}
