// Package report saves derived tables as JSON reports and Excel workbooks,
// and records them in the store.
package report

import (
	"github.com/blackwell-systems/ratingscope/internal/store"
)

// Manager manages report creation and loading.
type Manager struct {
	store     *store.Store
	reportDir string
}

// New creates a new report Manager writing into reportDir.
func New(store *store.Store, reportDir string) *Manager {
	return &Manager{
		store:     store,
		reportDir: reportDir,
	}
}

// Options controls what Create writes.
type Options struct {
	// Workbook also writes an .xlsx file next to the JSON report.
	Workbook bool
}
