package store

import "time"

// ImportRun records one load of the input files into the database.
type ImportRun struct {
	ID              string    `json:"id"` // UUID, assigned by InsertImport when empty
	CreatedAt       time.Time `json:"created_at"`
	ReviewsPath     string    `json:"reviews_path"`
	RestaurantsPath string    `json:"restaurants_path"`
	ReviewCount     int       `json:"review_count"`
	RestaurantCount int       `json:"restaurant_count"`
}

// Report records a saved analysis report.
type Report struct {
	ID           int64     `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	ReportPath   string    `json:"report_path"`
	WorkbookPath string    `json:"workbook_path,omitempty"` // empty when no workbook was written
	ReviewCount  int       `json:"review_count"`
}

// ProgressFunc is called while rows are written. done counts rows written so
// far out of total.
type ProgressFunc func(done, total int)
