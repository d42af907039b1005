package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/blackwell-systems/ratingscope/internal/dataset"
)

// progressEvery is how many rows are written between ProgressFunc calls.
const progressEvery = 1000

// Dataset operations

// ReplaceDataset atomically replaces all restaurants and reviews with ds.
// A repeated restaurant business_id fails the whole replacement. progress
// may be nil.
func (s *Store) ReplaceDataset(ds *dataset.Dataset, progress ProgressFunc) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM reviews`); err != nil {
		return wrapErr("clear reviews", err)
	}
	if _, err := tx.Exec(`DELETE FROM restaurants`); err != nil {
		return wrapErr("clear restaurants", err)
	}

	total := len(ds.Restaurants) + len(ds.Reviews)
	done := 0
	tick := func() {
		done++
		if progress != nil && (done%progressEvery == 0 || done == total) {
			progress(done, total)
		}
	}

	restStmt, err := tx.Prepare(`
		INSERT INTO restaurants (business_id, name, city, state)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare restaurant insert: %w", err)
	}
	defer restStmt.Close()

	for _, r := range ds.Restaurants {
		if _, err := restStmt.Exec(r.BusinessID, r.Name, r.City, r.State); err != nil {
			return fmt.Errorf("failed to insert restaurant %s: %w", r.BusinessID, err)
		}
		tick()
	}

	revStmt, err := tx.Prepare(`
		INSERT INTO reviews (business_id, stars, date)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare review insert: %w", err)
	}
	defer revStmt.Close()

	for _, r := range ds.Reviews {
		if _, err := revStmt.Exec(r.BusinessID, r.Stars, r.Date.Format(time.RFC3339)); err != nil {
			return fmt.Errorf("failed to insert review for %s: %w", r.BusinessID, err)
		}
		tick()
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dataset: %w", err)
	}

	return nil
}

// ListRestaurants returns all restaurants ordered by business_id.
func (s *Store) ListRestaurants() ([]dataset.Restaurant, error) {
	rows, err := s.db.Query(`
		SELECT business_id, name, city, state
		FROM restaurants
		ORDER BY business_id
	`)
	if err != nil {
		return nil, wrapErr("list restaurants", err)
	}
	defer rows.Close()

	var restaurants []dataset.Restaurant
	for rows.Next() {
		var r dataset.Restaurant
		var city, state sql.NullString
		if err := rows.Scan(&r.BusinessID, &r.Name, &city, &state); err != nil {
			return nil, fmt.Errorf("failed to scan restaurant row: %w", err)
		}
		r.City = city.String
		r.State = state.String
		restaurants = append(restaurants, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating restaurants: %w", err)
	}

	return restaurants, nil
}

// ListReviews returns every review in insertion order, whether or not its
// business is known.
func (s *Store) ListReviews() ([]dataset.Review, error) {
	rows, err := s.db.Query(`
		SELECT business_id, stars, date
		FROM reviews
		ORDER BY id
	`)
	if err != nil {
		return nil, wrapErr("list reviews", err)
	}
	defer rows.Close()

	return scanReviews(rows)
}

// ListReviewsWithState returns the reviews joined to their restaurant.
// Reviews with no restaurant row are dropped. A non-empty state keeps only
// restaurants in that state.
func (s *Store) ListReviewsWithState(state string) ([]dataset.Review, error) {
	rows, err := s.db.Query(`
		SELECT r.business_id, r.stars, r.date
		FROM reviews r
		JOIN restaurants b ON b.business_id = r.business_id
		WHERE ? = '' OR b.state = ?
		ORDER BY r.id
	`, state, state)
	if err != nil {
		return nil, wrapErr("list reviews with state", err)
	}
	defer rows.Close()

	return scanReviews(rows)
}

func scanReviews(rows *sql.Rows) ([]dataset.Review, error) {
	var reviews []dataset.Review
	for rows.Next() {
		var r dataset.Review
		var date string
		if err := rows.Scan(&r.BusinessID, &r.Stars, &date); err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}

		t, err := time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date for review of %s: %w", r.BusinessID, err)
		}
		r.Date = t

		reviews = append(reviews, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, nil
}

// Counts returns the number of stored reviews and restaurants.
func (s *Store) Counts() (reviews, restaurants int, err error) {
	if err := s.db.QueryRow("SELECT COUNT(*) FROM reviews").Scan(&reviews); err != nil {
		return 0, 0, wrapErr("count reviews", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM restaurants").Scan(&restaurants); err != nil {
		return 0, 0, wrapErr("count restaurants", err)
	}
	return reviews, restaurants, nil
}

// ListStates returns the distinct non-empty restaurant states.
func (s *Store) ListStates() ([]string, error) {
	rows, err := s.db.Query(`
		SELECT DISTINCT state
		FROM restaurants
		WHERE state IS NOT NULL AND state != ''
		ORDER BY state
	`)
	if err != nil {
		return nil, wrapErr("list states", err)
	}
	defer rows.Close()

	var states []string
	for rows.Next() {
		var st string
		if err := rows.Scan(&st); err != nil {
			return nil, fmt.Errorf("failed to scan state row: %w", err)
		}
		states = append(states, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating states: %w", err)
	}

	return states, nil
}

// Import ledger operations

// InsertImport records an import run. A missing ID or CreatedAt is filled in.
func (s *Store) InsertImport(run *ImportRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	_, err := s.db.Exec(`
		INSERT INTO imports (id, created_at, reviews_path, restaurants_path, review_count, restaurant_count)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.CreatedAt.Format(time.RFC3339),
		run.ReviewsPath,
		run.RestaurantsPath,
		run.ReviewCount,
		run.RestaurantCount,
	)
	if err != nil {
		return wrapErr("insert import "+run.ID, err)
	}

	return nil
}

// ListImports returns all import runs, newest first.
func (s *Store) ListImports() ([]*ImportRun, error) {
	rows, err := s.db.Query(`
		SELECT id, created_at, reviews_path, restaurants_path, review_count, restaurant_count
		FROM imports
		ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, wrapErr("list imports", err)
	}
	defer rows.Close()

	var runs []*ImportRun
	for rows.Next() {
		var run ImportRun
		var createdAt string

		err := rows.Scan(
			&run.ID,
			&createdAt,
			&run.ReviewsPath,
			&run.RestaurantsPath,
			&run.ReviewCount,
			&run.RestaurantCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import row: %w", err)
		}

		run.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at for import %s: %w", run.ID, err)
		}

		runs = append(runs, &run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating imports: %w", err)
	}

	return runs, nil
}

// Report ledger operations

// InsertReport records a saved report and returns its ID.
func (s *Store) InsertReport(reportPath, workbookPath string, reviewCount int) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO reports (created_at, report_path, workbook_path, review_count)
		VALUES (?, ?, ?, ?)
	`,
		time.Now().UTC().Format(time.RFC3339),
		reportPath,
		workbookPath,
		reviewCount,
	)
	if err != nil {
		return 0, wrapErr("insert report", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get report ID: %w", err)
	}

	return id, nil
}

// GetReport retrieves a report record by ID.
func (s *Store) GetReport(id int64) (*Report, error) {
	var r Report
	var createdAt string
	var workbook sql.NullString

	err := s.db.QueryRow(`
		SELECT id, created_at, report_path, workbook_path, review_count
		FROM reports
		WHERE id = ?
	`, id).Scan(&r.ID, &createdAt, &r.ReportPath, &workbook, &r.ReviewCount)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report %d not found", id)
	}
	if err != nil {
		return nil, wrapErr(fmt.Sprintf("get report %d", id), err)
	}

	r.WorkbookPath = workbook.String
	r.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at for report %d: %w", id, err)
	}

	return &r, nil
}

// ListReports returns all report records, newest first.
func (s *Store) ListReports() ([]*Report, error) {
	rows, err := s.db.Query(`
		SELECT id, created_at, report_path, workbook_path, review_count
		FROM reports
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, wrapErr("list reports", err)
	}
	defer rows.Close()

	var reports []*Report
	for rows.Next() {
		var r Report
		var createdAt string
		var workbook sql.NullString

		if err := rows.Scan(&r.ID, &createdAt, &r.ReportPath, &workbook, &r.ReviewCount); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}

		r.WorkbookPath = workbook.String
		r.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at for report %d: %w", r.ID, err)
		}

		reports = append(reports, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}

	return reports, nil
}
