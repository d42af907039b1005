package dataset

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type format int

const (
	formatCSV format = iota
	formatJSONLines
)

// ctxCheckEvery is how many records are read between context checks.
const ctxCheckEvery = 4096

func detectFormat(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return formatCSV, nil
	case ".json", ".jsonl", ".ndjson":
		return formatJSONLines, nil
	default:
		return 0, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// reviewRecord is one review line of a JSON-lines export.
type reviewRecord struct {
	BusinessID string          `json:"business_id"`
	Stars      json.RawMessage `json:"stars"`
	Date       string          `json:"date"`
}

// restaurantRecord is one business line of a JSON-lines export.
type restaurantRecord struct {
	BusinessID string `json:"business_id"`
	Name       string `json:"name"`
	City       string `json:"city"`
	State      string `json:"state"`
}

// ReadReviews reads review rows from a CSV or JSON-lines file.
func ReadReviews(ctx context.Context, path string) ([]Review, error) {
	f, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reviews file: %w", err)
	}
	defer file.Close()

	var reviews []Review
	add := func(line int, businessID, stars, date string) error {
		r, err := newReview(path, line, businessID, stars, date)
		if err != nil {
			return err
		}
		reviews = append(reviews, r)
		return nil
	}

	switch f {
	case formatCSV:
		err = readCSV(ctx, file, path, []string{"business_id", "stars", "date"}, nil,
			func(line int, cols map[string]string) error {
				return add(line, cols["business_id"], cols["stars"], cols["date"])
			})
	case formatJSONLines:
		err = readJSONLines(ctx, file, path, func(line int, dec *json.Decoder) error {
			var rec reviewRecord
			if err := dec.Decode(&rec); err != nil {
				return err
			}
			return add(line, rec.BusinessID, strings.Trim(string(rec.Stars), `"`), rec.Date)
		})
	}
	if err != nil {
		return nil, err
	}

	return reviews, nil
}

// ReadRestaurants reads restaurant rows from a CSV or JSON-lines file.
// The state column is optional. A business_id may appear only once.
func ReadRestaurants(ctx context.Context, path string) ([]Restaurant, error) {
	f, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open restaurants file: %w", err)
	}
	defer file.Close()

	var restaurants []Restaurant
	seen := make(map[string]int)
	add := func(line int, rec restaurantRecord) error {
		id := strings.TrimSpace(rec.BusinessID)
		if id == "" {
			return &RowError{Path: path, Line: line, Column: "business_id", Err: errors.New("empty business_id")}
		}
		if first, dup := seen[id]; dup {
			return &RowError{Path: path, Line: line, Column: "business_id",
				Err: fmt.Errorf("duplicate business_id %q (first on line %d)", id, first)}
		}
		seen[id] = line
		restaurants = append(restaurants, Restaurant{
			BusinessID: id,
			Name:       rec.Name,
			City:       rec.City,
			State:      rec.State,
		})
		return nil
	}

	switch f {
	case formatCSV:
		err = readCSV(ctx, file, path, []string{"business_id", "name", "city"}, []string{"state"},
			func(line int, cols map[string]string) error {
				return add(line, restaurantRecord{
					BusinessID: cols["business_id"],
					Name:       cols["name"],
					City:       cols["city"],
					State:      cols["state"],
				})
			})
	case formatJSONLines:
		err = readJSONLines(ctx, file, path, func(line int, dec *json.Decoder) error {
			var rec restaurantRecord
			if err := dec.Decode(&rec); err != nil {
				return err
			}
			return add(line, rec)
		})
	}
	if err != nil {
		return nil, err
	}

	return restaurants, nil
}

func newReview(path string, line int, businessID, stars, date string) (Review, error) {
	businessID = strings.TrimSpace(businessID)
	if businessID == "" {
		return Review{}, &RowError{Path: path, Line: line, Column: "business_id", Err: errors.New("empty business_id")}
	}

	s, err := ParseStars(stars)
	if err != nil {
		return Review{}, &RowError{Path: path, Line: line, Column: "stars", Err: err}
	}

	d, err := ParseDate(date)
	if err != nil {
		return Review{}, &RowError{Path: path, Line: line, Column: "date", Err: err}
	}

	return Review{BusinessID: businessID, Stars: s, Date: d}, nil
}

// readCSV calls fn for every data row with the values of the required and
// optional columns, keyed by lower-case column name.
func readCSV(ctx context.Context, r io.Reader, path string, required, optional []string, fn func(line int, cols map[string]string) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return fmt.Errorf("%s: empty file, header row required", path)
	}
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	for _, name := range required {
		if _, ok := index[name]; !ok {
			return &RowError{Path: path, Line: 1, Column: name, Err: errors.New("missing required column")}
		}
	}

	wanted := append(append([]string{}, required...), optional...)
	for n := 1; ; n++ {
		record, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return &RowError{Path: path, Line: pe.StartLine, Err: pe.Err}
			}
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		// Quoted fields may span lines.
		line, _ := cr.FieldPos(0)

		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		cols := make(map[string]string, len(wanted))
		for _, name := range wanted {
			i, ok := index[name]
			if !ok {
				continue
			}
			if i >= len(record) {
				return &RowError{Path: path, Line: line, Column: name, Err: errors.New("missing value")}
			}
			cols[name] = record[i]
		}

		if err := fn(line, cols); err != nil {
			return err
		}
	}
}

// readJSONLines calls fn once per JSON object in r. line counts objects.
func readJSONLines(ctx context.Context, r io.Reader, path string, fn func(line int, dec *json.Decoder) error) error {
	dec := json.NewDecoder(r)

	for line := 1; dec.More(); line++ {
		if line%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		if err := fn(line, dec); err != nil {
			var rowErr *RowError
			if errors.As(err, &rowErr) {
				return err
			}
			return &RowError{Path: path, Line: line, Err: err}
		}
	}

	return nil
}
