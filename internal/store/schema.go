package store

const schema = `
CREATE TABLE IF NOT EXISTS restaurants (
    business_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    city TEXT,
    state TEXT
);

CREATE TABLE IF NOT EXISTS reviews (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    business_id TEXT NOT NULL,
    stars INTEGER NOT NULL CHECK (stars BETWEEN 1 AND 5),
    date TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS imports (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL,
    reviews_path TEXT NOT NULL,
    restaurants_path TEXT NOT NULL,
    review_count INTEGER NOT NULL,
    restaurant_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS reports (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at TIMESTAMP NOT NULL,
    report_path TEXT NOT NULL,
    workbook_path TEXT,
    review_count INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reviews_business ON reviews(business_id);
CREATE INDEX IF NOT EXISTS idx_reviews_date ON reviews(date);
CREATE INDEX IF NOT EXISTS idx_restaurants_name ON restaurants(name);
CREATE INDEX IF NOT EXISTS idx_restaurants_state ON restaurants(state);
`
