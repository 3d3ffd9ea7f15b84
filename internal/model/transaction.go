// Package model defines the core domain types shared across the pipeline.
package model

import "time"

// RawRecord is a single row as read from a source file, before any
// coercion. Every cell is a string; the preprocessor decides what is
// usable and what gets dropped.
type RawRecord struct {
	CustomerID    string
	TransactionID string
	Date          string
	Category      string
	Quantity      string
	UnitPrice     string
	Tenure        string // optional tenure column (months), may be empty
	Line          int    // source line for diagnostics
}

// Transaction is a cleaned, typed transaction row.
type Transaction struct {
	Date          time.Time
	Category      string
	CustomerID    int64
	TransactionID int64
	Quantity      float64
	UnitPrice     float64
	TotalPrice    float64
	TenureMonths  float64 // 0 when the source carried no tenure column
}
