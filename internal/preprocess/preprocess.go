// Package preprocess cleans raw transaction records into the typed,
// deduplicated table the rest of the pipeline consumes.
package preprocess

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/segmint/segmint/internal/common"
	"github.com/segmint/segmint/internal/model"
)

// dateFormats are tried in order when parsing transaction dates.
var dateFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	time.RFC3339,
}

// Options configures the cleaning pass.
type Options struct {
	// ReferenceDate overrides the recency reference date. When nil the
	// reference date is the day after the latest transaction.
	ReferenceDate *time.Time
	// Synonyms extends or replaces the category synonym table.
	Synonyms map[string]string
}

// Summary reports what cleaning did, stage by stage. Every dropped row
// is accounted for in exactly one stage.
type Summary struct {
	ReferenceDate time.Time
	Stages        []model.StageCount
	OriginalRows  int
	FinalRows     int
	Customers     int
	Transactions  int
	Categories    int
	TotalRevenue  float64
}

// Clean validates, coerces, deduplicates and normalizes raw records. It
// is pure with respect to its input: records are never mutated.
//
// Returns the cleaned table, the recency reference date, and the
// per-stage drop accounting. Fails with a DataQualityError when nothing
// survives cleaning.
func Clean(records []model.RawRecord, opts Options) ([]model.Transaction, time.Time, Summary, error) {
	summary := Summary{OriginalRows: len(records)}

	if len(records) == 0 {
		return nil, time.Time{}, summary, common.NewDataQualityError("no input rows")
	}

	synonyms := opts.Synonyms
	if synonyms == nil {
		synonyms = defaultSynonyms
	}

	rows := coerceIdentifiers(records, &summary)
	rows = dropMissing(rows, &summary)
	rows = dedupe(rows, &summary)
	rows = dropNonPositive(rows, &summary)
	rows = deriveTotalPrice(rows, &summary)
	rows = normalizeCategories(rows, synonyms, &summary)

	if len(rows) == 0 {
		return nil, time.Time{}, summary, common.NewDataQualityError("zero rows remain after cleaning")
	}

	ref := referenceDate(rows, opts.ReferenceDate)

	summary.FinalRows = len(rows)
	summary.ReferenceDate = ref
	fillCounts(rows, &summary)

	slog.Info("preprocessing complete",
		"original_rows", summary.OriginalRows,
		"final_rows", summary.FinalRows,
		"customers", summary.Customers,
		"categories", summary.Categories,
		"reference_date", ref.Format("2006-01-02"))

	return rows, ref, summary, nil
}

// coerceIdentifiers parses IDs, numeric fields and dates, dropping rows
// where coercion fails.
func coerceIdentifiers(records []model.RawRecord, summary *Summary) []model.Transaction {
	before := len(records)
	out := make([]model.Transaction, 0, len(records))

	for _, r := range records {
		customerID, err := parseID(r.CustomerID)
		if err != nil {
			continue
		}
		transactionID, err := parseID(r.TransactionID)
		if err != nil {
			continue
		}
		quantity, err := strconv.ParseFloat(strings.TrimSpace(r.Quantity), 64)
		if err != nil {
			continue
		}
		unitPrice, err := strconv.ParseFloat(strings.TrimSpace(r.UnitPrice), 64)
		if err != nil {
			continue
		}
		date, ok := parseDate(r.Date)
		if !ok {
			continue
		}

		txn := model.Transaction{
			CustomerID:    customerID,
			TransactionID: transactionID,
			Date:          date,
			Category:      r.Category,
			Quantity:      quantity,
			UnitPrice:     unitPrice,
		}
		if tenure, err := strconv.ParseFloat(strings.TrimSpace(r.Tenure), 64); err == nil && tenure > 0 {
			txn.TenureMonths = tenure
		}
		out = append(out, txn)
	}

	record(summary, "coerce", before, len(out))
	return out
}

// dropMissing removes rows with an empty category label.
func dropMissing(rows []model.Transaction, summary *Summary) []model.Transaction {
	before := len(rows)
	out := rows[:0:len(rows)]
	for _, t := range rows {
		c := strings.ToLower(strings.TrimSpace(t.Category))
		if c == "" || c == "nan" {
			continue
		}
		out = append(out, t)
	}
	record(summary, "missing", before, len(out))
	return out
}

// dedupe drops exact repeats of a row, keeping the first occurrence. The
// key is the full row, not (customer, transaction): one transaction
// legitimately spans several rows with different categories, and those
// must survive to form multi-item baskets downstream.
func dedupe(rows []model.Transaction, summary *Summary) []model.Transaction {
	before := len(rows)
	type key struct {
		category              string
		customer, transaction int64
		date                  int64
		quantity, unitPrice   float64
	}
	seen := make(map[key]bool, len(rows))
	out := rows[:0:len(rows)]
	for _, t := range rows {
		k := key{
			customer:    t.CustomerID,
			transaction: t.TransactionID,
			date:        t.Date.Unix(),
			category:    t.Category,
			quantity:    t.Quantity,
			unitPrice:   t.UnitPrice,
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, t)
	}
	record(summary, "dedupe", before, len(out))
	return out
}

func dropNonPositive(rows []model.Transaction, summary *Summary) []model.Transaction {
	before := len(rows)
	out := rows[:0:len(rows)]
	for _, t := range rows {
		if t.Quantity <= 0 || t.UnitPrice <= 0 {
			continue
		}
		out = append(out, t)
	}
	record(summary, "nonpositive", before, len(out))
	return out
}

// deriveTotalPrice computes Quantity x UnitPrice. The <= 0 check cannot
// trigger after the previous stage but is kept as a defensive filter.
func deriveTotalPrice(rows []model.Transaction, summary *Summary) []model.Transaction {
	before := len(rows)
	out := rows[:0:len(rows)]
	for _, t := range rows {
		t.TotalPrice = t.Quantity * t.UnitPrice
		if t.TotalPrice <= 0 {
			continue
		}
		out = append(out, t)
	}
	record(summary, "total_price", before, len(out))
	return out
}

func normalizeCategories(rows []model.Transaction, synonyms map[string]string, summary *Summary) []model.Transaction {
	before := len(rows)
	out := rows[:0:len(rows)]
	for _, t := range rows {
		t.Category = NormalizeCategory(t.Category, synonyms)
		if t.Category == "" {
			continue
		}
		out = append(out, t)
	}
	record(summary, "categories", before, len(out))
	return out
}

func referenceDate(rows []model.Transaction, override *time.Time) time.Time {
	if override != nil {
		return *override
	}
	latest := rows[0].Date
	for _, t := range rows[1:] {
		if t.Date.After(latest) {
			latest = t.Date
		}
	}
	return latest.AddDate(0, 0, 1)
}

func fillCounts(rows []model.Transaction, summary *Summary) {
	customers := make(map[int64]bool)
	transactions := make(map[int64]bool)
	categories := make(map[string]bool)
	for _, t := range rows {
		customers[t.CustomerID] = true
		transactions[t.TransactionID] = true
		categories[t.Category] = true
		summary.TotalRevenue += t.TotalPrice
	}
	summary.Customers = len(customers)
	summary.Transactions = len(transactions)
	summary.Categories = len(categories)
}

func record(summary *Summary, stage string, before, after int) {
	summary.Stages = append(summary.Stages, model.StageCount{
		Stage:   stage,
		Before:  before,
		After:   after,
		Dropped: before - after,
	})
	if before != after {
		slog.Debug("rows dropped", "stage", stage, "before", before, "after", after)
	}
}

func parseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	// Sources sometimes render integer IDs as floats ("12345.0").
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return int64(f), nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
