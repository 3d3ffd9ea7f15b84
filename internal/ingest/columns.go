// Package ingest loads raw transaction tables from delimited files and
// spreadsheets, mapping source column names onto the logical schema. It
// does no validation beyond locating columns: all coercion and dropping
// is the preprocessor's job, so one dirty row never fails a load.
package ingest

import (
	"strings"

	"github.com/segmint/segmint/internal/common"
	"github.com/segmint/segmint/internal/model"
)

// aliases maps normalized source header names to logical fields.
var aliases = map[string]string{
	"customerid": "customer_id",
	"customer":   "customer_id",

	"transactionid": "transaction_id",
	"invoiceno":     "transaction_id",
	"orderid":       "transaction_id",

	"transactiondate": "date",
	"invoicedate":     "date",
	"date":            "date",

	"productcategory": "category",
	"category":        "category",

	"quantity": "quantity",
	"qty":      "quantity",

	"unitprice": "unit_price",
	"avgprice":  "unit_price",
	"price":     "unit_price",

	"tenuremonths": "tenure",
	"tenure":       "tenure",
}

var requiredFields = []string{
	"customer_id", "transaction_id", "date", "category", "quantity", "unit_price",
}

// columnIndex locates each logical field in a header row. Header names
// are matched case-insensitively with separators stripped, so
// "Transaction_ID", "transaction id" and "TransactionID" all resolve.
func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(requiredFields)+1)
	for i, name := range header {
		if field, ok := aliases[normalizeHeader(name)]; ok {
			if _, taken := index[field]; !taken {
				index[field] = i
			}
		}
	}

	for _, field := range requiredFields {
		if _, ok := index[field]; !ok {
			return nil, common.NewDataQualityError("required column %q not found", field)
		}
	}
	return index, nil
}

func normalizeHeader(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// rowToRecord extracts one RawRecord given the resolved column index.
func rowToRecord(row []string, index map[string]int, line int) model.RawRecord {
	cell := func(field string) string {
		i, ok := index[field]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	return model.RawRecord{
		CustomerID:    cell("customer_id"),
		TransactionID: cell("transaction_id"),
		Date:          cell("date"),
		Category:      cell("category"),
		Quantity:      cell("quantity"),
		UnitPrice:     cell("unit_price"),
		Tenure:        cell("tenure"),
		Line:          line,
	}
}
