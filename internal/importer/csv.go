package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/adriaviles2711/finanzaApp/internal/model"
)

// Bank exports disagree on header names; both English and Spanish
// spellings are accepted, case-insensitively.
var csvHeaderAliases = map[string]string{
	"date":        "date",
	"fecha":       "date",
	"amount":      "amount",
	"monto":       "amount",
	"importe":     "amount",
	"cantidad":    "amount",
	"type":        "type",
	"tipo":        "type",
	"category":    "category",
	"categoria":   "category",
	"categoría":   "category",
	"description": "description",
	"descripcion": "description",
	"descripción": "description",
	"concepto":    "description",
	"memo":        "description",
}

// ParseCSV reads a transaction CSV. The first row must be a header naming
// at least a date and an amount column. Rows that fail to parse are
// counted and skipped, never fatal to the batch.
//
// When no type column is present the sign of the amount decides: negative
// means expense, positive means income. The stored amount is always the
// absolute value.
func ParseCSV(r io.Reader) ([]ParsedTransaction, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int)
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
		if canonical, ok := csvHeaderAliases[key]; ok {
			if _, taken := columns[canonical]; !taken {
				columns[canonical] = i
			}
		}
	}
	if _, ok := columns["date"]; !ok {
		return nil, 0, fmt.Errorf("CSV has no date column (got header %v)", header)
	}
	if _, ok := columns["amount"]; !ok {
		return nil, 0, fmt.Errorf("CSV has no amount column (got header %v)", header)
	}

	field := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var rows []ParsedTransaction
	badRows := 0
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			slog.Warn("skipping malformed CSV row", "line", line, "error", err)
			badRows++
			continue
		}

		date, err := model.ParseDate(field(record, "date"))
		if err != nil {
			slog.Warn("skipping CSV row with bad date", "line", line, "error", err)
			badRows++
			continue
		}

		amount, err := parseAmount(field(record, "amount"))
		if err != nil {
			slog.Warn("skipping CSV row with bad amount", "line", line, "error", err)
			badRows++
			continue
		}

		recordType, ok := ParseRecordType(field(record, "type"))
		if !ok {
			// No usable type column: the sign decides.
			if amount.IsNegative() {
				recordType = model.TypeExpense
			} else {
				recordType = model.TypeIncome
			}
		}

		rows = append(rows, ParsedTransaction{
			Date:         date,
			Amount:       amount.Abs(),
			Type:         recordType,
			CategoryName: field(record, "category"),
			Description:  field(record, "description"),
		})
	}

	return rows, badRows, nil
}

// parseAmount handles the separators bank exports use: thousands commas
// ("1,234.56") and European decimal commas ("1234,56").
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.TrimSpace(s)

	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			// Both present: comma is the thousands separator.
			s = strings.ReplaceAll(s, ",", "")
		} else {
			// Comma only: decimal comma.
			s = strings.ReplaceAll(s, ",", ".")
		}
	}
	return decimal.NewFromString(s)
}

// ParseRecordType maps the type labels found in exports and backups to a
// record type. Both Spanish and English labels are understood.
func ParseRecordType(s string) (model.RecordType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gasto", "expense", "debit", "cargo":
		return model.TypeExpense, true
	case "ingreso", "income", "credit", "abono":
		return model.TypeIncome, true
	default:
		return "", false
	}
}
