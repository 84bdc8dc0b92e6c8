// Package ledger computes the unified finance view from the three
// independently stored sources: manual incomes, manual expenses and fee
// payments.
package ledger

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/idara-sms/schoolbooks-api/internal/models"
	"github.com/idara-sms/schoolbooks-api/internal/store"
)

// NormalizeAmount coerces a stored amount value to a safe number. The store
// is schemaless, so amounts arrive as numbers, numeric strings, or garbage;
// anything unparseable, NaN or infinite becomes 0. Never fails: malformed
// rows stay visible with a zero value instead of being dropped.
func NormalizeAmount(raw any) float64 {
	var amt float64
	switch v := raw.(type) {
	case float64:
		amt = v
	case float32:
		amt = float64(v)
	case int:
		amt = float64(v)
	case int32:
		amt = float64(v)
	case int64:
		amt = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		amt = f
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
		if cleaned == "" {
			return 0
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		amt = f
	default:
		return 0
	}
	if math.IsNaN(amt) || math.IsInf(amt, 0) || amt < 0 {
		return 0
	}
	return amt
}

// NormalizeCategory maps blank or missing category labels to the canonical
// Uncategorized bucket.
func NormalizeCategory(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return models.Uncategorized
	}
	return trimmed
}

func docString(doc store.Document, key string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}

func docTime(doc store.Document, key string) time.Time {
	switch v := doc[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// DecodeTransaction converts a raw income/expense document into a typed
// record. All "anything can be a string or missing" handling lives here;
// everything above works with validated values.
func DecodeTransaction(doc store.Document) models.Transaction {
	return models.Transaction{
		ID:          docString(doc, "id"),
		Title:       docString(doc, "title"),
		Category:    NormalizeCategory(docString(doc, "category")),
		Amount:      NormalizeAmount(doc["amount"]),
		Date:        docString(doc, "date"),
		Description: docString(doc, "description"),
		CreatedAt:   docTime(doc, "created_at"),
	}
}

// DecodeFeePayment converts a raw fee document into a typed record.
func DecodeFeePayment(doc store.Document) models.FeePayment {
	return models.FeePayment{
		ID:          docString(doc, "id"),
		StudentID:   docString(doc, "student_id"),
		StudentName: docString(doc, "student_name"),
		RollNumber:  docString(doc, "roll_number"),
		FeeType:     docString(doc, "fee_type"),
		Month:       docString(doc, "month"),
		Year:        docString(doc, "year"),
		Amount:      NormalizeAmount(doc["amount"]),
		Status:      docString(doc, "status"),
		Date:        docString(doc, "date"),
		CreatedAt:   docTime(doc, "created_at"),
	}
}

// DecodeHead converts a raw finance_heads document into a typed record.
func DecodeHead(doc store.Document) models.CategoryHead {
	return models.CategoryHead{
		ID:        docString(doc, "id"),
		Name:      strings.TrimSpace(docString(doc, "name")),
		Type:      docString(doc, "type"),
		CreatedAt: docTime(doc, "created_at"),
	}
}
