// Package store defines the narrow boundary to the document database.
// Collections hold schemaless documents; everything above this package
// works with decoded, typed records.
package store

import (
	"context"
)

// Collection names used by the application.
const (
	Incomes      = "incomes"
	Expenses     = "expenses"
	Fees         = "fees"
	FinanceHeads = "finance_heads"
	Students     = "students"
	Teachers     = "teachers"
	Users        = "users"
	Classes      = "classes"
	Attendance   = "attendance"
	Grades       = "grades"
	Exams        = "exams"
	Timetable    = "timetable"
)

// BackupCollections is the full set of collections included in a backup
// archive, in restore order.
var BackupCollections = []string{
	Users, Students, Teachers, Classes,
	Fees, Expenses, Incomes, FinanceHeads,
	Attendance, Grades, Exams, Timetable,
}

// DashboardLimit caps dashboard reads; aggregation and backup read unbounded.
const DashboardLimit = 50

// Document is one schemaless record. The store sets the "id" key on reads.
type Document = map[string]any

// ListOptions controls a List call. Results are always ordered by the
// document's date field descending, falling back to creation time.
type ListOptions struct {
	Limit int // 0 means unbounded
}

// Store is the document database capability the application consumes.
// Implementations provide single-document last-write-wins semantics; no
// cross-document transactions are offered or required.
type Store interface {
	List(ctx context.Context, collection string, opts ListOptions) ([]Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	Create(ctx context.Context, collection string, doc Document) (string, error)
	// Put writes a document under a known id, creating it if absent.
	Put(ctx context.Context, collection, id string, doc Document) error
	Update(ctx context.Context, collection, id string, doc Document) error
	Delete(ctx context.Context, collection, id string) error
	// PutMany upserts a batch of documents that already carry an "id" key.
	// Callers chunk batches below the backend's per-batch ceiling.
	PutMany(ctx context.Context, collection string, docs []Document) error
	Count(ctx context.Context, collection string) (int, error)
}
