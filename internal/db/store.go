package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Collection names
const (
	CollectionApplications = "applications"
	CollectionInterviews   = "interviews"
	CollectionJobs         = "jobs"
	CollectionCascades     = "cascades"
)

// Document is a stored record: an id plus a JSON object.
type Document struct {
	ID   string
	Data map[string]any
}

// Decode unmarshals the document data into v.
func (d *Document) Decode(v any) error {
	raw, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal document %s: %w", d.ID, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode document %s: %w", d.ID, err)
	}
	return nil
}

// Predicate is an equality filter on a (possibly dotted) field path.
type Predicate struct {
	Field string
	Value any
}

// Eq builds an equality predicate.
func Eq(field string, value any) Predicate {
	return Predicate{Field: field, Value: value}
}

// QueryOptions holds the filters and ordering of a query.
type QueryOptions struct {
	Where   []Predicate
	OrderBy string
	Desc    bool
	Limit   int
}

// Store is the document database contract. Writes to a single document are
// atomic; there is no transaction spanning documents.
type Store interface {
	// Get returns ErrNotFound if the document does not exist.
	Get(ctx context.Context, collection, id string) (*Document, error)
	Query(ctx context.Context, collection string, opts QueryOptions) ([]Document, error)
	// Create stores data under a new id and returns it.
	Create(ctx context.Context, collection string, data map[string]any) (string, error)
	// Set replaces the document with the given id, creating it if needed.
	Set(ctx context.Context, collection, id string, data map[string]any) error
	// Update merges partial into an existing document. Dotted keys address
	// nested fields. It returns ErrNotFound if the document does not exist.
	Update(ctx context.Context, collection, id string, partial map[string]any) error
}
