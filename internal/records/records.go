// Package records provides typed access to the application, interview, job
// and cascade documents held in a db.Store.
package records

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/career-services/internal/db"
	"github.com/jonathan/career-services/internal/schemas"
)

// Repository reads and writes workflow records.
type Repository struct {
	store db.Store
}

// New creates a Repository over store.
func New(store db.Store) *Repository {
	return &Repository{store: store}
}

// Store returns the underlying document store.
func (r *Repository) Store() db.Store {
	return r.store
}

// toDocument converts a record into the map written to the store. The id is
// the document key and is not stored in the body.
func toDocument(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	delete(doc, "id")
	return doc, nil
}

// put validates rec against the collection schema and writes it under id,
// stamping createdAt and lastUpdated with the store clock.
func (r *Repository) put(ctx context.Context, collection, id string, rec any) error {
	doc, err := toDocument(rec)
	if err != nil {
		return err
	}
	if err := schemas.ValidateDocument(collection, doc); err != nil {
		return err
	}
	doc["createdAt"] = db.ServerTimestamp
	doc["lastUpdated"] = db.ServerTimestamp
	return r.store.Set(ctx, collection, id, doc)
}

// get loads the document and decodes it into rec.
func (r *Repository) get(ctx context.Context, collection, id string, rec any) error {
	doc, err := r.store.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	return doc.Decode(rec)
}

// update stamps lastUpdated and applies the partial write.
func (r *Repository) update(ctx context.Context, collection, id string, partial map[string]any) error {
	partial["lastUpdated"] = db.ServerTimestamp
	return r.store.Update(ctx, collection, id, partial)
}

// query runs opts and decodes each result, assigning the document id with setID.
func query[T any](ctx context.Context, store db.Store, collection string, opts db.QueryOptions, setID func(*T, string)) ([]T, error) {
	docs, err := store.Query(ctx, collection, opts)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for i := range docs {
		var rec T
		if err := docs[i].Decode(&rec); err != nil {
			return nil, err
		}
		setID(&rec, docs[i].ID)
		out = append(out, rec)
	}
	return out, nil
}
