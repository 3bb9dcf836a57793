package records

import (
	"context"
	"fmt"

	"github.com/jonathan/career-services/internal/db"
	"github.com/jonathan/career-services/internal/types"
)

// CreateCascade writes the initial log of a cascade under c.ID.
func (r *Repository) CreateCascade(ctx context.Context, c *types.CascadeRecord) error {
	if err := r.put(ctx, db.CollectionCascades, c.ID, c); err != nil {
		return fmt.Errorf("failed to create cascade %s: %w", c.ID, err)
	}
	return nil
}

// SaveCascadeProgress writes the steps, status and attempt count of c.
func (r *Repository) SaveCascadeProgress(ctx context.Context, c *types.CascadeRecord) error {
	steps, err := toDocument(struct {
		Steps []types.CascadeStep `json:"steps"`
	}{c.Steps})
	if err != nil {
		return err
	}
	err = r.update(ctx, db.CollectionCascades, c.ID, map[string]any{
		"status":   c.Status,
		"steps":    steps["steps"],
		"attempts": c.Attempts,
	})
	if err != nil {
		return fmt.Errorf("failed to save cascade %s: %w", c.ID, err)
	}
	return nil
}

// GetCascade retrieves a cascade log by id.
func (r *Repository) GetCascade(ctx context.Context, id string) (*types.CascadeRecord, error) {
	var c types.CascadeRecord
	if err := r.get(ctx, db.CollectionCascades, id, &c); err != nil {
		return nil, fmt.Errorf("failed to get cascade %s: %w", id, err)
	}
	c.ID = id
	return &c, nil
}

// ListCascades returns cascade logs with the given status, oldest first.
func (r *Repository) ListCascades(ctx context.Context, status types.CascadeStatus) ([]types.CascadeRecord, error) {
	var where []db.Predicate
	if status != "" {
		where = append(where, db.Eq("status", status))
	}
	cascades, err := query(ctx, r.store, db.CollectionCascades, db.QueryOptions{
		Where:   where,
		OrderBy: "createdAt",
	}, func(c *types.CascadeRecord, id string) { c.ID = id })
	if err != nil {
		return nil, fmt.Errorf("failed to list cascades: %w", err)
	}
	return cascades, nil
}
