package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/core/entity"
	"prodsupply/internal/core/id"
	"prodsupply/internal/domain"
)

// CatalogRepo is a generic in-memory catalog repository. The meta accessor
// exposes the embedded entity.Catalog of the stored type.
type CatalogRepo[T entity.Validatable] struct {
	mu     sync.RWMutex
	name   string
	items  map[id.ID]T
	meta   func(T) *entity.Catalog
}

// NewCatalogRepo creates an in-memory catalog repository.
func NewCatalogRepo[T entity.Validatable](name string, meta func(T) *entity.Catalog) *CatalogRepo[T] {
	return &CatalogRepo[T]{
		name:  name,
		items: make(map[id.ID]T),
		meta:  meta,
	}
}

// Create inserts a new entity.
func (r *CatalogRepo[T]) Create(ctx context.Context, item T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	itemID := r.meta(item).ID
	if _, exists := r.items[itemID]; exists {
		return apperror.NewDuplicate(r.name, "id", itemID.String())
	}
	r.items[itemID] = item
	return nil
}

// GetByID retrieves entity by ID.
func (r *CatalogRepo[T]) GetByID(ctx context.Context, itemID id.ID) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[itemID]
	if !ok {
		var zero T
		return zero, apperror.NewNotFound(r.name, itemID.String())
	}
	return item, nil
}

// GetByCode retrieves entity by code.
func (r *CatalogRepo[T]) GetByCode(ctx context.Context, code string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		meta := r.meta(item)
		if meta.Code == code && !meta.DeletionMark {
			return item, nil
		}
	}
	var zero T
	return zero, apperror.NewNotFound(r.name, code)
}

// Update replaces an existing entity.
func (r *CatalogRepo[T]) Update(ctx context.Context, item T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	itemID := r.meta(item).ID
	if _, ok := r.items[itemID]; !ok {
		return apperror.NewNotFound(r.name, itemID.String())
	}
	r.items[itemID] = item
	return nil
}

// Delete marks the entity as deleted.
func (r *CatalogRepo[T]) Delete(ctx context.Context, itemID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[itemID]
	if !ok {
		return apperror.NewNotFound(r.name, itemID.String())
	}
	r.meta(item).DeletionMark = true
	return nil
}

// Exists checks if entity with given ID exists.
func (r *CatalogRepo[T]) Exists(ctx context.Context, itemID id.ID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.items[itemID]
	return ok, nil
}

// List retrieves entities with filtering and pagination.
func (r *CatalogRepo[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[id.ID]bool, len(filter.IDs))
	for _, itemID := range filter.IDs {
		wanted[itemID] = true
	}

	var items []T
	for _, item := range r.items {
		meta := r.meta(item)
		if meta.DeletionMark && !filter.IncludeDeleted {
			continue
		}
		if len(wanted) > 0 && !wanted[meta.ID] {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(meta.Name), strings.ToLower(filter.Search)) &&
			!strings.Contains(strings.ToLower(meta.Code), strings.ToLower(filter.Search)) {
			continue
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		return r.meta(items[i]).Name < r.meta(items[j]).Name
	})

	result := domain.ListResult[T]{
		TotalCount: int64(len(items)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(items) {
			items = nil
		} else {
			items = items[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	result.Items = items
	return result, nil
}
