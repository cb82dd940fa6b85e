// AngelaMos | 2026
// service.go

package product

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/catalog-backend/internal/core"
	"github.com/carterperez-dev/templates/catalog-backend/internal/metrics"
)

const tracerName = "catalog/product"

type Service struct {
	repo  Repository
	cache CategoryCache
}

// NewService accepts a nil cache, in which case categories always come from
// the repository.
func NewService(repo Repository, cache CategoryCache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

func (s *Service) List(
	ctx context.Context,
	params ListParams,
) (*ListResponse, error) {
	if params.Limit != nil && *params.Limit < 0 {
		return nil, &InputError{Field: "limit", Reason: "must not be negative"}
	}
	if params.Offset != nil && *params.Offset < 0 {
		return nil, &InputError{Field: "offset", Reason: "must not be negative"}
	}

	ctx, span := core.StartSpan(ctx, tracerName, "product.List")
	total, products, err := s.repo.List(ctx, params)
	core.EndSpan(span, err)
	if err != nil {
		return nil, err
	}

	return &ListResponse{
		Total: total,
		Items: ToProductResponses(products),
	}, nil
}

// Create validates every record before touching storage, then inserts the
// batch atomically.
func (s *Service) Create(
	ctx context.Context,
	records []Record,
) (resp *CreateResponse, err error) {
	if len(records) == 0 {
		return nil, &InputError{Reason: "No data provided"}
	}

	products := make([]*Product, 0, len(records))
	for i, rec := range records {
		p, err := ParseNew(rec)
		if err != nil {
			if len(records) > 1 {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			return nil, err
		}
		products = append(products, p)
	}

	ctx, span := core.StartSpan(ctx, tracerName, "product.Create",
		attribute.Int("product.batch_size", len(products)),
	)
	defer func() {
		core.EndSpan(span, err)
		metrics.RecordMutation("create", err)
	}()

	if err := s.repo.CreateMany(ctx, products); err != nil {
		return nil, err
	}
	s.invalidateCategories(ctx)

	items := make([]ProductResponse, len(products))
	for i, p := range products {
		items[i] = ToProductResponse(p)
	}

	return &CreateResponse{
		Status: "success",
		Added:  len(items),
		Items:  items,
	}, nil
}

func (s *Service) Update(
	ctx context.Context,
	id int64,
	rec Record,
) (resp *UpdateResponse, err error) {
	patch, err := ParsePatch(rec)
	if err != nil {
		return nil, err
	}

	ctx, span := core.StartSpan(ctx, tracerName, "product.Update",
		attribute.Int64("product.id", id),
	)
	defer func() {
		core.EndSpan(span, err)
		metrics.RecordMutation("update", err)
	}()

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if patch.CategorySet {
		s.invalidateCategories(ctx)
	}

	return &UpdateResponse{
		Status: "success",
		Item:   ToProductResponse(updated),
	}, nil
}

func (s *Service) Delete(ctx context.Context, id int64) (resp *DeleteResponse, err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "product.Delete",
		attribute.Int64("product.id", id),
	)
	defer func() {
		core.EndSpan(span, err)
		metrics.RecordMutation("delete", err)
	}()

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.invalidateCategories(ctx)

	return &DeleteResponse{Status: "deleted", ID: id}, nil
}

// Categories serves from the cache when possible. Cache failures are logged
// and fall through to the repository.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx)
		if err != nil {
			slog.WarnContext(ctx, "categories cache read failed", "error", err)
		}
		metrics.RecordCacheLookup(categoriesCacheKey, found)
		if found {
			return cached, nil
		}
	}

	categories, err := s.repo.DistinctCategories(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, categories); err != nil {
			slog.WarnContext(ctx, "categories cache write failed", "error", err)
		}
	}

	return categories, nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) invalidateCategories(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		slog.WarnContext(ctx, "categories cache invalidation failed", "error", err)
	}
}
