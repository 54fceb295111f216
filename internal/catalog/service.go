package catalog

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-vendas/internal/common"
	"github.com/noah-isme/backend-vendas/internal/db"
)

type queryProvider interface {
	InsertProduct(ctx context.Context, arg db.InsertProductParams) (db.Product, error)
	GetProductByID(ctx context.Context, id pgtype.UUID) (db.Product, error)
	ListProducts(ctx context.Context, arg db.ListProductsParams) ([]db.Product, error)
	CountProducts(ctx context.Context) (int64, error)
	DeleteProduct(ctx context.Context, id pgtype.UUID) (int64, error)
}

// Service orchestrates product queries, DTO assembly, and caching.
type Service struct {
	queries queryProvider
	cache   *Cache
	logger  zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries queryProvider
	Cache   *Cache
	Logger  zerolog.Logger
}

// NewService validates dependencies and builds a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("catalog: queries are required")
	}
	return &Service{queries: cfg.Queries, cache: cfg.Cache, logger: cfg.Logger}, nil
}

// Product is the API representation of a catalog product. Price is in minor
// units of the configured currency.
type Product struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Stock int32  `json:"stock"`
}

// CreateInput carries a new product payload.
type CreateInput struct {
	Name  string `json:"name" validate:"required,min=1,max=200"`
	Price int64  `json:"price" validate:"required,gt=0"`
	Stock int32  `json:"stock" validate:"gte=0"`
}

var errProductNotFound = common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, nil)

func cacheKey(id string) string { return "product:" + id }

// Create stores a new product. The id is generated server side, so no cache
// entry can exist for it yet.
func (s *Service) Create(ctx context.Context, in CreateInput) (Product, error) {
	row, err := s.queries.InsertProduct(ctx, db.InsertProductParams{
		Name:  in.Name,
		Price: in.Price,
		Stock: in.Stock,
	})
	if err != nil {
		return Product{}, err
	}
	return toProduct(row), nil
}

// Get returns one product, served from cache when possible. Cache trouble is
// logged and bypassed; the database remains authoritative.
func (s *Service) Get(ctx context.Context, id pgtype.UUID) (Product, error) {
	key := cacheKey(common.UUIDString(id))
	var cached Product
	hit, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("product cache read failed")
	}
	if hit {
		return cached, nil
	}
	row, err := s.queries.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, errProductNotFound
		}
		return Product{}, err
	}
	p := toProduct(row)
	if err := s.cache.SetJSON(ctx, key, p); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("product cache write failed")
	}
	return p, nil
}

// List returns a page of products plus the overall count.
func (s *Service) List(ctx context.Context, page, perPage int) ([]Product, int64, error) {
	total, err := s.queries.CountProducts(ctx)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.queries.ListProducts(ctx, db.ListProductsParams{
		LimitValue:  int32(perPage),
		OffsetValue: int32((page - 1) * perPage),
	})
	if err != nil {
		return nil, 0, err
	}
	out := make([]Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, toProduct(row))
	}
	return out, total, nil
}

// Delete removes a product and invalidates its cache entry.
func (s *Service) Delete(ctx context.Context, id pgtype.UUID) error {
	affected, err := s.queries.DeleteProduct(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errProductNotFound
	}
	key := cacheKey(common.UUIDString(id))
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("product cache invalidation failed")
	}
	return nil
}

func toProduct(row db.Product) Product {
	return Product{
		ID:    common.UUIDString(row.ID),
		Name:  row.Name,
		Price: row.Price,
		Stock: row.Stock,
	}
}
