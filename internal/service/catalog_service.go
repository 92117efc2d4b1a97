package service

import (
	"context"
	"encoding/json"
	"time"

	"estimate-service/internal/models"
	"estimate-service/internal/store"
	"estimate-service/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultCatalogTTL is how long a cached catalog listing stays valid
const DefaultCatalogTTL = 5 * time.Minute

// Catalog is the standard price catalog grouped by price type
type Catalog struct {
	Material  []models.StandardPrice `json:"material"`
	Labor     []models.StandardPrice `json:"labor"`
	Composite []models.StandardPrice `json:"composite"`
}

// CatalogService serves catalog reads
type CatalogService struct {
	store  store.Repository
	cache  CatalogCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service. cache may be nil.
func NewCatalogService(repo store.Repository, cache CatalogCache, ttl time.Duration) *CatalogService {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogService{
		store:  repo,
		cache:  cache,
		ttl:    ttl,
		logger: util.GetLogger(),
	}
}

// List returns the active catalog. The three price types are read concurrently.
func (s *CatalogService) List(ctx context.Context) (*Catalog, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.List")
	defer span.End()

	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	catalog := &Catalog{}
	g, gctx := errgroup.WithContext(ctx)
	for priceType, dst := range map[string]*[]models.StandardPrice{
		models.PriceTypeMaterial:  &catalog.Material,
		models.PriceTypeLabor:     &catalog.Labor,
		models.PriceTypeComposite: &catalog.Composite,
	} {
		priceType, dst := priceType, dst
		g.Go(func() error {
			prices, err := s.store.ListStandardPrices(gctx, priceType)
			if err != nil {
				return storeError("list "+priceType+" prices", err)
			}
			if prices == nil {
				prices = []models.StandardPrice{}
			}
			*dst = prices
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.toCache(ctx, catalog)
	return catalog, nil
}

func (s *CatalogService) fromCache(ctx context.Context) *Catalog {
	if s.cache == nil {
		return nil
	}

	data, ok, err := s.cache.GetCatalog(ctx)
	if err != nil {
		util.CatalogCacheTotal.WithLabelValues("error").Inc()
		s.logger.Warn("Catalog cache read failed", zap.Error(err))
		return nil
	}
	if !ok {
		util.CatalogCacheTotal.WithLabelValues("miss").Inc()
		return nil
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		util.CatalogCacheTotal.WithLabelValues("error").Inc()
		s.logger.Warn("Discarding malformed cached catalog", zap.Error(err))
		return nil
	}
	util.CatalogCacheTotal.WithLabelValues("hit").Inc()
	return &catalog
}

func (s *CatalogService) toCache(ctx context.Context, catalog *Catalog) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(catalog)
	if err != nil {
		s.logger.Warn("Failed to encode catalog for cache", zap.Error(err))
		return
	}
	if err := s.cache.SetCatalog(ctx, data, s.ttl); err != nil {
		s.logger.Warn("Failed to cache catalog", zap.Error(err))
	}
}
