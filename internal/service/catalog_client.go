package service

import (
	"context"
	"time"

	"settlement-service/internal/models"
	"settlement-service/internal/redisclient"
	"settlement-service/internal/store"
	"settlement-service/internal/util"

	"go.uber.org/zap"
)

const priceCacheTTL = 5 * time.Minute

// CatalogClient reads catalog prices for order snapshotting, Redis-cached
// with a Postgres fallback.
type CatalogClient struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewCatalogClient creates a new catalog client
func NewCatalogClient(store *store.Store, redis *redisclient.Client) *CatalogClient {
	return &CatalogClient{
		store:  store,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// GetItemPrice returns the current price for a catalog item. Cache misses
// and Redis failures fall back to the database; the cache is refilled off
// the request path.
func (cc *CatalogClient) GetItemPrice(ctx context.Context, itemID int64) (int64, error) {
	ctx, span := util.StartSpan(ctx, "CatalogClient.GetItemPrice")
	defer span.End()

	price, hit, err := cc.redis.GetItemPrice(ctx, itemID)
	if err != nil {
		cc.logger.Warn("Price cache read failed, falling back to DB",
			zap.Int64("item_id", itemID),
			zap.Error(err))
	}
	if hit {
		util.CatalogCacheHits.WithLabelValues("hit").Inc()
		return price, nil
	}
	util.CatalogCacheHits.WithLabelValues("miss").Inc()

	item, err := cc.store.GetCatalogItemByID(ctx, itemID)
	if err != nil {
		return 0, err
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := cc.redis.SetItemPrice(ctx, item.ID, item.Price, priceCacheTTL); err != nil {
			cc.logger.Error("Failed to fill price cache",
				zap.Int64("item_id", item.ID),
				zap.Error(err))
		}
	}()

	return item.Price, nil
}

// UpdateItemPrice changes a catalog price and drops the cached value.
// Orders snapshotted before the change keep their old unit prices.
func (cc *CatalogClient) UpdateItemPrice(ctx context.Context, itemID, price int64) error {
	ctx, span := util.StartSpan(ctx, "CatalogClient.UpdateItemPrice")
	defer span.End()

	if price < 0 {
		return &models.ValidationError{Reason: "price must not be negative"}
	}

	if err := cc.store.UpdateCatalogItemPrice(ctx, itemID, price); err != nil {
		return err
	}

	if err := cc.redis.InvalidateItemPrice(ctx, itemID); err != nil {
		cc.logger.Error("Failed to invalidate price cache",
			zap.Int64("item_id", itemID),
			zap.Error(err))
	}
	return nil
}

// GetMenu retrieves a place's catalog
func (cc *CatalogClient) GetMenu(ctx context.Context, placeID int64) ([]models.CatalogItem, error) {
	return cc.store.GetCatalogItemsByPlace(ctx, placeID)
}
