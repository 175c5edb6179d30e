package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"settlement-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetPlaceByID retrieves a place by ID
func (s *Store) GetPlaceByID(ctx context.Context, id int64) (*models.Place, error) {
	var place models.Place
	err := s.db.GetContext(ctx, &place, "SELECT * FROM places WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "place", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &place, nil
}

// GetCatalogItemByID retrieves a catalog item by ID
func (s *Store) GetCatalogItemByID(ctx context.Context, id int64) (*models.CatalogItem, error) {
	var item models.CatalogItem
	err := s.db.GetContext(ctx, &item, "SELECT * FROM catalog_items WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "catalog item", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetCatalogItemsByIDs retrieves multiple catalog items by IDs
func (s *Store) GetCatalogItemsByIDs(ctx context.Context, ids []int64) ([]models.CatalogItem, error) {
	if len(ids) == 0 {
		return []models.CatalogItem{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM catalog_items WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var items []models.CatalogItem
	err = s.db.SelectContext(ctx, &items, query, args...)
	return items, err
}

// GetCatalogItemsByPlace retrieves a place's full menu
func (s *Store) GetCatalogItemsByPlace(ctx context.Context, placeID int64) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM catalog_items WHERE place_id = $1 ORDER BY id", placeID)
	return items, err
}

// UpdateCatalogItemPrice changes a catalog price. Existing order snapshots
// are unaffected.
func (s *Store) UpdateCatalogItemPrice(ctx context.Context, itemID, price int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE catalog_items SET price = $1, updated_at = NOW() WHERE id = $2",
		price, itemID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &models.NotFoundError{Entity: "catalog item", ID: itemID}
	}
	return nil
}

// IsEventProcessed checks if a confirmation event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks a confirmation event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
