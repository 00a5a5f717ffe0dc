// Package postgres persists the pricing catalog and branch list in
// PostgreSQL. The catalog is stored as a versioned JSON document, one
// row per published revision; branches are individual rows ordered by
// position. An external sync process writes new revisions; the quote
// engine only reads the latest one.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	rqerrors "rental-quote/internal/errors"

	"rental-quote/core/types"
)

// CatalogRevision is a published snapshot of the pricing catalog.
type CatalogRevision struct {
	ID          uint      `gorm:"primaryKey"`
	Document    []byte    `gorm:"type:jsonb;not null"`
	PublishedAt time.Time `gorm:"index;not null"`
}

// BranchRow is one rental branch. Position preserves the ordering the
// sync process published, which delivery rate overrides rely on.
type BranchRow struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"uniqueIndex;not null"`
	Address  string `gorm:"not null"`
	Position int    `gorm:"index;not null"`
}

// Store implements catalog.Store on top of a gorm connection.
type Store struct {
	db *gorm.DB
}

// Open connects to PostgreSQL, applies the schema and returns a Store.
func Open(dsn string, maxOpen, maxIdle int) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, rqerrors.ConfigUnavailable("connecting to catalog database", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, rqerrors.ConfigUnavailable("configuring catalog database pool", err)
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		sqlDB.SetMaxIdleConns(maxIdle)
	}
	if err := db.AutoMigrate(&CatalogRevision{}, &BranchRow{}); err != nil {
		return nil, rqerrors.ConfigUnavailable("migrating catalog schema", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection, mainly for tests.
func NewWithDB(db *gorm.DB) *Store {
	return &Store{db: db}
}

// LoadCatalog returns the most recently published catalog revision.
func (s *Store) LoadCatalog(ctx context.Context) (*types.PricingCatalog, error) {
	var rev CatalogRevision
	err := s.db.WithContext(ctx).
		Order("published_at DESC, id DESC").
		First(&rev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, rqerrors.ConfigUnavailable("no catalog revision published", nil)
	}
	if err != nil {
		return nil, rqerrors.ConfigUnavailable("loading catalog revision", err)
	}

	var cat types.PricingCatalog
	if err := json.Unmarshal(rev.Document, &cat); err != nil {
		return nil, rqerrors.ConfigUnavailable(
			fmt.Sprintf("decoding catalog revision %d", rev.ID), err)
	}
	return &cat, nil
}

// LoadBranches returns all branches in published order.
func (s *Store) LoadBranches(ctx context.Context) ([]types.BranchLocation, error) {
	var rows []BranchRow
	err := s.db.WithContext(ctx).Order("position ASC").Find(&rows).Error
	if err != nil {
		return nil, rqerrors.ConfigUnavailable("loading branches", err)
	}
	branches := make([]types.BranchLocation, 0, len(rows))
	for _, row := range rows {
		branches = append(branches, types.BranchLocation{
			Name:    row.Name,
			Address: row.Address,
		})
	}
	return branches, nil
}

// PublishCatalog stores a new catalog revision. Older revisions are
// kept so a bad sync can be rolled back by hand.
func (s *Store) PublishCatalog(ctx context.Context, cat *types.PricingCatalog) error {
	doc, err := json.Marshal(cat)
	if err != nil {
		return rqerrors.Internal("encoding catalog revision", err)
	}
	rev := CatalogRevision{Document: doc, PublishedAt: time.Now().UTC()}
	if err := s.db.WithContext(ctx).Create(&rev).Error; err != nil {
		return rqerrors.ConfigUnavailable("publishing catalog revision", err)
	}
	return nil
}

// ReplaceBranches swaps the branch list for the given one, keeping
// list order as position.
func (s *Store) ReplaceBranches(ctx context.Context, branches []types.BranchLocation) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&BranchRow{}).Error; err != nil {
			return rqerrors.ConfigUnavailable("clearing branches", err)
		}
		for i, b := range branches {
			row := BranchRow{Name: b.Name, Address: b.Address, Position: i}
			if err := tx.Create(&row).Error; err != nil {
				return rqerrors.ConfigUnavailable(
					fmt.Sprintf("storing branch %q", b.Name), err)
			}
		}
		return nil
	})
}
