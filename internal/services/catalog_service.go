package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jainjy/servo-sub017/internal/catalog"
	"github.com/jainjy/servo-sub017/internal/domain"
	"github.com/jainjy/servo-sub017/internal/metrics"
	"github.com/jainjy/servo-sub017/internal/repos"
)

var ErrItemNotFound = errors.New("item not found")

// CatalogSource is the remote feed a collection can be refreshed from.
type CatalogSource interface {
	ListCatalog(ctx context.Context, collection string) ([]domain.CatalogItem, error)
}

type CatalogService struct {
	Items  *repos.ItemRepo
	Remote CatalogSource
	Log    *zap.Logger
}

func NewCatalogService(items *repos.ItemRepo, remote CatalogSource, log *zap.Logger) *CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogService{Items: items, Remote: remote, Log: log}
}

// Listing is the visible subset of a collection for one filter state.
type Listing struct {
	Collection string               `json:"collection"`
	State      domain.FilterState   `json:"state"`
	Items      []domain.CatalogItem `json:"items"`
	Count      int                  `json:"count"`
	Categories []string             `json:"categories"`
}

func (s *CatalogService) Collections() ([]domain.Collection, error) {
	return s.Items.Collections()
}

// Browse loads a collection and filters it. Categories are taken from the
// whole collection so the filter bar does not shrink as filters apply.
func (s *CatalogService) Browse(collection string, st domain.FilterState) (Listing, error) {
	items, err := s.Items.List(collection)
	if err != nil {
		return Listing{}, err
	}
	visible := catalog.ComputeVisible(items, st)
	metrics.ObserveFilter(collection, len(visible))
	return Listing{
		Collection: collection,
		State:      st,
		Items:      visible,
		Count:      len(visible),
		Categories: catalog.Categories(items),
	}, nil
}

func (s *CatalogService) Item(collection, id string) (domain.CatalogItem, error) {
	it, err := s.Items.Get(collection, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CatalogItem{}, ErrItemNotFound
	}
	return it, err
}

// Sync replaces a known collection with the remote feed.
func (s *CatalogService) Sync(ctx context.Context, collection string) (int, error) {
	if s.Remote == nil {
		return 0, errors.New("no remote catalog configured")
	}
	cols, err := s.Items.Collections()
	if err != nil {
		return 0, err
	}
	title := ""
	for _, c := range cols {
		if c.Name == collection {
			title = c.Title
		}
	}
	if title == "" {
		return 0, repos.ErrUnknownCollection
	}
	items, err := s.Remote.ListCatalog(ctx, collection)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", collection, err)
	}
	if err := s.Items.Replace(collection, title, items); err != nil {
		return 0, fmt.Errorf("store %s: %w", collection, err)
	}
	return len(items), nil
}

// SyncAll refreshes every collection. A failing collection keeps its
// previous content.
func (s *CatalogService) SyncAll(ctx context.Context) error {
	cols, err := s.Items.Collections()
	if err != nil {
		return err
	}
	var errs []error
	for _, c := range cols {
		n, err := s.Sync(ctx, c.Name)
		if err != nil {
			s.Log.Warn("catalog.sync.fail", zap.String("collection", c.Name), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		s.Log.Info("catalog.sync", zap.String("collection", c.Name), zap.Int("items", n))
	}
	return errors.Join(errs...)
}
