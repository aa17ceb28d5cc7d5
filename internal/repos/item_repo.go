package repos

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jainjy/servo-sub017/internal/domain"
)

var ErrUnknownCollection = errors.New("unknown collection")

type ItemRepo struct{ db *sqlx.DB }

func NewItemRepo(db *sqlx.DB) *ItemRepo { return &ItemRepo{db: db} }

type itemRow struct {
	Collection     string          `db:"collection"`
	ID             string          `db:"id"`
	Label          string          `db:"label"`
	Description    string          `db:"description"`
	Category       string          `db:"category"`
	Price          sql.NullFloat64 `db:"price"`
	TagsJSON       string          `db:"tags_json"`
	AttributesJSON string          `db:"attributes_json"`
}

func (r itemRow) toDomain() (domain.CatalogItem, error) {
	it := domain.CatalogItem{
		ID:          r.ID,
		Collection:  r.Collection,
		Label:       r.Label,
		Description: r.Description,
		Category:    r.Category,
	}
	if r.Price.Valid {
		p := r.Price.Float64
		it.Price = &p
	}
	if err := json.Unmarshal([]byte(r.TagsJSON), &it.Tags); err != nil {
		return domain.CatalogItem{}, fmt.Errorf("item %s tags: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.AttributesJSON), &it.Attributes); err != nil {
		return domain.CatalogItem{}, fmt.Errorf("item %s attributes: %w", r.ID, err)
	}
	return it, nil
}

func (r *ItemRepo) Collections() ([]domain.Collection, error) {
	var out []domain.Collection
	err := r.db.Select(&out, `SELECT name, title, COALESCE(created_at,'') AS created_at FROM collections ORDER BY name`)
	return out, err
}

// List returns the items of a collection in source order.
func (r *ItemRepo) List(collection string) ([]domain.CatalogItem, error) {
	var n int
	if err := r.db.Get(&n, `SELECT COUNT(*) FROM collections WHERE name = ?`, collection); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrUnknownCollection
	}

	var rows []itemRow
	if err := r.db.Select(&rows, `
	  SELECT collection, id, label, description, category, price, tags_json, attributes_json
	  FROM items
	  WHERE collection = ?
	  ORDER BY position
	`, collection); err != nil {
		return nil, err
	}
	out := make([]domain.CatalogItem, 0, len(rows))
	for _, row := range rows {
		it, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

// Get returns sql.ErrNoRows when the item does not exist.
func (r *ItemRepo) Get(collection, id string) (domain.CatalogItem, error) {
	var row itemRow
	if err := r.db.Get(&row, `
	  SELECT collection, id, label, description, category, price, tags_json, attributes_json
	  FROM items
	  WHERE collection = ? AND id = ?
	`, collection, id); err != nil {
		return domain.CatalogItem{}, err
	}
	return row.toDomain()
}

// Replace swaps the whole content of a collection, creating it if needed.
// Item ids must be unique within the collection.
func (r *ItemRepo) Replace(collection, title string, items []domain.CatalogItem) error {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("duplicate item id %q in %s", it.ID, collection)
		}
		seen[it.ID] = struct{}{}
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO collections(name, title, created_at) VALUES(?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET title = excluded.title
	`, collection, title); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM items WHERE collection = ?`, collection); err != nil {
		return err
	}
	for i, it := range items {
		tags, err := json.Marshal(nonNilTags(it.Tags))
		if err != nil {
			return err
		}
		attrs, err := json.Marshal(nonNilAttrs(it.Attributes))
		if err != nil {
			return err
		}
		var price any
		if it.Price != nil {
			price = *it.Price
		}
		if _, err := tx.Exec(`
			INSERT INTO items(collection, id, position, label, description, category, price, tags_json, attributes_json, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		`, collection, it.ID, i+1, it.Label, it.Description, it.Category, price, string(tags), string(attrs)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func nonNilTags(t []string) []string {
	if t == nil {
		return []string{}
	}
	return t
}

func nonNilAttrs(a map[string]string) map[string]string {
	if a == nil {
		return map[string]string{}
	}
	return a
}
