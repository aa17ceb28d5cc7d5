package apiclient

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jainjy/servo-sub017/internal/domain"
)

type remoteProfile struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Prenom    string `json:"prenom"`
	Nom       string `json:"nom"`
	Telephone string `json:"telephone"`
}

func (p remoteProfile) identity() domain.StoredIdentity {
	return domain.StoredIdentity{
		Email:     p.Email,
		FirstName: firstNonEmpty(p.FirstName, p.Prenom),
		LastName:  firstNonEmpty(p.LastName, p.Nom),
		Phone:     firstNonEmpty(p.Phone, p.Telephone),
	}
}

// remoteItem accepts the field spellings used across the catalog endpoints.
type remoteItem struct {
	ID          json.RawMessage `json:"id"`
	Label       string          `json:"label"`
	Libelle     string          `json:"libelle"`
	Name        string          `json:"name"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Categorie   string          `json:"categorie"`
	Price       *float64        `json:"price"`
	Prix        *float64        `json:"prix"`
	Tags        []string        `json:"tags"`
	Rating      json.Number     `json:"rating"`
	Location    string          `json:"location"`
	Duration    string          `json:"duration"`
}

func (r remoteItem) item(collection string) domain.CatalogItem {
	it := domain.CatalogItem{
		ID:          rawID(r.ID),
		Collection:  collection,
		Label:       firstNonEmpty(r.Label, r.Libelle, r.Name, r.Title),
		Description: r.Description,
		Category:    firstNonEmpty(r.Category, r.Categorie),
		Tags:        r.Tags,
		Price:       r.Price,
	}
	if it.Price == nil {
		it.Price = r.Prix
	}
	attrs := map[string]string{}
	if r.Rating != "" {
		attrs["rating"] = r.Rating.String()
	}
	if r.Location != "" {
		attrs["location"] = r.Location
	}
	if r.Duration != "" {
		attrs["duration"] = r.Duration
	}
	if len(attrs) > 0 {
		it.Attributes = attrs
	}
	return it
}

// rawID renders numeric and string ids the same way.
func rawID(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	if unq, err := strconv.Unquote(s); err == nil {
		return unq
	}
	return s
}
