package handlers

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/jainjy/servo-sub017/internal/apiclient"
	"github.com/jainjy/servo-sub017/internal/config"
	"github.com/jainjy/servo-sub017/internal/forms"
	"github.com/jainjy/servo-sub017/internal/geo"
	"github.com/jainjy/servo-sub017/internal/identity"
	"github.com/jainjy/servo-sub017/internal/modal"
	"github.com/jainjy/servo-sub017/internal/repos"
	"github.com/jainjy/servo-sub017/internal/services"
)

type Deps struct {
	CatalogHandler  *CatalogHandler
	IdentityHandler *IdentityHandler
	ModalHandler    *ModalHandler
	GeocodeHandler  *GeocodeHandler

	Catalog *services.CatalogService
}

func NewDeps(db *sqlx.DB, cfg config.Config, api *apiclient.Client, backend identity.Backend, reg *forms.Registry, logger *zap.Logger) *Deps {
	if logger == nil {
		logger = zap.NewNop()
	}
	itemRepo := repos.NewItemRepo(db)
	subRepo := repos.NewSubmissionRepo(db)

	catalogSvc := services.NewCatalogService(itemRepo, api, logger.Named("catalog"))
	identitySvc := &services.IdentityService{Backend: backend}
	bookingSvc := &services.BookingService{
		Forms:      reg,
		Catalog:    catalogSvc,
		API:        api,
		Identities: backend,
		Modals:     modal.NewManager(modal.DefaultPerSession),
		Journal:    subRepo,
		Log:        logger.Named("booking"),
	}
	geoClient := geo.NewClient(cfg.Geocoder.URL, cfg.Geocoder.UserAgent, cfg.API.Timeout)

	return &Deps{
		CatalogHandler:  &CatalogHandler{Catalog: catalogSvc, Forms: reg},
		IdentityHandler: &IdentityHandler{Identity: identitySvc},
		ModalHandler:    &ModalHandler{Booking: bookingSvc},
		GeocodeHandler: &GeocodeHandler{
			Geo:     geoClient,
			Suggest: geo.NewSuggester(geoClient, cfg.Geocoder.Debounce, geo.DefaultMaxSessions, logger.Named("geo")),
		},
		Catalog: catalogSvc,
	}
}
