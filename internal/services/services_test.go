package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jainjy/servo-sub017/internal/apiclient"
	"github.com/jainjy/servo-sub017/internal/domain"
	"github.com/jainjy/servo-sub017/internal/forms"
	"github.com/jainjy/servo-sub017/internal/identity"
	"github.com/jainjy/servo-sub017/internal/modal"
	"github.com/jainjy/servo-sub017/internal/repos"
	"github.com/jainjy/servo-sub017/internal/services"
)

type fakeRemote struct {
	items map[string][]domain.CatalogItem
	err   error
}

func (f fakeRemote) ListCatalog(_ context.Context, collection string) ([]domain.CatalogItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items[collection], nil
}

type fakeAPI struct {
	mu       sync.Mutex
	err      error
	payloads []map[string]any
}

func (f *fakeAPI) FetchProfile(context.Context, string) (domain.StoredIdentity, error) {
	return domain.StoredIdentity{}, errors.New("unused")
}

func (f *fakeAPI) Submit(_ context.Context, _ string, _ string, payload map[string]any) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	return nil, f.err
}

type fixture struct {
	catalog *services.CatalogService
	booking *services.BookingService
	ids     *services.IdentityService
	journal *repos.SubmissionRepo
	api     *fakeAPI
	backend *identity.MemoryBackend
}

func setup(t *testing.T, remote services.CatalogSource) fixture {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	reg, err := forms.NewRegistry([]forms.Definition{{
		Name:        "demande-visite",
		Endpoint:    "/demandes/visite",
		Collections: []string{"immobilier"},
		ItemKey:     "propertyId",
		Fields:      []string{"nomComplet", "email", "telephone", "date"},
		Required:    []string{"nomComplet", "date"},
	}}, 20*time.Millisecond)
	require.NoError(t, err)

	cat := services.NewCatalogService(repos.NewItemRepo(db), remote, nil)
	api := &fakeAPI{}
	backend := identity.NewMemoryBackend()
	journal := repos.NewSubmissionRepo(db)
	return fixture{
		catalog: cat,
		booking: &services.BookingService{
			Forms:      reg,
			Catalog:    cat,
			API:        api,
			Identities: backend,
			Modals:     modal.NewManager(0),
			Journal:    journal,
		},
		ids:     &services.IdentityService{Backend: backend},
		journal: journal,
		api:     api,
		backend: backend,
	}
}

func TestBrowseFiltersAndListsCategories(t *testing.T) {
	f := setup(t, nil)

	st := domain.DefaultFilterState()
	st.ActiveCategory = "Soins Bien-être"
	l, err := f.catalog.Browse("boutique-naturel", st)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Count)
	assert.Equal(t, "3", l.Items[0].ID)
	assert.Equal(t, []string{"Aromathérapie", "Tisanes", "Soins Bien-être"}, l.Categories)

	_, err = f.catalog.Browse("nope", st)
	assert.ErrorIs(t, err, repos.ErrUnknownCollection)
}

func TestItemNotFound(t *testing.T) {
	f := setup(t, nil)
	_, err := f.catalog.Item("immobilier", "re-404")
	assert.ErrorIs(t, err, services.ErrItemNotFound)
}

func TestSyncReplacesCollection(t *testing.T) {
	price := 99.0
	f := setup(t, fakeRemote{items: map[string][]domain.CatalogItem{
		"immobilier": {{ID: "x-1", Label: "Terrain", Category: "Vente", Price: &price}},
	}})

	n, err := f.catalog.Sync(context.Background(), "immobilier")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	l, err := f.catalog.Browse("immobilier", domain.DefaultFilterState())
	require.NoError(t, err)
	require.Len(t, l.Items, 1)
	assert.Equal(t, "Terrain", l.Items[0].Label)

	_, err = f.catalog.Sync(context.Background(), "nope")
	assert.ErrorIs(t, err, repos.ErrUnknownCollection)
}

func TestSyncAllKeepsContentOnFailure(t *testing.T) {
	f := setup(t, fakeRemote{err: &apiclient.TransportError{Op: "GET /catalog", Err: errors.New("refused")}})
	assert.Error(t, f.catalog.SyncAll(context.Background()))

	l, err := f.catalog.Browse("immobilier", domain.DefaultFilterState())
	require.NoError(t, err)
	assert.Equal(t, 2, l.Count)
}

func TestBookingOpenRejectsForeignCollection(t *testing.T) {
	f := setup(t, nil)
	_, err := f.booking.Open(context.Background(), services.OpenRequest{
		SessionID: "sid", Form: "demande-visite", Collection: "bien-etre", ItemID: "svc-1",
	})
	assert.ErrorIs(t, err, services.ErrFormNotOffered)

	_, err = f.booking.Open(context.Background(), services.OpenRequest{SessionID: "sid", Form: "nope"})
	assert.ErrorIs(t, err, forms.ErrUnknownForm)
}

func TestBookingFlowJournalsAndAutoCloses(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	require.NoError(t, f.ids.SignIn(ctx, "sid", domain.StoredIdentity{
		Token: "tok", Email: "marie@curie.fr", FirstName: "Marie", LastName: "Curie",
	}))

	snap, err := f.booking.Open(ctx, services.OpenRequest{
		SessionID: "sid", Form: "demande-visite", Collection: "immobilier", ItemID: "re-1",
	})
	require.NoError(t, err)
	assert.True(t, snap.Open)
	assert.Equal(t, "Marie Curie", snap.State.Fields["nomComplet"])
	assert.Equal(t, domain.PrefillStoredIdentity, snap.State.PrefillSource)

	snap, err = f.booking.Submit(ctx, "sid", snap.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, snap.State.SubmissionStatus)
	assert.Contains(t, snap.State.FieldErrors, "date")
	assert.Empty(t, f.api.payloads)

	f.api.err = &apiclient.RejectedError{Status: 409, Message: "Créneau indisponible"}
	_, err = f.booking.UpdateFields("sid", snap.ID, map[string]string{"date": "2026-12-01"})
	require.NoError(t, err)
	snap, err = f.booking.Submit(ctx, "sid", snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "Créneau indisponible", snap.State.ErrorMessage)

	f.api.err = nil
	snap, err = f.booking.Submit(ctx, "sid", snap.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSucceeded, snap.State.SubmissionStatus)
	require.Len(t, f.api.payloads, 2)
	assert.Equal(t, "re-1", f.api.payloads[1]["propertyId"])

	assert.Eventually(t, func() bool {
		s, err := f.booking.Get("sid", snap.ID)
		return err == nil && !s.Open
	}, time.Second, 5*time.Millisecond)

	_, err = f.booking.Submit(ctx, "sid", snap.ID)
	assert.ErrorIs(t, err, services.ErrModalClosed)

	rows, err := f.journal.ListBySession("sid")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	statuses := []string{rows[0].Status, rows[1].Status}
	assert.ElementsMatch(t, []string{"Failed", "Succeeded"}, statuses)

	require.NoError(t, f.booking.Close("sid", snap.ID))
	_, err = f.booking.Get("sid", snap.ID)
	assert.ErrorIs(t, err, modal.ErrNotFound)
}

func TestIdentityServiceRequiresToken(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	assert.ErrorIs(t, f.ids.SignIn(ctx, "sid", domain.StoredIdentity{Email: "a@b.c"}), services.ErrMissingToken)

	require.NoError(t, f.ids.SignIn(ctx, "sid", domain.StoredIdentity{Token: " t ", Email: "a@b.c"}))
	id, err := f.ids.Current(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, id.Authenticated())
	assert.Equal(t, "t", id.Token)

	require.NoError(t, f.ids.SignOut(ctx, "sid"))
	id, err = f.ids.Current(ctx, "sid")
	require.NoError(t, err)
	assert.False(t, id.Authenticated())
}
