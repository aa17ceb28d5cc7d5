package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jainjy/servo-sub017/internal/forms"
	"github.com/jainjy/servo-sub017/internal/identity"
	"github.com/jainjy/servo-sub017/internal/modal"
	"github.com/jainjy/servo-sub017/internal/repos"
	"github.com/jainjy/servo-sub017/internal/reservation"
)

var (
	ErrFormNotOffered = errors.New("form not offered for this collection")
	ErrModalClosed    = errors.New("modal is closed")
)

// BookingService opens reservation modals for catalog items and journals
// every submission they make.
type BookingService struct {
	Forms      *forms.Registry
	Catalog    *CatalogService
	API        reservation.API
	Identities identity.Backend
	Modals     *modal.Manager
	Journal    *repos.SubmissionRepo
	Log        *zap.Logger
}

type OpenRequest struct {
	SessionID  string
	Form       string
	Collection string
	ItemID     string
	Fields     map[string]string
}

func (s *BookingService) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// Open creates a modal for the item and opens it, prefilled for the session.
func (s *BookingService) Open(ctx context.Context, req OpenRequest) (modal.Snapshot, error) {
	def, err := s.Forms.Get(req.Form)
	if err != nil {
		return modal.Snapshot{}, err
	}
	if !def.Accepts(req.Collection) {
		return modal.Snapshot{}, ErrFormNotOffered
	}
	item, err := s.Catalog.Item(req.Collection, req.ItemID)
	if err != nil {
		return modal.Snapshot{}, err
	}

	ctrl := reservation.New(reservation.Options{
		Definition: def,
		API:        s.API,
		Identity:   identity.ForSession(s.Identities, req.SessionID),
		Logger:     s.logger().With(zap.String("session", req.SessionID)),
		OnResult:   s.journal(req.SessionID),
	})
	sh := s.Modals.Create(req.SessionID, ctrl)
	return sh.Open(ctx, item, req.Fields), nil
}

func (s *BookingService) Get(sid, id string) (modal.Snapshot, error) {
	sh, err := s.Modals.Get(sid, id)
	if err != nil {
		return modal.Snapshot{}, err
	}
	return sh.Snapshot(), nil
}

// UpdateFields applies typed values in one go.
func (s *BookingService) UpdateFields(sid, id string, fields map[string]string) (modal.Snapshot, error) {
	sh, err := s.openShell(sid, id)
	if err != nil {
		return modal.Snapshot{}, err
	}
	ctrl := sh.Controller()
	for k, v := range fields {
		ctrl.UpdateField(k, v)
	}
	return sh.Snapshot(), nil
}

func (s *BookingService) Submit(ctx context.Context, sid, id string) (modal.Snapshot, error) {
	sh, err := s.openShell(sid, id)
	if err != nil {
		return modal.Snapshot{}, err
	}
	sh.Controller().Submit(ctx)
	return sh.Snapshot(), nil
}

func (s *BookingService) Close(sid, id string) error {
	return s.Modals.Remove(sid, id)
}

func (s *BookingService) openShell(sid, id string) (*modal.Shell, error) {
	sh, err := s.Modals.Get(sid, id)
	if err != nil {
		return nil, err
	}
	if !sh.IsOpen() {
		return nil, ErrModalClosed
	}
	return sh, nil
}

func (s *BookingService) journal(sid string) func(reservation.Result) {
	return func(r reservation.Result) {
		if s.Journal == nil {
			return
		}
		err := s.Journal.Record(repos.SubmissionRow{
			ID:         uuid.NewString(),
			Form:       r.Form,
			Collection: r.Collection,
			ItemID:     r.ItemID,
			SessionID:  sid,
			Status:     string(r.Status),
			Message:    r.Message,
		})
		if err != nil {
			s.logger().Error("journal.record", zap.String("form", r.Form), zap.Error(err))
		}
	}
}
