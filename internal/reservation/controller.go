// Package reservation implements the form controller behind every booking
// modal: prefill from the stored identity, local validation, a single
// guarded submission and the success/failure lifecycle.
package reservation

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jainjy/servo-sub017/internal/apiclient"
	"github.com/jainjy/servo-sub017/internal/domain"
	"github.com/jainjy/servo-sub017/internal/forms"
	"github.com/jainjy/servo-sub017/internal/metrics"
)

const validationMessage = "Veuillez remplir les champs obligatoires."

// API is the slice of the REST backend a form needs.
type API interface {
	FetchProfile(ctx context.Context, token string) (domain.StoredIdentity, error)
	Submit(ctx context.Context, path, token string, payload map[string]any) (json.RawMessage, error)
}

type IdentityStore interface {
	Load(ctx context.Context) (domain.StoredIdentity, error)
	SaveProfile(ctx context.Context, id domain.StoredIdentity) error
}

// Result describes one completed submission attempt.
type Result struct {
	Form       string
	Collection string
	ItemID     string
	Status     domain.SubmissionStatus
	Message    string
}

type Options struct {
	Definition forms.Definition
	API        API
	Identity   IdentityStore
	Logger     *zap.Logger
	// OnResult is called after every network submission, outside the lock.
	OnResult func(Result)
}

// InitialContext is what the opener knows: the chosen item and optional
// preset field values.
type InitialContext struct {
	Item   domain.CatalogItem
	Fields map[string]string
}

type Controller struct {
	def      forms.Definition
	api      API
	ids      IdentityStore
	log      *zap.Logger
	onResult func(Result)

	mu          sync.Mutex
	gen         uint64
	item        domain.CatalogItem
	identity    domain.StoredIdentity
	fields      map[string]string
	fieldErrors map[string]string
	status      domain.SubmissionStatus
	errMsg      string
	source      domain.PrefillSource
	closeTimer  *time.Timer
	closer      func()
}

func New(opts Options) *Controller {
	l := opts.Logger
	if l == nil {
		l = zap.NewNop()
	}
	return &Controller{
		def:      opts.Definition,
		api:      opts.API,
		ids:      opts.Identity,
		log:      l.With(zap.String("form", opts.Definition.Name)),
		onResult: opts.OnResult,
		fields:   map[string]string{},
		status:   domain.StatusIdle,
		source:   domain.PrefillNone,
	}
}

// SetCloser registers the function run when a successful submission
// auto-closes the form.
func (c *Controller) SetCloser(fn func()) {
	c.mu.Lock()
	c.closer = fn
	c.mu.Unlock()
}

func (c *Controller) Definition() forms.Definition { return c.def }

func (c *Controller) Item() domain.CatalogItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.item
}

// Open starts a fresh instance for init.Item. When the session is
// authenticated the fields are prefilled; an incomplete stored identity is
// completed from the remote profile, which is cached back to storage.
// Prefill failures are logged and leave the fields blank.
func (c *Controller) Open(ctx context.Context, init InitialContext) domain.ReservationFormState {
	c.mu.Lock()
	c.resetLocked()
	c.item = init.Item
	for k, v := range init.Fields {
		c.fields[k] = v
	}
	gen := c.gen
	c.mu.Unlock()

	id, src, ok := c.resolveIdentity(ctx)
	if !ok {
		return c.State()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return c.stateLocked()
	}
	c.identity = id
	c.prefillLocked(id, src)
	return c.stateLocked()
}

func (c *Controller) resolveIdentity(ctx context.Context) (domain.StoredIdentity, domain.PrefillSource, bool) {
	if c.ids == nil {
		return domain.StoredIdentity{}, domain.PrefillNone, false
	}
	id, err := c.ids.Load(ctx)
	if err != nil {
		c.log.Warn("prefill.identity.read", zap.Error(err))
		return domain.StoredIdentity{}, domain.PrefillNone, false
	}
	if !id.Authenticated() {
		return id, domain.PrefillNone, false
	}
	if id.Complete() || c.api == nil {
		return id, domain.PrefillStoredIdentity, true
	}

	remote, err := c.api.FetchProfile(ctx, id.Token)
	if err != nil {
		c.log.Warn("prefill.profile.fetch", zap.Error(err))
		return id, domain.PrefillStoredIdentity, true
	}
	merged := id.Merge(remote)
	if merged == id {
		return id, domain.PrefillStoredIdentity, true
	}
	if err := c.ids.SaveProfile(ctx, merged); err != nil {
		c.log.Warn("prefill.profile.cache", zap.Error(err))
	}
	return merged, domain.PrefillRemoteProfile, true
}

// Prefill merges identity into the empty name, email and phone fields.
// Values the user already typed are kept.
func (c *Controller) Prefill(id domain.StoredIdentity) domain.ReservationFormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prefillLocked(id, domain.PrefillStoredIdentity)
	return c.stateLocked()
}

func (c *Controller) prefillLocked(id domain.StoredIdentity, src domain.PrefillSource) {
	applied := false
	set := func(field, value string) {
		if field == "" || value == "" || c.fields[field] != "" {
			return
		}
		c.fields[field] = value
		applied = true
	}
	set(c.def.NameField, id.FullName())
	set(c.def.EmailField, id.Email)
	set(c.def.PhoneField, id.Phone)
	if applied {
		c.source = src
		metrics.ObservePrefill(c.def.Name, string(src))
	}
}

// UpdateField assigns one field and clears its recorded validation error.
func (c *Controller) UpdateField(name, value string) domain.ReservationFormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields[name] = value
	delete(c.fieldErrors, name)
	return c.stateLocked()
}

// Submit validates locally and, when valid, performs exactly one network
// write. Calling Submit while a submission is in flight is a no-op.
func (c *Controller) Submit(ctx context.Context) domain.ReservationFormState {
	c.mu.Lock()
	if c.status == domain.StatusSubmitting {
		st := c.stateLocked()
		c.mu.Unlock()
		return st
	}
	if errs := c.validateLocked(); len(errs) > 0 {
		c.status = domain.StatusFailed
		c.fieldErrors = errs
		c.errMsg = validationMessage
		st := c.stateLocked()
		c.mu.Unlock()
		metrics.ObserveSubmission(c.def.Name, "invalid")
		return st
	}
	c.status = domain.StatusSubmitting
	c.errMsg = ""
	c.fieldErrors = nil
	gen := c.gen
	item := c.item
	token := c.identity.Token
	payload := buildPayload(c.def, item, c.fields)
	c.mu.Unlock()

	_, err := c.api.Submit(ctx, c.def.Endpoint, token, payload)

	res := Result{Form: c.def.Name, Collection: item.Collection, ItemID: item.ID, Status: domain.StatusSucceeded}
	if err != nil {
		res.Status = domain.StatusFailed
		res.Message = apiclient.UserMessage(err)
		c.log.Warn("submit.failed", zap.String("item", item.ID), zap.Error(err))
	}
	metrics.ObserveSubmission(c.def.Name, string(res.Status))
	if c.onResult != nil {
		c.onResult(res)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		// closed or reopened meanwhile: the response belongs to a dead instance
		return c.stateLocked()
	}
	if err != nil {
		c.status = domain.StatusFailed
		c.errMsg = res.Message
		return c.stateLocked()
	}
	c.status = domain.StatusSucceeded
	c.fields = map[string]string{}
	if c.identity.Authenticated() {
		src := c.source
		if src == domain.PrefillNone {
			src = domain.PrefillStoredIdentity
		}
		c.prefillLocked(c.identity, src)
	}
	c.scheduleCloseLocked(gen)
	return c.stateLocked()
}

func (c *Controller) scheduleCloseLocked(gen uint64) {
	if c.closeTimer != nil {
		c.closeTimer.Stop()
	}
	c.closeTimer = time.AfterFunc(c.def.AutoClose, func() {
		c.mu.Lock()
		if c.gen != gen || c.status != domain.StatusSucceeded {
			c.mu.Unlock()
			return
		}
		closer := c.closer
		c.mu.Unlock()
		if closer != nil {
			closer()
		}
	})
}

// Reset discards every field and returns to Idle. In-flight results are
// ignored afterwards.
func (c *Controller) Reset() domain.ReservationFormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	return c.stateLocked()
}

func (c *Controller) resetLocked() {
	c.gen++
	if c.closeTimer != nil {
		c.closeTimer.Stop()
		c.closeTimer = nil
	}
	c.item = domain.CatalogItem{}
	c.identity = domain.StoredIdentity{}
	c.fields = map[string]string{}
	c.fieldErrors = nil
	c.status = domain.StatusIdle
	c.errMsg = ""
	c.source = domain.PrefillNone
}

func (c *Controller) State() domain.ReservationFormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() domain.ReservationFormState {
	st := domain.ReservationFormState{
		Fields:           make(map[string]string, len(c.fields)),
		SubmissionStatus: c.status,
		ErrorMessage:     c.errMsg,
		PrefillSource:    c.source,
	}
	for k, v := range c.fields {
		st.Fields[k] = v
	}
	if len(c.fieldErrors) > 0 {
		st.FieldErrors = make(map[string]string, len(c.fieldErrors))
		for k, v := range c.fieldErrors {
			st.FieldErrors[k] = v
		}
	}
	return st
}
