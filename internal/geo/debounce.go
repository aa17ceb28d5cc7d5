package geo

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Debouncer runs fn once input has been quiet for the delay. Every Trigger
// cancels the pending run and restarts the timer.
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

func (d *Debouncer) Trigger(fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.timer = time.AfterFunc(d.delay, func() { fn(ctx) })
}

// Stop drops the pending run and cancels one already in flight.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

type Searcher interface {
	Search(ctx context.Context, q string) (Place, error)
}

// AddressSearch feeds keystrokes of an address field to the geocoder. Only
// the settled query is looked up; results for superseded queries are
// dropped.
type AddressSearch struct {
	geo      Searcher
	debounce *Debouncer
	onPlace  func(query string, p Place)
	log      *zap.Logger

	mu     sync.Mutex
	latest string
}

func NewAddressSearch(g Searcher, delay time.Duration, onPlace func(string, Place), log *zap.Logger) *AddressSearch {
	if log == nil {
		log = zap.NewNop()
	}
	return &AddressSearch{geo: g, debounce: NewDebouncer(delay), onPlace: onPlace, log: log}
}

// Input records the current text of the field. Queries shorter than three
// characters are not looked up.
func (a *AddressSearch) Input(text string) {
	q := strings.TrimSpace(text)
	a.mu.Lock()
	a.latest = q
	a.mu.Unlock()
	if len([]rune(q)) < 3 {
		a.debounce.Stop()
		return
	}
	a.debounce.Trigger(func(ctx context.Context) {
		p, err := a.geo.Search(ctx, q)
		if err != nil {
			a.log.Debug("geocode.search", zap.String("q", q), zap.Error(err))
			return
		}
		a.mu.Lock()
		current := a.latest == q
		a.mu.Unlock()
		if current && ctx.Err() == nil {
			a.onPlace(q, p)
		}
	})
}

// Current is the text last passed to Input, trimmed.
func (a *AddressSearch) Current() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.latest
}

func (a *AddressSearch) Close() { a.debounce.Stop() }
