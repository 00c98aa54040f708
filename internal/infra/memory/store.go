// Package memory is an in-memory implementation of app.TxStore. Transactions
// are serialised behind one mutex and work on a cloned snapshot that replaces
// the live data only when the transaction function succeeds. It is intended
// for tests and local development.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"scholarship_admin/internal/app"
	"scholarship_admin/internal/domain/application"
	"scholarship_admin/internal/domain/cycle"
	"scholarship_admin/internal/domain/errs"
)

type data struct {
	nextID       int64
	sponsors     map[int64]cycle.Sponsor
	programs     map[int64]cycle.Program
	cycles       map[int64]cycle.Cycle
	criteria     map[int64]cycle.Criterion
	applications map[int64]application.Application
	documents    map[int64]application.Document
	reviews      map[int64]application.Review
	history      map[int64]application.History
}

func newData() *data {
	return &data{
		nextID:       1,
		sponsors:     make(map[int64]cycle.Sponsor),
		programs:     make(map[int64]cycle.Program),
		cycles:       make(map[int64]cycle.Cycle),
		criteria:     make(map[int64]cycle.Criterion),
		applications: make(map[int64]application.Application),
		documents:    make(map[int64]application.Document),
		reviews:      make(map[int64]application.Review),
		history:      make(map[int64]application.History),
	}
}

func (d *data) clone() *data {
	c := &data{
		nextID:       d.nextID,
		sponsors:     make(map[int64]cycle.Sponsor, len(d.sponsors)),
		programs:     make(map[int64]cycle.Program, len(d.programs)),
		cycles:       make(map[int64]cycle.Cycle, len(d.cycles)),
		criteria:     make(map[int64]cycle.Criterion, len(d.criteria)),
		applications: make(map[int64]application.Application, len(d.applications)),
		documents:    make(map[int64]application.Document, len(d.documents)),
		reviews:      make(map[int64]application.Review, len(d.reviews)),
		history:      make(map[int64]application.History, len(d.history)),
	}
	for k, v := range d.sponsors {
		c.sponsors[k] = v
	}
	for k, v := range d.programs {
		c.programs[k] = v
	}
	for k, v := range d.cycles {
		c.cycles[k] = v
	}
	for k, v := range d.criteria {
		c.criteria[k] = v
	}
	// Stored applications never share AdditionalInfo pointers with callers
	// (see cloneApplication), so a shallow copy is safe here.
	for k, v := range d.applications {
		c.applications[k] = v
	}
	for k, v := range d.documents {
		c.documents[k] = v
	}
	for k, v := range d.reviews {
		c.reviews[k] = v
	}
	for k, v := range d.history {
		c.history[k] = v
	}
	return c
}

func (d *data) newID() int64 {
	id := d.nextID
	d.nextID++
	return id
}

// Store is safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	data *data
	now  func() time.Time
}

var _ app.TxStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{data: newData(), now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the timestamp source used for created/updated columns.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// view is what repositories operate on: the live data (each call locks and
// commits on its own) or a transaction snapshot (already locked by InTx).
type view struct {
	s  *Store
	tx *data
}

func (v view) begin() (*data, func()) {
	if v.tx != nil {
		return v.tx, func() {}
	}
	v.s.mu.Lock()
	return v.s.data, v.s.mu.Unlock
}

func (s *Store) Cycles() cycle.Repository             { return cycleRepo{view{s: s}} }
func (s *Store) Applications() application.Repository { return applicationRepo{view{s: s}} }
func (s *Store) Cascade() app.CascadeStore            { return cascadeStore{view{s: s}} }

// InTx runs fn against a snapshot and swaps it in when fn returns nil.
func (s *Store) InTx(ctx context.Context, fn func(tx app.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := s.data.clone()
	if err := fn(txStore{view{s: s, tx: snapshot}}); err != nil {
		return err
	}
	s.data = snapshot
	return nil
}

type txStore struct{ v view }

func (t txStore) Cycles() cycle.Repository             { return cycleRepo{t.v} }
func (t txStore) Applications() application.Repository { return applicationRepo{t.v} }
func (t txStore) Cascade() app.CascadeStore            { return cascadeStore{t.v} }

// cascadeStore --------------------------------------------------------------

type cascadeStore struct{ v view }

func (c cascadeStore) ChildIDs(_ context.Context, child app.Node, parentID int64) ([]int64, error) {
	d, done := c.v.begin()
	defer done()

	switch child {
	case app.NodeApplication:
		var ids []int64
		for id, a := range d.applications {
			if a.CycleID == parentID {
				ids = append(ids, id)
			}
		}
		sortIDs(ids)
		return ids, nil
	}
	return nil, fmt.Errorf("memory: no owned-parent lookup for %s", child)
}

func (c cascadeStore) DeleteChildren(_ context.Context, child app.Node, parentID int64) (int64, error) {
	d, done := c.v.begin()
	defer done()

	var removed int64
	switch child {
	case app.NodeCriterion:
		for id, cr := range d.criteria {
			if cr.CycleID == parentID {
				delete(d.criteria, id)
				removed++
			}
		}
	case app.NodeDocument:
		for id, doc := range d.documents {
			if doc.ApplicationID == parentID {
				delete(d.documents, id)
				removed++
			}
		}
	case app.NodeReview:
		for id, r := range d.reviews {
			if r.ApplicationID == parentID {
				delete(d.reviews, id)
				removed++
			}
		}
	case app.NodeHistory:
		for id, h := range d.history {
			if h.ApplicationID == parentID {
				delete(d.history, id)
				removed++
			}
		}
	case app.NodeApplication:
		for id, a := range d.applications {
			if a.CycleID == parentID {
				delete(d.applications, id)
				removed++
			}
		}
	default:
		return 0, fmt.Errorf("memory: cannot delete children of kind %s", child)
	}
	return removed, nil
}

func (c cascadeStore) DeleteNode(_ context.Context, n app.Node, id int64) (bool, error) {
	d, done := c.v.begin()
	defer done()

	switch n {
	case app.NodeCycle:
		_, ok := d.cycles[id]
		delete(d.cycles, id)
		return ok, nil
	case app.NodeApplication:
		_, ok := d.applications[id]
		delete(d.applications, id)
		return ok, nil
	case app.NodeCriterion:
		_, ok := d.criteria[id]
		delete(d.criteria, id)
		return ok, nil
	case app.NodeDocument:
		_, ok := d.documents[id]
		delete(d.documents, id)
		return ok, nil
	case app.NodeReview:
		_, ok := d.reviews[id]
		delete(d.reviews, id)
		return ok, nil
	case app.NodeHistory:
		_, ok := d.history[id]
		delete(d.history, id)
		return ok, nil
	}
	return false, fmt.Errorf("memory: unknown node kind %s", n)
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%w: %s %d", errs.ErrNotFound, kind, id)
}
