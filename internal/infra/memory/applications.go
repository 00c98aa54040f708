package memory

import (
	"context"
	"fmt"
	"sort"

	"scholarship_admin/internal/domain/application"
	"scholarship_admin/internal/domain/errs"
)

type applicationRepo struct{ v view }

// cloneApplication detaches AdditionalInfo from the caller's pointers by
// sending it through the same serialized form the database column uses.
func cloneApplication(a application.Application) (application.Application, error) {
	raw, err := a.AdditionalInfo.Value()
	if err != nil {
		return a, err
	}
	var info application.AdditionalInfo
	if err := info.Scan(raw); err != nil {
		return a, err
	}
	a.AdditionalInfo = info
	return a, nil
}

func (r applicationRepo) put(d *data, a *application.Application) error {
	stored, err := cloneApplication(*a)
	if err != nil {
		return err
	}
	d.applications[a.ID] = stored
	return nil
}

func (r applicationRepo) get(d *data, id int64) (*application.Application, error) {
	a, ok := d.applications[id]
	if !ok {
		return nil, notFound("application", id)
	}
	out, err := cloneApplication(a)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r applicationRepo) Create(_ context.Context, a *application.Application) error {
	d, done := r.v.begin()
	defer done()

	if _, ok := d.cycles[a.CycleID]; !ok {
		return notFound("cycle", a.CycleID)
	}
	for _, other := range d.applications {
		if other.ApplicationNumber == a.ApplicationNumber {
			return fmt.Errorf("application number %s already exists", a.ApplicationNumber)
		}
		if other.UserID == a.UserID && other.CycleID == a.CycleID &&
			application.OccupiesSlot(other.Status) && application.OccupiesSlot(a.Status) {
			return fmt.Errorf("%w: applicant %s on cycle %d", errs.ErrDuplicateApplication, a.UserID, a.CycleID)
		}
	}

	now := r.v.s.now()
	a.ID = d.newID()
	a.CreatedAt, a.UpdatedAt = now, now
	return r.put(d, a)
}

func (r applicationRepo) GetByID(_ context.Context, id int64) (*application.Application, error) {
	d, done := r.v.begin()
	defer done()
	return r.get(d, id)
}

// GetForUpdate needs no row lock: transactions are already serialised.
func (r applicationRepo) GetForUpdate(ctx context.Context, id int64) (*application.Application, error) {
	return r.GetByID(ctx, id)
}

func (r applicationRepo) Update(_ context.Context, a *application.Application) error {
	d, done := r.v.begin()
	defer done()

	orig, ok := d.applications[a.ID]
	if !ok {
		return notFound("application", a.ID)
	}
	a.CreatedAt = orig.CreatedAt
	a.UpdatedAt = r.v.s.now()
	return r.put(d, a)
}

func (r applicationRepo) List(_ context.Context, f application.Filter) ([]*application.Application, int, error) {
	d, done := r.v.begin()
	defer done()

	matched := make([]application.Application, 0)
	for _, a := range d.applications {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.CycleID != 0 && a.CycleID != f.CycleID {
			continue
		}
		if f.UserID != "" && a.UserID != f.UserID {
			continue
		}
		if !f.SubmittedBefore.IsZero() && (!a.SubmittedAt.Valid || !a.SubmittedAt.Time.Before(f.SubmittedBefore)) {
			continue
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := len(matched)
	start := f.Offset
	if start > total {
		start = total
	}
	end := total
	if f.Limit > 0 && start+f.Limit < end {
		end = start + f.Limit
	}

	out := make([]*application.Application, 0, end-start)
	for _, a := range matched[start:end] {
		c, err := cloneApplication(a)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, &c)
	}
	return out, total, nil
}

func (r applicationRepo) CountOccupying(_ context.Context, cycleID int64) (int, error) {
	d, done := r.v.begin()
	defer done()

	n := 0
	for _, a := range d.applications {
		if a.CycleID == cycleID && application.OccupiesSlot(a.Status) {
			n++
		}
	}
	return n, nil
}

func (r applicationRepo) FindOccupying(_ context.Context, userID string, cycleID int64) (*application.Application, error) {
	d, done := r.v.begin()
	defer done()

	for id, a := range d.applications {
		if a.UserID == userID && a.CycleID == cycleID && application.OccupiesSlot(a.Status) {
			return r.get(d, id)
		}
	}
	return nil, fmt.Errorf("%w: live application of %s on cycle %d", errs.ErrNotFound, userID, cycleID)
}

func (r applicationRepo) AttachDocuments(_ context.Context, applicationID int64, documentIDs []string) error {
	d, done := r.v.begin()
	defer done()

	if _, ok := d.applications[applicationID]; !ok {
		return notFound("application", applicationID)
	}
	attached := make(map[string]bool)
	for _, doc := range d.documents {
		if doc.ApplicationID == applicationID {
			attached[doc.DocumentID] = true
		}
	}
	now := r.v.s.now()
	for _, docID := range documentIDs {
		if attached[docID] {
			continue
		}
		doc := application.Document{ID: d.newID(), ApplicationID: applicationID, DocumentID: docID, CreatedAt: now}
		d.documents[doc.ID] = doc
		attached[docID] = true
	}
	return nil
}

func (r applicationRepo) ListDocuments(_ context.Context, applicationID int64) ([]*application.Document, error) {
	d, done := r.v.begin()
	defer done()

	out := make([]*application.Document, 0)
	for _, doc := range d.documents {
		if doc.ApplicationID == applicationID {
			doc := doc
			out = append(out, &doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r applicationRepo) CreateReview(_ context.Context, rv *application.Review) error {
	d, done := r.v.begin()
	defer done()

	if _, ok := d.applications[rv.ApplicationID]; !ok {
		return notFound("application", rv.ApplicationID)
	}
	rv.ID = d.newID()
	rv.CreatedAt = r.v.s.now()
	d.reviews[rv.ID] = *rv
	return nil
}

func (r applicationRepo) AppendHistory(_ context.Context, h *application.History) error {
	d, done := r.v.begin()
	defer done()

	if _, ok := d.applications[h.ApplicationID]; !ok {
		return notFound("application", h.ApplicationID)
	}
	h.ID = d.newID()
	h.CreatedAt = r.v.s.now()
	d.history[h.ID] = *h
	return nil
}

func (r applicationRepo) ListHistory(_ context.Context, applicationID int64) ([]*application.History, error) {
	d, done := r.v.begin()
	defer done()

	out := make([]*application.History, 0)
	for _, h := range d.history {
		if h.ApplicationID == applicationID {
			h := h
			out = append(out, &h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
