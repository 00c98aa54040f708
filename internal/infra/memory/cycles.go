package memory

import (
	"context"
	"sort"

	"scholarship_admin/internal/domain/cycle"
)

type cycleRepo struct{ v view }

func (r cycleRepo) CreateSponsor(_ context.Context, sp *cycle.Sponsor) error {
	d, done := r.v.begin()
	defer done()

	sp.ID = d.newID()
	sp.CreatedAt = r.v.s.now()
	d.sponsors[sp.ID] = *sp
	return nil
}

func (r cycleRepo) GetSponsor(_ context.Context, id int64) (*cycle.Sponsor, error) {
	d, done := r.v.begin()
	defer done()

	sp, ok := d.sponsors[id]
	if !ok {
		return nil, notFound("sponsor", id)
	}
	return &sp, nil
}

func (r cycleRepo) CreateProgram(_ context.Context, p *cycle.Program) error {
	d, done := r.v.begin()
	defer done()

	if _, ok := d.sponsors[p.SponsorID]; !ok {
		return notFound("sponsor", p.SponsorID)
	}
	now := r.v.s.now()
	p.ID = d.newID()
	p.CreatedAt, p.UpdatedAt = now, now
	d.programs[p.ID] = *p
	return nil
}

func (r cycleRepo) GetProgram(_ context.Context, id int64) (*cycle.Program, error) {
	d, done := r.v.begin()
	defer done()

	p, ok := d.programs[id]
	if !ok {
		return nil, notFound("program", id)
	}
	return &p, nil
}

func (r cycleRepo) UpdateProgram(_ context.Context, p *cycle.Program) error {
	d, done := r.v.begin()
	defer done()

	orig, ok := d.programs[p.ID]
	if !ok {
		return notFound("program", p.ID)
	}
	p.CreatedAt = orig.CreatedAt
	p.UpdatedAt = r.v.s.now()
	d.programs[p.ID] = *p
	return nil
}

func (r cycleRepo) CreateCycle(_ context.Context, c *cycle.Cycle) error {
	d, done := r.v.begin()
	defer done()

	if _, ok := d.programs[c.ProgramID]; !ok {
		return notFound("program", c.ProgramID)
	}
	now := r.v.s.now()
	c.ID = d.newID()
	c.CreatedAt, c.UpdatedAt = now, now
	d.cycles[c.ID] = *c
	return nil
}

func (r cycleRepo) GetCycle(_ context.Context, id int64) (*cycle.Cycle, error) {
	d, done := r.v.begin()
	defer done()

	c, ok := d.cycles[id]
	if !ok {
		return nil, notFound("cycle", id)
	}
	return &c, nil
}

// GetCycleForUpdate needs no row lock: transactions are already serialised.
func (r cycleRepo) GetCycleForUpdate(ctx context.Context, id int64) (*cycle.Cycle, error) {
	return r.GetCycle(ctx, id)
}

func (r cycleRepo) UpdateCycle(_ context.Context, c *cycle.Cycle) error {
	d, done := r.v.begin()
	defer done()

	orig, ok := d.cycles[c.ID]
	if !ok {
		return notFound("cycle", c.ID)
	}
	c.CreatedAt = orig.CreatedAt
	c.UpdatedAt = r.v.s.now()
	d.cycles[c.ID] = *c
	return nil
}

func (r cycleRepo) ListCycles(_ context.Context, f cycle.Filter) ([]*cycle.Cycle, error) {
	d, done := r.v.begin()
	defer done()

	wanted := make(map[cycle.LifecycleState]bool, len(f.States))
	for _, st := range f.States {
		wanted[st] = true
	}

	out := make([]*cycle.Cycle, 0, len(d.cycles))
	for _, c := range d.cycles {
		if len(wanted) > 0 && !wanted[c.State] {
			continue
		}
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r cycleRepo) ReplaceGeneralCriteria(_ context.Context, cycleID int64, values []string) ([]*cycle.Criterion, error) {
	d, done := r.v.begin()
	defer done()

	if _, ok := d.cycles[cycleID]; !ok {
		return nil, notFound("cycle", cycleID)
	}
	for id, cr := range d.criteria {
		if cr.CycleID == cycleID && cr.Type == cycle.CriteriaGeneral {
			delete(d.criteria, id)
		}
	}
	now := r.v.s.now()
	out := make([]*cycle.Criterion, 0, len(values))
	for _, v := range values {
		cr := cycle.Criterion{
			ID:          d.newID(),
			CycleID:     cycleID,
			Type:        cycle.CriteriaGeneral,
			Value:       v,
			IsMandatory: true,
			CreatedAt:   now,
		}
		d.criteria[cr.ID] = cr
		out = append(out, &cr)
	}
	return out, nil
}

func (r cycleRepo) ListCriteria(_ context.Context, cycleID int64) ([]*cycle.Criterion, error) {
	d, done := r.v.begin()
	defer done()

	out := make([]*cycle.Criterion, 0)
	for _, cr := range d.criteria {
		if cr.CycleID == cycleID {
			cr := cr
			out = append(out, &cr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r cycleRepo) DeleteCriteriaByType(_ context.Context, cycleID int64, t cycle.CriteriaType) (int64, error) {
	d, done := r.v.begin()
	defer done()

	var removed int64
	for id, cr := range d.criteria {
		if cr.CycleID == cycleID && cr.Type == t {
			delete(d.criteria, id)
			removed++
		}
	}
	return removed, nil
}

// AddLegacyCriterion stores a criterion row as older data would have it,
// including SCHOLARSHIP_TYPE rows that the repository API no longer writes.
func (s *Store) AddLegacyCriterion(cr cycle.Criterion) cycle.Criterion {
	s.mu.Lock()
	defer s.mu.Unlock()

	cr.ID = s.data.newID()
	cr.CreatedAt = s.now()
	s.data.criteria[cr.ID] = cr
	return cr
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
