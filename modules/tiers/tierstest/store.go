// Package tierstest provides an in-memory tiers store for tests of the
// services and controllers.
package tierstest

import (
	"context"
	"errors"
	"sync"

	"github.com/iota-uz/iota-facility/modules/tiers/domain/entities/lookup"
	"github.com/iota-uz/iota-facility/modules/tiers/domain/entities/tiers"
)

var (
	_ tiers.Repository  = (*Store)(nil)
	_ lookup.Repository = (*Store)(nil)
)

var ErrNoTx = errors.New("tierstest: no open transaction")

type State struct {
	Persons  []tiers.PhysicalPerson
	Entities []tiers.LegalEntity
	Deps     tiers.Dependents
}

func (s *State) Add(o State) {
	s.Persons = append(s.Persons, o.Persons...)
	s.Entities = append(s.Entities, o.Entities...)
	s.Deps.Projects = append(s.Deps.Projects, o.Deps.Projects...)
	s.Deps.Wishes = append(s.Deps.Wishes, o.Deps.Wishes...)
	s.Deps.PersonFormulas = append(s.Deps.PersonFormulas, o.Deps.PersonFormulas...)
	s.Deps.EntityFormulas = append(s.Deps.EntityFormulas, o.Deps.EntityFormulas...)
	s.Deps.Relations = append(s.Deps.Relations, o.Deps.Relations...)
}

// Store is an in-memory tiers and lookup repository whose writes are
// staged per transaction and only become visible to later transactions on
// commit.
type Store struct {
	mu sync.Mutex

	Committed State
	staged    *State
	NextID    int64
	Lookups   lookup.Tables
	// Foreign holds ids owned by another tenant; references to them are missing.
	Foreign map[tiers.RefTable]map[int64]struct{}

	FailDependents error
	Commits        int
	Rollbacks      int
}

func NewStore() *Store {
	return &Store{Lookups: lookup.Tables{}}
}

// RunTx is a services.TxRunner. Transactions are serialized.
func (m *Store) RunTx(ctx context.Context, fn func(context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.staged = &State{}
	defer func() { m.staged = nil }()
	if err := fn(ctx); err != nil {
		m.Rollbacks++
		return err
	}
	m.Committed.Add(*m.staged)
	m.Commits++
	return nil
}

func (m *Store) visible() State {
	v := State{}
	v.Add(m.Committed)
	if m.staged != nil {
		v.Add(*m.staged)
	}
	return v
}

func (m *Store) id() int64 {
	m.NextID++
	return m.NextID
}

func (m *Store) ExistsPhysicalPerson(ctx context.Context, key tiers.PersonKey) (bool, error) {
	found, err := m.FindExistingPhysicalPersons(ctx, []tiers.PersonKey{key})
	return len(found) > 0, err
}

func (m *Store) ExistsLegalEntity(ctx context.Context, name string) (bool, error) {
	found, err := m.FindExistingLegalEntities(ctx, []string{name})
	return len(found) > 0, err
}

func (m *Store) FindExistingPhysicalPersons(ctx context.Context, keys []tiers.PersonKey) ([]tiers.PersonKey, error) {
	if m.staged == nil {
		return nil, ErrNoTx
	}
	var out []tiers.PersonKey
	for _, k := range keys {
		for _, p := range m.visible().Persons {
			if p.Key() == k {
				out = append(out, k)
				break
			}
		}
	}
	return out, nil
}

func (m *Store) FindExistingLegalEntities(ctx context.Context, names []string) ([]string, error) {
	if m.staged == nil {
		return nil, ErrNoTx
	}
	var out []string
	for _, n := range names {
		for _, e := range m.visible().Entities {
			if e.Key() == n {
				out = append(out, n)
				break
			}
		}
	}
	return out, nil
}

// MarkForeign records ids of table as belonging to another tenant.
func (m *Store) MarkForeign(table tiers.RefTable, ids ...int64) {
	if m.Foreign == nil {
		m.Foreign = map[tiers.RefTable]map[int64]struct{}{}
	}
	if m.Foreign[table] == nil {
		m.Foreign[table] = map[int64]struct{}{}
	}
	for _, id := range ids {
		m.Foreign[table][id] = struct{}{}
	}
}

func (m *Store) MissingReferences(ctx context.Context, refs []tiers.Reference) ([]tiers.Reference, error) {
	if m.staged == nil {
		return nil, ErrNoTx
	}
	var out []tiers.Reference
	for _, r := range refs {
		if _, foreign := m.Foreign[r.Table][r.ID]; foreign {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Store) CreatePhysicalPerson(ctx context.Context, p tiers.PhysicalPerson) (int64, error) {
	ids, err := m.CreatePhysicalPersons(ctx, []tiers.PhysicalPerson{p})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

func (m *Store) CreateLegalEntity(ctx context.Context, e tiers.LegalEntity) (int64, error) {
	ids, err := m.CreateLegalEntities(ctx, []tiers.LegalEntity{e})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

func (m *Store) CreatePhysicalPersons(ctx context.Context, ps []tiers.PhysicalPerson) ([]int64, error) {
	if m.staged == nil {
		return nil, ErrNoTx
	}
	ids := make([]int64, len(ps))
	for i, p := range ps {
		p.ID = m.id()
		ids[i] = p.ID
		m.staged.Persons = append(m.staged.Persons, p)
	}
	return ids, nil
}

func (m *Store) CreateLegalEntities(ctx context.Context, es []tiers.LegalEntity) ([]int64, error) {
	if m.staged == nil {
		return nil, ErrNoTx
	}
	ids := make([]int64, len(es))
	for i, e := range es {
		e.ID = m.id()
		ids[i] = e.ID
		m.staged.Entities = append(m.staged.Entities, e)
	}
	return ids, nil
}

func (m *Store) CreateDependents(ctx context.Context, d tiers.Dependents) error {
	if m.staged == nil {
		return ErrNoTx
	}
	if m.FailDependents != nil {
		return m.FailDependents
	}
	m.staged.Add(State{Deps: d})
	return nil
}

func (m *Store) Load(ctx context.Context, tables ...lookup.Table) (lookup.Tables, error) {
	if m.staged == nil {
		return nil, ErrNoTx
	}
	out := make(lookup.Tables, len(tables))
	for _, t := range tables {
		out[t] = m.Lookups[t]
	}
	return out, nil
}
