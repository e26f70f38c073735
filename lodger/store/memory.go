// Package store provides lodger.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/haven/lodger-engine/lodger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps aggregates in a map. Save and Get deep-copy, so callers
// can mutate loaded aggregates without aliasing committed state - the
// same isolation a real database gives.
type Memory struct {
	mu        sync.RWMutex
	tenancies map[lodger.TenancyID]*lodger.Tenancy
}

func NewMemory() *Memory {
	return &Memory{tenancies: make(map[lodger.TenancyID]*lodger.Tenancy)}
}

func (m *Memory) Save(_ context.Context, t *lodger.Tenancy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenancies[t.ID] = clone(t)
	return nil
}

func (m *Memory) Get(_ context.Context, id lodger.TenancyID) (*lodger.Tenancy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tenancies[id]
	if !ok {
		return nil, &lodger.NotFoundError{Kind: "tenancy", ID: string(id)}
	}
	return clone(t), nil
}

func (m *Memory) ListByLandlord(_ context.Context, landlordID lodger.LandlordID) ([]*lodger.Tenancy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*lodger.Tenancy
	for _, t := range m.tenancies {
		if t.LandlordID == landlordID {
			result = append(result, clone(t))
		}
	}
	sortByCreated(result)
	return result, nil
}

func (m *Memory) List(_ context.Context) ([]*lodger.Tenancy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*lodger.Tenancy, 0, len(m.tenancies))
	for _, t := range m.tenancies {
		result = append(result, clone(t))
	}
	sortByCreated(result)
	return result, nil
}

func sortByCreated(ts []*lodger.Tenancy) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].CreatedAt.Equal(ts[j].CreatedAt) {
			return ts[i].ID < ts[j].ID
		}
		return ts[i].CreatedAt.Before(ts[j].CreatedAt)
	})
}

// clone deep-copies an aggregate, including owned slices and pointers.
func clone(t *lodger.Tenancy) *lodger.Tenancy {
	c := *t

	if t.EndDate != nil {
		end := *t.EndDate
		c.EndDate = &end
	}
	if t.Signature != nil {
		sig := *t.Signature
		c.Signature = &sig
	}
	if t.Funds != nil {
		funds := *t.Funds
		c.Funds = &funds
	}

	c.SharedAreas = append([]lodger.SharedArea(nil), t.SharedAreas...)
	c.Notices = append([]lodger.Notice(nil), t.Notices...)
	c.Deductions = append([]lodger.Deduction(nil), t.Deductions...)

	c.Payments = make([]lodger.PaymentRecord, len(t.Payments))
	for i, p := range t.Payments {
		cp := p
		if p.Submission != nil {
			sub := *p.Submission
			cp.Submission = &sub
		}
		if p.Confirmation != nil {
			conf := *p.Confirmation
			cp.Confirmation = &conf
		}
		c.Payments[i] = cp
	}
	return &c
}
