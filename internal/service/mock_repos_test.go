package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CaioWing/paddock/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Mock Listing Repository ---

type mockListingRepo struct {
	mu       sync.RWMutex
	listings map[uuid.UUID]*domain.Listing
	seq      map[uuid.UUID]int
	next     int
}

func newMockListingRepo() *mockListingRepo {
	return &mockListingRepo{
		listings: make(map[uuid.UUID]*domain.Listing),
		seq:      make(map[uuid.UUID]int),
	}
}

func copyListing(l *domain.Listing) *domain.Listing {
	c := *l
	c.Features = append([]string(nil), l.Features...)
	return &c
}

func (m *mockListingRepo) clone() *mockListingRepo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c := newMockListingRepo()
	for id, l := range m.listings {
		c.listings[id] = copyListing(l)
		c.seq[id] = m.seq[id]
	}
	c.next = m.next
	return c
}

func (m *mockListingRepo) replace(from *mockListingRepo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listings = from.listings
	m.seq = from.seq
	m.next = from.next
}

func (m *mockListingRepo) Create(_ context.Context, l *domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Status == "" {
		l.Status = domain.ListingStatusPending
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	l.UpdatedAt = l.CreatedAt
	m.next++
	m.seq[l.ID] = m.next
	m.listings[l.ID] = copyListing(l)
	return nil
}

func (m *mockListingRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if l, ok := m.listings[id]; ok {
		return copyListing(l), nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockListingRepo) filtered(f domain.ListingFilter) []*domain.Listing {
	var result []*domain.Listing
	for _, l := range m.listings {
		if f.Status != nil && l.Status != *f.Status {
			continue
		}
		result = append(result, l)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return m.seq[a.ID] > m.seq[b.ID]
	})
	return result
}

func (m *mockListingRepo) List(_ context.Context, f domain.ListingFilter) ([]*domain.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := m.filtered(f)
	start := (f.Page - 1) * f.PerPage
	if start >= len(all) {
		return []*domain.Listing{}, nil
	}
	end := start + f.PerPage
	if end > len(all) {
		end = len(all)
	}
	out := make([]*domain.Listing, 0, end-start)
	for _, l := range all[start:end] {
		out = append(out, copyListing(l))
	}
	return out, nil
}

func (m *mockListingRepo) Count(_ context.Context, f domain.ListingFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.filtered(f)), nil
}

func (m *mockListingRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.ListingStatus) (*domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	l.Status = status
	l.UpdatedAt = time.Now()
	return copyListing(l), nil
}

func (m *mockListingRepo) UpdateFields(_ context.Context, id uuid.UUID, f domain.ListingFields) (*domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	l.Title = f.Title
	l.Description = f.Description
	l.Model = f.Model
	l.BodyType = f.BodyType
	l.PricePerDay = f.PricePerDay
	if f.FuelType != nil {
		l.FuelType = *f.FuelType
	}
	if f.Gearbox != nil {
		l.Gearbox = *f.Gearbox
	}
	if f.Doors != nil {
		l.Doors = *f.Doors
	}
	if f.Seats != nil {
		l.Seats = *f.Seats
	}
	l.Features = append([]string(nil), f.Features...)
	l.UpdatedAt = time.Now()
	return copyListing(l), nil
}

func (m *mockListingRepo) CountByStatus(_ context.Context) (map[domain.ListingStatus]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := map[domain.ListingStatus]int{
		domain.ListingStatusPending:  0,
		domain.ListingStatusApproved: 0,
		domain.ListingStatusRejected: 0,
	}
	for _, l := range m.listings {
		counts[l.Status]++
	}
	return counts, nil
}

// --- Mock Audit Repository ---

type mockAuditRepo struct {
	mu        sync.RWMutex
	entries   []*domain.AuditEntry
	listings  *mockListingRepo
	createErr error
}

func newMockAuditRepo(listings *mockListingRepo) *mockAuditRepo {
	return &mockAuditRepo{listings: listings}
}

func (m *mockAuditRepo) clone(listings *mockListingRepo) *mockAuditRepo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c := newMockAuditRepo(listings)
	c.entries = append([]*domain.AuditEntry(nil), m.entries...)
	return c
}

func (m *mockAuditRepo) replace(from *mockAuditRepo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = from.entries
}

func (m *mockAuditRepo) Create(_ context.Context, e *domain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	stored := *e
	m.entries = append(m.entries, &stored)
	return nil
}

func (m *mockAuditRepo) List(ctx context.Context, f domain.AuditFilter) ([]*domain.AuditView, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*domain.AuditView
	// newest first: entries are appended in commit order
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if f.Action != nil && e.Action != *f.Action {
			continue
		}
		if f.ListingID != nil && e.ListingID != *f.ListingID {
			continue
		}
		view := &domain.AuditView{AuditEntry: *e}
		if m.listings != nil {
			if l, err := m.listings.GetByID(ctx, e.ListingID); err == nil {
				view.ListingTitle = l.Title
			}
		}
		matched = append(matched, view)
	}
	total := len(matched)
	if f.PerPage > 0 {
		start := (f.Page - 1) * f.PerPage
		if start >= total {
			return []*domain.AuditView{}, total, nil
		}
		end := start + f.PerPage
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (m *mockAuditRepo) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// --- Mock Unit of Work ---

// mockUnitOfWorkFactory runs each unit of work against private copies of
// the committed state; Commit publishes them and Rollback discards them.
type mockUnitOfWorkFactory struct {
	listings *mockListingRepo
	audit    *mockAuditRepo

	beginErr  error
	auditErr  error
	commitErr error
	begins    int
	rollbacks int
}

func newMockUnitOfWorkFactory() *mockUnitOfWorkFactory {
	listings := newMockListingRepo()
	return &mockUnitOfWorkFactory{
		listings: listings,
		audit:    newMockAuditRepo(listings),
	}
}

func (f *mockUnitOfWorkFactory) Begin(_ context.Context) (domain.UnitOfWork, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	f.begins++
	listings := f.listings.clone()
	audit := f.audit.clone(listings)
	audit.createErr = f.auditErr
	return &mockUnitOfWork{factory: f, listings: listings, audit: audit}, nil
}

type mockUnitOfWork struct {
	factory  *mockUnitOfWorkFactory
	listings *mockListingRepo
	audit    *mockAuditRepo
	done     bool
}

func (u *mockUnitOfWork) Listings() domain.ListingRepository { return u.listings }
func (u *mockUnitOfWork) Audit() domain.AuditRepository     { return u.audit }

func (u *mockUnitOfWork) Commit(_ context.Context) error {
	if u.done {
		return errors.New("transaction already closed")
	}
	u.done = true
	if u.factory.commitErr != nil {
		return u.factory.commitErr
	}
	u.factory.listings.replace(u.listings)
	u.factory.audit.replace(u.audit)
	return nil
}

func (u *mockUnitOfWork) Rollback(_ context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	u.factory.rollbacks++
	return nil
}

// --- Mock User Repository ---

type mockUserRepo struct {
	mu      sync.RWMutex
	users   map[string]*domain.User
	lookups int
	err     error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*domain.User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrConflict
		}
	}
	if _, exists := m.users[u.ID]; exists {
		return domain.ErrConflict
	}
	u.CreatedAt = time.Now()
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) EmailsByIDs(_ context.Context, ids []string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out[id] = u.Email
		}
	}
	return out, nil
}

// --- Mock Email Cache ---

type mockEmailCache struct {
	mu     sync.Mutex
	emails map[string]string
	getErr error
	setErr error
	sets   int
}

func newMockEmailCache() *mockEmailCache {
	return &mockEmailCache{emails: make(map[string]string)}
}

func (m *mockEmailCache) GetEmails(_ context.Context, ids []string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make(map[string]string)
	for _, id := range ids {
		if e, ok := m.emails[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

func (m *mockEmailCache) SetEmails(_ context.Context, emails map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	for id, e := range emails {
		m.emails[id] = e
	}
	return nil
}
