package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/GTDGit/activation_api/internal/models"
	"github.com/GTDGit/activation_api/internal/repository"
)

// fixedClock returns a settable clock for tests.
type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time          { return c.t }
func (c *fixedClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

var (
	testAdmin   = models.AdminPrincipal{ID: 1, Name: "Admin"}
	testManager = models.SalesManagerPrincipal{ID: 5, TeamID: 2, Name: "Park"}
	testStore   = models.WorkerPrincipal{ID: 11, Name: "Acme", Role: models.RoleDealerStore, DealerScope: "Acme Store"}
	testWorker  = models.WorkerPrincipal{ID: 21, Name: "Lee", Role: models.RoleDealerWorker}
	testWorker2 = models.WorkerPrincipal{ID: 22, Name: "Choi", Role: models.RoleDealerWorker}
)

// memSessionStore is an in-memory SessionStore.
type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: map[string]models.Session{}}
}

func (m *memSessionStore) Save(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *memSessionStore) Get(_ context.Context, token string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memSessionStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *memSessionStore) DeleteAllFor(_ context.Context, kind models.PrincipalKind, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, s := range m.sessions {
		if s.PrincipalKind == kind && s.PrincipalID == id {
			delete(m.sessions, token)
		}
	}
	return nil
}

func (m *memSessionStore) TokensFor(_ context.Context, kind models.PrincipalKind, id int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var tokens []string
	for token, s := range m.sessions {
		if s.PrincipalKind == kind && s.PrincipalID == id {
			tokens = append(tokens, token)
		}
	}
	return tokens, nil
}

// memDocumentStore is an in-memory documentStore with version checks.
type memDocumentStore struct {
	mu       sync.Mutex
	docs     map[int]models.Document
	nextID   int
	perDay   map[string]int
	afterGet func(id int)
}

func newMemDocumentStore() *memDocumentStore {
	return &memDocumentStore{docs: map[int]models.Document{}, nextID: 1, perDay: map[string]int{}}
}

func (m *memDocumentStore) GetByID(_ context.Context, id int) (*models.Document, error) {
	m.mu.Lock()
	doc, ok := m.docs[id]
	hook := m.afterGet
	m.mu.Unlock()
	if !ok {
		return nil, sql.ErrNoRows
	}
	if hook != nil {
		hook(id)
	}
	return &doc, nil
}

func (m *memDocumentStore) Create(_ context.Context, doc *models.Document, day string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.perDay[day]++
	doc.ID = m.nextID
	m.nextID++
	doc.DocumentNumber = fmt.Sprintf("%s-%04d", day, m.perDay[day])
	doc.Version = 1
	doc.CreatedAt = doc.UploadedAt
	doc.UpdatedAt = doc.UploadedAt
	m.docs[doc.ID] = *doc
	return nil
}

func (m *memDocumentStore) Update(_ context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.docs[doc.ID]
	if !ok || stored.Version != doc.Version {
		return repository.ErrStaleVersion
	}
	doc.Version++
	m.docs[doc.ID] = *doc
	return nil
}

func (m *memDocumentStore) Delete(_ context.Context, id, version int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.docs[id]
	if !ok || stored.Version != version || stored.Status != models.IntakeReceived {
		return repository.ErrStaleVersion
	}
	delete(m.docs, id)
	return nil
}

func (m *memDocumentStore) List(_ context.Context, filter *models.DocumentFilter) (*models.DocumentPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Document{}
	for _, d := range m.docs {
		doc := d
		if !filter.Scope.Allows(&doc) {
			continue
		}
		if v := filter.ActivationStatus; v != nil && *v != "" {
			if *v == models.ViewWorkRequested {
				if doc.ActivationStatus != models.ActivationInProgress || doc.Status != models.IntakeCompleted {
					continue
				}
			} else if string(doc.ActivationStatus) != *v {
				continue
			}
		}
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return &models.DocumentPage{Documents: out, TotalItems: len(out), TotalPages: 1, Page: 1, Limit: 50}, nil
}

func (m *memDocumentStore) stored(id int) models.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[id]
}

// fakeResolver maps codes to resolutions and managers to owned codes.
type fakeResolver struct {
	codes map[string]models.ContactCodeResolution
	owned map[int][]string
}

func (f *fakeResolver) Resolve(_ context.Context, code string) (*models.ContactCodeResolution, bool, error) {
	res, ok := f.codes[code]
	if !ok {
		return nil, false, nil
	}
	return &res, true, nil
}

func (f *fakeResolver) ListCodesOwnedBy(_ context.Context, managerID int) ([]string, error) {
	return f.owned[managerID], nil
}

// memPriceStore keeps an append-only price history per plan.
type memPriceStore struct {
	mu     sync.Mutex
	rows   []models.SettlementUnitPrice
	plans  map[int]bool
	nextID int
}

func newMemPriceStore(planIDs ...int) *memPriceStore {
	plans := map[int]bool{}
	for _, id := range planIDs {
		plans[id] = true
	}
	return &memPriceStore{plans: plans, nextID: 1}
}

func (m *memPriceStore) GetActive(_ context.Context, planID int) (*models.SettlementUnitPrice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ServicePlanID == planID && r.IsActive {
			row := r
			return &row, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memPriceStore) History(_ context.Context, planID int) ([]models.SettlementUnitPrice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SettlementUnitPrice
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].ServicePlanID == planID {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

func (m *memPriceStore) ListActive(_ context.Context) ([]models.SettlementUnitPrice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SettlementUnitPrice
	for _, r := range m.rows {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memPriceStore) Replace(_ context.Context, price *models.SettlementUnitPrice, now func() time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.plans[price.ServicePlanID] {
		return sql.ErrNoRows
	}
	at := now()
	for i := range m.rows {
		if m.rows[i].ServicePlanID == price.ServicePlanID && m.rows[i].IsActive {
			if at.Before(m.rows[i].EffectiveFrom) {
				at = m.rows[i].EffectiveFrom
			}
			until := at
			m.rows[i].IsActive = false
			m.rows[i].EffectiveUntil = &until
		}
	}
	price.ID = m.nextID
	m.nextID++
	price.EffectiveFrom = at
	price.EffectiveUntil = nil
	price.IsActive = true
	price.CreatedAt = at
	m.rows = append(m.rows, *price)
	return nil
}

// fakePlans is a planLookup over a fixed set of plans.
type fakePlans map[int]models.ServicePlan

func (f fakePlans) GetByID(_ context.Context, id int) (*models.ServicePlan, error) {
	p, ok := f[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

// fakeBlobs records uploads.
type fakeBlobs struct {
	keys []string
}

func (f *fakeBlobs) Put(_ context.Context, key string, _ []byte, _ string) (string, error) {
	f.keys = append(f.keys, key)
	return "s3://bucket/" + key, nil
}
