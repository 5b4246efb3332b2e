package service

import (
	"context"
	"sync"
	"time"

	"agrisense/api/internal/models"
	"agrisense/api/internal/repository"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]models.User // keyed by id
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Phone == user.Phone {
			return repository.ErrDuplicatePhone
		}
	}
	user.CreatedAt = time.Now()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) FindByPhone(_ context.Context, phone string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Phone == phone {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) delete(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
}

type fakeSessionStore struct {
	mu    sync.Mutex
	byJTI map[string]*models.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{byJTI: make(map[string]*models.Session)}
}

func (f *fakeSessionStore) Create(_ context.Context, session models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session.CreatedAt = time.Now()
	f.byJTI[session.RefreshJTI] = &session
	return nil
}

func (f *fakeSessionStore) FindByJTI(_ context.Context, jti string) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.byJTI[jti]
	if !ok {
		return models.Session{}, repository.ErrSessionNotFound
	}
	return *session, nil
}

// Rotate mirrors the SQL transaction: the revoke is conditional on the row
// still being active, and revoke+insert happen under one lock.
func (f *fakeSessionStore) Rotate(_ context.Context, oldJTI string, next models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.byJTI[oldJTI]
	if !ok || session.RevokedAt != nil {
		return repository.ErrSessionRevoked
	}
	now := time.Now()
	session.RevokedAt = &now
	next.CreatedAt = now
	f.byJTI[next.RefreshJTI] = &next
	return nil
}

func (f *fakeSessionStore) Revoke(_ context.Context, jti string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.byJTI[jti]
	if !ok || session.RevokedAt != nil {
		return repository.ErrSessionRevoked
	}
	now := time.Now()
	session.RevokedAt = &now
	return nil
}

func (f *fakeSessionStore) activeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, session := range f.byJTI {
		if session.RevokedAt == nil {
			count++
		}
	}
	return count
}

type fakeReadingStore struct {
	mu          sync.Mutex
	readings    []models.NpkReading
	predictions []models.NpkPrediction
}

func (f *fakeReadingStore) CreateReading(_ context.Context, reading models.NpkReading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	reading.ReadAt = time.Now()
	f.readings = append(f.readings, reading)
	return nil
}

func (f *fakeReadingStore) LatestByUser(_ context.Context, userID string) (models.NpkReading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.readings) - 1; i >= 0; i-- {
		if f.readings[i].UserID == userID {
			return f.readings[i], nil
		}
	}
	return models.NpkReading{}, repository.ErrNoReadings
}

func (f *fakeReadingStore) ListByUser(_ context.Context, userID string, q repository.ReadingWindow) ([]models.NpkReading, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []models.NpkReading
	for i := len(f.readings) - 1; i >= 0; i-- {
		if f.readings[i].UserID == userID {
			matched = append(matched, f.readings[i])
		}
	}
	total := len(matched)
	start := (q.Page - 1) * q.PageSize
	if start > total {
		start = total
	}
	end := start + q.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (f *fakeReadingStore) CreatePrediction(_ context.Context, pred models.NpkPrediction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.predictions = append(f.predictions, pred)
	return nil
}

type fakeMarketStore struct {
	mu       sync.Mutex
	products []models.Product
	carts    map[string]models.Cart // keyed by user id
	items    map[string]models.CartItem
}

func newFakeMarketStore() *fakeMarketStore {
	return &fakeMarketStore{
		carts: make(map[string]models.Cart),
		items: make(map[string]models.CartItem),
	}
}

func (f *fakeMarketStore) ListProducts(_ context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Product(nil), f.products...), nil
}

func (f *fakeMarketStore) CreateProduct(_ context.Context, product models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = append(f.products, product)
	return nil
}

func (f *fakeMarketStore) EnsureCart(_ context.Context, userID string) (models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cart, ok := f.carts[userID]; ok {
		return cart, nil
	}
	cart := models.Cart{ID: "cart-" + userID, UserID: userID, CreatedAt: time.Now()}
	f.carts[userID] = cart
	return cart, nil
}

func (f *fakeMarketStore) UpsertItem(_ context.Context, cartID string, productID string, qty int) (models.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, item := range f.items {
		if item.CartID == cartID && item.ProductID == productID {
			item.Qty = qty
			f.items[id] = item
			return item, nil
		}
	}
	item := models.CartItem{
		ID:        "item-" + productID,
		CartID:    cartID,
		ProductID: productID,
		Qty:       qty,
		CreatedAt: time.Now(),
	}
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeMarketStore) ListLines(_ context.Context, cartID string) ([]models.CartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var lines []models.CartLine
	for _, item := range f.items {
		if item.CartID != cartID {
			continue
		}
		for _, product := range f.products {
			if product.ID == item.ProductID {
				lines = append(lines, models.CartLine{Item: item, Product: product})
			}
		}
	}
	return lines, nil
}

func (f *fakeMarketStore) DeleteItem(_ context.Context, cartID string, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[itemID]
	if !ok || item.CartID != cartID {
		return repository.ErrCartItemNotFound
	}
	delete(f.items, itemID)
	return nil
}

type fakeReportStore struct {
	mu      sync.Mutex
	reports map[string]models.DiseaseReport
}

func newFakeReportStore() *fakeReportStore {
	return &fakeReportStore{reports: make(map[string]models.DiseaseReport)}
}

func (f *fakeReportStore) Create(_ context.Context, report models.DiseaseReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	report.CreatedAt = time.Now()
	report.UpdatedAt = report.CreatedAt
	f.reports[report.ID] = report
	return nil
}

func (f *fakeReportStore) GetForUser(_ context.Context, id string, userID string) (models.DiseaseReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[id]
	if !ok || report.UserID != userID {
		return models.DiseaseReport{}, repository.ErrReportNotFound
	}
	return report, nil
}

func (f *fakeReportStore) SetResult(_ context.Context, id string, label string, confidence float64, modelVer string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[id]
	if !ok {
		return repository.ErrReportNotFound
	}
	report.Status = models.ReportStatusDone
	report.Label = &label
	report.Confidence = &confidence
	report.ModelVer = &modelVer
	report.UpdatedAt = time.Now()
	f.reports[id] = report
	return nil
}

func (f *fakeReportStore) MarkFailed(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[id]
	if !ok {
		return repository.ErrReportNotFound
	}
	report.Status = models.ReportStatusFailed
	report.UpdatedAt = time.Now()
	f.reports[id] = report
	return nil
}
