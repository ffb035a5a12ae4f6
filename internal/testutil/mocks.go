package testutil

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/growlify/growlify-api/internal/domain"
	"github.com/growlify/growlify-api/internal/mailer"
	"github.com/growlify/growlify-api/internal/websocket"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	ByID       map[uuid.UUID]*domain.User
	ByEmail    map[string]*domain.User
	Categories map[uuid.UUID][]*domain.Category
	CreateErr  error
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		ByID:       make(map[uuid.UUID]*domain.User),
		ByEmail:    make(map[string]*domain.User),
		Categories: make(map[uuid.UUID][]*domain.Category),
	}
}

// CreateWithCategories stores the user and remembers its starter categories
func (m *MockUserRepository) CreateWithCategories(_ context.Context, user *domain.User, categories []*domain.Category) (*domain.User, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	email := strings.ToLower(user.Email)
	if _, ok := m.ByEmail[email]; ok {
		return nil, domain.ErrEmailTaken
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.SubscriptionStatus == "" {
		user.SubscriptionStatus = domain.SubscriptionInactive
	}
	user.Email = email
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.AddUser(user)
	m.Categories[user.ID] = categories
	return user, nil
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByEmail retrieves a user by email
func (m *MockUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if user, ok := m.ByEmail[strings.ToLower(email)]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.ByID[user.ID] = user
	m.ByEmail[strings.ToLower(user.Email)] = user
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories map[uuid.UUID]*domain.Category
	// Transactions, when set, has its category cleared on delete
	Transactions *MockTransactionRepository
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{Categories: make(map[uuid.UUID]*domain.Category)}
}

// Create creates a new category
func (m *MockCategoryRepository) Create(_ context.Context, category *domain.Category) (*domain.Category, error) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	m.Categories[category.ID] = category
	return category, nil
}

// CreateMany creates several categories
func (m *MockCategoryRepository) CreateMany(ctx context.Context, categories []*domain.Category) error {
	for _, c := range categories {
		if _, err := m.Create(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a category owned by the user
func (m *MockCategoryRepository) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.Category, error) {
	if c, ok := m.Categories[id]; ok && c.UserID == userID {
		return c, nil
	}
	return nil, domain.ErrCategoryNotFound
}

// ListByUser returns the user's categories ordered by name
func (m *MockCategoryRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Category, error) {
	out := make([]*domain.Category, 0)
	for _, c := range m.Categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Update replaces a stored category
func (m *MockCategoryRepository) Update(_ context.Context, category *domain.Category) (*domain.Category, error) {
	existing, ok := m.Categories[category.ID]
	if !ok || existing.UserID != category.UserID {
		return nil, domain.ErrCategoryNotFound
	}
	category.UpdatedAt = time.Now()
	m.Categories[category.ID] = category
	return category, nil
}

// Delete removes a category
func (m *MockCategoryRepository) Delete(_ context.Context, userID, id uuid.UUID) error {
	c, ok := m.Categories[id]
	if !ok || c.UserID != userID {
		return domain.ErrCategoryNotFound
	}
	delete(m.Categories, id)
	if m.Transactions != nil {
		for _, t := range m.Transactions.Transactions {
			if t.CategoryID != nil && *t.CategoryID == id {
				t.CategoryID = nil
			}
		}
	}
	return nil
}

// AddCategory adds a category to the mock repository (helper for tests)
func (m *MockCategoryRepository) AddCategory(category *domain.Category) {
	m.Categories[category.ID] = category
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	Transactions map[uuid.UUID]*domain.Transaction
	ListErr      error
	// LastFilters records the filters of the latest List call
	LastFilters domain.TransactionFilters
	listMu      sync.Mutex
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{Transactions: make(map[uuid.UUID]*domain.Transaction)}
}

// Create creates a new transaction
func (m *MockTransactionRepository) Create(_ context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	if transaction.ID == uuid.Nil {
		transaction.ID = uuid.New()
	}
	transaction.CreatedAt = time.Now()
	transaction.UpdatedAt = transaction.CreatedAt
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

// GetByID retrieves a transaction owned by the user
func (m *MockTransactionRepository) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	if t, ok := m.Transactions[id]; ok && t.UserID == userID {
		return t, nil
	}
	return nil, domain.ErrTransactionNotFound
}

// List applies the repository filters and orders by date descending
func (m *MockTransactionRepository) List(_ context.Context, userID uuid.UUID, filters domain.TransactionFilters) ([]*domain.Transaction, error) {
	m.listMu.Lock()
	defer m.listMu.Unlock()
	m.LastFilters = filters
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]*domain.Transaction, 0)
	for _, t := range m.Transactions {
		if t.UserID != userID {
			continue
		}
		if filters.From != nil && t.Date.Before(*filters.From) {
			continue
		}
		if filters.To != nil && t.Date.After(*filters.To) {
			continue
		}
		if filters.Type != nil && t.Type != *filters.Type {
			continue
		}
		if filters.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *filters.CategoryID) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

// Update replaces a stored transaction
func (m *MockTransactionRepository) Update(_ context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	existing, ok := m.Transactions[transaction.ID]
	if !ok || existing.UserID != transaction.UserID {
		return nil, domain.ErrTransactionNotFound
	}
	transaction.UpdatedAt = time.Now()
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

// Delete removes a transaction
func (m *MockTransactionRepository) Delete(_ context.Context, userID, id uuid.UUID) error {
	t, ok := m.Transactions[id]
	if !ok || t.UserID != userID {
		return domain.ErrTransactionNotFound
	}
	delete(m.Transactions, id)
	return nil
}

// AddTransaction adds a transaction to the mock repository (helper for tests)
func (m *MockTransactionRepository) AddTransaction(transaction *domain.Transaction) {
	if transaction.ID == uuid.Nil {
		transaction.ID = uuid.New()
	}
	m.Transactions[transaction.ID] = transaction
}

// MockSavedCalculationRepository is a mock implementation of domain.SavedCalculationRepository
type MockSavedCalculationRepository struct {
	Calculations map[uuid.UUID]*domain.SavedCalculation
	clock        time.Time
}

// NewMockSavedCalculationRepository creates a new MockSavedCalculationRepository
func NewMockSavedCalculationRepository() *MockSavedCalculationRepository {
	return &MockSavedCalculationRepository{
		Calculations: make(map[uuid.UUID]*domain.SavedCalculation),
		clock:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns strictly increasing timestamps so ordering is deterministic
func (m *MockSavedCalculationRepository) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

// Upsert inserts or updates in place on (user, type, params hash)
func (m *MockSavedCalculationRepository) Upsert(_ context.Context, calc *domain.SavedCalculation) (*domain.SavedCalculation, error) {
	now := m.tick()
	for _, existing := range m.Calculations {
		if existing.UserID == calc.UserID && existing.Type == calc.Type && existing.ParamsHash == calc.ParamsHash {
			existing.Title = calc.Title
			existing.Params = calc.Params
			existing.Result = calc.Result
			existing.UpdatedAt = now
			copied := *existing
			return &copied, nil
		}
	}
	if calc.ID == uuid.Nil {
		calc.ID = uuid.New()
	}
	stored := *calc
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.Calculations[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

// ListRecent returns the user's most recently updated calculations
func (m *MockSavedCalculationRepository) ListRecent(_ context.Context, userID uuid.UUID, limit int) ([]*domain.SavedCalculation, error) {
	out := make([]*domain.SavedCalculation, 0)
	for _, c := range m.Calculations {
		if c.UserID == userID {
			copied := *c
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes a saved calculation
func (m *MockSavedCalculationRepository) Delete(_ context.Context, userID, id uuid.UUID) error {
	c, ok := m.Calculations[id]
	if !ok || c.UserID != userID {
		return domain.ErrSavedCalculationNotFound
	}
	delete(m.Calculations, id)
	return nil
}

// MockResetTokenRepository is a mock implementation of domain.ResetTokenRepository.
// It is safe for concurrent use.
type MockResetTokenRepository struct {
	mu     sync.Mutex
	Tokens map[string]*domain.ResetToken
	Users  *MockUserRepository
	// DeleteStaleCalls records the cutoff of every DeleteStale call
	DeleteStaleCalls []time.Time
}

// NewMockResetTokenRepository creates a new MockResetTokenRepository
func NewMockResetTokenRepository(users *MockUserRepository) *MockResetTokenRepository {
	return &MockResetTokenRepository{Tokens: make(map[string]*domain.ResetToken), Users: users}
}

// Create stores a token
func (m *MockResetTokenRepository) Create(_ context.Context, token *domain.ResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = time.Now()
	m.Tokens[token.TokenHash] = token
	return nil
}

// GetByHash retrieves a token by hash
func (m *MockResetTokenRepository) GetByHash(_ context.Context, tokenHash string) (*domain.ResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.Tokens[tokenHash]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, domain.ErrResetTokenInvalid
}

// Redeem marks the token used and sets the user's password hash
func (m *MockResetTokenRepository) Redeem(_ context.Context, token *domain.ResetToken, passwordHash string, usedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.Tokens[token.TokenHash]
	if !ok || !stored.Usable(usedAt) {
		return domain.ErrResetTokenInvalid
	}
	if m.Users != nil {
		user, ok := m.Users.ByID[stored.UserID]
		if !ok {
			return domain.ErrUserNotFound
		}
		user.PasswordHash = passwordHash
	}
	stored.UsedAt = &usedAt
	token.UsedAt = &usedAt
	return nil
}

// DeleteStale removes tokens that expired or were used before the cutoff
func (m *MockResetTokenRepository) DeleteStale(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteStaleCalls = append(m.DeleteStaleCalls, before)
	var n int64
	for hash, t := range m.Tokens {
		if t.ExpiresAt.Before(before) || (t.UsedAt != nil && t.UsedAt.Before(before)) {
			delete(m.Tokens, hash)
			n++
		}
	}
	return n, nil
}

// Calls returns the number of DeleteStale calls so far
func (m *MockResetTokenRepository) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.DeleteStaleCalls)
}

// PublishedEvent is one event seen by MockEventPublisher
type PublishedEvent struct {
	UserID uuid.UUID
	Event  websocket.Event
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// Publish implements websocket.EventPublisher
func (m *MockEventPublisher) Publish(userID uuid.UUID, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{UserID: userID, Event: event})
}

// Types returns the published event types in order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Event.Type
	}
	return out
}

// MockMailer records reset password emails
type MockMailer struct {
	Sent []mailer.ResetPasswordEmail
	Err  error
}

// SendResetPassword implements mailer.Mailer
func (m *MockMailer) SendResetPassword(_ context.Context, msg mailer.ResetPasswordEmail) error {
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

// MockExportStore is an in-memory storage.ExportStore
type MockExportStore struct {
	Objects     map[string][]byte
	ContentType map[string]string
	URLBase     string
	UploadErr   error
}

// NewMockExportStore creates a new MockExportStore
func NewMockExportStore() *MockExportStore {
	return &MockExportStore{
		Objects:     make(map[string][]byte),
		ContentType: make(map[string]string),
		URLBase:     "https://storage.test/",
	}
}

// Upload stores the object body
func (m *MockExportStore) Upload(_ context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return "", err
	}
	m.Objects[objectPath] = buf.Bytes()
	m.ContentType[objectPath] = contentType
	return objectPath, nil
}

// GeneratePresignedURL returns a fake URL carrying the expiry
func (m *MockExportStore) GeneratePresignedURL(_ context.Context, objectPath string, expiry time.Duration) (string, error) {
	return m.URLBase + objectPath + "?expires=" + expiry.String(), nil
}
