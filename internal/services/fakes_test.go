package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"bux-api/internal/models"
	"bux-api/internal/pkg/errors"
	"bux-api/internal/repository"

	"github.com/google/uuid"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*models.User
	lookErr error
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return errors.New(errors.ErrAlreadyExists, "User already registered.")
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookErr != nil {
		return nil, r.lookErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, errors.ErrNotFound
}

func (r *fakeUserRepo) GetByAPIKey(ctx context.Context, host, apiKey string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookErr != nil {
		return nil, r.lookErr
	}
	for _, u := range r.users {
		if u.Host == host && u.APIKey == apiKey {
			copied := *u
			return &copied, nil
		}
	}
	return nil, errors.ErrNotFound
}

func (r *fakeUserRepo) List(ctx context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, *u)
	}
	return users, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return errors.ErrNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return errors.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) stored(id uuid.UUID) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

type usageKey struct {
	user uuid.UUID
	date string
}

// fakeUsageRepo applies the same conditional-increment rule as the gorm repository.
type fakeUsageRepo struct {
	mu      sync.Mutex
	entries map[usageKey]int
	err     error
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{entries: make(map[usageKey]int)}
}

func (r *fakeUsageRepo) set(userID uuid.UUID, date string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[usageKey{userID, date}] = count
}

func (r *fakeUsageRepo) count(userID uuid.UUID, date string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.entries[usageKey{userID, date}]
	return c, ok
}

func (r *fakeUsageRepo) Consume(ctx context.Context, userID uuid.UUID, date string, limit int) (*models.UsageResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}

	key := usageKey{userID, date}
	count, ok := r.entries[key]
	switch {
	case ok && count < limit:
		r.entries[key] = count + 1
		return &models.UsageResult{Outcome: models.UsageIncremented, Date: date, Count: count + 1}, nil
	case ok:
		return &models.UsageResult{Outcome: models.UsageQuotaExceeded, Date: date, Count: count}, nil
	case limit <= 0:
		return &models.UsageResult{Outcome: models.UsageQuotaExceeded, Date: date, Count: 0}, nil
	default:
		r.entries[key] = 1
		return &models.UsageResult{Outcome: models.UsageCreatedToday, Date: date, Count: 1}, nil
	}
}

func (r *fakeUsageRepo) GetByUserAndDate(ctx context.Context, userID uuid.UUID, date string) (*models.UsageEntry, error) {
	c, ok := r.count(userID, date)
	if !ok {
		return nil, errors.ErrNotFound
	}
	return &models.UsageEntry{UserID: userID, Date: date, Count: c}, nil
}

func (r *fakeUsageRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.UsageEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var entries []models.UsageEntry
	for k, c := range r.entries {
		if k.user == userID {
			entries = append(entries, models.UsageEntry{UserID: userID, Date: k.date, Count: c})
		}
	}
	return entries, nil
}

type fakeBookRepo struct {
	mu        sync.Mutex
	books     map[uuid.UUID]*models.Book
	listCalls int
}

func newFakeBookRepo(books ...*models.Book) *fakeBookRepo {
	r := &fakeBookRepo{books: make(map[uuid.UUID]*models.Book)}
	for _, b := range books {
		if b.ID == uuid.Nil {
			b.ID = uuid.New()
		}
		r.books[b.ID] = b
	}
	return r
}

func (r *fakeBookRepo) Create(ctx context.Context, book *models.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}
	copied := *book
	r.books[book.ID] = &copied
	return nil
}

func (r *fakeBookRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBookRepo) GetByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.books {
		if b.ISBN == isbn {
			copied := *b
			return &copied, nil
		}
	}
	return nil, errors.ErrNotFound
}

func (r *fakeBookRepo) List(ctx context.Context, expand repository.Expand) ([]models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	books := make([]models.Book, 0, len(r.books))
	for _, b := range r.books {
		books = append(books, *b)
	}
	return books, nil
}

func (r *fakeBookRepo) Update(ctx context.Context, book *models.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[book.ID]; !ok {
		return errors.ErrNotFound
	}
	copied := *book
	r.books[book.ID] = &copied
	return nil
}

func (r *fakeBookRepo) UpdateImageURL(ctx context.Context, id uuid.UUID, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return errors.ErrNotFound
	}
	b.ImageURL = url
	return nil
}

func (r *fakeBookRepo) Delete(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	delete(r.books, id)
	return b, nil
}

type fakeReadingRepo struct {
	mu       sync.Mutex
	readings map[uuid.UUID]*models.Reading
}

func newFakeReadingRepo() *fakeReadingRepo {
	return &fakeReadingRepo{readings: make(map[uuid.UUID]*models.Reading)}
}

func (r *fakeReadingRepo) Create(ctx context.Context, reading *models.Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reading.ID == uuid.Nil {
		reading.ID = uuid.New()
	}
	copied := *reading
	r.readings[reading.ID] = &copied
	return nil
}

func (r *fakeReadingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Reading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rd, ok := r.readings[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	copied := *rd
	return &copied, nil
}

func (r *fakeReadingRepo) GetByUserAndBook(ctx context.Context, userID, bookID uuid.UUID) (*models.Reading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rd := range r.readings {
		if rd.UserID == userID && rd.BookID == bookID {
			copied := *rd
			return &copied, nil
		}
	}
	return nil, errors.ErrNotFound
}

func (r *fakeReadingRepo) List(ctx context.Context, expand repository.Expand) ([]models.Reading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	readings := make([]models.Reading, 0, len(r.readings))
	for _, rd := range r.readings {
		readings = append(readings, *rd)
	}
	return readings, nil
}

func (r *fakeReadingRepo) Update(ctx context.Context, reading *models.Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.readings[reading.ID]; !ok {
		return errors.ErrNotFound
	}
	copied := *reading
	r.readings[reading.ID] = &copied
	return nil
}

func (r *fakeReadingRepo) Delete(ctx context.Context, id uuid.UUID) (*models.Reading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rd, ok := r.readings[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	delete(r.readings, id)
	return rd, nil
}

// fakeCache is an in-memory CacheService with prefix-only pattern support.
type fakeCache struct {
	mu    sync.Mutex
	items map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string]string)}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = string(data)
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *fakeCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
		}
	}
	return nil
}

func (c *fakeCache) Ping(ctx context.Context) error {
	return nil
}

func (c *fakeCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
