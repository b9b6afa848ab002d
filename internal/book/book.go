// Package book holds the contact book: the ordered contact list, the
// active filter and the pagination cursor, kept in sync with a storage slot.
package book

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"rhystmorgan/contactbook/internal/audit"
	"rhystmorgan/contactbook/internal/models"
	"rhystmorgan/contactbook/internal/storage"
	"rhystmorgan/contactbook/internal/validation"
)

const DefaultPerPage = 5

var (
	ErrNotFound = errors.New("contact not found")
	ErrPersist  = errors.New("failed to persist contacts")

	// ErrInvalidContact matches the *validation.Error returned by Add and Edit.
	ErrInvalidContact = validation.ErrInvalidContact
)

// Auditor receives a record of every change made through the book.
type Auditor interface {
	Record(action audit.AuditAction, contactID int64, details map[string]string) error
}

type Filter struct {
	Field models.Field
	Value string
}

type ContactBook struct {
	mu          sync.Mutex
	slot        storage.Slot
	list        models.ContactList
	filter      *Filter
	perPage     int
	currentPage int
	lastID      int64

	now     func() time.Time
	logger  *zap.Logger
	auditor Auditor
}

type Option func(*ContactBook)

// WithPerPage sets the page size. Values below one are ignored.
func WithPerPage(n int) Option {
	return func(b *ContactBook) {
		if n > 0 {
			b.perPage = n
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(b *ContactBook) {
		if logger != nil {
			b.logger = logger
		}
	}
}

func WithAuditor(a Auditor) Option {
	return func(b *ContactBook) { b.auditor = a }
}

func WithClock(now func() time.Time) Option {
	return func(b *ContactBook) { b.now = now }
}

// New returns an empty book bound to slot. Call Load to hydrate it.
func New(slot storage.Slot, opts ...Option) *ContactBook {
	b := &ContactBook{
		slot:        slot,
		list:        models.ContactList{Contacts: []models.Contact{}},
		perPage:     DefaultPerPage,
		currentPage: 1,
		now:         time.Now,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load replaces the in-memory state with the slot contents. Missing or
// unreadable contents leave the book empty. A failing read, including a
// sealed slot that will not open, is returned.
func (b *ContactBook) Load(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.list = models.ContactList{Contacts: []models.Contact{}}
	b.filter = nil
	b.currentPage = 1

	data, err := b.slot.Read(ctx)
	if errors.Is(err, storage.ErrCorruptSlot) {
		b.logger.Warn("discarding unreadable contact slot", zap.Error(err))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load contacts: %w", err)
	}

	contacts, err := storage.DecodeContacts(data)
	if err != nil {
		b.logger.Warn("discarding unreadable contact slot", zap.Error(err), zap.Int("bytes", len(data)))
		return nil
	}

	seen := make(map[int64]struct{}, len(contacts))
	for _, c := range contacts {
		if _, dup := seen[c.ID]; dup {
			b.logger.Warn("skipping contact with duplicate id", zap.Int64("id", c.ID))
			continue
		}
		seen[c.ID] = struct{}{}
		b.list.Add(c)
	}

	if highest := b.list.MaxID(); highest > b.lastID {
		b.lastID = highest
	}
	b.logger.Debug("contacts loaded", zap.Int("count", b.list.Len()))
	return nil
}

// Persist writes the full contact list, ignoring any active filter.
func (b *ContactBook) Persist(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.persistLocked(ctx)
}

func (b *ContactBook) persistLocked(ctx context.Context) error {
	data, err := storage.EncodeContacts(b.list.Contacts)
	if err == nil {
		err = b.slot.Write(ctx, data)
	}
	if err != nil {
		b.logger.Error("contacts kept in memory only", zap.Error(err), zap.Int("count", b.list.Len()))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// Add appends a new contact. The contact stays in memory even when the
// returned error wraps ErrPersist.
func (b *ContactBook) Add(ctx context.Context, firstName, lastName, phone, email string) (models.Contact, error) {
	if err := validation.ValidateContact(firstName, lastName, phone, email).Err(); err != nil {
		return models.Contact{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	contact := models.NewContact(b.nextID(), firstName, lastName, phone, email)
	b.list.Add(contact)
	b.record(audit.AuditActionCreate, contact.ID, nil)
	b.logger.Debug("contact added", zap.Int64("id", contact.ID))

	return contact, b.persistLocked(ctx)
}

// nextID is the wall clock in milliseconds, bumped past the last issued id
// so that calls within the same millisecond stay unique.
func (b *ContactBook) nextID() int64 {
	id := b.now().UnixMilli()
	if id <= b.lastID {
		id = b.lastID + 1
	}
	b.lastID = id
	return id
}

func (b *ContactBook) Delete(ctx context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.list.Remove(id) {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	b.clampLocked()
	b.record(audit.AuditActionDelete, id, nil)
	b.logger.Debug("contact deleted", zap.Int64("id", id))

	return b.persistLocked(ctx)
}

// Edit updates the contact in place, keeping its id and position.
func (b *ContactBook) Edit(ctx context.Context, id int64, firstName, lastName, phone, email string) (models.Contact, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	existing := b.list.FindByID(id)
	if existing == nil {
		return models.Contact{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err := validation.ValidateContact(firstName, lastName, phone, email).Err(); err != nil {
		return *existing, err
	}

	before := *existing
	updated, _ := b.list.Replace(id, firstName, lastName, phone, email)
	b.clampLocked()
	b.record(audit.AuditActionUpdate, id, changes(before, updated))
	b.logger.Debug("contact edited", zap.Int64("id", id))

	return updated, b.persistLocked(ctx)
}

// Filter narrows the visible contacts to those whose field contains value,
// ignoring case, and returns to the first page. The full list is kept and
// is still what gets persisted.
func (b *ContactBook) Filter(field models.Field, value string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.filter = &Filter{Field: field, Value: value}
	b.currentPage = 1
	b.record(audit.AuditActionFilter, 0, map[string]string{"field": string(field), "value": value})
}

func (b *ContactBook) ClearFilter() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.filter = nil
	b.currentPage = 1
}

func (b *ContactBook) ActiveFilter() (Filter, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.filter == nil {
		return Filter{}, false
	}
	return *b.filter, true
}

// ChangePage moves the cursor by delta pages, clamped to the valid range,
// and returns the new page number.
func (b *ContactBook) ChangePage(delta int) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	total := totalPages(len(b.visibleLocked()), b.perPage)
	b.currentPage += max(-total, min(delta, total))
	b.clampLocked()
	return b.currentPage
}

// GoToPage jumps to page n, clamped to the valid range.
func (b *ContactBook) GoToPage(n int) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.currentPage = n
	b.clampLocked()
	return b.currentPage
}

func (b *ContactBook) CurrentView() Page {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.clampLocked()
	return pageOf(b.visibleLocked(), b.currentPage, b.perPage)
}

// ViewOf computes page n of the contacts matching f, clamped to the valid
// range, without touching the book's own filter or cursor. A nil filter
// selects every contact.
func (b *ContactBook) ViewOf(f *Filter, n int) Page {
	b.mu.Lock()
	defer b.mu.Unlock()

	visible := b.list.Contacts
	if f != nil {
		visible = b.list.Filter(f.Field, f.Value)
	}
	total := totalPages(len(visible), b.perPage)
	return pageOf(visible, max(1, min(n, total)), b.perPage)
}

func (b *ContactBook) Get(id int64) (models.Contact, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.list.FindByID(id)
	if c == nil {
		return models.Contact{}, false
	}
	return *c, true
}

// Len returns the number of stored contacts, filtered or not.
func (b *ContactBook) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.list.Len()
}

// Visible returns the contacts that pass the active filter.
func (b *ContactBook) Visible() []models.Contact {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Contact(nil), b.visibleLocked()...)
}

func (b *ContactBook) All() []models.Contact {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Contact(nil), b.list.Contacts...)
}

func (b *ContactBook) PerPage() int {
	return b.perPage
}

func (b *ContactBook) visibleLocked() []models.Contact {
	if b.filter == nil {
		return b.list.Contacts
	}
	return b.list.Filter(b.filter.Field, b.filter.Value)
}

func (b *ContactBook) clampLocked() {
	total := totalPages(len(b.visibleLocked()), b.perPage)
	b.currentPage = max(1, min(b.currentPage, total))
}

func (b *ContactBook) record(action audit.AuditAction, id int64, details map[string]string) {
	if b.auditor == nil {
		return
	}
	if err := b.auditor.Record(action, id, details); err != nil {
		b.logger.Warn("failed to record audit entry",
			zap.String("action", string(action)), zap.Int64("id", id), zap.Error(err))
	}
}

func changes(before, after models.Contact) map[string]string {
	diff := make(map[string]string)
	for _, f := range models.Fields {
		if before.Value(f) != after.Value(f) {
			diff[string(f)] = after.Value(f)
		}
	}
	return diff
}
