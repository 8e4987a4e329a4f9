package leads

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository defines the interface for lead storage. FindOrCreate and Save
// together form the per-phone read-modify-write the conversation service
// serializes.
type Repository interface {
	FindOrCreate(ctx context.Context, phone string) (*Lead, error)
	GetByPhone(ctx context.Context, phone string) (*Lead, error)
	Save(ctx context.Context, lead *Lead) error
	List(ctx context.Context) ([]*Lead, error)
}

// InMemoryRepository is a Repository backed by a map. Used in development
// and tests when no database is configured.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]*Lead),
	}
}

// FindOrCreate returns the lead for phone, creating it lazily on first contact.
func (r *InMemoryRepository) FindOrCreate(ctx context.Context, phone string) (*Lead, error) {
	if phone == "" {
		return nil, ErrMissingPhone
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if lead, ok := r.leads[phone]; ok {
		return copyLead(lead), nil
	}

	lead := NewLead(phone)
	r.leads[phone] = copyLead(lead)
	return lead, nil
}

// GetByPhone retrieves a lead by phone number.
func (r *InMemoryRepository) GetByPhone(ctx context.Context, phone string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[phone]
	if !ok {
		return nil, ErrLeadNotFound
	}
	return copyLead(lead), nil
}

// Save persists all mutated fields of the lead.
func (r *InMemoryRepository) Save(ctx context.Context, lead *Lead) error {
	if lead == nil || lead.Phone == "" {
		return ErrMissingPhone
	}

	lead.UpdatedAt = time.Now().UTC()

	r.mu.Lock()
	r.leads[lead.Phone] = copyLead(lead)
	r.mu.Unlock()
	return nil
}

// List returns all leads ordered by creation time.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Lead, 0, len(r.leads))
	for _, lead := range r.leads {
		out = append(out, copyLead(lead))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Phone < out[j].Phone
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func copyLead(l *Lead) *Lead {
	dup := *l
	if l.SlotOptions != nil {
		dup.SlotOptions = append([]string(nil), l.SlotOptions...)
	}
	return &dup
}
