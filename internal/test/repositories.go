package test

import (
	"context"
	"sort"
	"sync"

	domainErrors "github.com/polkiloo/floristportal/internal/domain/errors"
	"github.com/polkiloo/floristportal/internal/domain/model"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
	// Orders receives unassignments on Delete when set.
	Orders *OrderRepositoryStub
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless the email is taken or stub has explicit error.
func (s *UserRepositoryStub) Create(_ context.Context, user *model.User) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if _, exists := s.Users[user.Email]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	stored := *user
	stored.ID = s.Next
	s.Next++
	s.Users[stored.Email] = &stored
	s.ByID[stored.ID] = &stored
	out := stored
	return &out, nil
}

// Add stores u as is, for seeding.
func (s *UserRepositoryStub) Add(u model.User) *model.User {
	if u.ID == 0 {
		u.ID = s.Next
	}
	if u.ID >= s.Next {
		s.Next = u.ID + 1
	}
	s.Users[u.Email] = &u
	s.ByID[u.ID] = &u
	return &u
}

// GetByEmail fetches user by email or returns not found.
func (s *UserRepositoryStub) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[email]; ok {
		out := *user
		return &out, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(_ context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		out := *user
		return &out, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ListByRole returns users of role ordered by id.
func (s *UserRepositoryStub) ListByRole(_ context.Context, role model.Role) ([]model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := []model.User{}
	for _, u := range s.ByID {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update replaces a stored user.
func (s *UserRepositoryStub) Update(_ context.Context, user *model.User) error {
	if s.Err != nil {
		return s.Err
	}
	current, ok := s.ByID[user.ID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if other, taken := s.Users[user.Email]; taken && other.ID != user.ID {
		return domainErrors.ErrAlreadyExists
	}
	delete(s.Users, current.Email)
	stored := *user
	s.Users[stored.Email] = &stored
	s.ByID[stored.ID] = &stored
	return nil
}

// Delete removes a user and unassigns its orders in the linked order stub.
func (s *UserRepositoryStub) Delete(_ context.Context, id int64) error {
	if s.Err != nil {
		return s.Err
	}
	user, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if s.Orders != nil {
		s.Orders.unassign(id)
	}
	delete(s.ByID, id)
	delete(s.Users, user.Email)
	return nil
}

// Count returns the number of stored users.
func (s *UserRepositoryStub) Count(context.Context) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return int64(len(s.ByID)), nil
}

// OrderRepositoryStub keeps orders in memory. Function fields override behaviour.
type OrderRepositoryStub struct {
	UpsertFn func(context.Context, *model.Order) (*model.Order, bool, error)
	ListFn   func(context.Context, model.OrderFilter) ([]model.Order, error)
	SaveFn   func(context.Context, *model.Order) error

	mu      sync.Mutex
	Orders  map[int64]*model.Order
	Next    int64
	Filters []model.OrderFilter
	Saves   int
}

// NewOrderRepositoryStub constructs an empty stub.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{Orders: make(map[int64]*model.Order), Next: 1}
}

// Add stores o, assigning an id when missing.
func (s *OrderRepositoryStub) Add(o model.Order) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == 0 {
		o.ID = s.Next
	}
	if o.ID >= s.Next {
		s.Next = o.ID + 1
	}
	s.Orders[o.ID] = &o
	out := o
	return &out
}

// Upsert inserts or refreshes by source id. Workflow fields of an existing
// order are kept.
func (s *OrderRepositoryStub) Upsert(ctx context.Context, order *model.Order) (*model.Order, bool, error) {
	if s.UpsertFn != nil {
		return s.UpsertFn(ctx, order)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.Orders {
		if existing.SourcePlatform != order.SourcePlatform || existing.SourceOrderID != order.SourceOrderID {
			continue
		}
		refreshed := *order
		refreshed.ID = existing.ID
		refreshed.PartnerID = existing.PartnerID
		refreshed.AssignedAt = existing.AssignedAt
		refreshed.ReceivedAt = existing.ReceivedAt
		refreshed.UpdateCount = existing.UpdateCount
		refreshed.CreatedByRole = existing.CreatedByRole
		switch {
		case existing.Status == model.OrderStatusCancelled:
			refreshed.Status = existing.Status
		case order.Status == model.OrderStatusCancelled || order.Status == model.OrderStatusFulfilled:
		default:
			refreshed.Status = existing.Status
		}
		if existing.CancelledAt != nil {
			refreshed.CancelledAt = existing.CancelledAt
			refreshed.CancelReason = existing.CancelReason
		}
		s.Orders[existing.ID] = &refreshed
		out := refreshed
		return &out, false, nil
	}
	stored := *order
	stored.ID = s.Next
	s.Next++
	s.Orders[stored.ID] = &stored
	out := stored
	return &out, true, nil
}

// Create stores a new order.
func (s *OrderRepositoryStub) Create(_ context.Context, order *model.Order) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *order
	stored.ID = s.Next
	s.Next++
	s.Orders[stored.ID] = &stored
	out := stored
	return &out, nil
}

// GetByID returns a copy of the stored order.
func (s *OrderRepositoryStub) GetByID(_ context.Context, id int64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.Orders[id]; ok {
		out := *o
		return &out, nil
	}
	return nil, domainErrors.ErrNotFound
}

// FindBySource looks an order up by its source identity.
func (s *OrderRepositoryStub) FindBySource(_ context.Context, platform, sourceID string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.Orders {
		if o.SourcePlatform == platform && o.SourceOrderID == sourceID {
			out := *o
			return &out, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// List records the filter and returns stored orders matching status and partner.
func (s *OrderRepositoryStub) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	s.mu.Lock()
	s.Filters = append(s.Filters, filter)
	s.mu.Unlock()
	if s.ListFn != nil {
		return s.ListFn(ctx, filter)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Order{}
	for _, o := range s.Orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.PartnerID != nil && (o.PartnerID == nil || *o.PartnerID != *filter.PartnerID) {
			continue
		}
		if filter.Unassigned && o.PartnerID != nil {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Save replaces a stored order.
func (s *OrderRepositoryStub) Save(ctx context.Context, order *model.Order) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, order)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Orders[order.ID]; !ok {
		return domainErrors.ErrNotFound
	}
	stored := *order
	s.Orders[order.ID] = &stored
	s.Saves++
	return nil
}

func (s *OrderRepositoryStub) unassign(partnerID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.Orders {
		if o.PartnerID != nil && *o.PartnerID == partnerID {
			o.PartnerID = nil
			o.AssignedAt = nil
			if o.Status == model.OrderStatusAssigned {
				o.Status = model.OrderStatusNew
			}
		}
	}
}

// ShopRepositoryStub stores shop credentials in memory.
type ShopRepositoryStub struct {
	Items map[string]model.ShopCredentials
	Err   error
}

// NewShopRepositoryStub constructs an empty stub.
func NewShopRepositoryStub() *ShopRepositoryStub {
	return &ShopRepositoryStub{Items: make(map[string]model.ShopCredentials)}
}

// SaveCredentials upserts by shop.
func (s *ShopRepositoryStub) SaveCredentials(_ context.Context, creds model.ShopCredentials) error {
	if s.Err != nil {
		return s.Err
	}
	s.Items[creds.Shop] = creds
	return nil
}

// Credentials returns stored credentials for shop.
func (s *ShopRepositoryStub) Credentials(_ context.Context, shop string) (*model.ShopCredentials, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	creds, ok := s.Items[shop]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &creds, nil
}

// LatestCredentials returns the most recently installed shop.
func (s *ShopRepositoryStub) LatestCredentials(context.Context) (*model.ShopCredentials, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var latest *model.ShopCredentials
	for _, c := range s.Items {
		c := c
		if latest == nil || c.InstalledAt.After(latest.InstalledAt) {
			latest = &c
		}
	}
	if latest == nil {
		return nil, domainErrors.ErrNotFound
	}
	return latest, nil
}
