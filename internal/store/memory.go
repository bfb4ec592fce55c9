package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"TalentHive/internal/apperr"
	"TalentHive/internal/models"
)

// MemoryStore is an in-process Store for tests and local runs. A single
// RWMutex guards every map so multi-entity writes such as SaveRelease stay
// atomic.
type MemoryStore struct {
	mu            sync.RWMutex
	contracts     map[uuid.UUID]*models.Contract
	proposals     map[uint]uuid.UUID
	transactions  map[uuid.UUID]*models.Transaction
	notifications []models.Notification
	users         map[uint]models.User
	bankAccounts  map[uint][]models.BankAccount
	nextNotifID   uint
	now           func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		contracts:    make(map[uuid.UUID]*models.Contract),
		proposals:    make(map[uint]uuid.UUID),
		transactions: make(map[uuid.UUID]*models.Transaction),
		users:        make(map[uint]models.User),
		bankAccounts: make(map[uint][]models.BankAccount),
		now:          time.Now,
	}
}

// PutUser seeds a directory entry.
func (s *MemoryStore) PutUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// PutBankAccount seeds a payout account.
func (s *MemoryStore) PutBankAccount(b models.BankAccount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bankAccounts[b.UserID] = append(s.bankAccounts[b.UserID], b)
}

func (s *MemoryStore) CreateContract(_ context.Context, c *models.Contract) error {
	const op = "store.CreateContract"
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contracts[c.ID]; ok {
		return apperr.Conflict(op, "contract %s already exists", c.ID)
	}
	if _, ok := s.proposals[c.ProposalID]; ok {
		return apperr.Conflict(op, "a contract already exists for proposal %d", c.ProposalID)
	}
	if c.Version == 0 {
		c.Version = 1
	}
	now := s.now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	s.contracts[c.ID] = c.Clone()
	s.proposals[c.ProposalID] = c.ID
	return nil
}

func (s *MemoryStore) GetContract(_ context.Context, id uuid.UUID) (*models.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contracts[id]
	if !ok {
		return nil, apperr.NotFound("store.GetContract", "contract %s not found", id)
	}
	return c.Clone(), nil
}

func (s *MemoryStore) SaveContract(_ context.Context, c *models.Contract, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkContract(c, expectedVersion); err != nil {
		return err
	}
	s.putContract(c, expectedVersion)
	return nil
}

func (s *MemoryStore) checkContract(c *models.Contract, expectedVersion int) error {
	const op = "store.SaveContract"
	cur, ok := s.contracts[c.ID]
	if !ok {
		return apperr.NotFound(op, "contract %s not found", c.ID)
	}
	if cur.Version != expectedVersion {
		return versionConflict(op, "contract")
	}
	return nil
}

func (s *MemoryStore) putContract(c *models.Contract, expectedVersion int) {
	c.Version = expectedVersion + 1
	c.UpdatedAt = s.now().UTC()
	s.contracts[c.ID] = c.Clone()
}

func (s *MemoryStore) ListContracts(_ context.Context, f ContractFilter) ([]models.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Contract
	for _, c := range s.contracts {
		switch f.Role {
		case "client":
			if c.ClientID != f.UserID {
				continue
			}
		case "freelancer":
			if c.FreelancerID != f.UserID {
				continue
			}
		default:
			if c.ClientID != f.UserID && c.FreelancerID != f.UserID {
				continue
			}
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		out = append(out, *c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Offset, clampLimit(f.Limit)), nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	if offset < 0 {
		offset = 0
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func (s *MemoryStore) CreateTransaction(_ context.Context, t *models.Transaction) error {
	const op = "store.CreateTransaction"
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[t.ID]; ok {
		return apperr.Conflict(op, "transaction %s already exists", t.ID)
	}
	for _, existing := range s.transactions {
		if existing.Reference == t.Reference {
			return apperr.Conflict(op, "transaction reference %s already exists", t.Reference)
		}
	}
	if t.Version == 0 {
		t.Version = 1
	}
	now := s.now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	s.transactions[t.ID] = t.Clone()
	return nil
}

func (s *MemoryStore) GetTransaction(_ context.Context, id uuid.UUID) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok {
		return nil, apperr.NotFound("store.GetTransaction", "transaction %s not found", id)
	}
	return t.Clone(), nil
}

func (s *MemoryStore) GetTransactionByReference(_ context.Context, reference string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.transactions {
		if t.Reference == reference {
			return t.Clone(), nil
		}
	}
	return nil, apperr.NotFound("store.GetTransactionByReference", "transaction %s not found", reference)
}

func (s *MemoryStore) FindActiveTransaction(_ context.Context, milestoneID uuid.UUID) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *models.Transaction
	for _, t := range s.transactions {
		if t.MilestoneID != milestoneID || !t.Status.IsActive() {
			continue
		}
		if found == nil || t.CreatedAt.After(found.CreatedAt) {
			found = t
		}
	}
	if found == nil {
		return nil, apperr.NotFound("store.FindActiveTransaction", "no active transaction for milestone %s", milestoneID)
	}
	return found.Clone(), nil
}

func (s *MemoryStore) CountTransactions(_ context.Context, milestoneID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, t := range s.transactions {
		if t.MilestoneID == milestoneID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) UpdateTransaction(_ context.Context, t *models.Transaction, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkTransaction(t, expectedVersion); err != nil {
		return err
	}
	s.putTransaction(t, expectedVersion)
	return nil
}

func (s *MemoryStore) checkTransaction(t *models.Transaction, expectedVersion int) error {
	const op = "store.UpdateTransaction"
	cur, ok := s.transactions[t.ID]
	if !ok {
		return apperr.NotFound(op, "transaction %s not found", t.ID)
	}
	if cur.Version != expectedVersion {
		return versionConflict(op, "transaction")
	}
	return nil
}

func (s *MemoryStore) putTransaction(t *models.Transaction, expectedVersion int) {
	t.Version = expectedVersion + 1
	t.UpdatedAt = s.now().UTC()
	s.transactions[t.ID] = t.Clone()
}

func (s *MemoryStore) SaveRelease(_ context.Context, c *models.Contract, contractVersion int, t *models.Transaction, transactionVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkTransaction(t, transactionVersion); err != nil {
		return err
	}
	if err := s.checkContract(c, contractVersion); err != nil {
		return err
	}
	s.putTransaction(t, transactionVersion)
	s.putContract(c, contractVersion)
	return nil
}

func (s *MemoryStore) ListStaleTransactions(_ context.Context, status models.TransactionStatus, updatedBefore time.Time, limit int) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Transaction
	for _, t := range s.transactions {
		if t.Status == status && t.UpdatedAt.Before(updatedBefore) {
			out = append(out, *t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return page(out, 0, clampLimit(limit)), nil
}

func (s *MemoryStore) ListTransactionsForContract(_ context.Context, contractID uuid.UUID) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Transaction
	for _, t := range s.transactions {
		if t.ContractID == contractID {
			out = append(out, *t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) CreateNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextNotifID++
	n.ID = s.nextNotifID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *MemoryStore) ListNotifications(_ context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Notification
	for i := len(s.notifications) - 1; i >= 0; i-- {
		n := s.notifications[i]
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, n)
	}
	return page(out, 0, clampLimit(limit)), nil
}

func (s *MemoryStore) CountUnread(_ context.Context, userID uint) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, x := range s.notifications {
		if x.UserID == userID && !x.IsRead {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) MarkRead(_ context.Context, userID, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		n := &s.notifications[i]
		if n.ID == id && n.UserID == userID {
			now := s.now().UTC()
			n.IsRead = true
			n.ReadAt = &now
			return nil
		}
	}
	return apperr.NotFound("store.MarkRead", "notification not found")
}

func (s *MemoryStore) MarkAllRead(_ context.Context, userID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var changed int64
	now := s.now().UTC()
	for i := range s.notifications {
		n := &s.notifications[i]
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
			changed++
		}
	}
	return changed, nil
}

func (s *MemoryStore) GetUser(_ context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("store.GetUser", "user %d not found", id)
	}
	return &u, nil
}

func (s *MemoryStore) DefaultBankAccount(_ context.Context, userID uint) (*models.BankAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := s.bankAccounts[userID]
	if len(accounts) == 0 {
		return nil, apperr.NotFound("store.DefaultBankAccount", "user %d has no payout account", userID)
	}
	best := accounts[len(accounts)-1]
	for _, b := range accounts {
		if b.IsDefault {
			best = b
			break
		}
	}
	return &best, nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*GormStore)(nil)
)
