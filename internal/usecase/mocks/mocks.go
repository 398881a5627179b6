package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pravino/tapcore/internal/domain"
	"github.com/pravino/tapcore/internal/usecase"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	CreateFunc                func(ctx context.Context, user *domain.User) error
	GetByIDFunc               func(ctx context.Context, id string) (*domain.User, error)
	GetByIDForUpdateFunc      func(ctx context.Context, tx usecase.Transaction, id string) (*domain.User, error)
	GetByIDsForUpdateFunc     func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.User, error)
	UpdateFunc                func(ctx context.Context, tx usecase.Transaction, user *domain.User) error
	ListActiveSubscribersFunc func(ctx context.Context, tierName string, now time.Time) ([]*domain.User, error)
	CountFoundersFunc         func(ctx context.Context, tierName string) (int, error)
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.User, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockUserRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.User, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var users []*domain.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (m *MockUserRepository) Update(ctx context.Context, tx usecase.Transaction, user *domain.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) ListActiveSubscribers(ctx context.Context, tierName string, now time.Time) ([]*domain.User, error) {
	if m.ListActiveSubscribersFunc != nil {
		return m.ListActiveSubscribersFunc(ctx, tierName, now)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var users []*domain.User
	for _, u := range m.users {
		if u.TierName == tierName && u.HasActiveSubscription(now) {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *MockUserRepository) ListWithExpiredTickets(ctx context.Context, now time.Time) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var users []*domain.User
	for _, u := range m.users {
		if u.SpinTickets > 0 && u.SpinTicketsExpiry != nil && !u.SpinTicketsExpiry.After(now) {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *MockUserRepository) ListExpiringTiers(ctx context.Context, from, until time.Time) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var users []*domain.User
	for _, u := range m.users {
		if u.TierExpiresAt != nil && u.TierExpiresAt.After(from) && !u.TierExpiresAt.After(until) {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *MockUserRepository) CountFounders(ctx context.Context, tierName string) (int, error) {
	if m.CountFoundersFunc != nil {
		return m.CountFoundersFunc(ctx, tierName)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, u := range m.users {
		if u.Founder && u.TierName == tierName {
			count++
		}
	}
	return count, nil
}

// MockLedgerRepository is a mock implementation of LedgerRepository.
// Entries are kept in append order per user, matching the chain.
type MockLedgerRepository struct {
	mu      sync.RWMutex
	entries map[string][]*domain.LedgerEntry

	CreateFunc        func(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error
	GetLastByUserFunc func(ctx context.Context, tx usecase.Transaction, userID string) (*domain.LedgerEntry, error)
}

func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{entries: make(map[string][]*domain.LedgerEntry)}
}

func (m *MockLedgerRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.UserID] = append(m.entries[entry.UserID], entry)
	return nil
}

func (m *MockLedgerRepository) SetHash(ctx context.Context, tx usecase.Transaction, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, chain := range m.entries {
		for _, e := range chain {
			if e.ID == id {
				e.EntryHash = hash
				return nil
			}
		}
	}
	return domain.ErrEntryNotFound
}

func (m *MockLedgerRepository) GetLastByUser(ctx context.Context, tx usecase.Transaction, userID string) (*domain.LedgerEntry, error) {
	if m.GetLastByUserFunc != nil {
		return m.GetLastByUserFunc(ctx, tx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	chain := m.entries[userID]
	if len(chain) == 0 {
		return nil, nil
	}
	return chain[len(chain)-1], nil
}

func (m *MockLedgerRepository) ListByUserAsc(ctx context.Context, userID string) ([]*domain.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.LedgerEntry{}, m.entries[userID]...), nil
}

func (m *MockLedgerRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chain := m.entries[userID]
	var out []*domain.LedgerEntry
	for i := len(chain) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, chain[i])
	}
	return out, nil
}

// Entries returns every entry for a user, oldest first.
func (m *MockLedgerRepository) Entries(userID string) []*domain.LedgerEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.LedgerEntry{}, m.entries[userID]...)
}

// MockTreasuryRepository is a mock implementation of TreasuryRepository.
type MockTreasuryRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction
	allocations  map[string]*domain.PoolAllocation
	unclaimed    []*domain.UnclaimedFunds

	CreateTransactionFunc func(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error
	ListReleasableFunc    func(ctx context.Context, now time.Time) ([]*domain.PoolAllocation, error)
	ListExpiredFunc       func(ctx context.Context, now time.Time) ([]*domain.PoolAllocation, error)
}

func NewMockTreasuryRepository() *MockTreasuryRepository {
	return &MockTreasuryRepository{
		transactions: make(map[string]*domain.Transaction),
		allocations:  make(map[string]*domain.PoolAllocation),
	}
}

func (m *MockTreasuryRepository) GetTransactionByHash(ctx context.Context, txHash string) (*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.transactions {
		if t.TxHash == txHash {
			return t, nil
		}
	}
	return nil, nil
}

func (m *MockTreasuryRepository) CreateTransaction(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	if m.CreateTransactionFunc != nil {
		return m.CreateTransactionFunc(ctx, tx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.transactions {
		if existing.TxHash == t.TxHash {
			return domain.ErrDuplicateTxHash
		}
	}
	m.transactions[t.ID] = t
	return nil
}

func (m *MockTreasuryRepository) ListAllocationsByTransaction(ctx context.Context, transactionID string) ([]*domain.PoolAllocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.PoolAllocation
	for _, a := range m.allocations {
		if a.TransactionID == transactionID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockTreasuryRepository) CreateAllocation(ctx context.Context, tx usecase.Transaction, a *domain.PoolAllocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allocations[a.ID] = a
	return nil
}

func (m *MockTreasuryRepository) ListReleasable(ctx context.Context, now time.Time) ([]*domain.PoolAllocation, error) {
	if m.ListReleasableFunc != nil {
		return m.ListReleasableFunc(ctx, now)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.PoolAllocation
	for _, a := range m.allocations {
		if a.Active && a.DripType == domain.DripDaily {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockTreasuryRepository) ListExpired(ctx context.Context, now time.Time) ([]*domain.PoolAllocation, error) {
	if m.ListExpiredFunc != nil {
		return m.ListExpiredFunc(ctx, now)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.PoolAllocation
	for _, a := range m.allocations {
		if a.Active && !a.ExpiryDate.After(now) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockTreasuryRepository) UpdateAllocationRelease(ctx context.Context, tx usecase.Transaction, id string, daysReleased int, amountReleased decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.allocations[id]
	if !ok {
		return domain.ErrAllocationNotFound
	}
	a.DaysReleased = daysReleased
	a.AmountReleased = amountReleased
	return nil
}

func (m *MockTreasuryRepository) DeactivateAllocation(ctx context.Context, tx usecase.Transaction, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.allocations[id]
	if !ok {
		return domain.ErrAllocationNotFound
	}
	a.Active = false
	return nil
}

func (m *MockTreasuryRepository) CreateUnclaimed(ctx context.Context, tx usecase.Transaction, u *domain.UnclaimedFunds) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unclaimed = append(m.unclaimed, u)
	return nil
}

// Unclaimed returns every recaptured record.
func (m *MockTreasuryRepository) Unclaimed() []*domain.UnclaimedFunds {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.UnclaimedFunds{}, m.unclaimed...)
}

// Allocation returns one allocation by ID.
func (m *MockTreasuryRepository) Allocation(id string) *domain.PoolAllocation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.allocations[id]
}

// MockVaultRepository is a mock implementation of VaultRepository.
type MockVaultRepository struct {
	mu     sync.RWMutex
	vaults map[string]*domain.JackpotVault

	GetOrCreateForUpdateFunc func(ctx context.Context, tx usecase.Transaction, tierName, monthKey string) (*domain.JackpotVault, error)
}

func NewMockVaultRepository() *MockVaultRepository {
	return &MockVaultRepository{vaults: make(map[string]*domain.JackpotVault)}
}

func (m *MockVaultRepository) GetOrCreateForUpdate(ctx context.Context, tx usecase.Transaction, tierName, monthKey string) (*domain.JackpotVault, error) {
	if m.GetOrCreateForUpdateFunc != nil {
		return m.GetOrCreateForUpdateFunc(ctx, tx, tierName, monthKey)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := tierName + "/" + monthKey
	if v, ok := m.vaults[key]; ok {
		return v, nil
	}
	v := &domain.JackpotVault{ID: key, TierName: tierName, MonthKey: monthKey, Balance: decimal.Zero}
	m.vaults[key] = v
	return v, nil
}

func (m *MockVaultRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vaults[id]
	if !ok {
		return domain.ErrVaultNotFound
	}
	v.Balance = balance
	v.UpdatedAt = updatedAt
	return nil
}

func (m *MockVaultRepository) GetByTierMonth(ctx context.Context, tierName, monthKey string) (*domain.JackpotVault, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.vaults[tierName+"/"+monthKey]; ok {
		return v, nil
	}
	return nil, domain.ErrVaultNotFound
}

// SetBalance seeds a vault directly.
func (m *MockVaultRepository) SetBalance(tierName, monthKey string, balance decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := tierName + "/" + monthKey
	m.vaults[key] = &domain.JackpotVault{ID: key, TierName: tierName, MonthKey: monthKey, Balance: balance}
}

// MockPotRepository is a mock implementation of PotRepository.
type MockPotRepository struct {
	mu   sync.RWMutex
	pots map[string]*domain.TierPot
}

func NewMockPotRepository() *MockPotRepository {
	return &MockPotRepository{pots: make(map[string]*domain.TierPot)}
}

func (m *MockPotRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, tierName string, game domain.Game) (*domain.TierPot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := tierName + "/" + string(game)
	if p, ok := m.pots[key]; ok {
		return p, nil
	}
	p := &domain.TierPot{TierName: tierName, Game: game, Balance: decimal.Zero, Rollover: decimal.Zero}
	m.pots[key] = p
	return p, nil
}

func (m *MockPotRepository) Update(ctx context.Context, tx usecase.Transaction, pot *domain.TierPot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pots[pot.TierName+"/"+string(pot.Game)] = pot
	return nil
}

func (m *MockPotRepository) Get(ctx context.Context, tierName string, game domain.Game) (*domain.TierPot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.pots[tierName+"/"+string(game)]; ok {
		return p, nil
	}
	return &domain.TierPot{TierName: tierName, Game: game, Balance: decimal.Zero, Rollover: decimal.Zero}, nil
}

// SetPot seeds a pot directly.
func (m *MockPotRepository) SetPot(pot *domain.TierPot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pots[pot.TierName+"/"+string(pot.Game)] = pot
}

// MockPredictionRepository is a mock implementation of PredictionRepository.
type MockPredictionRepository struct {
	mu          sync.RWMutex
	predictions map[string]*domain.Prediction

	HasOpenFunc func(ctx context.Context, userID string) (bool, error)
}

func NewMockPredictionRepository() *MockPredictionRepository {
	return &MockPredictionRepository{predictions: make(map[string]*domain.Prediction)}
}

func (m *MockPredictionRepository) Create(ctx context.Context, tx usecase.Transaction, p *domain.Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions[p.ID] = p
	return nil
}

func (m *MockPredictionRepository) HasOpen(ctx context.Context, userID string) (bool, error) {
	if m.HasOpenFunc != nil {
		return m.HasOpenFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.predictions {
		if p.UserID == userID && !p.Resolved {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockPredictionRepository) ListMatureUnresolved(ctx context.Context, before time.Time) ([]*domain.Prediction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Prediction
	for _, p := range m.predictions {
		if !p.Resolved && !p.CreatedAt.After(before) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockPredictionRepository) MarkResolved(ctx context.Context, tx usecase.Transaction, p *domain.Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions[p.ID] = p
	return nil
}

// MockSpinRepository is a mock implementation of SpinRepository.
type MockSpinRepository struct {
	mu       sync.RWMutex
	outcomes []*domain.SpinOutcome
}

func NewMockSpinRepository() *MockSpinRepository {
	return &MockSpinRepository{}
}

func (m *MockSpinRepository) CreateOutcome(ctx context.Context, tx usecase.Transaction, o *domain.SpinOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, o)
	return nil
}

func (m *MockSpinRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.SpinOutcome, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.SpinOutcome
	for i := len(m.outcomes) - 1; i >= 0 && len(out) < limit; i-- {
		if m.outcomes[i].UserID == userID {
			out = append(out, m.outcomes[i])
		}
	}
	return out, nil
}

// MockWithdrawalRepository is a mock implementation of WithdrawalRepository.
type MockWithdrawalRepository struct {
	mu          sync.RWMutex
	withdrawals map[string]*domain.Withdrawal
	batches     map[string]*domain.WithdrawalBatch
}

func NewMockWithdrawalRepository() *MockWithdrawalRepository {
	return &MockWithdrawalRepository{
		withdrawals: make(map[string]*domain.Withdrawal),
		batches:     make(map[string]*domain.WithdrawalBatch),
	}
}

func (m *MockWithdrawalRepository) Create(ctx context.Context, tx usecase.Transaction, w *domain.Withdrawal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.withdrawals[w.ID] = w
	return nil
}

func (m *MockWithdrawalRepository) GetByID(ctx context.Context, id string) (*domain.Withdrawal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if w, ok := m.withdrawals[id]; ok {
		return w, nil
	}
	return nil, domain.ErrWithdrawalNotFound
}

func (m *MockWithdrawalRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Withdrawal, error) {
	return m.GetByID(ctx, id)
}

func (m *MockWithdrawalRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.WithdrawalStatus, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.withdrawals[id]
	if !ok {
		return domain.ErrWithdrawalNotFound
	}
	w.Status = status
	w.UpdatedAt = updatedAt
	return nil
}

func (m *MockWithdrawalRepository) ListByStatusBefore(ctx context.Context, status domain.WithdrawalStatus, before time.Time) ([]*domain.Withdrawal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Withdrawal
	for _, w := range m.withdrawals {
		if w.Status == status && !w.CreatedAt.After(before) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockWithdrawalRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, batch *domain.WithdrawalBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches[batch.ID] = batch
	return nil
}

func (m *MockWithdrawalRepository) UpdateBatchTotals(ctx context.Context, tx usecase.Transaction, batchID string, count int, totalNet decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[batchID]
	if !ok {
		return domain.ErrWithdrawalNotFound
	}
	b.Count = count
	b.TotalNet = totalNet
	return nil
}

func (m *MockWithdrawalRepository) AssignBatch(ctx context.Context, tx usecase.Transaction, withdrawalID, batchID string, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.withdrawals[withdrawalID]
	if !ok {
		return domain.ErrWithdrawalNotFound
	}
	w.BatchID = &batchID
	w.UpdatedAt = updatedAt
	return nil
}

// MockSummaryRepository is a mock implementation of SummaryRepository.
type MockSummaryRepository struct {
	mu        sync.RWMutex
	summaries []*domain.SettlementSummary
}

func NewMockSummaryRepository() *MockSummaryRepository {
	return &MockSummaryRepository{}
}

func (m *MockSummaryRepository) Create(ctx context.Context, tx usecase.Transaction, s *domain.SettlementSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries = append(m.summaries, s)
	return nil
}

func (m *MockSummaryRepository) ListByCycle(ctx context.Context, cycleDate time.Time) ([]*domain.SettlementSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.SettlementSummary
	for _, s := range m.summaries {
		if s.CycleDate.Equal(cycleDate) {
			out = append(out, s)
		}
	}
	return out, nil
}

// MockOracle is a mock implementation of PriceOracle.
type MockOracle struct {
	Result    *domain.OracleResult
	Err       error
	FrozenVal bool

	FetchFunc func(ctx context.Context) (*domain.OracleResult, error)
}

func (m *MockOracle) Fetch(ctx context.Context) (*domain.OracleResult, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx)
	}
	return m.Result, m.Err
}

func (m *MockOracle) FetchWithRetry(ctx context.Context, maxAttempts int, deadline time.Time) (*domain.OracleResult, error) {
	return m.Fetch(ctx)
}

func (m *MockOracle) Frozen() bool {
	return m.FrozenVal
}

// MockAbuseGate is a mock implementation of AbuseGate.
type MockAbuseGate struct {
	ScoreVal  int
	ScoreFunc func(ctx context.Context, userID, action string) int
}

func (m *MockAbuseGate) Score(ctx context.Context, userID, action string) int {
	if m.ScoreFunc != nil {
		return m.ScoreFunc(ctx, userID, action)
	}
	return m.ScoreVal
}

// MockRand is a deterministic Rand fed from a fixed sequence. The
// sequence repeats when exhausted.
type MockRand struct {
	mu     sync.Mutex
	Values []int
	next   int
}

func (m *MockRand) IntN(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Values) == 0 {
		return 0
	}
	v := m.Values[m.next%len(m.Values)] % n
	m.next++
	return v
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%04d", m.counter)
}
