package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tresoro/tresoro-backend/internal/domain"
)

// MockBudgetRepository is a mock implementation of domain.BudgetRepository.
// Balance mutations go through a mutex and the domain's conditional checks,
// so concurrent callers observe the same admission behavior as the
// conditional UPDATEs of the Postgres repository.
type MockBudgetRepository struct {
	Budgets map[int32]*domain.Budget
	NextID  int32
	mu      sync.Mutex
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets: make(map[int32]*domain.Budget),
		NextID:  1,
	}
}

// AddBudget adds a budget to the mock repository (helper for tests)
func (m *MockBudgetRepository) AddBudget(budget *domain.Budget) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if budget.ID == 0 {
		budget.ID = m.NextID
	}
	if budget.ID >= m.NextID {
		m.NextID = budget.ID + 1
	}
	m.Budgets[budget.ID] = budget
}

// Create stores a new budget and assigns it an id
func (m *MockBudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *budget
	stored.ID = m.NextID
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	m.NextID++
	m.Budgets[stored.ID] = &stored
	result := stored
	return &result, nil
}

// GetByID retrieves a budget by ID
func (m *MockBudgetRepository) GetByID(id int32) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	budget, ok := m.Budgets[id]
	if !ok {
		return nil, domain.ErrBudgetNotFound
	}
	result := *budget
	return &result, nil
}

// GetAll returns all budgets matching the filters
func (m *MockBudgetRepository) GetAll(filters *domain.BudgetFilters) ([]*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Budget
	for _, b := range m.Budgets {
		if filters != nil {
			if filters.Status != nil && b.Status != *filters.Status {
				continue
			}
			if filters.Period != nil && b.Period != *filters.Period {
				continue
			}
		}
		copied := *b
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update applies administrative field changes
func (m *MockBudgetRepository) Update(id int32, update *domain.BudgetUpdate) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	budget, ok := m.Budgets[id]
	if !ok {
		return nil, domain.ErrBudgetNotFound
	}
	budget.Name = update.Name
	budget.Description = update.Description
	budget.AlertThreshold = update.AlertThreshold
	budget.AlertEnabled = update.AlertEnabled
	budget.AutoRenew = update.AutoRenew
	budget.UpdatedAt = time.Now().UTC()
	result := *budget
	return &result, nil
}

// UpdateStatus sets the budget status
func (m *MockBudgetRepository) UpdateStatus(id int32, status domain.BudgetStatus) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	budget, ok := m.Budgets[id]
	if !ok {
		return nil, domain.ErrBudgetNotFound
	}
	budget.Status = status
	budget.UpdatedAt = time.Now().UTC()
	result := *budget
	return &result, nil
}

// Renew closes the current budget and stores its successor in one step
func (m *MockBudgetRepository) Renew(currentID int32, successor *domain.Budget) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.Budgets[currentID]
	if !ok {
		return nil, domain.ErrBudgetNotFound
	}
	current.Status = domain.BudgetStatusClosed
	stored := *successor
	stored.ID = m.NextID
	m.NextID++
	m.Budgets[stored.ID] = &stored
	result := stored
	return &result, nil
}

// ApplyAmount atomically consumes remaining balance when the guard holds
func (m *MockBudgetRepository) ApplyAmount(id int32, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	budget, ok := m.Budgets[id]
	if !ok {
		return domain.ErrBudgetNotFound
	}
	if !budget.IsActive() {
		return domain.ErrBudgetNotActive
	}
	return budget.ApplyAmount(amount)
}

// ReleaseAmount atomically reverses a previous apply
func (m *MockBudgetRepository) ReleaseAmount(id int32, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	budget, ok := m.Budgets[id]
	if !ok {
		return domain.ErrBudgetNotFound
	}
	return budget.ReleaseAmount(amount)
}

// GetActive returns all budgets in usable ACTIF state
func (m *MockBudgetRepository) GetActive() ([]*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Budget
	for _, b := range m.Budgets {
		if b.IsActive() {
			copied := *b
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// HasActiveOverlap reports whether an active budget overlaps [start, end]
func (m *MockBudgetRepository) HasActiveOverlap(start, end time.Time, excludeID *int32) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.Budgets {
		if excludeID != nil && b.ID == *excludeID {
			continue
		}
		if b.Status != domain.BudgetStatusActive {
			continue
		}
		if !b.EndDate.Before(start) && !b.StartDate.After(end) {
			return true, nil
		}
	}
	return false, nil
}

// GetNearExpiry returns ACTIF budgets ending within the given number of
// days, including budgets whose period already ended
func (m *MockBudgetRepository) GetNearExpiry(withinDays int) ([]*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	limit := domain.Today().AddDate(0, 0, withinDays)
	var result []*domain.Budget
	for _, b := range m.Budgets {
		if b.Status != domain.BudgetStatusActive {
			continue
		}
		if b.EndDate.After(limit) {
			continue
		}
		copied := *b
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// GetOverThreshold returns active budgets with alerting enabled whose
// consumption reached their threshold
func (m *MockBudgetRepository) GetOverThreshold() ([]*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Budget
	for _, b := range m.Budgets {
		if b.Status != domain.BudgetStatusActive || !b.AlertEnabled {
			continue
		}
		if b.IsAlertThresholdExceeded() {
			copied := *b
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// MockBudgetCategoryRepository is a mock implementation of
// domain.BudgetCategoryRepository
type MockBudgetCategoryRepository struct {
	Categories                 map[int32]*domain.BudgetCategory
	NextID                     int32
	ValidatedTransactionCounts map[int32]int
	mu                         sync.Mutex
}

// NewMockBudgetCategoryRepository creates a new MockBudgetCategoryRepository
func NewMockBudgetCategoryRepository() *MockBudgetCategoryRepository {
	return &MockBudgetCategoryRepository{
		Categories:                 make(map[int32]*domain.BudgetCategory),
		NextID:                     1,
		ValidatedTransactionCounts: make(map[int32]int),
	}
}

// AddCategory adds a category to the mock repository (helper for tests)
func (m *MockBudgetCategoryRepository) AddCategory(category *domain.BudgetCategory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if category.ID == 0 {
		category.ID = m.NextID
	}
	if category.ID >= m.NextID {
		m.NextID = category.ID + 1
	}
	m.Categories[category.ID] = category
}

// Create stores a new category
func (m *MockBudgetCategoryRepository) Create(category *domain.BudgetCategory) (*domain.BudgetCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *category
	stored.ID = m.NextID
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	m.NextID++
	m.Categories[stored.ID] = &stored
	result := stored
	return &result, nil
}

// GetByID retrieves a category by ID
func (m *MockBudgetCategoryRepository) GetByID(id int32) (*domain.BudgetCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	category, ok := m.Categories[id]
	if !ok {
		return nil, domain.ErrBudgetCategoryNotFound
	}
	result := *category
	return &result, nil
}

// GetByBudget returns the categories owned by a budget
func (m *MockBudgetCategoryRepository) GetByBudget(budgetID int32) ([]*domain.BudgetCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.BudgetCategory
	for _, c := range m.Categories {
		if c.BudgetID == budgetID {
			copied := *c
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update applies field changes, rebasing the remaining balance on the new
// allocation
func (m *MockBudgetCategoryRepository) Update(id int32, update *domain.BudgetCategoryUpdate) (*domain.BudgetCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	category, ok := m.Categories[id]
	if !ok {
		return nil, domain.ErrBudgetCategoryNotFound
	}
	category.Name = update.Name
	category.Type = update.Type
	category.Priority = update.Priority
	category.AllocatedAmount = update.AllocatedAmount
	category.RemainingAmount = domain.RoundAmount(update.AllocatedAmount.Sub(category.UsedAmount))
	category.AlertThreshold = update.AlertThreshold
	category.Active = update.Active
	category.UpdatedAt = time.Now().UTC()
	result := *category
	return &result, nil
}

// Delete removes a category
func (m *MockBudgetCategoryRepository) Delete(id int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Categories[id]; !ok {
		return domain.ErrBudgetCategoryNotFound
	}
	delete(m.Categories, id)
	return nil
}

// SumAllocatedByBudget sums montantAlloue over a budget's categories
func (m *MockBudgetCategoryRepository) SumAllocatedByBudget(budgetID int32, excludeID *int32) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, c := range m.Categories {
		if c.BudgetID != budgetID {
			continue
		}
		if excludeID != nil && c.ID == *excludeID {
			continue
		}
		total = total.Add(c.AllocatedAmount)
	}
	return total, nil
}

// HasValidatedTransactions reports whether validated transactions reference
// the category
func (m *MockBudgetCategoryRepository) HasValidatedTransactions(id int32) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ValidatedTransactionCounts[id] > 0, nil
}

// SetValidatedTransactionCount seeds the usage counter (helper for tests)
func (m *MockBudgetCategoryRepository) SetValidatedTransactionCount(id int32, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ValidatedTransactionCounts[id] = count
}

// ApplyAmount atomically consumes remaining allocation when the guard holds
func (m *MockBudgetCategoryRepository) ApplyAmount(id int32, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	category, ok := m.Categories[id]
	if !ok {
		return domain.ErrBudgetCategoryNotFound
	}
	return category.ApplyAmount(amount)
}

// ReleaseAmount atomically reverses a previous apply
func (m *MockBudgetCategoryRepository) ReleaseAmount(id int32, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	category, ok := m.Categories[id]
	if !ok {
		return domain.ErrBudgetCategoryNotFound
	}
	return category.ReleaseAmount(amount)
}

// MockTransactionRepository is a mock implementation of
// domain.TransactionRepository. Validate and Cancel run the same
// apply-then-compensate sequence as the Postgres unit of work, against the
// wired budget and category mocks.
type MockTransactionRepository struct {
	Transactions map[int32]*domain.Transaction
	NextID       int32
	Budgets      *MockBudgetRepository
	Categories   *MockBudgetCategoryRepository
	// ConflictsRemaining makes the next N Validate/Cancel calls fail with
	// ErrConflict before touching anything, to exercise retry paths.
	ConflictsRemaining int
	mu                 sync.Mutex
}

// NewMockTransactionRepository creates a new MockTransactionRepository wired
// to the given balance stores
func NewMockTransactionRepository(budgets *MockBudgetRepository, categories *MockBudgetCategoryRepository) *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[int32]*domain.Transaction),
		NextID:       1,
		Budgets:      budgets,
		Categories:   categories,
	}
}

// AddTransaction adds a transaction to the mock repository (helper for tests)
func (m *MockTransactionRepository) AddTransaction(tx *domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx.ID == 0 {
		tx.ID = m.NextID
	}
	if tx.ID >= m.NextID {
		m.NextID = tx.ID + 1
	}
	m.Transactions[tx.ID] = tx
}

// Create stores a new transaction, enforcing reference uniqueness
func (m *MockTransactionRepository) Create(tx *domain.Transaction) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Transactions {
		if existing.Reference == tx.Reference {
			return nil, domain.ErrDuplicateReference
		}
	}
	stored := *tx
	stored.ID = m.NextID
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	m.NextID++
	m.Transactions[stored.ID] = &stored
	result := stored
	return &result, nil
}

// GetByID retrieves a transaction by ID
func (m *MockTransactionRepository) GetByID(id int32) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.Transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	result := *tx
	return &result, nil
}

// GetByReference retrieves a transaction by its unique reference
func (m *MockTransactionRepository) GetByReference(reference string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tx := range m.Transactions {
		if tx.Reference == reference {
			result := *tx
			return &result, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

// List returns transactions matching the filters with pagination
func (m *MockTransactionRepository) List(filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*domain.Transaction
	for _, tx := range m.Transactions {
		if filters != nil {
			if filters.StartDate != nil && tx.TransactionDate.Before(*filters.StartDate) {
				continue
			}
			if filters.EndDate != nil && tx.TransactionDate.After(*filters.EndDate) {
				continue
			}
			if filters.Type != nil && tx.Type != *filters.Type {
				continue
			}
			if filters.Status != nil && tx.Status != *filters.Status {
				continue
			}
			if filters.BudgetID != nil && (tx.BudgetID == nil || *tx.BudgetID != *filters.BudgetID) {
				continue
			}
			if filters.CategoryID != nil && tx.CategoryID != *filters.CategoryID {
				continue
			}
		}
		copied := *tx
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	page := int32(1)
	pageSize := int32(domain.DefaultPageSize)
	if filters != nil {
		if filters.Page > 0 {
			page = filters.Page
		}
		if filters.PageSize > 0 {
			pageSize = filters.PageSize
			if pageSize > domain.MaxPageSize {
				pageSize = domain.MaxPageSize
			}
		}
	}

	totalItems := int64(len(matched))
	start := (page - 1) * pageSize
	if start > int32(len(matched)) {
		start = int32(len(matched))
	}
	end := start + pageSize
	if end > int32(len(matched)) {
		end = int32(len(matched))
	}

	totalPages := int32(totalItems / int64(pageSize))
	if totalItems%int64(pageSize) > 0 {
		totalPages++
	}

	return &domain.PaginatedTransactions{
		Data:       matched[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

// GetPending returns all transactions awaiting validation
func (m *MockTransactionRepository) GetPending() ([]*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Transaction
	for _, tx := range m.Transactions {
		if tx.Status == domain.TransactionStatusPending {
			copied := *tx
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update applies field changes to a transaction
func (m *MockTransactionRepository) Update(id int32, data *domain.UpdateTransactionData) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.Transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	tx.Amount = data.Amount
	tx.Type = data.Type
	tx.Description = data.Description
	tx.TransactionDate = data.TransactionDate
	tx.Notes = data.Notes
	tx.VATRate = data.VATRate
	tx.NetAmount = data.NetAmount
	tx.VATAmount = data.VATAmount
	tx.BudgetID = data.BudgetID
	tx.BudgetCategoryID = data.BudgetCategoryID
	tx.CategoryID = data.CategoryID
	tx.UpdatedAt = time.Now().UTC()
	result := *tx
	return &result, nil
}

// Delete removes a transaction
func (m *MockTransactionRepository) Delete(id int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Transactions[id]; !ok {
		return domain.ErrTransactionNotFound
	}
	delete(m.Transactions, id)
	return nil
}

// SetReceiptKey attaches or clears the stored receipt object key
func (m *MockTransactionRepository) SetReceiptKey(id int32, key *string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.Transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	tx.ReceiptKey = key
	result := *tx
	return &result, nil
}

// SumByTypeAndDateRange sums transaction amounts by type and status in a
// date range
func (m *MockTransactionRepository) SumByTypeAndDateRange(start, end time.Time, txType domain.TransactionType, status domain.TransactionStatus) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, tx := range m.Transactions {
		if tx.Type != txType || tx.Status != status {
			continue
		}
		if tx.TransactionDate.Before(start) || tx.TransactionDate.After(end) {
			continue
		}
		total = total.Add(tx.Amount)
	}
	return total, nil
}

// CountByTransactionCategory counts transactions referencing a
// classification category
func (m *MockTransactionRepository) CountByTransactionCategory(categoryID int32) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, tx := range m.Transactions {
		if tx.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

// takeConflict consumes one injected conflict if any remain
func (m *MockTransactionRepository) takeConflict() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ConflictsRemaining > 0 {
		m.ConflictsRemaining--
		return true
	}
	return false
}

// applyDelta routes a signed delta to the conditional apply or release of
// the balance stores
func applyBudgetDelta(budgets *MockBudgetRepository, id int32, delta decimal.Decimal) error {
	switch {
	case delta.IsPositive():
		return budgets.ApplyAmount(id, delta)
	case delta.IsNegative():
		return budgets.ReleaseAmount(id, delta.Neg())
	default:
		return nil
	}
}

func applyCategoryDelta(categories *MockBudgetCategoryRepository, id int32, delta decimal.Decimal) error {
	switch {
	case delta.IsPositive():
		return categories.ApplyAmount(id, delta)
	case delta.IsNegative():
		return categories.ReleaseAmount(id, delta.Neg())
	default:
		return nil
	}
}

// applyEffect applies both deltas, compensating the budget side when the
// category side fails so no partial application survives
func (m *MockTransactionRepository) applyEffect(effect domain.LedgerEffect) error {
	if effect.BudgetID != nil {
		if err := applyBudgetDelta(m.Budgets, *effect.BudgetID, effect.BudgetDelta); err != nil {
			return err
		}
	}
	if effect.CategoryID != nil {
		if err := applyCategoryDelta(m.Categories, *effect.CategoryID, effect.CategoryDelta); err != nil {
			if effect.BudgetID != nil {
				_ = applyBudgetDelta(m.Budgets, *effect.BudgetID, effect.BudgetDelta.Neg())
			}
			return err
		}
	}
	return nil
}

// Validate flips EN_ATTENTE to VALIDEE and applies the effect
func (m *MockTransactionRepository) Validate(id int32, validatorID string, effect domain.LedgerEffect) (*domain.Transaction, error) {
	if m.takeConflict() {
		return nil, domain.ErrConflict
	}

	m.mu.Lock()
	tx, ok := m.Transactions[id]
	if !ok {
		m.mu.Unlock()
		return nil, domain.ErrTransactionNotFound
	}
	if tx.Status != domain.TransactionStatusPending {
		m.mu.Unlock()
		return nil, domain.ErrInvalidState
	}
	m.mu.Unlock()

	if err := m.applyEffect(effect); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := tx.MarkValidated(validatorID, time.Now().UTC()); err != nil {
		// Lost the race for the status flip; undo the balance effect.
		_ = m.applyEffect(effect.Reversed())
		return nil, err
	}
	tx.UpdatedAt = time.Now().UTC()
	result := *tx
	return &result, nil
}

// Reject flips EN_ATTENTE to REJETEE without touching balances
func (m *MockTransactionRepository) Reject(id int32, validatorID, motif string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.Transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	if err := tx.MarkRejected(validatorID, motif); err != nil {
		return nil, err
	}
	tx.UpdatedAt = time.Now().UTC()
	result := *tx
	return &result, nil
}

// Cancel flips VALIDEE to ANNULEE and applies the (reversed) effect
func (m *MockTransactionRepository) Cancel(id int32, motif string, effect domain.LedgerEffect) (*domain.Transaction, error) {
	if m.takeConflict() {
		return nil, domain.ErrConflict
	}

	m.mu.Lock()
	tx, ok := m.Transactions[id]
	if !ok {
		m.mu.Unlock()
		return nil, domain.ErrTransactionNotFound
	}
	if tx.Status != domain.TransactionStatusValidated {
		m.mu.Unlock()
		return nil, domain.ErrInvalidState
	}
	m.mu.Unlock()

	if err := m.applyEffect(effect); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := tx.MarkCancelled(motif); err != nil {
		_ = m.applyEffect(effect.Reversed())
		return nil, err
	}
	tx.UpdatedAt = time.Now().UTC()
	result := *tx
	return &result, nil
}

// MockTransactionCategoryRepository is a mock implementation of
// domain.TransactionCategoryRepository
type MockTransactionCategoryRepository struct {
	Categories map[int32]*domain.TransactionCategory
	NextID     int32
	mu         sync.Mutex
}

// NewMockTransactionCategoryRepository creates a new
// MockTransactionCategoryRepository
func NewMockTransactionCategoryRepository() *MockTransactionCategoryRepository {
	return &MockTransactionCategoryRepository{
		Categories: make(map[int32]*domain.TransactionCategory),
		NextID:     1,
	}
}

// AddCategory adds a classification category (helper for tests)
func (m *MockTransactionCategoryRepository) AddCategory(category *domain.TransactionCategory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if category.ID == 0 {
		category.ID = m.NextID
	}
	if category.ID >= m.NextID {
		m.NextID = category.ID + 1
	}
	m.Categories[category.ID] = category
}

// Create stores a new classification category
func (m *MockTransactionCategoryRepository) Create(category *domain.TransactionCategory) (*domain.TransactionCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *category
	stored.ID = m.NextID
	m.NextID++
	m.Categories[stored.ID] = &stored
	result := stored
	return &result, nil
}

// GetByID retrieves a classification category by ID
func (m *MockTransactionCategoryRepository) GetByID(id int32) (*domain.TransactionCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	category, ok := m.Categories[id]
	if !ok {
		return nil, domain.ErrTransactionCategoryNotFound
	}
	result := *category
	return &result, nil
}

// GetAll returns all classification categories
func (m *MockTransactionCategoryRepository) GetAll() ([]*domain.TransactionCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.TransactionCategory
	for _, c := range m.Categories {
		copied := *c
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update renames a classification category
func (m *MockTransactionCategoryRepository) Update(id int32, name string, description *string) (*domain.TransactionCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	category, ok := m.Categories[id]
	if !ok {
		return nil, domain.ErrTransactionCategoryNotFound
	}
	category.Name = name
	category.Description = description
	result := *category
	return &result, nil
}

// Delete removes a classification category
func (m *MockTransactionCategoryRepository) Delete(id int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Categories[id]; !ok {
		return domain.ErrTransactionCategoryNotFound
	}
	delete(m.Categories, id)
	return nil
}
