package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/tresoro/tresoro-backend/internal/domain"
	"github.com/tresoro/tresoro-backend/internal/middleware"
	"github.com/tresoro/tresoro-backend/internal/service"
	"github.com/tresoro/tresoro-backend/internal/testutil"
)

type handlerFixture struct {
	handler      *TransactionHandler
	budgetRepo   *testutil.MockBudgetRepository
	categoryRepo *testutil.MockBudgetCategoryRepository
	txRepo       *testutil.MockTransactionRepository
}

func newHandlerFixture() *handlerFixture {
	budgetRepo := testutil.NewMockBudgetRepository()
	categoryRepo := testutil.NewMockBudgetCategoryRepository()
	txRepo := testutil.NewMockTransactionRepository(budgetRepo, categoryRepo)
	txCategoryRepo := testutil.NewMockTransactionCategoryRepository()

	today := domain.Today()
	total := decimal.NewFromInt(1000)
	budgetRepo.AddBudget(&domain.Budget{
		ID:              1,
		Name:            "Budget saison",
		TotalAmount:     total,
		UsedAmount:      decimal.Zero,
		RemainingAmount: total,
		Period:          domain.PeriodAnnual,
		StartDate:       today.AddDate(0, -1, 0),
		EndDate:         today.AddDate(0, 11, 0),
		Status:          domain.BudgetStatusActive,
		AlertThreshold:  domain.DefaultAlertThreshold,
		AlertEnabled:    true,
		OwnerID:         "auth0|tresorier",
	})
	categoryRepo.AddCategory(&domain.BudgetCategory{
		ID:              1,
		BudgetID:        1,
		Name:            "Equipement",
		Type:            domain.CategoryTypeEquipment,
		AllocatedAmount: decimal.NewFromInt(500),
		UsedAmount:      decimal.Zero,
		RemainingAmount: decimal.NewFromInt(500),
		AlertThreshold:  domain.DefaultAlertThreshold,
		Active:          true,
	})
	txCategoryRepo.AddCategory(&domain.TransactionCategory{
		ID:   1,
		Name: "Achats",
		Type: domain.TransactionTypeExpense,
	})

	transactionService := service.NewTransactionService(txRepo, budgetRepo, categoryRepo, txCategoryRepo, nil)
	return &handlerFixture{
		handler:      NewTransactionHandler(transactionService),
		budgetRepo:   budgetRepo,
		categoryRepo: categoryRepo,
		txRepo:       txRepo,
	}
}

func setupAuthContext(c echo.Context, userID string) {
	ctx := context.WithValue(c.Request().Context(), middleware.UserIDKey, userID)
	c.SetRequest(c.Request().WithContext(ctx))
}

func newJSONContext(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCreateTransaction_Success(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture()

	reqBody := `{"montant": "120.00", "type": "DEPENSE", "description": "Maillots", "dateTransaction": "2025-01-15", "tauxTVA": "20", "budgetId": 1, "categorieBudgetId": 1, "categorieTransactionId": 1}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/transactions", reqBody)
	setupAuthContext(c, "auth0|tresorier")

	if err := f.handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Status != "EN_ATTENTE" {
		t.Errorf("Expected statut EN_ATTENTE, got %s", response.Status)
	}
	if response.Amount != "120.00" {
		t.Errorf("Expected montant '120.00', got %s", response.Amount)
	}
	if !strings.HasPrefix(response.Reference, "TRX-20250115-") {
		t.Errorf("Unexpected reference %s", response.Reference)
	}
	if response.NetAmount == nil || *response.NetAmount != "100.00" {
		t.Errorf("Expected montantHT '100.00', got %v", response.NetAmount)
	}
	if response.VATAmount == nil || *response.VATAmount != "20.00" {
		t.Errorf("Expected montantTVA '20.00', got %v", response.VATAmount)
	}

	// Recording must not move any balance
	budget, _ := f.budgetRepo.GetByID(1)
	if !budget.UsedAmount.IsZero() {
		t.Errorf("Expected budget untouched, got used %s", budget.UsedAmount)
	}
}

func TestCreateTransaction_MissingAuth(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture()

	reqBody := `{"montant": "50.00", "type": "DEPENSE", "description": "Ballons", "dateTransaction": "2025-01-15", "categorieTransactionId": 1}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/transactions", reqBody)

	if err := f.handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestCreateTransaction_UnknownBudget(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture()

	reqBody := `{"montant": "50.00", "type": "DEPENSE", "description": "Ballons", "dateTransaction": "2025-01-15", "budgetId": 99, "categorieTransactionId": 1}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/transactions", reqBody)
	setupAuthContext(c, "auth0|tresorier")

	if err := f.handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestValidateTransaction_AppliesBalances(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture()

	f.txRepo.AddTransaction(&domain.Transaction{
		ID:               1,
		Reference:        "TRX-20250115-AAAAAAAA",
		Amount:           decimal.NewFromInt(300),
		Type:             domain.TransactionTypeExpense,
		Description:      "Deplacement tournoi",
		TransactionDate:  domain.Today(),
		Status:           domain.TransactionStatusPending,
		UserID:           "auth0|member",
		BudgetID:         ptrInt32(1),
		BudgetCategoryID: ptrInt32(1),
		CategoryID:       1,
	})

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/transactions/1/validate", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	setupAuthContext(c, "auth0|tresorier")

	if err := f.handler.ValidateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Status != "VALIDEE" {
		t.Errorf("Expected statut VALIDEE, got %s", response.Status)
	}
	if response.ValidatorID == nil || *response.ValidatorID != "auth0|tresorier" {
		t.Errorf("Expected validateurId 'auth0|tresorier', got %v", response.ValidatorID)
	}

	budget, _ := f.budgetRepo.GetByID(1)
	if budget.UsedAmount.Cmp(decimal.NewFromInt(300)) != 0 {
		t.Errorf("Expected budget used 300, got %s", budget.UsedAmount)
	}
	category, _ := f.categoryRepo.GetByID(1)
	if category.UsedAmount.Cmp(decimal.NewFromInt(300)) != 0 {
		t.Errorf("Expected category used 300, got %s", category.UsedAmount)
	}
}

func TestValidateTransaction_InsufficientFunds(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture()

	f.txRepo.AddTransaction(&domain.Transaction{
		ID:              1,
		Reference:       "TRX-20250115-BBBBBBBB",
		Amount:          decimal.NewFromInt(1500),
		Type:            domain.TransactionTypeExpense,
		Description:     "Stage de formation",
		TransactionDate: domain.Today(),
		Status:          domain.TransactionStatusPending,
		UserID:          "auth0|member",
		BudgetID:        ptrInt32(1),
		CategoryID:      1,
	})

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/transactions/1/validate", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	setupAuthContext(c, "auth0|tresorier")

	if err := f.handler.ValidateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d: %s", rec.Code, rec.Body.String())
	}

	// A refused validation leaves everything untouched
	transaction, _ := f.txRepo.GetByID(1)
	if transaction.Status != domain.TransactionStatusPending {
		t.Errorf("Expected statut EN_ATTENTE, got %s", transaction.Status)
	}
	budget, _ := f.budgetRepo.GetByID(1)
	if !budget.UsedAmount.IsZero() {
		t.Errorf("Expected budget untouched, got used %s", budget.UsedAmount)
	}
}

func TestCancelTransaction_RestoresBalances(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture()

	f.txRepo.AddTransaction(&domain.Transaction{
		ID:               1,
		Reference:        "TRX-20250115-CCCCCCCC",
		Amount:           decimal.NewFromInt(200),
		Type:             domain.TransactionTypeExpense,
		Description:      "Licences",
		TransactionDate:  domain.Today(),
		Status:           domain.TransactionStatusPending,
		UserID:           "auth0|member",
		BudgetID:         ptrInt32(1),
		BudgetCategoryID: ptrInt32(1),
		CategoryID:       1,
	})

	validateCtx, validateRec := newJSONContext(e, http.MethodPost, "/api/v1/transactions/1/validate", "")
	validateCtx.SetParamNames("id")
	validateCtx.SetParamValues("1")
	setupAuthContext(validateCtx, "auth0|tresorier")
	if err := f.handler.ValidateTransaction(validateCtx); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if validateRec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", validateRec.Code)
	}

	cancelCtx, cancelRec := newJSONContext(e, http.MethodPost, "/api/v1/transactions/1/cancel", `{"motif": "Erreur de saisie"}`)
	cancelCtx.SetParamNames("id")
	cancelCtx.SetParamValues("1")
	setupAuthContext(cancelCtx, "auth0|tresorier")
	if err := f.handler.CancelTransaction(cancelCtx); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cancelRec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", cancelRec.Code, cancelRec.Body.String())
	}

	var response TransactionResponse
	if err := json.Unmarshal(cancelRec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Status != "ANNULEE" {
		t.Errorf("Expected statut ANNULEE, got %s", response.Status)
	}
	if response.Notes == nil || !strings.Contains(*response.Notes, "Erreur de saisie") {
		t.Errorf("Expected motif in notes, got %v", response.Notes)
	}

	budget, _ := f.budgetRepo.GetByID(1)
	if !budget.UsedAmount.IsZero() {
		t.Errorf("Expected budget restored, got used %s", budget.UsedAmount)
	}
}

func TestDeleteTransaction_ValidatedIsImmutable(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture()

	f.txRepo.AddTransaction(&domain.Transaction{
		ID:              1,
		Reference:       "TRX-20250115-DDDDDDDD",
		Amount:          decimal.NewFromInt(50),
		Type:            domain.TransactionTypeExpense,
		Description:     "Arbitrage",
		TransactionDate: domain.Today(),
		Status:          domain.TransactionStatusValidated,
		UserID:          "auth0|member",
		CategoryID:      1,
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/transactions/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	setupAuthContext(c, "auth0|tresorier")

	if err := f.handler.DeleteTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

func ptrInt32(v int32) *int32 {
	return &v
}
