package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growlify/growlify-api/internal/domain"
)

type categoryItem struct {
	Item *domain.Category `json:"item"`
}

type categoryItems struct {
	Items []*domain.Category `json:"items"`
}

func TestCategoryHandler_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/categories", nil, "")
	requireProblem(t, rec, http.StatusUnauthorized, "Não autenticado.")
}

func TestCategoryHandler_GetCategories_Backfills(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signIn(t, domain.SubscriptionInactive)

	rec := env.do(t, http.MethodGet, "/api/v1/categories", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[categoryItems](t, rec)
	assert.Len(t, body.Items, 18)

	// second call does not duplicate
	rec = env.do(t, http.MethodGet, "/api/v1/categories", nil, token)
	assert.Len(t, decodeBody[categoryItems](t, rec).Items, 18)
}

func TestCategoryHandler_CreateCategory(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.signIn(t, domain.SubscriptionInactive)

	rec := env.do(t, http.MethodPost, "/api/v1/categories", map[string]any{
		"name": "  Academia ", "kind": "domestic", "priority": "cuttable", "monthlyBudgetCents": 15000,
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	item := decodeBody[categoryItem](t, rec).Item
	assert.Equal(t, "Academia", item.Name)
	assert.Equal(t, user.ID, item.UserID)
	require.NotNil(t, item.MonthlyBudgetCents)
	assert.Equal(t, int64(15000), *item.MonthlyBudgetCents)
	assert.Equal(t, []string{"category.created"}, env.publisher.Types())

	rec = env.do(t, http.MethodPost, "/api/v1/categories", map[string]any{
		"name": "A", "kind": "domestic", "priority": "cuttable",
	}, token)
	problem := requireProblem(t, rec, http.StatusUnprocessableEntity, "Informe o nome da categoria.")
	assert.Equal(t, "name", problem.Errors[0].Field)

	rec = env.do(t, http.MethodPost, "/api/v1/categories", map[string]any{
		"name": "Lazer", "kind": "industrial", "priority": "cuttable",
	}, token)
	requireProblem(t, rec, http.StatusUnprocessableEntity, "Tipo de categoria inválido.")
}

func TestCategoryHandler_UpdateCategory(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.signIn(t, domain.SubscriptionInactive)

	budget := int64(50000)
	category := &domain.Category{
		ID: uuid.New(), UserID: user.ID, Name: "Mercado",
		Kind: domain.CategoryKindDomestic, Priority: domain.CategoryPriorityEssential,
		MonthlyBudgetCents: &budget, CreatedAt: time.Now(),
	}
	env.categories.AddCategory(category)

	rec := env.do(t, http.MethodPut, "/api/v1/categories/"+category.ID.String(), `{"priority":"important","monthlyBudgetCents":null}`, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	item := decodeBody[categoryItem](t, rec).Item
	assert.Equal(t, "Mercado", item.Name)
	assert.Equal(t, domain.CategoryPriorityImportant, item.Priority)
	assert.Nil(t, item.MonthlyBudgetCents)

	rec = env.do(t, http.MethodPut, "/api/v1/categories/"+category.ID.String(), `{"monthlyBudgetCents":-1}`, token)
	requireProblem(t, rec, http.StatusUnprocessableEntity, "Informe um orçamento válido.")

	rec = env.do(t, http.MethodPut, "/api/v1/categories/"+category.ID.String(), `{"name":null}`, token)
	requireProblem(t, rec, http.StatusUnprocessableEntity, "Informe o nome da categoria.")

	rec = env.do(t, http.MethodPut, "/api/v1/categories/"+uuid.NewString(), `{"name":"Feira"}`, token)
	requireProblem(t, rec, http.StatusNotFound, msgCategoryNotFound)

	rec = env.do(t, http.MethodPut, "/api/v1/categories/not-a-uuid", `{"name":"Feira"}`, token)
	requireProblem(t, rec, http.StatusNotFound, msgCategoryNotFound)

	// another user's category is invisible
	_, otherToken := env.signIn(t, domain.SubscriptionInactive)
	rec = env.do(t, http.MethodPut, "/api/v1/categories/"+category.ID.String(), `{"name":"Feira"}`, otherToken)
	requireProblem(t, rec, http.StatusNotFound, msgCategoryNotFound)
}

func TestCategoryHandler_DeleteCategory(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.signIn(t, domain.SubscriptionInactive)

	category := &domain.Category{ID: uuid.New(), UserID: user.ID, Name: "Mercado"}
	env.categories.AddCategory(category)
	tx := &domain.Transaction{
		ID: uuid.New(), UserID: user.ID, Type: domain.TransactionTypeExpense,
		AmountCents: 1000, Date: time.Now(), CategoryID: &category.ID, Method: domain.PaymentMethodPix,
	}
	env.transactions.AddTransaction(tx)

	rec := env.do(t, http.MethodDelete, "/api/v1/categories/"+category.ID.String(), nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Nil(t, env.transactions.Transactions[tx.ID].CategoryID)

	rec = env.do(t, http.MethodDelete, "/api/v1/categories/"+category.ID.String(), nil, token)
	requireProblem(t, rec, http.StatusNotFound, msgCategoryNotFound)
}
