package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamadeu/divi-import/internal/model"
)

func testAccounts() []model.Account {
	return []model.Account{
		{ID: "acc-1", Name: "Conta Corrente", Balance: decimal.NewFromInt(100)},
		{ID: "acc-2", Name: "Poupança", Balance: decimal.NewFromInt(2500)},
	}
}

func testCategories() []model.Category {
	return []model.Category{
		{ID: "cat-1", Name: "Salário", Kind: model.KindIncome},
		{ID: "cat-2", Name: "Mercado", Kind: model.KindExpense},
		{ID: "cat-3", Name: "Outros", Kind: model.KindIncome},
		{ID: "cat-4", Name: "Outros", Kind: model.KindExpense},
	}
}

func TestAccountLookups(t *testing.T) {
	d := New(testAccounts(), testCategories())

	a, ok := d.Account("acc-2")
	require.True(t, ok)
	assert.Equal(t, "Poupança", a.Name)

	a, ok = d.AccountByName("conta corrente")
	require.True(t, ok)
	assert.Equal(t, "acc-1", a.ID)

	_, ok = d.AccountByName("Inexistente")
	assert.False(t, ok)
}

func TestCategoryByNameMatchesKind(t *testing.T) {
	d := New(testAccounts(), testCategories())

	c, ok := d.CategoryByName("outros", model.KindIncome)
	require.True(t, ok)
	assert.Equal(t, "cat-3", c.ID)

	c, ok = d.CategoryByName("OUTROS", model.KindExpense)
	require.True(t, ok)
	assert.Equal(t, "cat-4", c.ID)

	_, ok = d.CategoryByName("Salário", model.KindExpense)
	assert.False(t, ok)
}

type fakeLister struct {
	accounts   []model.Account
	categories []model.Category
	err        error
}

func (f *fakeLister) ListAccounts(ctx context.Context) ([]model.Account, error) {
	return f.accounts, f.err
}

func (f *fakeLister) ListCategories(ctx context.Context) ([]model.Category, error) {
	return f.categories, f.err
}

func TestLoad(t *testing.T) {
	d, err := Load(context.Background(), &fakeLister{
		accounts:   testAccounts(),
		categories: testCategories(),
	})
	require.NoError(t, err)
	assert.Len(t, d.Accounts(), 2)
	assert.Len(t, d.Categories(), 4)
}

func TestLoadError(t *testing.T) {
	boom := errors.New("store down")
	_, err := Load(context.Background(), &fakeLister{err: boom})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
