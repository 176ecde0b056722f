package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/tamadeu/divi-import/internal/model"
)

// Lister fetches the workspace's reference lists from the store.
type Lister interface {
	ListAccounts(ctx context.Context) ([]model.Account, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
}

// Directory provides in-memory, case-insensitive name lookup over a
// workspace's accounts and categories.
type Directory struct {
	accounts   []model.Account
	categories []model.Category

	accountsByID    map[string]model.Account
	accountsByName  map[string]model.Account
	categoriesByID  map[string]model.Category
	categoriesByKey map[string]model.Category // lower(name) + "|" + kind
}

// New creates a Directory from reference lists already in hand.
func New(accounts []model.Account, categories []model.Category) *Directory {
	d := &Directory{
		accounts:        accounts,
		categories:      categories,
		accountsByID:    make(map[string]model.Account, len(accounts)),
		accountsByName:  make(map[string]model.Account, len(accounts)),
		categoriesByID:  make(map[string]model.Category, len(categories)),
		categoriesByKey: make(map[string]model.Category, len(categories)),
	}
	for _, a := range accounts {
		d.accountsByID[a.ID] = a
		d.accountsByName[strings.ToLower(a.Name)] = a
	}
	for _, c := range categories {
		d.categoriesByID[c.ID] = c
		d.categoriesByKey[categoryKey(c.Name, c.Kind)] = c
	}
	return d
}

// Load fetches both reference lists from the store and indexes them.
func Load(ctx context.Context, store Lister) (*Directory, error) {
	accounts, err := store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	categories, err := store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return New(accounts, categories), nil
}

func categoryKey(name string, kind model.Kind) string {
	return strings.ToLower(name) + "|" + string(kind)
}

// Accounts returns all accounts.
func (d *Directory) Accounts() []model.Account {
	return d.accounts
}

// Categories returns all categories.
func (d *Directory) Categories() []model.Category {
	return d.categories
}

// Account returns an account by ID.
func (d *Directory) Account(id string) (model.Account, bool) {
	a, ok := d.accountsByID[id]
	return a, ok
}

// AccountByName returns an account by case-insensitive exact name.
func (d *Directory) AccountByName(name string) (model.Account, bool) {
	a, ok := d.accountsByName[strings.ToLower(name)]
	return a, ok
}

// Category returns a category by ID.
func (d *Directory) Category(id string) (model.Category, bool) {
	c, ok := d.categoriesByID[id]
	return c, ok
}

// CategoryByName returns a category by case-insensitive exact name among
// categories of the given kind.
func (d *Directory) CategoryByName(name string, kind model.Kind) (model.Category, bool) {
	c, ok := d.categoriesByKey[categoryKey(name, kind)]
	return c, ok
}
