package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryCreate(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)

	svc := NewCategoryService(db)
	category, err := svc.Create(store.ID, "snacks")
	require.NoError(t, err)
	assert.Equal(t, "CSNAC001", category.CategoryCode)
	assert.Equal(t, "Snacks", category.CategoryName, "names are stored title-cased")

	_, err = svc.Create(store.ID, "SNACKS")
	assert.ErrorIs(t, err, ErrCategoryExists, "duplicate detection ignores casing")
}

func TestCategoryRenameKeepsCode(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)

	svc := NewCategoryService(db)
	category, err := svc.Create(store.ID, "Snacks")
	require.NoError(t, err)

	renamed, err := svc.Rename(store.ID, category.ID, "Chips & Snacks")
	require.NoError(t, err)
	assert.Equal(t, "CSNAC001", renamed.CategoryCode)
	assert.Equal(t, "Chips & Snacks", renamed.CategoryName)
}

func TestCategoryDeleteGuardsProducts(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)

	categories := NewCategoryService(db)
	category, err := categories.Create(store.ID, "Snacks")
	require.NoError(t, err)

	products := NewProductService(db)
	product, err := products.Create(store.ID, user.ID, productInput(category.ID, "Banana Chips", 5))
	require.NoError(t, err)

	assert.ErrorIs(t, categories.Delete(store.ID, category.ID), ErrCategoryInUse)

	require.NoError(t, products.Delete(store.ID, user.ID, product.ID))
	assert.NoError(t, categories.Delete(store.ID, category.ID))

	// The code is free again for the next category of the same name.
	again, err := categories.Create(store.ID, "Snacks")
	require.NoError(t, err)
	assert.Equal(t, "CSNAC001", again.CategoryCode)
}
