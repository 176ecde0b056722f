package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMissing_Deduplicates(t *testing.T) {
	b := &ImportBatch{}
	b.AddMissing("Assinaturas", KindExpense)
	b.AddMissing("assinaturas", KindExpense)
	b.AddMissing("Assinaturas", KindIncome)

	assert.Len(t, b.MissingCategories, 2)
}

func TestFullyMapped(t *testing.T) {
	b := &ImportBatch{}
	assert.True(t, b.FullyMapped())

	b.AddMissing("Bônus", KindIncome)
	assert.False(t, b.FullyMapped())

	b.Missing("Bônus", KindIncome).MappedTo = "cat-1"
	assert.True(t, b.FullyMapped())
}

func TestFinalCategoryID(t *testing.T) {
	b := &ImportBatch{}
	b.AddMissing("Bônus", KindIncome)

	resolved := Transaction{OriginalCategory: "Salário", Kind: KindIncome, ResolvedCategoryID: "cat-sal"}
	assert.Equal(t, "cat-sal", b.FinalCategoryID(resolved))

	unresolved := Transaction{OriginalCategory: "Bônus", Kind: KindIncome}
	assert.Equal(t, "", b.FinalCategoryID(unresolved))

	m := b.Missing("Bônus", KindIncome)
	require.NotNil(t, m)
	m.MappedTo = "cat-extra"
	assert.Equal(t, "cat-extra", b.FinalCategoryID(unresolved))
}

func TestKindValid(t *testing.T) {
	assert.True(t, KindIncome.Valid())
	assert.True(t, KindExpense.Valid())
	assert.False(t, Kind("transfer").Valid())
	assert.False(t, Kind("").Valid())
}
