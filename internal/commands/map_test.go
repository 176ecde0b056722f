package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamadeu/divi-import/internal/config"
	"github.com/tamadeu/divi-import/internal/model"
	"github.com/tamadeu/divi-import/internal/staging"
	"github.com/tamadeu/divi-import/internal/store"
)

// setupWorkspace builds a workspace in a temp working directory with one
// account, one expense category named "Lazer" and a staged batch whose only
// missing category is "Assinaturas" (expense).
func setupWorkspace(t *testing.T) {
	t.Helper()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })

	cfg := config.Default("ws-1", "user-1")
	require.NoError(t, config.Save(config.FileName, cfg))

	log := zerolog.New(io.Discard)
	db, err := store.Open(cfg.Workspace.Database, "ws-1", "user-1", log)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Init(context.Background()))

	account, err := db.CreateAccount(context.Background(), "Conta Corrente", decimal.NewFromInt(1000))
	require.NoError(t, err)
	_, err = db.CreateCategory(context.Background(), "Lazer", model.KindExpense)
	require.NoError(t, err)

	batch := &model.ImportBatch{
		Transactions: []model.Transaction{{
			Name:             "Netflix",
			Amount:           decimal.RequireFromString("-39.90"),
			Date:             time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
			Kind:             model.KindExpense,
			OriginalCategory: "Assinaturas",
			AccountID:        account.ID,
			RowNumber:        2,
		}},
		MissingCategories: []model.MissingCategory{
			{Name: "Assinaturas", Kind: model.KindExpense},
		},
		AccountID:   account.ID,
		AccountName: "Conta Corrente",
	}
	require.NoError(t, staging.NewStore(cfg.Import.StagingPath, log).Save(batch))
}

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func TestMap_BindsMissingCategory(t *testing.T) {
	setupWorkspace(t)

	out := runCommand(t, "map", "--category", "Assinaturas", "--kind", "expense", "--to", "Lazer")
	assert.Contains(t, out, `Mapped "Assinaturas"`)
	assert.Contains(t, out, "Ready to commit")
}

func TestMap_UnknownPairReportsNoOp(t *testing.T) {
	setupWorkspace(t)

	out := runCommand(t, "map", "--category", "Transporte", "--kind", "expense", "--to", "Lazer")
	assert.Contains(t, out, `No missing category named "Transporte"`)
	assert.NotContains(t, out, "Mapped")
}
