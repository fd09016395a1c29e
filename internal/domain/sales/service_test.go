package sales_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/core/id"
	"prodsupply/internal/core/security"
	"prodsupply/internal/domain/catalogs/product"
	"prodsupply/internal/domain/sales"
	"prodsupply/internal/infrastructure/storage/memory"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newService() (*sales.Service, *memory.SaleRepo, *memory.WarningStore) {
	repo := memory.NewSaleRepo()
	warnings := memory.NewWarningStore()
	return sales.NewService(repo, warnings, memory.NewTxManager()), repo, warnings
}

func newSupplyProduct() *product.Product {
	p := product.NewProduct("P-1", "Product", id.New())
	p.Producible = true
	p.Salable = true
	p.SupplyProductionOnSale = true
	return p
}

func TestService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService()

	sale := sales.NewSale(id.New(), id.New())
	sale.Number = "S-001"
	sale.AddLine(newSupplyProduct(), dec("3"))

	require.NoError(t, svc.Create(ctx, sale))

	got, err := svc.GetByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.StateDraft, got.State)
	require.Len(t, got.Lines, 1)
	assert.True(t, got.Lines[0].SupplyProduction)
}

func TestService_AddLineDefaultsFromProduct(t *testing.T) {
	p := newSupplyProduct()
	sale := sales.NewSale(id.New(), id.New())

	line := sale.AddLine(p, dec("2"))
	assert.Equal(t, p.DefaultUomID, line.UnitID)
	assert.True(t, line.SupplyProduction)

	p2 := product.NewProduct("P-2", "Not produced", id.New())
	line2 := sale.AddLine(p2, dec("1"))
	assert.False(t, line2.SupplyProduction)
}

func TestService_ConfirmRequiresQuotation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService()

	sale := sales.NewSale(id.New(), id.New())
	sale.AddLine(newSupplyProduct(), dec("1"))
	require.NoError(t, svc.Create(ctx, sale))

	_, err := svc.Confirm(ctx, sale.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidSaleState))
}

func TestService_ConfirmWarnsOnMissingCostPlan(t *testing.T) {
	ctx := security.WithUserID(context.Background(), "tester")
	svc, _, _ := newService()

	sale := sales.NewSale(id.New(), id.New())
	sale.AddLine(newSupplyProduct(), dec("1"))
	require.NoError(t, svc.Create(ctx, sale))

	_, err := svc.Quote(ctx, sale.ID)
	require.NoError(t, err)

	// First confirm fails: a supply line has no cost plan.
	_, err = svc.Confirm(ctx, sale.ID)
	require.True(t, apperror.IsPendingWarning(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	key, ok := appErr.Details["warning_key"].(string)
	require.True(t, ok)
	assert.Equal(t, sales.MissingCostPlanWarningKey(sale.ID), key)

	// After acknowledging, the retry proceeds.
	require.NoError(t, svc.AcknowledgeWarning(ctx, key))

	confirmed, err := svc.Confirm(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.StateConfirmed, confirmed.State)
}

func TestService_ConfirmWithCostPlanNeedsNoAcknowledgement(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService()

	sale := sales.NewSale(id.New(), id.New())
	line := sale.AddLine(newSupplyProduct(), dec("1"))
	line.CostPlanID = id.Ptr(id.New())
	require.NoError(t, svc.Create(ctx, sale))

	_, err := svc.Quote(ctx, sale.ID)
	require.NoError(t, err)

	confirmed, err := svc.Confirm(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.StateConfirmed, confirmed.State)
}

func TestService_WarningIsPerUser(t *testing.T) {
	alice := security.WithUserID(context.Background(), "alice")
	bob := security.WithUserID(context.Background(), "bob")
	svc, _, _ := newService()

	sale := sales.NewSale(id.New(), id.New())
	sale.AddLine(newSupplyProduct(), dec("1"))
	require.NoError(t, svc.Create(alice, sale))

	_, err := svc.Quote(alice, sale.ID)
	require.NoError(t, err)

	_, err = svc.Confirm(alice, sale.ID)
	require.True(t, apperror.IsPendingWarning(err))
	require.NoError(t, svc.AcknowledgeWarning(alice, sales.MissingCostPlanWarningKey(sale.ID)))

	// Another user's acknowledgement does not transfer.
	_, err = svc.Confirm(bob, sale.ID)
	assert.True(t, apperror.IsPendingWarning(err))

	_, err = svc.Confirm(alice, sale.ID)
	assert.NoError(t, err)
}

func TestSale_CopyDropsLineIdentity(t *testing.T) {
	sale := sales.NewSale(id.New(), id.New())
	line := sale.AddLine(newSupplyProduct(), dec("4"))
	line.CostPlanID = id.Ptr(id.New())
	sale.State = sales.StateProcessing

	cp := sale.Copy()
	assert.Equal(t, sales.StateDraft, cp.State)
	require.Len(t, cp.Lines, 1)

	// Productions reference lines by identity; the copy must not inherit it.
	assert.NotEqual(t, line.LineID, cp.Lines[0].LineID)
	assert.True(t, cp.Lines[0].SupplyProduction)
	assert.Equal(t, line.CostPlanID, cp.Lines[0].CostPlanID)
}

func TestService_Copy(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newService()

	sale := sales.NewSale(id.New(), id.New())
	sale.AddLine(newSupplyProduct(), dec("2"))
	require.NoError(t, svc.Create(ctx, sale))

	cp, err := svc.Copy(ctx, sale.ID)
	require.NoError(t, err)
	assert.NotEqual(t, sale.ID, cp.ID)

	stored, err := repo.GetByID(ctx, cp.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.StateDraft, stored.State)
}

func TestService_UpdateRejectsNonDraft(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService()

	sale := sales.NewSale(id.New(), id.New())
	sale.AddLine(newSupplyProduct(), dec("2"))
	require.NoError(t, svc.Create(ctx, sale))

	_, err := svc.Quote(ctx, sale.ID)
	require.NoError(t, err)

	err = svc.Update(ctx, sale)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidSaleState))
}
