package supply_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/domain/manufacturing/production"
	"prodsupply/internal/domain/sales"
)

func TestChangeProductionQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")
	sale, line := f.addConfirmedSale(p, dec("3"))
	sale.State = sales.StateProcessing

	made := f.addProduction(line, dec("3"), production.StateDraft)

	require.NoError(t, f.svc.ChangeProductionQuantity(ctx, made.ID, dec("5")))

	// The change flows through the sale line and back into the production.
	assert.True(t, line.Quantity.Equal(dec("5")), "got %s", line.Quantity)

	got, err := f.productions.GetByID(ctx, made.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(dec("5")), "got %s", got.Quantity)
}

func TestChangeProductionQuantity_Lowering(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")
	sale, line := f.addConfirmedSale(p, dec("5"))
	sale.State = sales.StateProcessing

	made := f.addProduction(line, dec("5"), production.StateWaiting)

	require.NoError(t, f.svc.ChangeProductionQuantity(ctx, made.ID, dec("2")))

	assert.True(t, line.Quantity.Equal(dec("2")))

	got, err := f.productions.GetByID(ctx, made.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(dec("2")))
}

func TestChangeProductionQuantity_RequiresUpdateableState(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")
	sale, line := f.addConfirmedSale(p, dec("3"))
	sale.State = sales.StateProcessing

	made := f.addProduction(line, dec("3"), production.StateRunning)

	err := f.svc.ChangeProductionQuantity(ctx, made.ID, dec("5"))
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidProductionState))
}

func TestChangeProductionQuantity_RequiresSaleOrigin(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")

	made := production.NewProduction()
	made.ProductID = p.ID
	made.Quantity = dec("3")
	made.UnitID = f.unit.ID
	made.WarehouseID = f.wh.ID
	made.LocationID = *f.wh.ProductionLocationID
	require.NoError(t, f.productions.Create(ctx, made))

	err := f.svc.ChangeProductionQuantity(ctx, made.ID, dec("5"))
	assert.True(t, apperror.HasCode(err, apperror.CodeNoSaleOrigin))
}

func TestChangeProductionQuantity_AmbiguousWithSiblings(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")
	sale, line := f.addConfirmedSale(p, dec("3"))
	sale.State = sales.StateProcessing

	made := f.addProduction(line, dec("2"), production.StateDraft)
	f.addProduction(line, dec("1"), production.StateDraft)

	err := f.svc.ChangeProductionQuantity(ctx, made.ID, dec("5"))
	assert.True(t, apperror.HasCode(err, apperror.CodeAmbiguousOrigin))
}

func TestChangeProductionQuantity_RequiresPositiveQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")
	sale, line := f.addConfirmedSale(p, dec("3"))
	sale.State = sales.StateProcessing

	made := f.addProduction(line, dec("3"), production.StateDraft)

	err := f.svc.ChangeProductionQuantity(ctx, made.ID, dec("-1"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
