package supply_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/core/id"
	"prodsupply/internal/domain/catalogs/product"
	"prodsupply/internal/domain/manufacturing/production"
	"prodsupply/internal/domain/manufacturing/routing"
	"prodsupply/internal/domain/sales"
)

func TestChangeLineQuantity_ResizesProduction(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	componentID := id.New()
	p := f.addProduct("P-1")
	b := f.addBOM("BOM-P", p.ID, map[id.ID]string{componentID: "2"})
	p.BOMs = []product.BOMAssociation{{BOMID: b.ID, Sequence: 1}}

	sale, line := f.addConfirmedSale(p, dec("3"))
	_, err := f.svc.ProcessSale(ctx, sale.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.ChangeLineQuantity(ctx, line.LineID, dec("5")))

	assert.True(t, line.Quantity.Equal(dec("5")))

	prods := f.lineProductions(t, line)
	require.Len(t, prods, 1)
	assert.True(t, prods[0].Quantity.Equal(dec("5")), "got %s", prods[0].Quantity)

	// The resize re-explodes the BOM so moves follow the new quantity.
	require.Len(t, prods[0].Inputs, 1)
	assert.True(t, prods[0].Inputs[0].Quantity.Equal(dec("10")), "got %s", prods[0].Inputs[0].Quantity)
}

func TestChangeLineQuantity_ResizeUpdatesOperations(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	route := routing.NewRoute("R-1", "Assembly")
	route.AddStep("assemble", "WC-1")
	f.routes.Add(route)

	p := f.addProduct("P-1")
	b := f.addBOM("BOM-P", p.ID, nil)
	p.BOMs = []product.BOMAssociation{{BOMID: b.ID, RouteID: id.Ptr(route.ID), Sequence: 1}}

	sale, line := f.addConfirmedSale(p, dec("3"))
	_, err := f.svc.ProcessSale(ctx, sale.ID)
	require.NoError(t, err)

	prods := f.lineProductions(t, line)
	require.Len(t, prods, 1)
	require.Len(t, prods[0].Operations, 1)

	// A stale operation list is rebuilt from the route on resize, the same
	// way the moves are re-exploded from the BOM.
	prods[0].Operations = nil
	require.NoError(t, f.svc.ChangeLineQuantity(ctx, line.LineID, dec("5")))

	prods = f.lineProductions(t, line)
	require.Len(t, prods, 1)
	require.Len(t, prods[0].Operations, 1)
	assert.Equal(t, "assemble", prods[0].Operations[0].Name)
}

func TestChangeLineQuantity_AbsorberTakesRemainderAndRestIsDeleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")
	sale, line := f.addConfirmedSale(p, dec("3"))
	sale.State = sales.StateProcessing

	big := f.addProduction(line, dec("2"), production.StateDraft)
	small := f.addProduction(line, dec("1"), production.StateWaiting)

	require.NoError(t, f.svc.ChangeLineQuantity(ctx, line.LineID, dec("5")))

	prods := f.lineProductions(t, line)
	require.Len(t, prods, 1)
	assert.Equal(t, big.ID, prods[0].ID)
	assert.True(t, prods[0].Quantity.Equal(dec("5")), "got %s", prods[0].Quantity)

	_, err := f.productions.GetByID(ctx, small.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestChangeLineQuantity_CommittedQuantityIsPreserved(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")
	sale, line := f.addConfirmedSale(p, dec("3"))
	sale.State = sales.StateProcessing

	done := f.addProduction(line, dec("2"), production.StateDone)
	draft := f.addProduction(line, dec("1"), production.StateDraft)

	require.NoError(t, f.svc.ChangeLineQuantity(ctx, line.LineID, dec("5")))

	// 2 already produced, the draft absorbs the remaining 3.
	got, err := f.productions.GetByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(dec("3")), "got %s", got.Quantity)

	got, err = f.productions.GetByID(ctx, done.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(dec("2")))
}

func TestChangeLineQuantity_AlreadyProduced(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")
	sale, line := f.addConfirmedSale(p, dec("5"))
	sale.State = sales.StateProcessing

	f.addProduction(line, dec("4"), production.StateDone)
	draft := f.addProduction(line, dec("1"), production.StateDraft)

	err := f.svc.ChangeLineQuantity(ctx, line.LineID, dec("3"))
	assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyProduced))

	// The failed change leaves the open production untouched.
	got, err := f.productions.GetByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(dec("1")))
}

func TestChangeLineQuantity_ZeroRemainderDeletesUpdateable(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")
	sale, line := f.addConfirmedSale(p, dec("7"))
	sale.State = sales.StateProcessing

	f.addProduction(line, dec("5"), production.StateRunning)
	draft := f.addProduction(line, dec("2"), production.StateDraft)

	require.NoError(t, f.svc.ChangeLineQuantity(ctx, line.LineID, dec("5")))

	_, err := f.productions.GetByID(ctx, draft.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestChangeLineQuantity_SubRoundingRemainderDeletesUpdateable(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")
	sale, line := f.addConfirmedSale(p, dec("3"))
	sale.State = sales.StateProcessing

	done := f.addProduction(line, dec("2"), production.StateDone)
	draft := f.addProduction(line, dec("1"), production.StateDraft)

	// The remaining 0.005 is below the unit rounding of 0.01, so nothing
	// is left to produce and the draft is removed rather than resized.
	require.NoError(t, f.svc.ChangeLineQuantity(ctx, line.LineID, dec("2.005")))

	_, err := f.productions.GetByID(ctx, draft.ID)
	assert.True(t, apperror.IsNotFound(err))

	got, err := f.productions.GetByID(ctx, done.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(dec("2")))
}

func TestChangeLineQuantity_NoUpdateableProductions(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")
	sale, line := f.addConfirmedSale(p, dec("2"))
	sale.State = sales.StateProcessing

	f.addProduction(line, dec("2"), production.StateAssigned)

	err := f.svc.ChangeLineQuantity(ctx, line.LineID, dec("5"))
	assert.True(t, apperror.HasCode(err, apperror.CodeNoUpdateableProductions))
}

func TestChangeLineQuantity_RequiresProcessingSale(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")
	_, line := f.addConfirmedSale(p, dec("3"))

	err := f.svc.ChangeLineQuantity(ctx, line.LineID, dec("5"))
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidSaleState))
}

func TestChangeLineQuantity_RequiresPositiveQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")
	sale, line := f.addConfirmedSale(p, dec("3"))
	sale.State = sales.StateProcessing

	err := f.svc.ChangeLineQuantity(ctx, line.LineID, dec("0"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestChangeLineQuantity_NoopWhenUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")
	sale, line := f.addConfirmedSale(p, dec("3"))
	sale.State = sales.StateProcessing

	draft := f.addProduction(line, dec("3"), production.StateDraft)

	require.NoError(t, f.svc.ChangeLineQuantity(ctx, line.LineID, dec("3")))

	got, err := f.productions.GetByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(dec("3")))
}

func TestChangeLineQuantity_LineWithoutProductions(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")
	sale, line := f.addConfirmedSale(p, dec("3"))
	sale.State = sales.StateProcessing

	require.NoError(t, f.svc.ChangeLineQuantity(ctx, line.LineID, dec("5")))
	assert.True(t, line.Quantity.Equal(dec("5")))
}

func TestMinimalLineQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")
	sale, line := f.addConfirmedSale(p, dec("5"))
	sale.State = sales.StateProcessing

	f.addProduction(line, dec("2"), production.StateDone)
	f.addProduction(line, dec("1"), production.StateRunning)
	f.addProduction(line, dec("2"), production.StateDraft)

	minimal, err := f.svc.MinimalLineQuantity(ctx, line.LineID)
	require.NoError(t, err)
	assert.True(t, minimal.Equal(dec("3")), "got %s", minimal)
}
