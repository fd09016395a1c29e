package supply_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/core/id"
	"prodsupply/internal/domain/catalogs/product"
	"prodsupply/internal/domain/catalogs/uom"
	"prodsupply/internal/domain/catalogs/warehouse"
	"prodsupply/internal/domain/costplan"
	"prodsupply/internal/domain/manufacturing/bom"
	"prodsupply/internal/domain/manufacturing/production"
	"prodsupply/internal/domain/sales"
	"prodsupply/internal/domain/supply"
	"prodsupply/internal/infrastructure/storage/memory"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	units       *memory.UnitRepo
	products    *memory.ProductRepo
	warehouses  *memory.WarehouseRepo
	boms        *memory.BOMRepo
	routes      *memory.RouteRepo
	sales       *memory.SaleRepo
	productions *memory.ProductionRepo
	plans       *memory.CostPlanRepo

	svc *supply.Service

	unit *uom.Unit
	wh   *warehouse.Warehouse
}

func newFixture() *fixture {
	return newFixtureWithConfig(supply.Config{})
}

func newFixtureWithConfig(cfg supply.Config) *fixture {
	f := &fixture{
		units:       memory.NewUnitRepo(),
		products:    memory.NewProductRepo(),
		warehouses:  memory.NewWarehouseRepo(),
		boms:        memory.NewBOMRepo(),
		routes:      memory.NewRouteRepo(),
		sales:       memory.NewSaleRepo(),
		productions: memory.NewProductionRepo(),
		plans:       memory.NewCostPlanRepo(),
	}

	f.unit = uom.NewUnit("u", "Unit", "u", uom.CategoryUnits)
	f.units.Add(f.unit)

	f.wh = warehouse.NewWarehouse("WH-1", "Main", id.New())
	f.wh.ProductionLocationID = id.Ptr(id.New())
	f.warehouses.Add(f.wh)

	converter := uom.NewConverter(f.units)
	calculator := bom.NewCalculator(f.units)
	walker := costplan.NewWalker(f.boms, calculator)
	materializer := production.NewMaterializer(f.products, f.boms, f.routes, calculator)

	f.svc = supply.NewService(
		f.sales, f.productions, f.plans,
		f.products, f.warehouses, f.units,
		walker, materializer, converter,
		memory.NewTxManager(), nil, cfg,
	)
	return f
}

// addProduct registers a producible product that supplies by production.
func (f *fixture) addProduct(code string) *product.Product {
	p := product.NewProduct(code, code, f.unit.ID)
	p.Producible = true
	p.Salable = true
	p.SupplyProductionOnSale = true
	f.products.Add(p)
	return p
}

// addBOM registers a BOM yielding one unit of productID from the given
// component quantities.
func (f *fixture) addBOM(code string, productID id.ID, components map[id.ID]string) *bom.BOM {
	b := bom.NewBOM(code, code)
	b.AddOutput(productID, dec("1"), f.unit.ID)
	for componentID, qty := range components {
		b.AddInput(componentID, dec(qty), f.unit.ID)
	}
	f.boms.Add(b)
	return b
}

// addConfirmedSale stores a confirmed sale with one supply line.
func (f *fixture) addConfirmedSale(p *product.Product, qty decimal.Decimal) (*sales.Sale, *sales.Line) {
	sale := sales.NewSale(id.New(), f.wh.ID)
	sale.Number = "S-001"
	line := sale.AddLine(p, qty)
	sale.State = sales.StateConfirmed
	if err := f.sales.Create(context.Background(), sale); err != nil {
		panic(err)
	}
	return sale, line
}

// addProduction stores a production originated by the given sale line.
func (f *fixture) addProduction(line *sales.Line, qty decimal.Decimal, state production.State) *production.Production {
	p := production.NewProduction()
	p.ProductID = *line.ProductID
	p.Quantity = qty
	p.UnitID = f.unit.ID
	p.State = state
	p.WarehouseID = f.wh.ID
	p.LocationID = *f.wh.ProductionLocationID
	p.Origin = production.SaleLineOrigin(line.LineID)
	if err := f.productions.Create(context.Background(), p); err != nil {
		panic(err)
	}
	return p
}

func (f *fixture) lineProductions(t *testing.T, line *sales.Line) []*production.Production {
	t.Helper()
	prods, err := f.productions.GetByOrigin(context.Background(), production.SaleLineOrigin(line.LineID))
	require.NoError(t, err)
	return prods
}

func TestDefaultSupplyProduction(t *testing.T) {
	f := newFixture()

	p := f.addProduct("P-1")
	assert.True(t, f.svc.DefaultSupplyProduction(p))

	p.SupplyProductionOnSale = false
	assert.False(t, f.svc.DefaultSupplyProduction(p))

	// With the configured default on, producible products supply by
	// production even without their own flag.
	opted := supply.NewService(
		f.sales, f.productions, f.plans,
		f.products, f.warehouses, f.units,
		nil, nil, nil,
		memory.NewTxManager(), nil,
		supply.Config{SupplyProductionDefault: true},
	)
	assert.True(t, opted.DefaultSupplyProduction(p))

	p.Producible = false
	assert.False(t, opted.DefaultSupplyProduction(p))
}

func TestProcessSale_DefaultBOM(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	componentID := id.New()
	p := f.addProduct("P-1")
	b := f.addBOM("BOM-P", p.ID, map[id.ID]string{componentID: "2"})
	p.BOMs = []product.BOMAssociation{{BOMID: b.ID, Sequence: 1}}

	sale, line := f.addConfirmedSale(p, dec("3"))

	processed, err := f.svc.ProcessSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.StateProcessing, processed.State)

	prods := f.lineProductions(t, line)
	require.Len(t, prods, 1)

	made := prods[0]
	assert.Equal(t, p.ID, made.ProductID)
	assert.True(t, made.Quantity.Equal(dec("3")), "got %s", made.Quantity)
	assert.Equal(t, production.StateDraft, made.State)
	assert.Equal(t, sale.Number, made.Reference)

	require.Len(t, made.Inputs, 1)
	assert.True(t, made.Inputs[0].Quantity.Equal(dec("6")), "got %s", made.Inputs[0].Quantity)
	require.Len(t, made.Outputs, 1)
	assert.True(t, made.Outputs[0].Quantity.Equal(dec("3")), "got %s", made.Outputs[0].Quantity)
}

func TestProcessSale_CostPlan(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	component := f.addProduct("C-1")
	componentID := component.ID
	p := f.addProduct("P-1")
	componentBOM := f.addBOM("BOM-C", componentID, nil)
	productBOM := f.addBOM("BOM-P", p.ID, map[id.ID]string{componentID: "5"})
	p.BOMs = []product.BOMAssociation{{BOMID: productBOM.ID, Sequence: 1}}

	plan := costplan.NewPlan(p.ID, dec("1"))
	plan.BOMID = id.Ptr(productBOM.ID)
	plan.AddLine(componentID, id.Ptr(componentBOM.ID))
	f.plans.Add(plan)

	sale, line := f.addConfirmedSale(p, dec("2"))
	line.CostPlanID = id.Ptr(plan.ID)

	_, err := f.svc.ProcessSale(ctx, sale.ID)
	require.NoError(t, err)

	prods := f.lineProductions(t, line)
	require.Len(t, prods, 2)

	for _, made := range prods {
		require.NotNil(t, made.CostPlanID)
		assert.Equal(t, plan.ID, *made.CostPlanID)
	}

	byProduct := map[id.ID]*production.Production{}
	for _, made := range prods {
		byProduct[made.ProductID] = made
	}
	assert.True(t, byProduct[p.ID].Quantity.Equal(dec("2")))
	assert.True(t, byProduct[componentID].Quantity.Equal(dec("10")))
}

func TestProcessSale_CostPlanRequiredSkipsPlanlessLine(t *testing.T) {
	ctx := context.Background()
	f := newFixtureWithConfig(supply.Config{CostPlanRequired: true})

	p := f.addProduct("P-1")
	b := f.addBOM("BOM-P", p.ID, nil)
	p.BOMs = []product.BOMAssociation{{BOMID: b.ID, Sequence: 1}}

	sale, line := f.addConfirmedSale(p, dec("3"))

	// The line has a default BOM but no cost plan: it derives nothing,
	// exactly what the confirm warning announced.
	processed, err := f.svc.ProcessSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.StateProcessing, processed.State)
	assert.Empty(t, f.lineProductions(t, line))
}

func TestProcessSale_CostPlanRequiredDerivesPlannedLine(t *testing.T) {
	ctx := context.Background()
	f := newFixtureWithConfig(supply.Config{CostPlanRequired: true})

	p := f.addProduct("P-1")
	b := f.addBOM("BOM-P", p.ID, nil)
	p.BOMs = []product.BOMAssociation{{BOMID: b.ID, Sequence: 1}}

	plan := costplan.NewPlan(p.ID, dec("1"))
	plan.BOMID = id.Ptr(b.ID)
	f.plans.Add(plan)

	sale, line := f.addConfirmedSale(p, dec("2"))
	line.CostPlanID = id.Ptr(plan.ID)

	_, err := f.svc.ProcessSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Len(t, f.lineProductions(t, line), 1)
}

func TestProcessSale_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")
	b := f.addBOM("BOM-P", p.ID, nil)
	p.BOMs = []product.BOMAssociation{{BOMID: b.ID, Sequence: 1}}
	sale, line := f.addConfirmedSale(p, dec("3"))

	_, err := f.svc.ProcessSale(ctx, sale.ID)
	require.NoError(t, err)

	first := f.lineProductions(t, line)
	require.Len(t, first, 1)

	// Reprocessing leaves existing productions alone.
	_, err = f.svc.ProcessSale(ctx, sale.ID)
	require.NoError(t, err)

	second := f.lineProductions(t, line)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestProcessSale_SkipsNonSupplyLine(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")
	sale, line := f.addConfirmedSale(p, dec("3"))
	line.SupplyProduction = false

	_, err := f.svc.ProcessSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Empty(t, f.lineProductions(t, line))
}

func TestProcessSale_SkipsNonPositiveQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")
	sale, line := f.addConfirmedSale(p, dec("0"))

	_, err := f.svc.ProcessSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Empty(t, f.lineProductions(t, line))
}

func TestProcessSale_SkipsNonProducibleProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := product.NewProduct("P-1", "Purchased", f.unit.ID)
	p.Salable = true
	f.products.Add(p)

	sale := sales.NewSale(id.New(), f.wh.ID)
	line := sale.AddLine(p, dec("3"))
	line.SupplyProduction = true
	sale.State = sales.StateConfirmed
	require.NoError(t, f.sales.Create(ctx, sale))

	_, err := f.svc.ProcessSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Empty(t, f.lineProductions(t, line))
}

func TestProcessSale_RequiresConfirmedSale(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")
	sale, _ := f.addConfirmedSale(p, dec("3"))
	sale.State = sales.StateDraft

	_, err := f.svc.ProcessSale(ctx, sale.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidSaleState))
}

func TestProcessSale_FinishedSaleSkipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")
	sale, line := f.addConfirmedSale(p, dec("3"))
	sale.State = sales.StateDone

	got, err := f.svc.ProcessSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.StateDone, got.State)
	assert.Empty(t, f.lineProductions(t, line))
}

func TestProcessSale_ShippingDateSetsPlannedDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")
	sale, line := f.addConfirmedSale(p, dec("1"))
	shipping := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	line.ShippingDate = &shipping

	_, err := f.svc.ProcessSale(ctx, sale.ID)
	require.NoError(t, err)

	prods := f.lineProductions(t, line)
	require.Len(t, prods, 1)
	require.NotNil(t, prods[0].PlannedDate)
	assert.True(t, prods[0].PlannedDate.Equal(shipping))
	require.NotNil(t, prods[0].PlannedStartDate)
}

func TestProcessSale_WarehouseWithoutProductionLocation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	bare := warehouse.NewWarehouse("WH-2", "No production", id.New())
	f.warehouses.Add(bare)

	p := f.addProduct("P-1")
	sale := sales.NewSale(id.New(), bare.ID)
	sale.AddLine(p, dec("1"))
	sale.State = sales.StateConfirmed
	require.NoError(t, f.sales.Create(ctx, sale))

	_, err := f.svc.ProcessSale(ctx, sale.ID)
	assert.Error(t, err)
}

func TestSaleProductions_AggregatesLines(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p1 := f.addProduct("P-1")
	p2 := f.addProduct("P-2")

	sale := sales.NewSale(id.New(), f.wh.ID)
	line1 := sale.AddLine(p1, dec("1"))
	line2 := sale.AddLine(p2, dec("2"))
	sale.State = sales.StateProcessing
	require.NoError(t, f.sales.Create(ctx, sale))

	f.addProduction(line1, dec("1"), production.StateDraft)
	f.addProduction(line2, dec("2"), production.StateDraft)

	prods, err := f.svc.SaleProductions(ctx, sale.ID)
	require.NoError(t, err)
	assert.Len(t, prods, 2)
}

func TestDeleteProductions_ReprocessesSale(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")
	sale, line := f.addConfirmedSale(p, dec("3"))

	_, err := f.svc.ProcessSale(ctx, sale.ID)
	require.NoError(t, err)

	before := f.lineProductions(t, line)
	require.Len(t, before, 1)

	require.NoError(t, f.svc.DeleteProductions(ctx, []id.ID{before[0].ID}))

	// The sale is still processing, so its demand is re-derived into a
	// fresh production.
	after := f.lineProductions(t, line)
	require.Len(t, after, 1)
	assert.NotEqual(t, before[0].ID, after[0].ID)
	assert.True(t, after[0].Quantity.Equal(dec("3")))
}

func TestDeleteProductions_FinishedSaleNotReprocessed(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p := f.addProduct("P-1")
	sale, line := f.addConfirmedSale(p, dec("3"))

	_, err := f.svc.ProcessSale(ctx, sale.ID)
	require.NoError(t, err)

	before := f.lineProductions(t, line)
	require.Len(t, before, 1)

	sale.State = sales.StateCancelled
	require.NoError(t, f.svc.DeleteProductions(ctx, []id.ID{before[0].ID}))

	assert.Empty(t, f.lineProductions(t, line))
}
