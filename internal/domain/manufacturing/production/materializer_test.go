package production_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodsupply/internal/core/id"
	"prodsupply/internal/domain/catalogs/product"
	"prodsupply/internal/domain/catalogs/uom"
	"prodsupply/internal/domain/catalogs/warehouse"
	"prodsupply/internal/domain/manufacturing/bom"
	"prodsupply/internal/domain/manufacturing/production"
	"prodsupply/internal/domain/manufacturing/routing"
	"prodsupply/internal/infrastructure/storage/memory"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type env struct {
	units    *memory.UnitRepo
	products *memory.ProductRepo
	boms     *memory.BOMRepo
	routes   *memory.RouteRepo

	m *production.Materializer

	unit *uom.Unit
	wh   *warehouse.Warehouse
}

func newEnv() *env {
	e := &env{
		units:    memory.NewUnitRepo(),
		products: memory.NewProductRepo(),
		boms:     memory.NewBOMRepo(),
		routes:   memory.NewRouteRepo(),
	}

	e.unit = uom.NewUnit("u", "Unit", "u", uom.CategoryUnits)
	e.units.Add(e.unit)

	e.wh = warehouse.NewWarehouse("WH-1", "Main", id.New())
	e.wh.ProductionLocationID = id.Ptr(id.New())

	e.m = production.NewMaterializer(e.products, e.boms, e.routes, bom.NewCalculator(e.units))
	return e
}

func TestMaterializer_Build(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	componentID := id.New()
	p := product.NewProduct("P-1", "Product", e.unit.ID)
	p.Producible = true
	e.products.Add(p)

	b := bom.NewBOM("BOM-P", "Product BOM")
	b.AddOutput(p.ID, dec("1"), e.unit.ID)
	b.AddInput(componentID, dec("4"), e.unit.ID)
	e.boms.Add(b)

	route := routing.NewRoute("R-1", "Assembly")
	route.AddStep("Cut", "saw")
	route.AddStep("Assemble", "bench")
	e.routes.Add(route)

	spec := production.Spec{
		ProductID: p.ID,
		Quantity:  dec("2"),
		UnitID:    id.Ptr(e.unit.ID),
		BOMID:     id.Ptr(b.ID),
		RouteID:   id.Ptr(route.ID),
	}

	made, err := e.m.Build(ctx, spec, e.wh)
	require.NoError(t, err)

	assert.Equal(t, production.StateDraft, made.State)
	assert.Equal(t, e.wh.ID, made.WarehouseID)
	assert.Equal(t, *e.wh.ProductionLocationID, made.LocationID)

	require.Len(t, made.Inputs, 1)
	assert.True(t, made.Inputs[0].Quantity.Equal(dec("8")), "got %s", made.Inputs[0].Quantity)

	require.Len(t, made.Outputs, 1)
	assert.Equal(t, p.ID, made.Outputs[0].ProductID)
	assert.True(t, made.Outputs[0].Quantity.Equal(dec("2")))

	require.Len(t, made.Operations, 2)
	assert.Equal(t, "Cut", made.Operations[0].Name)
	assert.Equal(t, "Assemble", made.Operations[1].Name)
}

func TestMaterializer_Build_DefaultsUnitFromProduct(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	p := product.NewProduct("P-1", "Product", e.unit.ID)
	e.products.Add(p)

	made, err := e.m.Build(ctx, production.Spec{ProductID: p.ID, Quantity: dec("1")}, e.wh)
	require.NoError(t, err)
	assert.Equal(t, e.unit.ID, made.UnitID)
	assert.Empty(t, made.Inputs)
	assert.Empty(t, made.Operations)
}

func TestMaterializer_Build_RequiresProductionLocation(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	p := product.NewProduct("P-1", "Product", e.unit.ID)
	e.products.Add(p)

	bare := warehouse.NewWarehouse("WH-2", "Bare", id.New())

	_, err := e.m.Build(ctx, production.Spec{ProductID: p.ID, Quantity: dec("1")}, bare)
	assert.Error(t, err)
}

func TestMaterializer_ExplodeBOM_ReplacesMoves(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	componentID := id.New()
	p := product.NewProduct("P-1", "Product", e.unit.ID)
	e.products.Add(p)

	b := bom.NewBOM("BOM-P", "Product BOM")
	b.AddOutput(p.ID, dec("1"), e.unit.ID)
	b.AddInput(componentID, dec("3"), e.unit.ID)
	e.boms.Add(b)

	made, err := e.m.Build(ctx, production.Spec{
		ProductID: p.ID,
		Quantity:  dec("2"),
		BOMID:     id.Ptr(b.ID),
	}, e.wh)
	require.NoError(t, err)
	require.Len(t, made.Inputs, 1)

	made.Quantity = dec("5")
	require.NoError(t, e.m.ExplodeBOM(ctx, made))

	require.Len(t, made.Inputs, 1)
	assert.True(t, made.Inputs[0].Quantity.Equal(dec("15")), "got %s", made.Inputs[0].Quantity)
	require.Len(t, made.Outputs, 1)
	assert.True(t, made.Outputs[0].Quantity.Equal(dec("5")))
}
