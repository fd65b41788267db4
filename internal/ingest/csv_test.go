package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/stockwise/internal/domain"
)

func TestReadProducts_MapsColumnsByHeader(t *testing.T) {
	csv := strings.Join([]string{
		"ID,SKU,Name,Category,Branch,Cost,Lead Time,Stock Physical,Stock Available,On Order,Min Stock,Max Stock",
		"p1,WID-1,Widget,tools,JKT,12.5,5,100,90,10,40,120",
	}, "\n")

	products, err := ReadProducts(strings.NewReader(csv))

	require.NoError(t, err)
	require.Len(t, products, 1)
	p := products[0]
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "WID-1", p.SKU)
	assert.Equal(t, "Widget", p.Name)
	assert.Equal(t, "tools", p.Category)
	assert.Equal(t, "JKT", p.Branch)
	assert.InDelta(t, 12.5, p.Cost, 1e-9)
	assert.InDelta(t, 5, p.DefaultLeadTime, 1e-9)
	assert.InDelta(t, 100, p.StockPhysical, 1e-9)
	assert.InDelta(t, 90, p.StockAvailable, 1e-9)
	assert.InDelta(t, 10, p.OnOrderQty, 1e-9)
	assert.InDelta(t, 40, p.CurrentMinStock, 1e-9)
	assert.InDelta(t, 120, p.CurrentMaxStock, 1e-9)
}

func TestReadProducts_SkipsRowsWithoutID(t *testing.T) {
	csv := strings.Join([]string{
		"id,sku,branch",
		",WID-1,JKT",
		"p2,WID-2,JKT",
	}, "\n")

	products, err := ReadProducts(strings.NewReader(csv))

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "p2", products[0].ID)
}

func TestReadProducts_BadNumbersFallBackToZero(t *testing.T) {
	csv := strings.Join([]string{
		"id,cost,stock_physical",
		"p1,not-a-number,\"1,250\"",
	}, "\n")

	products, err := ReadProducts(strings.NewReader(csv))

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Zero(t, products[0].Cost)
	assert.InDelta(t, 1250, products[0].StockPhysical, 1e-9)
}

func TestReadTransactions_ParsesDirectionAliases(t *testing.T) {
	csv := strings.Join([]string{
		"product_id,branch,type,qty,date",
		"p1,JKT,OUT,10,2024-01-05",
		"p1,JKT,sale,5,05/01/2024",
		"p1,JKT,IN,20,2024-01-06T08:30:00Z",
		"p1,JKT,adjust,3,2024-01-07",
	}, "\n")

	txns, err := ReadTransactions(strings.NewReader(csv))

	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, domain.TransactionOut, txns[0].Type)
	assert.Equal(t, domain.TransactionOut, txns[1].Type)
	assert.Equal(t, domain.TransactionIn, txns[2].Type)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), txns[0].Date)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), txns[1].Date)
}

func TestReadTransactions_UnparsableDateKeptAsZero(t *testing.T) {
	csv := strings.Join([]string{
		"product_id,type,quantity,date",
		"p1,OUT,10,someday",
	}, "\n")

	txns, err := ReadTransactions(strings.NewReader(csv))

	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.True(t, txns[0].Date.IsZero())
}

func TestReadPurchaseOrders_ParsesDates(t *testing.T) {
	csv := strings.Join([]string{
		"product_id,branch,quantity,order_date,receive_date",
		"p1,JKT,100,2024-02-01,2024-02-11",
	}, "\n")

	orders, err := ReadPurchaseOrders(strings.NewReader(csv))

	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), orders[0].OrderDate)
	assert.Equal(t, time.Date(2024, 2, 11, 0, 0, 0, 0, time.UTC), orders[0].ReceiveDate)
}

func TestReadProducts_MissingHeaderIsError(t *testing.T) {
	_, err := ReadProducts(strings.NewReader(""))
	assert.Error(t, err)
}
