package charts

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/splitchain/splitbot/internal/model"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestItemsBreakdownRendersPNG(t *testing.T) {
	t.Parallel()

	receipt := &model.ReceiptRecord{
		IsReceipt: true,
		Merchant:  "Trader Joe's",
		Total:     decimal.RequireFromString("12.30"),
		Currency:  "USD",
		Items: []model.LineItem{
			{Name: "Milk", Price: decimal.RequireFromString("4.20"), Quantity: 2},
			{Name: "A very long product name that needs shortening", Price: decimal.RequireFromString("3.90"), Quantity: 1},
		},
	}

	png, err := NewChartGenerator().ItemsBreakdown(receipt)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestItemsBreakdownNoItems(t *testing.T) {
	t.Parallel()

	png, err := NewChartGenerator().ItemsBreakdown(&model.ReceiptRecord{IsReceipt: true})
	require.NoError(t, err)
	require.Nil(t, png)

	png, err = NewChartGenerator().ItemsBreakdown(nil)
	require.NoError(t, err)
	require.Nil(t, png)
}

func TestItemsBreakdownFoldsLongReceipts(t *testing.T) {
	t.Parallel()

	receipt := &model.ReceiptRecord{
		IsReceipt: true,
		Merchant:  "Costco",
		Total:     decimal.NewFromInt(200),
		Currency:  "USD",
	}
	for i := 0; i < 30; i++ {
		receipt.Items = append(receipt.Items, model.LineItem{
			Name:     fmt.Sprintf("Item %d", i),
			Price:    decimal.NewFromInt(1),
			Quantity: 1,
		})
	}

	png, err := NewChartGenerator().ItemsBreakdown(receipt)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(png, pngMagic))
}
