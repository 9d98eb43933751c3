// Package charts renders the item-breakdown image attached to a receipt
// summary.
package charts

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/splitchain/splitbot/internal/model"
)

// ChartGenerator renders receipt visuals. Chart values are display-only, so
// the float conversion here never feeds payment math.
type ChartGenerator struct{}

func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{}
}

// maxBars keeps long receipts readable; the rest is folded into "other".
const maxBars = 12

// ItemsBreakdown renders a bar chart of spend per line item. Returns nil
// bytes when the receipt has no items to draw.
func (g *ChartGenerator) ItemsBreakdown(receipt *model.ReceiptRecord) ([]byte, error) {
	if receipt == nil || len(receipt.Items) == 0 {
		return nil, nil
	}

	bars := make([]chart.Value, 0, maxBars)
	var otherTotal float64
	for i, item := range receipt.Items {
		value, _ := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).Float64()
		if i < maxBars-1 || len(receipt.Items) <= maxBars {
			bars = append(bars, chart.Value{
				Label: shorten(item.Name, 14),
				Value: value,
			})
			continue
		}
		otherTotal += value
	}
	if otherTotal > 0 {
		bars = append(bars, chart.Value{Label: "other", Value: otherTotal})
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("%s — %s %s", receipt.Merchant, receipt.Total.String(), receipt.Currency),
		Width:    900,
		Height:   450,
		BarWidth: 48,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render items chart: %w", err)
	}
	return buf.Bytes(), nil
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
