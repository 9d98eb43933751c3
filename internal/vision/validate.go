package vision

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitchain/splitbot/internal/model"
)

// RejectionMessage is used when the model classifies an image as not a
// receipt without saying why.
const RejectionMessage = "Please provide a valid receipt image."

// Validate enforces the minimal contract that makes a payload "a receipt" and
// produces the immutable record the conversation stores.
//
// is_receipt=true requires merchant, total, currency and items to be present;
// date and tax stay best-effort. is_receipt=false keeps only the rejection
// message. Numeric fields are coerced to decimals and must be non-negative;
// item quantity defaults to 1 and must be a positive integer.
func Validate(p *Payload) (*model.ReceiptRecord, error) {
	record := &model.ReceiptRecord{
		IsReceipt: p.IsReceipt,
		CreatedAt: time.Now(),
	}
	record.GenerateID()

	if !p.IsReceipt {
		record.Message = RejectionMessage
		if p.Message != nil && *p.Message != "" {
			record.Message = *p.Message
		}
		record.Items = []model.LineItem{}
		return record, nil
	}

	if p.Merchant == nil || *p.Merchant == "" {
		return nil, fmt.Errorf("%w: merchant", ErrIncompleteReceipt)
	}
	if p.Total == nil {
		return nil, fmt.Errorf("%w: total", ErrIncompleteReceipt)
	}
	if p.Currency == nil || *p.Currency == "" {
		return nil, fmt.Errorf("%w: currency", ErrIncompleteReceipt)
	}
	if p.Items == nil {
		return nil, fmt.Errorf("%w: items", ErrIncompleteReceipt)
	}

	record.Merchant = *p.Merchant
	record.Currency = *p.Currency
	if p.Date != nil {
		record.Date = *p.Date
	}

	total, err := toAmount("total", *p.Total)
	if err != nil {
		return nil, err
	}
	if total.IsZero() {
		// a zero total cannot be split; treat it like any other bad numeric
		return nil, fmt.Errorf("%w: total is zero", ErrInvalidField)
	}
	record.Total = total

	if p.Tax != nil {
		tax, err := toAmount("tax", *p.Tax)
		if err != nil {
			return nil, err
		}
		record.Tax = &tax
	}

	record.Items = make([]model.LineItem, 0, len(p.Items))
	for _, item := range p.Items {
		li := model.LineItem{Name: item.Name, Quantity: 1}
		if item.Price == nil {
			return nil, fmt.Errorf("%w: item %q has no price", ErrInvalidField, item.Name)
		}
		price, err := toAmount("item price", *item.Price)
		if err != nil {
			return nil, err
		}
		li.Price = price

		if item.Quantity != nil {
			qty, err := item.Quantity.Int64()
			if err != nil || qty < 1 {
				return nil, fmt.Errorf("%w: item %q quantity %s", ErrInvalidField, item.Name, *item.Quantity)
			}
			li.Quantity = int(qty)
		}
		record.Items = append(record.Items, li)
	}

	return record, nil
}

func toAmount(field string, n json.Number) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s %q is not numeric", ErrInvalidField, field, n)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: %s is negative", ErrInvalidField, field)
	}
	return d, nil
}
