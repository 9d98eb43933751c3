package vision

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string      { return &s }
func numPtr(s string) *json.Number { n := json.Number(s); return &n }

func validPayload() *Payload {
	return &Payload{
		IsReceipt: true,
		Merchant:  strPtr("Trader Joe's"),
		Date:      strPtr("2025-03-14"),
		Total:     numPtr("42.80"),
		Tax:       numPtr("3.40"),
		Currency:  strPtr("USD"),
		Items: []ItemPayload{
			{Name: "Milk", Price: numPtr("4.20"), Quantity: numPtr("2")},
			{Name: "Bread", Price: numPtr("3.10")},
		},
	}
}

func TestValidateAcceptsCompleteReceipt(t *testing.T) {
	t.Parallel()

	record, err := Validate(validPayload())
	require.NoError(t, err)
	require.True(t, record.IsReceipt)
	require.NotEmpty(t, record.ID)
	require.Equal(t, "Trader Joe's", record.Merchant)
	require.Equal(t, "42.8", record.Total.String())
	require.NotNil(t, record.Tax)
	require.Equal(t, "3.4", record.Tax.String())
	require.Empty(t, record.Message)
	require.Len(t, record.Items, 2)
	require.Equal(t, 2, record.Items[0].Quantity)
	// quantity defaults to 1 when absent
	require.Equal(t, 1, record.Items[1].Quantity)
}

func TestValidateRejectsMissingRequiredFields(t *testing.T) {
	t.Parallel()

	breakIt := map[string]func(*Payload){
		"merchant": func(p *Payload) { p.Merchant = nil },
		"total":    func(p *Payload) { p.Total = nil },
		"currency": func(p *Payload) { p.Currency = nil },
		"items":    func(p *Payload) { p.Items = nil },
	}
	for name, mutate := range breakIt {
		t.Run(name, func(t *testing.T) {
			p := validPayload()
			mutate(p)
			_, err := Validate(p)
			require.ErrorIs(t, err, ErrIncompleteReceipt)
		})
	}
}

func TestValidateAcceptsRejectionRegardlessOfOtherFields(t *testing.T) {
	t.Parallel()

	record, err := Validate(&Payload{IsReceipt: false, Items: []ItemPayload{}})
	require.NoError(t, err)
	require.False(t, record.IsReceipt)
	require.Equal(t, RejectionMessage, record.Message)
	require.Empty(t, record.Merchant)

	record, err = Validate(&Payload{IsReceipt: false, Message: strPtr("This is a cat photo."), Items: []ItemPayload{}})
	require.NoError(t, err)
	require.Equal(t, "This is a cat photo.", record.Message)
}

func TestValidateCoercesAndRejectsNumerics(t *testing.T) {
	t.Parallel()

	p := validPayload()
	p.Total = numPtr("-5.00")
	_, err := Validate(p)
	require.ErrorIs(t, err, ErrInvalidField)

	// zero totals are rejected here so they never reach the split math
	p = validPayload()
	p.Total = numPtr("0.00")
	_, err = Validate(p)
	require.ErrorIs(t, err, ErrInvalidField)

	p = validPayload()
	p.Items[0].Price = numPtr("abc")
	_, err = Validate(p)
	require.ErrorIs(t, err, ErrInvalidField)

	p = validPayload()
	p.Items[0].Quantity = numPtr("0")
	_, err = Validate(p)
	require.ErrorIs(t, err, ErrInvalidField)

	p = validPayload()
	p.Items[0].Quantity = numPtr("2.5")
	_, err = Validate(p)
	require.ErrorIs(t, err, ErrInvalidField)
}

func TestValidateDropsMessageForValidReceipts(t *testing.T) {
	t.Parallel()

	p := validPayload()
	p.Message = strPtr("should not survive")
	record, err := Validate(p)
	require.NoError(t, err)
	require.Empty(t, record.Message)
}
