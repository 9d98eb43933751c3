package vision

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeExtractsFromFence(t *testing.T) {
	t.Parallel()

	raw := "Here is the extracted data:\n```json\n" +
		`{"is_receipt": true, "merchant": "Blue Bottle", "total": 21.50, "currency": "USD", "items": []}` +
		"\n```\nLet me know if you need anything else."

	p, err := Normalize(raw)
	require.NoError(t, err)
	require.True(t, p.IsReceipt)
	require.Equal(t, "Blue Bottle", *p.Merchant)
	require.Equal(t, "21.50", p.Total.String())
}

func TestNormalizeExtractsFromProse(t *testing.T) {
	t.Parallel()

	raw := `Sure! The receipt shows {"is_receipt": true, "merchant": "7-Eleven", ` +
		`"total": 9.99, "currency": "USD", "items": [{"name": "Water {1L}", "price": 1.5, "quantity": 2}]} as requested.`

	p, err := Normalize(raw)
	require.NoError(t, err)
	require.Equal(t, "7-Eleven", *p.Merchant)
	require.Len(t, p.Items, 1)
	// braces inside string values must not break the match
	require.Equal(t, "Water {1L}", p.Items[0].Name)
}

func TestNormalizePrefersFenceOverStrayBraces(t *testing.T) {
	t.Parallel()

	raw := "Note: {not json}\n```json\n{\"is_receipt\": false, \"message\": \"blurry photo\"}\n```"
	p, err := Normalize(raw)
	require.NoError(t, err)
	require.False(t, p.IsReceipt)
	require.Equal(t, "blurry photo", *p.Message)
}

func TestNormalizeFallsBackToBracesWhenFenceIsBroken(t *testing.T) {
	t.Parallel()

	// Fence never closes; the brace scan still finds the object.
	raw := "```json\n" + `{"is_receipt": true, "merchant": "IKEA", "total": 120, "currency": "EUR", "items": []}`
	p, err := Normalize(raw)
	require.NoError(t, err)
	require.Equal(t, "IKEA", *p.Merchant)
}

func TestNormalizeSkipsStrayBracesBeforeObject(t *testing.T) {
	t.Parallel()

	raw := `Note to self: {reviewed by hand} The result is ` +
		`{"is_receipt": true, "merchant": "IKEA", "total": 120, "currency": "EUR", "items": []}`
	p, err := Normalize(raw)
	require.NoError(t, err)
	require.Equal(t, "IKEA", *p.Merchant)

	// an unclosed stray brace must not swallow the object either
	raw = `weird { prose {"is_receipt": true, "merchant": "IKEA", "total": 120, "currency": "EUR", "items": []}`
	p, err = Normalize(raw)
	require.NoError(t, err)
	require.Equal(t, "IKEA", *p.Merchant)
}

func TestNormalizeBackfillsMissingKeys(t *testing.T) {
	t.Parallel()

	p, err := Normalize(`{"is_receipt": true}`)
	require.NoError(t, err)
	require.True(t, p.IsReceipt)
	require.Nil(t, p.Merchant)
	require.Nil(t, p.Date)
	require.Nil(t, p.Total)
	require.Nil(t, p.Tax)
	require.Nil(t, p.Currency)
	require.Nil(t, p.Message)
	require.NotNil(t, p.Items)
	require.Empty(t, p.Items)

	p, err = Normalize(`{}`)
	require.NoError(t, err)
	require.False(t, p.IsReceipt)
	require.NotNil(t, p.Items)
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		"",
		"I could not read the image, sorry.",
		"{ broken json",
		"``` also broken ```",
	} {
		_, err := Normalize(raw)
		require.ErrorIs(t, err, ErrMalformedResponse, "input: %q", raw)
	}
}
