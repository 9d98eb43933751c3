// Package payment builds payment request URIs and the share links wrapping
// them. Everything here is pure string formatting with no I/O.
package payment

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrBadURI is returned by Parse for strings Build could not have produced.
var ErrBadURI = errors.New("malformed payment uri")

// Build renders the canonical payment descriptor:
//
//	send/pay-<checksummedAddress>@<chainId>?value=<amount>
//
// The amount is fixed-point decimal with trailing zeros trimmed and never in
// scientific notation, so a receiving wallet cannot misread it.
func Build(recipient string, chainID int64, amount decimal.Decimal) string {
	return fmt.Sprintf("send/pay-%s@%d?value=%s", recipient, chainID, amount.String())
}

// Parse recovers the recipient, chain ID and amount from a Build output.
func Parse(uri string) (recipient string, chainID int64, amount decimal.Decimal, err error) {
	rest, ok := strings.CutPrefix(uri, "send/pay-")
	if !ok {
		return "", 0, decimal.Decimal{}, ErrBadURI
	}
	addrPart, rest, ok := strings.Cut(rest, "@")
	if !ok {
		return "", 0, decimal.Decimal{}, ErrBadURI
	}
	chainPart, valuePart, ok := strings.Cut(rest, "?value=")
	if !ok {
		return "", 0, decimal.Decimal{}, ErrBadURI
	}
	chainID, err = strconv.ParseInt(chainPart, 10, 64)
	if err != nil {
		return "", 0, decimal.Decimal{}, ErrBadURI
	}
	amount, err = decimal.NewFromString(valuePart)
	if err != nil {
		return "", 0, decimal.Decimal{}, ErrBadURI
	}
	return addrPart, chainID, amount, nil
}

// MetaMaskLink wraps a payment URI into a MetaMask universal link.
func MetaMaskLink(uri string) string {
	return "https://metamask.app.link/" + uri
}

// TelegramShareURL builds the t.me share URL that pre-fills a message with
// the payment link. Performed here as a stateless formatting step; sending
// the button is the transport layer's job.
func TelegramShareURL(link, text string) string {
	return "https://t.me/share/url?url=" + url.QueryEscape(link) + "&text=" + url.QueryEscape(text)
}

// NetworkName maps the chain IDs this bot is deployed against to display
// names.
func NetworkName(chainID int64) string {
	switch chainID {
	case 84532:
		return "Base Sepolia"
	case 8453:
		return "Base"
	case 1:
		return "Ethereum"
	case 11155111:
		return "Sepolia"
	default:
		return fmt.Sprintf("chain %d", chainID)
	}
}
