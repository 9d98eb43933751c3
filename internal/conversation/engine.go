package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/splitchain/splitbot/internal/fetch"
	"github.com/splitchain/splitbot/internal/model"
	"github.com/splitchain/splitbot/internal/payment"
	"github.com/splitchain/splitbot/internal/pricing"
	"github.com/splitchain/splitbot/internal/repository"
	"github.com/splitchain/splitbot/internal/split"
	"github.com/splitchain/splitbot/internal/wallet"
)

// Callback data values carried by inline buttons.
const (
	CallbackReceiptYes  = "receipt_yes"
	CallbackReceiptNo   = "receipt_no"
	CallbackSplitEven   = "split_even"
	CallbackSplitCustom = "split_custom"
	CallbackWalletYes   = "wallet_yes"
	CallbackWalletNo    = "wallet_no"
)

// ErrInvalidCount marks participant input that is not a non-negative integer.
var ErrInvalidCount = errors.New("invalid participant count")

// Button is one inline keyboard button.
type Button struct {
	Label string
	Data  string
}

// Messenger is the slice of the chat platform the engine needs: plain texts,
// button prompts, a URL share button and a photo attachment.
type Messenger interface {
	SendText(key Key, text string) error
	SendButtons(key Key, text string, buttons []Button) error
	SendShareButton(key Key, text, label, shareURL string) error
	SendPhoto(key Key, caption string, image []byte) error
}

// Pipeline resolves an uploaded image into a validated receipt record.
type Pipeline interface {
	Process(ctx context.Context, fileURL string) (*model.ReceiptRecord, error)
}

// Oracle returns the current fiat price of one unit of the settlement asset.
type Oracle interface {
	Rate(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// ChartRenderer draws the optional item-breakdown attachment.
type ChartRenderer interface {
	ItemsBreakdown(receipt *model.ReceiptRecord) ([]byte, error)
}

// Config fixes the settlement target for every split this instance produces.
type Config struct {
	ChainID     int64
	AssetSymbol string
}

// Engine drives the per-user split dialogue. Each inbound update is handled
// on its own goroutine; the engine serializes work per session and keeps no
// other shared mutable state.
type Engine struct {
	cfg      Config
	pipeline Pipeline
	oracle   Oracle
	repo     repository.Repository
	charts   ChartRenderer
	msg      Messenger
	sessions *Store
	log      zerolog.Logger
}

func NewEngine(cfg Config, pipeline Pipeline, oracle Oracle, repo repository.Repository, charts ChartRenderer, msg Messenger, log zerolog.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		pipeline: pipeline,
		oracle:   oracle,
		repo:     repo,
		charts:   charts,
		msg:      msg,
		sessions: NewStore(),
		log:      log.With().Str("component", "conversation").Logger(),
	}
}

// Session exposes the session for key; used by tests and the /start handler.
func (e *Engine) Session(key Key) *Session {
	return e.sessions.Get(key)
}

// HandleStart resets the dialogue and greets the user.
func (e *Engine) HandleStart(key Key) error {
	sess := e.sessions.Get(key)
	sess.mu.Lock()
	sess.reset()
	sess.mu.Unlock()
	return e.msg.SendText(key, "Welcome! Please upload an image of the receipt.")
}

// HandleImage runs the extraction pipeline for an uploaded image. A fresh
// image supersedes any in-flight dialogue: partial state is discarded first.
func (e *Engine) HandleImage(ctx context.Context, key Key, fileURL string) error {
	sess := e.sessions.Get(key)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.reset()
	e.log.Info().Int64("user", key.UserID).Msg("processing receipt image")

	record, err := e.pipeline.Process(ctx, fileURL)
	if err != nil {
		e.log.Error().Err(err).Int64("user", key.UserID).Msg("extraction pipeline failed")
		return e.msg.SendText(key, pipelineErrorMessage(err))
	}

	if !record.IsReceipt {
		return e.msg.SendText(key, record.Message)
	}

	sess.Receipt = record
	sess.State = StateConfirmReceipt

	if png := e.renderChart(record); png != nil {
		if err := e.msg.SendPhoto(key, "Items on this receipt", png); err != nil {
			e.log.Warn().Err(err).Msg("failed to send items chart")
		}
	}

	return e.msg.SendButtons(key, receiptSummary(record), []Button{
		{Label: "Yes this is correct", Data: CallbackReceiptYes},
		{Label: "No reupload image", Data: CallbackReceiptNo},
	})
}

// HandleCallback processes an inline button press. Buttons from a superseded
// message (wrong state) are ignored so a double-tap cannot corrupt the
// session.
func (e *Engine) HandleCallback(ctx context.Context, key Key, data string) error {
	sess := e.sessions.Get(key)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	e.log.Debug().Str("callback", data).Stringer("state", sess.State).Int64("user", key.UserID).Msg("callback received")

	switch data {
	case CallbackReceiptYes:
		if sess.State != StateConfirmReceipt {
			return nil
		}
		sess.State = StateChooseSplit
		e.saveReceipt(ctx, key, sess.Receipt)
		return e.msg.SendButtons(key, "Receipt confirmed. How do you want to split?", []Button{
			{Label: "Even", Data: CallbackSplitEven},
			{Label: "Custom", Data: CallbackSplitCustom},
		})

	case CallbackReceiptNo:
		if sess.State != StateConfirmReceipt {
			return nil
		}
		sess.reset()
		return e.msg.SendText(key, "Please send a new receipt image.")

	case CallbackSplitEven:
		if sess.State != StateChooseSplit {
			return nil
		}
		sess.State = StateAwaitWallet
		return e.msg.SendText(key, "Please enter your base wallet address (the wallet that will receive the funds):")

	case CallbackSplitCustom:
		if sess.State != StateChooseSplit {
			return nil
		}
		sess.reset()
		return e.msg.SendText(key, "Split custom feature is still being developed.")

	case CallbackWalletYes:
		if sess.State != StateConfirmWallet {
			return nil
		}
		sess.State = StateAwaitParticipants
		if err := e.msg.SendText(key, "Wallet address confirmed: "+sess.WalletAddress); err != nil {
			return err
		}
		return e.msg.SendText(key, "Please enter the number of participants (other than you) to split the bill with:")

	case CallbackWalletNo:
		if sess.State != StateConfirmWallet {
			return nil
		}
		sess.WalletAddress = ""
		sess.State = StateAwaitWallet
		return e.msg.SendText(key, "Please re-enter your base wallet address:")

	default:
		e.log.Warn().Str("callback", data).Msg("unknown callback data")
		return e.msg.SendText(key, "Unknown action.")
	}
}

// HandleText processes free-form text according to the current state.
func (e *Engine) HandleText(ctx context.Context, key Key, text string) error {
	sess := e.sessions.Get(key)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	switch sess.State {
	case StateAwaitWallet:
		address, err := wallet.Checksum(text)
		if err != nil {
			// state unchanged, user re-prompted
			return e.msg.SendText(key, "That doesn't look like a valid wallet address. Please enter a 0x... address:")
		}
		sess.WalletAddress = address
		sess.State = StateConfirmWallet
		return e.msg.SendButtons(key, fmt.Sprintf("Is this the correct wallet address: %s?", address), []Button{
			{Label: "Yes", Data: CallbackWalletYes},
			{Label: "No", Data: CallbackWalletNo},
		})

	case StateAwaitParticipants:
		others, err := parseParticipants(text)
		if err != nil {
			return e.msg.SendText(key, "Please enter the number of other participants as a whole number (0 or more):")
		}
		sess.Participants = others
		return e.computeAndRespond(ctx, key, sess)

	case StateConfirmReceipt, StateChooseSplit, StateConfirmWallet:
		return e.msg.SendText(key, "Please use the buttons above to continue.")

	default:
		return e.msg.SendText(key, "Please upload an image of the receipt.")
	}
}

// HandleHistory lists the sender's recent payment requests.
func (e *Engine) HandleHistory(ctx context.Context, key Key) error {
	requests, err := e.repo.RecentPaymentRequests(ctx, key.UserID, 5)
	if err != nil {
		e.log.Error().Err(err).Msg("failed to load payment history")
		return e.msg.SendText(key, "Could not load your history right now.")
	}
	if len(requests) == 0 {
		return e.msg.SendText(key, "No payment requests yet. Upload a receipt to get started.")
	}

	var b strings.Builder
	b.WriteString("Your recent payment requests:\n")
	for _, req := range requests {
		fmt.Fprintf(&b, "• %s %s (%s per person, %d payers) → %s on %s\n",
			req.AssetAmount.String(), req.AssetSymbol,
			req.FiatAmount.String(), req.Participants,
			shortAddress(req.Recipient), payment.NetworkName(req.ChainID))
	}
	return e.msg.SendText(key, b.String())
}

// computeAndRespond is the COMPUTE_AND_RESPOND step: quote, divide, build the
// link, reply, end. The quote is fetched fresh and never reused; any oracle
// failure ends the flow immediately. Caller holds the session lock.
func (e *Engine) computeAndRespond(ctx context.Context, key Key, sess *Session) error {
	rate, err := e.oracle.Rate(ctx, e.cfg.AssetSymbol)
	if err != nil {
		e.log.Error().Err(err).Msg("price lookup failed")
		sess.State = StateDone
		if errors.Is(err, pricing.ErrPriceUnavailable) || errors.Is(err, pricing.ErrUnsupportedAsset) {
			return e.msg.SendText(key, fmt.Sprintf("Could not fetch the current %s price. Please try again later.", e.cfg.AssetSymbol))
		}
		return e.msg.SendText(key, "Something went wrong while computing the split. Please try again later.")
	}

	result, err := split.Even(sess.Receipt.Total, sess.Participants, rate)
	if err != nil {
		e.log.Error().Err(err).Msg("split computation failed")
		sess.State = StateDone
		return e.msg.SendText(key, "Something went wrong while computing the split. Please try again later.")
	}

	uri := payment.Build(sess.WalletAddress, e.cfg.ChainID, result.SmallestUnit)
	link := payment.MetaMaskLink(uri)
	shareURL := payment.TelegramShareURL(link, "Please complete the payment by clicking the link: "+link)

	request := &model.PaymentRequest{
		UserID:       key.UserID,
		ReceiptID:    sess.Receipt.ID,
		Recipient:    sess.WalletAddress,
		ChainID:      e.cfg.ChainID,
		AssetSymbol:  e.cfg.AssetSymbol,
		AssetAmount:  result.AssetAmount,
		FiatAmount:   result.PerPersonFiat,
		Participants: result.Payers,
		URI:          uri,
		CreatedAt:    time.Now(),
	}
	request.GenerateID()
	if err := e.repo.SavePaymentRequest(ctx, request); err != nil {
		e.log.Warn().Err(err).Msg("failed to persist payment request")
	}

	sess.State = StateDone
	e.log.Info().
		Str("asset_amount", result.AssetAmount.String()).
		Int("payers", result.Payers).
		Int64("user", key.UserID).
		Msg("payment request created")

	text := fmt.Sprintf("Requesting %s %s (%s %s) per person on %s:\nTap below to share the request with others:",
		result.AssetAmount.String(), e.cfg.AssetSymbol,
		displayFiat(result.PerPersonFiat), sess.Receipt.Currency,
		payment.NetworkName(e.cfg.ChainID))
	return e.msg.SendShareButton(key, text, "Share Payment Request", shareURL)
}

func (e *Engine) saveReceipt(ctx context.Context, key Key, receipt *model.ReceiptRecord) {
	if receipt == nil {
		return
	}
	if err := e.repo.SaveReceipt(ctx, key.UserID, receipt); err != nil {
		e.log.Warn().Err(err).Msg("failed to persist receipt")
	}
}

func (e *Engine) renderChart(record *model.ReceiptRecord) []byte {
	if e.charts == nil {
		return nil
	}
	png, err := e.charts.ItemsBreakdown(record)
	if err != nil {
		e.log.Warn().Err(err).Msg("items chart failed")
		return nil
	}
	return png
}

// parseParticipants reads the number of participants other than the sender.
// Zero is valid: the sender then pays the full total alone.
func parseParticipants(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCount, text)
	}
	return n, nil
}

func pipelineErrorMessage(err error) string {
	switch {
	case errors.Is(err, fetch.ErrUnsupportedFormat):
		return "PDF files are not supported. Please send the receipt as a photo."
	default:
		return "Error processing receipt. Please try again with a clearer photo."
	}
}

func receiptSummary(record *model.ReceiptRecord) string {
	date := record.Date
	if date == "" {
		date = "N/A"
	}
	tax := "N/A"
	if record.Tax != nil {
		tax = record.Tax.String()
	}
	return fmt.Sprintf(
		"Receipt processed:\nMerchant: %s\nDate: %s\nTotal: %s %s\nTax: %s\nItems: %d items listed\n\nIs this correct?",
		record.Merchant, date, record.Total.String(), record.Currency, tax, len(record.Items))
}

func displayFiat(amount decimal.Decimal) string {
	// Display only; payment amounts always come from the exact URI value.
	return amount.RoundDown(2).String()
}

func shortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:8] + "…" + addr[len(addr)-4:]
}
