package ledger

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/cpay-backend/internal/domain"
)

// TransferInput represents the input for sending tokens
type TransferInput struct {
	From   string          `json:"from" validate:"required,eth_addr"`
	To     string          `json:"to" validate:"required,eth_addr,nefield=From"`
	Amount decimal.Decimal `json:"amount"`
	Token  domain.Token    `json:"token" validate:"required"`
	Note   string          `json:"note" validate:"max=280"`
}

// CreateInvoiceInput represents the input for issuing an invoice.
// An empty Payer creates an open invoice.
type CreateInvoiceInput struct {
	Merchant    string          `json:"merchant" validate:"required,eth_addr"`
	Payer       string          `json:"payer" validate:"omitempty,eth_addr,nefield=Merchant"`
	Amount      decimal.Decimal `json:"amount"`
	Token       domain.Token    `json:"token" validate:"required"`
	Description string          `json:"description" validate:"required,max=500"`
}

// PayInvoiceInput represents the input for settling an invoice
type PayInvoiceInput struct {
	Payer     string `json:"payer" validate:"required,eth_addr"`
	InvoiceID string `json:"invoice_id" validate:"required"`
}

// PaymentRequestInput represents the input for requesting tokens from a payer
type PaymentRequestInput struct {
	Requester string          `json:"requester" validate:"required,eth_addr"`
	Payer     string          `json:"payer" validate:"required,eth_addr,nefield=Requester"`
	Amount    decimal.Decimal `json:"amount"`
	Token     domain.Token    `json:"token" validate:"required"`
	Note      string          `json:"note" validate:"max=280"`
}

func (in *TransferInput) normalize() {
	in.From = domain.NormalizeAddress(in.From)
	in.To = domain.NormalizeAddress(in.To)
}

func (in *CreateInvoiceInput) normalize() {
	in.Merchant = domain.NormalizeAddress(in.Merchant)
	in.Payer = domain.NormalizeAddress(in.Payer)
}

func (in *PayInvoiceInput) normalize() {
	in.Payer = domain.NormalizeAddress(in.Payer)
	in.InvoiceID = strings.TrimSpace(in.InvoiceID)
}

func (in *PaymentRequestInput) normalize() {
	in.Requester = domain.NormalizeAddress(in.Requester)
	in.Payer = domain.NormalizeAddress(in.Payer)
}

// LedgerService is the in-memory ledger simulator.
//
// A single RWMutex guards the whole ledger: mutations validate and apply
// their effects under the write lock, so no other operation observes a
// partially applied transfer. Simulated latency runs before the lock is
// taken, which makes the global order of appended transactions and feed
// items the order in which operations finished waiting (completion order).
// Subscribers are notified after the lock is released.
type LedgerService struct {
	BalanceRepo        domain.BalanceRepository
	TransactionRepo    domain.TransactionRepository
	InvoiceRepo        domain.InvoiceRepository
	PaymentRequestRepo domain.PaymentRequestRepository
	FeedRepo           domain.FeedRepository
	UserRepo           domain.UserRepository

	mu       sync.RWMutex
	latency  Latency
	now      func() time.Time
	ids      IDGenerator
	notifier notifier
}

// Option customizes a LedgerService
type Option func(*LedgerService)

// WithLatency sets the latency hook (NoLatency in tests)
func WithLatency(l Latency) Option {
	return func(s *LedgerService) {
		if l != nil {
			s.latency = l
		}
	}
}

// WithClock sets the time source
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the ID allocator
func WithIDGenerator(g IDGenerator) Option {
	return func(s *LedgerService) {
		if g != nil {
			s.ids = g
		}
	}
}

// NewLedgerService creates a new LedgerService instance
func NewLedgerService(
	balanceRepo domain.BalanceRepository,
	transactionRepo domain.TransactionRepository,
	invoiceRepo domain.InvoiceRepository,
	paymentRequestRepo domain.PaymentRequestRepository,
	feedRepo domain.FeedRepository,
	userRepo domain.UserRepository,
	opts ...Option,
) *LedgerService {
	s := &LedgerService{
		BalanceRepo:        balanceRepo,
		TransactionRepo:    transactionRepo,
		InvoiceRepo:        invoiceRepo,
		PaymentRequestRepo: paymentRequestRepo,
		FeedRepo:           feedRepo,
		UserRepo:           userRepo,
		latency:            FixedLatency(DefaultDelays()),
		now:                time.Now,
		ids:                uuidGenerator{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers a callback invoked after every successful mutation.
// The callback carries no payload; subscribers re-query what they need.
func (s *LedgerService) Subscribe(fn func()) *Subscription {
	if fn == nil {
		return &Subscription{}
	}
	return s.notifier.subscribe(fn)
}

// SubscriberCount returns the number of active subscriptions
func (s *LedgerService) SubscriberCount() int {
	return s.notifier.count()
}

// GetBalances returns the balances of an address.
// Unknown addresses have zero balances. Addresses are matched case-insensitively.
func (s *LedgerService) GetBalances(ctx context.Context, address string) (domain.Balances, error) {
	s.latency(ctx, OpGetBalances)

	address = domain.NormalizeAddress(address)
	if address == "" {
		return domain.Balances{}, domain.InvalidInputf("address is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.BalanceRepo.Get(ctx, address)
}

// Transfer moves tokens from one address to another
// Logic:
//  1. Validate input
//  2. Check the sender holds at least Amount of Token
//  3. Debit sender, credit recipient (created at zero if absent)
//  4. Append one send Transaction and one send FeedItem
func (s *LedgerService) Transfer(ctx context.Context, input TransferInput) (*domain.Transaction, error) {
	s.latency(ctx, OpTransfer)

	input.normalize()
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := validateMoney(input.Amount, input.Token); err != nil {
		return nil, err
	}

	var tx *domain.Transaction
	err := s.mutate(func() error {
		now := s.now()
		tx = &domain.Transaction{
			ID:        s.ids.NewID(),
			Kind:      domain.TransactionKindSend,
			From:      input.From,
			To:        input.To,
			Amount:    input.Amount,
			Token:     input.Token,
			Note:      input.Note,
			Timestamp: now,
		}
		tx.TxHash = SimulatedTxHash(tx)
		if err := tx.Validate(); err != nil {
			return err
		}

		debit, credit, err := s.planMove(ctx, input.From, input.To, input.Token, input.Amount)
		if err != nil {
			return err
		}

		item := &domain.FeedItem{
			ID:        s.ids.NewID(),
			Type:      domain.FeedItemSend,
			Actor:     input.From,
			Recipient: input.To,
			Amount:    input.Amount,
			Token:     input.Token,
			Note:      input.Note,
			Timestamp: now,
		}

		return s.apply(ctx, []domain.Balances{debit, credit}, tx, item)
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// CreateInvoice issues a pending invoice. It has no balance effect.
func (s *LedgerService) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*domain.Invoice, error) {
	s.latency(ctx, OpCreateInvoice)

	input.normalize()
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := validateMoney(input.Amount, input.Token); err != nil {
		return nil, err
	}

	var invoice *domain.Invoice
	err := s.mutate(func() error {
		now := s.now()
		invoice = &domain.Invoice{
			ID:          domain.InvoiceIDPrefix + s.ids.NewID(),
			Merchant:    input.Merchant,
			Amount:      input.Amount,
			Token:       input.Token,
			Description: input.Description,
			Status:      domain.InvoiceStatusPending,
			CreatedAt:   now,
		}
		if input.Payer != "" {
			payer := input.Payer
			invoice.Payer = &payer
		}
		if err := invoice.Validate(); err != nil {
			return err
		}

		if err := s.InvoiceRepo.Create(ctx, invoice); err != nil {
			return err
		}
		return s.FeedRepo.Append(ctx, &domain.FeedItem{
			ID:        s.ids.NewID(),
			Type:      domain.FeedItemInvoiceCreated,
			Actor:     input.Merchant,
			Amount:    input.Amount,
			Token:     input.Token,
			Note:      input.Description,
			InvoiceID: invoice.ID,
			Timestamp: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return invoice.Clone(), nil
}

// PayInvoice settles an invoice from the payer's balance
// Logic:
//  1. Fetch the invoice (NOT_FOUND)
//  2. Transition pending -> paid on a copy (ALREADY_PAID)
//  3. Check the payer's balance (INSUFFICIENT_BALANCE)
//  4. Move funds payer -> merchant, append one invoice_paid Transaction and
//     one invoice_paid FeedItem, then store the paid invoice
func (s *LedgerService) PayInvoice(ctx context.Context, input PayInvoiceInput) (*domain.Invoice, error) {
	s.latency(ctx, OpPayInvoice)

	input.normalize()
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var invoice *domain.Invoice
	err := s.mutate(func() error {
		var err error
		invoice, err = s.InvoiceRepo.GetByID(ctx, input.InvoiceID)
		if err != nil {
			return err
		}

		now := s.now()
		if err := invoice.MarkPaid(input.Payer, now); err != nil {
			return err
		}
		if invoice.Merchant == input.Payer {
			return domain.InvalidInputf("merchant cannot pay their own invoice")
		}

		debit, credit, err := s.planMove(ctx, input.Payer, invoice.Merchant, invoice.Token, invoice.Amount)
		if err != nil {
			return err
		}

		tx := &domain.Transaction{
			ID:        s.ids.NewID(),
			Kind:      domain.TransactionKindInvoicePaid,
			From:      input.Payer,
			To:        invoice.Merchant,
			Amount:    invoice.Amount,
			Token:     invoice.Token,
			Note:      invoice.Description,
			Timestamp: now,
		}
		tx.TxHash = SimulatedTxHash(tx)
		if err := tx.Validate(); err != nil {
			return err
		}

		item := &domain.FeedItem{
			ID:        s.ids.NewID(),
			Type:      domain.FeedItemInvoicePaid,
			Actor:     input.Payer,
			Recipient: invoice.Merchant,
			Amount:    invoice.Amount,
			Token:     invoice.Token,
			Note:      invoice.Description,
			InvoiceID: invoice.ID,
			Timestamp: now,
		}

		if err := s.apply(ctx, []domain.Balances{debit, credit}, tx, item); err != nil {
			return err
		}
		return s.InvoiceRepo.Update(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}
	return invoice.Clone(), nil
}

// CreatePaymentRequest records a request for funds. The request stays
// unpaid: no operation fulfils requests yet.
func (s *LedgerService) CreatePaymentRequest(ctx context.Context, input PaymentRequestInput) (*domain.PaymentRequest, error) {
	s.latency(ctx, OpCreatePaymentRequest)

	input.normalize()
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := validateMoney(input.Amount, input.Token); err != nil {
		return nil, err
	}

	var request *domain.PaymentRequest
	err := s.mutate(func() error {
		now := s.now()
		request = &domain.PaymentRequest{
			ID:        s.ids.NewID(),
			Requester: input.Requester,
			Payer:     input.Payer,
			Amount:    input.Amount,
			Token:     input.Token,
			Note:      input.Note,
			CreatedAt: now,
		}
		if err := s.PaymentRequestRepo.Create(ctx, request); err != nil {
			return err
		}
		return s.FeedRepo.Append(ctx, &domain.FeedItem{
			ID:        s.ids.NewID(),
			Type:      domain.FeedItemRequestSent,
			Actor:     input.Requester,
			Recipient: input.Payer,
			Amount:    input.Amount,
			Token:     input.Token,
			Note:      input.Note,
			Timestamp: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// ListTransactions returns transactions sent or received by the address, newest first
func (s *LedgerService) ListTransactions(ctx context.Context, address string) ([]*domain.Transaction, error) {
	s.latency(ctx, OpListTransactions)

	address = domain.NormalizeAddress(address)
	if address == "" {
		return nil, domain.InvalidInputf("address is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.TransactionRepo.ListByAddress(ctx, address)
}

// ListInvoices returns invoices where the address is merchant or payer, newest first
func (s *LedgerService) ListInvoices(ctx context.Context, address string) ([]*domain.Invoice, error) {
	s.latency(ctx, OpListInvoices)

	address = domain.NormalizeAddress(address)
	if address == "" {
		return nil, domain.InvalidInputf("address is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.InvoiceRepo.ListByAddress(ctx, address)
}

// ListPaymentRequests returns requests where the address is requester or payer, newest first
func (s *LedgerService) ListPaymentRequests(ctx context.Context, address string) ([]*domain.PaymentRequest, error) {
	s.latency(ctx, OpListPaymentRequests)

	address = domain.NormalizeAddress(address)
	if address == "" {
		return nil, domain.InvalidInputf("address is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.PaymentRequestRepo.ListByAddress(ctx, address)
}

// ListFeed returns the activity feed, newest first
func (s *LedgerService) ListFeed(ctx context.Context, filter domain.FeedFilter) ([]*domain.FeedItem, error) {
	s.latency(ctx, OpListFeed)

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.FeedRepo.List(ctx, domain.ParseFeedFilter(string(filter)))
}

// GetUser looks up the directory profile of an address
func (s *LedgerService) GetUser(ctx context.Context, address string) (*domain.UserProfile, error) {
	address = domain.NormalizeAddress(address)

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.UserRepo.GetByAddress(ctx, address)
}

// mutate runs fn under the write lock and notifies subscribers if it succeeded
func (s *LedgerService) mutate(fn func() error) error {
	if err := s.locked(fn); err != nil {
		return err
	}
	s.notifier.publish()
	return nil
}

func (s *LedgerService) locked(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// planMove computes the post-transfer balances of both parties without
// writing anything. Caller must hold the write lock.
func (s *LedgerService) planMove(ctx context.Context, from, to string, token domain.Token, amount decimal.Decimal) (domain.Balances, domain.Balances, error) {
	fromBal, err := s.BalanceRepo.Get(ctx, from)
	if err != nil {
		return domain.Balances{}, domain.Balances{}, err
	}
	if fromBal.Of(token).LessThan(amount) {
		return domain.Balances{}, domain.Balances{}, domain.NewError(
			domain.KindInsufficientBalance,
			"insufficient balance: %s holds %s %s, needs %s",
			from, domain.FormatAmount(fromBal.Of(token)), token, domain.FormatAmount(amount),
		)
	}
	toBal, err := s.BalanceRepo.Get(ctx, to)
	if err != nil {
		return domain.Balances{}, domain.Balances{}, err
	}

	debit := fromBal.With(token, fromBal.Of(token).Sub(amount))
	credit := toBal.With(token, toBal.Of(token).Add(amount))
	return debit, credit, nil
}

// apply writes balances and appends the log entries of one operation.
// Caller must hold the write lock and have run every check already.
func (s *LedgerService) apply(ctx context.Context, balances []domain.Balances, tx *domain.Transaction, item *domain.FeedItem) error {
	for _, b := range balances {
		if err := s.BalanceRepo.Put(ctx, b); err != nil {
			return err
		}
	}
	if err := s.TransactionRepo.Append(ctx, tx); err != nil {
		return err
	}
	return s.FeedRepo.Append(ctx, item)
}

// validateMoney checks the token and amount shared by every money input
func validateMoney(amount decimal.Decimal, token domain.Token) error {
	if !token.IsValid() {
		return domain.InvalidInputf("unsupported token %q", token)
	}
	return domain.ValidateAmount(amount)
}
