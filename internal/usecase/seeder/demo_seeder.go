package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/cpay-backend/internal/domain"
	"github.com/simaogato/cpay-backend/internal/usecase/ledger"
)

// Demo addresses of the dashboard's mock directory
const (
	AddressAlice = "0x742d35cc6634c0532925a3b844bc9e7595f8ff71"
	AddressBob   = "0x8ba1f109551bd432803012645ac136ddd64dba72"
	AddressCarol = "0xdd2fd4581271e230360230f9337d5c0430bf44c0"
	AddressDave  = "0x2546bcd3c84621e976d8185a91a922ae77ecec30"
)

// Fixed IDs of the demo history so reseeding never duplicates it
var (
	TX_LUNCH       = uuid.MustParse("00000000-0000-0000-0001-000000000001")
	TX_THANKS      = uuid.MustParse("00000000-0000-0000-0001-000000000002")
	TX_LOGO_DESIGN = uuid.MustParse("00000000-0000-0000-0001-000000000003")
)

// Fixed invoice IDs
const (
	INV_WEB_DESIGN   = "inv_001"
	INV_LOGO_DESIGN  = "inv_002"
	INV_CONSULTATION = "inv_003"
)

// DemoSeeder loads the demo directory, balances and history used in mock mode
type DemoSeeder struct {
	BalanceRepo     domain.BalanceRepository
	TransactionRepo domain.TransactionRepository
	InvoiceRepo     domain.InvoiceRepository
	FeedRepo        domain.FeedRepository
	UserRepo        domain.UserRepository
	now             func() time.Time
}

// NewDemoSeeder creates a new DemoSeeder instance.
// now anchors the relative timestamps of the demo history.
func NewDemoSeeder(
	balanceRepo domain.BalanceRepository,
	transactionRepo domain.TransactionRepository,
	invoiceRepo domain.InvoiceRepository,
	feedRepo domain.FeedRepository,
	userRepo domain.UserRepository,
	now func() time.Time,
) *DemoSeeder {
	if now == nil {
		now = time.Now
	}
	return &DemoSeeder{
		BalanceRepo:     balanceRepo,
		TransactionRepo: transactionRepo,
		InvoiceRepo:     invoiceRepo,
		FeedRepo:        feedRepo,
		UserRepo:        userRepo,
		now:             now,
	}
}

// DemoUsers returns the demo directory
func DemoUsers() []domain.UserProfile {
	return []domain.UserProfile{
		{Address: AddressAlice, Username: "alice", AvatarSeed: "alice123"},
		{Address: AddressBob, Username: "bob", AvatarSeed: "bob456"},
		{Address: AddressCarol, Username: "carol", AvatarSeed: "carol789"},
		{Address: AddressDave, Username: "dave", AvatarSeed: "dave012"},
	}
}

// Seed ensures the demo state exists
// Logic:
//  1. Create missing directory profiles
//  2. Give alice her opening balances if she holds nothing
//  3. Create missing invoices inv_001..inv_003
//  4. Append the demo transactions and feed items once, oldest first,
//     so the logs read newest first
func (s *DemoSeeder) Seed(ctx context.Context) error {
	if err := s.seedUsers(ctx); err != nil {
		return err
	}
	if err := s.seedBalances(ctx); err != nil {
		return err
	}

	now := s.now()
	if err := s.seedInvoices(ctx, now); err != nil {
		return err
	}
	return s.seedHistory(ctx, now)
}

func (s *DemoSeeder) seedUsers(ctx context.Context) error {
	for _, user := range DemoUsers() {
		_, err := s.UserRepo.GetByAddress(ctx, user.Address)
		if err == nil {
			continue
		}
		if domain.KindOf(err) != domain.KindNotFound {
			return err
		}
		profile := user
		if err := s.UserRepo.Create(ctx, &profile); err != nil {
			return err
		}
	}
	return nil
}

func (s *DemoSeeder) seedBalances(ctx context.Context) error {
	current, err := s.BalanceRepo.Get(ctx, AddressAlice)
	if err != nil {
		return err
	}
	if !current.CELO.IsZero() || !current.CUSD.IsZero() {
		return nil
	}

	opening := domain.Balances{
		Address: AddressAlice,
		CELO:    decimal.RequireFromString("1234.56"),
		CUSD:    decimal.RequireFromString("5678.90"),
	}
	if err := opening.Validate(); err != nil {
		return err
	}
	return s.BalanceRepo.Put(ctx, opening)
}

func (s *DemoSeeder) seedInvoices(ctx context.Context, now time.Time) error {
	dave := AddressDave
	bob := AddressBob
	paidAt := now.Add(-48 * time.Hour)

	invoices := []*domain.Invoice{
		{
			ID:          INV_LOGO_DESIGN,
			Merchant:    AddressAlice,
			Payer:       &dave,
			Amount:      decimal.RequireFromString("250.00"),
			Token:       domain.TokenCUSD,
			Description: "Logo design",
			Status:      domain.InvoiceStatusPaid,
			CreatedAt:   now.Add(-5 * 24 * time.Hour),
			PaidAt:      &paidAt,
		},
		{
			ID:          INV_WEB_DESIGN,
			Merchant:    AddressAlice,
			Amount:      decimal.RequireFromString("500.00"),
			Token:       domain.TokenCUSD,
			Description: "Web design services",
			Status:      domain.InvoiceStatusPending,
			CreatedAt:   now.Add(-24 * time.Hour),
		},
		{
			ID:          INV_CONSULTATION,
			Merchant:    AddressAlice,
			Payer:       &bob,
			Amount:      decimal.RequireFromString("75.00"),
			Token:       domain.TokenCELO,
			Description: "Consultation fee",
			Status:      domain.InvoiceStatusPending,
			CreatedAt:   now.Add(-12 * time.Hour),
		},
	}

	for _, invoice := range invoices {
		_, err := s.InvoiceRepo.GetByID(ctx, invoice.ID)
		if err == nil {
			continue
		}
		if domain.KindOf(err) != domain.KindNotFound {
			return err
		}
		if err := invoice.Validate(); err != nil {
			return err
		}
		if err := s.InvoiceRepo.Create(ctx, invoice); err != nil {
			return err
		}
	}
	return nil
}

func (s *DemoSeeder) seedHistory(ctx context.Context, now time.Time) error {
	count, err := s.TransactionRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hour := time.Hour
	day := 24 * time.Hour

	// oldest first
	feed := []*domain.FeedItem{
		{
			Type:      domain.FeedItemRequestSent,
			Actor:     AddressAlice,
			Recipient: AddressBob,
			Amount:    decimal.RequireFromString("50.00"),
			Token:     domain.TokenCUSD,
			Note:      "Rent share for December",
			Timestamp: now.Add(-3 * day),
		},
		{
			Type:      domain.FeedItemInvoicePaid,
			Actor:     AddressDave,
			Recipient: AddressAlice,
			Amount:    decimal.RequireFromString("250.00"),
			Token:     domain.TokenCUSD,
			Note:      "Logo design",
			InvoiceID: INV_LOGO_DESIGN,
			Timestamp: now.Add(-2 * day),
		},
		{
			Type:      domain.FeedItemInvoiceCreated,
			Actor:     AddressAlice,
			Amount:    decimal.RequireFromString("500.00"),
			Token:     domain.TokenCUSD,
			Note:      "Web design services",
			InvoiceID: INV_WEB_DESIGN,
			Timestamp: now.Add(-1 * day),
		},
		{
			Type:      domain.FeedItemReceive,
			Actor:     AddressCarol,
			Recipient: AddressAlice,
			Amount:    decimal.RequireFromString("100.00"),
			Token:     domain.TokenCELO,
			Note:      "Thanks for the help!",
			Timestamp: now.Add(-5 * hour),
		},
		{
			Type:      domain.FeedItemSend,
			Actor:     AddressAlice,
			Recipient: AddressBob,
			Amount:    decimal.RequireFromString("25.00"),
			Token:     domain.TokenCUSD,
			Note:      "Lunch at the cafe",
			Timestamp: now.Add(-2 * hour),
		},
	}

	// oldest first
	transactions := []*domain.Transaction{
		{
			ID:        TX_LOGO_DESIGN.String(),
			Kind:      domain.TransactionKindInvoicePaid,
			From:      AddressDave,
			To:        AddressAlice,
			Amount:    decimal.RequireFromString("250.00"),
			Token:     domain.TokenCUSD,
			Note:      "Logo design",
			Timestamp: now.Add(-2 * day),
		},
		{
			ID:        TX_THANKS.String(),
			Kind:      domain.TransactionKindReceive,
			From:      AddressCarol,
			To:        AddressAlice,
			Amount:    decimal.RequireFromString("100.00"),
			Token:     domain.TokenCELO,
			Note:      "Thanks for the help!",
			Timestamp: now.Add(-5 * hour),
		},
		{
			ID:        TX_LUNCH.String(),
			Kind:      domain.TransactionKindSend,
			From:      AddressAlice,
			To:        AddressBob,
			Amount:    decimal.RequireFromString("25.00"),
			Token:     domain.TokenCUSD,
			Note:      "Lunch at the cafe",
			Timestamp: now.Add(-2 * hour),
		},
	}

	for _, tx := range transactions {
		tx.TxHash = ledger.SimulatedTxHash(tx)
		if err := tx.Validate(); err != nil {
			return err
		}
		if err := s.TransactionRepo.Append(ctx, tx); err != nil {
			return err
		}
	}

	for i, item := range feed {
		item.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("cpay:demo-feed:%d", i))).String()
		if err := s.FeedRepo.Append(ctx, item); err != nil {
			return err
		}
	}
	return nil
}
