package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/simaogato/cpay-backend/internal/adapter/repository/memory"
	"github.com/simaogato/cpay-backend/internal/domain"
	"github.com/simaogato/cpay-backend/internal/logger"
	"github.com/simaogato/cpay-backend/internal/usecase/ledger"
	"github.com/simaogato/cpay-backend/internal/usecase/seeder"
	"github.com/simaogato/cpay-backend/internal/usecase/wallet"
)

const (
	alice = seeder.AddressAlice
	bob   = seeder.AddressBob
	carol = seeder.AddressCarol
)

var testAppConfig = domain.AppConfig{
	MockMode:   true,
	CeloRPCURL: "https://alfajores-forno.celo-testnet.org",
	ChainID:    domain.ChainIDCeloAlfajores,
	Contracts: domain.ContractAddresses{
		MerchantRegistry: "0x0000000000000000000000000000000000000000",
		CPayPayments:     "0x0000000000000000000000000000000000000000",
		CUSD:             "0x874069Fa1Eb16D44d622F2e0Ca25eeA172369bC1",
	},
}

// setupTestServer starts the service on an in-memory listener over a
// freshly seeded demo ledger
func setupTestServer(t *testing.T) (*Client, *ledger.LedgerService) {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	ledgerService := ledger.NewLedgerService(
		store.Balances, store.Transactions, store.Invoices,
		store.PaymentRequests, store.Feed, store.Users,
		ledger.WithLatency(ledger.NoLatency),
	)
	demo := seeder.NewDemoSeeder(store.Balances, store.Transactions, store.Invoices, store.Feed, store.Users, nil)
	require.NoError(t, demo.Seed(ctx))

	session := wallet.NewSessionService(true, alice, domain.DefaultChainID)

	lis := bufconn.Listen(1 << 20)
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			LoggingInterceptor(logger.Nop(), nil),
			WalletInterceptor(),
		),
		grpc.ChainStreamInterceptor(LoggingStreamInterceptor(logger.Nop(), nil)),
	)
	RegisterLedgerServiceServer(grpcServer, NewServer(ledgerService, session, testAppConfig, nil))

	go func() {
		_ = grpcServer.Serve(lis)
	}()
	t.Cleanup(grpcServer.Stop)

	conn, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewClient(conn), ledgerService
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestServer_TransferScenario(t *testing.T) {
	ctx := context.Background()
	client, _ := setupTestServer(t)
	asAlice := client.WithWallet(alice)

	tx, err := asAlice.Transfer(ctx, bob, amount("25.00"), domain.TokenCUSD, "Lunch")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionKindSend, tx.Kind)
	assert.Equal(t, alice, tx.From)
	assert.Equal(t, "25.00", domain.FormatAmount(tx.Amount))
	assert.NotEmpty(t, tx.TxHash)

	aliceBal, err := client.GetBalances(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "5653.90", domain.FormatAmount(aliceBal.CUSD))
	assert.Equal(t, "1234.56", domain.FormatAmount(aliceBal.CELO))

	bobBal, err := client.GetBalances(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, "25.00", domain.FormatAmount(bobBal.CUSD))

	// the connected wallet is the default address
	own, err := asAlice.GetBalances(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, alice, own.Address)

	feed, err := client.ListFeed(ctx, domain.FeedFilterSent)
	require.NoError(t, err)
	require.NotEmpty(t, feed)
	assert.Equal(t, "Lunch", feed[0].Note)
	assert.Equal(t, bob, feed[0].Recipient)
}

func TestServer_TransferErrors(t *testing.T) {
	ctx := context.Background()
	client, _ := setupTestServer(t)

	tests := []struct {
		name     string
		client   *Client
		to       string
		amount   string
		token    domain.Token
		wantCode codes.Code
		wantErr  error
	}{
		{
			name:     "insufficient balance",
			client:   client.WithWallet(alice),
			to:       bob,
			amount:   "99999.00",
			token:    domain.TokenCELO,
			wantCode: codes.FailedPrecondition,
			wantErr:  domain.ErrInsufficientBalance,
		},
		{
			name:     "zero amount",
			client:   client.WithWallet(alice),
			to:       bob,
			amount:   "0",
			token:    domain.TokenCUSD,
			wantCode: codes.InvalidArgument,
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name:     "self transfer",
			client:   client.WithWallet(alice),
			to:       alice,
			amount:   "1",
			token:    domain.TokenCUSD,
			wantCode: codes.InvalidArgument,
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name:     "no wallet",
			client:   client,
			to:       bob,
			amount:   "1",
			token:    domain.TokenCUSD,
			wantCode: codes.Unauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.client.Transfer(ctx, tt.to, amount(tt.amount), tt.token, "")

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.Equal(t, tt.wantCode, status.Code(err))
		})
	}

	aliceBal, err := client.GetBalances(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "1234.56", domain.FormatAmount(aliceBal.CELO))
	assert.Equal(t, "5678.90", domain.FormatAmount(aliceBal.CUSD))
}

func TestServer_RawRequestValidation(t *testing.T) {
	ctx := context.Background()
	client, _ := setupTestServer(t)
	asAlice := client.WithWallet(alice)

	_, err := asAlice.invoke(ctx, LedgerService_Transfer_FullMethodName, map[string]any{
		"to": bob, "amount": "lots", "token": "cUSD",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = asAlice.invoke(ctx, LedgerService_Transfer_FullMethodName, map[string]any{
		"to": bob, "amount": "1", "token": "DOGE",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// token symbols are case-insensitive
	f, err := asAlice.invoke(ctx, LedgerService_Transfer_FullMethodName, map[string]any{
		"to": bob, "amount": "1", "token": "cusd",
	})
	require.NoError(t, err)
	assert.Equal(t, "cUSD", f.str("token"))
	assert.Equal(t, "1.00", f.str("amount"))
}

func TestServer_RejectsExponentAmounts(t *testing.T) {
	ctx := context.Background()
	client, _ := setupTestServer(t)
	asAlice := client.WithWallet(alice)

	for _, raw := range []string{"1e20000000", "1e-2000000", "1e3"} {
		t.Run(raw, func(t *testing.T) {
			start := time.Now()
			_, err := asAlice.invoke(ctx, LedgerService_Transfer_FullMethodName, map[string]any{
				"to": bob, "amount": raw, "token": "cUSD",
			})
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Less(t, time.Since(start), time.Second)
		})
	}

	aliceBal, err := client.GetBalances(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "5678.90", domain.FormatAmount(aliceBal.CUSD))
}

func TestServer_InvoiceScenario(t *testing.T) {
	ctx := context.Background()
	client, _ := setupTestServer(t)

	invoice, err := client.WithWallet(bob).CreateInvoice(ctx, amount("500.00"), domain.TokenCUSD, "consulting", "")
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPending, invoice.Status)
	assert.Nil(t, invoice.Payer)
	assert.Nil(t, invoice.PaidAt)

	paid, err := client.WithWallet(alice).PayInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
	require.NotNil(t, paid.Payer)
	assert.Equal(t, alice, *paid.Payer)
	require.NotNil(t, paid.PaidAt)

	_, err = client.WithWallet(carol).PayInvoice(ctx, invoice.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)

	bobBal, err := client.GetBalances(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, "500.00", domain.FormatAmount(bobBal.CUSD))

	_, err = client.WithWallet(alice).PayInvoice(ctx, "inv_missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// seeded inv_003 asks bob for 75 CELO he does not hold
	_, err = client.WithWallet(bob).PayInvoice(ctx, seeder.INV_CONSULTATION)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
}

func TestServer_ListsSeededState(t *testing.T) {
	ctx := context.Background()
	client, _ := setupTestServer(t)

	txs, err := client.ListTransactions(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, txs, 3)

	invoices, err := client.ListInvoices(ctx, alice)
	require.NoError(t, err)
	require.Len(t, invoices, 3)
	for _, inv := range invoices {
		if inv.ID == seeder.INV_WEB_DESIGN {
			assert.Nil(t, inv.Payer)
		}
	}

	all, err := client.ListFeed(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 5)

	received, err := client.ListFeed(ctx, domain.FeedFilterReceived)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "Thanks for the help!", received[0].Note)

	invoiceItems, err := client.ListFeed(ctx, domain.FeedFilterInvoices)
	require.NoError(t, err)
	assert.Len(t, invoiceItems, 2)

	user, err := client.GetUser(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)

	_, err = client.GetUser(ctx, "0x0000000000000000000000000000000000000001")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = client.ListTransactions(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestServer_PaymentRequest(t *testing.T) {
	ctx := context.Background()
	client, _ := setupTestServer(t)

	req, err := client.WithWallet(carol).CreatePaymentRequest(ctx, bob, amount("12.50"), domain.TokenCELO, "tickets")
	require.NoError(t, err)
	assert.Equal(t, carol, req.Requester)
	assert.False(t, req.IsPaid)

	requests, err := client.ListPaymentRequests(ctx, bob)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "12.50", domain.FormatAmount(requests[0].Amount))
}

func TestServer_WalletSession(t *testing.T) {
	ctx := context.Background()
	client, _ := setupTestServer(t)

	state, err := client.GetWallet(ctx)
	require.NoError(t, err)
	assert.False(t, state.IsConnected)
	assert.Equal(t, "Not Connected", state.NetworkName)

	state, err = client.Connect(ctx, "", 0)
	require.NoError(t, err)
	assert.True(t, state.IsConnected)
	assert.Equal(t, alice, state.Address)
	assert.Equal(t, domain.ChainIDCeloAlfajores, state.ChainID)
	assert.True(t, state.IsCorrectNetwork)

	state, err = client.ChainChanged(ctx, domain.ChainIDCeloMainnet)
	require.NoError(t, err)
	assert.Equal(t, "Celo Mainnet", state.NetworkName)
	assert.True(t, state.IsCorrectNetwork)

	state, err = client.ChainChanged(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), state.ChainID)
	assert.False(t, state.IsCorrectNetwork)

	_, err = client.ChainChanged(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	state, err = client.SwitchNetwork(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Celo Alfajores", state.NetworkName)
	assert.True(t, state.IsCorrectNetwork)

	state, err = client.Disconnect(ctx)
	require.NoError(t, err)
	assert.False(t, state.IsConnected)

	_, err = client.SwitchNetwork(ctx)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	cfg, err := client.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, testAppConfig, cfg)
}

func TestServer_WatchStreamsChanges(t *testing.T) {
	client, ledgerService := setupTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.Watch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ledgerService.SubscriberCount())

	before := time.Now().Add(-time.Second)
	_, err = client.WithWallet(alice).Transfer(ctx, bob, amount("1"), domain.TokenCUSD, "")
	require.NoError(t, err)

	at, err := stream.Recv()
	require.NoError(t, err)
	assert.True(t, at.After(before))

	// failed mutations do not produce events
	_, err = client.WithWallet(bob).Transfer(ctx, alice, amount("1000"), domain.TokenCELO, "")
	require.Error(t, err)

	_, err = client.WithWallet(alice).Transfer(ctx, carol, amount("2"), domain.TokenCUSD, "")
	require.NoError(t, err)
	_, err = stream.Recv()
	require.NoError(t, err)

	cancel()
	assert.Eventually(t, func() bool { return ledgerService.SubscriberCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
