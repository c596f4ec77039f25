package grpc

import (
	"context"
	"errors"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/cpay-backend/internal/domain"
	"github.com/simaogato/cpay-backend/internal/metrics"
	"github.com/simaogato/cpay-backend/internal/usecase/ledger"
	"github.com/simaogato/cpay-backend/internal/usecase/wallet"
)

// ErrorDomain identifies ledger errors in google.rpc.ErrorInfo details
const ErrorDomain = "cpay.ledger"

// Server implements the LedgerService gRPC server
type Server struct {
	UnimplementedLedgerServiceServer

	LedgerService  *ledger.LedgerService
	SessionService *wallet.SessionService
	AppConfig      domain.AppConfig
	Metrics        *metrics.LedgerMetrics
	now            func() time.Time
}

// NewServer creates a new gRPC server instance
func NewServer(
	ledgerService *ledger.LedgerService,
	sessionService *wallet.SessionService,
	appConfig domain.AppConfig,
	m *metrics.LedgerMetrics,
) *Server {
	return &Server{
		LedgerService:  ledgerService,
		SessionService: sessionService,
		AppConfig:      appConfig,
		Metrics:        m,
		now:            time.Now,
	}
}

// GetBalances handles the GetBalances RPC.
// Without an explicit address the connected wallet is used.
func (s *Server) GetBalances(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	address := addressOrWallet(ctx, fieldsOf(req))

	balances, err := s.LedgerService.GetBalances(ctx, address)
	if err != nil {
		return nil, mapError(err)
	}
	return newStruct(balancesToMap(balances))
}

// Transfer handles the Transfer RPC; the sender is the connected wallet
func (s *Server) Transfer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fieldsOf(req)

	amount, err := f.amount("amount")
	if err != nil {
		return nil, mapError(err)
	}
	token, err := f.token("token")
	if err != nil {
		return nil, mapError(err)
	}

	from, _ := WalletFromContext(ctx)
	input := ledger.TransferInput{
		From:   from,
		To:     f.str("to"),
		Amount: amount,
		Token:  token,
		Note:   f.str("note"),
	}

	tx, err := s.LedgerService.Transfer(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}
	return newStruct(transactionToMap(tx))
}

// CreateInvoice handles the CreateInvoice RPC; the merchant is the connected wallet
func (s *Server) CreateInvoice(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fieldsOf(req)

	amount, err := f.amount("amount")
	if err != nil {
		return nil, mapError(err)
	}
	token, err := f.token("token")
	if err != nil {
		return nil, mapError(err)
	}

	merchant, _ := WalletFromContext(ctx)
	input := ledger.CreateInvoiceInput{
		Merchant:    merchant,
		Payer:       f.str("payer"),
		Amount:      amount,
		Token:       token,
		Description: f.str("description"),
	}

	invoice, err := s.LedgerService.CreateInvoice(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}
	return newStruct(invoiceToMap(invoice))
}

// PayInvoice handles the PayInvoice RPC; the payer is the connected wallet
func (s *Server) PayInvoice(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	payer, _ := WalletFromContext(ctx)

	invoice, err := s.LedgerService.PayInvoice(ctx, ledger.PayInvoiceInput{
		Payer:     payer,
		InvoiceID: fieldsOf(req).str("invoiceId"),
	})
	if err != nil {
		return nil, mapError(err)
	}
	return newStruct(invoiceToMap(invoice))
}

// CreatePaymentRequest handles the CreatePaymentRequest RPC; the requester is the connected wallet
func (s *Server) CreatePaymentRequest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fieldsOf(req)

	amount, err := f.amount("amount")
	if err != nil {
		return nil, mapError(err)
	}
	token, err := f.token("token")
	if err != nil {
		return nil, mapError(err)
	}

	requester, _ := WalletFromContext(ctx)
	request, err := s.LedgerService.CreatePaymentRequest(ctx, ledger.PaymentRequestInput{
		Requester: requester,
		Payer:     f.str("payer"),
		Amount:    amount,
		Token:     token,
		Note:      f.str("note"),
	})
	if err != nil {
		return nil, mapError(err)
	}
	return newStruct(paymentRequestToMap(request))
}

// ListTransactions handles the ListTransactions RPC
func (s *Server) ListTransactions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	txs, err := s.LedgerService.ListTransactions(ctx, addressOrWallet(ctx, fieldsOf(req)))
	if err != nil {
		return nil, mapError(err)
	}
	return newStruct(listOf("transactions", txs, transactionToMap))
}

// ListInvoices handles the ListInvoices RPC
func (s *Server) ListInvoices(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	invoices, err := s.LedgerService.ListInvoices(ctx, addressOrWallet(ctx, fieldsOf(req)))
	if err != nil {
		return nil, mapError(err)
	}
	return newStruct(listOf("invoices", invoices, invoiceToMap))
}

// ListPaymentRequests handles the ListPaymentRequests RPC
func (s *Server) ListPaymentRequests(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	requests, err := s.LedgerService.ListPaymentRequests(ctx, addressOrWallet(ctx, fieldsOf(req)))
	if err != nil {
		return nil, mapError(err)
	}
	return newStruct(listOf("paymentRequests", requests, paymentRequestToMap))
}

// ListFeed handles the ListFeed RPC. Unknown filters behave as "all".
func (s *Server) ListFeed(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	filter := domain.ParseFeedFilter(fieldsOf(req).str("filter"))

	items, err := s.LedgerService.ListFeed(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	return newStruct(listOf("items", items, feedItemToMap))
}

// GetUser handles the GetUser RPC
func (s *Server) GetUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	user, err := s.LedgerService.GetUser(ctx, fieldsOf(req).str("address"))
	if err != nil {
		return nil, mapError(err)
	}
	return newStruct(userToMap(user))
}

// Connect handles the Connect RPC
func (s *Server) Connect(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fieldsOf(req)

	state, err := s.SessionService.Connect(ctx, wallet.ConnectInput{
		Address: f.str("address"),
		ChainID: int64(f.num("chainId")),
	})
	if err != nil {
		return nil, mapError(err)
	}
	return newStruct(walletToMap(state))
}

// Disconnect handles the Disconnect RPC
func (s *Server) Disconnect(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return newStruct(walletToMap(s.SessionService.Disconnect(ctx)))
}

// SwitchNetwork handles the SwitchNetwork RPC
func (s *Server) SwitchNetwork(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	state, err := s.SessionService.SwitchNetwork(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return newStruct(walletToMap(state))
}

// ChainChanged handles the ChainChanged RPC: the wallet reports the chain it
// moved to on its own. A missing or zero chainId is rejected.
func (s *Server) ChainChanged(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	chainID := int64(fieldsOf(req).num("chainId"))
	if chainID <= 0 {
		return nil, mapError(domain.InvalidInputf("chainId must be positive"))
	}
	return newStruct(walletToMap(s.SessionService.ChainChanged(ctx, chainID)))
}

// GetWallet handles the GetWallet RPC
func (s *Server) GetWallet(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return newStruct(walletToMap(s.SessionService.State()))
}

// GetConfig handles the GetConfig RPC
func (s *Server) GetConfig(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return newStruct(appConfigToMap(s.AppConfig))
}

// Watch streams one message per ledger change until the client goes away.
// Bursts of changes may be coalesced into a single message.
func (s *Server) Watch(_ *structpb.Struct, stream LedgerService_WatchServer) error {
	ctx := stream.Context()
	changed := make(chan struct{}, 1)

	sub := s.LedgerService.Subscribe(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer sub.Unsubscribe()

	s.Metrics.SubscriberAdded("grpc")
	defer s.Metrics.SubscriberRemoved("grpc")

	// empty headers tell the client the subscription is live
	if err := stream.SendHeader(nil); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			msg, err := newStruct(map[string]any{
				"type": "ledger_changed",
				"at":   millis(s.now()),
			})
			if err != nil {
				return status.Error(codes.Internal, err.Error())
			}
			if err := stream.Send(msg); err != nil {
				return err
			}
		}
	}
}

// addressOrWallet prefers the request's address over the connected wallet
func addressOrWallet(ctx context.Context, f fields) string {
	if address := f.str("address"); address != "" {
		return address
	}
	address, _ := WalletFromContext(ctx)
	return address
}

// mapError converts domain errors to gRPC status errors.
// The error kind travels as the Reason of a google.rpc.ErrorInfo detail.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var code codes.Code
	kind := domain.KindOf(err)
	switch kind {
	case domain.KindInvalidInput:
		code = codes.InvalidArgument
	case domain.KindNotFound:
		code = codes.NotFound
	case domain.KindAlreadyPaid, domain.KindInsufficientBalance:
		code = codes.FailedPrecondition
	default:
		return status.Errorf(codes.Internal, "%s", err.Error())
	}

	msg := err.Error()
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		msg = domainErr.Message
	}

	st, detailErr := status.New(code, msg).WithDetails(&errdetails.ErrorInfo{
		Reason: string(kind),
		Domain: ErrorDomain,
	})
	if detailErr != nil {
		return status.Error(code, msg)
	}
	return st.Err()
}
