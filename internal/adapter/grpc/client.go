package grpc

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/cpay-backend/internal/domain"
)

// Client is a typed LedgerService client.
// Ledger failures come back as *domain.Error so errors.Is works across the wire.
type Client struct {
	conn   grpc.ClientConnInterface
	wallet string
}

// NewClient creates a client without a connected wallet
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// WithWallet returns a copy of the client acting as address
func (c *Client) WithWallet(address string) *Client {
	return &Client{conn: c.conn, wallet: address}
}

func (c *Client) invoke(ctx context.Context, method string, req map[string]any) (fields, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	if c.wallet != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, WalletMetadataKey, c.wallet)
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, in, out); err != nil {
		return nil, fromStatus(err)
	}
	return fieldsOf(out), nil
}

func (c *Client) GetBalances(ctx context.Context, address string) (domain.Balances, error) {
	f, err := c.invoke(ctx, LedgerService_GetBalances_FullMethodName, map[string]any{"address": address})
	if err != nil {
		return domain.Balances{}, err
	}
	return balancesFromFields(f), nil
}

func (c *Client) Transfer(ctx context.Context, to string, amount decimal.Decimal, token domain.Token, note string) (*domain.Transaction, error) {
	f, err := c.invoke(ctx, LedgerService_Transfer_FullMethodName, map[string]any{
		"to":     to,
		"amount": amount.String(),
		"token":  string(token),
		"note":   note,
	})
	if err != nil {
		return nil, err
	}
	return transactionFromFields(f), nil
}

// CreateInvoice issues an invoice; an empty payer leaves it open to anyone
func (c *Client) CreateInvoice(ctx context.Context, amount decimal.Decimal, token domain.Token, description, payer string) (*domain.Invoice, error) {
	f, err := c.invoke(ctx, LedgerService_CreateInvoice_FullMethodName, map[string]any{
		"amount":      amount.String(),
		"token":       string(token),
		"description": description,
		"payer":       payer,
	})
	if err != nil {
		return nil, err
	}
	return invoiceFromFields(f), nil
}

func (c *Client) PayInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	f, err := c.invoke(ctx, LedgerService_PayInvoice_FullMethodName, map[string]any{"invoiceId": invoiceID})
	if err != nil {
		return nil, err
	}
	return invoiceFromFields(f), nil
}

func (c *Client) CreatePaymentRequest(ctx context.Context, payer string, amount decimal.Decimal, token domain.Token, note string) (*domain.PaymentRequest, error) {
	f, err := c.invoke(ctx, LedgerService_CreatePaymentRequest_FullMethodName, map[string]any{
		"payer":  payer,
		"amount": amount.String(),
		"token":  string(token),
		"note":   note,
	})
	if err != nil {
		return nil, err
	}
	return paymentRequestFromFields(f), nil
}

func (c *Client) ListTransactions(ctx context.Context, address string) ([]*domain.Transaction, error) {
	f, err := c.invoke(ctx, LedgerService_ListTransactions_FullMethodName, map[string]any{"address": address})
	if err != nil {
		return nil, err
	}
	return collect(f.list("transactions"), transactionFromFields), nil
}

func (c *Client) ListInvoices(ctx context.Context, address string) ([]*domain.Invoice, error) {
	f, err := c.invoke(ctx, LedgerService_ListInvoices_FullMethodName, map[string]any{"address": address})
	if err != nil {
		return nil, err
	}
	return collect(f.list("invoices"), invoiceFromFields), nil
}

func (c *Client) ListPaymentRequests(ctx context.Context, address string) ([]*domain.PaymentRequest, error) {
	f, err := c.invoke(ctx, LedgerService_ListPaymentRequests_FullMethodName, map[string]any{"address": address})
	if err != nil {
		return nil, err
	}
	return collect(f.list("paymentRequests"), paymentRequestFromFields), nil
}

func (c *Client) ListFeed(ctx context.Context, filter domain.FeedFilter) ([]*domain.FeedItem, error) {
	f, err := c.invoke(ctx, LedgerService_ListFeed_FullMethodName, map[string]any{"filter": string(filter)})
	if err != nil {
		return nil, err
	}
	return collect(f.list("items"), feedItemFromFields), nil
}

func (c *Client) GetUser(ctx context.Context, address string) (*domain.UserProfile, error) {
	f, err := c.invoke(ctx, LedgerService_GetUser_FullMethodName, map[string]any{"address": address})
	if err != nil {
		return nil, err
	}
	return userFromFields(f), nil
}

// Connect attaches a wallet to the server session. chainID is ignored in mock mode.
func (c *Client) Connect(ctx context.Context, address string, chainID int64) (domain.WalletState, error) {
	f, err := c.invoke(ctx, LedgerService_Connect_FullMethodName, map[string]any{
		"address": address,
		"chainId": chainID,
	})
	if err != nil {
		return domain.WalletState{}, err
	}
	return walletFromFields(f), nil
}

func (c *Client) Disconnect(ctx context.Context) (domain.WalletState, error) {
	return c.walletCall(ctx, LedgerService_Disconnect_FullMethodName)
}

func (c *Client) SwitchNetwork(ctx context.Context) (domain.WalletState, error) {
	return c.walletCall(ctx, LedgerService_SwitchNetwork_FullMethodName)
}

// ChainChanged reports a chain switch made inside the wallet
func (c *Client) ChainChanged(ctx context.Context, chainID int64) (domain.WalletState, error) {
	f, err := c.invoke(ctx, LedgerService_ChainChanged_FullMethodName, map[string]any{
		"chainId": chainID,
	})
	if err != nil {
		return domain.WalletState{}, err
	}
	return walletFromFields(f), nil
}

func (c *Client) GetWallet(ctx context.Context) (domain.WalletState, error) {
	return c.walletCall(ctx, LedgerService_GetWallet_FullMethodName)
}

func (c *Client) walletCall(ctx context.Context, method string) (domain.WalletState, error) {
	f, err := c.invoke(ctx, method, map[string]any{})
	if err != nil {
		return domain.WalletState{}, err
	}
	return walletFromFields(f), nil
}

func (c *Client) GetConfig(ctx context.Context) (domain.AppConfig, error) {
	f, err := c.invoke(ctx, LedgerService_GetConfig_FullMethodName, map[string]any{})
	if err != nil {
		return domain.AppConfig{}, err
	}
	return appConfigFromFields(f), nil
}

// WatchStream receives ledger change events
type WatchStream struct {
	stream grpc.ClientStream
}

// Recv blocks until the next change and returns its server time
func (w *WatchStream) Recv() (time.Time, error) {
	msg := new(structpb.Struct)
	if err := w.stream.RecvMsg(msg); err != nil {
		return time.Time{}, fromStatus(err)
	}
	return fieldsOf(msg).timestamp("at"), nil
}

// Watch subscribes to ledger changes. It returns once the server has
// registered the subscription; cancel ctx to stop.
func (c *Client) Watch(ctx context.Context) (*WatchStream, error) {
	stream, err := c.conn.NewStream(ctx, &LedgerService_ServiceDesc.Streams[0], LedgerService_Watch_FullMethodName)
	if err != nil {
		return nil, fromStatus(err)
	}
	if err := stream.SendMsg(&structpb.Struct{}); err != nil {
		return nil, fromStatus(err)
	}
	if err := stream.CloseSend(); err != nil {
		return nil, fromStatus(err)
	}
	if _, err := stream.Header(); err != nil {
		return nil, fromStatus(err)
	}
	return &WatchStream{stream: stream}, nil
}

func collect[T any](items []fields, conv func(fields) T) []T {
	out := make([]T, 0, len(items))
	for _, f := range items {
		out = append(out, conv(f))
	}
	return out
}

// fromStatus restores the domain error carried by a status, if any
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	for _, detail := range st.Details() {
		info, ok := detail.(*errdetails.ErrorInfo)
		if ok && info.GetDomain() == ErrorDomain {
			return domain.NewError(domain.ErrorKind(info.GetReason()), "%s", st.Message())
		}
	}
	return err
}
