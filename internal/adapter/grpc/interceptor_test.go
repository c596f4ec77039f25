package grpc

import (
	"bytes"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/simaogato/cpay-backend/internal/domain"
	"github.com/simaogato/cpay-backend/internal/logger"
	"github.com/simaogato/cpay-backend/internal/metrics"
)

func TestWalletInterceptor(t *testing.T) {
	walletAddress := "0x742d35cc6634c0532925a3b844bc9e7595f8ff71"
	interceptor := WalletInterceptor()

	tests := []struct {
		name           string
		method         string
		ctx            context.Context
		handlerCalled  bool
		expectedWallet string
		expectedCode   codes.Code
		expectedErrMsg string
	}{
		{
			name:   "Mutation With Wallet",
			method: LedgerService_Transfer_FullMethodName,
			ctx: metadata.NewIncomingContext(
				context.Background(),
				metadata.Pairs(WalletMetadataKey, walletAddress),
			),
			handlerCalled:  true,
			expectedWallet: walletAddress,
			expectedCode:   codes.OK,
		},
		{
			name:   "Mutation With Malformed Wallet",
			method: LedgerService_PayInvoice_FullMethodName,
			ctx: metadata.NewIncomingContext(
				context.Background(),
				metadata.Pairs(WalletMetadataKey, "alice"),
			),
			handlerCalled:  false,
			expectedCode:   codes.InvalidArgument,
			expectedErrMsg: "invalid wallet address",
		},
		{
			name:           "Mutation Without Metadata",
			method:         LedgerService_CreateInvoice_FullMethodName,
			ctx:            context.Background(),
			handlerCalled:  false,
			expectedCode:   codes.Unauthenticated,
			expectedErrMsg: "missing metadata",
		},
		{
			name:   "Mutation Without Wallet Header",
			method: LedgerService_CreatePaymentRequest_FullMethodName,
			ctx: metadata.NewIncomingContext(
				context.Background(),
				metadata.Pairs("other-header", "value"),
			),
			handlerCalled:  false,
			expectedCode:   codes.Unauthenticated,
			expectedErrMsg: "wallet not connected",
		},
		{
			name:          "Query Without Wallet",
			method:        LedgerService_ListFeed_FullMethodName,
			ctx:           context.Background(),
			handlerCalled: true,
			expectedCode:  codes.OK,
		},
		{
			name:   "Query With Wallet",
			method: LedgerService_GetBalances_FullMethodName,
			ctx: metadata.NewIncomingContext(
				context.Background(),
				metadata.Pairs(WalletMetadataKey, walletAddress),
			),
			handlerCalled:  true,
			expectedWallet: walletAddress,
			expectedCode:   codes.OK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			var seenWallet string
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				handlerCalled = true
				seenWallet, _ = WalletFromContext(ctx)
				return "success", nil
			}

			info := &grpc.UnaryServerInfo{
				FullMethod: tt.method,
			}

			resp, err := interceptor(tt.ctx, "test-request", info, handler)

			assert.Equal(t, tt.handlerCalled, handlerCalled, "handler called status mismatch")

			if tt.expectedCode == codes.OK {
				assert.NoError(t, err)
				assert.Equal(t, "success", resp)
				assert.Equal(t, tt.expectedWallet, seenWallet)
			} else {
				assert.Error(t, err)
				st, ok := status.FromError(err)
				assert.True(t, ok, "error should be a gRPC status")
				assert.Equal(t, tt.expectedCode, st.Code())
				assert.Contains(t, st.Message(), tt.expectedErrMsg)
			}
		})
	}
}

func TestLoggingInterceptor(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.New(logger.Options{ServiceName: "cpay-test", Output: buf})
	reg := prometheus.NewRegistry()
	interceptor := LoggingInterceptor(log, metrics.NewLedgerMetrics(reg))

	info := &grpc.UnaryServerInfo{FullMethod: LedgerService_Transfer_FullMethodName}
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(WalletMetadataKey, "0xabc"))

	_, err := interceptor(ctx, "req", info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, mapError(domain.NewError(domain.KindInsufficientBalance, "insufficient balance"))
	})
	require.Error(t, err)

	resp, err := interceptor(ctx, "req", info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)

	out := buf.String()
	assert.Contains(t, out, `"method":"/cpay.ledger.v1.LedgerService/Transfer"`)
	assert.Contains(t, out, `"wallet_address":"0xabc"`)
	assert.Contains(t, out, `"code":"FailedPrecondition"`)
	assert.Contains(t, out, "rpc completed")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range mfs {
		if mf.GetName() == "cpay_rpc_requests_total" {
			for _, metric := range mf.GetMetric() {
				total += metric.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, 2.0, total)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode codes.Code
		expectedMsg  string
	}{
		{"invalid input", domain.InvalidInputf("amount must be positive"), codes.InvalidArgument, "amount must be positive"},
		{"not found", domain.NotFoundf("invoice inv_x not found"), codes.NotFound, "invoice inv_x not found"},
		{"already paid", domain.ErrAlreadyPaid, codes.FailedPrecondition, "invoice already paid"},
		{"insufficient balance", domain.NewError(domain.KindInsufficientBalance, "insufficient balance: x"), codes.FailedPrecondition, "insufficient balance"},
		{"unknown", assert.AnError, codes.Internal, assert.AnError.Error()},
		{"status passthrough", status.Error(codes.Unauthenticated, "nope"), codes.Unauthenticated, "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError(tt.err)

			st, ok := status.FromError(err)
			require.True(t, ok)
			assert.Equal(t, tt.expectedCode, st.Code())
			assert.Contains(t, st.Message(), tt.expectedMsg)
		})
	}

	assert.NoError(t, mapError(nil))
}

func TestMapError_RoundTripsKind(t *testing.T) {
	err := fromStatus(mapError(domain.ErrAlreadyPaid))

	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)
	assert.Equal(t, domain.KindAlreadyPaid, domain.KindOf(err))
}
