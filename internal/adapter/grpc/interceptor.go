package grpc

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/simaogato/cpay-backend/internal/logger"
	"github.com/simaogato/cpay-backend/internal/metrics"
)

// WalletMetadataKey carries the connected wallet address
const WalletMetadataKey = "x-wallet-address"

var addressValidator = validator.New()

// mutationMethods act on behalf of the connected wallet
var mutationMethods = map[string]bool{
	LedgerService_Transfer_FullMethodName:             true,
	LedgerService_CreateInvoice_FullMethodName:        true,
	LedgerService_PayInvoice_FullMethodName:           true,
	LedgerService_CreatePaymentRequest_FullMethodName: true,
}

type walletKey struct{}

// ContextWithWallet attaches the connected wallet address
func ContextWithWallet(ctx context.Context, address string) context.Context {
	return context.WithValue(ctx, walletKey{}, address)
}

// WalletFromContext returns the connected wallet address, if any
func WalletFromContext(ctx context.Context) (string, bool) {
	address, ok := ctx.Value(walletKey{}).(string)
	return address, ok && address != ""
}

// WalletInterceptor returns a gRPC unary server interceptor that reads the
// connected wallet from request metadata.
// Mutation methods fail with status.Unauthenticated when it is missing and
// with status.InvalidArgument when it is not an address. Other methods
// accept calls without a wallet.
func WalletInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		required := mutationMethods[info.FullMethod]

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			if required {
				return nil, status.Error(codes.Unauthenticated, "missing metadata")
			}
			return handler(ctx, req)
		}

		addresses := md.Get(WalletMetadataKey)
		if len(addresses) == 0 || addresses[0] == "" {
			if required {
				return nil, status.Error(codes.Unauthenticated, "wallet not connected")
			}
			return handler(ctx, req)
		}

		if err := addressValidator.Var(addresses[0], "eth_addr"); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid wallet address %q", addresses[0])
		}

		return handler(ContextWithWallet(ctx, addresses[0]), req)
	}
}

// LoggingInterceptor returns a gRPC unary server interceptor that logs each
// call and records its outcome in metrics.
func LoggingInterceptor(log *logger.Logger, m *metrics.LedgerMetrics) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		ctx = log.WithMethod(ctx, info.FullMethod)
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if addresses := md.Get(WalletMetadataKey); len(addresses) > 0 {
				ctx = log.WithAddress(ctx, addresses[0])
			}
		}

		resp, err := handler(ctx, req)

		elapsed := time.Since(start)
		code := status.Code(err)
		m.ObserveRPC(info.FullMethod, code.String(), elapsed)
		logCall(ctx, log, code, elapsed, err)
		return resp, err
	}
}

// LoggingStreamInterceptor is the streaming counterpart of LoggingInterceptor
func LoggingStreamInterceptor(log *logger.Logger, m *metrics.LedgerMetrics) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		start := time.Now()
		ctx := log.WithMethod(ss.Context(), info.FullMethod)
		log.Debug(ctx, "stream opened")

		err := handler(srv, ss)

		elapsed := time.Since(start)
		code := status.Code(err)
		m.ObserveRPC(info.FullMethod, code.String(), elapsed)
		logCall(ctx, log, code, elapsed, err)
		return err
	}
}

func logCall(ctx context.Context, log *logger.Logger, code codes.Code, elapsed time.Duration, err error) {
	ctx = log.WithFields(ctx, map[string]any{
		"code":        code.String(),
		"duration_ms": elapsed.Milliseconds(),
	})
	switch code {
	case codes.OK:
		log.Info(ctx, "rpc completed")
	case codes.Internal, codes.Unknown:
		log.Error(ctx, "rpc failed", err)
	default:
		log.Warn(ctx, "rpc rejected", err)
	}
}
