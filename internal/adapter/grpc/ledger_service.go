package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
// Requests and responses are google.protobuf.Struct messages.
const ServiceName = "cpay.ledger.v1.LedgerService"

const (
	LedgerService_GetBalances_FullMethodName          = "/" + ServiceName + "/GetBalances"
	LedgerService_Transfer_FullMethodName             = "/" + ServiceName + "/Transfer"
	LedgerService_CreateInvoice_FullMethodName        = "/" + ServiceName + "/CreateInvoice"
	LedgerService_PayInvoice_FullMethodName           = "/" + ServiceName + "/PayInvoice"
	LedgerService_CreatePaymentRequest_FullMethodName = "/" + ServiceName + "/CreatePaymentRequest"
	LedgerService_ListTransactions_FullMethodName     = "/" + ServiceName + "/ListTransactions"
	LedgerService_ListInvoices_FullMethodName         = "/" + ServiceName + "/ListInvoices"
	LedgerService_ListPaymentRequests_FullMethodName  = "/" + ServiceName + "/ListPaymentRequests"
	LedgerService_ListFeed_FullMethodName             = "/" + ServiceName + "/ListFeed"
	LedgerService_GetUser_FullMethodName              = "/" + ServiceName + "/GetUser"
	LedgerService_Connect_FullMethodName              = "/" + ServiceName + "/Connect"
	LedgerService_Disconnect_FullMethodName           = "/" + ServiceName + "/Disconnect"
	LedgerService_SwitchNetwork_FullMethodName        = "/" + ServiceName + "/SwitchNetwork"
	LedgerService_ChainChanged_FullMethodName         = "/" + ServiceName + "/ChainChanged"
	LedgerService_GetWallet_FullMethodName            = "/" + ServiceName + "/GetWallet"
	LedgerService_GetConfig_FullMethodName            = "/" + ServiceName + "/GetConfig"
	LedgerService_Watch_FullMethodName                = "/" + ServiceName + "/Watch"
)

// LedgerServiceServer is the server API for LedgerService
type LedgerServiceServer interface {
	GetBalances(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Transfer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateInvoice(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PayInvoice(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreatePaymentRequest(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTransactions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListInvoices(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListPaymentRequests(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListFeed(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Connect(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Disconnect(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SwitchNetwork(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ChainChanged(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetWallet(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetConfig(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Watch(*structpb.Struct, LedgerService_WatchServer) error
}

// LedgerService_WatchServer is the server side of the Watch stream
type LedgerService_WatchServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type ledgerServiceWatchServer struct {
	grpc.ServerStream
}

func (x *ledgerServiceWatchServer) Send(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
}

// UnimplementedLedgerServiceServer can be embedded to have forward compatible implementations
type UnimplementedLedgerServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedLedgerServiceServer) GetBalances(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("GetBalances")
}
func (UnimplementedLedgerServiceServer) Transfer(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("Transfer")
}
func (UnimplementedLedgerServiceServer) CreateInvoice(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("CreateInvoice")
}
func (UnimplementedLedgerServiceServer) PayInvoice(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("PayInvoice")
}
func (UnimplementedLedgerServiceServer) CreatePaymentRequest(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("CreatePaymentRequest")
}
func (UnimplementedLedgerServiceServer) ListTransactions(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("ListTransactions")
}
func (UnimplementedLedgerServiceServer) ListInvoices(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("ListInvoices")
}
func (UnimplementedLedgerServiceServer) ListPaymentRequests(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("ListPaymentRequests")
}
func (UnimplementedLedgerServiceServer) ListFeed(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("ListFeed")
}
func (UnimplementedLedgerServiceServer) GetUser(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("GetUser")
}
func (UnimplementedLedgerServiceServer) Connect(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("Connect")
}
func (UnimplementedLedgerServiceServer) Disconnect(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("Disconnect")
}
func (UnimplementedLedgerServiceServer) SwitchNetwork(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("SwitchNetwork")
}
func (UnimplementedLedgerServiceServer) ChainChanged(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("ChainChanged")
}
func (UnimplementedLedgerServiceServer) GetWallet(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("GetWallet")
}
func (UnimplementedLedgerServiceServer) GetConfig(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("GetConfig")
}
func (UnimplementedLedgerServiceServer) Watch(*structpb.Struct, LedgerService_WatchServer) error {
	return unimplemented("Watch")
}

type unaryMethod func(LedgerServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts a LedgerServiceServer method to a grpc.MethodHandler
func unaryHandler(fullMethod string, call unaryMethod) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LedgerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LedgerServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(LedgerServiceServer).Watch(in, &ledgerServiceWatchServer{stream})
}

// LedgerService_ServiceDesc is the grpc.ServiceDesc for LedgerService
var LedgerService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetBalances", Handler: unaryHandler(LedgerService_GetBalances_FullMethodName, LedgerServiceServer.GetBalances)},
		{MethodName: "Transfer", Handler: unaryHandler(LedgerService_Transfer_FullMethodName, LedgerServiceServer.Transfer)},
		{MethodName: "CreateInvoice", Handler: unaryHandler(LedgerService_CreateInvoice_FullMethodName, LedgerServiceServer.CreateInvoice)},
		{MethodName: "PayInvoice", Handler: unaryHandler(LedgerService_PayInvoice_FullMethodName, LedgerServiceServer.PayInvoice)},
		{MethodName: "CreatePaymentRequest", Handler: unaryHandler(LedgerService_CreatePaymentRequest_FullMethodName, LedgerServiceServer.CreatePaymentRequest)},
		{MethodName: "ListTransactions", Handler: unaryHandler(LedgerService_ListTransactions_FullMethodName, LedgerServiceServer.ListTransactions)},
		{MethodName: "ListInvoices", Handler: unaryHandler(LedgerService_ListInvoices_FullMethodName, LedgerServiceServer.ListInvoices)},
		{MethodName: "ListPaymentRequests", Handler: unaryHandler(LedgerService_ListPaymentRequests_FullMethodName, LedgerServiceServer.ListPaymentRequests)},
		{MethodName: "ListFeed", Handler: unaryHandler(LedgerService_ListFeed_FullMethodName, LedgerServiceServer.ListFeed)},
		{MethodName: "GetUser", Handler: unaryHandler(LedgerService_GetUser_FullMethodName, LedgerServiceServer.GetUser)},
		{MethodName: "Connect", Handler: unaryHandler(LedgerService_Connect_FullMethodName, LedgerServiceServer.Connect)},
		{MethodName: "Disconnect", Handler: unaryHandler(LedgerService_Disconnect_FullMethodName, LedgerServiceServer.Disconnect)},
		{MethodName: "SwitchNetwork", Handler: unaryHandler(LedgerService_SwitchNetwork_FullMethodName, LedgerServiceServer.SwitchNetwork)},
		{MethodName: "ChainChanged", Handler: unaryHandler(LedgerService_ChainChanged_FullMethodName, LedgerServiceServer.ChainChanged)},
		{MethodName: "GetWallet", Handler: unaryHandler(LedgerService_GetWallet_FullMethodName, LedgerServiceServer.GetWallet)},
		{MethodName: "GetConfig", Handler: unaryHandler(LedgerService_GetConfig_FullMethodName, LedgerServiceServer.GetConfig)},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
	Metadata: "cpay/ledger/v1/ledger.proto",
}

// RegisterLedgerServiceServer registers srv on s
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerService_ServiceDesc, srv)
}
