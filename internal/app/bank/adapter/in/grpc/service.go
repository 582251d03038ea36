package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName 是 Teller 服務的完整名稱
const ServiceName = "bank.v1.Teller"

const (
	methodOpenAccount = "/" + ServiceName + "/OpenAccount"
	methodDeposit     = "/" + ServiceName + "/Deposit"
	methodWithdraw    = "/" + ServiceName + "/Withdraw"
	methodGetBalance  = "/" + ServiceName + "/GetBalance"
	methodGetHistory  = "/" + ServiceName + "/GetHistory"
)

// TellerServer 是 bank.v1.Teller 的服務端介面
//
// 請求與回應都使用 protobuf 的 well-known types，
// 金額以 structpb.Value 傳遞，型別檢查交給 usecase.Teller。
type TellerServer interface {
	OpenAccount(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	Deposit(context.Context, *structpb.Value) (*wrapperspb.StringValue, error)
	Withdraw(context.Context, *structpb.Value) (*wrapperspb.StringValue, error)
	GetBalance(context.Context, *emptypb.Empty) (*wrapperspb.DoubleValue, error)
	GetHistory(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
}

// RegisterTellerServer 將 TellerServer 註冊到 gRPC server
func RegisterTellerServer(s grpc.ServiceRegistrar, srv TellerServer) {
	s.RegisterService(&tellerServiceDesc, srv)
}

var tellerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TellerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "OpenAccount", Handler: openAccountHandler},
		{MethodName: "Deposit", Handler: depositHandler},
		{MethodName: "Withdraw", Handler: withdrawHandler},
		{MethodName: "GetBalance", Handler: getBalanceHandler},
		{MethodName: "GetHistory", Handler: getHistoryHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func openAccountHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TellerServer).OpenAccount(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodOpenAccount}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TellerServer).OpenAccount(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func depositHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TellerServer).Deposit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodDeposit}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TellerServer).Deposit(ctx, req.(*structpb.Value))
	}
	return interceptor(ctx, in, info, handler)
}

func withdrawHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TellerServer).Withdraw(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodWithdraw}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TellerServer).Withdraw(ctx, req.(*structpb.Value))
	}
	return interceptor(ctx, in, info, handler)
}

func getBalanceHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TellerServer).GetBalance(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetBalance}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TellerServer).GetBalance(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getHistoryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TellerServer).GetHistory(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetHistory}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TellerServer).GetHistory(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}
