package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/bank/usecase"
)

type GrpcServer struct {
	teller *usecase.Teller
}

func NewGrpcServer(teller *usecase.Teller) *GrpcServer {
	return &GrpcServer{
		teller: teller,
	}
}

func (s *GrpcServer) OpenAccount(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.teller.OpenAccount(ctx, req.GetValue()); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

// Deposit 的金額保留原始 JSON 型別，字串或布林會被 Teller 拒絕
func (s *GrpcServer) Deposit(ctx context.Context, req *structpb.Value) (*wrapperspb.StringValue, error) {
	msg, err := s.teller.Deposit(ctx, req.AsInterface())
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(msg), nil
}

func (s *GrpcServer) Withdraw(ctx context.Context, req *structpb.Value) (*wrapperspb.StringValue, error) {
	msg, err := s.teller.Withdraw(ctx, req.AsInterface())
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(msg), nil
}

func (s *GrpcServer) GetBalance(ctx context.Context, req *emptypb.Empty) (*wrapperspb.DoubleValue, error) {
	balance, err := s.teller.Balance()
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Double(balance), nil
}

// GetHistory 每筆交易轉成 {id, kind, amount, created_at} 的 Struct
func (s *GrpcServer) GetHistory(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error) {
	history, err := s.teller.History(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	values := make([]any, 0, len(history))
	for _, tran := range history {
		data, err := json.Marshal(tran)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		var fields map[string]any
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		values = append(values, fields)
	}

	list, err := structpb.NewList(values)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return list, nil
}

// toStatus 將業務錯誤對應到 gRPC status code
func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNoAccount):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// LoggingInterceptor 記錄每個 unary 呼叫的方法、耗時與結果
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		attrs := []any{
			"method", info.FullMethod,
			"duration", time.Since(start),
			"code", status.Code(err).String(),
		}
		if err != nil {
			logger.Warn("grpc call failed", append(attrs, "error", err)...)
		} else {
			logger.Debug("grpc call", attrs...)
		}
		return resp, err
	}
}

var _ TellerServer = (*GrpcServer)(nil)
