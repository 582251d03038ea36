package grpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
)

// Client 是 bank.v1.Teller 的客戶端
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) OpenAccount(ctx context.Context, owner string, opts ...grpc.CallOption) error {
	out := new(emptypb.Empty)
	return c.cc.Invoke(ctx, methodOpenAccount, wrapperspb.String(owner), out, opts...)
}

// Deposit 存款，amount 以原始型別送出，由服務端驗證
func (c *Client) Deposit(ctx context.Context, amount any, opts ...grpc.CallOption) (string, error) {
	return c.move(ctx, methodDeposit, amount, opts...)
}

func (c *Client) Withdraw(ctx context.Context, amount any, opts ...grpc.CallOption) (string, error) {
	return c.move(ctx, methodWithdraw, amount, opts...)
}

func (c *Client) GetBalance(ctx context.Context, opts ...grpc.CallOption) (float64, error) {
	out := new(wrapperspb.DoubleValue)
	if err := c.cc.Invoke(ctx, methodGetBalance, &emptypb.Empty{}, out, opts...); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

// GetHistory 取得交易紀錄並還原成 domain.Transaction
func (c *Client) GetHistory(ctx context.Context, opts ...grpc.CallOption) ([]domain.Transaction, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, methodGetHistory, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}

	history := make([]domain.Transaction, 0, len(out.GetValues()))
	for i, v := range out.GetValues() {
		data, err := v.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("encode history item %d: %w", i, err)
		}
		var tran domain.Transaction
		if err := json.Unmarshal(data, &tran); err != nil {
			return nil, fmt.Errorf("decode history item %d: %w", i, err)
		}
		history = append(history, tran)
	}
	return history, nil
}

func (c *Client) move(ctx context.Context, method string, amount any, opts ...grpc.CallOption) (string, error) {
	in, err := structpb.NewValue(amount)
	if err != nil {
		return "", fmt.Errorf("encode amount: %w", err)
	}
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}
