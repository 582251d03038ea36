package grpc

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"testing"

	"github.com/alecthomas/assert/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
)

func TestPoolReusesConnection(t *testing.T) {
	p := NewPool()
	a, err := p.GetConnection("localhost:50051")
	assert.NoError(t, err)
	b, err := p.GetConnection("localhost:50051")
	assert.NoError(t, err)
	assert.True(t, a == b)

	c, err := p.GetConnection("localhost:50052")
	assert.NoError(t, err)
	assert.True(t, a != c)

	assert.NoError(t, p.Close())
}

func TestPoolReplacesClosedConnection(t *testing.T) {
	p := NewPool()
	a, err := p.GetConnection("localhost:50051")
	assert.NoError(t, err)
	assert.NoError(t, a.Close())

	b, err := p.GetConnection("localhost:50051")
	assert.NoError(t, err)
	assert.True(t, a != b)
	assert.NoError(t, p.Close())
}

func TestPoolInterceptor(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := NewPool(
		WithInterceptor(LoggingInterceptor(logger)),
		WithDialOptions(grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		})),
	)
	t.Cleanup(func() { _ = p.Close() })

	conn, err := p.GetConnection("passthrough:///bufnet")
	assert.NoError(t, err)

	err = conn.Invoke(context.Background(), "/bank.v1.Missing/Call", &emptypb.Empty{}, &emptypb.Empty{})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
	assert.Contains(t, buf.String(), "method=/bank.v1.Missing/Call")
	assert.Contains(t, buf.String(), "code=Unimplemented")
}
