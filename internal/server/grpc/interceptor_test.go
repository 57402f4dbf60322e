package grpc

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newTestServer() *HealthServer {
	return NewHealthServer("", nopLogger{}, &fakeReadiness{})
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	s := newTestServer()

	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	want := errors.New("boom")

	resp, err := s.loggingInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return "ok", want
	})
	if resp != "ok" || !errors.Is(err, want) {
		t.Fatalf("got (%v, %v), want (ok, %v)", resp, err, want)
	}
}

func TestRecoverInterceptor_ConvertsPanic(t *testing.T) {
	s := newTestServer()

	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	resp, err := s.recoverInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		panic("kaboom")
	})
	if resp != nil {
		t.Fatalf("unexpected resp: %v", resp)
	}
	if status.Code(err) != codes.Internal {
		t.Fatalf("code = %v, want Internal", status.Code(err))
	}
}

func TestRecoverInterceptor_NoPanic(t *testing.T) {
	s := newTestServer()

	info := &grpc.UnaryServerInfo{FullMethod: "/x.Y/Z"}
	called := false
	resp, err := s.recoverInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		called = true
		return 42, nil
	})
	if err != nil || resp != 42 || !called {
		t.Fatalf("got (%v, %v, called=%v)", resp, err, called)
	}
}
