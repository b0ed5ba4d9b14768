package api

import (
	"context"
	"errors"
	"io"
	"testing"

	"servicehours/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestAuthInterceptor(t *testing.T) {
	cfg := config.APIConfig{
		Enabled: true,
		Auth: config.APIAuthConfig{
			Enabled:      true,
			HeaderAPIKey: "x-api-key",
			HeaderExtra:  "x-api-extra",
			APIKeys: []config.APIClientKey{
				{Key: "valid-key", Extra: "valid-extra", Permissions: []string{permReadRestaurants}},
			},
		},
		RateLimit: config.APIRateLimitConfig{
			RPS:   100,
			Burst: 200,
		},
	}

	auth := NewAuthInterceptor(&cfg)
	interceptor := auth.Unary()

	handler := func(_ context.Context, req any) (any, error) {
		return "ok", nil
	}

	info := &grpc.UnaryServerInfo{FullMethod: MethodListRestaurants}

	t.Run("Success", func(t *testing.T) {
		md := metadata.Pairs("x-api-key", "valid-key", "x-api-extra", "valid-extra")
		ctx := metadata.NewIncomingContext(context.Background(), md)
		resp, err := interceptor(ctx, "req", info, handler)
		assert.NoError(t, err)
		assert.Equal(t, "ok", resp)
	})

	t.Run("MissingMetadata", func(t *testing.T) {
		_, err := interceptor(context.Background(), "req", info, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("MissingHeaders", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs())
		_, err := interceptor(ctx, "req", info, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("InvalidKey", func(t *testing.T) {
		md := metadata.Pairs("x-api-key", "invalid", "x-api-extra", "valid-extra")
		ctx := metadata.NewIncomingContext(context.Background(), md)
		_, err := interceptor(ctx, "req", info, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("InvalidExtra", func(t *testing.T) {
		md := metadata.Pairs("x-api-key", "valid-key", "x-api-extra", "invalid")
		ctx := metadata.NewIncomingContext(context.Background(), md)
		_, err := interceptor(ctx, "req", info, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("PermissionDenied", func(t *testing.T) {
		md := metadata.Pairs("x-api-key", "valid-key", "x-api-extra", "valid-extra")
		ctx := metadata.NewIncomingContext(context.Background(), md)
		_, err := interceptor(ctx, "req", &grpc.UnaryServerInfo{FullMethod: MethodGetSlots}, handler)
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
	})

	t.Run("Disabled", func(t *testing.T) {
		disabled := cfg
		disabled.Enabled = false
		resp, err := NewAuthInterceptor(&disabled).Unary()(context.Background(), "req", info, handler)
		assert.NoError(t, err)
		assert.Equal(t, "ok", resp)
	})
}

func TestAuthInterceptor_RateLimit(t *testing.T) {
	cfg := config.APIConfig{
		Enabled:   true,
		RateLimit: config.APIRateLimitConfig{RPS: 0.001, Burst: 2},
	}
	interceptor := NewAuthInterceptor(&cfg).Unary()
	handler := func(_ context.Context, _ any) (any, error) { return "ok", nil }
	info := &grpc.UnaryServerInfo{FullMethod: MethodGetSlots}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-api-key", "client-a"))
	for i := 0; i < 2; i++ {
		_, err := interceptor(ctx, "req", info, handler)
		require.NoError(t, err)
	}
	_, err := interceptor(ctx, "req", info, handler)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	// Другой клиент получает свой bucket
	other := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-api-key", "client-b"))
	_, err = interceptor(other, "req", info, handler)
	assert.NoError(t, err)
}

func TestAuthorize(t *testing.T) {
	reader := config.APIClientKey{Permissions: []string{" read:slots "}}

	assert.NoError(t, authorize(reader, permReadSlots))
	assert.ErrorIs(t, authorize(reader, permWriteSchedule), errPermissionDenied)
	assert.NoError(t, authorize(reader, ""), "unguarded route")
	assert.NoError(t, authorize(config.APIClientKey{}, permWriteSchedule), "empty list allows all")
}

func TestKeyringDefaults(t *testing.T) {
	k := newKeyring(config.APIAuthConfig{APIKeys: []config.APIClientKey{{Key: "k", Extra: "e"}}})
	assert.Equal(t, apiKeyHeaderDefault, k.apiKeyHeader)
	assert.Equal(t, apiExtraHeaderDefault, k.extraHeader)

	_, err := k.authenticate("", "e")
	assert.ErrorIs(t, err, errMissingCredentials)
	_, err = k.authenticate("k", "e")
	assert.NoError(t, err)
}

func TestRecoveryUnaryInterceptor(t *testing.T) {
	logger := zerolog.New(io.Discard)
	interceptor := RecoveryUnaryInterceptor(&logger)
	info := &grpc.UnaryServerInfo{FullMethod: MethodGetSlots}

	_, err := interceptor(context.Background(), "req", info, func(context.Context, any) (any, error) {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))

	want := errors.New("plain")
	_, err = interceptor(context.Background(), "req", info, func(context.Context, any) (any, error) {
		return nil, want
	})
	assert.Same(t, want, err)
}

func TestChainUnaryInterceptors(t *testing.T) {
	var order []string
	mark := func(name string) grpc.UnaryServerInterceptor {
		return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
			order = append(order, name)
			return handler(ctx, req)
		}
	}

	chained := ChainUnaryInterceptors(mark("first"), mark("second"))
	_, err := chained(context.Background(), "req", &grpc.UnaryServerInfo{}, func(context.Context, any) (any, error) {
		order = append(order, "handler")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestRequestIDFromMetadata(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(requestIDMetadataKey, "req-42"))
	assert.Equal(t, "req-42", requestIDFromMetadata(ctx))
	assert.NotEmpty(t, requestIDFromMetadata(context.Background()))
}
