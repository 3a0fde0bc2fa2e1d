package hmux_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"go.inet256.org/hmux/src/hmux"
	"go.inet256.org/hmux/src/hmuxtests"
)

var ctx = context.Background()

func TestRouteDefault(t *testing.T) {
	t.Parallel()
	grpc := hmuxtests.NewReadyHandler("grpc answer")
	web := hmuxtests.NewReadyHandler("web answer")
	m := hmux.NewMultiplexer[[]byte, []byte](grpc, web)

	resp := handle(t, m, "")
	require.Equal(t, "web answer", string(readAll(t, resp)))
	require.Equal(t, 0, grpc.HandleCount())
	require.Equal(t, 1, web.HandleCount())
}

func TestRouteContentType(t *testing.T) {
	t.Parallel()
	tcs := []struct {
		contentType string
		wantGRPC    bool
	}{
		{"application/grpc", true},
		{"application/grpc+proto", true},
		{"application/grpc-web+json", true},
		{"application/json", false},
		{"text/plain", false},
		// the value match is an exact byte prefix, so case matters.
		{"Application/Grpc", false},
		{"application/gr", false},
	}
	for _, tc := range tcs {
		t.Run(tc.contentType, func(t *testing.T) {
			t.Parallel()
			grpc := hmuxtests.NewReadyHandler("grpc answer")
			web := hmuxtests.NewReadyHandler("web answer")
			m := hmux.NewMultiplexer[[]byte, []byte](grpc, web)

			resp := handle(t, m, tc.contentType)
			if tc.wantGRPC {
				require.Equal(t, "grpc answer", string(readAll(t, resp)))
				require.Equal(t, 1, grpc.HandleCount())
				require.Equal(t, 0, web.HandleCount())
			} else {
				require.Equal(t, "web answer", string(readAll(t, resp)))
				require.Equal(t, 0, grpc.HandleCount())
				require.Equal(t, 1, web.HandleCount())
			}
		})
	}
}

func TestRouteHeaderNameCase(t *testing.T) {
	t.Parallel()
	grpc := hmuxtests.NewReadyHandler("grpc answer")
	web := hmuxtests.NewReadyHandler("web answer")
	m := hmux.NewMultiplexer[[]byte, []byte](grpc, web)

	req, err := hmux.NewRequest(http.MethodPost, "/test.Service/Method", nil)
	require.NoError(t, err)
	// header names are case-insensitive, http.Header canonicalizes on Set.
	req.Header.Set("content-type", "application/grpc")
	resp, err := m.Handle(ctx, req).Await(ctx)
	require.NoError(t, err)
	require.Equal(t, "grpc answer", string(readAll(t, resp)))
	require.Equal(t, 1, grpc.HandleCount())
}

func TestResponseFutureBranch(t *testing.T) {
	t.Parallel()
	m := hmux.NewMultiplexer[[]byte, []byte](
		hmuxtests.NewReadyHandler("a"),
		hmuxtests.NewReadyHandler("b"),
	)
	req, err := hmux.NewRequest(http.MethodPost, "/", nil)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/grpc")
	fut, ok := m.Handle(ctx, req).(*hmux.ResponseFuture[[]byte, []byte])
	require.True(t, ok)
	require.Equal(t, hmux.BranchGRPC, fut.Branch())
}

func TestReady(t *testing.T) {
	t.Parallel()
	m := hmux.NewMultiplexer[[]byte, []byte](
		hmuxtests.NewReadyHandler("a"),
		hmuxtests.NewReadyHandler("b"),
	)
	require.NoError(t, m.Ready(ctx))
}

func TestReadyError(t *testing.T) {
	t.Parallel()
	t.Run("GRPC", func(t *testing.T) {
		t.Parallel()
		m := hmux.NewMultiplexer[[]byte, []byte](
			hmuxtests.NewErrorHandler("this handler always errors"),
			hmuxtests.NewReadyHandler("b"),
		)
		err := m.Ready(ctx)
		require.Error(t, err)
		require.ErrorContains(t, err, "this handler always errors")
		b, ok := hmux.BranchOf(err)
		require.True(t, ok)
		require.Equal(t, hmux.BranchGRPC, b)
	})
	t.Run("Web", func(t *testing.T) {
		t.Parallel()
		m := hmux.NewMultiplexer[[]byte, []byte](
			hmuxtests.NewReadyHandler("a"),
			hmuxtests.NewErrorHandler("this handler always errors"),
		)
		err := m.Ready(ctx)
		require.Error(t, err)
		require.ErrorContains(t, err, "this handler always errors")
		b, ok := hmux.BranchOf(err)
		require.True(t, ok)
		require.Equal(t, hmux.BranchWeb, b)
	})
}

func TestReadyWaitsForBoth(t *testing.T) {
	t.Parallel()
	const delay = 25 * time.Millisecond
	t.Run("GRPCDelayed", func(t *testing.T) {
		t.Parallel()
		m := hmux.NewMultiplexer[[]byte, []byte](
			hmuxtests.NewDelayedHandler(time.Now().Add(delay)),
			hmuxtests.NewReadyHandler("b"),
		)
		start := time.Now()
		require.NoError(t, m.Ready(ctx))
		require.GreaterOrEqual(t, time.Since(start), delay)
	})
	t.Run("WebDelayed", func(t *testing.T) {
		t.Parallel()
		m := hmux.NewMultiplexer[[]byte, []byte](
			hmuxtests.NewReadyHandler("a"),
			hmuxtests.NewDelayedHandler(time.Now().Add(delay)),
		)
		start := time.Now()
		require.NoError(t, m.Ready(ctx))
		require.GreaterOrEqual(t, time.Since(start), delay)
	})
}

func TestHandleErrorWrapped(t *testing.T) {
	t.Parallel()
	cause := errors.New("the backend fell over")
	failing := hmux.HandlerFunc[[]byte](func(ctx context.Context, req *hmux.Request) (*hmux.Response[[]byte], error) {
		return nil, cause
	})
	m := hmux.NewMultiplexer[[]byte, []byte](hmuxtests.NewReadyHandler("a"), failing)

	req, err := hmux.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)
	_, err = m.Handle(ctx, req).Await(ctx)
	require.Error(t, err)
	require.True(t, hmux.IsBranchError(err))
	require.ErrorIs(t, err, cause)
	b, ok := hmux.BranchOf(err)
	require.True(t, ok)
	require.Equal(t, hmux.BranchWeb, b)
}

func TestAwaitCancel(t *testing.T) {
	t.Parallel()
	stuck := hmux.HandlerFunc[[]byte](func(ctx context.Context, req *hmux.Request) (*hmux.Response[[]byte], error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	m := hmux.NewMultiplexer[[]byte, []byte](hmuxtests.NewReadyHandler("a"), stuck)

	req, err := hmux.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)
	ctx, cf := context.WithTimeout(ctx, 25*time.Millisecond)
	defer cf()
	_, err = m.Handle(ctx, req).Await(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

// The two sides may produce chunks of different types; the caller sees
// []byte either way.
func TestMixedChunkTypes(t *testing.T) {
	t.Parallel()
	m := hmux.NewMultiplexer[[]byte, string](
		hmuxtests.NewReadyHandler("grpc answer"),
		hmuxtests.NewTextHandler("web answer"),
	)
	require.NoError(t, m.Ready(ctx))

	req, err := hmux.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)
	resp, err := m.Handle(ctx, req).Await(ctx)
	require.NoError(t, err)
	require.Equal(t, "web answer", string(readAll(t, resp)))

	req, err = hmux.NewRequest(http.MethodPost, "/test.Service/Method", nil)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/grpc")
	resp, err = m.Handle(ctx, req).Await(ctx)
	require.NoError(t, err)
	require.Equal(t, "grpc answer", string(readAll(t, resp)))
}

// Multiplexers are handlers, so they nest.
func TestNestedMultiplexers(t *testing.T) {
	t.Parallel()
	inner := hmux.NewMultiplexer[[]byte, []byte](
		hmuxtests.NewReadyHandler("inner grpc"),
		hmuxtests.NewReadyHandler("inner web"),
	)
	outer := hmux.NewMultiplexer[[]byte, []byte](
		hmuxtests.NewReadyHandler("outer grpc"),
		inner,
	)
	require.NoError(t, outer.Ready(ctx))

	resp := handle(t, outer, "text/html")
	require.Equal(t, "inner web", string(readAll(t, resp)))
}

func handle(t testing.TB, m *hmux.Multiplexer[[]byte, []byte], contentType string) *hmux.Response[[]byte] {
	req, err := hmux.NewRequest(http.MethodPost, "/test.Service/Method", nil)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := m.Handle(ctx, req).Await(ctx)
	require.NoError(t, err)
	return resp
}

func readAll(t testing.TB, resp *hmux.Response[[]byte]) []byte {
	data, err := hmux.ReadAll(ctx, resp.Body)
	require.NoError(t, err)
	return data
}
