package hmuxtests

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"go.inet256.org/hmux/src/hmux"
)

var ctx = context.Background()

// MakeBody constructs the Body under test, producing the given chunks in
// order and ending with the given trailers. A nil trailers means none.
type MakeBody = func(t testing.TB, chunks [][]byte, trailers http.Header) hmux.Body[[]byte]

// TestBody runs a conformance suite against a Body implementation.
func TestBody(t *testing.T, mk MakeBody) {
	t.Run("Empty", func(t *testing.T) {
		t.Parallel()
		b := mk(t, nil, nil)
		data, err := hmux.ReadAll(ctx, b)
		require.NoError(t, err)
		require.Len(t, data, 0)
	})
	t.Run("OneChunk", func(t *testing.T) {
		t.Parallel()
		b := mk(t, [][]byte{[]byte("hello world")}, nil)
		data, err := hmux.ReadAll(ctx, b)
		require.NoError(t, err)
		require.Equal(t, "hello world", string(data))
	})
	t.Run("ChunkOrder", func(t *testing.T) {
		t.Parallel()
		b := mk(t, [][]byte{[]byte("abc"), []byte("def"), []byte("ghi")}, nil)
		data, err := hmux.ReadAll(ctx, b)
		require.NoError(t, err)
		require.Equal(t, "abcdefghi", string(data))
	})
	t.Run("EOFSticky", func(t *testing.T) {
		t.Parallel()
		b := mk(t, nil, nil)
		_, err := hmux.ReadAll(ctx, b)
		require.NoError(t, err)
		_, err = b.Next(ctx)
		require.ErrorIs(t, err, io.EOF)
	})
	t.Run("NoTrailers", func(t *testing.T) {
		t.Parallel()
		b := mk(t, [][]byte{[]byte("data")}, nil)
		_, err := hmux.ReadAll(ctx, b)
		require.NoError(t, err)
		trailers, err := b.Trailers(ctx)
		require.NoError(t, err)
		require.Empty(t, trailers)
	})
	t.Run("Trailers", func(t *testing.T) {
		t.Parallel()
		want := http.Header{"From": []string{"a sender"}}
		b := mk(t, [][]byte{[]byte("data")}, want)
		data, err := hmux.ReadAll(ctx, b)
		require.NoError(t, err)
		require.Equal(t, "data", string(data))
		trailers, err := b.Trailers(ctx)
		require.NoError(t, err)
		require.Equal(t, "a sender", trailers.Get("From"))
	})
}
