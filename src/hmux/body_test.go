package hmux_test

import (
	"bytes"
	"io"
	"math/rand"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"go.inet256.org/hmux/src/hmux"
)

func TestNewBody(t *testing.T) {
	t.Parallel()
	b := hmux.NewBody([]byte("one"), []byte("two"))
	chunk, err := b.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "one", string(chunk))
	chunk, err = b.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "two", string(chunk))
	_, err = b.Next(ctx)
	require.ErrorIs(t, err, io.EOF)
	_, err = b.Next(ctx)
	require.ErrorIs(t, err, io.EOF)

	trailers, err := b.Trailers(ctx)
	require.NoError(t, err)
	require.Nil(t, trailers)
}

func TestNewEmptyBody(t *testing.T) {
	t.Parallel()
	b := hmux.NewEmptyBody[[]byte]()
	_, err := b.Next(ctx)
	require.ErrorIs(t, err, io.EOF)
}

func TestStringChunks(t *testing.T) {
	t.Parallel()
	b := hmux.NewBody("abc", "def")
	data, err := hmux.ReadAll(ctx, b)
	require.NoError(t, err)
	require.Equal(t, "abcdef", string(data))
}

func TestReaderBody(t *testing.T) {
	t.Parallel()
	t.Run("Small", func(t *testing.T) {
		t.Parallel()
		b := hmux.NewReaderBody(strings.NewReader("hello reader"))
		data, err := hmux.ReadAll(ctx, b)
		require.NoError(t, err)
		require.Equal(t, "hello reader", string(data))
	})
	t.Run("Large", func(t *testing.T) {
		t.Parallel()
		// bigger than one read chunk, so Next is called several times.
		payload := make([]byte, 100*1024)
		rng := rand.New(rand.NewSource(0))
		_, err := rng.Read(payload)
		require.NoError(t, err)
		b := hmux.NewReaderBody(bytes.NewReader(payload))
		data, err := hmux.ReadAll(ctx, b)
		require.NoError(t, err)
		require.Equal(t, payload, data)
	})
	t.Run("Error", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("read failed")
		b := hmux.NewReaderBody(iotest.ErrReader(cause))
		_, err := b.Next(ctx)
		require.ErrorIs(t, err, cause)
		// the error is sticky.
		_, err = b.Next(ctx)
		require.ErrorIs(t, err, cause)
	})
}

func TestBodyReader(t *testing.T) {
	t.Parallel()
	b := hmux.NewBody([]byte("stream"), []byte("ed"), []byte(" bytes"))
	data, err := io.ReadAll(hmux.NewBodyReader(ctx, b))
	require.NoError(t, err)
	require.Equal(t, "streamed bytes", string(data))
}

func TestBodyReaderStringChunks(t *testing.T) {
	t.Parallel()
	b := hmux.NewBody("text ", "chunks")
	data, err := io.ReadAll(hmux.NewBodyReader(ctx, b))
	require.NoError(t, err)
	require.Equal(t, "text chunks", string(data))
}
