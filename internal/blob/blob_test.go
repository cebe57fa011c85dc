package blob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryPut(t *testing.T) {
	m := NewMemory()
	data := []byte("%PDF-1.3")
	loc, err := m.Put(context.Background(), "receipts/1.pdf", data, "application/pdf")
	require.NoError(t, err)
	require.Equal(t, "memory://receipts/1.pdf", loc)

	data[0] = 'X'
	got, ok := m.Get("receipts/1.pdf")
	require.True(t, ok)
	require.Equal(t, "%PDF-1.3", string(got))
	require.Equal(t, []string{"receipts/1.pdf"}, m.Keys())
}

func TestNew(t *testing.T) {
	s, err := New(context.Background(), Config{Driver: "none"})
	require.NoError(t, err)
	require.Nil(t, s)

	s, err = New(context.Background(), Config{Driver: "memory"})
	require.NoError(t, err)
	require.IsType(t, &Memory{}, s)

	_, err = New(context.Background(), Config{Driver: "gcs"})
	require.Error(t, err)
	_, err = New(context.Background(), Config{Driver: "s3"})
	require.Error(t, err)
	_, err = New(context.Background(), Config{Driver: "ftp"})
	require.Error(t, err)
}
