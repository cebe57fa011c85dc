package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestAddMergesQuantity(t *testing.T) {
	c := New()
	c.Add(3, "Collar", decimal.RequireFromString("199.00"))
	l := c.Add(3, "Collar (renamed)", decimal.RequireFromString("249.00"))

	require.Equal(t, 2, l.Quantity)
	require.Equal(t, "Collar", l.Name)
	require.Equal(t, "199.00", l.Price.StringFixed(2))
	require.Len(t, c.Lines, 1)
}

func TestRemoveAndTotal(t *testing.T) {
	c := New()
	c.Add(2, "Leash", decimal.RequireFromString("300"))
	c.Add(1, "Bowl", decimal.RequireFromString("120.50"))
	c.Add(1, "Bowl", decimal.RequireFromString("120.50"))

	require.Equal(t, "541.00", c.Total().StringFixed(2))
	items := c.Items()
	require.Equal(t, uint64(1), items[0].ProductID)
	require.Equal(t, uint64(2), items[1].ProductID)

	require.True(t, c.Remove(2))
	require.False(t, c.Remove(2))
	require.Equal(t, "241.00", c.Total().StringFixed(2))
}

func TestClearRotatesToken(t *testing.T) {
	c := New()
	c.Add(1, "Bowl", decimal.NewFromInt(10))
	token := c.Token
	c.Clear()
	require.True(t, c.Empty())
	require.NotEqual(t, token, c.Token)
}

func TestEncodeDecode(t *testing.T) {
	c := New()
	c.Add(9, "Shampoo", decimal.RequireFromString("89.90"))
	s, err := c.Encode()
	require.NoError(t, err)

	got, err := Decode(s)
	require.NoError(t, err)
	require.Equal(t, c.Token, got.Token)
	require.Equal(t, 1, got.Lines[9].Quantity)
	require.True(t, got.Lines[9].Price.Equal(decimal.RequireFromString("89.90")))

	fresh, err := Decode("")
	require.NoError(t, err)
	require.True(t, fresh.Empty())
	require.NotEmpty(t, fresh.Token)

	_, err = Decode("{not json")
	require.Error(t, err)
}
