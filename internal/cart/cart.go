// Package cart models the shop cart kept in a user's session.
package cart

import (
	"encoding/json"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Line struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Item struct {
	ProductID uint64
	Line
}

// Cart maps product id to a line. Token identifies one checkout attempt of
// this cart and is rotated when the cart is cleared.
type Cart struct {
	Token string          `json:"token"`
	Lines map[uint64]Line `json:"lines"`
}

func New() *Cart {
	return &Cart{Token: uuid.NewString(), Lines: map[uint64]Line{}}
}

// Add puts one unit of a product in the cart. An existing line keeps its
// snapshot and has its quantity incremented.
func (c *Cart) Add(productID uint64, name string, price decimal.Decimal) Line {
	if c.Lines == nil {
		c.Lines = map[uint64]Line{}
	}
	l, ok := c.Lines[productID]
	if !ok {
		l = Line{Name: name, Price: price}
	}
	l.Quantity++
	c.Lines[productID] = l
	return l
}

func (c *Cart) Remove(productID uint64) bool {
	if _, ok := c.Lines[productID]; !ok {
		return false
	}
	delete(c.Lines, productID)
	return true
}

func (c *Cart) Empty() bool {
	return len(c.Lines) == 0
}

// Items returns the lines ordered by product id.
func (c *Cart) Items() []Item {
	out := make([]Item, 0, len(c.Lines))
	for id, l := range c.Lines {
		out = append(out, Item{ProductID: id, Line: l})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) Clear() {
	c.Lines = map[uint64]Line{}
	c.Token = uuid.NewString()
}

func (c *Cart) Encode() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode parses an encoded cart; an empty string yields a fresh cart.
func Decode(s string) (*Cart, error) {
	if s == "" {
		return New(), nil
	}
	var c Cart
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return nil, err
	}
	if c.Lines == nil {
		c.Lines = map[uint64]Line{}
	}
	if c.Token == "" {
		c.Token = uuid.NewString()
	}
	return &c, nil
}
