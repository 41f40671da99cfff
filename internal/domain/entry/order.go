package entry

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Comparator orders sibling directory names.
type Comparator func(a, b string) int

// NaturalOrder returns a comparator that compares digit runs by value and
// ignores case and accents, so "9/" sorts before "10/". Names that collate
// equal fall back to byte order. The comparator is not safe for concurrent use.
func NaturalOrder() Comparator {
	c := collate.New(language.Und, collate.Numeric, collate.Loose)
	return func(a, b string) int {
		if r := c.CompareString(a, b); r != 0 {
			return r
		}
		return strings.Compare(a, b)
	}
}

// Descending reverses cmp.
func Descending(cmp Comparator) Comparator {
	return func(a, b string) int {
		return cmp(b, a)
	}
}

// Order is the direction in which entries are iterated.
type Order string

const (
	OrderAscending  Order = "asc"
	OrderDescending Order = "desc"
)

// ParseOrder validates an order name. The empty string means descending.
func ParseOrder(s string) (Order, error) {
	switch o := Order(s); o {
	case OrderAscending, OrderDescending:
		return o, nil
	case "":
		return OrderDescending, nil
	}
	return "", ErrInvalidInput
}

func (o Order) comparator() Comparator {
	if o == OrderAscending {
		return NaturalOrder()
	}
	return Descending(NaturalOrder())
}
