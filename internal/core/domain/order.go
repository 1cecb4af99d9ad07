package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// OrderType selects how matched files are compared.
type OrderType string

// Supported order types.
const (
	OrderAlpha   OrderType = "alpha"
	OrderNatural OrderType = "natural"
	OrderSize    OrderType = "size"
	OrderMtime   OrderType = "mtime"
	OrderCtime   OrderType = "ctime"
	OrderAtime   OrderType = "atime"
	OrderRandom  OrderType = "random"
	OrderSystem  OrderType = "system"
)

// OrderSubject selects which part of a path alpha and natural orders compare.
type OrderSubject string

// Supported order subjects.
const (
	SubjectPath      OrderSubject = "path"
	SubjectName      OrderSubject = "name"
	SubjectExtension OrderSubject = "extension"
)

// Order describes how the files matched by a glob are sorted.
type Order struct {
	Type       OrderType
	Subject    OrderSubject
	Descending bool
}

// DefaultOrder returns the ascending alpha-path order.
func DefaultOrder() Order {
	return Order{Type: OrderAlpha, Subject: SubjectPath}
}

// String renders the order in the same syntax ParseOrder accepts.
func (o Order) String() string {
	var b strings.Builder
	if o.Descending {
		b.WriteByte('-')
	}
	b.WriteString(string(o.Type))
	if o.Type == OrderAlpha || o.Type == OrderNatural {
		b.WriteByte('-')
		b.WriteString(string(o.Subject))
	}
	return b.String()
}

// ParseOrder parses an order expression such as "natural-name", "-mtime" or "-".
// The empty string yields the default order.
func ParseOrder(raw string) (Order, error) {
	order := DefaultOrder()

	s := raw
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		order.Descending = true
		s = rest
	}

	switch OrderType(s) {
	case "":
		return order, nil
	case OrderSize, OrderMtime, OrderCtime, OrderAtime, OrderRandom, OrderSystem:
		order.Type = OrderType(s)
		order.Subject = ""
		return order, nil
	}

	switch {
	case strings.HasPrefix(s, string(OrderAlpha)):
		s = strings.TrimPrefix(s, string(OrderAlpha))
	case strings.HasPrefix(s, string(OrderNatural)):
		order.Type = OrderNatural
		s = strings.TrimPrefix(s, string(OrderNatural))
	}

	if s == "" {
		return order, nil
	}
	s = strings.TrimPrefix(s, "-")

	switch OrderSubject(s) {
	case SubjectPath, SubjectName, SubjectExtension:
		order.Subject = OrderSubject(s)
		return order, nil
	}

	return Order{}, zerr.With(zerr.Wrap(ErrValidation, "unrecognized order"), "order", raw)
}
