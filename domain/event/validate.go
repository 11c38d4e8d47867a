package event

import (
	"errors"
	"fmt"
)

var ErrValidation = errors.New("event: validation failed")

// ValidationError names the offending field of a rejected event.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("event: invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func (t Trade) Validate() error {
	switch {
	case t.Trader == "":
		return invalid("trader", "must not be empty")
	case t.Symbol == "":
		return invalid("symbol", "must not be empty")
	case t.Side != Buy && t.Side != Sell:
		return invalid("side", fmt.Sprintf("unknown side %d", t.Side))
	case t.Quantity <= 0:
		return invalid("quantity", fmt.Sprintf("must be positive, got %d", t.Quantity))
	case !t.Price.IsPositive():
		return invalid("price", fmt.Sprintf("must be positive, got %s", t.Price))
	}
	return nil
}

func (p PriceUpdate) Validate() error {
	switch {
	case p.Symbol == "":
		return invalid("symbol", "must not be empty")
	case !p.Price.IsPositive():
		return invalid("price", fmt.Sprintf("must be positive, got %s", p.Price))
	}
	return nil
}

// Check validates ev. Only Trade and PriceUpdate values are accepted;
// nil and pointer variants are malformed.
func Check(ev Event) error {
	switch e := ev.(type) {
	case nil:
		return invalid("event", "nil")
	case Trade:
		return e.Validate()
	case PriceUpdate:
		return e.Validate()
	default:
		return invalid("event", fmt.Sprintf("unsupported type %T", ev))
	}
}
