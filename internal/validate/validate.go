package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// decimals validate as their float value, so `gt=0` works on prices
	val.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if d, ok := f.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return val
}

// Errors is a list of human readable field messages.
type Errors []string

func (e Errors) Error() string { return strings.Join(e, "; ") }

// Struct validates s against its `validate` tags. The error, if any, is an
// Errors value whose text joins every message with "; ".
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return err
	}
	out := make(Errors, 0, len(fes))
	for _, fe := range fes {
		out = append(out, message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", f)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", f, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", f, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", f, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s.", f, fe.Param())
	}
	return fmt.Sprintf("%s is invalid.", f)
}

// ID parses a positive resource identifier from a path or query value.
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// OptionalID is ID for filters: empty means zero, which callers treat as "any".
func OptionalID(s string) (int64, bool) {
	if strings.TrimSpace(s) == "" {
		return 0, true
	}
	return ID(s)
}

// Int parses an optional integer query value. ok is false only when s is
// present and malformed.
func Int(s string) (n *int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return nil, false
	}
	return &i, true
}

// Decimal parses an optional decimal query value.
func Decimal(s string) (*decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, false
	}
	return &d, true
}

// Page parses page and pageSize, applying defaults when absent. Values are
// returned as given (possibly <= 0) for the service to reject.
func Page(pageStr, sizeStr string, defSize int) (page, size int, ok bool) {
	page, size = 1, defSize
	if p, okp := Int(pageStr); !okp {
		return 0, 0, false
	} else if p != nil {
		page = *p
	}
	if s, oks := Int(sizeStr); !oks {
		return 0, 0, false
	} else if s != nil {
		size = *s
	}
	return page, size, true
}
