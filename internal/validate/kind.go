package validate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned when a field name does not map to a Kind.
var ErrUnknownKind = errors.New("unknown field kind")

// Kind identifies a form field and decides which rule applies to it.
type Kind int

const (
	Email Kind = iota
	Username
	Phone
)

// Kinds returns every field kind in form order.
func Kinds() []Kind {
	return []Kind{Email, Username, Phone}
}

// String returns the lowercase field name.
func (k Kind) String() string {
	switch k {
	case Email:
		return "email"
	case Username:
		return "username"
	case Phone:
		return "phone"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Label returns the capitalized field name for display.
func (k Kind) Label() string {
	s := k.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Remote reports whether values of this kind also need an availability check.
func (k Kind) Remote() bool {
	return k == Email || k == Username
}

// ParseKind maps a field name to its Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "email":
		return Email, nil
	case "username":
		return Username, nil
	case "phone":
		return Phone, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
