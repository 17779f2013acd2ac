package lookup

import "errors"

// ErrorKind classifies a failed query.
type ErrorKind uint8

const (
	KindNone ErrorKind = iota
	KindInvalidFormat
	KindNotFound
	KindTransient
)

// Sentinels for errors.Is. Client errors wrap exactly one of these.
var (
	ErrInvalidFormat = errors.New("invalid registry id format")
	ErrNotFound      = errors.New("registry id not found")
	ErrTransient     = errors.New("lookup failed")
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInvalidFormat:
		return "invalid_format"
	case KindNotFound:
		return "not_found"
	case KindTransient:
		return "transient_failure"
	default:
		return "unknown"
	}
}

// Message is the user-facing text for k.
func (k ErrorKind) Message() string {
	switch k {
	case KindInvalidFormat:
		return "Invalid CNPJ. Check the format."
	case KindNotFound:
		return "CNPJ not found."
	case KindTransient:
		return "Error querying CNPJ. Please try again later."
	default:
		return ""
	}
}

// KindOf maps err onto the error taxonomy. Unrecognized errors count as
// transient so nothing is dropped.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidFormat):
		return KindInvalidFormat
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindTransient
	}
}
