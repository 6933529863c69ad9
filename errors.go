package gonest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/gonest/i18n"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType           = "invalid_type"
	CodeRequired              = "required"
	CodeInvalid               = "invalid"
	CodeParseError            = "parse_error"
	CodeAssociationUnresolved = "association_unresolved"
)

// Issue represents a single validation or casting entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /suppliers/2/name).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, expected shapes, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"attribute":"name"}) for
	// i18n and observability.
	Params map[string]any
}

// Issues is a collection of casting/validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// IsTypeMismatch reports whether err consists solely of invalid_type issues,
// i.e. a value that could not be cast to its declared attribute type. Bulk
// assignment skips such attributes instead of failing.
func IsTypeMismatch(err error) bool {
	iss, ok := AsIssues(err)
	if !ok || len(iss) == 0 {
		return false
	}
	for _, it := range iss {
		if it.Code != CodeInvalidType {
			return false
		}
	}
	return true
}

// typeMismatch builds a single invalid_type issue at the given path.
func typeMismatch(path, hint string) Issues {
	return Issues{{Path: path, Code: CodeInvalidType, Message: i18n.T(CodeInvalidType, nil), Hint: hint}}
}

// toIssues coerces an arbitrary error into Issues, wrapping foreign errors
// with parse_error.
func toIssues(err error) Issues {
	if err == nil {
		return nil
	}
	if iss, ok := AsIssues(err); ok {
		return iss
	}
	return Issues{{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err}}
}
