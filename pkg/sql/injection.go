package sql

import (
	"fmt"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/ekaya-inc/ekaya-introspect/pkg/apperrors"
)

// MaxIdentifierLength is PostgreSQL's NAMEDATALEN-1. Longer names are silently
// truncated by the server, so a longer input can never match a catalog row.
const MaxIdentifierLength = 63

// InjectionCheckResult contains the result of an injection check on an identifier.
type InjectionCheckResult struct {
	IsSQLi      bool   // True if SQL injection pattern detected
	Fingerprint string // libinjection fingerprint of the detected pattern
	Kind        string // What the value names ("namespace", "table")
	Value       string // The value that was checked
}

// CheckForInjection uses libinjection to detect SQL injection patterns in a
// caller-supplied catalog name.
//
// Returns nil if no injection is detected, or an InjectionCheckResult with
// details about the detected pattern.
//
// Example:
//
//	result := CheckForInjection("table", "orders")
//	// result == nil
//
//	result := CheckForInjection("table", "x'; DROP TABLE users--")
//	// result.IsSQLi == true
func CheckForInjection(kind, value string) *InjectionCheckResult {
	isSQLi, fingerprint := libinjection.IsSQLi(value)
	if !isSQLi {
		return nil
	}
	return &InjectionCheckResult{
		IsSQLi:      true,
		Fingerprint: string(fingerprint),
		Kind:        kind,
		Value:       value,
	}
}

// CheckIdentifier validates a namespace or relation name before it is used in
// any catalog query. Names are always sent as bound parameters or quoted with
// pgx.Identifier, so this is a second line: it rejects names that can never
// exist in a catalog and names that look like injection payloads.
//
// The returned error wraps apperrors.ErrInvalidIdentifier.
func CheckIdentifier(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s name is empty: %w", kind, apperrors.ErrInvalidIdentifier)
	}
	if len(name) > MaxIdentifierLength {
		return fmt.Errorf("%s name exceeds %d bytes: %w", kind, MaxIdentifierLength, apperrors.ErrInvalidIdentifier)
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("%s name contains a NUL byte: %w", kind, apperrors.ErrInvalidIdentifier)
	}
	if result := CheckForInjection(kind, name); result != nil {
		return fmt.Errorf("%s name %q matches injection fingerprint %s: %w",
			kind, name, result.Fingerprint, apperrors.ErrInvalidIdentifier)
	}
	return nil
}

// CheckIdentifiers validates several names in order and returns the first failure.
// Arguments alternate kind, name: CheckIdentifiers("namespace", ns, "table", t).
func CheckIdentifiers(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := CheckIdentifier(pairs[i], pairs[i+1]); err != nil {
			return err
		}
	}
	return nil
}
