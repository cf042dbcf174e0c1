package introspect

import (
	"fmt"
	"strings"
)

// OpError records the failed operation and the catalog object it was
// looking at. Err is the underlying cause; driver errors pass through
// unchanged, so errors.As(err, &pgErr) keeps working.
type OpError struct {
	Op        string
	Namespace string
	Object    string
	Err       error
}

func (e *OpError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Object != "" {
		fmt.Fprintf(&b, " %q", e.Object)
	}
	if e.Namespace != "" {
		fmt.Fprintf(&b, " in namespace %q", e.Namespace)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *OpError) Unwrap() error { return e.Err }
