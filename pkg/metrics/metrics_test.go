package metrics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-introspect/pkg/apperrors"
)

func TestRecorder_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	require.NoError(t, err)

	r.Observe("list_tables", 3*time.Millisecond, nil)
	r.Observe("list_tables", 5*time.Millisecond, fmt.Errorf("wrap: %w", apperrors.ErrUnknownRelationKind))
	r.Observe("describe_columns", time.Millisecond, errors.New("connection reset"))

	assert.Equal(t, 2, testutil.CollectAndCount(r.duration))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.errors.WithLabelValues("list_tables", "unknown_relation_kind")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.errors.WithLabelValues("describe_columns", "query")))

	expected := `
# HELP ekaya_introspect_operation_errors_total Total count of failed catalog operations by cause.
# TYPE ekaya_introspect_operation_errors_total counter
ekaya_introspect_operation_errors_total{kind="query",op="describe_columns"} 1
ekaya_introspect_operation_errors_total{kind="unknown_relation_kind",op="list_tables"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "ekaya_introspect_operation_errors_total"))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Observe("list_tables", time.Second, errors.New("boom"))
	})
}

func TestNewRecorder_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewRecorder(reg)
	require.NoError(t, err)

	_, err = NewRecorder(reg)
	require.Error(t, err)
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("x: %w", apperrors.ErrInvalidIdentifier), "invalid_identifier"},
		{fmt.Errorf("x: %w", apperrors.ErrInconsistentMetadata), "inconsistent_metadata"},
		{apperrors.ErrRowShape, "row_shape"},
		{context.Canceled, "canceled"},
		{errors.New("syntax error"), "query"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorKind(tt.err), tt.err.Error())
	}
}
