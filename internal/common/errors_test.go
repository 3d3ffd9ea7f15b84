package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataQualityError(t *testing.T) {
	err := NewDataQualityError("required column %q not found", "customer_id")
	assert.True(t, errors.Is(err, ErrDataQuality))
	assert.Contains(t, err.Error(), `required column "customer_id" not found`)

	var dqe *DataQualityError
	require.True(t, errors.As(err, &dqe))
	assert.Contains(t, dqe.Condition, "customer_id")
}

func TestInsufficientDataError(t *testing.T) {
	runErr := &InsufficientDataError{Scope: ScopeRun, Condition: "3 customers for k=5"}
	assert.True(t, errors.Is(runErr, ErrInsufficientData))
	assert.Contains(t, runErr.Error(), "3 customers for k=5")
	assert.NotContains(t, runErr.Error(), "cluster")

	clusterErr := &InsufficientDataError{Scope: ScopeCluster, Cluster: 2, Condition: "1 multi-item basket, need 5"}
	assert.True(t, errors.Is(clusterErr, ErrInsufficientData))
	assert.Contains(t, clusterErr.Error(), "cluster 2")
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Field: "min_support", Reason: "must be in (0, 1]"}
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), "min_support")
	assert.Contains(t, err.Error(), "must be in (0, 1]")
}

func TestUserError(t *testing.T) {
	cause := fmt.Errorf("open input.csv: %w", errors.New("no such file"))
	err := NewUserError("Could not load the input file", cause)

	assert.Contains(t, err.Error(), "Could not load the input file")
	assert.Contains(t, err.Error(), "no such file")
	assert.Equal(t, cause, errors.Unwrap(err))

	bare := &UserError{UserMessage: "Analysis failed"}
	assert.Equal(t, "Analysis failed", bare.Error())
}

func TestSentinelWrappingChain(t *testing.T) {
	// Wrapping a typed error keeps the sentinel reachable.
	inner := NewDataQualityError("zero rows remain after cleaning")
	wrapped := fmt.Errorf("preprocessing: %w", inner)
	assert.True(t, errors.Is(wrapped, ErrDataQuality))

	userFacing := NewUserError("Analysis failed", wrapped)
	assert.True(t, errors.Is(userFacing, ErrDataQuality))
}
