package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/fraudwatch/internal/domain/model"
)

// RequireConfigurationError asserts err is a ConfigurationError for component
// and returns it.
func RequireConfigurationError(t *testing.T, err error, component string) *model.ConfigurationError {
	t.Helper()
	var cfgErr *model.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, component, cfgErr.Component)
	return cfgErr
}

// RequireValidationError asserts err is a ValidationError naming exactly the
// missing columns given.
func RequireValidationError(t *testing.T, err error, missing ...string) *model.ValidationError {
	t.Helper()
	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	if len(missing) > 0 {
		assert.ElementsMatch(t, missing, validationErr.Missing)
	}
	return validationErr
}

// RequireStorageError asserts err is a StorageError.
func RequireStorageError(t *testing.T, err error) *model.StorageError {
	t.Helper()
	var storageErr *model.StorageError
	require.ErrorAs(t, err, &storageErr)
	return storageErr
}
