package linkmeta_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/linkmeta"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := linkmeta.Errorf(linkmeta.ENOTFOUND, "link %q not found", "abc")

	assert.Equal(t, linkmeta.ENOTFOUND, linkmeta.ErrorCode(err))
	assert.Equal(t, "link \"abc\" not found", linkmeta.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, linkmeta.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, linkmeta.ErrorMessage(nil))
}

func TestErrorCode_WrappedApplicationError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("saving: %w", linkmeta.Errorf(linkmeta.EINVALID, "link URL required"))

	assert.Equal(t, linkmeta.EINVALID, linkmeta.ErrorCode(err))
	assert.Equal(t, "link URL required", linkmeta.ErrorMessage(err))
}

func TestErrorCode_OtherError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, linkmeta.EINTERNAL, linkmeta.ErrorCode(err))
	assert.Equal(t, "Internal error.", linkmeta.ErrorMessage(err))
}

func TestStatusCode(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("fetching: %w", &linkmeta.StatusError{Code: 503, URL: "https://ex.com"})

	assert.Equal(t, 503, linkmeta.StatusCode(err))
	assert.Equal(t, "fetching: HTTP 503 for https://ex.com", err.Error())
	assert.Zero(t, linkmeta.StatusCode(errors.New("boom")))
	assert.Zero(t, linkmeta.StatusCode(nil))
}
