package datasource

import (
	"strconv"
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldlogtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusError(t *testing.T) {
	var err error = HTTPStatusError{Message: "message", Code: 500}
	assert.Equal(t, "message", err.Error())
}

func TestIsHTTPErrorRecoverable(t *testing.T) {
	for i := 400; i < 500; i++ {
		assert.Equal(t, i == 400 || i == 408 || i == 429, IsHTTPErrorRecoverable(i), strconv.Itoa(i))
	}
	for i := 500; i < 600; i++ {
		assert.True(t, IsHTTPErrorRecoverable(i))
	}
}

func TestHTTPErrorDescription(t *testing.T) {
	assert.Equal(t, "HTTP error 400", HTTPErrorDescription(400))
	assert.Equal(t, "HTTP error 401 (not authorized)", HTTPErrorDescription(401))
	assert.Equal(t, "HTTP error 403 (not authorized)", HTTPErrorDescription(403))
	assert.Equal(t, "HTTP error 500", HTTPErrorDescription(500))
}

func TestCheckIfErrorIsRecoverableAndLog(t *testing.T) {
	t.Run("recoverable status", func(t *testing.T) {
		mockLog := ldlogtest.NewMockLog()
		assert.True(t, CheckIfErrorIsRecoverableAndLog(mockLog.Loggers, "HTTP error 503", "on request", 503, "will retry"))
		mockLog.AssertMessageMatch(t, true, ldlog.Warn, "Error on request \\(will retry\\): HTTP error 503")
	})

	t.Run("unrecoverable status", func(t *testing.T) {
		mockLog := ldlogtest.NewMockLog()
		assert.False(t, CheckIfErrorIsRecoverableAndLog(mockLog.Loggers, "HTTP error 401", "on request", 401, "will retry"))
		mockLog.AssertMessageMatch(t, true, ldlog.Error, "giving up permanently")
	})

	t.Run("network error", func(t *testing.T) {
		mockLog := ldlogtest.NewMockLog()
		assert.True(t, CheckIfErrorIsRecoverableAndLog(mockLog.Loggers, "connection refused", "on request", 0, "will retry"))
		mockLog.AssertMessageMatch(t, true, ldlog.Warn, "connection refused")
	})
}

func TestCheckForHTTPError(t *testing.T) {
	assert.NoError(t, CheckForHTTPError(200, "http://x"))
	assert.NoError(t, CheckForHTTPError(204, "http://x"))

	for _, status := range []int{401, 403, 404, 500} {
		err := CheckForHTTPError(status, "http://x")
		require.Error(t, err, status)
		hse, ok := err.(HTTPStatusError)
		require.True(t, ok)
		assert.Equal(t, status, hse.Code)
		assert.Contains(t, hse.Error(), "http://x")
	}
}
