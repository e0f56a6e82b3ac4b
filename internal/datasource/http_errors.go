package datasource

import (
	"fmt"
	"net/http"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// HTTPStatusError is returned by a request that got a non-2xx response.
type HTTPStatusError struct {
	Message string
	Code    int
}

func (e HTTPStatusError) Error() string {
	return e.Message
}

// IsHTTPErrorRecoverable tests whether an HTTP error status represents a condition that might
// resolve on its own if we retry, or at least should not make us permanently stop sending requests.
func IsHTTPErrorRecoverable(statusCode int) bool {
	if statusCode >= 400 && statusCode < 500 {
		switch statusCode {
		case 400: // bad request
			return true
		case 408: // request timeout
			return true
		case 429: // too many requests
			return true
		default:
			return false // all other 4xx errors are unrecoverable
		}
	}
	return true
}

// HTTPErrorDescription describes a status code for log messages.
func HTTPErrorDescription(statusCode int) string {
	message := ""
	if statusCode == 401 || statusCode == 403 {
		message = " (not authorized)"
	}
	return fmt.Sprintf("HTTP error %d%s", statusCode, message)
}

// CheckIfErrorIsRecoverableAndLog logs an HTTP error or network error at the appropriate level and
// determines whether it is recoverable (as defined by IsHTTPErrorRecoverable). A statusCode of zero
// means a network error, which is always recoverable.
func CheckIfErrorIsRecoverableAndLog(
	loggers ldlog.Loggers,
	errorDesc, errorContext string,
	statusCode int,
	recoverableMessage string,
) bool {
	if statusCode > 0 && !IsHTTPErrorRecoverable(statusCode) {
		loggers.Errorf("Error %s (giving up permanently): %s", errorContext, errorDesc)
		return false
	}
	loggers.Warnf("Error %s (%s): %s", errorContext, recoverableMessage, errorDesc)
	return true
}

// CheckForHTTPError returns an HTTPStatusError if statusCode is not a success status.
func CheckForHTTPError(statusCode int, url string) error {
	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		return HTTPStatusError{
			Message: fmt.Sprintf("Not authorized to access URL: %s. Verify any credentials in the request headers.", url),
			Code:    statusCode,
		}
	}

	if statusCode == http.StatusNotFound {
		return HTTPStatusError{
			Message: fmt.Sprintf("Resource not found when accessing URL: %s. Verify that this resource exists.", url),
			Code:    statusCode,
		}
	}

	if statusCode/100 != 2 {
		return HTTPStatusError{
			Message: fmt.Sprintf("Unexpected response code: %d when accessing URL: %s", statusCode, url),
			Code:    statusCode,
		}
	}
	return nil
}
