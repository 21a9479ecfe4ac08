package types

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidArgument marks a caller error: malformed address, byte length or range.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDecrypt marks an authentication, length or padding failure of shared-secret decryption.
	ErrDecrypt = errors.New("decrypt failed")
	// ErrMalformedResult marks validator result bytes that do not decode.
	ErrMalformedResult = errors.New("malformed result")
)

// EngineError carries the native error code and message reported by a confidential engine.
type EngineError struct {
	Code    int32
	Message string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine error %d: %s", e.Code, e.Message)
}

func InvalidArgument(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}

func MalformedResult(err error, what string) error {
	if err == nil {
		return errors.Wrap(ErrMalformedResult, what)
	}
	return errors.Wrapf(ErrMalformedResult, "%s: %v", what, err)
}
