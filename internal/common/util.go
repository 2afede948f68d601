package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// MakeRandHexString generates size random bytes and returns them hex-encoded,
// so the resulting string is 2*size characters long.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ValidationError wraps ErrorValidation with a human readable reason.
func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrorValidation, fmt.Sprintf(format, args...))
}

// ValidationMessage returns the reason part of an error produced by
// ValidationError, or the whole message for anything else.
func ValidationMessage(err error) string {
	msg := err.Error()
	prefix := ErrorValidation.Error() + ": "
	if i := strings.LastIndex(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}
