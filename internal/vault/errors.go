// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"errors"
	"fmt"
	"strings"
)

// The closed set of failures the Vault API is mapped onto. Use errors.Is.
var (
	ErrServer           = errors.New("server error")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnknownRole      = errors.New("unknown role")
	ErrInvalidPublicKey = errors.New("invalid public key format")
	ErrUnknown          = errors.New("an unknown error occurred")
)

// knownMessages maps substrings of Vault error messages to errors. Order
// matters: the first match wins.
var knownMessages = []struct {
	substr string
	err    error
}{
	{"permission denied", ErrPermissionDenied},
	{"missing public_key", ErrInvalidPublicKey},
	{"failed to parse public_key as SSH key", ErrInvalidPublicKey},
	{"Unknown role", ErrUnknownRole},
}

// ErrorFromMessages classifies the "errors" array of a 4xx response. Only
// the first message is inspected; anything unrecognised is ErrUnknown.
func ErrorFromMessages(messages []string) error {
	if len(messages) == 0 {
		return ErrUnknown
	}
	for _, km := range knownMessages {
		if strings.Contains(messages[0], km.substr) {
			return km.err
		}
	}
	return ErrUnknown
}

// ResponseError is returned for 4xx and 5xx responses. Err is one of the
// sentinel errors above.
type ResponseError struct {
	StatusCode int
	Messages   []string
	Err        error
}

func (e *ResponseError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("%v (HTTP %d)", e.Err, e.StatusCode)
	}
	return fmt.Sprintf("%v (HTTP %d): %s", e.Err, e.StatusCode, e.Messages[0])
}

func (e *ResponseError) Unwrap() error { return e.Err }

// SendError is a transport failure: DNS, TLS, connection refused, timeout.
type SendError struct {
	Op  string
	Err error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("failed to send %s request: %v", e.Op, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// DecodeError is a successful response whose body could not be decoded.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
