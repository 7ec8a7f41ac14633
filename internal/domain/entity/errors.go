package entity

import "errors"

var (
	// ErrConfig signals a deployment misconfiguration, such as a missing verification token
	ErrConfig = errors.New("server configuration error")
	// ErrUnauthorized signals a webhook delivery with a wrong verification token
	ErrUnauthorized = errors.New("invalid verification token")
	// ErrInvalidPayload signals a webhook body that cannot be decoded
	ErrInvalidPayload = errors.New("invalid payload")
)
