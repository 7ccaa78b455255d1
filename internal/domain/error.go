package domain

import "errors"

var (
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrBackendUnavailable = errors.New("backend unavailable or rejected the request")
	ErrMalformedEvent     = errors.New("malformed inbound event")
	ErrUnknownAction      = errors.New("unknown action")
	ErrDeliveryFailed     = errors.New("notification was not delivered to any operator")
)
