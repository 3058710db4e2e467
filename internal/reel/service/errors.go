package service

import "errors"

// Errors returned by the gateway and ticket services. The HTTP layer maps
// each one to a stable error code.
var (
	ErrInvalidToken = errors.New("invalid access token")
	ErrExpired      = errors.New("access token expired")
	ErrForbidden    = errors.New("access forbidden")
	ErrNotFound     = errors.New("not found")
	ErrUpstream     = errors.New("upstream storage failure")

	ErrTicketNotFound     = errors.New("video ticket not found")
	ErrTicketAlreadyUsed  = errors.New("video ticket has already been used")
	ErrTicketExpired      = errors.New("video ticket expired")
	ErrInvalidProviderURL = errors.New("invalid provider video url")

	ErrInvalidRequest = errors.New("invalid request")
)
