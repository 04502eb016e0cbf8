package service

import "errors"

// Sentinel errors surfaced to handlers. Authentication errors deliberately
// carry no detail about which factor failed.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrChallengeNotFound  = errors.New("challenge not found")
	ErrInvalidCode        = errors.New("invalid code")
	ErrValidation         = errors.New("validation failed")
	ErrBanned             = errors.New("submitter is banned")
)
