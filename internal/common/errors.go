// Package common defines sentinel errors shared by the helpers and the HTTP
// host. Callers should match them with errors.Is.
package common

import "errors"

var (
	// Input validation errors.
	ErrInvalidArgument = errors.New("invalid argument")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Vendor errors.
	ErrAuthentication = errors.New("authentication failed")
	ErrIntegrity      = errors.New("integrity check failed")
)
