package model

import "errors"

var (
	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("not found")

	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Session errors. Callers map them to transport statuses.
var (
	// ErrAuthenticationFailed covers both unknown ids and wrong passwords.
	ErrAuthenticationFailed = errors.New("no such user or bad credentials")
	// ErrRefreshTokenBlank is a bad request.
	ErrRefreshTokenBlank = errors.New("refresh token is blank")
	// ErrUnauthorized is returned by logout for absent or foreign refresh tokens.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRefreshTokenExpired is returned by renewal for absent, expired or invalid refresh tokens.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	// ErrInternal hides unexpected failures from the caller.
	ErrInternal = errors.New("internal error")
)
