package model

import (
	"net/http"
	"time"
)

// Credentials are supplied by the client at login.
type Credentials struct {
	ID       string
	Password string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User          UserInfo
	AccessToken   string
	RefreshCookie RefreshCookie
}

// LogoutRequest carries the caller subject (from a verified access token)
// and the refresh token presented by the client.
type LogoutRequest struct {
	SubjectID    string
	RefreshToken string
}

// RenewResult is returned by a successful renewal. RefreshCookie is set only
// when the refresh token was rotated.
type RenewResult struct {
	AccessToken   string
	RefreshCookie *RefreshCookie
}

// CookiePolicy is the transport policy for the refresh token cookie.
type CookiePolicy struct {
	Name     string
	Domain   string
	Path     string
	SameSite http.SameSite
	Secure   bool
	HTTPOnly bool
	MaxAge   time.Duration
}

// RefreshCookie is an instruction to hand the refresh token to the client.
type RefreshCookie struct {
	Value  string
	Policy CookiePolicy
}
