package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound         = errors.New("resource not found")
	ErrBergerieNotFound = errors.New("bergerie not found")
	ErrPostNotFound     = errors.New("post not found")

	// User & Authentication Errors
	ErrUserNotFound   = errors.New("user not found")
	ErrUnauthorized   = errors.New("unauthorized") // Authentication required or failed
	ErrForbidden      = errors.New("forbidden")    // Authenticated, but lacks permission
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// Membership/Counter Errors
	ErrLikeAlreadyExists   = errors.New("like already exists")
	ErrLikeNotFound        = errors.New("like not found")
	ErrFollowAlreadyExists = errors.New("follow already exists")
	ErrFollowNotFound      = errors.New("follow not found")
	// ErrConflictingState means a conditional membership write raced and the
	// single retry still conflicted. Callers treat it like a store failure.
	ErrConflictingState = errors.New("conflicting membership state")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrInvalidInput   = errors.New("invalid input data")
)
