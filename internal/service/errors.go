package service

import "errors"

var (
	ErrInternal          = errors.New("internal service error")
	ErrInvalidTargetType = errors.New("invalid target type")
	ErrEmptyComment      = errors.New("comment text cannot be empty")
	ErrNotOwner          = errors.New("user is not the owner of this resource")
)
