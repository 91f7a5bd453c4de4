package profile

import "errors"

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrSectionNotFound = errors.New("profile section entry not found")
	ErrNameRequired    = errors.New("name is required")
)
