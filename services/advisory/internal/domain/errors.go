package domain

import "errors"

var (
	ErrOfficerNotFound = errors.New("officer not found")
)
