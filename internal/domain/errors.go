package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicate       = errors.New("already exists")
	ErrInvalidSchedule = errors.New("invalid schedule")
	ErrInvalidClosure  = errors.New("invalid closure")
	ErrInvalidResource = errors.New("invalid resource")
	ErrUnknownPartner  = errors.New("unknown partner")
)
