package models

import (
	"errors"
	"fmt"
)

var (
	ErrShortnameRequired = errors.New("blog: shortname is required")
	ErrShortnameInvalid  = errors.New("blog: shortname must be url safe")
	ErrShortnameExists   = errors.New("blog: shortname already exists")
	ErrNameRequired      = errors.New("blog: name is required")
	ErrPasswordRequired  = errors.New("blog: password is required")
	ErrSlugRequired      = errors.New("blog: slug is required")
	ErrSlugInvalid       = errors.New("blog: slug must be url safe")
	ErrSlugExists        = errors.New("blog: slug already exists")
	ErrTitleRequired     = errors.New("blog: title is required")
	ErrAuthorRequired    = errors.New("blog: post author is required")
	ErrOwnerRequired     = errors.New("blog: service owner is required")
	ErrURLRequired       = errors.New("blog: url is required")
	ErrUserNotFound      = errors.New("blog: user not found")
	ErrTagNotFound       = errors.New("blog: tag not found")
	ErrUserHasPosts      = errors.New("blog: user still owns posts")
)

// NotFoundError is returned by repositories when a record is missing.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

var invalidInput = []error{
	ErrShortnameRequired, ErrShortnameInvalid, ErrShortnameExists,
	ErrNameRequired, ErrPasswordRequired,
	ErrSlugRequired, ErrSlugInvalid, ErrSlugExists,
	ErrTitleRequired, ErrAuthorRequired, ErrOwnerRequired, ErrURLRequired,
	ErrUserNotFound, ErrTagNotFound, ErrUserHasPosts,
}

// IsInvalid reports whether err is a rejected mutation that the caller can
// fix by changing its input.
func IsInvalid(err error) bool {
	for _, target := range invalidInput {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
