package domain

import (
	"errors"
	"fmt"
)

// ErrCrawlInFlight is returned when a crawl is requested for a site that is
// already being crawled.
var ErrCrawlInFlight = errors.New("crawl already in flight for site")

// ErrStorageDisabled is returned by operations that need object storage when
// the deployment runs without one configured.
var ErrStorageDisabled = errors.New("object storage is not configured")

// ValidationError rejects bad input before any persistence attempt.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// NotFoundError marks a lookup for a missing site, post or banner.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
