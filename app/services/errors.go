// Package services holds the café's business rules. Controllers call
// services; services call repositories.
//
// Rule violations are returned as *DomainError values whose Message is safe
// to show to the client verbatim. Anything else is an infrastructure fault:
// it is logged where it happens and reported to the client generically.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/cafe/pkg/logger"
)

var (
	// ErrInvalidData marks a request that conflicts with stored state:
	// unknown ids, duplicates, forbidden transitions.
	ErrInvalidData = errors.New("invalid data")
	// ErrInvalidOperation marks an operation that cannot run in the
	// current situation, such as checking out an empty cart.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrNotFound marks a lookup by id that found nothing.
	ErrNotFound = errors.New("not found")
)

// DomainError is a business rule violation with a client-facing message.
type DomainError struct {
	Kind    error
	Message string
}

func (e *DomainError) Error() string { return e.Message }
func (e *DomainError) Unwrap() error { return e.Kind }

func invalidData(format string, args ...any) error {
	return &DomainError{Kind: ErrInvalidData, Message: fmt.Sprintf(format, args...)}
}

func invalidOperation(format string, args ...any) error {
	return &DomainError{Kind: ErrInvalidOperation, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return &DomainError{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// PublicMessage returns the message to show a client for err: the domain
// message when err is a DomainError, fallback otherwise.
func PublicMessage(err error, fallback string) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return fallback
}

// IsDomain reports whether err is a business rule violation.
func IsDomain(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// fault logs an infrastructure error with the operation name and entity id
// and returns it wrapped.
func fault(ctx context.Context, op string, id any, err error) error {
	logger.WithCtx(ctx).Error("services: "+op+" failed", "op", op, "id", id, "error", err)
	return fmt.Errorf("services: %s: %w", op, err)
}
