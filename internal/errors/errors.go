package errors

import (
	stderrors "errors"
	"fmt"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stderrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nf *NotFoundError
	if stderrors.As(err, &nf) {
		return nf, true
	}
	return nil, false
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func IsConflictError(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

func IsForbiddenError(err error) (*ForbiddenError, bool) {
	var fe *ForbiddenError
	if stderrors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// ConcurrencyConflictError signals lock contention (deadlock, lock wait
// timeout, duplicate sequence value). Callers may retry the whole operation.
type ConcurrencyConflictError struct {
	Message string
	Cause   error
}

func (e *ConcurrencyConflictError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ConcurrencyConflictError) Unwrap() error {
	return e.Cause
}

func NewConcurrencyConflictError(message string, cause error) *ConcurrencyConflictError {
	return &ConcurrencyConflictError{
		Message: message,
		Cause:   cause,
	}
}

func IsConcurrencyConflictError(err error) (*ConcurrencyConflictError, bool) {
	var cc *ConcurrencyConflictError
	if stderrors.As(err, &cc) {
		return cc, true
	}
	return nil, false
}

type BusinessRuleCode string

const (
	CodeInsufficientCredit    BusinessRuleCode = "INSUFFICIENT_CREDIT"
	CodeAuthorizationExceeded BusinessRuleCode = "AUTHORIZATION_EXCEEDED"
	CodeAlreadyEvaluated      BusinessRuleCode = "ALREADY_EVALUATED"
)

// BusinessRuleError is a well-formed request that violates a domain invariant.
type BusinessRuleError struct {
	Code    BusinessRuleCode
	Message string
}

func (e *BusinessRuleError) Error() string {
	return e.Message
}

func NewInsufficientCreditError(message string) *BusinessRuleError {
	return &BusinessRuleError{Code: CodeInsufficientCredit, Message: message}
}

func NewAuthorizationExceededError(message string) *BusinessRuleError {
	return &BusinessRuleError{Code: CodeAuthorizationExceeded, Message: message}
}

func NewAlreadyEvaluatedError(message string) *BusinessRuleError {
	return &BusinessRuleError{Code: CodeAlreadyEvaluated, Message: message}
}

func IsBusinessRuleError(err error) (*BusinessRuleError, bool) {
	var be *BusinessRuleError
	if stderrors.As(err, &be) {
		return be, true
	}
	return nil, false
}

func IsInsufficientCredit(err error) bool {
	be, ok := IsBusinessRuleError(err)
	return ok && be.Code == CodeInsufficientCredit
}

func IsAuthorizationExceeded(err error) bool {
	be, ok := IsBusinessRuleError(err)
	return ok && be.Code == CodeAuthorizationExceeded
}

func IsAlreadyEvaluated(err error) bool {
	be, ok := IsBusinessRuleError(err)
	return ok && be.Code == CodeAlreadyEvaluated
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}
