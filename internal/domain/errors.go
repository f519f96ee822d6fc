package domain

import (
	"errors"
	"fmt"
)

// ErrEmailTaken 邮箱唯一约束冲突
var ErrEmailTaken = errors.New("email already registered")

// ValidationError 入参格式错误，始终对应 400
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

func NewValidationError(msg string) error { return &ValidationError{Msg: msg} }

// ConflictError 唯一约束冲突
type ConflictError struct {
	Field string
	Err   error
}

func (e *ConflictError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Field + " already exists"
}

func (e *ConflictError) Unwrap() error { return e.Err }

// StorageError 存储引擎错误
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// CryptoError 哈希后端错误
type CryptoError struct{ Err error }

func (e *CryptoError) Error() string { return "failed to hash password: " + e.Err.Error() }

func (e *CryptoError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
