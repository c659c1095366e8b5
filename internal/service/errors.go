package service

import (
	"errors"

	"github.com/fintrack/fintrack/internal/repository"
)

var (
	ErrValidation      = errors.New("validation_error")
	ErrNotFound        = repository.ErrNotFound
	ErrDuplicateSymbol = repository.ErrDuplicateSymbol
)
