package models

import "errors"

// Виды доменных ошибок. API-слой переводит их в HTTP-статусы,
// ядро никогда не глотает Validation/Conflict.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrFailure    = errors.New("internal failure")
)
