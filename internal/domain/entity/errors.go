package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput нет ни одного пригодного снимка (front/back).
	ErrInvalidInput = errors.New("invalid input")
	// ErrDecode снимок не удалось декодировать.
	ErrDecode = errors.New("decode error")
	// ErrConfig не хватает модели или ресурса при старте.
	ErrConfig = errors.New("config error")
	// ErrUnknownGrade оценка вне перечисления; признак ошибки в логике.
	ErrUnknownGrade = errors.New("unknown grade")
	// ErrNotFound запись не найдена в хранилище.
	ErrNotFound = errors.New("not found")
)

// AdapterError ошибка детектора. Передаётся наверх без интерпретации.
type AdapterError struct {
	View View
	Err  error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("detector failed on %s: %v", e.View, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
