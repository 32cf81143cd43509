package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrValidation        = errors.New("entrada inválida")
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInsufficientDebt  = errors.New("el monto supera la deuda pendiente")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrStorage           = errors.New("error de almacenamiento")
	ErrInconsistentState = errors.New("saldo inconsistente con los movimientos")
)

// StorageError envuelve una falla del colaborador de persistencia.
// errors.Is(err, ErrStorage) es verdadero para cualquier *StorageError.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage.Error(), e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, ErrStorage).
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// IsDomain indica si err ya es un error de dominio conocido (no debe envolverse como StorageError).
func IsDomain(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientDebt) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrStorage) ||
		errors.Is(err, ErrInconsistentState)
}
