package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidReversal   = errors.New("reversión inválida: el stock quedaría negativo")
)

// InsufficientStockError detalla un chequeo de suficiencia fallido:
// nombre de la entidad, stock disponible y cantidad solicitada.
// errors.Is(err, ErrInsufficientStock) sigue funcionando para el mapeo HTTP.
type InsufficientStockError struct {
	Name      string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente de %q: disponible %s, solicitado %s",
		e.Name, e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// InvalidReversalError detalla una eliminación de movimiento que dejaría
// el stock de una entidad en negativo.
type InvalidReversalError struct {
	Name      string
	Current   decimal.Decimal
	ToReverse decimal.Decimal
}

func (e *InvalidReversalError) Error() string {
	return fmt.Sprintf("no se puede revertir %s unidades de %q: stock actual %s",
		e.ToReverse.String(), e.Name, e.Current.String())
}

func (e *InvalidReversalError) Is(target error) bool { return target == ErrInvalidReversal }

// ValidationError detalla una entrada malformada (campo y motivo).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("entrada inválida en %q: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }
