package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Precondition causes. Wrapped by *PrecondicionError; match with errors.Is.
var (
	ErrPeriodoDuplicado              = errors.New("ya existe una caja para este período")
	ErrCajaCerrada                   = errors.New("la caja no está abierta")
	ErrAsignacionesPendientes        = errors.New("la caja tiene asignaciones pendientes")
	ErrFondosInsuficientesCaja       = errors.New("fondos insuficientes en caja")
	ErrFondosInsuficientesAsignacion = errors.New("fondos insuficientes en la asignación")
	ErrAsignacionCompletada          = errors.New("la asignación ya fue completada")
	ErrAsignacionInactiva            = errors.New("la asignación no está activa")
	ErrAsignacionConMovimientos      = errors.New("la asignación ya tiene préstamos o cobros")
	ErrTrabajadorInactivo            = errors.New("el trabajador no está activo")
	ErrClienteInactivo               = errors.New("el cliente no está activo")
	ErrPagoCompletado                = errors.New("el pago ya está completo")
	ErrSobrepago                     = errors.New("el monto excede lo adeudado")
	ErrMoratorioActivo               = errors.New("el pago ya tiene un moratorio activo")
	ErrMoratorioInactivo             = errors.New("el moratorio no está activo")
	ErrNoRenovable                   = errors.New("el préstamo aún no puede renovarse")
	ErrSinLineaCredito               = errors.New("el cliente no tiene línea de crédito")
	ErrCajaDistinta                  = errors.New("la asignación activa pertenece a otra caja")
)

// ErrConflicto is the cause of every *ConflictoError.
var ErrConflicto = errors.New("conflicto de concurrencia")

// ValidacionError rejects malformed or out-of-range input.
type ValidacionError struct {
	Campo   string
	Mensaje string
}

func (e *ValidacionError) Error() string { return e.Campo + ": " + e.Mensaje }

func validacion(campo, mensaje string) error { return &ValidacionError{Campo: campo, Mensaje: mensaje} }

// NoEncontradoError reports a missing aggregate. Clave is its id, or the
// period for a cash box looked up by month.
type NoEncontradoError struct {
	Recurso string
	Clave   string
}

func (e *NoEncontradoError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Recurso, e.Clave)
}

func noEncontrado(recurso string, clave fmt.Stringer) error {
	return &NoEncontradoError{Recurso: recurso, Clave: clave.String()}
}

// buscar maps gorm.ErrRecordNotFound to *NoEncontradoError and wraps
// anything else.
func buscar(err error, recurso string, clave fmt.Stringer) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return noEncontrado(recurso, clave)
	}
	return fmt.Errorf("buscar %s: %w", recurso, err)
}

// PrecondicionError rejects an operation whose preconditions do not hold.
// Amounts are set when the cause is a shortfall; Pendientes when it is a count.
type PrecondicionError struct {
	Causa      error
	Disponible decimal.Decimal
	Solicitado decimal.Decimal
	Faltante   decimal.Decimal
	Pendientes int
}

func (e *PrecondicionError) Error() string {
	switch {
	case !e.Faltante.IsZero():
		return fmt.Sprintf("%s: disponible %s, solicitado %s, faltante %s",
			e.Causa, e.Disponible.StringFixed(2), e.Solicitado.StringFixed(2), e.Faltante.StringFixed(2))
	case e.Pendientes > 0:
		return fmt.Sprintf("%s (%d)", e.Causa, e.Pendientes)
	default:
		return e.Causa.Error()
	}
}

func (e *PrecondicionError) Unwrap() error { return e.Causa }

func precondicion(causa error) error { return &PrecondicionError{Causa: causa} }

func faltante(causa error, disponible, solicitado decimal.Decimal) error {
	return &PrecondicionError{
		Causa:      causa,
		Disponible: disponible,
		Solicitado: solicitado,
		Faltante:   solicitado.Sub(disponible).Round(2),
	}
}

// ConflictoError is returned when a cash box update kept losing the
// compare-and-swap after every retry.
type ConflictoError struct {
	Recurso  string
	Intentos int
}

func (e *ConflictoError) Error() string {
	return fmt.Sprintf("%s: %s tras %d intentos", ErrConflicto, e.Recurso, e.Intentos)
}

func (e *ConflictoError) Unwrap() error { return ErrConflicto }
