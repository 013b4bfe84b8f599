// Package apierror holds the JSON bodies of every 4xx/5xx response. Handlers
// never serialize service or storage errors directly.
package apierror

// APIError is the envelope for errors that carry only a message.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError maps request fields to what is wrong with them.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// Precondition carries the numbers behind a rejected operation: amounts as
// fixed two-decimal strings, or the count of assignments still open.
type Precondition struct {
	Detail     string  `json:"detail"`
	Disponible *string `json:"disponible,omitempty"`
	Solicitado *string `json:"solicitado,omitempty"`
	Faltante   *string `json:"faltante,omitempty"`
	Pendientes *int    `json:"pendientes,omitempty"`
}

func NewPrecondition(msg string) *Precondition {
	return &Precondition{Detail: msg}
}

// WithMontos fills the amounts. Callers pass them already formatted.
func (p *Precondition) WithMontos(disponible, solicitado, faltante string) *Precondition {
	p.Disponible, p.Solicitado, p.Faltante = &disponible, &solicitado, &faltante
	return p
}

func (p *Precondition) WithPendientes(n int) *Precondition {
	p.Pendientes = &n
	return p
}
