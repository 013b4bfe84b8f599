package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"cobranza/internal/apierror"
	"cobranza/internal/middleware"
	"cobranza/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	// uuid.UUID is a [16]byte; "required" must reject uuid.Nil.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(uuid.UUID); ok && v != uuid.Nil {
			return v.String()
		}
		return ""
	}, uuid.UUID{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails; the
// caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// paramUUID parses a path parameter, answering 400 when malformed.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(name+" invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// queryFecha parses a YYYY-MM-DD query value in loc. Missing yields def.
func queryFecha(c *gin.Context, name string, loc *time.Location, def time.Time) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	t, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(name+" debe tener formato YYYY-MM-DD"))
		return time.Time{}, false
	}
	return t, true
}

// queryInt parses an integer query value. Missing yields def.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, apierror.New(name+" debe ser un entero no negativo"))
		return 0, false
	}
	return n, true
}

func monto(d decimal.Decimal) string { return d.StringFixed(2) }

// respondError maps service errors to HTTP statuses. Anything unknown is
// logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	var (
		verr *service.ValidacionError
		nerr *service.NoEncontradoError
		perr *service.PrecondicionError
		cerr *service.ConflictoError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{verr.Campo: verr.Mensaje}))
	case errors.As(err, &nerr):
		c.JSON(http.StatusNotFound, apierror.New(nerr.Error()))
	case errors.As(err, &perr):
		body := apierror.NewPrecondition(perr.Error())
		if !perr.Faltante.IsZero() {
			body.WithMontos(monto(perr.Disponible), monto(perr.Solicitado), monto(perr.Faltante))
		}
		if perr.Pendientes > 0 {
			body.WithPendientes(perr.Pendientes)
		}
		c.JSON(http.StatusConflict, body)
	case errors.As(err, &cerr):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusConflict, apierror.New(cerr.Error()))
	default:
		log.Error().
			Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Msg("error no controlado")
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
	}
}
