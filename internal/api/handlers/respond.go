package handlers

import (
	"errors"
	"floorkeeper/internal/booking"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"floorkeeper/internal/validation"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Error codes not raised by the booking engine
const (
	CodeHasAssociatedRecords = "HAS_ASSOCIATED_RECORDS"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeInternal             = "INTERNAL_ERROR"
	CodeUnavailable          = "SERVICE_UNAVAILABLE"
)

// TransitionDetails is the details payload of an ILLEGAL_TRANSITION response
type TransitionDetails struct {
	From    string   `json:"estado_actual"`
	Action  string   `json:"accion"`
	Allowed []string `json:"acciones_permitidas"`
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, models.SuccessResponse{Success: true, Data: data})
}

func fail(c *gin.Context, status int, resp models.ErrorResponse) {
	resp.Success = false
	c.JSON(status, resp)
}

// bindError reports a request body or query that did not bind
func bindError(c *gin.Context, err error) {
	errs := validation.Describe(err)
	resp := models.ErrorResponse{
		Error: "invalid request",
		Field: errs[0].Field,
		Code:  booking.CodeValidation,
	}
	if errs[0].Field != "" {
		resp.Error = errs[0].Field + " " + errs[0].Message
	} else {
		resp.Error = "invalid request: " + errs[0].Message
	}
	if len(errs) > 1 {
		resp.Details = errs
	}
	fail(c, http.StatusBadRequest, resp)
}

// handleError maps engine and repository errors onto the wire envelope. what names the
// operation in the server log for unexpected failures.
func handleError(c *gin.Context, err error, what string) {
	var (
		temporal   *booking.TemporalError
		invalid    *booking.ValidationError
		location   *booking.LocationError
		conflict   *booking.ConflictError
		notFound   *booking.NotFoundError
		illegal    *booking.IllegalTransitionError
		retryable  *booking.RetryableError
		errorField = booking.FieldOf(err)
	)

	switch {
	case errors.As(err, &temporal):
		fail(c, http.StatusBadRequest, models.ErrorResponse{
			Error:   err.Error(),
			Field:   errorField,
			Details: temporal.Violations,
			Code:    booking.CodeValidation,
		})
	case errors.As(err, &invalid):
		fail(c, http.StatusBadRequest, models.ErrorResponse{
			Error: err.Error(),
			Field: errorField,
			Code:  booking.CodeValidation,
		})
	case errors.As(err, &location):
		fail(c, http.StatusBadRequest, models.ErrorResponse{
			Error: location.Message,
			Field: errorField,
			Code:  booking.CodeLocationAmbiguous,
		})
	case errors.As(err, &conflict):
		fail(c, http.StatusConflict, models.ErrorResponse{
			Error:   err.Error(),
			Details: conflict.Conflicts,
			Code:    booking.CodeConflict,
		})
	case errors.As(err, &notFound):
		fail(c, http.StatusNotFound, models.ErrorResponse{
			Error: err.Error(),
			Field: errorField,
			Code:  booking.CodeNotFound,
		})
	case errors.As(err, &illegal):
		allowed := illegal.Allowed
		if allowed == nil {
			allowed = []string{}
		}
		fail(c, http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:   err.Error(),
			Details: TransitionDetails{From: illegal.From, Action: illegal.Action, Allowed: allowed},
			Code:    booking.CodeIllegalTransition,
		})
	case errors.As(err, &retryable):
		c.Header("Retry-After", "1")
		fail(c, http.StatusServiceUnavailable, models.ErrorResponse{
			Error: "the requested tables are busy, please retry",
			Code:  booking.CodeLockTimeout,
		})
	case errors.Is(err, repository.ErrNotFound):
		fail(c, http.StatusNotFound, models.ErrorResponse{Error: what + ": not found", Code: booking.CodeNotFound})
	case errors.Is(err, repository.ErrHasAssociatedRecords):
		fail(c, http.StatusConflict, models.ErrorResponse{
			Error: what + ": still referenced by other records",
			Code:  CodeHasAssociatedRecords,
		})
	case errors.Is(err, repository.ErrConflict):
		fail(c, http.StatusConflict, models.ErrorResponse{Error: what + ": already exists", Code: booking.CodeConflict})
	default:
		log.Printf("Failed to %s: %v", what, err)
		fail(c, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to " + what, Code: CodeInternal})
	}
}

// pathID parses the :id path parameter, writing a 400 when it is not a UUID
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, models.ErrorResponse{
			Error: "id must be a valid UUID",
			Field: "id",
			Code:  booking.CodeValidation,
		})
		return uuid.Nil, false
	}
	return id, true
}

// queryID parses an optional UUID query parameter
func queryID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		fail(c, http.StatusBadRequest, models.ErrorResponse{
			Error: name + " must be a valid UUID",
			Field: name,
			Code:  booking.CodeValidation,
		})
		return nil, false
	}
	return &id, true
}

// queryPage parses limit and offset for hierarchy listings
func queryPage(c *gin.Context) (limit, offset *int, ok bool) {
	for _, p := range []struct {
		name string
		dst  **int
	}{{"limit", &limit}, {"offset", &offset}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fail(c, http.StatusBadRequest, models.ErrorResponse{
				Error: p.name + " must be a non-negative integer",
				Field: p.name,
				Code:  booking.CodeValidation,
			})
			return nil, nil, false
		}
		*p.dst = &n
	}
	return limit, offset, true
}

// queryBool parses an optional boolean query parameter
func queryBool(c *gin.Context, name string) (*bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		fail(c, http.StatusBadRequest, models.ErrorResponse{
			Error: name + " must be true or false",
			Field: name,
			Code:  booking.CodeValidation,
		})
		return nil, false
	}
	return &b, true
}

func activeOrDefault(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}
