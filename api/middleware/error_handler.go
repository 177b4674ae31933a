// api/middleware/error_handler.go
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Annany2002/cvm-baseprep/internal/auth"
	"github.com/Annany2002/cvm-baseprep/internal/domain"
	"github.com/Annany2002/cvm-baseprep/internal/generation"
	"github.com/Annany2002/cvm-baseprep/internal/mediation"
	"github.com/Annany2002/cvm-baseprep/internal/session"
	"github.com/Annany2002/cvm-baseprep/internal/sqlbuilder"
	"github.com/Annany2002/cvm-baseprep/internal/storage"
)

// ErrBadRequest marks request errors detected by handlers themselves.
var ErrBadRequest = errors.New("bad request")

// ErrTableAlreadySelected is returned when a kind is added to a session twice.
var ErrTableAlreadySelected = errors.New("table is already selected in this session")

// ErrUnknownTableKind is returned for ids missing from the catalog.
var ErrUnknownTableKind = errors.New("unknown table kind")

// ErrNoGenerationRun is returned when progress is requested before any run was started.
var ErrNoGenerationRun = errors.New("no generation run for this session")

// ErrGenerationInProgress rejects a second run while one is still generating.
var ErrGenerationInProgress = errors.New("a generation run is already in progress for this session")

// ErrorHandler creates a Gin middleware for centralized error handling.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		// We only handle the last error for the response.
		err := c.Errors.Last().Err
		customLog.Printf("[ErrorHandler] Detected error: %v | Type: %T", err, err)

		var statusCode int
		var userMessage string

		var validationErrs validator.ValidationErrors
		if errors.Is(err, storage.ErrSessionNotFound) ||
			errors.Is(err, storage.ErrGeneratedTableNotFound) ||
			errors.Is(err, session.ErrTableNotSelected) ||
			errors.Is(err, session.ErrJoinNotFound) ||
			errors.Is(err, ErrUnknownTableKind) ||
			errors.Is(err, ErrNoGenerationRun) {
			statusCode = http.StatusNotFound
			userMessage = err.Error()
		} else if errors.Is(err, ErrTableAlreadySelected) ||
			errors.Is(err, session.ErrJoinTableInUse) ||
			errors.Is(err, session.ErrJoinIDConflict) ||
			errors.Is(err, ErrGenerationInProgress) {
			statusCode = http.StatusConflict
			userMessage = err.Error()
		} else if errors.Is(err, auth.ErrTokenMalformed) ||
			errors.Is(err, auth.ErrTokenInvalid) ||
			errors.Is(err, auth.ErrTokenClaimsInvalid) ||
			errors.Is(err, auth.ErrUnexpectedSigningMethod) ||
			errors.Is(err, auth.ErrUnauthorized) {
			statusCode = http.StatusUnauthorized
			userMessage = "Invalid or malformed authentication token."
		} else if errors.Is(err, auth.ErrTokenExpired) {
			statusCode = http.StatusUnauthorized
			userMessage = "Authentication token has expired."
		} else if errors.As(err, &validationErrs) {
			statusCode = http.StatusBadRequest
			userMessage = "Validation failed. Please check your input."
			for _, fe := range validationErrs {
				customLog.Printf("Validation Error: Field %s failed on %s", fe.Field(), fe.Tag())
			}
		} else if errors.Is(err, ErrBadRequest) ||
			errors.Is(err, session.ErrFieldsMismatch) ||
			errors.Is(err, session.ErrJoinTableIsBase) ||
			errors.Is(err, session.ErrEmptyJoinID) ||
			errors.Is(err, domain.ErrUnknownFormType) ||
			errors.Is(err, sqlbuilder.ErrNoBaseTable) ||
			errors.Is(err, generation.ErrNoTablesSelected) {
			statusCode = http.StatusBadRequest
			userMessage = err.Error()
		} else if errors.Is(err, mediation.ErrUpstream) {
			statusCode = http.StatusBadGateway
			userMessage = "An upstream backend is unavailable."
		} else {
			statusCode = http.StatusInternalServerError
			userMessage = "An unexpected internal server error occurred."
			customLog.Warnf("Unhandled error type: %T, Error: %v", err, err)
		}

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(statusCode, gin.H{"error": userMessage})
		} else {
			customLog.Printf("[ErrorHandler] Warning: Response already written before handling error.")
		}
	}
}
