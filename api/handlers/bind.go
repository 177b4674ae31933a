// api/handlers/bind.go
package handlers

import (
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Annany2002/cvm-baseprep/api/middleware"
)

// bindJSON binds the body into req. Validation errors pass through as is so
// the error handler can report them; anything else is a malformed body. An
// empty body binds to the zero value when allowEmpty is set.
func bindJSON(c *gin.Context, req any, allowEmpty bool) error {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return nil
	}
	if allowEmpty && errors.Is(err, io.EOF) {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	return fmt.Errorf("%w: invalid request body: %v", middleware.ErrBadRequest, err)
}
