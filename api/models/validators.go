// api/models/validators.go
package models

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Annany2002/cvm-baseprep/internal/core"
	"github.com/Annany2002/cvm-baseprep/internal/domain"
)

var registerOnce sync.Once

// RegisterValidators adds the binding tags used by the request structs to
// gin's validator. Safe to call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		if err = v.RegisterValidation("postfix", func(fl validator.FieldLevel) bool {
			return core.IsValidPostfix(fl.Field().String())
		}); err != nil {
			return
		}
		// identifier accepts the empty string so a *string field can clear a value.
		if err = v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
			return core.IsValidOptionalIdentifier(fl.Field().String())
		}); err != nil {
			return
		}
		err = v.RegisterValidation("jointype", func(fl validator.FieldLevel) bool {
			_, perr := domain.ParseJoinType(fl.Field().String())
			return perr == nil
		})
	})
	return err
}
