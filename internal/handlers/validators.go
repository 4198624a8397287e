package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/skillgrove/skillgrove_app/internal/utils"
)

// registerCustomValidators hooks application validators into gin's binding
// engine so request DTOs can use them in binding tags.
func registerCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return utils.IsStrongPassword(fl.Field().String())
	})
}
