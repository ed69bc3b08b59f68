package middleware

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/ecobat/backend/internal/domain/intake"
	"github.com/ecobat/backend/internal/domain/valuation"
)

// SetupValidator registers domain validation tags with gin's request
// binding validator. Call once at startup, the binding validator is a
// process-wide singleton.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("batchkind", validateBatchKind)
	_ = v.RegisterValidation("categorykey", validateCategoryKey)
}

func validateBatchKind(fl validator.FieldLevel) bool {
	return intake.BatchKind(fl.Field().String()).IsValid()
}

func validateCategoryKey(fl validator.FieldLevel) bool {
	return valuation.CategoryKey(fl.Field().String()).IsValid()
}
