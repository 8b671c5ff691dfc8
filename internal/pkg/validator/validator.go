package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/routegrid-microservice/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("zoom", validateZoom)
	_ = validate.RegisterValidation("hexcolor6", validateHexColor)
}

// Validate - валидация структуры
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// validateZoom - уровень зума тайлового сервера 0..19
func validateZoom(fl validator.FieldLevel) bool {
	z := fl.Field().Int()
	return z >= 0 && z <= domain.MaxZoomLevel
}

// validateHexColor - цвет в виде #rrggbb
func validateHexColor(fl validator.FieldLevel) bool {
	_, err := domain.ParseHexColor(fl.Field().String())
	return err == nil
}
