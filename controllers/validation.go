package controllers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Los errores de validación se reportan con el nombre json del campo,
// no con el nombre del struct.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// bindingErrors convierte los errores del validador de gin al mapa
// campo -> mensajes que devuelven los endpoints con 422.
func bindingErrors(err error) map[string][]string {
	errs := make(map[string][]string)

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := strings.ToLower(fe.Field())
			errs[field] = append(errs[field], validationMessage(field, fe))
		}
		return errs
	}

	errs["body"] = []string{"El cuerpo de la petición no es válido"}
	return errs
}

func validationMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("El campo %s es obligatorio", field)
	case "email":
		return "El correo no tiene un formato válido"
	case "min":
		return fmt.Sprintf("El campo %s debe tener al menos %s caracteres", field, fe.Param())
	case "max":
		return fmt.Sprintf("El campo %s no debe exceder %s caracteres", field, fe.Param())
	case "eqfield":
		return "La confirmación de contraseña no coincide"
	default:
		return fmt.Sprintf("El campo %s no es válido", field)
	}
}
