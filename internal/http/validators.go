package http

import (
	"errors"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"artmatch/internal/service"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators agrega las reglas propias al validador de gin (tag `slot`).
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		registerErr = v.RegisterValidation("slot", func(fl validator.FieldLevel) bool {
			return service.ValidSlotLabel(fl.Field().String())
		})
	})
	return registerErr
}
