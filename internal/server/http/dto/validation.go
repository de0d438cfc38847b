package dto

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/polkiloo/floristportal/internal/ingest"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding rules used by request DTOs to
// gin's validator. Safe to call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		// Blank entries are dropped by the partner service.
		err = v.RegisterValidation("zonerange", func(fl validator.FieldLevel) bool {
			value := strings.TrimSpace(fl.Field().String())
			return value == "" || ingest.ValidZoneRange(value)
		})
	})
	return err
}
