package handlers

import (
	"errors"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/premsagarmanikyala/mantrix-ai/internal/services"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags on gin's validator engine.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		err = v.RegisterValidation("schedule_mode", func(fl validator.FieldLevel) bool {
			return services.ValidScheduleMode(strings.ToLower(strings.TrimSpace(fl.Field().String())))
		})
	})
	return err
}

// bindingErrorCode picks the error code for a failed bind.
func bindingErrorCode(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			switch fe.Field() {
			case "ScheduleMode":
				return "invalid_schedule_mode"
			case "DailyStudyHours":
				return "invalid_schedule_parameter"
			}
		}
	}
	return "invalid_request"
}
