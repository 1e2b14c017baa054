package service

import (
	"github.com/go-playground/validator/v10"

	"github.com/tutorhive/booking-api/internal/schedule"
)

// RegisterCustomValidators installs the scheduling-specific validations used
// across request DTOs. Safe to call more than once on the same validator.
func RegisterCustomValidators(v *validator.Validate) {
	_ = v.RegisterValidation("slottype", func(fl validator.FieldLevel) bool {
		return schedule.SlotKind(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		_, err := schedule.ParseWeekdays([]string{fl.Field().String()})
		return err == nil
	})
	_ = v.RegisterValidation("classtime", func(fl validator.FieldLevel) bool {
		_, err := schedule.ParseTimeOfDay(fl.Field().String())
		return err == nil
	})
}
