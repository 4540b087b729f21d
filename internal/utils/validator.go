package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicwatch/pkg/constants"
)

var validate *validator.Validate

// Initialize validator with custom validation rules
func init() {
	validate = validator.New()

	validate.RegisterValidation("objectid", validateObjectID)
	validate.RegisterValidation("report_status", validateReportStatus)
	validate.RegisterValidation("user_role", validateUserRole)
	validate.RegisterValidation("deleted_by", validateDeletedBy)
	validate.RegisterValidation("notblank", validateNotBlank)
}

// ValidateStruct validates a struct using the validator
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// GetValidationErrors returns formatted validation errors
func GetValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := strings.ToLower(e.Field())
			tag := e.Tag()
			param := e.Param()

			switch tag {
			case "required", "notblank":
				errors[field] = fmt.Sprintf("%s is required", field)
			case "min":
				errors[field] = fmt.Sprintf("%s must be at least %s characters", field, param)
			case "max":
				errors[field] = fmt.Sprintf("%s must not exceed %s characters", field, param)
			case "objectid":
				errors[field] = "Must be a valid ID"
			case "report_status":
				errors[field] = "Must be a valid report status"
			case "user_role":
				errors[field] = "Must be a valid user role"
			case "deleted_by":
				errors[field] = "Must be a valid delete attribution"
			default:
				errors[field] = fmt.Sprintf("%s is invalid", field)
			}
		}
	}

	return errors
}

// IsBlank reports whether s is empty or whitespace only
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func validateObjectID(fl validator.FieldLevel) bool {
	_, err := primitive.ObjectIDFromHex(fl.Field().String())
	return err == nil
}

func validateReportStatus(fl validator.FieldLevel) bool {
	return constants.IsValidStatus(fl.Field().String())
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case constants.RoleCitizen, constants.RoleOfficial, constants.RoleAdmin:
		return true
	}
	return false
}

func validateDeletedBy(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case constants.DeletedBySelf, constants.DeletedByAdmin:
		return true
	}
	return false
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return !IsBlank(fl.Field().String())
}
