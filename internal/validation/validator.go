package validation

import (
	"strings"
	"time"

	"rhystmorgan/contactbook/internal/models"
)

// ValidateContact checks that every contact field is present. Values are
// trimmed first, so whitespace-only input counts as missing.
func ValidateContact(firstName, lastName, phone, email string) ValidationResult {
	result := ValidationResult{
		IsValid:     true,
		ValidatedAt: time.Now(),
	}

	values := map[models.Field]string{
		models.FieldFirstName: firstName,
		models.FieldLastName:  lastName,
		models.FieldPhone:     phone,
		models.FieldEmail:     email,
	}

	for _, field := range models.Fields {
		if strings.TrimSpace(values[field]) == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   string(field),
				Code:    ErrorFieldRequired,
				Message: field.Label() + " is required",
			})
			result.IsValid = false
		}
	}

	return result
}

// ValidateFilterField checks a filter criteria name.
func ValidateFilterField(name string) ValidationResult {
	result := ValidationResult{
		IsValid:     true,
		ValidatedAt: time.Now(),
	}

	if _, err := models.ParseField(name); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "criteria",
			Code:    ErrorUnknownField,
			Message: err.Error(),
		})
		result.IsValid = false
	}

	return result
}
