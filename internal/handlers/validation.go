package handlers

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	maxStringLength = 255
	maxBulkIDs      = 100
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// validate collects errors and returns a *ValidationError if any exist.
func validate(checks ...func() string) error {
	var errs []string
	for _, check := range checks {
		if msg := check(); msg != "" {
			errs = append(errs, msg)
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func requireNonEmpty(field, value string) string {
	if strings.TrimSpace(value) == "" {
		return fmt.Sprintf("%s is required", field)
	}
	return ""
}

func checkMaxLength(field, value string, max int) string {
	if len(value) > max {
		return fmt.Sprintf("%s exceeds maximum length of %d", field, max)
	}
	return ""
}

func checkPositive(field string, value int) string {
	if value < 1 {
		return fmt.Sprintf("%s must be a positive integer", field)
	}
	return ""
}

func checkEmail(field, value string) string {
	if v := strings.TrimSpace(value); v != "" && !strings.Contains(v, "@") {
		return fmt.Sprintf("%s must be a valid email address", field)
	}
	return ""
}

// ParseCharacterID parses a character id path parameter.
func ParseCharacterID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &ValidationError{Errors: []string{fmt.Sprintf("id %q is not an integer", raw)}}
	}
	if err := validate(func() string { return checkPositive("id", id) }); err != nil {
		return 0, err
	}
	return id, nil
}

// ParsePage parses the page query parameter; an empty value means page 1.
func ParsePage(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &ValidationError{Errors: []string{fmt.Sprintf("page %q is not an integer", raw)}}
	}
	if err := validate(func() string { return checkPositive("page", page) }); err != nil {
		return 0, err
	}
	return page, nil
}

// validateSearchName validates the optional name filter.
func validateSearchName(name string) error {
	return validate(
		func() string { return checkMaxLength("name", name, maxStringLength) },
	)
}

// validateCharacterIDs validates a bulk toggle payload. Repeated ids are
// allowed: each occurrence is a separate toggle.
func validateCharacterIDs(ids []int) error {
	checks := []func() string{
		func() string {
			if len(ids) == 0 {
				return "ids must contain at least one id"
			}
			return ""
		},
		func() string {
			if len(ids) > maxBulkIDs {
				return fmt.Sprintf("ids must contain at most %d ids", maxBulkIDs)
			}
			return ""
		},
	}

	for i, id := range ids {
		checks = append(checks, func() string {
			return checkPositive(fmt.Sprintf("ids[%d]", i), id)
		})
	}

	return validate(checks...)
}

// validateLogin validates a login request.
func validateLogin(req *LoginRequest) error {
	return validate(
		func() string { return requireNonEmpty("email", req.Email) },
		func() string { return checkEmail("email", req.Email) },
		func() string { return checkMaxLength("email", req.Email, maxStringLength) },
		func() string { return requireNonEmpty("password", req.Password) },
		func() string { return checkMaxLength("password", req.Password, maxStringLength) },
	)
}
