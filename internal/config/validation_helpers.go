package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	xyzerrors "github.com/alexisbeaulieu97/xyzplot/pkg/errors"
)

// convertValidationError normalizes validator errors into validation errors.
func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		ve := ves[0]
		field := fileFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return xyzerrors.NewValidationError(field, msg, err)
	}

	return xyzerrors.NewValidationError("config", err.Error(), err)
}

// fileFieldName turns "Settings.submit.timeout" into "submit.timeout".
func fileFieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return strings.Join(parts, ".")
}
