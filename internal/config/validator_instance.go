package config

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/alexisbeaulieu97/xyzplot/internal/axis"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	nodeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_:.-]+$`)
)

// validatorInstance configures and returns the shared validator instance used across the config package.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		// Report fields by their file keys rather than Go names.
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"yaml", "mapstructure"} {
				name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return field.Name
		})

		_ = v.RegisterValidation("node_id", func(fl validator.FieldLevel) bool {
			return nodeIDPattern.MatchString(strings.TrimSpace(fl.Field().String()))
		})

		_ = v.RegisterValidation("axis_ref", func(fl validator.FieldLevel) bool {
			_, ok := axis.Parse(fl.Field().String())
			return ok
		})

		_ = v.RegisterValidation("axis_ref_or_none", func(fl validator.FieldLevel) bool {
			value := strings.TrimSpace(fl.Field().String())
			if value == "" || value == axis.None {
				return true
			}
			_, ok := axis.Parse(value)
			return ok
		})

		_ = v.RegisterValidation("file_ref", func(fl validator.FieldLevel) bool {
			return isValidFilePath(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// GetValidator returns a configured validator instance for use outside the config package.
func GetValidator() *validator.Validate {
	return validatorInstance()
}

// isValidFilePath performs syntactic validation of file paths without filesystem access
func isValidFilePath(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}

	if strings.Contains(path, "\x00") {
		return false
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, `\`) {
		return false
	}

	return true
}
