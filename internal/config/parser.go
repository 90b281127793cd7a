package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/alexisbeaulieu97/xyzplot/internal/sweep"
	xyzerrors "github.com/alexisbeaulieu97/xyzplot/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ParseSweep loads a sweep file from disk, validates it, and returns the resulting model.
func ParseSweep(path string) (*Sweep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xyzerrors.NewParseError(path, 0, err)
	}

	var s Sweep
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, xyzerrors.NewParseError(path, extractLine(err), err)
	}
	s.dir = filepath.Dir(path)

	if err := ValidateSweep(&s); err != nil {
		return nil, err
	}

	return &s, nil
}

// ValidateSweep runs the struct rules, then the same cross-field checks the plot node
// applies to its widgets (value lists must split to at least one value, Z values need a
// Z input).
func ValidateSweep(s *Sweep) error {
	if s == nil {
		return xyzerrors.NewValidationError("sweep", "sweep is nil", nil)
	}

	if err := validatorInstance().Struct(s); err != nil {
		return convertValidationError(err)
	}

	if _, err := sweep.Resolve(s.Inputs(), s.Batch()); err != nil {
		return err
	}
	return nil
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
