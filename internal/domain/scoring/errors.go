package scoring

import (
	"errors"
	"fmt"
)

// ErrSkillNotImplemented marks an evaluation request for a skill that the
// catalog does not define.
var ErrSkillNotImplemented = errors.New("skill not implemented")

// NotImplementedError is returned by Evaluate for unknown skills.
type NotImplementedError struct {
	SkillID string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("%s: %q", ErrSkillNotImplemented, e.SkillID)
}

// Is makes errors.Is(err, ErrSkillNotImplemented) hold.
func (e *NotImplementedError) Is(target error) bool {
	return target == ErrSkillNotImplemented
}

// Summary is the text handed to the elaboration service instead of a report.
func (e *NotImplementedError) Summary() string {
	return fmt.Sprintf("Analysis for the skill '%s' is not implemented yet.", e.SkillID)
}
