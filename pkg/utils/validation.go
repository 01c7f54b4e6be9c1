package utils

import (
	"strings"
	"unicode/utf8"

	"github.com/Miandari/dailygrit/pkg/models"
)

// ValidateChallengeName checks the name length limits
func ValidateChallengeName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < models.MinChallengeNameLength {
		return models.ValidationError("name", "must be at least %d characters", models.MinChallengeNameLength)
	}
	if n > models.MaxChallengeNameLength {
		return models.ValidationError("name", "must be at most %d characters", models.MaxChallengeNameLength)
	}
	return nil
}

// ValidateDescription checks the optional description length
func ValidateDescription(desc *string) error {
	if desc != nil && utf8.RuneCountInString(*desc) > models.MaxDescriptionLength {
		return models.ValidationError("description", "must be at most %d characters", models.MaxDescriptionLength)
	}
	return nil
}

// ValidateDurationDays checks the challenge duration
func ValidateDurationDays(days int) error {
	if days < 1 || days > models.MaxDurationDays {
		return models.ValidationError("duration_days", "must be between 1 and %d", models.MaxDurationDays)
	}
	return nil
}
