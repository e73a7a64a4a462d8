package masking

import "strings"

const maskToken = "****"

// sensitiveKeys are metadata fields whose values get redacted before the
// entry is persisted. Card digits stay readable by their last 4 only.
var sensitiveKeys = map[string]bool{
	"card_last_digits": true,
	"card_number":      true,
	"password":         true,
}

// MaskSecret redacts a value while keeping a minimal suffix for auditing.
func MaskSecret(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) <= 4 {
		return maskToken
	}
	return maskToken + trimmed[len(trimmed)-4:]
}

// MaskMetadata returns a copy of the input with sensitive values masked.
func MaskMetadata(input map[string]any) map[string]any {
	if len(input) == 0 {
		return nil
	}

	masked := make(map[string]any, len(input))
	for key, value := range input {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		if str, ok := value.(string); ok && sensitiveKeys[trimmedKey] {
			masked[trimmedKey] = MaskSecret(str)
			continue
		}
		masked[trimmedKey] = value
	}

	if len(masked) == 0 {
		return nil
	}
	return masked
}
