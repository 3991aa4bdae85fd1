package parser

import "fmt"

// validateStructure checks the merged document against the minimal interview
// shape: recognized sections must be sequences of mappings, and every item
// must carry some name-like key. Returns one message per violation.
func validateStructure(raw map[string]any) []string {
	var errs []string

	for _, section := range []string{"questions", "variables", "fields", "rules"} {
		value, ok := raw[section]
		if !ok {
			continue
		}
		items, ok := value.([]any)
		if !ok {
			errs = append(errs, fmt.Sprintf("%s must be a sequence, got %T", section, value))
			continue
		}

		for i, entry := range items {
			item, ok := entry.(map[string]any)
			if !ok {
				errs = append(errs, fmt.Sprintf("%s[%d] must be a mapping, got %T", section, i, entry))
				continue
			}

			switch section {
			case "questions":
				if !hasKey(item, "name") && !hasKey(item, "question") {
					errs = append(errs, fmt.Sprintf("%s[%d] is not a valid question (missing 'name' or 'question')", section, i))
				}
			default:
				if !hasKey(item, "name") {
					errs = append(errs, fmt.Sprintf("%s[%d] is not valid (missing 'name')", section, i))
				}
			}
		}
	}

	return errs
}

func hasKey(item map[string]any, key string) bool {
	_, ok := item[key]
	return ok
}
