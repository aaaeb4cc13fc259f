package modelcard

import "strings"

// InferLabel guesses the quantization label from an artifact stem: the last
// '-' segment upper-cased, or the one before it when the last segment is a
// shard number ("phi3.5-mini-instruct-q4k-0" -> "Q4K").
func InferLabel(stem string) string {
	parts := strings.Split(stem, "-")
	last := parts[len(parts)-1]
	if isDigits(last) && len(parts) > 1 {
		return strings.ToUpper(parts[len(parts)-2])
	}
	return strings.ToUpper(last)
}

// IsMultiScheme reports whether an operator answer names several schemes.
func IsMultiScheme(answer string) bool {
	return strings.Contains(answer, ",")
}

// ParseLabels splits an answer on commas into trimmed, upper-cased labels,
// dropping empties and repeats.
func ParseLabels(answer string) []string {
	var labels []string
	seen := make(map[string]bool)
	for part := range strings.SplitSeq(answer, ",") {
		l := strings.ToUpper(strings.TrimSpace(part))
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		labels = append(labels, l)
	}
	return labels
}
