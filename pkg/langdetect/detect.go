// Package langdetect decides whether a submission is Python source before any
// analyzer runs on it. It uses go-enry for extension, shebang and
// content-based classification.
package langdetect

import (
	"bytes"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Language names reported by Detect.
const (
	LangPython  = "python"
	LangUnknown = "unknown"
)

// classifierCandidates limits the content classifier to languages students
// commonly submit by mistake.
//
//nolint:gochecknoglobals // Read-only candidate list.
var classifierCandidates = []string{
	"Python", "Go", "Shell", "JavaScript", "Java", "C", "C++", "Ruby", "Markdown", "Text",
}

// Detect returns the lower-cased language of a submission, or LangUnknown
// when go-enry cannot decide with confidence.
func Detect(path string, content []byte) string {
	if len(content) > 0 && enry.IsBinary(content) {
		return LangUnknown
	}

	// Strategy 1: the file extension.
	if path != "" {
		if lang, safe := enry.GetLanguageByExtension(path); safe && lang != "" {
			return normalize(lang)
		}
	}

	if len(bytes.TrimSpace(content)) == 0 {
		return LangUnknown
	}

	// Strategy 2: the shebang line.
	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return normalize(lang)
	}

	// Strategy 3: patterns that are highly indicative of Python.
	if looksLikePython(string(content)) {
		return LangPython
	}

	// Strategy 4: the classifier, trusted only when confident.
	if lang, safe := enry.GetLanguageByClassifier(content, classifierCandidates); safe && lang != "" {
		return normalize(lang)
	}

	return LangUnknown
}

// IsPython reports whether the submission should be analyzed as Python.
// A ".py" extension is accepted outright, matching the upload filter of the
// grading front end; other files must be recognized from their content.
func IsPython(path string, content []byte) bool {
	if strings.EqualFold(extension(path), ".py") {
		return true
	}
	return Detect(path, content) == LangPython
}

// looksLikePython checks for definitions, imports and dunder names.
func looksLikePython(content string) bool {
	if strings.Contains(content, "def ") && strings.Contains(content, "):") {
		return true
	}
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "import ") && !strings.Contains(content, "import (") {
		return true
	}
	if strings.HasPrefix(trimmed, "from ") && strings.Contains(content, " import ") {
		return true
	}
	return strings.Contains(content, "__name__") || strings.Contains(content, "__main__")
}

func extension(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 || strings.ContainsAny(path[i:], `/\`) {
		return ""
	}
	return path[i:]
}

// normalize converts go-enry language names to lower-case identifiers.
func normalize(lang string) string {
	return strings.ToLower(lang)
}
