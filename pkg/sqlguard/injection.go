package sqlguard

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// QuestionCheckResult describes a SQL injection pattern found in a
// submitted question.
type QuestionCheckResult struct {
	IsSQLi      bool   // True if a SQL injection pattern was detected
	Fingerprint string // libinjection fingerprint of the detected pattern
}

// CheckQuestion screens a natural-language question for SQL injection
// payloads before any collaborator is contacted. A genuine question
// ("which players are fastest") passes; a pasted payload
// ("'; DROP TABLE players--") does not.
//
// Returns nil when the question is clean.
func CheckQuestion(question string) *QuestionCheckResult {
	isSQLi, fingerprint := libinjection.IsSQLi(question)
	if !isSQLi {
		return nil
	}
	return &QuestionCheckResult{
		IsSQLi:      true,
		Fingerprint: string(fingerprint),
	}
}
