package sqlguard

import "testing"

func TestCheckQuestion_CleanQuestions(t *testing.T) {
	questions := []string{
		"which players are the fastest",
		"show me the top 10 strikers by overall rating",
		"how many left-footed players are there?",
		"average wage per club",
	}

	for _, q := range questions {
		if result := CheckQuestion(q); result != nil {
			t.Errorf("CheckQuestion(%q) flagged clean question (fingerprint %s)", q, result.Fingerprint)
		}
	}
}

func TestCheckQuestion_InjectionPayloads(t *testing.T) {
	payloads := []string{
		"'; DROP TABLE players--",
		"1' OR '1'='1",
		"admin'--",
	}

	for _, p := range payloads {
		result := CheckQuestion(p)
		if result == nil {
			t.Errorf("CheckQuestion(%q) = nil, want detection", p)
			continue
		}
		if !result.IsSQLi {
			t.Errorf("CheckQuestion(%q).IsSQLi = false", p)
		}
		if result.Fingerprint == "" {
			t.Errorf("CheckQuestion(%q) returned empty fingerprint", p)
		}
	}
}
