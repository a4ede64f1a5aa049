package llm

import (
	"fmt"
)

// SystemMessage instructs the model to answer with SQL only. The response
// is still treated as untrusted and validated before execution.
const SystemMessage = "You are a SQL assistant. Translate the user's question into a single " +
	"read-only SQL SELECT statement for PostgreSQL. Return ONLY the SQL query without any " +
	"markdown formatting, code blocks, or extra text. Use only the tables and columns from " +
	"the provided schema. Do not place a semicolon anywhere except at the very end of the statement."

// BuildPrompt assembles the schema-aware prompt for one question.
func BuildPrompt(question, schemaText string) string {
	return fmt.Sprintf(
		"%s\n\nHere is the database schema:\n%s\n\n"+
			"Only write a valid SQL SELECT query using the tables and columns listed above.",
		question, schemaText,
	)
}
