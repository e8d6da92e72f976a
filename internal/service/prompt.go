package service

import (
	"fmt"
	"time"
)

const promptTemplate = `Today's date is %s.

User Question: %s

Retrieved Issues Data:
%s

Instructions:
1. Answer the user's question DIRECTLY based on the data provided.
2. ALWAYS include exact titles, contributors, and dates in your answer.
3. If asking for "most recent", show the issue with the LATEST created_at date.
4. If asking "who has most commit", analyze the commit count field and identify the top contributor.
5. If NO relevant data, say "No matching issues found".
6. Be concise and factual.

Answer:`

// ComposePrompt assembles the grounding prompt: today's date anchors
// relative-time questions, the context block is the only data the model may
// use, and the instructions pin the answer format.
func ComposePrompt(question, contextBlock string, today time.Time) string {
	return fmt.Sprintf(promptTemplate, today.Format("2006-01-02"), question, contextBlock)
}
