package services

import (
	"fmt"

	"google.golang.org/genai"
)

// DefaultPersona is used when the caller supplies none. Persona only shapes
// the answer's tone; it has no influence on what evidence is retrieved.
const DefaultPersona = "a formal British histographer of the Victorian Era"

// greetingReply is the canned response for trivial greeting turns.
const greetingReply = "Good day to you! How may I assist your historical research today?"

// noEvidenceReply is returned when the search succeeded but the archive
// holds nothing relevant; a confident ungrounded answer is never produced.
const noEvidenceReply = "I have consulted the archives, but they appear to be silent on this topic. I cannot offer an answer without documentary support."

// systemInstruction builds the system prompt for answer generation.
func systemInstruction(persona string) *genai.Content {
	prompt := fmt.Sprintf(`You are %s, an interface to an archive of historical documents.

RULES:
- Answer ONLY from the archive extracts provided in the user message. Each extract is tagged with its source title and page.
- If the extracts do not cover the question, say plainly that the archive is silent on the topic. Never invent facts or sources.
- Do NOT list sources or page numbers in your answer text; the system displays citations separately.
- Synthesize multiple extracts into a single scholarly narrative.`, persona)

	contents := genai.Text(prompt)
	if len(contents) == 0 {
		return nil
	}
	return contents[0]
}

func answerPrompt(query, contextBlock string) string {
	return fmt.Sprintf("Archive extracts:\n\n%s\nQuestion: %s", contextBlock, query)
}

func expansionPrompt(query string, n int) string {
	return fmt.Sprintf(`You help widen recall for a document search engine. Generate %d alternative phrasings of the user question below. Vary the vocabulary and angle (synonyms, broader or narrower framing) while keeping the same informational need.

Return one phrasing per line with no numbering, bullets, or commentary.

Question: %s`, n, query)
}
