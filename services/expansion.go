package services

import (
	"context"
	"strings"
	"time"

	"google.golang.org/genai"

	"archivechat/pkg/log"
)

// QueryExpander produces alternate phrasings for one query. Implementations
// may fail; ExpansionService absorbs the failure.
type QueryExpander interface {
	ExpandOne(ctx context.Context, query string) ([]string, error)
}

type geminiExpander struct {
	client *genai.Client
	model  string
	count  int
}

// NewGeminiExpander asks Gemini for paraphrases of the query.
func NewGeminiExpander(client *genai.Client, model string, count int) QueryExpander {
	return &geminiExpander{client: client, model: model, count: count}
}

func (g *geminiExpander) ExpandOne(ctx context.Context, query string) ([]string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(expansionPrompt(query, g.count)),
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr(float32(0)),
		},
	)
	if err != nil {
		return nil, err
	}
	return parseExpansionLines(result.Text()), nil
}

// parseExpansionLines cleans one-phrasing-per-line model output, stripping
// any numbering or bullets the model added despite instructions.
func parseExpansionLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = stripListPrefix(strings.TrimSpace(line))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// stripListPrefix removes a leading "- ", "* ", or "3." / "3)" style marker.
// A bare leading number ("1833 Factory Act") is part of the phrasing and
// stays.
func stripListPrefix(line string) string {
	if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") {
		return strings.TrimSpace(line[2:])
	}
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i+1 < len(line) && (line[i] == '.' || line[i] == ')') && line[i+1] == ' ' {
		return strings.TrimSpace(line[i+1:])
	}
	return line
}

// ExpansionService widens a query into an ordered set of phrasings. The
// original query is always first. A failing or useless collaborator
// degrades to just the original; expansion never surfaces an error.
type ExpansionService struct {
	expander QueryExpander
	count    int
	timeout  time.Duration
}

func NewExpansionService(expander QueryExpander, count int, timeout time.Duration) *ExpansionService {
	return &ExpansionService{expander: expander, count: count, timeout: timeout}
}

func (s *ExpansionService) Expand(ctx context.Context, query string) []string {
	queries := []string{query}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	alts, err := s.expander.ExpandOne(ctx, query)
	if err != nil {
		log.Warnf("query expansion failed, proceeding with original query only: %v", err)
		return queries
	}

	seen := map[string]bool{normalizeQuery(query): true}
	for _, alt := range alts {
		if len(queries) > s.count {
			break
		}
		key := normalizeQuery(alt)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		queries = append(queries, alt)
	}
	return queries
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
