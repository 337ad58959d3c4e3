package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"archivechat/models"
	"archivechat/pkg/log"
)

// Expander is the slice of ExpansionService the chat service depends on.
type Expander interface {
	Expand(ctx context.Context, query string) []string
}

// QueryRetriever is the slice of Retriever the chat service depends on.
type QueryRetriever interface {
	Retrieve(ctx context.Context, queries []string) ([]models.Candidate, error)
}

// ErrEmptyQuery rejects a query that is empty once trimmed. It is caller
// error, not a service failure.
var ErrEmptyQuery = errors.New("query must not be empty")

// ChatService runs one full question-answering turn.
type ChatService interface {
	Query(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error)
	Stats(ctx context.Context) (*models.StatsResponse, error)
}

type chatServiceImpl struct {
	expansion     Expander
	retriever     QueryRetriever
	assembler     *EvidenceAssembler
	answerer      Answerer
	index         VectorIndex
	persona       string
	answerTimeout time.Duration
}

func NewChatService(
	expansion Expander,
	retriever QueryRetriever,
	assembler *EvidenceAssembler,
	answerer Answerer,
	index VectorIndex,
	persona string,
	answerTimeout time.Duration,
) ChatService {
	if persona == "" {
		persona = DefaultPersona
	}
	return &chatServiceImpl{
		expansion:     expansion,
		retriever:     retriever,
		assembler:     assembler,
		answerer:      answerer,
		index:         index,
		persona:       persona,
		answerTimeout: answerTimeout,
	}
}

// greetings lists the trivial inputs that skip retrieval. This is the only
// short-circuit: every other query always goes to the archive.
var greetings = map[string]bool{
	"hello":          true,
	"hi":             true,
	"greetings":      true,
	"good morning":   true,
	"good afternoon": true,
	"how are you":    true,
}

func isGreeting(query string) bool {
	return greetings[strings.ToLower(strings.TrimSpace(query))]
}

// Query expands the user's question, searches the archive, assembles the
// evidence, and generates a grounded answer. Retrieval failures surface as
// ErrSearchUnavailable; an archive with nothing to say yields an explicit
// ungrounded reply rather than a fabricated answer.
func (s *chatServiceImpl) Query(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	if isGreeting(query) {
		return &models.QueryResponse{
			Answer:    greetingReply,
			Citations: []models.EvidenceItem{},
			Grounded:  false,
		}, nil
	}

	queries := s.expansion.Expand(ctx, query)
	log.Infow("searching archive", "query", query, "expansions", len(queries)-1)

	candidates, err := s.retriever.Retrieve(ctx, queries)
	if err != nil {
		return nil, err
	}

	evidence := s.assembler.Assemble(candidates)
	if evidence.Empty() {
		log.Infow("archive silent on query", "query", query)
		return &models.QueryResponse{
			Answer:    noEvidenceReply,
			Citations: []models.EvidenceItem{},
			Grounded:  false,
		}, nil
	}

	persona := req.Persona
	if persona == "" {
		persona = s.persona
	}

	answerCtx, cancel := context.WithTimeout(ctx, s.answerTimeout)
	defer cancel()
	answer, err := s.answerer.Generate(answerCtx, query, evidence.Context, persona)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	log.Infow("answered from archive", "query", query, "citations", len(evidence.Items))
	return &models.QueryResponse{
		Answer:    answer,
		Citations: evidence.Items,
		Grounded:  true,
	}, nil
}

func (s *chatServiceImpl) Stats(ctx context.Context) (*models.StatsResponse, error) {
	count, err := s.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count indexed chunks: %w", err)
	}
	return &models.StatsResponse{Chunks: count}, nil
}
