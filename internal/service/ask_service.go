package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/devinsight/devinsight/internal/index"
	"github.com/devinsight/devinsight/internal/models"
)

const noMatchAnswer = "No matching issues found."

// Retriever answers a question with ranked index hits.
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]index.Hit, error)
}

// AnswerCache stores generated answers keyed by normalized question text.
// A nil-able implementation detail lives in the repository package; the
// service only sees this contract.
type AnswerCache interface {
	FindByQuestion(ctx context.Context, question string) (*models.CachedAnswer, error)
	Upsert(ctx context.Context, answer models.CachedAnswer) error
}

// AskService runs the full question-answering flow: cache lookup, hybrid
// retrieval, context assembly, prompt composition and answer generation.
type AskService struct {
	retriever  Retriever
	llm        LLM
	cache      AnswerCache
	cacheTTL   time.Duration
	previewLen int
	now        func() time.Time
	log        zerolog.Logger
}

// NewAskService wires the flow. cache may be nil, which disables caching.
func NewAskService(retriever Retriever, llm LLM, cache AnswerCache, cacheTTL time.Duration, previewLen int, log zerolog.Logger) *AskService {
	if previewLen <= 0 {
		previewLen = 200
	}
	return &AskService{
		retriever:  retriever,
		llm:        llm,
		cache:      cache,
		cacheTTL:   cacheTTL,
		previewLen: previewLen,
		now:        time.Now,
		log:        log.With().Str("component", "ask").Logger(),
	}
}

// Ask answers a natural-language question over the ingested issues.
func (s *AskService) Ask(ctx context.Context, question string) (models.AskResponse, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return models.AskResponse{}, ErrEmptyQuery
	}

	if cached := s.lookupCache(ctx, question); cached != nil {
		s.log.Debug().Str("question", question).Msg("answer served from cache")
		return models.AskResponse{
			Answer:     cached.Answer,
			Sources:    cached.Sources,
			NumSources: cached.NumSources,
		}, nil
	}

	hits, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		return models.AskResponse{}, err
	}

	if len(hits) == 0 {
		return models.AskResponse{
			Answer:     noMatchAnswer,
			Sources:    []models.Source{},
			NumSources: 0,
		}, nil
	}

	contextBlock := BuildContext(hits, s.previewLen)
	prompt := ComposePrompt(question, contextBlock, s.now())

	answer, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return models.AskResponse{}, fmt.Errorf("answer generation failed: %w", err)
	}

	sources := make([]models.Source, len(hits))
	for i, hit := range hits {
		doc := hit.Source
		sources[i] = models.Source{
			Title:       doc.Title,
			Repo:        doc.RepoName,
			Contributor: doc.ContributorLogin,
			CommitCount: doc.CommitCount,
			CreatedAt:   doc.CreatedAt,
			State:       doc.State,
		}
	}

	resp := models.AskResponse{
		Answer:     strings.TrimSpace(answer),
		Sources:    sources,
		NumSources: len(sources),
	}
	s.storeCache(ctx, question, resp)
	return resp, nil
}

func (s *AskService) lookupCache(ctx context.Context, question string) *models.CachedAnswer {
	if s.cache == nil {
		return nil
	}
	cached, err := s.cache.FindByQuestion(ctx, cacheKey(question))
	if err != nil {
		s.log.Warn().Err(err).Msg("cache lookup failed")
		return nil
	}
	if cached == nil {
		return nil
	}
	if s.cacheTTL > 0 && s.now().Sub(cached.CreatedAt) > s.cacheTTL {
		return nil
	}
	return cached
}

func (s *AskService) storeCache(ctx context.Context, question string, resp models.AskResponse) {
	if s.cache == nil {
		return
	}
	err := s.cache.Upsert(ctx, models.CachedAnswer{
		ID:         cacheKey(question),
		Question:   question,
		Answer:     resp.Answer,
		Sources:    resp.Sources,
		NumSources: resp.NumSources,
		CreatedAt:  s.now(),
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("cache store failed")
	}
}

func cacheKey(question string) string {
	return strings.ToLower(strings.TrimSpace(question))
}
