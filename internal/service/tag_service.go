package service

import (
	"context"
	"strings"

	"confrarias/internal/metrics"

	"go.uber.org/zap"
)

const TagSuggestionFailed = "Não foi possível sugerir tags."

type TagSuggester interface {
	Suggest(ctx context.Context, content string) ([]string, error)
}

type TagService struct {
	suggester TagSuggester
	log       *zap.Logger
}

// NewTagService accepts a nil suggester when no AI key is configured; every
// suggestion then degrades to the failure message.
func NewTagService(suggester TagSuggester, log *zap.Logger) *TagService {
	return &TagService{suggester: suggester, log: log}
}

// SuggestTags never fails. Empty content returns no tags without calling the
// model; any upstream problem returns no tags plus a message for the user.
func (s *TagService) SuggestTags(ctx context.Context, content string) ([]string, string) {
	content = strings.TrimSpace(content)
	if content == "" {
		metrics.TagSuggestions.WithLabelValues("empty").Inc()
		return []string{}, ""
	}
	if s.suggester == nil {
		metrics.TagSuggestions.WithLabelValues("disabled").Inc()
		return []string{}, TagSuggestionFailed
	}
	tags, err := s.suggester.Suggest(ctx, content)
	if err != nil {
		s.log.Warn("tag suggestion failed", zap.Error(err))
		metrics.TagSuggestions.WithLabelValues("failed").Inc()
		return []string{}, TagSuggestionFailed
	}
	if tags == nil {
		tags = []string{}
	}
	metrics.TagSuggestions.WithLabelValues("ok").Inc()
	return tags, ""
}
