package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	MaxTags         = 5
	MaxContentRunes = 8000
	maxTagRunes     = 40
)

var ErrInvalidOutput = errors.New("ai: invalid tag output")

// Generator returns the raw JSON produced by the model for the given content.
type Generator interface {
	Generate(ctx context.Context, content string) (string, error)
}

type Suggester struct {
	gen     Generator
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
}

func NewSuggester(gen Generator, timeout time.Duration, logger *zap.Logger) *Suggester {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "tag-suggestions",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &Suggester{gen: gen, cb: cb, timeout: timeout}
}

// Suggest assumes content is already trimmed and non-empty.
func (s *Suggester) Suggest(ctx context.Context, content string) ([]string, error) {
	content = truncateRunes(content, MaxContentRunes)

	out, err := s.cb.Execute(func() (interface{}, error) {
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		raw, err := s.gen.Generate(cctx, content)
		if err != nil {
			return nil, err
		}
		return ParseTags(raw)
	})
	if err != nil {
		return nil, err
	}
	return out.([]string), nil
}

// ParseTags validates the model output and normalizes the tags.
func ParseTags(raw string) ([]string, error) {
	var body struct {
		Tags *[]string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if body.Tags == nil {
		return nil, fmt.Errorf("%w: missing tags", ErrInvalidOutput)
	}
	return NormalizeTags(*body.Tags), nil
}

func NormalizeTags(in []string) []string {
	tags := make([]string, 0, MaxTags)
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = strings.ReplaceAll(t, ",", " ")
		t = strings.ToLower(strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(t), "#")))
		if t == "" || utf8.RuneCountInString(t) > maxTagRunes {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
		if len(tags) == MaxTags {
			break
		}
	}
	return tags
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
