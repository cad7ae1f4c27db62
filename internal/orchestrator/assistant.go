package orchestrator

import (
	"context"
	"errors"
	"strings"

	"business-assistant/internal/common/logger"
	"business-assistant/internal/intent"
	"business-assistant/internal/timeparse"
)

var ErrEmptyQuery = errors.New("EMPTY_QUERY")

// Answer is everything the narration step needs for one query.
type Answer struct {
	Query        string                `json:"query"`
	Intent       intent.Intent         `json:"intent"`
	Capabilities []intent.Capability   `json:"capabilities"`
	TimeWindow   *timeparse.TimeWindow `json:"timeWindow,omitempty"`
	Data         *BusinessDataBag      `json:"data"`
}

// Assistant runs classify, resolve, parse and collect for a free-text query.
type Assistant struct {
	classifier   *intent.Classifier
	parser       *timeparse.Parser
	orchestrator *Orchestrator
	logger       logger.Logger
}

func NewAssistant(classifier *intent.Classifier, parser *timeparse.Parser, orch *Orchestrator, log logger.Logger) *Assistant {
	return &Assistant{
		classifier:   classifier,
		parser:       parser,
		orchestrator: orch,
		logger:       logger.Component(log, "assistant"),
	}
}

// Interpret classifies the query and parses its time reference without
// collecting any data.
func (a *Assistant) Interpret(query string) (intent.Intent, []intent.Capability, *timeparse.TimeWindow, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil, nil, ErrEmptyQuery
	}
	in := a.classifier.Classify(query)
	return in, intent.CapabilitiesFor(in), a.parser.Parse(query), nil
}

func (a *Assistant) Answer(ctx context.Context, query string) (*Answer, error) {
	in, caps, window, err := a.Interpret(query)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"intent":       string(in),
		"capabilities": len(caps),
	}
	if window != nil {
		fields["window"] = window.String()
	}
	a.logger.Info("Query interpreted", fields)

	return &Answer{
		Query:        strings.TrimSpace(query),
		Intent:       in,
		Capabilities: caps,
		TimeWindow:   window,
		Data:         a.orchestrator.Collect(ctx, caps, window),
	}, nil
}
