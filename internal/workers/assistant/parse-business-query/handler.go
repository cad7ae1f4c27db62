package parsebusinessquery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"business-assistant/internal/common/config"
	"business-assistant/internal/common/errors"
	"business-assistant/internal/common/logger"
	"business-assistant/internal/common/metrics"
	"business-assistant/internal/common/validation"
	"business-assistant/internal/intent"
	"business-assistant/internal/timeparse"
)

const TaskType = "parse-business-query"

const failReportTimeout = 5 * time.Second

type Handler struct {
	config       *Config
	logger       logger.Logger
	metrics      *metrics.Metrics
	classifier   *intent.Classifier
	parser       *timeparse.Parser
	errorHandler *errors.ErrorHandler
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Classifier   *intent.Classifier
	Parser       *timeparse.Parser
	Logger       logger.Logger
	Metrics      *metrics.Metrics
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.With(map[string]interface{}{"worker": TaskType})

	h := &Handler{
		config:       cfg,
		logger:       log,
		metrics:      opts.Metrics,
		classifier:   opts.Classifier,
		parser:       opts.Parser,
		errorHandler: errors.NewErrorHandler(log),
	}
	if h.metrics == nil {
		h.metrics = metrics.NewNop()
	}
	if h.classifier == nil {
		h.classifier = intent.NewDefaultClassifier()
	}
	if h.parser == nil {
		h.parser = timeparse.New()
	}
	return h, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing business query", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("job variables: %v", err))
	}

	result := validation.ValidateInput(variables, GetInputSchema())
	if !result.Valid {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("validation errors: %v", result.GetErrorMessages()))
	}

	return &Input{Query: variables["query"].(string)}, nil
}

// Execute classifies the query and resolves its time reference.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	in := h.classifier.Classify(input.Query)
	caps := intent.CapabilitiesFor(in)

	output := &Output{
		Intent:       string(in),
		Capabilities: make([]string, len(caps)),
	}
	for i, c := range caps {
		output.Capabilities[i] = string(c)
	}

	if w := h.parser.Parse(input.Query); w != nil {
		output.HasTimeWindow = true
		output.TimeWindow = &TimeWindowVars{
			Period:             string(w.Period),
			Timeframe:          string(w.Timeframe),
			StartDate:          w.StartDate(),
			EndDate:            w.EndDate(),
			OriginalExpression: w.OriginalExpression,
		}
	}

	h.logger.Info("Query parsed", map[string]interface{}{
		"intent":        output.Intent,
		"capabilities":  output.Capabilities,
		"hasTimeWindow": output.HasTimeWindow,
	})
	return output, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	start := time.Now()
	payload, err := json.Marshal(output)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromString(string(payload))
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	h.metrics.WorkerJobsDone.WithLabelValues(TaskType).Inc()
	h.logger.Info("Job completed", map[string]interface{}{
		"jobKey":      job.GetKey(),
		"intent":      output.Intent,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

// fail reports on a fresh context: the job context may already be spent.
func (h *Handler) fail(_ context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := errors.Normalize(err)
	h.metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()

	ctx, cancel := context.WithTimeout(context.Background(), failReportTimeout)
	defer cancel()
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func (h *Handler) GetConfig() *Config {
	return h.config
}
