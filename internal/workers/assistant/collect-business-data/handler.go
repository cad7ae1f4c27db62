package collectbusinessdata

import (
	"context"
	"encoding/json"
	stderrors "errors"
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
	"business-assistant/internal/orchestrator"
	"business-assistant/internal/timeparse"
)

const TaskType = "collect-business-data"

const dateLayout = "2006-01-02"

// Collector is satisfied by *orchestrator.Orchestrator.
type Collector interface {
	Collect(ctx context.Context, caps []intent.Capability, window *timeparse.TimeWindow) *orchestrator.BusinessDataBag
}

const failReportTimeout = 5 * time.Second

type Handler struct {
	config       *Config
	logger       logger.Logger
	metrics      *metrics.Metrics
	collector    Collector
	now          func() time.Time
	errorHandler *errors.ErrorHandler
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Collector    Collector
	Logger       logger.Logger
	Metrics      *metrics.Metrics
	Clock        func() time.Time
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Collector == nil {
		return nil, fmt.Errorf("collector is required for %s", TaskType)
	}
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
		collector:    opts.Collector,
		now:          opts.Clock,
		errorHandler: errors.NewErrorHandler(log),
	}
	if h.metrics == nil {
		h.metrics = metrics.NewNop()
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Collecting business data", map[string]interface{}{
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

	// re-decode only the fields this worker reads
	raw, err := json.Marshal(map[string]interface{}{
		"capabilities": variables["capabilities"],
		"timeWindow":   variables["timeWindow"],
	})
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	var input Input
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	return &input, nil
}

// Execute runs one collection pass. A pass where every call failed is an
// error; a partial pass completes with hasErrors set.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	caps := make([]intent.Capability, 0, len(input.Capabilities))
	for _, c := range input.Capabilities {
		capability := intent.Capability(c)
		if !intent.ValidCapability(capability) {
			return nil, errors.NewUnknownCapabilityError(c)
		}
		caps = append(caps, capability)
	}

	window, err := h.windowFrom(input.TimeWindow)
	if err != nil {
		return nil, err
	}

	bag := h.collector.Collect(ctx, caps, window)

	if bag.Empty() && len(bag.Failures) > 0 {
		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errors.NewCollectionTimeoutError()
		}
		return nil, errors.NewCollectionFailedError(bag.Error.Message)
	}

	output := &Output{
		BusinessData:  bag,
		CollectedKeys: bag.Keys(),
		HasErrors:     bag.Error != nil,
		Degraded:      bag.Degraded(),
	}
	if output.CollectedKeys == nil {
		output.CollectedKeys = []string{}
	}
	return output, nil
}

// windowFrom rebuilds the window from explicit dates, or from period and
// timeframe against the clock when dates are absent.
func (h *Handler) windowFrom(vars *TimeWindowVars) (*timeparse.TimeWindow, error) {
	if vars == nil {
		return nil, nil
	}
	period := timeparse.Period(vars.Period)
	timeframe := timeparse.Timeframe(vars.Timeframe)
	if timeframe == "" {
		timeframe = timeparse.TimeframeCurrent
	}

	w, err := timeparse.WindowFor(period, timeframe, h.now())
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	w.OriginalExpression = vars.OriginalExpression

	if vars.StartDate != "" && vars.EndDate != "" {
		loc := w.Start.Location()
		start, err := time.ParseInLocation(dateLayout, vars.StartDate, loc)
		if err != nil {
			return nil, errors.NewInvalidInputError(err.Error())
		}
		end, err := time.ParseInLocation(dateLayout, vars.EndDate, loc)
		if err != nil {
			return nil, errors.NewInvalidInputError(err.Error())
		}
		if end.Before(start) {
			return nil, errors.NewInvalidInputError(fmt.Sprintf("endDate %s is before startDate %s", vars.EndDate, vars.StartDate))
		}
		w.Start = start
		w.End = end.Add(24*time.Hour - time.Millisecond)
	}
	return &w, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
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
		"jobKey":        job.GetKey(),
		"collectedKeys": output.CollectedKeys,
		"hasErrors":     output.HasErrors,
		"degraded":      output.Degraded,
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
