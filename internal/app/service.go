package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"cryptoSignalWatch/internal/domain"
	"cryptoSignalWatch/internal/metrics"
	"cryptoSignalWatch/internal/ports"
)

const (
	defaultRefreshInterval = 60 * time.Second
	defaultFetchTimeout    = 30 * time.Second
)

// State is a phase of the polling loop.
type State string

const (
	StateStarting  State = "STARTING"
	StateFetching  State = "FETCHING"
	StateComputing State = "COMPUTING"
	StateEmitting  State = "EMITTING"
	StateIdle      State = "IDLE"
	StateSleeping  State = "SLEEPING"
	StateStopped   State = "STOPPED"
)

// cycleResult is the outcome of one polling cycle, used as a metrics label.
type cycleResult string

const (
	resultFetchFailed cycleResult = "fetch_failed"
	resultEmitted     cycleResult = "emitted"
	resultIdle        cycleResult = "idle"
	resultBaseline    cycleResult = "baseline"
)

// Config holds the polling loop parameters.
type Config struct {
	Symbol          string
	Timeframe       string
	Exchange        string
	RefreshInterval time.Duration
	// Schedule overrides RefreshInterval when set.
	Schedule     cron.Schedule
	FetchTimeout time.Duration
}

// SignalService polls a bar source, re-evaluates the signal each cycle and
// emits a notification whenever the signal state changes.
type SignalService struct {
	cfg       Config
	logger    ports.Logger
	source    ports.BarSource
	analyzer  ports.Analyzer
	strategy  ports.Strategy
	display   ports.Display
	chart     ports.ChartRenderer
	journal   ports.SignalJournal
	notifiers []ports.Notifier

	// Loop-owned state, only touched from the goroutine running Start.
	state    State
	previous domain.SignalState

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSignalService creates a new polling loop instance. chart and journal may be nil.
func NewSignalService(
	cfg Config,
	logger ports.Logger,
	source ports.BarSource,
	analyzer ports.Analyzer,
	strat ports.Strategy,
	display ports.Display,
	chart ports.ChartRenderer,
	journal ports.SignalJournal,
	notifiers ...ports.Notifier,
) (*SignalService, error) {
	if logger == nil || source == nil || analyzer == nil || strat == nil || display == nil {
		return nil, fmt.Errorf("missing required dependencies for SignalService")
	}
	if cfg.Symbol == "" || cfg.Timeframe == "" || cfg.Exchange == "" {
		return nil, fmt.Errorf("symbol, timeframe and exchange are required")
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = defaultRefreshInterval
	}
	if cfg.Schedule == nil {
		cfg.Schedule = cron.Every(cfg.RefreshInterval)
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}

	return &SignalService{
		cfg:       cfg,
		logger:    logger,
		source:    source,
		analyzer:  analyzer,
		strategy:  strat,
		display:   display,
		chart:     chart,
		journal:   journal,
		notifiers: notifiers,
		state:     StateStarting,
		now:       time.Now,
		sleep:     sleepContext,
	}, nil
}

// Start runs the baseline cycle and then polls until ctx is canceled or the
// process receives SIGINT/SIGTERM. Fetch failures never stop the loop.
func (s *SignalService) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting Signal Service...", s.fields())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	s.setState(ctx, StateStarting)
	s.baseline(ctx)

	for ctx.Err() == nil {
		s.runCycle(ctx)

		s.setState(ctx, StateSleeping)
		if err := s.wait(ctx); err != nil {
			break
		}
	}

	s.setState(ctx, StateStopped)
	s.logger.Info(ctx, "Signal Service stopped.")
	return nil
}

// baseline fetches and displays the initial statistics without touching the
// previous signal state.
func (s *SignalService) baseline(ctx context.Context) {
	s.logger.Info(ctx, "Fetching initial market data...", s.fields())
	frame, ok := s.fetchAndCompute(ctx)
	if !ok {
		return
	}
	s.displaySnapshot(frame)
	s.renderChart(ctx, frame)
	metrics.CyclesTotal.WithLabelValues(string(resultBaseline)).Inc()
}

// runCycle performs one fetch, compute and transition check.
func (s *SignalService) runCycle(ctx context.Context) cycleResult {
	start := s.now()
	defer func() { metrics.CycleDuration.Observe(s.now().Sub(start).Seconds()) }()

	cycleID := uuid.NewString()
	s.logger.Info(ctx, "Fetching latest market data...", map[string]interface{}{"cycleID": cycleID})

	frame, ok := s.fetchAndCompute(ctx)
	if !ok {
		metrics.CyclesTotal.WithLabelValues(string(resultFetchFailed)).Inc()
		return resultFetchFailed
	}

	current := s.strategy.Evaluate(ctx, frame)
	if !current.Differs(s.previous) {
		s.setState(ctx, StateIdle)
		s.logger.Info(ctx, "No signal updates.", map[string]interface{}{"cycleID": cycleID})
		metrics.CyclesTotal.WithLabelValues(string(resultIdle)).Inc()
		return resultIdle
	}

	s.setState(ctx, StateEmitting)
	s.emit(ctx, cycleID, frame, current)
	s.previous = current
	metrics.CyclesTotal.WithLabelValues(string(resultEmitted)).Inc()
	return resultEmitted
}

// fetchAndCompute fetches the bar series under the per-cycle deadline and
// builds its analytics frame. It reports false after logging a failure.
func (s *SignalService) fetchAndCompute(ctx context.Context) (*domain.Frame, bool) {
	s.setState(ctx, StateFetching)

	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	series, err := s.source.FetchBars(fetchCtx, s.cfg.Symbol, s.cfg.Timeframe, s.cfg.Exchange)
	cancel()
	if err == nil {
		if verr := series.Validate(); verr != nil {
			err = fmt.Errorf("validate series failed: %w: %w", ports.ErrFetchFailed, verr)
		}
	}
	if err != nil {
		metrics.FetchFailuresTotal.WithLabelValues(s.cfg.Exchange).Inc()
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			s.logger.Info(ctx, "Fetch interrupted by shutdown", s.fields())
			return nil, false
		}
		s.logger.Error(ctx, err, "Unable to fetch data.", s.fields())
		return nil, false
	}

	s.setState(ctx, StateComputing)
	frame := s.analyzer.Compute(series)
	if last := series.Last(); last != nil {
		metrics.LastClose.WithLabelValues(s.cfg.Symbol).Set(last.Close)
	}
	return frame, true
}

// emit displays and dispatches a signal transition. Journal and notifier
// failures are logged and do not affect the state update.
func (s *SignalService) emit(ctx context.Context, cycleID string, frame *domain.Frame, current domain.SignalState) {
	row := frame.Latest()
	evt := &domain.SignalEvent{
		ID:         uuid.NewString(),
		CycleID:    cycleID,
		Symbol:     s.cfg.Symbol,
		Timeframe:  s.cfg.Timeframe,
		Exchange:   s.cfg.Exchange,
		Previous:   s.previous,
		Current:    current,
		Action:     current.Action(),
		Close:      row.Get(domain.FieldClose),
		BarTime:    row.Timestamp(),
		RSI:        row.Get(domain.FieldRSI),
		MACD:       row.Get(domain.FieldMACD),
		SignalLine: row.Get(domain.FieldSignalLine),
		DetectedAt: s.now().UTC(),
	}

	s.logger.Info(ctx, "Signal update detected.", map[string]interface{}{
		"eventID":  evt.ID,
		"cycleID":  cycleID,
		"action":   string(evt.Action),
		"buy":      current.Buy,
		"sell":     current.Sell,
		"prevBuy":  s.previous.Buy,
		"prevSell": s.previous.Sell,
		"close":    evt.Close,
	})
	metrics.EmissionsTotal.WithLabelValues(string(evt.Action)).Inc()

	s.displaySnapshot(frame)
	s.display.DisplayLine(FormatAction(current, evt.Close))
	s.renderChart(ctx, frame)

	if s.journal != nil {
		if err := s.journal.Record(ctx, evt); err != nil {
			s.logger.Error(ctx, err, "Failed to record signal event", map[string]interface{}{"eventID": evt.ID})
		}
	}
	for _, n := range s.notifiers {
		if err := n.Notify(ctx, evt); err != nil {
			s.logger.Error(ctx, err, "Failed to publish signal event", map[string]interface{}{"eventID": evt.ID})
		}
	}
}

func (s *SignalService) displaySnapshot(frame *domain.Frame) {
	for _, line := range FormatSnapshot(frame, s.cfg.Symbol) {
		s.display.DisplayLine(line)
	}
}

func (s *SignalService) renderChart(ctx context.Context, frame *domain.Frame) {
	if s.chart != nil {
		s.chart.Render(ctx, frame)
	}
}

// wait sleeps until the next scheduled activation.
func (s *SignalService) wait(ctx context.Context) error {
	now := s.now()
	d := s.cfg.Schedule.Next(now).Sub(now)
	if d < 0 {
		d = 0
	}
	s.logger.Debug(ctx, "Sleeping until next cycle", map[string]interface{}{"duration": d.String()})
	return s.sleep(ctx, d)
}

func (s *SignalService) setState(ctx context.Context, next State) {
	if s.state == next {
		return
	}
	s.logger.Debug(ctx, "Polling loop state changed", map[string]interface{}{
		"from": string(s.state),
		"to":   string(next),
	})
	s.state = next
}

// State returns the current loop phase. It must be called from the loop goroutine.
func (s *SignalService) State() State {
	return s.state
}

// Previous returns the last emitted signal state.
func (s *SignalService) Previous() domain.SignalState {
	return s.previous
}

func (s *SignalService) fields() map[string]interface{} {
	return map[string]interface{}{
		"symbol":    s.cfg.Symbol,
		"timeframe": s.cfg.Timeframe,
		"exchange":  s.cfg.Exchange,
	}
}

// sleepContext blocks for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
