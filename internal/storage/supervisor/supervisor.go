// Package supervisor управляет соединением с внешним хранилищем:
// ограниченное число попыток при старте и фоновое переподключение после обрыва.
package supervisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
)

const (
	defaultMaxRetries     = 5
	defaultRetryDelay     = 2 * time.Second
	defaultConnectTimeout = 30 * time.Second
	defaultPingInterval   = 5 * time.Second
)

// Dialer реализует драйвер-специфичную часть супервизора.
type Dialer interface {
	Connect(ctx context.Context) error
	Ping(ctx context.Context) error
	Disconnect(ctx context.Context) error
}

// Config задаёт бюджет попыток подключения.
type Config struct {
	MaxRetries     int
	RetryDelay     time.Duration
	ConnectTimeout time.Duration
	PingInterval   time.Duration
}

// DefaultConfig возвращает значения по умолчанию (5 попыток через 2s).
func DefaultConfig() Config {
	return Config{
		MaxRetries:     defaultMaxRetries,
		RetryDelay:     defaultRetryDelay,
		ConnectTimeout: defaultConnectTimeout,
		PingInterval:   defaultPingInterval,
	}
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.MaxRetries <= 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = def.RetryDelay
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.PingInterval <= 0 {
		c.PingInterval = def.PingInterval
	}
	return c
}

// StateListener получает каждое изменение состояния соединения.
type StateListener func(state domain.ConnectionState)

// AttemptObserver получает результат каждой попытки подключения ("ok" или "error").
type AttemptObserver func(result string)

type options struct {
	logger    *log.Entry
	listeners []StateListener
	attempts  AttemptObserver
}

// Option настраивает Supervisor.
type Option func(*options)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStateListener подписывает listener на смену состояния.
func WithStateListener(listener StateListener) Option {
	return func(o *options) {
		if listener != nil {
			o.listeners = append(o.listeners, listener)
		}
	}
}

// WithAttemptObserver задаёт наблюдателя за попытками подключения.
func WithAttemptObserver(observer AttemptObserver) Option {
	return func(o *options) {
		o.attempts = observer
	}
}

// Supervisor реализует машину состояний Disconnected → Connecting → Connected.
type Supervisor struct {
	dialer    Dialer
	cfg       Config
	logger    *log.Entry
	listeners []StateListener
	attempts  AttemptObserver

	mu    sync.RWMutex
	state domain.ConnectionState

	kick chan struct{}

	lifecycleMu sync.Mutex
	cancel      context.CancelFunc
	done        chan struct{}
	stopped     bool
}

// New создаёт супервизор в состоянии Disconnected.
func New(dialer Dialer, cfg Config, opts ...Option) *Supervisor {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = log.WithField("component", "storage-supervisor")
	}

	return &Supervisor{
		dialer:    dialer,
		cfg:       cfg.normalized(),
		logger:    logger,
		listeners: o.listeners,
		attempts:  o.attempts,
		state:     domain.StateDisconnected,
		kick:      make(chan struct{}, 1),
	}
}

// State возвращает текущее состояние соединения.
func (s *Supervisor) State() domain.ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Available возвращает ErrStorageUnavailable, если соединение не установлено.
func (s *Supervisor) Available() error {
	if s.State() != domain.StateConnected {
		return domain.ErrStorageUnavailable
	}
	return nil
}

// Start подключается с ограниченным числом попыток и запускает фоновый мониторинг.
// После исчерпания попыток возвращает ошибку, оборачивающую ErrStartupFailure.
func (s *Supervisor) Start(ctx context.Context) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if s.stopped {
		return fmt.Errorf("%w: supervisor already stopped", domain.ErrStartupFailure)
	}
	if s.done != nil {
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		lastErr = s.connect(ctx)
		if lastErr == nil {
			s.logger.WithField("attempt", attempt).Info("Connected to storage")
			s.launchMonitor()
			return nil
		}

		s.logger.WithFields(log.Fields{
			"attempt":     attempt,
			"max_retries": s.cfg.MaxRetries,
			"error":       lastErr,
		}).Warn("Storage connection attempt failed")

		if attempt == s.cfg.MaxRetries {
			break
		}
		if err := sleep(ctx, s.cfg.RetryDelay); err != nil {
			lastErr = err
			break
		}
	}

	s.setState(domain.StateDisconnected)
	s.logger.WithField("max_retries", s.cfg.MaxRetries).Error("Max retries reached. Could not connect to storage")
	return fmt.Errorf("%w: storage connection failed after %d attempts: %w", domain.ErrStartupFailure, s.cfg.MaxRetries, lastErr)
}

// MarkDisconnected переводит Connected → Disconnected и будит цикл переподключения.
// Повторные вызовы во время переподключения игнорируются.
func (s *Supervisor) MarkDisconnected(cause error) {
	s.mu.Lock()
	if s.state != domain.StateConnected {
		s.mu.Unlock()
		return
	}
	s.state = domain.StateDisconnected
	s.mu.Unlock()

	s.notify(domain.StateDisconnected)
	s.logger.WithError(cause).Warn("Storage disconnected, scheduling reconnect")

	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// WaitReady опрашивает состояние checks раз с шагом interval.
func (s *Supervisor) WaitReady(ctx context.Context, checks int, interval time.Duration) error {
	return WaitReady(ctx, s, checks, interval)
}

// Stop останавливает фоновый цикл и закрывает соединение. Повторный вызов ничего не делает.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.lifecycleMu.Lock()
	if s.stopped {
		s.lifecycleMu.Unlock()
		return nil
	}
	s.stopped = true
	cancel, done := s.cancel, s.done
	s.lifecycleMu.Unlock()

	if cancel != nil {
		cancel()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	err := s.dialer.Disconnect(ctx)
	s.setState(domain.StateDisconnected)
	if err != nil {
		return fmt.Errorf("disconnect storage: %w", err)
	}
	s.logger.Info("Storage connection closed")
	return nil
}

func (s *Supervisor) connect(ctx context.Context) error {
	s.setState(domain.StateConnecting)

	connectCtx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
	defer cancel()

	err := s.dialer.Connect(connectCtx)
	if err == nil {
		err = s.dialer.Ping(connectCtx)
		if err != nil {
			_ = s.dialer.Disconnect(ctx)
		}
	}
	if err != nil {
		s.observe("error")
		s.setState(domain.StateDisconnected)
		return err
	}

	s.observe("ok")
	s.setState(domain.StateConnected)
	return nil
}

func (s *Supervisor) launchMonitor() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.monitor(ctx)
}

// monitor пингует хранилище и переподключается без ограничения числа попыток.
func (s *Supervisor) monitor(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.kick:
		case <-ticker.C:
		}

		if s.State() == domain.StateConnected {
			pingCtx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
			err := s.dialer.Ping(pingCtx)
			cancel()
			if err == nil || ctx.Err() != nil {
				continue
			}
			s.MarkDisconnected(err)
		}

		s.reconnect(ctx)
	}
}

func (s *Supervisor) reconnect(ctx context.Context) {
	for attempt := 1; ; attempt++ {
		_ = s.dialer.Disconnect(ctx)
		err := s.connect(ctx)
		if err == nil {
			s.logger.WithField("attempt", attempt).Info("Reconnected to storage")
			return
		}
		if ctx.Err() != nil {
			return
		}

		s.logger.WithFields(log.Fields{
			"attempt": attempt,
			"delay":   s.cfg.RetryDelay,
			"error":   err,
		}).Warn("Storage reconnect failed, retrying")

		if sleep(ctx, s.cfg.RetryDelay) != nil {
			return
		}
	}
}

func (s *Supervisor) setState(state domain.ConnectionState) {
	s.mu.Lock()
	changed := s.state != state
	s.state = state
	s.mu.Unlock()

	if changed {
		s.notify(state)
	}
}

func (s *Supervisor) notify(state domain.ConnectionState) {
	for _, listener := range s.listeners {
		listener(state)
	}
}

func (s *Supervisor) observe(result string) {
	if s.attempts != nil {
		s.attempts(result)
	}
}

// StateReporter сообщает состояние соединения.
type StateReporter interface {
	State() domain.ConnectionState
}

// WaitReady ждёт StateConnected не дольше checks*interval.
// Возвращает ErrStorageUnavailable, если хранилище так и не стало доступным.
func WaitReady(ctx context.Context, r StateReporter, checks int, interval time.Duration) error {
	if checks <= 0 {
		checks = 1
	}
	for i := 0; i < checks; i++ {
		if r.State() == domain.StateConnected {
			return nil
		}
		if i == checks-1 {
			break
		}
		if err := sleep(ctx, interval); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: not ready after %d checks", domain.ErrStorageUnavailable, checks)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
