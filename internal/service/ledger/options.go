package ledger

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
	"github.com/vladislavdragonenkov/titan-coffee/internal/metrics"
)

// Options задаёт зависимости журнала заказов.
type Options struct {
	Logger    *log.Entry
	Clock     func() time.Time
	Publisher domain.EventPublisher
	Metrics   *metrics.ShopMetrics
}

// Option настраивает Ledger.
type Option func(*Options)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithClock подменяет источник времени.
func WithClock(clock func() time.Time) Option {
	return func(o *Options) {
		o.Clock = clock
	}
}

// WithPublisher включает публикацию событий о заказах.
func WithPublisher(publisher domain.EventPublisher) Option {
	return func(o *Options) {
		o.Publisher = publisher
	}
}

// WithMetrics задаёт метрики.
func WithMetrics(m *metrics.ShopMetrics) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}
