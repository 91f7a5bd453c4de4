package database

import (
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"gorm.io/gorm"
)

// ReconnectPlugin pings the pool before operations and drives reconnection
// when the connection looks dead. Pings are throttled so a healthy pool is
// not pinged on every query.
type ReconnectPlugin struct {
	logger        *slog.Logger
	maxRetries    int
	retryDelay    time.Duration
	checkInterval time.Duration

	lastCheck  atomic.Int64
	reconnects atomic.Int64
}

// NewReconnectPlugin creates the plugin with default retry settings.
func NewReconnectPlugin(logger *slog.Logger) *ReconnectPlugin {
	return &ReconnectPlugin{
		logger:        logger,
		maxRetries:    3,
		retryDelay:    500 * time.Millisecond,
		checkInterval: 5 * time.Second,
	}
}

// Name returns the plugin name.
func (p *ReconnectPlugin) Name() string { return "reconnect" }

// Initialize hooks the health check in front of every operation kind.
func (p *ReconnectPlugin) Initialize(db *gorm.DB) error {
	hooks := []struct {
		register func() error
	}{
		{func() error {
			return db.Callback().Query().Before("gorm:query").Register("reconnect:query", p.checkConnection)
		}},
		{func() error {
			return db.Callback().Create().Before("gorm:create").Register("reconnect:create", p.checkConnection)
		}},
		{func() error {
			return db.Callback().Update().Before("gorm:update").Register("reconnect:update", p.checkConnection)
		}},
		{func() error {
			return db.Callback().Delete().Before("gorm:delete").Register("reconnect:delete", p.checkConnection)
		}},
		{func() error {
			return db.Callback().Row().Before("gorm:row").Register("reconnect:row", p.checkConnection)
		}},
		{func() error {
			return db.Callback().Raw().Before("gorm:raw").Register("reconnect:raw", p.checkConnection)
		}},
	}

	for _, h := range hooks {
		if err := h.register(); err != nil {
			return err
		}
	}
	return nil
}

func (p *ReconnectPlugin) checkConnection(db *gorm.DB) {
	now := time.Now().UnixNano()
	last := p.lastCheck.Load()
	if now-last < int64(p.checkInterval) || !p.lastCheck.CompareAndSwap(last, now) {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		return
	}

	err = sqlDB.Ping()
	if err == nil || !isConnectionError(err) {
		return
	}

	p.logger.Warn("database connection lost, reconnecting", slog.String("error", err.Error()))

	if p.reconnect(sqlDB) {
		p.logger.Info("database reconnected", slog.Int64("total_reconnects", p.reconnects.Load()))
	} else {
		p.logger.Error("database reconnection failed", slog.Int("retries", p.maxRetries))
	}
}

func (p *ReconnectPlugin) reconnect(sqlDB *sql.DB) bool {
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		time.Sleep(p.retryDelay * time.Duration(attempt))

		if err := sqlDB.Ping(); err == nil {
			p.reconnects.Add(1)
			return true
		}

		p.logger.Warn("reconnection attempt failed",
			slog.Int("attempt", attempt),
			slog.Int("max_retries", p.maxRetries),
		)
	}
	return false
}

// ReconnectCount returns how many times the pool recovered.
func (p *ReconnectPlugin) ReconnectCount() int64 {
	return p.reconnects.Load()
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
		return true
	}

	msg := strings.ToLower(err.Error())
	patterns := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"network is unreachable",
		"connection timed out",
		"eof",
		"bad connection",
		"invalid connection",
		"closed network connection",
		"connection lost",
		"server closed",
	}
	for _, pattern := range patterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
