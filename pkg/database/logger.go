package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jobhive/jobhive-server-go/pkg/metrics"
)

// queryLogger adapts slog to gorm's logger interface and feeds every traced
// query into the Prometheus query metrics.
type queryLogger struct {
	log           *slog.Logger
	slowThreshold time.Duration
	level         logger.LogLevel
}

func newQueryLogger(log *slog.Logger, slowThreshold time.Duration) logger.Interface {
	return &queryLogger{
		log:           log,
		slowThreshold: slowThreshold,
		level:         logger.Warn,
	}
}

func (l *queryLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *queryLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		l.log.InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *queryLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		l.log.WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *queryLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		l.log.ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *queryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	operation, table := classifyQuery(sql)

	metrics.RecordDBQuery(operation, table, elapsed)

	switch {
	case err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		l.log.ErrorContext(ctx, "database query error",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", elapsed),
			slog.String("sql", sql),
			slog.Int64("rows", rows),
		)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= logger.Warn:
		l.log.WarnContext(ctx, "slow query detected",
			slog.Duration("elapsed", elapsed),
			slog.Duration("threshold", l.slowThreshold),
			slog.String("operation", operation),
			slog.String("table", table),
			slog.Int64("rows", rows),
			slog.String("sql", sql),
		)
	case l.level >= logger.Info:
		l.log.DebugContext(ctx, "database query",
			slog.Duration("elapsed", elapsed),
			slog.String("operation", operation),
			slog.String("table", table),
			slog.Int64("rows", rows),
		)
	}
}

// classifyQuery derives the operation and target table from the SQL text. It
// is a label heuristic for metrics, not a parser.
func classifyQuery(sql string) (operation, table string) {
	operation, table = "UNKNOWN", "unknown"

	trimmed := strings.TrimSpace(sql)
	if i := strings.IndexByte(trimmed, ' '); i > 0 {
		operation = strings.ToUpper(trimmed[:i])
	} else if trimmed != "" {
		operation = strings.ToUpper(trimmed)
	}

	upper := strings.ToUpper(trimmed)
	for _, keyword := range []string{" FROM ", " INTO ", "UPDATE "} {
		idx := strings.Index(upper, keyword)
		if idx < 0 {
			continue
		}
		rest := trimmed[idx+len(keyword):]
		if name := leadingIdentifier(rest); name != "" {
			table = name
			break
		}
	}
	return operation, table
}

func leadingIdentifier(s string) string {
	s = strings.TrimLeft(s, `"`+"` ")
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', ',', ';', '"', '`', '(':
			return s[:i]
		}
	}
	return s
}
