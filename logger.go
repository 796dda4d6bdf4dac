package fluentdb

import (
	"context"
	"log/slog"
	"time"
)

// Logger, çalıştırılan SQL sorgularını, parametreleri, süreyi ve olası hatayı
// izlemek için kullanılan arayüzdür.
type Logger interface {
	Log(query string, args []any, duration time.Duration, err error)
}

// NopLogger, tüm kayıtları yok sayan Logger'dır.
type NopLogger struct{}

// Log, hiçbir şey yapmaz.
func (NopLogger) Log(string, []any, time.Duration, error) {}

// SlogLogger, kayıtları bir *slog.Logger'a yazar.
// Başarılı sorgular Debug, başarısız sorgular Error seviyesindedir.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger, verilen slog logger'ı sarar. nil ise slog.Default() kullanılır.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{logger: l}
}

// Log, sorguyu yapılandırılmış alanlarla yazar.
func (s *SlogLogger) Log(query string, args []any, duration time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("sql", query),
		slog.Any("bindings", args),
		slog.Duration("duration", duration),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(context.Background(), slog.LevelError, "fluentdb: query failed", attrs...)
		return
	}
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "fluentdb: query", attrs...)
}
