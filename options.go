package fluentdb

import (
	"log/slog"
	"os"

	"github.com/biyonik/go-fluent-db/dialect"
)

// -----------------------------------------------------------------------------
//  Connector yapılandırması için fonksiyonel Option'lar.
//
//  Her With* fonksiyonu Connector kurulurken (Open, NewConnector) veya
//  bağlantısız bir Builder üretilirken (New) uygulanır. Verilmeyen ayarlar
//  için varsayılanlar applyOptions sonunda doldurulur: MySQL grammar,
//  DefaultScanner ve NopLogger.
//
//  -- @author   Ahmet ALTUN
//  -- @github   github.com/biyonik
//  -- @linkedin linkedin.com/in/biyonik
//  -- @email    ahmet.altun60@gmail.com
// -----------------------------------------------------------------------------

// Option, Connector üzerinde çalışan yapılandırma fonksiyonudur.
type Option func(*Connector)

// WithGrammar, SQL üretiminde kullanılacak grameri değiştirir.
// Varsayılan dialect.MySQL()'dır.
//
// Örnek:
//
//	conn, err := fluentdb.NewConnector(ctx, sqlDB, fluentdb.WithGrammar(dialect.MySQL()))
func WithGrammar(g dialect.Grammar) Option {
	return func(c *Connector) {
		c.grammar = g
	}
}

// WithScanner, GetInto / FirstInto tarafından kullanılan tarayıcıyı değiştirir.
func WithScanner(s Scanner) Option {
	return func(c *Connector) {
		c.scanner = s
	}
}

// WithDebug, her çalıştırılan sorgunun Logger'a yazılmasını açar veya kapatır.
// Özel bir Logger verilmemişse stderr'e yazan bir SlogLogger kullanılır.
//
// Örnek:
//
//	conn, err := fluentdb.Open(ctx, cfg, fluentdb.WithDebug(true))
func WithDebug(enabled bool) Option {
	return func(c *Connector) {
		c.debug = enabled
	}
}

// WithLogger, sorgu kayıtlarının gideceği Logger'ı belirler.
// WithDebug(true) ile birlikte kullanılır.
//
// Örnek:
//
//	conn, err := fluentdb.Open(ctx, cfg,
//	    fluentdb.WithDebug(true),
//	    fluentdb.WithLogger(fluentdb.NewSlogLogger(slog.Default())),
//	)
func WithLogger(logger Logger) Option {
	return func(c *Connector) {
		c.logger = logger
	}
}

// WithTablePrefix, Builder'a verilen tüm tablo adlarının önüne prefix ekler.
//
// Örnek:
//
//	conn, _ := fluentdb.Open(ctx, cfg, fluentdb.WithTablePrefix("app_"))
//	conn.Table("users") // `app_users`
func WithTablePrefix(prefix string) Option {
	return func(c *Connector) {
		c.prefix = prefix
	}
}

// applyOptions, Option'ları sırayla uygular ve eksik bileşenleri varsayılanlarla doldurur.
func applyOptions(c *Connector, opts []Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.grammar == nil {
		c.grammar = dialect.MySQL()
	}
	if c.scanner == nil {
		c.scanner = NewDefaultScanner()
	}
	if c.logger == nil {
		if c.debug {
			c.logger = NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})))
		} else {
			c.logger = NopLogger{}
		}
	}
}
