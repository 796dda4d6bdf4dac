package fluentdb

import (
	"errors"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"
)

/*
 * ----------------------------------------------------------------------------
 * FLUENTDB CONFIGURATION
 * ----------------------------------------------------------------------------
 *
 * Config, bağlantının "nereye" ve "nasıl" yapılacağını tanımlar. Open, Config'ten
 * sürücüye özel DSN üretir:
 *
 * 1. mysql: DSN, go-sql-driver/mysql Config'i üzerinden üretilir. dsn verilmişse
 *    ayrıştırılır ve ayrıca verilen kullanıcı / parola onun üzerine yazılır.
 * 2. sqlite3: "file:<database>?<options>". dsn verilmişse olduğu gibi kullanılır.
 *
 * LoadConfig; YAML, JSON veya TOML dosyasını viper ile okur. FLUENTDB_ önekli ortam
 * değişkenleri dosyadaki değerleri ezer (FLUENTDB_HOST, FLUENTDB_PASSWORD, ...).
 *
 * @author Ahmet ALTUN
 * @github github.com/biyonik
 * @linkedin linkedin.com/in/biyonik
 * @email ahmet.altun60@gmail.com
 * ----------------------------------------------------------------------------
 */

// Desteklenen sürücüler.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// Config, veritabanı bağlantısının yapılandırma şemasıdır.
type Config struct {
	Driver   string            `mapstructure:"driver"`   // "mysql" veya "sqlite3"
	Host     string            `mapstructure:"host"`     // Sunucu adresi
	Port     int               `mapstructure:"port"`     // Bağlantı portu (mysql varsayılanı 3306)
	Database string            `mapstructure:"database"` // Veritabanı adı veya sqlite dosya yolu
	Charset  string            `mapstructure:"charset"`  // Karakter seti (varsayılan: utf8mb4)
	User     string            `mapstructure:"user"`     // Kullanıcı adı
	Password string            `mapstructure:"password"` // Parola
	DSN      string            `mapstructure:"dsn"`      // Hazır DSN; verilirse host/port/database yerine geçer
	Options  map[string]string `mapstructure:"options"`  // Sürücüye iletilen ek DSN parametreleri
	Prefix   string            `mapstructure:"prefix"`   // Tablo öneki
	Debug    bool              `mapstructure:"debug"`    // Sorgu loglaması
}

// DefaultConfig, yerel bir MySQL sunucusu için varsayılan ayarları döndürür.
func DefaultConfig() *Config {
	return &Config{
		Driver:  DriverMySQL,
		Host:    "localhost",
		Port:    3306,
		Charset: "utf8mb4",
		Options: map[string]string{},
	}
}

// DriverName, database/sql'e verilecek sürücü adını döndürür.
func (c *Config) DriverName() string {
	switch strings.ToLower(c.Driver) {
	case "", DriverMySQL, "mariadb":
		return DriverMySQL
	case DriverSQLite, "sqlite":
		return DriverSQLite
	}
	return c.Driver
}

// FormatDSN, sürücüye özel bağlantı dizesini üretir.
//
// Örnek:
//
//	cfg := &fluentdb.Config{Driver: "mysql", Host: "db", Database: "app", User: "app", Password: "secret"}
//	dsn, _ := cfg.FormatDSN()
//	// app:secret@tcp(db:3306)/app?charset=utf8mb4&parseTime=true
func (c *Config) FormatDSN() (string, error) {
	switch c.DriverName() {
	case DriverMySQL:
		return c.mysqlDSN()
	case DriverSQLite:
		return c.sqliteDSN(), nil
	}
	return "", errors.New("unsupported driver '" + c.Driver + "'")
}

func (c *Config) mysqlDSN() (string, error) {
	var base *mysql.Config
	if c.DSN != "" {
		parsed, err := mysql.ParseDSN(c.DSN)
		if err != nil {
			return "", err
		}
		base = parsed
	} else {
		host, port := c.Host, c.Port
		if host == "" {
			host = "localhost"
		}
		if port == 0 {
			port = 3306
		}
		base = mysql.NewConfig()
		base.Net = "tcp"
		base.Addr = net.JoinHostPort(host, strconv.Itoa(port))
		base.DBName = c.Database
		// Tarih/Saat alanlarının time.Time'a otomatik dönüşümü için
		base.ParseTime = true
	}

	if c.User != "" {
		base.User = c.User
	}
	if c.Password != "" {
		base.Passwd = c.Password
	}

	params := url.Values{}
	if c.Charset != "" {
		params.Set("charset", c.Charset)
	}
	for k, v := range c.Options {
		params.Set(k, v)
	}

	dsn := base.FormatDSN()
	if len(params) == 0 {
		return dsn, nil
	}

	// Sürücünün kendi ayrıştırıcısından geçirilerek bilinen parametreler Config alanlarına oturur.
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	merged, err := mysql.ParseDSN(dsn + sep + params.Encode())
	if err != nil {
		return "", err
	}
	return merged.FormatDSN(), nil
}

func (c *Config) sqliteDSN() string {
	if c.DSN != "" {
		return c.DSN
	}

	database := c.Database
	if database == "" {
		database = ":memory:"
	}

	params := url.Values{}
	for k, v := range c.Options {
		params.Set(k, v)
	}
	if len(params) == 0 {
		return "file:" + database
	}
	return "file:" + database + "?" + params.Encode()
}

// LoadConfig, path'teki yapılandırma dosyasını okur. path boşsa yalnızca varsayılanlar ve
// FLUENTDB_ ortam değişkenleri kullanılır.
//
// Örnek dosya (fluentdb.yaml):
//
//	driver: mysql
//	host: 127.0.0.1
//	database: app
//	user: app
//	options:
//	  timeout: 5s
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FLUENTDB")
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault("driver", def.Driver)
	v.SetDefault("host", def.Host)
	v.SetDefault("port", def.Port)
	v.SetDefault("database", def.Database)
	v.SetDefault("charset", def.Charset)
	v.SetDefault("user", def.User)
	v.SetDefault("password", def.Password)
	v.SetDefault("dsn", def.DSN)
	v.SetDefault("options", def.Options)
	v.SetDefault("prefix", def.Prefix)
	v.SetDefault("debug", def.Debug)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, newConnError("config", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, newConnError("config", err)
	}
	if cfg.Options == nil {
		cfg.Options = map[string]string{}
	}
	return cfg, nil
}
