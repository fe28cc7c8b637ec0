package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Sales        SalesConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Sales.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GIFTSHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"GIFTSHOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GIFTSHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GIFTSHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GIFTSHOP_DB_DSN"`
	Driver string `envconfig:"GIFTSHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GIFTSHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"GIFTSHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GIFTSHOP_DB_USER"`
	LegacyPassword string `envconfig:"GIFTSHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"GIFTSHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"GIFTSHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GIFTSHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GIFTSHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GIFTSHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GIFTSHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GIFTSHOP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GIFTSHOP_REDIS_ADDR"`
	Password     string        `envconfig:"GIFTSHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"GIFTSHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GIFTSHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GIFTSHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GIFTSHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GIFTSHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GIFTSHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GIFTSHOP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GIFTSHOP_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"GIFTSHOP_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GIFTSHOP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GIFTSHOP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GIFTSHOP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GIFTSHOP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GIFTSHOP_ARGON_KEY_LEN" default:"32"`
}

// SalesConfig carries the channel tax rates and bill numbering settings.
type SalesConfig struct {
	POSTaxRate      string `envconfig:"GIFTSHOP_POS_TAX_RATE" default:"0.05"`
	OnlineTaxRate   string `envconfig:"GIFTSHOP_ONLINE_TAX_RATE" default:"0.00"`
	BillPrefix      string `envconfig:"GIFTSHOP_BILL_PREFIX" default:"DVP"`
	ReferenceRetry  int    `envconfig:"GIFTSHOP_PAYMENT_REFERENCE_RETRIES" default:"5"`
	HistoryPageSize int    `envconfig:"GIFTSHOP_POS_HISTORY_PAGE_SIZE" default:"100"`
}

// POSTax returns the parsed POS tax rate.
func (s SalesConfig) POSTax() decimal.Decimal {
	rate, err := decimal.NewFromString(s.POSTaxRate)
	if err != nil {
		return decimal.Zero
	}
	return rate
}

// OnlineTax returns the parsed online tax rate.
func (s SalesConfig) OnlineTax() decimal.Decimal {
	rate, err := decimal.NewFromString(s.OnlineTaxRate)
	if err != nil {
		return decimal.Zero
	}
	return rate
}

func (s SalesConfig) validate() error {
	if _, err := decimal.NewFromString(s.POSTaxRate); err != nil {
		return fmt.Errorf("invalid pos tax rate %q: %w", s.POSTaxRate, err)
	}
	if _, err := decimal.NewFromString(s.OnlineTaxRate); err != nil {
		return fmt.Errorf("invalid online tax rate %q: %w", s.OnlineTaxRate, err)
	}
	if strings.TrimSpace(s.BillPrefix) == "" {
		return fmt.Errorf("bill prefix cannot be blank")
	}
	return nil
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GIFTSHOP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GIFTSHOP_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
