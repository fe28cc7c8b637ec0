package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv     = "GIFTSHOP_APP_ENV"
	EnvPort       = "GIFTSHOP_APP_PORT"
	EnvDBDSN      = "GIFTSHOP_DB_DSN"
	EnvDBHost     = "GIFTSHOP_DB_HOST"
	EnvDBUser     = "GIFTSHOP_DB_USER"
	EnvDBName     = "GIFTSHOP_DB_NAME"
	EnvRedisURL   = "GIFTSHOP_REDIS_URL"
	EnvJWTSecret  = "GIFTSHOP_JWT_SECRET"
	EnvJWTIssuer  = "GIFTSHOP_JWT_ISSUER"
	EnvJWTExpMins = "GIFTSHOP_JWT_EXPIRATION_MINUTES"

	EnvPOSTaxRate    = "GIFTSHOP_POS_TAX_RATE"
	EnvOnlineTaxRate = "GIFTSHOP_ONLINE_TAX_RATE"
	EnvBillPrefix    = "GIFTSHOP_BILL_PREFIX"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
