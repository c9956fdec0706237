package config

const (
	EnvPrefix = "IMPORTOPS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvAppEnv    = "IMPORTOPS_APP_ENV"
	EnvPort      = "IMPORTOPS_APP_PORT"
	EnvDBDSN     = "IMPORTOPS_DB_DSN"
	EnvDBHost    = "IMPORTOPS_DB_HOST"
	EnvDBUser    = "IMPORTOPS_DB_USER"
	EnvDBName    = "IMPORTOPS_DB_NAME"
	EnvRedisURL  = "IMPORTOPS_REDIS_URL"
	EnvJWTSecret = "IMPORTOPS_JWT_SECRET"
	EnvJWTIssuer = "IMPORTOPS_JWT_ISSUER"
	EnvUseSQLite = "IMPORTOPS_USE_SQLITE"

	EnvPaymentsAllowOverpayment = "IMPORTOPS_PAYMENTS_ALLOW_OVERPAYMENT"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
