package config

// EnvPrefix is the envconfig prefix shared by every binary.
const EnvPrefix = "martsys"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	// DefaultSQLiteDSN is used when MARTSYS_USE_SQLITE is set without an
	// explicit DSN.
	DefaultSQLiteDSN = "file:martsys.db"
)

const (
	EnvAppEnv = "MARTSYS_APP_ENV"
	EnvPort   = "MARTSYS_APP_PORT"
	EnvDBDSN  = "MARTSYS_DB_DSN"
	EnvDBHost = "MARTSYS_DB_HOST"
	EnvDBUser = "MARTSYS_DB_USER"
	EnvDBName = "MARTSYS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
