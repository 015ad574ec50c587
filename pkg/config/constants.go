package config

const (
	// EnvPrefix namespaces every SIX environment variable.
	EnvPrefix = "SIX"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SIX_DB_DSN"
	EnvDBHost = "SIX_DB_HOST"
	EnvDBUser = "SIX_DB_USER"
	EnvDBName = "SIX_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
