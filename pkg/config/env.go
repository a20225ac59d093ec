package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "mealora"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "MEALORA_DB_DSN"
	EnvDBHost = "MEALORA_DB_HOST"
	EnvDBUser = "MEALORA_DB_USER"
	EnvDBName = "MEALORA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
