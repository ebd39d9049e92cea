package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix is effectively documentation.
const EnvPrefix = "BRICKVEST"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "BRICKVEST_DB_DSN"
	EnvDBHost = "BRICKVEST_DB_HOST"
	EnvDBUser = "BRICKVEST_DB_USER"
	EnvDBName = "BRICKVEST_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
