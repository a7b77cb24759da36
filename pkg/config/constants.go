package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names.
const EnvPrefix = "BRANDPULSE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "BRANDPULSE_APP_ENV"
	EnvPort     = "BRANDPULSE_APP_PORT"
	EnvDBDSN    = "BRANDPULSE_DB_DSN"
	EnvDBHost   = "BRANDPULSE_DB_HOST"
	EnvDBUser   = "BRANDPULSE_DB_USER"
	EnvDBName   = "BRANDPULSE_DB_NAME"
	EnvRedisURL = "BRANDPULSE_REDIS_URL"

	EnvSocialPublishBaseURL = "BRANDPULSE_SOCIAL_PUBLISH_BASE_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
