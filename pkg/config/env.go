package config

// EnvPrefix is handed to envconfig; every field carries an explicit name so it only
// matters for fields without one.
const EnvPrefix = "DELIVERY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv         = "DELIVERY_APP_ENV"
	EnvPort           = "DELIVERY_APP_PORT"
	EnvLogLevel       = "DELIVERY_LOG_LEVEL"
	EnvDBDSN          = "DELIVERY_DB_DSN"
	EnvDBHost         = "DELIVERY_DB_HOST"
	EnvDBPort         = "DELIVERY_DB_PORT"
	EnvDBUser         = "DELIVERY_DB_USER"
	EnvDBPassword     = "DELIVERY_DB_PASSWORD"
	EnvDBName         = "DELIVERY_DB_NAME"
	EnvClientURI      = "DELIVERY_CLIENT_URI"
	EnvRedisURL       = "DELIVERY_REDIS_URL"
	EnvJWTSecret      = "DELIVERY_AUTH_JWT_SECRET"
	EnvJWTIssuer      = "DELIVERY_AUTH_JWT_ISSUER"
	EnvGCPProjectID   = "DELIVERY_GCP_PROJECT_ID"
	EnvPubSubTopic    = "DELIVERY_PUBSUB_DOMAIN_TOPIC"
	EnvOutboxMaxTries = "DELIVERY_OUTBOX_MAX_ATTEMPTS"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
