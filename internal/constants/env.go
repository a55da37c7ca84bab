// Package constants provides centralized definitions of constants used throughout the application
package constants

// Environment variable names
const (
	// EnvServerAddress is the address the CLI talks to
	EnvServerAddress = "FACESWAP_SERVER_ADDRESS"

	// EnvHost is the interface the API server listens on
	EnvHost = "FACESWAP_HOST"
	// EnvPort is the port the API server listens on
	EnvPort = "FACESWAP_PORT"
	// EnvMaxUploadMB limits the size of a process request body
	EnvMaxUploadMB = "FACESWAP_MAX_UPLOAD_MB"

	// EnvUploadDir is the staging directory for uploads
	EnvUploadDir = "FACESWAP_UPLOAD_DIR"
	// EnvOutputDir is the staging directory for outputs
	EnvOutputDir = "FACESWAP_OUTPUT_DIR"
	// EnvOutputRetention is how long outputs are kept, as a Go duration
	EnvOutputRetention = "FACESWAP_OUTPUT_RETENTION"
	// EnvJanitorInterval is the time between output sweeps, as a Go duration
	EnvJanitorInterval = "FACESWAP_JANITOR_INTERVAL"

	// EnvPipelineCommand is the command line of the external pipeline
	EnvPipelineCommand = "FACESWAP_PIPELINE_COMMAND"
	// EnvPipelineWorkdir is the working directory of the external pipeline
	EnvPipelineWorkdir = "FACESWAP_PIPELINE_WORKDIR"
	// EnvDefaultsFile is an optional YAML file of parameter defaults
	EnvDefaultsFile = "FACESWAP_DEFAULTS_FILE"

	// EnvExecutionProviders is a comma separated list of execution providers
	EnvExecutionProviders = "FACESWAP_EXECUTION_PROVIDERS"
	// EnvExecutionThreadCount is the number of pipeline threads
	EnvExecutionThreadCount = "FACESWAP_EXECUTION_THREAD_COUNT"
	// EnvExecutionQueueCount is the number of frames per thread
	EnvExecutionQueueCount = "FACESWAP_EXECUTION_QUEUE_COUNT"

	// EnvDBHost selects Postgres for the local job database when set
	EnvDBHost = "DB_HOST"
	// EnvDBPort is the Postgres port
	EnvDBPort = "DB_PORT"
	// EnvDBUser is the Postgres user
	EnvDBUser = "DB_USER"
	// EnvDBPassword is the Postgres password
	EnvDBPassword = "DB_PASSWORD"
	// EnvDBName is the Postgres database
	EnvDBName = "DB_NAME"
	// EnvDBSSLMode enables TLS to Postgres when "require"
	EnvDBSSLMode = "DB_SSL_MODE"
	// EnvDBPath is the SQLite file used when no Postgres host is set
	EnvDBPath = "FACESWAP_DB_PATH"
)
