package constants

const (
	ViperHTTPAddrKey         = "http.addr"
	ViperHTTPAllowOriginsKey = "http.allow_origins"
	ViperHTTPBodyLimitKey    = "http.body_limit"

	ViperLogLevelKey  = "log.level"
	ViperLogFormatKey = "log.format"

	ViperStoreDriverKey     = "store.driver"
	ViperStoreDSNKey        = "store.dsn"
	ViperStoreSQLitePathKey = "store.sqlite_path"

	ViperClientsTimeoutKey = "clients.timeout"
	ViperClientsRetriesKey = "clients.retries"
	ViperSpacesURLKey      = "spaces.url"
	ViperProjectsURLKey    = "projects.url"
	ViperTimesURLKey       = "times.url"

	ViperExchangeURLKey      = "exchange.url"
	ViperExchangeKeyKey      = "exchange.key"
	ViperExchangeMinQuotaKey = "exchange.min_quota"
	ViperExchangeTimezoneKey = "exchange.timezone"

	ViperDefaultCountryKey = "catalog.default_country"
	ViperBaseScalingKey    = "estimate.base_scaling"

	ViperArchiveBucketKey = "archive.bucket"
	ViperArchiveRegionKey = "archive.region"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
	StoreDriverSQLite   = "sqlite"
)
