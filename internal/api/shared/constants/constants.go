package constants

const (
	DEFAULT_EVENTS_LIMIT    = 100
	MAX_EVENTS_LIMIT        = 1000
	MAX_WHITELIST_ADDRESSES = 500
	HEADER_REQUEST_ID       = "X-Request-ID"
	SERVICE_NAME            = "ff-sale-ledger-api"
)
