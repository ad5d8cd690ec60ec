package storage

const (
	KEY_POOLKEYS = "storage::pool_keys"
	KEY_PAIR     = "storage::pair"
)

const (
	TABLE_NAME_TRADE       = "trades"
	TRADE_SEARCH_MAX_LIMIT = 500
)

// Columns the trade journal may be searched on.
var TRADE_SEARCH_COLUMNS = []string{"wallet", "ammId", "mint", "action", "signature", "status", "timestamp"}
