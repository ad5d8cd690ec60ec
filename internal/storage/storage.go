package storage

import "database/sql"

var (
	Trade *TradeStorage
)

func Init(client *sql.DB) {
	Trade = NewTradeStorage(client)
}
