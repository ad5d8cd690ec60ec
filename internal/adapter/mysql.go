package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	db "github.com/iqbalbaharum/raydium-swap-desk/internal/database"
)

var (
	Database  *db.Database
	mySQLOnce sync.Once
)

func InitMySQLClient(ctx context.Context, dsn string) error {
	if dsn == "" {
		return errors.New("MySQL DSN is empty")
	}

	var initError error

	mySQLOnce.Do(func() {
		client, err := sql.Open("mysql", dsn)
		if err != nil {
			initError = fmt.Errorf("failed to connect to MySQL: %v", err)
			return
		}

		if err := client.PingContext(ctx); err != nil {
			initError = fmt.Errorf("failed to ping MySQL: %v", err)
			return
		}

		database := db.NewDatabase(client)
		if err := database.Migrate(ctx); err != nil {
			initError = err
			return
		}

		Database = database
	})

	return initError
}

func GetMySQLClient() (*sql.DB, error) {
	if Database == nil {
		return nil, errors.New("MySQL client is not initialized. call InitMySQLClient first")
	}

	return Database.MysqlClient, nil
}
