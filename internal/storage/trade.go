package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
	"github.com/iqbalbaharum/raydium-swap-desk/internal/utils"
)

type TradeStorage struct {
	client *sql.DB
}

func NewTradeStorage(db *sql.DB) *TradeStorage {
	return &TradeStorage{client: db}
}

func (s *TradeStorage) Set(ctx context.Context, trade *types.Trade) error {
	query := fmt.Sprintf("INSERT INTO %s %s", TABLE_NAME_TRADE, utils.BuildInsertQuery([]string{
		"wallet", "ammId", "mint", "action", "amount", "signature", "status", "timestamp",
	}))

	_, err := s.client.ExecContext(
		ctx,
		query,
		trade.Wallet,
		keyString(trade.AmmId),
		keyString(trade.Mint),
		trade.Action,
		trade.Amount,
		trade.Signature,
		trade.Status,
		trade.Timestamp,
	)

	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}

	return nil
}

func (s *TradeStorage) Search(ctx context.Context, filter types.MySQLFilter) ([]types.Trade, error) {
	query, values, err := utils.BuildSearchQuery(TABLE_NAME_TRADE, TRADE_SEARCH_COLUMNS, filter.Bounded(TRADE_SEARCH_MAX_LIMIT))
	if err != nil {
		return nil, err
	}

	rows, err := s.client.QueryContext(ctx, query, values...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrExecuteQuery, err)
	}
	defer rows.Close()

	trades := []types.Trade{}
	for rows.Next() {
		var (
			id          int64
			trade       types.Trade
			ammId, mint sql.NullString
		)

		if err := rows.Scan(
			&id,
			&trade.Wallet,
			&ammId,
			&mint,
			&trade.Action,
			&trade.Amount,
			&trade.Signature,
			&trade.Status,
			&trade.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrScanData, err)
		}

		trade.AmmId = parseKey(ammId)
		trade.Mint = parseKey(mint)
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrScanData, err)
	}

	return trades, nil
}

func (s *TradeStorage) DeleteAll(ctx context.Context) (int64, error) {
	result, err := s.client.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", TABLE_NAME_TRADE))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrExecuteStatement, err)
	}

	return result.RowsAffected()
}

func keyString(key *solana.PublicKey) sql.NullString {
	if key == nil || key.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: key.String(), Valid: true}
}

func parseKey(value sql.NullString) *solana.PublicKey {
	if !value.Valid {
		return nil
	}

	key, err := solana.PublicKeyFromBase58(value.String)
	if err != nil {
		return nil
	}
	return &key
}
