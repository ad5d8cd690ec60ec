package utils

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/iqbalbaharum/raydium-swap-desk/internal/types"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
)

var addressPattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

// IsValidAddress accepts a string iff it is base58 and decodes to exactly
// 32 bytes.
func IsValidAddress(address string) bool {
	if !addressPattern.MatchString(address) {
		return false
	}

	decoded, err := base58.Decode(address)
	if err != nil {
		return false
	}

	return len(decoded) == 32
}

// ParseAmount parses a human-entered decimal amount. Empty, zero and
// negative values are rejected.
func ParseAmount(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", types.ErrInvalidAmount)
	}

	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", types.ErrInvalidAmount, value)
	}

	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be greater than zero", types.ErrInvalidAmount)
	}

	return amount, nil
}

// ToRawAmount scales a human amount by 10^decimals, truncating anything
// below the smallest unit.
func ToRawAmount(amount decimal.Decimal, decimals uint8) (uint64, error) {
	raw := amount.Shift(int32(decimals)).Truncate(0)

	if !raw.IsPositive() {
		return 0, fmt.Errorf("%w: %s is below the smallest unit", types.ErrInvalidAmount, amount)
	}

	bi := raw.BigInt()
	if !bi.IsUint64() {
		return 0, fmt.Errorf("%w: %s overflows", types.ErrInvalidAmount, amount)
	}

	return bi.Uint64(), nil
}

// FormatAmount renders a raw integer amount in human units.
func FormatAmount(raw uint64, decimals uint8) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(raw), -int32(decimals)).String()
}

// ParseOptionalUint parses an optional numeric field. Empty means zero.
func ParseOptionalUint(value string, bitSize int) (uint64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}

	parsed, err := strconv.ParseUint(value, 10, bitSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", types.ErrInvalidAmount, value)
	}

	return parsed, nil
}

func Encode[T any](w http.ResponseWriter, r *http.Request, status int, v T) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func Decode[T any](r *http.Request) (T, error) {
	var v T
	if r.Body == nil || r.ContentLength == 0 {
		return v, nil
	}

	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return v, fmt.Errorf("decode json: %w", err)
	}
	return v, nil
}

var searchOps = map[string]bool{
	"=": true, "!=": true, ">": true, ">=": true, "<": true, "<=": true, "LIKE": true,
}

func replaceLastComma(str string, replacement string) string {
	lastCommaIndex := strings.LastIndex(str, ",")
	if lastCommaIndex != -1 {
		str = str[:lastCommaIndex] + replacement + str[lastCommaIndex+1:]
	}

	return str
}

// BuildInsertQuery renders "(a,b) VALUES (?,?)" for the given columns.
func BuildInsertQuery(columns []string) string {
	column := "("
	values := " VALUES ("

	for _, name := range columns {
		column += fmt.Sprintf("%s,", name)
		values += "?,"
	}

	column = replaceLastComma(column, ")")
	values = replaceLastComma(values, ")")

	return column + values
}

// BuildSearchQuery builds a parameterised SELECT. Columns must be in allowed
// and operators come from a fixed set, so neither is injected verbatim.
func BuildSearchQuery(tableName string, allowed []string, filter types.MySQLFilter) (string, []any, error) {
	query := fmt.Sprintf(`SELECT * FROM %s`, tableName)
	var values []any

	for idx, q := range filter.Query {
		op := strings.ToUpper(strings.TrimSpace(q.Op))
		if !searchOps[op] {
			return "", nil, fmt.Errorf("%w: unsupported operator %q", types.ErrInvalidFilter, q.Op)
		}

		if !slices.Contains(allowed, q.Column) {
			return "", nil, fmt.Errorf("%w: unsupported column %q", types.ErrInvalidFilter, q.Column)
		}

		if idx == 0 {
			query += " WHERE "
		}

		query += fmt.Sprintf("%s %s ?", q.Column, op)
		values = append(values, q.Query)

		if idx < len(filter.Query)-1 {
			query += " AND "
		}
	}

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	return query, values, nil
}
