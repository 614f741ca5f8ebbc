package parser

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/runesbridge/staking-pipeline/internal/models"
)

// Record is the typed view of a transaction row.
type Record struct {
	WalletAddress string
	DateTime      time.Time
	Amount        decimal.Decimal
}

// ParseRecord extracts wallet, date and amount from a row. Rows with a missing
// wallet, an unparseable date or a non-positive amount report false.
func ParseRecord(row models.Row) (Record, bool) {
	if len(row) <= models.ColumnAmount {
		return Record{}, false
	}

	wallet, ok := ParseWallet(row[models.ColumnWallet])
	if !ok {
		return Record{}, false
	}
	amount, ok := ParseAmount(row[models.ColumnAmount])
	if !ok {
		return Record{}, false
	}
	dateTime, ok := ParseDate(row[models.ColumnDate])
	if !ok {
		return Record{}, false
	}

	return Record{WalletAddress: wallet, DateTime: dateTime, Amount: amount}, true
}

// ParseAmount reads a positive finite amount from a numeric or text cell.
func ParseAmount(value any) (decimal.Decimal, bool) {
	var amount decimal.Decimal
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, false
		}
		amount = decimal.NewFromFloat(v)
	case float32:
		return ParseAmount(float64(v))
	case int:
		amount = decimal.NewFromInt(int64(v))
	case int64:
		amount = decimal.NewFromInt(v)
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, false
		}
		amount = d
	default:
		return decimal.Zero, false
	}

	if !amount.IsPositive() {
		return decimal.Zero, false
	}
	return amount, true
}

// ParseWallet reads the wallet address cell. Addresses are compared exactly,
// so text is returned untouched.
func ParseWallet(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, v != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}
