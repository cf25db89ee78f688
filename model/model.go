package model

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateUUIDWithSuffix generates a UUID with a given module name as a prefix.
// This is useful for creating unique identifiers with context-specific prefixes.
func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New()
	uuidStr := id.String()
	idWithSuffix := fmt.Sprintf("%s_%s", module, uuidStr)
	return idWithSuffix
}

// GenerateTransactionCode builds the human-readable transaction code shown on
// statements, in the form TXN<YYYYMMDD><8-hex-upper>.
func GenerateTransactionCode(at time.Time) string {
	id := uuid.New().String()
	return fmt.Sprintf("TXN%s%s", at.Format("20060102"), strings.ToUpper(id[:8]))
}

// Int64ToBigInt converts an int64 value to a *big.Int.
// Running balances are accumulated as big integers so long entry histories
// cannot overflow.
func Int64ToBigInt(value int64) *big.Int {
	return big.NewInt(value)
}

// compare compares two *big.Int values based on the provided condition (e.g., >, <, ==).
// Returns true if the condition holds, otherwise false.
func compare(value *big.Int, condition string, compareTo *big.Int) bool {
	cmp := value.Cmp(compareTo)
	switch condition {
	case ">":
		return cmp > 0
	case "<":
		return cmp < 0
	case ">=":
		return cmp >= 0
	case "<=":
		return cmp <= 0
	case "!=":
		return cmp != 0
	case "==":
		return cmp == 0
	}
	return false
}
