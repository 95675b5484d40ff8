package usecase

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

const microSTXDecimals = 6

var stxAmountPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

// ParseSTXAmount converts a decimal STX amount into micro-STX. Fraction digits beyond the sixth are truncated.
// The result must be positive.
func ParseSTXAmount(amount string) (uint64, error) {
	trimmed := strings.TrimSpace(amount)
	if !stxAmountPattern.MatchString(trimmed) {
		return 0, errors.Wrapf(ErrInvalidAmount, "%q is not a decimal amount", amount)
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidAmount, "%q: %v", amount, err)
	}

	micro := d.Shift(microSTXDecimals).Truncate(0).BigInt()
	if micro.Sign() <= 0 {
		return 0, errors.Wrapf(ErrInvalidAmount, "%q must be positive", amount)
	}
	if !micro.IsUint64() {
		return 0, errors.Wrapf(ErrInvalidAmount, "%q is too large", amount)
	}
	return micro.Uint64(), nil
}
