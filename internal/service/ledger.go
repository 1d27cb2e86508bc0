package service

import (
	"fmt"

	"github.com/smartplatefoodredistribution-art/smartplate/pkg/apperror"
)

// CommitQuantity applies a donor's committed amount against a request's
// quantity ledger. It is pure: it returns the new fulfilled total and
// whether the request is now fully satisfied, and leaves persistence to the
// caller. The same cap is enforced again by the store-level conditional
// increment, so a race between two callers cannot overshoot.
func CommitQuantity(requested, fulfilled, amount int) (newTotal int, satisfied bool, err error) {
	if amount <= 0 {
		return 0, false, fmt.Errorf("%w: quantity must be positive", apperror.ErrValidation)
	}
	if fulfilled < 0 || requested <= 0 {
		return 0, false, fmt.Errorf("%w: ledger state out of range", apperror.ErrValidation)
	}
	if fulfilled+amount > requested {
		return 0, false, fmt.Errorf("%w: %d committed against %d remaining",
			apperror.ErrOverCommit, amount, requested-fulfilled)
	}

	newTotal = fulfilled + amount
	return newTotal, newTotal >= requested, nil
}
