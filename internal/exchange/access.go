package exchange

import "github.com/ethereum/go-ethereum/common"

// RequireOwner fails with ErrNotOwner unless caller owns the pool.
func RequireOwner(caller common.Address, pool Pool) error {
	if caller != pool.Owner {
		return ErrNotOwner
	}
	return nil
}
