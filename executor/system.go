package executor

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/meridian-network/meridian/common"
	"github.com/meridian-network/meridian/storage/tracking"
	"github.com/meridian-network/meridian/types"
)

// The native mint. Token balances live as u256 CLValues under balance keys,
// one purse per account and entity. The mint is not a contract, transfers
// run directly against the tracking copy.

const (
	// ErrInsufficientFunds is reported when a purse cannot cover a
	// requested transfer.
	ErrInsufficientFunds = common.ConstError("insufficient funds")
	errPurseNotFound     = common.ConstError("purse not found")
	errAccountNotFound   = common.ConstError("account not found")
)

// DefaultMintTransferGasCost is the flat gas charge of a native transfer.
const DefaultMintTransferGasCost types.Gas = 1

// totalSupplyKey addresses the running total of all minted tokens.
var totalSupplyKey = func() types.Key {
	hash := common.HashOf([]byte("system:mint:total-supply"))
	return types.URefKey(types.AddressFromBytes(hash[:]))
}()

// mintInto creates or tops up a purse and bumps the total supply. Used
// during bootstrap and contract installation.
func mintInto(tc *tracking.TrackingCopy, purse types.Address, amount *uint256.Int) error {
	key := types.BalanceKey(purse)
	current, err := readBalance(tc, purse)
	if err != nil {
		if !errors.Is(err, errPurseNotFound) {
			return err
		}
		current = uint256.NewInt(0)
	}
	tc.Write(key, types.U256Value(new(uint256.Int).Add(current, amount)))

	supply, _, err := tc.Read(totalSupplyKey)
	if err != nil {
		return err
	}
	if supply == nil {
		tc.Write(totalSupplyKey, types.U256Value(amount))
		return nil
	}
	return tc.AddUInt256(totalSupplyKey, amount)
}

// readBalance returns the balance of the purse, or errPurseNotFound.
func readBalance(tc *tracking.TrackingCopy, purse types.Address) (*uint256.Int, error) {
	value, found, err := tc.Read(types.BalanceKey(purse))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %v", errPurseNotFound, purse)
	}
	cl, ok := value.(*types.CLValue)
	if !ok {
		return nil, fmt.Errorf("%w: balance of %v is not a CLValue", types.ErrTypeMismatch, purse)
	}
	return cl.AsU256()
}

// transferBetweenPurses moves tokens between two existing purses. The
// source must cover the amount, the total supply is unchanged.
func transferBetweenPurses(tc *tracking.TrackingCopy, source, target types.Address, amount *uint256.Int) error {
	balance, err := readBalance(tc, source)
	if err != nil {
		return err
	}
	if balance.Lt(amount) {
		return fmt.Errorf("%w: purse %v holds %v, needs %v", ErrInsufficientFunds, source, balance, amount)
	}
	if _, err := readBalance(tc, target); err != nil {
		return err
	}
	tc.Write(types.BalanceKey(source), types.U256Value(new(uint256.Int).Sub(balance, amount)))
	return tc.AddUInt256(types.BalanceKey(target), amount)
}

// resolvePurse returns the main purse of the account or entity stored under
// the key.
func resolvePurse(tc *tracking.TrackingCopy, key types.Key) (types.Address, error) {
	value, found, err := tc.Read(key)
	if err != nil {
		return types.Address{}, err
	}
	if !found {
		return types.Address{}, fmt.Errorf("%w: %v", errAccountNotFound, key)
	}
	switch holder := value.(type) {
	case *types.Account:
		return holder.MainPurse, nil
	case *types.Entity:
		return holder.MainPurse, nil
	default:
		return types.Address{}, fmt.Errorf("%w: %v holds no purse", types.ErrTypeMismatch, key)
	}
}

// mintTransfer runs a native transfer on a fork of the tracking copy. On
// success the fork is merged back, on failure it is dropped and the error
// is mapped to the taxonomy: an uncovered amount is a revert, anything
// else a trap.
func mintTransfer(tc *tracking.TrackingCopy, sourceHolder, targetHolder types.Key, amount *uint256.Int) (*HostError, error) {
	fork := tc.Fork2()
	source, err := resolvePurse(fork, sourceHolder)
	if err != nil {
		return mapMintError(err)
	}
	target, err := resolvePurse(fork, targetHolder)
	if err != nil {
		return mapMintError(err)
	}
	if err := transferBetweenPurses(fork, source, target, amount); err != nil {
		return mapMintError(err)
	}
	tc.ApplyChanges(fork)
	return nil, nil
}

func mapMintError(err error) (*HostError, error) {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return reverted(), nil
	case errors.Is(err, errPurseNotFound),
		errors.Is(err, errAccountNotFound),
		errors.Is(err, types.ErrTypeMismatch):
		return trapped(TrapUnreachable), nil
	default:
		return nil, err
	}
}
