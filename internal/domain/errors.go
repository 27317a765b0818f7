package domain

import "errors"

// LedgerError is a precondition failure of a ledger operation.
// Code is stable for programmatic handling, Reason is the literal revert string.
type LedgerError struct {
	Code   string
	Reason string
}

func (e *LedgerError) Error() string {
	return e.Reason
}

func newLedgerError(code, reason string) *LedgerError {
	return &LedgerError{Code: code, Reason: reason}
}

var (
	// ErrStageNotEligible is returned when the current sale stage does not allow the operation
	ErrStageNotEligible = newLedgerError("StageNotEligible", "Stage Not Eligible")

	// ErrSaleNotStarted is returned when the sale start time is unset or in the future
	ErrSaleNotStarted = newLedgerError("SaleNotStarted", "Sale Not Started")

	// ErrNotWhitelisted is returned when a slot 2 buyer is not whitelisted
	ErrNotWhitelisted = newLedgerError("NotWhitelisted", "Not Whitelisted")

	// ErrTokenPaused is returned by transfer, approve and transferFrom on a paused token
	ErrTokenPaused = newLedgerError("TokenPaused", "Token Paused")

	// ErrAlreadyPaused is returned when pausing a paused token
	ErrAlreadyPaused = newLedgerError("AlreadyPaused", "Token Paused")

	// ErrAlreadyUnpaused is returned when unpausing a token that is not paused
	ErrAlreadyUnpaused = newLedgerError("AlreadyUnpaused", "Token Not Paused")

	// ErrInsufficientBalance is returned when a debit exceeds the account balance
	ErrInsufficientBalance = newLedgerError("InsufficientBalance", "ERC20: transfer amount exceeds balance")

	// ErrInsufficientAllowance is returned when a pull exceeds the spender allowance
	ErrInsufficientAllowance = newLedgerError("InsufficientAllowance", "ERC20: insufficient allowance")

	// ErrInsufficientPresaleBalance is returned when a redemption exceeds the presale balance
	ErrInsufficientPresaleBalance = newLedgerError("InsufficientPresaleBalance", "Insufficient Presale Balance")

	// ErrInsufficientPoolLiquidity is returned when the treasury swap headroom cannot back a P2 swap
	ErrInsufficientPoolLiquidity = newLedgerError("InsufficientPoolLiquidity", "Insufficient Pool Liquidity")

	// ErrInsufficientRewardReserve is returned when the reward reserve cannot pay accrued interest
	ErrInsufficientRewardReserve = newLedgerError("InsufficientRewardReserve", "Insufficient Reward Reserve")

	// ErrNoActiveStake is returned when unstaking without an active stake
	ErrNoActiveStake = newLedgerError("NoActiveStake", "No Active Stake")

	// ErrNotOwner is returned when a non-owner calls an owner-only operation
	ErrNotOwner = newLedgerError("NotOwner", "Ownable: caller is not the owner")

	// ErrSystemCaller is returned when a ledger-controlled account such as the staking pool is used as a caller
	ErrSystemCaller = newLedgerError("SystemCaller", "Caller Is A System Account")

	// ErrInvalidAmount is returned for zero amounts where a positive amount is required
	ErrInvalidAmount = newLedgerError("InvalidAmount", "Invalid Amount")

	// ErrInvalidAddress is returned for malformed or zero addresses
	ErrInvalidAddress = newLedgerError("InvalidAddress", "Invalid Address")

	// ErrOverflow is returned when a result does not fit in 256 bits
	ErrOverflow = newLedgerError("Overflow", "Arithmetic Overflow")

	// ErrUnknownToken is returned for an unrecognised token kind
	ErrUnknownToken = newLedgerError("UnknownToken", "Unknown Token")

	// ErrUnknownWindow is returned for an unrecognised schedule window
	ErrUnknownWindow = newLedgerError("UnknownWindow", "Unknown Window")

	// ErrNotInitialized is returned when the ledger has not been bootstrapped
	ErrNotInitialized = newLedgerError("NotInitialized", "Ledger Not Initialized")
)

// AsLedgerError extracts a LedgerError from an error chain
func AsLedgerError(err error) (*LedgerError, bool) {
	var le *LedgerError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}
