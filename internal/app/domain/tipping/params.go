package tipping

// Params is the immutable platform configuration referenced by every
// component. Owner is both the platform fee sink and a forbidden tip
// recipient.
type Params struct {
	Owner           string
	FeeBasisPoints  uint64
	MaxTipAmount    uint64
	RewardThreshold uint64
	RewardRate      uint64
	MaxRewardRate   uint64
	MinUsernameLen  int
	MaxUsernameLen  int
	Assets          []string
}

// DefaultParams returns the reference deployment's constants. Owner must be
// supplied by configuration.
func DefaultParams() Params {
	return Params{
		FeeBasisPoints:  500,
		MaxTipAmount:    1_000_000_000_000,
		RewardThreshold: 1_000_000,
		RewardRate:      10,
		MaxRewardRate:   100,
		MinUsernameLen:  3,
		MaxUsernameLen:  20,
		Assets:          []string{AssetSTX, AssetBTC},
	}
}

// ValidAmount reports whether an amount is a legal tip size.
func (p Params) ValidAmount(amount uint64) bool {
	return amount > 0 && amount <= p.MaxTipAmount
}

// ValidRecipient reports whether the recipient is legal for the sender.
// Tips to self and to the platform owner are rejected.
func (p Params) ValidRecipient(sender, recipient string) bool {
	return recipient != sender && recipient != p.Owner
}

// SupportedAsset reports whether the asset tag is in the supported set.
func (p Params) SupportedAsset(tag string) bool {
	for _, a := range p.Assets {
		if a == tag {
			return true
		}
	}
	return false
}

// Split computes the platform fee and the net amount the recipient receives.
// The fee is floored, so net + fee == amount exactly for every input. The
// decomposition below avoids intermediate overflow for any uint64 amount.
func (p Params) Split(amount uint64) (net, fee uint64) {
	fee = amount/10_000*p.FeeBasisPoints + amount%10_000*p.FeeBasisPoints/10_000
	return amount - fee, fee
}

// RewardFor returns the points accrued by the sender of a tip of the given
// gross amount.
func (p Params) RewardFor(amount uint64) uint64 {
	if amount >= p.RewardThreshold {
		return p.RewardRate
	}
	return 0
}

// ValidateUsername checks the shape of a username. Emptiness is classified
// before length so a zero-length name reports ErrEmptyUsername, not
// ErrUsernameLength.
func (p Params) ValidateUsername(name string) error {
	if name == "" {
		return ErrEmptyUsername
	}
	if len(name) < p.MinUsernameLen || len(name) > p.MaxUsernameLen {
		return ErrUsernameLength
	}
	return nil
}
