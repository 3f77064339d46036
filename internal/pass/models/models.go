package models

import (
	"math"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"

	id "gatepass/pkg/domain"
)

// Deployment defaults. Cost is in payment-token minor units (6 decimals).
const (
	DefaultPassCost     int64         = 4_990_000
	DefaultPassDuration time.Duration = 2_592_000 * time.Second
	DefaultMaxSupply    uint64        = 42

	// MaxSupplyLimit is the largest cap a BIGINT column holds.
	MaxSupplyLimit uint64 = math.MaxInt64
)

// Configuration is the single mutable record guarded by the store transaction.
type Configuration struct {
	PassCost     *big.Int
	PassDuration time.Duration
	MaxSupply    uint64
	MetadataBase string
	TotalIssued  uint64
	Admin        common.Address
	PaymentToken common.Address
	Custody      common.Address
	UpdatedAt    time.Time
}

// DefaultConfiguration returns the configuration a fresh deployment starts with.
func DefaultConfiguration(admin, paymentToken, custody common.Address, now time.Time) *Configuration {
	return &Configuration{
		PassCost:     big.NewInt(DefaultPassCost),
		PassDuration: DefaultPassDuration,
		MaxSupply:    DefaultMaxSupply,
		Admin:        admin,
		PaymentToken: paymentToken,
		Custody:      custody,
		UpdatedAt:    now,
	}
}

// Clone returns a deep copy so callers cannot mutate stored state through a snapshot.
func (c *Configuration) Clone() *Configuration {
	if c == nil {
		return nil
	}
	out := *c
	if c.PassCost != nil {
		out.PassCost = new(big.Int).Set(c.PassCost)
	}
	return &out
}

// SupplyExhausted reports whether another issuance would break totalIssued <= maxSupply.
func (c *Configuration) SupplyExhausted() bool {
	return c.TotalIssued >= c.MaxSupply
}

// NextPassID is the id the next issuance will take.
func (c *Configuration) NextPassID() id.PassID {
	return id.PassID(c.TotalIssued + 1)
}

// IsIssued reports whether passID falls in 1..TotalIssued.
func (c *Configuration) IsIssued(passID id.PassID) bool {
	return passID >= 1 && uint64(passID) <= c.TotalIssued
}

func (c *Configuration) IsAdmin(addr common.Address) bool {
	return !id.IsZeroAddress(addr) && c.Admin == addr
}

// TokenURI concatenates the metadata base with the decimal id. An empty base yields "".
func (c *Configuration) TokenURI(passID id.PassID) string {
	if c.MetadataBase == "" {
		return ""
	}
	return c.MetadataBase + strconv.FormatUint(uint64(passID), 10)
}

// Kind distinguishes paid issuance from admin-bypass issuance. Orphaned records
// cover ids the ledger minted without a committed issuance.
type Kind string

const (
	KindPaid     Kind = "paid"
	KindAdmin    Kind = "admin"
	KindOrphaned Kind = "orphaned"
)

func (k Kind) IsValid() bool {
	return k == KindPaid || k == KindAdmin || k == KindOrphaned
}

// Pass is the issuance record. Ownership after mint belongs to the credential ledger.
type Pass struct {
	ID        id.PassID
	Recipient common.Address
	Payer     common.Address
	PricePaid *big.Int
	Kind      Kind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// NewPass stamps an expiry of issuedAt + duration, both truncated to whole seconds.
func NewPass(passID id.PassID, recipient, payer common.Address, price *big.Int, kind Kind, issuedAt time.Time, duration time.Duration) *Pass {
	issuedAt = issuedAt.UTC().Truncate(time.Second)
	if price == nil {
		price = new(big.Int)
	}
	return &Pass{
		ID:        passID,
		Recipient: recipient,
		Payer:     payer,
		PricePaid: new(big.Int).Set(price),
		Kind:      kind,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(duration.Truncate(time.Second)),
	}
}

// NewOrphanedPass records an id already minted to owner. It expires the moment
// it is recorded, so it never grants access.
func NewOrphanedPass(passID id.PassID, owner common.Address, at time.Time) *Pass {
	return NewPass(passID, owner, common.Address{}, nil, KindOrphaned, at, 0)
}

// IsValidAt reports whether the pass is unexpired at now. Expiry is exclusive.
func (p *Pass) IsValidAt(now time.Time) bool {
	return p.ExpiresAt.After(now)
}

// PassView is a pass record joined with its current ledger owner and validity.
type PassView struct {
	Pass     *Pass
	Owner    common.Address
	Valid    bool
	TokenURI string
}
