package testutil

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"gatepass/internal/pass/models"
	id "gatepass/pkg/domain"
)

// TestAddresses are fixed accounts for deterministic test data.
var TestAddresses = struct {
	Admin        common.Address
	PaymentToken common.Address
	Custody      common.Address
	Alice        common.Address
	Bob          common.Address
}{
	Admin:        common.HexToAddress("0x00000000000000000000000000000000000000ad"),
	PaymentToken: common.HexToAddress("0x00000000000000000000000000000000000005dc"),
	Custody:      common.HexToAddress("0x000000000000000000000000000000000000c0de"),
	Alice:        common.HexToAddress("0x00000000000000000000000000000000000000a1"),
	Bob:          common.HexToAddress("0x00000000000000000000000000000000000000b2"),
}

// Accounts returns n distinct addresses starting at base.
func Accounts(base int64, n int) []common.Address {
	out := make([]common.Address, n)
	for i := range out {
		out[i] = common.BigToAddress(big.NewInt(base + int64(i)))
	}
	return out
}

// ConfigBuilder provides a fluent interface for building test configurations.
type ConfigBuilder struct {
	cfg *models.Configuration
}

// NewConfigBuilder starts from the deployment defaults owned by TestAddresses.Admin.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		cfg: models.DefaultConfiguration(TestAddresses.Admin, TestAddresses.PaymentToken, TestAddresses.Custody, time.Now().UTC()),
	}
}

func (b *ConfigBuilder) WithCost(cost int64) *ConfigBuilder {
	b.cfg.PassCost = big.NewInt(cost)
	return b
}

func (b *ConfigBuilder) WithDuration(d time.Duration) *ConfigBuilder {
	b.cfg.PassDuration = d
	return b
}

func (b *ConfigBuilder) WithMaxSupply(n uint64) *ConfigBuilder {
	b.cfg.MaxSupply = n
	return b
}

func (b *ConfigBuilder) WithAdmin(admin common.Address) *ConfigBuilder {
	b.cfg.Admin = admin
	return b
}

func (b *ConfigBuilder) WithUpdatedAt(t time.Time) *ConfigBuilder {
	b.cfg.UpdatedAt = t
	return b
}

func (b *ConfigBuilder) Build() *models.Configuration {
	return b.cfg.Clone()
}

// PassBuilder provides a fluent interface for building test passes.
type PassBuilder struct {
	passID    id.PassID
	recipient common.Address
	payer     common.Address
	price     *big.Int
	kind      models.Kind
	issuedAt  time.Time
	duration  time.Duration
}

// NewPassBuilder creates a paid pass #1 for Bob bought by Alice at the default price.
func NewPassBuilder() *PassBuilder {
	return &PassBuilder{
		passID:    1,
		recipient: TestAddresses.Bob,
		payer:     TestAddresses.Alice,
		price:     big.NewInt(models.DefaultPassCost),
		kind:      models.KindPaid,
		issuedAt:  time.Now().UTC(),
		duration:  models.DefaultPassDuration,
	}
}

func (b *PassBuilder) WithID(passID id.PassID) *PassBuilder {
	b.passID = passID
	return b
}

func (b *PassBuilder) WithRecipient(recipient common.Address) *PassBuilder {
	b.recipient = recipient
	return b
}

func (b *PassBuilder) WithPayer(payer common.Address) *PassBuilder {
	b.payer = payer
	return b
}

// AsAdminIssued drops the payer and price.
func (b *PassBuilder) AsAdminIssued() *PassBuilder {
	b.payer = common.Address{}
	b.price = nil
	b.kind = models.KindAdmin
	return b
}

func (b *PassBuilder) IssuedAt(t time.Time) *PassBuilder {
	b.issuedAt = t
	return b
}

func (b *PassBuilder) WithDuration(d time.Duration) *PassBuilder {
	b.duration = d
	return b
}

func (b *PassBuilder) Build() *models.Pass {
	return models.NewPass(b.passID, b.recipient, b.payer, b.price, b.kind, b.issuedAt, b.duration)
}
