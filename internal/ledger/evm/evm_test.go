package evm

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass/internal/sentinel"
)

// Well-known development key (anvil/hardhat account 0).
const devKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var devAddress = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

// callBackend answers eth_call by method selector. Transaction methods are left
// to the embedded nil interface and panic if reached.
type callBackend struct {
	Backend
	abi      abi.ABI
	results  map[string][]any
	errs     map[string]error
	lastFrom common.Address
}

func newCallBackend(t *testing.T, rawABI string) *callBackend {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(rawABI))
	require.NoError(t, err)
	return &callBackend{abi: parsed, results: map[string][]any{}, errs: map[string]error{}}
}

func (b *callBackend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	method, err := b.abi.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	b.lastFrom = msg.From
	if err := b.errs[method.Name]; err != nil {
		return nil, err
	}
	return method.Outputs.Pack(b.results[method.Name]...)
}

func (b *callBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func TestNewSigner(t *testing.T) {
	signer, err := NewSigner("0x"+devKey, big.NewInt(31337))
	require.NoError(t, err)
	assert.Equal(t, devAddress, signer.Address())

	_, err = NewSigner("not-hex", big.NewInt(1))
	assert.Error(t, err)
}

func TestABIsParse(t *testing.T) {
	for name, raw := range map[string]string{"erc20": erc20ABI, "pass": passABI} {
		parsed, err := abi.JSON(strings.NewReader(raw))
		require.NoError(t, err, name)
		assert.NotEmpty(t, parsed.Methods, name)
	}
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))
	assert.ErrorIs(t, classify(context.DeadlineExceeded), context.DeadlineExceeded)
	assert.ErrorIs(t, classify(errors.New("execution reverted: ERC20: insufficient allowance")), sentinel.ErrTransferRejected)
	assert.ErrorIs(t, classify(bind.ErrNoCode), sentinel.ErrUnavailable)
	assert.ErrorIs(t, classify(errors.New("dial tcp 127.0.0.1:8545: connection refused")), sentinel.ErrUnavailable)
}

func TestPaymentTokenReads(t *testing.T) {
	signer, err := NewSigner(devKey, big.NewInt(31337))
	require.NoError(t, err)
	backend := newCallBackend(t, erc20ABI)
	backend.results["balanceOf"] = []any{big.NewInt(4_990_000)}
	backend.results["allowance"] = []any{big.NewInt(10)}

	tok, err := NewPaymentToken(common.HexToAddress("0x05dc"), backend, signer)
	require.NoError(t, err)

	balance, err := tok.BalanceOf(context.Background(), devAddress)
	require.NoError(t, err)
	assert.Equal(t, int64(4_990_000), balance.Int64())

	allowance, err := tok.Allowance(context.Background(), devAddress, devAddress)
	require.NoError(t, err)
	assert.Equal(t, int64(10), allowance.Int64())

	backend.errs["balanceOf"] = errors.New("connection reset by peer")
	_, err = tok.BalanceOf(context.Background(), devAddress)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}

func TestPassContractReads(t *testing.T) {
	signer, err := NewSigner(devKey, big.NewInt(31337))
	require.NoError(t, err)
	backend := newCallBackend(t, passABI)
	backend.results["ownerOf"] = []any{devAddress}
	backend.results["balanceOf"] = []any{big.NewInt(2)}
	backend.results["tokenOfOwnerByIndex"] = []any{big.NewInt(17)}

	passes, err := NewPassContract(common.HexToAddress("0x7a55"), backend, signer)
	require.NoError(t, err)
	ctx := context.Background()

	owner, err := passes.OwnerOf(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, devAddress, owner)

	held, err := passes.BalanceOf(ctx, devAddress)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), held)

	passID, err := passes.TokenOfOwnerByIndex(ctx, devAddress, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 17, passID)

	backend.errs["ownerOf"] = errors.New("execution reverted: ERC721NonexistentToken(9)")
	_, err = passes.OwnerOf(ctx, 9)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

// txBackend extends callBackend with enough of the transaction path for
// legacy-priced sends. Receipts are served from receipt; nil means not mined.
type txBackend struct {
	*callBackend
	sent    []*types.Transaction
	onSend  func()
	receipt *types.Receipt
}

func (b *txBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(1)}, nil
}

func (b *txBackend) PendingCodeAt(context.Context, common.Address) ([]byte, error) {
	return []byte{0x60}, nil
}

func (b *txBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return uint64(len(b.sent)), nil
}

func (b *txBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (b *txBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 60_000, nil
}

func (b *txBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	b.sent = append(b.sent, tx)
	if b.onSend != nil {
		b.onSend()
	}
	return nil
}

func (b *txBackend) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	if b.receipt == nil {
		return nil, ethereum.NotFound
	}
	return b.receipt, nil
}

func newTxToken(t *testing.T) (*PaymentToken, *txBackend) {
	t.Helper()
	signer, err := NewSigner(devKey, big.NewInt(31337))
	require.NoError(t, err)
	backend := &txBackend{callBackend: newCallBackend(t, erc20ABI)}
	backend.results["transfer"] = []any{true}
	backend.results["transferFrom"] = []any{true}
	tok, err := NewPaymentToken(common.HexToAddress("0x05dc"), backend, signer)
	require.NoError(t, err)
	return tok, backend
}

func TestTransferFromReturningFalseIsRejected(t *testing.T) {
	tok, backend := newTxToken(t)
	backend.results["transferFrom"] = []any{false}

	err := tok.TransferFrom(context.Background(), devAddress, common.HexToAddress("0xc0de"), big.NewInt(5))
	assert.ErrorIs(t, err, sentinel.ErrTransferRejected)
	assert.Empty(t, backend.sent, "nothing is broadcast")
	assert.Equal(t, devAddress, backend.lastFrom, "dry run executes as the signer")
}

func TestTransferDryRunRevertIsRejected(t *testing.T) {
	tok, backend := newTxToken(t)
	backend.errs["transfer"] = errors.New("execution reverted: ERC20: transfer amount exceeds balance")

	err := tok.Transfer(context.Background(), devAddress, big.NewInt(5))
	assert.ErrorIs(t, err, sentinel.ErrTransferRejected)
	assert.Empty(t, backend.sent)
}

func TestTransferConfirmed(t *testing.T) {
	tok, backend := newTxToken(t)
	backend.receipt = &types.Receipt{Status: types.ReceiptStatusSuccessful}

	require.NoError(t, tok.Transfer(context.Background(), devAddress, big.NewInt(5)))
	assert.Len(t, backend.sent, 1)
}

func TestTransferRevertedReceipt(t *testing.T) {
	tok, backend := newTxToken(t)
	backend.receipt = &types.Receipt{Status: types.ReceiptStatusFailed}

	err := tok.Transfer(context.Background(), devAddress, big.NewInt(5))
	assert.ErrorIs(t, err, sentinel.ErrTransferRejected)
}

func TestReceiptWaitOutlivesCallerContext(t *testing.T) {
	tok, backend := newTxToken(t)
	ctx, cancel := context.WithCancel(context.Background())
	backend.onSend = cancel
	backend.receipt = &types.Receipt{Status: types.ReceiptStatusSuccessful}

	require.NoError(t, tok.TransferFrom(ctx, devAddress, common.HexToAddress("0xc0de"), big.NewInt(5)))
}

func TestUnminedTransferIsUnconfirmed(t *testing.T) {
	prev := receiptTimeout
	receiptTimeout = 50 * time.Millisecond
	t.Cleanup(func() { receiptTimeout = prev })

	tok, backend := newTxToken(t)

	err := tok.TransferFrom(context.Background(), devAddress, common.HexToAddress("0xc0de"), big.NewInt(5))
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrUnconfirmed)
	assert.Contains(t, err.Error(), backend.sent[0].Hash().Hex())
}
