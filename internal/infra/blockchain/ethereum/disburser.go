package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/gabapcia/faucet/internal/faucet"
	"github.com/gabapcia/faucet/internal/pkg/logger"
	"github.com/gabapcia/faucet/internal/pkg/resilience/retry"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// erc20ABI holds the two token methods the faucet needs.
const erc20ABI = `[
	{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"payable":false,"stateMutability":"nonpayable","type":"function"},
	{"constant":true,"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"}
]`

var erc20 = mustParseABI(erc20ABI)

const defaultMaxNonceLead = 3

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("parsing erc20 abi: %v", err))
	}

	return parsed
}

// disburser signs and broadcasts transfers from the operator account.
//
// Sends are serialized: the operator key is shared by every claim, so nonces are
// assigned one at a time under mu.
type disburser struct {
	client  chainClient
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
	signer  types.Signer

	token        *common.Address
	gasLimit     uint64
	maxNonceLead uint64

	mu       sync.Mutex
	nonce    uint64
	nonceSet bool
}

var _ faucet.Disburser = (*disburser)(nil)

type config struct {
	token        *common.Address
	gasLimit     uint64
	maxNonceLead uint64
	retry        retry.Retry
}

type Option func(*config)

// WithToken switches the disburser to ERC-20 mode, sending token at the given
// contract address instead of the native currency.
func WithToken(address common.Address) Option {
	return func(c *config) {
		c.token = &address
	}
}

// WithGasLimit fixes the gas limit of every transaction instead of estimating it.
func WithGasLimit(gas uint64) Option {
	return func(c *config) {
		c.gasLimit = gas
	}
}

// WithMaxNonceLead bounds how far the locally tracked nonce may run ahead of
// the node's pending nonce. Past the bound the node's value is used again, so
// transactions dropped from the pool do not leave a permanent nonce gap.
// Default: 3.
func WithMaxNonceLead(n uint64) Option {
	return func(c *config) {
		c.maxNonceLead = n
	}
}

// WithRetry sets the retry policy used to fetch the chain ID at startup.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retry = r
	}
}

// NewDisburser parses the operator key ("0x" + 64 hex characters) and resolves
// the chain ID used for signing.
func NewDisburser(ctx context.Context, client chainClient, privateKeyHex string, opts ...Option) (*disburser, error) {
	cfg := config{
		maxNonceLead: defaultMaxNonceLead,
		retry:        retry.New(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPrivateKey, err)
	}

	var chainID *big.Int
	err = cfg.retry.Execute(ctx, func() (err error) {
		chainID, err = client.ChainID(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching chain id: %w", err)
	}

	return &disburser{
		client:   client,
		key:      key,
		from:     crypto.PubkeyToAddress(key.PublicKey),
		chainID:  chainID,
		signer:   types.LatestSignerForChainID(chainID),
		token:        cfg.token,
		gasLimit:     cfg.gasLimit,
		maxNonceLead: cfg.maxNonceLead,
	}, nil
}

// Address returns the operator account funding the claims.
func (d *disburser) Address() string {
	return d.from.Hex()
}

// Send builds, signs and broadcasts a transfer of amount base units to `to`.
//
// It returns the transaction hash once the node accepted it; inclusion in a
// block is not awaited. After a failed broadcast the next Send re-reads the
// pending nonce from the node.
func (d *disburser) Send(ctx context.Context, to string, amount *big.Int) (string, error) {
	if amount == nil || amount.Sign() <= 0 {
		return "", ErrInvalidAmount
	}
	if !common.IsHexAddress(to) {
		return "", fmt.Errorf("%w: invalid recipient %q", faucet.ErrTransactionRejected, to)
	}
	recipient := common.HexToAddress(to)

	d.mu.Lock()
	defer d.mu.Unlock()

	tx, err := d.buildTx(ctx, recipient, amount)
	if err != nil {
		return "", classify(err)
	}

	signed, err := types.SignTx(tx, d.signer, d.key)
	if err != nil {
		return "", err
	}

	if err := d.client.SendTransaction(ctx, signed); err != nil && !isAlreadyKnown(err) {
		d.nonceSet = false
		return "", classify(err)
	}

	d.nonce = signed.Nonce() + 1
	d.nonceSet = true

	logger.Debug(ctx, "transaction broadcast",
		"tx_hash", signed.Hash().Hex(),
		"nonce", signed.Nonce(),
		"gas", signed.Gas(),
		"gas_price", signed.GasPrice().String(),
	)

	return signed.Hash().Hex(), nil
}

// buildTx assembles the unsigned legacy transaction for the configured mode.
func (d *disburser) buildTx(ctx context.Context, recipient common.Address, amount *big.Int) (*types.Transaction, error) {
	nonce, err := d.nextNonce(ctx)
	if err != nil {
		return nil, err
	}

	gasPrice, err := d.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}

	txTo, value, data := recipient, amount, []byte(nil)
	if d.token != nil {
		tokens, err := d.tokenBalance(ctx)
		if err != nil {
			return nil, err
		}
		if tokens.Cmp(amount) < 0 {
			return nil, fmt.Errorf("%w: token balance %s, required %s", faucet.ErrInsufficientOperatorFunds, tokens, amount)
		}

		data, err = erc20.Pack("transfer", recipient, amount)
		if err != nil {
			return nil, err
		}
		txTo, value = *d.token, new(big.Int)
	}

	gas := d.gasLimit
	if gas == 0 {
		gas, err = d.client.EstimateGas(ctx, ethereum.CallMsg{
			From:     d.from,
			To:       &txTo,
			GasPrice: gasPrice,
			Value:    value,
			Data:     data,
		})
		if err != nil {
			return nil, err
		}
	}

	balance, err := d.client.BalanceAt(ctx, d.from, nil)
	if err != nil {
		return nil, err
	}

	cost := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(gas))
	cost.Add(cost, value)
	if balance.Cmp(cost) < 0 {
		return nil, fmt.Errorf("%w: balance %s, required %s", faucet.ErrInsufficientOperatorFunds, balance, cost)
	}

	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &txTo,
		Value:    value,
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     data,
	}), nil
}

// nextNonce returns the larger of the node's pending nonce and the locally
// tracked one, covering nodes that lag behind our own broadcasts. A local lead
// of maxNonceLead or more means the node lost our transactions; the pending
// nonce wins and local tracking restarts from it.
func (d *disburser) nextNonce(ctx context.Context) (uint64, error) {
	pending, err := d.client.PendingNonceAt(ctx, d.from)
	if err != nil {
		return 0, err
	}

	if !d.nonceSet || d.nonce <= pending {
		return pending, nil
	}

	if lead := d.nonce - pending; lead >= d.maxNonceLead {
		logger.Warn(ctx, "local nonce too far ahead of the node, resyncing",
			"local_nonce", d.nonce,
			"pending_nonce", pending,
		)
		d.nonceSet = false
		return pending, nil
	}

	return d.nonce, nil
}

// Balance reports the operator's balance of the disbursed asset: the native
// currency, or the token in ERC-20 mode.
func (d *disburser) Balance(ctx context.Context) (*big.Int, error) {
	if d.token == nil {
		return d.client.BalanceAt(ctx, d.from, nil)
	}

	return d.tokenBalance(ctx)
}

func (d *disburser) tokenBalance(ctx context.Context) (*big.Int, error) {
	data, err := erc20.Pack("balanceOf", d.from)
	if err != nil {
		return nil, err
	}

	out, err := d.client.CallContract(ctx, ethereum.CallMsg{From: d.from, To: d.token, Data: data}, nil)
	if err != nil {
		return nil, err
	}

	res, err := erc20.Unpack("balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("decoding token balance: %w", err)
	}

	return abi.ConvertType(res[0], new(big.Int)).(*big.Int), nil
}
