// Package ethereum implements faucet.Disburser for Ethereum-compatible networks.
//
// Transactions are signed locally with the operator key and broadcast through a
// JSON-RPC node. Both native value transfers and ERC-20 token transfers are
// supported.
package ethereum

import (
	"context"
	"math/big"

	transporthttp "github.com/gabapcia/faucet/internal/pkg/transport/http"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// chainClient is the subset of the node API the disburser relies on.
// It is satisfied by *ethclient.Client and by the simulated backend client.
type chainClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

var _ chainClient = (*ethclient.Client)(nil)

// NewClient dials the node at rpcURL over the retrying HTTP transport.
//
// Failed requests are retried at the transport level. A retried
// eth_sendRawTransaction resubmits the same signed bytes, which the node
// answers with "already known"; Send treats that answer as success.
func NewClient(ctx context.Context, rpcURL string, opts ...transporthttp.Option) (*ethclient.Client, error) {
	httpClient := transporthttp.NewClient(opts...).StandardClient()

	conn, err := rpc.DialOptions(ctx, rpcURL, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}

	return ethclient.NewClient(conn), nil
}
