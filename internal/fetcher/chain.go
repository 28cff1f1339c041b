package fetcher

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	vaultABIJSON = `[{"inputs":[],"name":"asset","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"}]`
	erc20ABIJSON = `[{"inputs":[],"name":"decimals","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"},{"inputs":[],"name":"symbol","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"},{"inputs":[{"internalType":"address","name":"account","type":"address"}],"name":"balanceOf","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`
)

var (
	vaultABI abi.ABI
	erc20ABI abi.ABI
)

func init() {
	parsed, err := abi.JSON(strings.NewReader(vaultABIJSON))
	if err != nil {
		panic("failed to parse vault ABI: " + err.Error())
	}
	vaultABI = parsed

	parsed, err = abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		panic("failed to parse ERC-20 ABI: " + err.Error())
	}
	erc20ABI = parsed
}

// ChainOptions parameterise the on-chain fetcher.
type ChainOptions struct {
	RPCURL       string
	VaultAddress string
	Timeout      time.Duration
}

// Chain reads available liquidity via Ethereum RPC. Available liquidity is
// the underlying asset's balance held by the vault itself, not totalAssets:
// it reflects immediately withdrawable tokens rather than total accounted
// assets.
type Chain struct {
	opts      ChainOptions
	logger    zerolog.Logger
	client    *ethclient.Client
	clientMux sync.Mutex
}

// NewChain builds a new chain fetcher.
func NewChain(opts ChainOptions, logger zerolog.Logger) *Chain {
	return &Chain{opts: opts, logger: logger.With().Str("component", "chain_fetcher").Logger()}
}

// FetchLiquidity resolves the vault's underlying asset, its decimals and
// symbol, and the asset balance held by the vault. The asset descriptor is
// immutable for a given vault but is re-resolved every call so each cycle is
// self-contained.
func (c *Chain) FetchLiquidity(ctx context.Context) (Reading, error) {
	if c.opts.RPCURL == "" {
		return Reading{}, errors.New("ethereum rpc url not configured")
	}
	if c.opts.VaultAddress == "" {
		return Reading{}, errors.New("vault contract address not configured")
	}

	timeout := c.opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var cancel context.CancelFunc
	ctx, cancel = context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := c.getClient(ctx)
	if err != nil {
		return Reading{}, err
	}

	vault := common.HexToAddress(c.opts.VaultAddress)

	asset, err := c.resolveAsset(ctx, client, vault)
	if err != nil {
		return Reading{}, fmt.Errorf("resolve vault asset: %w", err)
	}

	decimals, err := c.assetDecimals(ctx, client, asset)
	if err != nil {
		return Reading{}, fmt.Errorf("fetch asset decimals: %w", err)
	}

	symbol, err := c.assetSymbol(ctx, client, asset)
	if err != nil {
		return Reading{}, fmt.Errorf("fetch asset symbol: %w", err)
	}

	raw, err := c.assetBalanceOf(ctx, client, asset, vault)
	if err != nil {
		return Reading{}, fmt.Errorf("fetch vault balance: %w", err)
	}

	return Reading{
		Raw:        raw,
		Value:      ScaleRaw(raw, decimals),
		Symbol:     symbol,
		Decimals:   decimals,
		Asset:      asset,
		ObservedAt: time.Now().UTC(),
	}, nil
}

// ScaleRaw converts a raw base-unit balance into display units.
func ScaleRaw(raw *big.Int, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(raw, -int32(decimals))
}

func (c *Chain) resolveAsset(ctx context.Context, client *ethclient.Client, vault common.Address) (common.Address, error) {
	outputs, err := c.call(ctx, client, vaultABI, vault, "asset")
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := outputs[0].(common.Address)
	if !ok {
		return common.Address{}, errors.New("failed to decode asset output")
	}
	return addr, nil
}

func (c *Chain) assetDecimals(ctx context.Context, client *ethclient.Client, asset common.Address) (uint8, error) {
	outputs, err := c.call(ctx, client, erc20ABI, asset, "decimals")
	if err != nil {
		return 0, err
	}
	decimals, ok := outputs[0].(uint8)
	if !ok {
		return 0, errors.New("failed to decode decimals output")
	}
	return decimals, nil
}

func (c *Chain) assetSymbol(ctx context.Context, client *ethclient.Client, asset common.Address) (string, error) {
	outputs, err := c.call(ctx, client, erc20ABI, asset, "symbol")
	if err != nil {
		return "", err
	}
	symbol, ok := outputs[0].(string)
	if !ok {
		return "", errors.New("failed to decode symbol output")
	}
	return symbol, nil
}

func (c *Chain) assetBalanceOf(ctx context.Context, client *ethclient.Client, asset, owner common.Address) (*big.Int, error) {
	outputs, err := c.call(ctx, client, erc20ABI, asset, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	balance, ok := outputs[0].(*big.Int)
	if !ok {
		return nil, errors.New("failed to decode balanceOf output")
	}
	return balance, nil
}

func (c *Chain) call(ctx context.Context, client *ethclient.Client, contractABI abi.ABI, to common.Address, method string, args ...interface{}) ([]interface{}, error) {
	payload, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, err
	}

	res, err := client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: payload}, nil)
	if err != nil {
		return nil, err
	}

	outputs, err := contractABI.Unpack(method, res)
	if err != nil {
		return nil, err
	}
	if len(outputs) != 1 {
		return nil, fmt.Errorf("unexpected %s response", method)
	}
	return outputs, nil
}

func (c *Chain) getClient(ctx context.Context) (*ethclient.Client, error) {
	c.clientMux.Lock()
	defer c.clientMux.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	client, err := ethclient.DialContext(ctx, c.opts.RPCURL)
	if err != nil {
		return nil, err
	}
	c.client = client
	return client, nil
}

var _ LiquidityFetcher = (*Chain)(nil)
