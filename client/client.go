package client

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"

	"github.com/Thirumurugan7/Web3-Lottery-app/config"
	"github.com/Thirumurugan7/Web3-Lottery-app/contracts"
)

var ErrTransactionReverted = errors.New("transaction reverted")

// Backend is the subset of an Ethereum RPC client the deployer uses.
// *ethclient.Client and the simulated backend both satisfy it.
type Backend interface {
	bind.DeployBackend
	ethereum.ChainIDReader
	ethereum.BlockNumberReader
	ethereum.GasPricer
	ethereum.GasEstimator
	ethereum.TransactionSender
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
}

// Client sends signed transactions and waits for confirmations
type Client struct {
	backend      Backend
	signer       *LocalSigner
	cfg          *config.Config
	logger       zerolog.Logger
	pollInterval time.Duration
	closer       func()
}

// New dials rpcURL and binds the deployer key to the node's chain id
func New(ctx context.Context, cfg *config.Config, rpcURL string, key *ecdsa.PrivateKey, logger zerolog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to node at %s: %w", rpcURL, err)
	}

	c, err := NewWithBackend(ctx, eth, cfg, key, logger)
	if err != nil {
		eth.Close()
		return nil, err
	}
	c.closer = eth.Close
	return c, nil
}

// NewWithBackend wraps an existing backend
func NewWithBackend(ctx context.Context, backend Backend, cfg *config.Config, key *ecdsa.PrivateKey, logger zerolog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.GasLimitBufferPercent < 0 {
		return nil, fmt.Errorf("gas limit buffer must not be negative, got %d%%", cfg.GasLimitBufferPercent)
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	signer, err := NewLocalSigner(key, chainID)
	if err != nil {
		return nil, err
	}

	return &Client{
		backend:      backend,
		signer:       signer,
		cfg:          cfg,
		logger:       logger,
		pollInterval: time.Second,
	}, nil
}

// Close closes the client connection
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// From is the address transactions are sent from
func (c *Client) From() common.Address {
	return c.signer.Address()
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	chainID, err := c.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	return chainID, nil
}

// Deploy creates artifact with the given constructor arguments.
func (c *Client) Deploy(ctx context.Context, artifact *contracts.Artifact, confirmations uint64, args ...interface{}) (*contracts.Deployment, error) {
	data, err := artifact.DeployData(args...)
	if err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("contract", artifact.ContractName).
		Str("from", c.From().Hex()).
		Int("args", len(args)).
		Msg("deploying contract")

	tx, receipt, err := c.send(ctx, nil, nil, data, confirmations)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy %s: %w", artifact.ContractName, err)
	}

	c.logger.Info().
		Str("contract", artifact.ContractName).
		Str("address", receipt.ContractAddress.Hex()).
		Str("tx", tx.Hash().Hex()).
		Uint64("gas_used", receipt.GasUsed).
		Msg("contract deployed")

	return &contracts.Deployment{
		Name:    artifact.ContractName,
		Address: receipt.ContractAddress,
		TxHash:  tx.Hash(),
		Receipt: receipt,
		Args:    args,
	}, nil
}

// Transact calls a state-changing method on to.
func (c *Client) Transact(ctx context.Context, to common.Address, contractABI abi.ABI, confirmations uint64, method string, args ...interface{}) (*types.Receipt, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s call: %w", method, err)
	}

	tx, receipt, err := c.send(ctx, &to, nil, data, confirmations)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("to", to.Hex()).
		Str("tx", tx.Hash().Hex()).
		Msg("transaction confirmed")
	return receipt, nil
}

// Transfer sends amount wei to an address.
func (c *Client) Transfer(ctx context.Context, to common.Address, amount *big.Int, confirmations uint64) (*types.Receipt, error) {
	tx, receipt, err := c.send(ctx, &to, amount, nil, confirmations)
	if err != nil {
		return nil, fmt.Errorf("failed to transfer to %s: %w", to.Hex(), err)
	}

	c.logger.Info().
		Str("to", to.Hex()).
		Str("amount", amount.String()).
		Str("tx", tx.Hash().Hex()).
		Msg("transfer confirmed")
	return receipt, nil
}

func (c *Client) send(ctx context.Context, to *common.Address, value *big.Int, data []byte, confirmations uint64) (*types.Transaction, *types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ContractTimeout)
	defer cancel()

	if value == nil {
		value = big.NewInt(0)
	}

	from := c.signer.Address()

	nonce, err := c.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	gasLimit, err := c.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  from,
		To:    to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to estimate gas: %w", err)
	}
	gasLimit = gasLimit * uint64(100+c.cfg.GasLimitBufferPercent) / 100

	var tx *types.Transaction
	if to == nil {
		tx = types.NewContractCreation(nonce, value, gasLimit, gasPrice, data)
	} else {
		tx = types.NewTransaction(nonce, *to, value, gasLimit, gasPrice, data)
	}

	signedTx, err := c.signer.SignTransaction(tx)
	if err != nil {
		return nil, nil, err
	}

	if err := c.backend.SendTransaction(ctx, signedTx); err != nil {
		return nil, nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, c.backend, signedTx)
	if err != nil {
		return signedTx, nil, fmt.Errorf("failed to wait for receipt of %s: %w", signedTx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return signedTx, receipt, fmt.Errorf("%w: %s", ErrTransactionReverted, signedTx.Hash().Hex())
	}

	if err := c.waitConfirmations(ctx, receipt, confirmations); err != nil {
		return signedTx, receipt, err
	}
	return signedTx, receipt, nil
}

// waitConfirmations blocks until the receipt's block is buried under
// confirmations-1 further blocks.
func (c *Client) waitConfirmations(ctx context.Context, receipt *types.Receipt, confirmations uint64) error {
	if confirmations <= 1 {
		return nil
	}
	target := receipt.BlockNumber.Uint64() + confirmations - 1

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		head, err := c.backend.BlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("failed to get block number: %w", err)
		}
		if head >= target {
			return nil
		}
		c.logger.Debug().
			Uint64("head", head).
			Uint64("target", target).
			Msg("waiting for confirmations")

		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for %d confirmations: %w", confirmations, ctx.Err())
		case <-ticker.C:
		}
	}
}
