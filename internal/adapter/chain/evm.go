package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

var transferEventSignature = gethcrypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// EVMClient is the subset of the Ethereum RPC the provider uses.
type EVMClient interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*gethtypes.Header, error)
	BlockByNumber(ctx context.Context, number *big.Int) (*gethtypes.Block, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]gethtypes.Log, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

// DialEVM initialises an EVM RPC client for the provided endpoint.
func DialEVM(endpoint string) (*ethclient.Client, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, fmt.Errorf("evm endpoint required")
	}
	return ethclient.Dial(trimmed)
}

// EVMProvider reads native and ERC-20 transfers from an account-model chain.
type EVMProvider struct {
	client EVMClient
	signer gethtypes.Signer
}

func NewEVMProvider(client EVMClient, chainID int64) *EVMProvider {
	return &EVMProvider{
		client: client,
		signer: gethtypes.LatestSignerForChainID(big.NewInt(chainID)),
	}
}

func (p *EVMProvider) LatestHeight(ctx context.Context) (uint64, error) {
	header, err := p.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("fetch head: %w", err)
	}
	if header == nil || header.Number == nil {
		return 0, fmt.Errorf("head metadata unavailable")
	}
	return header.Number.Uint64(), nil
}

// BlockTransfers collects native-coin transfers from the block body and
// ERC-20 transfers from the block's Transfer logs.
func (p *EVMProvider) BlockTransfers(ctx context.Context, height uint64) ([]Transfer, error) {
	num := new(big.Int).SetUint64(height)

	block, err := p.client.BlockByNumber(ctx, num)
	if err != nil {
		return nil, fmt.Errorf("fetch block %d: %w", height, err)
	}
	ts := time.Unix(int64(block.Time()), 0).UTC()

	var out []Transfer
	for _, tx := range block.Transactions() {
		if tx.To() == nil || tx.Value() == nil || tx.Value().Sign() <= 0 {
			continue
		}
		from, err := gethtypes.Sender(p.signer, tx)
		if err != nil {
			// unsignable/foreign tx type; skip rather than fail the block
			continue
		}
		out = append(out, Transfer{
			From:      strings.ToLower(from.Hex()),
			To:        strings.ToLower(tx.To().Hex()),
			TxHash:    tx.Hash().Hex(),
			Amount:    tx.Value().String(),
			Timestamp: ts,
		})
	}

	logs, err := p.client.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: num,
		ToBlock:   num,
		Topics:    [][]common.Hash{{transferEventSignature}},
	})
	if err != nil {
		return nil, fmt.Errorf("filter logs %d: %w", height, err)
	}
	for _, lg := range logs {
		if len(lg.Topics) < 3 {
			continue
		}
		from := common.BytesToAddress(lg.Topics[1].Bytes())
		to := common.BytesToAddress(lg.Topics[2].Bytes())
		value := new(big.Int).SetBytes(lg.Data)
		out = append(out, Transfer{
			TokenID:   strings.ToLower(lg.Address.Hex()),
			From:      strings.ToLower(from.Hex()),
			To:        strings.ToLower(to.Hex()),
			TxHash:    lg.TxHash.Hex(),
			Amount:    value.String(),
			Timestamp: ts,
		})
	}
	return out, nil
}

func (p *EVMProvider) IsContractAddress(ctx context.Context, address string) (bool, error) {
	code, err := p.client.CodeAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return false, fmt.Errorf("fetch code: %w", err)
	}
	return len(code) > 0, nil
}
