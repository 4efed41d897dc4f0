package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const erc20ABIJSON = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"}
]`

var erc20ABI = mustParseABI(erc20ABIJSON)

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(fmt.Sprintf("invalid ABI: %v", err))
	}
	return parsed
}

// callERC20 runs a read-only call of method on token and unpacks the single result.
func (b *Backend) callERC20(ctx context.Context, token common.Address, method string, args ...interface{}) (interface{}, error) {
	data, err := erc20ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	out, err := b.node.CallContract(ctx, geth.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, nodeError("eth_call "+method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("token %s returned no data for %s", token.Hex(), method)
	}

	values, err := erc20ABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("unexpected %s result length %d", method, len(values))
	}
	return values[0], nil
}

func (b *Backend) tokenDecimals(ctx context.Context, token common.Address) (int32, error) {
	if cached, ok := b.decimals.Load(token); ok {
		return cached.(int32), nil
	}

	v, err := b.callERC20(ctx, token, "decimals")
	if err != nil {
		return 0, err
	}
	d, ok := v.(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected decimals type %T", v)
	}

	b.decimals.Store(token, int32(d))
	return int32(d), nil
}

func (b *Backend) tokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	v, err := b.callERC20(ctx, token, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	balance, ok := v.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balance type %T", v)
	}
	return balance, nil
}
