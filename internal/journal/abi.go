package journal

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const exchangeABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "owner", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amountA", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amountB", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "mintedLp", "type": "uint256"}
    ],
    "name": "Bootstrap",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "caller", "type": "address"},
      {"indexed": false, "internalType": "uint8", "name": "direction", "type": "uint8"},
      {"indexed": false, "internalType": "uint256", "name": "amountIn", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amountOut", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "fee", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "tax", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "revenue", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "reserveA", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "reserveB", "type": "uint256"}
    ],
    "name": "Swap",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "provider", "type": "address"},
      {"indexed": false, "internalType": "uint8", "name": "action", "type": "uint8"},
      {"indexed": false, "internalType": "uint256", "name": "amountA", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amountB", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "lpAmount", "type": "uint256"}
    ],
    "name": "Liquidity",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "owner", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "feeBps", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "taxShareBps", "type": "uint256"}
    ],
    "name": "FeeUpdated",
    "type": "event"
  }
]`

const tokenABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "from", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "to", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "value", "type": "uint256"}
    ],
    "name": "Transfer",
    "type": "event"
  }
]`

var (
	exchangeABI     abi.ABI
	exchangeABIOnce sync.Once
	exchangeABIErr  error
	tokenABI        abi.ABI
	tokenABIOnce    sync.Once
	tokenABIErr     error
)

// ExchangeABI returns the parsed exchange event ABI.
func ExchangeABI() (abi.ABI, error) {
	exchangeABIOnce.Do(func() {
		exchangeABI, exchangeABIErr = abi.JSON(strings.NewReader(exchangeABIJSON))
	})
	return exchangeABI, exchangeABIErr
}

// TokenABI returns the parsed token event ABI.
func TokenABI() (abi.ABI, error) {
	tokenABIOnce.Do(func() {
		tokenABI, tokenABIErr = abi.JSON(strings.NewReader(tokenABIJSON))
	})
	return tokenABI, tokenABIErr
}

// LiquidityAction distinguishes the Liquidity event variants.
type LiquidityAction uint8

const (
	ActionProvide LiquidityAction = iota
	ActionRemove
	ActionLock
)

func (a LiquidityAction) String() string {
	switch a {
	case ActionProvide:
		return "provide"
	case ActionRemove:
		return "remove"
	case ActionLock:
		return "lock"
	default:
		return "unknown"
	}
}
