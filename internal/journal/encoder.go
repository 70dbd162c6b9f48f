package journal

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"welshStreet/internal/model"
)

// Encoder turns engine receipts into journal log records. Sequence numbers
// increase by one per record.
type Encoder struct {
	exchangeABI abi.ABI
	tokenABI    abi.ABI
	exchange    common.Address
	now         func() time.Time

	mu  sync.Mutex
	seq uint64
}

// NewEncoder builds an encoder for the exchange at address. lastSequence is
// the highest sequence already journaled.
func NewEncoder(address common.Address, lastSequence uint64) (*Encoder, error) {
	exABI, err := ExchangeABI()
	if err != nil {
		return nil, err
	}
	tkABI, err := TokenABI()
	if err != nil {
		return nil, err
	}
	return &Encoder{
		exchangeABI: exABI,
		tokenABI:    tkABI,
		exchange:    address,
		now:         time.Now,
		seq:         lastSequence,
	}, nil
}

// Sequence returns the last assigned sequence number.
func (e *Encoder) Sequence() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seq
}

func (e *Encoder) Bootstrap(owner common.Address, r model.BootstrapReceipt) (model.LogRecord, error) {
	return e.encode(e.exchangeABI.Events["Bootstrap"], e.exchange,
		[]common.Address{owner},
		u256(r.AddedA), u256(r.AddedB), u256(r.MintedLP))
}

func (e *Encoder) Swap(caller common.Address, r model.SwapReceipt) (model.LogRecord, error) {
	return e.encode(e.exchangeABI.Events["Swap"], e.exchange,
		[]common.Address{caller},
		uint8(r.Direction), u256(r.AmountIn), u256(r.AmountOut),
		u256(r.Fee), u256(r.Tax), u256(r.Revenue),
		u256(r.ResANew), u256(r.ResBNew))
}

func (e *Encoder) Liquidity(provider common.Address, action LiquidityAction, r model.LiquidityReceipt) (model.LogRecord, error) {
	lp := r.MintedLP
	if action == ActionRemove {
		lp = r.BurnedLP
	}
	return e.encode(e.exchangeABI.Events["Liquidity"], e.exchange,
		[]common.Address{provider},
		uint8(action), u256(r.AmountA), u256(r.AmountB), u256(lp))
}

func (e *Encoder) FeeUpdated(owner common.Address, feeBps, taxShareBps uint64) (model.LogRecord, error) {
	return e.encode(e.exchangeABI.Events["FeeUpdated"], e.exchange,
		[]common.Address{owner},
		u256(feeBps), u256(taxShareBps))
}

// Transfer journals a token movement on the token ledger at token. Mints use
// the zero address as from.
func (e *Encoder) Transfer(token, from, to common.Address, value uint64) (model.LogRecord, error) {
	return e.encode(e.tokenABI.Events["Transfer"], token,
		[]common.Address{from, to},
		u256(value))
}

func (e *Encoder) encode(event abi.Event, address common.Address, indexed []common.Address, values ...interface{}) (model.LogRecord, error) {
	if event.Name == "" {
		return model.LogRecord{}, fmt.Errorf("event not found in abi")
	}
	data, err := event.Inputs.NonIndexed().Pack(values...)
	if err != nil {
		return model.LogRecord{}, fmt.Errorf("pack %s: %w", event.Name, err)
	}

	topics := make([]string, 0, len(indexed)+1)
	topics = append(topics, event.ID.Hex())
	for _, addr := range indexed {
		topics = append(topics, common.BytesToHash(addr.Bytes()).Hex())
	}

	e.mu.Lock()
	e.seq++
	seq := e.seq
	e.mu.Unlock()

	now := e.now().UTC()
	return model.LogRecord{
		Sequence:   seq,
		TxHash:     txHash(address, seq, event.ID).Hex(),
		Address:    address.Hex(),
		Topics:     topics,
		Data:       hexutil.Encode(data),
		Timestamp:  uint64(now.Unix()),
		RecordedAt: now.Format(time.RFC3339Nano),
	}, nil
}

func txHash(address common.Address, seq uint64, topic0 common.Hash) common.Hash {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seq)
	return crypto.Keccak256Hash(address.Bytes(), buf[:], topic0.Bytes())
}

func u256(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}
