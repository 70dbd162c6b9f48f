package journal

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"welshStreet/internal/model"
)

// Decoder decodes journal records back into typed events.
type Decoder struct {
	exchangeABI abi.ABI
	tokenABI    abi.ABI
	meta        model.ExchangeMeta
	topicToName map[string]string
	nameToTopic map[string]string
}

// NewDecoder builds a decoder. meta is attached to every decoded event and
// resolves token symbols for Transfer events.
func NewDecoder(meta model.ExchangeMeta) (*Decoder, error) {
	exABI, err := ExchangeABI()
	if err != nil {
		return nil, err
	}
	tkABI, err := TokenABI()
	if err != nil {
		return nil, err
	}

	topicToName := make(map[string]string)
	nameToTopic := make(map[string]string)
	for _, parsed := range []abi.ABI{exABI, tkABI} {
		for name, event := range parsed.Events {
			topic := strings.ToLower(event.ID.Hex())
			topicToName[topic] = name
			nameToTopic[strings.ToLower(name)] = topic
		}
	}

	return &Decoder{
		exchangeABI: exABI,
		tokenABI:    tkABI,
		meta:        meta,
		topicToName: topicToName,
		nameToTopic: nameToTopic,
	}, nil
}

// CanDecode checks if the topic0 is supported.
func (d *Decoder) CanDecode(topic0 string) bool {
	if topic0 == "" {
		return false
	}
	_, ok := d.topicToName[strings.ToLower(topic0)]
	return ok
}

// TopicFor returns the topic0 hash of an event name, case-insensitively.
func (d *Decoder) TopicFor(name string) (string, bool) {
	topic, ok := d.nameToTopic[strings.ToLower(strings.TrimSpace(name))]
	return topic, ok
}

// Decode converts a LogRecord into a TypedEvent.
func (d *Decoder) Decode(log model.LogRecord) (*model.TypedEvent, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("missing topics")
	}
	name, ok := d.topicToName[strings.ToLower(log.Topics[0])]
	if !ok {
		return nil, fmt.Errorf("unsupported topic0: %s", log.Topics[0])
	}
	if !common.IsHexAddress(log.Address) {
		return nil, fmt.Errorf("invalid address: %s", log.Address)
	}

	var (
		decoded interface{}
		err     error
	)
	switch name {
	case "Bootstrap":
		decoded, err = d.decodeBootstrap(log)
	case "Swap":
		decoded, err = d.decodeSwap(log)
	case "Liquidity":
		decoded, err = d.decodeLiquidity(log)
	case "FeeUpdated":
		decoded, err = d.decodeFeeUpdated(log)
	case "Transfer":
		decoded, err = d.decodeTransfer(log)
	default:
		return nil, fmt.Errorf("unsupported event name: %s", name)
	}
	if err != nil {
		return nil, err
	}
	return d.buildTypedEvent(log, name, decoded), nil
}

func (d *Decoder) buildTypedEvent(log model.LogRecord, name string, decoded interface{}) *model.TypedEvent {
	return &model.TypedEvent{
		Sequence:  log.Sequence,
		TxHash:    log.TxHash,
		LogIndex:  log.LogIndex,
		Address:   log.Address,
		EventName: name,
		Timestamp: log.Timestamp,
		Decoded:   decoded,
		Meta:      d.meta,
		Raw:       &model.RawLogRef{Topic0: log.Topics[0], Data: log.Data},
	}
}

func (d *Decoder) decodeBootstrap(log model.LogRecord) (model.BootstrapEventData, error) {
	event := d.exchangeABI.Events["Bootstrap"]
	var indexed struct {
		Owner common.Address
	}
	if err := parseIndexed(&indexed, event, log.Topics); err != nil {
		return model.BootstrapEventData{}, err
	}
	ints, err := unpackInts(event, log.Data, 3)
	if err != nil {
		return model.BootstrapEventData{}, err
	}
	return model.BootstrapEventData{
		Owner:    indexed.Owner.Hex(),
		AmountA:  ints[0].String(),
		AmountB:  ints[1].String(),
		MintedLP: ints[2].String(),
	}, nil
}

func (d *Decoder) decodeSwap(log model.LogRecord) (model.SwapEventData, error) {
	event := d.exchangeABI.Events["Swap"]
	var indexed struct {
		Caller common.Address
	}
	if err := parseIndexed(&indexed, event, log.Topics); err != nil {
		return model.SwapEventData{}, err
	}
	ints, err := unpackInts(event, log.Data, 8)
	if err != nil {
		return model.SwapEventData{}, err
	}
	direction, err := asUint8(ints[0])
	if err != nil {
		return model.SwapEventData{}, err
	}
	return model.SwapEventData{
		Caller:    indexed.Caller.Hex(),
		Direction: model.Direction(direction).String(),
		AmountIn:  ints[1].String(),
		AmountOut: ints[2].String(),
		Fee:       ints[3].String(),
		Tax:       ints[4].String(),
		Revenue:   ints[5].String(),
		ReserveA:  ints[6].String(),
		ReserveB:  ints[7].String(),
	}, nil
}

func (d *Decoder) decodeLiquidity(log model.LogRecord) (model.LiquidityEventData, error) {
	event := d.exchangeABI.Events["Liquidity"]
	var indexed struct {
		Provider common.Address
	}
	if err := parseIndexed(&indexed, event, log.Topics); err != nil {
		return model.LiquidityEventData{}, err
	}
	ints, err := unpackInts(event, log.Data, 4)
	if err != nil {
		return model.LiquidityEventData{}, err
	}
	action, err := asUint8(ints[0])
	if err != nil {
		return model.LiquidityEventData{}, err
	}
	return model.LiquidityEventData{
		Provider: indexed.Provider.Hex(),
		Action:   LiquidityAction(action).String(),
		AmountA:  ints[1].String(),
		AmountB:  ints[2].String(),
		LPAmount: ints[3].String(),
	}, nil
}

func (d *Decoder) decodeFeeUpdated(log model.LogRecord) (model.FeeUpdatedEventData, error) {
	event := d.exchangeABI.Events["FeeUpdated"]
	var indexed struct {
		Owner common.Address
	}
	if err := parseIndexed(&indexed, event, log.Topics); err != nil {
		return model.FeeUpdatedEventData{}, err
	}
	ints, err := unpackInts(event, log.Data, 2)
	if err != nil {
		return model.FeeUpdatedEventData{}, err
	}
	if !ints[0].IsUint64() || !ints[1].IsUint64() {
		return model.FeeUpdatedEventData{}, fmt.Errorf("fee out of range")
	}
	return model.FeeUpdatedEventData{
		Owner:       indexed.Owner.Hex(),
		FeeBps:      ints[0].Uint64(),
		TaxShareBps: ints[1].Uint64(),
	}, nil
}

func (d *Decoder) decodeTransfer(log model.LogRecord) (model.TransferEventData, error) {
	event := d.tokenABI.Events["Transfer"]
	var indexed struct {
		From common.Address
		To   common.Address
	}
	if err := parseIndexed(&indexed, event, log.Topics); err != nil {
		return model.TransferEventData{}, err
	}
	ints, err := unpackInts(event, log.Data, 1)
	if err != nil {
		return model.TransferEventData{}, err
	}
	return model.TransferEventData{
		Token: d.tokenSymbol(log.Address),
		From:  indexed.From.Hex(),
		To:    indexed.To.Hex(),
		Value: ints[0].String(),
	}, nil
}

func (d *Decoder) tokenSymbol(address string) string {
	for _, token := range []model.TokenMeta{d.meta.TokenA, d.meta.TokenB, d.meta.Credit} {
		if token.Address != "" && strings.EqualFold(token.Address, address) {
			return token.Symbol
		}
	}
	return address
}

func parseIndexed(out interface{}, event abi.Event, topics []string) error {
	args := indexedArguments(event.Inputs)
	if len(topics) != len(args)+1 {
		return fmt.Errorf("expected %d topics, got %d", len(args)+1, len(topics))
	}
	hashes, err := parseTopicHashes(topics[1:])
	if err != nil {
		return err
	}
	if err := abi.ParseTopics(out, args, hashes); err != nil {
		return fmt.Errorf("parse topics: %w", err)
	}
	return nil
}

func parseTopicHashes(topics []string) ([]common.Hash, error) {
	out := make([]common.Hash, 0, len(topics))
	for _, topic := range topics {
		data, err := hexutil.Decode(topic)
		if err != nil {
			return nil, fmt.Errorf("invalid topic: %w", err)
		}
		if len(data) > 32 {
			return nil, fmt.Errorf("topic length %d", len(data))
		}
		out = append(out, common.BytesToHash(data))
	}
	return out, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

// unpackInts unpacks the non-indexed data of event and converts every value
// to a big integer. want is the expected value count.
func unpackInts(event abi.Event, dataHex string, want int) ([]*big.Int, error) {
	data, err := hexutil.Decode(dataHex)
	if err != nil {
		return nil, fmt.Errorf("invalid data: %w", err)
	}
	values, err := event.Inputs.NonIndexed().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", event.Name, err)
	}
	if len(values) != want {
		return nil, fmt.Errorf("unexpected %s values: %d", strings.ToLower(event.Name), len(values))
	}
	out := make([]*big.Int, 0, len(values))
	for _, value := range values {
		n, err := asBigInt(value)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asUint8(value *big.Int) (uint8, error) {
	if value == nil || value.Sign() < 0 || value.BitLen() > 8 {
		return 0, fmt.Errorf("uint8 overflow: %v", value)
	}
	return uint8(value.Uint64()), nil
}
