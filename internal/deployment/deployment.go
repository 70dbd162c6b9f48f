package deployment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"welshStreet/internal/exchange"
	"welshStreet/internal/ledger"
	"welshStreet/internal/model"
)

const (
	SymbolWelsh  = "WELSH"
	SymbolStreet = "STREET"
	SymbolCredit = "CREDIT"
)

// ErrCustodyPrincipal rejects direct ledger transfers touching the exchange
// custody principal. Custody balances move only through exchange operations.
var ErrCustodyPrincipal = errors.New("custody principal cannot transfer directly")

// Config holds genesis settings of a deployment.
type Config struct {
	Owner       common.Address
	FeeBps      uint64
	TaxShareBps uint64
	WelshSupply uint64
	Decimals    uint8
}

// Deployment wires the three token ledgers to one exchange.
type Deployment struct {
	Welsh    *ledger.Token
	Street   *ledger.Token
	Credit   *ledger.Token
	Exchange *exchange.Exchange

	owner  common.Address
	logger *zap.Logger
}

// New deploys the tokens and the exchange. The genesis WELSH supply goes to
// the owner, STREET starts empty and is minted by its owner, and CREDIT is
// minted only by the exchange.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Deployment, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Owner == (common.Address{}) {
		return nil, fmt.Errorf("deployment owner is required")
	}

	custody := exchange.CustodyAddress(cfg.Owner)
	d := &Deployment{
		Welsh:  ledger.NewToken(ledger.Metadata{Name: "Welshcorgicoin", Symbol: SymbolWelsh, Decimals: cfg.Decimals}, cfg.Owner),
		Street: ledger.NewToken(ledger.Metadata{Name: "Street", Symbol: SymbolStreet, Decimals: cfg.Decimals}, cfg.Owner),
		Credit: ledger.NewToken(ledger.Metadata{Name: "Credit", Symbol: SymbolCredit, Decimals: cfg.Decimals}, custody),
		owner:  cfg.Owner,
		logger: logger,
	}

	ex, err := exchange.New(exchange.Config{
		Owner:       cfg.Owner,
		FeeBps:      cfg.FeeBps,
		TaxShareBps: cfg.TaxShareBps,
	}, exchange.Ledgers{A: d.Welsh, B: d.Street, LP: d.Credit}, logger.Named("exchange"))
	if err != nil {
		return nil, fmt.Errorf("deploy exchange: %w", err)
	}
	d.Exchange = ex

	if cfg.WelshSupply > 0 {
		if err := d.Welsh.Mint(ctx, cfg.Owner, cfg.WelshSupply); err != nil {
			return nil, fmt.Errorf("genesis mint: %w", err)
		}
	}

	logger.Debug("deployment ready",
		zap.String("owner", cfg.Owner.Hex()),
		zap.String("exchange", ex.Address().Hex()),
		zap.Uint64("welsh_supply", cfg.WelshSupply),
	)
	return d, nil
}

// TokenAddress derives the contract principal of a token symbol.
func TokenAddress(symbol string) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte("token"), []byte(strings.ToUpper(symbol)))[12:])
}

// Owner returns the deployer.
func (d *Deployment) Owner() common.Address {
	return d.owner
}

// Token resolves a token ledger by symbol, case-insensitively. "lp" is an
// alias of CREDIT.
func (d *Deployment) Token(symbol string) (*ledger.Token, error) {
	switch strings.ToUpper(strings.TrimSpace(symbol)) {
	case SymbolWelsh, "A":
		return d.Welsh, nil
	case SymbolStreet, "B":
		return d.Street, nil
	case SymbolCredit, "LP":
		return d.Credit, nil
	default:
		return nil, fmt.Errorf("unknown token %q", symbol)
	}
}

// Meta describes the deployment for journal decoding and reporting.
func (d *Deployment) Meta() model.ExchangeMeta {
	return model.ExchangeMeta{
		TokenA: tokenMeta(d.Welsh),
		TokenB: tokenMeta(d.Street),
		Credit: tokenMeta(d.Credit),
	}
}

func tokenMeta(t *ledger.Token) model.TokenMeta {
	meta := t.Metadata()
	return model.TokenMeta{
		Address:  TokenAddress(meta.Symbol).Hex(),
		Decimals: meta.Decimals,
		Symbol:   meta.Symbol,
		Name:     meta.Name,
	}
}

// StreetMint mints STREET to the caller. Only the STREET owner may mint.
func (d *Deployment) StreetMint(ctx context.Context, caller common.Address, amount uint64) error {
	return d.Street.OwnerMint(ctx, caller, amount)
}

// Transfer moves amount of the token named by symbol from one principal to
// another. Transfers out of or into exchange custody are rejected so the
// reserves always equal what custody holds.
func (d *Deployment) Transfer(ctx context.Context, symbol string, from, to common.Address, amount uint64) error {
	token, err := d.Token(symbol)
	if err != nil {
		return err
	}
	custody := d.Exchange.Address()
	if from == custody || to == custody {
		d.logger.Warn("custody transfer rejected",
			zap.String("token", token.Metadata().Symbol),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
		return ErrCustodyPrincipal
	}
	return token.Transfer(ctx, from, to, amount)
}

// Snapshot captures every ledger and the pool under sequence seq.
func (d *Deployment) Snapshot(seq uint64) model.DeploymentSnapshot {
	return model.DeploymentSnapshot{
		Sequence: seq,
		TokenA:   d.Welsh.Snapshot(),
		TokenB:   d.Street.Snapshot(),
		Credit:   d.Credit.Snapshot(),
		Pool:     d.Exchange.Pool().Snapshot(),
	}
}

// Restore loads a snapshot into the deployment. Tokens are restored before
// the pool so the pool invariants are checked against the restored LP supply;
// on failure the previous balances are put back.
func (d *Deployment) Restore(ctx context.Context, snap model.DeploymentSnapshot) error {
	pairs := []struct {
		token *ledger.Token
		snap  model.TokenSnapshot
	}{
		{d.Welsh, snap.TokenA},
		{d.Street, snap.TokenB},
		{d.Credit, snap.Credit},
	}
	for _, pair := range pairs {
		want := pair.token.Metadata().Symbol
		if !strings.EqualFold(pair.snap.Symbol, want) {
			return fmt.Errorf("restore: snapshot token %q does not match %s", pair.snap.Symbol, want)
		}
		if !strings.EqualFold(pair.snap.Owner, pair.token.Owner().Hex()) {
			return fmt.Errorf("restore %s: owner mismatch %s", want, pair.snap.Owner)
		}
	}
	pool, err := exchange.PoolFromSnapshot(snap.Pool)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	previous := make([]model.TokenSnapshot, len(pairs))
	for i, pair := range pairs {
		previous[i] = pair.token.Snapshot()
	}
	undo := func() {
		for i, pair := range pairs {
			if err := pair.token.Restore(previous[i]); err != nil {
				d.logger.Error("undo token restore", zap.String("token", previous[i].Symbol), zap.Error(err))
			}
		}
	}

	for _, pair := range pairs {
		if err := pair.token.Restore(pair.snap); err != nil {
			undo()
			return err
		}
	}
	if err := d.Exchange.Restore(ctx, pool); err != nil {
		undo()
		return err
	}
	d.logger.Debug("deployment restored", zap.Uint64("sequence", snap.Sequence))
	return nil
}
