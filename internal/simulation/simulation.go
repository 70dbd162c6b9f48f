package simulation

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"welshStreet/internal/deployment"
	"welshStreet/internal/exchange"
)

// Wallet1 is the non-owner principal used by the access scenarios.
var Wallet1 = common.HexToAddress("0x2222222222222222222222222222222222222222")

// Outcome is the result of one scenario. Code is the error code the final
// step returned, 0 on success.
type Outcome struct {
	Name     string      `json:"name"`
	Expected uint32      `json:"expected"`
	Code     uint32      `json:"code"`
	Passed   bool        `json:"passed"`
	Error    string      `json:"error,omitempty"`
	Result   interface{} `json:"result,omitempty"`
}

type scenario struct {
	name     string
	expected uint32
	run      func(ctx context.Context, d *deployment.Deployment) (interface{}, error)
}

// LPPosition reports an LP holder's balance against total supply.
type LPPosition struct {
	Balance     uint64 `json:"balance"`
	TotalSupply uint64 `json:"total-supply"`
}

var scenarios = []scenario{
	{
		name: "deploy",
		run: func(ctx context.Context, d *deployment.Deployment) (interface{}, error) {
			if err := d.StreetMint(ctx, d.Owner(), 100_000_000_000_000); err != nil {
				return nil, err
			}
			return d.Street.BalanceOf(ctx, d.Owner())
		},
	},
	{
		name: "bootstrap",
		run: func(ctx context.Context, d *deployment.Deployment) (interface{}, error) {
			if err := seed(ctx, d, 1_000_000_000_000); err != nil {
				return nil, err
			}
			return d.Exchange.ExchangeInfo(), nil
		},
	},
	{
		name: "swap-a-b",
		run: func(ctx context.Context, d *deployment.Deployment) (interface{}, error) {
			if err := seed(ctx, d, 10_000_000_000_000); err != nil {
				return nil, err
			}
			return d.Exchange.SwapAForB(ctx, d.Owner(), 100_000_000_000)
		},
	},
	{
		name: "lp-position",
		run: func(ctx context.Context, d *deployment.Deployment) (interface{}, error) {
			if err := seed(ctx, d, 1_000_000_000_000); err != nil {
				return nil, err
			}
			balance, err := d.Exchange.LPBalance(ctx, d.Owner())
			if err != nil {
				return nil, err
			}
			supply, err := d.Exchange.LPTotalSupply(ctx)
			if err != nil {
				return nil, err
			}
			return LPPosition{Balance: balance, TotalSupply: supply}, nil
		},
	},
	{
		name:     "non-owner-bootstrap",
		expected: uint32(exchange.KindNotOwner),
		run: func(ctx context.Context, d *deployment.Deployment) (interface{}, error) {
			return d.Exchange.Bootstrap(ctx, Wallet1, 1_000, 1_000)
		},
	},
}

// Names lists the scenarios in run order.
func Names() []string {
	names := make([]string, 0, len(scenarios))
	for _, sc := range scenarios {
		names = append(names, sc.name)
	}
	return names
}

// Run plays each named scenario on its own fresh deployment. An empty names
// list runs all of them.
func Run(ctx context.Context, cfg deployment.Config, names []string, logger *zap.Logger) ([]Outcome, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	selected, err := selectScenarios(names)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(selected))
	for _, sc := range selected {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		d, err := deployment.New(ctx, cfg, logger)
		if err != nil {
			return outcomes, fmt.Errorf("scenario %s: %w", sc.name, err)
		}

		result, runErr := sc.run(ctx, d)
		outcome := Outcome{Name: sc.name, Expected: sc.expected, Code: exchange.Code(runErr)}
		if runErr != nil {
			outcome.Error = runErr.Error()
		} else {
			outcome.Result = result
		}
		outcome.Passed = outcome.Code == sc.expected && (runErr == nil) == (sc.expected == 0)

		logger.Info("scenario complete",
			zap.String("scenario", sc.name),
			zap.Bool("passed", outcome.Passed),
			zap.Uint32("code", outcome.Code),
		)
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// seed mints matching STREET and bootstraps the pool with amount of each token.
func seed(ctx context.Context, d *deployment.Deployment, amount uint64) error {
	if err := d.StreetMint(ctx, d.Owner(), amount); err != nil {
		return err
	}
	_, err := d.Exchange.Bootstrap(ctx, d.Owner(), amount, amount)
	return err
}

func selectScenarios(names []string) ([]scenario, error) {
	if len(names) == 0 {
		return scenarios, nil
	}
	byName := make(map[string]scenario, len(scenarios))
	for _, sc := range scenarios {
		byName[sc.name] = sc
	}
	out := make([]scenario, 0, len(names))
	for _, name := range names {
		sc, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q (have %s)", name, strings.Join(Names(), ", "))
		}
		out = append(out, sc)
	}
	return out, nil
}
