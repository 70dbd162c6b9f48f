package main

import (
	"context"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"welshStreet/internal/config"
	"welshStreet/internal/model"
	"welshStreet/internal/stats"
)

// query runs a read-only fn inside a session and prints its result.
func query(cmd *cobra.Command, fn func(ctx context.Context, s *session) (interface{}, error)) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := fn(ctx, s)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

type humanInfo struct {
	ReserveA string `json:"reserve-a"`
	ReserveB string `json:"reserve-b"`
	AvailA   string `json:"avail-a"`
	AvailB   string `json:"avail-b"`
	LockedA  string `json:"locked-a"`
	LockedB  string `json:"locked-b"`
	Fee      string `json:"fee"`
	Tax      string `json:"tax"`
	Revenue  string `json:"revenue"`
	Price    string `json:"price,omitempty"`
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the exchange reserves and fee state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			human, _ := cmd.Flags().GetBool("human")
			return query(cmd, func(_ context.Context, s *session) (interface{}, error) {
				info := s.ex().ExchangeInfo()
				if !human {
					return info, nil
				}
				return toHumanInfo(info, s.deployment.Meta()), nil
			})
		},
	}
	cmd.Flags().Bool("human", false, "render amounts with token decimals")
	return cmd
}

func toHumanInfo(info model.ExchangeInfo, meta model.ExchangeMeta) humanInfo {
	decA, decB := meta.TokenA.Decimals, meta.TokenB.Decimals
	return humanInfo{
		ReserveA: stats.FormatUint(info.ReserveA, decA),
		ReserveB: stats.FormatUint(info.ReserveB, decB),
		AvailA:   stats.FormatUint(info.AvailA, decA),
		AvailB:   stats.FormatUint(info.AvailB, decB),
		LockedA:  stats.FormatUint(info.LockedA, decA),
		LockedB:  stats.FormatUint(info.LockedB, decB),
		Fee:      stats.FormatBps(info.Fee),
		Tax:      stats.FormatUint(info.Tax, decA),
		Revenue:  stats.FormatUint(info.Revenue, decA),
		Price: stats.SpotPrice(
			new(big.Int).SetUint64(info.AvailA),
			new(big.Int).SetUint64(info.AvailB),
			decA, decB,
		),
	}
}

type tokenBalance struct {
	Token     string `json:"token"`
	Principal string `json:"principal"`
	Balance   uint64 `json:"balance"`
}

func newBalanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show a principal's token balance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			symbol, _ := cmd.Flags().GetString("token")
			rawPrincipal, _ := cmd.Flags().GetString("principal")
			return query(cmd, func(ctx context.Context, s *session) (interface{}, error) {
				token, err := s.deployment.Token(symbol)
				if err != nil {
					return nil, err
				}
				principal, err := s.cfg.CallerAddress()
				if rawPrincipal != "" {
					principal, err = config.ParseAddress(rawPrincipal)
				}
				if err != nil {
					return nil, err
				}
				balance, err := token.BalanceOf(ctx, principal)
				if err != nil {
					return nil, err
				}
				return tokenBalance{Token: token.Metadata().Symbol, Principal: principal.Hex(), Balance: balance}, nil
			})
		},
	}
	cmd.Flags().String("token", "CREDIT", "token symbol (WELSH, STREET, CREDIT)")
	cmd.Flags().String("principal", "", "principal to query, defaults to the caller")
	return cmd
}

type tokenSupply struct {
	Token       string `json:"token"`
	TotalSupply uint64 `json:"total-supply"`
}

func newSupplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "supply",
		Short: "Show a token's total supply",
		RunE: func(cmd *cobra.Command, _ []string) error {
			symbol, _ := cmd.Flags().GetString("token")
			return query(cmd, func(ctx context.Context, s *session) (interface{}, error) {
				token, err := s.deployment.Token(symbol)
				if err != nil {
					return nil, err
				}
				supply, err := token.TotalSupply(ctx)
				if err != nil {
					return nil, err
				}
				return tokenSupply{Token: token.Metadata().Symbol, TotalSupply: supply}, nil
			})
		},
	}
	cmd.Flags().String("token", "CREDIT", "token symbol (WELSH, STREET, CREDIT)")
	return cmd
}
