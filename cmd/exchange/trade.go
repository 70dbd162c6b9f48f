package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"welshStreet/internal/config"
	"welshStreet/internal/deployment"
	"welshStreet/internal/journal"
	"welshStreet/internal/model"
)

// mutation runs fn inside a session and prints its result. fn returns the
// result to print and the journal records to commit.
func mutation(cmd *cobra.Command, op string, fn func(ctx context.Context, s *session, caller common.Address) (interface{}, []model.LogRecord, error)) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	caller, err := s.caller()
	if err != nil {
		return fmt.Errorf("caller: %w", err)
	}

	result, records, err := fn(ctx, s, caller)
	if err != nil {
		return s.rejected(op, err)
	}
	if err := s.commit(ctx, records...); err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func newBootstrapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Provide the initial liquidity (owner only, once)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			amountA, _ := cmd.Flags().GetUint64("amount-a")
			amountB, _ := cmd.Flags().GetUint64("amount-b")
			return mutation(cmd, "bootstrap", func(ctx context.Context, s *session, caller common.Address) (interface{}, []model.LogRecord, error) {
				receipt, err := s.ex().Bootstrap(ctx, caller, amountA, amountB)
				if err != nil {
					return nil, nil, err
				}
				record, err := s.encoder.Bootstrap(caller, receipt)
				if err != nil {
					return nil, nil, err
				}
				return receipt, []model.LogRecord{record}, nil
			})
		},
	}
	cmd.Flags().Uint64("amount-a", 0, "WELSH to deposit")
	cmd.Flags().Uint64("amount-b", 0, "STREET to deposit")
	return cmd
}

func newSwapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Swap WELSH for STREET (a-b) or STREET for WELSH (b-a)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rawDir, _ := cmd.Flags().GetString("direction")
			amount, _ := cmd.Flags().GetUint64("amount")
			dir, err := model.ParseDirection(rawDir)
			if err != nil {
				return err
			}
			return mutation(cmd, "swap-"+dir.String(), func(ctx context.Context, s *session, caller common.Address) (interface{}, []model.LogRecord, error) {
				var (
					receipt model.SwapReceipt
					err     error
				)
				if dir == model.DirectionBToA {
					receipt, err = s.ex().SwapBForA(ctx, caller, amount)
				} else {
					receipt, err = s.ex().SwapAForB(ctx, caller, amount)
				}
				if err != nil {
					return nil, nil, err
				}
				record, err := s.encoder.Swap(caller, receipt)
				if err != nil {
					return nil, nil, err
				}
				return receipt, []model.LogRecord{record}, nil
			})
		},
	}
	cmd.Flags().String("direction", "a-b", "swap direction (a-b, b-a)")
	cmd.Flags().Uint64("amount", 0, "input amount")
	return cmd
}

func newProvideLiquidityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provide-liquidity",
		Short: "Deposit WELSH and the matching STREET for LP credit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			amount, _ := cmd.Flags().GetUint64("amount-a")
			return mutation(cmd, "provide-liquidity", func(ctx context.Context, s *session, caller common.Address) (interface{}, []model.LogRecord, error) {
				receipt, err := s.ex().ProvideLiquidity(ctx, caller, amount)
				if err != nil {
					return nil, nil, err
				}
				record, err := s.encoder.Liquidity(caller, journal.ActionProvide, receipt)
				if err != nil {
					return nil, nil, err
				}
				return receipt, []model.LogRecord{record}, nil
			})
		},
	}
	cmd.Flags().Uint64("amount-a", 0, "WELSH to deposit")
	return cmd
}

func newLockLiquidityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock-liquidity",
		Short: "Deposit WELSH and the matching STREET permanently, without LP credit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			amount, _ := cmd.Flags().GetUint64("amount-a")
			return mutation(cmd, "lock-liquidity", func(ctx context.Context, s *session, caller common.Address) (interface{}, []model.LogRecord, error) {
				receipt, err := s.ex().LockLiquidity(ctx, caller, amount)
				if err != nil {
					return nil, nil, err
				}
				record, err := s.encoder.Liquidity(caller, journal.ActionLock, receipt)
				if err != nil {
					return nil, nil, err
				}
				return receipt, []model.LogRecord{record}, nil
			})
		},
	}
	cmd.Flags().Uint64("amount-a", 0, "WELSH to lock")
	return cmd
}

func newRemoveLiquidityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove-liquidity",
		Short: "Burn LP credit for a pro-rata share of the available reserves",
		RunE: func(cmd *cobra.Command, _ []string) error {
			amount, _ := cmd.Flags().GetUint64("lp")
			return mutation(cmd, "remove-liquidity", func(ctx context.Context, s *session, caller common.Address) (interface{}, []model.LogRecord, error) {
				receipt, err := s.ex().RemoveLiquidity(ctx, caller, amount)
				if err != nil {
					return nil, nil, err
				}
				record, err := s.encoder.Liquidity(caller, journal.ActionRemove, receipt)
				if err != nil {
					return nil, nil, err
				}
				return receipt, []model.LogRecord{record}, nil
			})
		},
	}
	cmd.Flags().Uint64("lp", 0, "LP credit to burn")
	return cmd
}

func newSetFeeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-fee",
		Short: "Change the swap fee and its tax share (owner only)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fee, _ := cmd.Flags().GetUint64("fee")
			share, _ := cmd.Flags().GetUint64("tax-share")
			return mutation(cmd, "set-fee", func(ctx context.Context, s *session, caller common.Address) (interface{}, []model.LogRecord, error) {
				if err := s.ex().SetFee(caller, fee, share); err != nil {
					return nil, nil, err
				}
				record, err := s.encoder.FeeUpdated(caller, fee, share)
				if err != nil {
					return nil, nil, err
				}
				return s.ex().ExchangeInfo(), []model.LogRecord{record}, nil
			})
		},
	}
	cmd.Flags().Uint64("fee", 100, "swap fee in basis points")
	cmd.Flags().Uint64("tax-share", 5000, "tax share of the fee in basis points")
	return cmd
}

type tokenMovement struct {
	Token  string `json:"token"`
	From   string `json:"from,omitempty"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

func newStreetMintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "street-mint",
		Short: "Mint STREET to the caller (STREET owner only)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			amount, _ := cmd.Flags().GetUint64("amount")
			return mutation(cmd, "street-mint", func(ctx context.Context, s *session, caller common.Address) (interface{}, []model.LogRecord, error) {
				if err := s.deployment.StreetMint(ctx, caller, amount); err != nil {
					return nil, nil, err
				}
				record, err := s.encoder.Transfer(deployment.TokenAddress(deployment.SymbolStreet), common.Address{}, caller, amount)
				if err != nil {
					return nil, nil, err
				}
				return model.MintReceipt{Amount: amount, Block: record.Sequence}, []model.LogRecord{record}, nil
			})
		},
	}
	cmd.Flags().Uint64("amount", 0, "STREET to mint")
	return cmd
}

func newTransferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer a token from the caller to another principal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			symbol, _ := cmd.Flags().GetString("token")
			rawTo, _ := cmd.Flags().GetString("to")
			amount, _ := cmd.Flags().GetUint64("amount")
			to, err := config.ParseAddress(rawTo)
			if err != nil {
				return fmt.Errorf("to: %w", err)
			}
			return mutation(cmd, "transfer", func(ctx context.Context, s *session, caller common.Address) (interface{}, []model.LogRecord, error) {
				token, err := s.deployment.Token(symbol)
				if err != nil {
					return nil, nil, err
				}
				if err := s.deployment.Transfer(ctx, symbol, caller, to, amount); err != nil {
					return nil, nil, err
				}
				sym := token.Metadata().Symbol
				record, err := s.encoder.Transfer(deployment.TokenAddress(sym), caller, to, amount)
				if err != nil {
					return nil, nil, err
				}
				return tokenMovement{Token: sym, From: caller.Hex(), To: to.Hex(), Amount: amount}, []model.LogRecord{record}, nil
			})
		},
	}
	cmd.Flags().String("token", "WELSH", "token symbol (WELSH, STREET, CREDIT)")
	cmd.Flags().String("to", "", "recipient principal")
	cmd.Flags().Uint64("amount", 0, "amount to transfer")
	return cmd
}
