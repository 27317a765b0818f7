package audit

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/feral-file/ff-sale-ledger/internal/adapter"
	"github.com/feral-file/ff-sale-ledger/internal/domain"
	"github.com/feral-file/ff-sale-ledger/internal/journal"
	"github.com/feral-file/ff-sale-ledger/internal/logger"
	"github.com/feral-file/ff-sale-ledger/internal/store"
)

const (
	CheckConservation = "conservation"
	CheckEventChain   = "event_chain"
)

// Config holds the configuration for the auditor
type Config struct {
	PoolSize int
	// PageSize is the number of events read per page while verifying the chain
	PageSize int
}

// Finding is the outcome of one audit check
type Finding struct {
	Check  string           `json:"check"`
	Token  domain.TokenKind `json:"token,omitempty"`
	OK     bool             `json:"ok"`
	Detail string           `json:"detail"`
}

// Report collects the findings of one audit run
type Report struct {
	CheckedAt time.Time `json:"checkedAt"`
	Findings  []Finding `json:"findings"`
}

// OK reports whether every check passed
func (r *Report) OK() bool {
	for _, f := range r.Findings {
		if !f.OK {
			return false
		}
	}
	return true
}

// Auditor verifies supply conservation per token kind and the integrity of the event hash chain
type Auditor struct {
	store  store.Store
	hasher *journal.Hasher
	clock  adapter.Clock
	config Config
	pool   pond.ResultPool[Finding]
}

// New creates an auditor with a bounded worker pool
func New(s store.Store, jcs adapter.JCS, clock adapter.Clock, cfg Config) *Auditor {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = len(domain.TokenKinds) + 1
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 500
	}
	return &Auditor{
		store:  s,
		hasher: journal.NewHasher(jcs),
		clock:  clock,
		config: cfg,
		pool:   pond.NewResultPool[Finding](cfg.PoolSize),
	}
}

// Run executes every check once, one pool task per token kind plus one for the event chain
func (a *Auditor) Run(ctx context.Context) (*Report, error) {
	tasks := make([]pond.Result[Finding], 0, len(domain.TokenKinds)+1)
	for _, kind := range domain.TokenKinds {
		tasks = append(tasks, a.pool.SubmitErr(func() (Finding, error) {
			return a.checkConservation(ctx, kind)
		}))
	}
	tasks = append(tasks, a.pool.SubmitErr(func() (Finding, error) {
		return a.checkEventChain(ctx)
	}))

	report := &Report{CheckedAt: a.clock.Now()}
	for _, task := range tasks {
		finding, err := task.Wait()
		if err != nil {
			return nil, err
		}
		report.Findings = append(report.Findings, finding)
		mFindings.WithLabelValues(finding.Check, string(finding.Token)).Set(boolToFloat(!finding.OK))
	}
	return report, nil
}

// RunPeriodic runs the audit every interval until the context is cancelled
func (a *Auditor) RunPeriodic(ctx context.Context, interval time.Duration) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		report, err := a.Run(ctx)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.ErrorCtx(ctx, fmt.Errorf("audit run failed: %w", err))
		case !report.OK():
			for _, f := range report.Findings {
				if !f.OK {
					logger.ErrorCtx(ctx, fmt.Errorf("audit check failed: %s", f.Detail),
						zap.String("check", f.Check),
						zap.String("token", string(f.Token)),
					)
				}
			}
		default:
			logger.InfoCtx(ctx, "Audit passed", zap.Int("checks", len(report.Findings)))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-a.clock.After(interval):
		}
	}
}

// Close stops the worker pool
func (a *Auditor) Close() {
	a.pool.StopAndWait()
}

func (a *Auditor) checkConservation(ctx context.Context, kind domain.TokenKind) (Finding, error) {
	var supply, sum *big.Int
	err := a.store.View(ctx, func(tx store.Tx) error {
		state, err := tx.TokenState(kind)
		if err != nil {
			return err
		}
		supply = state.TotalSupply
		sum, err = tx.SumBalances(kind)
		return err
	})
	if err != nil {
		return Finding{}, fmt.Errorf("failed to read %s balances: %w", kind, err)
	}

	finding := Finding{Check: CheckConservation, Token: kind, OK: supply.Cmp(sum) == 0}
	if finding.OK {
		finding.Detail = fmt.Sprintf("total supply %s matches balances", domain.FormatUnits(supply))
	} else {
		finding.Detail = fmt.Sprintf("total supply %s but balances sum to %s", domain.FormatUnits(supply), domain.FormatUnits(sum))
	}
	return finding, nil
}

func (a *Auditor) checkEventChain(ctx context.Context) (Finding, error) {
	var (
		seq  uint64
		head common.Hash
	)
	for {
		events, err := a.store.ListEvents(ctx, seq, a.config.PageSize)
		if err != nil {
			return Finding{}, fmt.Errorf("failed to list events: %w", err)
		}
		if len(events) == 0 {
			break
		}
		seq, head, err = a.hasher.Verify(seq, head, events)
		if err != nil {
			var chainErr *journal.ChainError
			if !errors.As(err, &chainErr) {
				return Finding{}, err
			}
			return Finding{Check: CheckEventChain, Detail: chainErr.Error()}, nil
		}
		if len(events) < a.config.PageSize {
			break
		}
	}
	return Finding{
		Check:  CheckEventChain,
		OK:     true,
		Detail: fmt.Sprintf("%d events verified, head %s", seq, head.Hex()),
	}, nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
