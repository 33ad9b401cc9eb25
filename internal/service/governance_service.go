package service

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/engine"
)

// GovernanceService manages signed parameter-change actions. Every state
// transition is mirrored; when the final confirmation applies an action the
// new parameter set is persisted so a warm restart boots with it.
type GovernanceService struct {
	engine *engine.Engine
	mirror *Mirror
	audit  domain.AuditStore
	logger *slog.Logger
}

// NewGovernanceService creates a GovernanceService.
func NewGovernanceService(eng *engine.Engine, mirror *Mirror, audit domain.AuditStore, logger *slog.Logger) *GovernanceService {
	return &GovernanceService{
		engine: eng,
		mirror: mirror,
		audit:  audit,
		logger: logger.With(slog.String("service", "governance")),
	}
}

// Propose submits a signed parameter change.
func (s *GovernanceService) Propose(ctx context.Context, signer common.Address, t domain.ActionType, value int64, sig []byte) (domain.GovernanceAction, error) {
	a, err := s.engine.ProposeParameterChange(signer, t, value, sig)
	if err != nil {
		return domain.GovernanceAction{}, err
	}
	s.afterAction(ctx, a, signer, "governance.propose", value)

	s.logger.Info("parameter change proposed",
		slog.String("action_id", a.ID),
		slog.String("type", string(a.Type)),
		slog.Int64("value", a.Value),
		slog.Bool("executed", a.Executed),
	)
	return a, nil
}

// Confirm adds a signer's confirmation to a pending action.
func (s *GovernanceService) Confirm(ctx context.Context, signer common.Address, actionID string, sig []byte) (domain.GovernanceAction, error) {
	a, err := s.engine.ConfirmAction(signer, actionID, sig)
	if err != nil {
		return domain.GovernanceAction{}, err
	}
	s.afterAction(ctx, a, signer, "governance.confirm", a.Value)

	s.logger.Info("parameter change confirmed",
		slog.String("action_id", a.ID),
		slog.String("signer", signer.Hex()),
		slog.Bool("executed", a.Executed),
	)
	return a, nil
}

// afterAction mirrors the action, persists the params if it executed, and
// writes the audit trail.
func (s *GovernanceService) afterAction(ctx context.Context, a domain.GovernanceAction, signer common.Address, event string, value int64) {
	s.mirror.Action(ctx, a)
	if a.Executed {
		s.mirror.Params(ctx, s.engine.Params())
	}

	if err := s.audit.Log(ctx, event, map[string]any{
		"action_id": a.ID,
		"type":      string(a.Type),
		"value":     value,
		"signer":    signer.Hex(),
		"executed":  a.Executed,
	}); err != nil {
		s.logger.Warn("audit log failed", slog.String("error", err.Error()))
	}
}

// Action returns one governance action.
func (s *GovernanceService) Action(ctx context.Context, id string) (domain.GovernanceAction, error) {
	return s.engine.GovernanceAction(id)
}

// Actions lists governance actions, newest first.
func (s *GovernanceService) Actions(ctx context.Context, opts domain.ListOpts) []domain.GovernanceAction {
	return s.engine.GovernanceActions(opts)
}

// Params returns the currently applied parameter set.
func (s *GovernanceService) Params(ctx context.Context) domain.Params {
	return s.engine.Params()
}
