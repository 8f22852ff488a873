package usecase

import (
	"context"

	"farmmarket/internal/domain/model"
	repo "farmmarket/internal/repository"

	"go.uber.org/zap"
)

type AuditLogUsecase struct {
	tx  repo.TransactionManager
	log *zap.Logger
}

func NewAuditLogUsecase(tx repo.TransactionManager, log *zap.Logger) *AuditLogUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuditLogUsecase{tx: tx, log: log.Named("audit")}
}

// 管理者だけ。Limitは1〜200、0なら50。
func (u *AuditLogUsecase) List(ctx context.Context, actor model.Actor, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	if !actor.HasRole(model.RoleAdmin) {
		return nil, NewHTTPError(ErrForbidden, "admin only")
	}
	if f.Limit == 0 {
		f.Limit = 50
	}
	if f.Limit < 0 || f.Limit > 200 {
		return nil, NewHTTPError(ErrValidation, "invalid limit")
	}

	var logs []model.AuditLog
	err := u.tx.View(ctx, func(r repo.TxRepos) error {
		var err error
		logs, err = r.AuditLogs().List(ctx, f)
		return err
	})
	if err := finishTx(u.log, "list audit logs", err); err != nil {
		return nil, err
	}
	return logs, nil
}
