package repository

import (
	"context"

	"farmmarket/internal/domain/model"
	repo "farmmarket/internal/repository"
)

type auditLogKVRepository struct {
	t *txState
}

// 監査ログを1件保存
func (r *auditLogKVRepository) Create(ctx context.Context, log model.AuditLog) error {
	if err := r.t.write(repo.KeyAuditLogs); err != nil {
		return err
	}
	if err := r.t.write(repo.KeySequences); err != nil {
		return err
	}
	r.t.state.Seq.AuditLog++
	log.ID = r.t.state.Seq.AuditLog
	r.t.state.AuditLogs = append(r.t.state.AuditLogs, log)
	return nil
}

// 新しい順に条件で絞る
func (r *auditLogKVRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	logs := r.t.state.AuditLogs
	out := make([]model.AuditLog, 0)
	for i := len(logs) - 1; i >= 0; i-- {
		l := logs[i]
		if f.ActorUserID != "" && l.ActorUserID != f.ActorUserID {
			continue
		}
		if f.Action != "" && l.Action != f.Action {
			continue
		}
		if f.ResourceType != "" && l.ResourceType != f.ResourceType {
			continue
		}
		if f.ResourceID != "" && l.ResourceID != f.ResourceID {
			continue
		}
		out = append(out, l)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}
