package model

import "time"

// 承認、注文ステータス更新など。
type AuditAction string

const (
	//商品を承認した操作。
	AuditActionApproveProduct AuditAction = "APPROVE_PRODUCT"
	//商品を却下した操作。
	AuditActionRejectProduct AuditAction = "REJECT_PRODUCT"
	//注文ステータスを更新した操作。
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	//注文をキャンセルした操作。
	AuditActionCancelOrder AuditAction = "CANCEL_ORDER"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceProduct AuditResourceType = "product"
	AuditResourceOrder   AuditResourceType = "order"
)

// 監査ログ。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `json:"id"`

	//操作したユーザー（管理者か農家）のID。
	ActorUserID string `json:"actor_user_id"`

	Action AuditAction `json:"action"`

	ResourceType AuditResourceType `json:"resource_type"`

	//商品はuuid、注文は数値を文字列で。
	ResourceID string `json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `json:"before_json"`
	AfterJSON  string `json:"after_json"`

	CreatedAt time.Time `json:"created_at"`
}
