package event

import "github.com/fundwit/go-commons/types"

const (
	AuditKindRequestCreated   = "REQUEST_CREATED"
	AuditKindRequestRead      = "REQUEST_READ"
	AuditKindStatusChanged    = "STATUS_CHANGED"
	AuditKindApprovalRejected = "APPROVAL_REJECTED"
)

type AuditKind string

type AuditRecord struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	RequestID types.ID  `json:"requestId"`
	Kind      AuditKind `json:"kind"`

	ActorID   types.ID `json:"actorId"`
	ActorName string   `json:"actorName"`

	FromStatus string `json:"fromStatus"`
	ToStatus   string `json:"toStatus"`

	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME(6)"`
}

func (r *AuditRecord) TableName() string {
	return "audit_records"
}
