package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

// Method is the replenishment channel of a request. Each method owns a
// closed status vocabulary; the vocabularies are not interchangeable.
type Method string

const (
	MethodTransfer    Method = "Transfer"
	MethodDonation    Method = "Donation"
	MethodProcurement Method = "Procurement"
)

type ReplenishmentRequest struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	Method Method   `json:"method"`
	Status string   `json:"status"`

	SubmitterID   types.ID `json:"submitterId"`
	SubmitterName string   `json:"submitterName"`
	// SubmitterRole is the role the submitter acted in, captured at
	// submission time. On-behalf evaluation uses this value even after the
	// submitter's role assignments change.
	SubmitterRole string `json:"submitterRole"`

	CreateTime      time.Time  `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	StatusBeginTime *time.Time `json:"statusBeginTime" sql:"type:DATETIME(6)"`
}

func (r *ReplenishmentRequest) TableName() string {
	return "replenishment_requests"
}

const (
	OutcomeAccepted                       = "ACCEPTED"
	OutcomeRejectedNotAuthorized          = "REJECTED_NOT_AUTHORIZED"
	OutcomeRejectedIllegalTransition      = "REJECTED_ILLEGAL_TRANSITION"
	OutcomeRejectedUnknownStatusCode      = "REJECTED_UNKNOWN_STATUS_CODE"
	OutcomeRejectedConcurrentModification = "REJECTED_CONCURRENT_MODIFICATION"
	OutcomeRejectedUnsupportedMethod      = "REJECTED_UNSUPPORTED_METHOD"
)

// ApprovalAction records one attempted transition. Actions are append-only:
// corrections are new actions, never updates.
type ApprovalAction struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	RequestID types.ID `json:"requestId"`
	Method    Method   `json:"method"`

	ActorID    types.ID `json:"actorId"`
	ActorName  string   `json:"actorName"`
	ActorRoles string   `json:"actorRoles"`

	FromStatus string `json:"fromStatus"`
	ToStatus   string `json:"toStatus"`
	Outcome    string `json:"outcome"`

	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (a *ApprovalAction) TableName() string {
	return "approval_actions"
}

type ReplenishmentRequestCreation struct {
	Method        Method `json:"method" validate:"required,oneof=Transfer Donation Procurement"`
	SubmitterRole string `json:"submitterRole" validate:"required"`
}

type ReplenishmentRequestQuery struct {
	Method Method `json:"method" form:"method"`
	Status string `json:"status" form:"status"`
}

type ApprovalAttempt struct {
	RequestID    types.ID `json:"requestId" validate:"required"`
	TargetStatus string   `json:"targetStatus" validate:"required"`
	ClaimsToken  string   `json:"claimsToken"`
}
