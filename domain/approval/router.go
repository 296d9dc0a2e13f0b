package approval

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"

	"reliefops/authority"
	"reliefops/bizerror"
	"reliefops/domain"
	"reliefops/domain/state"
	"reliefops/event"
	"reliefops/idgen"
	"reliefops/persistence"
	"reliefops/session"
)

var (
	actionIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	AttemptApprovalFunc = AttemptApproval
)

type ApprovalResult struct {
	Action *domain.ApprovalAction `json:"action"`
	// AuditWarning reports a failed audit emission after a committed
	// approval. The approval stands; the miss is surfaced, not retried.
	AuditWarning string `json:"auditWarning,omitempty"`
}

// AttemptApproval runs one approval attempt end to end: request lookup,
// method support, actor role resolution, eligibility, transition legality,
// then a compare-and-commit of the status together with the ApprovalAction
// in one transaction. Of concurrent attempts from one source status at most
// one commit can match; the rest fail with ErrConcurrentModification and the
// caller retries on fresh state if it wants to.
func AttemptApproval(ctx context.Context, requestID types.ID, targetStatus string,
	claims []authority.ExternalClaim, sec *session.Context) (*ApprovalResult, error) {

	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	now := time.Now().Round(time.Millisecond)
	action := &domain.ApprovalAction{
		ID:         idgen.NextID(actionIdWorker),
		ToStatus:   targetStatus,
		ActorID:    sec.Identity.ID,
		ActorName:  sec.Identity.Name,
		CreateTime: now,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		request := domain.ReplenishmentRequest{ID: requestID}
		if err := tx.Where(&request).First(&request).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrRequestNotFound
			}
			return err
		}
		action.RequestID = request.ID
		action.Method = request.Method
		action.FromStatus = request.Status

		// fail closed on an undefined vocabulary before any other judgment
		machine, err := state.MachineOf(request.Method)
		if err != nil {
			return err
		}

		actorRoles, err := authority.ResolveEffectiveRolesFunc(sec.Identity.ID, claims)
		if err != nil {
			return err
		}
		action.ActorRoles = strings.Join(actorRoles, ",")

		// self-approval is rejected on identity, whatever the roles say
		if sec.Identity.ID == request.SubmitterID {
			return bizerror.ErrNotAuthorized
		}
		if !DefaultPolicyEngine.CanApprove(request.Method, request.SubmitterRole, actorRoles) {
			return bizerror.ErrNotAuthorized
		}

		legal, err := machine.IsLegalTransition(request.Status, targetStatus)
		if err != nil {
			return err
		}
		if !legal {
			return bizerror.ErrIllegalTransition
		}

		query := tx.Model(&domain.ReplenishmentRequest{}).
			Where("id = ? AND status = ?", request.ID, request.Status).
			Update(map[string]interface{}{"status": targetStatus, "status_begin_time": &now})
		if err := query.Error; err != nil {
			return err
		}
		if query.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}

		action.Outcome = domain.OutcomeAccepted
		return tx.Create(action).Error
	})
	if err != nil {
		recordRejectedAction(db, action, err, &sec.Identity)
		return nil, err
	}

	result := ApprovalResult{Action: action}
	if auditErr := event.EmitAudit(event.AuditKindStatusChanged, action.RequestID,
		action.FromStatus, action.ToStatus, &sec.Identity, db); auditErr != nil {
		logrus.Warnf("audit emission failed for committed approval %v on request %v: %v",
			action.ID, action.RequestID, auditErr)
		result.AuditWarning = "audit emission failed: " + auditErr.Error()
	}
	return &result, nil
}

// recordRejectedAction appends an ApprovalAction for a refused attempt so
// the audit trail covers rejections too. Best effort: a failure to record a
// rejection is logged, the original rejection is what the caller sees.
func recordRejectedAction(db *gorm.DB, action *domain.ApprovalAction, cause error, identity *session.Identity) {
	outcome := rejectionOutcome(cause)
	if outcome == "" || action.RequestID == 0 {
		return
	}
	action.Outcome = outcome
	if err := db.Create(action).Error; err != nil {
		logrus.Warnf("failed to record rejected approval attempt on request %v: %v", action.RequestID, err)
		return
	}
	if err := event.EmitAudit(event.AuditKindApprovalRejected, action.RequestID,
		action.FromStatus, action.ToStatus, identity, db); err != nil {
		logrus.Warnf("audit emission failed for rejected attempt on request %v: %v", action.RequestID, err)
	}
}

func rejectionOutcome(err error) string {
	switch {
	case errors.Is(err, bizerror.ErrNotAuthorized):
		return domain.OutcomeRejectedNotAuthorized
	case errors.Is(err, bizerror.ErrIllegalTransition):
		return domain.OutcomeRejectedIllegalTransition
	case errors.Is(err, bizerror.ErrUnknownStatusCode):
		return domain.OutcomeRejectedUnknownStatusCode
	case errors.Is(err, bizerror.ErrConcurrentModification):
		return domain.OutcomeRejectedConcurrentModification
	case errors.Is(err, bizerror.ErrUnsupportedMethod):
		return domain.OutcomeRejectedUnsupportedMethod
	}
	return ""
}
