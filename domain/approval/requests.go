package approval

import (
	"context"
	"errors"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"

	"reliefops/bizerror"
	"reliefops/domain"
	"reliefops/domain/state"
	"reliefops/event"
	"reliefops/idgen"
	"reliefops/persistence"
	"reliefops/session"
)

var (
	requestIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateRequestFunc = CreateRequest
	DetailRequestFunc = DetailRequest
	QueryRequestsFunc = QueryRequests
	QueryActionsFunc  = QueryActions
)

// CreateRequest enters a replenishment request at the method's initial
// status. The submitter role is captured here and never changes afterwards.
func CreateRequest(ctx context.Context, c *domain.ReplenishmentRequestCreation, sec *session.Context) (*domain.ReplenishmentRequest, error) {
	if !sec.HasRole(c.SubmitterRole) {
		return nil, bizerror.ErrForbidden
	}

	machine, err := state.MachineOf(c.Method)
	if err != nil {
		return nil, err
	}

	now := time.Now().Round(time.Millisecond)
	request := domain.ReplenishmentRequest{
		ID:     idgen.NextID(requestIdWorker),
		Method: c.Method,
		Status: machine.InitialStatus().Code,

		SubmitterID:   sec.Identity.ID,
		SubmitterName: sec.Identity.Name,
		SubmitterRole: c.SubmitterRole,

		CreateTime:      now,
		StatusBeginTime: &now,
	}

	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	if err := db.Create(&request).Error; err != nil {
		return nil, err
	}

	if err := event.EmitAudit(event.AuditKindRequestCreated, request.ID, "", request.Status, &sec.Identity, db); err != nil {
		logrus.Warnf("audit emission failed for request %v creation: %v", request.ID, err)
	}
	return &request, nil
}

// DetailRequest loads one request and emits a read audit record.
func DetailRequest(ctx context.Context, id types.ID, sec *session.Context) (*domain.ReplenishmentRequest, error) {
	request := domain.ReplenishmentRequest{ID: id}
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	if err := db.Where(&request).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrRequestNotFound
		}
		return nil, err
	}

	if err := event.EmitAudit(event.AuditKindRequestRead, request.ID, request.Status, request.Status, &sec.Identity, db); err != nil {
		logrus.Warnf("audit emission failed for request %v read: %v", request.ID, err)
	}
	return &request, nil
}

func QueryRequests(ctx context.Context, query *domain.ReplenishmentRequestQuery, sec *session.Context) (*[]domain.ReplenishmentRequest, error) {
	var requests []domain.ReplenishmentRequest
	db := persistence.ActiveDataSourceManager.GormDB(ctx)

	q := db.Model(&domain.ReplenishmentRequest{})
	if query.Method != "" {
		q = q.Where(&domain.ReplenishmentRequest{Method: query.Method})
	}
	if query.Status != "" {
		q = q.Where(&domain.ReplenishmentRequest{Status: query.Status})
	}
	if err := q.Order("create_time DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return &requests, nil
}

// QueryActions lists the append-only approval history of one request.
func QueryActions(ctx context.Context, requestID types.ID, sec *session.Context) (*[]domain.ApprovalAction, error) {
	var actions []domain.ApprovalAction
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	if err := db.Model(&domain.ApprovalAction{}).Where(&domain.ApprovalAction{RequestID: requestID}).
		Order("create_time ASC").Find(&actions).Error; err != nil {
		return nil, err
	}
	return &actions, nil
}
