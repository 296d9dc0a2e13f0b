package approval_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"

	"reliefops/authority"
	"reliefops/bizerror"
	"reliefops/domain"
	"reliefops/domain/approval"
	"reliefops/event"
	"reliefops/persistence"
	"reliefops/testinfra"
)

func routerTestSetup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartMysqlTestDatabase("reliefops")
	assert.Nil(t, db.DS.GormDB(context.Background()).AutoMigrate(
		&authority.Role{}, &authority.Permission{},
		&authority.UserRoleBinding{}, &authority.RolePermissionBinding{},
		&domain.ReplenishmentRequest{}, &domain.ApprovalAction{},
		&event.AuditRecord{},
	).Error)
	persistence.ActiveDataSourceManager = db.DS
	assert.Nil(t, authority.DefaultSecurityConfiguration())
	*testDatabase = db
}

func routerTestTeardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
	authority.ResolveEffectiveRolesFunc = authority.ResolveEffectiveRoles
	event.AuditPersistFunc = event.AuditPersist
}

func stubActorRoles(roles ...string) {
	authority.ResolveEffectiveRolesFunc = func(identity types.ID, claims []authority.ExternalClaim) (authority.Roles, error) {
		return authority.Roles(roles), nil
	}
}

func buildRequest(t *testing.T, id types.ID, method domain.Method, status string,
	submitterID types.ID, submitterRole string) domain.ReplenishmentRequest {

	now := time.Now().Round(time.Millisecond)
	request := domain.ReplenishmentRequest{
		ID: id, Method: method, Status: status,
		SubmitterID: submitterID, SubmitterName: "submitter", SubmitterRole: submitterRole,
		CreateTime: now, StatusBeginTime: &now,
	}
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	assert.Nil(t, db.Create(&request).Error)
	return request
}

func TestAttemptApproval(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("donation verification by a senior director should commit status and action atomically", func(t *testing.T) {
		defer func() { routerTestTeardown(t, testDatabase) }()
		routerTestSetup(t, &testDatabase)

		buildRequest(t, 100, domain.MethodDonation, "E", 10, "field-staff")
		stubActorRoles("senior-director")

		result, err := approval.AttemptApproval(context.Background(), 100, "V", nil, testinfra.BuildSecCtx(20, "senior-director"))
		Expect(err).To(BeNil())
		Expect(result.Action.Outcome).To(Equal(domain.OutcomeAccepted))
		Expect(result.Action.FromStatus).To(Equal("E"))
		Expect(result.Action.ToStatus).To(Equal("V"))
		Expect(result.AuditWarning).To(BeEmpty())

		db := persistence.ActiveDataSourceManager.GormDB(context.Background())
		request := domain.ReplenishmentRequest{ID: 100}
		Expect(db.Where(&request).First(&request).Error).To(BeNil())
		Expect(request.Status).To(Equal("V"))

		var actions []domain.ApprovalAction
		Expect(db.Where(&domain.ApprovalAction{RequestID: 100}).Find(&actions).Error).To(BeNil())
		Expect(actions).To(HaveLen(1))
		Expect(actions[0].Outcome).To(Equal(domain.OutcomeAccepted))

		var audits []event.AuditRecord
		Expect(db.Where(&event.AuditRecord{RequestID: 100}).Find(&audits).Error).To(BeNil())
		Expect(audits).To(HaveLen(1))
		Expect(audits[0].Kind).To(Equal(event.AuditKind(event.AuditKindStatusChanged)))
	})

	t.Run("status regression should be rejected as illegal transition and recorded", func(t *testing.T) {
		defer func() { routerTestTeardown(t, testDatabase) }()
		routerTestSetup(t, &testDatabase)

		buildRequest(t, 101, domain.MethodDonation, "V", 10, "field-staff")
		stubActorRoles("senior-director")

		result, err := approval.AttemptApproval(context.Background(), 101, "E", nil, testinfra.BuildSecCtx(20, "senior-director"))
		Expect(result).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrIllegalTransition))

		db := persistence.ActiveDataSourceManager.GormDB(context.Background())
		request := domain.ReplenishmentRequest{ID: 101}
		Expect(db.Where(&request).First(&request).Error).To(BeNil())
		Expect(request.Status).To(Equal("V"))

		var actions []domain.ApprovalAction
		Expect(db.Where(&domain.ApprovalAction{RequestID: 101}).Find(&actions).Error).To(BeNil())
		Expect(actions).To(HaveLen(1))
		Expect(actions[0].Outcome).To(Equal(domain.OutcomeRejectedIllegalTransition))
	})

	t.Run("self-approval should be rejected whatever the roles", func(t *testing.T) {
		defer func() { routerTestTeardown(t, testDatabase) }()
		routerTestSetup(t, &testDatabase)

		buildRequest(t, 102, domain.MethodDonation, "E", 20, "senior-director")
		stubActorRoles("senior-director", "director-peod")

		result, err := approval.AttemptApproval(context.Background(), 102, "V", nil, testinfra.BuildSecCtx(20, "senior-director"))
		Expect(result).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrNotAuthorized))
	})

	t.Run("ineligible actor should be rejected", func(t *testing.T) {
		defer func() { routerTestTeardown(t, testDatabase) }()
		routerTestSetup(t, &testDatabase)

		buildRequest(t, 103, domain.MethodTransfer, "D", 10, "field-staff")
		stubActorRoles("director-peod") // no on-behalf: submitter is not a logistics role

		result, err := approval.AttemptApproval(context.Background(), 103, "V", nil, testinfra.BuildSecCtx(20, "director-peod"))
		Expect(result).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrNotAuthorized))
	})

	t.Run("transfer on-behalf: director approves when a logistics manager submitted", func(t *testing.T) {
		defer func() { routerTestTeardown(t, testDatabase) }()
		routerTestSetup(t, &testDatabase)

		buildRequest(t, 104, domain.MethodTransfer, "D", 10, "logistics-manager")
		stubActorRoles("director-peod")

		result, err := approval.AttemptApproval(context.Background(), 104, "V", nil, testinfra.BuildSecCtx(20, "director-peod"))
		Expect(err).To(BeNil())
		Expect(result.Action.Outcome).To(Equal(domain.OutcomeAccepted))
	})

	t.Run("procurement should fail closed before any other judgment", func(t *testing.T) {
		defer func() { routerTestTeardown(t, testDatabase) }()
		routerTestSetup(t, &testDatabase)

		buildRequest(t, 105, domain.MethodProcurement, "E", 10, "field-staff")
		stubActorRoles("senior-director")

		result, err := approval.AttemptApproval(context.Background(), 105, "V", nil, testinfra.BuildSecCtx(20, "senior-director"))
		Expect(result).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrUnsupportedMethod))
	})

	t.Run("absent request should be reported as not found", func(t *testing.T) {
		defer func() { routerTestTeardown(t, testDatabase) }()
		routerTestSetup(t, &testDatabase)

		stubActorRoles("senior-director")
		result, err := approval.AttemptApproval(context.Background(), 404, "V", nil, testinfra.BuildSecCtx(20, "senior-director"))
		Expect(result).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrRequestNotFound))
	})

	t.Run("audit emission failure should warn, not roll back", func(t *testing.T) {
		defer func() { routerTestTeardown(t, testDatabase) }()
		routerTestSetup(t, &testDatabase)

		buildRequest(t, 106, domain.MethodDonation, "E", 10, "field-staff")
		stubActorRoles("senior-director")
		event.AuditPersistFunc = func(record *event.AuditRecord, db *gorm.DB) error {
			return gorm.ErrInvalidTransaction
		}

		result, err := approval.AttemptApproval(context.Background(), 106, "V", nil, testinfra.BuildSecCtx(20, "senior-director"))
		Expect(err).To(BeNil())
		Expect(result.AuditWarning).ToNot(BeEmpty())

		db := persistence.ActiveDataSourceManager.GormDB(context.Background())
		request := domain.ReplenishmentRequest{ID: 106}
		Expect(db.Where(&request).First(&request).Error).To(BeNil())
		Expect(request.Status).To(Equal("V"))
	})
}

func TestAttemptApprovalConcurrency(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase
	defer func() { routerTestTeardown(t, testDatabase) }()
	routerTestSetup(t, &testDatabase)

	buildRequest(t, 200, domain.MethodDonation, "E", 10, "field-staff")
	stubActorRoles("senior-director")

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(idx int, actor types.ID) {
			defer wg.Done()
			_, err := approval.AttemptApproval(context.Background(), 200, "V", nil,
				testinfra.BuildSecCtx(actor, "senior-director"))
			results[idx] = err
		}(i, types.ID(20+i))
	}
	wg.Wait()

	succeeded, conflicted := 0, 0
	for _, err := range results {
		switch err {
		case nil:
			succeeded++
		case bizerror.ErrConcurrentModification:
			conflicted++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)

	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	request := domain.ReplenishmentRequest{ID: 200}
	Expect(db.Where(&request).First(&request).Error).To(BeNil())
	Expect(request.Status).To(Equal("V"))
}
