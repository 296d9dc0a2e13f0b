package authority

import (
	"context"

	"reliefops/persistence"
)

var (
	RoleFieldStaff       = Role{ID: "field-staff", Title: "Field Staff"}
	RoleLogisticsManager = Role{ID: "logistics-manager", Title: "Logistics Manager"}
	RoleDirectorPEOD     = Role{ID: "director-peod", Title: "Director of Planning and Emergency Operations"}
	RoleSeniorDirector   = Role{ID: "senior-director", Title: "Senior Director"}
	systemAdminRole      = Role{ID: "system-admin", Title: "System Administrator"}

	// DirectorRoles is the elevated role class eligible for donation and
	// procurement approvals and for on-behalf transfer approvals.
	DirectorRoles = Roles{RoleDirectorPEOD.ID, RoleSeniorDirector.ID}

	SystemAdminPermission        = Permission{ID: "system:admin", Title: "System Administration"}
	ApproveTransferPermission    = Permission{ID: "approve-transfer", Title: "Approve Transfer Requests"}
	ApproveDonationPermission    = Permission{ID: "approve-donation", Title: "Approve Donation Requests"}
	ApproveProcurementPermission = Permission{ID: "approve-procurement", Title: "Approve Procurement Requests"}
	ReadAuditPermission          = Permission{ID: "read-audit", Title: "Read Audit Records"}
)

var defaultRoles = []Role{
	RoleFieldStaff, RoleLogisticsManager, RoleDirectorPEOD, RoleSeniorDirector, systemAdminRole,
}

var defaultPermissions = []Permission{
	SystemAdminPermission, ApproveTransferPermission, ApproveDonationPermission,
	ApproveProcurementPermission, ReadAuditPermission,
}

var defaultRolePermissionBindings = []RolePermissionBinding{
	{ID: 1, RoleID: systemAdminRole.ID, PermissionID: SystemAdminPermission.ID},
	{ID: 2, RoleID: RoleLogisticsManager.ID, PermissionID: ApproveTransferPermission.ID},
	{ID: 3, RoleID: RoleDirectorPEOD.ID, PermissionID: ApproveTransferPermission.ID},
	{ID: 4, RoleID: RoleDirectorPEOD.ID, PermissionID: ApproveDonationPermission.ID},
	{ID: 5, RoleID: RoleDirectorPEOD.ID, PermissionID: ApproveProcurementPermission.ID},
	{ID: 6, RoleID: RoleDirectorPEOD.ID, PermissionID: ReadAuditPermission.ID},
	{ID: 7, RoleID: RoleSeniorDirector.ID, PermissionID: ApproveDonationPermission.ID},
	{ID: 8, RoleID: RoleSeniorDirector.ID, PermissionID: ApproveProcurementPermission.ID},
	{ID: 9, RoleID: RoleSeniorDirector.ID, PermissionID: ReadAuditPermission.ID},
}

// DefaultSecurityConfiguration seeds the canonical role and permission
// vocabulary. Bindings carry fixed ids so repeated boots stay idempotent.
func DefaultSecurityConfiguration() error {
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	for _, role := range defaultRoles {
		if err := db.Save(&role).Error; err != nil {
			return err
		}
	}
	for _, perm := range defaultPermissions {
		if err := db.Save(&perm).Error; err != nil {
			return err
		}
	}
	for _, binding := range defaultRolePermissionBindings {
		if err := db.Save(&binding).Error; err != nil {
			return err
		}
	}
	return nil
}
