package event

import (
	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"

	"reliefops/idgen"
	"reliefops/session"
)

var (
	auditIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	AuditPersistFunc = AuditPersist
)

// EmitAudit writes one immutable audit record. Callers treat failure as a
// warning: an audit miss never reverts the business decision it describes,
// but it must be visible to operators.
func EmitAudit(kind AuditKind, requestID types.ID, fromStatus, toStatus string,
	identity *session.Identity, db *gorm.DB) error {

	record := AuditRecord{
		ID:        idgen.NextID(auditIdWorker),
		RequestID: requestID,
		Kind:      kind,

		ActorID:   identity.ID,
		ActorName: identity.Name,

		FromStatus: fromStatus,
		ToStatus:   toStatus,

		Timestamp: types.CurrentTimestamp(),
	}
	return AuditPersistFunc(&record, db)
}

func AuditPersist(record *AuditRecord, db *gorm.DB) error {
	return db.Create(record).Error
}
