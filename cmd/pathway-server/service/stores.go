package service

import (
	"context"
	"time"

	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/models"
)

// Consumer-side store contracts. The repository package satisfies all of
// them against postgres; tests substitute in-memory fakes. Every method
// reads the ambient transaction from ctx when one is open.

// TxRunner runs fn inside a serializable transaction
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// OnPathwayStore is the persistence contract for OnPathway rows
type OnPathwayStore interface {
	GetByID(ctx context.Context, id int64) (*models.OnPathway, error)
	MarkDischarged(ctx context.Context, id int64) error
	AssignCareOwnerIfUnset(ctx context.Context, id, userID int64) error
	AcquireLock(ctx context.Context, id, userID int64, until time.Time) (bool, error)
	ReleaseLock(ctx context.Context, id, userID int64) (bool, error)
}

// PathwayStore is the persistence contract for pathways and permissions
type PathwayStore interface {
	GetByID(ctx context.Context, id int64) (*models.Pathway, error)
	UserHasAccess(ctx context.Context, userID, pathwayID int64) (bool, error)
}

// PatientStore is the persistence contract for patients
type PatientStore interface {
	GetByID(ctx context.Context, id int64) (*models.Patient, error)
}

// DecisionPointStore is the persistence contract for decision points
type DecisionPointStore interface {
	Create(ctx context.Context, dp *models.DecisionPoint) error
	GetByID(ctx context.Context, id int64) (*models.DecisionPoint, error)
}

// ClinicalRequestStore is the persistence contract for clinical requests
type ClinicalRequestStore interface {
	Create(ctx context.Context, cr *models.ClinicalRequest) error
	SetForwardDecisionPoint(ctx context.Context, requestID, decisionPointID int64) error
	ListByDecisionPoint(ctx context.Context, decisionPointID int64) ([]*models.ClinicalRequest, error)
	ListOutstandingByOnPathway(ctx context.Context, onPathwayID int64) ([]*models.ClinicalRequest, error)
}

// ClinicalRequestTypeStore is the catalog contract for request types
type ClinicalRequestTypeStore interface {
	GetByID(ctx context.Context, id int64) (*models.ClinicalRequestType, error)
	ListIDsForPathway(ctx context.Context, pathwayID int64) ([]int64, error)
}

// MdtStore is the persistence contract for MDTs and their queues
type MdtStore interface {
	GetByID(ctx context.Context, id int64) (*models.MDT, error)
	HighestOrder(ctx context.Context, mdtID int64) (int, bool, error)
	CreateOnMdt(ctx context.Context, om *models.OnMdt) error
}

// AuditStore is the persistence contract for OnPathway audit records
type AuditStore interface {
	Create(ctx context.Context, a *models.OnPathwayAudit) error
}
