package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/models"
	"github.com/sdhealth/pathway-tracker/common/clients"
)

// In-memory fakes for the store contracts. They mirror the SQL guards of
// the real repositories (WHERE clauses, unique constraints) closely
// enough to exercise the workflow's edge cases.

type fakeTxRunner struct {
	calls int
}

func (f *fakeTxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeOnPathwayStore struct {
	rows map[int64]*models.OnPathway
}

func (f *fakeOnPathwayStore) GetByID(ctx context.Context, id int64) (*models.OnPathway, error) {
	op, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("on_pathway %d: %w", id, models.ErrNotFound)
	}
	cp := *op
	return &cp, nil
}

func (f *fakeOnPathwayStore) MarkDischarged(ctx context.Context, id int64) error {
	if op, ok := f.rows[id]; ok {
		op.IsDischarged = true
	}
	return nil
}

func (f *fakeOnPathwayStore) AssignCareOwnerIfUnset(ctx context.Context, id, userID int64) error {
	if op, ok := f.rows[id]; ok && op.UnderCareOfID == nil {
		op.UnderCareOfID = &userID
	}
	return nil
}

func (f *fakeOnPathwayStore) AcquireLock(ctx context.Context, id, userID int64, until time.Time) (bool, error) {
	op, ok := f.rows[id]
	if !ok {
		return false, nil
	}
	if op.LockUserID == nil || *op.LockUserID == userID || op.LockExpired(time.Now()) {
		op.LockUserID = &userID
		op.LockEndTime = &until
		return true, nil
	}
	return false, nil
}

func (f *fakeOnPathwayStore) ReleaseLock(ctx context.Context, id, userID int64) (bool, error) {
	op, ok := f.rows[id]
	if !ok {
		return false, nil
	}
	if op.LockUserID == nil || *op.LockUserID == userID || op.LockExpired(time.Now()) {
		op.LockUserID = nil
		op.LockEndTime = nil
		return true, nil
	}
	return false, nil
}

type fakePathwayStore struct {
	rows   map[int64]*models.Pathway
	access map[int64]map[int64]bool
}

func (f *fakePathwayStore) GetByID(ctx context.Context, id int64) (*models.Pathway, error) {
	p, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("pathway %d: %w", id, models.ErrNotFound)
	}
	return p, nil
}

func (f *fakePathwayStore) UserHasAccess(ctx context.Context, userID, pathwayID int64) (bool, error) {
	return f.access[userID][pathwayID], nil
}

type fakePatientStore struct {
	rows map[int64]*models.Patient
}

func (f *fakePatientStore) GetByID(ctx context.Context, id int64) (*models.Patient, error) {
	p, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("patient %d: %w", id, models.ErrNotFound)
	}
	return p, nil
}

type fakeDecisionPointStore struct {
	nextID int64
	rows   map[int64]*models.DecisionPoint
}

func (f *fakeDecisionPointStore) Create(ctx context.Context, dp *models.DecisionPoint) error {
	f.nextID++
	dp.ID = f.nextID
	if dp.AddedAt.IsZero() {
		dp.AddedAt = time.Now()
	}
	cp := *dp
	f.rows[dp.ID] = &cp
	return nil
}

func (f *fakeDecisionPointStore) GetByID(ctx context.Context, id int64) (*models.DecisionPoint, error) {
	dp, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("decision_point %d: %w", id, models.ErrNotFound)
	}
	return dp, nil
}

type fakeClinicalRequestStore struct {
	nextID int64
	rows   map[int64]*models.ClinicalRequest
}

func (f *fakeClinicalRequestStore) Create(ctx context.Context, cr *models.ClinicalRequest) error {
	f.nextID++
	cr.ID = f.nextID
	cr.AddedAt = time.Now()
	cp := *cr
	f.rows[cr.ID] = &cp
	return nil
}

func (f *fakeClinicalRequestStore) SetForwardDecisionPoint(ctx context.Context, requestID, decisionPointID int64) error {
	if cr, ok := f.rows[requestID]; ok {
		cr.FwdDecisionPointID = &decisionPointID
	}
	return nil
}

func (f *fakeClinicalRequestStore) ListByDecisionPoint(ctx context.Context, decisionPointID int64) ([]*models.ClinicalRequest, error) {
	var out []*models.ClinicalRequest
	for _, cr := range f.rows {
		if cr.DecisionPointID == decisionPointID {
			out = append(out, cr)
		}
	}
	return out, nil
}

func (f *fakeClinicalRequestStore) ListOutstandingByOnPathway(ctx context.Context, onPathwayID int64) ([]*models.ClinicalRequest, error) {
	var out []*models.ClinicalRequest
	for _, cr := range f.rows {
		if cr.OnPathwayID == onPathwayID && cr.FwdDecisionPointID == nil {
			out = append(out, cr)
		}
	}
	return out, nil
}

type fakeRequestTypeStore struct {
	rows         map[int64]*models.ClinicalRequestType
	pathwayTypes map[int64][]int64
	listCalls    int
}

func (f *fakeRequestTypeStore) GetByID(ctx context.Context, id int64) (*models.ClinicalRequestType, error) {
	t, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("clinical_request_type %d: %w", id, models.ErrNotFound)
	}
	return t, nil
}

func (f *fakeRequestTypeStore) ListIDsForPathway(ctx context.Context, pathwayID int64) ([]int64, error) {
	f.listCalls++
	return f.pathwayTypes[pathwayID], nil
}

type fakeMdtStore struct {
	rows   map[int64]*models.MDT
	nextID int64
	onMdts []*models.OnMdt
}

func (f *fakeMdtStore) GetByID(ctx context.Context, id int64) (*models.MDT, error) {
	m, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("mdt %d: %w", id, models.ErrNotFound)
	}
	return m, nil
}

func (f *fakeMdtStore) HighestOrder(ctx context.Context, mdtID int64) (int, bool, error) {
	highest, found := 0, false
	for _, om := range f.onMdts {
		if om.MdtID == mdtID && (!found || om.Order > highest) {
			highest, found = om.Order, true
		}
	}
	return highest, found, nil
}

func (f *fakeMdtStore) CreateOnMdt(ctx context.Context, om *models.OnMdt) error {
	for _, existing := range f.onMdts {
		if existing.MdtID == om.MdtID && existing.PatientID == om.PatientID {
			return fmt.Errorf("mdt %d, patient %d: %w", om.MdtID, om.PatientID, models.ErrDuplicateOnMdt)
		}
	}
	f.nextID++
	om.ID = f.nextID
	om.AddedAt = time.Now()
	cp := *om
	f.onMdts = append(f.onMdts, &cp)
	return nil
}

type fakeAuditStore struct {
	rows []*models.OnPathwayAudit
}

func (f *fakeAuditStore) Create(ctx context.Context, a *models.OnPathwayAudit) error {
	a.ID = int64(len(f.rows) + 1)
	a.AddedAt = time.Now()
	cp := *a
	f.rows = append(f.rows, &cp)
	return nil
}

type fakeTrustAdapter struct {
	mu sync.Mutex

	connectionErr error
	createErr     error

	connectionCalls int
	created         []*clients.TestResultRequest
	results         map[string]*clients.TestResult
	nextRef         int
}

func newFakeTrustAdapter() *fakeTrustAdapter {
	return &fakeTrustAdapter{results: make(map[string]*clients.TestResult)}
}

func (f *fakeTrustAdapter) TestConnection(ctx context.Context, authToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectionCalls++
	return f.connectionErr
}

func (f *fakeTrustAdapter) CreateTestResult(ctx context.Context, req *clients.TestResultRequest, authToken string) (*clients.TestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextRef++
	result := &clients.TestResult{
		ID:             fmt.Sprintf("ref-%d", f.nextRef),
		TypeID:         req.TypeID,
		HospitalNumber: req.HospitalNumber,
	}
	f.created = append(f.created, req)
	f.results[result.ID] = result
	return result, nil
}

func (f *fakeTrustAdapter) LoadTestResult(ctx context.Context, referenceID string, authToken string) (*clients.TestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result, ok := f.results[referenceID]
	if !ok {
		return nil, &clients.CommunicationError{Op: "load test result", Err: fmt.Errorf("unknown reference %s", referenceID)}
	}
	return result, nil
}

type fakeEventPublisher struct {
	err    error
	events []*DecisionEvent
}

func (f *fakeEventPublisher) PublishDecisionCreated(ctx context.Context, event *DecisionEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}
