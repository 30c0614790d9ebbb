package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/realhub/condo-api/internal/model"
	"github.com/realhub/condo-api/internal/repository"
	"github.com/realhub/condo-api/pkg/prom"
)

var (
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrPaymentForbidden    = errors.New("unauthorized")
	ErrCostCenterRequired  = errors.New("cost center is required")
	ErrInvalidCostCenter   = errors.New("invalid cost center")
	ErrUnitNotOwned        = errors.New("payments can only be linked to your own unit or left unlinked")
	ErrCostCenterNotLinked = errors.New("you are not linked to this cost center")
	ErrEditForbidden       = errors.New("you can only edit payments you created")
	ErrDeleteForbidden     = errors.New("you are not authorized to delete this payment")
	ErrNoUnitsForPending   = errors.New("no units found to create pending payments")
	ErrProofNotPending     = errors.New("only pending payments can have proof submitted")
	ErrProofForbidden      = errors.New("you can only submit proof for payments linked to your unit")
)

type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) (*model.Payment, error)
	FindByID(ctx context.Context, id int64) (*model.Payment, error)
	List(ctx context.Context, f model.PaymentFilter, caller model.Caller) ([]*model.Payment, int64, error)
	Update(ctx context.Context, p *model.Payment) error
	UpdateProofAndType(ctx context.Context, id int64, proof string, t model.PaymentType) error
	Delete(ctx context.Context, id int64) error
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type CostCenterDirectory interface {
	FindByID(ctx context.Context, id int64) (*model.CostCenter, error)
	IsUserLinked(ctx context.Context, userID, costCenterID int64) (bool, error)
}

type UnitDirectory interface {
	ListAllOrdered(ctx context.Context) ([]*model.Unit, error)
	GetResidents(ctx context.Context, unitID int64) ([]*model.User, error)
}

// AuditRecorder is the append-only activity log sink. Record never fails the
// calling operation.
type AuditRecorder interface {
	Record(ctx context.Context, userID *int64, action model.ActivityAction, entityType string, entityID *int64, details map[string]any, ip string)
}

// NotificationDispatcher is fire-and-forget: implementations log and drop
// failures, callers get nothing back to wait on.
type NotificationDispatcher interface {
	PaymentCreated(ctx context.Context, p *model.Payment, actorID int64)
}

type PaymentService struct {
	payments    PaymentRepository
	costCenters CostCenterDirectory
	units       UnitDirectory
	audit       AuditRecorder
	notifier    NotificationDispatcher
}

func NewPaymentService(payments PaymentRepository, costCenters CostCenterDirectory, units UnitDirectory, audit AuditRecorder, notifier NotificationDispatcher) *PaymentService {
	return &PaymentService{
		payments:    payments,
		costCenters: costCenters,
		units:       units,
		audit:       audit,
		notifier:    notifier,
	}
}

func (s *PaymentService) List(ctx context.Context, f model.PaymentFilter, caller model.Caller) ([]*model.Payment, model.PageMeta, error) {
	rows, total, err := s.payments.List(ctx, f, caller)
	if err != nil {
		return nil, model.PageMeta{}, err
	}
	return rows, model.NewPageMeta(total, f.Page, f.Limit), nil
}

// Get re-applies the visibility rule for non-admins and attaches the roster
// of residents of the linked unit.
func (s *PaymentService) Get(ctx context.Context, id int64, caller model.Caller) (*model.Payment, error) {
	payment, err := s.payments.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}

	if !model.CanViewPayment(caller, payment) {
		return nil, ErrPaymentForbidden
	}

	if payment.UnitID != nil {
		residents, err := s.units.GetResidents(ctx, *payment.UnitID)
		if err != nil {
			return nil, fmt.Errorf("load unit residents: %w", err)
		}
		payment.Residents = residents
	}

	return payment, nil
}

// Create inserts a single payment, or fans out one pending payment per
// existing unit when an admin posts a pending due with no unit.
func (s *PaymentService) Create(ctx context.Context, req model.PaymentRequest, caller model.Caller) (*model.PaymentCreateResult, error) {
	if req.CostCenterID == 0 {
		return nil, ErrCostCenterRequired
	}

	costCenter, err := s.costCenters.FindByID(ctx, req.CostCenterID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCostCenter
	}
	if err != nil {
		return nil, err
	}

	if !model.CanLinkUnit(caller, req.UnitID) {
		return nil, ErrUnitNotOwned
	}

	if !caller.IsAdmin() {
		linked, err := s.costCenters.IsUserLinked(ctx, caller.ID, req.CostCenterID)
		if err != nil {
			return nil, err
		}
		if !linked {
			return nil, ErrCostCenterNotLinked
		}
	}

	effectiveType := s.effectiveType(req.Type, costCenter, caller)

	if caller.IsAdmin() && effectiveType == model.PaymentPending && req.UnitID == nil {
		return s.createBulkPending(ctx, req, caller)
	}

	payment := &model.Payment{
		Date:         req.Date,
		Type:         effectiveType,
		Amount:       req.Amount,
		Proof:        req.Proof,
		Description:  req.Description,
		UnitID:       req.UnitID,
		UserID:       caller.ID,
		CostCenterID: req.CostCenterID,
	}

	created, err := s.payments.Create(ctx, payment)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	s.audit.Record(ctx, &caller.ID, model.ActionCreate, "payment", &created.ID, paymentSnapshot(created), caller.IP)
	s.notifier.PaymentCreated(ctx, created, caller.ID)
	prom.Inc(prom.SystemPayments, prom.MetricPaymentsCreated)

	return &model.PaymentCreateResult{ID: created.ID}, nil
}

// createBulkPending inserts one pending payment per existing unit inside a
// single transaction, then writes one audit entry and fires one notification
// per created row.
func (s *PaymentService) createBulkPending(ctx context.Context, req model.PaymentRequest, caller model.Caller) (*model.PaymentCreateResult, error) {
	units, err := s.units.ListAllOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	if len(units) == 0 {
		return nil, ErrNoUnitsForPending
	}

	created := make([]*model.Payment, 0, len(units))
	err = s.payments.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, unit := range units {
			unitID := unit.ID
			payment := &model.Payment{
				Date:         req.Date,
				Type:         model.PaymentPending,
				Amount:       req.Amount,
				Proof:        req.Proof,
				Description:  req.Description,
				UnitID:       &unitID,
				UserID:       caller.ID,
				CostCenterID: req.CostCenterID,
			}
			row, err := s.payments.Create(ctx, payment)
			if err != nil {
				return fmt.Errorf("create pending payment for unit %d: %w", unit.ID, err)
			}
			created = append(created, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(created))
	for i, p := range created {
		ids[i] = p.ID
		s.audit.Record(ctx, &caller.ID, model.ActionCreate, "payment", &p.ID, paymentSnapshot(p), caller.IP)
		s.notifier.PaymentCreated(ctx, p, caller.ID)
	}
	prom.Inc(prom.SystemPayments, prom.MetricPaymentsBulkCreated)

	return &model.PaymentCreateResult{Bulk: true, Count: len(created), IDs: ids}, nil
}

// Update re-runs the create-time validation, preserves the creator and
// writes an {old, new} audit entry. An admin forcing the type back to
// pending clears the proof.
func (s *PaymentService) Update(ctx context.Context, id int64, req model.PaymentRequest, caller model.Caller) error {
	existing, err := s.payments.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPaymentNotFound
	}
	if err != nil {
		return err
	}

	if !model.CanEditPayment(caller, existing) {
		return ErrEditForbidden
	}

	if req.CostCenterID == 0 {
		return ErrCostCenterRequired
	}

	costCenter, err := s.costCenters.FindByID(ctx, req.CostCenterID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidCostCenter
	}
	if err != nil {
		return err
	}

	if !caller.IsAdmin() {
		linked, err := s.costCenters.IsUserLinked(ctx, caller.ID, req.CostCenterID)
		if err != nil {
			return err
		}
		if !linked {
			return ErrCostCenterNotLinked
		}
	}

	effectiveType := s.effectiveType(req.Type, costCenter, caller)

	proof := req.Proof
	if caller.IsAdmin() && effectiveType == model.PaymentPending {
		// a pending due cannot carry a stale receipt
		proof = nil
	}

	if !model.CanLinkUnit(caller, req.UnitID) {
		return ErrUnitNotOwned
	}

	oldSnapshot := paymentSnapshot(existing)

	updated := &model.Payment{
		ID:           existing.ID,
		Date:         req.Date,
		Type:         effectiveType,
		Amount:       req.Amount,
		Proof:        proof,
		Description:  req.Description,
		UnitID:       req.UnitID,
		UserID:       existing.UserID,
		CostCenterID: req.CostCenterID,
	}
	if err := s.payments.Update(ctx, updated); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}

	s.audit.Record(ctx, &caller.ID, model.ActionUpdate, "payment", &id,
		model.UpdateDetails(oldSnapshot, paymentSnapshot(updated)), caller.IP)
	return nil
}

// Delete is admin-only. A missing id is a silent no-op: nothing is deleted
// and nothing is logged.
func (s *PaymentService) Delete(ctx context.Context, id int64, caller model.Caller) error {
	if !model.CanDeletePayment(caller) {
		return ErrDeleteForbidden
	}

	existing, err := s.payments.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.payments.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}

	s.audit.Record(ctx, &caller.ID, model.ActionDelete, "payment", &id, paymentSnapshot(existing), caller.IP)
	return nil
}

// SubmitProof is the one-way pending → income transition: it sets the proof
// and flips the type in a single statement.
func (s *PaymentService) SubmitProof(ctx context.Context, id int64, proof string, caller model.Caller) error {
	existing, err := s.payments.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPaymentNotFound
	}
	if err != nil {
		return err
	}

	if existing.Type != model.PaymentPending {
		return ErrProofNotPending
	}

	if !model.CanSubmitProof(caller, existing) {
		return ErrProofForbidden
	}

	oldSnapshot := paymentSnapshot(existing)

	if err := s.payments.UpdateProofAndType(ctx, id, proof, model.PaymentIncome); err != nil {
		return fmt.Errorf("submit proof: %w", err)
	}

	newSnapshot := paymentSnapshot(existing)
	newSnapshot["proof"] = model.ProofRedacted
	newSnapshot["type"] = string(model.PaymentIncome)

	s.audit.Record(ctx, &caller.ID, model.ActionUpdate, "payment", &id,
		model.UpdateDetails(oldSnapshot, newSnapshot), caller.IP)
	prom.Inc(prom.SystemPayments, prom.MetricProofSubmitted)
	return nil
}

// effectiveType honors an explicit type only for admins; everyone else gets
// the cost center's type. Only admins may introduce pending this way.
func (s *PaymentService) effectiveType(requested model.PaymentType, cc *model.CostCenter, caller model.Caller) model.PaymentType {
	if caller.IsAdmin() && requested != "" {
		return requested
	}
	return model.PaymentType(cc.Type)
}

// paymentSnapshot is the audit payload for a payment. The proof blob never
// reaches the log, only the redaction marker.
func paymentSnapshot(p *model.Payment) map[string]any {
	var proof any
	if p.Proof != nil && *p.Proof != "" {
		proof = model.ProofRedacted
	}
	var unitID any
	if p.UnitID != nil {
		unitID = *p.UnitID
	}
	return map[string]any{
		"date":           p.Date,
		"type":           string(p.Type),
		"amount":         p.Amount,
		"proof":          proof,
		"description":    p.Description,
		"unit_id":        unitID,
		"cost_center_id": p.CostCenterID,
	}
}
