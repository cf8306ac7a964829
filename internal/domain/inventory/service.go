package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dentix/dentix/internal/platform/apperr"
	"github.com/dentix/dentix/internal/platform/auth"
	"github.com/dentix/dentix/internal/platform/db"
	"github.com/dentix/dentix/internal/platform/validation"
)

const (
	msgSupplyNotFound   = "supply not found"
	msgSupplierNotFound = "supplier not found"

	// MovementsLimit caps the movements listing.
	MovementsLimit = 100
)

var (
	supplyLookupFields   = []string{"id", "code", "name", "category"}
	supplierLookupFields = []string{"id", "code", "name", "business_name"}
)

type Service struct {
	supplies  SupplyRepository
	suppliers SupplierRepository
	postings  PostingRepository
	stock     StockRepository
	refs      References
	tx        db.Transactor
	validate  *validator.Validate
}

func NewService(supplies SupplyRepository, suppliers SupplierRepository, postings PostingRepository,
	stock StockRepository, refs References, tx db.Transactor, v *validator.Validate) *Service {
	return &Service{
		supplies:  supplies,
		suppliers: suppliers,
		postings:  postings,
		stock:     stock,
		refs:      refs,
		tx:        tx,
		validate:  v,
	}
}

func allowed(field string, fields []string) bool {
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}

func lookupError(fields []string) error {
	return apperr.BadRequest("invalid filter field, use: " +
		strings.Join(fields[:len(fields)-1], ", ") + " or " + fields[len(fields)-1])
}

// -- Supplies --

func (s *Service) CreateSupply(ctx context.Context, in *SupplyInput) (*Supply, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	if in.Code == nil || in.Name == nil {
		return nil, apperr.BadRequest("code and name are required")
	}
	if err := s.checkSupplier(ctx, in.MainSupplier); err != nil {
		return nil, err
	}

	sp := &Supply{
		Code:              *in.Code,
		Name:              *in.Name,
		Description:       in.Description,
		Category:          in.Category,
		UnitMeasure:       in.UnitMeasure,
		Presentation:      in.Presentation,
		MainSupplier:      in.MainSupplier,
		WarehouseLocation: in.WarehouseLocation,
	}
	if in.UnitCost != nil {
		sp.UnitCost = *in.UnitCost
	}
	if in.SalePrice != nil {
		sp.SalePrice = *in.SalePrice
	}
	if in.MinStock != nil {
		sp.MinStock = *in.MinStock
	}
	if in.MaxStock != nil {
		sp.MaxStock = *in.MaxStock
	}
	if email := auth.EmailFromContext(ctx); email != "" {
		sp.CreatedBy = &email
	}

	if err := s.supplies.Create(ctx, sp); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, apperr.Conflict("a supply with this code already exists")
		}
		if db.IsForeignKeyViolation(err) {
			return nil, apperr.NotFound(msgSupplierNotFound)
		}
		return nil, apperr.Internal("error creating supply", err)
	}
	return sp, nil
}

func (s *Service) GetSupply(ctx context.Context, id int64) (*Supply, error) {
	sp, err := s.supplies.GetByID(ctx, id)
	if err != nil {
		return nil, db.Classify(err, msgSupplyNotFound, "error fetching supply")
	}
	return sp, nil
}

// LookupSupplies matches supplies on a single field. An empty match is
// NotFound.
func (s *Service) LookupSupplies(ctx context.Context, field, value string) ([]*Supply, error) {
	if !allowed(field, supplyLookupFields) {
		return nil, lookupError(supplyLookupFields)
	}
	items, err := s.supplies.Lookup(ctx, field, value)
	if err != nil {
		return nil, db.Classify(err, msgSupplyNotFound, "error fetching supplies")
	}
	if len(items) == 0 {
		return nil, apperr.NotFound("no supplies found")
	}
	return items, nil
}

func (s *Service) ListSupplies(ctx context.Context, params map[string]string, limit, offset int) ([]*Supply, int, error) {
	items, total, err := s.supplies.List(ctx, params, limit, offset)
	if err != nil {
		return nil, 0, db.Classify(err, msgSupplyNotFound, "error listing supplies")
	}
	return items, total, nil
}

func (s *Service) UpdateSupply(ctx context.Context, id int64, in *SupplyInput) (*Supply, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}

	patch := &db.Patch{}
	if in.Code != nil {
		patch.Set("code", *in.Code)
	}
	if in.Name != nil {
		patch.Set("name", *in.Name)
	}
	if in.Description != nil {
		patch.Set("description", *in.Description)
	}
	if in.Category != nil {
		patch.Set("category", *in.Category)
	}
	if in.UnitMeasure != nil {
		patch.Set("unit_measure", *in.UnitMeasure)
	}
	if in.Presentation != nil {
		patch.Set("presentation", *in.Presentation)
	}
	if in.UnitCost != nil {
		patch.Set("unit_cost", *in.UnitCost)
	}
	if in.SalePrice != nil {
		patch.Set("sale_price", *in.SalePrice)
	}
	if in.MinStock != nil {
		patch.Set("min_stock", *in.MinStock)
	}
	if in.MaxStock != nil {
		patch.Set("max_stock", *in.MaxStock)
	}
	if in.MainSupplier != nil {
		patch.Set("main_supplier", *in.MainSupplier)
	}
	if in.WarehouseLocation != nil {
		patch.Set("warehouse_location", *in.WarehouseLocation)
	}
	if patch.Empty() {
		return nil, apperr.BadRequest("no fields to update")
	}
	if err := s.checkSupplier(ctx, in.MainSupplier); err != nil {
		return nil, err
	}
	if email := auth.EmailFromContext(ctx); email != "" {
		patch.Set("updated_by", email)
	}

	sp, err := s.supplies.Update(ctx, id, patch)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, apperr.Conflict("a supply with this code already exists")
		}
		return nil, db.Classify(err, msgSupplyNotFound, "error updating supply")
	}
	return sp, nil
}

func (s *Service) DeleteSupply(ctx context.Context, id int64) error {
	if err := s.supplies.SoftDelete(ctx, id, auth.EmailFromContext(ctx)); err != nil {
		return db.Classify(err, msgSupplyNotFound, "error deleting supply")
	}
	return nil
}

// checkSupplier confirms an optional supplier reference belongs to the
// tenant. The foreign key alone does not scope by tenant.
func (s *Service) checkSupplier(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	if _, err := s.suppliers.GetByID(ctx, *id); err != nil {
		return db.Classify(err, msgSupplierNotFound, "error checking supplier")
	}
	return nil
}

// -- Suppliers --

func (s *Service) CreateSupplier(ctx context.Context, in *SupplierInput) (*Supplier, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	if in.Code == nil || in.Name == nil {
		return nil, apperr.BadRequest("code and name are required")
	}

	sp := &Supplier{
		Code:         *in.Code,
		Name:         *in.Name,
		BusinessName: in.BusinessName,
		TaxID:        in.TaxID,
		Address:      in.Address,
		Phone:        in.Phone,
		Email:        in.Email,
		MainContact:  in.MainContact,
	}
	if err := s.suppliers.Create(ctx, sp); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, apperr.Conflict("a supplier with this code already exists")
		}
		return nil, apperr.Internal("error creating supplier", err)
	}
	return sp, nil
}

func (s *Service) GetSupplier(ctx context.Context, id int64) (*Supplier, error) {
	sp, err := s.suppliers.GetByID(ctx, id)
	if err != nil {
		return nil, db.Classify(err, msgSupplierNotFound, "error fetching supplier")
	}
	return sp, nil
}

func (s *Service) LookupSuppliers(ctx context.Context, field, value string) ([]*Supplier, error) {
	if !allowed(field, supplierLookupFields) {
		return nil, lookupError(supplierLookupFields)
	}
	items, err := s.suppliers.Lookup(ctx, field, value)
	if err != nil {
		return nil, db.Classify(err, msgSupplierNotFound, "error fetching suppliers")
	}
	if len(items) == 0 {
		return nil, apperr.NotFound("no suppliers found")
	}
	return items, nil
}

func (s *Service) ListSuppliers(ctx context.Context, params map[string]string, limit, offset int) ([]*Supplier, int, error) {
	items, total, err := s.suppliers.List(ctx, params, limit, offset)
	if err != nil {
		return nil, 0, db.Classify(err, msgSupplierNotFound, "error listing suppliers")
	}
	return items, total, nil
}

func (s *Service) UpdateSupplier(ctx context.Context, id int64, in *SupplierInput) (*Supplier, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}

	patch := &db.Patch{}
	if in.Code != nil {
		patch.Set("code", *in.Code)
	}
	if in.Name != nil {
		patch.Set("name", *in.Name)
	}
	if in.BusinessName != nil {
		patch.Set("business_name", *in.BusinessName)
	}
	if in.TaxID != nil {
		patch.Set("tax_id", *in.TaxID)
	}
	if in.Address != nil {
		patch.Set("address", *in.Address)
	}
	if in.Phone != nil {
		patch.Set("phone", *in.Phone)
	}
	if in.Email != nil {
		patch.Set("email", *in.Email)
	}
	if in.MainContact != nil {
		patch.Set("main_contact", *in.MainContact)
	}
	if patch.Empty() {
		return nil, apperr.BadRequest("no fields to update")
	}

	sp, err := s.suppliers.Update(ctx, id, patch)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, apperr.Conflict("a supplier with this code already exists")
		}
		return nil, db.Classify(err, msgSupplierNotFound, "error updating supplier")
	}
	return sp, nil
}

func (s *Service) DeleteSupplier(ctx context.Context, id int64) error {
	if err := s.suppliers.SoftDelete(ctx, id); err != nil {
		return db.Classify(err, msgSupplierNotFound, "error deleting supplier")
	}
	return nil
}

// -- Postings --

func transactionNumber(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}

func lineSubtotal(quantity, unitCost float64, given *float64) float64 {
	if given != nil {
		return *given
	}
	return quantity * unitCost
}

// PostIncoming records a goods receipt. The header and every detail are
// written in one transaction; the stored posting is re-read after commit.
func (s *Service) PostIncoming(ctx context.Context, in *IncomingInput) (*IncomingTransaction, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	if err := s.checkSupplier(ctx, in.SupplierID); err != nil {
		return nil, err
	}

	t := &IncomingTransaction{
		TransactionNumber: transactionNumber("IN"),
		TransactionType:   "purchase",
		SupplierID:        in.SupplierID,
		InvoiceNumber:     in.InvoiceNumber,
		Notes:             in.Notes,
	}
	if in.TransactionNumber != nil && *in.TransactionNumber != "" {
		t.TransactionNumber = *in.TransactionNumber
	}
	if in.TransactionDate != nil {
		t.TransactionDate = *in.TransactionDate
	}
	if in.TransactionType != nil && *in.TransactionType != "" {
		t.TransactionType = *in.TransactionType
	}
	if email := auth.EmailFromContext(ctx); email != "" {
		t.CreatedBy = &email
	}

	details := make([]*IncomingDetail, len(in.Details))
	var subtotal float64
	for i, d := range in.Details {
		details[i] = &IncomingDetail{
			SupplyID:          d.SupplyID,
			Quantity:          d.Quantity,
			UnitCost:          d.UnitCost,
			Subtotal:          lineSubtotal(d.Quantity, d.UnitCost, d.Subtotal),
			BatchNumber:       d.BatchNumber,
			ExpirationDate:    d.ExpirationDate,
			WarehouseLocation: d.WarehouseLocation,
			Notes:             d.Notes,
		}
		subtotal += details[i].Subtotal
	}
	t.Subtotal = subtotal
	if in.Subtotal != nil {
		t.Subtotal = *in.Subtotal
	}
	if in.TaxAmount != nil {
		t.TaxAmount = *in.TaxAmount
	}
	t.Total = t.Subtotal + t.TaxAmount
	if in.Total != nil {
		t.Total = *in.Total
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.postings.InsertIncoming(ctx, t); err != nil {
			return err
		}
		for _, d := range details {
			d.IncomingID = t.ID
			if err := s.postings.InsertIncomingDetail(ctx, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, postingError(err, "error creating incoming transaction")
	}
	return s.GetIncoming(ctx, t.ID)
}

func (s *Service) GetIncoming(ctx context.Context, id int64) (*IncomingTransaction, error) {
	t, err := s.postings.GetIncoming(ctx, id)
	if err != nil {
		return nil, db.Classify(err, "incoming transaction not found", "error fetching incoming transaction")
	}
	return t, nil
}

func (s *Service) ListIncoming(ctx context.Context, params map[string]string, limit, offset int) ([]*IncomingTransaction, int, error) {
	items, total, err := s.postings.ListIncoming(ctx, params, limit, offset)
	if err != nil {
		return nil, 0, db.Classify(err, "incoming transaction not found", "error listing incoming transactions")
	}
	return items, total, nil
}

// PostOutgoing records stock leaving the clinic, optionally tied to a patient
// and dentist of the tenant.
func (s *Service) PostOutgoing(ctx context.Context, in *OutgoingInput) (*OutgoingTransaction, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	if in.PatientID != nil {
		if err := s.refs.Patient(ctx, *in.PatientID); err != nil {
			return nil, db.Classify(err, "patient not found", "error checking patient")
		}
	}
	if in.DentistID != nil {
		if err := s.refs.Dentist(ctx, *in.DentistID); err != nil {
			return nil, db.Classify(err, "dentist not found", "error checking dentist")
		}
	}

	t := &OutgoingTransaction{
		TransactionNumber: transactionNumber("OUT"),
		TransactionType:   "consumption",
		PatientID:         in.PatientID,
		DentistID:         in.DentistID,
		Reason:            in.Reason,
	}
	if in.TransactionNumber != nil && *in.TransactionNumber != "" {
		t.TransactionNumber = *in.TransactionNumber
	}
	if in.TransactionDate != nil {
		t.TransactionDate = *in.TransactionDate
	}
	if in.TransactionType != nil && *in.TransactionType != "" {
		t.TransactionType = *in.TransactionType
	}
	if email := auth.EmailFromContext(ctx); email != "" {
		t.CreatedBy = &email
	}

	details := make([]*OutgoingDetail, len(in.Details))
	for i, d := range in.Details {
		details[i] = &OutgoingDetail{
			SupplyID:    d.SupplyID,
			Quantity:    d.Quantity,
			UnitCost:    d.UnitCost,
			Subtotal:    lineSubtotal(d.Quantity, d.UnitCost, d.Subtotal),
			BatchNumber: d.BatchNumber,
			Notes:       d.Notes,
		}
		t.Total += details[i].Subtotal
	}
	if in.Total != nil {
		t.Total = *in.Total
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.postings.InsertOutgoing(ctx, t); err != nil {
			return err
		}
		for _, d := range details {
			d.OutgoingID = t.ID
			if err := s.postings.InsertOutgoingDetail(ctx, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, postingError(err, "error creating outgoing transaction")
	}
	return s.GetOutgoing(ctx, t.ID)
}

func (s *Service) GetOutgoing(ctx context.Context, id int64) (*OutgoingTransaction, error) {
	t, err := s.postings.GetOutgoing(ctx, id)
	if err != nil {
		return nil, db.Classify(err, "outgoing transaction not found", "error fetching outgoing transaction")
	}
	return t, nil
}

func (s *Service) ListOutgoing(ctx context.Context, params map[string]string, limit, offset int) ([]*OutgoingTransaction, int, error) {
	items, total, err := s.postings.ListOutgoing(ctx, params, limit, offset)
	if err != nil {
		return nil, 0, db.Classify(err, "outgoing transaction not found", "error listing outgoing transactions")
	}
	return items, total, nil
}

// postingError keeps classified errors and reports everything else, no rows
// included, as Internal with the underlying message.
func postingError(err error, msg string) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Internal(msg, err)
}

// -- Stock --

func (s *Service) CurrentStock(ctx context.Context) ([]*StockLevel, error) {
	items, err := s.stock.CurrentStock(ctx)
	if err != nil {
		return nil, apperr.Internal("error fetching current stock", err)
	}
	return items, nil
}

func (s *Service) LowStock(ctx context.Context) ([]*StockLevel, error) {
	items, err := s.stock.LowStock(ctx)
	if err != nil {
		return nil, apperr.Internal("error fetching low stock", err)
	}
	return items, nil
}

// StockBySupply lists the remaining batches of an active supply.
func (s *Service) StockBySupply(ctx context.Context, supplyID int64) ([]*BatchStock, error) {
	if _, err := s.supplies.GetByID(ctx, supplyID); err != nil {
		return nil, db.Classify(err, msgSupplyNotFound, "error fetching supply")
	}
	items, err := s.stock.StockBySupply(ctx, supplyID)
	if err != nil {
		return nil, apperr.Internal("error fetching supply stock", err)
	}
	return items, nil
}

func (s *Service) Movements(ctx context.Context, params map[string]string) ([]*Movement, error) {
	items, err := s.stock.Movements(ctx, params, MovementsLimit)
	if err != nil {
		return nil, db.Classify(err, "movement not found", "error fetching movements")
	}
	return items, nil
}

func (s *Service) Categories(ctx context.Context) ([]*Category, error) {
	items, err := s.stock.Categories(ctx)
	if err != nil {
		return nil, apperr.Internal("error fetching categories", err)
	}
	return items, nil
}

func (s *Service) Units(ctx context.Context) ([]*Unit, error) {
	items, err := s.stock.Units(ctx)
	if err != nil {
		return nil, apperr.Internal("error fetching units", err)
	}
	return items, nil
}
