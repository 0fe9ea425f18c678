package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/certhub/examdesk/internal/models"
)

func issueInvoiceTx(tx *gorm.DB, b registrationBundle, tickets int) (models.Invoice, error) {
	inv := models.Invoice{
		RegistrationID: b.Reg.ID,
		CustomerID:     b.Customer.ID,
		Amount:         b.Certificate.Fee * int64(tickets),
		Status:         models.InvoiceUnpaid,
	}
	if err := tx.Create(&inv).Error; err != nil {
		return inv, storeErr("create invoice", err)
	}
	return inv, nil
}

// MarkInvoicePaid settles an unpaid invoice.
func (s *Service) MarkInvoicePaid(ctx context.Context, id uint) (err error) {
	defer func(start time.Time) { s.finish(ctx, "invoice_paid", start, err) }(time.Now())

	return s.tx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&models.Invoice{}).
			Where("id = ? AND status = ?", id, models.InvoiceUnpaid).
			Updates(map[string]any{"status": models.InvoicePaid, "paid_at": s.now()})
		if res.Error != nil {
			return storeErr("mark invoice paid", res.Error)
		}
		if res.RowsAffected == 1 {
			return nil
		}
		var inv models.Invoice
		if err := tx.First(&inv, id).Error; err != nil {
			return lookupErr("invoice", err)
		}
		return fmt.Errorf("invoice %d already %s: %w", id, inv.Status, ErrInvalidTransition)
	})
}

// ListInvoices returns invoices newest first, optionally by status.
func (s *Service) ListInvoices(ctx context.Context, status string) ([]models.Invoice, error) {
	q := s.conn(ctx).Order("created_at desc, id desc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.Invoice
	if err := q.Find(&out).Error; err != nil {
		return nil, storeErr("list invoices", err)
	}
	return out, nil
}

// InvoiceForRegistration returns the invoice issued on approval.
func (s *Service) InvoiceForRegistration(ctx context.Context, registrationID uint) (models.Invoice, error) {
	var inv models.Invoice
	if err := s.conn(ctx).Where("registration_id = ?", registrationID).First(&inv).Error; err != nil {
		return inv, lookupErr("invoice", err)
	}
	return inv, nil
}
