package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/certhub/examdesk/internal/models"
)

type CustomerInput struct {
	Kind    string `validate:"required,oneof=individual organization"`
	HoTen   string `validate:"required_if=Kind individual,max=200"`
	OrgName string `validate:"required_if=Kind organization,max=200"`
	Phone   string `validate:"required"`
	Email   string
	Address string `validate:"max=500"`
}

func (in *CustomerInput) normalize() error {
	in.Kind = strings.ToLower(strings.TrimSpace(in.Kind))
	in.HoTen = strings.TrimSpace(in.HoTen)
	in.OrgName = strings.TrimSpace(in.OrgName)
	in.Address = strings.TrimSpace(in.Address)
	if raw := strings.TrimSpace(in.Phone); raw != "" {
		in.Phone = NormPhone(raw)
		if in.Phone == "" {
			return fmt.Errorf("%w: invalid phone %q", ErrValidation, raw)
		}
	}
	email, ok := NormEmail(in.Email)
	if !ok {
		return fmt.Errorf("%w: invalid email %q", ErrValidation, in.Email)
	}
	in.Email = email
	return validateStruct(in)
}

func (in CustomerInput) apply(c *models.Customer) {
	c.Kind = in.Kind
	c.HoTen = in.HoTen
	c.OrgName = in.OrgName
	c.Phone = in.Phone
	c.Email = in.Email
	c.Address = in.Address
}

// CreateCustomer stores a new individual or organization customer.
func (s *Service) CreateCustomer(ctx context.Context, in CustomerInput) (c models.Customer, err error) {
	defer func(start time.Time) { s.finish(ctx, "create_customer", start, err) }(time.Now())

	if err = in.normalize(); err != nil {
		return c, err
	}
	in.apply(&c)
	if err = s.conn(ctx).Create(&c).Error; err != nil {
		return c, storeErr("create customer", err)
	}
	return c, nil
}

// UpdateCustomer overwrites the customer's intake fields.
func (s *Service) UpdateCustomer(ctx context.Context, id uint, in CustomerInput) (c models.Customer, err error) {
	defer func(start time.Time) { s.finish(ctx, "update_customer", start, err) }(time.Now())

	if err = in.normalize(); err != nil {
		return c, err
	}
	err = s.tx(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&c, id).Error; err != nil {
			return lookupErr("customer", err)
		}
		in.apply(&c)
		if err := tx.Save(&c).Error; err != nil {
			return storeErr("update customer", err)
		}
		return nil
	})
	return c, err
}

// GetCustomer returns a customer with candidates and registrations.
func (s *Service) GetCustomer(ctx context.Context, id uint) (models.Customer, error) {
	var c models.Customer
	err := s.conn(ctx).
		Preload("Candidates", func(tx *gorm.DB) *gorm.DB { return tx.Order("id asc") }).
		Preload("Registrations", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at desc") }).
		First(&c, id).Error
	if err != nil {
		return c, lookupErr("customer", err)
	}
	return c, nil
}

// ListCustomers searches by name, organization, email or phone digits.
func (s *Service) ListCustomers(ctx context.Context, query string) ([]models.Customer, error) {
	q := s.conn(ctx).Model(&models.Customer{})
	if query = strings.TrimSpace(query); query != "" {
		like := "%" + strings.ToLower(query) + "%"
		digits := digitsOnly(query)
		digitsLike := "#no_digits#"
		if digits != "" {
			digitsLike = "%" + digits + "%"
		}
		q = q.Where(`
			LOWER(ho_ten)   LIKE ? OR
			LOWER(org_name) LIKE ? OR
			LOWER(email)    LIKE ? OR
			REPLACE(phone,'+','') LIKE ?`, like, like, like, digitsLike)
	}
	var out []models.Customer
	if err := q.Order("id desc").Find(&out).Error; err != nil {
		return nil, storeErr("list customers", err)
	}
	return out, nil
}

// DeleteCustomer removes a customer and everything it owns in one
// transaction: ledger rows, results, extension forms, tickets, invoices,
// registrations and candidates.
func (s *Service) DeleteCustomer(ctx context.Context, id uint) (err error) {
	defer func(start time.Time) { s.finish(ctx, "delete_customer", start, err) }(time.Now())

	return s.tx(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&models.Customer{}, id).Error; err != nil {
			return lookupErr("customer", err)
		}

		var tickets []models.ExamTicket
		if err := tx.Select("ticket_id", "candidate_number").Where("customer_id = ?", id).Find(&tickets).Error; err != nil {
			return storeErr("load tickets", err)
		}
		if len(tickets) > 0 {
			ids := make([]string, len(tickets))
			numbers := make([]string, len(tickets))
			for i, t := range tickets {
				ids[i] = t.TicketID
				numbers[i] = t.CandidateNumber
			}
			steps := []struct {
				op    string
				model any
				where string
				arg   []string
			}{
				{"delete ledger", &models.CertificateLedger{}, "candidate_number IN ?", numbers},
				{"delete results", &models.ExamResult{}, "candidate_number IN ?", numbers},
				{"delete extensions", &models.ExtensionForm{}, "ticket_id IN ?", ids},
			}
			for _, st := range steps {
				if err := tx.Where(st.where, st.arg).Delete(st.model).Error; err != nil {
					return storeErr(st.op, err)
				}
			}
		}

		for _, st := range []struct {
			op    string
			model any
		}{
			{"delete tickets", &models.ExamTicket{}},
			{"delete invoices", &models.Invoice{}},
			{"delete registrations", &models.RegistrationForm{}},
			{"delete candidates", &models.Candidate{}},
		} {
			if err := tx.Where("customer_id = ?", id).Delete(st.model).Error; err != nil {
				return storeErr(st.op, err)
			}
		}
		if err := tx.Delete(&models.Customer{}, id).Error; err != nil {
			return storeErr("delete customer", err)
		}
		return nil
	})
}

type CandidateInput struct {
	FullName   string `validate:"required,max=200"`
	BirthDate  string // YYYY-MM-DD, optional
	IdentityNo string `validate:"max=20"`
	Phone      string
	Email      string
}

// AddCandidate attaches a candidate profile to a customer.
func (s *Service) AddCandidate(ctx context.Context, customerID uint, in CandidateInput) (c models.Candidate, err error) {
	defer func(start time.Time) { s.finish(ctx, "add_candidate", start, err) }(time.Now())

	in.FullName = strings.TrimSpace(in.FullName)
	in.IdentityNo = strings.TrimSpace(in.IdentityNo)
	if err = validateStruct(in); err != nil {
		return c, err
	}
	c = models.Candidate{CustomerID: customerID, FullName: in.FullName, IdentityNo: in.IdentityNo}
	if raw := strings.TrimSpace(in.BirthDate); raw != "" {
		d, perr := time.Parse("2006-01-02", raw)
		if perr != nil {
			return c, fmt.Errorf("%w: birth date %q", ErrValidation, raw)
		}
		c.BirthDate = d
	}
	if raw := strings.TrimSpace(in.Phone); raw != "" {
		if c.Phone = NormPhone(raw); c.Phone == "" {
			return c, fmt.Errorf("%w: invalid phone %q", ErrValidation, raw)
		}
	}
	email, ok := NormEmail(in.Email)
	if !ok {
		return c, fmt.Errorf("%w: invalid email %q", ErrValidation, in.Email)
	}
	c.Email = email

	err = s.tx(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&models.Customer{}, customerID).Error; err != nil {
			return lookupErr("customer", err)
		}
		if err := tx.Create(&c).Error; err != nil {
			return storeErr("create candidate", err)
		}
		return nil
	})
	return c, err
}

// ListCandidates returns the candidate profiles of a customer.
func (s *Service) ListCandidates(ctx context.Context, customerID uint) ([]models.Candidate, error) {
	var out []models.Candidate
	if err := s.conn(ctx).Where("customer_id = ?", customerID).Order("id asc").Find(&out).Error; err != nil {
		return nil, storeErr("list candidates", err)
	}
	return out, nil
}
