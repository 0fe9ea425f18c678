package models

import "time"

// Customer kinds
const (
	KindIndividual   = "individual"
	KindOrganization = "organization"
)

type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Kind    string `gorm:"not null" json:"kind"` // individual | organization
	HoTen   string `json:"ho_ten"`               // individual name
	OrgName string `json:"org_name"`             // organization name
	Phone   string `gorm:"index" json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`

	Candidates    []Candidate        `json:"candidates,omitempty"`
	Registrations []RegistrationForm `json:"registrations,omitempty"`
}

// DisplayName picks the name field that matches the customer kind.
func (c Customer) DisplayName() string {
	if c.Kind == KindOrganization {
		return c.OrgName
	}
	return c.HoTen
}

// Candidate is a person who sits exams on behalf of a customer.
type Candidate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CustomerID uint      `gorm:"index;not null" json:"customer_id"`
	FullName   string    `json:"full_name"`
	BirthDate  time.Time `json:"birth_date"`
	IdentityNo string    `json:"identity_no"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
}

type Certificate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Code string `gorm:"uniqueIndex;not null" json:"code"` // e.g. TOEIC, IELTS
	Name string `json:"name"`
	Fee  int64  `json:"fee"` // VND per candidate
}

// Session status
const (
	SessionNotHeld = "not_held"
	SessionHeld    = "held"
)

type ExamSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CertificateID uint         `gorm:"index" json:"certificate_id"`
	Certificate   *Certificate `json:"certificate,omitempty"`
	ScheduledAt   time.Time    `json:"scheduled_at"`
	Location      string       `json:"location"`
	Seats         int          `json:"seats"`
	Status        string       `gorm:"default:not_held" json:"status"` // not_held | held
}

// Room status. RoomFull is never stored; it is derived from the live count.
const (
	RoomAvailable   = "available"
	RoomMaintenance = "maintenance"
	RoomFull        = "full"
)

type ExamRoom struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name     string `gorm:"uniqueIndex;not null" json:"name"`
	Building string `json:"building"`
	Capacity int    `gorm:"not null" json:"capacity"`
	Status   string `gorm:"default:available" json:"status"` // available | maintenance
	Note     string `json:"note"`
}

// Form status shared by registrations and extensions.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type RegistrationForm struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CustomerID uint       `gorm:"index;not null" json:"customer_id"`
	SessionID  uint       `gorm:"index;not null" json:"session_id"`
	Status     string     `gorm:"not null;default:pending" json:"status"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
}

// Ticket status
const (
	TicketNotTaken = "not_taken"
	TicketTaken    = "taken"
)

// MaxExtensions is how many extension forms a ticket may ever carry.
const MaxExtensions = 2

type ExamTicket struct {
	TicketID  string    `gorm:"primaryKey" json:"ticket_id"` // uuid
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CandidateNumber string `gorm:"uniqueIndex;not null" json:"candidate_number"` // e.g. SBD-1A2B3C4D
	CandidateID     uint   `gorm:"index" json:"candidate_id"`
	CustomerID      uint   `gorm:"index" json:"customer_id"`
	RegistrationID  uint   `gorm:"index" json:"registration_id"`
	SessionID       uint   `gorm:"index" json:"session_id"`
	RoomID          *uint  `gorm:"index" json:"room_id"` // nil until assigned
	Status          string `gorm:"not null;default:not_taken" json:"status"`
	ExtensionCount  int    `gorm:"not null;default:0" json:"extension_count"` // never decremented
}

type ExtensionForm struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TicketID     string     `gorm:"index;not null" json:"ticket_id"`
	NewSessionID uint       `gorm:"not null" json:"new_session_id"`
	Reason       string     `json:"reason"`
	SpecialCase  bool       `json:"special_case"`
	Status       string     `gorm:"not null;default:pending" json:"status"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
}

// Certificate receipt status on a result
const (
	CertNotReceived = "not_received"
	CertReceived    = "received"
)

type ExamResult struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CandidateNumber   string  `gorm:"uniqueIndex;not null" json:"candidate_number"`
	Score             float64 `gorm:"not null" json:"score"`
	Grader            string  `json:"grader"`
	Proctor           string  `json:"proctor"`
	CertificateStatus string  `gorm:"not null;default:not_received" json:"certificate_status"`
}

// PassScore is the minimum score recorded as passed on the ledger.
const PassScore = 50

// CertificateLedger is the per-candidate summary used for certificate issuance.
type CertificateLedger struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CandidateNumber string  `gorm:"uniqueIndex:idx_ledger_candidate_cert;not null" json:"candidate_number"`
	CertificateID   uint    `gorm:"uniqueIndex:idx_ledger_candidate_cert;not null" json:"certificate_id"`
	Score           float64 `json:"score"`
	Passed          bool    `json:"passed"`
}

// Invoice status
const (
	InvoiceUnpaid = "unpaid"
	InvoicePaid   = "paid"
)

type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RegistrationID uint       `gorm:"uniqueIndex;not null" json:"registration_id"`
	CustomerID     uint       `gorm:"index" json:"customer_id"`
	Amount         int64      `json:"amount"` // VND
	Status         string     `gorm:"not null;default:unpaid" json:"status"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
}

// All lists every table in migration order.
func All() []any {
	return []any{
		&Customer{},
		&Candidate{},
		&Certificate{},
		&ExamSession{},
		&ExamRoom{},
		&RegistrationForm{},
		&ExamTicket{},
		&ExtensionForm{},
		&ExamResult{},
		&CertificateLedger{},
		&Invoice{},
	}
}
