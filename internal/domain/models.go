package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// ProductLine represents the pharmaceutical product line a rep or manager is assigned to
type ProductLine string

const (
	LineCardio      ProductLine = "cardio"
	LineCNS         ProductLine = "cns"
	LineGastro      ProductLine = "gastro"
	LineRespiratory ProductLine = "respiratory"
	LineGeneral     ProductLine = "general"
)

// IsValid checks if the ProductLine is a valid enum value
func (pl ProductLine) IsValid() bool {
	switch pl {
	case LineCardio, LineCNS, LineGastro, LineRespiratory, LineGeneral:
		return true
	}
	return false
}

// User represents a user in the system (field reps, managers, back office)
type User struct {
	BaseModel
	Name      string       `gorm:"type:varchar(200);not null"`
	Email     string       `gorm:"type:varchar(255);not null;unique"`
	Phone     string       `gorm:"type:varchar(50)"`
	Role      Role         `gorm:"type:varchar(50);not null;index"`
	ManagedBy *uuid.UUID   `gorm:"type:uuid;index;column:managed_by"` // weak reference, no FK constraint
	Line      *ProductLine `gorm:"type:varchar(50);index"`
	AreaID    *string      `gorm:"type:varchar(100);column:area_id;index"`
	IsActive  bool         `gorm:"not null;default:true;column:is_active"`
}

// Clinic represents a clinic visited by field reps
type Clinic struct {
	BaseModel
	Name        string         `gorm:"type:varchar(200);not null;index"`
	Address     string         `gorm:"type:varchar(500)"`
	City        string         `gorm:"type:varchar(100)"`
	AreaID      string         `gorm:"type:varchar(100);column:area_id;index"`
	Phone       string         `gorm:"type:varchar(50)"`
	ERPCode     string         `gorm:"type:varchar(50);uniqueIndex;column:erp_code"`
	Specialties pq.StringArray `gorm:"type:text[]"`
	IsActive    bool           `gorm:"not null;default:true;column:is_active"`
}

// PaymentStatus represents the settlement state of an invoice
type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusOverdue       PaymentStatus = "overdue"
	PaymentStatusPaid          PaymentStatus = "paid"
)

// IsUnsettled reports whether an invoice with this status still carries debt
func (ps PaymentStatus) IsUnsettled() bool {
	switch ps {
	case PaymentStatusPending, PaymentStatusPartiallyPaid, PaymentStatusOverdue:
		return true
	}
	return false
}

// Invoice represents a clinic invoice synced from the accounting ERP
type Invoice struct {
	BaseModel
	ClinicID          uuid.UUID     `gorm:"type:uuid;not null;index;column:clinic_id"`
	Clinic            *Clinic       `gorm:"foreignKey:ClinicID"`
	InvoiceNumber     string        `gorm:"type:varchar(50);not null;index;column:invoice_number"`
	TotalAmount       float64       `gorm:"type:decimal(15,2);not null;column:total_amount"`
	OutstandingAmount *float64      `gorm:"type:decimal(15,2);column:outstanding_amount"` // nil means full total is outstanding
	PaymentStatus     PaymentStatus `gorm:"type:varchar(50);not null;index;column:payment_status"`
	DueDate           time.Time     `gorm:"type:date;not null;column:due_date"`
	ERPReference      string        `gorm:"type:varchar(100);uniqueIndex;column:erp_reference"`
	SyncedAt          *time.Time    `gorm:"column:synced_at"`
}

// Outstanding returns the invoice's outstanding amount, falling back to the
// total amount when no explicit outstanding figure was recorded.
func (i *Invoice) Outstanding() float64 {
	if i.OutstandingAmount != nil {
		return *i.OutstandingAmount
	}
	return i.TotalAmount
}

// DebtTier classifies a clinic's outstanding debt
type DebtTier string

const (
	DebtTierClear   DebtTier = "clear"
	DebtTierWarning DebtTier = "warning"
	DebtTierBlocked DebtTier = "blocked"
)

// Debt thresholds. The same scale drives both the advisory warning and the
// hard block; there are exactly two cut points.
const (
	DebtWarningThreshold = 1000.0
	DebtBlockedThreshold = 5000.0
)

// DebtSnapshot is a point-in-time aggregate of a clinic's unsettled invoices.
// It is recomputed on every evaluation and never persisted as a live field.
type DebtSnapshot struct {
	ClinicID          uuid.UUID `json:"clinicId"`
	OutstandingAmount float64   `json:"outstandingAmount"`
	OverdueAmount     float64   `json:"overdueAmount"`
	InvoiceCount      int       `json:"invoiceCount"`
	Tier              DebtTier  `json:"tier"`
	// Unavailable marks a degraded snapshot: the invoice source could not be
	// read and the classifier fell back to zero debt rather than failing.
	Unavailable bool      `json:"unavailable,omitempty"`
	ComputedAt  time.Time `json:"computedAt"`
}

// TierFor maps an outstanding amount to its debt tier. Both cut points are
// strict greater-than: exactly 1000 is still clear.
func TierFor(outstanding float64) DebtTier {
	switch {
	case outstanding > DebtBlockedThreshold:
		return DebtTierBlocked
	case outstanding > DebtWarningThreshold:
		return DebtTierWarning
	default:
		return DebtTierClear
	}
}

// OrderColor is the red/green classification stamped on orders
type OrderColor string

const (
	OrderColorGreen OrderColor = "green"
	OrderColorRed   OrderColor = "red"
)

// ColorFor derives the order color from outstanding debt at creation time
func ColorFor(outstanding float64) OrderColor {
	if outstanding > DebtWarningThreshold {
		return OrderColorRed
	}
	return OrderColorGreen
}

// Product represents an orderable product
type Product struct {
	BaseModel
	Name      string      `gorm:"type:varchar(200);not null;index"`
	Code      string      `gorm:"type:varchar(50);unique"`
	UnitPrice float64     `gorm:"type:decimal(15,2);not null;column:unit_price"`
	Line      ProductLine `gorm:"type:varchar(50);index"`
	IsActive  bool        `gorm:"not null;default:true;column:is_active"`
}

// Warehouse represents a distribution warehouse orders are fulfilled from
type Warehouse struct {
	BaseModel
	Name     string `gorm:"type:varchar(200);not null"`
	AreaID   string `gorm:"type:varchar(100);column:area_id;index"`
	IsActive bool   `gorm:"not null;default:true;column:is_active"`
}

// Order represents a product order placed by a field rep for a clinic.
// The debt fields are a historical audit frozen at creation time, not a
// live status.
type Order struct {
	BaseModel
	CreatedByID        uuid.UUID   `gorm:"type:uuid;not null;index;column:created_by_id"`
	CreatedBy          *User       `gorm:"foreignKey:CreatedByID"`
	ClinicID           uuid.UUID   `gorm:"type:uuid;not null;index;column:clinic_id"`
	Clinic             *Clinic     `gorm:"foreignKey:ClinicID"`
	WarehouseID        uuid.UUID   `gorm:"type:uuid;not null;column:warehouse_id"`
	Warehouse          *Warehouse  `gorm:"foreignKey:WarehouseID"`
	Items              []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalAmount        float64     `gorm:"type:decimal(15,2);not null;column:total_amount"`
	DebtStatus         DebtTier    `gorm:"type:varchar(50);not null;column:debt_status"`
	DebtAmount         float64     `gorm:"type:decimal(15,2);not null;column:debt_amount"`
	DebtWarningShown   bool        `gorm:"not null;default:false;column:debt_warning_shown"`
	DebtOverrideReason string      `gorm:"type:varchar(500);column:debt_override_reason"`
	DebtOverrideBy     *uuid.UUID  `gorm:"type:uuid;column:debt_override_by"`
	OrderColor         OrderColor  `gorm:"type:varchar(20);not null;column:order_color"`
}

// OrderItem represents a line item in an order
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index;column:order_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;column:product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID"`
	Quantity  int       `gorm:"not null"`
	UnitPrice float64   `gorm:"type:decimal(15,2);not null;column:unit_price"`
	Total     float64   `gorm:"type:decimal(15,2);not null"`
}

// VisitType declares the participant model of a visit as supplied by the
// caller. It is stored as-is and not cross-checked against the resolved
// participant set.
type VisitType string

const (
	VisitTypeSolo                     VisitType = "SOLO"
	VisitTypeDuoWithManager           VisitType = "DUO_WITH_MANAGER"
	VisitTypeThreeWithManagerAndOther VisitType = "THREE_WITH_MANAGER_AND_OTHER"
)

// IsValid checks if the VisitType is a valid enum value
func (vt VisitType) IsValid() bool {
	switch vt {
	case VisitTypeSolo, VisitTypeDuoWithManager, VisitTypeThreeWithManagerAndOther:
		return true
	}
	return false
}

// ParticipantDetail is one resolved participant of a visit
type ParticipantDetail struct {
	UserID uuid.UUID `json:"userId"`
	Name   string    `json:"name"`
	Role   Role      `json:"role"`
}

// ParticipantDetails is the ordered participant list, requester first,
// stored as JSONB.
type ParticipantDetails []ParticipantDetail

// Value serializes the participant list for storage
func (p ParticipantDetails) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan reads the participant list back from its JSONB column
func (p *ParticipantDetails) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, p)
}

// VisitStatus represents the review state of a visit
type VisitStatus string

const (
	VisitStatusPending  VisitStatus = "pending"
	VisitStatusApproved VisitStatus = "approved"
	VisitStatusRejected VisitStatus = "rejected"
)

// Visit represents a field visit to a doctor at a clinic
type Visit struct {
	BaseModel
	RequestedByID           uuid.UUID          `gorm:"type:uuid;not null;index;column:requested_by_id"`
	RequestedBy             *User              `gorm:"foreignKey:RequestedByID"`
	DoctorID                uuid.UUID          `gorm:"type:uuid;not null;column:doctor_id"`
	ClinicID                uuid.UUID          `gorm:"type:uuid;not null;index;column:clinic_id"`
	Clinic                  *Clinic            `gorm:"foreignKey:ClinicID"`
	VisitDate               time.Time          `gorm:"type:date;not null;column:visit_date"`
	VisitType               VisitType          `gorm:"type:varchar(50);not null;column:visit_type"`
	AccompanyingManagerID   *uuid.UUID         `gorm:"type:uuid;column:accompanying_manager_id"`
	AccompanyingManagerName string             `gorm:"type:varchar(200);column:accompanying_manager_name"`
	AccompanyingManagerRole *Role              `gorm:"type:varchar(50);column:accompanying_manager_role"`
	OtherParticipantID      *uuid.UUID         `gorm:"type:uuid;column:other_participant_id"`
	OtherParticipantName    string             `gorm:"type:varchar(200);column:other_participant_name"`
	OtherParticipantRole    *Role              `gorm:"type:varchar(50);column:other_participant_role"`
	ParticipantsCount       int                `gorm:"not null;default:1;column:participants_count"`
	ParticipantsDetails     ParticipantDetails `gorm:"type:jsonb;column:participants_details"`
	Status                  VisitStatus        `gorm:"type:varchar(50);not null;default:'pending'"`
	Notes                   string             `gorm:"type:text"`
	Attachments             []File             `gorm:"foreignKey:VisitID"`
}

// ProfileAccessLog records a granted profile access; stamped synchronously
// on every allowed profile read.
type ProfileAccessLog struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AccessedUserID uuid.UUID `gorm:"type:uuid;not null;index;column:accessed_user_id"`
	AccessedBy     uuid.UUID `gorm:"type:uuid;not null;index;column:accessed_by"`
	AccessedByRole Role      `gorm:"type:varchar(50);column:accessed_by_role"`
	AccessReason   string    `gorm:"type:varchar(200);column:access_reason"`
	AccessTime     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;column:access_time"`
}

// TableName overrides the default table name
func (ProfileAccessLog) TableName() string {
	return "profile_access_logs"
}

// AuditAction represents the type of audit action
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

// AuditLog represents an audit trail entry for mutating requests
type AuditLog struct {
	ID          uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID      *uuid.UUID  `gorm:"type:uuid;column:user_id"`
	UserName    string      `gorm:"type:varchar(200);column:user_name"`
	UserRole    Role        `gorm:"type:varchar(50);column:user_role"`
	Action      AuditAction `gorm:"type:varchar(50);not null"`
	EntityType  string      `gorm:"type:varchar(50);not null;column:entity_type"`
	EntityID    *uuid.UUID  `gorm:"type:uuid;column:entity_id"`
	Path        string      `gorm:"type:varchar(500)"`
	StatusCode  int         `gorm:"column:status_code"`
	IPAddress   string      `gorm:"type:inet;column:ip_address"`
	RequestID   string      `gorm:"type:varchar(100);column:request_id"`
	PerformedAt time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP;column:performed_at"`
}

// File represents an uploaded visit attachment
type File struct {
	BaseModel
	Filename    string     `gorm:"type:varchar(255);not null"`
	ContentType string     `gorm:"type:varchar(100);not null"`
	Size        int64      `gorm:"not null"`
	StoragePath string     `gorm:"type:varchar(500);not null;unique"`
	VisitID     *uuid.UUID `gorm:"type:uuid;index;column:visit_id"`
	UploadedBy  *uuid.UUID `gorm:"type:uuid;column:uploaded_by"`
}
