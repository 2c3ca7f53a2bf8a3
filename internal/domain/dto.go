package domain

import (
	"time"

	"github.com/google/uuid"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// PaginatedResponse wraps a paginated list result
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"totalPages"`
}

// UserDTO is the public representation of a user
type UserDTO struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Phone     string       `json:"phone,omitempty"`
	Role      Role         `json:"role"`
	ManagedBy *uuid.UUID   `json:"managedBy,omitempty"`
	Line      *ProductLine `json:"line,omitempty"`
	AreaID    *string      `json:"areaId,omitempty"`
	IsActive  bool         `json:"isActive"`
	CreatedAt string       `json:"createdAt"` // ISO 8601
}

// ProfileStatsDTO holds aggregated statistics shown on a user profile
type ProfileStatsDTO struct {
	VisitCount      int `json:"visitCount"`
	OrderCount      int `json:"orderCount"`
	AssignedClinics int `json:"assignedClinics"`
	DirectReports   int `json:"directReports"`
}

// AccessAuditDTO is the access stamp attached to every granted profile read
type AccessAuditDTO struct {
	AccessedBy uuid.UUID `json:"accessedBy"`
	AccessTime time.Time `json:"accessTime"`
	Reason     string    `json:"reason"`
}

// ProfileDTO is the full profile payload returned when access is granted
type ProfileDTO struct {
	UserDTO
	Stats       *ProfileStatsDTO `json:"stats,omitempty"`
	AccessAudit *AccessAuditDTO  `json:"accessAudit"`
}

// CreateUserRequest provisions a new user account
type CreateUserRequest struct {
	Name      string       `json:"name" validate:"required,max=200"`
	Email     string       `json:"email" validate:"required,email"`
	Phone     string       `json:"phone" validate:"max=50"`
	Role      Role         `json:"role" validate:"required"`
	ManagedBy *uuid.UUID   `json:"managedBy,omitempty"`
	Line      *ProductLine `json:"line,omitempty"`
	AreaID    *string      `json:"areaId,omitempty"`
}

// UpdateUserOrgRequest mutates a user's role and organizational tags.
// Only non-nil fields are applied.
type UpdateUserOrgRequest struct {
	Role      *Role        `json:"role,omitempty"`
	ManagedBy *uuid.UUID   `json:"managedBy,omitempty"`
	Line      *ProductLine `json:"line,omitempty"`
	AreaID    *string      `json:"areaId,omitempty"`
}

// ClinicDTO is the public representation of a clinic
type ClinicDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address,omitempty"`
	City        string    `json:"city,omitempty"`
	AreaID      string    `json:"areaId,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	ERPCode     string    `json:"erpCode,omitempty"`
	Specialties []string  `json:"specialties,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   string    `json:"createdAt"` // ISO 8601
}

// CreateClinicRequest registers a new clinic
type CreateClinicRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Address     string   `json:"address" validate:"max=500"`
	City        string   `json:"city" validate:"max=100"`
	AreaID      string   `json:"areaId" validate:"max=100"`
	Phone       string   `json:"phone" validate:"max=50"`
	ERPCode     string   `json:"erpCode" validate:"max=50"`
	Specialties []string `json:"specialties,omitempty"`
}

// DebtStatusResponse is the payload of the clinic debt status query
type DebtStatusResponse struct {
	Snapshot            DebtSnapshot `json:"snapshot"`
	CanOrder            bool         `json:"canOrder"`
	RequiresWarning     bool         `json:"requiresWarning"`
	ColorClassification OrderColor   `json:"colorClassification"`
	Message             string       `json:"message"`
	MessageAr           string       `json:"messageAr"`
}

// ProductDTO is the public representation of a catalog product
type ProductDTO struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Code      string      `json:"code,omitempty"`
	UnitPrice float64     `json:"unitPrice"`
	Line      ProductLine `json:"line,omitempty"`
}

// WarehouseDTO is the public representation of a warehouse
type WarehouseDTO struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	AreaID string    `json:"areaId,omitempty"`
}

// OrderItemRequest is one line item of an order request
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderRequest creates a new order through the authorization workflow
type CreateOrderRequest struct {
	ClinicID                uuid.UUID          `json:"clinicId" validate:"required"`
	WarehouseID             uuid.UUID          `json:"warehouseId" validate:"required"`
	Items                   []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	DebtWarningAcknowledged bool               `json:"debtWarningAcknowledged"`
	DebtOverrideReason      string             `json:"debtOverrideReason" validate:"max=500"`
}

// DebtWarningResponse is the recoverable rejection returned when an order
// hits the warning threshold without acknowledgment. Clients resubmit the
// same request with debtWarningAcknowledged=true.
type DebtWarningResponse struct {
	Error                 string  `json:"error"`
	DebtAmount            float64 `json:"debtAmount"`
	Message               string  `json:"message"`
	MessageAr             string  `json:"messageAr"`
	RequireAcknowledgment bool    `json:"requireAcknowledgment"`
}

// OrderItemDTO is one resolved line item of an order
type OrderItemDTO struct {
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName,omitempty"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	Total       float64   `json:"total"`
}

// OrderDTO is the public representation of an order
type OrderDTO struct {
	ID                 uuid.UUID      `json:"id"`
	CreatedByID        uuid.UUID      `json:"createdById"`
	ClinicID           uuid.UUID      `json:"clinicId"`
	ClinicName         string         `json:"clinicName,omitempty"`
	WarehouseID        uuid.UUID      `json:"warehouseId"`
	Items              []OrderItemDTO `json:"items"`
	TotalAmount        float64        `json:"totalAmount"`
	DebtStatus         DebtTier       `json:"debtStatus"`
	DebtAmount         float64        `json:"debtAmount"`
	DebtWarningShown   bool           `json:"debtWarningShown"`
	DebtOverrideReason string         `json:"debtOverrideReason,omitempty"`
	OrderColor         OrderColor     `json:"orderColor"`
	CreatedAt          string         `json:"createdAt"` // ISO 8601
}

// CreateVisitRequest creates a new field visit
type CreateVisitRequest struct {
	DoctorID              uuid.UUID  `json:"doctorId" validate:"required"`
	ClinicID              uuid.UUID  `json:"clinicId" validate:"required"`
	VisitDate             time.Time  `json:"visitDate" validate:"required"`
	VisitType             VisitType  `json:"visitType" validate:"required"`
	AccompanyingManagerID *uuid.UUID `json:"accompanyingManagerId,omitempty"`
	OtherParticipantID    *uuid.UUID `json:"otherParticipantId,omitempty"`
	Notes                 string     `json:"notes" validate:"max=2000"`
}

// VisitDTO is the public representation of a visit
type VisitDTO struct {
	ID                      uuid.UUID           `json:"id"`
	RequestedByID           uuid.UUID           `json:"requestedById"`
	DoctorID                uuid.UUID           `json:"doctorId"`
	ClinicID                uuid.UUID           `json:"clinicId"`
	ClinicName              string              `json:"clinicName,omitempty"`
	VisitDate               string              `json:"visitDate"` // ISO 8601
	VisitType               VisitType           `json:"visitType"`
	AccompanyingManagerID   *uuid.UUID          `json:"accompanyingManagerId,omitempty"`
	AccompanyingManagerName string              `json:"accompanyingManagerName,omitempty"`
	AccompanyingManagerRole *Role               `json:"accompanyingManagerRole,omitempty"`
	OtherParticipantID      *uuid.UUID          `json:"otherParticipantId,omitempty"`
	OtherParticipantName    string              `json:"otherParticipantName,omitempty"`
	OtherParticipantRole    *Role               `json:"otherParticipantRole,omitempty"`
	ParticipantsCount       int                 `json:"participantsCount"`
	ParticipantsDetails     []ParticipantDetail `json:"participantsDetails"`
	Status                  VisitStatus         `json:"status"`
	Notes                   string              `json:"notes,omitempty"`
	Attachments             []FileDTO           `json:"attachments,omitempty"`
	CreatedAt               string              `json:"createdAt"` // ISO 8601
}

// FileDTO is the public representation of an uploaded attachment
type FileDTO struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   string    `json:"createdAt"` // ISO 8601
}

// AuditLogDTO is the public representation of an audit trail entry
type AuditLogDTO struct {
	ID          uuid.UUID   `json:"id"`
	UserID      *uuid.UUID  `json:"userId,omitempty"`
	UserName    string      `json:"userName,omitempty"`
	UserRole    Role        `json:"userRole,omitempty"`
	Action      AuditAction `json:"action"`
	EntityType  string      `json:"entityType"`
	EntityID    *uuid.UUID  `json:"entityId,omitempty"`
	Path        string      `json:"path,omitempty"`
	StatusCode  int         `json:"statusCode,omitempty"`
	PerformedAt time.Time   `json:"performedAt"`
}
