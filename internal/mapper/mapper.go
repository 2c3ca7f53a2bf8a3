package mapper

import (
	"github.com/fieldmed/fieldsales-api/internal/domain"
)

const timeLayout = "2006-01-02T15:04:05Z"

// ToUserDTO converts User to UserDTO
func ToUserDTO(user *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
		ManagedBy: user.ManagedBy,
		Line:      user.Line,
		AreaID:    user.AreaID,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt.Format(timeLayout),
	}
}

// ToClinicDTO converts Clinic to ClinicDTO
func ToClinicDTO(clinic *domain.Clinic) domain.ClinicDTO {
	return domain.ClinicDTO{
		ID:          clinic.ID,
		Name:        clinic.Name,
		Address:     clinic.Address,
		City:        clinic.City,
		AreaID:      clinic.AreaID,
		Phone:       clinic.Phone,
		ERPCode:     clinic.ERPCode,
		Specialties: clinic.Specialties,
		IsActive:    clinic.IsActive,
		CreatedAt:   clinic.CreatedAt.Format(timeLayout),
	}
}

// ToProductDTO converts Product to ProductDTO
func ToProductDTO(product *domain.Product) domain.ProductDTO {
	return domain.ProductDTO{
		ID:        product.ID,
		Name:      product.Name,
		Code:      product.Code,
		UnitPrice: product.UnitPrice,
		Line:      product.Line,
	}
}

// ToWarehouseDTO converts Warehouse to WarehouseDTO
func ToWarehouseDTO(warehouse *domain.Warehouse) domain.WarehouseDTO {
	return domain.WarehouseDTO{
		ID:     warehouse.ID,
		Name:   warehouse.Name,
		AreaID: warehouse.AreaID,
	}
}

// ToOrderDTO converts Order to OrderDTO
func ToOrderDTO(order *domain.Order) domain.OrderDTO {
	dto := domain.OrderDTO{
		ID:                 order.ID,
		CreatedByID:        order.CreatedByID,
		ClinicID:           order.ClinicID,
		WarehouseID:        order.WarehouseID,
		TotalAmount:        order.TotalAmount,
		DebtStatus:         order.DebtStatus,
		DebtAmount:         order.DebtAmount,
		DebtWarningShown:   order.DebtWarningShown,
		DebtOverrideReason: order.DebtOverrideReason,
		OrderColor:         order.OrderColor,
		CreatedAt:          order.CreatedAt.Format(timeLayout),
	}

	if order.Clinic != nil {
		dto.ClinicName = order.Clinic.Name
	}

	dto.Items = make([]domain.OrderItemDTO, 0, len(order.Items))
	for i := range order.Items {
		dto.Items = append(dto.Items, ToOrderItemDTO(&order.Items[i]))
	}

	return dto
}

// ToOrderItemDTO converts OrderItem to OrderItemDTO
func ToOrderItemDTO(item *domain.OrderItem) domain.OrderItemDTO {
	dto := domain.OrderItemDTO{
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		Total:     item.Total,
	}
	if item.Product != nil {
		dto.ProductName = item.Product.Name
	}
	return dto
}

// ToVisitDTO converts Visit to VisitDTO
func ToVisitDTO(visit *domain.Visit) domain.VisitDTO {
	dto := domain.VisitDTO{
		ID:                      visit.ID,
		RequestedByID:           visit.RequestedByID,
		DoctorID:                visit.DoctorID,
		ClinicID:                visit.ClinicID,
		VisitDate:               visit.VisitDate.Format("2006-01-02"),
		VisitType:               visit.VisitType,
		AccompanyingManagerID:   visit.AccompanyingManagerID,
		AccompanyingManagerName: visit.AccompanyingManagerName,
		AccompanyingManagerRole: visit.AccompanyingManagerRole,
		OtherParticipantID:      visit.OtherParticipantID,
		OtherParticipantName:    visit.OtherParticipantName,
		OtherParticipantRole:    visit.OtherParticipantRole,
		ParticipantsCount:       visit.ParticipantsCount,
		ParticipantsDetails:     visit.ParticipantsDetails,
		Status:                  visit.Status,
		Notes:                   visit.Notes,
		CreatedAt:               visit.CreatedAt.Format(timeLayout),
	}

	if visit.Clinic != nil {
		dto.ClinicName = visit.Clinic.Name
	}

	if len(visit.Attachments) > 0 {
		dto.Attachments = make([]domain.FileDTO, 0, len(visit.Attachments))
		for i := range visit.Attachments {
			dto.Attachments = append(dto.Attachments, ToFileDTO(&visit.Attachments[i]))
		}
	}

	return dto
}

// ToFileDTO converts File to FileDTO
func ToFileDTO(file *domain.File) domain.FileDTO {
	return domain.FileDTO{
		ID:          file.ID,
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Size:        file.Size,
		CreatedAt:   file.CreatedAt.Format(timeLayout),
	}
}

// ToAuditLogDTO converts AuditLog to AuditLogDTO
func ToAuditLogDTO(log *domain.AuditLog) domain.AuditLogDTO {
	return domain.AuditLogDTO{
		ID:          log.ID,
		UserID:      log.UserID,
		UserName:    log.UserName,
		UserRole:    log.UserRole,
		Action:      log.Action,
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		Path:        log.Path,
		StatusCode:  log.StatusCode,
		PerformedAt: log.PerformedAt,
	}
}
