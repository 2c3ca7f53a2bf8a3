package mapper_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/fieldmed/fieldsales-api/internal/domain"
	"github.com/fieldmed/fieldsales-api/internal/mapper"
)

func TestToOrderDTO(t *testing.T) {
	created := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	order := &domain.Order{
		BaseModel:        domain.BaseModel{ID: uuid.New(), CreatedAt: created},
		CreatedByID:      uuid.New(),
		ClinicID:         uuid.New(),
		WarehouseID:      uuid.New(),
		TotalAmount:      350,
		DebtStatus:       domain.DebtTierWarning,
		DebtAmount:       1500,
		DebtWarningShown: true,
		OrderColor:       domain.OrderColorRed,
		Clinic:           &domain.Clinic{Name: "El Nour Clinic"},
		Items: []domain.OrderItem{
			{
				ProductID: uuid.New(),
				Quantity:  2,
				UnitPrice: 175,
				Total:     350,
				Product:   &domain.Product{Name: "Aspirin"},
			},
		},
	}

	dto := mapper.ToOrderDTO(order)

	assert.Equal(t, order.ID, dto.ID)
	assert.Equal(t, "El Nour Clinic", dto.ClinicName)
	assert.Equal(t, domain.DebtTierWarning, dto.DebtStatus)
	assert.True(t, dto.DebtWarningShown)
	assert.Equal(t, "2026-03-15T09:30:00Z", dto.CreatedAt)
	assert.Len(t, dto.Items, 1)
	assert.Equal(t, "Aspirin", dto.Items[0].ProductName)
}

func TestToOrderDTO_NoPreloads(t *testing.T) {
	dto := mapper.ToOrderDTO(&domain.Order{})
	assert.Empty(t, dto.ClinicName)
	assert.NotNil(t, dto.Items)
	assert.Empty(t, dto.Items)
}

func TestToVisitDTO(t *testing.T) {
	managerRole := domain.RoleLineManager
	visit := &domain.Visit{
		BaseModel:               domain.BaseModel{ID: uuid.New()},
		RequestedByID:           uuid.New(),
		VisitDate:               time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		VisitType:               domain.VisitTypeDuoWithManager,
		AccompanyingManagerName: "Line Manager",
		AccompanyingManagerRole: &managerRole,
		ParticipantsCount:       2,
		Status:                  domain.VisitStatusPending,
	}

	dto := mapper.ToVisitDTO(visit)

	assert.Equal(t, "2026-04-02", dto.VisitDate)
	assert.Equal(t, domain.VisitTypeDuoWithManager, dto.VisitType)
	assert.Equal(t, "Line Manager", dto.AccompanyingManagerName)
	assert.Equal(t, 2, dto.ParticipantsCount)
	assert.Nil(t, dto.Attachments)
}

func TestToUserDTO(t *testing.T) {
	line := domain.LineCardio
	user := &domain.User{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		Name:      "Rep",
		Email:     "rep@fieldmed.io",
		Role:      domain.RoleMedicalRep,
		Line:      &line,
		IsActive:  true,
	}

	dto := mapper.ToUserDTO(user)

	assert.Equal(t, user.ID, dto.ID)
	assert.Equal(t, domain.RoleMedicalRep, dto.Role)
	assert.Equal(t, &line, dto.Line)
	assert.True(t, dto.IsActive)
}
