package models_test

import (
	"testing"

	"transporteuni-api/internal/adapters/persistence/models"
	"transporteuni-api/internal/core/domain"
	"transporteuni-api/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateInactiveRecords(t *testing.T) {
	db := testutil.NewDB(t)

	user := &models.User{
		Email:     "inactive@test.com",
		Password:  "x",
		FirstName: "Test",
		LastName:  "User",
		Role:      string(domain.RolePassenger),
		IsActive:  false,
	}
	require.NoError(t, db.Create(user).Error)

	var storedUser models.User
	require.NoError(t, db.First(&storedUser, user.ID).Error)
	assert.False(t, storedUser.IsActive)

	route := &models.ScheduledRoute{
		Name:        "Rosario - Santa Fe",
		Origin:      models.Location{Address: "Terminal Mariano Moreno", City: "Rosario", Province: "Santa Fe"},
		Destination: models.Location{Address: "Terminal de Ómnibus Santa Fe", City: "Santa Fe", Province: "Santa Fe"},
		Duration:    120,
		BasePrice:   2500,
		IsActive:    false,
	}
	require.NoError(t, db.Create(route).Error)

	var storedRoute models.ScheduledRoute
	require.NoError(t, db.First(&storedRoute, route.ID).Error)
	assert.False(t, storedRoute.IsActive)

	var activeRoutes int64
	require.NoError(t, db.Model(&models.ScheduledRoute{}).Where("is_active = ?", true).Count(&activeRoutes).Error)
	assert.Zero(t, activeRoutes)

	cfg := &models.CompanyConfig{
		CompanyName: "TransporteUni",
		Email:       "info@test.com",
		Phone:       "+54 11 5555-0000",
		Address:     "Retiro",
		IsActive:    false,
	}
	require.NoError(t, db.Create(cfg).Error)

	var storedConfig models.CompanyConfig
	require.NoError(t, db.First(&storedConfig, cfg.ID).Error)
	assert.False(t, storedConfig.IsActive)
}
