package services

import (
	"testing"

	"github.com/staynest/booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func labels(items []models.MenuItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Label
	}
	return out
}

func TestMenuService_ItemsFor(t *testing.T) {
	service := NewMenuService()

	tests := []struct {
		role string
		want []string
	}{
		{models.RoleGuest, []string{"Statistics", "My Bookings", "Become A Host"}},
		{models.RoleHost, []string{"Statistics", "Add Room", "My Listings", "Manage Bookings"}},
		{models.RoleAdmin, []string{"Statistics", "Manage Users"}},
		{"", []string{"Statistics"}},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			assert.Equal(t, tt.want, labels(service.ItemsFor(tt.role)))
		})
	}
}

func TestMenuService_ItemsAreNotShared(t *testing.T) {
	service := NewMenuService()
	items := service.ItemsFor(models.RoleHost)
	items[1].Label = "changed"

	assert.Equal(t, "Add Room", service.ItemsFor(models.RoleHost)[1].Label)
}
