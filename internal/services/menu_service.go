package services

import "github.com/staynest/booking-backend/internal/models"

var (
	statisticsItem = models.MenuItem{Label: "Statistics", Path: "/dashboard", Icon: "chart"}

	guestItems = []models.MenuItem{
		{Label: "My Bookings", Path: "/dashboard/my-bookings", Icon: "calendar"},
		{Label: "Become A Host", Path: "/dashboard/become-host", Icon: "user-plus"},
	}
	hostItems = []models.MenuItem{
		{Label: "Add Room", Path: "/dashboard/add-room", Icon: "plus"},
		{Label: "My Listings", Path: "/dashboard/my-listings", Icon: "home"},
		{Label: "Manage Bookings", Path: "/dashboard/manage-bookings", Icon: "clipboard"},
	}
	adminItems = []models.MenuItem{
		{Label: "Manage Users", Path: "/dashboard/manage-users", Icon: "users"},
	}
)

// MenuService builds the dashboard navigation for a role
type MenuService struct{}

// NewMenuService creates a new menu service
func NewMenuService() *MenuService {
	return &MenuService{}
}

// ItemsFor returns Statistics followed by the role's own entries.
// Unknown roles only see Statistics.
func (s *MenuService) ItemsFor(role string) []models.MenuItem {
	items := []models.MenuItem{statisticsItem}
	switch role {
	case models.RoleGuest:
		items = append(items, guestItems...)
	case models.RoleHost:
		items = append(items, hostItems...)
	case models.RoleAdmin:
		items = append(items, adminItems...)
	}
	return items
}
