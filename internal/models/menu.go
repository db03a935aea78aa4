package models

// MenuItem is one dashboard navigation entry
type MenuItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
	Icon  string `json:"icon,omitempty"`
}

// MenuResponse is returned by GET /dashboard/menu
type MenuResponse struct {
	Role  string     `json:"role"`
	Items []MenuItem `json:"items"`
}
