package models

// Dashboard is the admin overview returned by the dashboard endpoint.
type Dashboard struct {
	UsersByRole      map[Role]int64   `json:"usersByRole"`
	Inventory        InventorySummary `json:"inventory"`
	RequestsByStatus map[string]int64 `json:"requestsByStatus"`
	ActivePromotions int64            `json:"activePromotions"`
	RecentActivity   []ActivityLog    `json:"recentActivity"`
}

type InventorySummary struct {
	Parts      int64   `json:"parts"`
	Units      int64   `json:"units"`
	StockValue float64 `json:"stockValue"`
	LowStock   int64   `json:"lowStock"`
	OutOfStock int64   `json:"outOfStock"`
}
