package model

// Resource is a bookable seat, desk, room or console.
type Resource struct {
	BaseModel
	Name         string `gorm:"size:256;not null" json:"name"`
	ResourceType string `gorm:"size:64;not null" json:"resourceType"`
	RatePerHour  int64  `gorm:"not null;check:rate_per_hour >= 0" json:"ratePerHour"`
	// MaxPrice caps a single session's time charge; 0 disables the cap.
	MaxPrice    int64 `gorm:"not null;default:0;check:max_price >= 0" json:"maxPrice"`
	IsAvailable bool  `gorm:"not null;default:true" json:"isAvailable"`
}
