package models

type Slider struct {
	BaseModel
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Link        string `json:"link"`
	OrderIndex  int    `json:"order_index"`
	Active      bool   `gorm:"default:true" json:"active"`
}
