package models

// AnganwadiCenter represents an Anganwadi center that workers and
// beneficiaries are attached to
type AnganwadiCenter struct {
	BaseModel
	Name     string `gorm:"type:varchar(100);not null" json:"name"`
	Code     string `gorm:"type:varchar(20);uniqueIndex;not null" json:"code"`
	District string `gorm:"type:varchar(50)" json:"district"`
	Block    string `gorm:"type:varchar(50)" json:"block"`
	Address  string `gorm:"type:varchar(255)" json:"address"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}
