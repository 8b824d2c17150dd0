// internal/models/equipment.go
package models

// Equipment is one physical ICT asset unit available for loan.
// Status is on_loan exactly while one open LoanTransaction references it.
type Equipment struct {
	BaseModel
	TagID     string          `json:"tag_id" gorm:"uniqueIndex;size:50;not null"`
	AssetType string          `json:"asset_type" gorm:"size:100;not null;index"`
	Brand     string          `json:"brand" gorm:"size:100"`
	Model     string          `json:"model" gorm:"size:100"`
	SerialNo  string          `json:"serial_no" gorm:"size:100"`
	Status    EquipmentStatus `json:"status" gorm:"type:varchar(30);default:'available';index"`
	Condition string          `json:"condition" gorm:"size:50"`
	Notes     string          `json:"notes,omitempty" gorm:"type:text"`

	// Relationships
	Transactions []LoanTransaction `json:"transactions,omitempty" gorm:"foreignKey:EquipmentID"`
}

func (e *Equipment) IsAvailable() bool {
	return e.Status == EquipmentStatusAvailable
}
