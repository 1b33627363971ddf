package models

// Charge is a statute-level charge definition shared across case records
type Charge struct {
	ID uint `gorm:"primarykey" json:"id"`
	AuditFields

	ChargeCode        string `gorm:"size:32;not null" json:"charge_code"`
	ChargeDescription string `gorm:"type:text" json:"charge_description"`
	ChargeType        string `gorm:"size:32" json:"charge_type"`
}

// CaseChargeAssociation links one CaseRecord to one Charge. It is a pure
// join entity: updates replace a case's associations wholesale rather than
// diffing them.
type CaseChargeAssociation struct {
	ID uint `gorm:"primarykey" json:"id"`
	AuditFields

	CaseRecordID uint    `gorm:"not null;index" json:"case_record_id"`
	ChargeID     uint    `gorm:"not null;index" json:"charge_id"`
	Charge       *Charge `gorm:"foreignKey:ChargeID" json:"charge,omitempty"`
}
