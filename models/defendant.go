package models

import "time"

// Defendant is deduplicated across a tenant's schema by its SSN-like natural
// key: create and update paths must look up by SsnID before inserting.
type Defendant struct {
	ID uint `gorm:"primarykey" json:"id"`
	AuditFields

	FirstName  string `gorm:"size:64" json:"first_name"`
	MiddleName string `gorm:"size:64" json:"middle_name"`
	LastName   string `gorm:"size:64" json:"last_name"`
	Suffix     string `gorm:"size:16" json:"suffix"`

	SsnID string     `gorm:"size:16;not null;uniqueIndex" json:"ssn_id"`
	Dob   *time.Time `json:"dob"`

	// Physical descriptors
	Sex       string `gorm:"size:8" json:"sex"`
	Race      string `gorm:"size:16" json:"race"`
	Ethnicity string `gorm:"size:32" json:"ethnicity"`
	EyeColor  string `gorm:"size:16" json:"eye_color"`
	HairColor string `gorm:"size:16" json:"hair_color"`
	Height    string `gorm:"size:16" json:"height"`
	Weight    string `gorm:"size:16" json:"weight"`

	LicenseNumber    string `gorm:"size:32" json:"license_number"`
	LicenseStateCode string `gorm:"size:8" json:"license_state_code"`

	Contacts []DefendantContact `gorm:"foreignKey:DefendantID" json:"contacts,omitempty"`
}

// FullName joins the non-empty name parts
func (d *Defendant) FullName() string {
	name := d.FirstName
	if d.MiddleName != "" {
		name += " " + d.MiddleName
	}
	if d.LastName != "" {
		name += " " + d.LastName
	}
	return name
}
