package models

import "time"

// Ticket type constants
const (
	TicketTypeTraffic  = "Traffic"
	TicketTypeParking  = "Parking"
	TicketTypeCriminal = "Criminal"
)

// CaseRecord represents a citation/case filed against one defendant.
// All timestamp fields are stored timezone-aware in UTC.
type CaseRecord struct {
	ID uint `gorm:"primarykey" json:"id"`
	AuditFields

	// Identification
	CaseNumber   string `gorm:"size:64;not null;uniqueIndex" json:"case_number"`
	TicketNumber string `gorm:"size:64" json:"ticket_number"`
	TicketType   string `gorm:"size:32" json:"ticket_type"`

	// Temporal fields
	HearingDate    *time.Time `json:"hearing_date"`
	HearingTime    string     `gorm:"size:16" json:"hearing_time"`
	ViolationDate  time.Time  `gorm:"not null;index" json:"violation_date"`
	IssueDatetime  *time.Time `json:"issue_datetime"`
	AllChargeStart *time.Time `json:"all_charge_start"`
	AllChargeEnd   *time.Time `json:"all_charge_end"`

	// Violation details
	ViolationLocation string `gorm:"size:255" json:"violation_location"`
	CountyName        string `gorm:"size:128" json:"county_name"`
	AdditionalNotes   string `gorm:"type:text" json:"additional_notes"`
	ViolationOrder    string `gorm:"size:64" json:"violation_order"`
	WarrantNumber     string `gorm:"size:64" json:"warrant_number"`

	// Vehicle
	VehicleMake                string `gorm:"size:64" json:"vehicle_make"`
	VehicleModel               string `gorm:"size:64" json:"vehicle_model"`
	VehicleYear                string `gorm:"size:8" json:"vehicle_year"`
	VehicleRegistrationPlateNo string `gorm:"size:32" json:"vehicle_registration_plate_no"`

	// Issuing official
	IssuingOfficialName        string `gorm:"size:128" json:"issuing_official_name"`
	IssuingOfficialBadgeNumber string `gorm:"size:32" json:"issuing_official_badge_number"`

	// Every case references exactly one defendant
	DefendantID uint       `gorm:"not null;index" json:"defendant_id"`
	Defendant   *Defendant `gorm:"foreignKey:DefendantID" json:"defendant,omitempty"`

	// Charges attach through pure join rows
	Associations []CaseChargeAssociation `gorm:"foreignKey:CaseRecordID" json:"associations,omitempty"`
}
