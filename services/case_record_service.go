package services

import (
	"errors"
	"fmt"
	"time"

	"pems_api_go/db"
	"pems_api_go/models"

	"gorm.io/gorm"
)

const DefaultPageSize = 10

// ChargeSummary is the flattened charge sub-object in search results
type ChargeSummary struct {
	ChargeID          uint   `json:"charge_id"`
	ChargeCode        string `json:"charge_code"`
	ChargeDescription string `json:"charge_description"`
	ChargeType        string `json:"charge_type"`
}

// CaseSearchResult is one flattened row of the paginated case listing
type CaseSearchResult struct {
	ID            uint            `json:"id"`
	HearingDate   *time.Time      `json:"hearing_date"`
	HearingTime   string          `json:"hearing_time"`
	ViolationDate time.Time       `json:"violation_date"`
	CaseNumber    string          `json:"case_number"`
	TicketNumber  string          `json:"ticket_number"`
	LastName      *string         `json:"last_name"`
	MiddleName    *string         `json:"middle_name"`
	FirstName     *string         `json:"first_name"`
	Charges       []ChargeSummary `json:"charges"`
	CaseType      string          `json:"case_type"`
}

// CaseSearchResponse is the paginated envelope returned to callers
type CaseSearchResponse struct {
	TotalPages   int                `json:"total_pages"`
	TotalRecords int64              `json:"total_records"`
	Result       []CaseSearchResult `json:"result"`
}

// ContactInput carries one incoming contact for reconciliation
type ContactInput struct {
	AddressDeliveryPoint string `json:"address_delivery_point"`
	MailingAddress       string `json:"mailing_address"`
	LocationCityName     string `json:"location_city_name"`
	LocationStateCode    string `json:"location_state_code"`
	LocationPostalCode   string `json:"location_postal_code"`
	PhoneNumber          string `json:"phone_number"`
}

// DefendantInput carries the incoming defendant with its contacts
type DefendantInput struct {
	FirstName        string         `json:"first_name"`
	MiddleName       string         `json:"middle_name"`
	LastName         string         `json:"last_name"`
	Suffix           string         `json:"suffix"`
	SsnID            string         `json:"ssn_id"`
	Dob              *time.Time     `json:"dob"`
	Sex              string         `json:"sex"`
	Race             string         `json:"race"`
	Ethnicity        string         `json:"ethnicity"`
	EyeColor         string         `json:"eye_color"`
	HairColor        string         `json:"hair_color"`
	Height           string         `json:"height"`
	Weight           string         `json:"weight"`
	LicenseNumber    string         `json:"license_number"`
	LicenseStateCode string         `json:"license_state_code"`
	Contacts         []ContactInput `json:"contacts"`
}

// CaseRecordInput is the create/update payload for a case record. Audit
// fields are absent on purpose: they are populated server-side.
type CaseRecordInput struct {
	CaseNumber                 string         `json:"case_number"`
	TicketNumber               string         `json:"ticket_number"`
	TicketType                 string         `json:"ticket_type"`
	HearingDate                *time.Time     `json:"hearing_date"`
	HearingTime                string         `json:"hearing_time"`
	ViolationDate              time.Time      `json:"violation_date"`
	IssueDatetime              *time.Time     `json:"issue_datetime"`
	AllChargeStart             *time.Time     `json:"all_charge_start"`
	AllChargeEnd               *time.Time     `json:"all_charge_end"`
	ViolationLocation          string         `json:"violation_location"`
	CountyName                 string         `json:"county_name"`
	AdditionalNotes            string         `json:"additional_notes"`
	ViolationOrder             string         `json:"violation_order"`
	WarrantNumber              string         `json:"warrant_number"`
	VehicleMake                string         `json:"vehicle_make"`
	VehicleModel               string         `json:"vehicle_model"`
	VehicleYear                string         `json:"vehicle_year"`
	VehicleRegistrationPlateNo string         `json:"vehicle_registration_plate_no"`
	IssuingOfficialName        string         `json:"issuing_official_name"`
	IssuingOfficialBadgeNumber string         `json:"issuing_official_badge_number"`
	Defendant                  DefendantInput `json:"defendant"`
	ChargeIDs                  []uint         `json:"charge_ids"`
}

// CaseRecordDetail is the fetch-by-case-number response: the record with its
// defendant and the flat list of charge ids.
type CaseRecordDetail struct {
	models.CaseRecord
	ChargeIDs []uint `json:"charge_ids"`
}

// joinedCaseQuery builds the case/defendant/association/charge join graph.
// Join fragments are schema-qualified by hand because GORM's naming strategy
// only rewrites model table references.
func joinedCaseQuery(s *db.TenantSession) *gorm.DB {
	return s.Model(&models.CaseRecord{}).
		Joins(fmt.Sprintf("INNER JOIN %s ON defendants.id = case_records.defendant_id", s.Qualified("defendants"))).
		Joins(fmt.Sprintf("INNER JOIN %s ON case_charge_associations.case_record_id = case_records.id", s.Qualified("case_charge_associations"))).
		Joins(fmt.Sprintf("INNER JOIN %s ON charges.id = case_charge_associations.charge_id", s.Qualified("charges")))
}

func applyConditions(tx *gorm.DB, conditions []Condition) *gorm.DB {
	for _, c := range conditions {
		tx = tx.Where(c.Expr, c.Args...)
	}
	return tx
}

// SearchCaseRecords runs the count and page queries for the structured query
// and shapes the flattened result envelope.
func SearchCaseRecords(s *db.TenantSession, query *CaseSearchQuery) (*CaseSearchResponse, error) {
	if query.ViolationStartDate.IsZero() || query.ViolationEndDate.IsZero() {
		return nil, models.NewValidation("violation_start_date and violation_end_date are required")
	}
	if query.NumOfRecords <= 0 {
		query.NumOfRecords = DefaultPageSize
	}

	conditions := BuildCaseFilters(query)

	// The join fans out one row per charge, so both queries collapse
	// duplicates on the case primary key.
	var totalRecords int64
	if err := applyConditions(joinedCaseQuery(s), conditions).
		Distinct("case_records.id").
		Count(&totalRecords).Error; err != nil {
		return nil, fmt.Errorf("failed to count case records: %w", err)
	}

	totalPages := int((totalRecords + int64(query.NumOfRecords) - 1) / int64(query.NumOfRecords))

	response := &CaseSearchResponse{
		TotalPages:   totalPages,
		TotalRecords: totalRecords,
		Result:       []CaseSearchResult{},
	}

	// Page 0 and pages past the end yield an empty result, not an error
	if query.Page < 1 || (totalRecords > 0 && query.Page > totalPages) {
		return response, nil
	}
	offset := (query.Page - 1) * query.NumOfRecords

	var cases []models.CaseRecord
	if err := applyConditions(joinedCaseQuery(s), conditions).
		Distinct("case_records.*").
		Preload("Defendant").
		Preload("Associations.Charge").
		Order("case_records.violation_date DESC, case_records.created_on DESC").
		Offset(offset).
		Limit(query.NumOfRecords).
		Find(&cases).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch case records: %w", err)
	}

	response.Result = formatCaseRecords(cases)
	return response, nil
}

// formatCaseRecords flattens case records for the search envelope. Defendant
// name parts are null-safe; associations with a broken charge reference are
// skipped.
func formatCaseRecords(cases []models.CaseRecord) []CaseSearchResult {
	results := make([]CaseSearchResult, 0, len(cases))
	for i := range cases {
		c := &cases[i]
		result := CaseSearchResult{
			ID:            c.ID,
			HearingDate:   c.HearingDate,
			HearingTime:   c.HearingTime,
			ViolationDate: c.ViolationDate,
			CaseNumber:    c.CaseNumber,
			TicketNumber:  c.TicketNumber,
			CaseType:      c.TicketType,
			Charges:       []ChargeSummary{},
		}
		if c.Defendant != nil {
			result.FirstName = &c.Defendant.FirstName
			result.MiddleName = &c.Defendant.MiddleName
			result.LastName = &c.Defendant.LastName
		}
		for _, assoc := range c.Associations {
			if assoc.Charge == nil {
				continue
			}
			result.Charges = append(result.Charges, ChargeSummary{
				ChargeID:          assoc.Charge.ID,
				ChargeCode:        assoc.Charge.ChargeCode,
				ChargeDescription: assoc.Charge.ChargeDescription,
				ChargeType:        assoc.Charge.ChargeType,
			})
		}
		results = append(results, result)
	}
	return results
}

// reconcileDefendant finds the defendant by natural key and reuses it, or
// inserts it fresh. Contacts reconcile by their composite natural key the
// same way. When overwrite is set (update path), incoming field values are
// written onto matched rows instead of leaving them untouched.
func reconcileDefendant(s *db.TenantSession, input *DefendantInput, overwrite bool) (*models.Defendant, error) {
	var existing models.Defendant
	err := s.Where("ssn_id = ?", input.SsnID).First(&existing).Error
	switch {
	case err == nil:
		if overwrite {
			applyDefendantFields(&existing, input)
			if err := s.Save(&existing).Error; err != nil {
				return nil, translateWriteError(err, "defendant")
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		applyDefendantFields(&existing, input)
		if err := s.Create(&existing).Error; err != nil {
			return nil, translateWriteError(err, "defendant")
		}
	default:
		return nil, fmt.Errorf("failed to look up defendant: %w", err)
	}

	for i := range input.Contacts {
		if err := reconcileContact(s, existing.ID, &input.Contacts[i], overwrite); err != nil {
			return nil, err
		}
	}
	return &existing, nil
}

func reconcileContact(s *db.TenantSession, defendantID uint, input *ContactInput, overwrite bool) error {
	// map condition, not a struct one: empty fields are part of the
	// composite key and must stay in the predicate
	var existing models.DefendantContact
	err := s.Where(map[string]interface{}{
		"defendant_id":           defendantID,
		"address_delivery_point": input.AddressDeliveryPoint,
		"mailing_address":        input.MailingAddress,
		"location_city_name":     input.LocationCityName,
		"location_state_code":    input.LocationStateCode,
		"location_postal_code":   input.LocationPostalCode,
		"phone_number":           input.PhoneNumber,
	}).First(&existing).Error
	switch {
	case err == nil:
		if overwrite {
			applyContactFields(&existing, input)
			if err := s.Save(&existing).Error; err != nil {
				return translateWriteError(err, "contact")
			}
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		contact := models.DefendantContact{DefendantID: defendantID}
		applyContactFields(&contact, input)
		if err := s.Create(&contact).Error; err != nil {
			return translateWriteError(err, "contact")
		}
		return nil
	default:
		return fmt.Errorf("failed to look up contact: %w", err)
	}
}

func applyDefendantFields(d *models.Defendant, input *DefendantInput) {
	d.FirstName = input.FirstName
	d.MiddleName = input.MiddleName
	d.LastName = input.LastName
	d.Suffix = input.Suffix
	d.SsnID = input.SsnID
	d.Dob = models.UTCPtr(input.Dob)
	d.Sex = input.Sex
	d.Race = input.Race
	d.Ethnicity = input.Ethnicity
	d.EyeColor = input.EyeColor
	d.HairColor = input.HairColor
	d.Height = input.Height
	d.Weight = input.Weight
	d.LicenseNumber = input.LicenseNumber
	d.LicenseStateCode = input.LicenseStateCode
}

func applyContactFields(c *models.DefendantContact, input *ContactInput) {
	c.AddressDeliveryPoint = input.AddressDeliveryPoint
	c.MailingAddress = input.MailingAddress
	c.LocationCityName = input.LocationCityName
	c.LocationStateCode = input.LocationStateCode
	c.LocationPostalCode = input.LocationPostalCode
	c.PhoneNumber = input.PhoneNumber
}

func applyCaseFields(c *models.CaseRecord, input *CaseRecordInput) {
	c.CaseNumber = input.CaseNumber
	c.TicketNumber = input.TicketNumber
	c.TicketType = input.TicketType
	c.HearingDate = models.UTCPtr(input.HearingDate)
	c.HearingTime = input.HearingTime
	c.ViolationDate = models.UTC(input.ViolationDate)
	c.IssueDatetime = models.UTCPtr(input.IssueDatetime)
	c.AllChargeStart = models.UTCPtr(input.AllChargeStart)
	c.AllChargeEnd = models.UTCPtr(input.AllChargeEnd)
	c.ViolationLocation = input.ViolationLocation
	c.CountyName = input.CountyName
	c.AdditionalNotes = input.AdditionalNotes
	c.ViolationOrder = input.ViolationOrder
	c.WarrantNumber = input.WarrantNumber
	c.VehicleMake = input.VehicleMake
	c.VehicleModel = input.VehicleModel
	c.VehicleYear = input.VehicleYear
	c.VehicleRegistrationPlateNo = input.VehicleRegistrationPlateNo
	c.IssuingOfficialName = input.IssuingOfficialName
	c.IssuingOfficialBadgeNumber = input.IssuingOfficialBadgeNumber
}

// insertAssociations stages one join row per charge id; a missing charge
// fails the whole unit of work with the offending id named.
func insertAssociations(s *db.TenantSession, caseRecordID uint, chargeIDs []uint) error {
	for _, chargeID := range chargeIDs {
		var charge models.Charge
		if err := s.First(&charge, chargeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFound("Charge ID", chargeID)
			}
			return fmt.Errorf("failed to look up charge %d: %w", chargeID, err)
		}
		assoc := models.CaseChargeAssociation{
			CaseRecordID: caseRecordID,
			ChargeID:     chargeID,
		}
		if err := s.Create(&assoc).Error; err != nil {
			return translateWriteError(err, "case charge association")
		}
	}
	return nil
}

// CreateCaseRecord stages a new case record with its reconciled defendant,
// contacts and charge associations. Everything commits together: a missing
// charge id aborts with nothing persisted.
func CreateCaseRecord(s *db.TenantSession, input *CaseRecordInput) error {
	defendant, err := reconcileDefendant(s, &input.Defendant, false)
	if err != nil {
		return err
	}

	record := models.CaseRecord{}
	applyCaseFields(&record, input)
	record.DefendantID = defendant.ID
	if err := s.Create(&record).Error; err != nil {
		return translateWriteError(err, "case record")
	}

	return insertAssociations(s, record.ID, input.ChargeIDs)
}

// UpdateCaseRecord locates the case by its business key, overwrites its
// fields, reconciles defendant and contacts with field-level overwrite, and
// replaces the charge associations wholesale.
func UpdateCaseRecord(s *db.TenantSession, caseNumber string, input *CaseRecordInput) error {
	var existing models.CaseRecord
	if err := s.Where("case_number = ?", caseNumber).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFound("Case", caseNumber)
		}
		return fmt.Errorf("failed to look up case %s: %w", caseNumber, err)
	}

	defendant, err := reconcileDefendant(s, &input.Defendant, true)
	if err != nil {
		return err
	}

	applyCaseFields(&existing, input)
	existing.DefendantID = defendant.ID
	if err := s.Save(&existing).Error; err != nil {
		return translateWriteError(err, "case record")
	}

	// Prior associations are replaced wholesale, not diffed
	if err := s.Where("case_record_id = ?", existing.ID).
		Delete(&models.CaseChargeAssociation{}).Error; err != nil {
		return fmt.Errorf("failed to clear charge associations: %w", err)
	}

	return insertAssociations(s, existing.ID, input.ChargeIDs)
}

// FetchCaseRecord returns the case with its defendant, contacts and the flat
// charge id list
func FetchCaseRecord(s *db.TenantSession, caseNumber string) (*CaseRecordDetail, error) {
	var record models.CaseRecord
	err := s.Preload("Defendant.Contacts").
		Preload("Defendant").
		Preload("Associations.Charge").
		Where("case_number = ?", caseNumber).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFound("Case", caseNumber)
		}
		return nil, fmt.Errorf("failed to fetch case %s: %w", caseNumber, err)
	}

	detail := &CaseRecordDetail{CaseRecord: record, ChargeIDs: []uint{}}
	for _, assoc := range record.Associations {
		if assoc.Charge == nil {
			continue
		}
		detail.ChargeIDs = append(detail.ChargeIDs, assoc.Charge.ID)
	}
	return detail, nil
}

// ListDefendants returns every defendant with contacts eagerly loaded
func ListDefendants(s *db.TenantSession) ([]models.Defendant, error) {
	var defendants []models.Defendant
	if err := s.Preload("Contacts").Find(&defendants).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch defendants: %w", err)
	}
	if len(defendants) == 0 {
		return nil, models.NewNotFound("Defendants", nil)
	}
	return defendants, nil
}

// ListCharges returns the tenant's charge table
func ListCharges(s *db.TenantSession) ([]models.Charge, error) {
	var charges []models.Charge
	if err := s.Find(&charges).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch charges: %w", err)
	}
	if len(charges) == 0 {
		return nil, models.NewNotFound("Charges", nil)
	}
	return charges, nil
}

// translateWriteError maps storage-layer uniqueness violations (lost
// find-or-create races) onto conflict errors instead of masked failures
func translateWriteError(err error, entity string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.NewConflict("duplicate %s: a concurrent request created the same natural key", entity)
	}
	return fmt.Errorf("failed to write %s: %w", entity, err)
}
