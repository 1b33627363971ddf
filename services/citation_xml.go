package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// Citation documents arrive in the NIEM justice exchange format. The paths
// below are written against the conventional nc/j prefixes; at parse time
// they are rewritten to whatever prefixes the document binds the NIEM
// namespaces under.
const (
	niemCoreNamespace    = "http://niem.gov/niem/niem-core/2.0"
	niemJusticeNamespace = "http://niem.gov/niem/domains/jxdm/4.1"
)

const (
	pathCaseNumber        = "//nc:Case/nc:ActivityIdentification/nc:IdentificationID"
	pathTicketNumber      = "//j:Citation/nc:ActivityIdentification/nc:IdentificationID"
	pathIssueDatetime     = "//j:Citation/nc:ActivityDate/nc:DateTime"
	pathViolationDate     = "//j:CitationViolation/nc:ActivityDate/nc:DateTime"
	pathViolationLocation = "//j:CitationViolation/nc:ActivityLocation/nc:LocationDescriptionText"
	pathCountyName        = "//j:CitationViolation/nc:ActivityLocation/nc:LocationCountyName"
	pathVehicleMake       = "//nc:Vehicle/nc:VehicleMakeCode"
	pathVehicleModel      = "//nc:Vehicle/nc:VehicleModelCode"
	pathVehicleYear       = "//nc:Vehicle/nc:ItemModelYearDate"
	pathVehiclePlate      = "//nc:Vehicle/nc:ConveyanceRegistrationPlateIdentification/nc:IdentificationID"
	pathOfficialName      = "//j:EnforcementOfficial/nc:RoleOfPerson/nc:PersonName/nc:PersonFullName"
	pathOfficialBadge     = "//j:EnforcementOfficial/j:EnforcementOfficialBadgeIdentification/nc:IdentificationID"

	pathDefendantFirst   = "//j:CitationSubject/nc:RoleOfPerson/nc:PersonName/nc:PersonGivenName"
	pathDefendantMiddle  = "//j:CitationSubject/nc:RoleOfPerson/nc:PersonName/nc:PersonMiddleName"
	pathDefendantLast    = "//j:CitationSubject/nc:RoleOfPerson/nc:PersonName/nc:PersonSurName"
	pathDefendantSuffix  = "//j:CitationSubject/nc:RoleOfPerson/nc:PersonName/nc:PersonNameSuffixText"
	pathDefendantSsn     = "//j:CitationSubject/nc:RoleOfPerson/nc:PersonSSNIdentification/nc:IdentificationID"
	pathDefendantDob     = "//j:CitationSubject/nc:RoleOfPerson/nc:PersonBirthDate/nc:Date"
	pathDefendantSex     = "//j:CitationSubject/nc:RoleOfPerson/nc:PersonSexCode"
	pathDefendantRace    = "//j:CitationSubject/nc:RoleOfPerson/nc:PersonRaceCode"
	pathDefendantEyes    = "//j:CitationSubject/nc:RoleOfPerson/nc:PersonEyeColorCode"
	pathDefendantHair    = "//j:CitationSubject/nc:RoleOfPerson/nc:PersonHairColorCode"
	pathDefendantHeight  = "//j:CitationSubject/nc:RoleOfPerson/nc:PersonHeightMeasure/nc:MeasureValueText"
	pathDefendantWeight  = "//j:CitationSubject/nc:RoleOfPerson/nc:PersonWeightMeasure/nc:MeasureValueText"
	pathLicenseNumber    = "//j:CitationSubject/j:PersonAugmentation/j:DriverLicense/j:DriverLicenseCardIdentification/nc:IdentificationID"
	pathLicenseStateCode = "//j:CitationSubject/j:PersonAugmentation/j:DriverLicense/j:DriverLicenseCardIdentification/nc:IdentificationJurisdiction/nc:LocationStateUSPostalServiceCode"

	pathContactStreet = "//j:CitationSubject/nc:RoleOfPerson/nc:PersonResidenceLocation/nc:Address/nc:LocationStreet/nc:StreetFullText"
	pathContactCity   = "//j:CitationSubject/nc:RoleOfPerson/nc:PersonResidenceLocation/nc:Address/nc:LocationCityName"
	pathContactState  = "//j:CitationSubject/nc:RoleOfPerson/nc:PersonResidenceLocation/nc:Address/nc:LocationStateUSPostalServiceCode"
	pathContactPostal = "//j:CitationSubject/nc:RoleOfPerson/nc:PersonResidenceLocation/nc:Address/nc:LocationPostalCode"
	pathContactPhone  = "//j:CitationSubject/nc:RoleOfPerson/nc:PersonPrimaryTelephoneNumber/nc:FullTelephoneNumber/nc:TelephoneNumberFullID"

	pathCharge            = "//j:CitationViolation/j:Charge"
	pathChargeStatute     = "j:ChargeStatute/j:StatuteCodeIdentification/nc:IdentificationID"
	pathChargeDescription = "j:ChargeDescriptionText"
)

// CitationCharge is one statute extracted from a citation document. Charge
// codes match rows of the tenant's charge table; resolution to ids happens
// at create time, not here.
type CitationCharge struct {
	ChargeCode        string `json:"charge_code"`
	ChargeDescription string `json:"charge_description"`
}

// CitationData is the create-ready payload extracted from a citation XML
// document
type CitationData struct {
	CaseNumber                 string           `json:"case_number"`
	TicketNumber               string           `json:"ticket_number"`
	IssueDatetime              *time.Time       `json:"issue_datetime"`
	ViolationDate              *time.Time       `json:"violation_date"`
	ViolationLocation          string           `json:"violation_location"`
	CountyName                 string           `json:"county_name"`
	VehicleMake                string           `json:"vehicle_make"`
	VehicleModel               string           `json:"vehicle_model"`
	VehicleYear                string           `json:"vehicle_year"`
	VehicleRegistrationPlateNo string           `json:"vehicle_registration_plate_no"`
	IssuingOfficialName        string           `json:"issuing_official_name"`
	IssuingOfficialBadgeNumber string           `json:"issuing_official_badge_number"`
	Defendant                  DefendantInput   `json:"defendant"`
	Charges                    []CitationCharge `json:"charges"`
}

// ParseCitationXML extracts case, defendant and charge fields from a NIEM
// citation document. Missing paths yield empty strings so partially filled
// citations still import; only unparseable XML is an error.
func ParseCitationXML(data []byte) (*CitationData, error) {
	parsed := etree.NewDocument()
	if err := parsed.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse citation XML: %w", err)
	}
	doc := newCitationDocument(parsed)

	citation := &CitationData{
		CaseNumber:                 textAt(doc, pathCaseNumber),
		TicketNumber:               textAt(doc, pathTicketNumber),
		IssueDatetime:              datetimeAt(doc, pathIssueDatetime),
		ViolationDate:              datetimeAt(doc, pathViolationDate),
		ViolationLocation:          textAt(doc, pathViolationLocation),
		CountyName:                 textAt(doc, pathCountyName),
		VehicleMake:                textAt(doc, pathVehicleMake),
		VehicleModel:               textAt(doc, pathVehicleModel),
		VehicleYear:                textAt(doc, pathVehicleYear),
		VehicleRegistrationPlateNo: textAt(doc, pathVehiclePlate),
		IssuingOfficialName:        textAt(doc, pathOfficialName),
		IssuingOfficialBadgeNumber: textAt(doc, pathOfficialBadge),
		Charges:                    []CitationCharge{},
	}

	citation.Defendant = DefendantInput{
		FirstName:        textAt(doc, pathDefendantFirst),
		MiddleName:       textAt(doc, pathDefendantMiddle),
		LastName:         textAt(doc, pathDefendantLast),
		Suffix:           textAt(doc, pathDefendantSuffix),
		SsnID:            textAt(doc, pathDefendantSsn),
		Dob:              datetimeAt(doc, pathDefendantDob),
		Sex:              textAt(doc, pathDefendantSex),
		Race:             textAt(doc, pathDefendantRace),
		EyeColor:         textAt(doc, pathDefendantEyes),
		HairColor:        textAt(doc, pathDefendantHair),
		Height:           textAt(doc, pathDefendantHeight),
		Weight:           textAt(doc, pathDefendantWeight),
		LicenseNumber:    textAt(doc, pathLicenseNumber),
		LicenseStateCode: textAt(doc, pathLicenseStateCode),
		Contacts:         []ContactInput{},
	}

	contact := ContactInput{
		AddressDeliveryPoint: textAt(doc, pathContactStreet),
		LocationCityName:     textAt(doc, pathContactCity),
		LocationStateCode:    textAt(doc, pathContactState),
		LocationPostalCode:   textAt(doc, pathContactPostal),
		PhoneNumber:          textAt(doc, pathContactPhone),
	}
	if contact != (ContactInput{}) {
		citation.Defendant.Contacts = append(citation.Defendant.Contacts, contact)
	}

	for _, chargeEl := range doc.elements(pathCharge) {
		charge := CitationCharge{
			ChargeCode:        doc.elementText(chargeEl, pathChargeStatute),
			ChargeDescription: doc.elementText(chargeEl, pathChargeDescription),
		}
		if charge.ChargeCode == "" && charge.ChargeDescription == "" {
			continue
		}
		citation.Charges = append(citation.Charges, charge)
	}

	return citation, nil
}

// citationDocument pairs the parsed tree with the prefixes its elements
// declare for the NIEM namespaces
type citationDocument struct {
	doc      *etree.Document
	prefixes map[string]string
}

func newCitationDocument(doc *etree.Document) *citationDocument {
	uriPrefixes := map[string]string{
		niemCoreNamespace:    "nc",
		niemJusticeNamespace: "j",
	}
	prefixes := make(map[string]string)
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for _, attr := range el.Attr {
			if attr.Space != "xmlns" {
				continue
			}
			if conventional, ok := uriPrefixes[attr.Value]; ok {
				if _, seen := prefixes[conventional]; !seen {
					prefixes[conventional] = attr.Key
				}
			}
		}
		for _, child := range el.ChildElements() {
			walk(child)
		}
	}
	if root := doc.Root(); root != nil {
		walk(root)
	}
	return &citationDocument{doc: doc, prefixes: prefixes}
}

// translate rewrites the conventional nc/j prefixes in a path to the ones
// the document actually declares. Undeclared prefixes keep the conventional
// form so unprefixed and conventionally prefixed documents still match.
func (d *citationDocument) translate(path string) string {
	if len(d.prefixes) == 0 {
		return path
	}
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		prefix, name, ok := strings.Cut(segment, ":")
		if !ok {
			continue
		}
		if declared, found := d.prefixes[prefix]; found && declared != prefix {
			segments[i] = declared + ":" + name
		}
	}
	return strings.Join(segments, "/")
}

func (d *citationDocument) elements(path string) []*etree.Element {
	return d.doc.FindElements(d.translate(path))
}

func (d *citationDocument) elementText(parent *etree.Element, path string) string {
	el := parent.FindElement(d.translate(path))
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

func textAt(doc *citationDocument, path string) string {
	el := doc.doc.FindElement(doc.translate(path))
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

// citation dates come in either date or datetime form depending on the
// producing vendor
var citationTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func datetimeAt(doc *citationDocument, path string) *time.Time {
	raw := textAt(doc, path)
	if raw == "" {
		return nil
	}
	for _, layout := range citationTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}
