package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SearchDate is a JSON date that accepts both date-only and full timestamp
// forms
type SearchDate struct {
	time.Time
}

func (d *SearchDate) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", raw)
}

func (d SearchDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

// CaseSearchQuery is the structured search input for the case record listing.
// Explicit fields are matched individually; SearchString fans out across
// every column of the searchable entities; the violation date range is
// mandatory.
type CaseSearchQuery struct {
	CaseNumber        string `json:"case_number"`
	TicketNumber      string `json:"ticket_number"`
	TicketType        string `json:"ticket_type"`
	CountyName        string `json:"county_name"`
	ViolationLocation string `json:"violation_location"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	ChargeCode        string `json:"charge_code"`
	ChargeDescription string `json:"charge_description"`

	SearchString string `json:"search_string"`

	ViolationStartDate SearchDate `json:"violation_start_date"`
	ViolationEndDate   SearchDate `json:"violation_end_date"`

	Page         int `json:"page"`
	NumOfRecords int `json:"num_of_records"`
}

// Condition is one SQL predicate with its bind arguments. Conditions are
// ANDed together by the fetch engine.
type Condition struct {
	Expr string
	Args []interface{}
}

type matchMode int

const (
	matchExact matchMode = iota
	matchContains
)

// filterColumn binds an incoming filter field to the column that owns it.
// The table is ordered CaseRecord, Defendant, Charge: the first entity
// owning a column of a given name wins.
type filterColumn struct {
	field  string
	column string
	mode   matchMode
}

// filterColumns is the static dispatch table for explicit field filters,
// resolved once instead of reflecting over entity types per request.
var filterColumns = []filterColumn{
	{"case_number", "case_records.case_number", matchExact},
	{"ticket_number", "case_records.ticket_number", matchExact},
	{"ticket_type", "case_records.ticket_type", matchExact},
	{"county_name", "case_records.county_name", matchExact},
	{"violation_location", "case_records.violation_location", matchContains},
	{"first_name", "defendants.first_name", matchContains},
	{"last_name", "defendants.last_name", matchContains},
	{"charge_code", "charges.charge_code", matchExact},
	{"charge_description", "charges.charge_description", matchContains},
}

type columnKind int

const (
	kindText columnKind = iota
	kindDate
	kindNumeric
)

type searchColumn struct {
	column string
	kind   columnKind
}

// searchColumns lists every column of the three searchable entities for the
// free-text disjunction: text columns take a substring match, date and
// numeric columns take equality against the soft-parsed search term.
var searchColumns = []searchColumn{
	// case_records
	{"case_records.id", kindNumeric},
	{"case_records.case_number", kindText},
	{"case_records.ticket_number", kindText},
	{"case_records.ticket_type", kindText},
	{"case_records.hearing_date", kindDate},
	{"case_records.hearing_time", kindText},
	{"case_records.violation_date", kindDate},
	{"case_records.issue_datetime", kindDate},
	{"case_records.all_charge_start", kindDate},
	{"case_records.all_charge_end", kindDate},
	{"case_records.violation_location", kindText},
	{"case_records.county_name", kindText},
	{"case_records.additional_notes", kindText},
	{"case_records.violation_order", kindText},
	{"case_records.warrant_number", kindText},
	{"case_records.vehicle_make", kindText},
	{"case_records.vehicle_model", kindText},
	{"case_records.vehicle_year", kindText},
	{"case_records.vehicle_registration_plate_no", kindText},
	{"case_records.issuing_official_name", kindText},
	{"case_records.issuing_official_badge_number", kindText},
	{"case_records.defendant_id", kindNumeric},
	{"case_records.created_by", kindText},
	{"case_records.created_on", kindDate},
	{"case_records.modified_by", kindText},
	{"case_records.modified_on", kindDate},
	// defendants
	{"defendants.id", kindNumeric},
	{"defendants.first_name", kindText},
	{"defendants.middle_name", kindText},
	{"defendants.last_name", kindText},
	{"defendants.suffix", kindText},
	{"defendants.ssn_id", kindText},
	{"defendants.dob", kindDate},
	{"defendants.sex", kindText},
	{"defendants.race", kindText},
	{"defendants.ethnicity", kindText},
	{"defendants.eye_color", kindText},
	{"defendants.hair_color", kindText},
	{"defendants.height", kindText},
	{"defendants.weight", kindText},
	{"defendants.license_number", kindText},
	{"defendants.license_state_code", kindText},
	// charges
	{"charges.id", kindNumeric},
	{"charges.charge_code", kindText},
	{"charges.charge_description", kindText},
	{"charges.charge_type", kindText},
}

// fieldValues returns the explicit filter values keyed by field name.
// Empty values mean the field was not provided.
func (q *CaseSearchQuery) fieldValues() map[string]string {
	return map[string]string{
		"case_number":        q.CaseNumber,
		"ticket_number":      q.TicketNumber,
		"ticket_type":        q.TicketType,
		"county_name":        q.CountyName,
		"violation_location": q.ViolationLocation,
		"first_name":         q.FirstName,
		"last_name":          q.LastName,
		"charge_code":        q.ChargeCode,
		"charge_description": q.ChargeDescription,
	}
}

// BuildCaseFilters converts the structured query into an ordered list of
// predicate conditions: explicit field filters first, then the free-text
// disjunction, then the mandatory violation date range.
func BuildCaseFilters(q *CaseSearchQuery) []Condition {
	var conditions []Condition

	values := q.fieldValues()
	for _, fc := range filterColumns {
		value := values[fc.field]
		if value == "" {
			continue
		}
		conditions = append(conditions, columnCondition(fc.column, fc.mode, value))
	}

	if q.SearchString != "" {
		conditions = append(conditions, buildSearchCondition(q.SearchString))
	}

	conditions = append(conditions, Condition{
		Expr: "case_records.violation_date BETWEEN ? AND ?",
		Args: []interface{}{q.ViolationStartDate.Time, q.ViolationEndDate.Time},
	})

	return conditions
}

func columnCondition(column string, mode matchMode, value string) Condition {
	if mode == matchContains {
		return Condition{
			Expr: "LOWER(" + column + ") LIKE ?",
			Args: []interface{}{"%" + strings.ToLower(value) + "%"},
		}
	}
	return Condition{Expr: column + " = ?", Args: []interface{}{value}}
}

// buildSearchCondition fans the free-text term out across every searchable
// column. The term is soft-parsed as a date and as a number: parse failures
// just mean the corresponding column kinds contribute nothing.
func buildSearchCondition(term string) Condition {
	searchDate := parseSearchDate(term)
	searchNumber := parseSearchNumber(term)

	var (
		exprs []string
		args  []interface{}
	)
	contains := "%" + strings.ToLower(term) + "%"

	for _, sc := range searchColumns {
		switch sc.kind {
		case kindText:
			exprs = append(exprs, "LOWER("+sc.column+") LIKE ?")
			args = append(args, contains)
		case kindDate:
			if searchDate != nil {
				exprs = append(exprs, sc.column+" = ?")
				args = append(args, *searchDate)
			}
		case kindNumeric:
			if searchNumber != nil {
				exprs = append(exprs, sc.column+" = ?")
				args = append(args, *searchNumber)
			}
		}
	}

	return Condition{
		Expr: "(" + strings.Join(exprs, " OR ") + ")",
		Args: args,
	}
}

// parseSearchDate soft-parses a YYYY-MM-DD term; nil means not a date
func parseSearchDate(term string) *time.Time {
	parsed, err := time.Parse("2006-01-02", term)
	if err != nil {
		return nil
	}
	parsed = parsed.UTC()
	return &parsed
}

// parseSearchNumber soft-parses a floating-point term; nil means not a number
func parseSearchNumber(term string) *float64 {
	parsed, err := strconv.ParseFloat(term, 64)
	if err != nil {
		return nil
	}
	return &parsed
}
