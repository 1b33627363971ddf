package services

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchDate(value string) SearchDate {
	t, _ := time.Parse("2006-01-02", value)
	return SearchDate{Time: t.UTC()}
}

func TestBuildCaseFiltersAlwaysIncludesDateRange(t *testing.T) {
	q := &CaseSearchQuery{
		ViolationStartDate: searchDate("2024-01-01"),
		ViolationEndDate:   searchDate("2024-12-31"),
	}
	conditions := BuildCaseFilters(q)

	require.Len(t, conditions, 1)
	assert.Equal(t, "case_records.violation_date BETWEEN ? AND ?", conditions[0].Expr)
	assert.Equal(t, q.ViolationStartDate.Time, conditions[0].Args[0])
}

func TestBuildCaseFiltersExplicitFields(t *testing.T) {
	q := &CaseSearchQuery{
		CaseNumber:         "C-100",
		FirstName:          "Ana",
		ViolationStartDate: searchDate("2024-01-01"),
		ViolationEndDate:   searchDate("2024-12-31"),
	}
	conditions := BuildCaseFilters(q)
	require.Len(t, conditions, 3)

	// Ordered CaseRecord columns first, then Defendant, then the range
	assert.Equal(t, "case_records.case_number = ?", conditions[0].Expr)
	assert.Equal(t, []interface{}{"C-100"}, conditions[0].Args)

	// Allow-listed names take a case-insensitive substring match
	assert.Equal(t, "LOWER(defendants.first_name) LIKE ?", conditions[1].Expr)
	assert.Equal(t, []interface{}{"%ana%"}, conditions[1].Args)
}

func TestBuildSearchConditionTextOnlyTerm(t *testing.T) {
	cond := buildSearchCondition("not-a-date-or-number")

	// Date and numeric columns contribute nothing for an unparseable term
	assert.NotContains(t, cond.Expr, "violation_date")
	assert.NotContains(t, cond.Expr, "case_records.id")
	assert.Contains(t, cond.Expr, "LOWER(case_records.case_number) LIKE ?")
	assert.Contains(t, cond.Expr, "LOWER(charges.charge_description) LIKE ?")
	for _, arg := range cond.Args {
		assert.Equal(t, "%not-a-date-or-number%", arg)
	}
}

func TestBuildSearchConditionDateTerm(t *testing.T) {
	cond := buildSearchCondition("2024-01-15")

	assert.Contains(t, cond.Expr, "case_records.violation_date = ?")
	assert.Contains(t, cond.Expr, "defendants.dob = ?")
	// The same term still fans out over text columns as a substring
	assert.Contains(t, cond.Expr, "LOWER(case_records.case_number) LIKE ?")
	assert.Equal(t, strings.Count(cond.Expr, "?"), len(cond.Args))
}

func TestBuildSearchConditionNumericTerm(t *testing.T) {
	cond := buildSearchCondition("42")

	assert.Contains(t, cond.Expr, "case_records.id = ?")
	assert.Contains(t, cond.Expr, "charges.id = ?")
	assert.Contains(t, cond.Expr, "case_records.defendant_id = ?")
}

func TestParseSearchSoftFailures(t *testing.T) {
	assert.Nil(t, parseSearchDate("15-01-2024"))
	assert.Nil(t, parseSearchDate("hello"))
	assert.Nil(t, parseSearchNumber("hello"))

	d := parseSearchDate("2024-01-15")
	require.NotNil(t, d)
	assert.Equal(t, 2024, d.Year())

	n := parseSearchNumber("12.5")
	require.NotNil(t, n)
	assert.Equal(t, 12.5, *n)
}

func TestSearchDateUnmarshal(t *testing.T) {
	var q CaseSearchQuery
	payload := `{"violation_start_date": "2024-01-01", "violation_end_date": "2024-12-31T00:00:00Z"}`
	require.NoError(t, json.Unmarshal([]byte(payload), &q))

	assert.Equal(t, 2024, q.ViolationStartDate.Year())
	assert.Equal(t, time.December, q.ViolationEndDate.Month())

	assert.Error(t, json.Unmarshal([]byte(`{"violation_start_date": "01/01/2024"}`), &q))
}
