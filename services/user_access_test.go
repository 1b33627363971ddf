package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeUserAccess(t *testing.T) {
	score, err := EncodeUserAccess([]string{"admin", "officer"})
	require.NoError(t, err)
	assert.Equal(t, "5", score)

	roles := DecodeUserAccess(score)
	assert.ElementsMatch(t, []string{"admin", "officer"}, roles)
}

func TestEncodeUserAccessUnknownRole(t *testing.T) {
	_, err := EncodeUserAccess([]string{"warlord"})
	assert.Error(t, err)
}

func TestEncodeUserAccessCaseInsensitive(t *testing.T) {
	score, err := EncodeUserAccess([]string{"ADMIN"})
	require.NoError(t, err)
	assert.Equal(t, "1", score)
}

func TestDecodeUserAccessAllBits(t *testing.T) {
	roles := DecodeUserAccess("1f")
	assert.ElementsMatch(t, []string{"admin", "supervisor", "officer", "clerk", "auditor"}, roles)
}

func TestDecodeUserAccessMalformed(t *testing.T) {
	assert.Empty(t, DecodeUserAccess(""))
	assert.Empty(t, DecodeUserAccess("zzz"))
	assert.Empty(t, DecodeUserAccess("0"))
}

func TestParseTenantAccessAttribute(t *testing.T) {
	values := ParseTenantAccessAttribute("AGENCY1:1;AGENCY2:1f")
	assert.Equal(t, map[string]string{"AGENCY1": "1", "AGENCY2": "1f"}, values)

	assert.Empty(t, ParseTenantAccessAttribute(""))

	// Malformed pairs are skipped, valid ones kept
	values = ParseTenantAccessAttribute("AGENCY1:1;broken;:2")
	assert.Equal(t, map[string]string{"AGENCY1": "1"}, values)
}

func TestFormatTenantAccessAttributeRoundTrip(t *testing.T) {
	original := map[string]string{"AGENCY1": "1", "AGENCY2": "1f"}
	assert.Equal(t, original, ParseTenantAccessAttribute(FormatTenantAccessAttribute(original)))
}

func TestResolveUser(t *testing.T) {
	profile := &UserProfile{
		UserName: "m.reyes",
		Attributes: map[string]string{
			"given_name":         "Morgan",
			"family_name":        "Reyes",
			"email":              "m.reyes@example.org",
			"custom:custom_user": "agency_a:5;agency_b:2",
		},
	}

	user := ResolveUser(profile, "agency_a")
	assert.Equal(t, "m.reyes", user.UserName)
	assert.ElementsMatch(t, []string{"admin", "officer"}, user.Roles)
	assert.False(t, user.SuperAdmin)

	other := ResolveUser(profile, "agency_b")
	assert.Equal(t, []string{"supervisor"}, other.Roles)

	// No entry for the tenant means zero roles, not an error
	stranger := ResolveUser(profile, "agency_c")
	assert.Empty(t, stranger.Roles)
}
