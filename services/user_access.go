package services

import (
	"fmt"
	"strconv"
	"strings"
)

// UserAccessFlag is one position in the role bitmask. Access scores are
// stored as hex strings in the identity provider's per-tenant attribute, so
// adding a role never reshuffles existing values.
type UserAccessFlag struct {
	Role string
	Bit  uint64
}

var userAccessTable = []UserAccessFlag{
	{Role: "admin", Bit: 0x1},
	{Role: "supervisor", Bit: 0x2},
	{Role: "officer", Bit: 0x4},
	{Role: "clerk", Bit: 0x8},
	{Role: "auditor", Bit: 0x10},
}

// EncodeUserAccess folds role names into their hex access score. Unknown
// role names are an error so a typo cannot silently grant nothing.
func EncodeUserAccess(roles []string) (string, error) {
	var score uint64
	for _, role := range roles {
		flag, ok := lookupAccessFlag(role)
		if !ok {
			return "", fmt.Errorf("unknown role %q", role)
		}
		score |= flag.Bit
	}
	return strconv.FormatUint(score, 16), nil
}

// DecodeUserAccess expands a hex access score into the role names whose bits
// are fully set. An empty or malformed score decodes to no roles.
func DecodeUserAccess(score string) []string {
	roles := []string{}
	if score == "" {
		return roles
	}
	value, err := strconv.ParseUint(strings.TrimPrefix(score, "0x"), 16, 64)
	if err != nil {
		return roles
	}
	for _, flag := range userAccessTable {
		if value&flag.Bit == flag.Bit {
			roles = append(roles, flag.Role)
		}
	}
	return roles
}

func lookupAccessFlag(role string) (UserAccessFlag, bool) {
	needle := strings.ToLower(strings.TrimSpace(role))
	for _, flag := range userAccessTable {
		if flag.Role == needle {
			return flag, true
		}
	}
	return UserAccessFlag{}, false
}

// ParseTenantAccessAttribute converts the identity provider's custom
// attribute string into a tenant-to-score map.
//
//	"AGENCY1:1;AGENCY2:1f" -> {"AGENCY1": "1", "AGENCY2": "1f"}
//
// Malformed pairs are skipped rather than failing the whole attribute.
func ParseTenantAccessAttribute(attribute string) map[string]string {
	values := map[string]string{}
	if attribute == "" {
		return values
	}
	for _, pair := range strings.Split(attribute, ";") {
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 || parts[0] == "" {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

// FormatTenantAccessAttribute is the inverse of ParseTenantAccessAttribute
func FormatTenantAccessAttribute(values map[string]string) string {
	pairs := make([]string, 0, len(values))
	for tenant, score := range values {
		pairs = append(pairs, tenant+":"+score)
	}
	return strings.Join(pairs, ";")
}
