package models

// Agency is a tenant directory row. It lives in the shared control schema;
// the Name doubles as the tenant's database schema name.
type Agency struct {
	ID uint `gorm:"primarykey" json:"id"`
	AuditFields

	Name        string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

// Permission grants one (action, module) tuple to a user role within a
// tenant's schema
type Permission struct {
	ID uint `gorm:"primarykey" json:"id"`

	UserRole         string `gorm:"size:64;index" json:"user_role"`
	PermissionAction string `gorm:"size:64" json:"permission_action"`
	Module           string `gorm:"size:64" json:"module"`
}

// ClientConfig is one tenant configuration entry, grouped by section when
// served to callers
type ClientConfig struct {
	ID uint `gorm:"primarykey" json:"id"`
	AuditFields

	Section string `gorm:"size:64;not null;index" json:"section"`
	Name    string `gorm:"size:128;not null" json:"name"`
	Value   string `gorm:"type:text" json:"value"`
}
