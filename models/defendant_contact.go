package models

// DefendantContact holds postal and phone details for a defendant. Its
// natural key is the full composite of address fields plus phone number
// within one defendant; the unique index is the backstop against duplicate
// rows when concurrent requests race on find-or-create.
type DefendantContact struct {
	ID uint `gorm:"primarykey" json:"id"`
	AuditFields

	DefendantID uint `gorm:"not null;index;uniqueIndex:uidx_contact_natural" json:"defendant_id"`

	AddressDeliveryPoint string `gorm:"size:255;uniqueIndex:uidx_contact_natural" json:"address_delivery_point"`
	MailingAddress       string `gorm:"size:255;uniqueIndex:uidx_contact_natural" json:"mailing_address"`
	LocationCityName     string `gorm:"size:128;uniqueIndex:uidx_contact_natural" json:"location_city_name"`
	LocationStateCode    string `gorm:"size:8;uniqueIndex:uidx_contact_natural" json:"location_state_code"`
	LocationPostalCode   string `gorm:"size:16;uniqueIndex:uidx_contact_natural" json:"location_postal_code"`
	PhoneNumber          string `gorm:"size:32;uniqueIndex:uidx_contact_natural" json:"phone_number"`
}
