package dto

// PartnerRequest creates or updates a partner. Password is optional on update.
type PartnerRequest struct {
	Name       string   `json:"name"`
	Email      string   `json:"email" binding:"omitempty,email"`
	Password   string   `json:"password"`
	Phone      string   `json:"phone"`
	Address    string   `json:"address"`
	ZoneRanges []string `json:"zoneRanges" binding:"dive,zonerange"`
}
