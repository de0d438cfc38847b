package model

import "time"

// ShopCredentials hold an Admin API token for one shop.
type ShopCredentials struct {
	Shop        string
	AccessToken string
	Scopes      string
	InstalledAt time.Time
}
