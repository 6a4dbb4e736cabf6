package model

import "time"

// Credential holds a service credential key-value pair. Service identifies
// the external system ("stylist"), and Key identifies the credential type
// within that service ("token", "user").
type Credential struct {
	ID        int64
	Service   string
	Key       string
	Value     string
	UpdatedAt time.Time
}
