package domain

import "time"

// QRCredentialTTL is how long an issued vehicle credential stays valid.
const QRCredentialTTL = 30 * 24 * time.Hour

// QRTypeResidentCar marks credentials issued for resident vehicles.
const QRTypeResidentCar = "resident_car"

// CarType distinguishes combustion and electric vehicles on the credential.
type CarType string

const (
	CarTypeICE CarType = "ICE"
	CarTypeEV  CarType = "EV"
)

// NormalizeCarType returns the valid car type or empty for anything else.
func NormalizeCarType(value string) CarType {
	switch CarType(value) {
	case CarTypeICE, CarTypeEV:
		return CarType(value)
	}
	return ""
}

// QRPayload is the opaque content encoded into the QR credential.
type QRPayload struct {
	Token     string    `json:"token"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	CarType   CarType   `json:"carType,omitempty"`
	CarNumber string    `json:"carNumber,omitempty"`
}

// QRCredential is a persisted vehicle credential. Reissue supersedes rather
// than deletes: the prior active record is deactivated and a new one
// inserted, so at most one active credential exists per owner and type.
type QRCredential struct {
	ID        string
	OwnerID   string
	Type      string
	Payload   QRPayload
	ExpiresAt time.Time
	IsActive  bool
	CreatedAt time.Time
}
