package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ProviderTwilio   = "twilio"
	ProviderSendgrid = "sendgrid"
	ProviderSMTP     = "smtp"

	ChannelWhatsapp = "whatsapp"
	ChannelSMS      = "sms"
	ChannelEmail    = "email"

	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"

	MessageStatusOK      = "ok"
	MessageStatusIgnored = "ignored"
	MessageStatusError   = "error"
)

// MessageLog is the append-only audit of every messaging attempt, inbound and
// outbound. Meta holds provider-specific identifiers (message SIDs, error
// codes) and is also what the opt-in template dedup query reads.
type MessageLog struct {
	gorm.Model
	Provider    string         `json:"provider" gorm:"not null"`
	Channel     string         `json:"channel" gorm:"not null"`
	Direction   string         `json:"direction" gorm:"not null"`
	FromAddr    string         `json:"fromAddr"`
	ToAddr      string         `json:"toAddr" gorm:"index"`
	Subject     string         `json:"subject"`
	BodyText    string         `json:"bodyText"`
	OrderNumber string         `json:"orderNumber" gorm:"index"`
	Action      string         `json:"action"`
	Status      string         `json:"status" gorm:"not null"`
	Meta        datatypes.JSON `json:"meta"`
}
