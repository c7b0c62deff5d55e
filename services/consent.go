package services

import (
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/modernwebbuilds/forkitt-api/models"
)

// optOutWords is the vocabulary that flips a number to opted-out; any other
// inbound message is an implicit opt-in.
var optOutWords = map[string]struct{}{
	"no":             {},
	"n":              {},
	"stop":           {},
	"unsubscribe":    {},
	"opt out":        {},
	"optout":         {},
	"cancel updates": {},
}

// NormalizePhone strips the transport prefix and formatting so the same
// physical number never splits into two consent records. Keeps a leading
// '+' and digits only.
func NormalizePhone(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.Index(strings.ToLower(s), "whatsapp:"); i == 0 {
		s = s[len("whatsapp:"):]
	}
	var b strings.Builder
	for i, r := range s {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsOptOutText reports whether an inbound message should be read as an
// opt-out rather than an implicit opt-in.
func IsOptOutText(text string) bool {
	_, ok := optOutWords[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

func IsWhatsappOptedIn(db *gorm.DB, phone string) bool {
	var record models.WhatsappOptin
	if err := db.First(&record, "phone = ?", NormalizePhone(phone)).Error; err != nil {
		return false
	}
	return record.OptedIn
}

func SetWhatsappOptin(db *gorm.DB, phone string, optedIn bool, source string) error {
	record := models.WhatsappOptin{
		Phone:     NormalizePhone(phone),
		OptedIn:   optedIn,
		Source:    source,
		UpdatedAt: time.Now(),
	}
	if record.Phone == "" {
		return nil
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns([]string{"opted_in", "source", "updated_at"}),
	}).Create(&record).Error
}
