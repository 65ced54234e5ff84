package models

import (
	"encoding/json"
	"time"
)

// Record is one row of a backed-up table. Columns are kept as raw JSON so
// a backup round-trips fields this package knows nothing about.
type Record map[string]json.RawMessage

// UserID returns the owner column of the record, or "" when absent.
func (r Record) UserID() string {
	var id string
	if raw, ok := r["user_id"]; ok {
		_ = json.Unmarshal(raw, &id)
	}
	return id
}

// WithUserID returns a copy of r owned by userID.
func (r Record) WithUserID(userID string) Record {
	out := make(Record, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	b, _ := json.Marshal(userID)
	out["user_id"] = b
	return out
}

// Category names a group of records in a backup.
type Category string

const (
	CategoryTransactions Category = "transactions"
	CategoryBudgets      Category = "budgets"
	CategoryChallenges   Category = "challenges"
	CategorySavingGoals  Category = "saving_goals"
	CategoryProfile      Category = "profile"
	CategoryCategories   Category = "categories"
	CategorySettings     Category = "settings"
)

// Categories lists every category in backup and restore order.
var Categories = []Category{
	CategoryTransactions,
	CategoryBudgets,
	CategoryChallenges,
	CategorySavingGoals,
	CategoryProfile,
	CategoryCategories,
	CategorySettings,
}

// Included reports whether c belongs in a backup taken with s.
func (c Category) Included(s *BackupSettings) bool {
	switch c {
	case CategoryTransactions:
		return s.IncludeTransactions
	case CategoryBudgets:
		return s.IncludeBudgets
	case CategoryChallenges:
		return s.IncludeChallenges
	case CategorySettings:
		return s.IncludeSettings
	case CategorySavingGoals, CategoryProfile, CategoryCategories:
		return true
	default:
		return false
	}
}

type EnvelopeMetadata struct {
	Version    string `json:"version"`
	Encryption bool   `json:"encryption"`
	Encrypted  *bool  `json:"encrypted,omitempty"`
}

// Envelope is the document stored in object storage for one backup.
type Envelope struct {
	UserID     string                `json:"user_id"`
	BackupDate time.Time             `json:"backup_date"`
	Data       map[Category][]Record `json:"data"`
	Metadata   *EnvelopeMetadata     `json:"metadata"`
}

// IsEncrypted reports whether the stored blob went through the transform.
func (e *Envelope) IsEncrypted() bool {
	return e.Metadata != nil && e.Metadata.Encrypted != nil && *e.Metadata.Encrypted
}
