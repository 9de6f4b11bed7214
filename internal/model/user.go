package model

import "time"

// Supported values for User.Language.
const (
	LanguageEnglish = "en"
	LanguageGerman  = "de"
)

// DefaultLanguage is assigned when a user record carries no valid language.
const DefaultLanguage = LanguageEnglish

// ValidLanguages lists every language a user may select, in display order.
var ValidLanguages = []string{LanguageEnglish, LanguageGerman}

// IsValidLanguage reports whether lang is one of ValidLanguages.
func IsValidLanguage(lang string) bool {
	for _, l := range ValidLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// User represents a customer account as stored in the `users` table.
//
// Fields:
//
//	CustomerID             – stable opaque primary key, never changes.
//	Email                  – unique address, stored exactly as given.
//	PasswordHash           – bcrypt hash of the salted password digest.
//	PasswordSalt           – hex salt mixed into the digest before bcrypt.
//	IsActive               – account flag; not consulted by authentication.
//	Country                – ISO 3166 alpha-2 code.
//	Language               – one of ValidLanguages.
//	VerificationCode       – pending password reset code (nil when none).
//	VerificationCodeExpiry – expiry of VerificationCode; nil exactly when it is nil.
type User struct {
	CustomerID             string     // users.customer_id
	Email                  string     // users.email
	PasswordHash           string     // users.password_hash
	PasswordSalt           string     // users.password_salt
	IsActive               bool       // users.is_active
	Country                string     // users.country
	Language               string     // users.language
	VerificationCode       *string    // users.verification_code (nullable)
	VerificationCodeExpiry *time.Time // users.verification_code_expiry (nullable)
}

// HasPendingReset reports whether a password reset code is outstanding.
func (u *User) HasPendingReset() bool {
	return u.VerificationCode != nil && u.VerificationCodeExpiry != nil
}

// UserView is the public projection of a User returned to API clients.
// Credentials and reset state are never part of it.
type UserView struct {
	CustomerID string `json:"customer_id"`
	Email      string `json:"email"`
	Country    string `json:"country"`
	Language   string `json:"language"`
}

// View returns the client-facing projection of u.
func (u *User) View() UserView {
	return UserView{
		CustomerID: u.CustomerID,
		Email:      u.Email,
		Country:    u.Country,
		Language:   u.Language,
	}
}
