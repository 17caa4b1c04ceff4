// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package auth

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// DefaultTimezone is assigned to owner profiles that do not name one.
const DefaultTimezone = "UTC"

// Gender of an owner.
type Gender int16

// Genders.
const (
	GenderUnspecified Gender = iota
	GenderMale
	GenderFemale
	GenderOther
)

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "Male"
	case GenderFemale:
		return "Female"
	case GenderOther:
		return "Other"
	default:
		return "Unspecified"
	}
}

// ParseGender parses the String form of a Gender. Empty input is Unspecified.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unspecified":
		return GenderUnspecified, nil
	case "male":
		return GenderMale, nil
	case "female":
		return GenderFemale, nil
	case "other":
		return GenderOther, nil
	default:
		return GenderUnspecified, oops.Code("GENDER_INVALID").
			With("gender", s).
			Wrapf(ErrBadRequest, "unknown gender %q", s)
	}
}

// ProfileDetails is the personal data supplied at registration. Member
// profiles use the name, surname and gsm; owner profiles use all of it.
type ProfileDetails struct {
	Name      string
	Surname   string
	Gsm       string
	Gender    Gender
	BirthDate *time.Time
	Timezone  string
	Photo     string
}

// MemberProfile is the profile variant for Member accounts.
type MemberProfile struct {
	AccountID      ulid.ULID
	Name           string
	Surname        string
	Email          string
	Gsm            string
	MembershipDate time.Time
}

// OwnerProfile is the profile variant for Owner accounts.
type OwnerProfile struct {
	AccountID ulid.ULID
	Name      string
	Surname   string
	Email     string
	Gsm       string
	Gender    Gender
	BirthDate *time.Time
	Timezone  string
	Photo     string
}

func newMemberProfile(account *Account, details ProfileDetails) *MemberProfile {
	return &MemberProfile{
		AccountID:      account.ID,
		Name:           strings.TrimSpace(details.Name),
		Surname:        strings.TrimSpace(details.Surname),
		Email:          account.Email,
		Gsm:            strings.TrimSpace(details.Gsm),
		MembershipDate: account.CreatedAt,
	}
}

func newOwnerProfile(account *Account, details ProfileDetails) *OwnerProfile {
	tz := strings.TrimSpace(details.Timezone)
	if tz == "" {
		tz = DefaultTimezone
	}
	return &OwnerProfile{
		AccountID: account.ID,
		Name:      strings.TrimSpace(details.Name),
		Surname:   strings.TrimSpace(details.Surname),
		Email:     account.Email,
		Gsm:       strings.TrimSpace(details.Gsm),
		Gender:    details.Gender,
		BirthDate: details.BirthDate,
		Timezone:  tz,
		Photo:     details.Photo,
	}
}
