// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package httpapi

import (
	"time"

	"github.com/clubpass/clubpass/internal/auth"
)

const birthDateLayout = "2006-01-02"

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	AccountType     string `json:"accountType"`
	Name            string `json:"name"`
	Surname         string `json:"surname"`
	Gsm             string `json:"gsm"`
	Gender          string `json:"gender"`
	BirthDate       string `json:"birthDate"`
	Timezone        string `json:"timezone"`
	Photo           string `json:"photo"`
}

// toDomain converts the body to an auth.RegisterRequest. Field rules beyond
// parsing are enforced by the service.
func (r registerRequest) toDomain() (auth.RegisterRequest, error) {
	if r.Password != r.ConfirmPassword {
		return auth.RegisterRequest{}, badRequest("PASSWORD_MISMATCH", "password and confirmation do not match")
	}
	accountType, err := auth.ParseAccountType(r.AccountType)
	if err != nil {
		return auth.RegisterRequest{}, err
	}
	gender, err := auth.ParseGender(r.Gender)
	if err != nil {
		return auth.RegisterRequest{}, err
	}

	var birthDate *time.Time
	if r.BirthDate != "" {
		d, err := time.Parse(birthDateLayout, r.BirthDate)
		if err != nil {
			return auth.RegisterRequest{}, badRequest("BIRTH_DATE_INVALID", "birth date must be formatted as YYYY-MM-DD")
		}
		birthDate = &d
	}

	return auth.RegisterRequest{
		Email:       r.Email,
		Password:    r.Password,
		AccountType: accountType,
		Profile: auth.ProfileDetails{
			Name:      r.Name,
			Surname:   r.Surname,
			Gsm:       r.Gsm,
			Gender:    gender,
			BirthDate: birthDate,
			Timezone:  r.Timezone,
			Photo:     r.Photo,
		},
	}, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleLoginRequest struct {
	IDToken string `json:"idToken"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// AuthResponse is the body of a successful register, login or refresh.
type AuthResponse struct {
	AccessToken          string    `json:"accessToken"`
	AccessTokenExpiresAt time.Time `json:"accessTokenExpiresAt"`
	RefreshToken         string    `json:"refreshToken"`
	AccountID            string    `json:"accountId"`
	Email                string    `json:"email"`
	AccountType          string    `json:"accountType"`
}

func newAuthResponse(r *auth.AuthResult) AuthResponse {
	return AuthResponse{
		AccessToken:          r.AccessToken,
		AccessTokenExpiresAt: r.AccessTokenExpiresAt,
		RefreshToken:         r.RefreshToken,
		AccountID:            r.AccountID.String(),
		Email:                r.Email,
		AccountType:          r.AccountType.String(),
	}
}

// AccountResponse is the body of GET /me.
type AccountResponse struct {
	AccountID         string    `json:"accountId"`
	Email             string    `json:"email"`
	AccountType       string    `json:"accountType"`
	Role              string    `json:"role"`
	Provider          string    `json:"provider"`
	EmailVerification string    `json:"emailVerification"`
	CreatedAt         time.Time `json:"createdAt"`
}

func newAccountResponse(a *auth.Account) AccountResponse {
	return AccountResponse{
		AccountID:         a.ID.String(),
		Email:             a.Email,
		AccountType:       a.Type.String(),
		Role:              a.Type.Role(),
		Provider:          a.Provider.String(),
		EmailVerification: a.EmailVerification.String(),
		CreatedAt:         a.CreatedAt,
	}
}
