package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"vidaview/internal/app/access"
	"vidaview/internal/app/commands"
	"vidaview/internal/app/dto"
	apartmentsapp "vidaview/internal/app/handlers/apartments"
	"vidaview/internal/app/queries"
	domainuser "vidaview/internal/domain/user"
	"vidaview/internal/infra/security"
)

type seedFile struct {
	Users      []seedUser      `json:"users"`
	Apartments []seedApartment `json:"apartments"`
}

type seedUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type seedApartment struct {
	OwnerID     string `json:"owner_id"`
	Title       string `json:"title"`
	Address     string `json:"address"`
	City        string `json:"city"`
	MonthlyRent int64  `json:"monthly_rent"`
	Deposit     int64  `json:"deposit"`
	Currency    string `json:"currency"`
}

// loadSeed creates demo users and apartments from a JSON file. Entries that
// already exist are skipped so the seed can be applied on every start.
func (a *application) loadSeed(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed: %w", err)
	}
	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("decode seed: %w", err)
	}

	users := 0
	for _, u := range seed.Users {
		created, err := a.seedUser(ctx, u)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		if created {
			users++
		}
	}
	apartments := 0
	for _, apt := range seed.Apartments {
		created, err := a.seedApartment(ctx, apt)
		if err != nil {
			return fmt.Errorf("seed apartment %q: %w", apt.Title, err)
		}
		if created {
			apartments++
		}
	}
	a.logger.Info("seed applied", "path", path, "users", users, "apartments", apartments)
	return nil
}

func (a *application) seedUser(ctx context.Context, u seedUser) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	if _, err := a.users.ByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, domainuser.ErrNotFound) {
		return false, err
	}
	role, err := domainuser.ParseRole(u.Role)
	if err != nil {
		return false, err
	}
	hash, err := security.BcryptHasher{}.Hash(u.Password)
	if err != nil {
		return false, err
	}
	id := strings.TrimSpace(u.ID)
	if id == "" {
		id = uuid.NewString()
	}
	user, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(id),
		Email:        email,
		Name:         u.Name,
		Phone:        u.Phone,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return false, err
	}
	return true, a.users.Save(ctx, user)
}

func (a *application) seedApartment(ctx context.Context, apt seedApartment) (bool, error) {
	existing, err := queries.Ask[apartmentsapp.ListApartmentsQuery, dto.ApartmentCollection](ctx, a.queries, apartmentsapp.ListApartmentsQuery{OwnerID: apt.OwnerID})
	if err != nil {
		return false, err
	}
	for _, item := range existing.Items {
		if strings.EqualFold(item.Title, strings.TrimSpace(apt.Title)) {
			return false, nil
		}
	}
	cmd := apartmentsapp.CreateApartmentCommand{
		Actor:   access.System,
		OwnerID: apt.OwnerID,
		Payload: apartmentsapp.ApartmentPayload{
			Title:       apt.Title,
			Address:     apt.Address,
			City:        apt.City,
			MonthlyRent: apt.MonthlyRent,
			Deposit:     apt.Deposit,
			Currency:    apt.Currency,
		},
	}
	if _, err := commands.Dispatch[apartmentsapp.CreateApartmentCommand, *dto.Apartment](ctx, a.commands, cmd); err != nil {
		return false, err
	}
	return true, nil
}
