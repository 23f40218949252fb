// Package cards resolves hero card metadata needed by the aggregator.
package cards

import (
	"errors"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"

	"github.com/pable/go-merc-metrics/internal/model"
)

// ErrEmptyReference is returned when a card reference contains no cards.
var ErrEmptyReference = errors.New("card reference is empty")

// RoleLookup resolves the combat role of a hero card.
type RoleLookup interface {
	RoleOf(heroCardID string) model.Role
}

// Card is the subset of the reference card data we read.
type Card struct {
	ID            string `json:"id"`
	Name          string `json:"name,omitempty"`
	MercenaryRole string `json:"mercenaryRole,omitempty"`
}

// ConvertRole maps a reference mercenary role tag onto a Role.
func ConvertRole(tag string) model.Role {
	switch tag {
	case "CASTER":
		return model.RoleCaster
	case "FIGHTER":
		return model.RoleFighter
	case "TANK":
		return model.RoleProtector
	default:
		return model.RoleUnknown
	}
}

// Reference is an in-memory card database keyed by card id.
type Reference struct {
	roles map[string]model.Role
}

// NewReference indexes cards by id. Later duplicates override earlier ones.
func NewReference(cards []Card) *Reference {
	roles := make(map[string]model.Role, len(cards))
	for _, c := range cards {
		if c.ID == "" {
			continue
		}
		roles[c.ID] = ConvertRole(c.MercenaryRole)
	}
	return &Reference{roles: roles}
}

// Decode reads a JSON array of cards.
func Decode(r io.Reader) (*Reference, error) {
	var cards []Card
	if err := json.NewDecoder(r).Decode(&cards); err != nil {
		return nil, fmt.Errorf("decode cards: %w", err)
	}
	if len(cards) == 0 {
		return nil, ErrEmptyReference
	}
	return NewReference(cards), nil
}

// Load reads the card reference file at path.
func Load(path string) (*Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cards: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// RoleOf returns RoleUnknown for cards missing from the reference.
func (r *Reference) RoleOf(heroCardID string) model.Role {
	return r.roles[heroCardID]
}

// Len returns the number of indexed cards.
func (r *Reference) Len() int { return len(r.roles) }

// StaticRoles is a fixed RoleLookup, mainly for fixtures.
type StaticRoles map[string]model.Role

func (s StaticRoles) RoleOf(heroCardID string) model.Role {
	return s[heroCardID]
}
