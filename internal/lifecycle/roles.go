// Package lifecycle holds the pure state machines of a contract: signatures,
// milestones, amendments, disputes and the escrow commission split. Every
// function mutates the aggregate it is given and never performs I/O.
package lifecycle

import (
	"TalentHive/internal/apperr"
	"TalentHive/internal/models"
)

// Role is the caller's relationship to one contract.
type Role int

const (
	RoleNone Role = iota
	RoleClient
	RoleFreelancer
)

func (r Role) String() string {
	switch r {
	case RoleClient:
		return "client"
	case RoleFreelancer:
		return "freelancer"
	default:
		return "none"
	}
}

// ResolveRole maps userID onto the contract's two parties.
func ResolveRole(c *models.Contract, userID uint) Role {
	switch {
	case c == nil || userID == 0:
		return RoleNone
	case userID == c.ClientID:
		return RoleClient
	case userID == c.FreelancerID:
		return RoleFreelancer
	default:
		return RoleNone
	}
}

// Counterparty returns the other participant, or 0 when userID is not one.
func Counterparty(c *models.Contract, userID uint) uint {
	switch ResolveRole(c, userID) {
	case RoleClient:
		return c.FreelancerID
	case RoleFreelancer:
		return c.ClientID
	default:
		return 0
	}
}

func requireParticipant(op string, c *models.Contract, userID uint) (Role, error) {
	role := ResolveRole(c, userID)
	if role == RoleNone {
		return role, apperr.Forbidden(op, "you are not a participant on this contract")
	}
	return role, nil
}

func requireClient(op string, c *models.Contract, userID uint) error {
	if ResolveRole(c, userID) != RoleClient {
		return apperr.Forbidden(op, "you are not the client on this contract")
	}
	return nil
}

func requireFreelancer(op string, c *models.Contract, userID uint) error {
	if ResolveRole(c, userID) != RoleFreelancer {
		return apperr.Forbidden(op, "you are not the freelancer on this contract")
	}
	return nil
}

func requireActive(op string, c *models.Contract) error {
	if c.Status != models.ContractActive {
		return apperr.ContractNotActive(op, "contract is not active, current status: %s", c.Status)
	}
	return nil
}
