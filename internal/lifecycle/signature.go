package lifecycle

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"TalentHive/internal/apperr"
	"TalentHive/internal/models"
)

// SignInput carries the request metadata recorded next to a signature.
type SignInput struct {
	IPAddress string
	UserAgent string
}

// Sign appends userID's signature. The second distinct signature moves the
// contract from draft to active in the same mutation. Signing is not
// idempotent: a repeat fails with AlreadySigned and leaves the ledger as is.
func Sign(c *models.Contract, userID uint, in SignInput, now time.Time) (sig *models.Signature, activated bool, err error) {
	const op = "contract.sign"
	if _, err := requireParticipant(op, c, userID); err != nil {
		return nil, false, err
	}
	if c.SignatureOf(userID) != nil {
		return nil, false, apperr.AlreadySigned(op, "you have already signed this contract")
	}
	if c.Status != models.ContractDraft {
		return nil, false, apperr.InvalidTransition(op, "contract can only be signed while in draft, current status: %s", c.Status)
	}

	now = now.UTC()
	ip := strings.TrimSpace(in.IPAddress)
	ua := strings.TrimSpace(in.UserAgent)
	c.Signatures = append(c.Signatures, models.Signature{
		ID:            uuid.New(),
		ContractID:    c.ID,
		SignedBy:      userID,
		SignedAt:      now,
		IPAddress:     ip,
		UserAgent:     ua,
		SignatureHash: SignatureHash(c.ID, userID, now, ip, ua),
	})
	sig = &c.Signatures[len(c.Signatures)-1]

	if IsFullySigned(c) {
		next, ok := NextContractStatus(c.Status, ActionActivate)
		if !ok {
			return nil, false, apperr.InvalidTransition(op, "contract cannot be activated from status %s", c.Status)
		}
		c.Status = next
		c.ActivatedAt = &now
		activated = true
	}
	return sig, activated, nil
}

// IsFullySigned holds when the ledger has exactly one client and exactly one
// freelancer signature.
func IsFullySigned(c *models.Contract) bool {
	var client, freelancer int
	for _, s := range c.Signatures {
		switch s.SignedBy {
		case c.ClientID:
			client++
		case c.FreelancerID:
			freelancer++
		}
	}
	return client == 1 && freelancer == 1
}

// SignatureHash is the hex sha256 audit digest stored with a signature.
func SignatureHash(contractID uuid.UUID, signer uint, at time.Time, ip, userAgent string) string {
	payload := fmt.Sprintf("%s|%d|%s|%s|%s", contractID, signer, at.UTC().Format(time.RFC3339Nano), ip, userAgent)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
