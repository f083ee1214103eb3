// Package protector encrypts payloads under per-tier keys and pseudonymizes
// sender identities, memoizing both in bounded FIFO caches.
package protector

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"toorak_vpn/internal/cache"
	"toorak_vpn/internal/cryptographic/encryption"
	"toorak_vpn/internal/model"
	"toorak_vpn/internal/utils/log"

	"go.uber.org/zap"
)

const (
	DefaultJurisdiction = "Toorak, Victoria"
	DefaultSaltPrefix   = "toorak-"
	pseudonymLength     = 16
)

var DefaultAcceptedJurisdictions = []string{"toorak", "victoria"}

type (
	// Keys holds one AES key per tier. Justice uses the corporate key,
	// law enforcement the private key, everything else the default key.
	Keys struct {
		Standard       []byte
		Justice        []byte
		LawEnforcement []byte
	}

	Options struct {
		CacheCapacity         int
		Jurisdiction          string   // label bound into every ciphertext
		AcceptedJurisdictions []string // lower case tokens
		SaltPrefix            string
		Now                   func() time.Time
	}

	entryKey struct {
		content string
		tier    model.Tier
	}

	Protector struct {
		keys       Keys
		opts       Options
		ciphers    *cache.FIFO[entryKey, string]
		pseudonyms *cache.FIFO[entryKey, string]
	}

	Stats struct {
		Ciphertexts cache.Stats `json:"ciphertexts"`
		Pseudonyms  cache.Stats `json:"pseudonyms"`
	}
)

func NewProtector(keys Keys, opts Options) (*Protector, error) {
	for tier, k := range map[model.Tier][]byte{
		model.TierStandard:       keys.Standard,
		model.TierJustice:        keys.Justice,
		model.TierLawEnforcement: keys.LawEnforcement,
	} {
		if !encryption.ValidKey(k) {
			return nil, fmt.Errorf("protector: %s key: %w", tier, encryption.ErrInvalidKey)
		}
	}

	if opts.CacheCapacity <= 0 {
		opts.CacheCapacity = cache.DefaultCapacity
	}
	if opts.Jurisdiction == "" {
		opts.Jurisdiction = DefaultJurisdiction
	}
	if len(opts.AcceptedJurisdictions) == 0 {
		opts.AcceptedJurisdictions = DefaultAcceptedJurisdictions
	}
	if opts.SaltPrefix == "" {
		opts.SaltPrefix = DefaultSaltPrefix
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	tokens := make([]string, 0, len(opts.AcceptedJurisdictions))
	for _, t := range opts.AcceptedJurisdictions {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			tokens = append(tokens, t)
		}
	}
	opts.AcceptedJurisdictions = tokens

	return &Protector{
		keys:       keys,
		opts:       opts,
		ciphers:    cache.NewFIFO[entryKey, string](opts.CacheCapacity),
		pseudonyms: cache.NewFIFO[entryKey, string](opts.CacheCapacity),
	}, nil
}

func (p *Protector) keyFor(tier model.Tier) []byte {
	switch tier.Normalize() {
	case model.TierJustice:
		return p.keys.Justice
	case model.TierLawEnforcement:
		return p.keys.LawEnforcement
	default:
		return p.keys.Standard
	}
}

// Encrypt returns the base64 ciphertext of payload under the tier key. A
// repeated (payload, tier) is served from cache with identical bytes.
func (p *Protector) Encrypt(payload string, tier model.Tier) (string, error) {
	tier = tier.Normalize()
	ct, _, err := p.ciphers.GetOrCompute(entryKey{payload, tier}, func() (string, error) {
		env := envelope{
			Payload:      payload,
			Timestamp:    p.opts.Now().UnixMilli(),
			Jurisdiction: p.opts.Jurisdiction,
		}
		plain, err := env.encode()
		if err != nil {
			log.Error("encode envelope failed", zap.String("tier", string(tier)), zap.Error(err))
			return "", internalError("encrypt", tier, err)
		}
		sealed, err := encryption.AEADEncrypt(p.keyFor(tier), plain, []byte(tier))
		if err != nil {
			log.Error("encrypt failed", zap.String("tier", string(tier)), zap.Error(err))
			return "", internalError("encrypt", tier, err)
		}
		return base64.StdEncoding.EncodeToString(sealed), nil
	})
	return ct, err
}

// Decrypt recovers the payload of a ciphertext made by Encrypt. tier must be
// the tier used at encryption; any other tier fails with ErrDecryption.
func (p *Protector) Decrypt(ciphertext string, tier model.Tier) (string, error) {
	tier = tier.Normalize()

	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", decryptionError(tier, err)
	}

	plain, err := encryption.AEADDecrypt(p.keyFor(tier), sealed, []byte(tier))
	if err != nil {
		if errors.Is(err, encryption.ErrInvalidKey) {
			log.Error("decrypt failed", zap.String("tier", string(tier)), zap.Error(err))
			return "", internalError("decrypt", tier, err)
		}
		return "", decryptionError(tier, err)
	}

	env, err := decodeEnvelope(plain)
	if err != nil {
		return "", decryptionError(tier, err)
	}
	return env.Payload, nil
}

// Anonymize returns a 16 hex character pseudonym for identity. The salt
// rotates each calendar year, so pseudonyms are stable only within a year.
func (p *Protector) Anonymize(identity string, tier model.Tier) string {
	tier = tier.Normalize()
	pseudonym, _, _ := p.pseudonyms.GetOrCompute(entryKey{identity, tier}, func() (string, error) {
		return pseudonymize(identity, p.salt(tier)), nil
	})
	return pseudonym
}

func (p *Protector) salt(tier model.Tier) string {
	return p.opts.SaltPrefix + string(tier) + "-" + strconv.Itoa(p.opts.Now().Year())
}

func pseudonymize(identity, salt string) string {
	sum := sha256.Sum256([]byte(identity + salt))
	return hex.EncodeToString(sum[:])[:pseudonymLength]
}

// ValidateJurisdiction reports whether label names an accepted jurisdiction.
// Encrypt, Decrypt and Anonymize do not call it.
func (p *Protector) ValidateJurisdiction(label string) bool {
	label = strings.ToLower(label)
	for _, token := range p.opts.AcceptedJurisdictions {
		if strings.Contains(label, token) {
			return true
		}
	}
	return false
}

func (p *Protector) Stats() Stats {
	return Stats{
		Ciphertexts: p.ciphers.Stats(),
		Pseudonyms:  p.pseudonyms.Stats(),
	}
}
