// Package router runs each inbound message through classification and
// protection, persists the result and queues it on its tier's route.
package router

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"toorak_vpn/internal/classifier"
	"toorak_vpn/internal/model"
	"toorak_vpn/internal/protector"
	"toorak_vpn/internal/utils/log"

	"go.uber.org/zap"
)

var (
	ErrInvalidMessage    = errors.New("message id and source are required")
	ErrOutOfJurisdiction = errors.New("message jurisdiction not accepted")
	ErrNotFound          = errors.New("record not found")
	ErrUnavailable       = errors.New("backing store not configured")
)

type (
	// RecordStore persists protected records. GetByMessageID returns nil, nil
	// for an unknown id.
	RecordStore interface {
		Create(ctx context.Context, rec *model.ProtectedRecord) error
		GetByMessageID(ctx context.Context, messageID string) (*model.ProtectedRecord, error)
	}

	// RouteQueue holds serialized records per tier until drained.
	RouteQueue interface {
		RPush(ctx context.Context, key string, value ...any) error
		Drain(ctx context.Context, key string) ([]string, error)
		LLen(ctx context.Context, key string) (int64, error)
		Expire(ctx context.Context, key string, ttl time.Duration) error
	}

	Router struct {
		protector *protector.Protector
		store     RecordStore
		queue     RouteQueue
		routeTTL  time.Duration

		total          atomic.Uint64
		standard       atomic.Uint64
		justice        atomic.Uint64
		lawEnforcement atomic.Uint64
	}
)

// NewRouter wires a router. store and queue may be nil.
func NewRouter(p *protector.Protector, store RecordStore, queue RouteQueue) *Router {
	return &Router{
		protector: p,
		store:     store,
		queue:     queue,
	}
}

// SetRouteTTL makes undrained route queues expire ttl after their last push.
// Zero keeps them until drained. Call before the router is shared.
func (r *Router) SetRouteTTL(ttl time.Duration) {
	r.routeTTL = ttl
}

// Process classifies and protects msg. Messages outside an accepted
// jurisdiction are rejected before any key is used.
func (r *Router) Process(ctx context.Context, msg *model.Message) (*model.ProtectedRecord, error) {
	if msg == nil || msg.ID == "" || msg.SourceIdentity == "" {
		return nil, ErrInvalidMessage
	}
	if !r.protector.ValidateJurisdiction(msg.Jurisdiction) {
		return nil, fmt.Errorf("%w: %q", ErrOutOfJurisdiction, msg.Jurisdiction)
	}

	tier, classification := classifier.Classify(msg.SourceIdentity)

	ciphertext, err := r.protector.Encrypt(msg.Payload, tier)
	if err != nil {
		return nil, err
	}

	rec := &model.ProtectedRecord{
		MessageID:       msg.ID,
		CreatedAt:       msg.CreatedAt,
		SourcePseudonym: r.protector.Anonymize(msg.SourceIdentity, tier),
		Destination:     msg.DestinationIdentity,
		Jurisdiction:    msg.Jurisdiction,
		Ciphertext:      ciphertext,
		Classification:  classification,
		Tier:            tier,
	}

	if r.store != nil {
		if err := r.store.Create(ctx, rec); err != nil {
			return nil, fmt.Errorf("persist record %s: %w", rec.MessageID, err)
		}
	}

	if r.queue != nil {
		if err := r.PutRecordsToRoute(ctx, tier, []*model.ProtectedRecord{rec}); err != nil {
			log.Error("PutRecordsToRoute failed", zap.String("message_id", rec.MessageID), zap.Error(err))
		}
	}

	r.count(tier)
	log.Debug("routed packet",
		zap.String("message_id", rec.MessageID),
		zap.String("tier", string(tier)),
		zap.String("classification", string(classification)))
	return rec, nil
}

func (r *Router) count(tier model.Tier) {
	r.total.Add(1)
	switch tier {
	case model.TierJustice:
		r.justice.Add(1)
	case model.TierLawEnforcement:
		r.lawEnforcement.Add(1)
	default:
		r.standard.Add(1)
	}
}

func (r *Router) Get(ctx context.Context, messageID string) (*model.ProtectedRecord, error) {
	if r.store == nil {
		return nil, ErrUnavailable
	}
	rec, err := r.store.GetByMessageID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

// Reveal decrypts a stored record with the tier it was protected under.
func (r *Router) Reveal(ctx context.Context, messageID string) (string, error) {
	rec, err := r.Get(ctx, messageID)
	if err != nil {
		return "", err
	}
	return r.protector.Decrypt(rec.Ciphertext, rec.Tier)
}

func (r *Router) RevealCiphertext(ciphertext string, tier model.Tier) (string, error) {
	return r.protector.Decrypt(ciphertext, tier)
}

func (r *Router) ValidateJurisdiction(label string) bool {
	return r.protector.ValidateJurisdiction(label)
}

func (r *Router) Stats() model.RouteStats {
	return model.RouteStats{
		TotalProcessed: r.total.Load(),
		Standard:       r.standard.Load(),
		Justice:        r.justice.Load(),
		LawEnforcement: r.lawEnforcement.Load(),
	}
}

func (r *Router) CacheStats() protector.Stats {
	return r.protector.Stats()
}
