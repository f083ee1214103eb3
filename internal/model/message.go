package model

import "time"

type (
	// Message is an inbound packet as produced by an external generator.
	// The router rejects a message without ID or SourceIdentity.
	Message struct {
		ID                  string    `json:"id"`
		CreatedAt           time.Time `json:"created_at"`
		Payload             string    `json:"payload"`
		SourceIdentity      string    `json:"source"`
		DestinationIdentity string    `json:"destination"`
		Jurisdiction        string    `json:"jurisdiction"`
	}

	// ProtectedRecord is the classified and protected form of a Message.
	ProtectedRecord struct {
		MessageID       string         `json:"message_id" bson:"message_id"`
		CreatedAt       time.Time      `json:"created_at" bson:"created_at"`
		SourcePseudonym string         `json:"source_pseudonym" bson:"source_pseudonym"`
		Destination     string         `json:"destination" bson:"destination"`
		Jurisdiction    string         `json:"jurisdiction" bson:"jurisdiction"`
		Ciphertext      string         `json:"ciphertext" bson:"ciphertext"`
		Classification  Classification `json:"classification" bson:"classification"`
		Tier            Tier           `json:"tier" bson:"tier"`
	}

	// RouteStats counts processed records per tier.
	RouteStats struct {
		TotalProcessed uint64 `json:"total_processed"`
		Standard       uint64 `json:"standard"`
		Justice        uint64 `json:"justice"`
		LawEnforcement uint64 `json:"law_enforcement"`
	}
)

type (
	// StreamEvent is written back for every message read from a stream.
	StreamEvent struct {
		MessageID string           `json:"message_id"`
		Record    *ProtectedRecord `json:"record,omitempty"`
		Error     string           `json:"error,omitempty"`
	}

	RevealRequest struct {
		Ciphertext string `json:"ciphertext"`
		Tier       Tier   `json:"tier"`
	}

	RevealResponse struct {
		MessageID string `json:"message_id,omitempty"`
		Payload   string `json:"payload"`
	}
)
