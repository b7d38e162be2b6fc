package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Well-known agent names used by the router's closed-set classification.
const (
	AgentNameProduct  = "ProductAgent"
	AgentNameCustomer = "CustomerAgent"
	AgentNameSales    = "SalesAgent"
	AgentNameRouter   = "RouterAgent"
)

// AgentCard is the metadata document served at /.well-known/agent.json.
type AgentCard struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Version     string       `json:"version"`
	URL         string       `json:"url,omitempty"`
	Skills      []AgentSkill `json:"skills,omitempty"`
}

// AgentSkill advertises one capability on an agent card.
type AgentSkill struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Examples    []string `json:"examples,omitempty"`
}

// Classifier turns free text plus a system instruction into the
// classifier's raw text reply. Implementations are opaque LLM calls.
type Classifier interface {
	Classify(ctx context.Context, system, user string) (string, error)
	Name() string
}

// Asker is the outbound side of agent-to-agent communication. The sales
// agent holds an Asker pointed at the router for cross-entity resolution.
type Asker interface {
	Ask(ctx context.Context, text string) (json.RawMessage, error)
}

// AgentHealth is one entry of the router's advisory liveness snapshot.
type AgentHealth struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Online    bool      `json:"online"`
	CheckedAt time.Time `json:"checked_at"`
}
