package multiagent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/lokit-s/A2A-protocol/internal/domain"
)

// AgentClient is the transport the directory hands out for a registered
// agent. Implemented by the HTTP client in the a2a adapter.
type AgentClient interface {
	Ask(ctx context.Context, text string) (json.RawMessage, error)
	FetchCard(ctx context.Context) (*domain.AgentCard, error)
}

// Entry is a registered agent: its routing name, base URL, and client.
type Entry struct {
	Name   string
	URL    string
	Client AgentClient
}

// Directory is the static registry of downstream agents the router can
// dispatch to. Registration happens once at startup; lookups after that
// are read-only, so no locking is needed.
type Directory struct {
	entries map[string]Entry
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{entries: make(map[string]Entry)}
}

// Register adds an agent under its routing name, replacing any previous
// registration.
func (d *Directory) Register(name, url string, client AgentClient) {
	d.entries[name] = Entry{Name: name, URL: url, Client: client}
}

// Get returns the entry for name.
func (d *Directory) Get(name string) (Entry, error) {
	e, ok := d.entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: agent %s", domain.ErrNotFound, name)
	}
	return e, nil
}

// List returns all entries ordered by name.
func (d *Directory) List() []Entry {
	out := make([]Entry, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the registered routing names, ordered.
func (d *Directory) Names() []string {
	names := make([]string, 0, len(d.entries))
	for name := range d.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
