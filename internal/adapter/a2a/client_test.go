package a2a

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lokit-s/A2A-protocol/internal/domain"
	"github.com/lokit-s/A2A-protocol/internal/infra/logger"
)

func TestClientAsk(t *testing.T) {
	var gotBody askRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ask" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"status":"success","action":"get_customer","customer":{"id":1,"name":"John Doe"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, logger.Discard())
	raw, err := c.Ask(context.Background(), "get customer 1")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if gotBody.Text != "get customer 1" {
		t.Fatalf("request body = %+v", gotBody)
	}

	env, err := domain.DecodeAgentReply(raw)
	if err != nil {
		t.Fatal(err)
	}
	if env.Customer == nil || env.Customer.Name != "John Doe" {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestClientAskUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", logger.Discard())
	_, err := c.Ask(context.Background(), "hello")
	if !errors.Is(err, domain.ErrAgentUnavailable) {
		t.Fatalf("err = %v, want ErrAgentUnavailable", err)
	}
}

func TestClientAskNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, logger.Discard())
	_, err := c.Ask(context.Background(), "hello")
	if !errors.Is(err, domain.ErrAgentUnavailable) {
		t.Fatalf("err = %v, want ErrAgentUnavailable", err)
	}
}

func TestClientSendTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tasks/send" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var task domain.Task
		json.NewDecoder(r.Body).Decode(&task)
		task.Status = domain.TaskStatus{State: domain.TaskStateCompleted}
		json.NewEncoder(w).Encode(task)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, logger.Discard())
	result, err := c.SendTask(context.Background(), &domain.Task{
		ID:      "t1",
		Message: &domain.TaskMessage{Content: domain.TaskContent{Type: "text", Text: "hi"}},
	})
	if err != nil {
		t.Fatalf("send task: %v", err)
	}
	if result.Status.State != domain.TaskStateCompleted || result.ID != "t1" {
		t.Fatalf("task = %+v", result)
	}
}

func TestClientFetchCard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/agent.json" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(domain.AgentCard{Name: domain.AgentNameSales, Version: "1.0.0"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, logger.Discard())
	card, err := c.FetchCard(context.Background())
	if err != nil {
		t.Fatalf("fetch card: %v", err)
	}
	if card.Name != domain.AgentNameSales {
		t.Fatalf("card = %+v", card)
	}
}

func TestClientFetchCardOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, logger.Discard())
	if _, err := c.FetchCard(context.Background()); !errors.Is(err, domain.ErrAgentUnavailable) {
		t.Fatalf("err = %v, want ErrAgentUnavailable", err)
	}
}

func TestClientTrimsTrailingSlash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ask" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", logger.Discard())
	if _, err := c.Ask(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}
}
