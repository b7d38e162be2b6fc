package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/lokit-s/A2A-protocol/internal/adapter/store"
	"github.com/lokit-s/A2A-protocol/internal/domain"
	"github.com/lokit-s/A2A-protocol/internal/infra/logger"
)

// --- shared test doubles ---

// fakeClassifier returns a canned reply, or an error.
type fakeClassifier struct {
	reply string
	err   error
	calls int
}

func (f *fakeClassifier) Classify(context.Context, string, string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeClassifier) Name() string { return "fake" }

// fakeRouter answers "get customer N" and "get product N" lookups from
// in-memory maps, replying the way the real router does: a route result
// wrapping the owning agent's envelope. With legacyEncoding set, the inner
// envelope is JSON-encoded a second time, mimicking the old wire format.
type fakeRouter struct {
	customers      map[int64]string
	products       map[int64]product
	legacyEncoding bool
	askErr         error
	asks           []string
}

type product struct {
	name  string
	price float64
}

func (f *fakeRouter) Ask(_ context.Context, text string) (json.RawMessage, error) {
	f.asks = append(f.asks, text)
	if f.askErr != nil {
		return nil, f.askErr
	}

	var env domain.Envelope
	var id int64
	switch {
	case parseLookup(text, "get customer %d", &id):
		if name, ok := f.customers[id]; ok {
			env = domain.Envelope{
				Status:   domain.StatusSuccess,
				Action:   domain.IntentGetCustomer,
				Message:  fmt.Sprintf("Customer %d found", id),
				Customer: &domain.Customer{ID: id, Name: name},
			}
		} else {
			env = domain.ErrorEnvelope(domain.IntentGetCustomer, "No customer found with ID %d", id)
		}
	case parseLookup(text, "get product %d", &id):
		if p, ok := f.products[id]; ok {
			env = domain.Envelope{
				Status:  domain.StatusSuccess,
				Action:  domain.IntentGetProduct,
				Message: fmt.Sprintf("Product %d found", id),
				Product: &domain.Product{ID: id, Name: p.name, Price: p.price},
			}
		} else {
			env = domain.ErrorEnvelope(domain.IntentGetProduct, "No product found with ID %d", id)
		}
	default:
		return json.Marshal(domain.RouteResult{
			Status:  domain.StatusError,
			Command: text,
			Message: "No suitable agent found for this command",
		})
	}

	inner, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	if f.legacyEncoding {
		inner, err = json.Marshal(string(inner))
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(domain.RouteResult{
		Status:   domain.StatusSuccess,
		RoutedTo: env.Action,
		Command:  text,
		Response: inner,
	})
}

func parseLookup(text, format string, id *int64) bool {
	_, err := fmt.Sscanf(text, format, id)
	return err == nil
}

// --- store helpers ---

func newCustomerStore(t *testing.T) *store.CustomerStore {
	t.Helper()
	db, err := store.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	s, err := store.NewCustomerStore(db)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func newProductStore(t *testing.T) *store.ProductStore {
	t.Helper()
	db, err := store.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	s, err := store.NewProductStore(db)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func newSalesStore(t *testing.T) *store.SalesStore {
	t.Helper()
	db, err := store.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	s, err := store.NewSalesStore(db)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func newTestCustomerAgent(t *testing.T, cls domain.Classifier) *CustomerAgent {
	return NewCustomerAgent(newCustomerStore(t), cls, logger.Discard(), "1.0.0")
}

func newTestProductAgent(t *testing.T, cls domain.Classifier) *ProductAgent {
	return NewProductAgent(newProductStore(t), cls, logger.Discard(), "1.0.0")
}

func newTestSalesAgent(t *testing.T, cls domain.Classifier, router domain.Asker) *SalesAgent {
	return NewSalesAgent(newSalesStore(t), cls, router, logger.Discard(), "1.0.0")
}
