package integration

import (
	"context"
	"fmt"
	"testing"

	"github.com/lokit-s/A2A-protocol/internal/adapter/a2a"
	"github.com/lokit-s/A2A-protocol/internal/adapter/store"
	"github.com/lokit-s/A2A-protocol/internal/domain"
	"github.com/lokit-s/A2A-protocol/internal/infra/logger"
	"github.com/lokit-s/A2A-protocol/internal/usecase"
	"github.com/lokit-s/A2A-protocol/internal/usecase/multiagent"
)

// scriptedClassifier maps exact command text to a canned reply, standing in
// for the LLM so the full network runs offline and deterministically.
type scriptedClassifier struct {
	replies map[string]string
}

func (s *scriptedClassifier) Classify(_ context.Context, _, user string) (string, error) {
	reply, ok := s.replies[user]
	if !ok {
		return "", fmt.Errorf("no scripted reply for %q", user)
	}
	return reply, nil
}

func (s *scriptedClassifier) Name() string { return "scripted" }

// network is the full agent network wired over real HTTP on loopback.
type network struct {
	routerURL string
}

func startNetwork(t *testing.T) *network {
	t.Helper()
	ctx := context.Background()
	log := logger.Discard()

	startServer := func(card domain.AgentCard, handler a2a.Handler) string {
		t.Helper()
		srv := a2a.NewServer("127.0.0.1:0", card, handler, log)
		if err := srv.Start(ctx); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { srv.Stop(context.Background()) })
		return "http://" + srv.BoundAddr()
	}

	// Customer agent.
	customerDB, err := store.Open("file:" + t.Name() + "cust?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { customerDB.Close() })
	customerStore, err := store.NewCustomerStore(customerDB)
	if err != nil {
		t.Fatal(err)
	}
	customerAgent := usecase.NewCustomerAgent(customerStore, &scriptedClassifier{replies: map[string]string{
		"Add customer John Doe": `{"intent":"add_customer","parameters":{"name":"John Doe"}}`,
		"get customer 1":        `{"intent":"get_customer","parameters":{"id":1}}`,
	}}, log, "1.0.0")
	customerURL := startServer(customerAgent.Card(), func(ctx context.Context, text string) a2a.Result {
		return customerAgent.ProcessCommand(ctx, text)
	})

	// Product agent.
	productDB, err := store.Open("file:" + t.Name() + "prod?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { productDB.Close() })
	productStore, err := store.NewProductStore(productDB)
	if err != nil {
		t.Fatal(err)
	}
	productAgent := usecase.NewProductAgent(productStore, &scriptedClassifier{replies: map[string]string{
		"Add iPhone for $999": `{"intent":"add_product","parameters":{"name":"iPhone","price":999}}`,
		"get product 1":       `{"intent":"get_product","parameters":{"id":1}}`,
	}}, log, "1.0.0")
	productURL := startServer(productAgent.Card(), func(ctx context.Context, text string) a2a.Result {
		return productAgent.ProcessCommand(ctx, text)
	})

	// Router over the two data agents; the sales agent and its server are
	// registered after the router is up, since sales dials back through it.
	directory := multiagent.NewDirectory()
	directory.Register(domain.AgentNameCustomer, customerURL, a2a.NewClient(customerURL, log))
	directory.Register(domain.AgentNameProduct, productURL, a2a.NewClient(productURL, log))
	router := multiagent.NewRouter(directory, &scriptedClassifier{replies: map[string]string{
		"Add customer John Doe":          "CustomerAgent",
		"Add iPhone for $999":            "ProductAgent",
		"customer 1 buys 2 of product 1": "SalesAgent",
		"get customer 1":                 "CustomerAgent",
		"get product 1":                  "ProductAgent",
		"List all sales":                 "SalesAgent",
	}}, log)
	routerURL := startServer(domain.AgentCard{Name: domain.AgentNameRouter, Version: "1.0.0"},
		func(ctx context.Context, text string) a2a.Result {
			return router.Route(ctx, text)
		})

	// Sales agent, resolving through the live router.
	salesDB, err := store.Open("file:" + t.Name() + "sales?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { salesDB.Close() })
	salesStore, err := store.NewSalesStore(salesDB)
	if err != nil {
		t.Fatal(err)
	}
	salesAgent := usecase.NewSalesAgent(salesStore, &scriptedClassifier{replies: map[string]string{
		"customer 1 buys 2 of product 1": `{"intent":"make_sale","parameters":{"customer_id":1,"product_id":1,"quantity":2}}`,
		"List all sales":                 `{"intent":"list_sales","parameters":{}}`,
	}}, a2a.NewClient(routerURL, log), log, "1.0.0")
	salesURL := startServer(salesAgent.Card(), func(ctx context.Context, text string) a2a.Result {
		return salesAgent.ProcessCommand(ctx, text)
	})
	directory.Register(domain.AgentNameSales, salesURL, a2a.NewClient(salesURL, log))

	return &network{routerURL: routerURL}
}

// route sends a command to the router over HTTP and unwraps both layers.
func route(t *testing.T, routerURL, command string) (*domain.RouteResult, *domain.Envelope) {
	t.Helper()
	client := a2a.NewClient(routerURL, logger.Discard())

	raw, err := client.Ask(context.Background(), command)
	if err != nil {
		t.Fatalf("ask %q: %v", command, err)
	}
	res, err := domain.DecodeRouteResult(raw)
	if err != nil {
		t.Fatalf("decode route result for %q: %v", command, err)
	}
	if !res.OK() {
		t.Fatalf("route %q failed: %+v", command, res)
	}
	env, err := domain.DecodeAgentReply(res.Response)
	if err != nil {
		t.Fatalf("decode reply for %q: %v", command, err)
	}
	return res, env
}

func TestSaleAcrossLiveAgents(t *testing.T) {
	net := startNetwork(t)

	res, env := route(t, net.routerURL, "Add customer John Doe")
	if res.RoutedTo != domain.AgentNameCustomer {
		t.Fatalf("routed_to = %q", res.RoutedTo)
	}
	if env.Message != `Customer "John Doe" added` || env.Customer == nil || env.Customer.ID != 1 {
		t.Fatalf("envelope = %+v", env)
	}

	_, env = route(t, net.routerURL, "Add iPhone for $999")
	if env.Message != `Product "iPhone" added with price $999.00` {
		t.Fatalf("envelope = %+v", env)
	}

	res, env = route(t, net.routerURL, "customer 1 buys 2 of product 1")
	if res.RoutedTo != domain.AgentNameSales {
		t.Fatalf("routed_to = %q", res.RoutedTo)
	}
	want := "Sale recorded: John Doe (ID 1) bought 2x iPhone (ID 1) at $999.00 each = $1998.00 total"
	if env.Message != want {
		t.Fatalf("message = %q, want %q", env.Message, want)
	}
	if env.Sale == nil || env.Sale.TotalPrice != 1998 || env.Sale.CustomerName != "John Doe" {
		t.Fatalf("sale = %+v", env.Sale)
	}

	_, env = route(t, net.routerURL, "List all sales")
	if env.Message != "Found 1 sale(s)" || len(env.Sales) != 1 {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestSaleAcrossLiveAgentsViaTask(t *testing.T) {
	net := startNetwork(t)

	route(t, net.routerURL, "Add customer John Doe")
	route(t, net.routerURL, "Add iPhone for $999")

	client := a2a.NewClient(net.routerURL, logger.Discard())
	task, err := client.SendTask(context.Background(), &domain.Task{
		Message: domain.AgentMessage("customer 1 buys 2 of product 1"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if task.Status.State != domain.TaskStateCompleted {
		t.Fatalf("task = %+v", task)
	}
	if task.ID == "" {
		t.Fatal("task id not assigned")
	}

	res, err := domain.DecodeRouteResult([]byte(task.ResultText()))
	if err != nil {
		t.Fatal(err)
	}
	env, err := domain.DecodeAgentReply(res.Response)
	if err != nil {
		t.Fatal(err)
	}
	if env.Sale == nil || env.Sale.TotalPrice != 1998 {
		t.Fatalf("sale = %+v", env.Sale)
	}
}
