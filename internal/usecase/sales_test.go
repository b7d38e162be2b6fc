package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func defaultRouter() *fakeRouter {
	return &fakeRouter{
		customers: map[int64]string{1: "John Doe"},
		products:  map[int64]product{1: {name: "iPhone", price: 999.00}},
	}
}

func TestMakeSaleComputesTotal(t *testing.T) {
	ctx := context.Background()
	cls := &fakeClassifier{reply: `{"intent":"make_sale","parameters":{"customer_id":1,"product_id":1,"quantity":2}}`}
	agent := newTestSalesAgent(t, cls, defaultRouter())

	env := agent.ProcessCommand(ctx, "customer 1 buys 2 of product 1")
	if !env.OK() {
		t.Fatalf("envelope = %+v", env)
	}
	want := "Sale recorded: John Doe (ID 1) bought 2x iPhone (ID 1) at $999.00 each = $1998.00 total"
	if env.Message != want {
		t.Fatalf("message = %q\nwant      %q", env.Message, want)
	}

	sale := env.Sale
	if sale == nil || sale.ID != 1 || sale.TotalPrice != 1998.00 {
		t.Fatalf("sale = %+v", sale)
	}
	if sale.CustomerName != "John Doe" || sale.ProductName != "iPhone" {
		t.Fatalf("snapshots = %+v", sale)
	}
	if sale.SaleTime.IsZero() {
		t.Fatal("sale_time not assigned")
	}
}

func TestMakeSaleResolvesThroughRouter(t *testing.T) {
	ctx := context.Background()
	router := defaultRouter()
	cls := &fakeClassifier{reply: `{"intent":"make_sale","parameters":{"customer_id":1,"product_id":1,"quantity":1}}`}
	agent := newTestSalesAgent(t, cls, router)

	agent.ProcessCommand(ctx, "sale")
	if len(router.asks) != 2 {
		t.Fatalf("router asks = %v", router.asks)
	}
	if router.asks[0] != "get customer 1" || router.asks[1] != "get product 1" {
		t.Fatalf("asks = %v", router.asks)
	}
}

func TestMakeSaleLegacyDoubleEncoding(t *testing.T) {
	// Old routers JSON-encode the agent envelope twice; resolution must
	// still find the customer and product.
	ctx := context.Background()
	router := defaultRouter()
	router.legacyEncoding = true
	cls := &fakeClassifier{reply: `{"intent":"make_sale","parameters":{"customer_id":1,"product_id":1,"quantity":3}}`}
	agent := newTestSalesAgent(t, cls, router)

	env := agent.ProcessCommand(ctx, "sale")
	if !env.OK() || env.Sale.TotalPrice != 2997.00 {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestMakeSaleUnknownCustomer(t *testing.T) {
	ctx := context.Background()
	cls := &fakeClassifier{reply: `{"intent":"make_sale","parameters":{"customer_id":99,"product_id":1,"quantity":1}}`}
	agent := newTestSalesAgent(t, cls, defaultRouter())

	env := agent.ProcessCommand(ctx, "sale")
	if env.OK() {
		t.Fatalf("envelope = %+v", env)
	}
	if !strings.Contains(env.Message, "customer not found: no customer exists with ID 99") {
		t.Fatalf("message = %q", env.Message)
	}
}

func TestMakeSaleUnknownProduct(t *testing.T) {
	ctx := context.Background()
	cls := &fakeClassifier{reply: `{"intent":"make_sale","parameters":{"customer_id":1,"product_id":42,"quantity":1}}`}
	agent := newTestSalesAgent(t, cls, defaultRouter())

	env := agent.ProcessCommand(ctx, "sale")
	if env.OK() || !strings.Contains(env.Message, "product not found: no product exists with ID 42") {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestMakeSaleRouterDown(t *testing.T) {
	ctx := context.Background()
	router := defaultRouter()
	router.askErr = errors.New("connection refused")
	cls := &fakeClassifier{reply: `{"intent":"make_sale","parameters":{"customer_id":1,"product_id":1,"quantity":1}}`}
	agent := newTestSalesAgent(t, cls, router)

	env := agent.ProcessCommand(ctx, "sale")
	if env.OK() || !strings.Contains(env.Message, "customer not found") {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestMakeSaleValidation(t *testing.T) {
	ctx := context.Background()
	cls := &fakeClassifier{}
	agent := newTestSalesAgent(t, cls, defaultRouter())

	for _, reply := range []string{
		`{"intent":"make_sale","parameters":{"product_id":1,"quantity":1}}`,
		`{"intent":"make_sale","parameters":{"customer_id":1,"quantity":1}}`,
		`{"intent":"make_sale","parameters":{"customer_id":1,"product_id":1}}`,
	} {
		cls.reply = reply
		env := agent.ProcessCommand(ctx, "sale")
		if env.OK() || !strings.Contains(env.Message, "Missing required fields for sale") {
			t.Errorf("reply %s => %+v", reply, env)
		}
	}

	cls.reply = `{"intent":"make_sale","parameters":{"customer_id":1,"product_id":1,"quantity":-2}}`
	env := agent.ProcessCommand(ctx, "sale")
	if env.OK() || !strings.Contains(env.Message, "quantity must be a positive number") {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestUpdateSaleReResolvesEverything(t *testing.T) {
	ctx := context.Background()
	router := defaultRouter()
	cls := &fakeClassifier{reply: `{"intent":"make_sale","parameters":{"customer_id":1,"product_id":1,"quantity":2}}`}
	agent := newTestSalesAgent(t, cls, router)
	agent.ProcessCommand(ctx, "sale")

	// Price changes upstream; a quantity-only update must still pick up
	// the new price and recompute the total.
	router.products[1] = product{name: "iPhone", price: 899.00}

	cls.reply = `{"intent":"update_sale","parameters":{"id":1,"quantity":3}}`
	env := agent.ProcessCommand(ctx, "Update sale 1 quantity to 3")
	if !env.OK() {
		t.Fatalf("envelope = %+v", env)
	}
	if env.Message != "Sale with ID 1 updated with recalculated pricing" {
		t.Fatalf("message = %q", env.Message)
	}
	if env.Sale.Quantity != 3 || env.Sale.Price != 899.00 || env.Sale.TotalPrice != 2697.00 {
		t.Fatalf("sale = %+v", env.Sale)
	}
	if env.Sale.CustomerID != 1 || env.Sale.CustomerName != "John Doe" {
		t.Fatalf("fallback fields lost: %+v", env.Sale)
	}
}

func TestUpdateSaleChangesCustomer(t *testing.T) {
	ctx := context.Background()
	router := defaultRouter()
	router.customers[2] = "Sarah Smith"
	cls := &fakeClassifier{reply: `{"intent":"make_sale","parameters":{"customer_id":1,"product_id":1,"quantity":1}}`}
	agent := newTestSalesAgent(t, cls, router)
	agent.ProcessCommand(ctx, "sale")

	cls.reply = `{"intent":"update_sale","parameters":{"id":1,"customer_id":2}}`
	env := agent.ProcessCommand(ctx, "reassign sale 1 to customer 2")
	if !env.OK() || env.Sale.CustomerName != "Sarah Smith" {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestUpdateSaleInvalidTarget(t *testing.T) {
	ctx := context.Background()
	router := defaultRouter()
	cls := &fakeClassifier{reply: `{"intent":"make_sale","parameters":{"customer_id":1,"product_id":1,"quantity":1}}`}
	agent := newTestSalesAgent(t, cls, router)
	agent.ProcessCommand(ctx, "sale")

	cls.reply = `{"intent":"update_sale","parameters":{"id":1,"product_id":42}}`
	env := agent.ProcessCommand(ctx, "update")
	if env.OK() || !strings.Contains(env.Message, "invalid product ID for update") {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestUpdateSaleNotFound(t *testing.T) {
	ctx := context.Background()
	cls := &fakeClassifier{reply: `{"intent":"update_sale","parameters":{"id":5,"quantity":1}}`}
	agent := newTestSalesAgent(t, cls, defaultRouter())

	env := agent.ProcessCommand(ctx, "update")
	if env.OK() || env.Message != "No sale found with ID 5" {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestSalesListAndDelete(t *testing.T) {
	ctx := context.Background()
	cls := &fakeClassifier{reply: `{"intent":"make_sale","parameters":{"customer_id":1,"product_id":1,"quantity":1}}`}
	agent := newTestSalesAgent(t, cls, defaultRouter())
	agent.ProcessCommand(ctx, "sale")

	cls.reply = `{"intent":"list_sales","parameters":{}}`
	env := agent.ProcessCommand(ctx, "List all sales")
	if !env.OK() || env.Count == nil || *env.Count != 1 {
		t.Fatalf("list = %+v", env)
	}
	if env.Message != "Found 1 sale(s)" {
		t.Fatalf("message = %q", env.Message)
	}

	cls.reply = `{"intent":"delete_sale","parameters":{"id":1}}`
	env = agent.ProcessCommand(ctx, "Delete sale 1")
	if !env.OK() || env.Message != "Sale with ID 1 deleted" {
		t.Fatalf("envelope = %+v", env)
	}

	cls.reply = `{"intent":"delete_sale","parameters":{"id":1}}`
	env = agent.ProcessCommand(ctx, "Delete sale 1")
	if env.OK() || env.Message != "No sale found with ID 1" {
		t.Fatalf("second delete = %+v", env)
	}
}

func TestSalesGet(t *testing.T) {
	ctx := context.Background()
	cls := &fakeClassifier{reply: `{"intent":"make_sale","parameters":{"customer_id":1,"product_id":1,"quantity":2}}`}
	agent := newTestSalesAgent(t, cls, defaultRouter())
	agent.ProcessCommand(ctx, "sale")

	cls.reply = `{"intent":"get_sale","parameters":{"id":1}}`
	env := agent.ProcessCommand(ctx, "Get sale 1")
	if !env.OK() || env.Sale == nil || env.Sale.TotalPrice != 1998.00 {
		t.Fatalf("envelope = %+v", env)
	}
}
