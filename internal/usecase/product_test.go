package usecase

import (
	"context"
	"strings"
	"testing"
)

func TestProductAdd(t *testing.T) {
	ctx := context.Background()
	cls := &fakeClassifier{reply: `{"intent":"add_product","parameters":{"name":"iPhone","price":999.00}}`}
	agent := newTestProductAgent(t, cls)

	env := agent.ProcessCommand(ctx, "Add iPhone for $999")
	if !env.OK() {
		t.Fatalf("envelope = %+v", env)
	}
	if env.Message != `Product "iPhone" added with price $999.00` {
		t.Fatalf("message = %q", env.Message)
	}
	if env.Product == nil || env.Product.Price != 999.00 {
		t.Fatalf("product = %+v", env.Product)
	}
}

func TestProductAddWithDescription(t *testing.T) {
	ctx := context.Background()
	cls := &fakeClassifier{reply: `{"intent":"add_product","parameters":{"name":"MacBook Pro","price":1299.00,"description":"High-performance laptop"}}`}
	agent := newTestProductAgent(t, cls)

	env := agent.ProcessCommand(ctx, "Add MacBook Pro for $1299 with description High-performance laptop")
	if !env.OK() || env.Product.Description != "High-performance laptop" {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestProductPriceValidation(t *testing.T) {
	ctx := context.Background()
	cls := &fakeClassifier{}
	agent := newTestProductAgent(t, cls)

	cases := []struct {
		reply   string
		wantMsg string
	}{
		{`{"intent":"add_product","parameters":{"name":"X"}}`, "Product price missing"},
		{`{"intent":"add_product","parameters":{"name":"X","price":-5}}`, "Price cannot be negative"},
		{`{"intent":"add_product","parameters":{"name":"X","price":"abc"}}`, "Invalid price format"},
		{`{"intent":"add_product","parameters":{"price":10}}`, "Product name missing"},
	}
	for _, tc := range cases {
		cls.reply = tc.reply
		env := agent.ProcessCommand(ctx, "add")
		if env.OK() || !strings.Contains(env.Message, tc.wantMsg) {
			t.Errorf("reply %s => %+v, want message containing %q", tc.reply, env, tc.wantMsg)
		}
	}

	// Zero is a legal price.
	cls.reply = `{"intent":"add_product","parameters":{"name":"Sticker","price":0}}`
	if env := agent.ProcessCommand(ctx, "add free sticker"); !env.OK() {
		t.Fatalf("zero price rejected: %+v", env)
	}
}

func TestProductUpdateNegativePrice(t *testing.T) {
	ctx := context.Background()
	cls := &fakeClassifier{reply: `{"intent":"add_product","parameters":{"name":"iPhone","price":999}}`}
	agent := newTestProductAgent(t, cls)
	agent.ProcessCommand(ctx, "add")

	cls.reply = `{"intent":"update_product","parameters":{"id":1,"price":-1}}`
	env := agent.ProcessCommand(ctx, "update")
	if env.OK() || !strings.Contains(env.Message, "Price cannot be negative") {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestProductUpdateAndList(t *testing.T) {
	ctx := context.Background()
	cls := &fakeClassifier{reply: `{"intent":"add_product","parameters":{"name":"iPhone","price":999}}`}
	agent := newTestProductAgent(t, cls)
	agent.ProcessCommand(ctx, "add")

	cls.reply = `{"intent":"update_product","parameters":{"id":1,"price":899.00}}`
	env := agent.ProcessCommand(ctx, "Update product 1 price to $899")
	if !env.OK() || env.Message != "Product with ID 1 updated" {
		t.Fatalf("envelope = %+v", env)
	}

	cls.reply = `{"intent":"list_products","parameters":{}}`
	env = agent.ProcessCommand(ctx, "List all products")
	if !env.OK() || len(env.Products) != 1 || env.Products[0].Price != 899.00 {
		t.Fatalf("list = %+v", env)
	}
	if env.Message != "Found 1 product(s)" {
		t.Fatalf("message = %q", env.Message)
	}
}

func TestProductDeleteNotFound(t *testing.T) {
	ctx := context.Background()
	cls := &fakeClassifier{reply: `{"intent":"delete_product","parameters":{"id":7}}`}
	agent := newTestProductAgent(t, cls)

	env := agent.ProcessCommand(ctx, "Delete product 7")
	if env.OK() || env.Message != "No product found with ID 7" {
		t.Fatalf("envelope = %+v", env)
	}
}
