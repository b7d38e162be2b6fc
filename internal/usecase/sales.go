package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/lokit-s/A2A-protocol/internal/adapter/store"
	"github.com/lokit-s/A2A-protocol/internal/domain"
	"github.com/lokit-s/A2A-protocol/internal/infra/tracer"
)

const salesSystemPrompt = `You are an assistant that converts user requests about sales into structured JSON commands.
Sales include pricing calculations.
Supported commands:
- Make a sale: {"intent":"make_sale","parameters":{"customer_id":1,"product_id":2,"quantity":20}}
- List all sales: {"intent":"list_sales","parameters":{}}
- Get a sale: {"intent":"get_sale","parameters":{"id": sale_id}}
- Delete a sale: {"intent":"delete_sale","parameters":{"id": sale_id}}
- Update a sale: {"intent":"update_sale","parameters":{"id": sale_id, "customer_id":1, "product_id":2, "quantity":25}}
Return only the JSON, no extra text.`

// SalesAgent records sales against customers and products it does not own.
// It never reads the customer or product tables directly: every lookup goes
// through the router, so the other agents stay the single source of truth
// for their entities. Resolved names and prices are copied into the sale
// row at write time.
type SalesAgent struct {
	store      *store.SalesStore
	classifier domain.Classifier
	router     domain.Asker
	logger     *slog.Logger
	version    string
}

// NewSalesAgent creates the sales agent. router is the asker used to
// resolve customers and products through the routing tier.
func NewSalesAgent(st *store.SalesStore, classifier domain.Classifier, router domain.Asker, logger *slog.Logger, version string) *SalesAgent {
	return &SalesAgent{store: st, classifier: classifier, router: router, logger: logger, version: version}
}

// Card describes the agent for discovery.
func (a *SalesAgent) Card() domain.AgentCard {
	return domain.AgentCard{
		Name:        domain.AgentNameSales,
		Description: "Records and manages sales with pricing, resolving customers and products via the router",
		Version:     a.version,
		Skills: []domain.AgentSkill{{
			Name:        "manage_sales",
			Description: "Record, list, update, and delete sales with price snapshots",
			Examples: []string{
				"Make a sale: customer 1 buys product 2 quantity 20",
				"customer 1 buys 20 of product 1",
				"List all sales",
				"Update sale 1 quantity to 25",
				"Delete sale 3",
			},
		}},
	}
}

// ProcessCommand classifies the command, dispatches the intent, and
// returns the outcome as an envelope.
func (a *SalesAgent) ProcessCommand(ctx context.Context, command string) domain.Envelope {
	ctx, span := tracer.StartSpan(ctx, "sales.process_command",
		trace.WithAttributes(tracer.StringAttr("agent.name", domain.AgentNameSales)),
	)
	defer span.End()

	a.logger.Info("command received", "agent", domain.AgentNameSales, "command", command)

	reply, err := a.classifier.Classify(ctx, salesSystemPrompt, command)
	if err != nil {
		tracer.RecordError(span, err)
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}

	req, err := domain.DecodeIntent(reply)
	if err != nil {
		tracer.RecordError(span, err)
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}
	span.SetAttributes(tracer.StringAttr("command.intent", req.Intent))

	env := a.dispatch(ctx, req)
	if env.OK() {
		tracer.SetOK(span)
	}
	return env
}

func (a *SalesAgent) dispatch(ctx context.Context, req *domain.IntentRequest) domain.Envelope {
	switch req.Intent {
	case domain.IntentMakeSale:
		return a.makeSale(ctx, req)
	case domain.IntentListSales:
		return a.listSales(ctx)
	case domain.IntentGetSale:
		return a.getSale(ctx, req)
	case domain.IntentUpdateSale:
		return a.updateSale(ctx, req)
	case domain.IntentDeleteSale:
		return a.deleteSale(ctx, req)
	default:
		return domain.ErrorEnvelope(domain.ActionUnknown, "Command not recognized")
	}
}

func (a *SalesAgent) makeSale(ctx context.Context, req *domain.IntentRequest) domain.Envelope {
	var params domain.MakeSaleParams
	if err := req.DecodeParams(&params); err != nil {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}
	if params.CustomerID == 0 || params.ProductID == 0 || params.Quantity == 0 {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: Missing required fields for sale")
	}

	sale, err := a.MakeSale(ctx, params.CustomerID, params.ProductID, params.Quantity)
	if err != nil {
		a.logger.Error("make sale failed",
			"customer_id", params.CustomerID, "product_id", params.ProductID,
			"quantity", params.Quantity, "error", err)
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}

	return domain.Envelope{
		Status: domain.StatusSuccess,
		Action: domain.IntentMakeSale,
		Message: fmt.Sprintf("Sale recorded: %s (ID %d) bought %dx %s (ID %d) at $%.2f each = $%.2f total",
			sale.CustomerName, sale.CustomerID, sale.Quantity, sale.ProductName, sale.ProductID,
			sale.Price, sale.TotalPrice),
		Sale: sale,
	}
}

// MakeSale resolves the customer and product through the router, computes
// the total, and inserts the sale with name and price snapshots.
func (a *SalesAgent) MakeSale(ctx context.Context, customerID, productID, quantity int64) (*domain.Sale, error) {
	ctx, span := tracer.StartSpan(ctx, "sales.make_sale",
		trace.WithAttributes(
			tracer.Int64Attr("sale.customer_id", customerID),
			tracer.Int64Attr("sale.product_id", productID),
			tracer.Int64Attr("sale.quantity", quantity),
		),
	)
	defer span.End()

	if customerID <= 0 {
		return nil, fmt.Errorf("%w: customer ID is required", domain.ErrInvalidInput)
	}
	if productID <= 0 {
		return nil, fmt.Errorf("%w: product ID is required", domain.ErrInvalidInput)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be a positive number, got %d", domain.ErrInvalidInput, quantity)
	}

	customerName, err := a.resolveCustomer(ctx, customerID)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("customer not found: no customer exists with ID %d", customerID)
	}

	productName, price, err := a.resolveProduct(ctx, productID)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("product not found: no product exists with ID %d", productID)
	}

	sale := &domain.Sale{
		CustomerID:   customerID,
		CustomerName: customerName,
		ProductID:    productID,
		ProductName:  productName,
		Quantity:     quantity,
		Price:        price,
		TotalPrice:   price * float64(quantity),
	}
	if err := a.store.Insert(ctx, sale); err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("database error during sale insertion: %v", err)
	}

	tracer.SetOK(span)
	return sale, nil
}

func (a *SalesAgent) listSales(ctx context.Context) domain.Envelope {
	sales, err := a.store.List(ctx)
	if err != nil {
		a.logger.Error("list sales failed", "error", err)
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}

	count := len(sales)
	return domain.Envelope{
		Status:  domain.StatusSuccess,
		Action:  domain.IntentListSales,
		Message: fmt.Sprintf("Found %d sale(s)", count),
		Sales:   sales,
		Count:   &count,
	}
}

func (a *SalesAgent) getSale(ctx context.Context, req *domain.IntentRequest) domain.Envelope {
	var params domain.EntityIDParams
	if err := req.DecodeParams(&params); err != nil {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}
	if params.ID == 0 {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: Sale ID missing")
	}

	sale, err := a.store.Get(ctx, params.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrorEnvelope(domain.IntentGetSale, "No sale found with ID %d", params.ID)
	}
	if err != nil {
		a.logger.Error("get sale failed", "id", params.ID, "error", err)
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}

	return domain.Envelope{
		Status:  domain.StatusSuccess,
		Action:  domain.IntentGetSale,
		Message: fmt.Sprintf("Sale %d found", params.ID),
		Sale:    sale,
	}
}

func (a *SalesAgent) updateSale(ctx context.Context, req *domain.IntentRequest) domain.Envelope {
	var params domain.UpdateSaleParams
	if err := req.DecodeParams(&params); err != nil {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}
	if params.ID == 0 {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: Sale ID missing")
	}

	sale, err := a.UpdateSale(ctx, params)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrorEnvelope(domain.IntentUpdateSale, "No sale found with ID %d", params.ID)
	}
	if err != nil {
		a.logger.Error("update sale failed", "id", params.ID, "error", err)
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}

	return domain.Envelope{
		Status:  domain.StatusSuccess,
		Action:  domain.IntentUpdateSale,
		Message: fmt.Sprintf("Sale with ID %d updated with recalculated pricing", params.ID),
		Sale:    sale,
	}
}

// UpdateSale rewrites a sale. Omitted fields fall back to the stored row,
// then both the customer and the product are re-resolved through the
// router and the snapshots and total are recomputed, even when only the
// quantity changed. A sale never keeps a stale name or price past an
// update.
func (a *SalesAgent) UpdateSale(ctx context.Context, params domain.UpdateSaleParams) (*domain.Sale, error) {
	ctx, span := tracer.StartSpan(ctx, "sales.update_sale",
		trace.WithAttributes(tracer.Int64Attr("sale.id", params.ID)),
	)
	defer span.End()

	current, err := a.store.Get(ctx, params.ID)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	customerID := current.CustomerID
	if params.CustomerID != nil {
		customerID = *params.CustomerID
	}
	productID := current.ProductID
	if params.ProductID != nil {
		productID = *params.ProductID
	}
	quantity := current.Quantity
	if params.Quantity != nil {
		quantity = *params.Quantity
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be a positive number, got %d", domain.ErrInvalidInput, quantity)
	}

	customerName, err := a.resolveCustomer(ctx, customerID)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("invalid customer ID for update: no customer exists with ID %d", customerID)
	}
	productName, price, err := a.resolveProduct(ctx, productID)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("invalid product ID for update: no product exists with ID %d", productID)
	}

	sale := &domain.Sale{
		ID:           params.ID,
		CustomerID:   customerID,
		CustomerName: customerName,
		ProductID:    productID,
		ProductName:  productName,
		Quantity:     quantity,
		Price:        price,
		TotalPrice:   price * float64(quantity),
		SaleTime:     current.SaleTime,
	}
	if err := a.store.Update(ctx, sale); err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	tracer.SetOK(span)
	return sale, nil
}

func (a *SalesAgent) deleteSale(ctx context.Context, req *domain.IntentRequest) domain.Envelope {
	var params domain.EntityIDParams
	if err := req.DecodeParams(&params); err != nil {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}
	if params.ID == 0 {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: Sale ID missing")
	}

	err := a.store.Delete(ctx, params.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrorEnvelope(domain.IntentDeleteSale, "No sale found with ID %d", params.ID)
	}
	if err != nil {
		a.logger.Error("delete sale failed", "id", params.ID, "error", err)
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}

	return domain.Envelope{
		Status:  domain.StatusSuccess,
		Action:  domain.IntentDeleteSale,
		Message: fmt.Sprintf("Sale with ID %d deleted", params.ID),
	}
}

// resolveCustomer asks the router for "get customer N" and digs the
// customer's name out of the routed envelope.
func (a *SalesAgent) resolveCustomer(ctx context.Context, id int64) (string, error) {
	env, err := a.resolve(ctx, fmt.Sprintf("get customer %d", id))
	if err != nil {
		return "", err
	}
	if env.Customer == nil || env.Customer.Name == "" {
		return "", fmt.Errorf("%w: customer %d", domain.ErrNotFound, id)
	}
	return env.Customer.Name, nil
}

// resolveProduct asks the router for "get product N" and returns the
// product's name and unit price.
func (a *SalesAgent) resolveProduct(ctx context.Context, id int64) (string, float64, error) {
	env, err := a.resolve(ctx, fmt.Sprintf("get product %d", id))
	if err != nil {
		return "", 0, err
	}
	if env.Product == nil || env.Product.Name == "" {
		return "", 0, fmt.Errorf("%w: product %d", domain.ErrNotFound, id)
	}
	return env.Product.Name, env.Product.Price, nil
}

// resolve sends a lookup command through the router and unwraps the two
// layers of the reply: the route result, then the target agent's envelope
// inside it.
func (a *SalesAgent) resolve(ctx context.Context, command string) (*domain.Envelope, error) {
	raw, err := a.router.Ask(ctx, command)
	if err != nil {
		a.logger.Warn("router lookup failed", "command", command, "error", err)
		return nil, err
	}

	res, err := domain.DecodeRouteResult(raw)
	if err != nil {
		a.logger.Warn("router reply undecodable", "command", command, "error", err)
		return nil, err
	}
	if !res.OK() {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, res.Message)
	}

	env, err := domain.DecodeAgentReply(res.Response)
	if err != nil {
		a.logger.Warn("agent reply undecodable", "command", command, "error", err)
		return nil, err
	}
	if !env.OK() {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, env.Message)
	}
	return env, nil
}
