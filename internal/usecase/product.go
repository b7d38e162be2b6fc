package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/lokit-s/A2A-protocol/internal/adapter/store"
	"github.com/lokit-s/A2A-protocol/internal/domain"
	"github.com/lokit-s/A2A-protocol/internal/infra/tracer"
)

const productSystemPrompt = `You are an assistant that converts user requests about products into structured JSON commands.
Products carry pricing information.
Supported commands:
- To add a product: {"intent":"add_product","parameters":{"name":"product name","price":99.99,"description":"optional description"}}
- To list products: {"intent":"list_products","parameters":{}}
- To get a product: {"intent":"get_product","parameters":{"id": product_id}}
- To delete a product: {"intent":"delete_product","parameters":{"id": product_id}}
- To update a product: {"intent":"update_product","parameters":{"id": product_id, "name": "new name (optional)", "price": 149.99, "description": "new description (optional)"}}

Examples:
- "Add iPhone for $999" -> {"intent":"add_product","parameters":{"name":"iPhone","price":999.00}}
- "Add MacBook Pro for $1299 with description High-performance laptop" -> {"intent":"add_product","parameters":{"name":"MacBook Pro","price":1299.00,"description":"High-performance laptop"}}
- "Update product 1 price to $899" -> {"intent":"update_product","parameters":{"id":1,"price":899.00}}

Return only the JSON, no extra text.`

// ProductAgent turns natural-language commands into product CRUD
// operations against the store.
type ProductAgent struct {
	store      *store.ProductStore
	classifier domain.Classifier
	logger     *slog.Logger
	version    string
}

// NewProductAgent creates the product agent.
func NewProductAgent(st *store.ProductStore, classifier domain.Classifier, logger *slog.Logger, version string) *ProductAgent {
	return &ProductAgent{store: st, classifier: classifier, logger: logger, version: version}
}

// Card describes the agent for discovery.
func (a *ProductAgent) Card() domain.AgentCard {
	return domain.AgentCard{
		Name:        domain.AgentNameProduct,
		Description: "Manages product catalog operations with pricing using natural language",
		Version:     a.version,
		Skills: []domain.AgentSkill{{
			Name:        "manage_products",
			Description: "Add, update, list, and delete products with prices",
			Examples: []string{
				"Add iPhone for $999",
				"Add MacBook Pro for $1299 with description High-performance laptop",
				"List all products",
				"Get product 1",
				"Update product 1 price to $899",
				"Delete product 2",
			},
		}},
	}
}

// ProcessCommand classifies the command, dispatches the intent, and
// returns the outcome as an envelope.
func (a *ProductAgent) ProcessCommand(ctx context.Context, command string) domain.Envelope {
	ctx, span := tracer.StartSpan(ctx, "product.process_command",
		trace.WithAttributes(tracer.StringAttr("agent.name", domain.AgentNameProduct)),
	)
	defer span.End()

	a.logger.Info("command received", "agent", domain.AgentNameProduct, "command", command)

	reply, err := a.classifier.Classify(ctx, productSystemPrompt, command)
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

func (a *ProductAgent) dispatch(ctx context.Context, req *domain.IntentRequest) domain.Envelope {
	switch req.Intent {
	case domain.IntentAddProduct:
		return a.addProduct(ctx, req)
	case domain.IntentListProducts:
		return a.listProducts(ctx)
	case domain.IntentGetProduct:
		return a.getProduct(ctx, req)
	case domain.IntentUpdateProduct:
		return a.updateProduct(ctx, req)
	case domain.IntentDeleteProduct:
		return a.deleteProduct(ctx, req)
	default:
		return domain.ErrorEnvelope(domain.ActionUnknown, "Command not recognized")
	}
}

func (a *ProductAgent) addProduct(ctx context.Context, req *domain.IntentRequest) domain.Envelope {
	var params domain.AddProductParams
	if err := req.DecodeParams(&params); err != nil {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: Invalid price format")
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: Product name missing")
	}
	if params.Price == nil {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: Product price missing")
	}
	if *params.Price < 0 {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: Price cannot be negative")
	}

	product, err := a.store.Add(ctx, name, *params.Price, strings.TrimSpace(params.Description))
	if err != nil {
		a.logger.Error("add product failed", "error", err)
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}

	return domain.Envelope{
		Status:  domain.StatusSuccess,
		Action:  domain.IntentAddProduct,
		Message: fmt.Sprintf("Product %q added with price $%.2f", product.Name, product.Price),
		Product: product,
	}
}

func (a *ProductAgent) listProducts(ctx context.Context) domain.Envelope {
	products, err := a.store.List(ctx)
	if err != nil {
		a.logger.Error("list products failed", "error", err)
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}

	count := len(products)
	return domain.Envelope{
		Status:   domain.StatusSuccess,
		Action:   domain.IntentListProducts,
		Message:  fmt.Sprintf("Found %d product(s)", count),
		Products: products,
		Count:    &count,
	}
}

func (a *ProductAgent) getProduct(ctx context.Context, req *domain.IntentRequest) domain.Envelope {
	var params domain.EntityIDParams
	if err := req.DecodeParams(&params); err != nil {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}
	if params.ID == 0 {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: Product ID missing")
	}

	product, err := a.store.Get(ctx, params.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrorEnvelope(domain.IntentGetProduct, "No product found with ID %d", params.ID)
	}
	if err != nil {
		a.logger.Error("get product failed", "id", params.ID, "error", err)
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}

	return domain.Envelope{
		Status:  domain.StatusSuccess,
		Action:  domain.IntentGetProduct,
		Message: fmt.Sprintf("Product %d found", params.ID),
		Product: product,
	}
}

func (a *ProductAgent) updateProduct(ctx context.Context, req *domain.IntentRequest) domain.Envelope {
	var params domain.UpdateProductParams
	if err := req.DecodeParams(&params); err != nil {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: Invalid price format")
	}
	if params.ID == 0 {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: Product ID missing")
	}
	if params.Price != nil && *params.Price < 0 {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: Price cannot be negative")
	}

	err := a.store.Update(ctx, params.ID, params.Name, params.Price, params.Description)
	switch {
	case errors.Is(err, domain.ErrNothingToUpdate):
		return domain.ErrorEnvelope(domain.IntentUpdateProduct, "Nothing to update for product ID %d", params.ID)
	case errors.Is(err, domain.ErrNotFound):
		return domain.ErrorEnvelope(domain.IntentUpdateProduct, "No product found with ID %d", params.ID)
	case err != nil:
		a.logger.Error("update product failed", "id", params.ID, "error", err)
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}

	return domain.Envelope{
		Status:  domain.StatusSuccess,
		Action:  domain.IntentUpdateProduct,
		Message: fmt.Sprintf("Product with ID %d updated", params.ID),
	}
}

func (a *ProductAgent) deleteProduct(ctx context.Context, req *domain.IntentRequest) domain.Envelope {
	var params domain.EntityIDParams
	if err := req.DecodeParams(&params); err != nil {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}
	if params.ID == 0 {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: Product ID missing")
	}

	err := a.store.Delete(ctx, params.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrorEnvelope(domain.IntentDeleteProduct, "No product found with ID %d", params.ID)
	}
	if err != nil {
		a.logger.Error("delete product failed", "id", params.ID, "error", err)
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}

	return domain.Envelope{
		Status:  domain.StatusSuccess,
		Action:  domain.IntentDeleteProduct,
		Message: fmt.Sprintf("Product with ID %d deleted", params.ID),
	}
}
