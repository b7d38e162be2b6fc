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

const customerSystemPrompt = `You are an assistant that converts user requests about customers into structured JSON commands.
Supported commands:
- To add a customer: {"intent":"add_customer","parameters":{"name":"customer name","email":"optional email"}}
- To list customers: {"intent":"list_customers","parameters":{}}
- To get a customer: {"intent":"get_customer","parameters":{"id": customer_id}}
- To delete a customer: {"intent":"delete_customer","parameters":{"id": customer_id}}
- To update a customer: {"intent":"update_customer","parameters":{"id": customer_id, "name": "new name (optional)", "email": "new email (optional)"}}
Return only the JSON, no extra text.`

// CustomerAgent turns natural-language commands into customer CRUD
// operations against the store.
type CustomerAgent struct {
	store      *store.CustomerStore
	classifier domain.Classifier
	logger     *slog.Logger
	version    string
}

// NewCustomerAgent creates the customer agent.
func NewCustomerAgent(st *store.CustomerStore, classifier domain.Classifier, logger *slog.Logger, version string) *CustomerAgent {
	return &CustomerAgent{store: st, classifier: classifier, logger: logger, version: version}
}

// Card describes the agent for discovery.
func (a *CustomerAgent) Card() domain.AgentCard {
	return domain.AgentCard{
		Name:        domain.AgentNameCustomer,
		Description: "Manages customer database operations using natural language",
		Version:     a.version,
		Skills: []domain.AgentSkill{{
			Name:        "manage_customers",
			Description: "Add, update, list, and delete customer records",
			Examples: []string{
				"Add John Doe to customers",
				"Add customer with name Sarah Smith and email sarah@example.com",
				"List all customers",
				"Get customer 1",
				"Update customer 2 email to mike@example.com",
				"Delete customer 3",
			},
		}},
	}
}

// ProcessCommand classifies the command, dispatches the intent, and
// returns the outcome as an envelope. Errors never escape: every failure
// becomes an error envelope.
func (a *CustomerAgent) ProcessCommand(ctx context.Context, command string) domain.Envelope {
	ctx, span := tracer.StartSpan(ctx, "customer.process_command",
		trace.WithAttributes(tracer.StringAttr("agent.name", domain.AgentNameCustomer)),
	)
	defer span.End()

	a.logger.Info("command received", "agent", domain.AgentNameCustomer, "command", command)

	reply, err := a.classifier.Classify(ctx, customerSystemPrompt, command)
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

func (a *CustomerAgent) dispatch(ctx context.Context, req *domain.IntentRequest) domain.Envelope {
	switch req.Intent {
	case domain.IntentAddCustomer:
		return a.addCustomer(ctx, req)
	case domain.IntentListCustomers:
		return a.listCustomers(ctx)
	case domain.IntentGetCustomer:
		return a.getCustomer(ctx, req)
	case domain.IntentUpdateCustomer:
		return a.updateCustomer(ctx, req)
	case domain.IntentDeleteCustomer:
		return a.deleteCustomer(ctx, req)
	default:
		return domain.ErrorEnvelope(domain.ActionUnknown, "Command not recognized")
	}
}

func (a *CustomerAgent) addCustomer(ctx context.Context, req *domain.IntentRequest) domain.Envelope {
	var params domain.AddCustomerParams
	if err := req.DecodeParams(&params); err != nil {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: Customer name missing")
	}

	customer, err := a.store.Add(ctx, name, strings.TrimSpace(params.Email))
	if err != nil {
		a.logger.Error("add customer failed", "error", err)
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}

	return domain.Envelope{
		Status:   domain.StatusSuccess,
		Action:   domain.IntentAddCustomer,
		Message:  fmt.Sprintf("Customer %q added", customer.Name),
		Customer: customer,
	}
}

func (a *CustomerAgent) listCustomers(ctx context.Context) domain.Envelope {
	customers, err := a.store.List(ctx)
	if err != nil {
		a.logger.Error("list customers failed", "error", err)
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}

	count := len(customers)
	env := domain.Envelope{
		Status:    domain.StatusSuccess,
		Action:    domain.IntentListCustomers,
		Customers: customers,
		Count:     &count,
	}
	env.Message = fmt.Sprintf("Found %d customer(s)", count)
	return env
}

func (a *CustomerAgent) getCustomer(ctx context.Context, req *domain.IntentRequest) domain.Envelope {
	var params domain.EntityIDParams
	if err := req.DecodeParams(&params); err != nil {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}
	if params.ID == 0 {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: Customer ID missing")
	}

	customer, err := a.store.Get(ctx, params.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrorEnvelope(domain.IntentGetCustomer, "No customer found with ID %d", params.ID)
	}
	if err != nil {
		a.logger.Error("get customer failed", "id", params.ID, "error", err)
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}

	return domain.Envelope{
		Status:   domain.StatusSuccess,
		Action:   domain.IntentGetCustomer,
		Message:  fmt.Sprintf("Customer %d found", params.ID),
		Customer: customer,
	}
}

func (a *CustomerAgent) updateCustomer(ctx context.Context, req *domain.IntentRequest) domain.Envelope {
	var params domain.UpdateCustomerParams
	if err := req.DecodeParams(&params); err != nil {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}
	if params.ID == 0 {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: Customer ID missing")
	}

	err := a.store.Update(ctx, params.ID, params.Name, params.Email)
	switch {
	case errors.Is(err, domain.ErrNothingToUpdate):
		return domain.ErrorEnvelope(domain.IntentUpdateCustomer, "Nothing to update for customer ID %d", params.ID)
	case errors.Is(err, domain.ErrNotFound):
		return domain.ErrorEnvelope(domain.IntentUpdateCustomer, "No customer found with ID %d", params.ID)
	case err != nil:
		a.logger.Error("update customer failed", "id", params.ID, "error", err)
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}

	return domain.Envelope{
		Status:  domain.StatusSuccess,
		Action:  domain.IntentUpdateCustomer,
		Message: fmt.Sprintf("Customer with ID %d updated", params.ID),
	}
}

func (a *CustomerAgent) deleteCustomer(ctx context.Context, req *domain.IntentRequest) domain.Envelope {
	var params domain.EntityIDParams
	if err := req.DecodeParams(&params); err != nil {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}
	if params.ID == 0 {
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: Customer ID missing")
	}

	err := a.store.Delete(ctx, params.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrorEnvelope(domain.IntentDeleteCustomer, "No customer found with ID %d", params.ID)
	}
	if err != nil {
		a.logger.Error("delete customer failed", "id", params.ID, "error", err)
		return domain.ErrorEnvelope(domain.ActionParseCommand, "Command failed: %v", err)
	}

	return domain.Envelope{
		Status:  domain.StatusSuccess,
		Action:  domain.IntentDeleteCustomer,
		Message: fmt.Sprintf("Customer with ID %d deleted", params.ID),
	}
}
