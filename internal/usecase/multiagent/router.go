package multiagent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lokit-s/A2A-protocol/internal/domain"
	"github.com/lokit-s/A2A-protocol/internal/infra/tracer"
)

const routingSystemPrompt = `You are an intelligent router for a multi-agent system.
There are three agents: ProductAgent, CustomerAgent, and SalesAgent.
Given a user command, reply with ONLY the name of the agent best suited to handle it.
Reply with 'None' if no agent is suitable.

Examples:
- "Add iPhone to products" -> ProductAgent
- "Add Rahul to customers" -> CustomerAgent
- "Make a sale by customer 1 buys product 2 of quantity 20" -> SalesAgent
- "customer 1 buys 20 of product 1" -> SalesAgent
- "List all sales" -> SalesAgent
- "List all products" -> ProductAgent
- "List all customers" -> CustomerAgent
- "What's the weather?" -> None`

// routableAgents is the closed set of replies the classifier is allowed
// to pick from. Anything outside it is treated as no match.
var routableAgents = map[string]bool{
	domain.AgentNameProduct:  true,
	domain.AgentNameCustomer: true,
	domain.AgentNameSales:    true,
}

// Router classifies commands to an agent name and dispatches them over
// the directory's clients.
type Router struct {
	directory  *Directory
	classifier domain.Classifier
	logger     *slog.Logger
}

// NewRouter creates a router over the given directory.
func NewRouter(directory *Directory, classifier domain.Classifier, logger *slog.Logger) *Router {
	return &Router{directory: directory, classifier: classifier, logger: logger}
}

// Classify picks the agent for a command. It returns "" when no agent is
// suitable: a "None" reply, an off-list reply, and a classifier error all
// land there, the caller cannot tell them apart and does not need to.
func (r *Router) Classify(ctx context.Context, command string) string {
	reply, err := r.classifier.Classify(ctx, routingSystemPrompt, command)
	if err != nil {
		r.logger.Warn("routing classification failed", "error", err)
		return ""
	}

	name := strings.TrimSpace(reply)
	if !routableAgents[name] {
		if name != "None" {
			r.logger.Warn("classifier replied outside the agent set", "reply", name)
		}
		return ""
	}
	return name
}

// Route classifies the command, dispatches it to the chosen agent, and
// wraps the reply. All failures come back as error-status results, never
// as Go errors: the transport reports them to callers in-band.
func (r *Router) Route(ctx context.Context, command string) domain.RouteResult {
	ctx, span := tracer.StartSpan(ctx, "router.route")
	defer span.End()

	r.logger.Info("routing command", "command", command)

	name := r.Classify(ctx, command)
	if name == "" {
		return domain.RouteResult{
			Status:  domain.StatusError,
			Command: command,
			Message: "No suitable agent found for this command",
		}
	}
	span.SetAttributes(tracer.StringAttr("route.agent", name))

	entry, err := r.directory.Get(name)
	if err != nil {
		tracer.RecordError(span, err)
		return domain.RouteResult{
			Status:  domain.StatusError,
			Command: command,
			Message: "Agent " + name + " not available",
		}
	}

	reply, err := entry.Client.Ask(ctx, command)
	if err != nil {
		tracer.RecordError(span, err)
		r.logger.Error("agent dispatch failed", "agent", name, "error", err)
		return domain.RouteResult{
			Status:  domain.StatusError,
			Command: command,
			Message: "Error communicating with " + name + ": " + err.Error(),
		}
	}

	r.logger.Info("routed", "agent", name)
	tracer.SetOK(span)
	return domain.RouteResult{
		Status:   domain.StatusSuccess,
		RoutedTo: name,
		Command:  command,
		Response: reply,
	}
}
