package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lokit-s/A2A-protocol/internal/adapter/a2a"
	"github.com/lokit-s/A2A-protocol/internal/adapter/console"
	"github.com/lokit-s/A2A-protocol/internal/adapter/llm"
	"github.com/lokit-s/A2A-protocol/internal/adapter/store"
	"github.com/lokit-s/A2A-protocol/internal/domain"
	"github.com/lokit-s/A2A-protocol/internal/infra/config"
	"github.com/lokit-s/A2A-protocol/internal/infra/logger"
	"github.com/lokit-s/A2A-protocol/internal/infra/tracer"
	"github.com/lokit-s/A2A-protocol/internal/usecase"
	"github.com/lokit-s/A2A-protocol/internal/usecase/multiagent"
)

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	role := os.Args[1]
	switch role {
	case "--help", "-h", "help":
		showUsage()
		return
	case config.RoleRouter, config.RoleCustomer, config.RoleProduct, config.RoleSales:
	default:
		fmt.Fprintf(os.Stderr, "unknown role: %s\n\nRun 'agent --help' for usage.\n", role)
		os.Exit(1)
	}

	fs := flag.NewFlagSet(role, flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to the YAML config file")
	serverOnly := fs.Bool("server-only", false, "router only: serve HTTP without the interactive console")
	_ = fs.Parse(os.Args[2:])

	if err := run(role, *configPath, *serverOnly); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`agent - multi-agent CRUD system with natural-language commands

USAGE:
    agent ROLE [FLAGS]

ROLES:
    router      Route commands to the entity agents (port 5000)
    product     Product catalog agent (port 5001)
    customer    Customer records agent (port 5002)
    sales       Sales agent with price snapshots (port 5003)

FLAGS:
    --config PATH    Config file path (default: ./config.yaml)
    --server-only    Router only: skip the interactive console

CONFIGURATION:
    Environment overrides: DATABASE_URL, GROQ_API_KEY, GROQ_MODEL, PORT,
    ROUTER_AGENT_URL, PRODUCT_AGENT_URL, CUSTOMER_AGENT_URL, SALES_AGENT_URL

EXAMPLES:
    agent customer                    # customer agent on :5002
    agent router                      # router with console on :5000
    agent router --server-only        # router for headless deployments`)
}

func run(role, configPath string, serverOnly bool) error {
	cfg, err := config.Load(configPath, role)
	if err != nil {
		return err
	}

	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
	}()

	classifier, err := llm.New(cfg.LLM, log)
	if err != nil {
		return err
	}

	log.Info("starting agent", "role", role, "port", cfg.Agent.Port, "llm", classifier.Name())

	if role == config.RoleRouter {
		return runRouter(ctx, cfg, classifier, log, serverOnly)
	}
	return runEntityAgent(ctx, cfg, classifier, log)
}

// runEntityAgent wires up one of the three data-owning agents and serves
// it until the context is cancelled.
func runEntityAgent(ctx context.Context, cfg *config.Config, classifier domain.Classifier, log *slog.Logger) error {
	db, err := store.Open(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	card, handler, err := buildAgent(cfg, classifier, db, log)
	if err != nil {
		return err
	}

	srv := a2a.NewServer(fmt.Sprintf(":%d", cfg.Agent.Port), card, handler, log)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	log.Info("agent listening", "agent", card.Name, "addr", srv.BoundAddr())

	<-ctx.Done()
	return stopServer(srv, log)
}

// buildAgent constructs the role's store and usecase and returns its card
// and request handler.
func buildAgent(cfg *config.Config, classifier domain.Classifier, db *sql.DB, log *slog.Logger) (domain.AgentCard, a2a.Handler, error) {
	version := cfg.Agent.Version

	switch cfg.Agent.Role {
	case config.RoleCustomer:
		cs, err := store.NewCustomerStore(db)
		if err != nil {
			return domain.AgentCard{}, nil, err
		}
		agent := usecase.NewCustomerAgent(cs, classifier, log, version)
		return agent.Card(), func(ctx context.Context, text string) a2a.Result {
			return agent.ProcessCommand(ctx, text)
		}, nil

	case config.RoleProduct:
		ps, err := store.NewProductStore(db)
		if err != nil {
			return domain.AgentCard{}, nil, err
		}
		agent := usecase.NewProductAgent(ps, classifier, log, version)
		return agent.Card(), func(ctx context.Context, text string) a2a.Result {
			return agent.ProcessCommand(ctx, text)
		}, nil

	case config.RoleSales:
		ss, err := store.NewSalesStore(db)
		if err != nil {
			return domain.AgentCard{}, nil, err
		}
		routerClient := a2a.NewClient(cfg.Router.URL, log)
		agent := usecase.NewSalesAgent(ss, classifier, routerClient, log, version)
		return agent.Card(), func(ctx context.Context, text string) a2a.Result {
			return agent.ProcessCommand(ctx, text)
		}, nil
	}

	return domain.AgentCard{}, nil, fmt.Errorf("no agent for role %q", cfg.Agent.Role)
}

// runRouter wires the directory, health prober, HTTP server, and unless
// serverOnly, the interactive console.
func runRouter(ctx context.Context, cfg *config.Config, classifier domain.Classifier, log *slog.Logger, serverOnly bool) error {
	directory := multiagent.NewDirectory()
	directory.Register(domain.AgentNameProduct, cfg.Network.ProductURL, a2a.NewClient(cfg.Network.ProductURL, log))
	directory.Register(domain.AgentNameCustomer, cfg.Network.CustomerURL, a2a.NewClient(cfg.Network.CustomerURL, log))
	directory.Register(domain.AgentNameSales, cfg.Network.SalesURL, a2a.NewClient(cfg.Network.SalesURL, log))

	router := multiagent.NewRouter(directory, classifier, log)

	prober := multiagent.NewHealthProber(directory, log)
	if err := prober.Start(ctx, cfg.Network.ProbeIntervalDuration()); err != nil {
		return err
	}
	defer prober.Stop()

	card := domain.AgentCard{
		Name:        domain.AgentNameRouter,
		Description: "Routes natural-language commands to the product, customer, and sales agents",
		Version:     cfg.Agent.Version,
		Skills: []domain.AgentSkill{{
			Name:        "route_command",
			Description: "Classify a command and dispatch it to the right agent",
			Examples: []string{
				"Add iPhone to products",
				"List all customers",
				"customer 1 buys 20 of product 1",
			},
		}},
	}

	srv := a2a.NewServer(fmt.Sprintf(":%d", cfg.Agent.Port), card, func(ctx context.Context, text string) a2a.Result {
		return router.Route(ctx, text)
	}, log)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	log.Info("router listening", "addr", srv.BoundAddr())

	if serverOnly {
		<-ctx.Done()
		return stopServer(srv, log)
	}

	err := console.Run(ctx, console.Deps{
		Route:  router.Route,
		Health: prober.Snapshot,
		Logger: log,
	})
	if stopErr := stopServer(srv, log); err == nil {
		err = stopErr
	}
	return err
}

func stopServer(srv *a2a.Server, log *slog.Logger) error {
	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(stopCtx); err != nil {
		log.Warn("server stop failed", "error", err)
		return err
	}
	return nil
}
