package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/dumpling"
	"github.com/aretw0/dumpling/internal/presentation/graph"
	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/aretw0/dumpling/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// SessionResponse aligns with the OpenAPI schema and provides a unified structure across adapters.
type SessionResponse struct {
	State *domain.State `json:"state" jsonschema_description:"The stored session state"`
	View  domain.View   `json:"view" jsonschema_description:"The presentation of the current step"`
}

// DeliveryResponse lists the outcome of each delivery channel.
type DeliveryResponse struct {
	Notifications []domain.Notification `json:"notifications"`
}

// Wizard defines the facade operations exposed as MCP tools.
type Wizard interface {
	Catalog() *domain.Catalog
	Start(ctx context.Context, sessionID string) (*domain.State, error)
	Load(ctx context.Context, sessionID string) (*domain.State, error)
	Next(ctx context.Context, sessionID string) (*domain.State, error)
	Back(ctx context.Context, sessionID string) (*domain.State, error)
	Reset(ctx context.Context, sessionID string) (*domain.State, error)
	Answer(ctx context.Context, sessionID string, stepID int, value string) (*domain.State, error)
	CustomAnswer(ctx context.Context, sessionID string, stepID int, text string) (*domain.State, error)
	SetControls(ctx context.Context, sessionID string, stepID int, value domain.ControlValue) (*domain.State, error)
	SetContact(ctx context.Context, sessionID string, contact string) (*domain.State, error)
	Generate(ctx context.Context, sessionID string) (*domain.State, error)
	Deliver(ctx context.Context, sessionID string, channels ...domain.Channel) ([]domain.Notification, error)
	ViewOf(state *domain.State) domain.View
}

var _ Wizard = (*dumpling.Wizard)(nil)

// Server wraps the wizard and exposes it as an MCP Server.
type Server struct {
	wizard    Wizard
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(wiz Wizard) *Server {
	s := &Server{
		wizard:    wiz,
		mcpServer: server.NewMCPServer("dumpling-mcp", strings.TrimSpace(dumpling.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Tool arguments.

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type answerArgs struct {
	SessionID string `json:"session_id"`
	StepID    int    `json:"step_id"`
	Value     string `json:"value"`
}

type controlsArgs struct {
	SessionID   string `json:"session_id"`
	StepID      int    `json:"step_id"`
	Temperature int    `json:"temperature"`
	Shape       string `json:"shape"`
	Flavor      string `json:"flavor"`
	Enhancer    string `json:"enhancer"`
	Dietary     string `json:"dietary"`
}

type contactArgs struct {
	SessionID string `json:"session_id"`
	Contact   string `json:"contact"`
}

type deliverArgs struct {
	SessionID string `json:"session_id"`
	Channels  string `json:"channels"`
}

func (s *Server) registerTools() {
	sessionID := mcp.WithString("session_id", mcp.Required(), mcp.Description("The wizard session id"))
	stepID := mcp.WithNumber("step_id", mcp.Required(), mcp.Description("The content step identifier"))

	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a new dumpling wizard session at the first intro card."),
		mcp.WithString("session_id", mcp.Description("Session id to use (optional, random when omitted)")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("view_session",
		mcp.WithDescription("Return the state and the current step of a session."),
		sessionID,
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.sessionTool(s.wizard.Load)))

	for name, desc := range map[string]struct {
		text string
		op   func(context.Context, string) (*domain.State, error)
	}{
		"next":     {"Advance one step. Fails while the current question is unanswered.", s.wizard.Next},
		"back":     {"Go back one step.", s.wizard.Back},
		"reset":    {"Discard answers and the recipe and return to the first intro card.", s.wizard.Reset},
		"generate": {"Generate the recipe. Only allowed once every step was passed.", s.wizard.Generate},
	} {
		s.mcpServer.AddTool(mcp.NewTool(name,
			mcp.WithDescription(desc.text),
			sessionID,
			mcp.WithOutputSchema[SessionResponse](),
		), mcp.NewStructuredToolHandler(s.sessionTool(desc.op)))
	}

	s.mcpServer.AddTool(mcp.NewTool("answer",
		mcp.WithDescription("Select an option of a question or timeline step."),
		sessionID, stepID,
		mcp.WithString("value", mcp.Required(), mcp.Description("The option value")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleAnswer))

	s.mcpServer.AddTool(mcp.NewTool("custom_answer",
		mcp.WithDescription("Set the free-text answer of a question whose custom option is selected. Empty text clears it."),
		sessionID, stepID,
		mcp.WithString("value", mcp.Description("The free text")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleCustomAnswer))

	s.mcpServer.AddTool(mcp.NewTool("set_controls",
		mcp.WithDescription("Tune the recipe parameters of a controls step."),
		sessionID, stepID,
		mcp.WithNumber("temperature", mcp.Description("Heat from the step's range")),
		mcp.WithString("shape", mcp.Description("Fold shape")),
		mcp.WithString("flavor", mcp.Description("Flavor intensity")),
		mcp.WithString("enhancer", mcp.Description("Flavor enhancer")),
		mcp.WithString("dietary", mcp.Description("Comma-separated dietary toggles")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleSetControls))

	s.mcpServer.AddTool(mcp.NewTool("set_contact",
		mcp.WithDescription("Set the email address used by the email delivery channel. Empty clears it."),
		sessionID,
		mcp.WithString("contact", mcp.Description("Email address")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleSetContact))

	s.mcpServer.AddTool(mcp.NewTool("deliver",
		mcp.WithDescription("Deliver the recipe to print, save and/or email."),
		sessionID,
		mcp.WithString("channels", mcp.Description("Comma-separated channels (print, save, email). All when omitted.")),
		mcp.WithOutputSchema[DeliveryResponse](),
	), mcp.NewStructuredToolHandler(s.handleDeliver))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the step sequence of the catalog as a Mermaid flowchart."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(graph.GenerateMermaid(s.wizard.Catalog(), nil)), nil
	})
}

func (s *Server) respond(state *domain.State, err error) (SessionResponse, error) {
	if err != nil {
		return SessionResponse{}, err
	}
	return SessionResponse{State: state, View: s.wizard.ViewOf(state)}, nil
}

func (s *Server) sessionTool(op func(context.Context, string) (*domain.State, error)) func(context.Context, mcp.CallToolRequest, sessionArgs) (SessionResponse, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (SessionResponse, error) {
		return s.respond(op(ctx, args.SessionID))
	}
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (SessionResponse, error) {
	return s.respond(s.wizard.Start(ctx, args.SessionID))
}

func (s *Server) handleAnswer(ctx context.Context, _ mcp.CallToolRequest, args answerArgs) (SessionResponse, error) {
	return s.respond(s.wizard.Answer(ctx, args.SessionID, args.StepID, args.Value))
}

func (s *Server) handleCustomAnswer(ctx context.Context, _ mcp.CallToolRequest, args answerArgs) (SessionResponse, error) {
	clean, err := runner.SanitizeInput(args.Value)
	if err != nil {
		slog.Warn("MCP custom_answer: input rejected", "error", err, "size", len(args.Value))
		return SessionResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	return s.respond(s.wizard.CustomAnswer(ctx, args.SessionID, args.StepID, clean))
}

func (s *Server) handleSetControls(ctx context.Context, _ mcp.CallToolRequest, args controlsArgs) (SessionResponse, error) {
	value := domain.ControlValue{
		Temperature: args.Temperature,
		Shape:       args.Shape,
		Flavor:      args.Flavor,
		Enhancer:    args.Enhancer,
	}
	for _, d := range strings.Split(args.Dietary, ",") {
		if d = strings.TrimSpace(d); d != "" {
			value.Dietary = append(value.Dietary, d)
		}
	}
	return s.respond(s.wizard.SetControls(ctx, args.SessionID, args.StepID, value))
}

func (s *Server) handleSetContact(ctx context.Context, _ mcp.CallToolRequest, args contactArgs) (SessionResponse, error) {
	return s.respond(s.wizard.SetContact(ctx, args.SessionID, args.Contact))
}

func (s *Server) handleDeliver(ctx context.Context, _ mcp.CallToolRequest, args deliverArgs) (DeliveryResponse, error) {
	var channels []domain.Channel
	for _, c := range strings.Split(args.Channels, ",") {
		if c = strings.TrimSpace(strings.ToLower(c)); c != "" {
			channels = append(channels, domain.Channel(c))
		}
	}
	notes, err := s.wizard.Deliver(ctx, args.SessionID, channels...)
	if err != nil {
		return DeliveryResponse{}, err
	}
	return DeliveryResponse{Notifications: notes}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("dumpling://catalog", "Wizard Catalog",
		mcp.WithMIMEType("application/json"),
	), s.readCatalog)

	s.mcpServer.AddResource(mcp.NewResource("dumpling://graph", "Step Sequence (Mermaid)",
		mcp.WithMIMEType("text/vnd.mermaid"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "dumpling://graph",
				MIMEType: "text/vnd.mermaid",
				Text:     graph.GenerateMermaid(s.wizard.Catalog(), nil),
			},
		}, nil
	})
}

func (s *Server) readCatalog(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(s.wizard.Catalog())
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "dumpling://catalog",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
