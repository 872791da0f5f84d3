package assistant_tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/schedchat/schedchat/internal/assistant"
	"github.com/schedchat/schedchat/internal/server"
	"github.com/schedchat/schedchat/internal/tools/common"
)

// RegisterAssistantTools registers the conversation tools with the MCP server
func RegisterAssistantTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	chatTool := mcp.NewTool("assistant_chat",
		mcp.WithDescription("Send a message to the scheduling assistant. The assistant knows the account's upcoming events and can create or update calendar events from the conversation."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The message to send, e.g. 'Schedule lunch with Sam tomorrow at noon'"),
		),
	)

	s.AddTool(chatTool, common.InstrumentedToolHandler(
		"assistant_chat", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleChat(ctx, request, sc)
		}))

	historyTool := mcp.NewTool("assistant_history",
		mcp.WithDescription("Show the conversation transcript with the scheduling assistant for an account"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of turns to return, starting from the most recent (default: all)"),
		),
	)

	s.AddTool(historyTool, common.InstrumentedToolHandler(
		"assistant_history", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleHistory(ctx, request, sc)
		}))

	clearTool := mcp.NewTool("assistant_clear_history",
		mcp.WithDescription("Forget the conversation with the scheduling assistant for an account"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(clearTool, common.InstrumentedToolHandler(
		"assistant_clear_history", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleClearHistory(ctx, request, sc)
		}))

	statusTool := mcp.NewTool("assistant_status",
		mcp.WithDescription("Report the scheduling assistant's conversation state for an account"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(statusTool, common.InstrumentedToolHandler(
		"assistant_status", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleStatus(ctx, request, sc)
		}))

	return nil
}

func handleChat(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	message, ok := args["message"].(string)
	if !ok {
		return mcp.NewToolResultError("message is required"), nil
	}

	pipeline, err := sc.PipelineForAccount(account)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Assistant unavailable: %v", err)), nil
	}

	reply, err := pipeline.Process(ctx, message)
	if err != nil {
		var verr *assistant.ValidationError
		if errors.As(err, &verr) {
			return mcp.NewToolResultError(verr.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to process message: %v", err)), nil
	}

	return mcp.NewToolResultText(reply), nil
}

func handleHistory(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	pipeline, err := sc.PipelineForAccount(account)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Assistant unavailable: %v", err)), nil
	}

	turns := pipeline.History()
	if limitVal, ok := args["limit"].(float64); ok && limitVal > 0 && int(limitVal) < len(turns) {
		turns = turns[len(turns)-int(limitVal):]
	}

	if len(turns) == 0 {
		return mcp.NewToolResultText("No conversation yet."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Conversation (%d turns):\n\n", len(turns))
	for _, turn := range turns {
		fmt.Fprintf(&b, "[%s] %s: %s\n",
			turn.Timestamp.Format(time.RFC3339), turn.Role, turn.Content)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleClearHistory(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	pipeline, err := sc.PipelineForAccount(account)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Assistant unavailable: %v", err)), nil
	}

	pipeline.ClearHistory()
	return mcp.NewToolResultText("Conversation cleared."), nil
}

func handleStatus(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	pipeline, err := sc.PipelineForAccount(account)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Assistant unavailable: %v", err)), nil
	}

	status := pipeline.Status()
	var b strings.Builder
	fmt.Fprintf(&b, "Account: %s\n", account)
	fmt.Fprintf(&b, "History turns: %d\n", status.HistoryTurns)
	if status.LastProcessed.IsZero() {
		b.WriteString("Last processed: never\n")
	} else {
		fmt.Fprintf(&b, "Last processed: %s\n", status.LastProcessed.Format(time.RFC3339))
	}

	return mcp.NewToolResultText(b.String()), nil
}
