package assistant_tools

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/schedchat/schedchat/internal/assistant"
	"github.com/schedchat/schedchat/internal/llm"
	"github.com/schedchat/schedchat/internal/server"
)

type fakeCompleter struct {
	reply string
}

func (f *fakeCompleter) Complete(_ context.Context, _ []llm.Message) (string, error) {
	return f.reply, nil
}

func newTestContext(t *testing.T, completer assistant.Completer) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), completer, assistant.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("failed to create server context: %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func callTool(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestRegisterAssistantTools(t *testing.T) {
	sc := newTestContext(t, &fakeCompleter{reply: "ok"})
	s := mcpserver.NewMCPServer("test", "0.0.1")
	if err := RegisterAssistantTools(s, sc); err != nil {
		t.Fatalf("RegisterAssistantTools() error = %v", err)
	}
}

func TestHandleChat(t *testing.T) {
	sc := newTestContext(t, &fakeCompleter{reply: "Your Friday is clear."})

	result, err := handleChat(context.Background(), callTool(map[string]interface{}{
		"message": "What does my Friday look like?",
	}), sc)
	if err != nil {
		t.Fatalf("handleChat() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error result: %+v", result)
	}

	text := resultText(t, result)
	if text != "Your Friday is clear." {
		t.Errorf("unexpected reply: %q", text)
	}
}

func TestHandleChatEmptyMessage(t *testing.T) {
	sc := newTestContext(t, &fakeCompleter{reply: "ok"})

	result, err := handleChat(context.Background(), callTool(map[string]interface{}{
		"message": "   ",
	}), sc)
	if err != nil {
		t.Fatalf("handleChat() error = %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for blank message")
	}
}

func TestHandleChatWithoutCompleter(t *testing.T) {
	sc := newTestContext(t, nil)

	result, err := handleChat(context.Background(), callTool(map[string]interface{}{
		"message": "hello",
	}), sc)
	if err != nil {
		t.Fatalf("handleChat() error = %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result when no completion endpoint is configured")
	}
}

func TestHistoryAndClear(t *testing.T) {
	sc := newTestContext(t, &fakeCompleter{reply: "Noted."})
	ctx := context.Background()

	if _, err := handleChat(ctx, callTool(map[string]interface{}{
		"message": "Remember my gym slot on Tuesdays",
	}), sc); err != nil {
		t.Fatalf("handleChat() error = %v", err)
	}

	result, err := handleHistory(ctx, callTool(map[string]interface{}{}), sc)
	if err != nil {
		t.Fatalf("handleHistory() error = %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "Remember my gym slot on Tuesdays") {
		t.Errorf("history missing user turn: %q", text)
	}
	if !strings.Contains(text, "Noted.") {
		t.Errorf("history missing assistant turn: %q", text)
	}

	if _, err := handleClearHistory(ctx, callTool(map[string]interface{}{}), sc); err != nil {
		t.Fatalf("handleClearHistory() error = %v", err)
	}

	result, err = handleHistory(ctx, callTool(map[string]interface{}{}), sc)
	if err != nil {
		t.Fatalf("handleHistory() error = %v", err)
	}
	if got := resultText(t, result); got != "No conversation yet." {
		t.Errorf("expected empty transcript, got %q", got)
	}
}

func TestHandleStatus(t *testing.T) {
	sc := newTestContext(t, &fakeCompleter{reply: "ok"})
	ctx := context.Background()

	result, err := handleStatus(ctx, callTool(map[string]interface{}{}), sc)
	if err != nil {
		t.Fatalf("handleStatus() error = %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "History turns: 0") {
		t.Errorf("unexpected status: %q", text)
	}
	if !strings.Contains(text, "Last processed: never") {
		t.Errorf("unexpected status: %q", text)
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		t.Fatalf("result content is not text: %+v", result.Content[0])
	}
	return text.Text
}
