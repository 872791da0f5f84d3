package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/schedchat/schedchat/internal/mcp/oauthbridge"
	"github.com/schedchat/schedchat/internal/server"
)

// RegisterUserResources registers session-specific user resources
// These resources provide information about the current authenticated user
func RegisterUserResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Register user profile resource
	profileResource := mcp.NewResource(
		"user://profile",
		"Current User Profile",
		mcp.WithResourceDescription("Information about the currently authenticated Google account"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(profileResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleUserProfile(ctx, request, sc)
	})

	// Register conversation transcript resource
	transcriptResource := mcp.NewResource(
		"assistant://transcript",
		"Assistant Conversation Transcript",
		mcp.WithResourceDescription("The conversation history with the scheduling assistant for the current account"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(transcriptResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleTranscript(ctx, request, sc)
	})

	return nil
}

// extractAccountFromContext extracts the user's email from OAuth context
// Falls back to "default" for STDIO transport or if no OAuth context is available
func extractAccountFromContext(ctx context.Context) string {
	if userInfo, ok := oauthbridge.UserFromContext(ctx); ok && userInfo != nil && userInfo.Email != "" {
		return userInfo.Email
	}
	return "default"
}

// handleUserProfile returns information about the current user's profile
func handleUserProfile(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	account := extractAccountFromContext(ctx)

	state := sc.AuthStateForAccount(account)
	if !state.IsAuthenticated() {
		return nil, fmt.Errorf("account %s is not authenticated with Google", account)
	}

	profile, err := state.GetUserProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	profileData := map[string]interface{}{
		"account":     account,
		"email":       profile.Email,
		"name":        profile.Name,
		"description": "Authenticated Google account for the scheduling assistant",
	}

	jsonData, err := json.MarshalIndent(profileData, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

// handleTranscript returns the assistant conversation history for the account
func handleTranscript(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	account := extractAccountFromContext(ctx)

	pipeline, err := sc.PipelineForAccount(account)
	if err != nil {
		return nil, fmt.Errorf("assistant unavailable for account %s: %w", account, err)
	}

	transcript := map[string]interface{}{
		"account": account,
		"turns":   pipeline.History(),
		"status":  pipeline.Status(),
	}

	jsonData, err := json.MarshalIndent(transcript, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transcript: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
