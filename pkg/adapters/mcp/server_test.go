package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/dumpling"
	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*Server, *dumpling.Wizard) {
	t.Helper()
	wiz, err := dumpling.New()
	require.NoError(t, err)
	return NewServer(wiz), wiz
}

func TestServer_WalkAndDeliver(t *testing.T) {
	s, wiz := newServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	resp, err := s.handleStart(ctx, req, sessionArgs{SessionID: "mcp-1"})
	require.NoError(t, err)
	assert.Equal(t, "mcp-1", resp.State.SessionID)
	assert.Equal(t, "hero", resp.View.StepKind)

	next := s.sessionTool(wiz.Next)
	for range wiz.Catalog().IntroCount() {
		resp, err = next(ctx, req, sessionArgs{SessionID: "mcp-1"})
		require.NoError(t, err)
	}
	assert.Equal(t, domain.PhaseContent, resp.View.Phase)
	assert.False(t, resp.View.CanAdvance)

	_, err = next(ctx, req, sessionArgs{SessionID: "mcp-1"})
	assert.ErrorIs(t, err, domain.ErrAdvanceBlocked)

	steps := []func() (SessionResponse, error){
		func() (SessionResponse, error) { return s.handleAnswer(ctx, req, answerArgs{"mcp-1", 1, "Other"}) },
		func() (SessionResponse, error) {
			return s.handleCustomAnswer(ctx, req, answerArgs{"mcp-1", 1, "quiet\x07 pride"})
		},
		func() (SessionResponse, error) { return next(ctx, req, sessionArgs{"mcp-1"}) },
		func() (SessionResponse, error) { return next(ctx, req, sessionArgs{"mcp-1"}) },
		func() (SessionResponse, error) { return s.handleAnswer(ctx, req, answerArgs{"mcp-1", 3, "Umami"}) },
		func() (SessionResponse, error) { return next(ctx, req, sessionArgs{"mcp-1"}) },
		func() (SessionResponse, error) { return s.handleAnswer(ctx, req, answerArgs{"mcp-1", 4, "Evening"}) },
		func() (SessionResponse, error) { return next(ctx, req, sessionArgs{"mcp-1"}) },
		func() (SessionResponse, error) {
			return s.handleSetControls(ctx, req, controlsArgs{SessionID: "mcp-1", StepID: 5, Temperature: 4, Shape: "round", Dietary: "vegan, nut-free"})
		},
		func() (SessionResponse, error) { return next(ctx, req, sessionArgs{"mcp-1"}) },
		func() (SessionResponse, error) { return s.handleAnswer(ctx, req, answerArgs{"mcp-1", 6, "Family"}) },
		func() (SessionResponse, error) { return next(ctx, req, sessionArgs{"mcp-1"}) },
		func() (SessionResponse, error) { return s.sessionTool(wiz.Generate)(ctx, req, sessionArgs{"mcp-1"}) },
		func() (SessionResponse, error) {
			return s.handleSetContact(ctx, req, contactArgs{"mcp-1", "family@example.com"})
		},
	}
	for i, step := range steps {
		resp, err = step()
		require.NoError(t, err, "step %d", i)
	}

	assert.Equal(t, "quiet pride", resp.State.CustomAnswers[1])
	assert.Equal(t, []string{"vegan", "nut-free"}, resp.State.Controls[5].Dietary)
	require.NotNil(t, resp.View.Result)
	assert.Equal(t, "Gentle Quiet pride Moon Dumplings", resp.View.Result.Name)

	delivered, err := s.handleDeliver(ctx, req, deliverArgs{SessionID: "mcp-1", Channels: "save, email"})
	require.NoError(t, err)
	require.Len(t, delivered.Notifications, 2)
	assert.Equal(t, domain.ChannelSave, delivered.Notifications[0].Channel)
	assert.True(t, delivered.Notifications[1].Success)
}

func TestServer_UnknownSession(t *testing.T) {
	s, wiz := newServer(t)
	_, err := s.sessionTool(wiz.Load)(context.Background(), mcp.CallToolRequest{}, sessionArgs{SessionID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestServer_CatalogResource(t *testing.T) {
	s, _ := newServer(t)
	contents, err := s.readCatalog(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	var doc struct {
		Intro   []json.RawMessage `json:"intro"`
		Content []json.RawMessage `json:"content"`
	}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &doc))
	assert.Len(t, doc.Intro, 4)
	assert.Len(t, doc.Content, 6)
}
