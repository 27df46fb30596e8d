package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"inkwell/internal/domain"
	"inkwell/internal/service"
)

func (s *Server) registerAnalysisTools() {
	s.mcp.AddTool(mcp.NewTool("analyze_handwriting",
		mcp.WithDescription("Send the current canvas to the model for transcription and literary analysis"),
	), s.handleAnalyzeHandwriting)

	s.mcp.AddTool(mcp.NewTool("ask_followup",
		mcp.WithDescription("Ask a follow-up question in the conversation attached to an analysis"),
		mcp.WithString("analysisId", mcp.Description("Analysis ID"), mcp.Required()),
		mcp.WithString("question", mcp.Description("The follow-up question"), mcp.Required()),
	), s.handleAskFollowup)

	s.mcp.AddTool(mcp.NewTool("list_analyses",
		mcp.WithDescription("List stored analyses, newest first"),
	), s.handleListAnalyses)

	s.mcp.AddTool(mcp.NewTool("get_analysis",
		mcp.WithDescription("Get one stored analysis with its full transcription and study material"),
		mcp.WithString("analysisId", mcp.Description("Analysis ID"), mcp.Required()),
	), s.handleGetAnalysis)
}

func (s *Server) handleAnalyzeHandwriting(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	png, err := s.canvas.CurrentImage()
	if err != nil {
		return nil, fmt.Errorf("encode canvas: %w", err)
	}
	if png == nil {
		return textResult("The canvas has not been sized yet; there is nothing to analyze."), nil
	}

	analysis, err := s.analyses.Analyze(ctx, png, "image/png", domain.SourceCanvas)
	if err != nil {
		if errors.Is(err, service.ErrStale) {
			return textResult("A newer submission superseded this one."), nil
		}
		return nil, err
	}
	return jsonResult(analysis)
}

func (s *Server) handleAskFollowup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	analysisID, _ := args["analysisId"].(string)
	question, _ := args["question"].(string)
	if analysisID == "" || question == "" {
		return nil, fmt.Errorf("analysisId and question are required")
	}

	msg, err := s.chat.SendMessage(ctx, analysisID, question)
	if err != nil {
		return nil, err
	}
	return textResult(msg.Content), nil
}

func (s *Server) handleListAnalyses(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	analyses, err := s.store.ListAnalyses()
	if err != nil {
		return nil, err
	}

	type summary struct {
		ID        string `json:"id"`
		Source    string `json:"source"`
		Language  string `json:"language"`
		Summary   string `json:"summary"`
		CreatedAt string `json:"createdAt"`
	}
	summaries := make([]summary, 0, len(analyses))
	for _, a := range analyses {
		summaries = append(summaries, summary{
			ID:        a.ID,
			Source:    string(a.Source),
			Language:  a.Language,
			Summary:   a.Summary,
			CreatedAt: a.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	return jsonResult(summaries)
}

func (s *Server) handleGetAnalysis(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	analysisID, _ := args["analysisId"].(string)
	if analysisID == "" {
		return nil, fmt.Errorf("analysisId is required")
	}

	analysis, err := s.store.GetAnalysis(analysisID)
	if err != nil {
		return nil, err
	}
	return jsonResult(analysis)
}
