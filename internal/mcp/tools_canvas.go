package mcpserver

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerCanvasTools() {
	s.mcp.AddTool(mcp.NewTool("get_canvas_image",
		mcp.WithDescription("Get the current drawing surface as a PNG image"),
	), s.handleGetCanvasImage)

	s.mcp.AddTool(mcp.NewTool("canvas_undo",
		mcp.WithDescription("Step the canvas back to the previous snapshot"),
	), s.handleCanvasUndo)

	s.mcp.AddTool(mcp.NewTool("canvas_redo",
		mcp.WithDescription("Step the canvas forward to the next snapshot"),
	), s.handleCanvasRedo)

	s.mcp.AddTool(mcp.NewTool("canvas_clear",
		mcp.WithDescription("Clear the canvas to a blank surface (recorded in history, so it can be undone)"),
	), s.handleCanvasClear)

	s.mcp.AddTool(mcp.NewTool("list_snapshots",
		mcp.WithDescription("List the canvas snapshot history with IDs and timestamps"),
	), s.handleListSnapshots)
}

func (s *Server) handleGetCanvasImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	png, err := s.canvas.CurrentImage()
	if err != nil {
		return nil, fmt.Errorf("encode canvas: %w", err)
	}
	if png == nil {
		return textResult("The canvas has not been sized yet; there is nothing to show."), nil
	}
	return imageResult(base64.StdEncoding.EncodeToString(png), "image/png"), nil
}

func (s *Server) handleCanvasUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.canvas.Undo() {
		return textResult("Nothing to undo"), nil
	}
	s.emitCanvasChanged(ctx)
	return textResult("Undone"), nil
}

func (s *Server) handleCanvasRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.canvas.Redo() {
		return textResult("Nothing to redo"), nil
	}
	s.emitCanvasChanged(ctx)
	return textResult("Redone"), nil
}

func (s *Server) handleCanvasClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.canvas.Clear() {
		return textResult("The canvas has not been sized yet; nothing to clear."), nil
	}
	s.emitCanvasChanged(ctx)
	return textResult("Canvas cleared"), nil
}

func (s *Server) handleListSnapshots(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type snapshotInfo struct {
		ID      uint64 `json:"id"`
		TakenAt string `json:"takenAt"`
	}
	snaps := s.canvas.Snapshots()
	infos := make([]snapshotInfo, 0, len(snaps))
	for _, snap := range snaps {
		infos = append(infos, snapshotInfo{ID: snap.ID, TakenAt: snap.TakenAt.Format(time.RFC3339)})
	}
	return jsonResult(infos)
}
