package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"canvastree/internal/application/commands"
)

// RegisterWriteTools adds the tools that change files or course settings.
func RegisterWriteTools(s *server.MCPServer, ws *Workspace) {
	s.AddTool(downloadTool(), downloadHandler(ws))
	s.AddTool(favoriteTool(), favoriteHandler(ws))
	s.AddTool(nicknameTool(), nicknameHandler(ws))
}

// --- download ---

func downloadTool() mcp.Tool {
	return mcp.NewTool("download",
		mcp.WithDescription("Download a loaded node into a local directory. Folders, modules and pages download recursively; existing files and folders are skipped."),
		mcp.WithString("kind",
			mcp.Description("Node kind: Course, Module, Folder, Page, File or Lecture"),
			mcp.Required(),
		),
		mcp.WithString("key",
			mcp.Description("Node key as shown by tree"),
			mcp.Required(),
		),
		mcp.WithString("dir",
			mcp.Description("Target directory. Omit to use the configured download folder."),
		),
	)
}

func downloadHandler(ws *Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tree, err := ws.Tree(ctx)
		if err != nil {
			return toolError(err)
		}
		cmd := commands.NewDownloadCommand(ws.eng, tree, req.GetString("kind", ""), req.GetString("key", ""), req.GetString("dir", ""))
		result, err := cmd.Execute(ctx)
		if result == nil {
			return toolError(err)
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s, with errors:\n%v", result.Message, err)), nil
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- favorite ---

func favoriteTool() mcp.Tool {
	return mcp.NewTool("favorite",
		mcp.WithDescription("Add a course to, or remove it from, the favorites."),
		mcp.WithNumber("course_id",
			mcp.Description("Course ID"),
			mcp.Required(),
		),
		mcp.WithBoolean("favorite",
			mcp.Description("true to add (default), false to remove"),
		),
	)
}

func favoriteHandler(ws *Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewSetFavoriteCommand(ws.lms, int64(req.GetInt("course_id", 0)), req.GetBool("favorite", true))
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		ws.Reload()
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- nickname ---

func nicknameTool() mcp.Tool {
	return mcp.NewTool("nickname",
		mcp.WithDescription("Set a course nickname. An empty nickname restores the original course name."),
		mcp.WithNumber("course_id",
			mcp.Description("Course ID"),
			mcp.Required(),
		),
		mcp.WithString("nickname",
			mcp.Description("New nickname"),
		),
	)
}

func nicknameHandler(ws *Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewSetNicknameCommand(ws.lms, int64(req.GetInt("course_id", 0)), req.GetString("nickname", ""))
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		ws.Reload()
		return mcp.NewToolResultText(result.Message), nil
	}
}
