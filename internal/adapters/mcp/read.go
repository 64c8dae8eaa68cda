package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"canvastree/internal/application/commands"
	"canvastree/internal/domain"
)

// RegisterReadTools adds the browsing tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, ws *Workspace) {
	s.AddTool(coursesTool(), coursesHandler(ws))
	s.AddTool(treeTool(), treeHandler(ws))
	s.AddTool(expandTool(), expandHandler(ws))
	s.AddTool(searchTool(), searchHandler(ws))
	s.AddTool(linksToTool(), linksToHandler(ws))
}

// --- courses ---

func coursesTool() mcp.Tool {
	return mcp.NewTool("courses",
		mcp.WithDescription("List the current user's courses with their IDs, terms and favorite state."),
		mcp.WithBoolean("favorites_only",
			mcp.Description("Only list favorite courses (default false)"),
		),
	)
}

func coursesHandler(ws *Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewListCoursesCommand(ws.lms, req.GetBool("favorites_only", false))
		courses, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(courses, formatCourse)
	}
}

// --- tree ---

func treeTool() mcp.Tool {
	return mcp.NewTool("tree",
		mcp.WithDescription("Display the loaded course tree. Only expanded nodes show children; use expand to load more."),
	)
}

func treeHandler(ws *Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tree, err := ws.Tree(ctx)
		if err != nil {
			return toolError(err)
		}
		var sb strings.Builder
		tree.Walk(func(n *domain.Node, depth int) bool {
			renderNode(&sb, n, depth)
			return true
		})
		if sb.Len() == 0 {
			return mcp.NewToolResultText("No courses."), nil
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// renderNode writes one indented "Kind:Key  Name  (date)" line
func renderNode(sb *strings.Builder, n *domain.Node, depth int) {
	fmt.Fprintf(sb, "%s%s  %s", strings.Repeat("  ", depth), n.ID(), n.Name())
	if n.Kind() == domain.KindCourse {
		if info, ok := n.CourseInfo(); ok {
			fmt.Fprintf(sb, "  [%s]", info.ContentType)
		}
	}
	if label := n.Date().SmartLabel(); label != "" {
		fmt.Fprintf(sb, "  (%s)", label)
	}
	if !n.Enabled() {
		sb.WriteString("  (empty)")
	}
	sb.WriteByte('\n')
}

// --- expand ---

func expandTool() mcp.Tool {
	return mcp.NewTool("expand",
		mcp.WithDescription("Expand a loaded node and return its subtree. Kinds: Course, Module, Folder, Page, Assignment, Discussion, Announcement, LecturePortal, Attendance."),
		mcp.WithString("kind",
			mcp.Description("Node kind (e.g. Folder)"),
			mcp.Required(),
		),
		mcp.WithString("key",
			mcp.Description("Node key as shown by tree (e.g. 1234 or a page slug)"),
			mcp.Required(),
		),
		mcp.WithNumber("depth",
			mcp.Description("Levels below the node to expand as well (default 0)"),
		),
	)
}

func expandHandler(ws *Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tree, err := ws.Tree(ctx)
		if err != nil {
			return toolError(err)
		}
		cmd := commands.NewExpandCommand(ws.eng, tree, req.GetString("kind", ""), req.GetString("key", ""), req.GetInt("depth", 0))
		result, err := cmd.Execute(ctx)
		if result == nil {
			return toolError(err)
		}

		var sb strings.Builder
		for _, n := range result.Nodes {
			n.Walk(func(child *domain.Node, depth int) bool {
				renderNode(&sb, child, depth)
				return true
			})
		}
		if err != nil {
			fmt.Fprintf(&sb, "\nErrors:\n%v\n", err)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- search ---

func searchTool() mcp.Tool {
	return mcp.NewTool("search",
		mcp.WithDescription("Search the nodes discovered so far by name or key."),
		mcp.WithString("query",
			mcp.Description("Search query (at least two characters)"),
			mcp.Required(),
		),
	)
}

func searchHandler(ws *Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return toolError(fmt.Errorf("query is required"))
		}

		results, err := commands.NewSearchCommand(ws.index, query).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		if len(results) == 0 {
			return mcp.NewToolResultText("No results found."), nil
		}

		var sb strings.Builder
		for _, r := range results {
			fmt.Fprintf(&sb, "%s:%s  %s  course %s\n", r.Kind, r.Key, r.Name, r.CourseID)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- links_to ---

func linksToTool() mcp.Tool {
	return mcp.NewTool("links_to",
		mcp.WithDescription("List the pages, assignments and announcements whose text links to a node."),
		mcp.WithString("kind",
			mcp.Description("Target node kind (e.g. File)"),
			mcp.Required(),
		),
		mcp.WithString("key",
			mcp.Description("Target node key"),
			mcp.Required(),
		),
	)
}

func linksToHandler(ws *Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewLinksToCommand(ws.index, req.GetString("kind", ""), req.GetString("key", ""))
		sources, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(sources, func(id domain.Identity) string { return id.String() })
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatCourse(c domain.Course) string {
	line := fmt.Sprintf("%d  %s", c.ID, c.Name)
	if c.Term != nil && c.Term.Name != "" {
		line += "  (" + c.Term.Name + ")"
	}
	if c.IsFavorite {
		line += "  *"
	}
	return line
}
