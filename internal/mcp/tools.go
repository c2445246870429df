package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listAttendancesTool defines the list_attendances MCP tool.
var listAttendancesTool = mcp.NewTool("list_attendances",
	mcp.WithDescription("List recorded lead conversations, newest first, with score, priority and handoff link."),
	mcp.WithString("priority",
		mcp.Description("Only return leads with this priority"),
		mcp.Enum("low", "medium", "high"),
	),
	mcp.WithString("status",
		mcp.Description("Only return attendances in this follow-up status"),
		mcp.Enum("pending", "forwarded", "completed"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 20)"),
	),
)

// getAttendanceTool defines the get_attendance MCP tool.
var getAttendanceTool = mcp.NewTool("get_attendance",
	mcp.WithDescription("Get a recorded conversation with its full transcript, extracted facts and classification."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Attendance ID, e.g. ATD-1700000000000-ABCDE"),
	),
)

// scoreConversationTool defines the score_conversation MCP tool.
var scoreConversationTool = mcp.NewTool("score_conversation",
	mcp.WithDescription("Score a consórcio conversation transcript: extracts facts, decides whether it should end and classifies the lead."),
	mcp.WithString("category",
		mcp.Required(),
		mcp.Description("Consórcio category of interest"),
		mcp.Enum("IMÓVEL", "AUTO", "NEGÓCIO", "EDUCAÇÃO"),
	),
	mcp.WithString("transcript",
		mcp.Required(),
		mcp.Description("One turn per line, prefixed with \"lead:\" or \"agent:\""),
	),
)

// pendingNotificationsTool defines the pending_notifications MCP tool.
var pendingNotificationsTool = mcp.NewTool("pending_notifications",
	mcp.WithDescription("List hot-lead alerts that have not been delivered yet."),
)
