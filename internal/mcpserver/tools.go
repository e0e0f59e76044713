package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the Nucleus MCP server.
// Descriptions are what the LLM reads to decide which tool to use.

var ToolClassifyIntent = mcp.NewTool("classify_intent",
	mcp.WithDescription(
		"Classify a marketplace user's intent (BUY, SELL, EXCHANGE, TRANSFER or UNKNOWN) "+
			"from weakly-typed behavioral signals. Returns the winning intent with a "+
			"confidence score and the signals that contributed. Purely advisory."),
	mcp.WithString("user_id",
		mcp.Description("The user the signals belong to (recorded in the audit trail)")),
	mcp.WithObject("signals",
		mcp.Required(),
		mcp.Description("Signal map, e.g. {\"action_keyword\": \"buy now\", \"page_context\": \"checkout\", "+
			"\"user_history\": \"frequent_buyer\", \"item_interaction\": \"added_to_cart\"}")),
)

var ToolComputeTrust = mcp.NewTool("compute_trust",
	mcp.WithDescription(
		"Compute a deterministic 0-100 trust score for a marketplace party from their "+
			"verification and history attributes. Returns the score, its tier "+
			"(RESTRICTED/NEW/STANDARD/TRUSTED/VERIFIED) and the full weighted factor breakdown."),
	mcp.WithObject("profile",
		mcp.Required(),
		mcp.Description("Party attributes: {\"userId\", \"isEmailVerified\", \"isPhoneVerified\", "+
			"\"is2faEnabled\", \"totalTransactions\", \"successfulTransactions\", \"accountCreatedAt\", "+
			"\"averageRating\", \"totalRatings\", \"disputesRaised\", \"disputesLost\", \"responseRate\", \"kycLevel\"}")),
)

var ToolAssessRisk = mcp.NewTool("assess_risk",
	mcp.WithDescription(
		"Assess a prospective transaction against seven weighted risk factors "+
			"(trust differential, amount, category, velocity, geography, time pattern, device). "+
			"Returns a 0-100 risk score, a tier (MINIMAL to CRITICAL) and actionable flags. "+
			"The result is advice for the caller — nothing is blocked."),
	mcp.WithString("transaction_id",
		mcp.Required(),
		mcp.Description("Identifier of the transaction under assessment")),
	mcp.WithNumber("amount",
		mcp.Required(),
		mcp.Description("Transaction amount")),
	mcp.WithString("currency",
		mcp.Description("ISO currency code, e.g. 'USD' (default USD)")),
	mcp.WithString("item_category",
		mcp.Description("Item category, e.g. 'electronics'")),
	mcp.WithObject("context",
		mcp.Required(),
		mcp.Description("Surrounding signals: {\"buyerTrust\": <trust score>, \"sellerTrust\": <trust score>, "+
			"\"buyerRecentTransactions\", \"sellerRecentTransactions\", \"buyerLocation\", \"sellerLocation\", "+
			"\"transactionTime\", \"deviceId\", \"isNewDevice\"}")),
)

var ToolMatchUsers = mcp.NewTool("match_users",
	mcp.WithDescription(
		"Rank candidate counterparties for a marketplace user by blending trust with "+
			"location, history, preference and availability compatibility. Returns ranked "+
			"candidates with per-factor sub-scores and an advisory recommendation each."),
	mcp.WithString("requester_id",
		mcp.Required(),
		mcp.Description("The user looking for matches")),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of matches to return (default 10)")),
	mcp.WithObject("criteria",
		mcp.Description("Filter criteria: {\"minTrustScore\", \"location\": {\"latitude\", \"longitude\", \"radiusKm\"}, "+
			"\"categories\", \"priceRange\": {\"min\", \"max\"}}")),
	mcp.WithObject("pool",
		mcp.Required(),
		mcp.Description("Candidate pool: {\"requester\": <profile>, \"candidates\": [<profile>, ...]} where each "+
			"profile has userId, trustScore, location, categories, priceRange, transactionHistory, availability, lastActive")),
)

var ToolGetRecommendation = mcp.NewTool("get_recommendation",
	mcp.WithDescription(
		"Produce an explainable advisory recommendation (PROCEED, PROCEED_WITH_CAUTION, "+
			"REQUIRE_VERIFICATION, MANUAL_REVIEW or DECLINE) from previously computed intent, "+
			"trust and risk results. Returns the action, a calibrated confidence, a step-by-step "+
			"reasoning trail, warnings and alternative actions. DECLINE is advice, never enforcement."),
	mcp.WithString("request_id",
		mcp.Required(),
		mcp.Description("Identifier for this recommendation request")),
	mcp.WithString("intent",
		mcp.Required(),
		mcp.Description("Classified intent from classify_intent"),
		mcp.Enum("BUY", "SELL", "EXCHANGE", "TRANSFER", "UNKNOWN")),
	mcp.WithObject("buyer_trust",
		mcp.Required(),
		mcp.Description("Buyer's trust score object from compute_trust")),
	mcp.WithObject("seller_trust",
		mcp.Required(),
		mcp.Description("Seller's trust score object from compute_trust")),
	mcp.WithObject("risk_assessment",
		mcp.Required(),
		mcp.Description("Risk assessment object from assess_risk")),
	mcp.WithObject("transaction_context",
		mcp.Description("Optional deal details: {\"amount\", \"currency\", \"itemCategory\"}")),
)

var ToolGetAuditLogs = mcp.NewTool("get_audit_logs",
	mcp.WithDescription(
		"Read the advisory engine's audit trail. Every engine operation is recorded with "+
			"sanitized input/output and processing time. Optionally filter by operation name "+
			"(classify_intent, compute_trust, compare_trust, assess_risk, match_users, get_recommendation)."),
	mcp.WithString("operation",
		mcp.Description("Filter entries by operation name")),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of entries to return (default 20)")),
)
