package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers holds the handler functions for each MCP tool.
type Handlers struct {
	client *NucleusClient
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(client *NucleusClient) *Handlers {
	return &Handlers{client: client}
}

// HandleClassifyIntent classifies marketplace signals.
func (h *Handlers) HandleClassifyIntent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")

	rawSignals, ok := req.GetArguments()["signals"].(map[string]any)
	if !ok || len(rawSignals) == 0 {
		return mcp.NewToolResultError("signals is required and must be a non-empty object"), nil
	}
	signals := make(map[string]string, len(rawSignals))
	for k, v := range rawSignals {
		if s, ok := v.(string); ok {
			signals[k] = s
		}
	}
	if len(signals) == 0 {
		return mcp.NewToolResultError("signals must map signal sources to string values"), nil
	}

	raw, err := h.client.ClassifyIntent(ctx, userID, signals)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to classify intent: %v", err)), nil
	}

	text, err := formatClassification(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse classification: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleComputeTrust computes a party's trust score.
func (h *Handlers) HandleComputeTrust(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profile, ok := req.GetArguments()["profile"].(map[string]any)
	if !ok {
		return mcp.NewToolResultError("profile is required and must be an object"), nil
	}

	raw, err := h.client.ComputeTrust(ctx, profile)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to compute trust: %v", err)), nil
	}

	text, err := formatTrustScore(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse trust score: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleAssessRisk evaluates a prospective transaction.
func (h *Handlers) HandleAssessRisk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	txID := req.GetString("transaction_id", "")
	if txID == "" {
		return mcp.NewToolResultError("transaction_id is required"), nil
	}
	riskCtx, ok := req.GetArguments()["context"].(map[string]any)
	if !ok {
		return mcp.NewToolResultError("context is required and must be an object"), nil
	}
	amount, _ := getFloat(req.GetArguments(), "amount")

	body := map[string]any{
		"transactionId": txID,
		"amount":        amount,
		"currency":      req.GetString("currency", "USD"),
		"itemCategory":  req.GetString("item_category", ""),
		"context":       riskCtx,
	}

	raw, err := h.client.AssessRisk(ctx, body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to assess risk: %v", err)), nil
	}

	text, err := formatRiskAssessment(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse assessment: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleMatchUsers ranks candidate counterparties.
func (h *Handlers) HandleMatchUsers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	requesterID := req.GetString("requester_id", "")
	if requesterID == "" {
		return mcp.NewToolResultError("requester_id is required"), nil
	}
	pool, ok := req.GetArguments()["pool"].(map[string]any)
	if !ok {
		return mcp.NewToolResultError("pool is required and must be an object with 'requester' and 'candidates'"), nil
	}

	body := map[string]any{
		"requesterId": requesterID,
		"limit":       req.GetInt("limit", 10),
		"requester":   pool["requester"],
		"candidates":  pool["candidates"],
	}
	if criteria, ok := req.GetArguments()["criteria"].(map[string]any); ok {
		body["criteria"] = criteria
	}

	raw, err := h.client.MatchUsers(ctx, body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to match users: %v", err)), nil
	}

	text, err := formatMatches(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse matches: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleGetRecommendation produces an advisory recommendation.
func (h *Handlers) HandleGetRecommendation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	requestID := req.GetString("request_id", "")
	if requestID == "" {
		return mcp.NewToolResultError("request_id is required"), nil
	}

	args := req.GetArguments()
	buyerTrust, ok := args["buyer_trust"].(map[string]any)
	if !ok {
		return mcp.NewToolResultError("buyer_trust is required and must be an object"), nil
	}
	sellerTrust, ok := args["seller_trust"].(map[string]any)
	if !ok {
		return mcp.NewToolResultError("seller_trust is required and must be an object"), nil
	}
	riskAssessment, ok := args["risk_assessment"].(map[string]any)
	if !ok {
		return mcp.NewToolResultError("risk_assessment is required and must be an object"), nil
	}

	body := map[string]any{
		"requestId":      requestID,
		"intent":         req.GetString("intent", "UNKNOWN"),
		"buyerTrust":     buyerTrust,
		"sellerTrust":    sellerTrust,
		"riskAssessment": riskAssessment,
	}
	if txCtx, ok := args["transaction_context"].(map[string]any); ok {
		body["transactionContext"] = txCtx
	}

	raw, err := h.client.GetRecommendation(ctx, body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get recommendation: %v", err)), nil
	}

	text, err := formatRecommendation(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse recommendation: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleGetAuditLogs reads the engine's audit trail.
func (h *Handlers) HandleGetAuditLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	operation := req.GetString("operation", "")
	limit := req.GetInt("limit", 20)

	raw, err := h.client.GetAuditLogs(ctx, operation, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get audit logs: %v", err)), nil
	}

	text, err := formatAuditLogs(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse audit logs: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// --- Formatters ---

func formatClassification(raw json.RawMessage) (string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Intent: %s\n", getString(m, "type"))
	if conf, ok := getFloat(m, "confidence"); ok {
		fmt.Fprintf(&sb, "Confidence: %.2f (%s)\n", conf, getString(m, "confidenceLevel"))
	}
	if signals, ok := m["signals"].([]any); ok && len(signals) > 0 {
		sb.WriteString("Matched signals:\n")
		for _, s := range signals {
			sig, ok := s.(map[string]any)
			if !ok {
				continue
			}
			weight, _ := getFloat(sig, "weight")
			fmt.Fprintf(&sb, "  %s = %q (weight %.2f)\n",
				getString(sig, "source"), getString(sig, "value"), weight)
		}
	}
	return sb.String(), nil
}

func formatTrustScore(raw json.RawMessage) (string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("Trust Score:\n")
	if v := getString(m, "userId"); v != "" {
		fmt.Fprintf(&sb, "  User: %s\n", v)
	}
	if score, ok := getFloat(m, "score"); ok {
		fmt.Fprintf(&sb, "  Score: %.0f/100 (%s)\n", score, getString(m, "level"))
	}
	if factors, ok := m["factors"].([]any); ok {
		sb.WriteString("  Factors:\n")
		for _, f := range factors {
			factor, ok := f.(map[string]any)
			if !ok {
				continue
			}
			value, _ := getFloat(factor, "value")
			contribution, _ := getFloat(factor, "contribution")
			fmt.Fprintf(&sb, "    %-22s %5.1f (contributes %.1f)\n",
				getString(factor, "name"), value, contribution)
		}
	}
	return sb.String(), nil
}

func formatRiskAssessment(raw json.RawMessage) (string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("Risk Assessment")
	if v := getString(m, "transactionId"); v != "" {
		fmt.Fprintf(&sb, " for %s", v)
	}
	sb.WriteString(":\n")
	if score, ok := getFloat(m, "riskScore"); ok {
		fmt.Fprintf(&sb, "  Risk: %s (score %.0f/100)\n", getString(m, "overallRisk"), score)
	}
	if factors, ok := m["factors"].([]any); ok {
		sb.WriteString("  Factors:\n")
		for _, f := range factors {
			factor, ok := f.(map[string]any)
			if !ok {
				continue
			}
			score, _ := getFloat(factor, "score")
			fmt.Fprintf(&sb, "    %-22s %5.1f — %s\n",
				getString(factor, "category"), score, getString(factor, "description"))
		}
	}
	if flags, ok := m["flags"].([]any); ok && len(flags) > 0 {
		sb.WriteString("  Flags:\n")
		for _, f := range flags {
			flag, ok := f.(map[string]any)
			if !ok {
				continue
			}
			fmt.Fprintf(&sb, "    [%s] %s: %s\n      Recommendation: %s\n",
				getString(flag, "severity"), getString(flag, "code"),
				getString(flag, "message"), getString(flag, "recommendation"))
		}
	} else {
		sb.WriteString("  No flags raised.\n")
	}
	sb.WriteString("\nThis assessment is advisory — the decision remains with you.")
	return sb.String(), nil
}

func formatMatches(raw json.RawMessage) (string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", err
	}

	matches, _ := m["matches"].([]any)
	if len(matches) == 0 {
		return "No matching candidates found.", nil
	}

	var sb strings.Builder
	version, _ := getFloat(m, "modelVersion")
	fmt.Fprintf(&sb, "Found %d match(es) (model v%.0f):\n\n", len(matches), version)
	for i, c := range matches {
		cand, ok := c.(map[string]any)
		if !ok {
			continue
		}
		matchScore, _ := getFloat(cand, "matchScore")
		trustScore, _ := getFloat(cand, "trustScore")
		fmt.Fprintf(&sb, "%d. %s — match %.0f/100, trust %.0f (%s)\n",
			i+1, getString(cand, "userId"), matchScore, trustScore,
			getString(cand, "recommendation"))
		if compat, ok := cand["compatibility"].(map[string]any); ok {
			loc, _ := getFloat(compat, "locationScore")
			hist, _ := getFloat(compat, "historyScore")
			pref, _ := getFloat(compat, "preferenceScore")
			avail, _ := getFloat(compat, "availabilityScore")
			fmt.Fprintf(&sb, "   location %.0f | history %.0f | preference %.0f | availability %.0f\n",
				loc, hist, pref, avail)
		}
	}
	return sb.String(), nil
}

func formatRecommendation(raw json.RawMessage) (string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Recommended action: %s", getString(m, "action"))
	if conf, ok := getFloat(m, "confidence"); ok {
		fmt.Fprintf(&sb, " (confidence %.2f)", conf)
	}
	sb.WriteString("\n")

	if warnings, ok := m["warnings"].([]any); ok && len(warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, w := range warnings {
			fmt.Fprintf(&sb, "  - %v\n", w)
		}
	}

	if reasoning, ok := m["reasoning"].([]any); ok && len(reasoning) > 0 {
		sb.WriteString("\nReasoning:\n")
		for _, r := range reasoning {
			step, ok := r.(map[string]any)
			if !ok {
				continue
			}
			n, _ := getFloat(step, "step")
			fmt.Fprintf(&sb, "  %.0f. [%s] %s: %s\n",
				n, getString(step, "impact"), getString(step, "factor"),
				getString(step, "evaluation"))
		}
	}

	if alternatives, ok := m["alternatives"].([]any); ok && len(alternatives) > 0 {
		sb.WriteString("\nAlternative actions:\n")
		for _, a := range alternatives {
			alt, ok := a.(map[string]any)
			if !ok {
				continue
			}
			fmt.Fprintf(&sb, "  - %s\n", getString(alt, "action"))
			if conditions, ok := alt["conditions"].([]any); ok {
				for _, c := range conditions {
					fmt.Fprintf(&sb, "      condition: %v\n", c)
				}
			}
			if tradeoffs, ok := alt["tradeoffs"].([]any); ok {
				for _, t := range tradeoffs {
					fmt.Fprintf(&sb, "      tradeoff: %v\n", t)
				}
			}
		}
	}

	sb.WriteString("\nThis recommendation is advisory — nothing has been blocked or executed.")
	return sb.String(), nil
}

func formatAuditLogs(raw json.RawMessage) (string, error) {
	var resp struct {
		Entries []map[string]any `json:"entries"`
		Count   int              `json:"count"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}

	if len(resp.Entries) == 0 {
		return "No audit entries found.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d audit entr(ies):\n\n", len(resp.Entries))
	for i, e := range resp.Entries {
		procMs, _ := getFloat(e, "processingTimeMs")
		fmt.Fprintf(&sb, "%d. %s at %s (%.1fms, engine %s)\n",
			i+1, getString(e, "operation"), getString(e, "timestamp"),
			procMs, getString(e, "version"))
	}
	return sb.String(), nil
}

// getString extracts a string value from a map, trying multiple key names.
func getString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
			if f, ok := v.(float64); ok {
				return fmt.Sprintf("%g", f)
			}
		}
	}
	return ""
}

// getFloat extracts a float64 value from a map, trying multiple key names.
func getFloat(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if f, ok := v.(float64); ok {
				return f, true
			}
		}
	}
	return 0, false
}
