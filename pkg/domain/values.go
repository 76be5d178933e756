package domain

// ---------------------------------------------------------------------------
// Shared value objects — used across bounded contexts
// ---------------------------------------------------------------------------

// WidgetType identifies a kind of dashboard widget.
type WidgetType string

const (
	WidgetRiskExposure          WidgetType = "risk-exposure"
	WidgetCounterpartyConc      WidgetType = "counterparty-concentration"
	WidgetVarTrend              WidgetType = "var-trend"
	WidgetStressScenarios       WidgetType = "stress-scenarios"
	WidgetPnlAttribution        WidgetType = "pnl-attribution"
	WidgetLiquidityLadder       WidgetType = "liquidity-ladder"
	WidgetLimitUtilization      WidgetType = "limit-utilization"
	WidgetCollateralSummary     WidgetType = "collateral-summary"
	WidgetMarketHeatmap         WidgetType = "market-heatmap"
	WidgetRatingMigration       WidgetType = "rating-migration"
	WidgetAgentInsights         WidgetType = "agent-insights"
	WidgetRemediationHistory    WidgetType = "remediation-history"
	WidgetLearningProgress      WidgetType = "learning-progress"
	WidgetAlertFeed             WidgetType = "alert-feed"
	WidgetRiskReport            WidgetType = "risk-report"
)

// widgetTitles is the closed lookup table from widget type to display title.
var widgetTitles = map[WidgetType]string{
	WidgetRiskExposure:       "Risk Exposure",
	WidgetCounterpartyConc:   "Counterparty Concentration",
	WidgetVarTrend:           "VaR Trend",
	WidgetStressScenarios:    "Stress Scenarios",
	WidgetPnlAttribution:     "P&L Attribution",
	WidgetLiquidityLadder:    "Liquidity Ladder",
	WidgetLimitUtilization:   "Limit Utilization",
	WidgetCollateralSummary:  "Collateral Summary",
	WidgetMarketHeatmap:      "Market Heatmap",
	WidgetRatingMigration:    "Rating Migration",
	WidgetAgentInsights:      "Agent Insights",
	WidgetRemediationHistory: "Remediation History",
	WidgetLearningProgress:   "Learning Progress",
	WidgetAlertFeed:          "Alert Feed",
	WidgetRiskReport:         "Risk Report",
}

// String implements fmt.Stringer.
func (wt WidgetType) String() string { return string(wt) }

// Valid returns true if the widget type is recognized.
func (wt WidgetType) Valid() bool {
	_, ok := widgetTitles[wt]
	return ok
}

// Title returns the display title for the widget type.
// Unrecognized types map to the generic "Widget".
func (wt WidgetType) Title() string {
	if title, ok := widgetTitles[wt]; ok {
		return title
	}
	return "Widget"
}

// AllWidgetTypes returns all known widget types.
func AllWidgetTypes() []WidgetType {
	return []WidgetType{
		WidgetRiskExposure, WidgetCounterpartyConc, WidgetVarTrend,
		WidgetStressScenarios, WidgetPnlAttribution, WidgetLiquidityLadder,
		WidgetLimitUtilization, WidgetCollateralSummary, WidgetMarketHeatmap,
		WidgetRatingMigration, WidgetAgentInsights, WidgetRemediationHistory,
		WidgetLearningProgress, WidgetAlertFeed, WidgetRiskReport,
	}
}

// ---------------------------------------------------------------------------

// Theme is the UI color scheme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid returns true if the theme value is recognized.
func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark }

// String implements fmt.Stringer.
func (t Theme) String() string { return string(t) }

// ---------------------------------------------------------------------------

// PermissionState is the platform notification permission.
type PermissionState string

const (
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
	PermissionDefault PermissionState = "default"
)
