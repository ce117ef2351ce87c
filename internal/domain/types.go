package domain

import "time"

// RiskLevel is the backend's overall classification of a customer.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// AlertSeverity grades a single rule hit.
type AlertSeverity string

const (
	SeverityLow    AlertSeverity = "LOW"
	SeverityMedium AlertSeverity = "MEDIUM"
	SeverityHigh   AlertSeverity = "HIGH"
)

// AlertType tags which monitoring rule produced an alert.
type AlertType string

const (
	AlertStructuring               AlertType = "STRUCTURING"
	AlertThreshold                 AlertType = "THRESHOLD"
	AlertHighRiskCountry           AlertType = "HIGH_RISK_COUNTRY"
	AlertWatchlistMatch            AlertType = "WATCHLIST_MATCH"
	AlertRapidMovement             AlertType = "RAPID_MOVEMENT"
	AlertRoundAmount               AlertType = "ROUND_AMOUNT"
	AlertDormantAccount            AlertType = "DORMANT_ACCOUNT"
	AlertCounterpartyConcentration AlertType = "COUNTERPARTY_CONCENTRATION"
	AlertProfileDeviation          AlertType = "PROFILE_DEVIATION"
	AlertFlowThrough               AlertType = "FLOW_THROUGH"
)

// Transaction is one row of the customer ledger as served by the backend.
// Index is stable within a single overview and is the join key used by
// alerts and watchlist matches.
type Transaction struct {
	Index           int      `json:"index"`
	Date            string   `json:"date"`
	Amount          float64  `json:"amount"`
	Sender          string   `json:"sender"`
	Receiver        string   `json:"receiver"`
	IBAN            *string  `json:"iban"`
	BIC             *string  `json:"bic"`
	Currency        string   `json:"currency"`
	Description     *string  `json:"description"`
	TransactionType *string  `json:"transaction_type"`
	Flags           []string `json:"flags"`
}

// dateLayouts are the wire formats a transaction date may arrive in.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

// When parses the transaction date. The second return value reports whether
// the date was parsable; callers must treat unparsable dates as data-shape
// errors and keep rendering.
func (t Transaction) When() (time.Time, bool) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, t.Date); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// Flagged reports whether the row carries any suspicion flag of its own.
func (t Transaction) Flagged() bool {
	return len(t.Flags) > 0
}

// Alert is a rule-engine hit tied to zero or more transactions.
type Alert struct {
	ID                         string        `json:"id"`
	RuleName                   string        `json:"rule_name"`
	Severity                   AlertSeverity `json:"severity"`
	Description                string        `json:"description"`
	AffectedTransactionIndices []int         `json:"affected_transaction_indices"`
	AlertType                  AlertType     `json:"alert_type"`
}

// RiskAssessment is the backend's scored verdict for one customer.
type RiskAssessment struct {
	OverallScore        float64   `json:"overall_score"`
	RiskLevel           RiskLevel `json:"risk_level"`
	ContributingFactors []string  `json:"contributing_factors"`
}

// WatchlistMatch records a fuzzy hit between a transaction party and a
// sanctions or watchlist entry. Match evidence only; it does not flag
// timeline points.
type WatchlistMatch struct {
	MatchedEntity      string  `json:"matched_entity"`
	WatchlistEntry     string  `json:"watchlist_entry"`
	MatchScore         float64 `json:"match_score"`
	MatchField         string  `json:"match_field"`
	TransactionIndices []int   `json:"transaction_indices"`
}

// PatternData is the backend's pre-bucketed pattern aggregate. Map keys
// arrive unordered; consumers establish their own order.
type PatternData struct {
	ByMonth                 map[string]float64 `json:"by_month"`
	ByType                  map[string]float64 `json:"by_type"`
	ByCurrency              map[string]float64 `json:"by_currency"`
	RoundAmountRatio        float64            `json:"round_amount_ratio"`
	AvgTransactionSize      float64            `json:"avg_transaction_size"`
	HighRiskCountryExposure float64            `json:"high_risk_country_exposure"`
}

// CustomerOverview is the aggregate root for one customer. It is fetched
// fresh per identifier and replaced wholesale; derived views never mutate it.
type CustomerOverview struct {
	BusinessContactNumber string           `json:"business_contact_number"`
	CustomerName          *string          `json:"customer_name"`
	RiskAssessment        RiskAssessment   `json:"risk_assessment"`
	Transactions          []Transaction    `json:"transactions"`
	Alerts                []Alert          `json:"alerts"`
	Patterns              PatternData      `json:"patterns"`
	WatchlistMatches      []WatchlistMatch `json:"watchlist_matches"`
	WorkInstructions      []string         `json:"work_instructions"`
}

// SearchResult is one row of a customer lookup. Results are ephemeral and
// superseded by the next query; backend ranking order is preserved.
type SearchResult struct {
	BCN              string `json:"bcn"`
	Name             string `json:"name"`
	TransactionCount int    `json:"transaction_count"`
}

// UploadResult is the backend's acknowledgement of one file upload.
type UploadResult struct {
	Status      string   `json:"status"`
	RecordCount int      `json:"record_count"`
	Warnings    []string `json:"warnings"`
}

// UploadStatusMap reports which datasets are present server-side, keyed by
// status key (see FileType.StatusKey).
type UploadStatusMap map[string]bool

// Clone returns an independent copy so snapshots cannot alias live state.
func (m UploadStatusMap) Clone() UploadStatusMap {
	out := make(UploadStatusMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
