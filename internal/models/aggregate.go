package models

// LookupStatus records how a single sub-lookup of an aggregate settled.
type LookupStatus string

const (
	LookupOK      LookupStatus = "ok"
	LookupEmpty   LookupStatus = "empty"
	LookupFailed  LookupStatus = "failed"
	LookupTimeout LookupStatus = "timeout"
)

// AggregateResult is the merged view-model for one ticker selection. Every
// section is always populated, falling back to a placeholder when its lookup
// failed, so each panel can render independently.
type AggregateResult struct {
	Ticker string            `json:"ticker"`
	Ledger *StockLedgerEntry `json:"ledger"`
	Series *MarketSeries     `json:"series"`
	Posts  []PostRecord      `json:"posts"`

	LedgerStatus LookupStatus `json:"ledgerStatus"`
	SeriesStatus LookupStatus `json:"seriesStatus"`
	PostsStatus  LookupStatus `json:"postsStatus"`

	// Message is the banner text for the selection, empty when everything loaded.
	Message string `json:"message,omitempty"`
}

// QuotaDecision is the outcome of a quota authorization.
type QuotaDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}
