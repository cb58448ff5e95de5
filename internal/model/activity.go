package model

import "time"

// Outcome is the terminal state of a pipeline run.
type Outcome string

const (
	OutcomeLogged  Outcome = "logged"  // full run completed
	OutcomeSkipped Outcome = "skipped" // extraction reject or dedup hit
	OutcomeErrored Outcome = "errored" // hard failure after retries
)

// Stage names the pipeline step a run had reached when it terminated.
type Stage string

const (
	StageReceived     Stage = "received"
	StageExtracted    Stage = "extracted"
	StageDedupChecked Stage = "dedup_checked"
	StageCrmLookedUp  Stage = "crm_looked_up"
	StageQualifying   Stage = "qualifying"
	StageScored       Stage = "scored"
	StageCrmUpdated   Stage = "crm_updated"
	StageNotified     Stage = "notified"
)

// ActivityEntry is an immutable record of one pipeline run, appended to the
// activity log at the run's terminal transition.
type ActivityEntry struct {
	ID           string         `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	Outcome      Outcome        `json:"outcome"`
	Stage        Stage          `json:"stage"`
	LeadName     string         `json:"lead_name,omitempty"`
	LeadIdentity string         `json:"lead_identity,omitempty"`
	Score        int            `json:"score"`
	Scored       bool           `json:"scored"`
	Class        Classification `json:"classification,omitempty"`
	Summary      string         `json:"summary"`
	Warnings     []string       `json:"warnings,omitempty"`
}

// Stats holds the running counters displayed on the dashboard.
// Total == Qualified + Unqualified + Spam + Skipped + Errored always holds;
// Possible leads are tallied under Unqualified until a human promotes them.
type Stats struct {
	Total       int `json:"total_processed"`
	Qualified   int `json:"qualified"`
	Unqualified int `json:"not_qualified"`
	Spam        int `json:"spam"`
	Skipped     int `json:"skipped"`
	Errored     int `json:"errors"`

	CRMChecked int `json:"crm_checked"`
	CRMMatched int `json:"crm_matched"`
}
