package orchestrator

import (
	"strings"

	"github.com/flokiorg/appinion/catalog"
	"github.com/flokiorg/appinion/db"
)

type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseDebouncing     Phase = "debouncing"
	PhaseSearching      Phase = "searching"
	PhaseResults        Phase = "results"
	PhaseSummaryLoading Phase = "summary_loading"
	PhaseError          Phase = "error"
)

// State is a snapshot of everything the user sees. Revision increases with
// every transition so observers can drop snapshots that arrive late.
type State struct {
	Revision      uint64                 `json:"revision"`
	Phase         Phase                  `json:"phase"`
	Query         string                 `json:"query"`
	Results       []catalog.SearchResult `json:"results"`
	IsSearching   bool                   `json:"isSearching"`
	IsSummarizing bool                   `json:"isSummarizing"`
	ErrorMessage  *string                `json:"errorMessage"`
	Selected      *db.AppRecord          `json:"selected"`
	RecentApps    []db.AppRecord         `json:"recentApps"`
}

func (s *State) hasQuery() bool {
	return strings.TrimSpace(s.Query) != ""
}

func (s *State) ShouldShowSearchResults() bool {
	return s.hasQuery() && (len(s.Results) > 0 || s.IsSearching)
}

func (s *State) ShouldShowRecentApps() bool {
	return !s.hasQuery() && len(s.RecentApps) > 0
}

func (s *State) ShouldShowEmptyState() bool {
	return !s.hasQuery() && len(s.RecentApps) == 0
}

func (s *State) clone() State {
	snapshot := *s

	snapshot.Results = make([]catalog.SearchResult, len(s.Results))
	for i := range s.Results {
		snapshot.Results[i] = s.Results[i]
		snapshot.Results[i].IconURL = cloneString(s.Results[i].IconURL)
	}

	snapshot.RecentApps = make([]db.AppRecord, len(s.RecentApps))
	for i := range s.RecentApps {
		snapshot.RecentApps[i] = cloneRecord(&s.RecentApps[i])
	}

	if s.Selected != nil {
		selected := cloneRecord(s.Selected)
		snapshot.Selected = &selected
	}
	snapshot.ErrorMessage = cloneString(s.ErrorMessage)
	return snapshot
}

func cloneRecord(record *db.AppRecord) db.AppRecord {
	clone := *record
	clone.IconURL = cloneString(record.IconURL)
	clone.Version = cloneString(record.Version)
	clone.ReviewSummary = cloneString(record.ReviewSummary)
	clone.SummaryAppVersion = cloneString(record.SummaryAppVersion)
	if record.SummaryGeneratedDate != nil {
		generated := *record.SummaryGeneratedDate
		clone.SummaryGeneratedDate = &generated
	}
	return clone
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	value := *s
	return &value
}

// StateChangedProperties is published with every state_changed event.
type StateChangedProperties struct {
	State                   State `json:"state"`
	ShouldShowSearchResults bool  `json:"shouldShowSearchResults"`
	ShouldShowRecentApps    bool  `json:"shouldShowRecentApps"`
	ShouldShowEmptyState    bool  `json:"shouldShowEmptyState"`
}
