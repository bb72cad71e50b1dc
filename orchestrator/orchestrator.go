package orchestrator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/flokiorg/appinion/apperrors"
	"github.com/flokiorg/appinion/apps"
	"github.com/flokiorg/appinion/catalog"
	"github.com/flokiorg/appinion/constants"
	"github.com/flokiorg/appinion/db"
	"github.com/flokiorg/appinion/events"
	"github.com/flokiorg/appinion/logger"
	"github.com/flokiorg/appinion/metrics"
	"github.com/flokiorg/appinion/reviews"
	"github.com/flokiorg/appinion/summarizer"
)

// Orchestrator owns the user-facing state. A new query supersedes the
// previous one: its debounce timer is stopped, its request is cancelled and
// any result it still produces is discarded.
type Orchestrator struct {
	catalog        catalog.Service
	reviews        reviews.Service
	summarizer     summarizer.Summarizer
	apps           apps.AppsService
	eventPublisher events.EventPublisher
	debounce       time.Duration
	recentLimit    int

	mu           sync.Mutex
	state        State
	searchPhase  Phase
	generation   uint64
	summarizing  int
	timer        *time.Timer
	cancelSearch context.CancelFunc
	closed       bool
}

func NewOrchestrator(catalogSvc catalog.Service, reviewsSvc reviews.Service, summarizerSvc summarizer.Summarizer,
	appsSvc apps.AppsService, eventPublisher events.EventPublisher, debounce time.Duration, recentLimit int) *Orchestrator {
	if debounce <= 0 {
		debounce = constants.SEARCH_DEBOUNCE
	}
	if recentLimit <= 0 {
		recentLimit = constants.RECENT_APPS_LIMIT
	}

	o := &Orchestrator{
		catalog:        catalogSvc,
		reviews:        reviewsSvc,
		summarizer:     summarizerSvc,
		apps:           appsSvc,
		eventPublisher: eventPublisher,
		debounce:       debounce,
		recentLimit:    recentLimit,
		searchPhase:    PhaseIdle,
		state: State{
			Results:    []catalog.SearchResult{},
			RecentApps: []db.AppRecord{},
		},
	}

	recent, err := appsSvc.RecentApps(recentLimit)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to load recent apps")
	} else {
		o.state.RecentApps = recent
	}
	o.state.Phase = o.phase()

	return o
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// SetQuery records the text typed by the user and schedules a search once
// the input has been quiet for the debounce period.
func (o *Orchestrator) SetQuery(text string) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.stopSearchLocked()
	o.state.Query = text

	if strings.TrimSpace(text) == "" {
		o.state.Results = []catalog.SearchResult{}
		o.searchPhase = PhaseIdle
	} else {
		generation := o.generation
		o.searchPhase = PhaseDebouncing
		o.timer = time.AfterFunc(o.debounce, func() {
			o.runSearch(generation)
		})
	}
	snapshot := o.commitLocked()
	o.mu.Unlock()

	o.publish(snapshot)
}

// ClearSearch empties the query and results and abandons any pending search.
func (o *Orchestrator) ClearSearch() {
	o.SetQuery("")
}

func (o *Orchestrator) runSearch(generation uint64) {
	o.mu.Lock()
	if o.closed || generation != o.generation {
		o.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	o.cancelSearch = cancel
	o.timer = nil
	o.searchPhase = PhaseSearching
	o.state.IsSearching = true
	o.state.ErrorMessage = nil
	term := strings.TrimSpace(o.state.Query)
	snapshot := o.commitLocked()
	o.mu.Unlock()

	o.publish(snapshot)

	results, err := o.catalog.Search(ctx, term)
	cancel()

	o.mu.Lock()
	if o.closed || generation != o.generation {
		o.mu.Unlock()
		metrics.RecordDiscardedSearch()
		logger.Logger.Debug().Str("term", term).Msg("Discarded superseded search result")
		return
	}
	o.cancelSearch = nil
	o.state.IsSearching = false
	o.searchPhase = PhaseResults
	if err != nil {
		logger.Logger.Error().Err(err).Str("term", term).Msg("Search failed")
		o.state.Results = []catalog.SearchResult{}
		o.state.ErrorMessage = errorMessage(err)
	} else {
		o.state.Results = results
	}
	snapshot = o.commitLocked()
	o.mu.Unlock()

	o.publish(snapshot)
}

// SelectSearchResult stores the chosen result and makes the stored record
// the current selection.
func (o *Orchestrator) SelectSearchResult(item catalog.SearchResult) (*db.AppRecord, error) {
	if err := o.apps.Upsert(&item); err != nil {
		o.fail(err)
		return nil, err
	}
	return o.selectStored(item.ID)
}

func (o *Orchestrator) SelectRecentApp(id string) (*db.AppRecord, error) {
	if err := o.apps.TouchApp(id); err != nil {
		o.fail(err)
		return nil, err
	}
	return o.selectStored(id)
}

func (o *Orchestrator) selectStored(id string) (*db.AppRecord, error) {
	record, err := o.apps.GetApp(id)
	if err == nil && record == nil {
		err = apperrors.NoData("select app", "App not found")
	}
	if err != nil {
		o.fail(err)
		return nil, err
	}
	recent, recentOK := o.loadRecent()

	o.mu.Lock()
	o.state.Selected = record
	if recentOK {
		o.state.RecentApps = recent
	}
	snapshot := o.commitLocked()
	o.mu.Unlock()

	o.publish(snapshot)

	selected := cloneRecord(record)
	return &selected, nil
}

// GenerateSummary fetches the app's reviews, summarizes them and stores the
// summary. Once started it runs to completion even if ctx is cancelled.
func (o *Orchestrator) GenerateSummary(ctx context.Context, id string) (*db.AppRecord, error) {
	ctx = context.WithoutCancel(ctx)

	record, err := o.apps.GetApp(id)
	if err == nil && record == nil {
		err = apperrors.NoData("generate summary", "App not found")
	}
	if err != nil {
		o.fail(err)
		return nil, err
	}

	o.mu.Lock()
	o.summarizing++
	o.state.IsSummarizing = true
	o.state.ErrorMessage = nil
	snapshot := o.commitLocked()
	o.mu.Unlock()
	o.publish(snapshot)

	summary, err := o.runSummaryPipeline(ctx, record)
	metrics.RecordSummary(err)

	var updated *db.AppRecord
	var recent []db.AppRecord
	recentOK := false
	if err == nil {
		updated, err = o.apps.GetApp(id)
		recent, recentOK = o.loadRecent()
	}

	o.mu.Lock()
	o.summarizing--
	o.state.IsSummarizing = o.summarizing > 0
	if err != nil {
		logger.Logger.Error().Err(err).Str("app_id", id).Msg("Summary generation failed")
		o.state.ErrorMessage = errorMessage(err)
	} else if updated != nil && o.state.Selected != nil && o.state.Selected.ID == id {
		o.state.Selected = updated
	}
	if recentOK {
		o.state.RecentApps = recent
	}
	snapshot = o.commitLocked()
	o.mu.Unlock()
	o.publish(snapshot)

	if err != nil {
		return nil, err
	}
	if updated == nil {
		// deleted while the summary was generated
		return nil, apperrors.NoData("generate summary", "App not found")
	}
	logger.Logger.Info().Str("app_id", id).Int("summary_length", len(summary)).Msg("Stored review summary")
	return updated, nil
}

func (o *Orchestrator) runSummaryPipeline(ctx context.Context, record *db.AppRecord) (string, error) {
	texts, err := o.reviews.FetchReviews(ctx, record.ID, constants.REVIEW_FETCH_LIMIT)
	if err != nil {
		return "", err
	}

	summary, err := o.summarizer.Summarize(ctx, texts, record.Name)
	if err != nil {
		return "", err
	}

	if err := o.apps.UpdateSummary(record.ID, summary, record.Version); err != nil {
		return "", err
	}
	return summary, nil
}

func (o *Orchestrator) DeleteApp(id string) error {
	if err := o.apps.DeleteApp(id); err != nil {
		o.fail(err)
		return err
	}
	recent, recentOK := o.loadRecent()

	o.mu.Lock()
	if o.state.Selected != nil && o.state.Selected.ID == id {
		o.state.Selected = nil
	}
	if recentOK {
		o.state.RecentApps = recent
	}
	snapshot := o.commitLocked()
	o.mu.Unlock()

	o.publish(snapshot)
	return nil
}

func (o *Orchestrator) ClearAll() error {
	if err := o.apps.ClearAll(); err != nil {
		o.fail(err)
		return err
	}

	o.mu.Lock()
	o.state.Selected = nil
	o.state.RecentApps = []db.AppRecord{}
	snapshot := o.commitLocked()
	o.mu.Unlock()

	o.publish(snapshot)
	return nil
}

func (o *Orchestrator) DismissError() {
	o.mu.Lock()
	if o.state.ErrorMessage == nil {
		o.mu.Unlock()
		return
	}
	o.state.ErrorMessage = nil
	snapshot := o.commitLocked()
	o.mu.Unlock()

	o.publish(snapshot)
}

// Close stops the debounce timer and cancels the in-flight search. A running
// summary pipeline still completes.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.stopSearchLocked()
	o.closed = true
}

func (o *Orchestrator) fail(err error) {
	o.mu.Lock()
	o.state.ErrorMessage = errorMessage(err)
	snapshot := o.commitLocked()
	o.mu.Unlock()

	o.publish(snapshot)
}

func (o *Orchestrator) stopSearchLocked() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	if o.cancelSearch != nil {
		o.cancelSearch()
		o.cancelSearch = nil
	}
	o.generation++
	o.state.IsSearching = false
}

func (o *Orchestrator) loadRecent() ([]db.AppRecord, bool) {
	recent, err := o.apps.RecentApps(o.recentLimit)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to refresh recent apps")
		return nil, false
	}
	return recent, true
}

func (o *Orchestrator) phase() Phase {
	switch {
	case o.state.IsSummarizing:
		return PhaseSummaryLoading
	case o.state.ErrorMessage != nil:
		return PhaseError
	default:
		return o.searchPhase
	}
}

func (o *Orchestrator) commitLocked() State {
	o.state.Revision++
	o.state.Phase = o.phase()
	return o.state.clone()
}

func (o *Orchestrator) publish(snapshot State) {
	if o.eventPublisher == nil {
		return
	}
	o.eventPublisher.PublishSync(&events.Event{
		Event: constants.EVENT_STATE_CHANGED,
		Properties: &StateChangedProperties{
			State:                   snapshot,
			ShouldShowSearchResults: snapshot.ShouldShowSearchResults(),
			ShouldShowRecentApps:    snapshot.ShouldShowRecentApps(),
			ShouldShowEmptyState:    snapshot.ShouldShowEmptyState(),
		},
	})
}

func errorMessage(err error) *string {
	message := err.Error()
	return &message
}
