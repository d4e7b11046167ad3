package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sjsage522/hotdealbot/helpers"
	"sjsage522/hotdealbot/internal/crawler"
	"sjsage522/hotdealbot/internal/deal"
	"sjsage522/hotdealbot/logger"
	"sjsage522/hotdealbot/pkg/errors"
	"sjsage522/hotdealbot/services/bot"
	"sjsage522/hotdealbot/services/publisher"
	"sjsage522/hotdealbot/services/scorer"
	"sjsage522/hotdealbot/services/store"
)

// alertThreshold is the minimum total score for a deal to reach the
// reviewer. The boundary is inclusive.
const alertThreshold = 60.0

// noCommentsSummary marks that comment crawling is skipped in list-based
// collection; the scorer receives it instead of a real comment digest.
const noCommentsSummary = "목록 기반 수집으로 상세 댓글 생략"

// Analyzer scores one deal. The scorer.Engine satisfies this; tests inject
// their own.
type Analyzer interface {
	Analyze(ctx context.Context, title string, finalPrice, avgPrice int, comments string) scorer.Analysis
}

// Worker drives the repeating ingestion cycle: crawl, dedup, score, persist,
// alert.
type Worker struct {
	ctx           context.Context
	crawlers      []crawler.Crawler
	store         store.DealStore
	scorer        Analyzer
	notifier      bot.Notifier
	publisher     publisher.Publisher
	crawlInterval time.Duration
	log           *logger.Logger
}

// NewWorker creates a new worker
func NewWorker(
	ctx context.Context,
	crawlers []crawler.Crawler,
	st store.DealStore,
	analyzer Analyzer,
	notifier bot.Notifier,
	pub publisher.Publisher,
	crawlInterval time.Duration,
) *Worker {
	return &Worker{
		ctx:           ctx,
		crawlers:      crawlers,
		store:         st,
		scorer:        analyzer,
		notifier:      notifier,
		publisher:     pub,
		crawlInterval: crawlInterval,
		log:           logger.ForWorker(),
	}
}

// Start runs ingestion cycles until the context is cancelled. A failed cycle
// is logged and the next one still runs after the normal interval.
func (w *Worker) Start() error {
	for {
		w.runCycleSafely()

		w.log.Debug().Dur("sleep", w.crawlInterval).Msg("다음 수집 대기 중")
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		case <-time.After(w.crawlInterval):
		}
	}
}

// runCycleSafely is the loop-boundary catch-all: nothing raised inside one
// cycle may terminate the scheduler.
func (w *Worker) runCycleSafely() {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error().Interface("panic", r).Msg("ingestion cycle panicked")
		}
	}()

	start := time.Now()
	w.RunCycle()
	w.log.Info().Dur("elapsed", time.Since(start)).Msg("크롤링 사이클 완료")
}

// RunCycle performs one full ingestion pass over all sources. If no new deal
// qualified, a single "no updates" notice keeps the reviewer's channel alive.
func (w *Worker) RunCycle() {
	newUpdates := false

	for _, c := range w.crawlers {
		deals, err := c.FetchDeals()
		if err != nil {
			// One failing source never aborts the scan
			w.log.Warn().Err(errors.NewNetwork(c.GetProvider(), "fetch failed", err)).Msg("source skipped")
			continue
		}

		for _, d := range deals {
			if w.processDeal(d) {
				newUpdates = true
			}
		}
	}

	if !newUpdates {
		if err := w.notifier.SendSystemMessage("업데이트 내역이 없습니다."); err != nil {
			w.log.Error().Err(errors.NewNotification("system message failed", err)).Msg("notify failed")
		}
	}
}

// processDeal runs one deal through dedup, scoring, persistence and alerting.
// Returns true when a new qualifying deal was inserted and alerted.
func (w *Worker) processDeal(d crawler.HotDeal) bool {
	// Dedup gate comes first: scoring is the expensive step
	exists, err := w.store.Exists(d.Link)
	if err != nil {
		w.log.Error().Err(errors.NewStorage("exists check failed", err)).Str("url", d.Link).Msg("deal skipped")
		return false
	}
	if exists {
		return false
	}

	w.log.Info().Str("provider", d.Provider).Str("title", d.Title).Msg("신규 발견")

	finalPrice := helpers.ExtractFinalPrice(d.Title)

	// Historical average price tracking is not wired yet; 0 tells the scorer
	// to treat history as absent
	analysis := w.scorer.Analyze(w.ctx, d.Title, finalPrice, 0, noCommentsSummary)

	if analysis.TotalScore < alertThreshold {
		if _, _, err := w.store.Insert(d.Link, d.Title, finalPrice, analysis.TotalScore, deal.StatusDiscarded); err != nil {
			w.log.Error().Err(errors.NewStorage("insert failed", err)).Str("url", d.Link).Msg("discard not persisted")
		}
		return false
	}

	id, inserted, err := w.store.Insert(d.Link, d.Title, finalPrice, analysis.TotalScore, deal.StatusNew)
	if err != nil {
		w.log.Error().Err(errors.NewStorage("insert failed", err)).Str("url", d.Link).Msg("deal not persisted")
		return false
	}
	if !inserted {
		// Lost an insert race; the deal is already tracked elsewhere
		return false
	}

	if err := w.notifier.SendDealAlert(id, formatAlert(d, finalPrice, analysis)); err != nil {
		w.log.Error().Err(errors.NewNotification("deal alert failed", err)).Uint64("deal_id", id).Msg("alert not delivered")
	}

	w.publish(d, finalPrice, analysis)

	return true
}

// publish forwards a qualifying deal to the downstream stream. Failures are
// logged only; the stream is a convenience, not part of triage.
func (w *Worker) publish(d crawler.HotDeal, finalPrice int, analysis scorer.Analysis) {
	if w.publisher == nil {
		return
	}

	payload, err := json.Marshal(struct {
		crawler.HotDeal
		FinalPrice int     `json:"final_price"`
		TotalScore float64 `json:"total_score"`
	}{d, finalPrice, analysis.TotalScore})
	if err != nil {
		w.log.Error().Err(err).Msg("marshal deal payload failed")
		return
	}

	if err := w.publisher.Publish(d.Provider, payload); err != nil {
		w.log.Warn().Err(err).Str("provider", d.Provider).Msg("publish failed")
	}
}

// formatAlert renders the reviewer-facing alert message.
func formatAlert(d crawler.HotDeal, finalPrice int, analysis scorer.Analysis) string {
	return fmt.Sprintf(
		"🚨 **[핫딜] %s**\n\n"+
			"* **정보 출처:** %s ([게시글 링크](%s))\n"+
			"* **주의:** 봇에 의해 자동 수집된 정보입니다. 정확하지 않거나 틀릴 수 있는 정보이므로 구매 전 반드시 실제 조건을 확인하십시오.\n\n"+
			"💰 **추정 결제가:** **%d원**\n\n"+
			"📝 **AI 핫딜 브리핑**\n%s\n\n"+
			"📊 **종합 핫딜 지수: %g점**",
		d.Title, d.Provider, d.Link, finalPrice, analysis.Briefing, analysis.TotalScore,
	)
}
