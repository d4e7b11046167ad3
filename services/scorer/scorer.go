package scorer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"sjsage522/hotdealbot/logger"
)

const (
	// trustScore is a fixed seller-reputation signal for now. The Analysis
	// field stays per-deal so a per-source reputation lookup can replace the
	// constant later without touching callers.
	trustScore = 80

	priceWeight = 0.4
	trustWeight = 0.3
	aiWeight    = 0.3

	failureBriefing = "API 통신 오류 또는 출력 포맷 에러로 인해 브리핑을 생성하지 못했습니다."
	emptyBriefing   = "분석 내용을 생성할 수 없습니다."
)

// Analysis is the scored assessment of one deal.
type Analysis struct {
	PriceScore float64 `json:"price_score"`
	TrustScore int     `json:"trust_score"`
	AIScore    int     `json:"ai_score"`
	TotalScore float64 `json:"total_score"`
	Briefing   string  `json:"briefing"`
}

// Generator produces raw LLM output for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Engine combines the price heuristic score, the trust signal and the LLM
// assessment into one weighted total.
type Engine struct {
	gen Generator
	log *logger.Logger
}

// NewEngine wires a Generator into a scoring engine.
func NewEngine(gen Generator) *Engine {
	return &Engine{gen: gen, log: logger.ForScorer()}
}

// Analyze scores a deal. It never fails: any LLM error or malformed response
// degrades to a zero AI score with a fixed failure briefing, and the total is
// still computed from the remaining signals.
func (e *Engine) Analyze(ctx context.Context, title string, finalPrice, avgPrice int, comments string) Analysis {
	priceScore := priceMerit(finalPrice, avgPrice)

	aiScore, briefing, err := e.askLLM(ctx, title, finalPrice, avgPrice, comments)
	if err != nil {
		e.log.Error().Err(err).Str("title", title).Msg("LLM evaluation failed")
		aiScore = 0
		briefing = failureBriefing
	}

	total := priceScore*priceWeight + float64(trustScore)*trustWeight + float64(aiScore)*aiWeight

	return Analysis{
		PriceScore: round1(priceScore),
		TrustScore: trustScore,
		AIScore:    aiScore,
		TotalScore: round1(total),
		Briefing:   briefing,
	}
}

// priceMerit scores the discount against the historical average. Without
// history (avg 0) the score is a neutral 0, not an error.
func priceMerit(finalPrice, avgPrice int) float64 {
	if avgPrice <= 0 || finalPrice <= 0 {
		return 0
	}
	score := (float64(avgPrice-finalPrice) / float64(avgPrice)) * 100 * 1.5
	return math.Min(math.Max(score, 0), 100)
}

// llmVerdict is the strict two-field shape the prompt demands.
type llmVerdict struct {
	AIScore  int    `json:"ai_score"`
	Briefing string `json:"briefing"`
}

func (e *Engine) askLLM(ctx context.Context, title string, finalPrice, avgPrice int, comments string) (int, string, error) {
	raw, err := e.gen.Generate(ctx, buildPrompt(title, finalPrice, avgPrice, comments))
	if err != nil {
		return 0, "", err
	}

	// Models like to wrap JSON in markdown fences; strip before parsing.
	raw = strings.ReplaceAll(raw, "```json", "")
	raw = strings.ReplaceAll(raw, "```", "")
	raw = strings.TrimSpace(raw)

	var verdict llmVerdict
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		return 0, "", fmt.Errorf("unexpected LLM response shape: %w", err)
	}

	if verdict.AIScore < 0 || verdict.AIScore > 100 {
		return 0, "", fmt.Errorf("ai_score out of range: %d", verdict.AIScore)
	}
	if verdict.Briefing == "" {
		verdict.Briefing = emptyBriefing
	}

	return verdict.AIScore, verdict.Briefing, nil
}

// buildPrompt composes the facts-only evaluation prompt. The model must not
// inject outside knowledge and must answer in the fixed two-field JSON shape.
func buildPrompt(title string, finalPrice, avgPrice int, comments string) string {
	return fmt.Sprintf(`당신은 핫딜 평가 시스템입니다. 아래 제공된 데이터만을 기반으로 분석하십시오. 외부 정보 창작은 엄격히 금지됩니다.

[제공 데이터]
- 상품명: %s
- 최종 결제가: %d원
- 역대 평균가: %d원 (0일 경우 '과거 데이터 축적 중'으로 명시)
- 커뮤니티 댓글 요약: %s

[요구사항]
1. 커뮤니티 댓글의 여론을 분석하여 0~100점 사이의 정수(ai_score)로 산출하십시오.
2. 최종가 기준 평가 및 커뮤니티 반응을 2~3문장으로 요약한 텍스트(briefing)를 작성하십시오. 조건이 불명확하면 '{조건 확인 필요}'를 삽입하십시오.
3. 반드시 아래의 JSON 형식으로만 응답하십시오.
{
    "ai_score": 정수,
    "briefing": "요약 텍스트"
}`, title, finalPrice, avgPrice, comments)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
