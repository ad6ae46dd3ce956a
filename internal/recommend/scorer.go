package recommend

import "math"

// 各因子权重（百分比），合计 100，属于固定策略不可配置
const (
	weightMoodScore    = 25
	weightMoodCategory = 15
	weightMusic        = 20
	weightActivities   = 20
	weightCuisines     = 20
)

// ScoreBreakdown 各因子得分，均在 [0,1]
type ScoreBreakdown struct {
	MoodScore    float64 `json:"mood_score"`
	MoodCategory float64 `json:"mood_category"`
	Music        float64 `json:"music"`
	Activities   float64 `json:"activities"`
	Cuisines     float64 `json:"cuisines"`
}

// Composite 加权综合得分
// 按整数百分比加权后再除以 100，全部因子为 1 时结果精确为 1
func (b ScoreBreakdown) Composite() float64 {
	sum := weightMoodScore*b.MoodScore +
		weightMoodCategory*b.MoodCategory +
		weightMusic*b.Music +
		weightActivities*b.Activities +
		weightCuisines*b.Cuisines
	return clamp01(sum / 100)
}

// MoodScoreSimilarity 平均心情分的接近程度：max(0, 1 - |a-b|/100)
func MoodScoreSimilarity(avgA, avgB float64) float64 {
	return clamp01(1 - math.Abs(avgA-avgB)/100)
}

// scorePair 计算请求者与候选人的各因子得分
func scorePair(req, cand *profile) ScoreBreakdown {
	var b ScoreBreakdown
	if req.hasMoods() && cand.hasMoods() {
		b.MoodScore = MoodScoreSimilarity(req.avgScore, cand.avgScore)
		b.MoodCategory = jaccardSets(req.categories, cand.categories)
	}
	b.Music = jaccardSets(req.music, cand.music)
	b.Activities = jaccardSets(req.activities, cand.activities)
	b.Cuisines = jaccardSets(req.cuisines, cand.cuisines)
	return b
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// roundTo1 保留一位小数
func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}
