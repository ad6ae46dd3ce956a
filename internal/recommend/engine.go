package recommend

import (
	"context"
	"sort"
)

// 默认参数
const (
	DefaultLimit           = 10
	DefaultMoodHistorySize = 30
	// SharedItemsLimit 每类偏好交集在结果中最多展示的条数
	SharedItemsLimit = 5
)

// Options 推荐引擎参数
type Options struct {
	DefaultLimit    int // limit 非法时使用的默认条数
	MoodHistorySize int // 每个用户参与计算的最近心情条数
	MaxCandidates   int // 单次请求最多参与打分的候选人数，<=0 不限制
}

func (o Options) withDefaults() Options {
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = DefaultLimit
	}
	if o.MoodHistorySize <= 0 {
		o.MoodHistorySize = DefaultMoodHistorySize
	}
	return o
}

// Candidate 一条推荐结果
type Candidate struct {
	UserID               uint           `json:"user_id"`
	Score                float64        `json:"score"`
	Breakdown            ScoreBreakdown `json:"score_breakdown"`
	SharedMoodCategories []string       `json:"shared_mood_categories"`
	AvgMoodScore         *float64       `json:"avg_mood_score"`
	SharedMusic          []string       `json:"shared_music"`
	SharedActivities     []string       `json:"shared_activities"`
	SharedCuisines       []string       `json:"shared_cuisines"`
}

// Result 一次推荐的结果与统计信息
type Result struct {
	Candidates []Candidate
	ColdStart  bool // 请求者无任何数据，走未打分的兜底路径
	PoolSize   int  // 参与计算的候选池大小
	Scored     int  // 实际完成打分（有数据）的候选人数
	Truncated  bool // 候选池是否被截断
}

// Engine 好友推荐引擎，无状态，可并发调用
type Engine struct {
	src  DataSource
	opts Options
}

// NewEngine 创建推荐引擎
func NewEngine(src DataSource, opts Options) *Engine {
	return &Engine{src: src, opts: opts.withDefaults()}
}

// NormalizeLimit 非正数 limit 回退为默认值
func (e *Engine) NormalizeLimit(limit int) int {
	if limit <= 0 {
		return e.opts.DefaultLimit
	}
	return limit
}

type scoredCandidate struct {
	userID    uint
	score     float64
	breakdown ScoreBreakdown
	profile   *profile
}

// Recommend 为用户计算好友推荐，按得分降序，同分按用户ID升序
func (e *Engine) Recommend(ctx context.Context, userID uint, limit int) (*Result, error) {
	limit = e.NormalizeLimit(limit)

	el, err := ResolveEligibility(ctx, e.src, userID, e.opts.MaxCandidates)
	if err != nil {
		return nil, err
	}

	me, err := e.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := &Result{PoolSize: len(el.Pool), Truncated: el.Truncated}

	if !me.hasData() {
		res.ColdStart = true
		res.Candidates = coldStart(el.Pool, limit)
		return res, nil
	}

	scored := make([]scoredCandidate, 0, len(el.Pool))
	for _, id := range el.Pool {
		other, err := e.loadProfile(ctx, id)
		if err != nil {
			return nil, err
		}
		// 无数据的候选人得分无定义，直接跳过
		if !other.hasData() {
			continue
		}
		res.Scored++

		b := scorePair(me, other)
		score := b.Composite()
		if score <= 0 {
			continue
		}
		scored = append(scored, scoredCandidate{userID: id, score: score, breakdown: b, profile: other})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].userID < scored[j].userID
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	res.Candidates = make([]Candidate, 0, len(scored))
	for _, sc := range scored {
		res.Candidates = append(res.Candidates, explain(me, sc))
	}
	return res, nil
}

func (e *Engine) loadProfile(ctx context.Context, userID uint) (*profile, error) {
	moods, err := e.src.RecentMoods(ctx, userID, e.opts.MoodHistorySize)
	if err != nil {
		return nil, err
	}
	if len(moods) > e.opts.MoodHistorySize {
		moods = moods[:e.opts.MoodHistorySize]
	}
	prefs, err := e.src.Preferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newProfile(moods, prefs), nil
}

// coldStart 请求者无数据时按候选池顺序返回前 limit 个用户，得分为 0
func coldStart(pool []uint, limit int) []Candidate {
	if len(pool) > limit {
		pool = pool[:limit]
	}
	out := make([]Candidate, 0, len(pool))
	for _, id := range pool {
		out = append(out, Candidate{
			UserID:               id,
			SharedMoodCategories: []string{},
			SharedMusic:          []string{},
			SharedActivities:     []string{},
			SharedCuisines:       []string{},
		})
	}
	return out
}

// explain 生成推荐理由：共同心情分类、共同偏好、候选人平均心情分
func explain(me *profile, sc scoredCandidate) Candidate {
	other := sc.profile
	c := Candidate{
		UserID:               sc.userID,
		Score:                sc.score,
		Breakdown:            sc.breakdown,
		SharedMoodCategories: []string{},
		SharedMusic:          sharedItems(me.musicList(), other.music, SharedItemsLimit),
		SharedActivities:     sharedItems(me.activitiesList(), other.activities, SharedItemsLimit),
		SharedCuisines:       sharedItems(me.cuisinesList(), other.cuisines, SharedItemsLimit),
	}
	if me.hasMoods() && other.hasMoods() {
		c.SharedMoodCategories = sharedItems(me.categoryOrder(), other.categories, 0)
		avg := roundTo1(other.avgScore)
		c.AvgMoodScore = &avg
	}
	return c
}
