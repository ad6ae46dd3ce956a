package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"time"

	"moodmeal/config"
	"moodmeal/internal/model"
	"moodmeal/internal/repository"
	"moodmeal/internal/service"
	"moodmeal/pkg/async"
	dbPkg "moodmeal/pkg/db"
	"moodmeal/pkg/jwt"
	"moodmeal/pkg/logger"
	redisPkg "moodmeal/pkg/redis"

	"go.uber.org/zap"
)

var (
	schools    = []string{"State University", "City College", "Tech Institute"}
	music      = []string{"Jazz", "Rock", "Pop", "Classical", "Hip-Hop", "Indie", "Lo-fi"}
	activities = []string{"Hiking", "Gaming", "Reading", "Cooking", "Yoga", "Cycling", "Board Games"}
	cuisines   = []string{"Italian", "Japanese", "Mexican", "Thai", "Indian", "Korean", "Chinese"}
	dietary    = []string{"Vegetarian", "Vegan", "Halal", "Gluten-Free"}
)

func main() {
	users := flag.Int("users", 30, "生成的用户数")
	moods := flag.Int("moods", 20, "每个用户的心情记录数")
	friendRate := flag.Float64("friends", 0.1, "任意两人成为好友的概率")
	seed := flag.Uint64("seed", 42, "随机种子")
	prefix := flag.String("prefix", "demo", "用户名前缀")
	password := flag.String("password", "demo123", "统一密码")
	flag.Parse()

	cfg := config.LoadConfig()
	cfg.Log.Filename = "stdout"
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	orm, err := dbPkg.InitDB(cfg.Database)
	if err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}
	defer dbPkg.CloseDB()
	if err := dbPkg.AutoMigrate(&model.User{}, &model.Friendship{}, &model.FriendRequest{}, &model.MoodEntry{}, &model.Preferences{}); err != nil {
		log.Fatal("自动迁移失败", zap.Error(err))
	}

	if err := async.Init(cfg.Async); err != nil {
		log.Fatal("协程池初始化失败", zap.Error(err))
	}
	defer async.Release()

	userRepo := repository.NewUserRepository(orm)
	friendRepo := repository.NewFriendRepository(orm)
	presence := redisPkg.NewPresence(nil)
	s := &seeder{
		rng:      rand.New(rand.NewPCG(*seed, *seed)),
		users:    service.NewUserService(userRepo, jwt.NewJWTService(cfg.JWT), presence),
		friends:  service.NewFriendService(userRepo, friendRepo, presence),
		moods:    service.NewMoodService(repository.NewMoodRepository(orm)),
		prefs:    service.NewPreferenceService(repository.NewPreferencesRepository(orm)),
		password: *password,
	}

	ctx := context.Background()
	start := time.Now()

	ids := make([]uint, 0, *users)
	for i := 0; i < *users; i++ {
		id, err := s.user(ctx, fmt.Sprintf("%s%03d", *prefix, i))
		if err != nil {
			log.Fatal("创建用户失败", zap.Error(err))
		}
		ids = append(ids, id)

		// 留一部分用户没有任何数据，用于观察冷启动
		if i%10 == 9 {
			continue
		}
		if err := s.moodHistory(ctx, id, *moods); err != nil {
			log.Fatal("写入心情失败", zap.Error(err))
		}
		if err := s.preferences(ctx, id); err != nil {
			log.Fatal("写入偏好失败", zap.Error(err))
		}
	}

	links := 0
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if s.rng.Float64() >= *friendRate {
				continue
			}
			ok, err := s.befriend(ctx, ids[i], ids[j])
			if err != nil {
				log.Fatal("建立好友关系失败", zap.Error(err))
			}
			if ok {
				links++
			}
		}
	}

	log.Info("演示数据生成完成",
		zap.Int("users", len(ids)),
		zap.Int("friendships", links),
		zap.Duration("took", time.Since(start)),
	)
}

type seeder struct {
	rng      *rand.Rand
	users    *service.UserService
	friends  *service.FriendService
	moods    *service.MoodService
	prefs    *service.PreferenceService
	password string
}

// user 注册用户，已存在时直接登录取回ID
func (s *seeder) user(ctx context.Context, username string) (uint, error) {
	u, _, err := s.users.Register(ctx, service.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: s.password,
		School:   schools[s.rng.IntN(len(schools))],
	})
	if errors.Is(err, service.ErrUserExists) {
		u, _, err = s.users.Login(ctx, username, s.password)
	}
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

// moodHistory 围绕用户的基准心情生成最近若干天的记录
func (s *seeder) moodHistory(ctx context.Context, userID uint, n int) error {
	base := 20 + s.rng.IntN(70)
	now := time.Now()
	for i := 0; i < n; i++ {
		score := min(model.MaxMoodScore, max(model.MinMoodScore, base+s.rng.IntN(21)-10))
		ts := now.Add(-time.Duration(i) * 12 * time.Hour)
		tags := pick(s.rng, model.ValidMoodTags, 2)
		if _, err := s.moods.LogMood(ctx, userID, service.MoodInput{Score: score, Tags: tags, Timestamp: &ts}); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) preferences(ctx context.Context, userID uint) error {
	m := pick(s.rng, music, 3)
	a := pick(s.rng, activities, 3)
	c := pick(s.rng, cuisines, 3)
	d := pick(s.rng, dietary, 1)
	_, err := s.prefs.Save(ctx, userID, service.PreferencesInput{Music: &m, Activities: &a, Cuisines: &c, Dietary: &d})
	return err
}

// befriend 通过请求+接受建立好友关系，已是好友或有待处理请求时跳过
func (s *seeder) befriend(ctx context.Context, a, b uint) (bool, error) {
	req, err := s.friends.SendRequest(ctx, a, b)
	if errors.Is(err, service.ErrAlreadyFriends) || errors.Is(err, service.ErrRequestPending) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := s.friends.RespondRequest(ctx, b, req.ID, true); err != nil {
		return false, err
	}
	return true, nil
}

// pick 随机选取至多 n 个不重复元素
func pick(rng *rand.Rand, from []string, n int) []string {
	idx := rng.Perm(len(from))
	k := rng.IntN(n) + 1
	out := make([]string, 0, k)
	for _, i := range idx[:min(k, len(idx))] {
		out = append(out, from[i])
	}
	return out
}
