package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"saasanalytics/config"
	"saasanalytics/core"
	"saasanalytics/database"
	"saasanalytics/metrics"
	"saasanalytics/models"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	minEventsPerUser = 5
	maxEventsPerUser = 30
	historyDays      = 365
	insertBatchSize  = 200
)

var (
	firstNames = []string{"Ava", "Liam", "Maya", "Noah", "Zoe", "Ethan", "Iris", "Omar", "Lena", "Ravi", "Sofia", "Kenji", "Nora", "Diego", "Hana", "Felix"}
	lastNames  = []string{"Smith", "Garcia", "Chen", "Patel", "Müller", "Silva", "Kim", "Nguyen", "Johnson", "Rossi", "Novak", "Okafor", "Tanaka", "Dubois"}
	companies  = []string{"Acme", "Globex", "Initech", "Umbrella", "Hooli", "Stark", "Wayne", "Wonka", "Tyrell", "Soylent", "Cyberdyne", "Vandelay"}
	countries  = []string{"US", "US", "US", "GB", "DE", "FR", "CA", "IN", "BR", "AU", "JP", "NL"}
	features   = []string{"dashboard", "reports", "alerts", "integrations", "api", "billing", "team_management", "exports"}
)

type weighted struct {
	value  string
	weight int
}

var (
	planWeights = []weighted{{"free", 40}, {"starter", 30}, {"pro", 22}, {"enterprise", 8}}

	statusWeights = []weighted{{"active", 70}, {"trialing", 8}, {"canceled", 17}, {"past_due", 5}}

	eventWeights = []weighted{
		{"login", 30}, {"page_view", 35}, {"feature_used", 22}, {"export", 5},
		{"invite_sent", 4}, {"upgrade", 2}, {"downgrade", 2},
	}
)

// DataGenerator fills the store with synthetic SaaS data.
type DataGenerator struct {
	users   int
	log     *zap.Logger
	now     func() time.Time
	newRand func() *rand.Rand
}

// NewDataGenerator constructs a generator creating cfg.SampleUsers users per run.
func NewDataGenerator(cfg *config.Config, log *zap.Logger) *DataGenerator {
	return &DataGenerator{
		users: cfg.SampleUsers,
		log:   log.Named("sample_data"),
		now:   time.Now,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
}

// GenerateSampleData inserts a fresh batch of users with one subscription
// each and 5-30 events per user over the past year. Every call adds rows.
// Either the whole batch is committed or nothing is.
func (g *DataGenerator) GenerateSampleData(ctx context.Context, db *gorm.DB) (models.GenerationSummary, error) {
	const op = "generate_sample_data"

	rng := g.newRand()
	now := g.now().UTC()
	var summary models.GenerationSummary

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := make([]models.User, 0, g.users)
		subs := make([]models.Subscription, 0, g.users)
		for i := 0; i < g.users; i++ {
			user := g.fakeUser(rng, now)
			sub := fakeSubscription(rng, &user, now)
			if sub.Status == "canceled" {
				user.IsActive = false
			}
			users = append(users, user)
			subs = append(subs, sub)
		}
		if err := tx.CreateInBatches(&users, insertBatchSize).Error; err != nil {
			return fmt.Errorf("insert users: %w", err)
		}

		var events []models.Event
		for i := range users {
			subs[i].UserID = users[i].ID
			events = append(events, fakeEvents(rng, &users[i], now)...)
		}

		if err := tx.CreateInBatches(&subs, insertBatchSize).Error; err != nil {
			return fmt.Errorf("insert subscriptions: %w", err)
		}
		if err := tx.CreateInBatches(&events, insertBatchSize).Error; err != nil {
			return fmt.Errorf("insert events: %w", err)
		}

		summary = models.GenerationSummary{Users: len(users), Events: len(events), Subscriptions: len(subs)}

		encoded, err := json.Marshal(summary)
		if err != nil {
			return err
		}
		if err := database.SetSetting(tx, models.SettingSampleDataGeneratedAt, now.Format(time.RFC3339)); err != nil {
			return err
		}
		return database.SetSetting(tx, models.SettingSampleDataSummary, string(encoded))
	})
	if err != nil {
		return models.GenerationSummary{}, core.Internal(op, err)
	}

	metrics.SampleRowsGenerated.WithLabelValues("users").Add(float64(summary.Users))
	metrics.SampleRowsGenerated.WithLabelValues("subscriptions").Add(float64(summary.Subscriptions))
	metrics.SampleRowsGenerated.WithLabelValues("events").Add(float64(summary.Events))

	g.log.Info("sample data generated",
		zap.Int("users", summary.Users),
		zap.Int("subscriptions", summary.Subscriptions),
		zap.Int("events", summary.Events),
	)
	return summary, nil
}

// InitializeDatabase seeds the store only when it has no users yet.
func (g *DataGenerator) InitializeDatabase(ctx context.Context, db *gorm.DB) (*models.InitResult, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, core.Internal("initialize_database", err)
	}
	if count > 0 {
		g.log.Info("database already initialized", zap.Int64("users", count))
		return &models.InitResult{AlreadyInitialized: true, UserCount: count}, nil
	}

	summary, err := g.GenerateSampleData(ctx, db)
	if err != nil {
		return nil, err
	}
	return &models.InitResult{Generated: &summary}, nil
}

func (g *DataGenerator) fakeUser(rng *rand.Rand, now time.Time) models.User {
	first := pick(rng, firstNames)
	last := pick(rng, lastNames)
	company := pick(rng, companies)
	tag := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]

	return models.User{
		Name:       first + " " + last,
		Email:      fmt.Sprintf("%s.%s.%s@%s.io", strings.ToLower(first), asciiLower(last), tag, strings.ToLower(company)),
		Company:    company + " " + pick(rng, []string{"Inc", "Labs", "Ltd", "GmbH", "Co"}),
		Plan:       pickWeighted(rng, planWeights),
		Country:    pick(rng, countries),
		SignupDate: now.Add(-randomAge(rng, historyDays)),
		IsActive:   true,
	}
}

// fakeSubscription builds the subscription for user; UserID is filled in
// once the user has been inserted.
func fakeSubscription(rng *rand.Rand, user *models.User, now time.Time) models.Subscription {
	status := pickWeighted(rng, statusWeights)
	if user.Plan == "free" && status == "past_due" {
		status = "active"
	}

	cycle := "monthly"
	if user.Plan != "free" && rng.IntN(100) < 30 {
		cycle = "annual"
	}

	mrr := models.PlanMRR[user.Plan]
	if cycle == "annual" {
		// two months free on annual billing
		mrr = mrr * 10 / 12
	}

	sub := models.Subscription{
		Plan:         user.Plan,
		Status:       status,
		MRR:          float64(int(mrr*100+0.5)) / 100,
		BillingCycle: cycle,
		StartedAt:    user.SignupDate,
	}
	if status == "canceled" {
		canceled := between(rng, user.SignupDate, now)
		sub.CanceledAt = &canceled
	}
	return sub
}

func fakeEvents(rng *rand.Rand, user *models.User, now time.Time) []models.Event {
	n := minEventsPerUser + rng.IntN(maxEventsPerUser-minEventsPerUser+1)
	events := make([]models.Event, 0, n)

	sessionID := uuid.NewString()
	for i := 0; i < n; i++ {
		// a session spans a handful of consecutive events
		if rng.IntN(4) == 0 {
			sessionID = uuid.NewString()
		}
		eventType := pickWeighted(rng, eventWeights)
		ev := models.Event{
			UserID:     user.ID,
			SessionID:  sessionID,
			EventType:  eventType,
			OccurredAt: between(rng, user.SignupDate, now),
		}
		if eventType == "feature_used" || eventType == "export" {
			ev.FeatureName = pick(rng, features)
		}
		events = append(events, ev)
	}
	return events
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.IntN(len(values))]
}

func pickWeighted(rng *rand.Rand, values []weighted) string {
	total := 0
	for _, v := range values {
		total += v.weight
	}
	n := rng.IntN(total)
	for _, v := range values {
		if n < v.weight {
			return v.value
		}
		n -= v.weight
	}
	return values[len(values)-1].value
}

func randomAge(rng *rand.Rand, days int) time.Duration {
	return time.Duration(rng.Int64N(int64(days) * int64(24*time.Hour)))
}

func between(rng *rand.Rand, from, to time.Time) time.Time {
	span := to.Sub(from)
	if span <= 0 {
		return to
	}
	return from.Add(time.Duration(rng.Int64N(int64(span))))
}

func asciiLower(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer("ü", "u", "ö", "o", "ä", "a").Replace(s)
}
