// Package store is the relational persistence collaborator: conversation
// turns, quiz results, the quiz question bank, daily questions, and call
// schedules, backed by sqlite through gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tripot-labs/companion-engine/core"
)

const dateLayout = "2006-01-02"

// Store wraps the relational database. All methods are safe for
// concurrent use; gorm manages the underlying connection pool.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the sqlite database at path and
// migrates the schema. Use ":memory:" for an ephemeral database.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	if err := db.AutoMigrate(
		&User{},
		&Conversation{},
		&Quiz{},
		&QuizResult{},
		&DailyQA{},
		&CallSchedule{},
	); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// getOrCreateUser resolves the string identifier to a user row, creating
// one on first contact.
func getOrCreateUser(tx *gorm.DB, userIDStr string) (*User, error) {
	var user User
	err := tx.Where("user_id_str = ?", userIDStr).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = User{UserIDStr: userIDStr}
		err = tx.Create(&user).Error
	}
	if err != nil {
		return nil, fmt.Errorf("resolving user %q: %w", userIDStr, err)
	}
	return &user, nil
}

// SaveConversationTurn persists one turn as two conversation rows, user
// utterance first.
func (s *Store) SaveConversationTurn(ctx context.Context, userID, userMessage, aiMessage string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := getOrCreateUser(tx, userID)
		if err != nil {
			return err
		}
		rows := []Conversation{
			{UserID: user.ID, Speaker: "user", Message: userMessage},
			{UserID: user.ID, Speaker: "ai", Message: aiMessage},
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("saving conversation turn: %w", err)
		}
		return nil
	})
}

// SaveQuizResult persists one scored answer.
func (s *Store) SaveQuizResult(ctx context.Context, r *core.AnswerResult) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := getOrCreateUser(tx, r.UserID)
		if err != nil {
			return err
		}
		row := QuizResult{
			UserID:        user.ID,
			QuizID:        r.QuizID,
			QuestionText:  r.QuestionText,
			UserAnswer:    r.UserAnswer,
			CorrectAnswer: r.CorrectAnswer,
			IsCorrect:     r.IsCorrect,
			QuizSessionID: r.QuizSessionID,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("saving quiz result: %w", err)
		}
		return nil
	})
}

// LoadQuizPool reads the whole question bank. Called once at startup; the
// returned slice is treated as immutable afterwards.
func (s *Store) LoadQuizPool(ctx context.Context) ([]core.Quiz, error) {
	var rows []Quiz
	if err := s.db.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading quiz pool: %w", err)
	}
	pool := make([]core.Quiz, len(rows))
	for i, q := range rows {
		pool[i] = core.Quiz{ID: q.ID, Topic: q.Topic, QuestionText: q.QuestionText, Answer: q.Answer}
	}
	s.logger.Info("quiz pool loaded", zap.Int("questions", len(pool)))
	return pool, nil
}

// DailyQuestion returns the question of the given day, or nil when none
// was set.
func (s *Store) DailyQuestion(ctx context.Context, day time.Time) (*DailyQA, error) {
	var row DailyQA
	err := s.db.WithContext(ctx).Where("daily_date = ?", day.Format(dateLayout)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading daily question: %w", err)
	}
	return &row, nil
}

// RecordDailyAnswer appends the elder's answer to the day's question log.
// A day without a question is a no-op.
func (s *Store) RecordDailyAnswer(ctx context.Context, day time.Time, answer string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row DailyQA
		err := tx.Where("daily_date = ?", day.Format(dateLayout)).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("loading daily question: %w", err)
		}
		row.ElderlyAnswerContent = strings.TrimSpace(row.ElderlyAnswerContent + "\n" + answer)
		if err := tx.Save(&row).Error; err != nil {
			return fmt.Errorf("recording daily answer: %w", err)
		}
		return nil
	})
}

// ScheduledCall pairs a user with one enabled call slot.
type ScheduledCall struct {
	UserID   string
	CallTime string
}

// ActiveSchedules lists every enabled call slot joined with its user's
// string identifier.
func (s *Store) ActiveSchedules(ctx context.Context) ([]ScheduledCall, error) {
	var out []ScheduledCall
	err := s.db.WithContext(ctx).
		Model(&CallSchedule{}).
		Select("users.user_id_str as user_id, call_schedules.call_time as call_time").
		Joins("join users on users.id = call_schedules.user_id").
		Where("call_schedules.is_enabled = ?", true).
		Order("call_schedules.call_time asc").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("loading active schedules: %w", err)
	}
	return out, nil
}

// SetSchedules replaces the user's call slots with the given "HH:MM"
// times, all enabled.
func (s *Store) SetSchedules(ctx context.Context, userID string, callTimes []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := getOrCreateUser(tx, userID)
		if err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&CallSchedule{}).Error; err != nil {
			return fmt.Errorf("clearing schedules: %w", err)
		}
		for _, t := range callTimes {
			row := CallSchedule{UserID: user.ID, CallTime: t, IsEnabled: true, SetBy: "user"}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("saving schedule %s: %w", t, err)
			}
		}
		return nil
	})
}
