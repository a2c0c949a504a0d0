package store

import "time"

// User is one registered account. User-facing identifiers are the string
// user_id_str; the numeric key is internal to the relational schema.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	UserIDStr string `gorm:"size:255;uniqueIndex;not null"`
	Name      string `gorm:"size:100"`
	CreatedAt time.Time
}

// Conversation is a single utterance of a saved turn. Each turn writes
// two rows, one per speaker.
type Conversation struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	Speaker   string `gorm:"size:50;not null"`
	Message   string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

// Quiz is one row of the immutable question bank.
type Quiz struct {
	ID           int64  `gorm:"primaryKey"`
	Topic        string `gorm:"size:255;not null"`
	QuestionText string `gorm:"type:text;not null"`
	Answer       string `gorm:"type:text;not null"`
	CreatedAt    time.Time
}

// TableName keeps the question bank's historical singular table name.
func (Quiz) TableName() string { return "quiz" }

// QuizResult records one scored answer within a quiz run.
type QuizResult struct {
	ID            uint   `gorm:"primaryKey"`
	UserID        uint   `gorm:"index;not null"`
	QuizID        int64  `gorm:"not null"`
	QuestionText  string `gorm:"type:text;not null"`
	UserAnswer    string `gorm:"type:text"`
	CorrectAnswer string `gorm:"type:text;not null"`
	IsCorrect     bool   `gorm:"not null"`
	QuizSessionID string `gorm:"size:255;index;not null"`
	CreatedAt     time.Time
}

// DailyQA is the shared question of the day with accumulated answers
// from both sides of the family.
type DailyQA struct {
	ID                   uint   `gorm:"primaryKey"`
	DailyDate            string `gorm:"size:10;uniqueIndex;not null"`
	QuestionText         string `gorm:"type:text;not null"`
	FamilyAnswerContent  string `gorm:"type:text"`
	ElderlyAnswerContent string `gorm:"type:text"`
	CreatedAt            time.Time
}

// TableName keeps the original table name, which gorm would otherwise
// pluralize.
func (DailyQA) TableName() string { return "daily_qa" }

// CallSchedule is a daily wall-clock reminder slot for one user.
// CallTime is stored as "HH:MM" in Asia/Seoul local time.
type CallSchedule struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	CallTime  string `gorm:"size:5;not null"`
	IsEnabled bool   `gorm:"not null;default:true"`
	SetBy     string `gorm:"size:50;default:user"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
