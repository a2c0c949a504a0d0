package core

// Quiz is one question from the pool. The pool is loaded once at process
// start and never mutated afterwards.
type Quiz struct {
	ID           int64
	Topic        string
	QuestionText string
	Answer       string
}

// AnswerResult records one scored quiz answer. Immutable once created;
// handed to the persistence collaborator as-is.
type AnswerResult struct {
	UserID        string
	QuizID        int64
	QuestionText  string
	UserAnswer    string
	CorrectAnswer string
	IsCorrect     bool
	QuizSessionID string
}
