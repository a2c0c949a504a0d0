package session

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tripot-labs/companion-engine/core"
	"github.com/tripot-labs/companion-engine/dialogue"
)

// User-facing fixed strings for the turn loop.
const (
	greeting         = "안녕하세요! 오늘은 어떤 재미있는 이야기를 나눠볼까요?"
	msgDidNotCatch   = "음, 잘 못 들었어요. 다시 말씀해주시겠어요?"
	msgTurnFailed    = "죄송합니다. 음성 처리 중 문제가 발생했어요."
	noSpeechArtifact = "시청해주셔서 감사합니다"

	// quizStartCount is how many questions a voice-started quiz asks.
	quizStartCount = 1

	// consolidateTimeout bounds the teardown consolidation, which runs on
	// a fresh context because the connection's context is already gone.
	consolidateTimeout = 30 * time.Second
)

// Conn is one user's duplex connection as the turn loop sees it: inbound
// frames are one turn's base64 audio, outbound frames are events.
// Receive must unblock with an error when ctx is cancelled.
type Conn interface {
	Receive(ctx context.Context) (string, error)
	Send(ev core.Event) error
}

// Replier generates the assistant reply for an ordinary chat turn.
// Implemented by reply.Generator.
type Replier interface {
	Reply(ctx context.Context, userID, userMessage string) (string, error)
}

// Consolidator writes the session transcript to long-term memory at
// teardown. Implemented by memory.Manager.
type Consolidator interface {
	Consolidate(ctx context.Context, userID string, lines []string) error
}

// Orchestrator drives the receive-transcribe-route-reply loop for every
// connection. One goroutine per connection; turns within a connection are
// strictly sequential.
type Orchestrator struct {
	registry    *Registry
	transcriber core.Transcriber
	replier     Replier
	memories    Consolidator
	turns       core.TurnStore
	logger      *zap.Logger
}

// NewOrchestrator wires the turn loop's collaborators.
func NewOrchestrator(registry *Registry, transcriber core.Transcriber, replier Replier, memories Consolidator, turns core.TurnStore, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		registry:    registry,
		transcriber: transcriber,
		replier:     replier,
		memories:    memories,
		turns:       turns,
		logger:      logger,
	}
}

// HandleConnection runs the turn loop until the connection closes or ctx
// is cancelled. It always runs teardown: consolidating the accumulated
// transcript and releasing the registry entry.
func (o *Orchestrator) HandleConnection(ctx context.Context, userID string, conn Conn) error {
	log := o.logger.With(zap.String("user_id", userID))

	sess, _ := o.registry.Open(userID)
	log.Info("session opened")
	defer o.teardown(sess, log)

	if err := conn.Send(core.NewAIMessage(greeting)); err != nil {
		return err
	}
	sess.Append(core.SpeakerAssistant, greeting)

	for {
		frame, err := conn.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			log.Info("connection closed", zap.Error(err))
			return nil
		}

		userText, ok := o.transcribe(ctx, frame, log)
		if !ok {
			// No usable speech: prompt a retry without touching any state.
			if err := conn.Send(core.NewAIMessage(msgDidNotCatch)); err != nil {
				return err
			}
			continue
		}

		if err := conn.Send(core.NewUserMessage(userText)); err != nil {
			return err
		}
		sess.Append(core.SpeakerUser, userText)

		replyText := o.route(ctx, sess, userText, log)

		if err := conn.Send(core.NewAIMessage(replyText)); err != nil {
			return err
		}
		sess.Append(core.SpeakerAssistant, replyText)

		if err := o.turns.SaveConversationTurn(ctx, userID, userText, replyText); err != nil {
			log.Warn("saving conversation turn failed", zap.Error(err))
		}
	}
}

// transcribe decodes one inbound frame and runs speech-to-text. Any
// failure, an empty transcript, or a known no-speech artifact counts as
// "no speech detected".
func (o *Orchestrator) transcribe(ctx context.Context, frame string, log *zap.Logger) (string, bool) {
	audio, err := base64.StdEncoding.DecodeString(strings.TrimSpace(frame))
	if err != nil {
		log.Warn("inbound frame is not valid base64", zap.Error(err))
		return "", false
	}

	text, err := o.transcriber.Transcribe(ctx, audio)
	if err != nil {
		log.Warn("transcription failed", zap.Error(err))
		return "", false
	}

	text = strings.TrimSpace(text)
	if text == "" || strings.Contains(text, noSpeechArtifact) {
		return "", false
	}
	return text, true
}

// route produces the assistant reply for one transcribed utterance: an
// answer submission while a quiz is active, otherwise a quiz command or
// an ordinary memory-grounded chat reply.
func (o *Orchestrator) route(ctx context.Context, sess *Session, userText string, log *zap.Logger) string {
	if sess.Quiz.IsActive() {
		replyText, result := sess.Quiz.SubmitAnswer(ctx, userText)
		if result != nil {
			if err := o.turns.SaveQuizResult(ctx, result); err != nil {
				log.Warn("saving quiz result failed", zap.Error(err))
			}
		}
		return replyText
	}

	switch dialogue.Classify(userText) {
	case dialogue.CommandStartQuiz:
		startMsg, firstQuestion := sess.Quiz.Start(sess.UserID, quizStartCount)
		if firstQuestion == "" {
			return startMsg
		}
		return startMsg + "\n" + firstQuestion

	case dialogue.CommandStopQuiz:
		return sess.Quiz.Stop()

	default:
		replyText, err := o.replier.Reply(ctx, sess.UserID, userText)
		if err != nil {
			log.Warn("reply generation failed", zap.Error(err))
			return msgTurnFailed
		}
		return replyText
	}
}

// teardown consolidates whatever transcript accumulated and releases the
// registry entry. It runs on every exit path, including cancellation, on
// a fresh bounded context.
func (o *Orchestrator) teardown(sess *Session, log *zap.Logger) {
	if lines := sess.TranscriptLines(); len(lines) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), consolidateTimeout)
		defer cancel()
		if err := o.memories.Consolidate(ctx, sess.UserID, lines); err != nil {
			log.Warn("transcript consolidation failed", zap.Error(err))
		}
	}

	o.registry.Release(sess.UserID, sess)
	log.Info("session closed", zap.Int("transcript_entries", sess.TranscriptLen()))
}
