// Package dialogue drives the conversation: it owns the state machine that
// takes each inbound message through language detection, intent
// classification and the ex-gratia form workflow, and renders the reply.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/smartgov-sikkim/sewabot/internal/sewabot/intent"
	"github.com/smartgov-sikkim/sewabot/internal/sewabot/lang"
	"github.com/smartgov-sikkim/sewabot/internal/sewabot/messages"
	"github.com/smartgov-sikkim/sewabot/internal/sewabot/session"
	"github.com/smartgov-sikkim/sewabot/internal/sewabot/store"
)

// LanguageSwitchMinWords is the minimum message length, in words, before
// an idle-state message may flip the language of record. Short messages
// (names, IDs, "ok") are too ambiguous to re-detect from.
const LanguageSwitchMinWords = 5

// appIDPrefix marks ex-gratia application IDs ("24EXG-" + 8 hex chars).
const appIDPrefix = "24EXG-"

var appIDPattern = regexp.MustCompile(`(?i)\b24EXG-[0-9a-f]{8}\b`)

// Detector resolves the language of a message. Implementations are total
// and enforce their own per-user inference quota.
type Detector interface {
	Detect(ctx context.Context, userID, text string) lang.Language
}

// Classifier resolves the intent of a message. Implementations are total
// and enforce their own per-user inference quota.
type Classifier interface {
	Classify(ctx context.Context, userID, text string, language lang.Language) intent.Result
}

// ApplicationStore persists submitted applications and serves status
// lookups.
type ApplicationStore interface {
	InsertApplication(ctx context.Context, app *store.Application) error
	GetApplication(ctx context.Context, id string) (*store.Application, error)
}

// Reply is what the transport sends back for one inbound message.
type Reply struct {
	Text string
}

// Engine is the dialogue state machine. One Engine serves all users; the
// session store serializes turns per user.
type Engine struct {
	detector   Detector
	classifier Classifier
	sessions   *session.Store
	apps       ApplicationStore
	catalog    *messages.Catalog
	form       *Form
	logger     *slog.Logger

	newID func() string
}

// NewEngine wires the engine. logger may be nil.
func NewEngine(
	detector Detector,
	classifier Classifier,
	sessions *session.Store,
	apps ApplicationStore,
	catalog *messages.Catalog,
	form *Form,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		detector:   detector,
		classifier: classifier,
		sessions:   sessions,
		apps:       apps,
		catalog:    catalog,
		form:       form,
		logger:     logger,
		newID: func() string {
			return appIDPrefix + uuid.NewString()[:8]
		},
	}
}

// Advance runs one full turn for userID and returns the reply to send.
//
// The entire turn executes under the user's session lock: a second message
// from the same user waits for the first to finish, so concurrent
// confirmations cannot double-submit and collected answers are never lost
// to interleaving. Turns for different users run independently. Language
// detection and classification never fail a turn; only the persistence
// layer can surface an error.
func (e *Engine) Advance(ctx context.Context, userID, text string) (*Reply, error) {
	text = strings.TrimSpace(text)

	var reply *Reply
	var err error
	e.sessions.WithUser(userID, func(sess *session.Session) {
		reply, err = e.turn(ctx, userID, sess, text)
	})
	return reply, err
}

// turn is one read-modify-write cycle against the live session. The caller
// holds the user's lock, so sess may be mutated directly.
func (e *Engine) turn(ctx context.Context, userID string, sess *session.Session, text string) (*Reply, error) {
	// A submitted workflow is over: the next message starts back at the
	// main menu.
	if sess.State == session.Submitted {
		sess.State = session.MainMenu
	}

	if text == "" {
		return e.reprompt(sess), nil
	}

	// Explicit language-change commands work only while idle; during a
	// workflow they are just another answer.
	if sess.State == session.MainMenu {
		if target, ok := LanguageChange(text); ok {
			sess.Language = target
			e.logger.Info("language changed by command", "user", userID, "language", target)
			return &Reply{Text: e.catalog.Get(target, messages.KeyLanguageChanged) +
				"\n\n" + e.catalog.Get(target, messages.KeyMainMenu)}, nil
		}
	}

	language := e.languageOfRecord(ctx, userID, sess, text)

	switch sess.State {
	case session.CollectingInfo:
		return e.collectTurn(userID, sess, language, text)
	case session.Confirming:
		return e.confirmTurn(ctx, userID, sess, language, text)
	default:
		return e.menuTurn(ctx, userID, sess, language, text)
	}
}

// languageOfRecord applies the language policy for this turn. During a
// workflow the recorded language is frozen. While idle, the first message
// sets it, and later messages may switch it only when they are long
// enough to re-detect from.
func (e *Engine) languageOfRecord(ctx context.Context, userID string, sess *session.Session, text string) lang.Language {
	if sess.State != session.MainMenu {
		if sess.Language == lang.Unset {
			return lang.English
		}
		return sess.Language
	}

	if sess.Language == lang.Unset {
		sess.Language = e.detector.Detect(ctx, userID, text)
		return sess.Language
	}

	if len(strings.Fields(text)) >= LanguageSwitchMinWords {
		if detected := e.detector.Detect(ctx, userID, text); detected != sess.Language {
			e.logger.Info("language of record switched", "user", userID, "from", sess.Language, "to", detected)
			sess.Language = detected
		}
	}
	return sess.Language
}

// --- main menu ---

func (e *Engine) menuTurn(ctx context.Context, userID string, sess *session.Session, language lang.Language, text string) (*Reply, error) {
	res := e.classifier.Classify(ctx, userID, text, language)
	e.logger.Info("turn",
		"user", userID,
		"state", session.MainMenu,
		"language", language,
		"intent", res.Label,
		"source", res.Source,
	)

	switch res.Label {
	case intent.Greeting:
		return &Reply{Text: e.catalog.Get(language, messages.KeyGreeting)}, nil
	case intent.Help:
		return &Reply{Text: e.catalog.Get(language, messages.KeyHelp)}, nil
	case intent.ExgratiaNorms:
		return &Reply{Text: e.catalog.Get(language, messages.KeyExgratiaNorms)}, nil
	case intent.ApplicationProcedure:
		return &Reply{Text: e.catalog.Get(language, messages.KeyApplicationProcedure)}, nil
	case intent.StatusCheck:
		return e.statusTurn(ctx, language, text)
	case intent.ExgratiaApply:
		return e.beginApplication(userID, sess, language), nil
	default:
		return &Reply{Text: e.catalog.Get(language, messages.KeyFallback)}, nil
	}
}

func (e *Engine) statusTurn(ctx context.Context, language lang.Language, text string) (*Reply, error) {
	id := appIDPattern.FindString(text)
	if id == "" {
		return &Reply{Text: e.catalog.Get(language, messages.KeyStatusHowTo)}, nil
	}
	id = strings.ToUpper(id[:len(appIDPrefix)]) + id[len(appIDPrefix):]

	app, err := e.apps.GetApplication(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return &Reply{Text: fmt.Sprintf(e.catalog.Get(language, messages.KeyStatusNotFound), id)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dialogue: status lookup: %w", err)
	}
	return &Reply{Text: fmt.Sprintf(e.catalog.Get(language, messages.KeyStatusFound), app.ID, app.Status)}, nil
}

func (e *Engine) beginApplication(userID string, sess *session.Session, language lang.Language) *Reply {
	first := e.form.First()
	sess.State = session.CollectingInfo
	sess.Data = make(map[string]string)
	sess.CurrentQuestion = first.Name
	e.logger.Info("application started", "user", userID, "language", language)
	return &Reply{Text: e.catalog.Get(language, messages.KeyApplicationProcedure) +
		"\n\n" + e.catalog.Question(language, first.Name)}
}

// --- collecting ---

func (e *Engine) collectTurn(userID string, sess *session.Session, language lang.Language, text string) (*Reply, error) {
	if IsCancel(text) {
		sess.Reset()
		e.logger.Info("application cancelled", "user", userID, "state", session.CollectingInfo)
		return &Reply{Text: e.catalog.Get(language, messages.KeyCancelled)}, nil
	}

	field, ok := e.form.Field(sess.CurrentQuestion)
	if !ok {
		// Unknown question name means the form definition changed under a
		// live session. Restart cleanly rather than guessing.
		e.logger.Warn("session referenced unknown form field, resetting",
			"user", userID, "field", sess.CurrentQuestion)
		sess.Reset()
		return &Reply{Text: e.catalog.Get(language, messages.KeyMainMenu)}, nil
	}

	value, valid := field.Validate(text)
	if !valid {
		return &Reply{Text: e.catalog.Get(language, field.ErrorKey) +
			"\n\n" + e.catalog.Question(language, field.Name)}, nil
	}

	sess.Data[field.Name] = value
	next, done := e.form.Next(field.Name)
	if done {
		sess.State = session.Confirming
		sess.CurrentQuestion = ""
		return &Reply{Text: e.summary(language, sess.Data)}, nil
	}
	sess.CurrentQuestion = next.Name
	return &Reply{Text: e.catalog.Question(language, next.Name)}, nil
}

// summary renders the collected answers plus the confirm/cancel hint.
func (e *Engine) summary(language lang.Language, data map[string]string) string {
	var b strings.Builder
	b.WriteString(e.catalog.Get(language, messages.KeyConfirmSummary))
	b.WriteString("\n")
	for _, f := range e.form.Fields() {
		if v, ok := data[f.Name]; ok {
			fmt.Fprintf(&b, "• %s: %s\n", displayName(f.Name), v)
		}
	}
	b.WriteString("\n")
	b.WriteString(e.catalog.Get(language, messages.KeyConfirmHint))
	return b.String()
}

func displayName(field string) string {
	words := strings.Split(field, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// --- confirming ---

func (e *Engine) confirmTurn(ctx context.Context, userID string, sess *session.Session, language lang.Language, text string) (*Reply, error) {
	if IsCancel(text) || Confirmation(text) == ConfirmNo {
		sess.Reset()
		e.logger.Info("application cancelled", "user", userID, "state", session.Confirming)
		return &Reply{Text: e.catalog.Get(language, messages.KeyCancelled)}, nil
	}

	if Confirmation(text) != ConfirmYes {
		return &Reply{Text: e.summary(language, sess.Data)}, nil
	}

	app := &store.Application{
		ID:       e.newID(),
		UserID:   userID,
		Language: string(language),
		Data:     sess.Data,
	}
	if err := e.apps.InsertApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("dialogue: persist application: %w", err)
	}

	sess.State = session.Submitted
	sess.Data = make(map[string]string)
	sess.CurrentQuestion = ""
	e.logger.Info("application submitted", "user", userID, "application", app.ID, "language", language)

	return &Reply{Text: fmt.Sprintf(e.catalog.Get(language, messages.KeySubmitted), app.ID)}, nil
}

// reprompt re-renders the prompt for the session's current position. Used
// for empty messages, which carry nothing to detect or classify.
func (e *Engine) reprompt(sess *session.Session) *Reply {
	switch sess.State {
	case session.CollectingInfo:
		return &Reply{Text: e.catalog.Question(sess.Language, sess.CurrentQuestion)}
	case session.Confirming:
		return &Reply{Text: e.summary(sess.Language, sess.Data)}
	default:
		return &Reply{Text: e.catalog.Get(sess.Language, messages.KeyMainMenu)}
	}
}
