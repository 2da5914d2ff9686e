package chat

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ariachat/server/internal/domain/usage"
	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/inbound"
	"github.com/ariachat/server/internal/port/outbound"
	"github.com/ariachat/server/internal/utils/fifocache"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const cacheName = "chat"

// DefaultLimitMessage is returned in place of a reply once the daily
// allowance is spent.
const DefaultLimitMessage = "⏰ Daily 20-minute limit reached! Upgrade to Premium for unlimited chat."

// Config holds chat configuration.
type Config struct {
	SystemPrompt    string
	LimitMessage    string
	CacheCapacity   int
	MaxMessageRunes int
	EstimateSeconds int64
}

// DefaultConfig returns the default chat configuration.
func DefaultConfig() Config {
	return Config{
		LimitMessage:    DefaultLimitMessage,
		CacheCapacity:   256,
		MaxMessageRunes: 4000,
		EstimateSeconds: usage.DefaultEstimateSeconds,
	}
}

// CacheRecorder observes reply cache lookups.
type CacheRecorder interface {
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
}

// Domain meters a completion call against the caller's allowance and keeps
// the account's chat history.
type Domain struct {
	usage      inbound.UsageDomain
	completion outbound.CompletionPort
	messages   outbound.MessageDatabasePort
	clock      outbound.ClockPort
	cache      *fifocache.Cache[string, string]
	recorder   CacheRecorder
	cfg        Config
	logger     *zap.Logger
}

// NewChatDomain creates a new chat domain. recorder may be nil.
func NewChatDomain(
	usageDomain inbound.UsageDomain,
	completion outbound.CompletionPort,
	messages outbound.MessageDatabasePort,
	clock outbound.ClockPort,
	recorder CacheRecorder,
	cfg Config,
	logger *zap.Logger,
) *Domain {
	if cfg.LimitMessage == "" {
		cfg.LimitMessage = DefaultLimitMessage
	}
	if cfg.EstimateSeconds <= 0 {
		cfg.EstimateSeconds = usage.DefaultEstimateSeconds
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Domain{
		usage:      usageDomain,
		completion: completion,
		messages:   messages,
		clock:      clock,
		cache:      fifocache.New[string, string](cfg.CacheCapacity),
		recorder:   recorder,
		cfg:        cfg,
		logger:     logger.Named("chat"),
	}
}

var _ inbound.ChatDomain = (*Domain)(nil)

// Chat admits the account, produces a reply and records the elapsed
// seconds. A spent allowance is reported in the reply, not as an error.
func (d *Domain) Chat(ctx context.Context, accountID uuid.UUID, message string) (*model.ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if d.cfg.MaxMessageRunes > 0 && len([]rune(message)) > d.cfg.MaxMessageRunes {
		return nil, ErrMessageTooLong
	}

	start := d.clock.Now()
	adm, err := d.usage.Admit(ctx, accountID, d.cfg.EstimateSeconds)
	if err != nil {
		if errors.Is(err, usage.ErrQuotaExceeded) {
			status, serr := d.usage.GetEntitlementStatus(ctx, accountID)
			if serr != nil {
				d.logger.Warn("failed to load status after quota rejection", zap.Error(serr))
				status = nil
			}
			return &model.ChatReply{
				Reply:        d.cfg.LimitMessage,
				LimitReached: true,
				Status:       status,
			}, nil
		}
		return nil, err
	}

	key := cacheKey(message)
	reply, cached := d.cache.Get(key)
	if cached {
		d.recordHit()
	} else {
		d.recordMiss()
		reply, err = d.completion.Complete(ctx, d.prompt(message))
		if err != nil {
			if cerr := d.usage.Cancel(context.WithoutCancel(ctx), adm); cerr != nil {
				d.logger.Error("failed to cancel admission",
					zap.String("account_id", accountID.String()),
					zap.Error(cerr),
				)
			}
			d.logger.Warn("completion failed",
				zap.String("account_id", accountID.String()),
				zap.Error(err),
			)
			return nil, fmt.Errorf("%w: %w", ErrCompletionFailed, err)
		}
		d.cache.Set(key, reply)
	}

	end := d.clock.Now()
	seconds := int64(end.Sub(start).Seconds())
	if seconds < 0 {
		seconds = 0
	}

	// The reply is already produced; settle even if the caller went away.
	status, err := d.usage.Settle(context.WithoutCancel(ctx), adm, seconds)
	if err != nil {
		return nil, fmt.Errorf("failed to record usage: %w", err)
	}
	d.saveExchange(context.WithoutCancel(ctx), accountID, message, reply, cached, seconds, start, end)

	return &model.ChatReply{
		Reply:           reply,
		Cached:          cached,
		SecondsConsumed: seconds,
		Status:          status,
	}, nil
}

// saveExchange stores both turns. The exchange is already metered, so a
// failed write is logged and the reply still returned.
func (d *Domain) saveExchange(ctx context.Context, accountID uuid.UUID, message, reply string, cached bool, seconds int64, start, end time.Time) {
	if d.messages == nil {
		return
	}
	err := d.messages.CreateBatch(ctx, []*model.Message{
		{ID: uuid.New(), AccountID: accountID, Role: model.RoleUser, Content: message, CreatedAt: start},
		{ID: uuid.New(), AccountID: accountID, Role: model.RoleAssistant, Content: reply, Cached: cached, DurationSeconds: seconds, CreatedAt: end},
	})
	if err != nil {
		d.logger.Error("failed to save chat history",
			zap.String("account_id", accountID.String()),
			zap.Error(err),
		)
	}
}

// History returns one page of the account's messages, newest first,
// grouped by calendar day in the business timezone.
func (d *Domain) History(ctx context.Context, accountID uuid.UUID, q model.PageQuery) (*model.ChatHistory, error) {
	q = q.Normalized()
	messages, total, err := d.messages.ListByAccount(ctx, accountID, q.PageSize, q.Offset())
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	page := model.NewPage(messages, total, q)
	history := &model.ChatHistory{
		Days:          []model.HistoryDay{},
		TotalMessages: page.Total,
		Page:          page.Page,
		PageSize:      page.PageSize,
		TotalPages:    page.TotalPages,
	}
	loc := d.clock.Location()
	for _, m := range page.Data {
		day := model.DayOf(m.CreatedAt.In(loc))
		if n := len(history.Days); n == 0 || history.Days[n-1].Day != day {
			history.Days = append(history.Days, model.HistoryDay{Day: day})
		}
		last := &history.Days[len(history.Days)-1]
		last.Messages = append(last.Messages, m)
	}
	return history, nil
}

// DeleteMessage removes one of the account's messages. Messages of other
// accounts are reported as not found.
func (d *Domain) DeleteMessage(ctx context.Context, accountID, messageID uuid.UUID) error {
	deleted, err := d.messages.Delete(ctx, accountID, messageID)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if !deleted {
		return ErrMessageNotFound
	}
	return nil
}

// ClearHistory removes every message of the account. Metered usage is
// unaffected.
func (d *Domain) ClearHistory(ctx context.Context, accountID uuid.UUID) (int64, error) {
	n, err := d.messages.DeleteByAccount(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	d.logger.Info("chat history cleared",
		zap.String("account_id", accountID.String()),
		zap.Int64("deleted", n),
	)
	return n, nil
}

func (d *Domain) prompt(message string) string {
	if d.cfg.SystemPrompt == "" {
		return message
	}
	return d.cfg.SystemPrompt + "\n\n" + message
}

func (d *Domain) recordHit() {
	if d.recorder != nil {
		d.recorder.RecordCacheHit(cacheName)
	}
}

func (d *Domain) recordMiss() {
	if d.recorder != nil {
		d.recorder.RecordCacheMiss(cacheName)
	}
}

// cacheKey normalizes case and whitespace so trivially different
// messages share a reply.
func cacheKey(message string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(message), " "))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
