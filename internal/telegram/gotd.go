package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gotd/td/telegram/query/dialogs"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/promptgram/promptgram/internal/domain"
)

const topicListLimit = 100

// Service implements Client over an established Handle. All MTProto calls
// go through a shared rate limiter.
type Service struct {
	handle  *Handle
	api     *tg.Client
	limiter *rate.Limiter
	logger  *zap.Logger

	mu    sync.Mutex
	peers map[int64]tg.InputPeerClass
}

func NewService(h *Handle, logger *zap.Logger) *Service {
	return &Service{
		handle:  h,
		api:     h.API(),
		limiter: rate.NewLimiter(rate.Every(time.Second/10), 10),
		logger:  logger.Named("service"),
		peers:   make(map[int64]tg.InputPeerClass),
	}
}

// Self returns the logged-in user.
func (s *Service) Self(ctx context.Context) (*domain.Sender, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	me, err := s.handle.client.Self(ctx)
	if err != nil {
		return nil, fmt.Errorf("get self: %w", err)
	}
	return &domain.Sender{
		ID:        me.ID,
		FirstName: me.FirstName,
		LastName:  me.LastName,
		Username:  me.Username,
	}, nil
}

// ListChats fetches the dialog list as one bounded snapshot. Forum
// channels get their topics fetched eagerly, best-effort.
func (s *Service) ListChats(ctx context.Context) ([]domain.Chat, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	iter := dialogs.NewQueryBuilder(s.api).GetDialogs().BatchSize(100).Iter()

	var result []domain.Chat
	for iter.Next(ctx) {
		elem := iter.Value()
		chat, ok := s.chatFromElem(elem)
		if !ok {
			continue
		}
		s.cachePeer(chat.ID, elem.Peer)
		if chat.IsForum {
			chat.Topics = s.ListTopics(ctx, chat)
		}
		result = append(result, chat)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("iterate dialogs: %w", err)
	}

	return result, nil
}

// ListTopics fetches a forum channel's topics. Any failure degrades to an
// empty slice so a broken forum never breaks the chat list.
func (s *Service) ListTopics(ctx context.Context, chat domain.Chat) []domain.Topic {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil
	}

	res, err := s.api.MessagesGetForumTopics(ctx, &tg.MessagesGetForumTopicsRequest{
		Peer:  &tg.InputPeerChannel{ChannelID: chat.ID, AccessHash: chat.AccessHash},
		Limit: topicListLimit,
	})
	if err != nil {
		s.logger.Warn("list topics", zap.Int64("chat", chat.ID), zap.Error(err))
		return nil
	}

	return convertTopics(res)
}

// convertTopics unpacks a messages.getForumTopics result, skipping
// deleted-topic placeholders.
func convertTopics(res *tg.MessagesForumTopics) []domain.Topic {
	topics := make([]domain.Topic, 0, len(res.Topics))
	for _, t := range res.Topics {
		ft, ok := t.(*tg.ForumTopic)
		if !ok {
			continue
		}
		topics = append(topics, domain.Topic{
			ID:         ft.ID,
			Title:      ft.Title,
			IconColor:  ft.IconColor,
			TopMessage: ft.TopMessage,
			Pinned:     ft.Pinned,
			Closed:     ft.Closed,
			Hidden:     ft.Hidden,
		})
	}
	return topics
}

// FetchPage retrieves up to req.Limit messages, oldest first. With
// BeforeID set only strictly older messages are returned; with TopicID
// set the forum thread's history is read instead of the main one.
func (s *Service) FetchPage(ctx context.Context, req PageRequest) (domain.Page, error) {
	peer := s.findPeer(req.Chat)
	if peer == nil {
		return domain.Page{}, fmt.Errorf("unknown peer: %d", req.Chat.ID)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return domain.Page{}, err
	}

	var (
		res tg.MessagesMessagesClass
		err error
	)
	if req.TopicID != 0 {
		res, err = s.api.MessagesGetReplies(ctx, &tg.MessagesGetRepliesRequest{
			Peer:     peer,
			MsgID:    req.TopicID,
			OffsetID: req.BeforeID,
			Limit:    req.Limit,
		})
	} else {
		res, err = s.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
			Peer:     peer,
			OffsetID: req.BeforeID,
			Limit:    req.Limit,
		})
	}
	if err != nil {
		// A private or inaccessible channel is a recoverable empty
		// result, not an error.
		if tgerr.Is(err, "CHANNEL_PRIVATE") {
			s.logger.Debug("channel private", zap.Int64("chat", req.Chat.ID))
			return domain.Page{}, nil
		}
		return domain.Page{}, fmt.Errorf("get history: %w", err)
	}

	return convertHistory(res, req)
}

// convertHistory unpacks a history response into an oldest-first page.
// An exactly-full page sets MayHaveMore; a short one clears it.
func convertHistory(res tg.MessagesMessagesClass, req PageRequest) (domain.Page, error) {
	var (
		messages []tg.MessageClass
		users    []tg.UserClass
		count    int
	)
	switch r := res.(type) {
	case *tg.MessagesMessages:
		messages = r.Messages
		users = r.Users
	case *tg.MessagesMessagesSlice:
		messages = r.Messages
		users = r.Users
		count = r.Count
	case *tg.MessagesChannelMessages:
		messages = r.Messages
		users = r.Users
		count = r.Count
	case *tg.MessagesMessagesNotModified:
		return domain.Page{}, nil
	default:
		return domain.Page{}, fmt.Errorf("unexpected messages type: %T", res)
	}

	userMap := make(map[int64]*tg.User, len(users))
	for _, u := range users {
		if user, ok := u.(*tg.User); ok {
			userMap[user.ID] = user
		}
	}

	// The service returns newest first; reverse into display order.
	out := make([]domain.Message, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		msg, ok := messages[i].(*tg.Message)
		if !ok {
			continue
		}
		out = append(out, convertMessage(msg, userMap, req.Chat))
	}

	return domain.Page{
		Messages:    out,
		MayHaveMore: len(out) == req.Limit,
		Count:       count,
	}, nil
}

func convertMessage(msg *tg.Message, users map[int64]*tg.User, chat domain.Chat) domain.Message {
	m := domain.Message{
		ID:        msg.ID,
		ChatID:    chat.ID,
		ChatTitle: chat.Title,
		Text:      msg.Message,
		Timestamp: time.Unix(int64(msg.Date), 0),
	}

	var senderID int64
	switch p := msg.FromID.(type) {
	case *tg.PeerUser:
		senderID = p.UserID
	case *tg.PeerChat:
		senderID = p.ChatID
	case *tg.PeerChannel:
		senderID = p.ChannelID
	}
	// In DMs FromID is often absent for the peer's own messages.
	if senderID == 0 && !msg.Out {
		if p, ok := msg.PeerID.(*tg.PeerUser); ok {
			senderID = p.UserID
		}
	}
	m.SenderID = senderID

	if u, ok := users[senderID]; ok {
		m.Sender = &domain.Sender{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Username:  u.Username,
		}
	}

	if len(msg.Entities) > 0 {
		m.Markdown = FormatEntities(msg.Message, msg.Entities)
	}

	return m
}

// chatFromElem classifies a dialog element into a domain chat.
func (s *Service) chatFromElem(elem dialogs.Elem) (domain.Chat, bool) {
	if elem.Dialog == nil || elem.Dialog.GetPeer() == nil {
		return domain.Chat{}, false
	}

	switch p := elem.Dialog.GetPeer().(type) {
	case *tg.PeerUser:
		u, ok := elem.Entities.User(p.UserID)
		if !ok {
			return domain.Chat{}, false
		}
		return domain.Chat{
			ID:         u.ID,
			Title:      userTitle(u),
			Username:   u.Username,
			Kind:       domain.ChatPrivate,
			AccessHash: u.AccessHash,
		}, true
	case *tg.PeerChat:
		ch, ok := elem.Entities.Chat(p.ChatID)
		if !ok {
			return domain.Chat{}, false
		}
		return domain.Chat{
			ID:    ch.ID,
			Title: ch.Title,
			Kind:  domain.ChatGroup,
		}, true
	case *tg.PeerChannel:
		ch, ok := elem.Entities.Channel(p.ChannelID)
		if !ok {
			return domain.Chat{}, false
		}
		kind := domain.ChatChannel
		if ch.Megagroup {
			kind = domain.ChatSupergroup
		}
		return domain.Chat{
			ID:         ch.ID,
			Title:      ch.Title,
			Username:   ch.Username,
			Kind:       kind,
			AccessHash: ch.AccessHash,
			IsForum:    ch.Forum,
		}, true
	}
	return domain.Chat{}, false
}

func (s *Service) cachePeer(chatID int64, peer tg.InputPeerClass) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peers[chatID] = peer
}

// findPeer resolves an input peer from the cache, falling back to the
// chat's own id and access hash.
func (s *Service) findPeer(chat domain.Chat) tg.InputPeerClass {
	s.mu.Lock()
	if p, ok := s.peers[chat.ID]; ok {
		s.mu.Unlock()
		return p
	}
	s.mu.Unlock()

	switch chat.Kind {
	case domain.ChatPrivate:
		return &tg.InputPeerUser{UserID: chat.ID, AccessHash: chat.AccessHash}
	case domain.ChatGroup:
		return &tg.InputPeerChat{ChatID: chat.ID}
	case domain.ChatSupergroup, domain.ChatChannel:
		return &tg.InputPeerChannel{ChannelID: chat.ID, AccessHash: chat.AccessHash}
	}
	return nil
}

func userTitle(u *tg.User) string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return u.Username
	default:
		return "Unknown"
	}
}
