// Copyright 2024-2026 Aiku AI

package bridge

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
)

// SlackConn owns the Slack RTM connection and Web API client. Besides
// sending, it serves as the SlackDirectory: the channel and user tables are
// filled when the RTM connection comes up and refreshed lazily on misses.
// The cache is shared between the RTM goroutine and the bridge loop, hence
// the mutex.
type SlackConn struct {
	api *slack.Client
	rtm *slack.RTM
	log zerolog.Logger

	mu            sync.RWMutex
	selfID        string
	channelNames  map[string]string
	channelByName map[string]SlackChannel
	userNames     map[string]string
	memberCache   map[string][]string
}

var (
	_ SlackSender    = (*SlackConn)(nil)
	_ SlackDirectory = (*SlackConn)(nil)
)

// NewSlackConn builds the Slack client from a bot token. It does not
// connect; call Start.
func NewSlackConn(token string, log zerolog.Logger) *SlackConn {
	api := slack.New(token)
	return &SlackConn{
		api:           api,
		rtm:           api.NewRTM(),
		log:           log.With().Str("component", "slack_client").Logger(),
		channelNames:  make(map[string]string),
		channelByName: make(map[string]SlackChannel),
		userNames:     make(map[string]string),
		memberCache:   make(map[string][]string),
	}
}

// Start runs the RTM connection in the background, translating its events
// into bridge events until the context is cancelled.
func (s *SlackConn) Start(ctx context.Context, dispatch func(any)) {
	go s.rtm.ManageConnection()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = s.rtm.Disconnect()
				return
			case msg, ok := <-s.rtm.IncomingEvents:
				if !ok {
					dispatch(SlackError{Message: "rtm event stream closed"})
					return
				}
				s.handleRTMEvent(msg, dispatch)
			}
		}
	}()
}

func (s *SlackConn) handleRTMEvent(msg slack.RTMEvent, dispatch func(any)) {
	switch ev := msg.Data.(type) {
	case *slack.ConnectedEvent:
		s.mu.Lock()
		s.selfID = ev.Info.User.ID
		s.mu.Unlock()
		s.log.Info().Str("self_id", ev.Info.User.ID).Msg("Connected to Slack")
		s.loadDirectory()
	case *slack.MessageEvent:
		files := make([]SlackFile, 0, len(ev.Files))
		for _, f := range ev.Files {
			files = append(files, SlackFile{Title: f.Title, Permalink: f.Permalink})
		}
		dispatch(SlackMessage{
			ChannelID: ev.Channel,
			UserID:    ev.User,
			Username:  ev.Username,
			Text:      ev.Text,
			SubType:   ev.SubType,
			Files:     files,
		})
	case *slack.RTMError:
		dispatch(SlackError{Message: ev.Error()})
	case *slack.ConnectionErrorEvent:
		dispatch(SlackError{Message: ev.Error()})
	case *slack.InvalidAuthEvent:
		dispatch(SlackError{Message: "invalid slack credentials"})
	}
}

// loadDirectory fills the channel and user tables from the Web API.
func (s *SlackConn) loadDirectory() {
	params := &slack.GetConversationsParameters{
		Types:           []string{"public_channel", "private_channel"},
		ExcludeArchived: true,
		Limit:           1000,
	}
	count := 0
	for {
		channels, cursor, err := s.api.GetConversations(params)
		if err != nil {
			s.log.Error().Err(err).Msg("Failed to list Slack channels")
			break
		}
		for _, ch := range channels {
			s.storeChannel(ch)
			count++
		}
		if cursor == "" {
			break
		}
		params.Cursor = cursor
	}

	users, err := s.api.GetUsers()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list Slack users")
	}
	s.mu.Lock()
	for _, u := range users {
		s.userNames[u.ID] = u.Name
	}
	s.mu.Unlock()

	s.log.Info().Int("channels", count).Int("users", len(users)).Msg("Slack directory loaded")
}

func (s *SlackConn) storeChannel(ch slack.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channelNames[ch.ID] = ch.Name
	s.channelByName[ch.Name] = SlackChannel{ID: ch.ID, Name: ch.Name, IsMember: ch.IsMember}
}

// ChannelName implements slackfmt.Directory, falling back to the API on a
// cache miss.
func (s *SlackConn) ChannelName(id string) (string, bool) {
	s.mu.RLock()
	name, ok := s.channelNames[id]
	s.mu.RUnlock()
	if ok {
		return name, true
	}
	ch, err := s.api.GetConversationInfo(&slack.GetConversationInfoInput{ChannelID: id})
	if err != nil {
		return "", false
	}
	s.storeChannel(*ch)
	return ch.Name, true
}

// UserName implements slackfmt.Directory, falling back to the API on a
// cache miss.
func (s *SlackConn) UserName(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	s.mu.RLock()
	name, ok := s.userNames[id]
	s.mu.RUnlock()
	if ok {
		return name, true
	}
	user, err := s.api.GetUserInfo(id)
	if err != nil {
		return "", false
	}
	s.mu.Lock()
	s.userNames[id] = user.Name
	s.mu.Unlock()
	return user.Name, true
}

// ChannelByName implements SlackDirectory.
func (s *SlackConn) ChannelByName(name string) (SlackChannel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.channelByName[name]
	return ch, ok
}

// ChannelMembers implements SlackDirectory. Membership is cached after the
// first lookup; stale entries only affect mention highlighting.
func (s *SlackConn) ChannelMembers(id string) []string {
	s.mu.RLock()
	cached, ok := s.memberCache[id]
	s.mu.RUnlock()
	if ok {
		return cached
	}
	ids, _, err := s.api.GetUsersInConversation(&slack.GetUsersInConversationParameters{
		ChannelID: id,
		Limit:     1000,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("channel_id", id).Msg("Failed to list channel members")
		return nil
	}
	names := make([]string, 0, len(ids))
	for _, uid := range ids {
		if name, ok := s.UserName(uid); ok {
			names = append(names, name)
		}
	}
	s.mu.Lock()
	s.memberCache[id] = names
	s.mu.Unlock()
	return names
}

// SelfID implements SlackDirectory.
func (s *SlackConn) SelfID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selfID
}

// PostMessage implements SlackSender.
func (s *SlackConn) PostMessage(channelID, text string, opts PostOptions) error {
	msgOpts := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if opts.Username != "" {
		msgOpts = append(msgOpts, slack.MsgOptionUsername(opts.Username))
	}
	if opts.IconURL != "" {
		msgOpts = append(msgOpts, slack.MsgOptionIconURL(opts.IconURL))
	}
	if opts.ParseFull {
		msgOpts = append(msgOpts, slack.MsgOptionPostMessageParameters(slack.PostMessageParameters{
			Parse:     "full",
			LinkNames: 1,
		}))
	}
	_, _, err := s.api.PostMessage(channelID, msgOpts...)
	return err
}
