package service

import (
	"strings"
	"sync"
	"time"
)

const (
	chatGreeting = "Привет! Я Дмитрий, твой цифровой наставник. Чем могу помочь?"
	chatReply    = "Я пока учусь, но скоро смогу отвечать на вопросы по регламентам."

	DefaultChatReplyDelay = time.Second
)

type ChatMessage struct {
	ID    int64     `json:"id"`
	Text  string    `json:"text"`
	IsBot bool      `json:"is_bot"`
	At    time.Time `json:"at"`
}

type ChatService struct {
	delay time.Duration
}

func NewChatService(delay time.Duration) *ChatService {
	if delay <= 0 {
		delay = DefaultChatReplyDelay
	}
	return &ChatService{delay: delay}
}

// Open starts a conversation with the greeting already in its history.
// onReply receives every bot reply as it is produced.
func (s *ChatService) Open(onReply func(ChatMessage)) *Conversation {
	c := &Conversation{
		delay:   s.delay,
		onReply: onReply,
		timers:  make(map[int64]*time.Timer),
	}
	c.append(chatGreeting, true)
	return c
}

type Conversation struct {
	mu       sync.Mutex
	messages []ChatMessage
	seq      int64
	delay    time.Duration
	onReply  func(ChatMessage)
	timers   map[int64]*time.Timer
	closed   bool
}

func (c *Conversation) append(text string, bot bool) ChatMessage {
	c.seq++
	m := ChatMessage{ID: c.seq, Text: text, IsBot: bot, At: time.Now()}
	c.messages = append(c.messages, m)
	return m
}

// Post records a user message and schedules the placeholder reply. Blank
// messages are ignored.
func (c *Conversation) Post(text string) (ChatMessage, bool) {
	if strings.TrimSpace(text) == "" {
		return ChatMessage{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ChatMessage{}, false
	}

	m := c.append(text, false)
	id := m.ID
	c.timers[id] = time.AfterFunc(c.delay, func() {
		c.mu.Lock()
		delete(c.timers, id)
		if c.closed {
			c.mu.Unlock()
			return
		}
		reply := c.append(chatReply, true)
		c.mu.Unlock()

		if c.onReply != nil {
			c.onReply(reply)
		}
	})
	return m, true
}

func (c *Conversation) History() []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ChatMessage{}, c.messages...)
}

// Close cancels pending replies.
func (c *Conversation) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
}
