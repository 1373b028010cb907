// Package chattest is an in-memory stand-in for the chat backend, used by
// tests. It serves the same envelope API and push events as the real
// service so the client code under test cannot tell the difference.
package chattest

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID       int
	Username string
	Email    string
	Nickname string
	Avatar   string
	Bio      string
	Password []byte // bcrypt hash
}

type Channel struct {
	ID          int
	Name        string
	Description string
	IsPrivate   bool
	CreatedBy   int
	CreatedAt   time.Time
}

type Message struct {
	ID        int
	Content   string
	Image     string
	SenderID  int
	ChannelID int
	CreatedAt time.Time
}

// store keeps all backend state behind one mutex. Test-scale data; no
// database on purpose, so tests stay hermetic.
type store struct {
	mu sync.Mutex

	users    map[int]*User
	byName   map[string]int
	byEmail  map[string]int
	channels map[int]*Channel
	members  map[int]map[int]bool // channelID -> userID set
	messages map[int][]*Message   // channelID -> ordered messages
	codes    map[string]string    // email -> last verification code

	nextUser    int
	nextChannel int
	nextMessage int
	nextCode    int
}

func newStore() *store {
	return &store{
		users:    make(map[int]*User),
		byName:   make(map[string]int),
		byEmail:  make(map[string]int),
		channels: make(map[int]*Channel),
		members:  make(map[int]map[int]bool),
		messages: make(map[int][]*Message),
		codes:    make(map[string]string),
	}
}

func (s *store) createUser(username, email, password string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[username]; ok {
		return nil, fmt.Errorf("username taken")
	}
	if _, ok := s.byEmail[email]; email != "" && ok {
		return nil, fmt.Errorf("email taken")
	}
	// MinCost keeps test runs fast; the fake is not a password vault.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	s.nextUser++
	u := &User{
		ID:       s.nextUser,
		Username: username,
		Email:    email,
		Nickname: username,
		Password: hash,
	}
	s.users[u.ID] = u
	s.byName[username] = u.ID
	if email != "" {
		s.byEmail[email] = u.ID
	}
	return u, nil
}

func (s *store) authenticate(username, password string) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byName[username]
	if !ok {
		return nil
	}
	u := s.users[id]
	if bcrypt.CompareHashAndPassword(u.Password, []byte(password)) != nil {
		return nil
	}
	return u
}

func (s *store) user(id int) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

func (s *store) emailRegistered(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byEmail[email]
	return ok
}

func (s *store) issueCode(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCode++
	code := fmt.Sprintf("%06d", s.nextCode)
	s.codes[email] = code
	return code
}

func (s *store) checkCode(email, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return code != "" && s.codes[email] == code
}

func (s *store) updateProfile(id int, nickname, avatar, bio string) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	if u == nil {
		return nil
	}
	u.Nickname = nickname
	u.Avatar = avatar
	u.Bio = bio
	return u
}

func (s *store) setAvatar(id int, ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.users[id]; u != nil {
		u.Avatar = ref
	}
}

func (s *store) createChannel(name, description string, isPrivate bool, creator int) *Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextChannel++
	ch := &Channel{
		ID:          s.nextChannel,
		Name:        name,
		Description: description,
		IsPrivate:   isPrivate,
		CreatedBy:   creator,
		CreatedAt:   time.Now().UTC(),
	}
	s.channels[ch.ID] = ch
	s.members[ch.ID] = map[int]bool{creator: true}
	return ch
}

func (s *store) channel(id int) *Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channels[id]
}

func (s *store) isMember(channelID, userID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.members[channelID][userID]
}

func (s *store) join(channelID, userID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.members[channelID] == nil {
		s.members[channelID] = make(map[int]bool)
	}
	if s.members[channelID][userID] {
		return false
	}
	s.members[channelID][userID] = true
	return true
}

func (s *store) leave(channelID, userID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.members[channelID][userID] {
		return false
	}
	delete(s.members[channelID], userID)
	return true
}

func (s *store) memberCount(channelID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.members[channelID])
}

func (s *store) publicChannels() []*Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedChannels(func(ch *Channel) bool { return !ch.IsPrivate })
}

func (s *store) joinedChannels(userID int) []*Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedChannels(func(ch *Channel) bool { return s.members[ch.ID][userID] })
}

func (s *store) searchChannels(keyword string) []*Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	kw := strings.ToLower(keyword)
	return s.sortedChannels(func(ch *Channel) bool {
		return !ch.IsPrivate && strings.Contains(strings.ToLower(ch.Name), kw)
	})
}

// sortedChannels must be called with the lock held.
func (s *store) sortedChannels(keep func(*Channel) bool) []*Channel {
	out := make([]*Channel, 0, len(s.channels))
	for _, ch := range s.channels {
		if keep(ch) {
			out = append(out, ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *store) addMessage(channelID, senderID int, content, image string) *Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMessage++
	m := &Message{
		ID:        s.nextMessage,
		Content:   content,
		Image:     image,
		SenderID:  senderID,
		ChannelID: channelID,
		CreatedAt: time.Now().UTC(),
	}
	s.messages[channelID] = append(s.messages[channelID], m)
	return m
}

func (s *store) channelMessages(channelID int) []*Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[channelID]
	out := make([]*Message, len(msgs))
	copy(out, msgs)
	return out
}
