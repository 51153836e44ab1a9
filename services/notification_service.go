package services

import (
	"context"
	"log"
	"sync"
	"time"

	"academiaQuestAPI/internal/notification"
	"academiaQuestAPI/internal/persistence"
)

type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]string) error
}

// NotificationService owns the in-app notification feed and pushes a
// copy of each notification to the user's registered devices through a
// small worker pool. Push delivery is best effort; the feed entry in
// state is the record of truth.
type NotificationService struct {
	state        *StateStore
	pushProvider PushProvider

	mu      sync.RWMutex
	devices map[string][]notification.DeviceToken

	workers  int
	jobQueue chan *notification.Notification
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewNotificationService(state *StateStore) *NotificationService {
	s := &NotificationService{
		state:    state,
		devices:  make(map[string][]notification.DeviceToken),
		workers:  3,
		jobQueue: make(chan *notification.Notification, 100),
		stopChan: make(chan struct{}),
	}
	s.startWorkers()
	return s
}

// Allow injecting the real FCM provider from main.go
func (s *NotificationService) SetPushProvider(provider PushProvider) {
	s.pushProvider = provider
}

func (s *NotificationService) startWorkers() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

func (s *NotificationService) worker() {
	defer s.wg.Done()
	for {
		select {
		case n := <-s.jobQueue:
			s.processJob(n)
		case <-s.stopChan:
			return
		}
	}
}

func (s *NotificationService) processJob(n *notification.Notification) {
	if s.pushProvider == nil {
		return
	}

	s.mu.RLock()
	tokens := s.devices[n.UserID]
	s.mu.RUnlock()
	if len(tokens) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	data := map[string]string{
		"notification_id": n.ID,
		"type":            string(n.Type),
	}
	if err := s.pushProvider.SendPush(ctx, tokens, n.Title, n.Message, data); err != nil {
		log.Printf("Push failed for user %s: %v", n.UserID, err)
	}
}

// Dispatch queues notifications for push delivery. Never blocks the
// caller for long; a full queue drops the push, not the feed entry.
func (s *NotificationService) Dispatch(notifs ...*notification.Notification) {
	for _, n := range notifs {
		select {
		case s.jobQueue <- n:
		case <-time.After(2 * time.Second):
			log.Printf("Failed to queue notification %s: queue full", n.ID)
		}
	}
}

// RegisterDevice stores a push token for the user, replacing a previous
// registration of the same token.
func (s *NotificationService) RegisterDevice(userID string, req *notification.RegisterDeviceRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens := s.devices[userID]
	for i, t := range tokens {
		if t.Token == req.Token {
			tokens[i].Platform = req.Platform
			return
		}
	}
	s.devices[userID] = append(tokens, notification.DeviceToken{
		Token:    req.Token,
		Platform: req.Platform,
	})
}

// GetNotifications returns the user's feed, newest first.
func (s *NotificationService) GetNotifications(userID string) *notification.ListResponse {
	resp := &notification.ListResponse{Notifications: []*notification.Notification{}}

	s.state.View(func(st *AppState) {
		for i := len(st.Notifications) - 1; i >= 0; i-- {
			n := st.Notifications[i]
			if n.UserID != userID {
				continue
			}
			copied := *n
			resp.Notifications = append(resp.Notifications, &copied)
			if !n.Read {
				resp.UnreadCount++
			}
		}
	})
	return resp
}

// UnreadCount returns how many of the user's notifications are unread.
func (s *NotificationService) UnreadCount(userID string) int {
	count := 0
	s.state.View(func(st *AppState) {
		for _, n := range st.Notifications {
			if n.UserID == userID && !n.Read {
				count++
			}
		}
	})
	return count
}

// MarkAsRead marks one notification read. Only the owner can do it.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID string) error {
	err := s.state.Update(func(st *AppState) error {
		for _, n := range st.Notifications {
			if n.ID == notificationID && n.UserID == userID {
				n.Read = true
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return err
	}

	s.state.Commit(ctx, persistence.KindNotifications)
	return nil
}

// MarkAllAsRead marks the user's whole feed read.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	err := s.state.Update(func(st *AppState) error {
		for _, n := range st.Notifications {
			if n.UserID == userID {
				n.Read = true
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.state.Commit(ctx, persistence.KindNotifications)
	return nil
}

// Stop shuts the worker pool down and waits for in-flight pushes.
func (s *NotificationService) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
