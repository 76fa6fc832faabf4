package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/solacelabs/solace-backend/internal/model/chat"
)

// ErrConversationNotFound covers both a missing conversation and one owned
// by a different user; callers must not be able to distinguish the two.
var ErrConversationNotFound = errors.New("conversation not found or access denied")

// Conversations is the data-access layer for conversations and messages.
type Conversations struct {
	db *gorm.DB
}

func NewConversations(db *gorm.DB) *Conversations {
	return &Conversations{db: db}
}

// Create provisions a conversation owned by userID with the given title.
func (s *Conversations) Create(ctx context.Context, userID uuid.UUID, title string) (*chat.Conversation, error) {
	conversation := chat.Conversation{
		UserID: userID,
		Title:  title,
	}
	if err := s.db.WithContext(ctx).Create(&conversation).Error; err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return &conversation, nil
}

// GetOwned resolves a conversation by ID, enforcing ownership.
func (s *Conversations) GetOwned(ctx context.Context, id, userID uuid.UUID) (*chat.Conversation, error) {
	var conversation chat.Conversation
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&conversation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	return &conversation, nil
}

// ListForUser returns the user's conversations, most recently updated first.
func (s *Conversations) ListForUser(ctx context.Context, userID uuid.UUID, skip, limit int) ([]chat.Conversation, error) {
	var conversations []chat.Conversation
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&conversations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return conversations, nil
}

// Delete removes an owned conversation together with its messages.
func (s *Conversations) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&chat.Conversation{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete conversation: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrConversationNotFound
		}
		if err := tx.Where("conversation_id = ?", id).Delete(&chat.Message{}).Error; err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		return nil
	})
}

// AppendMessage adds a message to a conversation and bumps its updated_at
// so listing by recency reflects activity. Messages are never edited.
func (s *Conversations) AppendMessage(ctx context.Context, conversationID, userID uuid.UUID, content string, isFromUser bool) (*chat.Message, error) {
	message := chat.Message{
		UserID:         userID,
		ConversationID: conversationID,
		Content:        content,
		IsFromUser:     isFromUser,
	}
	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	if err := s.db.WithContext(ctx).
		Model(&chat.Conversation{}).
		Where("id = ?", conversationID).
		UpdateColumn("updated_at", time.Now().UTC()).Error; err != nil {
		return nil, fmt.Errorf("failed to touch conversation: %w", err)
	}

	return &message, nil
}

// RecentMessages returns the newest limit messages of a conversation in
// chronological order, for use as completion context.
func (s *Conversations) RecentMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]chat.Message, error) {
	var messages []chat.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent messages: %w", err)
	}

	// Reverse into oldest-first order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// ListMessages returns a page of an owned conversation's messages,
// oldest first.
func (s *Conversations) ListMessages(ctx context.Context, conversationID, userID uuid.UUID, skip, limit int) ([]chat.Message, error) {
	if _, err := s.GetOwned(ctx, conversationID, userID); err != nil {
		return nil, err
	}

	var messages []chat.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Offset(skip).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// GetMessage resolves a single owned message by ID.
func (s *Conversations) GetMessage(ctx context.Context, messageID, userID uuid.UUID) (*chat.Message, error) {
	var message chat.Message
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", messageID, userID).
		First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load message: %w", err)
	}
	return &message, nil
}

// CountUserMessages counts from-user messages in a conversation. The turn
// orchestrator uses this to decide whether to trigger title generation.
func (s *Conversations) CountUserMessages(ctx context.Context, conversationID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&chat.Message{}).
		Where("conversation_id = ? AND is_from_user = ?", conversationID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count user messages: %w", err)
	}
	return count, nil
}

// UpdateTitle sets the conversation title in a single-column update.
// Concurrent writers resolve last-writer-wins.
func (s *Conversations) UpdateTitle(ctx context.Context, conversationID uuid.UUID, title string) error {
	err := s.db.WithContext(ctx).
		Model(&chat.Conversation{}).
		Where("id = ?", conversationID).
		Update("title", title).Error
	if err != nil {
		return fmt.Errorf("failed to update title: %w", err)
	}
	return nil
}

// CountMessagesSince counts all of a user's messages created after cutoff,
// used as the engagement factor in insights.
func (s *Conversations) CountMessagesSince(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&chat.Message{}).
		Where("user_id = ? AND created_at >= ?", userID, cutoff).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// CountConversations counts all conversations owned by the user.
func (s *Conversations) CountConversations(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&chat.Conversation{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count conversations: %w", err)
	}
	return count, nil
}
