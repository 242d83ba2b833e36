package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sublethub/sublethub-backend/internal/common"
	"github.com/sublethub/sublethub-backend/internal/domain"
	"github.com/sublethub/sublethub-backend/internal/identity"
	"github.com/sublethub/sublethub-backend/internal/mailer"
	"github.com/sublethub/sublethub-backend/internal/repository"
	"github.com/sublethub/sublethub-backend/pkg/logger"
)

// MessageService threaded messaging and contact inquiries
type MessageService interface {
	// Send sends a message about a listing. Without a parent it opens a
	// new thread to the listing owner; with one it replies within the
	// parent's thread.
	Send(ctx context.Context, senderID, listingID uint64, req *domain.SendMessageRequest) (*domain.MessageResponse, error)

	// Thread returns every message in the thread containing messageID,
	// marking it read when the viewer is its recipient.
	Thread(ctx context.Context, viewerID, messageID uint64) ([]*domain.MessageResponse, error)

	Inbox(ctx context.Context, userID uint64, page, limit int) ([]*domain.MessageResponse, *common.Meta, error)
	Sent(ctx context.Context, userID uint64, page, limit int) ([]*domain.MessageResponse, *common.Meta, error)
	UnreadCount(ctx context.Context, userID uint64) (int64, error)

	// SendInquiry records a contact-form inquiry with a reply-to email
	SendInquiry(ctx context.Context, senderID, listingID uint64, req *domain.SendInquiryRequest) (*domain.ContactMessage, error)
	Inquiries(ctx context.Context, ownerID uint64, page, limit int) ([]*domain.ContactMessage, *common.Meta, error)

	// Inquiry returns one of the owner's inquiries, marking it read on
	// first view.
	Inquiry(ctx context.Context, ownerID, inquiryID uint64) (*domain.ContactMessage, error)
}

type messageService struct {
	messageRepo repository.MessageRepository
	contactRepo repository.ContactMessageRepository
	listingRepo repository.ListingRepository
	directory   identity.Directory
	mailer      mailer.Mailer
}

// NewMessageService creates a new MessageService
func NewMessageService(
	messageRepo repository.MessageRepository,
	contactRepo repository.ContactMessageRepository,
	listingRepo repository.ListingRepository,
	directory identity.Directory,
	mailSender mailer.Mailer,
) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		contactRepo: contactRepo,
		listingRepo: listingRepo,
		directory:   directory,
		mailer:      mailSender,
	}
}

func (s *messageService) Send(ctx context.Context, senderID, listingID uint64, req *domain.SendMessageRequest) (*domain.MessageResponse, error) {
	listing, err := s.listingRepo.FindByID(listingID)
	if err != nil {
		return nil, notFoundOr(err)
	}

	msg := &domain.Message{
		ListingID: listingID,
		SenderID:  senderID,
		Subject:   req.Subject,
		Body:      req.Body,
	}

	if req.ParentID != nil {
		parent, err := s.messageRepo.FindByID(*req.ParentID)
		if err != nil {
			return nil, notFoundOr(err)
		}
		if parent.SenderID != senderID && parent.RecipientID != senderID {
			return nil, common.ErrNotOwner
		}
		// Replies always point at the thread root, never at each other.
		root := parent.ThreadRoot()
		msg.ParentID = &root
		if parent.SenderID == senderID {
			msg.RecipientID = parent.RecipientID
		} else {
			msg.RecipientID = parent.SenderID
		}
		msg.ListingID = parent.ListingID
	} else {
		msg.RecipientID = listing.OwnerID
	}

	if msg.RecipientID == senderID {
		return nil, common.ErrSelfMessage
	}

	if err := s.messageRepo.Create(msg); err != nil {
		return nil, err
	}

	go s.notifyRecipient(context.Background(), msg, listing)
	return msg.ToResponse(), nil
}

func (s *messageService) Thread(ctx context.Context, viewerID, messageID uint64) ([]*domain.MessageResponse, error) {
	msg, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if msg.SenderID != viewerID && msg.RecipientID != viewerID {
		return nil, common.ErrNotOwner
	}

	if msg.RecipientID == viewerID && !msg.IsRead {
		if _, err := s.messageRepo.MarkRead(messageID, viewerID, time.Now()); err != nil {
			logger.Get().Warn().Err(err).Uint64("message_id", messageID).Msg("mark read failed")
		}
	}

	thread, err := s.messageRepo.Thread(msg.ThreadRoot())
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.MessageResponse, 0, len(thread))
	for _, m := range thread {
		responses = append(responses, m.ToResponse())
	}
	return responses, nil
}

func (s *messageService) Inbox(ctx context.Context, userID uint64, page, limit int) ([]*domain.MessageResponse, *common.Meta, error) {
	page, limit = normalizePage(page, limit)
	messages, total, err := s.messageRepo.Inbox(userID, page, limit)
	if err != nil {
		return nil, nil, err
	}
	return toMessageResponses(messages), &common.Meta{Page: page, Limit: limit, Total: total}, nil
}

func (s *messageService) Sent(ctx context.Context, userID uint64, page, limit int) ([]*domain.MessageResponse, *common.Meta, error) {
	page, limit = normalizePage(page, limit)
	messages, total, err := s.messageRepo.Sent(userID, page, limit)
	if err != nil {
		return nil, nil, err
	}
	return toMessageResponses(messages), &common.Meta{Page: page, Limit: limit, Total: total}, nil
}

func (s *messageService) UnreadCount(ctx context.Context, userID uint64) (int64, error) {
	return s.messageRepo.UnreadCount(userID)
}

func (s *messageService) SendInquiry(ctx context.Context, senderID, listingID uint64, req *domain.SendInquiryRequest) (*domain.ContactMessage, error) {
	listing, err := s.listingRepo.FindByID(listingID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if listing.OwnerID == senderID {
		return nil, common.ErrSelfMessage
	}

	inquiry := &domain.ContactMessage{
		ListingID:   listingID,
		SenderID:    senderID,
		SenderEmail: req.SenderEmail,
		SenderPhone: req.SenderPhone,
		Body:        req.Body,
	}
	if err := s.contactRepo.Create(inquiry); err != nil {
		return nil, err
	}

	go s.mailOwner(listing, inquiry)
	return inquiry, nil
}

func (s *messageService) Inquiries(ctx context.Context, ownerID uint64, page, limit int) ([]*domain.ContactMessage, *common.Meta, error) {
	page, limit = normalizePage(page, limit)
	inquiries, total, err := s.contactRepo.ListByOwner(ownerID, page, limit)
	if err != nil {
		return nil, nil, err
	}
	return inquiries, &common.Meta{Page: page, Limit: limit, Total: total}, nil
}

func (s *messageService) Inquiry(ctx context.Context, ownerID, inquiryID uint64) (*domain.ContactMessage, error) {
	inquiry, err := s.contactRepo.FindByID(inquiryID, ownerID)
	if err != nil {
		return nil, notFoundOr(err)
	}

	if !inquiry.IsRead {
		flipped, err := s.contactRepo.MarkRead(inquiryID, ownerID)
		if err != nil {
			logger.Get().Warn().Err(err).Uint64("inquiry_id", inquiryID).Msg("mark inquiry read failed")
		} else if flipped {
			inquiry.IsRead = true
		}
	}
	return inquiry, nil
}

// notifyRecipient sends a best-effort email notification. Delivery
// failures never surface to the sender.
func (s *messageService) notifyRecipient(ctx context.Context, msg *domain.Message, listing *domain.Listing) {
	recipient, err := s.directory.Lookup(ctx, msg.RecipientID)
	if err != nil {
		if !errors.Is(err, identity.ErrUserNotFound) {
			logger.Get().Warn().Err(err).Uint64("user_id", msg.RecipientID).Msg("recipient lookup failed")
		}
		return
	}

	subject := fmt.Sprintf("New message about %q", listing.Title)
	body := fmt.Sprintf("You have a new message about your listing %q:\n\n%s", listing.Title, msg.Body)
	if err := s.mailer.Send(recipient.Email, subject, body); err != nil {
		logger.Get().Warn().Err(err).Uint64("user_id", msg.RecipientID).Msg("notification mail failed")
	}
}

func (s *messageService) mailOwner(listing *domain.Listing, inquiry *domain.ContactMessage) {
	owner, err := s.directory.Lookup(context.Background(), listing.OwnerID)
	if err != nil {
		if !errors.Is(err, identity.ErrUserNotFound) {
			logger.Get().Warn().Err(err).Uint64("user_id", listing.OwnerID).Msg("owner lookup failed")
		}
		return
	}

	subject := fmt.Sprintf("New inquiry about %q", listing.Title)
	body := fmt.Sprintf("Someone is interested in %q.\n\nReply to: %s\nPhone: %s\n\n%s",
		listing.Title, inquiry.SenderEmail, inquiry.SenderPhone, inquiry.Body)
	if err := s.mailer.Send(owner.Email, subject, body); err != nil {
		logger.Get().Warn().Err(err).Uint64("user_id", listing.OwnerID).Msg("inquiry mail failed")
	}
}

func toMessageResponses(messages []*domain.Message) []*domain.MessageResponse {
	responses := make([]*domain.MessageResponse, 0, len(messages))
	for _, m := range messages {
		responses = append(responses, m.ToResponse())
	}
	return responses
}
