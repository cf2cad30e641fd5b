package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	configs "github.com/ranktutor/ranktutor/configs"
	"github.com/ranktutor/ranktutor/database"
	"github.com/ranktutor/ranktutor/models"
	"github.com/ranktutor/ranktutor/services"
	"github.com/ranktutor/ranktutor/websocket"
)

func GetUserConversations(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var user models.User
	if err := database.DB.
		Preload("Conversations.Participants").
		Where("id = ?", userID).
		First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(user.Conversations)
}

func GetConversationMessages(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	conversationID := c.Params("conversationId")

	var membership int64
	database.DB.Table("conversation_participants").
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&membership)
	if membership == 0 {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "50"))
	offset := (page - 1) * pageSize

	var messages []models.Message
	if err := database.DB.
		Where("conversation_id = ?", conversationID).
		Order("created_at asc").
		Limit(pageSize).
		Offset(offset).
		Find(&messages).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch messages"})
	}

	database.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = false", conversationID, userID).
		Update("is_read", true)

	return c.JSON(messages)
}

func CreateOrGetConversation(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID1, _ := uuid.Parse(claims["user_id"].(string))

	type Request struct {
		RecipientID string `json:"recipient_id" validate:"required,uuid"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	userID2, _ := uuid.Parse(req.RecipientID)

	var conversation models.Conversation
	err := database.DB.
		Joins("JOIN conversation_participants cp1 ON cp1.conversation_id = conversations.id AND cp1.user_id = ?", userID1).
		Joins("JOIN conversation_participants cp2 ON cp2.conversation_id = conversations.id AND cp2.user_id = ?", userID2).
		First(&conversation).Error

	if err == nil {
		refreshContactsRevealed(&conversation, userID1, userID2)
		return c.JSON(conversation)
	}

	var user1, user2 models.User
	if err := database.DB.First(&user1, "id = ?", userID1).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	if err := database.DB.First(&user2, "id = ?", userID2).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Recipient not found"})
	}

	newConversation := models.Conversation{
		Participants:     []*models.User{&user1, &user2},
		ContactsRevealed: participantsShareConfirmedBooking(userID1, userID2),
	}
	if err := database.DB.Create(&newConversation).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create conversation"})
	}

	return c.Status(fiber.StatusCreated).JSON(newConversation)
}

// participantsShareConfirmedBooking reports whether the two users are linked
// by an accepted or completed booking in either direction.
func participantsShareConfirmedBooking(a, b uuid.UUID) bool {
	var count int64
	database.DB.Model(&models.Booking{}).
		Where("((student_id = ? AND tutor_id = ?) OR (student_id = ? AND tutor_id = ?)) AND status IN ?",
			a, b, b, a, []models.BookingStatus{models.BookingAccepted, models.BookingCompleted}).
		Count(&count)
	return count > 0
}

// refreshContactsRevealed flips the reveal flag once a confirmed booking
// appears. Revealed conversations never go back to masked.
func refreshContactsRevealed(conversation *models.Conversation, a, b uuid.UUID) {
	if conversation.ContactsRevealed {
		return
	}
	if participantsShareConfirmedBooking(a, b) {
		conversation.ContactsRevealed = true
		database.DB.Model(conversation).Update("contacts_revealed", true)
	}
}

// otherParticipant returns the counterpart's id in a two-party conversation.
func otherParticipant(conversationID, userID uuid.UUID) (uuid.UUID, bool) {
	var participantIDs []uuid.UUID
	database.DB.Table("conversation_participants").
		Where("conversation_id = ? AND user_id <> ?", conversationID, userID).
		Pluck("user_id", &participantIDs)
	if len(participantIDs) == 0 {
		return uuid.Nil, false
	}
	return participantIDs[0], true
}

// ServeWs authenticates the socket, then persists and broadcasts incoming
// messages. Until the two parties share a confirmed booking, contact details
// in the message body are redacted before anything is stored or sent.
func ServeWs(c *websocketcontrib.Conn) {
	type AuthMessage struct {
		Type  string `json:"type"`
		Token string `json:"token"`
	}
	var authMsg AuthMessage
	if err := c.ReadJSON(&authMsg); err != nil || authMsg.Type != "auth" {
		_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
		c.Close()
		return
	}

	claims, err := parseToken(authMsg.Token)
	if err != nil {
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
		c.Close()
		return
	}
	userID, err := uuid.Parse(claims["user_id"].(string))
	if err != nil {
		_ = c.WriteJSON(fiber.Map{"error": "Invalid user ID"})
		c.Close()
		return
	}

	client := &websocket.Client{UserID: userID, Conn: c}
	websocket.Register <- client
	defer func() {
		websocket.Unregister <- client
		c.Close()
	}()

	for {
		var msg websocket.MessagePayload
		if err := c.ReadJSON(&msg); err != nil {
			if websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseAbnormalClosure) {
				log.Printf("WebSocket closed for client %s: %v", userID, err)
			} else {
				log.Printf("WebSocket read error for client %s: %v", userID, err)
			}
			break
		}

		convID, err := uuid.Parse(msg.ConversationID)
		if err != nil {
			_ = c.WriteJSON(fiber.Map{"error": "Invalid conversation ID"})
			continue
		}

		var conversation models.Conversation
		if err := database.DB.First(&conversation, "id = ?", convID).Error; err != nil {
			_ = c.WriteJSON(fiber.Map{"error": "Conversation not found"})
			continue
		}
		var membership int64
		database.DB.Table("conversation_participants").
			Where("conversation_id = ? AND user_id = ?", convID, userID).
			Count(&membership)
		if membership == 0 {
			_ = c.WriteJSON(fiber.Map{"error": "Access denied"})
			continue
		}

		if other, ok := otherParticipant(convID, userID); ok {
			refreshContactsRevealed(&conversation, userID, other)
		}

		content := msg.Content
		wasMasked := false
		if !conversation.ContactsRevealed {
			content, wasMasked = services.MaskContacts(content)
		}

		dbMessage := models.Message{
			ConversationID: convID,
			SenderID:       userID,
			Content:        content,
			WasMasked:      wasMasked,
		}
		if err := database.DB.Create(&dbMessage).Error; err != nil {
			log.Printf("Failed to save message for client %s: %v", userID, err)
			_ = c.WriteJSON(fiber.Map{"error": "Failed to save message"})
			continue
		}
		websocket.Broadcast <- &dbMessage
	}
}

func parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(configs.Config("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
