package routes

import (
	"log"

	"github.com/kataras/iris/v12"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"property-pulse-server/models"
	"property-pulse-server/storage"
	"property-pulse-server/utils"
)

type MessageHandler struct {
	Messages *storage.MessageStore
}

// SendMessage records a contact-seller inquiry addressed to a listing's
// owner.
func (h *MessageHandler) SendMessage(ctx iris.Context) {
	caller, ok := callerID(ctx)
	if !ok {
		return
	}

	var input SendMessageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	propertyID, err := primitive.ObjectIDFromHex(input.Property)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid property ID", ctx)
		return
	}
	recipientID, err := primitive.ObjectIDFromHex(input.Recipient)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid recipient ID", ctx)
		return
	}

	message := models.Message{
		Property:  propertyID,
		Sender:    caller,
		Recipient: recipientID,
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Body:      input.Message,
	}
	if err := h.Messages.Insert(ctx.Request().Context(), &message); err != nil {
		log.Printf("message insert failed: %v", err)
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"success": false, "message": "Failed to send message"})
		return
	}

	ctx.JSON(iris.Map{"success": true, "message": "Message sent successfully"})
}

// ListMessages returns the caller's inbox.
func (h *MessageHandler) ListMessages(ctx iris.Context) {
	caller, ok := callerID(ctx)
	if !ok {
		return
	}

	messages, err := h.Messages.ListForRecipient(ctx.Request().Context(), caller)
	if err != nil {
		log.Printf("messages fetch failed: %v", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "messages": messages})
}

// MarkMessageRead flips the read flag on one of the caller's messages.
func (h *MessageHandler) MarkMessageRead(ctx iris.Context) {
	caller, ok := callerID(ctx)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(ctx.Params().Get("id"))
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid message ID", ctx)
		return
	}

	var input MarkReadInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	err = h.Messages.MarkRead(ctx.Request().Context(), id, caller, input.Read)
	if err == storage.ErrNotFound {
		utils.CreateNotFound(ctx)
		return
	}
	if err != nil {
		log.Printf("message %s update failed: %v", id.Hex(), err)
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true})
}

type SendMessageInput struct {
	Property  string `json:"property" validate:"required"`
	Recipient string `json:"recipient" validate:"required"`
	Name      string `json:"name" validate:"required,max=256"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"max=32"`
	Message   string `json:"message" validate:"required"`
}

type MarkReadInput struct {
	Read bool `json:"read"`
}
