package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatsync/internal/dispatch"
	"chatsync/internal/domain"
	"chatsync/internal/events"
	"chatsync/internal/state"
	"chatsync/pkg/logger"
)

// QueryHandler exposes the snapshot read surface and the update ingest
// endpoint.
type QueryHandler struct {
	dispatcher *dispatch.Dispatcher
	log        *logger.Logger
}

func NewQueryHandler(dispatcher *dispatch.Dispatcher, log *logger.Logger) *QueryHandler {
	return &QueryHandler{dispatcher: dispatcher, log: log}
}

type threadView struct {
	Info         *domain.ThreadInfo `json:"info,omitempty"`
	ReadState    *domain.ReadState  `json:"read_state,omitempty"`
	ListedIDs    []int64            `json:"listed_ids,omitempty"`
	PinnedIDs    []int64            `json:"pinned_ids,omitempty"`
	ScheduledIDs []int64            `json:"scheduled_ids,omitempty"`
}

type chatView struct {
	Chat          *domain.Chat `json:"chat"`
	LastMessageID int64        `json:"last_message_id,omitempty"`
}

type classificationView struct {
	ThreadID      domain.ThreadID `json:"thread_id"`
	SavedDialogID string          `json:"saved_dialog_id,omitempty"`
}

type effectView struct {
	Effect string          `json:"effect"`
	Data   dispatch.Effect `json:"data"`
}

// Ingest accepts one enveloped update, applies it, and reports the side
// effects the application produced.
func (h *QueryHandler) Ingest(c *gin.Context) {
	var env events.Envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(err.Error(), "MALFORMED_PAYLOAD"))
		return
	}

	u, err := events.Decode(&env)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(err.Error(), errorCode(err)))
		return
	}

	effects := h.dispatcher.Apply(u)
	views := make([]effectView, 0, len(effects))
	for _, effect := range effects {
		views = append(views, effectView{Effect: effect.EffectName(), Data: effect})
	}
	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{"effects": views}))
}

func (h *QueryHandler) GetChat(c *gin.Context) {
	s := h.dispatcher.Store().Current()
	chatID := c.Param("chat_id")

	chat := state.SelectChat(s, chatID)
	if chat == nil {
		c.JSON(http.StatusNotFound, NewErrorResponse("chat not found", "NOT_FOUND"))
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(chatView{
		Chat:          chat,
		LastMessageID: state.SelectChatLastMessageID(s, chatID),
	}))
}

func (h *QueryHandler) GetThread(c *gin.Context) {
	s := h.dispatcher.Store().Current()
	chatID := c.Param("chat_id")
	threadID := domain.ThreadID(c.Param("thread_id"))

	thread := state.SelectThread(s, chatID, threadID)
	if thread == nil {
		c.JSON(http.StatusNotFound, NewErrorResponse("thread not found", "NOT_FOUND"))
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(threadView{
		Info:         thread.Info,
		ReadState:    state.SelectThreadReadState(s, chatID, threadID),
		ListedIDs:    state.SelectListedIDs(s, chatID, threadID),
		PinnedIDs:    state.SelectPinnedIDs(s, chatID, threadID),
		ScheduledIDs: state.SelectScheduledIDs(s, chatID, threadID),
	}))
}

// GetThreadMessages returns the thread's messages in listed order.
func (h *QueryHandler) GetThreadMessages(c *gin.Context) {
	s := h.dispatcher.Store().Current()
	chatID := c.Param("chat_id")
	threadID := domain.ThreadID(c.Param("thread_id"))

	if state.SelectThread(s, chatID, threadID) == nil {
		c.JSON(http.StatusNotFound, NewErrorResponse("thread not found", "NOT_FOUND"))
		return
	}

	ids := state.SelectListedIDs(s, chatID, threadID)
	messages := make([]*domain.Message, 0, len(ids))
	for _, id := range ids {
		if msg := state.SelectChatMessage(s, chatID, id); msg != nil {
			messages = append(messages, msg)
		}
	}
	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{"messages": messages}))
}

func (h *QueryHandler) GetTopics(c *gin.Context) {
	s := h.dispatcher.Store().Current()
	chatID := c.Param("chat_id")

	info := state.SelectTopicsInfo(s, chatID)
	if info == nil {
		c.JSON(http.StatusNotFound, NewErrorResponse("no topics for chat", "NOT_FOUND"))
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(info))
}

// ClassifyMessage reports which thread a known message belongs to and,
// when applicable, its saved-dialog id.
func (h *QueryHandler) ClassifyMessage(c *gin.Context) {
	s := h.dispatcher.Store().Current()
	chatID := c.Param("chat_id")

	id, err := strconv.ParseInt(c.Param("message_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("bad message id", "INVALID_INPUT"))
		return
	}
	msg := state.SelectChatMessage(s, chatID, id)
	if msg == nil {
		c.JSON(http.StatusNotFound, NewErrorResponse("message not found", "NOT_FOUND"))
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(classificationView{
		ThreadID:      state.SelectThreadIDFromMessage(s, msg),
		SavedDialogID: state.SelectSavedDialogIDFromMessage(s, msg),
	}))
}
