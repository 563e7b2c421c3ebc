package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/internal/service/buddy"
	"github.com/sandevgo/buddybot/internal/transport/http/dto"
	"github.com/sandevgo/buddybot/pkg/log"
)

// DefaultChannel is used by queries that name no channel and listed when nothing is tracked yet.
const DefaultChannel = "default"

// Pipeline is the part of the message flow the HTTP surface drives.
type Pipeline interface {
	Ingest(ctx context.Context, in buddy.Inbound) (buddy.IngestResult, error)
	Ask(ctx context.Context, channelID, question string) core.AnswerResult
}

type Handler struct {
	pipeline Pipeline
	store    core.ContextStore
	now      func() time.Time
}

func New(pipeline Pipeline, store core.ContextStore) *Handler {
	return &Handler{
		pipeline: pipeline,
		store:    store,
		now:      time.Now,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": core.BuddyVersion})
}

func (h *Handler) PostMessage(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	msg := core.Message{
		Content:   req.Content,
		Timestamp: h.now(),
		Source:    core.SourceExternal,
		ChannelID: req.ChannelID,
		UserID:    req.UserID,
		MessageID: req.MessageID,
		Metadata:  req.Metadata,
	}
	if req.Timestamp != nil {
		msg.Timestamp = *req.Timestamp
	}
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}

	res, err := h.pipeline.Ingest(ctx, buddy.Inbound{Message: msg, Mentioned: req.Mentioned})
	if err != nil {
		if errors.Is(err, core.ErrInvalidMessage) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
			return
		}
		log.FromCtx(ctx).Error().Err(err).Msg("failed to ingest message")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to ingest message"})
		return
	}

	c.JSON(http.StatusAccepted, dto.MessageResponse{
		MessageID:         msg.MessageID,
		Processed:         !res.Duplicate,
		ActionItemCreated: res.ActionItemCreated,
		Duplicate:         res.Duplicate,
		ShouldRespond:     res.ShouldRespond,
	})
}

func (h *Handler) ListChannels(c *gin.Context) {
	channels := h.store.ListChannels()
	if len(channels) == 0 {
		channels = []string{DefaultChannel}
	}
	c.JSON(http.StatusOK, dto.ChannelsResponse{Channels: channels})
}

func (h *Handler) GetContext(c *gin.Context) {
	var lookback time.Duration
	if raw := c.Query("lookback"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "lookback must be a positive duration such as 24h"})
			return
		}
		lookback = d
	}
	c.JSON(http.StatusOK, h.store.Context(c.Param("channel"), lookback))
}

func (h *Handler) ListActionItems(c *gin.Context) {
	channelID := c.Param("channel")
	c.JSON(http.StatusOK, dto.ActionItemsResponse{
		ChannelID:   channelID,
		ActionItems: h.store.UnresolvedActionItems(channelID),
	})
}

// ResolveActionItem takes the 0-based index over all retained items of the channel.
func (h *Handler) ResolveActionItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "index must be an integer"})
		return
	}

	if err := h.store.Resolve(c.Param("channel"), index); err != nil {
		if errors.Is(err, core.ErrIndexOutOfRange) || errors.Is(err, core.ErrChannelNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
			return
		}
		log.FromCtx(c.Request.Context()).Error().Err(err).Msg("failed to resolve action item")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to resolve action item"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Query(c *gin.Context) {
	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if req.ChannelID == "" {
		req.ChannelID = DefaultChannel
	}
	c.JSON(http.StatusOK, h.pipeline.Ask(c.Request.Context(), req.ChannelID, req.Question))
}
