package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/internal/service/agent"
	"github.com/sandevgo/buddybot/internal/service/buddy"
	"github.com/sandevgo/buddybot/internal/service/gate"
	"github.com/sandevgo/buddybot/internal/service/memory"
	"github.com/sandevgo/buddybot/internal/transport/http/dto"
	"github.com/sandevgo/buddybot/internal/transport/http/handler"
)

var _ = Describe("Handler", func() {
	var (
		router *gin.Engine
		store  *memory.Store
	)

	do := func(method, path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	post := func(content, messageID string) *httptest.ResponseRecorder {
		return do(http.MethodPost, "/api/v1/messages", map[string]any{
			"content":    content,
			"channel_id": "team",
			"user_id":    "u1",
			"message_id": messageID,
		})
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		store = memory.NewStore(memory.StoreConfig{})
		b := buddy.New(buddy.Config{}, store, gate.New(), agent.NewAgent(nil, nil))
		handler.SetupRoutes(router, handler.New(b, store))
	})

	It("reports health", func() {
		w := do(http.MethodGet, "/health", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"status":"ok"`))
	})

	Describe("POST /api/v1/messages", func() {
		It("accepts a message and reports the derived action item", func() {
			w := post("@bob need to fix the login bug", "m1")
			Expect(w.Code).To(Equal(http.StatusAccepted))

			var resp dto.MessageResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp).To(Equal(dto.MessageResponse{
				MessageID:         "m1",
				Processed:         true,
				ActionItemCreated: true,
				ShouldRespond:     true,
			}))
		})

		It("flags redelivered messages as duplicates", func() {
			Expect(post("lunch at noon", "m1").Code).To(Equal(http.StatusAccepted))

			var resp dto.MessageResponse
			Expect(json.Unmarshal(post("lunch at noon", "m1").Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Duplicate).To(BeTrue())
			Expect(resp.Processed).To(BeFalse())
			Expect(store.Context("team", 0).Messages).To(HaveLen(1))
		})

		It("generates a message id when none is given", func() {
			var resp dto.MessageResponse
			Expect(json.Unmarshal(post("hello team", "").Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.MessageID).NotTo(BeEmpty())
		})

		It("returns 400 when required fields are missing", func() {
			w := do(http.MethodPost, "/api/v1/messages", map[string]any{"content": "hi"})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("channels", func() {
		It("lists the default channel when nothing is tracked", func() {
			w := do(http.MethodGet, "/api/v1/channels", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(MatchJSON(`{"channels":["default"]}`))
		})

		It("returns the context snapshot", func() {
			post("hello team", "m1")
			post("please review the PR", "m2")

			w := do(http.MethodGet, "/api/v1/channels/team/context?lookback=24h", nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			var cc core.ConversationContext
			Expect(json.Unmarshal(w.Body.Bytes(), &cc)).To(Succeed())
			Expect(cc.Messages).To(HaveLen(2))
			Expect(cc.ActionItems).To(HaveLen(1))
		})

		It("rejects a malformed lookback", func() {
			w := do(http.MethodGet, "/api/v1/channels/team/context?lookback=yesterday", nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("action items", func() {
		BeforeEach(func() {
			post("please review the PR", "m1")
			post("must update the changelog", "m2")
		})

		It("lists and resolves unresolved items", func() {
			w := do(http.MethodGet, "/api/v1/channels/team/actions", nil)
			var resp dto.ActionItemsResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.ActionItems).To(HaveLen(2))

			w = do(http.MethodPost, "/api/v1/channels/team/actions/0/resolve", nil)
			Expect(w.Code).To(Equal(http.StatusNoContent))

			w = do(http.MethodGet, "/api/v1/channels/team/actions", nil)
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.ActionItems).To(HaveLen(1))
			Expect(resp.ActionItems[0].Description).To(Equal("must update the changelog"))
		})

		It("returns 404 for an index out of range", func() {
			Expect(do(http.MethodPost, "/api/v1/channels/team/actions/5/resolve", nil).Code).To(Equal(http.StatusNotFound))
			Expect(do(http.MethodPost, "/api/v1/channels/nope/actions/0/resolve", nil).Code).To(Equal(http.StatusNotFound))
		})

		It("returns 400 for a non numeric index", func() {
			Expect(do(http.MethodPost, "/api/v1/channels/team/actions/first/resolve", nil).Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /api/v1/query", func() {
		It("answers against the default channel", func() {
			w := do(http.MethodPost, "/api/v1/query", map[string]any{"question": "hello?"})
			Expect(w.Code).To(Equal(http.StatusOK))

			var res core.AnswerResult
			Expect(json.Unmarshal(w.Body.Bytes(), &res)).To(Succeed())
			Expect(res.Fallback).To(BeTrue())
			Expect(res.Confidence).To(Equal(agent.Confidence))
			Expect(res.Answer).To(ContainSubstring("Current context includes 0 messages"))
		})

		It("answers action item questions from the channel", func() {
			post("please review the PR", "m1")
			w := do(http.MethodPost, "/api/v1/query", map[string]any{"question": "open tasks?", "channel_id": "team"})

			var res core.AnswerResult
			Expect(json.Unmarshal(w.Body.Bytes(), &res)).To(Succeed())
			Expect(res.Answer).To(Equal("Found 1 action items:\n- please review the PR"))
			Expect(res.ContextUsed).To(Equal([]string{"please review the PR"}))
		})

		It("requires a question", func() {
			Expect(do(http.MethodPost, "/api/v1/query", map[string]any{}).Code).To(Equal(http.StatusBadRequest))
		})
	})
})
