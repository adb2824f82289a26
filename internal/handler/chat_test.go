package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Tavhidjon/RealEstate/internal/errors"
	"github.com/Tavhidjon/RealEstate/internal/model"
	"github.com/Tavhidjon/RealEstate/pkg/response"
)

// MockChatService 模拟 ChatService
type MockChatService struct {
	StartFunc func(ctx context.Context, principal model.Principal, companyID int64) (*model.Conversation, bool, error)
	SendFunc  func(ctx context.Context, principal model.Principal, conversationID int64, content string) (*model.Message, *model.Conversation, error)
}

func (m *MockChatService) Start(ctx context.Context, principal model.Principal, companyID int64) (*model.Conversation, bool, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, principal, companyID)
	}
	return nil, false, nil
}

func (m *MockChatService) Send(ctx context.Context, principal model.Principal, conversationID int64, content string) (*model.Message, *model.Conversation, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, principal, conversationID, content)
	}
	return nil, nil, nil
}

// setupTestRouter 创建测试用的 gin 路由
func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// APIResponse 用于解析响应体
type APIResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func TestChatHandler_Start_Success(t *testing.T) {
	now := time.Now()
	expected := &model.Conversation{
		ID:        1001,
		UserID:    7,
		CompanyID: 42,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	mockService := &MockChatService{
		StartFunc: func(ctx context.Context, principal model.Principal, companyID int64) (*model.Conversation, bool, error) {
			assert.Equal(t, int64(7), principal.UserID)
			assert.Equal(t, int64(42), companyID)
			return expected, true, nil
		},
	}

	router := setupTestRouter()
	router.POST("/chats/start", func(c *gin.Context) {
		var req struct {
			CompanyID int64 `json:"company_id,string" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorWithMsg(c, apperrors.CodeInvalidParams, err.Error())
			return
		}

		principal := model.Principal{UserID: 7, Kind: model.PrincipalUser}
		conv, created, err := mockService.Start(c.Request.Context(), principal, req.CompanyID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, gin.H{"conversation": conv, "created": created})
	})

	body := []byte(`{"company_id":"42"}`)
	req, _ := http.NewRequest(http.MethodPost, "/chats/start", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp APIResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, apperrors.CodeSuccess, resp.Code)

	var data struct {
		Conversation model.Conversation `json:"conversation"`
		Created      bool               `json:"created"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.True(t, data.Created)
	assert.Equal(t, int64(1001), data.Conversation.ID)
}

func TestChatHandler_Start_InvalidBody(t *testing.T) {
	router := setupTestRouter()
	router.POST("/chats/start", func(c *gin.Context) {
		var req struct {
			CompanyID int64 `json:"company_id,string" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorWithMsg(c, apperrors.CodeInvalidParams, err.Error())
			return
		}
		response.Success(c, nil)
	})

	req, _ := http.NewRequest(http.MethodPost, "/chats/start", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.CodeInvalidParams, resp.Code)
}

func TestChatHandler_Send_ErrorMapping(t *testing.T) {
	mockService := &MockChatService{
		SendFunc: func(ctx context.Context, principal model.Principal, conversationID int64, content string) (*model.Message, *model.Conversation, error) {
			return nil, nil, apperrors.ErrConversationInactive
		},
	}

	router := setupTestRouter()
	router.POST("/chats/:id/messages", func(c *gin.Context) {
		var req struct {
			Content string `json:"content" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorWithMsg(c, apperrors.CodeInvalidParams, err.Error())
			return
		}

		principal := model.Principal{UserID: 7, Kind: model.PrincipalUser}
		msg, _, err := mockService.Send(c.Request.Context(), principal, 1001, req.Content)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, msg)
	})

	body := []byte(`{"content":"hello"}`)
	req, _ := http.NewRequest(http.MethodPost, "/chats/1001/messages", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.CodeConversationInactive, resp.Code)
	assert.Equal(t, apperrors.GetMessage(apperrors.ErrConversationInactive), resp.Message)
}
