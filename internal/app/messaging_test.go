package app

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	attachmentHttp "github.com/nekogravitycat/lesson-booking-backend/internal/attachment/http"
	messagingHttp "github.com/nekogravitycat/lesson-booking-backend/internal/messaging/http"
)

func uploadAttachment(t *testing.T, token, name string, content []byte) attachmentHttp.AttachmentResponse {
	t.Helper()
	w := postFile(t, token, name, content)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[attachmentHttp.AttachmentResponse](t, w)
}

func postFile(t *testing.T, token, name string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest("POST", "/v1/messaging/attachments", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	return w
}

func pngImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	img.Set(1, 1, color.RGBA{B: 200, A: 255})
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func conversation(t *testing.T, token string) messagingHttp.ConversationResponse {
	t.Helper()
	w := executeRequest("GET", "/v1/messaging", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	return decode[messagingHttp.ConversationResponse](t, w)
}

func TestMessaging(t *testing.T) {
	token := createSession(t)

	t.Run("List And Query Threads", func(t *testing.T) {
		w := executeRequest("GET", "/v1/messaging/threads", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		all := decode[struct {
			Items []messagingHttp.ThreadResponse `json:"items"`
		}](t, w)
		require.Len(t, all.Items, 3)

		w = executeRequest("GET", "/v1/messaging/threads?q="+url.QueryEscape("佐藤"), nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		some := decode[struct {
			Items []messagingHttp.ThreadResponse `json:"items"`
		}](t, w)
		require.Len(t, some.Items, 1)
		assert.Equal(t, int64(2), some.Items[0].ID)
	})

	t.Run("Send Without Thread", func(t *testing.T) {
		w := executeRequest("POST", "/v1/messaging/messages", map[string]any{"text": "hello"}, token)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Select Unknown Thread", func(t *testing.T) {
		w := executeRequest("POST", "/v1/messaging/threads/99/select", nil, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	w := executeRequest("POST", "/v1/messaging/threads/1/select", nil, token)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, decode[messagingHttp.ConversationResponse](t, w).Loading)

	require.Eventually(t, func() bool {
		c := conversation(t, token)
		return !c.Loading && len(c.Messages) > 0
	}, waitFor, tick)
	loaded := len(conversation(t, token).Messages)

	t.Run("Empty Message Rejected", func(t *testing.T) {
		w := executeRequest("POST", "/v1/messaging/messages", map[string]any{"text": "   "}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Send And Deliver", func(t *testing.T) {
		w := executeRequest("POST", "/v1/messaging/messages", map[string]any{"text": "来週の件です"}, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		msg := decode[messagingHttp.MessageResponse](t, w)
		assert.Equal(t, "sending", msg.Status)
		assert.Equal(t, int64(1), msg.ThreadID)

		require.Eventually(t, func() bool {
			c := conversation(t, token)
			last := c.Messages[len(c.Messages)-1]
			return last.ID == msg.ID && last.Status == "delivered"
		}, waitFor, tick)
		assert.Len(t, conversation(t, token).Messages, loaded+1)
	})

	t.Run("Send With Attachment", func(t *testing.T) {
		att := uploadAttachment(t, token, "plan.txt", []byte("lesson plan"))
		assert.Nil(t, att.ThumbnailURL)

		w := executeRequest("POST", "/v1/messaging/messages", map[string]any{"attachment_ids": []string{att.ID}}, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		msg := decode[messagingHttp.MessageResponse](t, w)
		require.Len(t, msg.Attachments, 1)
		assert.Equal(t, "plan.txt", msg.Attachments[0].Name)

		w = executeRequest("GET", att.URL, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "lesson plan", w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		disposition, params, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))
		require.NoError(t, err)
		assert.Equal(t, "attachment", disposition)
		assert.Equal(t, "plan.txt", params["filename"])
	})

	t.Run("HTML Upload Rejected", func(t *testing.T) {
		w := postFile(t, token, "page.html", []byte("<html><body><script>alert(1)</script></body></html>"))
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("Filename Quoted In Download", func(t *testing.T) {
		for _, name := range []string{`plan "v2".txt`, "レッスン計画.txt"} {
			att := uploadAttachment(t, token, name, []byte("lesson plan"))

			w := executeRequest("GET", att.URL, nil, "")
			require.Equal(t, http.StatusOK, w.Code)
			_, params, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))
			require.NoError(t, err)
			assert.Equal(t, name, params["filename"])
		}
	})

	t.Run("Image Served Inline", func(t *testing.T) {
		att := uploadAttachment(t, token, "photo.png", pngImage(t))
		require.NotNil(t, att.ThumbnailURL)

		w := executeRequest("GET", att.URL, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		disposition, _, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))
		require.NoError(t, err)
		assert.Equal(t, "inline", disposition)

		w = executeRequest("GET", *att.ThumbnailURL, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	})

	t.Run("Foreign Attachment Rejected", func(t *testing.T) {
		other := createSession(t)
		att := uploadAttachment(t, other, "secret.txt", []byte("not yours"))

		w := executeRequest("POST", "/v1/messaging/messages", map[string]any{"text": "hi", "attachment_ids": []string{att.ID}}, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Malformed Attachment ID", func(t *testing.T) {
		w := executeRequest("POST", "/v1/messaging/messages", map[string]any{"text": "hi", "attachment_ids": []string{"nope"}}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Sent Messages Survive Reload", func(t *testing.T) {
		w := executeRequest("POST", "/v1/messaging/threads/2/select", nil, token)
		require.Equal(t, http.StatusAccepted, w.Code)
		w = executeRequest("POST", "/v1/messaging/threads/1/select", nil, token)
		require.Equal(t, http.StatusAccepted, w.Code)

		require.Eventually(t, func() bool {
			c := conversation(t, token)
			return !c.Loading && c.ActiveThreadID == 1 && len(c.Messages) == loaded+2
		}, waitFor, tick)
	})
}
