package aiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["prompt"])

		json.NewEncoder(w).Encode(ChatReply{Text: "hi there"})
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", false)
	reply, err := c.Chat(context.Background(), "hello", "")
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply.Text)
}

func TestBadShapeIsGenericFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", false)

	_, err := c.Chat(context.Background(), "hello", "")
	assert.ErrorIs(t, err, ErrBadResponse)

	_, err = c.LabelEmotion(context.Background(), "http://img/1.jpg")
	assert.ErrorIs(t, err, ErrBadResponse)

	_, err = c.SuggestSubstitute(context.Background(), SubstituteRequest{Available: []string{"T1"}})
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestMalformedJSONIsGenericFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", false)
	_, err := c.AnalyzeAnomalies(context.Background(), "summary text")
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestServerErrorIsNotBadResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, "", false)
	_, err := c.Chat(context.Background(), "hello", "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBadResponse)
	assert.Contains(t, err.Error(), "503")
}

func TestSkipModeAnswersLocally(t *testing.T) {
	c := New("http://unused", "", true)

	reply, err := c.Chat(context.Background(), "anything", "")
	require.NoError(t, err)
	assert.NotEmpty(t, reply.Text)

	emotion, err := c.LabelEmotion(context.Background(), "http://img/1.jpg")
	require.NoError(t, err)
	assert.Equal(t, "neutral", emotion.Label)

	pick, err := c.SuggestSubstitute(context.Background(), SubstituteRequest{Available: []string{"T9"}})
	require.NoError(t, err)
	assert.Equal(t, "T9", pick.TeacherID)

	assert.NoError(t, c.Health(context.Background()))
}
