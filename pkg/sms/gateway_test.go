package sms

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestHTTPGateway_Send(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "secret-key", r.Header.Get("apiKey"))
			assert.Equal(t, "+254712345678", r.PostForm.Get("to"))
			assert.Equal(t, "TOURKENYA", r.PostForm.Get("from"))
			assert.Equal(t, "tourkenya", r.PostForm.Get("username"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"SMSMessageData":{"Message":"Sent to 1/1","Recipients":[{"number":"+254712345678","status":"Success","messageId":"ATXid_1","cost":"KES 0.8000"}]}}`))
		}))
		defer server.Close()

		gw := NewHTTPGateway(Config{APIURL: server.URL, Username: "tourkenya", APIKey: "secret-key", SenderID: "TOURKENYA"}, quietLogger())
		id, err := gw.Send(context.Background(), "0712 345 678", "Booking confirmed")
		require.NoError(t, err)
		assert.Equal(t, "ATXid_1", id)
	})

	t.Run("Rejected Recipient", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"SMSMessageData":{"Message":"Sent to 0/1","Recipients":[{"number":"+254712345678","status":"InsufficientBalance"}]}}`))
		}))
		defer server.Close()

		gw := NewHTTPGateway(Config{APIURL: server.URL, APIKey: "k"}, quietLogger())
		_, err := gw.Send(context.Background(), "0712345678", "hi")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "InsufficientBalance")
	})

	t.Run("HTTP Error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		}))
		defer server.Close()

		gw := NewHTTPGateway(Config{APIURL: server.URL, APIKey: "bad"}, quietLogger())
		_, err := gw.Send(context.Background(), "0712345678", "hi")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
	})

	t.Run("Invalid Phone", func(t *testing.T) {
		gw := NewHTTPGateway(Config{APIURL: "http://unused"}, quietLogger())
		_, err := gw.Send(context.Background(), "12345", "hi")
		assert.Error(t, err)
	})
}

func TestNewGateway(t *testing.T) {
	assert.IsType(t, &DevGateway{}, NewGateway("dev", Config{}, quietLogger()))
	assert.IsType(t, &HTTPGateway{}, NewGateway("production", Config{APIURL: "http://x"}, quietLogger()))

	id, err := NewDevGateway(quietLogger()).Send(context.Background(), "0712345678", "hi")
	require.NoError(t, err)
	assert.Contains(t, id, "dev-")
}
