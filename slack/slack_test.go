package slack_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"pantrysync"
	"pantrysync/slack"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"
)

type mockDoer struct {
	resp   *http.Response
	err    error
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockDoer) Do(req *http.Request) (*http.Response, error) {
	if m.doFunc != nil {
		return m.doFunc(req)
	}
	return m.resp, m.err
}

func TestNewClient(t *testing.T) {
	webhook := "http://slack.com/webhook"
	client := slack.NewClient(webhook, &mockDoer{})
	must.NotNil(t, client, "expected non-nil client")
}

func TestPostMessage(t *testing.T) {
	tests := []struct {
		name    string
		doFunc  func(req *http.Request) (*http.Response, error)
		wantErr error
	}{
		{
			name: "success",
			doFunc: func(req *http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewBufferString("ok"))}, nil
			},
			wantErr: nil,
		},
		{
			name: "failure status",
			doFunc: func(req *http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: http.StatusBadRequest, Status: "400 Bad Request", Body: io.NopCloser(bytes.NewBufferString("bad request"))}, nil
			},
			wantErr: fmt.Errorf("failed to post message: 400 Bad Request"),
		},
		{
			name: "do error",
			doFunc: func(req *http.Request) (*http.Response, error) {
				return nil, errors.New("network error")
			},
			wantErr: fmt.Errorf("network error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := slack.NewClient("http://example.com/webhook", &mockDoer{doFunc: tt.doFunc})
			err := client.PostMessage(context.Background(), "#groceries", "Weekly list synced")
			should.Equal(t, tt.wantErr, err)
		})
	}
}

func TestPostSummary(t *testing.T) {
	var body map[string]any
	doer := &mockDoer{doFunc: func(req *http.Request) (*http.Response, error) {
		must.Equal(t, "application/json", req.Header.Get("Content-Type"))
		must.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewBufferString("ok"))}, nil
	}}

	client := slack.NewClient("http://example.com/webhook", doer)
	err := client.PostSummary(context.Background(), "#groceries", pantrysync.SyncSummary{
		ListID:    "weekly",
		Removed:   2,
		Updated:   1,
		Remaining: 4,
	})
	must.NoError(t, err)

	should.Equal(t, "#groceries", body["channel"])
	should.Equal(t, "List weekly: 2 removed, 1 updated, 4 remaining", body["text"])
	blocks, ok := body["blocks"].([]any)
	must.True(t, ok)
	should.Len(t, blocks, 2)
	should.Contains(t, blocks[0].(map[string]any)["text"].(map[string]any)["text"], "`weekly`")
}

func TestPostSummary_Failure(t *testing.T) {
	doer := &mockDoer{resp: &http.Response{
		StatusCode: http.StatusNotFound,
		Status:     "404 Not Found",
		Body:       io.NopCloser(bytes.NewBufferString("no_service")),
	}}
	client := slack.NewClient("http://example.com/webhook", doer)
	err := client.PostSummary(context.Background(), "#groceries", pantrysync.SyncSummary{ListID: "weekly"})
	should.EqualError(t, err, "failed to post message: 404 Not Found")
}
