// Package tencent implements a signed HTTP client for the upstream
// Tencent Meeting API: CreateMeeting, CancelMeeting, BookRooms,
// ReleaseRooms, and ListRooms.
package tencent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cnluzhang/tencent-meeting-service/internal/signing"
	"github.com/cnluzhang/tencent-meeting-service/platform/apperr"
	"github.com/cnluzhang/tencent-meeting-service/platform/logger"
)

const defaultEndpoint = "https://api.meeting.qq.com"

// Client is a typed, signed client for the upstream meeting API. Its
// http.Client is shared across calls (connection pooling); the Client
// itself is stateless beyond credentials and safe for concurrent use.
type Client struct {
	httpClient *http.Client
	signer     *signing.Signer
	appID      string
	endpoint   string
	sdkID      string
	log        *logger.Logger
}

// Config carries the credentials and endpoint a Client is constructed from.
type Config struct {
	AppID     string
	SecretID  string
	SecretKey string
	Endpoint  string // defaults to defaultEndpoint when empty
	SdkID     string // emitted as the SdkId header iff non-empty
}

// New constructs a Client from cfg.
func New(cfg Config, log *logger.Logger) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		signer:     signing.New(cfg.SecretID, cfg.SecretKey),
		appID:      cfg.AppID,
		endpoint:   endpoint,
		sdkID:      cfg.SdkID,
		log:        log,
	}
}

// do executes a signed request against uri (path plus any query string;
// the signature covers exactly this string) with the given body, and
// decodes a JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, uri string, body interface{}, out interface{}) error {
	var bodyBytes []byte
	var err error
	if body != nil {
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return apperr.Internal(fmt.Sprintf("tencent: encode request body: %v", err))
		}
	}

	headers, err := c.signer.Sign(method, uri, string(bodyBytes))
	if err != nil {
		return apperr.UpstreamTransient(err, "tencent: sign request")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+uri, bytes.NewReader(bodyBytes))
	if err != nil {
		return apperr.UpstreamTransient(err, "tencent: build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-TC-Key", c.signer.SecretID)
	req.Header.Set("X-TC-Timestamp", fmt.Sprintf("%d", headers.Timestamp))
	req.Header.Set("X-TC-Nonce", headers.Nonce)
	req.Header.Set("X-TC-Signature", headers.Signature)
	req.Header.Set("AppId", c.appID)
	req.Header.Set("X-TC-Registered", "1")
	if c.sdkID != "" {
		req.Header.Set("SdkId", c.sdkID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("tencent: request failed", "error", err, "uri", uri)
		return apperr.UpstreamTransient(err, "tencent: %s %s", method, uri)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.UpstreamTransient(err, "tencent: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Error("tencent: upstream error", "status", resp.StatusCode, "uri", uri, "body", string(respBody))
		return apperr.UpstreamTransient(nil, "tencent: upstream status %d on %s %s", resp.StatusCode, method, uri)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return apperr.UpstreamShape("tencent: decode response on %s %s: %v", method, uri, err)
	}
	return nil
}

// CreateMeeting creates an upstream meeting.
func (c *Client) CreateMeeting(ctx context.Context, req CreateMeetingRequest) (CreateMeetingResponse, error) {
	var resp CreateMeetingResponse
	if err := c.do(ctx, http.MethodPost, "/v1/meetings", req, &resp); err != nil {
		return CreateMeetingResponse{}, err
	}
	return resp, nil
}

// CancelMeeting cancels an upstream meeting.
func (c *Client) CancelMeeting(ctx context.Context, meetingID string, req CancelMeetingRequest) error {
	uri := fmt.Sprintf("/v1/meetings/%s/cancel", url.PathEscape(meetingID))
	return c.do(ctx, http.MethodPost, uri, req, nil)
}

// BookRooms associates rooms with an upstream meeting.
func (c *Client) BookRooms(ctx context.Context, meetingID string, req BookRoomsRequest) error {
	uri := fmt.Sprintf("/v1/meetings/%s/book-rooms", url.PathEscape(meetingID))
	return c.do(ctx, http.MethodPost, uri, req, nil)
}

// ReleaseRooms disassociates rooms from an upstream meeting.
func (c *Client) ReleaseRooms(ctx context.Context, meetingID string, req ReleaseRoomsRequest) error {
	uri := fmt.Sprintf("/v1/meetings/%s/release-rooms", url.PathEscape(meetingID))
	return c.do(ctx, http.MethodPost, uri, req, nil)
}

// ListRooms lists upstream meeting rooms. The signature covers the full
// URI including the query string, matching the upstream contract.
func (c *Client) ListRooms(ctx context.Context, page, pageSize int, operatorID string) (MeetingRoomsResponse, error) {
	uri := fmt.Sprintf("/v1/meeting-rooms?page=%d&page_size=%d&operator_id=%s&operator_id_type=1",
		page, pageSize, url.QueryEscape(operatorID))

	var resp MeetingRoomsResponse
	if err := c.do(ctx, http.MethodGet, uri, nil, &resp); err != nil {
		return MeetingRoomsResponse{}, err
	}
	return resp, nil
}
