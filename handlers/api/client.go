// handlers/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"zenbox/models"

	"github.com/valyala/fasthttp"
)

// ErrTransport is matched (errors.Is) by every failed backend call
var ErrTransport = errors.New("assistant API request failed")

// maxRedirects covers the trailing-slash redirects the API answers with
const maxRedirects = 3

// RequestError describes a failed backend call. The response body is never
// parsed for details: any non-2xx status is a failure of the operation.
type RequestError struct {
	Op         string
	Method     string
	Path       string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *RequestError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("failed to %s: %s %s returned %d", e.Op, e.Method, e.Path, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
	default:
		return "failed to " + e.Op
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

func (e *RequestError) Is(target error) bool { return target == ErrTransport }

// Client talks to the email assistant REST API. Each method issues exactly
// one request; nothing is retried or cached.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	timeout time.Duration
}

// NewClient creates a client for the API rooted at baseURL. A zero timeout
// leaves requests without a deadline unless the context carries one.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &fasthttp.Client{
			Name:                "zenbox",
			MaxIdleConnDuration: 30 * time.Second,
		},
		timeout: timeout,
	}
}

// BaseURL returns the API root the client was built with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchEmails returns the inbox
func (c *Client) FetchEmails(ctx context.Context) ([]models.Email, error) {
	var emails []models.Email
	if err := c.call(ctx, "fetch emails", fasthttp.MethodGet, "/emails", nil, &emails); err != nil {
		return nil, err
	}
	if emails == nil {
		emails = []models.Email{}
	}
	return emails, nil
}

// FetchDrafts returns every saved draft
func (c *Client) FetchDrafts(ctx context.Context) ([]models.Draft, error) {
	var drafts []models.Draft
	if err := c.call(ctx, "fetch drafts", fasthttp.MethodGet, "/drafts", nil, &drafts); err != nil {
		return nil, err
	}
	if drafts == nil {
		drafts = []models.Draft{}
	}
	return drafts, nil
}

// FetchPrompts returns the prompt configuration
func (c *Client) FetchPrompts(ctx context.Context) (models.Prompts, error) {
	var prompts models.Prompts
	err := c.call(ctx, "fetch prompts", fasthttp.MethodGet, "/settings/prompts", nil, &prompts)
	return prompts, err
}

// GenerateReply asks the assistant to write a reply to an email
func (c *Client) GenerateReply(ctx context.Context, emailID string) (string, error) {
	var out struct {
		Content string `json:"content"`
	}
	in := map[string]string{"emailId": emailID}
	if err := c.call(ctx, "generate reply", fasthttp.MethodPost, "/drafts/generate", in, &out); err != nil {
		return "", err
	}
	return out.Content, nil
}

// SaveDraft creates or updates a draft. LastSaved is not sent.
func (c *Client) SaveDraft(ctx context.Context, draft models.Draft) (models.Draft, error) {
	var saved models.Draft
	err := c.call(ctx, "save draft", fasthttp.MethodPost, "/drafts", draft.ToSaveRequest(), &saved)
	return saved, err
}

// UpdatePrompts overwrites the whole prompt configuration
func (c *Client) UpdatePrompts(ctx context.Context, prompts models.Prompts) (models.Prompts, error) {
	var updated models.Prompts
	err := c.call(ctx, "update prompts", fasthttp.MethodPut, "/settings/prompts", prompts, &updated)
	return updated, err
}

// QueryChat asks a question about the inbox and returns the answer text
func (c *Client) QueryChat(ctx context.Context, query string) (string, error) {
	var out models.ChatAnswer
	in := map[string]string{"query": query}
	if err := c.call(ctx, "query chat", fasthttp.MethodPost, "/chat/query", in, &out); err != nil {
		return "", err
	}
	return out.Answer, nil
}

// TriggerIngest starts categorization of untagged emails
func (c *Client) TriggerIngest(ctx context.Context) (models.IngestResult, error) {
	var out models.IngestResult
	err := c.call(ctx, "ingest emails", fasthttp.MethodPost, "/emails/ingest", nil, &out)
	return out, err
}

// UploadEmails sends a JSON file of emails as multipart field "file"
func (c *Client) UploadEmails(ctx context.Context, filename string, data []byte) (models.UploadResult, error) {
	const op = "upload emails"

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", "application/json")
	part, err := mw.CreatePart(header)
	if err == nil {
		_, err = part.Write(data)
	}
	if err == nil {
		err = mw.Close()
	}
	if err != nil {
		return models.UploadResult{}, &RequestError{Op: op, Method: fasthttp.MethodPost, Path: "/emails/upload", Err: err}
	}

	var out models.UploadResult
	err = c.send(ctx, op, fasthttp.MethodPost, "/emails/upload", mw.FormDataContentType(), body.Bytes(), &out)
	return out, err
}

// DeleteEmail removes an email from the inbox
func (c *Client) DeleteEmail(ctx context.Context, id string) error {
	return c.call(ctx, "delete email", fasthttp.MethodDelete, "/emails/"+url.PathEscape(id), nil, nil)
}

// DeleteDraft removes a draft
func (c *Client) DeleteDraft(ctx context.Context, id string) error {
	return c.call(ctx, "delete draft", fasthttp.MethodDelete, "/drafts/"+url.PathEscape(id), nil, nil)
}

// ResetPrompts restores the backend's default prompts
func (c *Client) ResetPrompts(ctx context.Context) (models.Prompts, error) {
	var prompts models.Prompts
	err := c.call(ctx, "reset prompts", fasthttp.MethodPost, "/settings/prompts/reset", nil, &prompts)
	return prompts, err
}

// call sends in (if any) as JSON and decodes the response into out (if any)
func (c *Client) call(ctx context.Context, op, method, path string, in, out interface{}) error {
	var body []byte
	contentType := ""
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return &RequestError{Op: op, Method: method, Path: path, Err: err}
		}
		body = encoded
		contentType = "application/json"
	}
	return c.send(ctx, op, method, path, contentType, body, out)
}

func (c *Client) send(ctx context.Context, op, method, path, contentType string, body []byte, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if contentType != "" {
		req.Header.SetContentType(contentType)
	}
	if body != nil {
		req.SetBodyRaw(body)
	}

	if err := c.do(ctx, req, resp); err != nil {
		return &RequestError{Op: op, Method: method, Path: path, Err: err}
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return &RequestError{Op: op, Method: method, Path: path, StatusCode: status}
	}

	if out == nil || len(bytes.TrimSpace(resp.Body())) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &RequestError{Op: op, Method: method, Path: path, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// do follows redirects on every call. The timeout is the client's, cut
// short by the context deadline when that comes first.
func (c *Client) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return context.DeadlineExceeded
		}
		if timeout == 0 || remaining < timeout {
			timeout = remaining
		}
	}
	if timeout > 0 {
		req.SetTimeout(timeout)
	}
	return c.http.DoRedirects(req, resp, maxRedirects)
}
