package client

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const documentsService = "documents"

// firestoreValue covers the scalar value kinds profile documents use.
type firestoreValue struct {
	StringValue  *string `json:"stringValue,omitempty"`
	IntegerValue *string `json:"integerValue,omitempty"`
	BooleanValue *bool   `json:"booleanValue,omitempty"`
	NullValue    *string `json:"nullValue,omitempty"`
}

type firestoreDocument struct {
	Name   string                    `json:"name,omitempty"`
	Fields map[string]firestoreValue `json:"fields"`
}

type firestoreError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// DocumentClient reads and writes flat string documents through the Firestore
// REST API, authenticated with the caller's ID token.
type DocumentClient struct {
	httpClient *resty.Client
	projectID  string
	logger     *zap.Logger
}

func NewDocumentClient(baseURL, projectID string, timeout time.Duration, logger *zap.Logger) *DocumentClient {
	return &DocumentClient{
		httpClient: newHTTPClient(baseURL, timeout).SetHeader("Content-Type", "application/json"),
		projectID:  projectID,
		logger:     logger,
	}
}

func (c *DocumentClient) docPath(collection, id string) string {
	return fmt.Sprintf("/projects/%s/databases/(default)/documents/%s/%s",
		url.PathEscape(c.projectID), url.PathEscape(collection), url.PathEscape(id))
}

// Get returns the document's fields, or ErrDocumentNotFound.
func (c *DocumentClient) Get(ctx context.Context, idToken, collection, id string) (map[string]string, error) {
	var doc firestoreDocument
	var apiErr firestoreError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(idToken).
		SetResult(&doc).
		SetError(&apiErr).
		Get(c.docPath(collection, id))
	if err == nil && resp.StatusCode() == 404 {
		return nil, ErrDocumentNotFound
	}
	if cerr := callError(documentsService, "get", resp, err, func() string { return apiErr.Error.Message }); cerr != nil {
		return nil, cerr
	}
	return decodeFields(doc.Fields), nil
}

// Set replaces the whole document, creating it if needed.
func (c *DocumentClient) Set(ctx context.Context, idToken, collection, id string, fields map[string]string) error {
	return c.patch(ctx, "set", idToken, collection, id, fields, nil)
}

// Update writes only the given fields of an existing document.
func (c *DocumentClient) Update(ctx context.Context, idToken, collection, id string, partial map[string]string) error {
	q := url.Values{}
	for _, k := range sortedKeys(partial) {
		q.Add("updateMask.fieldPaths", k)
	}
	q.Set("currentDocument.exists", "true")
	return c.patch(ctx, "update", idToken, collection, id, partial, q)
}

func (c *DocumentClient) patch(ctx context.Context, op, idToken, collection, id string, fields map[string]string, q url.Values) error {
	var apiErr firestoreError
	req := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(idToken).
		SetBody(firestoreDocument{Fields: encodeFields(fields)}).
		SetError(&apiErr)
	if q != nil {
		req.SetQueryParamsFromValues(q)
	}
	resp, err := req.Patch(c.docPath(collection, id))
	if cerr := callError(documentsService, op, resp, err, func() string { return apiErr.Error.Message }); cerr != nil {
		c.logger.Warn("Document write failed",
			zap.String("op", op),
			zap.String("collection", collection),
			zap.Error(cerr),
		)
		return cerr
	}
	return nil
}

func encodeFields(fields map[string]string) map[string]firestoreValue {
	out := make(map[string]firestoreValue, len(fields))
	for k, v := range fields {
		v := v
		out[k] = firestoreValue{StringValue: &v}
	}
	return out
}

func decodeFields(fields map[string]firestoreValue) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		switch {
		case v.StringValue != nil:
			out[k] = *v.StringValue
		case v.IntegerValue != nil:
			out[k] = *v.IntegerValue
		case v.BooleanValue != nil:
			out[k] = strconv.FormatBool(*v.BooleanValue)
		case v.NullValue != nil:
			out[k] = ""
		}
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
