// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

// Package xmlrpc implements remote.Session against a real hub's
// XML-RPC multicall endpoint. No XML-RPC marshaling library appears
// anywhere in the example pack, so the wire codec is hand-rolled on
// top of encoding/xml and net/http; see DESIGN.md for the
// stdlib-justification this requires.
package xmlrpc

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hubsync/habitude/lib/logctx"
	"github.com/hubsync/habitude/lib/remote"
)

// Config configures a Session. HTTPClient defaults to
// http.DefaultClient; Logger defaults to slog.Default().
type Config struct {
	// Endpoint is the hub's multicall XML-RPC URL, e.g.
	// "https://koji.example.com/kojihub".
	Endpoint string

	// HTTPClient is used for every request. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client

	// Logger is used for structured logging. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Session is a remote.Session backed by one system.multiCall XML-RPC
// request per batch close. It is single-owner: OpenBatch must not be
// called again before the previous batch has closed.
type Session struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// New builds a Session from cfg.
func New(cfg Config) *Session {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{endpoint: cfg.Endpoint, httpClient: httpClient, logger: logger}
}

type batch struct {
	entries     []*entry
	currentKind string
	currentName string
}

type entry struct {
	descriptor remote.CallDescriptor
	promise    *remote.Promise
}

// Submit implements remote.Batch.
func (b *batch) Submit(descriptor remote.CallDescriptor) *remote.Promise {
	promise := &remote.Promise{}
	b.entries = append(b.entries, &entry{descriptor: descriptor, promise: promise})
	return promise
}

// Associate implements remote.Batch. The fake session uses this to
// build a per-entity call log for tests; the real session records
// the key but never reads it, since koji's multicall results come
// back positionally rather than tagged by caller.
func (b *batch) Associate(kind, name string) {
	b.currentKind = kind
	b.currentName = name
}

// OpenBatch implements remote.Session.
func (s *Session) OpenBatch(context.Context) remote.Batch {
	return &batch{}
}

// CloseBatch implements remote.Session: it encodes every call
// descriptor in the batch as a single system.multiCall request,
// issues it, and resolves each entry's promise from the
// corresponding response element, matching koji's own batching
// convention of one multicall per phase boundary.
func (s *Session) CloseBatch(ctx context.Context, b remote.Batch) error {
	fb, ok := b.(*batch)
	if !ok {
		return fmt.Errorf("xmlrpc: batch was not opened by this session")
	}
	if len(fb.entries) == 0 {
		return nil
	}

	log := s.logger
	if log == nil {
		log = logctx.From(ctx)
	}

	body, err := encodeMultiCall(fb.entries)
	if err != nil {
		return fmt.Errorf("xmlrpc: encoding multicall: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("xmlrpc: building request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml")

	log.Debug("xmlrpc: closing batch", "calls", len(fb.entries), "endpoint", s.endpoint)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("xmlrpc: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("xmlrpc: reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("xmlrpc: hub returned status %d: %s", resp.StatusCode, respBody)
	}

	results, err := decodeMultiCallResponse(respBody)
	if err != nil {
		return fmt.Errorf("xmlrpc: decoding multicall response: %w", err)
	}
	if len(results) != len(fb.entries) {
		return fmt.Errorf("xmlrpc: multicall returned %d results for %d calls", len(results), len(fb.entries))
	}

	for i, e := range fb.entries {
		result := results[i]
		if result.fault != nil {
			e.promise.Resolve(nil, &remote.CallError{
				Descriptor: e.descriptor,
				Category:   remote.ErrorCategoryGeneric,
				Cause:      fmt.Errorf("fault %d: %s", result.fault.Code, result.fault.Message),
			})
			continue
		}
		e.promise.Resolve(result.value, nil)
	}

	return nil
}

type multiCallResult struct {
	value any
	fault *fault
}

type fault struct {
	Code    int
	Message string
}

// encodeMultiCall builds the XML-RPC request body for
// system.multiCall, whose single parameter is an array of
// {methodName, params} structs.
func encodeMultiCall(entries []*entry) ([]byte, error) {
	calls := make([]any, len(entries))
	for i, e := range entries {
		params := make([]any, 0, len(e.descriptor.PositionalArgs)+1)
		params = append(params, e.descriptor.PositionalArgs...)
		if len(e.descriptor.NamedArgs) > 0 {
			params = append(params, map[string]any(e.descriptor.NamedArgs))
		}
		calls[i] = map[string]any{"methodName": e.descriptor.Method, "params": params}
	}

	valueXML, err := marshalValue(calls)
	if err != nil {
		return nil, fmt.Errorf("encoding calls: %w", err)
	}

	buf := &bytes.Buffer{}
	buf.WriteString(xml.Header)
	buf.WriteString("<methodCall><methodName>system.multiCall</methodName><params><param>")
	buf.WriteString(valueXML)
	buf.WriteString("</param></params></methodCall>")
	return buf.Bytes(), nil
}

// decodeMultiCallResponse parses a methodResponse body into one
// multiCallResult per call, in submission order. Each element of
// system.multiCall's result array is either a one-element array
// carrying the call's return value, or a fault struct.
func decodeMultiCallResponse(body []byte) ([]multiCallResult, error) {
	var resp methodResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if resp.Fault != nil {
		f, err := resp.Fault.Value.toAny()
		if err != nil {
			return nil, err
		}
		m, _ := f.(map[string]any)
		code, _ := m["faultCode"].(int)
		message, _ := m["faultString"].(string)
		return nil, fmt.Errorf("top-level fault %d: %s", code, message)
	}
	if len(resp.Params.Param) != 1 {
		return nil, fmt.Errorf("expected exactly one top-level param, got %d", len(resp.Params.Param))
	}

	outer, err := resp.Params.Param[0].Value.toAny()
	if err != nil {
		return nil, err
	}
	items, ok := outer.([]any)
	if !ok {
		return nil, fmt.Errorf("expected multicall response array, got %T", outer)
	}

	results := make([]multiCallResult, len(items))
	for i, item := range items {
		switch t := item.(type) {
		case map[string]any:
			if code, ok := t["faultCode"]; ok {
				c, _ := code.(int)
				message, _ := t["faultString"].(string)
				results[i] = multiCallResult{fault: &fault{Code: c, Message: message}}
				continue
			}
			results[i] = multiCallResult{value: t}
		case []any:
			if len(t) > 0 {
				results[i] = multiCallResult{value: t[0]}
			}
		default:
			results[i] = multiCallResult{value: t}
		}
	}
	return results, nil
}
