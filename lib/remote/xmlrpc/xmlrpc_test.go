// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package xmlrpc

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hubsync/habitude/lib/remote"
)

const multiCallResponse = `<?xml version="1.0"?>
<methodResponse>
<params><param><value><array><data>
<value><array><data><value><struct>
<member><name>id</name><value><int>7</int></value></member>
<member><name>name</name><value><string>build</string></value></member>
</struct></value></data></array></value>
<value><struct>
<member><name>faultCode</name><value><int>1000</int></value></member>
<member><name>faultString</name><value><string>GenericError: tag already exists</string></value></member>
</struct></value>
</data></array></value></param></params>
</methodResponse>`

func TestCloseBatchResolvesPromisesInOrder(t *testing.T) {
	t.Parallel()

	var requestBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "text/xml")
		io.WriteString(w, multiCallResponse)
	}))
	t.Cleanup(server.Close)

	session := New(Config{Endpoint: server.URL, HTTPClient: server.Client()})

	batch := session.OpenBatch(context.Background())
	p1 := batch.Submit(remote.CallDescriptor{Method: "getTag", PositionalArgs: []any{"build"}})
	p2 := batch.Submit(remote.CallDescriptor{Method: "createTag", PositionalArgs: []any{"build"}})

	if err := session.CloseBatch(context.Background(), batch); err != nil {
		t.Fatalf("CloseBatch: %v", err)
	}

	result1, err1 := p1.Result()
	if err1 != nil {
		t.Fatalf("p1 error: %v", err1)
	}
	m, ok := result1.(map[string]any)
	if !ok || m["name"] != "build" {
		t.Errorf("p1 result = %#v", result1)
	}

	_, err2 := p2.Result()
	if err2 == nil {
		t.Fatalf("expected p2 to carry the fault, got nil error")
	}

	if len(requestBody) == 0 {
		t.Errorf("expected a request body to have been sent")
	}
}

func TestCloseBatchOnEmptyBatchIsNoop(t *testing.T) {
	t.Parallel()

	session := New(Config{Endpoint: "http://unused.invalid"})
	batch := session.OpenBatch(context.Background())
	if err := session.CloseBatch(context.Background(), batch); err != nil {
		t.Fatalf("CloseBatch on empty batch: %v", err)
	}
}
