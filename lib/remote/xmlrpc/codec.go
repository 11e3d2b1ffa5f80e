// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package xmlrpc

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// marshalValue renders v as an XML-RPC "<value>...</value>" fragment.
// Supported shapes are exactly the ones remote.CallDescriptor and its
// results need: nil, bool, int, int64, float64, string, []any, and
// map[string]any.
func marshalValue(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "<value><nil/></value>", nil
	case bool:
		digit := "0"
		if t {
			digit = "1"
		}
		return "<value><boolean>" + digit + "</boolean></value>", nil
	case int:
		return fmt.Sprintf("<value><int>%d</int></value>", t), nil
	case int64:
		return fmt.Sprintf("<value><int>%d</int></value>", t), nil
	case float64:
		return "<value><double>" + strconv.FormatFloat(t, 'g', -1, 64) + "</double></value>", nil
	case string:
		return "<value><string>" + escapeText(t) + "</string></value>", nil
	case []string:
		items := make([]any, len(t))
		for i, s := range t {
			items[i] = s
		}
		return marshalValue(items)
	case []map[string]any:
		items := make([]any, len(t))
		for i, m := range t {
			items[i] = m
		}
		return marshalValue(items)
	case []any:
		var sb strings.Builder
		sb.WriteString("<value><array><data>")
		for _, item := range t {
			frag, err := marshalValue(item)
			if err != nil {
				return "", err
			}
			sb.WriteString(frag)
		}
		sb.WriteString("</data></array></value>")
		return sb.String(), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var sb strings.Builder
		sb.WriteString("<value><struct>")
		for _, k := range keys {
			frag, err := marshalValue(t[k])
			if err != nil {
				return "", err
			}
			sb.WriteString("<member><name>" + escapeText(k) + "</name>" + frag + "</member>")
		}
		sb.WriteString("</struct></value>")
		return sb.String(), nil
	default:
		return "", fmt.Errorf("xmlrpc: unsupported value type %T", v)
	}
}

func escapeText(s string) string {
	var sb strings.Builder
	if err := xml.EscapeText(&sb, []byte(s)); err != nil {
		return s
	}
	return sb.String()
}

// rpcValue mirrors the XML-RPC <value> grammar for decoding. Exactly
// one field other than CharData is populated per decoded element.
type rpcValue struct {
	String  *string    `xml:"string"`
	Int     *int       `xml:"int"`
	I4      *int       `xml:"i4"`
	Boolean *string    `xml:"boolean"`
	Double  *float64   `xml:"double"`
	Nil     *struct{}  `xml:"nil"`
	Array   *rpcArray  `xml:"array"`
	Struct  *rpcStruct `xml:"struct"`
	Base64  *string    `xml:"base64"`

	CharData string `xml:",chardata"`
}

type rpcArray struct {
	Values []rpcValue `xml:"data>value"`
}

type rpcStruct struct {
	Members []rpcMember `xml:"member"`
}

type rpcMember struct {
	Name  string   `xml:"name"`
	Value rpcValue `xml:"value"`
}

type methodResponse struct {
	XMLName xml.Name `xml:"methodResponse"`
	Params  struct {
		Param []struct {
			Value rpcValue `xml:"value"`
		} `xml:"param"`
	} `xml:"params"`
	Fault *struct {
		Value rpcValue `xml:"value"`
	} `xml:"fault"`
}

// toAny converts a decoded rpcValue into the plain Go value remote
// promises expose: string, int, bool, float64, nil, []any, or
// map[string]any.
func (v rpcValue) toAny() (any, error) {
	switch {
	case v.String != nil:
		return *v.String, nil
	case v.Int != nil:
		return *v.Int, nil
	case v.I4 != nil:
		return *v.I4, nil
	case v.Boolean != nil:
		return strings.TrimSpace(*v.Boolean) == "1", nil
	case v.Double != nil:
		return *v.Double, nil
	case v.Nil != nil:
		return nil, nil
	case v.Base64 != nil:
		return *v.Base64, nil
	case v.Array != nil:
		out := make([]any, len(v.Array.Values))
		for i, item := range v.Array.Values {
			a, err := item.toAny()
			if err != nil {
				return nil, err
			}
			out[i] = a
		}
		return out, nil
	case v.Struct != nil:
		out := make(map[string]any, len(v.Struct.Members))
		for _, m := range v.Struct.Members {
			a, err := m.Value.toAny()
			if err != nil {
				return nil, err
			}
			out[m.Name] = a
		}
		return out, nil
	default:
		// A bare <value>text</value> with no typed child is a string
		// per the XML-RPC spec's legacy shorthand.
		return strings.TrimSpace(v.CharData), nil
	}
}
