package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope field names used by the OSCU API
const (
	FieldResultCode    = "resultCd"
	FieldResultMessage = "resultMsg"
	FieldResultDate    = "resultDt"
	FieldData          = "data"
	FieldFault         = "fault"
	FieldFaultString   = "faultstring"
)

// ResultCode returns the business result code, if present
func ResultCode(body map[string]any) (string, bool) {
	return stringField(body, FieldResultCode)
}

// ResultMessage returns resultMsg or a fallback when the envelope omits it
func ResultMessage(body map[string]any) string {
	if msg, ok := stringField(body, FieldResultMessage); ok {
		return msg
	}
	return "Unknown API response"
}

// ResultDate returns the yyyyMMddHHmmss result timestamp, if present
func ResultDate(body map[string]any) (string, bool) {
	return stringField(body, FieldResultDate)
}

// Data returns the data object of the envelope
func Data(body map[string]any) (map[string]any, bool) {
	data, ok := body[FieldData].(map[string]any)
	return data, ok
}

// FaultString returns fault.faultstring from gateway error bodies
func FaultString(body map[string]any) (string, bool) {
	fault, ok := body[FieldFault].(map[string]any)
	if !ok {
		return "", false
	}
	return stringField(fault, FieldFaultString)
}

func stringField(body map[string]any, key string) (string, bool) {
	if body == nil {
		return "", false
	}
	v, ok := body[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	default:
		return strings.TrimSpace(fmt.Sprint(t)), true
	}
}
