// Package dispatch sends OSCU requests and turns every response into exactly
// one model.Outcome.
package dispatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rezonia/etims-client/internal/model"
)

// ResultCodes is the environment-specific result code table
type ResultCodes struct {
	Success   []string `json:"success" mapstructure:"success"`
	ClientMin int      `json:"client_min" mapstructure:"client_min"`
	ClientMax int      `json:"client_max" mapstructure:"client_max"`
	ServerMin int      `json:"server_min" mapstructure:"server_min"`
}

// DefaultResultCodes is the table published for OSCU
func DefaultResultCodes() ResultCodes {
	return ResultCodes{
		Success:   []string{"000", "001"},
		ClientMin: 891,
		ClientMax: 899,
		ServerMin: 900,
	}
}

// WithDefaults fills every unset part of rc from DefaultResultCodes. The
// client range is only filled when both bounds are zero.
func (rc ResultCodes) WithDefaults() ResultCodes {
	d := DefaultResultCodes()
	if len(rc.Success) == 0 {
		rc.Success = d.Success
	}
	if rc.ClientMin == 0 && rc.ClientMax == 0 {
		rc.ClientMin, rc.ClientMax = d.ClientMin, d.ClientMax
	}
	if rc.ServerMin == 0 {
		rc.ServerMin = d.ServerMin
	}
	return rc
}

// IsSuccess reports whether code is a success code
func (rc ResultCodes) IsSuccess(code string) bool {
	for _, s := range rc.Success {
		if code == s {
			return true
		}
	}
	return false
}

// Class groups a non-success code. Non-numeric codes are generic.
func (rc ResultCodes) Class(code string) model.BusinessClass {
	n, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil {
		return model.BusinessClassGeneric
	}
	switch {
	case n >= rc.ClientMin && n <= rc.ClientMax:
		return model.BusinessClassClient
	case n >= rc.ServerMin:
		return model.BusinessClassServer
	default:
		return model.BusinessClassGeneric
	}
}

// Fault strings that mean the bearer token must be renewed
var authFaults = []string{"access token expired", "invalid token"}

// Classifier maps status and body to an Outcome
type Classifier struct {
	codes ResultCodes
}

// NewClassifier creates a classifier over codes
func NewClassifier(codes ResultCodes) *Classifier {
	return &Classifier{codes: codes.WithDefaults()}
}

// Codes returns the result code table
func (c *Classifier) Codes() ResultCodes {
	return c.codes
}

// Classify applies the decision order: unparseable body, 401, auth fault,
// non-2xx, business code, success. The order matters: a gateway may answer
// 200 with an expired-token fault.
func (c *Classifier) Classify(status int, raw []byte) *model.Outcome {
	body, ok := decodeObject(raw)
	if !ok {
		return model.Transport(status, string(raw), raw)
	}

	fault, hasFault := model.FaultString(body)

	if status == http.StatusUnauthorized {
		msg := "Unauthorized: invalid or expired token"
		if hasFault && fault != "" {
			msg = fault
		}
		return model.Auth(status, msg, raw)
	}

	if hasFault && IsAuthFault(fault) {
		return model.Auth(status, fault, raw)
	}

	if status < 200 || status > 299 {
		msg := string(raw)
		if hasFault {
			msg = fault
		}
		return model.Transport(status, msg, raw)
	}

	code, hasCode := model.ResultCode(body)
	if hasCode && !c.codes.IsSuccess(code) {
		return model.Business(status, code, model.ResultMessage(body), c.codes.Class(code), body, raw)
	}

	return model.Success(status, body, raw)
}

// IsAuthFault reports whether a gateway fault string asks for a new token
func IsAuthFault(fault string) bool {
	lower := strings.ToLower(fault)
	for _, f := range authFaults {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}

func decodeObject(raw []byte) (map[string]any, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil || body == nil {
		return nil, false
	}
	// a proxy error page after the object makes the whole body unparseable
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, false
	}
	return body, true
}
