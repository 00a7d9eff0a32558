package api

import (
	"encoding/json"
)

// Response types.
const (
	ResponseSync  = "sync"
	ResponseError = "error"
)

// Response is the envelope of every REST API reply.
type Response struct {
	Type       string          `json:"type" yaml:"type"`
	StatusCode int             `json:"status_code" yaml:"status_code"`
	Metadata   json.RawMessage `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Error      *RemoteError    `json:"error,omitempty" yaml:"error,omitempty"`
}

// MetadataAsStruct decodes the response metadata into target.
func (r *Response) MetadataAsStruct(target any) error {
	return json.Unmarshal(r.Metadata, target)
}

// RawRowBatch is a RowBatch before its cells are decoded against a schema.
type RawRowBatch struct {
	Rows [][]json.RawMessage `json:"rows"`
	EOF  bool                `json:"eof"`
}

// LogResponse carries an operation log.
type LogResponse struct {
	Log string `json:"log" yaml:"log"`
}
