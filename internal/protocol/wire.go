package protocol

import (
	"encoding/json"
	"strings"

	"business-assistant/internal/catalog"
)

const JSONRPCVersion = "2.0"

const (
	MethodInitialize    = "initialize"
	MethodToolsList     = "tools/list"
	MethodToolsCall     = "tools/call"
	MethodResourcesList = "resources/list"
	MethodResourcesRead = "resources/read"
)

type Params struct {
	Name      string                 `json:"name,omitempty"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
	URI       string                 `json:"uri,omitempty"`
}

type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  Params          `json:"params"`
}

// IsNotification reports a request that expects no response.
func (r Request) IsNotification() bool {
	return len(r.ID) == 0 && strings.HasPrefix(r.Method, "notifications/")
}

// EncodeResponse renders a JSON-RPC response line for env.
func EncodeResponse(id json.RawMessage, env Envelope) ([]byte, error) {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	body, err := json.Marshal(env)
	if err != nil {
		body, _ = json.Marshal(Failure(CodeInternalError, "Internal error: "+err.Error()))
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(body, &members); err != nil {
		return nil, err
	}
	members["jsonrpc"], _ = json.Marshal(JSONRPCVersion)
	members["id"] = id
	return json.Marshal(members)
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type InitializeResult struct {
	ProtocolVersion string                 `json:"protocolVersion"`
	ServerInfo      ServerInfo             `json:"serverInfo"`
	Capabilities    map[string]interface{} `json:"capabilities"`
}

type ToolsListResult struct {
	Tools []catalog.ToolDescriptor `json:"tools"`
}

type ResourcesListResult struct {
	Resources []catalog.ResourceDescriptor `json:"resources"`
}

type ResourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

type ReadResourceResult struct {
	Contents []ResourceContent `json:"contents"`
}
