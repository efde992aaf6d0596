package types

type QueryRequest struct {
	Prompt string `json:"prompt"`
}

type QueryResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is the failure envelope of every API endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

type PromptsResponse struct {
	Prompts []string `json:"prompts"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
