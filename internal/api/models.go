package api

// IndexRequest asks the service to ingest a web page.
type IndexRequest struct {
	URL string `json:"url" description:"absolute http(s) URL of the page to index"`
}

// IndexResponse reports a completed ingestion.
type IndexResponse struct {
	Status    string `json:"status"`
	URL       string `json:"url"`
	Documents int    `json:"documents"`
}

// AskRequest asks a question against the indexed corpus.
type AskRequest struct {
	Question string `json:"question" description:"question to answer from indexed content"`
}

// AskResponse carries the generated answer.
type AskResponse struct {
	Answer string `json:"answer"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
