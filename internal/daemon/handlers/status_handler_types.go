package handlers

// StatusResponse summarizes the daemon and the service it supervises.
type StatusResponse struct {
	Status       string       `json:"status"`
	Timestamp    string       `json:"ts"`
	Version      string       `json:"version"`
	Revision     string       `json:"revision"`
	BuildDate    string       `json:"buildDate"`
	Uptime       string       `json:"uptime"`
	Enabled      bool         `json:"enabled"`
	BatchRunning bool         `json:"batch_running"`
	Pending      int          `json:"pending"`
	Protected    int          `json:"protected"`
	SourceWorld  string       `json:"source_world"`
	DestWorld    string       `json:"destination_world"`
	Service      *ServiceInfo `json:"service"`
}

// ServiceInfo is the supervised process slice of the status payload.
type ServiceInfo struct {
	Status string `json:"status"`
	Pid    int    `json:"pid,omitempty"`
}

// IndexResponse is the unauthenticated root payload.
type IndexResponse struct {
	App       string `json:"app"`
	Version   string `json:"version"`
	Revision  string `json:"revision"`
	BuildDate string `json:"buildDate"`
}
