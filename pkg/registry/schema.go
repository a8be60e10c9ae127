// pkg/registry/schema.go
package registry

// ActivityRegistry describes the BPMN service tasks this service implements
// and the processes that use them.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Processes   []Process  `json:"processes"`
	Activities  []Activity `json:"activities"`
}

// Process is a BPMN process started by the intake service.
type Process struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	StartedBy   string   `json:"startedBy"`
	Variables   []string `json:"variables"`
}

type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema"`
	ErrorCodes           []string               `json:"errorCodes"`
	Timeout              string                 `json:"timeout"`
	Retries              int                    `json:"retries"`
	Workflows            []string               `json:"workflows"`
	Tags                 []string               `json:"tags"`
}
