package jira

// User is the authenticated principal as reported by the myself endpoint.
type User struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// Ticket is the read-mostly view of a Jira issue the automation works on.
// Plan timestamps stay raw strings here; parsing and date validation belong
// to the resolver, which owns the fallback policy for malformed values.
type Ticket struct {
	Key          string
	Summary      string
	Status       string
	PlanStartRaw string
	PlanEndRaw   string
}

// Transition is one state change currently available on an issue. IDs
// depend on the issue's present workflow state and must be looked up fresh
// every time.
type Transition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type searchRequest struct {
	JQL        string   `json:"jql"`
	MaxResults int      `json:"maxResults"`
	Fields     []string `json:"fields"`
}

type searchResponse struct {
	Issues []searchIssue `json:"issues"`
}

type searchIssue struct {
	Key    string                 `json:"key"`
	Fields map[string]interface{} `json:"fields"`
}

type transitionsResponse struct {
	Transitions []Transition `json:"transitions"`
}

type applyTransitionRequest struct {
	Transition transitionRef `json:"transition"`
}

type transitionRef struct {
	ID string `json:"id"`
}
