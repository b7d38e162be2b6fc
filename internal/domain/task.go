package domain

// TaskState is the lifecycle state of a submitted task.
type TaskState string

const (
	TaskStateInputRequired TaskState = "input-required"
	TaskStateCompleted     TaskState = "completed"
	TaskStateFailed        TaskState = "failed"
)

// TaskContent carries the text of a task message part.
type TaskContent struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text"`
}

// TaskMessage is the message attached to a task or task status.
type TaskMessage struct {
	Role    string      `json:"role,omitempty"`
	Content TaskContent `json:"content"`
}

// TaskStatus reports a task's state, with an optional agent message
// explaining failures or requests for input.
type TaskStatus struct {
	State   TaskState    `json:"state"`
	Message *TaskMessage `json:"message,omitempty"`
}

// Part is one piece of an artifact. Agent results travel as a single text
// part holding the JSON-encoded envelope.
type Part struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Artifact is an output attached to a completed task.
type Artifact struct {
	Parts []Part `json:"parts"`
}

// Task is the transport object accepted on /tasks/send.
type Task struct {
	ID        string       `json:"id,omitempty"`
	Message   *TaskMessage `json:"message,omitempty"`
	Status    TaskStatus   `json:"status"`
	Artifacts []Artifact   `json:"artifacts,omitempty"`
}

// Text returns the command text carried in the task message, or "".
func (t *Task) Text() string {
	if t.Message == nil {
		return ""
	}
	return t.Message.Content.Text
}

// ResultText returns the first artifact part's text, or "".
func (t *Task) ResultText() string {
	if len(t.Artifacts) == 0 || len(t.Artifacts[0].Parts) == 0 {
		return ""
	}
	return t.Artifacts[0].Parts[0].Text
}

// AgentMessage builds a TaskMessage spoken by the agent.
func AgentMessage(text string) *TaskMessage {
	return &TaskMessage{
		Role:    "agent",
		Content: TaskContent{Type: "text", Text: text},
	}
}
