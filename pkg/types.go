package pkg

import "time"

// Patient is a registered patient record. Patients are created once through
// registration and read back to personalize the assistant; they are never
// updated or deleted by this service.
type Patient struct {
	ID             int64     `json:"patient_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Age            int       `json:"age"`
	Sex            string    `json:"sex"`
	Address        string    `json:"address"`
	ContactNumber  string    `json:"contact_number"`
	MedicalHistory string    `json:"medical_history"`
	CreatedAt      time.Time `json:"created_at"`
}

// Session is one conversation thread, keyed by an opaque string chosen by the
// client (or generated server side when omitted). Every session belongs to a
// patient; anonymous sessions are linked to a placeholder patient record.
type Session struct {
	ID        string    `json:"session_id"`
	PatientID int64     `json:"patient_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Role describes who authored a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat message within a session. Messages are append
// only; ordering is by creation time with the surrogate key as tiebreak.
type Message struct {
	ID        int64     `json:"message_id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// PatientData carries inline patient context supplied by the chat client.
// The field names mirror the browser frontend, which stores the registration
// form in localStorage and sends it camelCased with every chat request. All
// values are free text; they are only ever interpolated into the system
// prompt.
type PatientData struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Age            string `json:"age"`
	Sex            string `json:"sex"`
	Address        string `json:"address"`
	ContactNumber  string `json:"contactNumber"`
	MedicalHistory string `json:"medicalHistory"`
}

// Empty reports whether no patient field carries any information.
func (p *PatientData) Empty() bool {
	if p == nil {
		return true
	}
	return p.FirstName == "" && p.LastName == "" && p.Age == "" && p.Sex == "" &&
		p.Address == "" && p.ContactNumber == "" && p.MedicalHistory == ""
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message     string       `json:"message" binding:"required"`
	SessionID   string       `json:"session_id"`
	PatientData *PatientData `json:"patient_data,omitempty"`
	PatientID   *int64       `json:"patient_id,omitempty"`
}

// ChatResponse is the body returned by POST /chat. The chat endpoint always
// answers 200; completion failures are carried in Reply as "Error: <desc>".
type ChatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"session_id"`
}
